// Package store loads the rows the entitlement and matching workers feed into
// the pure core. Reads go to Postgres; subscriptions are cached in Redis.
package store

import (
	"context"
	"database/sql"
	"database/sql/driver"
	stderrors "errors"
	"fmt"
	"net"
	"time"

	"cuidly-workers/internal/common/errors"
	"cuidly-workers/internal/common/logger"
	"cuidly-workers/internal/common/metrics"
	"cuidly-workers/internal/subscription"

	sq "github.com/Masterminds/squirrel"
	"github.com/redis/go-redis/v9"
)

// ErrNotFound is returned when a lookup by id matches no row.
var ErrNotFound = stderrors.New("record not found")

const DefaultCacheTTL = 5 * time.Minute

type Store struct {
	db    *sql.DB
	cache *redis.Client
	ttl   time.Duration
	sb    sq.StatementBuilderType
	log   logger.Logger
	now   func() time.Time
}

// New builds a Store. cache may be nil, in which case every read goes to
// Postgres. A nil log discards store logs.
func New(db *sql.DB, cache *redis.Client, ttl time.Duration, log logger.Logger) *Store {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &Store{
		db:    db,
		cache: cache,
		ttl:   ttl,
		sb:    sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
		log:   log.WithFields(map[string]interface{}{"component": "store"}),
		now:   time.Now,
	}
}

func (s *Store) queryRow(ctx context.Context, op string, q sq.Sqlizer, dest ...interface{}) error {
	query, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("%s: build query: %w", op, err)
	}

	start := time.Now()
	err = s.db.QueryRowContext(ctx, query, args...).Scan(dest...)
	metrics.DatabaseQueryDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())

	if stderrors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (s *Store) query(ctx context.Context, op string, q sq.Sqlizer) (*sql.Rows, func(), error) {
	query, args, err := q.ToSql()
	if err != nil {
		return nil, nil, fmt.Errorf("%s: build query: %w", op, err)
	}

	start := time.Now()
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		metrics.DatabaseQueryDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
		return nil, nil, fmt.Errorf("%s: %w", op, err)
	}
	done := func() {
		_ = rows.Close()
		metrics.DatabaseQueryDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
	}
	return rows, done, nil
}

func (s *Store) count(ctx context.Context, op string, q sq.SelectBuilder) (int, error) {
	var n int
	if err := s.queryRow(ctx, op, q, &n); err != nil {
		return 0, err
	}
	return n, nil
}

// Classify maps a store error to the worker error taxonomy. notFound is used
// for ErrNotFound; a nil notFound treats a missing row as a query failure.
func Classify(op string, err error, notFound *errors.StandardError) error {
	switch {
	case err == nil:
		return nil
	case stderrors.Is(err, ErrNotFound) && notFound != nil:
		return notFound
	case stderrors.Is(err, subscription.ErrInvalidLookup):
		return errors.NewInvalidLookupError(err)
	case stderrors.Is(err, subscription.ErrUnknownPlan), stderrors.Is(err, ErrPlanMismatch):
		return errors.NewInvalidPlanError(err)
	case stderrors.Is(err, context.DeadlineExceeded):
		return errors.NewQueryTimeoutError(op)
	case isConnectionError(err):
		return errors.NewDatabaseConnectionFailedError(err)
	default:
		return errors.NewDatabaseQueryFailedError(op, err)
	}
}

func isConnectionError(err error) bool {
	var opErr *net.OpError
	return stderrors.Is(err, driver.ErrBadConn) || stderrors.Is(err, sql.ErrConnDone) || stderrors.As(err, &opErr)
}
