package store

import (
	"context"
	"database/sql"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"time"

	"cuidly-workers/internal/common/metrics"
	"cuidly-workers/internal/subscription"

	sq "github.com/Masterminds/squirrel"
	"github.com/redis/go-redis/v9"
)

// ErrPlanMismatch is returned when the stored plan belongs to the other side
// of the marketplace than the lookup.
var ErrPlanMismatch = stderrors.New("subscription plan does not match lookup audience")

// ResolvePlan returns the plan in force for l at now, together with the
// subscription it was derived from. An account without a subscription row is
// on its audience's free plan.
func (s *Store) ResolvePlan(ctx context.Context, l subscription.Lookup, now time.Time) (subscription.Plan, subscription.Subscription, error) {
	sub, err := s.GetSubscription(ctx, l)
	if stderrors.Is(err, ErrNotFound) {
		sub = subscription.Subscription{Plan: subscription.FreePlan(l.Audience()), Status: subscription.StatusActive}
		err = nil
	}
	if err != nil {
		return 0, subscription.Subscription{}, err
	}
	if sub.Plan.Audience() != l.Audience() {
		return 0, subscription.Subscription{}, fmt.Errorf("%w: %s on %s", ErrPlanMismatch, sub.Plan, l)
	}
	return sub.EffectivePlan(now), sub, nil
}

func subscriptionCacheKey(l subscription.Lookup) string {
	return "sub:" + l.String()
}

func lookupColumn(l subscription.Lookup) string {
	if l.IsNanny() {
		return "nanny_id"
	}
	return "family_id"
}

// GetSubscription returns the most recent subscription of the looked-up
// account. It reads through the Redis cache and fills it on a miss.
func (s *Store) GetSubscription(ctx context.Context, l subscription.Lookup) (subscription.Subscription, error) {
	if err := l.Validate(); err != nil {
		return subscription.Subscription{}, err
	}

	key := subscriptionCacheKey(l)
	if sub, ok := s.cachedSubscription(ctx, key); ok {
		return sub, nil
	}

	var (
		plan, status string
		start, end   sql.NullTime
	)
	q := s.sb.Select("plan", "status", "current_period_start", "current_period_end").
		From("subscriptions").
		Where(sq.Eq{lookupColumn(l): l.ID()}).
		OrderBy("created_at DESC").
		Limit(1)
	if err := s.queryRow(ctx, "get subscription", q, &plan, &status, &start, &end); err != nil {
		return subscription.Subscription{}, err
	}

	p, err := subscription.ParsePlan(plan)
	if err != nil {
		return subscription.Subscription{}, fmt.Errorf("subscription of %s: %w", l, err)
	}
	sub := subscription.Subscription{
		Plan:               p,
		Status:             subscription.ParseStatus(status),
		CurrentPeriodStart: nullTime(start),
		CurrentPeriodEnd:   nullTime(end),
	}

	s.cacheSubscription(ctx, key, sub)
	return sub, nil
}

func (s *Store) cachedSubscription(ctx context.Context, key string) (subscription.Subscription, bool) {
	var sub subscription.Subscription
	if s.cache == nil {
		return sub, false
	}

	val, err := s.cache.Get(ctx, key).Result()
	switch {
	case stderrors.Is(err, redis.Nil):
		metrics.CacheLookups.WithLabelValues("subscription", "miss").Inc()
		return sub, false
	case err != nil:
		metrics.CacheLookups.WithLabelValues("subscription", "error").Inc()
		s.log.Warn("subscription cache read failed", map[string]interface{}{
			"key":   key,
			"error": err.Error(),
		})
		return sub, false
	}

	if err := json.Unmarshal([]byte(val), &sub); err != nil {
		metrics.CacheLookups.WithLabelValues("subscription", "error").Inc()
		s.log.Debug("discarding undecodable cache entry", map[string]interface{}{
			"key":   key,
			"error": err.Error(),
		})
		return sub, false
	}
	metrics.CacheLookups.WithLabelValues("subscription", "hit").Inc()
	return sub, true
}

func (s *Store) cacheSubscription(ctx context.Context, key string, sub subscription.Subscription) {
	if s.cache == nil {
		return
	}
	data, err := json.Marshal(sub)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, data, s.ttl).Err(); err != nil {
		s.log.Warn("subscription cache write failed", map[string]interface{}{
			"key":   key,
			"error": err.Error(),
		})
	}
}

// InvalidateSubscription drops the cached subscription of l after a plan
// change. It reports whether an entry was present.
func (s *Store) InvalidateSubscription(ctx context.Context, l subscription.Lookup) (bool, error) {
	if err := l.Validate(); err != nil {
		return false, err
	}
	if s.cache == nil {
		return false, nil
	}
	key := subscriptionCacheKey(l)
	n, err := s.cache.Del(ctx, key).Result()
	if err != nil {
		metrics.CacheLookups.WithLabelValues("subscription", "error").Inc()
		return false, fmt.Errorf("invalidate %s: %w", key, err)
	}
	metrics.CacheLookups.WithLabelValues("subscription", "invalidate").Inc()
	return n > 0, nil
}
