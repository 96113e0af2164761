package store

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"testing"

	"cuidly-workers/internal/subscription"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetContact(t *testing.T) {
	tests := []struct {
		name   string
		lookup subscription.Lookup
		query  string
		row    []driver.Value
		want   Contact
	}{
		{
			name:   "family with phone",
			lookup: subscription.FamilyLookup(12),
			query:  `SELECT name, email, phone FROM families WHERE id = \$1`,
			row:    []driver.Value{"Família Souza", "souza@example.com", "+5511999990000"},
			want:   Contact{Name: "Família Souza", Email: "souza@example.com", Phone: "+5511999990000"},
		},
		{
			name:   "nanny without phone",
			lookup: subscription.NannyLookup(3),
			query:  `SELECT name, email, phone FROM nannies WHERE id = \$1`,
			row:    []driver.Value{"Ana", "ana@example.com", nil},
			want:   Contact{Name: "Ana", Email: "ana@example.com"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, mock := newTestStore(t)
			mock.ExpectQuery(tt.query).WithArgs(tt.lookup.ID()).
				WillReturnRows(sqlmock.NewRows([]string{"name", "email", "phone"}).AddRow(tt.row...))

			got, err := s.GetContact(context.Background(), tt.lookup)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestGetContact_NotFound(t *testing.T) {
	s, mock := newTestStore(t)
	mock.ExpectQuery(`FROM nannies`).WithArgs(int64(4)).WillReturnError(sql.ErrNoRows)

	_, err := s.GetContact(context.Background(), subscription.NannyLookup(4))
	assert.ErrorIs(t, err, ErrNotFound)
}
