package store

import (
	"context"
	"database/sql"

	"cuidly-workers/internal/subscription"

	sq "github.com/Masterminds/squirrel"
)

// Contact is where notifications for one account are delivered. Email and
// Phone are empty when the account has not provided them.
type Contact struct {
	Name  string
	Email string
	Phone string
}

func (s *Store) GetContact(ctx context.Context, l subscription.Lookup) (Contact, error) {
	if err := l.Validate(); err != nil {
		return Contact{}, err
	}
	table := "families"
	if l.IsNanny() {
		table = "nannies"
	}

	var (
		c            Contact
		email, phone sql.NullString
	)
	q := s.sb.Select("name", "email", "phone").From(table).Where(sq.Eq{"id": l.ID()})
	if err := s.queryRow(ctx, "get contact", q, &c.Name, &email, &phone); err != nil {
		return Contact{}, err
	}
	c.Email, c.Phone = email.String, phone.String
	return c, nil
}
