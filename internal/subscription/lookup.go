package subscription

import (
	"errors"
	"fmt"
)

var ErrInvalidLookup = errors.New("lookup must identify exactly one nanny or family")

type LookupKind uint8

const (
	lookupNone LookupKind = iota
	LookupNanny
	LookupFamily
)

func (k LookupKind) String() string {
	switch k {
	case LookupNanny:
		return "nanny"
	case LookupFamily:
		return "family"
	default:
		return "none"
	}
}

// Lookup identifies the subscription owner: one nanny or one family. Build it
// with NannyLookup, FamilyLookup or LookupFromIDs; the zero value is invalid.
type Lookup struct {
	kind LookupKind
	id   int64
}

func NannyLookup(id int64) Lookup  { return Lookup{kind: LookupNanny, id: id} }
func FamilyLookup(id int64) Lookup { return Lookup{kind: LookupFamily, id: id} }

// LookupFromIDs builds a Lookup from the optional id pair carried by job
// variables. Exactly one id must be set.
func LookupFromIDs(nannyID, familyID *int64) (Lookup, error) {
	var l Lookup
	switch {
	case nannyID != nil && familyID != nil:
		return Lookup{}, fmt.Errorf("%w: both nannyId and familyId set", ErrInvalidLookup)
	case nannyID != nil:
		l = NannyLookup(*nannyID)
	case familyID != nil:
		l = FamilyLookup(*familyID)
	default:
		return Lookup{}, fmt.Errorf("%w: neither nannyId nor familyId set", ErrInvalidLookup)
	}
	if err := l.Validate(); err != nil {
		return Lookup{}, err
	}
	return l, nil
}

func (l Lookup) Validate() error {
	if l.kind != LookupNanny && l.kind != LookupFamily {
		return ErrInvalidLookup
	}
	if l.id <= 0 {
		return fmt.Errorf("%w: non-positive %s id %d", ErrInvalidLookup, l.kind, l.id)
	}
	return nil
}

func (l Lookup) Kind() LookupKind { return l.kind }
func (l Lookup) ID() int64        { return l.id }
func (l Lookup) IsNanny() bool    { return l.kind == LookupNanny }
func (l Lookup) IsFamily() bool   { return l.kind == LookupFamily }

func (l Lookup) String() string { return fmt.Sprintf("%s:%d", l.kind, l.id) }

// Audience is the marketplace side whose plans apply to this owner.
func (l Lookup) Audience() Audience {
	switch l.kind {
	case LookupNanny:
		return AudienceNanny
	case LookupFamily:
		return AudienceFamily
	default:
		return AudienceNone
	}
}
