package matching

import (
	"cmp"
	"slices"
	"time"
)

// RankKey is the listing order shared by match results, job search and nanny
// search: eligible first, then score, active boost, highlight, most recent
// activity, and finally id for a total order.
type RankKey struct {
	Eligible     bool
	Score        int
	Boosted      bool
	Highlighted  bool
	LastActiveAt *time.Time
	ID           int64
}

// CompareRankKeys returns a negative number when a lists before b.
func CompareRankKeys(a, b RankKey) int {
	if c := compareTrueFirst(a.Eligible, b.Eligible); c != 0 {
		return c
	}
	if c := cmp.Compare(b.Score, a.Score); c != 0 {
		return c
	}
	if c := compareTrueFirst(a.Boosted, b.Boosted); c != 0 {
		return c
	}
	if c := compareTrueFirst(a.Highlighted, b.Highlighted); c != 0 {
		return c
	}
	if c := compareRecentFirst(a.LastActiveAt, b.LastActiveAt); c != 0 {
		return c
	}
	return cmp.Compare(a.ID, b.ID)
}

// SortByRank sorts items in place by the key each one maps to.
func SortByRank[T any](items []T, key func(T) RankKey) {
	slices.SortStableFunc(items, func(a, b T) int {
		return CompareRankKeys(key(a), key(b))
	})
}

func compareTrueFirst(a, b bool) int {
	switch {
	case a == b:
		return 0
	case a:
		return -1
	default:
		return 1
	}
}

// compareRecentFirst orders later timestamps first and nil last.
func compareRecentFirst(a, b *time.Time) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	default:
		return b.Compare(*a)
	}
}
