package core

import (
	"sort"
	"strings"
)

// Filter selects transactions by type and category. An empty set on either
// dimension lets every value through, like an unselected multi-choice field.
type Filter struct {
	Types      []Type
	Categories []Category
}

// IsZero reports whether the filter passes everything.
func (f Filter) IsZero() bool {
	return len(f.Types) == 0 && len(f.Categories) == 0
}

// Apply returns the matching transactions in their original order.
func (f Filter) Apply(l Ledger) Ledger {
	types := make(map[Type]struct{}, len(f.Types))
	for _, t := range f.Types {
		types[t] = struct{}{}
	}
	cats := make(map[Category]struct{}, len(f.Categories))
	for _, c := range f.Categories {
		cats[c] = struct{}{}
	}

	out := make(Ledger, 0, len(l))
	for _, tx := range l {
		if len(types) > 0 {
			if _, ok := types[tx.Type]; !ok {
				continue
			}
		}
		if len(cats) > 0 {
			if _, ok := cats[tx.Category]; !ok {
				continue
			}
		}
		out = append(out, tx)
	}
	return out
}

// PresentCategories returns the distinct categories used in the ledger, in
// display order. These are the options offered by the category filter.
func PresentCategories(l Ledger) []Category {
	seen := make(map[Category]struct{})
	for _, tx := range l {
		seen[tx.Category] = struct{}{}
	}
	out := make([]Category, 0, len(seen))
	for _, c := range Categories() {
		if _, ok := seen[c]; ok {
			out = append(out, c)
		}
	}
	return out
}

// SortKey names a table column.
type SortKey string

const (
	SortNone        SortKey = ""
	SortDate        SortKey = "date"
	SortType        SortKey = "type"
	SortCategory    SortKey = "category"
	SortAmount      SortKey = "amount"
	SortDescription SortKey = "description"
)

// ParseSortKey maps a query value to a SortKey; unknown values mean no sort.
func ParseSortKey(s string) SortKey {
	switch k := SortKey(strings.ToLower(strings.TrimSpace(s))); k {
	case SortDate, SortType, SortCategory, SortAmount, SortDescription:
		return k
	default:
		return SortNone
	}
}

// SortLedger returns a stably sorted copy. SortNone keeps insertion order.
// Amounts sort by their signed value.
func SortLedger(l Ledger, key SortKey, desc bool) Ledger {
	out := make(Ledger, len(l))
	copy(out, l)
	if key == SortNone {
		return out
	}

	less := func(a, b Transaction) bool {
		switch key {
		case SortDate:
			return a.Date.Before(b.Date.Time)
		case SortType:
			return a.Type < b.Type
		case SortCategory:
			return a.Category < b.Category
		case SortAmount:
			return a.Signed().Cents < b.Signed().Cents
		default:
			return strings.ToLower(a.Description) < strings.ToLower(b.Description)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if desc {
			return less(out[j], out[i])
		}
		return less(out[i], out[j])
	})
	return out
}
