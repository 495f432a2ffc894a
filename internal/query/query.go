// Package query implements the generic sort/filter/search/pagination
// contract shared by all list views. Results are deterministic: sorting
// breaks ties by entity ID, so identical inputs over an unchanged snapshot
// always produce identical pages.
package query

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Options are the caller-supplied view parameters.
type Options struct {
	Search  string            // case-insensitive substring over the searchable fields
	Filters map[string]string // field -> value, composed as logical AND
	SortKey string            // empty sorts by ID
	Desc    bool
	Offset  int
	Limit   int // <= 0 means no limit
}

// Page is one ordered result page plus the pre-pagination total.
type Page[T any] struct {
	Items []T `json:"items"`
	Total int `json:"total"`
}

// Collection describes how to query a slice of T. Sort comparators follow
// cmp conventions (negative, zero, positive); Filter accessors expose the
// fields that may be filtered on, Search the fields scanned by free-text
// search.
type Collection[T any] struct {
	ID     func(T) string
	Sort   map[string]func(a, b T) int
	Search []func(T) string
	Filter map[string]func(T) string
}

// Run applies filters, search, ordering and pagination over a snapshot.
// Unknown filter or sort keys are caller errors.
func (c *Collection[T]) Run(items []T, opts Options) (Page[T], error) {
	filtered := make([]T, 0, len(items))

	type fieldFilter struct {
		get  func(T) string
		want string
	}
	filters := make([]fieldFilter, 0, len(opts.Filters))
	for field, want := range opts.Filters {
		if want == "" {
			continue
		}
		get, ok := c.Filter[field]
		if !ok {
			return Page[T]{}, fmt.Errorf("unknown filter field %q", field)
		}
		filters = append(filters, fieldFilter{get, want})
	}

	search := strings.ToLower(strings.TrimSpace(opts.Search))

next:
	for _, item := range items {
		for _, f := range filters {
			if !strings.EqualFold(f.get(item), f.want) {
				continue next
			}
		}
		if search != "" && !c.matches(item, search) {
			continue
		}
		filtered = append(filtered, item)
	}

	cmp, err := c.comparator(opts.SortKey)
	if err != nil {
		return Page[T]{}, err
	}
	sort.SliceStable(filtered, func(i, j int) bool {
		order := cmp(filtered[i], filtered[j])
		if opts.Desc {
			order = -order
		}
		return order < 0
	})

	total := len(filtered)
	start := opts.Offset
	if start < 0 {
		start = 0
	}
	if start > total {
		start = total
	}
	end := total
	if opts.Limit > 0 && start+opts.Limit < end {
		end = start + opts.Limit
	}

	return Page[T]{Items: filtered[start:end], Total: total}, nil
}

func (c *Collection[T]) matches(item T, loweredSearch string) bool {
	for _, get := range c.Search {
		if strings.Contains(strings.ToLower(get(item)), loweredSearch) {
			return true
		}
	}
	return false
}

// comparator builds the full ordering: the requested sort key with the
// entity ID as tiebreak. Descending inverts the whole ordering, so reversing
// the direction yields the exact reverse sequence.
func (c *Collection[T]) comparator(sortKey string) (func(a, b T) int, error) {
	byID := func(a, b T) int { return strings.Compare(c.ID(a), c.ID(b)) }
	if sortKey == "" {
		return byID, nil
	}
	primary, ok := c.Sort[sortKey]
	if !ok {
		return nil, fmt.Errorf("unknown sort key %q", sortKey)
	}
	return func(a, b T) int {
		if order := primary(a, b); order != 0 {
			return order
		}
		return byID(a, b)
	}, nil
}

var (
	collatorMu sync.Mutex
	collator   = collate.New(language.English, collate.Loose)
)

// SetLocale switches the collation locale for string sort keys. tag is a
// BCP 47 identifier such as "en" or "sl".
func SetLocale(tag string) error {
	parsed, err := language.Parse(tag)
	if err != nil {
		return fmt.Errorf("parsing locale %q: %w", tag, err)
	}
	collatorMu.Lock()
	defer collatorMu.Unlock()
	collator = collate.New(parsed, collate.Loose)
	return nil
}

// CompareStrings is the locale-aware comparison used by string sort keys.
func CompareStrings(a, b string) int {
	collatorMu.Lock()
	defer collatorMu.Unlock()
	return collator.CompareString(a, b)
}

// CompareInts is a convenience comparator for numeric sort keys.
func CompareInts(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// CompareInt64s is CompareInts for 64-bit IDs and timestamps.
func CompareInt64s(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
