// Package listing derives filtered and sorted views of in-memory record slices.
//
// A Pipeline is configured once per record type with the fields a free-text
// search looks at, the named filter dimensions and the named sort keys. Apply
// then evaluates a Query against a slice and returns a new slice; the input is
// never modified.
package listing

import (
	"slices"
	"strings"
	"sync"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// All is the filter value that disables a dimension.
const All = "all"

// Query selects records from a slice.
type Query struct {
	Search  string
	Filters map[string]string
	Sort    string
}

// WithFilter returns a copy of q with the named dimension set.
func (q Query) WithFilter(name, value string) Query {
	filters := make(map[string]string, len(q.Filters)+1)
	for k, v := range q.Filters {
		filters[k] = v
	}
	filters[name] = value
	q.Filters = filters
	return q
}

// SearchField extracts a searchable string from a record.
type SearchField[T any] func(T) string

// Predicate reports whether item matches the selected value of a dimension.
type Predicate[T any] func(item T, value string) bool

// Comparator orders two records, negative when a sorts first.
type Comparator[T any] func(a, b T) int

// Pipeline is an immutable description of how a record type is searched,
// filtered and sorted.
type Pipeline[T any] struct {
	fields []SearchField[T]
	dims   map[string]Predicate[T]
	sorts  map[string]Comparator[T]
}

// New creates an empty pipeline.
func New[T any]() *Pipeline[T] {
	return &Pipeline[T]{
		dims:  make(map[string]Predicate[T]),
		sorts: make(map[string]Comparator[T]),
	}
}

// SearchOn registers fields matched by Query.Search.
func (p *Pipeline[T]) SearchOn(fields ...SearchField[T]) *Pipeline[T] {
	p.fields = append(p.fields, fields...)
	return p
}

// FilterBy registers a named filter dimension.
func (p *Pipeline[T]) FilterBy(name string, pred Predicate[T]) *Pipeline[T] {
	p.dims[name] = pred
	return p
}

// SortBy registers a named sort key.
func (p *Pipeline[T]) SortBy(name string, cmp Comparator[T]) *Pipeline[T] {
	p.sorts[name] = cmp
	return p
}

// SortKeys lists the registered sort keys.
func (p *Pipeline[T]) SortKeys() []string {
	keys := make([]string, 0, len(p.sorts))
	for k := range p.sorts {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// HasSort reports whether key is a registered sort key.
func (p *Pipeline[T]) HasSort(key string) bool {
	_, ok := p.sorts[key]
	return ok
}

// Apply evaluates q against items. The result is always a fresh slice, empty
// (not nil) when nothing matches. Sorting is stable: records with equal keys
// keep their input order. An unknown sort key leaves the filtered order as is.
func (p *Pipeline[T]) Apply(items []T, q Query) []T {
	result := make([]T, 0, len(items))

	needle := strings.ToLower(q.Search)
	for _, item := range items {
		if needle != "" && !p.matchesSearch(item, needle) {
			continue
		}
		if !p.matchesFilters(item, q.Filters) {
			continue
		}
		result = append(result, item)
	}

	if cmp, ok := p.sorts[q.Sort]; ok {
		slices.SortStableFunc(result, cmp)
	}
	return result
}

// Count returns how many records Apply would return.
func (p *Pipeline[T]) Count(items []T, q Query) int {
	return len(p.Apply(items, Query{Search: q.Search, Filters: q.Filters}))
}

func (p *Pipeline[T]) matchesSearch(item T, needle string) bool {
	for _, field := range p.fields {
		if strings.Contains(strings.ToLower(field(item)), needle) {
			return true
		}
	}
	return false
}

func (p *Pipeline[T]) matchesFilters(item T, filters map[string]string) bool {
	for name, value := range filters {
		if value == "" || value == All {
			continue
		}
		pred, ok := p.dims[name]
		if !ok {
			continue
		}
		if !pred(item, value) {
			return false
		}
	}
	return true
}

// collator is shared; collate.Collator is not safe for concurrent use.
var (
	collatorMu sync.Mutex
	collator   = collate.New(language.English)
)

// CompareText orders strings the way a person reading an English list expects
// (case and accents are secondary differences).
func CompareText(a, b string) int {
	collatorMu.Lock()
	defer collatorMu.Unlock()
	return collator.CompareString(a, b)
}

// Ascending builds a comparator over a text key.
func Ascending[T any](key func(T) string) Comparator[T] {
	return func(a, b T) int {
		return CompareText(key(a), key(b))
	}
}

// Descending builds a reversed comparator over a text key.
func Descending[T any](key func(T) string) Comparator[T] {
	return func(a, b T) int {
		return CompareText(key(b), key(a))
	}
}

// Number is the set of numeric sort keys.
type Number interface {
	~int | ~int32 | ~int64 | ~float32 | ~float64
}

// NumericAscending builds a comparator over a numeric key, smallest first.
func NumericAscending[T any, N Number](key func(T) N) Comparator[T] {
	return func(a, b T) int {
		return compareNumbers(key(a), key(b))
	}
}

// NumericDescending builds a comparator over a numeric key, largest first.
func NumericDescending[T any, N Number](key func(T) N) Comparator[T] {
	return func(a, b T) int {
		return compareNumbers(key(b), key(a))
	}
}

func compareNumbers[N Number](a, b N) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// Equals builds a predicate comparing a key to the selected value exactly.
func Equals[T any](key func(T) string) Predicate[T] {
	return func(item T, value string) bool {
		return key(item) == value
	}
}
