package filter

import (
	"github.com/smart-prospective/spctl/spapi"
)

// Filter selects records returned by the API
type Filter interface {
	// Evaluate checks if a record matches; evaluation errors count as no match
	Evaluate(record spapi.Record) bool

	// Match is Evaluate with the evaluation error
	Match(record spapi.Record) (bool, error)

	// Expression returns the original filter expression
	Expression() string
}

// Compiler compiles filter expressions into executable filters
type Compiler interface {
	Compile(expression string) (Filter, error)
}

// CachingCompiler provides caching for compiled filters
type CachingCompiler interface {
	Compiler

	// Clear removes all cached filters
	Clear()

	// Size returns the number of cached filters
	Size() int
}

// Apply returns the records matching f, in order
func Apply(f Filter, records []spapi.Record) []spapi.Record {
	if f == nil {
		return records
	}
	matches := make([]spapi.Record, 0, len(records))
	for _, r := range records {
		if f.Evaluate(r) {
			matches = append(matches, r)
		}
	}
	return matches
}
