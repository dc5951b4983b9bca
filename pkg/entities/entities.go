// Package entities defines the common projection shared by the builtin and
// custom entity parser collaborators (spec.md §3 "Matched entity") and the
// result types they return. The parser interfaces and their concrete
// implementations live in the builtin and custom subpackages; both are
// wrapped in an LRU cache (see pkg/entities/cache) as required by spec.md §4.1.
package entities

import (
	"github.com/snipsco/snips-nlu-go/pkg/slotvalue"
	"github.com/snipsco/snips-nlu-go/pkg/span"
)

// MatchedEntity is the common projection of builtin and custom entity
// parser outputs used by placeholder replacement.
type MatchedEntity struct {
	Range      span.Range
	EntityName string
}

// BuiltinResult is one grammar-entity match: a range, the resolved value,
// and the kind (e.g. "snips/number").
type BuiltinResult struct {
	Range        span.Range
	Value        slotvalue.Value
	Kind         string
	Alternatives []slotvalue.Value
}

// CustomResult is one gazetteer-entity match. Value is the canonical
// (resolved) form; MatchedText is the literal surface text the gazetteer
// matched against, which can differ in length from Value (e.g. "funk"
// matching a canonical entry of "funky").
type CustomResult struct {
	Range        span.Range
	Value        string
	MatchedText  string
	EntityName   string
	Alternatives []string
}
