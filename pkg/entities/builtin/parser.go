// Package builtin defines the grammar (builtin) entity parser collaborator
// (spec.md §1 "Out of scope: the rule-based parser for builtin grammar
// entities") and provides a minimal concrete implementation so the engine
// can run end-to-end without a training pipeline. A production deployment
// is expected to swap Parser for a real grammar engine; nothing in this
// module depends on the concrete type, only the interface.
package builtin

import (
	"context"

	"github.com/snipsco/snips-nlu-go/pkg/entities"
)

// Parser extracts grammar entities (dates, numbers, amounts of money,
// durations, …) from text.
type Parser interface {
	// Parse returns every builtin entity found in text whose kind is in
	// scope (nil scope means "all kinds").
	Parse(ctx context.Context, text string, scope []string) ([]entities.BuiltinResult, error)
	// Kinds lists every entity kind this parser can ever produce.
	Kinds() []string
}
