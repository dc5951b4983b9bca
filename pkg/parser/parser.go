// Package parser defines the common contract every intent parser
// implements (spec.md §9 "Sum-typed parser outcomes"): parse, get_intents,
// get_slots(intent). Concrete parsers live in the lookup, deterministic,
// and probabilistic subpackages; the engine façade in pkg/nlu dispatches
// across them by declared order.
package parser

import (
	"context"

	"github.com/snipsco/snips-nlu-go/pkg/classifier"
	"github.com/snipsco/snips-nlu-go/pkg/tagging"
)

// IntentResult mirrors spec.md's IntentClassifierResult: a nil IntentName
// means "no intent matched".
type IntentResult = classifier.Result

// Outcome is every parser's single return shape (spec.md §3 "Intent parser
// outcome").
type Outcome struct {
	Intent IntentResult
	Slots  []tagging.InternalSlot
}

// IntentParser is the contract shared by the lookup, deterministic, and
// probabilistic parsers.
type IntentParser interface {
	// Parse returns the parser's best outcome for text, honouring the
	// intent whitelist (nil or empty means "no restriction").
	Parse(ctx context.Context, text string, whitelist map[string]bool) (Outcome, error)
	// GetIntents returns the parser's full intent distribution, including
	// the None class, sorted by descending confidence.
	GetIntents(ctx context.Context, text string) ([]IntentResult, error)
	// GetSlots returns the slots this parser would extract for text under
	// the assumption that intent is the winning intent.
	GetSlots(ctx context.Context, text string, intent string) ([]tagging.InternalSlot, error)
}
