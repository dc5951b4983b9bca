// Package probabilistic implements the probabilistic intent parser
// (spec.md §4.9): a single tf-idf + log-regression intent classifier feeding
// one CRF slot filler per intent. Parse classifies, then dispatches to the
// winning intent's slot filler; an intent with no registered slot filler is
// an error. Ported from
// original_source/src/intent_parser/probabilistic_intent_parser.rs.
package probabilistic

import (
	"context"
	"fmt"

	"github.com/snipsco/snips-nlu-go/pkg/classifier"
	"github.com/snipsco/snips-nlu-go/pkg/crf"
	"github.com/snipsco/snips-nlu-go/pkg/entities"
	"github.com/snipsco/snips-nlu-go/pkg/entities/builtin"
	"github.com/snipsco/snips-nlu-go/pkg/entities/custom"
	"github.com/snipsco/snips-nlu-go/pkg/nluerrors"
	"github.com/snipsco/snips-nlu-go/pkg/parser"
	"github.com/snipsco/snips-nlu-go/pkg/tagging"
)

// Probabilistic wires an intent classifier to per-intent slot fillers.
type Probabilistic struct {
	classifier  *classifier.Classifier
	slotFillers map[string]*crf.SlotFiller

	builtinScope  []string
	builtinParser builtin.Parser
	customParser  custom.Parser
}

// New builds a Probabilistic parser from its already-constructed
// collaborators: the trained classifier, one slot filler per intent, the
// builtin entity kinds the classifier's featurizer was trained against, and
// the engine's shared entity-parser handles.
func New(c *classifier.Classifier, slotFillers map[string]*crf.SlotFiller, builtinScope []string, bp builtin.Parser, cp custom.Parser) *Probabilistic {
	return &Probabilistic{
		classifier:    c,
		slotFillers:   slotFillers,
		builtinScope:  builtinScope,
		builtinParser: bp,
		customParser:  cp,
	}
}

// Parse classifies text, then tags slots with the winning intent's filler.
func (p *Probabilistic) Parse(ctx context.Context, text string, whitelist map[string]bool) (parser.Outcome, error) {
	builtinResults, customResults, err := p.extractEntities(ctx, text)
	if err != nil {
		return parser.Outcome{}, err
	}

	result, err := p.classifier.GetIntent(text, builtinResults, customResults, p.filteredOut(whitelist))
	if err != nil {
		return parser.Outcome{}, err
	}
	if result.IntentName == nil {
		return parser.Outcome{Intent: result}, nil
	}

	slots, err := p.tagSlots(*result.IntentName, text, customResults, builtinResults)
	if err != nil {
		return parser.Outcome{}, err
	}
	return parser.Outcome{Intent: result, Slots: slots}, nil
}

// GetIntents returns the classifier's full intent distribution.
func (p *Probabilistic) GetIntents(ctx context.Context, text string) ([]parser.IntentResult, error) {
	builtinResults, customResults, err := p.extractEntities(ctx, text)
	if err != nil {
		return nil, err
	}
	return p.classifier.GetIntents(text, builtinResults, customResults, nil)
}

// GetSlots tags text with the named intent's slot filler, regardless of
// what the classifier itself would have predicted.
func (p *Probabilistic) GetSlots(ctx context.Context, text string, intent string) ([]tagging.InternalSlot, error) {
	builtinResults, customResults, err := p.extractEntities(ctx, text)
	if err != nil {
		return nil, err
	}
	return p.tagSlots(intent, text, customResults, builtinResults)
}

func (p *Probabilistic) tagSlots(intent, text string, customResults []entities.CustomResult, builtinResults []entities.BuiltinResult) ([]tagging.InternalSlot, error) {
	filler, ok := p.slotFillers[intent]
	if !ok {
		return nil, nluerrors.Unknown(intent)
	}
	return filler.Tag(text, customResults, builtinResults)
}

// extractEntities runs the builtin parser over the classifier's trained
// entity scope and the custom parser over every known gazetteer entity; both
// the classifier's featurizer and every slot filler consume the same result
// sets for a given utterance.
func (p *Probabilistic) extractEntities(ctx context.Context, text string) ([]entities.BuiltinResult, []entities.CustomResult, error) {
	var builtinResults []entities.BuiltinResult
	if p.builtinParser != nil {
		results, err := p.builtinParser.Parse(ctx, text, p.builtinScope)
		if err != nil {
			return nil, nil, fmt.Errorf("probabilistic parser builtin extraction: %w", err)
		}
		builtinResults = results
	}

	var customResults []entities.CustomResult
	if p.customParser != nil {
		results, err := p.customParser.Parse(ctx, text, p.customParser.EntityNames())
		if err != nil {
			return nil, nil, fmt.Errorf("probabilistic parser custom extraction: %w", err)
		}
		customResults = results
	}

	return builtinResults, customResults, nil
}

// filteredOut inverts whitelist into the exclusion set classifier.Classifier
// expects, scoped to the intents this parser actually knows about.
func (p *Probabilistic) filteredOut(whitelist map[string]bool) map[string]bool {
	if len(whitelist) == 0 {
		return nil
	}
	out := make(map[string]bool, len(p.slotFillers))
	for intent := range p.slotFillers {
		if !whitelist[intent] {
			out[intent] = true
		}
	}
	return out
}
