// Package classifier implements the probabilistic intent classifier
// (spec.md §4.5): a featurizer feeding a logistic regression model, with
// intent filtering (whitelist/blacklist) applied before normalisation so a
// filtered-out intent can never win and never perturbs the distribution of
// the remaining intents.
package classifier

import (
	"fmt"
	"sort"

	"github.com/snipsco/snips-nlu-go/pkg/entities"
	"github.com/snipsco/snips-nlu-go/pkg/featurizer"
	"github.com/snipsco/snips-nlu-go/pkg/logreg"
	"github.com/snipsco/snips-nlu-go/pkg/model"
)

// Result is one scored intent, nil IntentName meaning the None class.
type Result struct {
	IntentName *string
	Confidence float32
}

// Classifier scores an utterance against every trained intent (plus an
// implicit None class).
type Classifier struct {
	featurizer *featurizer.Featurizer
	logreg     *logreg.Model
	intents    []*string // index-aligned with logreg classes; nil entry = None
}

// New builds a Classifier from its trained model and featurizer.
func New(m model.IntentClassifier, f *featurizer.Featurizer) *Classifier {
	return &Classifier{
		featurizer: f,
		logreg:     &logreg.Model{Intercept: m.Intercept, Coeffs: m.Coeffs},
		intents:    m.IntentList,
	}
}

// GetIntents scores input against every non-filtered intent plus None,
// returned sorted by descending confidence. With at most one trained
// intent the result is that intent at confidence 1.0; with empty input (or
// no trained model) every intent is returned with None at 1.0 and every
// named intent at 0.0, without ever running the featurizer/logreg.
func (c *Classifier) GetIntents(input string, builtin []entities.BuiltinResult, custom []entities.CustomResult, filteredOut map[string]bool) ([]Result, error) {
	if len(c.intents) <= 1 {
		var only *string
		if len(c.intents) == 1 {
			only = c.intents[0]
		}
		return []Result{{IntentName: only, Confidence: 1.0}}, nil
	}

	if input == "" || c.featurizer == nil || c.logreg == nil {
		results := make([]Result, len(c.intents))
		for i, intent := range c.intents {
			conf := float32(0)
			if intent == nil {
				conf = 1.0
			}
			results[i] = Result{IntentName: intent, Confidence: conf}
		}
		sort.SliceStable(results, func(i, j int) bool { return results[i].Confidence > results[j].Confidence })
		return results, nil
	}

	features := c.featurizer.Transform(input, builtin, custom)

	var filteredIdx []int
	for i, intent := range c.intents {
		if intent != nil && filteredOut[*intent] {
			filteredIdx = append(filteredIdx, i)
		}
	}

	probs := c.logreg.Run(features, filteredIdx)
	if len(probs) != len(c.intents) {
		return nil, fmt.Errorf("logreg returned %d probabilities for %d intents", len(probs), len(c.intents))
	}

	results := make([]Result, 0, len(probs))
	for i, p := range probs {
		results = append(results, Result{IntentName: c.intents[i], Confidence: p})
	}
	sort.SliceStable(results, func(i, j int) bool { return results[i].Confidence > results[j].Confidence })
	return results, nil
}

// GetIntent returns the single best-scoring non-filtered intent.
func (c *Classifier) GetIntent(input string, builtin []entities.BuiltinResult, custom []entities.CustomResult, filteredOut map[string]bool) (Result, error) {
	results, err := c.GetIntents(input, builtin, custom, filteredOut)
	if err != nil {
		return Result{}, err
	}
	if len(results) == 0 {
		return Result{IntentName: nil, Confidence: 1.0}, nil
	}
	return results[0], nil
}
