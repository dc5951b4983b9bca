// Package linearchain is a minimal concrete linear-chain CRF tagger
// (Viterbi decoding over this module's own WeightTable format) implementing
// crf.Tagger, the external CRF-library collaborator spec.md §1 names as out
// of scope for training. Plain stdlib math: no CRF/sequence-labelling
// library appears anywhere in the corpus (see DESIGN.md).
package linearchain

import (
	"fmt"
	"math"

	"github.com/snipsco/snips-nlu-go/pkg/crf"
)

// Tagger decodes the highest-scoring tag sequence with the Viterbi
// algorithm over additive emission and transition weights.
type Tagger struct {
	model *crf.WeightTable
}

// New wraps a trained weight table.
func New(model *crf.WeightTable) *Tagger {
	return &Tagger{model: model}
}

func (t *Tagger) Labels() []string { return t.model.Labels }

// Tag decodes the best label sequence for the given per-token feature sets.
func (t *Tagger) Tag(features []map[string]string) ([]string, error) {
	n := len(features)
	if n == 0 {
		return nil, nil
	}
	labels := t.model.Labels
	if len(labels) == 0 {
		return nil, fmt.Errorf("crf model has no labels")
	}

	score := make([][]float64, n)
	back := make([][]int, n)
	for i := range score {
		score[i] = make([]float64, len(labels))
		back[i] = make([]int, len(labels))
	}

	emit := func(i int, label string) float64 {
		var s float64
		for k, v := range features[i] {
			s += t.model.Emission[crf.EmissionKey(label, k+"="+v)]
		}
		return s
	}

	for l, label := range labels {
		score[0][l] = emit(0, label)
		back[0][l] = -1
	}

	for i := 1; i < n; i++ {
		for l, label := range labels {
			best := math.Inf(-1)
			bestPrev := 0
			for pl, prevLabel := range labels {
				s := score[i-1][pl] + t.model.Transition[crf.TransitionKey(prevLabel, label)]
				if s > best {
					best = s
					bestPrev = pl
				}
			}
			score[i][l] = best + emit(i, label)
			back[i][l] = bestPrev
		}
	}

	bestLast, bestScore := 0, math.Inf(-1)
	for l := range labels {
		if score[n-1][l] > bestScore {
			bestScore = score[n-1][l]
			bestLast = l
		}
	}

	tags := make([]string, n)
	cur := bestLast
	for i := n - 1; i >= 0; i-- {
		tags[i] = labels[cur]
		cur = back[i][cur]
	}
	return tags, nil
}
