// Package logreg implements dense multiclass logistic regression inference
// over the feature vector pkg/featurizer produces (spec.md §4.4). Training is
// out of scope; this package only runs the trained coefficients forward.
// Plain stdlib math: no dense linear-algebra library appears anywhere in the
// corpus, and a handful of dot products over a few hundred floats doesn't
// warrant pulling one in (see DESIGN.md).
package logreg

import "math"

// Model holds trained one-vs-rest logistic regression weights: one
// intercept and one coefficient row per class.
type Model struct {
	Intercept []float32
	Coeffs    [][]float32 // [class][feature]
}

// Run scores features against every class and returns the softmax
// probability distribution. filteredOutIndexes names classes to exclude
// from the distribution entirely (e.g. an intent forced out by a
// whitelist/blacklist) before renormalising.
func (m *Model) Run(features []float32, filteredOutIndexes []int) []float32 {
	filtered := make(map[int]bool, len(filteredOutIndexes))
	for _, i := range filteredOutIndexes {
		filtered[i] = true
	}

	logits := make([]float64, len(m.Coeffs))
	for c, row := range m.Coeffs {
		var sum float64
		for i, w := range row {
			if i < len(features) {
				sum += float64(w) * float64(features[i])
			}
		}
		if c < len(m.Intercept) {
			sum += float64(m.Intercept[c])
		}
		logits[c] = sum
	}

	return softmax(logits, filtered)
}

// softmax computes a numerically stable softmax, zeroing out any index
// present in filtered and renormalising over the remainder.
func softmax(logits []float64, filtered map[int]bool) []float32 {
	out := make([]float32, len(logits))
	if len(logits) == 0 {
		return out
	}

	maxLogit := math.Inf(-1)
	for i, l := range logits {
		if filtered[i] {
			continue
		}
		if l > maxLogit {
			maxLogit = l
		}
	}
	if math.IsInf(maxLogit, -1) {
		return out
	}

	var sum float64
	exps := make([]float64, len(logits))
	for i, l := range logits {
		if filtered[i] {
			continue
		}
		e := math.Exp(l - maxLogit)
		exps[i] = e
		sum += e
	}
	if sum == 0 {
		return out
	}
	for i, e := range exps {
		if filtered[i] {
			continue
		}
		out[i] = float32(e / sum)
	}
	return out
}
