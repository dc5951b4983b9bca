package featurizer

import (
	"fmt"
	"strconv"

	"github.com/snipsco/snips-nlu-go/pkg/model"
)

// defaultWindowSize is used when a trained model's config omits window_size.
const defaultWindowSize = 3

// Cooccurrence is the optional sub-featurizer producing one binary feature
// per trained word pair: whether both words of the pair appear within a
// sliding window of the input, in trained order when KeepOrder is set.
type Cooccurrence struct {
	pairs      map[int][2]string
	dim        int
	windowSize int
	keepOrder  bool
}

// NewCooccurrence builds a Cooccurrence featurizer from its trained model.
func NewCooccurrence(m model.CooccurrenceVectorizer) (*Cooccurrence, error) {
	pairs := make(map[int][2]string, len(m.WordPairs))
	dim := 0
	for idxStr, pair := range m.WordPairs {
		idx, err := strconv.Atoi(idxStr)
		if err != nil {
			return nil, fmt.Errorf("parsing cooccurrence word pair index %q: %w", idxStr, err)
		}
		pairs[idx] = pair
		if idx+1 > dim {
			dim = idx + 1
		}
	}

	windowSize := defaultWindowSize
	if m.Config.WindowSize != nil {
		windowSize = *m.Config.WindowSize
	}

	// keep_order is absent from older trained models; default to ordered
	// pairs per the spec's Open Question resolution (see SPEC_FULL.md §4.3).
	keepOrder := true
	if m.Config.KeepOrder != nil {
		keepOrder = *m.Config.KeepOrder
	}

	return &Cooccurrence{pairs: pairs, dim: dim, windowSize: windowSize, keepOrder: keepOrder}, nil
}

// Dim is the number of features this sub-model contributes.
func (c *Cooccurrence) Dim() int { return c.dim }

// fill sets out[idx] to 1 for every trained pair found co-occurring in words
// within the configured window.
func (c *Cooccurrence) fill(words []string, out []float32) {
	positions := make(map[string][]int)
	for i, w := range words {
		positions[w] = append(positions[w], i)
	}

	for idx, pair := range c.pairs {
		if idx >= len(out) {
			continue
		}
		if c.coOccurs(positions, pair[0], pair[1]) {
			out[idx] = 1
		}
	}
}

func (c *Cooccurrence) coOccurs(positions map[string][]int, a, b string) bool {
	for _, pa := range positions[a] {
		for _, pb := range positions[b] {
			if c.keepOrder && pb <= pa {
				continue
			}
			delta := pb - pa
			if delta < 0 {
				delta = -delta
			}
			if delta <= c.windowSize {
				return true
			}
		}
	}
	return false
}
