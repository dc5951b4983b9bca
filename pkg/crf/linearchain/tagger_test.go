package linearchain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/snipsco/snips-nlu-go/pkg/crf"
)

func TestTagger_PrefersTrainedEmissionAndTransition(t *testing.T) {
	model := &crf.WeightTable{
		Labels: []string{"O", "B-city"},
		Emission: map[string]float64{
			crf.EmissionKey("B-city", "word=paris"): 10,
			crf.EmissionKey("O", "word=paris"):       0,
			crf.EmissionKey("O", "word=go"):          5,
		},
		Transition: map[string]float64{
			crf.TransitionKey("O", "B-city"): 1,
			crf.TransitionKey("O", "O"):       1,
		},
	}
	tagger := New(model)

	tags, err := tagger.Tag([]map[string]string{
		{"word": "go"},
		{"word": "paris"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"O", "B-city"}, tags)
}

func TestTagger_EmptyInput(t *testing.T) {
	tagger := New(&crf.WeightTable{Labels: []string{"O"}})
	tags, err := tagger.Tag(nil)
	require.NoError(t, err)
	assert.Empty(t, tags)
}

func TestTagger_NoLabels(t *testing.T) {
	tagger := New(&crf.WeightTable{})
	_, err := tagger.Tag([]map[string]string{{"word": "x"}})
	assert.Error(t, err)
}
