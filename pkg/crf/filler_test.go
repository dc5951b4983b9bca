package crf

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/snipsco/snips-nlu-go/pkg/crf/linearchain"
	"github.com/snipsco/snips-nlu-go/pkg/language"
	"github.com/snipsco/snips-nlu-go/pkg/model"
	"github.com/snipsco/snips-nlu-go/pkg/resources"
	"github.com/snipsco/snips-nlu-go/pkg/tagging"
)

func TestSlotFiller_Tag(t *testing.T) {
	bCity := EncodeTag("B-city")
	oTag := EncodeTag("O")

	wt := &WeightTable{
		Labels: []string{oTag, bCity},
		Emission: map[string]float64{
			EmissionKey(bCity, "ngram_1[+0]=paris"): 10,
			EmissionKey(oTag, "ngram_1[+0]=go"):      5,
			EmissionKey(oTag, "ngram_1[+0]=to"):      5,
		},
		Transition: map[string]float64{
			TransitionKey(oTag, oTag):  1,
			TransitionKey(oTag, bCity): 1,
			TransitionKey(bCity, oTag): 1,
		},
	}
	tagger := linearchain.New(wt)
	offsetters, err := BuildOffsetters([]model.FeatureFactoryConfig{
		{FactoryName: "ngram", Args: map[string]any{"n": 1.0}, Offsets: []int{0}},
	}, &resources.Resources{})
	require.NoError(t, err)

	filler := NewSlotFiller(tagger, offsetters, tagging.BIO, map[string]string{"city": "locality"}, language.EN, &resources.Resources{})

	slots, err := filler.Tag("go to paris", nil, nil)
	require.NoError(t, err)
	require.Len(t, slots, 1)
	assert.Equal(t, "paris", slots[0].Value)
	assert.Equal(t, "locality", slots[0].Entity)
	assert.Equal(t, "city", slots[0].SlotName)
}
