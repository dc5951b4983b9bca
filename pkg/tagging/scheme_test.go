package tagging_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/snipsco/snips-nlu-go/pkg/language"
	"github.com/snipsco/snips-nlu-go/pkg/span"
	"github.com/snipsco/snips-nlu-go/pkg/tagging"
	"github.com/snipsco/snips-nlu-go/pkg/tokenizer"
)

const animal = "animal"

func tagsToSlots(t *testing.T, text string, tags []string, scheme tagging.Scheme) []tagging.InternalSlot {
	t.Helper()
	toks := tokenizer.Tokenize(text, language.EN)
	slots, err := tagging.TagsToSlots(text, toks, tags, scheme, map[string]string{animal: animal})
	require.NoError(t, err)
	return slots
}

func TestIOTagsToSlots(t *testing.T) {
	cases := []struct {
		text     string
		tags     []string
		expected []tagging.InternalSlot
	}{
		{"", nil, nil},
		{"nothing here", []string{"O", "O"}, nil},
		{
			"i am a blue bird",
			[]string{"O", "O", "O", "I-animal", "I-animal"},
			[]tagging.InternalSlot{{Value: "blue bird", CharRange: span.Range{Start: 7, End: 16}, Entity: animal, SlotName: animal}},
		},
		{
			"i am a bird",
			[]string{"O", "O", "O", "I-animal"},
			[]tagging.InternalSlot{{Value: "bird", CharRange: span.Range{Start: 7, End: 11}, Entity: animal, SlotName: animal}},
		},
		{
			"bird",
			[]string{"I-animal"},
			[]tagging.InternalSlot{{Value: "bird", CharRange: span.Range{Start: 0, End: 4}, Entity: animal, SlotName: animal}},
		},
		{
			"blue bird",
			[]string{"I-animal", "I-animal"},
			[]tagging.InternalSlot{{Value: "blue bird", CharRange: span.Range{Start: 0, End: 9}, Entity: animal, SlotName: animal}},
		},
		{
			"bird birdy",
			[]string{"I-animal", "I-animal"},
			[]tagging.InternalSlot{{Value: "bird birdy", CharRange: span.Range{Start: 0, End: 10}, Entity: animal, SlotName: animal}},
		},
	}

	for _, c := range cases {
		slots := tagsToSlots(t, c.text, c.tags, tagging.IO)
		assert.Equal(t, c.expected, slots, c.text)
	}
}

func TestBIOTagsToSlots(t *testing.T) {
	cases := []struct {
		text     string
		tags     []string
		expected []tagging.InternalSlot
	}{
		{"", nil, nil},
		{"nothing here", []string{"O", "O"}, nil},
		{
			"i am a blue bird",
			[]string{"O", "O", "O", "B-animal", "I-animal"},
			[]tagging.InternalSlot{{Value: "blue bird", CharRange: span.Range{Start: 7, End: 16}, Entity: animal, SlotName: animal}},
		},
		{
			"blue bird and white bird",
			[]string{"B-animal", "I-animal", "O", "I-animal", "I-animal"},
			[]tagging.InternalSlot{
				{Value: "blue bird", CharRange: span.Range{Start: 0, End: 9}, Entity: animal, SlotName: animal},
				{Value: "white bird", CharRange: span.Range{Start: 14, End: 24}, Entity: animal, SlotName: animal},
			},
		},
		{
			"bird birdy",
			[]string{"B-animal", "B-animal"},
			[]tagging.InternalSlot{
				{Value: "bird", CharRange: span.Range{Start: 0, End: 4}, Entity: animal, SlotName: animal},
				{Value: "birdy", CharRange: span.Range{Start: 5, End: 10}, Entity: animal, SlotName: animal},
			},
		},
	}

	for _, c := range cases {
		slots := tagsToSlots(t, c.text, c.tags, tagging.BIO)
		assert.Equal(t, c.expected, slots, c.text)
	}
}

func TestBILOUTagsToSlots(t *testing.T) {
	cases := []struct {
		text     string
		tags     []string
		expected []tagging.InternalSlot
	}{
		{"bird", []string{"U-animal"}, []tagging.InternalSlot{{Value: "bird", CharRange: span.Range{Start: 0, End: 4}, Entity: animal, SlotName: animal}}},
		{
			"blue bird",
			[]string{"B-animal", "L-animal"},
			[]tagging.InternalSlot{{Value: "blue bird", CharRange: span.Range{Start: 0, End: 9}, Entity: animal, SlotName: animal}},
		},
		{
			"light bird bird blue bird",
			[]string{"B-animal", "I-animal", "U-animal", "B-animal", "I-animal"},
			[]tagging.InternalSlot{
				{Value: "light bird", CharRange: span.Range{Start: 0, End: 10}, Entity: animal, SlotName: animal},
				{Value: "bird", CharRange: span.Range{Start: 11, End: 15}, Entity: animal, SlotName: animal},
				{Value: "blue bird", CharRange: span.Range{Start: 16, End: 25}, Entity: animal, SlotName: animal},
			},
		},
		{
			"bird bird bird",
			[]string{"L-animal", "B-animal", "U-animal"},
			[]tagging.InternalSlot{
				{Value: "bird", CharRange: span.Range{Start: 0, End: 4}, Entity: animal, SlotName: animal},
				{Value: "bird", CharRange: span.Range{Start: 5, End: 9}, Entity: animal, SlotName: animal},
				{Value: "bird", CharRange: span.Range{Start: 10, End: 14}, Entity: animal, SlotName: animal},
			},
		},
	}

	for _, c := range cases {
		slots := tagsToSlots(t, c.text, c.tags, tagging.BILOU)
		assert.Equal(t, c.expected, slots, c.text)
	}
}

func TestGetSchemePrefix(t *testing.T) {
	indexes := []int{3, 4, 5}
	assert.Equal(t, "I-", tagging.GetSchemePrefix(5, indexes, tagging.IO))
	assert.Equal(t, "B-", tagging.GetSchemePrefix(3, indexes, tagging.BIO))
	assert.Equal(t, "I-", tagging.GetSchemePrefix(4, indexes, tagging.BIO))
	assert.Equal(t, "B-", tagging.GetSchemePrefix(3, indexes, tagging.BILOU))
	assert.Equal(t, "I-", tagging.GetSchemePrefix(4, indexes, tagging.BILOU))
	assert.Equal(t, "L-", tagging.GetSchemePrefix(5, indexes, tagging.BILOU))
	assert.Equal(t, "U-", tagging.GetSchemePrefix(1, []int{1}, tagging.BILOU))
}

func TestPositiveTagging(t *testing.T) {
	assert.Equal(t, []string{"I-animal", "I-animal", "I-animal"}, tagging.PositiveTagging(tagging.IO, animal, 3))
	assert.Equal(t, []string{"B-animal", "I-animal", "I-animal"}, tagging.PositiveTagging(tagging.BIO, animal, 3))
	assert.Equal(t, []string{"B-animal", "I-animal", "L-animal"}, tagging.PositiveTagging(tagging.BILOU, animal, 3))
	assert.Equal(t, []string{"U-animal"}, tagging.PositiveTagging(tagging.BILOU, animal, 1))
}

func TestPositiveTaggingRoundTrip(t *testing.T) {
	for _, scheme := range []tagging.Scheme{tagging.IO, tagging.BIO, tagging.BILOU} {
		for n := 1; n <= 5; n++ {
			tags := tagging.PositiveTagging(scheme, animal, n)
			require.Len(t, tags, n)
			// Build a trivial text with n one-char tokens separated by spaces.
			words := make([]string, n)
			for i := range words {
				words[i] = "w"
			}
			text := ""
			for i, w := range words {
				if i > 0 {
					text += " "
				}
				text += w
			}
			slots := tagsToSlotsRaw(t, text, tags, scheme)
			require.Len(t, slots, 1)
			assert.Equal(t, animal, slots[0].SlotName)
			assert.Equal(t, span.Range{Start: 0, End: len(text)}, slots[0].CharRange)
		}
	}
}

func tagsToSlotsRaw(t *testing.T, text string, tags []string, scheme tagging.Scheme) []tagging.InternalSlot {
	t.Helper()
	toks := tokenizer.Tokenize(text, language.EN)
	slots, err := tagging.TagsToSlots(text, toks, tags, scheme, map[string]string{animal: animal})
	require.NoError(t, err)
	return slots
}

func TestSchemeFromInt(t *testing.T) {
	s, err := tagging.SchemeFromInt(1)
	require.NoError(t, err)
	assert.Equal(t, tagging.BIO, s)

	_, err = tagging.SchemeFromInt(9)
	require.Error(t, err)
}
