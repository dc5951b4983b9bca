package crf

import (
	"fmt"
	"sync"

	"github.com/snipsco/snips-nlu-go/pkg/entities"
	"github.com/snipsco/snips-nlu-go/pkg/language"
	"github.com/snipsco/snips-nlu-go/pkg/resources"
	"github.com/snipsco/snips-nlu-go/pkg/tagging"
	"github.com/snipsco/snips-nlu-go/pkg/tokenizer"
)

// SlotFiller wraps a Tagger with its feature offsetters and tag scheme,
// scoped to a single intent (spec.md §4.8). The per-token feature-map slice
// is reused across Tag calls; Tag holds mu while it fills that slice and runs
// the tagger over it, since callers may invoke Tag concurrently from
// multiple goroutines parsing different utterances.
type SlotFiller struct {
	tagger       Tagger
	offsetters   []Offsetter
	scheme       tagging.Scheme
	slotToEntity map[string]string
	lang         language.Language
	res          *resources.Resources

	mu      sync.Mutex
	scratch []map[string]string
}

// NewSlotFiller builds a SlotFiller from its trained collaborators.
func NewSlotFiller(tagger Tagger, offsetters []Offsetter, scheme tagging.Scheme, slotToEntity map[string]string, lang language.Language, res *resources.Resources) *SlotFiller {
	return &SlotFiller{
		tagger:       tagger,
		offsetters:   offsetters,
		scheme:       scheme,
		slotToEntity: slotToEntity,
		lang:         lang,
		res:          res,
	}
}

// Tag extracts per-token features for text, decodes the tag sequence, and
// resolves it to internal slots via the trained slot-to-entity mapping.
func (f *SlotFiller) Tag(text string, custom []entities.CustomResult, builtin []entities.BuiltinResult) ([]tagging.InternalSlot, error) {
	tokens := tokenizer.Tokenize(text, f.lang)
	if len(tokens) == 0 {
		return nil, nil
	}

	f.mu.Lock()
	features := f.computeFeatures(tokens, custom, builtin)

	rawTags, err := f.tagger.Tag(features)
	f.mu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("crf tagging: %w", err)
	}
	if len(rawTags) != len(tokens) {
		return nil, fmt.Errorf("crf tagger returned %d tags for %d tokens", len(rawTags), len(tokens))
	}

	tags := make([]string, len(rawTags))
	for i, t := range rawTags {
		decoded, err := DecodeTag(t)
		if err != nil {
			return nil, err
		}
		tags[i] = decoded
	}

	return tagging.TagsToSlots(text, tokens, tags, f.scheme, f.slotToEntity)
}

// computeFeatures fills the shared scratch slice; the caller must hold f.mu.
func (f *SlotFiller) computeFeatures(tokens []tokenizer.Token, custom []entities.CustomResult, builtin []entities.BuiltinResult) []map[string]string {
	if cap(f.scratch) < len(tokens) {
		f.scratch = make([]map[string]string, len(tokens))
	}
	scratch := f.scratch[:len(tokens)]

	stems := make([]string, len(tokens))
	for i, t := range tokens {
		if f.res != nil && f.res.Stemmer != nil {
			stems[i] = f.res.Stemmer.Stem(t.Value)
		} else {
			stems[i] = t.Value
		}
	}

	ctx := &Context{Tokens: tokens, Stems: stems, Custom: custom, Builtin: builtin}
	if f.res != nil {
		ctx.WordClusters = f.res.WordClusters
	}

	for i := range tokens {
		m := make(map[string]string)
		for _, off := range f.offsetters {
			off.Collect(ctx, i, m)
		}
		scratch[i] = m
	}
	return scratch
}
