package tagging

import (
	"fmt"
	"sort"

	"github.com/snipsco/snips-nlu-go/pkg/span"
	"github.com/snipsco/snips-nlu-go/pkg/tokenizer"
)

// SlotRange is a decoded span before it is resolved to an entity value: a
// token-index range, a character range, and the slot name recovered from the
// tag prefix.
type SlotRange struct {
	TokenRange span.Range
	CharRange  span.Range
	SlotName   string
}

// Decode turns a tag sequence over tokens into ordered slot ranges. Ill-formed
// sequences are tolerated: any non-Outside tag change is treated as a new slot
// boundary under the scheme-specific is-start/is-end predicates, matching the
// original engine's leniency (spec.md §3 invariant).
func Decode(scheme Scheme, tokens []tokenizer.Token, tags []string) ([]SlotRange, error) {
	if len(tokens) != len(tags) {
		return nil, fmt.Errorf("tagging: %d tokens but %d tags", len(tokens), len(tags))
	}
	var slots []SlotRange
	currentStart := 0
	for i, tag := range tags {
		if isStart(scheme, tags, i) {
			currentStart = i
		}
		if isEnd(scheme, tags, i) {
			slots = append(slots, SlotRange{
				TokenRange: span.Range{Start: currentStart, End: i + 1},
				CharRange:  span.Range{Start: tokens[currentStart].CharRange.Start, End: tokens[i].CharRange.End},
				SlotName:   TagNameToSlotName(tag),
			})
			currentStart = i
		}
	}
	return slots, nil
}

// InternalSlot mirrors spec.md's data model: a decoded span not yet resolved
// against an entity parser.
type InternalSlot struct {
	Value     string
	CharRange span.Range
	Entity    string
	SlotName  string
}

// RangesToSlots resolves each SlotRange's slot name to an entity name via
// slotToEntity and slices text for the raw value.
func RangesToSlots(text string, ranges []SlotRange, slotToEntity map[string]string) ([]InternalSlot, error) {
	slots := make([]InternalSlot, 0, len(ranges))
	for _, r := range ranges {
		entity, ok := slotToEntity[r.SlotName]
		if !ok {
			return nil, fmt.Errorf("missing slot to entity mapping for slot name: %s", r.SlotName)
		}
		slots = append(slots, InternalSlot{
			Value:     span.Slice(text, r.CharRange),
			CharRange: r.CharRange,
			Entity:    entity,
			SlotName:  r.SlotName,
		})
	}
	return slots, nil
}

// TagsToSlots is the composition of Decode and RangesToSlots, matching the
// original engine's tags_to_slots.
func TagsToSlots(text string, tokens []tokenizer.Token, tags []string, scheme Scheme, slotToEntity map[string]string) ([]InternalSlot, error) {
	ranges, err := Decode(scheme, tokens, tags)
	if err != nil {
		return nil, err
	}
	return RangesToSlots(text, ranges, slotToEntity)
}

// DedupOverlaps resolves overlapping slots by sorting on (token-count desc,
// char-count desc) and greedily keeping non-overlapping ones, per spec.md
// §4.2. The final list is re-sorted by CharRange.Start.
func DedupOverlaps(slots []InternalSlot) []InternalSlot {
	if len(slots) < 2 {
		return slots
	}
	ordered := make([]InternalSlot, len(slots))
	copy(ordered, slots)
	sort.SliceStable(ordered, func(i, j int) bool {
		li, lj := tokenCount(ordered[i]), tokenCount(ordered[j])
		if li != lj {
			return li > lj
		}
		return ordered[i].CharRange.Len() > ordered[j].CharRange.Len()
	})

	var kept []InternalSlot
	for _, s := range ordered {
		overlaps := false
		for _, k := range kept {
			if s.CharRange.Overlaps(k.CharRange) {
				overlaps = true
				break
			}
		}
		if !overlaps {
			kept = append(kept, s)
		}
	}

	sort.SliceStable(kept, func(i, j int) bool {
		return kept[i].CharRange.Start < kept[j].CharRange.Start
	})
	return kept
}

func tokenCount(s InternalSlot) int {
	// Token count is approximated from the value's whitespace-separated word
	// count, since InternalSlot does not retain the originating token range
	// once decoded independently of tokens (e.g. from lookup/deterministic
	// parsers that never tokenized via tagging.Decode).
	count := 0
	inWord := false
	for _, r := range s.Value {
		if r == ' ' || r == '\t' || r == '\n' {
			inWord = false
			continue
		}
		if !inWord {
			count++
			inWord = true
		}
	}
	if count == 0 {
		return 1
	}
	return count
}
