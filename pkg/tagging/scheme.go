// Package tagging implements the BIO/BILOU/IO tag-scheme decoder: turning a
// tag sequence over tokens into ordered slot spans, plus the inverse
// (positive_tagging) and the per-token scheme-prefix helper used by CRF
// feature extraction. Ported from snips-nlu-rs's crf_utils.rs.
package tagging

import "fmt"

// Scheme is one of the three tagging conventions supported.
type Scheme int

const (
	IO Scheme = iota
	BIO
	BILOU
)

const (
	beginningPrefix = "B-"
	insidePrefix    = "I-"
	lastPrefix      = "L-"
	unitPrefix      = "U-"
	Outside         = "O"
)

// SchemeFromInt decodes the tagging_scheme integer stored in slot_filler.json
// (0=IO, 1=BIO, 2=BILOU).
func SchemeFromInt(i int) (Scheme, error) {
	switch i {
	case 0:
		return IO, nil
	case 1:
		return BIO, nil
	case 2:
		return BILOU, nil
	default:
		return 0, fmt.Errorf("unknown tagging scheme identifier: %d", i)
	}
}

// TagNameToSlotName strips a tag's two-character prefix ("B-", "I-", "L-",
// "U-"); Outside has no prefix to strip and is returned unchanged.
func TagNameToSlotName(tag string) string {
	if tag == Outside {
		return tag
	}
	if len(tag) <= 2 {
		return tag
	}
	return tag[2:]
}

// GetSubstitutionLabel picks a label to replace an unknown tag with: Outside
// if present among labels, else the first known label.
func GetSubstitutionLabel(labels []string) string {
	for _, l := range labels {
		if l == Outside {
			return Outside
		}
	}
	if len(labels) == 0 {
		return Outside
	}
	return labels[0]
}

// ReplaceBuiltinTags replaces tags whose slot name is a builtin slot with
// Outside, preserving every other tag. Used by the augmentation step in the
// CRF slot filler (spec.md §4.8) before builtin-entity sub-parsing.
func ReplaceBuiltinTags(tags []string, builtinSlotNames map[string]bool) []string {
	out := make([]string, len(tags))
	for i, tag := range tags {
		if tag == Outside {
			out[i] = tag
			continue
		}
		if builtinSlotNames[TagNameToSlotName(tag)] {
			out[i] = Outside
		} else {
			out[i] = tag
		}
	}
	return out
}

// PositiveTagging returns the canonical tag sequence of the given length for
// a slot under the given scheme (e.g. BIO: "B-X I-X I-X").
func PositiveTagging(scheme Scheme, slotName string, length int) []string {
	if slotName == Outside {
		tags := make([]string, length)
		for i := range tags {
			tags[i] = Outside
		}
		return tags
	}
	switch scheme {
	case IO:
		tags := make([]string, length)
		for i := range tags {
			tags[i] = insidePrefix + slotName
		}
		return tags
	case BIO:
		if length == 0 {
			return nil
		}
		tags := make([]string, length)
		tags[0] = beginningPrefix + slotName
		for i := 1; i < length; i++ {
			tags[i] = insidePrefix + slotName
		}
		return tags
	case BILOU:
		switch length {
		case 0:
			return nil
		case 1:
			return []string{unitPrefix + slotName}
		default:
			tags := make([]string, length)
			tags[0] = beginningPrefix + slotName
			for i := 1; i < length-1; i++ {
				tags[i] = insidePrefix + slotName
			}
			tags[length-1] = lastPrefix + slotName
			return tags
		}
	default:
		return nil
	}
}

// GetSchemePrefix chooses the prefix for token position index given the
// full ordered list of token indexes covered by a span.
func GetSchemePrefix(index int, indexes []int, scheme Scheme) string {
	switch scheme {
	case IO:
		return insidePrefix
	case BIO:
		if len(indexes) > 0 && index == indexes[0] {
			return beginningPrefix
		}
		return insidePrefix
	case BILOU:
		if len(indexes) == 1 {
			return unitPrefix
		}
		if len(indexes) > 0 && index == indexes[0] {
			return beginningPrefix
		}
		if len(indexes) > 0 && index == indexes[len(indexes)-1] {
			return lastPrefix
		}
		return insidePrefix
	default:
		return insidePrefix
	}
}

func isStart(scheme Scheme, tags []string, i int) bool {
	switch scheme {
	case IO:
		return isStartOfIO(tags, i)
	case BIO:
		return isStartOfBIO(tags, i)
	case BILOU:
		return isStartOfBILOU(tags, i)
	default:
		return false
	}
}

func isEnd(scheme Scheme, tags []string, i int) bool {
	switch scheme {
	case IO:
		return isEndOfIO(tags, i)
	case BIO:
		return isEndOfBIO(tags, i)
	case BILOU:
		return isEndOfBILOU(tags, i)
	default:
		return false
	}
}

func isStartOfIO(tags []string, i int) bool {
	if i == 0 {
		return tags[i] != Outside
	}
	if tags[i] == Outside {
		return false
	}
	return tags[i-1] == Outside
}

func isEndOfIO(tags []string, i int) bool {
	if i+1 == len(tags) {
		return tags[i] != Outside
	}
	if tags[i] == Outside {
		return false
	}
	return tags[i+1] == Outside
}

func hasPrefix(tag, prefix string) bool {
	return len(tag) >= len(prefix) && tag[:len(prefix)] == prefix
}

func isStartOfBIO(tags []string, i int) bool {
	if i == 0 {
		return tags[i] != Outside
	}
	if tags[i] == Outside {
		return false
	}
	if hasPrefix(tags[i], beginningPrefix) {
		return true
	}
	if tags[i-1] != Outside {
		return false
	}
	return true
}

func isEndOfBIO(tags []string, i int) bool {
	if i+1 == len(tags) {
		return tags[i] != Outside
	}
	if tags[i] == Outside {
		return false
	}
	if hasPrefix(tags[i+1], insidePrefix) {
		return false
	}
	return true
}

func isStartOfBILOU(tags []string, i int) bool {
	if i == 0 {
		return tags[i] != Outside
	}
	if tags[i] == Outside {
		return false
	}
	if hasPrefix(tags[i], beginningPrefix) {
		return true
	}
	if hasPrefix(tags[i], unitPrefix) {
		return true
	}
	if hasPrefix(tags[i-1], unitPrefix) {
		return true
	}
	if hasPrefix(tags[i-1], lastPrefix) {
		return true
	}
	if tags[i-1] != Outside {
		return false
	}
	return true
}

func isEndOfBILOU(tags []string, i int) bool {
	if i+1 == len(tags) {
		return tags[i] != Outside
	}
	if tags[i] == Outside {
		return false
	}
	if tags[i+1] == Outside {
		return true
	}
	if hasPrefix(tags[i], lastPrefix) {
		return true
	}
	if hasPrefix(tags[i], unitPrefix) {
		return true
	}
	if hasPrefix(tags[i+1], beginningPrefix) {
		return true
	}
	if hasPrefix(tags[i+1], unitPrefix) {
		return true
	}
	return false
}
