package builtin

import (
	"context"
	"regexp"
	"strconv"
	"strings"

	"github.com/snipsco/snips-nlu-go/pkg/entities"
	"github.com/snipsco/snips-nlu-go/pkg/slotvalue"
	"github.com/snipsco/snips-nlu-go/pkg/span"
)

// Kind identifiers for the grammar entities this reference implementation
// recognises. A real deployment would extract far more (dates, amounts of
// money, durations, …); this stand-in covers what the spec's worked examples
// (S1, S3, S5) exercise plus the obvious close neighbours.
const (
	KindNumber     = "snips/number"
	KindOrdinal    = "snips/ordinal"
	KindPercentage = "snips/percentage"
)

var allKinds = []string{KindNumber, KindOrdinal, KindPercentage}

var wordNumbers = map[string]float64{
	"zero": 0, "one": 1, "two": 2, "three": 3, "four": 4, "five": 5,
	"six": 6, "seven": 7, "eight": 8, "nine": 9, "ten": 10,
	"eleven": 11, "twelve": 12, "thirteen": 13, "fourteen": 14, "fifteen": 15,
	"sixteen": 16, "seventeen": 17, "eighteen": 18, "nineteen": 19, "twenty": 20,
	"thirty": 30, "forty": 40, "fifty": 50, "sixty": 60, "seventy": 70,
	"eighty": 80, "ninety": 90, "hundred": 100,
}

var wordOrdinals = map[string]int64{
	"first": 1, "second": 2, "third": 3, "fourth": 4, "fifth": 5,
	"sixth": 6, "seventh": 7, "eighth": 8, "ninth": 9, "tenth": 10,
}

var digitRe = regexp.MustCompile(`\b\d+(\.\d+)?\b`)
var percentRe = regexp.MustCompile(`\b\d+(\.\d+)?\s*(%|percent\b)`)
var wordRe = regexp.MustCompile(`[\p{L}]+`)

// Simple is a minimal grammar-entity parser standing in for the external
// collaborator spec.md §1 excludes from scope. It recognises digit literals,
// a closed set of English number/ordinal words, and "N percent"/"N%" forms.
type Simple struct{}

// NewSimple constructs the reference builtin entity parser.
func NewSimple() *Simple { return &Simple{} }

func (s *Simple) Kinds() []string { return allKinds }

func (s *Simple) Parse(_ context.Context, text string, scope []string) ([]entities.BuiltinResult, error) {
	want := scopeSet(scope)
	var out []entities.BuiltinResult

	if want == nil || want[KindPercentage] {
		out = append(out, s.matchPercentages(text)...)
	}
	if want == nil || want[KindNumber] {
		out = append(out, s.matchDigitNumbers(text)...)
		out = append(out, s.matchWordNumbers(text)...)
	}
	if want == nil || want[KindOrdinal] {
		out = append(out, s.matchWordOrdinals(text)...)
	}

	out = dedupByRange(out)
	return out, nil
}

func scopeSet(scope []string) map[string]bool {
	if len(scope) == 0 {
		return nil
	}
	m := make(map[string]bool, len(scope))
	for _, k := range scope {
		m[k] = true
	}
	return m
}

func (s *Simple) matchPercentages(text string) []entities.BuiltinResult {
	var out []entities.BuiltinResult
	for _, loc := range percentRe.FindAllStringIndex(text, -1) {
		r := byteToCharRange(text, loc[0], loc[1])
		raw := text[loc[0]:loc[1]]
		numStr := strings.TrimRight(strings.TrimSpace(strings.TrimSuffix(strings.TrimSuffix(raw, "percent"), "%")), " ")
		v, err := strconv.ParseFloat(numStr, 64)
		if err != nil {
			continue
		}
		out = append(out, entities.BuiltinResult{
			Range: r,
			Kind:  KindPercentage,
			Value: slotvalue.Value{Kind: slotvalue.Percentage, Percentage: &slotvalue.PercentagePayload{Value: v}},
		})
	}
	return out
}

func (s *Simple) matchDigitNumbers(text string) []entities.BuiltinResult {
	var out []entities.BuiltinResult
	for _, loc := range digitRe.FindAllStringIndex(text, -1) {
		raw := text[loc[0]:loc[1]]
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			continue
		}
		out = append(out, entities.BuiltinResult{
			Range: byteToCharRange(text, loc[0], loc[1]),
			Kind:  KindNumber,
			Value: slotvalue.Value{Kind: slotvalue.Number, Number: &slotvalue.NumberPayload{Value: v}},
		})
	}
	return out
}

func (s *Simple) matchWordNumbers(text string) []entities.BuiltinResult {
	var out []entities.BuiltinResult
	for _, loc := range wordRe.FindAllStringIndex(text, -1) {
		word := strings.ToLower(text[loc[0]:loc[1]])
		if v, ok := wordNumbers[word]; ok {
			out = append(out, entities.BuiltinResult{
				Range: byteToCharRange(text, loc[0], loc[1]),
				Kind:  KindNumber,
				Value: slotvalue.Value{Kind: slotvalue.Number, Number: &slotvalue.NumberPayload{Value: v}},
			})
		}
	}
	return out
}

func (s *Simple) matchWordOrdinals(text string) []entities.BuiltinResult {
	var out []entities.BuiltinResult
	for _, loc := range wordRe.FindAllStringIndex(text, -1) {
		word := strings.ToLower(text[loc[0]:loc[1]])
		if v, ok := wordOrdinals[word]; ok {
			out = append(out, entities.BuiltinResult{
				Range: byteToCharRange(text, loc[0], loc[1]),
				Kind:  KindOrdinal,
				Value: slotvalue.Value{Kind: slotvalue.Ordinal, Ordinal: &slotvalue.OrdinalPayload{Value: v}},
			})
		}
	}
	return out
}

// byteToCharRange converts a byte offset pair (as returned by regexp, which
// operates on bytes) into a character-offset span.Range.
func byteToCharRange(text string, byteStart, byteEnd int) span.Range {
	charStart := len([]rune(text[:byteStart]))
	charEnd := charStart + len([]rune(text[byteStart:byteEnd]))
	return span.Range{Start: charStart, End: charEnd}
}

func dedupByRange(in []entities.BuiltinResult) []entities.BuiltinResult {
	if len(in) < 2 {
		return in
	}
	out := make([]entities.BuiltinResult, 0, len(in))
	for _, e := range in {
		overlaps := false
		for _, k := range out {
			if e.Range.Overlaps(k.Range) {
				overlaps = true
				break
			}
		}
		if !overlaps {
			out = append(out, e)
		}
	}
	return out
}
