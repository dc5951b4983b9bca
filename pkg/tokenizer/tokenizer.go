// Package tokenizer implements the whitespace-and-punctuation tokenisation
// described in spec.md's data model: tokens are non-overlapping, ordered, and
// their single-space join yields a canonical "tokens string" whose offsets a
// per-token shift vector can translate back to the original input.
package tokenizer

import (
	"strings"
	"unicode"

	"golang.org/x/text/transform"
	"golang.org/x/text/width"

	"github.com/snipsco/snips-nlu-go/pkg/language"
	"github.com/snipsco/snips-nlu-go/pkg/span"
)

// Token is one tokenised unit of an utterance.
type Token struct {
	Value     string
	ByteRange span.Range
	CharRange span.Range
}

// isTokenChar reports whether r participates in a token (letters, digits,
// and the underscore/apostrophe commonly found inside words). Unicode-aware:
// non-ASCII letters (accented Latin, CJK, …) count via unicode.IsLetter.
func isTokenChar(r rune) bool {
	if unicode.IsLetter(r) || unicode.IsDigit(r) {
		return true
	}
	return r == '\'' || r == '_'
}

// Tokenize splits text into ordered, non-overlapping tokens. The language
// parameter is not used: fullwidth forms are width-folded for every input and
// the boundary rule is the same for all languages.
func Tokenize(text string, _ language.Language) []Token {
	folded, _, err := transform.String(width.Fold, text)
	if err != nil {
		folded = text
	}
	runes := []rune(folded)
	orig := []rune(text)
	if len(runes) != len(orig) {
		// width folding should be rune-count preserving for our fold table;
		// fall back to the original runes if an exotic form broke that.
		runes = orig
	}

	var tokens []Token
	i := 0
	// track byte offsets against the original (unfolded) text
	runeByteStart := make([]int, len(orig)+1)
	b := 0
	for idx, r := range orig {
		runeByteStart[idx] = b
		b += len(string(r))
	}
	runeByteStart[len(orig)] = b

	for i < len(runes) {
		if !isTokenChar(runes[i]) {
			i++
			continue
		}
		start := i
		for i < len(runes) && isTokenChar(runes[i]) {
			i++
		}
		value := string(orig[start:i])
		tokens = append(tokens, Token{
			Value:     value,
			ByteRange: span.Range{Start: runeByteStart[start], End: runeByteStart[i]},
			CharRange: span.Range{Start: start, End: i},
		})
	}
	return tokens
}

// TokenizeLight splits text into word tokens and single-character
// punctuation/symbol tokens, dropping whitespace entirely — the "light"
// tokenisation the lookup and deterministic parsers use to build their hash
// and regex preprocessing keys (ported from snips-nlu-utils' tokenize_light).
// Unlike Tokenize, punctuation is never simply skipped: a placeholder like
// "%SNIPSNUMBER%" becomes three tokens ("%", "SNIPSNUMBER", "%") so that
// "hello %NAME%" preprocesses to the same "hello % name %" shape the
// training side hashed.
func TokenizeLight(text string) []string {
	runes := []rune(text)
	var tokens []string
	i := 0
	for i < len(runes) {
		r := runes[i]
		if unicode.IsSpace(r) {
			i++
			continue
		}
		if isTokenChar(r) {
			start := i
			for i < len(runes) && isTokenChar(runes[i]) {
				i++
			}
			tokens = append(tokens, string(runes[start:i]))
			continue
		}
		tokens = append(tokens, string(r))
		i++
	}
	return tokens
}

// TokenizeWithSymbols is TokenizeLight's word/punctuation boundary rule with
// char ranges retained, for callers that need to reconstruct a
// position-preserving string around the token boundaries (the deterministic
// parser's stop-word-blanking preprocessing, which must keep entity
// placeholders like "%NAME%" intact rather than treating '%' as a gap the
// way Tokenize does).
func TokenizeWithSymbols(text string, _ language.Language) []Token {
	runes := []rune(text)
	byteStart := make([]int, len(runes)+1)
	b := 0
	for i, r := range runes {
		byteStart[i] = b
		b += len(string(r))
	}
	byteStart[len(runes)] = b

	var tokens []Token
	i := 0
	for i < len(runes) {
		r := runes[i]
		if unicode.IsSpace(r) {
			i++
			continue
		}
		if isTokenChar(r) {
			start := i
			for i < len(runes) && isTokenChar(runes[i]) {
				i++
			}
			tokens = append(tokens, Token{
				Value:     string(runes[start:i]),
				ByteRange: span.Range{Start: byteStart[start], End: byteStart[i]},
				CharRange: span.Range{Start: start, End: i},
			})
			continue
		}
		tokens = append(tokens, Token{
			Value:     string(r),
			ByteRange: span.Range{Start: byteStart[i], End: byteStart[i+1]},
			CharRange: span.Range{Start: i, End: i + 1},
		})
		i++
	}
	return tokens
}

// TokensString joins token values with a single space, returning the string
// and a shift vector: shift[i] is the amount to add to an offset measured in
// the joined string at or after token i's start to recover the original
// character offset.
func TokensString(tokens []Token) (string, []int) {
	if len(tokens) == 0 {
		return "", nil
	}
	var b strings.Builder
	shifts := make([]int, len(tokens))
	joinedPos := 0
	for i, tok := range tokens {
		if i > 0 {
			b.WriteByte(' ')
			joinedPos++
		}
		shifts[i] = tok.CharRange.Start - joinedPos
		b.WriteString(tok.Value)
		joinedPos += len([]rune(tok.Value))
	}
	return b.String(), shifts
}

// ShiftToOriginal translates a character offset in the tokens string back to
// the original input using the shift vector produced by TokensString.
func ShiftToOriginal(tokens []Token, shifts []int, joinedOffset int) int {
	if len(tokens) == 0 {
		return joinedOffset
	}
	// find the last token whose joined-string start is <= joinedOffset
	idx := 0
	joinedPos := 0
	for i, tok := range tokens {
		if i > 0 {
			joinedPos++ // the separating space
		}
		if joinedPos > joinedOffset {
			break
		}
		idx = i
		joinedPos += len([]rune(tok.Value))
	}
	return joinedOffset + shifts[idx]
}
