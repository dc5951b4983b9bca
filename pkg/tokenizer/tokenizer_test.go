package tokenizer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/snipsco/snips-nlu-go/pkg/language"
	"github.com/snipsco/snips-nlu-go/pkg/tokenizer"
)

func TestTokenizeBasic(t *testing.T) {
	toks := tokenizer.Tokenize("Make me two cups of coffee please", language.EN)
	var values []string
	for _, tok := range toks {
		values = append(values, tok.Value)
	}
	assert.Equal(t, []string{"Make", "me", "two", "cups", "of", "coffee", "please"}, values)
	assert.Equal(t, 8, toks[2].CharRange.Start)
	assert.Equal(t, 11, toks[2].CharRange.End)
}

func TestTokenizeEmpty(t *testing.T) {
	assert.Empty(t, tokenizer.Tokenize("", language.EN))
	assert.Empty(t, tokenizer.Tokenize("   ", language.EN))
}

func TestTokensStringCollapsesWhitespace(t *testing.T) {
	toks := tokenizer.Tokenize("Make  me   two", language.EN)
	joined, shifts := tokenizer.TokensString(toks)
	assert.Equal(t, "Make me two", joined)
	assert.Len(t, shifts, 3)

	orig := tokenizer.ShiftToOriginal(toks, shifts, 8) // "two" starts at 8 in joined string
	assert.Equal(t, toks[2].CharRange.Start, orig)
}

func TestTokenizePunctuation(t *testing.T) {
	toks := tokenizer.Tokenize("what is one plus one?", language.EN)
	var values []string
	for _, tok := range toks {
		values = append(values, tok.Value)
	}
	assert.Equal(t, []string{"what", "is", "one", "plus", "one"}, values)
}
