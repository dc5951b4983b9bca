package resources

import (
	"strings"

	porterstemmer "github.com/blevesearch/go-porterstemmer"
)

// Stemmer normalises a token to its stem. Exact dictionary lookup wins;
// unseen words fall back to the algorithmic Porter stemmer so every token
// gets some normalised form (an [EXPANSION] supplement beyond the trained
// stems table, documented as an Open Question resolution).
type Stemmer interface {
	Stem(word string) string
}

type dictionaryStemmer struct {
	dict map[string]string
}

// NewStemmer builds a Stemmer backed by dict, falling back to
// go-porterstemmer for words the dictionary doesn't cover.
func NewStemmer(dict map[string]string) Stemmer {
	return &dictionaryStemmer{dict: dict}
}

func (s *dictionaryStemmer) Stem(word string) string {
	lower := strings.ToLower(word)
	if stem, ok := s.dict[lower]; ok {
		return stem
	}
	return porterstemmer.StemString(lower)
}
