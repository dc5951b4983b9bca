// Package featurizer turns a preprocessed utterance into the dense feature
// vector the logistic-regression intent classifier scores (spec.md §4.3): a
// tf-idf vector over the trained vocabulary, optionally concatenated with a
// co-occurrence vector. Builtin/custom entity occurrences are folded into
// placeholder tokens before vectorisation so the vocabulary generalises
// across entity values (spec.md §9 entity placeholder convention).
package featurizer

import (
	"math"
	"strings"

	"github.com/snipsco/snips-nlu-go/pkg/entities"
	"github.com/snipsco/snips-nlu-go/pkg/language"
	"github.com/snipsco/snips-nlu-go/pkg/model"
	"github.com/snipsco/snips-nlu-go/pkg/placeholder"
	"github.com/snipsco/snips-nlu-go/pkg/resources"
	"github.com/snipsco/snips-nlu-go/pkg/span"
	"github.com/snipsco/snips-nlu-go/pkg/tokenizer"
)

// Featurizer computes the dense feature vector fed into pkg/logreg.
type Featurizer struct {
	lang               language.Language
	builtinScope       []string
	vocab              map[string]int
	idfDiag            []float32
	useStemming        bool
	wordClustersName   string
	wordClusters       map[string]string
	stemmer            resources.Stemmer
	cooccurrence       *Cooccurrence
}

// New builds a Featurizer from its trained model and the shared resource bag.
func New(m model.TfidfVectorizer, res *resources.Resources, coocc *model.CooccurrenceVectorizer) (*Featurizer, error) {
	lang, err := language.Parse(m.LanguageCode)
	if err != nil {
		return nil, err
	}

	f := &Featurizer{
		lang:         lang,
		builtinScope: m.BuiltinEntityScope,
		vocab:        m.Vectorizer.Vocab,
		idfDiag:      m.Vectorizer.IdfDiag,
		useStemming:  m.Config.UseStemming,
		stemmer:      res.Stemmer,
	}
	if m.Config.WordClustersName != nil {
		f.wordClustersName = *m.Config.WordClustersName
		f.wordClusters = res.WordClusters[f.wordClustersName]
	}
	if coocc != nil {
		cv, err := NewCooccurrence(*coocc)
		if err != nil {
			return nil, err
		}
		f.cooccurrence = cv
	}
	return f, nil
}

// BuiltinEntityScope is the set of builtin entity kinds this featurizer's
// training data was built against.
func (f *Featurizer) BuiltinEntityScope() []string { return f.builtinScope }

// Dim is the total length of vectors Transform produces.
func (f *Featurizer) Dim() int {
	d := len(f.vocab)
	if f.cooccurrence != nil {
		d += f.cooccurrence.Dim()
	}
	return d
}

// Transform computes the dense feature vector for input, given the builtin
// and custom entities already matched in it.
func (f *Featurizer) Transform(input string, builtin []entities.BuiltinResult, custom []entities.CustomResult) []float32 {
	processed := f.preprocess(input, builtin, custom)
	words := f.normalizedWords(processed)

	vec := make([]float32, f.Dim())
	counts := make(map[string]int, len(words))
	for _, w := range words {
		counts[w]++
	}
	for w, c := range counts {
		idx, ok := f.vocab[w]
		if !ok {
			continue
		}
		tf := float32(math.Log(1.0 + float64(c)))
		vec[idx] = tf * f.idf(idx)
	}

	if f.cooccurrence != nil {
		f.cooccurrence.fill(words, vec[len(f.vocab):])
	}

	l2Normalize(vec)
	return vec
}

func (f *Featurizer) idf(idx int) float32 {
	if idx < 0 || idx >= len(f.idfDiag) {
		return 1
	}
	return f.idfDiag[idx]
}

// preprocess replaces every matched entity span with its placeholder token,
// working from the end of the string backwards so earlier offsets stay
// valid.
func (f *Featurizer) preprocess(input string, builtin []entities.BuiltinResult, custom []entities.CustomResult) string {
	type replacement struct {
		r   span.Range
		txt string
	}
	var repls []replacement
	for _, b := range builtin {
		repls = append(repls, replacement{b.Range, placeholder.ForEntity(b.Kind)})
	}
	for _, c := range custom {
		repls = append(repls, replacement{c.Range, placeholder.ForEntity(c.EntityName)})
	}

	// sort by start descending so replacement doesn't shift earlier offsets
	for i := 0; i < len(repls); i++ {
		for j := i + 1; j < len(repls); j++ {
			if repls[j].r.Start > repls[i].r.Start {
				repls[i], repls[j] = repls[j], repls[i]
			}
		}
	}

	runes := []rune(input)
	for _, r := range repls {
		start, end := r.r.Start, r.r.End
		if start < 0 || end > len(runes) || start >= end {
			continue
		}
		runes = append(runes[:start], append([]rune(r.txt), runes[end:]...)...)
	}
	return string(runes)
}

func (f *Featurizer) normalizedWords(text string) []string {
	tokens := tokenizer.Tokenize(text, f.lang)
	words := make([]string, 0, len(tokens))
	for _, t := range tokens {
		w := strings.ToLower(t.Value)
		if f.useStemming && f.stemmer != nil && !strings.HasPrefix(w, "%") {
			w = f.stemmer.Stem(w)
		}
		if f.wordClusters != nil {
			if cluster, ok := f.wordClusters[w]; ok {
				words = append(words, w, cluster)
				continue
			}
		}
		words = append(words, w)
	}
	return words
}

func l2Normalize(vec []float32) {
	var sumSq float64
	for _, v := range vec {
		sumSq += float64(v) * float64(v)
	}
	if sumSq == 0 {
		return
	}
	norm := float32(math.Sqrt(sumSq))
	for i := range vec {
		vec[i] /= norm
	}
}
