// Package custom implements the gazetteer (custom) entity parser
// collaborator named in spec.md §1/§4.1: a per-entity full-text index over
// trained surface forms, searched with a sliding window over the tokenised
// input so multi-word gazetteer entries are found as a single match.
package custom

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/mapping"

	"github.com/snipsco/snips-nlu-go/pkg/entities"
	"github.com/snipsco/snips-nlu-go/pkg/language"
	"github.com/snipsco/snips-nlu-go/pkg/span"
	"github.com/snipsco/snips-nlu-go/pkg/tokenizer"
)

// Parser extracts gazetteer entities from text.
type Parser interface {
	Parse(ctx context.Context, text string, scope []string) ([]entities.CustomResult, error)
	EntityNames() []string
}

// maxGazetteerSpan bounds the number of consecutive tokens a single
// gazetteer match can cover.
const maxGazetteerSpan = 8

// Gazetteer indexes one custom entity's surface forms for exact phrase
// matching.
type Gazetteer struct {
	entityName string
	index      bleve.Index
	lang       language.Language
}

// NewGazetteer builds an in-memory index over values, a map from each
// canonical resolved value to every surface form ("synonym") that should
// resolve to it.
func NewGazetteer(entityName string, lang language.Language, values map[string][]string) (*Gazetteer, error) {
	textField := mapping.NewTextFieldMapping()
	textField.Analyzer = "keyword"
	docMapping := mapping.NewDocumentMapping()
	docMapping.AddFieldMappingsAt("text", textField)
	docMapping.AddFieldMappingsAt("value", mapping.NewTextFieldMapping())

	indexMapping := mapping.NewIndexMapping()
	indexMapping.DefaultMapping = docMapping

	idx, err := bleve.NewMemOnly(indexMapping)
	if err != nil {
		return nil, fmt.Errorf("building gazetteer index for %q: %w", entityName, err)
	}

	id := 0
	for canonical, forms := range values {
		for _, form := range forms {
			norm := strings.ToLower(strings.TrimSpace(form))
			if norm == "" {
				continue
			}
			doc := map[string]any{"text": norm, "value": canonical}
			if err := idx.Index(fmt.Sprintf("e%d", id), doc); err != nil {
				_ = idx.Close()
				return nil, fmt.Errorf("indexing %q entry %q: %w", entityName, form, err)
			}
			id++
		}
	}

	return &Gazetteer{entityName: entityName, index: idx, lang: lang}, nil
}

// Close releases the underlying bleve index.
func (g *Gazetteer) Close() error {
	if g.index == nil {
		return nil
	}
	return g.index.Close()
}

func (g *Gazetteer) EntityNames() []string { return []string{g.entityName} }

// Parse slides a shrinking window over the tokenised text, from
// maxGazetteerSpan tokens down to one, and keeps the longest exact match
// starting at each token position.
func (g *Gazetteer) Parse(_ context.Context, text string, scope []string) ([]entities.CustomResult, error) {
	if len(scope) > 0 && !contains(scope, g.entityName) {
		return nil, nil
	}

	tokens := tokenizer.Tokenize(text, g.lang)
	if len(tokens) == 0 {
		return nil, nil
	}

	var matches []entities.CustomResult
	for start := range tokens {
		maxEnd := start + maxGazetteerSpan
		if maxEnd > len(tokens) {
			maxEnd = len(tokens)
		}
		for end := maxEnd; end > start; end-- {
			phrase := joinTokens(tokens[start:end])
			canonical, found, err := g.lookupExact(phrase)
			if err != nil {
				return nil, fmt.Errorf("querying gazetteer %q: %w", g.entityName, err)
			}
			if !found {
				continue
			}
			matches = append(matches, entities.CustomResult{
				Range:       span.Range{Start: tokens[start].CharRange.Start, End: tokens[end-1].CharRange.End},
				Value:       canonical,
				MatchedText: phrase,
				EntityName:  g.entityName,
			})
			break
		}
	}

	return dedupOverlaps(matches), nil
}

func (g *Gazetteer) lookupExact(phrase string) (string, bool, error) {
	query := bleve.NewTermQuery(strings.ToLower(phrase))
	query.SetField("text")
	req := bleve.NewSearchRequest(query)
	req.Size = 1
	req.Fields = []string{"value"}

	res, err := g.index.Search(req)
	if err != nil {
		return "", false, err
	}
	if res.Total == 0 {
		return "", false, nil
	}
	value, _ := res.Hits[0].Fields["value"].(string)
	return value, true, nil
}

func joinTokens(tokens []tokenizer.Token) string {
	var b strings.Builder
	for i, t := range tokens {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(t.Value)
	}
	return b.String()
}

func contains(haystack []string, needle string) bool {
	for _, h := range haystack {
		if h == needle {
			return true
		}
	}
	return false
}

// dedupOverlaps keeps the longest-span match at each position, preferring
// earlier matches on a length tie, then re-sorts by start — the same
// longest-wins contract pkg/tagging applies to CRF slot spans.
func dedupOverlaps(matches []entities.CustomResult) []entities.CustomResult {
	if len(matches) < 2 {
		return matches
	}
	sort.SliceStable(matches, func(i, j int) bool {
		li, lj := matches[i].Range.Len(), matches[j].Range.Len()
		if li != lj {
			return li > lj
		}
		return matches[i].Range.Start < matches[j].Range.Start
	})
	var kept []entities.CustomResult
	for _, m := range matches {
		overlap := false
		for _, k := range kept {
			if m.Range.Overlaps(k.Range) {
				overlap = true
				break
			}
		}
		if !overlap {
			kept = append(kept, m)
		}
	}
	sort.Slice(kept, func(i, j int) bool { return kept[i].Range.Start < kept[j].Range.Start })
	return kept
}
