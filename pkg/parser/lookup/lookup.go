// Package lookup implements the hash-table intent parser (spec.md §4.7):
// utterances are preprocessed (entity placeholders substituted, stop-words
// stripped) and hashed to a 32-bit key; the trained table maps that key to
// an intent id and a fixed list of slot ids. Ported from
// original_source/src/intent_parser/lookup_intent_parser.rs.
package lookup

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/snipsco/snips-nlu-go/pkg/entities"
	"github.com/snipsco/snips-nlu-go/pkg/entities/builtin"
	"github.com/snipsco/snips-nlu-go/pkg/entities/custom"
	"github.com/snipsco/snips-nlu-go/pkg/hashutil"
	"github.com/snipsco/snips-nlu-go/pkg/language"
	"github.com/snipsco/snips-nlu-go/pkg/model"
	"github.com/snipsco/snips-nlu-go/pkg/nluerrors"
	"github.com/snipsco/snips-nlu-go/pkg/parser"
	"github.com/snipsco/snips-nlu-go/pkg/placeholder"
	"github.com/snipsco/snips-nlu-go/pkg/resources"
	"github.com/snipsco/snips-nlu-go/pkg/span"
	"github.com/snipsco/snips-nlu-go/pkg/tagging"
	"github.com/snipsco/snips-nlu-go/pkg/tokenizer"
)

type tableEntry struct {
	intentID int
	slotIDs  []int
}

// Lookup is the hash-table intent parser.
type Lookup struct {
	lang         language.Language
	slotsNames   []string
	intentsNames []string
	table        map[int32]tableEntry

	stopWords         map[string]bool
	specificStopWords map[string]map[string]bool

	entityScopes []model.GroupedEntityScope

	builtinParser builtin.Parser
	customParser  custom.Parser
}

// New builds a Lookup parser from its trained model, the engine's shared
// entity-parser handles, and shared resources (for the stop-word list).
func New(m model.LookupParser, bp builtin.Parser, cp custom.Parser, res *resources.Resources) (*Lookup, error) {
	lang, err := language.Parse(m.LanguageCode)
	if err != nil {
		return nil, err
	}

	table, err := decodeTable(m.Map)
	if err != nil {
		return nil, err
	}

	stopWords := map[string]bool{}
	if m.Config.IgnoreStopWords && res != nil {
		stopWords = res.StopWords
	}

	specific := make(map[string]map[string]bool, len(m.StopWordsWhitelist))
	for intent, whitelist := range m.StopWordsWhitelist {
		allowed := make(map[string]bool, len(whitelist))
		for _, w := range whitelist {
			allowed[strings.ToLower(w)] = true
		}
		diff := make(map[string]bool)
		for w := range stopWords {
			if !allowed[w] {
				diff[w] = true
			}
		}
		specific[intent] = diff
	}

	return &Lookup{
		lang:              lang,
		slotsNames:        m.SlotsNames,
		intentsNames:      m.IntentsNames,
		table:             table,
		stopWords:         stopWords,
		specificStopWords: specific,
		entityScopes:      m.EntityScopes,
		builtinParser:     bp,
		customParser:      cp,
	}, nil
}

func decodeTable(raw map[string][2]any) (map[int32]tableEntry, error) {
	table := make(map[int32]tableEntry, len(raw))
	for key, val := range raw {
		hash, err := strconv.ParseInt(key, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("lookup table key %q: not an integer hash: %w", key, err)
		}
		intentIDf, ok := val[0].(float64)
		if !ok {
			return nil, fmt.Errorf("lookup table entry %q: intent id is not numeric", key)
		}
		rawSlots, ok := val[1].([]any)
		if !ok {
			return nil, fmt.Errorf("lookup table entry %q: slot ids are not a list", key)
		}
		slotIDs := make([]int, len(rawSlots))
		for i, s := range rawSlots {
			sf, ok := s.(float64)
			if !ok {
				return nil, fmt.Errorf("lookup table entry %q: slot id %d is not numeric", key, i)
			}
			slotIDs[i] = int(sf)
		}
		table[int32(hash)] = tableEntry{intentID: int(intentIDf), slotIDs: slotIDs}
	}
	return table, nil
}

// Parse returns the lookup parser's best outcome for text.
func (l *Lookup) Parse(ctx context.Context, text string, whitelist map[string]bool) (parser.Outcome, error) {
	outcomes, scores, err := l.parseTopIntents(ctx, text, 1, whitelist)
	if err != nil {
		return parser.Outcome{}, err
	}
	if len(outcomes) == 0 || scores[0] <= 0.5 {
		return noneOutcome(), nil
	}
	return outcomes[0], nil
}

// GetIntents returns the full intent distribution, including every dataset
// intent not matched (confidence 0) and a trailing None entry — the lookup
// table never matches the None class itself.
func (l *Lookup) GetIntents(ctx context.Context, text string) ([]parser.IntentResult, error) {
	outcomes, scores, err := l.parseTopIntents(ctx, text, len(l.intentsNames), nil)
	if err != nil {
		return nil, err
	}

	matched := make(map[string]bool, len(outcomes))
	results := make([]parser.IntentResult, 0, len(l.intentsNames)+1)
	for i, o := range outcomes {
		results = append(results, parser.IntentResult{IntentName: o.Intent.IntentName, Confidence: scores[i]})
		if o.Intent.IntentName != nil {
			matched[*o.Intent.IntentName] = true
		}
	}
	for _, name := range l.intentsNames {
		if !matched[name] {
			n := name
			results = append(results, parser.IntentResult{IntentName: &n, Confidence: 0})
		}
	}
	results = append(results, parser.IntentResult{IntentName: nil, Confidence: 0})
	return results, nil
}

// GetSlots returns the slots the lookup parser would extract for text,
// restricted to the named intent.
func (l *Lookup) GetSlots(ctx context.Context, text string, intent string) ([]tagging.InternalSlot, error) {
	if !containsStr(l.intentsNames, intent) {
		return nil, nluerrors.Unknown(intent)
	}
	outcome, err := l.Parse(ctx, text, map[string]bool{intent: true})
	if err != nil {
		return nil, err
	}
	return outcome.Slots, nil
}

func noneOutcome() parser.Outcome {
	return parser.Outcome{Intent: parser.IntentResult{IntentName: nil, Confidence: 1.0}}
}

// parseTopIntents is the shared core of Parse and GetIntents: it returns up
// to topN outcomes (and their normalised scores), sorted descending.
func (l *Lookup) parseTopIntents(ctx context.Context, input string, topN int, whitelist map[string]bool) ([]parser.Outcome, []float32, error) {
	type scored struct {
		outcome parser.Outcome
		score   float32
	}
	best := map[string]scored{}

	for _, group := range l.entityScopes {
		var intentGroup []string
		for _, intent := range group.IntentGroup {
			if len(whitelist) == 0 || whitelist[intent] {
				intentGroup = append(intentGroup, intent)
			}
		}
		if len(intentGroup) == 0 {
			continue
		}

		allEntities, err := l.allEntities(ctx, input, group.EntityScope)
		if err != nil {
			return nil, nil, err
		}

		seen := map[string]bool{}
		for _, subset := range combinations(allEntities) {
			processedText := replaceEntitiesWithPlaceholders(input, subset)
			for _, intent := range intentGroup {
				cleanedText := l.preprocessText(input, intent)
				cleanedProcessed := l.preprocessText(processedText, intent)

				for _, cand := range []struct {
					text string
					ents []entities.MatchedEntity
				}{
					{cleanedText, nil},
					{cleanedProcessed, subset},
				} {
					key := candidateKey(cand.text, cand.ents)
					if seen[key] {
						continue
					}
					seen[key] = true

					outcome, ok, err := l.lookupCandidate(input, cand.text, cand.ents, whitelist)
					if err != nil {
						return nil, nil, err
					}
					if !ok {
						continue
					}
					name := *outcome.Intent.IntentName
					score := 1.0 / float32(1+len(outcome.Slots))
					if prev, exists := best[name]; !exists || score > prev.score {
						best[name] = scored{outcome: outcome, score: score}
					}
				}
			}
		}
	}

	items := make([]scored, 0, len(best))
	var total float32
	for _, s := range best {
		items = append(items, s)
		total += s.score
	}
	if total == 0 {
		return nil, nil, nil
	}
	for i := range items {
		items[i].score /= total
	}
	sort.SliceStable(items, func(i, j int) bool { return items[i].score > items[j].score })
	if topN < len(items) {
		items = items[:topN]
	}

	outcomes := make([]parser.Outcome, len(items))
	scores := make([]float32, len(items))
	for i, it := range items {
		outcomes[i] = it.outcome
		scores[i] = it.score
	}
	return outcomes, scores, nil
}

func (l *Lookup) lookupCandidate(originalInput, candidateText string, ents []entities.MatchedEntity, whitelist map[string]bool) (parser.Outcome, bool, error) {
	key := hashutil.Hash32(candidateText)
	entry, ok := l.table[key]
	if !ok {
		return parser.Outcome{}, false, nil
	}
	if len(entry.slotIDs) != len(ents) {
		return parser.Outcome{}, false, nil
	}
	if entry.intentID < 0 || entry.intentID >= len(l.intentsNames) {
		return parser.Outcome{}, false, fmt.Errorf("lookup table intent id %d out of range", entry.intentID)
	}
	intentName := l.intentsNames[entry.intentID]
	if len(whitelist) > 0 && !whitelist[intentName] {
		return parser.Outcome{}, false, nil
	}

	slots := make([]tagging.InternalSlot, 0, len(ents))
	for i, slotID := range entry.slotIDs {
		if slotID < 0 || slotID >= len(l.slotsNames) {
			return parser.Outcome{}, false, fmt.Errorf("lookup table slot id %d out of range", slotID)
		}
		ent := ents[i]
		slots = append(slots, tagging.InternalSlot{
			Value:     span.Slice(originalInput, ent.Range),
			CharRange: ent.Range,
			Entity:    ent.EntityName,
			SlotName:  l.slotsNames[slotID],
		})
	}

	return parser.Outcome{
		Intent: parser.IntentResult{IntentName: &intentName, Confidence: 1.0},
		Slots:  slots,
	}, true, nil
}

func (l *Lookup) allEntities(ctx context.Context, input string, scope model.EntityScope) ([]entities.MatchedEntity, error) {
	var all []entities.MatchedEntity

	if len(scope.Builtin) > 0 && l.builtinParser != nil {
		results, err := l.builtinParser.Parse(ctx, input, scope.Builtin)
		if err != nil {
			return nil, fmt.Errorf("lookup parser builtin extraction: %w", err)
		}
		for _, r := range results {
			all = append(all, entities.MatchedEntity{Range: r.Range, EntityName: r.Kind})
		}
	}
	if len(scope.Custom) > 0 && l.customParser != nil {
		results, err := l.customParser.Parse(ctx, input, scope.Custom)
		if err != nil {
			return nil, fmt.Errorf("lookup parser custom extraction: %w", err)
		}
		for _, r := range results {
			all = append(all, entities.MatchedEntity{Range: r.Range, EntityName: r.EntityName})
		}
	}

	return dedupEntities(all), nil
}

// preprocessText tokenises light-style, drops the intent's stop-words, and
// lowercases the joined result.
func (l *Lookup) preprocessText(text, intent string) string {
	stopWords := l.stopWords
	if specific, ok := l.specificStopWords[intent]; ok {
		stopWords = specific
	}
	tokens := tokenizer.TokenizeLight(text)
	kept := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		if stopWords[strings.ToLower(tok)] {
			continue
		}
		kept = append(kept, tok)
	}
	return strings.ToLower(strings.Join(kept, " "))
}

func replaceEntitiesWithPlaceholders(text string, ents []entities.MatchedEntity) string {
	if len(ents) == 0 {
		return text
	}
	runes := []rune(text)
	var b strings.Builder
	cur := 0
	for _, e := range ents {
		start, end := e.Range.Start, e.Range.End
		if start < cur {
			start = cur
		}
		if start <= len(runes) {
			b.WriteString(string(runes[cur:start]))
		}
		b.WriteString(placeholder.ForEntity(e.EntityName))
		cur = end
	}
	if cur < len(runes) {
		b.WriteString(string(runes[cur:]))
	}
	return b.String()
}

// dedupEntities resolves overlapping matches by keeping the longest span in
// characters (ties: earliest start), then re-sorts by start so downstream
// placeholder substitution can assume ascending order.
func dedupEntities(ents []entities.MatchedEntity) []entities.MatchedEntity {
	if len(ents) < 2 {
		return ents
	}
	ordered := make([]entities.MatchedEntity, len(ents))
	copy(ordered, ents)
	sort.SliceStable(ordered, func(i, j int) bool {
		li, lj := ordered[i].Range.Len(), ordered[j].Range.Len()
		if li != lj {
			return li > lj
		}
		return ordered[i].Range.Start < ordered[j].Range.Start
	})
	var kept []entities.MatchedEntity
	for _, e := range ordered {
		overlaps := false
		for _, k := range kept {
			if e.Range.Overlaps(k.Range) {
				overlaps = true
				break
			}
		}
		if !overlaps {
			kept = append(kept, e)
		}
	}
	sort.SliceStable(kept, func(i, j int) bool { return kept[i].Range.Start < kept[j].Range.Start })
	return kept
}

// combinations returns every subset of items (including the empty subset
// first), preserving each item's relative order — mirroring
// get_items_combinations in the original engine. Entity counts per
// utterance are small in practice; this is exponential in the worst case,
// matching the original implementation's own complexity.
func combinations(items []entities.MatchedEntity) [][]entities.MatchedEntity {
	n := len(items)
	result := make([][]entities.MatchedEntity, 0, 1<<uint(n))
	result = append(result, nil)
	for mask := 1; mask < (1 << uint(n)); mask++ {
		var subset []entities.MatchedEntity
		for i := 0; i < n; i++ {
			if mask&(1<<uint(i)) != 0 {
				subset = append(subset, items[i])
			}
		}
		result = append(result, subset)
	}
	return result
}

func candidateKey(text string, ents []entities.MatchedEntity) string {
	var b strings.Builder
	b.WriteString(text)
	for _, e := range ents {
		fmt.Fprintf(&b, "\x00%d:%d:%s", e.Range.Start, e.Range.End, e.EntityName)
	}
	return b.String()
}

func containsStr(haystack []string, needle string) bool {
	for _, h := range haystack {
		if h == needle {
			return true
		}
	}
	return false
}
