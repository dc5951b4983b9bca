// Package deterministic implements the regex-battery intent parser
// (spec.md §4.6): each intent owns an ordered list of case-insensitive
// regexes with named capture groups; a match's captures resolve to slots via
// the trained group-name -> slot-name mapping. Ported from
// original_source/src/intent_parser/deterministic_intent_parser.rs.
package deterministic

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/snipsco/snips-nlu-go/pkg/entities"
	"github.com/snipsco/snips-nlu-go/pkg/entities/builtin"
	"github.com/snipsco/snips-nlu-go/pkg/entities/custom"
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

type intentEntityScope struct {
	builtin []string
	custom  []string
}

// Deterministic is the regex-battery intent parser.
type Deterministic struct {
	lang language.Language

	regexesPerIntent    map[string][]*regexp.Regexp
	groupNamesToSlots   map[string]string
	slotNamesToEntities map[string]map[string]string
	entityScopes        map[string]intentEntityScope
	intentsNames        []string

	stopWords         map[string]bool
	specificStopWords map[string]map[string]bool

	builtinParser builtin.Parser
	customParser  custom.Parser
}

// New builds a Deterministic parser from its trained model, the engine's
// shared entity-parser handles, and shared resources (for the stop-word
// list).
func New(m model.DeterministicParser, bp builtin.Parser, cp custom.Parser, res *resources.Resources) (*Deterministic, error) {
	lang, err := language.Parse(m.LanguageCode)
	if err != nil {
		return nil, err
	}

	regexesPerIntent, err := compileRegexesPerIntent(m.Patterns)
	if err != nil {
		return nil, err
	}

	builtinKinds := map[string]bool{}
	if bp != nil {
		for _, k := range bp.Kinds() {
			builtinKinds[k] = true
		}
	}

	entityScopes := make(map[string]intentEntityScope, len(m.SlotNamesToEntities))
	for intent, mapping := range m.SlotNamesToEntities {
		var scope intentEntityScope
		seenBuiltin := map[string]bool{}
		seenCustom := map[string]bool{}
		for _, entity := range mapping {
			if isBuiltinKind(entity, builtinKinds) {
				if !seenBuiltin[entity] {
					seenBuiltin[entity] = true
					scope.builtin = append(scope.builtin, entity)
				}
			} else if !seenCustom[entity] {
				seenCustom[entity] = true
				scope.custom = append(scope.custom, entity)
			}
		}
		entityScopes[intent] = scope
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

	intentsNames := make([]string, 0, len(m.SlotNamesToEntities))
	for intent := range m.SlotNamesToEntities {
		intentsNames = append(intentsNames, intent)
	}
	sort.Strings(intentsNames)

	return &Deterministic{
		lang:                lang,
		regexesPerIntent:    regexesPerIntent,
		groupNamesToSlots:   m.GroupNamesToSlotNames,
		slotNamesToEntities: m.SlotNamesToEntities,
		entityScopes:        entityScopes,
		intentsNames:        intentsNames,
		stopWords:           stopWords,
		specificStopWords:   specific,
		builtinParser:       bp,
		customParser:        cp,
	}, nil
}

// isBuiltinKind classifies an entity as a grammar (builtin) entity when the
// parser's declared kinds name it, falling back to the "snips/" naming
// convention when no builtin parser is wired (e.g. unit tests).
func isBuiltinKind(entity string, builtinKinds map[string]bool) bool {
	if len(builtinKinds) > 0 {
		return builtinKinds[entity]
	}
	return strings.HasPrefix(entity, "snips/")
}

func compileRegexesPerIntent(patterns map[string][]string) (map[string][]*regexp.Regexp, error) {
	out := make(map[string][]*regexp.Regexp, len(patterns))
	for intent, pats := range patterns {
		compiled := make([]*regexp.Regexp, 0, len(pats))
		for _, p := range pats {
			re, err := regexp.Compile("(?i)" + p)
			if err != nil {
				return nil, fmt.Errorf("deterministic parser: compiling pattern for intent %q: %w", intent, err)
			}
			compiled = append(compiled, re)
		}
		out[intent] = compiled
	}
	return out, nil
}

// Parse returns the deterministic parser's best outcome for text.
func (d *Deterministic) Parse(ctx context.Context, text string, whitelist map[string]bool) (parser.Outcome, error) {
	outcomes, scores, err := d.parseTopIntents(ctx, text, 1, whitelist)
	if err != nil {
		return parser.Outcome{}, err
	}
	if len(outcomes) == 0 || scores[0] <= 0.5 {
		return noneOutcome(), nil
	}
	return outcomes[0], nil
}

// GetIntents returns the full intent distribution, including every dataset
// intent not matched (confidence 0) and a trailing None entry — the
// deterministic parser never matches the None class itself.
func (d *Deterministic) GetIntents(ctx context.Context, text string) ([]parser.IntentResult, error) {
	outcomes, scores, err := d.parseTopIntents(ctx, text, len(d.intentsNames), nil)
	if err != nil {
		return nil, err
	}

	matched := make(map[string]bool, len(outcomes))
	results := make([]parser.IntentResult, 0, len(d.intentsNames)+1)
	for i, o := range outcomes {
		results = append(results, parser.IntentResult{IntentName: o.Intent.IntentName, Confidence: scores[i]})
		if o.Intent.IntentName != nil {
			matched[*o.Intent.IntentName] = true
		}
	}
	for _, name := range d.intentsNames {
		if !matched[name] {
			n := name
			results = append(results, parser.IntentResult{IntentName: &n, Confidence: 0})
		}
	}
	results = append(results, parser.IntentResult{IntentName: nil, Confidence: 0})
	return results, nil
}

// GetSlots returns the slots the deterministic parser would extract for
// text, restricted to the named intent.
func (d *Deterministic) GetSlots(ctx context.Context, text string, intent string) ([]tagging.InternalSlot, error) {
	if _, ok := d.regexesPerIntent[intent]; !ok {
		return nil, nluerrors.Unknown(intent)
	}
	outcome, err := d.Parse(ctx, text, map[string]bool{intent: true})
	if err != nil {
		return nil, err
	}
	return outcome.Slots, nil
}

func noneOutcome() parser.Outcome {
	return parser.Outcome{Intent: parser.IntentResult{IntentName: nil, Confidence: 1.0}}
}

// parseTopIntents is the shared core of Parse and GetIntents. For each
// intent in scope it tries every regex against the unmodified (stop-word
// blanked) input first, then against the entity-placeholder-substituted
// input; the first regex that matches either form wins for that intent. In
// rare cases several intents match ambiguously: priority goes to the fewest
// slots, via the same weighting scheme the lookup parser uses.
func (d *Deterministic) parseTopIntents(ctx context.Context, input string, topN int, whitelist map[string]bool) ([]parser.Outcome, []float32, error) {
	var results []parser.Outcome

	for _, intent := range d.intentsNames {
		if len(whitelist) > 0 && !whitelist[intent] {
			continue
		}
		regexes := d.regexesPerIntent[intent]
		if len(regexes) == 0 {
			continue
		}

		scope := d.entityScopes[intent]
		matchedEntities, err := d.matchedEntities(ctx, input, scope)
		if err != nil {
			return nil, nil, err
		}

		formattedInput, rangesMapping := replaceEntitiesWithMapping(input, matchedEntities)
		cleanedInput := d.preprocessText(input, intent)
		cleanedFormattedInput := d.preprocessText(formattedInput, intent)

		var outcome *parser.Outcome
		for _, re := range regexes {
			if o := d.getMatchingResult(input, cleanedInput, re, intent, nil); o != nil {
				outcome = o
				break
			}
			if o := d.getMatchingResult(input, cleanedFormattedInput, re, intent, rangesMapping); o != nil {
				outcome = o
				break
			}
		}
		if outcome != nil {
			results = append(results, *outcome)
		}
	}

	if len(results) == 0 {
		return nil, nil, nil
	}

	weights := make([]float32, len(results))
	var total float32
	for i, res := range results {
		weights[i] = 1.0 / float32(1+len(res.Slots))
		total += weights[i]
	}

	type scored struct {
		outcome parser.Outcome
		score   float32
	}
	items := make([]scored, len(results))
	for i, res := range results {
		items[i] = scored{outcome: res, score: weights[i] / total}
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

func (d *Deterministic) matchedEntities(ctx context.Context, input string, scope intentEntityScope) ([]entities.MatchedEntity, error) {
	var all []entities.MatchedEntity
	if len(scope.builtin) > 0 && d.builtinParser != nil {
		results, err := d.builtinParser.Parse(ctx, input, scope.builtin)
		if err != nil {
			return nil, fmt.Errorf("deterministic parser builtin extraction: %w", err)
		}
		for _, r := range results {
			all = append(all, entities.MatchedEntity{Range: r.Range, EntityName: r.Kind})
		}
	}
	if len(scope.custom) > 0 && d.customParser != nil {
		results, err := d.customParser.Parse(ctx, input, scope.custom)
		if err != nil {
			return nil, fmt.Errorf("deterministic parser custom extraction: %w", err)
		}
		for _, r := range results {
			all = append(all, entities.MatchedEntity{Range: r.Range, EntityName: r.EntityName})
		}
	}
	return all, nil
}

// preprocessText blanks out the intent's stop-word tokens with equal-length
// spaces, character-position for character-position, so regex capture
// offsets taken against the result can be read directly as offsets into the
// original string.
func (d *Deterministic) preprocessText(text, intent string) string {
	stopWords := d.stopWords
	if specific, ok := d.specificStopWords[intent]; ok {
		stopWords = specific
	}
	tokens := tokenizer.TokenizeWithSymbols(text, d.lang)
	var b strings.Builder
	current := 0
	for _, tok := range tokens {
		prefixLen := tok.CharRange.Start - current
		b.WriteString(strings.Repeat(" ", prefixLen))
		value := tok.Value
		if stopWords[strings.ToLower(value)] {
			value = strings.Repeat(" ", runeCount(value))
		}
		b.WriteString(value)
		current = tok.CharRange.End
	}
	suffixLen := runeCount(text) - current
	if suffixLen > 0 {
		b.WriteString(strings.Repeat(" ", suffixLen))
	}
	return b.String()
}

func runeCount(s string) int {
	return len([]rune(s))
}

// getMatchingResult tries the first regex match in candidateText and turns
// its named captures into slots. rangesMapping, when non-nil, translates
// captured char ranges (taken in the entity-placeholder-substituted
// coordinate space) back to the original input's coordinate space.
func (d *Deterministic) getMatchingResult(originalInput, candidateText string, re *regexp.Regexp, intent string, rangesMapping map[span.Range]span.Range) *parser.Outcome {
	loc := re.FindStringSubmatchIndex(candidateText)
	if loc == nil {
		return nil
	}

	names := re.SubexpNames()
	var slots []tagging.InternalSlot
	for i := 1; i < len(names); i++ {
		groupName := names[i]
		if groupName == "" {
			continue
		}
		start, end := loc[2*i], loc[2*i+1]
		if start < 0 || end < 0 {
			continue
		}
		baseGroup := strings.SplitN(groupName, "_", 2)[0]
		slotName, ok := d.groupNamesToSlots[baseGroup]
		if !ok {
			continue
		}
		entity, ok := d.slotNamesToEntities[intent][slotName]
		if !ok {
			continue
		}

		charRange := byteToCharRange(candidateText, start, end)
		if rangesMapping != nil {
			if orig, ok := rangesMapping[charRange]; ok {
				charRange = orig
			} else {
				charRange = charRange.Shift(getRangeShift(charRange, rangesMapping))
			}
		}

		slots = append(slots, tagging.InternalSlot{
			Value:     span.Slice(originalInput, charRange),
			CharRange: charRange,
			Entity:    entity,
			SlotName:  slotName,
		})
	}

	deduped := deduplicateOverlappingSlots(slots, d.lang)
	name := intent
	return &parser.Outcome{
		Intent: parser.IntentResult{IntentName: &name, Confidence: 1.0},
		Slots:  deduped,
	}
}

// byteToCharRange converts a byte offset pair (as returned by regexp, which
// operates on bytes) into a character-offset span.Range.
func byteToCharRange(text string, byteStart, byteEnd int) span.Range {
	charStart := len([]rune(text[:byteStart]))
	charEnd := charStart + len([]rune(text[byteStart:byteEnd]))
	return span.Range{Start: charStart, End: charEnd}
}

// getRangeShift interpolates a char-offset shift for a captured range that
// doesn't land exactly on a replaced entity's placeholder range, using the
// nearest preceding replaced range's shift.
func getRangeShift(target span.Range, rangesMapping map[span.Range]span.Range) int {
	shift := 0
	previousReplacedEnd := 0
	for replaced, orig := range rangesMapping {
		if replaced.End <= target.Start && replaced.End > previousReplacedEnd {
			previousReplacedEnd = replaced.End
			shift = orig.End - replaced.End
		}
	}
	return shift
}

// replaceEntitiesWithMapping substitutes every matched entity with its
// placeholder string and returns both the substituted text and a mapping
// from each placeholder's char range (in the substituted text) back to the
// original entity's char range.
func replaceEntitiesWithMapping(text string, ents []entities.MatchedEntity) (string, map[span.Range]span.Range) {
	if len(ents) == 0 {
		return text, nil
	}
	deduped := dedupEntities(ents)

	runes := []rune(text)
	mapping := make(map[span.Range]span.Range, len(deduped))
	var b strings.Builder
	current := 0
	offset := 0
	for _, e := range deduped {
		rangeStart := e.Range.Start + offset
		if e.Range.Start >= current && e.Range.Start <= len(runes) {
			b.WriteString(string(runes[current:e.Range.Start]))
		}
		ph := placeholder.ForEntity(e.EntityName)
		phLen := runeCount(ph)
		b.WriteString(ph)
		offset += phLen - e.Range.Len()
		rangeEnd := e.Range.End + offset
		mapping[span.Range{Start: rangeStart, End: rangeEnd}] = e.Range
		current = e.Range.End
	}
	if current < len(runes) {
		b.WriteString(string(runes[current:]))
	}
	return b.String(), mapping
}

// dedupEntities resolves overlapping matches by keeping the longest span,
// then re-sorts by start so replaceEntitiesWithMapping can assume ascending
// order.
func dedupEntities(ents []entities.MatchedEntity) []entities.MatchedEntity {
	if len(ents) < 2 {
		ordered := make([]entities.MatchedEntity, len(ents))
		copy(ordered, ents)
		return ordered
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

// deduplicateOverlappingSlots resolves overlapping slot captures, keeping
// the one with the highest combined token-count-plus-char-count score, then
// re-sorts by start.
func deduplicateOverlappingSlots(slots []tagging.InternalSlot, lang language.Language) []tagging.InternalSlot {
	if len(slots) < 2 {
		return slots
	}
	ordered := make([]tagging.InternalSlot, len(slots))
	copy(ordered, slots)
	sort.SliceStable(ordered, func(i, j int) bool {
		return slotSortScore(ordered[i], lang) > slotSortScore(ordered[j], lang)
	})
	var kept []tagging.InternalSlot
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
	sort.SliceStable(kept, func(i, j int) bool { return kept[i].CharRange.Start < kept[j].CharRange.Start })
	return kept
}

func slotSortScore(s tagging.InternalSlot, lang language.Language) int {
	tokensCount := len(tokenizer.TokenizeWithSymbols(s.Value, lang))
	charsCount := runeCount(s.Value)
	return tokensCount + charsCount
}
