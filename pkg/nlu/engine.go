// Package nlu is the engine façade (spec.md §4.10): loads a trained model
// directory, instantiates its intent parsers in model-declared order, and
// runs the parse cascade — the single entry point an embedding application
// uses.
package nlu

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sort"

	"github.com/snipsco/snips-nlu-go/pkg/entities/builtin"
	"github.com/snipsco/snips-nlu-go/pkg/entities/cache"
	"github.com/snipsco/snips-nlu-go/pkg/entities/custom"
	"github.com/snipsco/snips-nlu-go/pkg/model"
	"github.com/snipsco/snips-nlu-go/pkg/nluerrors"
	"github.com/snipsco/snips-nlu-go/pkg/parser"
	"github.com/snipsco/snips-nlu-go/pkg/resolution"
	"github.com/snipsco/snips-nlu-go/pkg/tagging"
)

// Outcome is one alternative entry of Result: a scored intent with its
// resolved slots.
type Outcome struct {
	Intent parser.IntentResult
	Slots  []resolution.ResolvedSlot
}

// Result is the engine's Parse output (spec.md §6 "Parsing output").
type Result struct {
	Input        string
	Intent       parser.IntentResult
	Slots        []resolution.ResolvedSlot
	Alternatives []Outcome
}

// Engine is a loaded, immutable model ready to parse utterances. Safe for
// concurrent use: every collaborator it holds is either immutable after
// construction or internally synchronised (spec.md §5).
type Engine struct {
	datasetEntities map[string]model.Entity
	intentNames     map[string]bool
	parsers         []parser.IntentParser
	builtinParser   builtin.Parser
	customParser    custom.Parser
	logger          *slog.Logger
}

type loadConfig struct {
	logger        *slog.Logger
	cacheCapacity int
}

// Option configures FromPath.
type Option func(*loadConfig)

// WithLogger sets the logger the engine uses to trace cascade decisions.
// Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(c *loadConfig) { c.logger = l }
}

// WithCacheCapacity sets the entry capacity of the builtin/custom entity
// parser LRU caches. Defaults to cache.DefaultCapacity.
func WithCacheCapacity(n int) Option {
	return func(c *loadConfig) { c.cacheCapacity = n }
}

// FromPath loads a model directory, or a .zip archive of one (extracted to
// a fresh temp directory), and builds an Engine ready to Parse.
func FromPath(path string, opts ...Option) (*Engine, error) {
	cfg := &loadConfig{logger: slog.Default(), cacheCapacity: cache.DefaultCapacity}
	for _, opt := range opts {
		opt(cfg)
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}

	dir := path
	if !info.IsDir() {
		extracted, err := extractZip(path)
		if err != nil {
			return nil, err
		}
		dir = extracted
	}

	e, err := loadEngineDir(dir, cfg)
	if err != nil {
		return nil, err
	}
	cfg.logger.Debug("loaded nlu engine", "dir", dir, "parsers", len(e.parsers))
	return e, nil
}

// Parse runs the parser cascade (spec.md §4.10): the first parser with a
// named-intent outcome wins; its slots are resolved and returned. whitelist
// and blacklist are dataset intent names (nil/empty means unrestricted);
// naming an unknown intent in either is an error. When intentsAlternatives
// is positive, up to that many runner-up intents (from the aggregated
// distribution, skipping the top entry) are attached with their own
// resolved slots.
func (e *Engine) Parse(ctx context.Context, text string, whitelist, blacklist []string, intentsAlternatives, slotsAlternatives int) (*Result, error) {
	wl, err := e.effectiveWhitelist(whitelist, blacklist)
	if err != nil {
		return nil, err
	}

	var outcome parser.Outcome
	matched := false
	for i, p := range e.parsers {
		o, err := p.Parse(ctx, text, wl)
		if err != nil {
			return nil, err
		}
		outcome = o
		if o.Intent.IntentName != nil {
			e.logger.Debug("intent parser matched", "parser", i, "intent", *o.Intent.IntentName, "confidence", o.Intent.Confidence)
			matched = true
			break
		}
	}
	if !matched {
		e.logger.Debug("no intent parser matched", "parsers", len(e.parsers))
	}

	result := &Result{Input: text, Intent: outcome.Intent}
	if matched {
		resolved, err := resolution.Resolve(ctx, text, outcome.Slots, e.datasetEntities, e.builtinParser, e.customParser, slotsAlternatives)
		if err != nil {
			return nil, err
		}
		result.Slots = resolved
	}

	if intentsAlternatives > 0 {
		alts, err := e.alternatives(ctx, text, wl, intentsAlternatives, slotsAlternatives)
		if err != nil {
			return nil, err
		}
		result.Alternatives = alts
	}

	return result, nil
}

func (e *Engine) alternatives(ctx context.Context, text string, wl map[string]bool, intentsAlternatives, slotsAlternatives int) ([]Outcome, error) {
	intents, err := e.GetIntents(ctx, text)
	if err != nil {
		return nil, err
	}
	if len(intents) > 0 {
		intents = intents[1:]
	}

	var alts []Outcome
	for _, ir := range intents {
		if len(alts) >= intentsAlternatives {
			break
		}
		if ir.IntentName == nil {
			continue
		}
		if len(wl) > 0 && !wl[*ir.IntentName] {
			continue
		}
		slots, err := e.slotsForIntent(ctx, text, *ir.IntentName)
		if err != nil {
			return nil, err
		}
		resolved, err := resolution.Resolve(ctx, text, slots, e.datasetEntities, e.builtinParser, e.customParser, slotsAlternatives)
		if err != nil {
			return nil, err
		}
		alts = append(alts, Outcome{Intent: ir, Slots: resolved})
	}
	return alts, nil
}

// GetIntents aggregates every parser's full intent distribution, keeping
// the maximum confidence per intent name (and per the None class), sorted
// descending.
func (e *Engine) GetIntents(ctx context.Context, text string) ([]parser.IntentResult, error) {
	best := map[string]float32{}
	var order []string
	var noneConf float32

	for _, p := range e.parsers {
		results, err := p.GetIntents(ctx, text)
		if err != nil {
			return nil, err
		}
		for _, r := range results {
			if r.IntentName == nil {
				if r.Confidence > noneConf {
					noneConf = r.Confidence
				}
				continue
			}
			name := *r.IntentName
			cur, seen := best[name]
			if !seen {
				order = append(order, name)
			}
			if !seen || r.Confidence > cur {
				best[name] = r.Confidence
			}
		}
	}

	out := make([]parser.IntentResult, 0, len(order)+1)
	for _, name := range order {
		n := name
		out = append(out, parser.IntentResult{IntentName: &n, Confidence: best[n]})
	}
	out = append(out, parser.IntentResult{IntentName: nil, Confidence: noneConf})
	sort.SliceStable(out, func(i, j int) bool { return out[i].Confidence > out[j].Confidence })
	return out, nil
}

// slotsForIntent asks each parser in cascade order for intent's slots,
// taking the first that recognises the intent.
func (e *Engine) slotsForIntent(ctx context.Context, text, intent string) ([]tagging.InternalSlot, error) {
	var lastErr error
	for _, p := range e.parsers {
		slots, err := p.GetSlots(ctx, text, intent)
		if err == nil {
			return slots, nil
		}
		if errors.Is(err, nluerrors.ErrUnknownIntent) {
			lastErr = err
			continue
		}
		return nil, err
	}
	return nil, lastErr
}

// effectiveWhitelist resolves the whitelist/blacklist intersection (spec.md
// §4.10 step 1): nil return means unrestricted. Every named intent must
// exist in the dataset.
func (e *Engine) effectiveWhitelist(whitelist, blacklist []string) (map[string]bool, error) {
	for _, name := range whitelist {
		if !e.intentNames[name] {
			return nil, nluerrors.InvalidFilter(name)
		}
	}
	blacklisted := map[string]bool{}
	for _, name := range blacklist {
		if !e.intentNames[name] {
			return nil, nluerrors.InvalidFilter(name)
		}
		blacklisted[name] = true
	}

	if len(whitelist) == 0 && len(blacklist) == 0 {
		return nil, nil
	}

	base := whitelist
	if len(base) == 0 {
		base = make([]string, 0, len(e.intentNames))
		for name := range e.intentNames {
			base = append(base, name)
		}
	}

	result := make(map[string]bool, len(base))
	for _, name := range base {
		if !blacklisted[name] {
			result[name] = true
		}
	}
	return result, nil
}
