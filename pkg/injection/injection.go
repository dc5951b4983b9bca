// Package injection implements entity injection (spec.md §6): adding new
// values to a trained model's custom entity gazetteers without retraining.
// Ported from original_source/src/injection/injection.rs's NluInjector
// builder, adapted to this module's on-disk custom-entity-parser format
// (pkg/entities/custom). Patches are applied file-by-file with
// tidwall/gjson/tidwall/sjson so a failure partway through a call leaves
// every already-patched entity file written.
package injection

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/snipsco/snips-nlu-go/pkg/entities/custom"
	"github.com/snipsco/snips-nlu-go/pkg/language"
	"github.com/snipsco/snips-nlu-go/pkg/model"
	"github.com/snipsco/snips-nlu-go/pkg/nluerrors"
	"github.com/snipsco/snips-nlu-go/pkg/resources"
	"github.com/snipsco/snips-nlu-go/pkg/tokenizer"
)

const grammarPrefix = "snips/"

// Injector accumulates values to add to one or more custom entities of a
// model directory, then applies them in a single Inject call.
type Injector struct {
	engineDir string
	values    map[string][]string
	order     []string
	vanilla   bool
}

// New targets the model directory at engineDir (the directory holding
// nlu_engine.json).
func New(engineDir string) *Injector {
	return &Injector{engineDir: engineDir, values: map[string][]string{}}
}

// AddValue queues value to be injected into entity. Entity must name a
// custom entity of the model's dataset; that is only checked at Inject time.
func (i *Injector) AddValue(entity, value string) *Injector {
	if _, ok := i.values[entity]; !ok {
		i.order = append(i.order, entity)
	}
	i.values[entity] = append(i.values[entity], value)
	return i
}

// FromVanilla controls whether injected values are indexed under their
// literal lowercased form in addition to their stemmed form. With
// fromVanilla=false only the stemmed form is indexed, matching how trained
// gazetteer entries are normalised; fromVanilla=true additionally keeps the
// exact surface form matchable even if stemming would otherwise alter it.
func (i *Injector) FromVanilla(fromVanilla bool) *Injector {
	i.vanilla = fromVanilla
	return i
}

// Inject applies every queued value. Entities are processed in AddValue
// order and each entity's file is rewritten and saved before the next one is
// touched, so an error on a later entity does not roll back earlier ones.
func (i *Injector) Inject() error {
	enginePath := filepath.Join(i.engineDir, "nlu_engine.json")
	raw, err := os.ReadFile(enginePath)
	if err != nil {
		return fmt.Errorf("%w: reading %s: %v", nluerrors.ErrInjection, enginePath, err)
	}
	var engine model.Engine
	if err := json.Unmarshal(raw, &engine); err != nil {
		return fmt.Errorf("%w: decoding %s: %v", nluerrors.ErrInjection, enginePath, err)
	}

	lang, err := language.Parse(engine.DatasetMetadata.LanguageCode)
	if err != nil {
		return fmt.Errorf("%w: %v", nluerrors.ErrInjection, err)
	}

	var stemmer resources.Stemmer
	if res, err := resources.Load(filepath.Join(i.engineDir, "resources", string(lang))); err == nil {
		stemmer = res.Stemmer
	}

	parserDir := filepath.Join(i.engineDir, engine.CustomEntityParser)
	meta, err := readParserMetadata(parserDir)
	if err != nil {
		return err
	}
	knownEntities := map[string]bool{}
	for _, e := range meta.Entities {
		knownEntities[e] = true
	}

	for _, entity := range i.order {
		if strings.HasPrefix(entity, grammarPrefix) {
			return fmt.Errorf("%w: %q is a grammar entity and cannot be injected into", nluerrors.ErrInjection, entity)
		}
		if _, ok := engine.DatasetMetadata.Entities[entity]; !ok {
			return fmt.Errorf("%w: %q is not a custom entity of this model", nluerrors.ErrInjection, entity)
		}
		if !knownEntities[entity] {
			return fmt.Errorf("%w: %q has no gazetteer file in %s", nluerrors.ErrInjection, entity, parserDir)
		}
		if err := injectEntity(parserDir, entity, i.values[entity], stemmer, i.vanilla); err != nil {
			return err
		}
	}
	return nil
}

func readParserMetadata(parserDir string) (model.CustomEntityParserMetadata, error) {
	metaPath := filepath.Join(parserDir, "metadata.json")
	raw, err := os.ReadFile(metaPath)
	if err != nil {
		return model.CustomEntityParserMetadata{}, fmt.Errorf("%w: reading %s: %v", nluerrors.ErrInjection, metaPath, err)
	}
	var meta model.CustomEntityParserMetadata
	if err := json.Unmarshal(raw, &meta); err != nil {
		return model.CustomEntityParserMetadata{}, fmt.Errorf("%w: decoding %s: %v", nluerrors.ErrInjection, metaPath, err)
	}
	return meta, nil
}

func injectEntity(parserDir, entity string, values []string, stemmer resources.Stemmer, fromVanilla bool) error {
	path := custom.EntityFilePath(parserDir, entity)
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("%w: reading %s: %v", nluerrors.ErrInjection, path, err)
	}
	if !gjson.ValidBytes(raw) {
		return fmt.Errorf("%w: %s is not valid JSON", nluerrors.ErrInjection, path)
	}

	doc := string(raw)
	for _, value := range values {
		canonicalPath := "values." + escapeKey(value)
		forms := surfaceForms(value, stemmer, fromVanilla)

		merged, seen := []string{}, map[string]bool{}
		for _, existing := range gjson.Get(doc, canonicalPath).Array() {
			s := existing.String()
			if !seen[s] {
				seen[s] = true
				merged = append(merged, s)
			}
		}
		for _, f := range forms {
			if !seen[f] {
				seen[f] = true
				merged = append(merged, f)
			}
		}

		updated, err := sjson.Set(doc, canonicalPath, merged)
		if err != nil {
			return fmt.Errorf("%w: injecting %q into %q: %v", nluerrors.ErrInjection, value, entity, err)
		}
		doc = updated
	}

	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		return fmt.Errorf("%w: writing %s: %v", nluerrors.ErrInjection, path, err)
	}
	return nil
}

// surfaceForms computes the indexable surface forms for one injected value:
// its Porter/dictionary stem always, plus the literal lowercased form when
// fromVanilla is requested or no stemmer resource is loaded.
func surfaceForms(value string, stemmer resources.Stemmer, fromVanilla bool) []string {
	lower := strings.ToLower(strings.TrimSpace(value))
	if stemmer == nil {
		return []string{lower}
	}

	tokens := tokenizer.TokenizeLight(lower)
	stems := make([]string, len(tokens))
	for i, tok := range tokens {
		stems[i] = stemmer.Stem(tok)
	}
	stemmed := strings.Join(stems, " ")

	if fromVanilla && stemmed != lower {
		return []string{lower, stemmed}
	}
	return []string{stemmed}
}

// escapeKey escapes gjson/sjson path metacharacters (., *, ?) in an entity
// value so it can be used as a literal "values.<key>" path segment.
func escapeKey(key string) string {
	r := strings.NewReplacer(".", "\\.", "*", "\\*", "?", "\\?")
	return r.Replace(key)
}
