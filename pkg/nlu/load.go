package nlu

import (
	"archive/zip"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/snipsco/snips-nlu-go/pkg/classifier"
	"github.com/snipsco/snips-nlu-go/pkg/crf"
	"github.com/snipsco/snips-nlu-go/pkg/crf/linearchain"
	"github.com/snipsco/snips-nlu-go/pkg/entities/builtin"
	"github.com/snipsco/snips-nlu-go/pkg/entities/custom"
	"github.com/snipsco/snips-nlu-go/pkg/featurizer"
	"github.com/snipsco/snips-nlu-go/pkg/language"
	"github.com/snipsco/snips-nlu-go/pkg/model"
	"github.com/snipsco/snips-nlu-go/pkg/nluerrors"
	"github.com/snipsco/snips-nlu-go/pkg/parser"
	"github.com/snipsco/snips-nlu-go/pkg/parser/deterministic"
	"github.com/snipsco/snips-nlu-go/pkg/parser/lookup"
	"github.com/snipsco/snips-nlu-go/pkg/parser/probabilistic"
	"github.com/snipsco/snips-nlu-go/pkg/resources"
	"github.com/snipsco/snips-nlu-go/pkg/tagging"
)

// loadEngineDir reads a fully extracted model directory (spec.md §6) and
// builds every collaborator the façade needs.
func loadEngineDir(dir string, cfg *loadConfig) (*Engine, error) {
	var engineModel model.Engine
	if err := readJSON(filepath.Join(dir, "nlu_engine.json"), &engineModel); err != nil {
		return nil, err
	}
	if engineModel.ModelVersion != model.ModelVersion {
		return nil, fmt.Errorf("model version %q, engine expects %q: %w", engineModel.ModelVersion, model.ModelVersion, nluerrors.ErrModelVersionMismatch)
	}

	lang, err := language.Parse(engineModel.DatasetMetadata.LanguageCode)
	if err != nil {
		return nil, fmt.Errorf("nlu_engine.json: %w", err)
	}

	res, err := loadResources(filepath.Join(dir, "resources", string(lang)), lang)
	if err != nil {
		return nil, err
	}

	bp := builtin.Parser(builtin.NewCached(builtin.NewSimple(), cfg.cacheCapacity))

	var cp custom.Parser = custom.NewMulti()
	if engineModel.CustomEntityParser != "" {
		customDir := filepath.Join(dir, engineModel.CustomEntityParser)
		if _, err := os.Stat(filepath.Join(customDir, "metadata.json")); err == nil {
			multi, err := custom.LoadDir(customDir, lang)
			if err != nil {
				return nil, fmt.Errorf("loading custom entity parser: %w", err)
			}
			cp = custom.NewCached(multi, cfg.cacheCapacity)
		}
	}

	parsers := make([]parser.IntentParser, 0, len(engineModel.IntentParsers))
	for _, name := range engineModel.IntentParsers {
		p, err := loadIntentParser(filepath.Join(dir, name), bp, cp, res, lang)
		if err != nil {
			return nil, fmt.Errorf("loading intent parser %q: %w", name, err)
		}
		parsers = append(parsers, p)
	}

	intentNames := map[string]bool{}
	for intent := range engineModel.DatasetMetadata.SlotNameMappings {
		intentNames[intent] = true
	}

	return &Engine{
		datasetEntities: engineModel.DatasetMetadata.Entities,
		intentNames:     intentNames,
		parsers:         parsers,
		builtinParser:   bp,
		customParser:    cp,
		logger:          cfg.logger,
	}, nil
}

func loadResources(dir string, lang language.Language) (*resources.Resources, error) {
	if _, err := os.Stat(filepath.Join(dir, "metadata.json")); err != nil {
		return &resources.Resources{Language: lang, Stemmer: resources.NewStemmer(nil)}, nil
	}
	return resources.Load(dir)
}

func loadIntentParser(dir string, bp builtin.Parser, cp custom.Parser, res *resources.Resources, lang language.Language) (parser.IntentParser, error) {
	var meta model.ProcessingUnitMetadata
	if err := readJSON(filepath.Join(dir, "metadata.json"), &meta); err != nil {
		return nil, err
	}

	switch meta.UnitName {
	case model.UnitLookupIntentParser:
		var m model.LookupParser
		if err := readJSON(filepath.Join(dir, "intent_parser.json"), &m); err != nil {
			return nil, err
		}
		return lookup.New(m, bp, cp, res)

	case model.UnitDeterministicIntentParser:
		var m model.DeterministicParser
		if err := readJSON(filepath.Join(dir, "intent_parser.json"), &m); err != nil {
			return nil, err
		}
		return deterministic.New(m, bp, cp, res)

	case model.UnitProbabilisticIntentParser:
		return loadProbabilisticParser(dir, bp, cp, res, lang)

	default:
		return nil, fmt.Errorf("unknown intent parser unit %q", meta.UnitName)
	}
}

func loadProbabilisticParser(dir string, bp builtin.Parser, cp custom.Parser, res *resources.Resources, lang language.Language) (parser.IntentParser, error) {
	var m model.ProbabilisticParser
	if err := readJSON(filepath.Join(dir, "intent_parser.json"), &m); err != nil {
		return nil, err
	}

	c, builtinScope, err := loadClassifier(filepath.Join(dir, "intent_classifier"), res)
	if err != nil {
		return nil, err
	}

	fillers := make(map[string]*crf.SlotFiller, len(m.SlotFillers))
	for _, sf := range m.SlotFillers {
		filler, err := loadSlotFiller(filepath.Join(dir, sf.SlotFillerName), lang, res)
		if err != nil {
			return nil, fmt.Errorf("loading slot filler %q: %w", sf.SlotFillerName, err)
		}
		fillers[sf.Intent] = filler
	}

	return probabilistic.New(c, fillers, builtinScope, bp, cp), nil
}

func loadClassifier(dir string, res *resources.Resources) (*classifier.Classifier, []string, error) {
	var m model.IntentClassifier
	if err := readJSON(filepath.Join(dir, "intent_classifier.json"), &m); err != nil {
		return nil, nil, err
	}

	featurizerDir := filepath.Join(dir, "featurizer")
	var fm model.Featurizer
	if err := readJSON(filepath.Join(featurizerDir, "featurizer.json"), &fm); err != nil {
		return nil, nil, err
	}

	var tfidf model.TfidfVectorizer
	if err := readJSON(filepath.Join(featurizerDir, fm.TfidfVectorizer), &tfidf); err != nil {
		return nil, nil, err
	}

	var coocc *model.CooccurrenceVectorizer
	if fm.CooccurrenceVectorizer != nil {
		var cv model.CooccurrenceVectorizer
		if err := readJSON(filepath.Join(featurizerDir, *fm.CooccurrenceVectorizer), &cv); err != nil {
			return nil, nil, err
		}
		coocc = &cv
	}

	f, err := featurizer.New(tfidf, res, coocc)
	if err != nil {
		return nil, nil, err
	}

	return classifier.New(m, f), tfidf.BuiltinEntityScope, nil
}

func loadSlotFiller(dir string, lang language.Language, res *resources.Resources) (*crf.SlotFiller, error) {
	var m model.SlotFiller
	if err := readJSON(filepath.Join(dir, "slot_filler.json"), &m); err != nil {
		return nil, err
	}

	offsetters, err := crf.BuildOffsetters(m.Config.FeatureFactoryConfigs, res)
	if err != nil {
		return nil, err
	}

	tagger := crf.Tagger(linearchain.New(&crf.WeightTable{Labels: []string{crf.EncodeTag("O")}}))
	if m.CrfModelFile != nil {
		raw, err := os.ReadFile(filepath.Join(dir, *m.CrfModelFile))
		if err != nil {
			return nil, fmt.Errorf("reading crf model file: %w", err)
		}
		wt, err := crf.DecodeModelFile(raw)
		if err != nil {
			return nil, fmt.Errorf("decoding crf model file: %w", err)
		}
		tagger = linearchain.New(wt)
	}

	return crf.NewSlotFiller(tagger, offsetters, tagging.Scheme(m.Config.TaggingScheme), m.SlotNameMapping, lang, res), nil
}

func readJSON(path string, v any) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("decoding %s: %w", path, err)
	}
	return nil
}

// extractZip unpacks a .zip model archive into a fresh temp directory,
// rejecting any entry that would escape it (zip-slip).
func extractZip(path string) (string, error) {
	r, err := zip.OpenReader(path)
	if err != nil {
		return "", fmt.Errorf("opening %s: %w", path, err)
	}
	defer r.Close()

	dest, err := os.MkdirTemp("", "snips-nlu-model-*")
	if err != nil {
		return "", fmt.Errorf("creating extraction dir: %w", err)
	}

	for _, f := range r.File {
		target := filepath.Join(dest, f.Name)
		if !strings.HasPrefix(target, filepath.Clean(dest)+string(os.PathSeparator)) && target != filepath.Clean(dest) {
			return "", fmt.Errorf("zip entry %q escapes extraction directory", f.Name)
		}
		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(target, 0o755); err != nil {
				return "", err
			}
			continue
		}
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return "", err
		}
		if err := extractZipFile(f, target); err != nil {
			return "", err
		}
	}

	return dest, nil
}

func extractZipFile(f *zip.File, target string) error {
	src, err := f.Open()
	if err != nil {
		return fmt.Errorf("opening zip entry %q: %w", f.Name, err)
	}
	defer src.Close()

	dst, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, f.Mode())
	if err != nil {
		return fmt.Errorf("creating %s: %w", target, err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return fmt.Errorf("extracting %s: %w", target, err)
	}
	return nil
}
