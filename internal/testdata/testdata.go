// Package testdata builds a minimal but complete model directory on disk
// for integration tests, mirroring the beverage dataset from spec.md §8
// without committing a large fixture tree. Ported from
// original_source/src/testutils.rs's SharedResourcesBuilder, adapted from
// an in-memory mock builder to an on-disk one since this module's engine
// only ever loads from a directory.
package testdata

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/snipsco/snips-nlu-go/pkg/crf"
	"github.com/snipsco/snips-nlu-go/pkg/model"
)

// Intent names used throughout the beverage fixture.
const (
	IntentOrderCoffee = "OrderCoffee"
	IntentOrderTea    = "OrderTea"

	// SlotCity is OrderCoffee's only slot, resolved against the "locality"
	// custom entity.
	SlotCity   = "city"
	EntityCity = "locality"
)

// Build writes the beverage fixture's full model directory tree under dir
// (which must already exist). It has one probabilistic intent parser
// distinguishing "OrderCoffee" (which may carry a "city" slot resolved
// against a tiny custom gazetteer) from "OrderTea" (no slots).
func Build(dir string) error {
	if err := writeJSON(filepath.Join(dir, "nlu_engine.json"), model.Engine{
		ModelVersion: model.ModelVersion,
		DatasetMetadata: model.DatasetMetadata{
			LanguageCode: "en",
			Entities: map[string]model.Entity{
				EntityCity: {AutomaticallyExtensible: true},
			},
			SlotNameMappings: map[string]map[string]string{
				IntentOrderCoffee: {SlotCity: EntityCity},
				IntentOrderTea:    {},
			},
		},
		IntentParsers:       []string{"probabilistic_intent_parser"},
		BuiltinEntityParser: "builtin_entity_parser",
		CustomEntityParser:  "custom_entity_parser",
	}); err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Join(dir, "builtin_entity_parser"), 0o755); err != nil {
		return fmt.Errorf("creating builtin_entity_parser dir: %w", err)
	}

	if err := buildCustomEntityParser(dir); err != nil {
		return err
	}

	return buildProbabilisticParser(filepath.Join(dir, "probabilistic_intent_parser"))
}

func buildCustomEntityParser(dir string) error {
	parserDir := filepath.Join(dir, "custom_entity_parser")
	if err := os.MkdirAll(parserDir, 0o755); err != nil {
		return fmt.Errorf("creating custom_entity_parser dir: %w", err)
	}
	if err := writeJSON(filepath.Join(parserDir, "metadata.json"), model.CustomEntityParserMetadata{
		Entities: []string{EntityCity},
	}); err != nil {
		return err
	}
	return writeJSON(filepath.Join(parserDir, EntityCity+".json"), model.CustomEntityData{
		Values: map[string][]string{"Paris": {"paris"}},
	})
}

func buildProbabilisticParser(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	if err := writeJSON(filepath.Join(dir, "metadata.json"), model.ProcessingUnitMetadata{
		UnitName: model.UnitProbabilisticIntentParser,
	}); err != nil {
		return err
	}
	if err := writeJSON(filepath.Join(dir, "intent_parser.json"), model.ProbabilisticParser{
		SlotFillers: []model.SlotFillerMetadata{
			{Intent: IntentOrderCoffee, SlotFillerName: "slot_filler_0"},
			{Intent: IntentOrderTea, SlotFillerName: "slot_filler_1"},
		},
	}); err != nil {
		return err
	}

	if err := buildClassifier(filepath.Join(dir, "intent_classifier")); err != nil {
		return err
	}
	if err := buildCitySlotFiller(filepath.Join(dir, "slot_filler_0")); err != nil {
		return err
	}
	return buildEmptySlotFiller(filepath.Join(dir, "slot_filler_1"))
}

func buildClassifier(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	if err := writeJSON(filepath.Join(dir, "metadata.json"), model.ProcessingUnitMetadata{
		UnitName: model.UnitLogRegIntentClassifier,
	}); err != nil {
		return err
	}

	coffee, tea := IntentOrderCoffee, IntentOrderTea
	if err := writeJSON(filepath.Join(dir, "intent_classifier.json"), model.IntentClassifier{
		Intercept:  []float32{0, 0},
		Coeffs:     [][]float32{{5, 0}, {0, 5}},
		IntentList: []*string{&coffee, &tea},
	}); err != nil {
		return err
	}

	featurizerDir := filepath.Join(dir, "featurizer")
	if err := os.MkdirAll(featurizerDir, 0o755); err != nil {
		return err
	}
	if err := writeJSON(filepath.Join(featurizerDir, "featurizer.json"), model.Featurizer{
		LanguageCode:    "en",
		TfidfVectorizer: "tfidf_vectorizer.json",
	}); err != nil {
		return err
	}
	return writeJSON(filepath.Join(featurizerDir, "tfidf_vectorizer.json"), model.TfidfVectorizer{
		LanguageCode: "en",
		Vectorizer: model.SklearnVectorizer{
			Vocab:   map[string]int{"coffee": 0, "tea": 1},
			IdfDiag: []float32{1, 1},
		},
	})
}

func buildCitySlotFiller(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	if err := writeJSON(filepath.Join(dir, "metadata.json"), model.ProcessingUnitMetadata{
		UnitName: model.UnitCRFSlotFiller,
	}); err != nil {
		return err
	}

	modelFile := "model.crfsuite"
	if err := writeJSON(filepath.Join(dir, "slot_filler.json"), model.SlotFiller{
		LanguageCode:    "en",
		CrfModelFile:    &modelFile,
		SlotNameMapping: map[string]string{SlotCity: EntityCity},
		Config: model.SlotFillerConfig{
			TaggingScheme: 1, // BIO
			FeatureFactoryConfigs: []model.FeatureFactoryConfig{
				{FactoryName: "ngram", Args: map[string]any{"n": 1.0}, Offsets: []int{0}},
			},
		},
	}); err != nil {
		return err
	}

	oTag, bCity := crf.EncodeTag("O"), crf.EncodeTag("B-city")
	raw, err := crf.EncodeModelFile(&crf.WeightTable{
		Labels: []string{oTag, bCity},
		Emission: map[string]float64{
			crf.EmissionKey(bCity, "ngram_1[+0]=paris"): 10,
			crf.EmissionKey(oTag, "ngram_1[+0]=a"):       5,
		},
		Transition: map[string]float64{
			crf.TransitionKey(oTag, oTag):  1,
			crf.TransitionKey(oTag, bCity): 1,
			crf.TransitionKey(bCity, oTag): 1,
		},
	})
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, modelFile), raw, 0o644)
}

func buildEmptySlotFiller(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	if err := writeJSON(filepath.Join(dir, "metadata.json"), model.ProcessingUnitMetadata{
		UnitName: model.UnitCRFSlotFiller,
	}); err != nil {
		return err
	}
	return writeJSON(filepath.Join(dir, "slot_filler.json"), model.SlotFiller{
		LanguageCode:    "en",
		SlotNameMapping: map[string]string{},
		Config: model.SlotFillerConfig{
			TaggingScheme: 1,
			FeatureFactoryConfigs: []model.FeatureFactoryConfig{
				{FactoryName: "ngram", Args: map[string]any{"n": 1.0}, Offsets: []int{0}},
			},
		},
	})
}

func writeJSON(path string, v any) error {
	raw, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding %s: %w", path, err)
	}
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
