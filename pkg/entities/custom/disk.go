package custom

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/snipsco/snips-nlu-go/pkg/language"
	"github.com/snipsco/snips-nlu-go/pkg/model"
)

// LoadDir reads a custom_entity_parser directory (spec.md §6) and builds the
// combined Parser over every entity it names.
func LoadDir(dir string, lang language.Language) (*Multi, error) {
	metaPath := filepath.Join(dir, "metadata.json")
	raw, err := os.ReadFile(metaPath)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", metaPath, err)
	}
	var meta model.CustomEntityParserMetadata
	if err := json.Unmarshal(raw, &meta); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", metaPath, err)
	}

	gazetteers := make([]*Gazetteer, 0, len(meta.Entities))
	for _, entity := range meta.Entities {
		data, err := LoadEntityFile(EntityFilePath(dir, entity))
		if err != nil {
			return nil, err
		}
		g, err := NewGazetteer(entity, lang, data.Values)
		if err != nil {
			return nil, err
		}
		gazetteers = append(gazetteers, g)
	}
	return NewMulti(gazetteers...), nil
}

// EntityFilePath is the on-disk path of one entity's gazetteer data file
// inside a custom_entity_parser directory.
func EntityFilePath(dir, entity string) string {
	return filepath.Join(dir, entity+".json")
}

// LoadEntityFile reads one entity's gazetteer data file.
func LoadEntityFile(path string) (model.CustomEntityData, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return model.CustomEntityData{}, fmt.Errorf("reading %s: %w", path, err)
	}
	var data model.CustomEntityData
	if err := json.Unmarshal(raw, &data); err != nil {
		return model.CustomEntityData{}, fmt.Errorf("decoding %s: %w", path, err)
	}
	if data.Values == nil {
		data.Values = map[string][]string{}
	}
	return data, nil
}

// SaveEntityFile writes one entity's gazetteer data file.
func SaveEntityFile(path string, data model.CustomEntityData) error {
	raw, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding %s: %w", path, err)
	}
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
