package crf

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
)

// WeightTable is the trained linear-chain CRF model linearchain.Tagger
// consumes: this module's own serialisation, not bit-compatible with
// crfsuite's binary format (training is out of scope).
type WeightTable struct {
	Labels     []string           `json:"labels"`
	Transition map[string]float64 `json:"transition"` // "prev\x00cur" -> weight
	Emission   map[string]float64 `json:"emission"`   // "label\x00feature=value" -> weight
}

const wireSep = "\x00"

// TransitionKey builds the Transition map key for a (prev, cur) label pair.
func TransitionKey(prev, cur string) string { return prev + wireSep + cur }

// EmissionKey builds the Emission map key for a (label, feature=value) pair.
func EmissionKey(label, featureKV string) string { return label + wireSep + featureKV }

// DecodeModelFile decodes a crf_model_file's contents: base64 of the
// WeightTable's JSON encoding, matching the base64-wrapping wire contract
// spec.md §9 documents for CRF model blobs.
func DecodeModelFile(raw []byte) (*WeightTable, error) {
	decoded, err := base64.StdEncoding.DecodeString(string(raw))
	if err != nil {
		return nil, fmt.Errorf("base64-decoding crf model: %w", err)
	}
	var wt WeightTable
	if err := json.Unmarshal(decoded, &wt); err != nil {
		return nil, fmt.Errorf("decoding crf model: %w", err)
	}
	return &wt, nil
}

// EncodeModelFile is the inverse of DecodeModelFile, used by tests building
// synthetic models.
func EncodeModelFile(wt *WeightTable) ([]byte, error) {
	raw, err := json.Marshal(wt)
	if err != nil {
		return nil, fmt.Errorf("encoding crf model: %w", err)
	}
	return []byte(base64.StdEncoding.EncodeToString(raw)), nil
}

// DecodeTag undoes the per-tag base64 encoding python-crfsuite compatibility
// historically required (spec.md §9): tags are base64 so they round-trip as
// pure ASCII regardless of the slot/entity names they encode.
func DecodeTag(tag string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(tag)
	if err != nil {
		return "", fmt.Errorf("base64-decoding tag %q: %w", tag, err)
	}
	return string(raw), nil
}

// EncodeTag is the inverse of DecodeTag.
func EncodeTag(tag string) string {
	return base64.StdEncoding.EncodeToString([]byte(tag))
}
