// Package crf implements the linear-chain CRF slot filler (spec.md §4.8):
// per-token feature extraction plus a Tagger collaborator that decodes the
// most likely tag sequence. Tagger is the external CRF-library collaborator
// spec.md §1 excludes from scope; linearchain.Tagger is a minimal concrete
// implementation so the engine can run end-to-end without a training
// pipeline, reading this module's own model blob (not crfsuite's format).
package crf

// Tagger decodes the most likely tag sequence for a token sequence's
// per-token feature sets.
type Tagger interface {
	Tag(features []map[string]string) ([]string, error)
	Labels() []string
}
