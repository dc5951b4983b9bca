// Package model holds the JSON-decodable structs mirroring every on-disk
// file in a model directory (spec.md §6). Nothing in this package executes
// logic beyond decoding/validating shapes; the processing units in
// pkg/classifier, pkg/crf, pkg/parser/... interpret these structs.
package model

// ModelVersion is the compile-time schema version this engine understands.
// Chosen to match the last stable on-disk schema reflected by the pack's
// original_source/ snapshot.
const ModelVersion = "0.24.0"

// Engine is the root nlu_engine.json document.
type Engine struct {
	ModelVersion          string          `json:"model_version"`
	TrainingPackageVersion string         `json:"training_package_version,omitempty"`
	DatasetMetadata       DatasetMetadata `json:"dataset_metadata"`
	IntentParsers         []string        `json:"intent_parsers"`
	BuiltinEntityParser   string          `json:"builtin_entity_parser"`
	CustomEntityParser    string          `json:"custom_entity_parser"`
}

// DatasetMetadata describes the dataset the model was trained from: the
// language, the known entities, and the per-intent slot-name -> entity-name
// mapping used throughout slot resolution.
type DatasetMetadata struct {
	LanguageCode       string                       `json:"language_code"`
	Entities           map[string]Entity            `json:"entities"`
	SlotNameMappings   map[string]map[string]string `json:"slot_name_mappings"` // intent -> slot -> entity
}

// Entity describes a dataset-declared custom entity type.
type Entity struct {
	AutomaticallyExtensible bool `json:"automatically_extensible"`
}

// CustomEntityParserMetadata is metadata.json inside the directory named by
// Engine.CustomEntityParser: it names one on-disk data file per gazetteer
// entity. The gazetteer-parser library itself is an external collaborator
// (spec.md §1); this schema is this module's own stand-in serialization, not
// a faithful rendition of any real gazetteer-parser library's format.
type CustomEntityParserMetadata struct {
	Entities []string `json:"entities"`
}

// CustomEntityData is "<custom_entity_parser>/<entity>.json": the gazetteer
// values for one custom entity, keyed by canonical resolved value to its
// surface forms.
type CustomEntityData struct {
	Values map[string][]string `json:"values"`
}

// ProcessingUnitMetadata is the metadata.json shape that every parser and
// slot filler directory carries, naming which concrete implementation to
// instantiate.
type ProcessingUnitMetadata struct {
	UnitName string `json:"unit_name"`
}

const (
	UnitLookupIntentParser        = "lookup_intent_parser"
	UnitDeterministicIntentParser = "deterministic_intent_parser"
	UnitProbabilisticIntentParser = "probabilistic_intent_parser"
	UnitLogRegIntentClassifier    = "log_reg_intent_classifier"
	UnitCRFSlotFiller             = "crf_slot_filler"
)

// DeterministicParser is intent_parser.json for a deterministic_intent_parser.
type DeterministicParser struct {
	LanguageCode             string                       `json:"language_code"`
	Patterns                 map[string][]string          `json:"patterns"` // intent -> regex patterns
	GroupNamesToSlotNames    map[string]string            `json:"group_names_to_slot_names"`
	SlotNamesToEntities      map[string]map[string]string `json:"slot_names_to_entities"` // intent -> slot -> entity
	StopWordsWhitelist       map[string][]string          `json:"stop_words_whitelist,omitempty"`
	Config                   DeterministicParserConfig    `json:"config"`
}

type DeterministicParserConfig struct {
	IgnoreStopWords bool `json:"ignore_stop_words"`
}

// LookupParser is intent_parser.json for a lookup_intent_parser.
type LookupParser struct {
	LanguageCode       string               `json:"language_code"`
	SlotsNames         []string             `json:"slots_names"`
	IntentsNames       []string             `json:"intents_names"`
	Map                map[string][2]any    `json:"map"` // hash(as string key) -> [intent_id, [slot_id,...]]
	EntityScopes       []GroupedEntityScope `json:"entity_scopes"`
	StopWordsWhitelist map[string][]string  `json:"stop_words_whitelist,omitempty"`
	Config             LookupParserConfig   `json:"config"`
}

type LookupParserConfig struct {
	IgnoreStopWords bool `json:"ignore_stop_words"`
}

// EntityScope names the builtin kinds and custom entity names a group of
// intents may reference.
type EntityScope struct {
	Builtin []string `json:"builtin"`
	Custom  []string `json:"custom"`
}

// GroupedEntityScope is one entry of LookupParser.EntityScopes: a set of
// intents that share the same entity scope, so candidate hashes only need
// computing once per scope rather than once per intent.
type GroupedEntityScope struct {
	IntentGroup []string    `json:"intent_group"`
	EntityScope EntityScope `json:"entity_scope"`
}

// ProbabilisticParser is intent_parser.json for a probabilistic_intent_parser.
type ProbabilisticParser struct {
	SlotFillers []SlotFillerMetadata `json:"slot_fillers"`
}

type SlotFillerMetadata struct {
	Intent         string `json:"intent"`
	SlotFillerName string `json:"slot_filler_name"`
}

// IntentClassifier is intent_classifier.json.
type IntentClassifier struct {
	Featurizer string       `json:"featurizer,omitempty"`
	Intercept  []float32    `json:"intercept,omitempty"`
	Coeffs     [][]float32  `json:"coeffs,omitempty"`
	IntentList []*string    `json:"intent_list"` // nil entry marks the None class
}

// Featurizer is featurizer/featurizer.json.
type Featurizer struct {
	LanguageCode           string  `json:"language_code"`
	TfidfVectorizer        string  `json:"tfidf_vectorizer"`
	CooccurrenceVectorizer *string `json:"cooccurrence_vectorizer,omitempty"`
}

// TfidfVectorizer is the tf-idf sub-model referenced by Featurizer.
type TfidfVectorizer struct {
	LanguageCode       string                  `json:"language_code"`
	BuiltinEntityScope []string                `json:"builtin_entity_scope"`
	Vectorizer         SklearnVectorizer       `json:"vectorizer"`
	Config             TfidfVectorizerConfig   `json:"config"`
}

type SklearnVectorizer struct {
	IdfDiag []float32      `json:"idf_diag"`
	Vocab   map[string]int `json:"vocab"`
}

type TfidfVectorizerConfig struct {
	UseStemming     bool    `json:"use_stemming"`
	WordClustersName *string `json:"word_clusters_name,omitempty"`
}

// CooccurrenceVectorizer is the optional sparse co-occurrence sub-model.
type CooccurrenceVectorizer struct {
	LanguageCode       string                          `json:"language_code"`
	BuiltinEntityScope []string                        `json:"builtin_entity_scope"`
	WordPairs          map[string][2]string            `json:"word_pairs"` // index(as string) -> (wordA, wordB)
	Config             CooccurrenceVectorizerConfig     `json:"config"`
}

type CooccurrenceVectorizerConfig struct {
	WindowSize      *int `json:"window_size,omitempty"`
	FilterStopWords bool `json:"filter_stop_words"`
	// KeepOrder is absent from older trained models (spec.md §9 Open
	// Question); nil means "default to ordered pairs".
	KeepOrder *bool `json:"keep_order,omitempty"`
}

// SlotFiller is slot_filler.json for a crf_slot_filler.
type SlotFiller struct {
	LanguageCode      string            `json:"language_code"`
	CrfModelFile      *string           `json:"crf_model_file,omitempty"`
	SlotNameMapping   map[string]string `json:"slot_name_mapping"` // slot -> entity
	Config            SlotFillerConfig  `json:"config"`
}

type SlotFillerConfig struct {
	TaggingScheme        int                    `json:"tagging_scheme"` // 0=IO 1=BIO 2=BILOU
	FeatureFactoryConfigs []FeatureFactoryConfig `json:"feature_factory_configs"`
}

// FeatureFactoryConfig names one feature kind and its per-token offsets, plus
// a free-form argument bag (entity/cluster names, n-gram length, …).
type FeatureFactoryConfig struct {
	FactoryName string         `json:"factory_name"`
	Args        map[string]any `json:"args"`
	Offsets     []int          `json:"offsets"`
}

// ResourcesMetadata is resources/<lang>/metadata.json.
type ResourcesMetadata struct {
	Language     string   `json:"language"`
	Stems        *string  `json:"stems,omitempty"`
	Gazetteers   []string `json:"gazetteers,omitempty"`
	WordClusters []string `json:"word_clusters,omitempty"`
	StopWords    bool     `json:"stop_words"`
}
