package crf

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/snipsco/snips-nlu-go/pkg/entities"
	"github.com/snipsco/snips-nlu-go/pkg/model"
	"github.com/snipsco/snips-nlu-go/pkg/resources"
	"github.com/snipsco/snips-nlu-go/pkg/tokenizer"
)

// Context carries everything a FeatureFactory needs to compute a value for
// one token of one utterance.
type Context struct {
	Tokens       []tokenizer.Token
	Stems        []string // index-aligned with Tokens
	WordClusters map[string]map[string]string
	Custom       []entities.CustomResult
	Builtin      []entities.BuiltinResult
}

// FeatureFactory produces a base feature key and, for a given token index, a
// value string (or no value at all, ok=false).
type FeatureFactory interface {
	Name() string
	Value(ctx *Context, i int) (string, bool)
}

// Offsetter wraps a FeatureFactory to apply it at several relative token
// offsets, matching the model's per-feature Offsets list (spec.md §4.8).
type Offsetter struct {
	Factory FeatureFactory
	Offsets []int
}

// Collect computes every offsetted feature for token i into dst, keyed
// "<name>[<offset>]" to disambiguate offsets in the emitted feature map.
func (o Offsetter) Collect(ctx *Context, i int, dst map[string]string) {
	for _, off := range o.Offsets {
		j := i + off
		if j < 0 || j >= len(ctx.Tokens) {
			continue
		}
		if v, ok := o.Factory.Value(ctx, j); ok {
			dst[fmt.Sprintf("%s[%+d]", o.Factory.Name(), off)] = v
		}
	}
}

// BuildOffsetters turns trained feature-factory configs into Offsetters.
func BuildOffsetters(cfgs []model.FeatureFactoryConfig, res *resources.Resources) ([]Offsetter, error) {
	out := make([]Offsetter, 0, len(cfgs))
	for _, cfg := range cfgs {
		f, err := newFactory(cfg, res)
		if err != nil {
			return nil, err
		}
		out = append(out, Offsetter{Factory: f, Offsets: cfg.Offsets})
	}
	return out, nil
}

func newFactory(cfg model.FeatureFactoryConfig, res *resources.Resources) (FeatureFactory, error) {
	switch cfg.FactoryName {
	case "is_digit":
		return isDigitFactory{}, nil
	case "length":
		return lengthFactory{}, nil
	case "is_first":
		return isFirstFactory{}, nil
	case "is_last":
		return isLastFactory{}, nil
	case "ngram":
		n := argInt(cfg.Args, "n", 1)
		return ngramFactory{n: n}, nil
	case "shape_ngram":
		n := argInt(cfg.Args, "n", 1)
		return shapeNgramFactory{n: n}, nil
	case "prefix":
		k := argInt(cfg.Args, "prefix_size", 1)
		return prefixFactory{k: k}, nil
	case "suffix":
		k := argInt(cfg.Args, "suffix_size", 1)
		return suffixFactory{k: k}, nil
	case "entity_match":
		name, _ := cfg.Args["entity_name"].(string)
		return entityMatchFactory{entityName: name}, nil
	case "builtin_entity_match":
		kind, _ := cfg.Args["entity_kind"].(string)
		return builtinMatchFactory{kind: kind}, nil
	case "word_cluster":
		name, _ := cfg.Args["cluster_name"].(string)
		clusters := map[string]string{}
		if res != nil {
			clusters = res.WordClusters[name]
		}
		return wordClusterFactory{name: name, clusters: clusters}, nil
	default:
		return nil, fmt.Errorf("unknown feature factory %q", cfg.FactoryName)
	}
}

func argInt(args map[string]any, key string, def int) int {
	v, ok := args[key]
	if !ok {
		return def
	}
	switch n := v.(type) {
	case float64:
		return int(n)
	case int:
		return n
	default:
		return def
	}
}

type isDigitFactory struct{}

func (isDigitFactory) Name() string { return "is_digit" }
func (isDigitFactory) Value(ctx *Context, i int) (string, bool) {
	for _, r := range ctx.Tokens[i].Value {
		if !unicode.IsDigit(r) {
			return "0", true
		}
	}
	return "1", true
}

type lengthFactory struct{}

func (lengthFactory) Name() string { return "length" }
func (lengthFactory) Value(ctx *Context, i int) (string, bool) {
	return strconv.Itoa(len([]rune(ctx.Tokens[i].Value))), true
}

type isFirstFactory struct{}

func (isFirstFactory) Name() string { return "is_first" }
func (isFirstFactory) Value(ctx *Context, i int) (string, bool) {
	if i == 0 {
		return "1", true
	}
	return "0", true
}

type isLastFactory struct{}

func (isLastFactory) Name() string { return "is_last" }
func (isLastFactory) Value(ctx *Context, i int) (string, bool) {
	if i == len(ctx.Tokens)-1 {
		return "1", true
	}
	return "0", true
}

type ngramFactory struct{ n int }

func (f ngramFactory) Name() string { return fmt.Sprintf("ngram_%d", f.n) }
func (f ngramFactory) Value(ctx *Context, i int) (string, bool) {
	if i+f.n > len(ctx.Tokens) {
		return "", false
	}
	parts := make([]string, f.n)
	for k := 0; k < f.n; k++ {
		parts[k] = strings.ToLower(ctx.Tokens[i+k].Value)
	}
	return strings.Join(parts, " "), true
}

type shapeNgramFactory struct{ n int }

func (f shapeNgramFactory) Name() string { return fmt.Sprintf("shape_ngram_%d", f.n) }
func (f shapeNgramFactory) Value(ctx *Context, i int) (string, bool) {
	if i+f.n > len(ctx.Tokens) {
		return "", false
	}
	parts := make([]string, f.n)
	for k := 0; k < f.n; k++ {
		parts[k] = shapeOf(ctx.Tokens[i+k].Value)
	}
	return strings.Join(parts, " "), true
}

func shapeOf(word string) string {
	var b strings.Builder
	for _, r := range word {
		switch {
		case unicode.IsUpper(r):
			b.WriteByte('X')
		case unicode.IsLower(r):
			b.WriteByte('x')
		case unicode.IsDigit(r):
			b.WriteByte('d')
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}

type prefixFactory struct{ k int }

func (f prefixFactory) Name() string { return fmt.Sprintf("prefix_%d", f.k) }
func (f prefixFactory) Value(ctx *Context, i int) (string, bool) {
	runes := []rune(strings.ToLower(ctx.Tokens[i].Value))
	if len(runes) < f.k {
		return "", false
	}
	return string(runes[:f.k]), true
}

type suffixFactory struct{ k int }

func (f suffixFactory) Name() string { return fmt.Sprintf("suffix_%d", f.k) }
func (f suffixFactory) Value(ctx *Context, i int) (string, bool) {
	runes := []rune(strings.ToLower(ctx.Tokens[i].Value))
	if len(runes) < f.k {
		return "", false
	}
	return string(runes[len(runes)-f.k:]), true
}

type entityMatchFactory struct{ entityName string }

func (f entityMatchFactory) Name() string { return "entity_match_" + f.entityName }
func (f entityMatchFactory) Value(ctx *Context, i int) (string, bool) {
	tokRange := ctx.Tokens[i].CharRange
	for _, c := range ctx.Custom {
		if c.EntityName != f.entityName {
			continue
		}
		if c.Range.Overlaps(tokRange) {
			return "1", true
		}
	}
	return "0", true
}

type builtinMatchFactory struct{ kind string }

func (f builtinMatchFactory) Name() string { return "builtin_entity_match_" + f.kind }
func (f builtinMatchFactory) Value(ctx *Context, i int) (string, bool) {
	tokRange := ctx.Tokens[i].CharRange
	for _, b := range ctx.Builtin {
		if b.Kind != f.kind {
			continue
		}
		if b.Range.Overlaps(tokRange) {
			return "1", true
		}
	}
	return "0", true
}

type wordClusterFactory struct {
	name     string
	clusters map[string]string
}

func (f wordClusterFactory) Name() string { return "word_cluster_" + f.name }
func (f wordClusterFactory) Value(ctx *Context, i int) (string, bool) {
	stem := strings.ToLower(ctx.Tokens[i].Value)
	if i < len(ctx.Stems) {
		stem = ctx.Stems[i]
	}
	cluster, ok := f.clusters[stem]
	return cluster, ok
}
