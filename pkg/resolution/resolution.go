// Package resolution implements slot resolution (spec.md §4.11): mapping
// tagged internal slots to resolved entity values by reconciling them with
// the builtin and custom entity parsers' output on the full input, falling
// back to sub-parsing the slot's own text. Ported from
// original_source/src/slot_utils.rs and the resolve_slots orchestration in
// original_source/src/nlu_engine.rs.
package resolution

import (
	"context"
	"fmt"

	"github.com/snipsco/snips-nlu-go/pkg/entities"
	"github.com/snipsco/snips-nlu-go/pkg/entities/builtin"
	"github.com/snipsco/snips-nlu-go/pkg/entities/custom"
	"github.com/snipsco/snips-nlu-go/pkg/model"
	"github.com/snipsco/snips-nlu-go/pkg/slotvalue"
	"github.com/snipsco/snips-nlu-go/pkg/span"
	"github.com/snipsco/snips-nlu-go/pkg/tagging"
)

// ResolvedSlot mirrors spec.md's data model: a tagged slot span together
// with its resolved value and, when requested, alternative resolved values.
type ResolvedSlot struct {
	RawValue     string
	Value        slotvalue.Value
	Alternatives []slotvalue.Value
	CharRange    span.Range
	Entity       string
	SlotName     string
}

// Resolve maps raw internal slots to resolved values. datasetEntities is the
// dataset's declared custom-entity map (nlu_engine.json's
// dataset_metadata.entities): a slot's entity name present in it is a custom
// entity, absent is a builtin one.
func Resolve(ctx context.Context, text string, slots []tagging.InternalSlot, datasetEntities map[string]model.Entity, bp builtin.Parser, cp custom.Parser, slotsAlternatives int) ([]ResolvedSlot, error) {
	if len(slots) == 0 {
		return nil, nil
	}

	var builtinScope, customScope []string
	seenBuiltin, seenCustom := map[string]bool{}, map[string]bool{}
	for _, slot := range slots {
		if _, isCustom := datasetEntities[slot.Entity]; isCustom {
			if !seenCustom[slot.Entity] {
				seenCustom[slot.Entity] = true
				customScope = append(customScope, slot.Entity)
			}
		} else if !seenBuiltin[slot.Entity] {
			seenBuiltin[slot.Entity] = true
			builtinScope = append(builtinScope, slot.Entity)
		}
	}

	var builtinEntities []entities.BuiltinResult
	if len(builtinScope) > 0 && bp != nil {
		results, err := bp.Parse(ctx, text, builtinScope)
		if err != nil {
			return nil, fmt.Errorf("slot resolution builtin extraction: %w", err)
		}
		builtinEntities = results
	}

	var customEntities []entities.CustomResult
	if len(customScope) > 0 && cp != nil {
		results, err := cp.Parse(ctx, text, customScope)
		if err != nil {
			return nil, fmt.Errorf("slot resolution custom extraction: %w", err)
		}
		customEntities = results
	}

	resolved := make([]ResolvedSlot, 0, len(slots))
	for _, slot := range slots {
		var (
			r   *ResolvedSlot
			err error
		)
		if entity, ok := datasetEntities[slot.Entity]; ok {
			r, err = resolveCustomSlot(ctx, slot, entity, customEntities, cp, slotsAlternatives)
		} else {
			r, err = resolveBuiltinSlot(ctx, slot, builtinEntities, bp, slotsAlternatives)
		}
		if err != nil {
			return nil, err
		}
		if r != nil {
			resolved = append(resolved, *r)
		}
	}
	return resolved, nil
}

func resolveBuiltinSlot(ctx context.Context, slot tagging.InternalSlot, builtinEntities []entities.BuiltinResult, bp builtin.Parser, slotsAlternatives int) (*ResolvedSlot, error) {
	for _, e := range builtinEntities {
		if e.Kind == slot.Entity && e.Range == slot.CharRange {
			return builtinResolvedSlot(slot, e, slotsAlternatives), nil
		}
	}

	if bp == nil {
		return nil, nil
	}
	results, err := bp.Parse(ctx, slot.Value, []string{slot.Entity})
	if err != nil {
		return nil, fmt.Errorf("slot resolution builtin sub-parse: %w", err)
	}
	if len(results) == 0 {
		return nil, nil
	}
	return builtinResolvedSlot(slot, results[len(results)-1], slotsAlternatives), nil
}

func builtinResolvedSlot(slot tagging.InternalSlot, match entities.BuiltinResult, slotsAlternatives int) *ResolvedSlot {
	return &ResolvedSlot{
		RawValue:     slot.Value,
		Value:        match.Value,
		Alternatives: capAlternatives(match.Alternatives, slotsAlternatives),
		CharRange:    slot.CharRange,
		Entity:       slot.Entity,
		SlotName:     slot.SlotName,
	}
}

func resolveCustomSlot(ctx context.Context, slot tagging.InternalSlot, entity model.Entity, customEntities []entities.CustomResult, cp custom.Parser, slotsAlternatives int) (*ResolvedSlot, error) {
	for _, e := range customEntities {
		if e.EntityName == slot.Entity && e.Range == slot.CharRange {
			return customResolvedSlot(slot, e.Value, capAlternativeStrings(e.Alternatives, slotsAlternatives)), nil
		}
	}

	if cp != nil {
		results, err := cp.Parse(ctx, slot.Value, []string{slot.Entity})
		if err != nil {
			return nil, fmt.Errorf("slot resolution custom sub-parse: %w", err)
		}
		if len(results) > 0 {
			match := results[len(results)-1]
			if len([]rune(match.MatchedText)) == len([]rune(slot.Value)) {
				return customResolvedSlot(slot, match.Value, capAlternativeStrings(match.Alternatives, slotsAlternatives)), nil
			}
		}
	}

	if entity.AutomaticallyExtensible {
		return customResolvedSlot(slot, slot.Value, nil), nil
	}
	return nil, nil
}

func customResolvedSlot(slot tagging.InternalSlot, resolvedValue string, alternatives []string) *ResolvedSlot {
	alts := make([]slotvalue.Value, len(alternatives))
	for i, a := range alternatives {
		alts[i] = slotvalue.NewCustom(a)
	}
	return &ResolvedSlot{
		RawValue:     slot.Value,
		Value:        slotvalue.NewCustom(resolvedValue),
		Alternatives: alts,
		CharRange:    slot.CharRange,
		Entity:       slot.Entity,
		SlotName:     slot.SlotName,
	}
}

func capAlternatives(alts []slotvalue.Value, n int) []slotvalue.Value {
	if n <= 0 || len(alts) <= n {
		if n <= 0 {
			return nil
		}
		return alts
	}
	return alts[:n]
}

func capAlternativeStrings(alts []string, n int) []string {
	if n <= 0 || len(alts) <= n {
		if n <= 0 {
			return nil
		}
		return alts
	}
	return alts[:n]
}
