package resolution

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/snipsco/snips-nlu-go/pkg/entities"
	"github.com/snipsco/snips-nlu-go/pkg/model"
	"github.com/snipsco/snips-nlu-go/pkg/slotvalue"
	"github.com/snipsco/snips-nlu-go/pkg/span"
	"github.com/snipsco/snips-nlu-go/pkg/tagging"
)

type fakeBuiltin struct {
	kinds     []string
	onText    map[string][]entities.BuiltinResult
	onSubtext map[string][]entities.BuiltinResult
}

func (f *fakeBuiltin) Kinds() []string { return f.kinds }
func (f *fakeBuiltin) Parse(_ context.Context, text string, _ []string) ([]entities.BuiltinResult, error) {
	if r, ok := f.onText[text]; ok {
		return r, nil
	}
	return f.onSubtext[text], nil
}

type fakeCustom struct {
	names     []string
	onText    map[string][]entities.CustomResult
	onSubtext map[string][]entities.CustomResult
}

func (f *fakeCustom) EntityNames() []string { return f.names }
func (f *fakeCustom) Parse(_ context.Context, text string, _ []string) ([]entities.CustomResult, error) {
	if r, ok := f.onText[text]; ok {
		return r, nil
	}
	return f.onSubtext[text], nil
}

func amountOfMoney(v float64) slotvalue.Value {
	return slotvalue.Value{
		Kind:          slotvalue.AmountOfMoney,
		AmountOfMoney: &slotvalue.AmountOfMoneyPayload{Value: v, Precision: "exact", Unit: "$"},
	}
}

func TestResolve_BuiltinSlotMatchedOnFullInput(t *testing.T) {
	text := "I'll take 5 dollars then 8 dollars"
	slot := tagging.InternalSlot{
		Value:     "8 dollars",
		CharRange: span.Range{Start: 25, End: 34},
		Entity:    "snips/amount_of_money",
		SlotName:  "amount",
	}
	bp := &fakeBuiltin{
		kinds: []string{"snips/amount_of_money"},
		onText: map[string][]entities.BuiltinResult{
			text: {
				{Range: span.Range{Start: 10, End: 19}, Kind: "snips/amount_of_money", Value: amountOfMoney(5)},
				{Range: span.Range{Start: 25, End: 34}, Kind: "snips/amount_of_money", Value: amountOfMoney(8)},
			},
		},
	}

	resolved, err := Resolve(context.Background(), text, []tagging.InternalSlot{slot}, nil, bp, nil, 0)
	require.NoError(t, err)
	require.Len(t, resolved, 1)
	assert.Equal(t, "8 dollars", resolved[0].RawValue)
	assert.Equal(t, amountOfMoney(8), resolved[0].Value)
}

func TestResolve_BuiltinSlotFallsBackToSubParse(t *testing.T) {
	slot := tagging.InternalSlot{
		Value:     "5 dollars",
		CharRange: span.Range{Start: 8, End: 17},
		Entity:    "snips/amount_of_money",
		SlotName:  "amount",
	}
	bp := &fakeBuiltin{
		kinds:  []string{"snips/amount_of_money"},
		onText: map[string][]entities.BuiltinResult{"give me 5 dollars": nil},
		onSubtext: map[string][]entities.BuiltinResult{
			"5 dollars": {{Range: span.Range{Start: 0, End: 9}, Kind: "snips/amount_of_money", Value: amountOfMoney(5)}},
		},
	}

	resolved, err := Resolve(context.Background(), "give me 5 dollars", []tagging.InternalSlot{slot}, nil, bp, nil, 0)
	require.NoError(t, err)
	require.Len(t, resolved, 1)
	assert.Equal(t, amountOfMoney(5), resolved[0].Value)
	assert.Equal(t, span.Range{Start: 8, End: 17}, resolved[0].CharRange)
}

func TestResolve_CustomSlotMatchedOnFullInput(t *testing.T) {
	text := "publisher then subscriber"
	slot := tagging.InternalSlot{
		Value:     "subscriber",
		CharRange: span.Range{Start: 15, End: 25},
		Entity:    "userType",
		SlotName:  "userType",
	}
	cp := &fakeCustom{
		names: []string{"userType"},
		onText: map[string][]entities.CustomResult{
			text: {
				{Range: span.Range{Start: 0, End: 9}, EntityName: "userType", Value: "Publisher"},
				{Range: span.Range{Start: 15, End: 25}, EntityName: "userType", Value: "Subscriber"},
			},
		},
	}
	datasetEntities := map[string]model.Entity{"userType": {AutomaticallyExtensible: false}}

	resolved, err := Resolve(context.Background(), text, []tagging.InternalSlot{slot}, datasetEntities, nil, cp, 0)
	require.NoError(t, err)
	require.Len(t, resolved, 1)
	assert.Equal(t, slotvalue.NewCustom("Subscriber"), resolved[0].Value)
}

func TestResolve_CustomSlotFallsBackToSubParse(t *testing.T) {
	slot := tagging.InternalSlot{
		Value:     "subscriber",
		CharRange: span.Range{Start: 27, End: 37},
		Entity:    "userType",
		SlotName:  "userType",
	}
	cp := &fakeCustom{
		names:  []string{"userType"},
		onText: map[string][]entities.CustomResult{"x": nil},
		onSubtext: map[string][]entities.CustomResult{
			"subscriber": {{Range: span.Range{Start: 0, End: 10}, EntityName: "userType", Value: "Subscriber", MatchedText: "subscriber"}},
		},
	}
	datasetEntities := map[string]model.Entity{"userType": {AutomaticallyExtensible: false}}

	resolved, err := Resolve(context.Background(), "x", []tagging.InternalSlot{slot}, datasetEntities, nil, cp, 0)
	require.NoError(t, err)
	require.Len(t, resolved, 1)
	assert.Equal(t, slotvalue.NewCustom("Subscriber"), resolved[0].Value)
	assert.Equal(t, span.Range{Start: 27, End: 37}, resolved[0].CharRange)
}

func TestResolve_CustomSlotSubParseMustCoverWholeText(t *testing.T) {
	slot := tagging.InternalSlot{
		Value:     "the subscriber",
		CharRange: span.Range{Start: 0, End: 14},
		Entity:    "userType",
		SlotName:  "userType",
	}
	cp := &fakeCustom{
		names: []string{"userType"},
		onSubtext: map[string][]entities.CustomResult{
			"the subscriber": {{Range: span.Range{Start: 4, End: 14}, EntityName: "userType", Value: "Subscriber", MatchedText: "subscriber"}},
		},
	}
	datasetEntities := map[string]model.Entity{"userType": {AutomaticallyExtensible: false}}

	resolved, err := Resolve(context.Background(), "x", []tagging.InternalSlot{slot}, datasetEntities, nil, cp, 0)
	require.NoError(t, err)
	assert.Empty(t, resolved)
}

func TestResolve_CustomSlotAutomaticallyExtensibleKeepsRawValue(t *testing.T) {
	slot := tagging.InternalSlot{
		Value:     "subscriber",
		CharRange: span.Range{Start: 27, End: 37},
		Entity:    "userType",
		SlotName:  "userType",
	}
	cp := &fakeCustom{names: []string{"userType"}}
	datasetEntities := map[string]model.Entity{"userType": {AutomaticallyExtensible: true}}

	resolved, err := Resolve(context.Background(), "x", []tagging.InternalSlot{slot}, datasetEntities, nil, cp, 0)
	require.NoError(t, err)
	require.Len(t, resolved, 1)
	assert.Equal(t, slotvalue.NewCustom("subscriber"), resolved[0].Value)
}

func TestResolve_CustomSlotNotExtensibleIsDropped(t *testing.T) {
	slot := tagging.InternalSlot{
		Value:     "subscriber",
		CharRange: span.Range{Start: 27, End: 37},
		Entity:    "userType",
		SlotName:  "userType",
	}
	cp := &fakeCustom{names: []string{"userType"}}
	datasetEntities := map[string]model.Entity{"userType": {AutomaticallyExtensible: false}}

	resolved, err := Resolve(context.Background(), "x", []tagging.InternalSlot{slot}, datasetEntities, nil, cp, 0)
	require.NoError(t, err)
	assert.Empty(t, resolved)
}

func TestResolve_AttachesAlternativesUpToLimit(t *testing.T) {
	text := "publisher then subscriber"
	slot := tagging.InternalSlot{
		Value:     "subscriber",
		CharRange: span.Range{Start: 15, End: 25},
		Entity:    "userType",
		SlotName:  "userType",
	}
	cp := &fakeCustom{
		names: []string{"userType"},
		onText: map[string][]entities.CustomResult{
			text: {{
				Range:        span.Range{Start: 15, End: 25},
				EntityName:   "userType",
				Value:        "Subscriber",
				Alternatives: []string{"Member", "Subscriber2", "Subscriber3"},
			}},
		},
	}
	datasetEntities := map[string]model.Entity{"userType": {}}

	resolved, err := Resolve(context.Background(), text, []tagging.InternalSlot{slot}, datasetEntities, nil, cp, 2)
	require.NoError(t, err)
	require.Len(t, resolved, 1)
	require.Len(t, resolved[0].Alternatives, 2)
	assert.Equal(t, slotvalue.NewCustom("Member"), resolved[0].Alternatives[0])
}

func TestResolve_EmptySlotsReturnsNil(t *testing.T) {
	resolved, err := Resolve(context.Background(), "anything", nil, nil, nil, nil, 0)
	require.NoError(t, err)
	assert.Nil(t, resolved)
}
