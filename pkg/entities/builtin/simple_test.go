package builtin

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/snipsco/snips-nlu-go/pkg/slotvalue"
	"github.com/snipsco/snips-nlu-go/pkg/span"
)

func TestSimple_ParseDigitNumber(t *testing.T) {
	p := NewSimple()
	got, err := p.Parse(context.Background(), "I want 3 coffees", nil)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, KindNumber, got[0].Kind)
	assert.Equal(t, span.Range{Start: 7, End: 8}, got[0].Range)
	require.NotNil(t, got[0].Value.Number)
	assert.Equal(t, 3.0, got[0].Value.Number.Value)
}

func TestSimple_ParseWordNumber(t *testing.T) {
	p := NewSimple()
	got, err := p.Parse(context.Background(), "book a table for two", nil)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, slotvalue.Number, got[0].Value.Kind)
	assert.Equal(t, 2.0, got[0].Value.Number.Value)
}

func TestSimple_ParseOrdinal(t *testing.T) {
	p := NewSimple()
	got, err := p.Parse(context.Background(), "the third table", nil)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, KindOrdinal, got[0].Kind)
	assert.Equal(t, int64(3), got[0].Value.Ordinal.Value)
}

func TestSimple_ParsePercentage(t *testing.T) {
	p := NewSimple()
	got, err := p.Parse(context.Background(), "give me 20% off", nil)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, KindPercentage, got[0].Kind)
	assert.Equal(t, 20.0, got[0].Value.Percentage.Value)
}

func TestSimple_ScopeFiltering(t *testing.T) {
	p := NewSimple()
	got, err := p.Parse(context.Background(), "3 coffees and the third one", []string{KindOrdinal})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, KindOrdinal, got[0].Kind)
}

func TestSimple_NoMatch(t *testing.T) {
	p := NewSimple()
	got, err := p.Parse(context.Background(), "hello there", nil)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestSimple_Kinds(t *testing.T) {
	p := NewSimple()
	assert.ElementsMatch(t, []string{KindNumber, KindOrdinal, KindPercentage}, p.Kinds())
}
