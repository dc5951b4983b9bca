package custom

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/snipsco/snips-nlu-go/pkg/language"
)

func newTestGazetteer(t *testing.T) *Gazetteer {
	t.Helper()
	g, err := NewGazetteer("Temperature", language.EN, map[string][]string{
		"hot":  {"hot", "warm"},
		"cold": {"cold", "iced", "ice cold"},
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = g.Close() })
	return g
}

func TestGazetteer_SingleWordMatch(t *testing.T) {
	g := newTestGazetteer(t)
	got, err := g.Parse(context.Background(), "make it hot please", nil)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "hot", got[0].Value)
	assert.Equal(t, "Temperature", got[0].EntityName)
	assert.Equal(t, 3, got[0].Range.Len())
}

func TestGazetteer_MultiWordMatch(t *testing.T) {
	g := newTestGazetteer(t)
	got, err := g.Parse(context.Background(), "i want it ice cold thanks", nil)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "cold", got[0].Value)
}

func TestGazetteer_Synonym(t *testing.T) {
	g := newTestGazetteer(t)
	got, err := g.Parse(context.Background(), "a warm drink", nil)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "hot", got[0].Value)
	assert.Equal(t, "warm", got[0].MatchedText)
}

func TestGazetteer_NoMatch(t *testing.T) {
	g := newTestGazetteer(t)
	got, err := g.Parse(context.Background(), "just a regular drink", nil)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestGazetteer_ScopeFiltering(t *testing.T) {
	g := newTestGazetteer(t)
	got, err := g.Parse(context.Background(), "make it hot", []string{"OtherEntity"})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestMulti_MergesAndDedupes(t *testing.T) {
	temp := newTestGazetteer(t)
	size, err := NewGazetteer("Size", language.EN, map[string][]string{
		"large": {"large", "big"},
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = size.Close() })

	m := NewMulti(temp, size)
	got, err := m.Parse(context.Background(), "a large hot coffee", nil)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.ElementsMatch(t, []string{"Size", "Temperature"}, []string{got[0].EntityName, got[1].EntityName})
}
