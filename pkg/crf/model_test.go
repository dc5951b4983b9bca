package crf

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeModelFile_RoundTrips(t *testing.T) {
	wt := &WeightTable{
		Labels:     []string{"O", "B-x"},
		Transition: map[string]float64{TransitionKey("O", "B-x"): 0.5},
		Emission:   map[string]float64{EmissionKey("B-x", "word=hi"): 1.2},
	}

	raw, err := EncodeModelFile(wt)
	require.NoError(t, err)

	got, err := DecodeModelFile(raw)
	require.NoError(t, err)
	assert.Equal(t, wt, got)
}

func TestEncodeDecodeTag_RoundTrips(t *testing.T) {
	tag := "B-snips/datetime"
	encoded := EncodeTag(tag)
	decoded, err := DecodeTag(encoded)
	require.NoError(t, err)
	assert.Equal(t, tag, decoded)
}

func TestDecodeModelFile_InvalidBase64(t *testing.T) {
	_, err := DecodeModelFile([]byte("not base64!!"))
	assert.Error(t, err)
}
