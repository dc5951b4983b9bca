package classifier

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/snipsco/snips-nlu-go/pkg/featurizer"
	"github.com/snipsco/snips-nlu-go/pkg/model"
	"github.com/snipsco/snips-nlu-go/pkg/resources"
)

func strPtr(s string) *string { return &s }

func newTestFeaturizer(t *testing.T) *featurizer.Featurizer {
	t.Helper()
	f, err := featurizer.New(model.TfidfVectorizer{
		LanguageCode: "en",
		Vectorizer: model.SklearnVectorizer{
			Vocab:   map[string]int{"coffee": 0, "tea": 1},
			IdfDiag: []float32{1, 1},
		},
	}, &resources.Resources{Stemmer: resources.NewStemmer(nil)}, nil)
	require.NoError(t, err)
	return f
}

func TestClassifier_GetIntent(t *testing.T) {
	f := newTestFeaturizer(t)
	c := New(model.IntentClassifier{
		Intercept:  []float32{0, 0, 0},
		Coeffs:     [][]float32{{5, 0}, {0, 5}, {-1, -1}},
		IntentList: []*string{strPtr("OrderCoffee"), strPtr("OrderTea"), nil},
	}, f)

	res, err := c.GetIntent("I want coffee", nil, nil, nil)
	require.NoError(t, err)
	require.NotNil(t, res.IntentName)
	assert.Equal(t, "OrderCoffee", *res.IntentName)
}

func TestClassifier_Whitelist(t *testing.T) {
	f := newTestFeaturizer(t)
	c := New(model.IntentClassifier{
		Intercept:  []float32{0, 0, 0},
		Coeffs:     [][]float32{{5, 0}, {0, 5}, {-1, -1}},
		IntentList: []*string{strPtr("OrderCoffee"), strPtr("OrderTea"), nil},
	}, f)

	res, err := c.GetIntent("I want coffee", nil, nil, map[string]bool{"OrderCoffee": true})
	require.NoError(t, err)
	require.NotNil(t, res.IntentName)
	assert.NotEqual(t, "OrderCoffee", *res.IntentName)
}

func TestClassifier_EmptyInputReturnsNoneAtFullConfidence(t *testing.T) {
	f := newTestFeaturizer(t)
	c := New(model.IntentClassifier{
		Intercept:  []float32{0, 0, 0},
		Coeffs:     [][]float32{{5, 0}, {0, 5}, {-1, -1}},
		IntentList: []*string{strPtr("OrderCoffee"), strPtr("OrderTea"), nil},
	}, f)

	results, err := c.GetIntents("", nil, nil, nil)
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Nil(t, results[0].IntentName)
	assert.Equal(t, float32(1.0), results[0].Confidence)
	for _, r := range results[1:] {
		assert.Equal(t, float32(0), r.Confidence)
	}
}

func TestClassifier_SingleIntentAlwaysWinsAtFullConfidence(t *testing.T) {
	f := newTestFeaturizer(t)
	c := New(model.IntentClassifier{
		Intercept:  []float32{0},
		Coeffs:     [][]float32{{5, 0}},
		IntentList: []*string{strPtr("OrderCoffee")},
	}, f)

	results, err := c.GetIntents("whatever text", nil, nil, nil)
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.NotNil(t, results[0].IntentName)
	assert.Equal(t, "OrderCoffee", *results[0].IntentName)
	assert.Equal(t, float32(1.0), results[0].Confidence)
}

func TestClassifier_NoTrainedIntentsReturnsNone(t *testing.T) {
	f := newTestFeaturizer(t)
	c := New(model.IntentClassifier{}, f)

	results, err := c.GetIntents("whatever text", nil, nil, nil)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Nil(t, results[0].IntentName)
	assert.Equal(t, float32(1.0), results[0].Confidence)
}

func TestClassifier_GetIntentsSorted(t *testing.T) {
	f := newTestFeaturizer(t)
	c := New(model.IntentClassifier{
		Intercept:  []float32{0, 0},
		Coeffs:     [][]float32{{5, 0}, {0, 5}},
		IntentList: []*string{strPtr("OrderCoffee"), strPtr("OrderTea")},
	}, f)

	results, err := c.GetIntents("I want coffee", nil, nil, nil)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.True(t, results[0].Confidence >= results[1].Confidence)
}
