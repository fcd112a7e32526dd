package model

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccuracy(t *testing.T) {
	tcs := map[string]struct {
		yTrue []float64
		yPred []float64
		want  float64
	}{
		"all correct":  {yTrue: []float64{0, 1, 2}, yPred: []float64{0, 1, 2}, want: 1},
		"none correct": {yTrue: []float64{0, 1}, yPred: []float64{1, 0}, want: 0},
		"half correct": {yTrue: []float64{0, 1, 2, 0}, yPred: []float64{0, 1, 0, 1}, want: 0.5},
		"empty":        {yTrue: nil, yPred: nil, want: 0},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tc.want, Accuracy(tc.yTrue, tc.yPred))
		})
	}
}

func TestSoftmaxFitSeparable(t *testing.T) {
	X := [][]float64{{0}, {0}, {0}, {1}, {1}, {1}}
	y := []float64{0, 0, 0, 1, 1, 1}

	m := NewSoftmax(1, 2)
	m.LearnRate = 0.5
	m.Iterations = 500
	require.NoError(t, m.Fit(X, y))

	assert.Equal(t, 1.0, Accuracy(y, m.Predict(X)))
}

func TestSoftmaxProba(t *testing.T) {
	X := [][]float64{{0}, {1}, {2}, {0}, {1}, {2}}
	y := []float64{0, 1, 2, 0, 1, 2}

	m := NewSoftmax(1, 3)
	require.NoError(t, m.Fit(X, y))

	for _, p := range m.Proba(X) {
		require.Len(t, p, 3)
		sum := 0.0
		for _, v := range p {
			assert.GreaterOrEqual(t, v, 0.0)
			sum += v
		}
		assert.InDelta(t, 1.0, sum, 1e-9)
	}
	for _, c := range m.Predict(X) {
		assert.Contains(t, []float64{0, 1, 2}, c)
	}
}

func TestSoftmaxFitDeterministic(t *testing.T) {
	X := [][]float64{{0}, {1}, {-1}, {0}, {1}, {2}}
	y := []float64{0, 1, 0, 0, 1, 1}

	m1 := NewSoftmax(1, 2)
	require.NoError(t, m1.Fit(X, y))
	m2 := NewSoftmax(1, 2)
	require.NoError(t, m2.Fit(X, y))

	assert.Equal(t, m1.W.Data(), m2.W.Data())
	assert.Equal(t, m1.Proba(X), m2.Proba(X))
}

func TestSoftmaxFitErrors(t *testing.T) {
	tcs := map[string]struct {
		X [][]float64
		y []float64
	}{
		"empty":              {X: nil, y: nil},
		"length mismatch":    {X: [][]float64{{1}}, y: []float64{0, 1}},
		"width mismatch":     {X: [][]float64{{1, 2}}, y: []float64{0}},
		"label out of range": {X: [][]float64{{1}}, y: []float64{5}},
		"negative label":     {X: [][]float64{{1}}, y: []float64{-1}},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			m := NewSoftmax(1, 2)
			assert.Error(t, m.Fit(tc.X, tc.y))
		})
	}
}

func TestSoftmaxSaveLoad(t *testing.T) {
	X := [][]float64{{0}, {0}, {1}, {1}}
	y := []float64{0, 0, 1, 1}

	m := NewSoftmax(1, 2)
	require.NoError(t, m.Fit(X, y))

	path := filepath.Join(t.TempDir(), "model.gob")
	require.NoError(t, m.Save(path))

	loaded, err := LoadSoftmax(path)
	require.NoError(t, err)
	assert.Equal(t, m.Features, loaded.Features)
	assert.Equal(t, m.Classes, loaded.Classes)
	assert.Equal(t, m.Predict(X), loaded.Predict(X))
}
