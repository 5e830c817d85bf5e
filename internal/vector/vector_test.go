package vector

import (
	"testing"

	"github.com/DRSN-tech/product-qc/pkg/e"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCosineSelfIsOne(t *testing.T) {
	vectors := [][]float64{
		{1, 0, 0},
		{0.3, -0.7, 2.1},
		{0.001, 0.002, 0.003},
	}

	for _, v := range vectors {
		sim, err := Cosine(v, v)
		require.NoError(t, err)
		assert.InDelta(t, 1.0, sim, 1e-9)
	}
}

func TestCosineSymmetric(t *testing.T) {
	a := []float64{0.5, -1.2, 3.4, 0}
	b := []float64{-0.1, 0.9, 1.1, 2.2}

	ab, err := Cosine(a, b)
	require.NoError(t, err)
	ba, err := Cosine(b, a)
	require.NoError(t, err)

	assert.InDelta(t, ab, ba, 1e-12)
}

func TestCosineOrthogonal(t *testing.T) {
	sim, err := Cosine([]float64{1, 0}, []float64{0, 1})
	require.NoError(t, err)
	assert.InDelta(t, 0.0, sim, 1e-12)
}

func TestCosineZeroVector(t *testing.T) {
	sim, err := Cosine([]float64{0, 0, 0}, []float64{1, 2, 3})
	require.NoError(t, err)
	assert.Equal(t, 0.0, sim)
}

func TestCosineLengthMismatch(t *testing.T) {
	_, err := Cosine([]float64{1, 2}, []float64{1, 2, 3})
	require.ErrorIs(t, err, e.ErrVectorLengthMismatch)
}

func TestCosineEmpty(t *testing.T) {
	_, err := Cosine(nil, []float64{1})
	require.ErrorIs(t, err, e.ErrEmptyVectors)
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name     string
		input    []float64
		expected []float64
	}{
		{
			name:     "unit vector remains unchanged",
			input:    []float64{1, 0, 0},
			expected: []float64{1, 0, 0},
		},
		{
			name:     "scale non-unit vector",
			input:    []float64{3, 4},
			expected: []float64{0.6, 0.8},
		},
		{
			name:     "zero vector stays zero",
			input:    []float64{0, 0},
			expected: []float64{0, 0},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Normalize(tt.input)
			require.Equal(t, len(tt.expected), len(result))
			for i := range result {
				assert.InDelta(t, tt.expected[i], result[i], 1e-9)
			}
		})
	}
}
