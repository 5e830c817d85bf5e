package embed

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseBoolAnswer(t *testing.T) {
	tests := []struct {
		answer  string
		want    bool
		wantErr bool
	}{
		{"true", true, false},
		{"True.", true, false},
		{"  YES  ", true, false},
		{"false", false, false},
		{"No", false, false},
		{"false, the description does not mention red", false, false},
		{"maybe", false, true},
		{"", false, true},
	}

	for _, tt := range tests {
		t.Run(tt.answer, func(t *testing.T) {
			got, err := parseBoolAnswer(tt.answer)
			if tt.wantErr {
				require.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestToFloat64(t *testing.T) {
	assert.Equal(t, []float64{}, toFloat64([]float32{}))

	got := toFloat64([]float32{0.5, -1, 2})
	require.Len(t, got, 3)
	assert.InDelta(t, 0.5, got[0], 1e-6)
	assert.InDelta(t, -1, got[1], 1e-6)
}
