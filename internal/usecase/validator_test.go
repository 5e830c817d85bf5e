package usecase

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEvaluateCoverage(t *testing.T) {
	tests := []struct {
		name       string
		stats      CoverageStats
		wantPassed bool
		wantDesc   float64
	}{
		{
			name:       "exactly at threshold passes",
			stats:      CoverageStats{TotalRows: 10, WithDescription: 7, WithSpecs: 7, WithImages: 7},
			wantPassed: true,
			wantDesc:   0.7,
		},
		{
			name:       "one dimension below threshold fails",
			stats:      CoverageStats{TotalRows: 10, WithDescription: 6, WithSpecs: 10, WithImages: 10},
			wantPassed: false,
			wantDesc:   0.6,
		},
		{
			name:       "full coverage passes",
			stats:      CoverageStats{TotalRows: 3, WithDescription: 3, WithSpecs: 3, WithImages: 3},
			wantPassed: true,
			wantDesc:   1,
		},
		{
			name:       "empty catalog fails with zero ratios",
			stats:      CoverageStats{},
			wantPassed: false,
			wantDesc:   0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			report := EvaluateCoverage(&tt.stats)

			assert.Equal(t, tt.wantPassed, report.Passed)
			assert.InDelta(t, tt.wantDesc, report.DescriptionRatio, 1e-9)
			assert.Equal(t, tt.stats, report.Stats)
		})
	}
}

func TestEvaluateCoverageEmptyCatalogRatios(t *testing.T) {
	report := EvaluateCoverage(&CoverageStats{})

	assert.Zero(t, report.DescriptionRatio)
	assert.Zero(t, report.SpecsRatio)
	assert.Zero(t, report.ImagesRatio)
	assert.False(t, report.Passed)
}
