package usecase

import (
	"context"

	"github.com/DRSN-tech/product-qc/internal/cfg"
	"github.com/DRSN-tech/product-qc/pkg/e"
	"github.com/DRSN-tech/product-qc/pkg/logger"
)

// Минимальная доля заполненных строк по каждому измерению покрытия.
const coverageThreshold = 0.7

// ValidatorUC считает покрытие каталога и выносит вердикт пайплайну.
type ValidatorUC struct {
	productRepo ProductRepository
	events      EventProducer
	pipeline    *cfg.PipelineCfg
	logger      logger.Logger
}

func NewValidatorUC(
	productRepo ProductRepository,
	events EventProducer,
	pipeline *cfg.PipelineCfg,
	logger logger.Logger,
) *ValidatorUC {
	return &ValidatorUC{
		productRepo: productRepo,
		events:      events,
		pipeline:    pipeline,
		logger:      logger,
	}
}

func (v *ValidatorUC) Validate(ctx context.Context) (*ValidationReport, error) {
	const op = "ValidatorUC.Validate"

	stats, err := v.productRepo.CoverageStats(ctx)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	report := EvaluateCoverage(stats)

	v.logger.Infof(
		"validation: rows=%d description=%.2f specs=%.2f images=%.2f passed=%t",
		report.Stats.TotalRows, report.DescriptionRatio, report.SpecsRatio, report.ImagesRatio, report.Passed,
	)

	publishEvent(ctx, v.events, v.logger, v.pipeline, EventValidationFinished, map[string]any{
		"rows":   report.Stats.TotalRows,
		"passed": report.Passed,
	})

	return report, nil
}

// EvaluateCoverage выносит вердикт по счётчикам: прохождение требует хотя бы
// одной строки и доли не ниже порога по каждому измерению. Пустой каталог
// даёт нулевые доли и провал.
func EvaluateCoverage(stats *CoverageStats) *ValidationReport {
	report := &ValidationReport{Stats: *stats}

	if stats.TotalRows == 0 {
		return report
	}

	total := float64(stats.TotalRows)
	report.DescriptionRatio = float64(stats.WithDescription) / total
	report.SpecsRatio = float64(stats.WithSpecs) / total
	report.ImagesRatio = float64(stats.WithImages) / total

	report.Passed = report.DescriptionRatio >= coverageThreshold &&
		report.SpecsRatio >= coverageThreshold &&
		report.ImagesRatio >= coverageThreshold

	return report
}
