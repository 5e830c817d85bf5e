package usecase

import (
	"context"

	"github.com/DRSN-tech/product-qc/internal/cfg"
	"github.com/DRSN-tech/product-qc/pkg/logger"
)

const (
	smokeSampleSize = 5
	smokeQuestion   = "Does the description mention the color red?"
)

// SmokeUC проверяет связность каталога с ML-эндпоинтом на реальных строках
// таблицы products. Ошибки удалённых вызовов логируются и не считаются
// провалом: команда всегда завершается успешно.
type SmokeUC struct {
	productRepo ProductRepository
	mlService   EmbeddingService
	ml          *cfg.MLCfg
	logger      logger.Logger
}

func NewSmokeUC(productRepo ProductRepository, mlService EmbeddingService, ml *cfg.MLCfg, logger logger.Logger) *SmokeUC {
	return &SmokeUC{
		productRepo: productRepo,
		mlService:   mlService,
		ml:          ml,
		logger:      logger,
	}
}

func (s *SmokeUC) Run(ctx context.Context) {
	descriptions, err := s.productRepo.SampleDescriptions(ctx, smokeSampleSize)
	if err != nil {
		s.logger.Errorf(err, "smoke: sampling product descriptions failed")
		return
	}
	if len(descriptions) == 0 {
		s.logger.Warnf("smoke: products table has no rows with a description, nothing to check")
		return
	}

	vectors, err := s.mlService.EmbedTexts(ctx, s.ml.TextModel, descriptions)
	if err != nil {
		s.logger.Errorf(err, "smoke: embedding call failed")
	} else if len(vectors) > 0 {
		s.logger.Infof("smoke: embedded %d descriptions, vector size %d", len(vectors), len(vectors[0]))
	}

	answer, err := s.mlService.GenerateBool(ctx, s.ml.BoolModel, smokeQuestion, descriptions[0])
	if err != nil {
		s.logger.Errorf(err, "smoke: generative call failed")
		return
	}

	s.logger.Infof("smoke: %q -> %t", smokeQuestion, answer)
}
