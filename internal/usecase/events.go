package usecase

import (
	"context"
	"time"

	"github.com/DRSN-tech/product-qc/internal/cfg"
	"github.com/DRSN-tech/product-qc/pkg/logger"
	"github.com/google/uuid"
)

// Виды событий пайплайна.
const (
	EventLoadCompleted         = "load.completed"
	EventImagesLinked          = "images.linked"
	EventEmbeddingsRegenerated = "embeddings.regenerated"
	EventValidationFinished    = "validation.finished"
)

// publishEvent отправляет событие этапа best-effort: без продюсера это no-op,
// ошибка публикации не валит пайплайн.
func publishEvent(
	ctx context.Context,
	producer EventProducer,
	log logger.Logger,
	pipeline *cfg.PipelineCfg,
	kind string,
	details map[string]any,
) {
	if producer == nil {
		return
	}

	event := &PipelineEvent{
		EventID:    uuid.NewString(),
		Kind:       kind,
		Project:    pipeline.ProjectID,
		Dataset:    pipeline.Dataset,
		OccurredAt: time.Now().UTC(),
		Details:    details,
	}

	if err := producer.Publish(ctx, event); err != nil {
		log.Warnf("failed to publish %s event: %v", kind, err)
	}
}
