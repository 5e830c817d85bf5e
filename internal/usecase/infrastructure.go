package usecase

import "context"

// EmbeddingService — вендорский ML-эндпоинт: модель вызывается по имени,
// содержимое (текст либо URI объекта) передаётся как вход.
type EmbeddingService interface {
	EmbedTexts(ctx context.Context, model string, inputs []string) ([][]float64, error)
	GenerateBool(ctx context.Context, model string, question string, content string) (bool, error)
}

// EventProducer публикует события этапов пайплайна.
type EventProducer interface {
	Publish(ctx context.Context, event *PipelineEvent) error
}
