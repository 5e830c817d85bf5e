package usecase

import (
	"time"

	"github.com/DRSN-tech/product-qc/internal/domain"
)

// LOADER

// LoadReport — итог загрузки нормализованных записей в таблицу продуктов.
type LoadReport struct {
	Rows      int64
	Truncated bool
}

// IMAGE LINKER

// ImageRefPatch — ссылки на изображения одного продукта для обновления каталога.
type ImageRefPatch struct {
	ProductID string
	Refs      []domain.ImageRef
}

// LinkReport — итог привязки изображений: сколько файлов загружено
// и сколько каталогов пропущено из-за неизвестного продукта.
type LinkReport struct {
	Linked         int64
	Products       int
	SkippedUnknown int
}

// EMBEDDER

// EmbedSource — единица содержимого для векторизации: текст либо URI объекта.
type EmbedSource struct {
	Key       string
	ProductID string
	Content   string
}

// EmbedReport — количество строк, записанных в каждую перегенерированную таблицу.
type EmbedReport struct {
	Tables map[string]int64
}

// CHECKER

// VectorPair — кросс-модальная пара векторов одного продукта.
type VectorPair struct {
	ProductID   string
	TextVector  []float64
	ImageVector []float64
}

// MismatchRow — продукт, чьи текст и изображение разошлись ниже порога.
type MismatchRow struct {
	ProductID  string
	Similarity float64
}

// Neighbor — сосед по векторному индексу.
type Neighbor struct {
	ProductID string
	Score     float64
}

// ProductSummary — краткая карточка продукта для выдачи поиска.
type ProductSummary struct {
	ProductID string `json:"product_id"`
	Title     string `json:"title"`
	Brand     string `json:"brand"`
	Category  string `json:"category"`
}

// SearchHit — сосед, обогащённый карточкой продукта.
type SearchHit struct {
	ProductID string  `json:"product_id"`
	Score     float64 `json:"score"`
	Title     string  `json:"title"`
	Brand     string  `json:"brand"`
	Category  string  `json:"category"`
}

// VALIDATOR

// CoverageStats — счётчики заполненности каталога.
type CoverageStats struct {
	TotalRows       int64
	WithDescription int64
	WithSpecs       int64
	WithImages      int64
}

// ValidationReport — доли покрытия и общий вердикт.
type ValidationReport struct {
	Stats            CoverageStats
	DescriptionRatio float64
	SpecsRatio       float64
	ImagesRatio      float64
	Passed           bool
}

// EVENTS

// PipelineEvent — событие этапа пайплайна для шины.
type PipelineEvent struct {
	EventID    string         `json:"event_id"`
	Kind       string         `json:"kind"`
	Project    string         `json:"project"`
	Dataset    string         `json:"dataset"`
	OccurredAt time.Time      `json:"occurred_at"`
	Details    map[string]any `json:"details,omitempty"`
}

// MAPPERS

func NewImageRefPatch(productID string, refs []domain.ImageRef) ImageRefPatch {
	return ImageRefPatch{
		ProductID: productID,
		Refs:      refs,
	}
}

func NewEmbedSource(key string, productID string, content string) EmbedSource {
	return EmbedSource{
		Key:       key,
		ProductID: productID,
		Content:   content,
	}
}

func NewNeighbor(productID string, score float64) Neighbor {
	return Neighbor{
		ProductID: productID,
		Score:     score,
	}
}

func NewProductSummary(productID string, title string, brand string, category string) ProductSummary {
	return ProductSummary{
		ProductID: productID,
		Title:     title,
		Brand:     brand,
		Category:  category,
	}
}
