package usecase

import (
	"context"

	"github.com/DRSN-tech/product-qc/internal/domain"
)

type ProductRepository interface {
	ReplaceAll(ctx context.Context, products []domain.Product) (int64, error)
	Append(ctx context.Context, products []domain.Product) (int64, error)
	ListIDs(ctx context.Context) ([]string, error)
	PatchImageRefs(ctx context.Context, patches []ImageRefPatch) error
	GetSummaries(ctx context.Context, ids []string) (map[string]ProductSummary, error)
	CoverageStats(ctx context.Context) (*CoverageStats, error)
	SampleDescriptions(ctx context.Context, limit int) ([]string, error)
}

type ImageRecordRepository interface {
	Insert(ctx context.Context, records []domain.ImageRecord) (int64, error)
	URISources(ctx context.Context) ([]EmbedSource, error)
}

// EmbeddingRepository владеет таблицами эмбеддингов: читает исходное
// содержимое из каталога и полностью заменяет таблицы векторами.
type EmbeddingRepository interface {
	Replace(ctx context.Context, table string, rows []domain.EmbeddingRow) (int64, error)
	TextSources(ctx context.Context) ([]EmbedSource, error)
	SpecSources(ctx context.Context) ([]EmbedSource, error)
	ReviewSources(ctx context.Context) ([]EmbedSource, error)
	CrossModalPairs(ctx context.Context) ([]VectorPair, error)
	Vector(ctx context.Context, table string, productID string) ([]float64, error)
}

// VectorIndex — зеркало таблиц эмбеддингов для поиска ближайших соседей.
type VectorIndex interface {
	EnsureCollection(ctx context.Context, name string, vectorSize uint64) (domain.EnsureOutcome, error)
	ReplacePoints(ctx context.Context, collection string, rows []domain.EmbeddingRow) error
	SearchNeighbors(ctx context.Context, collection string, vector []float64, topK int, excludeProductID string) ([]Neighbor, error)
}

type ObjectStorage interface {
	UploadFile(ctx context.Context, localPath string, objectKey string) (string, error)
	RemoveObjects(ctx context.Context, objectKeys []string) error
}

type SummaryCache interface {
	GetSummaries(ctx context.Context, ids []string) (map[string]ProductSummary, error)
	SetSummaries(ctx context.Context, summaries []ProductSummary) error
}
