package usecase

import (
	"context"
	"sort"

	"github.com/DRSN-tech/product-qc/internal/domain"
	"github.com/DRSN-tech/product-qc/internal/vector"
	"github.com/DRSN-tech/product-qc/pkg/e"
	"github.com/DRSN-tech/product-qc/pkg/logger"
)

// CheckerUC проверяет согласованность модальностей и ищет похожие продукты.
type CheckerUC struct {
	embeddingRepo EmbeddingRepository
	productRepo   ProductRepository
	vectorIndex   VectorIndex
	cache         SummaryCache
	threshold     float64
	logger        logger.Logger
}

func NewCheckerUC(
	embeddingRepo EmbeddingRepository,
	productRepo ProductRepository,
	vectorIndex VectorIndex,
	cache SummaryCache,
	threshold float64,
	logger logger.Logger,
) *CheckerUC {
	return &CheckerUC{
		embeddingRepo: embeddingRepo,
		productRepo:   productRepo,
		vectorIndex:   vectorIndex,
		cache:         cache,
		threshold:     threshold,
		logger:        logger,
	}
}

// CheckConsistency сравнивает текстовый и визуальный векторы каждого
// продукта и возвращает продукты ниже порога, худшие первыми.
func (c *CheckerUC) CheckConsistency(ctx context.Context) ([]MismatchRow, error) {
	const op = "CheckerUC.CheckConsistency"

	pairs, err := c.embeddingRepo.CrossModalPairs(ctx)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	mismatches := make([]MismatchRow, 0)
	for _, pair := range pairs {
		similarity, err := vector.Cosine(pair.TextVector, pair.ImageVector)
		if err != nil {
			return nil, e.Wrap(op, err)
		}

		if similarity < c.threshold {
			mismatches = append(mismatches, MismatchRow{
				ProductID:  pair.ProductID,
				Similarity: similarity,
			})
		}
	}

	sort.Slice(mismatches, func(i, j int) bool {
		return mismatches[i].Similarity < mismatches[j].Similarity
	})

	c.logger.Infof("consistency check: %d of %d products below threshold %.2f", len(mismatches), len(pairs), c.threshold)

	return mismatches, nil
}

// SearchSimilar находит topK ближайших соседей продукта по текстовому
// вектору, исключая сам продукт, и обогащает их карточками из каталога.
func (c *CheckerUC) SearchSimilar(ctx context.Context, productID string, topK int) ([]SearchHit, error) {
	const op = "CheckerUC.SearchSimilar"

	if productID == "" {
		return nil, e.Wrap(op, e.ErrProductIDRequired)
	}

	queryVector, err := c.embeddingRepo.Vector(ctx, domain.TextEmbeddings, productID)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	neighbors, err := c.vectorIndex.SearchNeighbors(ctx, domain.TextEmbeddings, queryVector, topK, productID)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	ids := make([]string, 0, len(neighbors))
	for _, n := range neighbors {
		ids = append(ids, n.ProductID)
	}

	summaries, err := c.summariesFor(ctx, ids)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	hits := make([]SearchHit, 0, len(neighbors))
	for _, n := range neighbors {
		hit := SearchHit{ProductID: n.ProductID, Score: n.Score}
		if summary, ok := summaries[n.ProductID]; ok {
			hit.Title = summary.Title
			hit.Brand = summary.Brand
			hit.Category = summary.Category
		}
		hits = append(hits, hit)
	}

	return hits, nil
}

// summariesFor собирает карточки: сперва из кэша, промахи добирает из БД
// и дописывает обратно в кэш.
func (c *CheckerUC) summariesFor(ctx context.Context, ids []string) (map[string]ProductSummary, error) {
	cached, err := c.cache.GetSummaries(ctx, ids)
	if err != nil {
		c.logger.Warnf("summary cache unavailable: %v", err)
		cached = map[string]ProductSummary{}
	}

	missing := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := cached[id]; !ok {
			missing = append(missing, id)
		}
	}
	if len(missing) == 0 {
		return cached, nil
	}

	fromDB, err := c.productRepo.GetSummaries(ctx, missing)
	if err != nil {
		return nil, err
	}

	toCache := make([]ProductSummary, 0, len(fromDB))
	for id, summary := range fromDB {
		cached[id] = summary
		toCache = append(toCache, summary)
	}

	if err := c.cache.SetSummaries(ctx, toCache); err != nil {
		c.logger.Warnf("failed to cache product summaries: %v", err)
	}

	return cached, nil
}
