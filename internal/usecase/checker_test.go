package usecase

import (
	"context"
	"math"
	"testing"

	"github.com/DRSN-tech/product-qc/internal/domain"
	"github.com/DRSN-tech/product-qc/pkg/e"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type noopLogger struct{}

func (noopLogger) Infof(format string, args ...any)             {}
func (noopLogger) Warnf(format string, args ...any)             {}
func (noopLogger) Errorf(err error, format string, args ...any) {}

type fakeEmbeddingRepo struct {
	pairs   []VectorPair
	vectors map[string][]float64
}

func (f *fakeEmbeddingRepo) Replace(ctx context.Context, table string, rows []domain.EmbeddingRow) (int64, error) {
	return int64(len(rows)), nil
}

func (f *fakeEmbeddingRepo) TextSources(ctx context.Context) ([]EmbedSource, error) { return nil, nil }
func (f *fakeEmbeddingRepo) SpecSources(ctx context.Context) ([]EmbedSource, error) { return nil, nil }
func (f *fakeEmbeddingRepo) ReviewSources(ctx context.Context) ([]EmbedSource, error) {
	return nil, nil
}

func (f *fakeEmbeddingRepo) CrossModalPairs(ctx context.Context) ([]VectorPair, error) {
	return f.pairs, nil
}

func (f *fakeEmbeddingRepo) Vector(ctx context.Context, table string, productID string) ([]float64, error) {
	v, ok := f.vectors[productID]
	if !ok {
		return nil, e.ErrEmbeddingNotFound
	}
	return v, nil
}

type fakeVectorIndex struct {
	neighbors []Neighbor
}

func (f *fakeVectorIndex) EnsureCollection(ctx context.Context, name string, vectorSize uint64) (domain.EnsureOutcome, error) {
	return domain.EnsureAlreadyExisted, nil
}

func (f *fakeVectorIndex) ReplacePoints(ctx context.Context, collection string, rows []domain.EmbeddingRow) error {
	return nil
}

func (f *fakeVectorIndex) SearchNeighbors(ctx context.Context, collection string, vector []float64, topK int, excludeProductID string) ([]Neighbor, error) {
	return f.neighbors, nil
}

type fakeProductRepo struct {
	ids          []string
	summaries    map[string]ProductSummary
	descriptions []string
	patched      []ImageRefPatch
}

func (f *fakeProductRepo) ReplaceAll(ctx context.Context, products []domain.Product) (int64, error) {
	return 0, nil
}

func (f *fakeProductRepo) Append(ctx context.Context, products []domain.Product) (int64, error) {
	return 0, nil
}

func (f *fakeProductRepo) ListIDs(ctx context.Context) ([]string, error) { return f.ids, nil }

func (f *fakeProductRepo) PatchImageRefs(ctx context.Context, patches []ImageRefPatch) error {
	f.patched = patches
	return nil
}

func (f *fakeProductRepo) GetSummaries(ctx context.Context, ids []string) (map[string]ProductSummary, error) {
	res := map[string]ProductSummary{}
	for _, id := range ids {
		if s, ok := f.summaries[id]; ok {
			res[id] = s
		}
	}
	return res, nil
}

func (f *fakeProductRepo) CoverageStats(ctx context.Context) (*CoverageStats, error) {
	return &CoverageStats{}, nil
}

func (f *fakeProductRepo) SampleDescriptions(ctx context.Context, limit int) ([]string, error) {
	if len(f.descriptions) > limit {
		return f.descriptions[:limit], nil
	}
	return f.descriptions, nil
}

type fakeSummaryCache struct {
	stored map[string]ProductSummary
}

func (f *fakeSummaryCache) GetSummaries(ctx context.Context, ids []string) (map[string]ProductSummary, error) {
	res := map[string]ProductSummary{}
	for _, id := range ids {
		if s, ok := f.stored[id]; ok {
			res[id] = s
		}
	}
	return res, nil
}

func (f *fakeSummaryCache) SetSummaries(ctx context.Context, summaries []ProductSummary) error {
	for _, s := range summaries {
		f.stored[s.ProductID] = s
	}
	return nil
}

func TestCheckConsistency(t *testing.T) {
	repo := &fakeEmbeddingRepo{
		pairs: []VectorPair{
			{ProductID: "aligned", TextVector: []float64{1, 0}, ImageVector: []float64{1, 0}},
			{ProductID: "slightly-off", TextVector: []float64{1, 0}, ImageVector: []float64{1, 3}},
			{ProductID: "orthogonal", TextVector: []float64{1, 0}, ImageVector: []float64{0, 1}},
		},
	}
	uc := NewCheckerUC(repo, &fakeProductRepo{}, &fakeVectorIndex{}, &fakeSummaryCache{stored: map[string]ProductSummary{}}, 0.3, noopLogger{})

	mismatches, err := uc.CheckConsistency(context.Background())
	require.NoError(t, err)

	// cos(aligned)=1 и cos(slightly-off)≈0.316 выше порога 0.3,
	// ортогональная пара ниже.
	require.Len(t, mismatches, 1)
	assert.Equal(t, "orthogonal", mismatches[0].ProductID)
	assert.InDelta(t, 0, mismatches[0].Similarity, 1e-9)
}

func TestCheckConsistencyThresholdBoundary(t *testing.T) {
	// Единичные векторы с точной косинусной близостью к (1, 0):
	// 0.25 ниже порога 0.3, 0.35 выше.
	repo := &fakeEmbeddingRepo{
		pairs: []VectorPair{
			{ProductID: "below", TextVector: []float64{1, 0}, ImageVector: []float64{0.25, math.Sqrt(1 - 0.25*0.25)}},
			{ProductID: "above", TextVector: []float64{1, 0}, ImageVector: []float64{0.35, math.Sqrt(1 - 0.35*0.35)}},
		},
	}
	uc := NewCheckerUC(repo, &fakeProductRepo{}, &fakeVectorIndex{}, &fakeSummaryCache{stored: map[string]ProductSummary{}}, 0.3, noopLogger{})

	mismatches, err := uc.CheckConsistency(context.Background())
	require.NoError(t, err)

	require.Len(t, mismatches, 1)
	assert.Equal(t, "below", mismatches[0].ProductID)
	assert.InDelta(t, 0.25, mismatches[0].Similarity, 1e-9)
}

func TestCheckConsistencySortsWorstFirst(t *testing.T) {
	repo := &fakeEmbeddingRepo{
		pairs: []VectorPair{
			{ProductID: "bad", TextVector: []float64{1, 0}, ImageVector: []float64{1, 10}},
			{ProductID: "worse", TextVector: []float64{1, 0}, ImageVector: []float64{0, 1}},
		},
	}
	uc := NewCheckerUC(repo, &fakeProductRepo{}, &fakeVectorIndex{}, &fakeSummaryCache{stored: map[string]ProductSummary{}}, 0.3, noopLogger{})

	mismatches, err := uc.CheckConsistency(context.Background())
	require.NoError(t, err)

	require.Len(t, mismatches, 2)
	assert.Equal(t, "worse", mismatches[0].ProductID)
	assert.Equal(t, "bad", mismatches[1].ProductID)
}

func TestSearchSimilar(t *testing.T) {
	repo := &fakeEmbeddingRepo{
		vectors: map[string][]float64{"query": {1, 0}},
	}
	index := &fakeVectorIndex{
		neighbors: []Neighbor{
			{ProductID: "n1", Score: 0.95},
			{ProductID: "n2", Score: 0.80},
		},
	}
	products := &fakeProductRepo{
		summaries: map[string]ProductSummary{
			"n1": {ProductID: "n1", Title: "desk lamp", Brand: "acme", Category: "lighting"},
		},
	}
	cache := &fakeSummaryCache{stored: map[string]ProductSummary{}}
	uc := NewCheckerUC(repo, products, index, cache, 0.3, noopLogger{})

	hits, err := uc.SearchSimilar(context.Background(), "query", 5)
	require.NoError(t, err)

	require.Len(t, hits, 2)
	assert.Equal(t, "n1", hits[0].ProductID)
	assert.Equal(t, "desk lamp", hits[0].Title)
	assert.InDelta(t, 0.95, hits[0].Score, 1e-9)

	// Сосед без карточки остаётся в выдаче с пустыми полями.
	assert.Equal(t, "n2", hits[1].ProductID)
	assert.Empty(t, hits[1].Title)

	// Карточки из БД дописываются в кэш.
	assert.Contains(t, cache.stored, "n1")
}

func TestSearchSimilarRequiresProductID(t *testing.T) {
	uc := NewCheckerUC(&fakeEmbeddingRepo{}, &fakeProductRepo{}, &fakeVectorIndex{}, &fakeSummaryCache{stored: map[string]ProductSummary{}}, 0.3, noopLogger{})

	_, err := uc.SearchSimilar(context.Background(), "", 5)
	require.ErrorIs(t, err, e.ErrProductIDRequired)
}

func TestSearchSimilarUnknownProduct(t *testing.T) {
	uc := NewCheckerUC(&fakeEmbeddingRepo{vectors: map[string][]float64{}}, &fakeProductRepo{}, &fakeVectorIndex{}, &fakeSummaryCache{stored: map[string]ProductSummary{}}, 0.3, noopLogger{})

	_, err := uc.SearchSimilar(context.Background(), "ghost", 5)
	require.ErrorIs(t, err, e.ErrEmbeddingNotFound)
}
