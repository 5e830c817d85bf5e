package usecase

import (
	"context"
	"testing"

	"github.com/DRSN-tech/product-qc/internal/domain"
	"github.com/DRSN-tech/product-qc/pkg/e"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeEmbeddingService struct {
	vectors [][]float64
	err     error
}

func (f *fakeEmbeddingService) EmbedTexts(ctx context.Context, model string, inputs []string) ([][]float64, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.vectors, nil
}

func (f *fakeEmbeddingService) GenerateBool(ctx context.Context, model string, question string, content string) (bool, error) {
	return false, nil
}

func TestVectorize(t *testing.T) {
	uc := &EmbedderUC{
		mlService: &fakeEmbeddingService{vectors: [][]float64{{0.1, 0.2}, {0.3, 0.4}}},
		logger:    noopLogger{},
	}

	sources := []EmbedSource{
		NewEmbedSource("p1", "p1", "first description"),
		NewEmbedSource(domain.ReviewKey("p2", 0), "p2", "first review"),
	}

	rows, err := uc.vectorize(context.Background(), "test-model", sources)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "p1", rows[0].Key)
	assert.Equal(t, "p1", rows[0].ProductID)
	assert.Equal(t, "first description", rows[0].Source)
	assert.Equal(t, []float64{0.1, 0.2}, rows[0].Vector)

	// Отзыв получает синтетический ключ, но ссылается на свой продукт.
	assert.Equal(t, "p2#0", rows[1].Key)
	assert.Equal(t, "p2", rows[1].ProductID)

	// Вся пачка получает единую метку времени.
	assert.Equal(t, rows[0].EmbedTS, rows[1].EmbedTS)
}

func TestVectorizeCountMismatch(t *testing.T) {
	uc := &EmbedderUC{
		mlService: &fakeEmbeddingService{vectors: [][]float64{{0.1}}},
		logger:    noopLogger{},
	}

	sources := []EmbedSource{
		NewEmbedSource("p1", "p1", "a"),
		NewEmbedSource("p2", "p2", "b"),
	}

	_, err := uc.vectorize(context.Background(), "test-model", sources)
	require.ErrorIs(t, err, e.ErrVectorCountMismatch)
}

func TestVectorizeEmptyVector(t *testing.T) {
	uc := &EmbedderUC{
		mlService: &fakeEmbeddingService{vectors: [][]float64{{}}},
		logger:    noopLogger{},
	}

	_, err := uc.vectorize(context.Background(), "test-model", []EmbedSource{NewEmbedSource("p1", "p1", "a")})
	require.ErrorIs(t, err, e.ErrEmptyVectors)
}

func TestVectorizeNoSources(t *testing.T) {
	uc := &EmbedderUC{
		mlService: &fakeEmbeddingService{},
		logger:    noopLogger{},
	}

	rows, err := uc.vectorize(context.Background(), "test-model", nil)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestReviewKey(t *testing.T) {
	assert.Equal(t, "B0001#0", domain.ReviewKey("B0001", 0))
	assert.Equal(t, "B0001#12", domain.ReviewKey("B0001", 12))
}
