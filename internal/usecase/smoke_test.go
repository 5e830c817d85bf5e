package usecase

import (
	"context"
	"testing"

	"github.com/DRSN-tech/product-qc/internal/cfg"
	"github.com/stretchr/testify/assert"
)

type recordingEmbeddingService struct {
	embedInputs []string
	boolContent string
	boolCalls   int
}

func (r *recordingEmbeddingService) EmbedTexts(ctx context.Context, model string, inputs []string) ([][]float64, error) {
	r.embedInputs = inputs
	vectors := make([][]float64, len(inputs))
	for i := range vectors {
		vectors[i] = []float64{0.1, 0.2}
	}
	return vectors, nil
}

func (r *recordingEmbeddingService) GenerateBool(ctx context.Context, model string, question string, content string) (bool, error) {
	r.boolCalls++
	r.boolContent = content
	return true, nil
}

func TestSmokeRunUsesCatalogRows(t *testing.T) {
	ml := &recordingEmbeddingService{}
	repo := &fakeProductRepo{descriptions: []string{"red cotton t-shirt", "desk lamp", "usb cable"}}
	uc := NewSmokeUC(repo, ml, &cfg.MLCfg{TextModel: "text-model", BoolModel: "bool-model"}, noopLogger{})

	uc.Run(context.Background())

	// Проверка идёт по реальным строкам каталога, а не по зашитым примерам.
	assert.Equal(t, repo.descriptions, ml.embedInputs)
	assert.Equal(t, "red cotton t-shirt", ml.boolContent)
	assert.Equal(t, 1, ml.boolCalls)
}

func TestSmokeRunEmptyCatalog(t *testing.T) {
	ml := &recordingEmbeddingService{}
	uc := NewSmokeUC(&fakeProductRepo{}, ml, &cfg.MLCfg{}, noopLogger{})

	uc.Run(context.Background())

	// Пустой каталог: удалённые вызовы не выполняются.
	assert.Nil(t, ml.embedInputs)
	assert.Zero(t, ml.boolCalls)
}
