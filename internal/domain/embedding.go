package domain

import (
	"fmt"
	"time"
)

// EmbeddingRow — одна строка таблицы эмбеддингов: ключ, исходное содержимое
// (текст или URI изображения) и вектор фиксированной длины от внешней модели.
// Для одиночных источников Key совпадает с ProductID; для отзывов Key
// синтетический, по одному на элемент развёрнутого списка.
type EmbeddingRow struct {
	Key       string
	ProductID string
	Source    string
	Vector    []float64
	EmbedTS   time.Time
}

func NewEmbeddingRow(key string, productID string, source string, vector []float64, embedTS time.Time) *EmbeddingRow {
	return &EmbeddingRow{
		Key:       key,
		ProductID: productID,
		Source:    source,
		Vector:    vector,
		EmbedTS:   embedTS,
	}
}

// ReviewKey строит синтетический ключ отзыва после one-to-many развёртки.
func ReviewKey(productID string, idx int) string {
	return fmt.Sprintf("%s#%d", productID, idx)
}

// Имена таблиц эмбеддингов в датасете. Зеркальные коллекции Qdrant
// называются так же.
const (
	TextEmbeddings   = "text_embeddings"
	ImageEmbeddings  = "image_embeddings"
	SpecEmbeddings   = "spec_embeddings"
	ReviewEmbeddings = "review_embeddings"
)
