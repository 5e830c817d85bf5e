package vector

import (
	"math"

	"github.com/DRSN-tech/product-qc/pkg/e"
)

// Cosine возвращает косинусную близость двух векторов — нормированное
// скалярное произведение. Значение симметрично относительно аргументов.
// Нулевой вектор даёт близость 0, расхождение длин — ошибку.
func Cosine(a, b []float64) (float64, error) {
	if len(a) == 0 || len(b) == 0 {
		return 0, e.ErrEmptyVectors
	}
	if len(a) != len(b) {
		return 0, e.ErrVectorLengthMismatch
	}

	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}

	if normA == 0 || normB == 0 {
		return 0, nil
	}

	return dot / (math.Sqrt(normA) * math.Sqrt(normB)), nil
}

// Normalize приводит вектор к единичной длине.
// Возвращает новый вектор; нулевой вектор остаётся нулевым.
func Normalize(v []float64) []float64 {
	if len(v) == 0 {
		return v
	}

	var magnitude float64
	for _, val := range v {
		magnitude += val * val
	}
	magnitude = math.Sqrt(magnitude)

	result := make([]float64, len(v))
	if magnitude == 0 {
		return result
	}

	for i, val := range v {
		result[i] = val / magnitude
	}
	return result
}
