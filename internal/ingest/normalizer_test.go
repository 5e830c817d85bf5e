package ingest

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/DRSN-tech/product-qc/pkg/e"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedNormalizer(ts time.Time) *Normalizer {
	return &Normalizer{now: func() time.Time { return ts }}
}

func writeTempFile(t *testing.T, name string, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestNormalizeFileJSON(t *testing.T) {
	content := `{"asin":"B0001","title":"<b>Great</b> Microphone ","brand":"SHURE","categories":["Electronics","Audio"],"price":"59.90","rating":4.5,"reviewCount":12,"color":"black","weight_grams":310}
{"asin":"B0002","description":"USB <i>cable</i>","price":"not-a-price","rating":"bad","reviewCount":""}

`
	ts := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	products, skipped, err := fixedNormalizer(ts).NormalizeFile(writeTempFile(t, "meta.json", content))
	require.NoError(t, err)
	assert.Zero(t, skipped)
	require.Len(t, products, 2)

	first := products[0]
	assert.Equal(t, "B0001", first.ProductID)
	require.NotNil(t, first.Title)
	assert.Equal(t, "great microphone", *first.Title)
	require.NotNil(t, first.Brand)
	assert.Equal(t, "shure", *first.Brand)
	require.NotNil(t, first.Category)
	assert.Equal(t, "electronics", *first.Category)
	require.NotNil(t, first.Price)
	assert.InDelta(t, 59.90, *first.Price, 1e-9)
	require.NotNil(t, first.Rating)
	assert.InDelta(t, 4.5, *first.Rating, 1e-9)
	require.NotNil(t, first.ReviewCount)
	assert.Equal(t, int64(12), *first.ReviewCount)

	// Неизвестные колонки без потерь уходят в specs.
	assert.Equal(t, "black", first.Specs["color"])
	assert.Equal(t, float64(310), first.Specs["weight_grams"])
	assert.NotContains(t, first.Specs, "title")
	assert.NotContains(t, first.Specs, "categories")

	// Неразбираемые значения полей становятся null, а не ошибкой.
	second := products[1]
	assert.Nil(t, second.Price)
	assert.Nil(t, second.Rating)
	assert.Nil(t, second.ReviewCount)
	require.NotNil(t, second.Description)
	assert.Equal(t, "usb cable", *second.Description)

	// Все строки получают единую метку времени, списки не равны nil.
	for _, p := range products {
		assert.Equal(t, ts, p.IngestTS)
		assert.NotNil(t, p.Reviews)
		assert.Empty(t, p.Reviews)
		assert.NotNil(t, p.ImageRefs)
		assert.Empty(t, p.ImageRefs)
		assert.NotNil(t, p.Specs)
	}
}

func TestNormalizeFileCSV(t *testing.T) {
	content := "asin,title,categories,price,color\n" +
		"B0010,Desk Lamp,\"[\"\"Home\"\",\"\"Lighting\"\"]\",24.99,white\n" +
		"B0011,Bookshelf,,oops,\n"

	products, skipped, err := fixedNormalizer(time.Now()).NormalizeFile(writeTempFile(t, "meta.csv", content))
	require.NoError(t, err)
	assert.Zero(t, skipped)
	require.Len(t, products, 2)

	first := products[0]
	assert.Equal(t, "B0010", first.ProductID)
	require.NotNil(t, first.Category)
	assert.Equal(t, "home", *first.Category)
	require.NotNil(t, first.Price)
	assert.InDelta(t, 24.99, *first.Price, 1e-9)
	assert.Equal(t, "white", first.Specs["color"])

	second := products[1]
	assert.Nil(t, second.Category)
	assert.Nil(t, second.Price)
	assert.Nil(t, second.SKU)
}

func TestNormalizeFileUnsupportedExtension(t *testing.T) {
	_, _, err := NewNormalizer().NormalizeFile(writeTempFile(t, "meta.txt", "whatever"))
	require.ErrorIs(t, err, e.ErrUnsupportedFileType)
}

func TestNormalizeFileSkipsRowsWithoutProductID(t *testing.T) {
	content := `{"title":"Mystery Item","price":"9.99"}
{"asin":"B0003","title":"Known Item"}
{"product_id":"  ","title":"Blank ID"}
`
	products, skipped, err := fixedNormalizer(time.Now()).NormalizeFile(writeTempFile(t, "meta.json", content))
	require.NoError(t, err)

	// Строки без product_id/asin не попадают в загрузку.
	assert.Equal(t, 2, skipped)
	require.Len(t, products, 1)
	assert.Equal(t, "B0003", products[0].ProductID)
}

func TestNormalizeTextIdempotent(t *testing.T) {
	samples := []string{
		"  <b>Great</b> Microphone ",
		"PLAIN TEXT",
		"already normalized",
		"<div><p>nested <span>tags</span></p></div>",
		"",
	}

	for _, s := range samples {
		once := NormalizeText(s)
		twice := NormalizeText(once)
		assert.Equal(t, once, twice, "normalization must be idempotent for %q", s)
	}
}

func TestNormalizeRecordMissingCommons(t *testing.T) {
	p := normalizeRecord(map[string]any{"asin": "B0042"}, time.Now())

	assert.Equal(t, "B0042", p.ProductID)
	assert.Nil(t, p.SKU)
	assert.Nil(t, p.Brand)
	assert.Nil(t, p.Category)
	assert.Nil(t, p.Title)
	assert.Nil(t, p.Description)
	assert.Nil(t, p.Price)
	assert.Nil(t, p.Rating)
	assert.Nil(t, p.ReviewCount)
	assert.Empty(t, p.Specs)
}

func TestNormalizeRecordCapturesReviews(t *testing.T) {
	p := normalizeRecord(map[string]any{
		"asin":    "B0077",
		"reviews": []any{"solid build", "arrived broken"},
	}, time.Now())

	assert.Equal(t, []string{"solid build", "arrived broken"}, p.Reviews)
}
