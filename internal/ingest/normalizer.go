package ingest

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/DRSN-tech/product-qc/internal/domain"
	"github.com/DRSN-tech/product-qc/pkg/e"
	"github.com/shopspring/decimal"
)

// commonInputKeys — входные колонки, отображаемые в фиксированные поля продукта.
// Всё, что не входит в этот набор, без потерь уходит в specs.
var commonInputKeys = map[string]struct{}{
	"product_id":   {},
	"asin":         {},
	"sku":          {},
	"brand":        {},
	"category":     {},
	"categories":   {},
	"title":        {},
	"description":  {},
	"price":        {},
	"rating":       {},
	"review_count": {},
	"reviewCount":  {},
	"reviews":      {},
	"image_refs":   {},
}

var htmlTagRe = regexp.MustCompile(`<[^>]*>`)

// Normalizer приводит сырые записи метаданных продуктов к схеме таблицы products.
type Normalizer struct {
	now func() time.Time
}

func NewNormalizer() *Normalizer {
	return &Normalizer{now: time.Now}
}

// NormalizeFile читает файл метаданных (.json построчно либо .csv) и
// возвращает нормализованные записи. Неподдерживаемое расширение — фатальная
// ошибка вызова; неразбираемые значения отдельных полей коэрцируются в null.
// Записи без идентификатора продукта пропускаются, их число возвращается
// вторым значением. Всем строкам присваивается единая метка времени загрузки.
func (n *Normalizer) NormalizeFile(path string) ([]domain.Product, int, error) {
	var (
		raws []map[string]any
		err  error
	)

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		raws, err = readJSONLines(path)
	case ".csv":
		raws, err = readCSV(path)
	default:
		return nil, 0, e.Wrap(path, e.ErrUnsupportedFileType)
	}
	if err != nil {
		return nil, 0, err
	}

	ingestTS := n.now().UTC()
	products := make([]domain.Product, 0, len(raws))
	skipped := 0
	for _, raw := range raws {
		p := normalizeRecord(raw, ingestTS)
		if p.ProductID == "" {
			skipped++
			continue
		}
		products = append(products, *p)
	}

	return products, skipped, nil
}

// normalizeRecord отображает общие поля, складывает остальные колонки в specs
// и проставляет отсутствующим общим полям null.
func normalizeRecord(raw map[string]any, ingestTS time.Time) *domain.Product {
	productID := stringValue(raw["product_id"])
	if productID == "" {
		productID = stringValue(raw["asin"])
	}

	p := domain.NewProduct(strings.TrimSpace(productID), ingestTS)
	p.SKU = optString(raw, "sku")
	p.Brand = optNormalizedText(raw, "brand")
	p.Category = firstCategory(raw)
	p.Title = optNormalizedText(raw, "title")
	p.Description = optNormalizedText(raw, "description")
	p.Price = coerceFloat(raw["price"])
	p.Rating = coerceFloat(raw["rating"])
	p.ReviewCount = coerceInt(reviewCountValue(raw))
	p.Reviews = coerceReviews(raw["reviews"])

	for key, value := range raw {
		if _, common := commonInputKeys[key]; common {
			continue
		}
		p.Specs[key] = value
	}

	return p
}

// NormalizeText приводит текстовое поле к канонической форме: вырезает
// HTML-теги, убирает крайние пробелы и опускает регистр. Повторное применение
// не меняет результат.
func NormalizeText(s string) string {
	s = htmlTagRe.ReplaceAllString(s, "")
	return strings.ToLower(strings.TrimSpace(s))
}

// firstCategory берёт категорию из скалярного поля либо первый элемент списка
// categories; в CSV список приходит как JSON-строка.
func firstCategory(raw map[string]any) *string {
	if c := stringValue(raw["category"]); c != "" {
		normalized := NormalizeText(c)
		return &normalized
	}

	switch v := raw["categories"].(type) {
	case []any:
		if len(v) > 0 {
			if s := stringValue(v[0]); s != "" {
				normalized := NormalizeText(s)
				return &normalized
			}
		}
	case string:
		if v == "" {
			return nil
		}
		var list []any
		if err := json.Unmarshal([]byte(v), &list); err == nil {
			if len(list) > 0 {
				if s := stringValue(list[0]); s != "" {
					normalized := NormalizeText(s)
					return &normalized
				}
			}
			return nil
		}
		normalized := NormalizeText(v)
		return &normalized
	}

	return nil
}

func reviewCountValue(raw map[string]any) any {
	if v, ok := raw["review_count"]; ok {
		return v
	}
	return raw["reviewCount"]
}

func coerceReviews(v any) []string {
	list, ok := v.([]any)
	if !ok {
		return []string{}
	}

	reviews := make([]string, 0, len(list))
	for _, item := range list {
		if s := stringValue(item); s != "" {
			reviews = append(reviews, s)
		}
	}
	return reviews
}

func optString(raw map[string]any, key string) *string {
	s := strings.TrimSpace(stringValue(raw[key]))
	if s == "" {
		return nil
	}
	return &s
}

func optNormalizedText(raw map[string]any, key string) *string {
	s := NormalizeText(stringValue(raw[key]))
	if s == "" {
		return nil
	}
	return &s
}

func stringValue(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	default:
		return fmt.Sprintf("%v", s)
	}
}

// coerceFloat разбирает числовое поле; неразбираемое значение становится null,
// а не ошибкой всей загрузки.
func coerceFloat(v any) *float64 {
	switch val := v.(type) {
	case float64:
		return &val
	case int:
		f := float64(val)
		return &f
	case string:
		val = strings.TrimSpace(val)
		if val == "" {
			return nil
		}
		d, err := decimal.NewFromString(val)
		if err != nil {
			return nil
		}
		f := d.InexactFloat64()
		return &f
	default:
		return nil
	}
}

func coerceInt(v any) *int64 {
	switch val := v.(type) {
	case float64:
		i := int64(val)
		return &i
	case int:
		i := int64(val)
		return &i
	case string:
		val = strings.TrimSpace(val)
		if val == "" {
			return nil
		}
		d, err := decimal.NewFromString(val)
		if err != nil {
			return nil
		}
		i := d.IntPart()
		return &i
	default:
		return nil
	}
}
