package domain

import "time"

// ImageRef — ссылка на изображение продукта: объект в хранилище и исходный локальный путь.
type ImageRef struct {
	URI       string `json:"uri"`
	LocalPath string `json:"local_path"`
}

// Product описывает нормализованную запись каталога.
// Обязателен только ProductID, остальные общие поля допускают отсутствие;
// колонки входа, не входящие в общий набор, без потерь складываются в Specs.
type Product struct {
	ProductID   string
	SKU         *string
	Brand       *string
	Category    *string
	Title       *string
	Description *string
	Specs       map[string]any
	Price       *float64
	Rating      *float64
	ReviewCount *int64
	Reviews     []string
	ImageRefs   []ImageRef
	IngestTS    time.Time
}

func NewProduct(productID string, ingestTS time.Time) *Product {
	return &Product{
		ProductID: productID,
		Specs:     map[string]any{},
		Reviews:   []string{},
		ImageRefs: []ImageRef{},
		IngestTS:  ingestTS,
	}
}
