package domain

import "time"

// ImageRecord связывает продукт с локальным файлом изображения и объектом в хранилище.
// Уникальность гарантируется только по пути: один продукт может иметь много записей.
type ImageRecord struct {
	ProductID string
	LocalPath string
	ObjectURI string
	IngestTS  time.Time
}

func NewImageRecord(productID string, localPath string, ingestTS time.Time) *ImageRecord {
	return &ImageRecord{
		ProductID: productID,
		LocalPath: localPath,
		IngestTS:  ingestTS,
	}
}
