package minio

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/DRSN-tech/product-qc/internal/cfg"
	"github.com/DRSN-tech/product-qc/pkg/e"
	"github.com/jimlawless/whereami"
	"github.com/minio/minio-go/v7"
)

var contentTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".webp": "image/webp",
}

// ObjectRepo реализует объектное хранилище изображений поверх MinIO.
type ObjectRepo struct {
	mc  *minio.Client
	cfg *cfg.MinIOCfg
}

func NewObjectRepo(mc *minio.Client, cfg *cfg.MinIOCfg) *ObjectRepo {
	return &ObjectRepo{
		mc:  mc,
		cfg: cfg,
	}
}

// UploadFile загружает локальный файл и возвращает URI объекта.
func (o *ObjectRepo) UploadFile(ctx context.Context, localPath string, objectKey string) (string, error) {
	contentType := contentTypes[strings.ToLower(filepath.Ext(localPath))]

	_, err := o.mc.FPutObject(ctx, o.cfg.BucketName, objectKey, localPath, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", e.Wrap(whereami.WhereAmI(), err)
	}

	return fmt.Sprintf("s3://%s/%s", o.cfg.BucketName, objectKey), nil
}

// RemoveObjects удаляет объекты по ключам. Первая ошибка прекращает обход:
// хвост подчистится при следующей привязке за счёт детерминированных ключей.
func (o *ObjectRepo) RemoveObjects(ctx context.Context, objectKeys []string) error {
	for _, key := range objectKeys {
		err := o.mc.RemoveObject(ctx, o.cfg.BucketName, key, minio.RemoveObjectOptions{})
		if err != nil {
			return e.Wrap(whereami.WhereAmI(), err)
		}
	}

	return nil
}
