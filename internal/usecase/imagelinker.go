package usecase

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/DRSN-tech/product-qc/internal/cfg"
	"github.com/DRSN-tech/product-qc/internal/domain"
	"github.com/DRSN-tech/product-qc/internal/linker"
	"github.com/DRSN-tech/product-qc/pkg/e"
	"github.com/DRSN-tech/product-qc/pkg/logger"
	transaction "github.com/avito-tech/go-transaction-manager/drivers/pgxv5/v2"
	"github.com/jackc/pgx/v5"
)

// ImageLinkUC привязывает локальные изображения к продуктам: загружает
// файлы в объектное хранилище, пишет таблицу изображений и обновляет
// ссылки в каталоге.
type ImageLinkUC struct {
	productRepo ProductRepository
	imageRepo   ImageRecordRepository
	storage     ObjectStorage
	dbPool      transaction.Transactional
	events      EventProducer
	pipeline    *cfg.PipelineCfg
	logger      logger.Logger
}

func NewImageLinkUC(
	productRepo ProductRepository,
	imageRepo ImageRecordRepository,
	storage ObjectStorage,
	dbPool transaction.Transactional,
	events EventProducer,
	pipeline *cfg.PipelineCfg,
	logger logger.Logger,
) *ImageLinkUC {
	return &ImageLinkUC{
		productRepo: productRepo,
		imageRepo:   imageRepo,
		storage:     storage,
		dbPool:      dbPool,
		events:      events,
		pipeline:    pipeline,
		logger:      logger,
	}
}

// LinkImages обходит <root>/<product_id>/* и связывает найденные файлы
// с существующими продуктами. Каталоги без соответствия в таблице
// продуктов пропускаются с предупреждением.
func (u *ImageLinkUC) LinkImages(ctx context.Context, root string) (*LinkReport, error) {
	const op = "ImageLinkUC.LinkImages"

	now := time.Now().UTC()

	collected, err := linker.Collect(root, now, u.logger)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	knownIDs, err := u.productRepo.ListIDs(ctx)
	if err != nil {
		return nil, e.Wrap(op, err)
	}
	known := make(map[string]struct{}, len(knownIDs))
	for _, id := range knownIDs {
		known[id] = struct{}{}
	}

	skipped := 0
	records := make([]domain.ImageRecord, 0, len(collected.Records))
	patches := make([]ImageRefPatch, 0, len(collected.PerProduct))
	objectKeys := make([]string, 0, len(collected.Records))

	for productID, refs := range collected.PerProduct {
		if _, ok := known[productID]; !ok {
			u.logger.Warnf("skipping images for unknown product %q", productID)
			skipped++
			continue
		}

		uploaded := make([]domain.ImageRef, 0, len(refs))
		for _, ref := range refs {
			objectKey := fmt.Sprintf("%s/%s", productID, filepath.Base(ref.LocalPath))

			uri, err := u.storage.UploadFile(ctx, ref.LocalPath, objectKey)
			if err != nil {
				return nil, e.Wrap(op, err)
			}

			objectKeys = append(objectKeys, objectKey)
			uploaded = append(uploaded, domain.ImageRef{URI: uri, LocalPath: ref.LocalPath})
		}

		patches = append(patches, NewImageRefPatch(productID, uploaded))
		for _, ref := range uploaded {
			records = append(records, domain.ImageRecord{
				ProductID: productID,
				LocalPath: ref.LocalPath,
				ObjectURI: ref.URI,
				IngestTS:  now,
			})
		}
	}

	ctx, tx, err := transaction.NewTransaction(ctx, pgx.TxOptions{}, u.dbPool)
	if err != nil {
		return nil, e.Wrap(op, err)
	}
	defer func() {
		if err != nil {
			if tx.IsActive() {
				tx.Rollback(ctx)
			}

			if len(objectKeys) > 0 {
				u.logger.Warnf("cleaning up %d orphaned uploads after transaction failure: %v", len(objectKeys), err)
				if cleanupErr := u.storage.RemoveObjects(ctx, objectKeys); cleanupErr != nil {
					u.logger.Errorf(cleanupErr, "orphaned upload cleanup failed")
				}
			}
		}
	}()
	ctx = context.WithValue(ctx, "tx", tx.Transaction())

	inserted, err := u.imageRepo.Insert(ctx, records)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	err = u.productRepo.PatchImageRefs(ctx, patches)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	err = tx.Commit(ctx)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	u.logger.Infof("linked %d images across %d products, skipped %d unknown", inserted, len(patches), skipped)

	publishEvent(ctx, u.events, u.logger, u.pipeline, EventImagesLinked, map[string]any{
		"linked":   inserted,
		"products": len(patches),
		"skipped":  skipped,
	})

	return &LinkReport{
		Linked:         inserted,
		Products:       len(patches),
		SkippedUnknown: skipped,
	}, nil
}
