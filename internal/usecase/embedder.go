package usecase

import (
	"context"
	"time"

	"github.com/DRSN-tech/product-qc/internal/cfg"
	"github.com/DRSN-tech/product-qc/internal/domain"
	"github.com/DRSN-tech/product-qc/pkg/e"
	"github.com/DRSN-tech/product-qc/pkg/logger"
	transaction "github.com/avito-tech/go-transaction-manager/drivers/pgxv5/v2"
	"github.com/jackc/pgx/v5"
)

// EmbedderUC перегенерирует таблицы эмбеддингов целиком: читает исходное
// содержимое из каталога, векторизует его внешней моделью и заменяет
// таблицу вместе с зеркальной коллекцией индекса.
type EmbedderUC struct {
	embeddingRepo EmbeddingRepository
	imageRepo     ImageRecordRepository
	vectorIndex   VectorIndex
	mlService     EmbeddingService
	dbPool        transaction.Transactional
	events        EventProducer
	ml            *cfg.MLCfg
	qdrant        *cfg.QdrantCfg
	pipeline      *cfg.PipelineCfg
	logger        logger.Logger
}

func NewEmbedderUC(
	embeddingRepo EmbeddingRepository,
	imageRepo ImageRecordRepository,
	vectorIndex VectorIndex,
	mlService EmbeddingService,
	dbPool transaction.Transactional,
	events EventProducer,
	ml *cfg.MLCfg,
	qdrant *cfg.QdrantCfg,
	pipeline *cfg.PipelineCfg,
	logger logger.Logger,
) *EmbedderUC {
	return &EmbedderUC{
		embeddingRepo: embeddingRepo,
		imageRepo:     imageRepo,
		vectorIndex:   vectorIndex,
		mlService:     mlService,
		dbPool:        dbPool,
		events:        events,
		ml:            ml,
		qdrant:        qdrant,
		pipeline:      pipeline,
		logger:        logger,
	}
}

// RegenerateText заменяет таблицы текстовых эмбеддингов: описания,
// характеристики и развёрнутые отзывы.
func (u *EmbedderUC) RegenerateText(ctx context.Context) (*EmbedReport, error) {
	const op = "EmbedderUC.RegenerateText"

	report := &EmbedReport{Tables: map[string]int64{}}

	steps := []struct {
		table   string
		sources func(context.Context) ([]EmbedSource, error)
	}{
		{domain.TextEmbeddings, u.embeddingRepo.TextSources},
		{domain.SpecEmbeddings, u.embeddingRepo.SpecSources},
		{domain.ReviewEmbeddings, u.embeddingRepo.ReviewSources},
	}

	for _, step := range steps {
		sources, err := step.sources(ctx)
		if err != nil {
			return nil, e.Wrap(op, err)
		}

		rows, err := u.regenerateTable(ctx, step.table, u.ml.TextModel, sources)
		if err != nil {
			return nil, e.Wrap(op, err)
		}
		report.Tables[step.table] = rows
	}

	publishEvent(ctx, u.events, u.logger, u.pipeline, EventEmbeddingsRegenerated, map[string]any{
		"tables": report.Tables,
	})

	return report, nil
}

// RegenerateImages заменяет таблицу эмбеддингов изображений; входом для
// модели служат URI объектов в хранилище.
func (u *EmbedderUC) RegenerateImages(ctx context.Context) (*EmbedReport, error) {
	const op = "EmbedderUC.RegenerateImages"

	sources, err := u.imageRepo.URISources(ctx)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	rows, err := u.regenerateTable(ctx, domain.ImageEmbeddings, u.ml.ImageModel, sources)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	report := &EmbedReport{Tables: map[string]int64{domain.ImageEmbeddings: rows}}

	publishEvent(ctx, u.events, u.logger, u.pipeline, EventEmbeddingsRegenerated, map[string]any{
		"tables": report.Tables,
	})

	return report, nil
}

// regenerateTable выполняет full-table-replace одной таблицы и её
// зеркальной коллекции. Пустой вход допустим: таблица очищается.
func (u *EmbedderUC) regenerateTable(ctx context.Context, table string, model string, sources []EmbedSource) (int64, error) {
	rows, err := u.vectorize(ctx, model, sources)
	if err != nil {
		return 0, err
	}

	ctx, tx, err := transaction.NewTransaction(ctx, pgx.TxOptions{}, u.dbPool)
	if err != nil {
		return 0, err
	}
	defer func() {
		if err != nil && tx.IsActive() {
			tx.Rollback(ctx)
		}
	}()
	ctx = context.WithValue(ctx, "tx", tx.Transaction())

	written, err := u.embeddingRepo.Replace(ctx, table, rows)
	if err != nil {
		return 0, err
	}

	err = tx.Commit(ctx)
	if err != nil {
		return 0, err
	}

	err = u.mirrorToIndex(ctx, table, rows)
	if err != nil {
		return 0, err
	}

	u.logger.Infof("regenerated %s: %d rows", table, written)

	return written, nil
}

// vectorize отправляет содержимое источников модели одной пачкой и собирает
// строки эмбеддингов. Количество векторов обязано совпасть с количеством
// источников.
func (u *EmbedderUC) vectorize(ctx context.Context, model string, sources []EmbedSource) ([]domain.EmbeddingRow, error) {
	if len(sources) == 0 {
		u.logger.Warnf("no sources to embed with model %s", model)
		return []domain.EmbeddingRow{}, nil
	}

	inputs := make([]string, 0, len(sources))
	for _, src := range sources {
		inputs = append(inputs, src.Content)
	}

	vectors, err := u.mlService.EmbedTexts(ctx, model, inputs)
	if err != nil {
		return nil, err
	}
	if len(vectors) != len(sources) {
		return nil, e.ErrVectorCountMismatch
	}

	embedTS := time.Now().UTC()
	rows := make([]domain.EmbeddingRow, 0, len(sources))
	for i, src := range sources {
		if len(vectors[i]) == 0 {
			return nil, e.ErrEmptyVectors
		}
		rows = append(rows, *domain.NewEmbeddingRow(src.Key, src.ProductID, src.Content, vectors[i], embedTS))
	}

	return rows, nil
}

// mirrorToIndex пересоздаёт зеркальную коллекцию индекса под таблицу.
func (u *EmbedderUC) mirrorToIndex(ctx context.Context, table string, rows []domain.EmbeddingRow) error {
	vectorSize := u.qdrant.VectorSize
	if len(rows) > 0 {
		vectorSize = uint64(len(rows[0].Vector))
	}

	outcome, err := u.vectorIndex.EnsureCollection(ctx, table, vectorSize)
	if err != nil {
		return err
	}
	u.logger.Infof("collection %s: %s", table, outcome)

	return u.vectorIndex.ReplacePoints(ctx, table, rows)
}
