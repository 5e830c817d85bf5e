package usecase

import (
	"context"

	"github.com/DRSN-tech/product-qc/internal/cfg"
	"github.com/DRSN-tech/product-qc/internal/domain"
	"github.com/DRSN-tech/product-qc/pkg/e"
	"github.com/DRSN-tech/product-qc/pkg/logger"
	transaction "github.com/avito-tech/go-transaction-manager/drivers/pgxv5/v2"
	"github.com/jackc/pgx/v5"
)

// LoaderUC записывает нормализованные записи в таблицу продуктов.
type LoaderUC struct {
	productRepo ProductRepository
	dbPool      transaction.Transactional
	events      EventProducer
	pipeline    *cfg.PipelineCfg
	logger      logger.Logger
}

func NewLoaderUC(
	productRepo ProductRepository,
	dbPool transaction.Transactional,
	events EventProducer,
	pipeline *cfg.PipelineCfg,
	logger logger.Logger,
) *LoaderUC {
	return &LoaderUC{
		productRepo: productRepo,
		dbPool:      dbPool,
		events:      events,
		pipeline:    pipeline,
		logger:      logger,
	}
}

// Load пишет записи одной транзакцией. В режиме truncate таблица
// предварительно очищается, иначе записи дописываются в конец.
func (l *LoaderUC) Load(ctx context.Context, products []domain.Product, truncate bool) (*LoadReport, error) {
	const op = "LoaderUC.Load"

	ctx, tx, err := transaction.NewTransaction(ctx, pgx.TxOptions{}, l.dbPool)
	if err != nil {
		return nil, e.Wrap(op, err)
	}
	defer func() {
		if err != nil && tx.IsActive() {
			tx.Rollback(ctx)
		}
	}()
	ctx = context.WithValue(ctx, "tx", tx.Transaction())

	var rows int64
	if truncate {
		rows, err = l.productRepo.ReplaceAll(ctx, products)
	} else {
		rows, err = l.productRepo.Append(ctx, products)
	}
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	err = tx.Commit(ctx)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	l.logger.Infof("loaded %d rows into products (truncate=%t)", rows, truncate)

	publishEvent(ctx, l.events, l.logger, l.pipeline, EventLoadCompleted, map[string]any{
		"rows":     rows,
		"truncate": truncate,
	})

	return &LoadReport{Rows: rows, Truncated: truncate}, nil
}
