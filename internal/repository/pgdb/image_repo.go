package pgdb

import (
	"context"

	"github.com/DRSN-tech/product-qc/internal/domain"
	"github.com/DRSN-tech/product-qc/internal/usecase"
	"github.com/DRSN-tech/product-qc/pkg/e"
	"github.com/DRSN-tech/product-qc/pkg/tr"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jimlawless/whereami"
)

// ImageRepo хранит записи о привязанных изображениях.
type ImageRepo struct {
	pool *pgxpool.Pool
}

func NewImageRepo(pool *pgxpool.Pool) *ImageRepo {
	return &ImageRepo{pool: pool}
}

// Insert пишет записи изображений внутри транзакции из контекста.
func (r *ImageRepo) Insert(ctx context.Context, records []domain.ImageRecord) (int64, error) {
	tx, err := tr.TxFromCtx(ctx)
	if err != nil {
		return 0, e.Wrap(whereami.WhereAmI(), err)
	}

	rows := make([][]any, 0, len(records))
	for _, record := range records {
		rows = append(rows, []any{record.ProductID, record.LocalPath, record.ObjectURI, record.IngestTS})
	}

	copied, err := tx.CopyFrom(
		ctx,
		pgx.Identifier{"product_images"},
		[]string{"product_id", "local_path", "object_uri", "ingest_ts"},
		pgx.CopyFromRows(rows),
	)
	if err != nil {
		return 0, e.Wrap(whereami.WhereAmI(), err)
	}

	return copied, nil
}

// URISources возвращает URI объектов для векторизации изображений.
// Ключом эмбеддинга служит сам URI: он уникален в пределах бакета.
func (r *ImageRepo) URISources(ctx context.Context) ([]usecase.EmbedSource, error) {
	query := `
		SELECT product_id, object_uri
		FROM product_images
		WHERE object_uri <> ''
		ORDER BY product_id, local_path
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	defer rows.Close()

	sources := make([]usecase.EmbedSource, 0)
	for rows.Next() {
		var productID, uri string
		if err := rows.Scan(&productID, &uri); err != nil {
			return nil, e.Wrap(whereami.WhereAmI(), err)
		}

		sources = append(sources, usecase.NewEmbedSource(uri, productID, uri))
	}

	return sources, rows.Err()
}
