package pgdb

import (
	"context"
	"encoding/json"

	"github.com/DRSN-tech/product-qc/internal/domain"
	"github.com/DRSN-tech/product-qc/internal/usecase"
	"github.com/DRSN-tech/product-qc/pkg/e"
	"github.com/DRSN-tech/product-qc/pkg/tr"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jimlawless/whereami"
)

var productColumns = []string{
	"product_id", "sku", "brand", "category", "title", "description",
	"specs", "price", "rating", "review_count", "reviews", "image_refs", "ingest_ts",
}

// ProductRepo реализует репозиторий продуктов поверх PostgreSQL.
// Запись идёт через транзакцию из контекста, чтение через пул.
type ProductRepo struct {
	pool *pgxpool.Pool
}

func NewProductRepo(pool *pgxpool.Pool) *ProductRepo {
	return &ProductRepo{pool: pool}
}

// ReplaceAll очищает таблицу продуктов и пишет записи заново.
func (p *ProductRepo) ReplaceAll(ctx context.Context, products []domain.Product) (int64, error) {
	tx, err := tr.TxFromCtx(ctx)
	if err != nil {
		return 0, e.Wrap(whereami.WhereAmI(), err)
	}

	_, err = tx.Exec(ctx, `TRUNCATE products`)
	if err != nil {
		return 0, e.Wrap(whereami.WhereAmI(), err)
	}

	return p.copyProducts(ctx, tx, products)
}

// Append дописывает записи в конец таблицы.
func (p *ProductRepo) Append(ctx context.Context, products []domain.Product) (int64, error) {
	tx, err := tr.TxFromCtx(ctx)
	if err != nil {
		return 0, e.Wrap(whereami.WhereAmI(), err)
	}

	return p.copyProducts(ctx, tx, products)
}

func (p *ProductRepo) copyProducts(ctx context.Context, tx pgx.Tx, products []domain.Product) (int64, error) {
	rows := make([][]any, 0, len(products))
	for _, product := range products {
		specs, err := json.Marshal(product.Specs)
		if err != nil {
			return 0, e.Wrap(whereami.WhereAmI(), err)
		}

		refs, err := json.Marshal(product.ImageRefs)
		if err != nil {
			return 0, e.Wrap(whereami.WhereAmI(), err)
		}

		rows = append(rows, []any{
			product.ProductID, product.SKU, product.Brand, product.Category,
			product.Title, product.Description, specs, product.Price,
			product.Rating, product.ReviewCount, product.Reviews, refs,
			product.IngestTS,
		})
	}

	copied, err := tx.CopyFrom(ctx, pgx.Identifier{"products"}, productColumns, pgx.CopyFromRows(rows))
	if err != nil {
		return 0, e.Wrap(whereami.WhereAmI(), err)
	}

	return copied, nil
}

// ListIDs возвращает все известные идентификаторы продуктов.
func (p *ProductRepo) ListIDs(ctx context.Context) ([]string, error) {
	rows, err := p.pool.Query(ctx, `SELECT DISTINCT product_id FROM products`)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	defer rows.Close()

	ids := make([]string, 0)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, e.Wrap(whereami.WhereAmI(), err)
		}
		ids = append(ids, id)
	}

	return ids, rows.Err()
}

// PatchImageRefs обновляет ссылки на изображения пачкой внутри транзакции.
func (p *ProductRepo) PatchImageRefs(ctx context.Context, patches []usecase.ImageRefPatch) error {
	tx, err := tr.TxFromCtx(ctx)
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	batch := &pgx.Batch{}
	for _, patch := range patches {
		refs, err := json.Marshal(patch.Refs)
		if err != nil {
			return e.Wrap(whereami.WhereAmI(), err)
		}

		batch.Queue(`UPDATE products SET image_refs = $2 WHERE product_id = $1`, patch.ProductID, refs)
	}

	results := tx.SendBatch(ctx, batch)
	defer results.Close()

	for range patches {
		if _, err := results.Exec(); err != nil {
			return e.Wrap(whereami.WhereAmI(), err)
		}
	}

	return nil
}

// GetSummaries возвращает краткие карточки продуктов по идентификаторам.
func (p *ProductRepo) GetSummaries(ctx context.Context, ids []string) (map[string]usecase.ProductSummary, error) {
	query := `
		SELECT DISTINCT ON (product_id)
			product_id, COALESCE(title, ''), COALESCE(brand, ''), COALESCE(category, '')
		FROM products
		WHERE product_id = ANY($1)
		ORDER BY product_id, ingest_ts DESC
	`

	rows, err := p.pool.Query(ctx, query, ids)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	defer rows.Close()

	result := make(map[string]usecase.ProductSummary, len(ids))
	for rows.Next() {
		var summary usecase.ProductSummary
		if err := rows.Scan(&summary.ProductID, &summary.Title, &summary.Brand, &summary.Category); err != nil {
			return nil, e.Wrap(whereami.WhereAmI(), err)
		}

		result[summary.ProductID] = summary
	}

	return result, rows.Err()
}

// SampleDescriptions возвращает до limit непустых описаний продуктов.
func (p *ProductRepo) SampleDescriptions(ctx context.Context, limit int) ([]string, error) {
	query := `
		SELECT description
		FROM products
		WHERE description IS NOT NULL AND btrim(description) <> ''
		LIMIT $1
	`

	rows, err := p.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	defer rows.Close()

	descriptions := make([]string, 0, limit)
	for rows.Next() {
		var description string
		if err := rows.Scan(&description); err != nil {
			return nil, e.Wrap(whereami.WhereAmI(), err)
		}
		descriptions = append(descriptions, description)
	}

	return descriptions, rows.Err()
}

// CoverageStats считает заполненность каталога одним запросом.
func (p *ProductRepo) CoverageStats(ctx context.Context) (*usecase.CoverageStats, error) {
	query := `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE description IS NOT NULL AND btrim(description) <> ''),
			COUNT(*) FILTER (WHERE specs IS NOT NULL AND specs <> '{}'::jsonb),
			COUNT(*) FILTER (WHERE jsonb_array_length(image_refs) > 0)
		FROM products
	`

	var stats usecase.CoverageStats
	err := p.pool.QueryRow(ctx, query).
		Scan(&stats.TotalRows, &stats.WithDescription, &stats.WithSpecs, &stats.WithImages)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return &stats, nil
}
