package pgdb

import (
	"context"
	"errors"
	"fmt"

	"github.com/DRSN-tech/product-qc/internal/domain"
	"github.com/DRSN-tech/product-qc/internal/usecase"
	"github.com/DRSN-tech/product-qc/pkg/e"
	"github.com/DRSN-tech/product-qc/pkg/tr"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jimlawless/whereami"
)

// Таблицы эмбеддингов создаются при первой перегенерации, поэтому их имена
// проверяются по белому списку, а не по миграциям.
var allowedTables = map[string]struct{}{
	domain.TextEmbeddings:   {},
	domain.ImageEmbeddings:  {},
	domain.SpecEmbeddings:   {},
	domain.ReviewEmbeddings: {},
}

var embeddingColumns = []string{"key", "product_id", "source", "vector", "embed_ts"}

// EmbeddingRepo владеет таблицами эмбеддингов и чтением их источников.
type EmbeddingRepo struct {
	pool *pgxpool.Pool
}

func NewEmbeddingRepo(pool *pgxpool.Pool) *EmbeddingRepo {
	return &EmbeddingRepo{pool: pool}
}

// Replace заменяет содержимое таблицы целиком внутри транзакции из
// контекста. Отсутствующая таблица создаётся на месте.
func (r *EmbeddingRepo) Replace(ctx context.Context, table string, rows []domain.EmbeddingRow) (int64, error) {
	if _, ok := allowedTables[table]; !ok {
		return 0, e.Wrap(table, e.ErrUnknownEmbeddingTable)
	}

	tx, err := tr.TxFromCtx(ctx)
	if err != nil {
		return 0, e.Wrap(whereami.WhereAmI(), err)
	}

	outcome, err := r.ensureTable(ctx, tx, table)
	if err != nil {
		return 0, e.Wrap(whereami.WhereAmI(), err)
	}

	if outcome == domain.EnsureAlreadyExisted {
		_, err = tx.Exec(ctx, fmt.Sprintf(`TRUNCATE %s`, table))
		if err != nil {
			return 0, e.Wrap(whereami.WhereAmI(), err)
		}
	}

	values := make([][]any, 0, len(rows))
	for _, row := range rows {
		values = append(values, []any{row.Key, row.ProductID, row.Source, row.Vector, row.EmbedTS})
	}

	copied, err := tx.CopyFrom(ctx, pgx.Identifier{table}, embeddingColumns, pgx.CopyFromRows(values))
	if err != nil {
		return 0, e.Wrap(whereami.WhereAmI(), err)
	}

	return copied, nil
}

// ensureTable идемпотентно создаёт таблицу эмбеддингов.
func (r *EmbeddingRepo) ensureTable(ctx context.Context, tx pgx.Tx, table string) (domain.EnsureOutcome, error) {
	var exists bool
	err := tx.QueryRow(ctx, `SELECT to_regclass($1) IS NOT NULL`, table).Scan(&exists)
	if err != nil {
		return domain.EnsureFailed, err
	}
	if exists {
		return domain.EnsureAlreadyExisted, nil
	}

	ddl := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			key        TEXT PRIMARY KEY,
			product_id TEXT NOT NULL,
			source     TEXT,
			vector     DOUBLE PRECISION[],
			embed_ts   TIMESTAMPTZ NOT NULL
		)
	`, table)

	_, err = tx.Exec(ctx, ddl)
	if err != nil {
		return domain.EnsureFailed, err
	}

	return domain.EnsureCreated, nil
}

// TextSources возвращает непустые описания продуктов. При дублях продукта
// берётся самая свежая запись.
func (r *EmbeddingRepo) TextSources(ctx context.Context) ([]usecase.EmbedSource, error) {
	query := `
		SELECT DISTINCT ON (product_id) product_id, description
		FROM products
		WHERE description IS NOT NULL AND btrim(description) <> ''
		ORDER BY product_id, ingest_ts DESC
	`

	return r.productSources(ctx, query)
}

// SpecSources возвращает непустые характеристики, сериализованные в JSON.
func (r *EmbeddingRepo) SpecSources(ctx context.Context) ([]usecase.EmbedSource, error) {
	query := `
		SELECT DISTINCT ON (product_id) product_id, specs::text
		FROM products
		WHERE specs IS NOT NULL AND specs <> '{}'::jsonb
		ORDER BY product_id, ingest_ts DESC
	`

	return r.productSources(ctx, query)
}

func (r *EmbeddingRepo) productSources(ctx context.Context, query string) ([]usecase.EmbedSource, error) {
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	defer rows.Close()

	sources := make([]usecase.EmbedSource, 0)
	for rows.Next() {
		var productID, content string
		if err := rows.Scan(&productID, &content); err != nil {
			return nil, e.Wrap(whereami.WhereAmI(), err)
		}

		sources = append(sources, usecase.NewEmbedSource(productID, productID, content))
	}

	return sources, rows.Err()
}

// ReviewSources разворачивает списки отзывов one-to-many: каждый отзыв
// получает синтетический ключ со своей позицией в списке.
func (r *EmbeddingRepo) ReviewSources(ctx context.Context) ([]usecase.EmbedSource, error) {
	query := `
		SELECT p.product_id, rv.ord - 1, rv.review
		FROM (
			SELECT DISTINCT ON (product_id) product_id, reviews
			FROM products
			ORDER BY product_id, ingest_ts DESC
		) p,
		LATERAL unnest(p.reviews) WITH ORDINALITY AS rv(review, ord)
		WHERE btrim(rv.review) <> ''
		ORDER BY p.product_id, rv.ord
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	defer rows.Close()

	sources := make([]usecase.EmbedSource, 0)
	for rows.Next() {
		var productID, review string
		var idx int
		if err := rows.Scan(&productID, &idx, &review); err != nil {
			return nil, e.Wrap(whereami.WhereAmI(), err)
		}

		sources = append(sources, usecase.NewEmbedSource(domain.ReviewKey(productID, idx), productID, review))
	}

	return sources, rows.Err()
}

// CrossModalPairs сопоставляет текстовый вектор каждого продукта с вектором
// его первого изображения.
func (r *EmbeddingRepo) CrossModalPairs(ctx context.Context) ([]usecase.VectorPair, error) {
	query := fmt.Sprintf(`
		SELECT DISTINCT ON (t.product_id) t.product_id, t.vector, i.vector
		FROM %s t
		JOIN %s i ON i.product_id = t.product_id
		ORDER BY t.product_id, i.key
	`, domain.TextEmbeddings, domain.ImageEmbeddings)

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	defer rows.Close()

	pairs := make([]usecase.VectorPair, 0)
	for rows.Next() {
		var pair usecase.VectorPair
		if err := rows.Scan(&pair.ProductID, &pair.TextVector, &pair.ImageVector); err != nil {
			return nil, e.Wrap(whereami.WhereAmI(), err)
		}

		pairs = append(pairs, pair)
	}

	return pairs, rows.Err()
}

// Vector возвращает вектор продукта из указанной таблицы.
func (r *EmbeddingRepo) Vector(ctx context.Context, table string, productID string) ([]float64, error) {
	if _, ok := allowedTables[table]; !ok {
		return nil, e.Wrap(table, e.ErrUnknownEmbeddingTable)
	}

	query := fmt.Sprintf(`SELECT vector FROM %s WHERE key = $1`, table)

	var vector []float64
	err := r.pool.QueryRow(ctx, query, productID).Scan(&vector)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, e.Wrap(productID, e.ErrEmbeddingNotFound)
		}
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return vector, nil
}
