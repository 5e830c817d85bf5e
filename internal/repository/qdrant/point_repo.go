package qdrant

import (
	"context"
	"fmt"

	"github.com/DRSN-tech/product-qc/internal/cfg"
	"github.com/DRSN-tech/product-qc/internal/domain"
	"github.com/DRSN-tech/product-qc/internal/usecase"
	"github.com/DRSN-tech/product-qc/internal/vector"
	"github.com/DRSN-tech/product-qc/pkg/e"
	"github.com/google/uuid"
	"github.com/jimlawless/whereami"
	"github.com/qdrant/go-client/qdrant"
)

const upsertBatchSize = 256

// PointRepo зеркалирует таблицы эмбеддингов в коллекции Qdrant
// для поиска ближайших соседей.
type PointRepo struct {
	client *qdrant.Client
	cfg    *cfg.QdrantCfg
}

func NewPointRepo(client *qdrant.Client, cfg *cfg.QdrantCfg) *PointRepo {
	return &PointRepo{
		client: client,
		cfg:    cfg,
	}
}

// EnsureCollection идемпотентно создаёт коллекцию с косинусной метрикой.
func (q *PointRepo) EnsureCollection(ctx context.Context, name string, vectorSize uint64) (domain.EnsureOutcome, error) {
	exists, err := q.client.CollectionExists(ctx, name)
	if err != nil {
		return domain.EnsureFailed, e.Wrap(whereami.WhereAmI(), err)
	}
	if exists {
		return domain.EnsureAlreadyExisted, nil
	}

	err = q.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: name,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     vectorSize,
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil {
		return domain.EnsureFailed, e.Wrap(whereami.WhereAmI(), err)
	}

	return domain.EnsureCreated, nil
}

// ReplacePoints пересоздаёт коллекцию и заливает точки заново, зеркаля
// full-table-replace таблицы эмбеддингов.
func (q *PointRepo) ReplacePoints(ctx context.Context, collection string, rows []domain.EmbeddingRow) error {
	err := q.client.DeleteCollection(ctx, collection)
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	vectorSize := q.cfg.VectorSize
	if len(rows) > 0 {
		vectorSize = uint64(len(rows[0].Vector))
	}

	_, err = q.EnsureCollection(ctx, collection, vectorSize)
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	for start := 0; start < len(rows); start += upsertBatchSize {
		end := start + upsertBatchSize
		if end > len(rows) {
			end = len(rows)
		}

		points := make([]*qdrant.PointStruct, 0, end-start)
		for _, row := range rows[start:end] {
			// Точки храним единичной длины, чтобы score совпадал
			// с косинусной близостью проверки консистентности.
			points = append(points, &qdrant.PointStruct{
				Id:      qdrant.NewIDUUID(pointID(collection, row.Key)),
				Vectors: qdrant.NewVectors(toFloat32(vector.Normalize(row.Vector))...),
				Payload: qdrant.NewValueMap(map[string]any{
					"product_id": row.ProductID,
					"key":        row.Key,
				}),
			})
		}

		_, err = q.client.Upsert(ctx, &qdrant.UpsertPoints{
			CollectionName: collection,
			Points:         points,
		})
		if err != nil {
			return e.Wrap(whereami.WhereAmI(), err)
		}
	}

	return nil
}

// SearchNeighbors возвращает topK ближайших точек, исключая сам продукт.
func (q *PointRepo) SearchNeighbors(ctx context.Context, collection string, queryVector []float64, topK int, excludeProductID string) ([]usecase.Neighbor, error) {
	limit := uint64(topK)

	req := &qdrant.QueryPoints{
		CollectionName: collection,
		Query:          qdrant.NewQuery(toFloat32(vector.Normalize(queryVector))...),
		Limit:          &limit,
		WithPayload:    qdrant.NewWithPayload(true),
	}
	if excludeProductID != "" {
		req.Filter = &qdrant.Filter{
			MustNot: []*qdrant.Condition{
				qdrant.NewMatch("product_id", excludeProductID),
			},
		}
	}

	resp, err := q.client.Query(ctx, req)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	neighbors := make([]usecase.Neighbor, 0, len(resp))
	for _, point := range resp {
		productID := point.Payload["product_id"].GetStringValue()
		neighbors = append(neighbors, usecase.NewNeighbor(productID, float64(point.Score)))
	}

	return neighbors, nil
}

// pointID строит детерминированный UUID точки, чтобы повторная заливка
// того же ключа не плодила дубликатов.
func pointID(collection string, key string) string {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(fmt.Sprintf("%s/%s", collection, key))).String()
}

func toFloat32(vector []float64) []float32 {
	result := make([]float32, len(vector))
	for i, v := range vector {
		result[i] = float32(v)
	}
	return result
}
