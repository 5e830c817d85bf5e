package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/DRSN-tech/product-qc/internal/cfg"
	"github.com/DRSN-tech/product-qc/internal/usecase"
	"github.com/DRSN-tech/product-qc/pkg/clients"
	"github.com/DRSN-tech/product-qc/pkg/e"
	"github.com/DRSN-tech/product-qc/pkg/logger"
	"github.com/jimlawless/whereami"
)

// CacheRepo кэширует карточки продуктов для выдачи поиска.
type CacheRepo struct {
	client *clients.RedisClient
	cfg    *cfg.RedisCfg
	logger logger.Logger
}

func NewCacheRepo(client *clients.RedisClient, cfg *cfg.RedisCfg, logger logger.Logger) *CacheRepo {
	return &CacheRepo{
		client: client,
		cfg:    cfg,
		logger: logger,
	}
}

// GetSummaries возвращает закэшированные карточки по ID, игнорируя промахи и логируя их.
func (r *CacheRepo) GetSummaries(ctx context.Context, ids []string) (map[string]usecase.ProductSummary, error) {
	if len(ids) == 0 {
		return map[string]usecase.ProductSummary{}, nil
	}

	keys := r.buildSummaryKeys(ids)

	values, err := r.client.Client.MGet(ctx, keys...).Result()
	if err != nil {
		r.logger.Warnf("Redis MGET failed: %v", e.Wrap(whereami.WhereAmI(), err))
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	result := make(map[string]usecase.ProductSummary, len(values))
	for i, val := range values {
		data, err := redisValueToBytes(val, keys[i])
		if err != nil {
			r.logger.Warnf("%v", e.Wrap(whereami.WhereAmI(), err))
		}

		if data == nil {
			continue // cache miss
		}

		var summary usecase.ProductSummary
		if err := json.Unmarshal(data, &summary); err != nil {
			r.logger.Warnf("Redis unmarshal failed: %v", e.Wrap(whereami.WhereAmI(), err))
			continue
		}

		if summary.ProductID != ids[i] {
			r.logger.Warnf("Cache ID mismatch: key_id: %s, model_id: %s", ids[i], summary.ProductID)
			if err := r.client.Client.Del(context.Background(), keys[i]).Err(); err != nil {
				r.logger.Warnf("Redis del failed: %v", e.Wrap(whereami.WhereAmI(), err))
			}
			continue // cache miss
		}

		result[ids[i]] = summary
	}

	return result, nil
}

// SetSummaries атомарно кэширует карточки с заданным TTL.
// Игнорирует ошибки сериализации/записи, логируя их.
func (r *CacheRepo) SetSummaries(ctx context.Context, summaries []usecase.ProductSummary) error {
	pipeline := r.client.Client.Pipeline()
	for _, summary := range summaries {
		data, err := json.Marshal(summary)
		if err != nil {
			r.logger.Warnf("Failed to marshal summary for caching (Product ID: %s): %v", summary.ProductID, e.Wrap(whereami.WhereAmI(), err))
			continue
		}

		pipeline.Set(ctx, r.summaryKey(summary.ProductID), data, r.cfg.SummaryTTL)
	}

	if _, err := pipeline.Exec(ctx); err != nil {
		r.logger.Warnf("Cache pipeline failed: %v", e.Wrap(whereami.WhereAmI(), err))
	}

	return nil
}

func (r *CacheRepo) buildSummaryKeys(ids []string) []string {
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = r.summaryKey(id)
	}

	return keys
}

func (r *CacheRepo) summaryKey(id string) string {
	return fmt.Sprintf("product_qc:summary:%s", id)
}

// redisValueToBytes конвертирует значение из Redis в []byte.
// Поддерживает string и []byte, возвращает ошибку для неизвестных типов.
func redisValueToBytes(val interface{}, key string) ([]byte, error) {
	switch v := val.(type) {
	case string:
		return []byte(v), nil
	case []byte:
		return v, nil
	case nil:
		return nil, nil // cache miss
	default:
		return nil, fmt.Errorf("unexpected Redis value type for key %s: %T", key, val)
	}
}
