// Package embed — клиент вендорского ML-эндпоинта с OpenAI-совместимым API.
package embed

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/DRSN-tech/product-qc/internal/cfg"
	"github.com/DRSN-tech/product-qc/pkg/e"
	"github.com/jimlawless/whereami"
	openai "github.com/sashabaranov/go-openai"
)

// Лимит входов одного запроса на векторизацию.
const embedBatchSize = 100

// OpenAIService вызывает модели по имени: эмбеддинги для текста и URI
// изображений, chat completion для булевых вопросов.
type OpenAIService struct {
	client *openai.Client
}

func NewOpenAIService(mlCfg *cfg.MLCfg) *OpenAIService {
	config := openai.DefaultConfig(mlCfg.APIKey)
	if mlCfg.BaseURL != "" {
		config.BaseURL = mlCfg.BaseURL
	}

	return &OpenAIService{
		client: openai.NewClientWithConfig(config),
	}
}

// EmbedTexts векторизует входы пачками, сохраняя порядок.
func (s *OpenAIService) EmbedTexts(ctx context.Context, model string, inputs []string) ([][]float64, error) {
	vectors := make([][]float64, 0, len(inputs))

	for start := 0; start < len(inputs); start += embedBatchSize {
		end := start + embedBatchSize
		if end > len(inputs) {
			end = len(inputs)
		}

		resp, err := s.client.CreateEmbeddings(ctx, openai.EmbeddingRequestStrings{
			Input: inputs[start:end],
			Model: openai.EmbeddingModel(model),
		})
		if err != nil {
			return nil, e.Wrap(whereami.WhereAmI(), err)
		}
		if len(resp.Data) != end-start {
			return nil, e.Wrap(whereami.WhereAmI(), e.ErrVectorCountMismatch)
		}

		// API не гарантирует порядок элементов в ответе.
		sort.Slice(resp.Data, func(i, j int) bool {
			return resp.Data[i].Index < resp.Data[j].Index
		})

		for _, item := range resp.Data {
			vectors = append(vectors, toFloat64(item.Embedding))
		}
	}

	return vectors, nil
}

// GenerateBool задаёт модели булев вопрос о содержимом и разбирает ответ.
func (s *OpenAIService) GenerateBool(ctx context.Context, model string, question string, content string) (bool, error) {
	prompt := fmt.Sprintf("%s\n\nContent:\n%s\n\nAnswer strictly with true or false.", question, content)

	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return false, e.Wrap(whereami.WhereAmI(), err)
	}
	if len(resp.Choices) == 0 {
		return false, e.Wrap(whereami.WhereAmI(), fmt.Errorf("empty completion response"))
	}

	return parseBoolAnswer(resp.Choices[0].Message.Content)
}

// parseBoolAnswer разбирает текстовый ответ модели в булево значение.
func parseBoolAnswer(answer string) (bool, error) {
	normalized := strings.ToLower(strings.Trim(strings.TrimSpace(answer), ".!\"'"))

	switch {
	case strings.HasPrefix(normalized, "true") || strings.HasPrefix(normalized, "yes"):
		return true, nil
	case strings.HasPrefix(normalized, "false") || strings.HasPrefix(normalized, "no"):
		return false, nil
	default:
		return false, fmt.Errorf("unparseable boolean answer: %q", answer)
	}
}

func toFloat64(vector []float32) []float64 {
	result := make([]float64, len(vector))
	for i, v := range vector {
		result[i] = float64(v)
	}
	return result
}
