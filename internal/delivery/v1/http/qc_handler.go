package http

import (
	"net/http"
	"strconv"

	"github.com/DRSN-tech/product-qc/internal/usecase"
	"github.com/DRSN-tech/product-qc/pkg/logger"
)

// QCHandler отдаёт диагностику пайплайна только на чтение: отчёт покрытия,
// расхождения модальностей и поиск похожих продуктов.
type QCHandler struct {
	checker   usecase.CheckerUseCase
	validator usecase.ValidatorUseCase
	topK      int
	logger    logger.Logger
}

func NewQCHandler(checker usecase.CheckerUseCase, validator usecase.ValidatorUseCase, topK int, logger logger.Logger) *QCHandler {
	return &QCHandler{
		checker:   checker,
		validator: validator,
		topK:      topK,
		logger:    logger,
	}
}

func (h *QCHandler) getValidation(w http.ResponseWriter, r *http.Request) {
	report, err := h.validator.Validate(r.Context())
	if err != nil {
		h.logger.Errorf(err, "validation request failed")
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, map[string]interface{}{
		"total_rows":        report.Stats.TotalRows,
		"description_ratio": report.DescriptionRatio,
		"specs_ratio":       report.SpecsRatio,
		"images_ratio":      report.ImagesRatio,
		"passed":            report.Passed,
	})
}

func (h *QCHandler) getConsistency(w http.ResponseWriter, r *http.Request) {
	mismatches, err := h.checker.CheckConsistency(r.Context())
	if err != nil {
		h.logger.Errorf(err, "consistency request failed")
		WriteError(w, err)
		return
	}

	rows := make([]map[string]interface{}, 0, len(mismatches))
	for _, m := range mismatches {
		rows = append(rows, map[string]interface{}{
			"product_id": m.ProductID,
			"similarity": m.Similarity,
		})
	}

	WriteSuccess(w, http.StatusOK, map[string]interface{}{
		"mismatches": rows,
	})
}

func (h *QCHandler) getSearch(w http.ResponseWriter, r *http.Request) {
	productID := r.URL.Query().Get("product_id")

	topK := h.topK
	if raw := r.URL.Query().Get("top_k"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err == nil && parsed > 0 {
			topK = parsed
		} else {
			h.logger.Warnf("ignoring invalid top_k %q", raw)
		}
	}

	hits, err := h.checker.SearchSimilar(r.Context(), productID, topK)
	if err != nil {
		h.logger.Warnf("search request failed: %v", err)
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, map[string]interface{}{
		"product_id": productID,
		"hits":       hits,
	})
}
