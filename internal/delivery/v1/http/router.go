package http

import (
	"net/http"

	"github.com/DRSN-tech/product-qc/internal/usecase"
	"github.com/DRSN-tech/product-qc/pkg/logger"
	"github.com/go-chi/chi/v5"
)

type Router struct {
	router *chi.Mux
	logger logger.Logger
}

func NewRouter(router *chi.Mux, logger logger.Logger) *Router {
	return &Router{router: router, logger: logger}
}

func (r *Router) Init(checker usecase.CheckerUseCase, validator usecase.ValidatorUseCase, topK int) {
	r.router.Get("/healthz", func(w http.ResponseWriter, req *http.Request) {
		WriteSuccess(w, http.StatusOK, map[string]interface{}{"status": "ok"})
	})

	r.router.Route("/api/v1", func(v1 chi.Router) {
		handler := NewQCHandler(checker, validator, topK, r.logger)
		registerQCRoutes(v1, handler)
	})
}

func registerQCRoutes(router chi.Router, handler *QCHandler) {
	router.Get("/validation", handler.getValidation)
	router.Get("/consistency", handler.getConsistency)
	router.Get("/search", handler.getSearch)
}
