package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	mw "github.com/kiranshivaraju/podscribe/internal/api/middleware"
	"github.com/kiranshivaraju/podscribe/internal/api/response"
)

// Dependencies holds all handler and middleware dependencies for the router.
type Dependencies struct {
	RateLimit *mw.RateLimit

	HealthHandler  http.HandlerFunc
	ChatHandler    http.HandlerFunc
	ContentHandler http.HandlerFunc

	SubmitPipeline         http.HandlerFunc
	PipelineStatus         http.HandlerFunc
	RemovePipeline         http.HandlerFunc
	PipelineTranscript     http.HandlerFunc
	PipelineSummary        http.HandlerFunc
	PipelineRecommendation http.HandlerFunc
}

// NewRouter builds the Chi router with middleware stack and all routes.
func NewRouter(deps Dependencies) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(mw.Logger)
	r.Use(mw.Recovery)

	// Public health check
	r.Get("/api/v1/health", orNotImplemented(deps.HealthHandler))

	// Rate-limited API routes
	r.Group(func(r chi.Router) {
		r.Use(deps.RateLimit.Limit)

		r.Post("/api/v1/chat", orNotImplemented(deps.ChatHandler))
		r.Get("/api/v1/content", orNotImplemented(deps.ContentHandler))

		r.Post("/api/v1/pipelines", orNotImplemented(deps.SubmitPipeline))
		r.Get("/api/v1/pipelines/{pipelineID}", orNotImplemented(deps.PipelineStatus))
		r.Delete("/api/v1/pipelines/{pipelineID}", orNotImplemented(deps.RemovePipeline))

		r.Get("/api/v1/pipelines/{pipelineID}/transcript", orNotImplemented(deps.PipelineTranscript))
		r.Get("/api/v1/pipelines/{pipelineID}/summary", orNotImplemented(deps.PipelineSummary))
		r.Get("/api/v1/pipelines/{pipelineID}/recommendations", orNotImplemented(deps.PipelineRecommendation))
	})

	return r
}

// orNotImplemented returns the handler if non-nil, or a 501 placeholder.
func orNotImplemented(h http.HandlerFunc) http.HandlerFunc {
	if h != nil {
		return h
	}
	return func(w http.ResponseWriter, r *http.Request) {
		response.Error(w, http.StatusNotImplemented, "NOT_IMPLEMENTED", "Endpoint not yet implemented", nil)
	}
}
