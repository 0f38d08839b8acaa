// Package handler contains the HTTP handlers. Each handler depends on a
// narrow interface so tests can slot in stubs.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/kiranshivaraju/podscribe/internal/ai"
	"github.com/kiranshivaraju/podscribe/internal/api/response"
	"github.com/kiranshivaraju/podscribe/internal/engine"
)

const maxMessageLength = 4000

// ChatEngine defines the interface the chat handler depends on.
type ChatEngine interface {
	ProcessRequest(ctx context.Context, message, explicitID string) (engine.Reply, error)
}

// NewChatHandler returns an http.HandlerFunc for POST /api/v1/chat.
func NewChatHandler(eng ChatEngine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Message   string `json:"message"`
			ContentID string `json:"content_id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid JSON body", nil)
			return
		}

		req.Message = strings.TrimSpace(req.Message)
		if req.Message == "" {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "message is required", nil)
			return
		}
		if len(req.Message) > maxMessageLength {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "message is too long", nil)
			return
		}

		reply, err := eng.ProcessRequest(r.Context(), req.Message, req.ContentID)
		if err != nil {
			switch {
			case errors.Is(err, ai.ErrProviderUnavailable):
				response.Error(w, http.StatusBadGateway, "AI_PROVIDER_UNAVAILABLE",
					"The AI provider is not available", nil)
			case errors.Is(err, ai.ErrInferenceTimeout):
				response.Error(w, http.StatusGatewayTimeout, "AI_INFERENCE_TIMEOUT",
					"AI processing took too long and was cancelled", nil)
			case errors.Is(err, ai.ErrInvalidResponse):
				response.Error(w, http.StatusBadGateway, "AI_INVALID_RESPONSE",
					"The AI provider returned an unusable response", nil)
			case errors.Is(err, ai.ErrArtifactUnreadable):
				response.Error(w, http.StatusInternalServerError, "ARTIFACT_UNREADABLE",
					"A stored artifact could not be read", nil)
			default:
				response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR",
					"An unexpected error occurred", nil)
			}
			return
		}

		response.JSON(w, reply)
	}
}
