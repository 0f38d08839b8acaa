// Package gemini implements the text provider against the Gemini API using
// the official genai SDK.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/kiranshivaraju/podscribe/internal/config"
	"github.com/kiranshivaraju/podscribe/pkg/models"
)

var ErrAPIError = errors.New("gemini api error")

// Provider implements models.ChatModel using a shared genai client.
type Provider struct {
	cfg    config.GeminiConfig
	client *genai.Client
}

func NewProvider(ctx context.Context, cfg config.GeminiConfig) (*Provider, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}
	return &Provider{cfg: cfg, client: client}, nil
}

func (p *Provider) Name() string { return "gemini" }

// Complete runs one generation call. ForceJSON maps to the SDK's JSON
// response MIME type.
func (p *Provider) Complete(ctx context.Context, req models.ChatRequest) (string, error) {
	genCfg := &genai.GenerateContentConfig{}
	if req.System != "" {
		genCfg.SystemInstruction = genai.NewContentFromText(req.System, genai.RoleUser)
	}
	if req.ForceJSON {
		genCfg.ResponseMIMEType = "application/json"
	}

	result, err := p.client.Models.GenerateContent(ctx, p.cfg.Model, genai.Text(req.User), genCfg)
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}

	if result == nil || len(result.Candidates) == 0 || result.Candidates[0].Content == nil {
		return "", fmt.Errorf("%w: empty response", ErrAPIError)
	}

	var text strings.Builder
	for _, part := range result.Candidates[0].Content.Parts {
		if part.Text != "" {
			text.WriteString(part.Text)
		}
	}
	if text.Len() == 0 {
		return "", fmt.Errorf("%w: no text in response", ErrAPIError)
	}
	return text.String(), nil
}

var _ models.ChatModel = (*Provider)(nil)
