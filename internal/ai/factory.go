package ai

import (
	"context"
	"fmt"

	"github.com/kiranshivaraju/podscribe/internal/ai/anthropic"
	"github.com/kiranshivaraju/podscribe/internal/ai/gemini"
	"github.com/kiranshivaraju/podscribe/internal/ai/mock"
	"github.com/kiranshivaraju/podscribe/internal/ai/ollama"
	"github.com/kiranshivaraju/podscribe/internal/ai/openai"
	"github.com/kiranshivaraju/podscribe/internal/ai/vllm"
	"github.com/kiranshivaraju/podscribe/internal/config"
	"github.com/kiranshivaraju/podscribe/pkg/models"
)

// NewSpeechProvider constructs the transcription backend based on config.
// Called once at server startup.
func NewSpeechProvider(cfg config.AIConfig) (models.SpeechProvider, error) {
	switch cfg.SpeechProvider {
	case "openai":
		return openai.NewProvider(cfg.OpenAI), nil
	case "mock":
		return mock.NewSpeechProvider(), nil
	default:
		return nil, fmt.Errorf("unknown speech provider %q: must be one of openai, mock", cfg.SpeechProvider)
	}
}

// NewChatModel constructs the text-generation backend based on config.
// Called once at server startup.
func NewChatModel(ctx context.Context, cfg config.AIConfig) (models.ChatModel, error) {
	switch cfg.TextProvider {
	case "openai":
		return openai.NewProvider(cfg.OpenAI), nil
	case "ollama":
		return ollama.NewProvider(cfg.Ollama), nil
	case "vllm":
		return vllm.NewProvider(cfg.VLLM), nil
	case "anthropic":
		return anthropic.NewProvider(cfg.Anthropic), nil
	case "gemini":
		return gemini.NewProvider(ctx, cfg.Gemini)
	case "mock":
		return mock.NewChatModel(), nil
	default:
		return nil, fmt.Errorf("unknown text provider %q: must be one of openai, ollama, vllm, anthropic, gemini, mock", cfg.TextProvider)
	}
}
