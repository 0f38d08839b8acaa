package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all configuration for the PodScribe server.
type Config struct {
	Server  ServerConfig
	Redis   RedisConfig
	Storage StorageConfig
	AI      AIConfig
}

type ServerConfig struct {
	Port int
	Env  string
}

type RedisConfig struct {
	URL string
}

// StorageConfig locates the artifact directories. Filename conventions over
// these directories are the sole source of truth — there is no manifest.
type StorageConfig struct {
	AudioDir           string
	TranscriptsDir     string
	SummariesDir       string
	RecommendationsDir string
	DownloadsDir       string
	IndexTTL           time.Duration
}

type AIConfig struct {
	SpeechProvider   string
	TextProvider     string
	InferenceTimeout time.Duration
	OpenAI           OpenAIConfig
	Ollama           OllamaConfig
	VLLM             VLLMConfig
	Anthropic        AnthropicConfig
	Gemini           GeminiConfig
}

type OpenAIConfig struct {
	APIKey       string
	BaseURL      string
	WhisperModel string
	ChatModel    string
}

type OllamaConfig struct {
	BaseURL string
	Model   string
}

type VLLMConfig struct {
	BaseURL string
	Model   string
}

type AnthropicConfig struct {
	APIKey string
	Model  string
}

type GeminiConfig struct {
	APIKey string
	Model  string
}

var validSpeechProviders = map[string]bool{
	"openai": true,
	"mock":   true,
}

var validTextProviders = map[string]bool{
	"openai":    true,
	"ollama":    true,
	"vllm":      true,
	"anthropic": true,
	"gemini":    true,
	"mock":      true,
}

// Load reads configuration from environment variables and returns a validated Config.
// Returns an error with a descriptive message if any required value is missing or invalid.
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port: envInt("PODSCRIBE_PORT", 8080),
			Env:  envString("PODSCRIBE_ENV", "development"),
		},
		Redis: RedisConfig{
			URL: os.Getenv("REDIS_URL"),
		},
		Storage: StorageConfig{
			AudioDir:           envString("STORAGE_AUDIO_DIR", "audio_files"),
			TranscriptsDir:     envString("STORAGE_TRANSCRIPTS_DIR", "transcriptions"),
			SummariesDir:       envString("STORAGE_SUMMARIES_DIR", "summaries"),
			RecommendationsDir: envString("STORAGE_RECOMMENDATIONS_DIR", "recommendations"),
			DownloadsDir:       envString("STORAGE_DOWNLOADS_DIR", "downloads"),
			IndexTTL:           envDurationSecs("STORAGE_INDEX_TTL_SECS", 30*time.Second),
		},
		AI: AIConfig{
			SpeechProvider:   os.Getenv("SPEECH_PROVIDER"),
			TextProvider:     os.Getenv("TEXT_PROVIDER"),
			InferenceTimeout: envDurationSecs("AI_INFERENCE_TIMEOUT_SECS", 120*time.Second),
			OpenAI: OpenAIConfig{
				APIKey:       os.Getenv("OPENAI_API_KEY"),
				BaseURL:      envString("OPENAI_BASE_URL", "https://api.openai.com"),
				WhisperModel: envString("OPENAI_WHISPER_MODEL", "whisper-1"),
				ChatModel:    envString("OPENAI_CHAT_MODEL", "gpt-4o"),
			},
			Ollama: OllamaConfig{
				BaseURL: envString("OLLAMA_BASE_URL", "http://localhost:11434"),
				Model:   envString("OLLAMA_MODEL", "llama3"),
			},
			VLLM: VLLMConfig{
				BaseURL: envString("VLLM_BASE_URL", "http://localhost:8000"),
				Model:   envString("VLLM_MODEL", ""),
			},
			Anthropic: AnthropicConfig{
				APIKey: os.Getenv("ANTHROPIC_API_KEY"),
				Model:  envString("ANTHROPIC_MODEL", "claude-sonnet-4-5-20250929"),
			},
			Gemini: GeminiConfig{
				APIKey: os.Getenv("GEMINI_API_KEY"),
				Model:  envString("GEMINI_MODEL", "gemini-2.5-flash"),
			},
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.Redis.URL == "" {
		return fmt.Errorf("REDIS_URL is required")
	}

	if c.AI.SpeechProvider == "" {
		return fmt.Errorf("SPEECH_PROVIDER is required")
	}
	if !validSpeechProviders[c.AI.SpeechProvider] {
		return fmt.Errorf("SPEECH_PROVIDER must be one of openai, mock; got %q", c.AI.SpeechProvider)
	}

	if c.AI.TextProvider == "" {
		return fmt.Errorf("TEXT_PROVIDER is required")
	}
	if !validTextProviders[c.AI.TextProvider] {
		return fmt.Errorf("TEXT_PROVIDER must be one of openai, ollama, vllm, anthropic, gemini, mock; got %q", c.AI.TextProvider)
	}

	needsOpenAI := c.AI.SpeechProvider == "openai" || c.AI.TextProvider == "openai"
	if needsOpenAI && c.AI.OpenAI.APIKey == "" {
		return fmt.Errorf("OPENAI_API_KEY is required when SPEECH_PROVIDER or TEXT_PROVIDER is openai")
	}
	if c.AI.TextProvider == "anthropic" && c.AI.Anthropic.APIKey == "" {
		return fmt.Errorf("ANTHROPIC_API_KEY is required when TEXT_PROVIDER is anthropic")
	}
	if c.AI.TextProvider == "gemini" && c.AI.Gemini.APIKey == "" {
		return fmt.Errorf("GEMINI_API_KEY is required when TEXT_PROVIDER is gemini")
	}

	if c.Storage.IndexTTL <= 0 {
		return fmt.Errorf("STORAGE_INDEX_TTL_SECS must be positive")
	}

	return nil
}

func envString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func envInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return i
}

func envDurationSecs(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	secs, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return time.Duration(secs) * time.Second
}
