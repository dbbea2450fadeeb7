package llm

import (
	"fmt"
	"strings"
	"time"

	"github.com/yungbote/tutor-backend/internal/platform/envutil"
)

const (
	ProviderGemini    = "gemini"
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderMock      = "mock"
)

type Config struct {
	// Provider is one of gemini, openai, anthropic, mock.
	Provider    string
	APIKey      string
	Model       string
	BaseURL     string // openai-compatible endpoints only
	MaxTokens   int
	Temperature float64
	Timeout     time.Duration
}

func DefaultConfig() Config {
	return Config{
		Provider:    ProviderGemini,
		MaxTokens:   8192,
		Temperature: 0.7,
		Timeout:     60 * time.Second,
	}
}

// ConfigFromEnv reads LLM_* variables. The provider-specific key variables
// (GEMINI_API_KEY, OPENAI_API_KEY, ANTHROPIC_API_KEY) are used when
// LLM_API_KEY is unset.
func ConfigFromEnv() Config {
	def := DefaultConfig()
	cfg := Config{
		Provider:    strings.ToLower(envutil.String("LLM_PROVIDER", def.Provider)),
		Model:       envutil.String("LLM_MODEL", ""),
		BaseURL:     envutil.String("LLM_BASE_URL", ""),
		MaxTokens:   envutil.Int("LLM_MAX_TOKENS", def.MaxTokens),
		Temperature: envutil.Float("LLM_TEMPERATURE", def.Temperature),
		Timeout:     envutil.Duration("LLM_TIMEOUT", def.Timeout),
	}
	cfg.APIKey = envutil.String("LLM_API_KEY", "")
	if cfg.APIKey == "" {
		switch cfg.Provider {
		case ProviderGemini:
			cfg.APIKey = envutil.String("GEMINI_API_KEY", "")
			if cfg.Model == "" {
				cfg.Model = envutil.String("GEMINI_MODEL", "")
			}
		case ProviderOpenAI:
			cfg.APIKey = envutil.String("OPENAI_API_KEY", "")
		case ProviderAnthropic:
			cfg.APIKey = envutil.String("ANTHROPIC_API_KEY", "")
		}
	}
	return cfg
}

func (c Config) Validate() error {
	switch c.Provider {
	case ProviderGemini, ProviderOpenAI, ProviderAnthropic:
		if strings.TrimSpace(c.APIKey) == "" {
			return fmt.Errorf("an API key is required for the %s provider", c.Provider)
		}
	case ProviderMock:
	default:
		return fmt.Errorf("unknown LLM provider: %q", c.Provider)
	}
	if c.MaxTokens <= 0 {
		return fmt.Errorf("LLM_MAX_TOKENS must be positive")
	}
	if c.Temperature < 0 || c.Temperature > 2 {
		return fmt.Errorf("LLM_TEMPERATURE must be between 0 and 2")
	}
	return nil
}

// resolveModel maps a friendly name to a provider model id. Unknown names
// pass through so full model ids work too.
func resolveModel(name, fallback string, models map[string]string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		name = fallback
	}
	if id, ok := models[name]; ok {
		return id
	}
	return name
}
