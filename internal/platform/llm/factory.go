package llm

import (
	"context"
	"fmt"

	"github.com/yungbote/tutor-backend/internal/observability"
	"github.com/yungbote/tutor-backend/internal/platform/logger"
)

// NewProvider builds the configured provider wrapped with instrumentation.
// Failures are not retried here; callers surface them as retryable or not.
func NewProvider(ctx context.Context, cfg Config, metrics *observability.Metrics, log *logger.Logger) (Provider, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	var (
		base Provider
		err  error
	)
	switch cfg.Provider {
	case ProviderGemini:
		base, err = NewGeminiProvider(ctx, cfg)
	case ProviderOpenAI:
		base, err = NewOpenAIProvider(cfg)
	case ProviderAnthropic:
		base, err = NewAnthropicProvider(cfg)
	case ProviderMock:
		base = NewMockProvider()
	}
	if err != nil {
		return nil, fmt.Errorf("initializing %s provider: %w", cfg.Provider, err)
	}
	if log != nil {
		log.Info("LLM provider ready", "provider", cfg.Provider, "model", base.ModelID())
	}
	return Instrument(base, cfg, metrics, log), nil
}
