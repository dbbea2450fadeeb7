package llm

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/yungbote/tutor-backend/internal/observability"
	"github.com/yungbote/tutor-backend/internal/platform/logger"
)

// instrumented applies request defaults and the call timeout, and records
// every call as a span, a metric sample and a log line.
type instrumented struct {
	inner   Provider
	cfg     Config
	metrics *observability.Metrics
	log     *logger.Logger
}

func Instrument(p Provider, cfg Config, metrics *observability.Metrics, baseLog *logger.Logger) Provider {
	if baseLog == nil {
		baseLog = logger.Nop()
	}
	return &instrumented{inner: p, cfg: cfg, metrics: metrics, log: baseLog.With("component", "llm", "model", p.ModelID())}
}

func (p *instrumented) Generate(ctx context.Context, req Request) (*Response, error) {
	if req.MaxTokens <= 0 {
		req.MaxTokens = p.cfg.MaxTokens
	}
	if req.Temperature == 0 {
		req.Temperature = p.cfg.Temperature
	}
	op := OperationFrom(ctx)
	if p.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.cfg.Timeout)
		defer cancel()
	}
	ctx, span := observability.StartSpan(ctx, "llm.generate",
		attribute.String("llm.model", p.inner.ModelID()),
		attribute.String("llm.operation", op),
	)
	defer span.End()

	start := time.Now()
	resp, err := p.inner.Generate(ctx, req)
	dur := time.Since(start)
	status := statusOf(err)

	in, out := 0, 0
	model := p.inner.ModelID()
	if resp != nil {
		in, out = resp.Usage.InputTokens, resp.Usage.OutputTokens
		if resp.Model != "" {
			model = resp.Model
		}
	}
	p.metrics.ObserveLLMRequest(model, op, status, dur, in, out)
	span.SetAttributes(
		attribute.String("llm.status", status),
		attribute.Int("llm.input_tokens", in),
		attribute.Int("llm.output_tokens", out),
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, status)
		p.log.Warn("LLM request failed", "operation", op, "status", status, "duration_ms", dur.Milliseconds(), "error", err)
		return nil, err
	}
	p.log.Debug("LLM request done", "operation", op, "duration_ms", dur.Milliseconds(), "input_tokens", in, "output_tokens", out)
	return resp, nil
}

func (p *instrumented) ModelID() string { return p.inner.ModelID() }
