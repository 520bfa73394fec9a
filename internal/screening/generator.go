package screening

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"

	"github.com/joelkehle/kyc-screener/internal/llm"
)

const (
	DefaultMaxAttempts    = 3
	DefaultRetryBaseDelay = time.Second

	jsonInstruction = "\n\nIMPORTANT: Respond ONLY with a valid JSON object that adheres to the structure described, without any markdown formatting, comments, or extra text."
)

var tracer = otel.Tracer("github.com/joelkehle/kyc-screener/internal/screening")

// ProgressFunc receives section status transitions. Calls for different
// sections may arrive in any order and from different goroutines.
type ProgressFunc func(key string, status SectionStatus)

// SectionError describes a section that fell back to its default.
type SectionError struct {
	Key      string
	Attempts int
	Err      error
}

func (e *SectionError) Error() string {
	return fmt.Sprintf("section %s failed after %d attempt(s): %v", e.Key, e.Attempts, e.Err)
}
func (e *SectionError) Unwrap() error { return e.Err }

// SectionResult is one section's parsed data and the citations it produced.
type SectionResult struct {
	Key      string
	Data     json.RawMessage
	Sources  ReportSources
	Status   SectionStatus
	Fallback bool
	Attempts int
	Err      error
}

type GeneratorConfig struct {
	MaxAttempts    int
	RetryBaseDelay time.Duration
	Location       *llm.LatLng
}

type SectionGenerator struct {
	caller      llm.Caller
	logger      *zap.Logger
	maxAttempts int
	baseDelay   time.Duration
	location    *llm.LatLng
	sleep       func(ctx context.Context, d time.Duration) error
}

func NewSectionGenerator(caller llm.Caller, logger *zap.Logger, cfg GeneratorConfig) *SectionGenerator {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = DefaultMaxAttempts
	}
	if cfg.RetryBaseDelay <= 0 {
		cfg.RetryBaseDelay = DefaultRetryBaseDelay
	}
	return &SectionGenerator{
		caller:      caller,
		logger:      logger,
		maxAttempts: cfg.MaxAttempts,
		baseDelay:   cfg.RetryBaseDelay,
		location:    cfg.Location,
		sleep:       sleepContext,
	}
}

// Generate runs one section to completion. It never returns an error:
// failures degrade to def and are reported through progress and the result.
// progress is called exactly once, with a terminal status.
func (g *SectionGenerator) Generate(ctx context.Context, key, prompt string, expectJSON bool, def json.RawMessage, progress ProgressFunc) SectionResult {
	ctx, span := tracer.Start(ctx, "section.generate")
	defer span.End()
	span.SetAttributes(attribute.String("section.key", key), attribute.Bool("section.json", expectJSON))

	res := g.generate(ctx, key, prompt, expectJSON, def)

	span.SetAttributes(
		attribute.Int("section.attempts", res.Attempts),
		attribute.Bool("section.fallback", res.Fallback),
		attribute.String("section.status", string(res.Status)),
	)
	if res.Status == StatusError {
		span.SetStatus(codes.Error, res.Err.Error())
	}
	if progress != nil {
		progress(key, res.Status)
	}
	return res
}

func (g *SectionGenerator) generate(ctx context.Context, key, prompt string, expectJSON bool, def json.RawMessage) SectionResult {
	fullPrompt := prompt
	if expectJSON {
		fullPrompt += jsonInstruction
	}
	req := llm.Request{Prompt: fullPrompt, Grounding: true, Location: g.location}

	var lastErr error
	attempt := 0
	for attempt < g.maxAttempts {
		attempt++
		start := time.Now()
		resp, err := g.caller.Generate(ctx, req)
		if err == nil && resp.Text == "" {
			err = llm.ErrEmptyResponse
		}
		if err != nil {
			lastErr = err
			class := llm.ClassifyError(err)
			g.logger.Warn("section attempt failed",
				zap.String("section", key),
				zap.Int("attempt", attempt),
				zap.Stringer("class", class),
				zap.Duration("elapsed", time.Since(start)),
				zap.Error(err))
			if !class.Retryable() || attempt >= g.maxAttempts {
				break
			}
			if err := g.sleep(ctx, backoffDelay(g.baseDelay, attempt)); err != nil {
				lastErr = err
				break
			}
			continue
		}

		parsed := ParseSection(resp.Text, expectJSON, def)
		if parsed.Fallback {
			g.logger.Warn("section returned malformed json, using default",
				zap.String("section", key),
				zap.Int("attempt", attempt),
				zap.Error(parsed.Err))
		}
		g.logger.Debug("section complete",
			zap.String("section", key),
			zap.Int("attempt", attempt),
			zap.Duration("elapsed", time.Since(start)),
			zap.Int("web_sources", len(resp.Web)),
			zap.Int("map_sources", len(resp.Maps)))
		return SectionResult{
			Key:      key,
			Data:     parsed.Data,
			Sources:  ReportSources{Web: resp.Web, Maps: resp.Maps},
			Status:   StatusComplete,
			Fallback: parsed.Fallback,
			Attempts: attempt,
			Err:      parsed.Err,
		}
	}

	if lastErr == nil {
		lastErr = errors.New("no attempts made")
	}
	serr := &SectionError{Key: key, Attempts: attempt, Err: lastErr}
	g.logger.Error("section exhausted retries, using default", zap.String("section", key), zap.Error(serr))
	return SectionResult{
		Key:      key,
		Data:     def,
		Status:   StatusError,
		Fallback: true,
		Attempts: attempt,
		Err:      serr,
	}
}

// backoffDelay grows linearly with the attempt number.
func backoffDelay(base time.Duration, attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	return base * time.Duration(attempt)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
