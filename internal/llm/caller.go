// Package llm is the boundary to the hosted generative model. Callers send a
// prompt, optionally asking for web and maps grounding, and get back the
// generated text plus the citations the provider attached to it.
package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

const (
	ProviderGemini    = "gemini"
	ProviderAnthropic = "anthropic"

	DefaultGeminiModel    = "gemini-2.5-pro"
	DefaultAnthropicModel = "claude-sonnet-4-20250514"
)

// ErrEmptyResponse is returned when the model answered without any text.
var ErrEmptyResponse = errors.New("llm returned an empty response")

// LatLng is a geolocation hint used to bias maps grounding.
type LatLng struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Citation is one grounding source attached to a response.
type Citation struct {
	Title string `json:"title"`
	URI   string `json:"uri"`
}

type Request struct {
	Prompt    string
	Grounding bool
	Location  *LatLng
}

type Response struct {
	Text string
	Web  []Citation
	Maps []Citation
}

// Caller issues a single generation request. Implementations must be safe
// for concurrent use; report generation fans out one call per section.
type Caller interface {
	Generate(ctx context.Context, req Request) (Response, error)
	ModelName() string
}

type Options struct {
	Provider string
	Model    string
	APIKey   string
}

// NewCaller builds the provider-specific caller named by opts.Provider.
func NewCaller(ctx context.Context, opts Options) (Caller, error) {
	provider := strings.ToLower(strings.TrimSpace(opts.Provider))
	if strings.TrimSpace(opts.APIKey) == "" {
		return nil, fmt.Errorf("%s api key not configured", providerOrDefault(provider))
	}
	switch provider {
	case "", ProviderGemini:
		return NewGeminiCaller(ctx, opts.APIKey, opts.Model)
	case ProviderAnthropic:
		return NewAnthropicCaller(opts.APIKey, opts.Model), nil
	default:
		return nil, fmt.Errorf("unknown llm provider %q", opts.Provider)
	}
}

func providerOrDefault(p string) string {
	if p == "" {
		return ProviderGemini
	}
	return p
}
