// Package openai adapts the OpenAI audio transcription endpoint to the
// providers.Provider interface.
package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/hearingscribe/hearingscribe/pkg/logger"
	"github.com/hearingscribe/hearingscribe/pkg/providers"
)

const defaultAttempts = 3

// Provider calls the OpenAI transcription API with bounded retries for
// transient failures.
type Provider struct {
	client   *openai.Client
	apiKey   string
	baseURL  string
	model    string
	attempts int
	backoff  func(attempt int) time.Duration
}

// ProviderOption allows customizing the provider
type ProviderOption func(*Provider)

// WithModel sets the transcription model
func WithModel(model string) ProviderOption {
	return func(p *Provider) {
		if model != "" {
			p.model = model
		}
	}
}

// WithBaseURL points the client at an API-compatible endpoint
func WithBaseURL(baseURL string) ProviderOption {
	return func(p *Provider) {
		p.baseURL = baseURL
	}
}

// WithRetries sets the total number of attempts per chunk call
func WithRetries(attempts int) ProviderOption {
	return func(p *Provider) {
		if attempts > 0 {
			p.attempts = attempts
		}
	}
}

// WithBackoff overrides the wait between retry attempts
func WithBackoff(backoff func(attempt int) time.Duration) ProviderOption {
	return func(p *Provider) {
		if backoff != nil {
			p.backoff = backoff
		}
	}
}

// NewProvider creates a new OpenAI provider instance
func NewProvider(apiKey string, options ...ProviderOption) *Provider {
	p := &Provider{
		apiKey:   apiKey,
		model:    openai.Whisper1,
		attempts: defaultAttempts,
		backoff: func(attempt int) time.Duration {
			return time.Duration(attempt) * time.Second
		},
	}

	for _, opt := range options {
		opt(p)
	}

	cfg := openai.DefaultConfig(apiKey)
	if p.baseURL != "" {
		cfg.BaseURL = p.baseURL
	}
	p.client = openai.NewClientWithConfig(cfg)

	return p
}

// Name returns the provider name
func (p *Provider) Name() string {
	return "openai"
}

// Transcribe submits one chunk file. Transient failures are retried with
// a linear backoff; permanent rejections and quota exhaustion return
// immediately with the matching error type.
func (p *Provider) Transcribe(ctx context.Context, req *providers.Request) (string, error) {
	log := logger.FromContext(ctx).WithComponent("openai")

	audioReq := openai.AudioRequest{
		Model:    p.model,
		FilePath: req.FilePath,
		Language: req.Language,
		Prompt:   req.Prompt,
		Format:   openai.AudioResponseFormat(req.ResponseFormat),
	}

	var lastErr error
	for attempt := 1; attempt <= p.attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		resp, err := p.client.CreateTranscription(ctx, audioReq)
		if err == nil {
			return resp.Text, nil
		}
		lastErr = err

		switch classify(err) {
		case kindQuota:
			return "", providers.NewQuotaError(err)
		case kindPermanent:
			return "", providers.NewPermanentError(err)
		}

		if attempt < p.attempts {
			wait := p.backoff(attempt)
			log.Warn().
				Err(err).
				Int("attempt", attempt).
				Dur("backoff", wait).
				Msg("transcription attempt failed, retrying")
			select {
			case <-time.After(wait):
			case <-ctx.Done():
				return "", ctx.Err()
			}
		}
	}

	return "", providers.NewTransientError(fmt.Errorf("after %d attempts: %w", p.attempts, lastErr))
}

type kind int

const (
	kindTransient kind = iota
	kindPermanent
	kindQuota
)

// classify buckets an API failure by whether retrying can help. Rate
// limits, timeouts, connection failures and 5xx responses are transient;
// an exhausted quota also arrives as 429 but is distinguished by its
// error code.
func classify(err error) kind {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		if apiErr.HTTPStatusCode == http.StatusTooManyRequests {
			if isQuotaCode(apiErr) {
				return kindQuota
			}
			return kindTransient
		}
		switch {
		case apiErr.HTTPStatusCode == http.StatusRequestTimeout:
			return kindTransient
		case apiErr.HTTPStatusCode >= 500:
			return kindTransient
		case apiErr.HTTPStatusCode >= 400:
			return kindPermanent
		}
		return kindTransient
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		switch {
		case reqErr.HTTPStatusCode == http.StatusTooManyRequests:
			return kindTransient
		case reqErr.HTTPStatusCode == http.StatusRequestTimeout:
			return kindTransient
		case reqErr.HTTPStatusCode >= 500:
			return kindTransient
		case reqErr.HTTPStatusCode >= 400:
			return kindPermanent
		}
		return kindTransient
	}

	// Network errors and timeouts arrive as plain errors
	return kindTransient
}

func isQuotaCode(apiErr *openai.APIError) bool {
	if apiErr.Type == "insufficient_quota" {
		return true
	}
	if code, ok := apiErr.Code.(string); ok && code == "insufficient_quota" {
		return true
	}
	return false
}
