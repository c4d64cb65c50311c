// Package llm sends prompts to a text-generation provider and pulls code or
// JSON out of the replies.
package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
)

// ErrNoAPIKey is returned when a provider is selected without credentials.
var ErrNoAPIKey = errors.New("no API key configured")

// Request is one prompt exchange.
type Request struct {
	System    string
	Prompt    string
	Model     string
	MaxTokens int
}

// Client generates text for a prompt. Implementations make exactly one
// attempt: no retries and no streaming.
type Client interface {
	Generate(ctx context.Context, req Request) (string, error)
}

// StatusError is a non-2xx provider response.
type StatusError struct {
	Provider   string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s API error: %d - %s", e.Provider, e.StatusCode, e.Body)
}

// Provider names accepted by New.
const (
	ProviderAnthropic = "anthropic"
	ProviderGemini    = "gemini"
)

// Options configures a Client.
type Options struct {
	Provider    string
	APIKey      string
	Model       string
	MaxTokens   int
	Temperature float64
	// BaseURL overrides the provider endpoint. Anthropic only.
	BaseURL string
}

// New returns a client for opts.Provider, defaulting to Anthropic. Model and
// MaxTokens fill in requests that leave them unset.
func New(ctx context.Context, opts Options, log *logrus.Entry) (Client, error) {
	if opts.APIKey == "" {
		return nil, fmt.Errorf("%s: %w", providerName(opts.Provider), ErrNoAPIKey)
	}
	if log == nil {
		l := logrus.New()
		l.SetLevel(logrus.WarnLevel)
		log = logrus.NewEntry(l)
	}

	var c Client
	switch strings.ToLower(opts.Provider) {
	case "", ProviderAnthropic:
		c = NewAnthropic(opts.APIKey, opts.BaseURL, opts.Temperature)
	case ProviderGemini:
		g, err := NewGemini(ctx, opts.APIKey, opts.Temperature)
		if err != nil {
			return nil, err
		}
		c = g
	default:
		return nil, fmt.Errorf("unknown LLM provider %q", opts.Provider)
	}
	return &defaulting{next: c, model: opts.Model, maxTokens: opts.MaxTokens, log: log}, nil
}

func providerName(p string) string {
	if p == "" {
		return ProviderAnthropic
	}
	return p
}

// defaulting fills request defaults and logs each call.
type defaulting struct {
	next      Client
	model     string
	maxTokens int
	log       *logrus.Entry
}

func (d *defaulting) Generate(ctx context.Context, req Request) (string, error) {
	if req.Model == "" {
		req.Model = d.model
	}
	if req.MaxTokens == 0 {
		req.MaxTokens = d.maxTokens
	}
	d.log.WithFields(logrus.Fields{
		"model":        req.Model,
		"max_tokens":   req.MaxTokens,
		"prompt_bytes": len(req.Prompt),
	}).Debug("Calling LLM")

	text, err := d.next.Generate(ctx, req)
	if err != nil {
		return "", err
	}
	d.log.WithField("response_bytes", len(text)).Debug("LLM responded")
	return text, nil
}
