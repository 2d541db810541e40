// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package llm parses raw help text into a command spec using a language
// model. Two providers are supported: the Anthropic Messages API and a
// local Ollama server. Both return validated specs; malformed model
// output is an error, never a partial spec.
package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/time/rate"

	"github.com/jeranaias/quocli/internal/spec"
)

// =============================================================================
// ERROR TYPES
// =============================================================================

// ClientError represents an error from a provider client.
type ClientError struct {
	Type    ErrorType
	Message string
	Cause   error
}

func (e *ClientError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *ClientError) Unwrap() error {
	return e.Cause
}

// ErrorType categorizes client errors for handling.
type ErrorType int

const (
	ErrTypeUnknown ErrorType = iota
	ErrTypeConnection
	ErrTypeTimeout
	ErrTypeAuth
	ErrTypeRateLimited
	ErrTypeInvalidResponse
)

// Sentinel errors for easy checking.
var (
	ErrTimeout     = &ClientError{Type: ErrTypeTimeout, Message: "model request timed out"}
	ErrRateLimited = &ClientError{Type: ErrTypeRateLimited, Message: "provider rate limit hit"}
	ErrNoAPIKey    = &ClientError{Type: ErrTypeAuth, Message: "API key environment variable is empty"}
)

// IsTimeout checks if an error is a timeout error.
func IsTimeout(err error) bool {
	var clientErr *ClientError
	if errors.As(err, &clientErr) {
		return clientErr.Type == ErrTypeTimeout
	}
	return false
}

// IsAuth checks if an error is an authentication error.
func IsAuth(err error) bool {
	var clientErr *ClientError
	if errors.As(err, &clientErr) {
		return clientErr.Type == ErrTypeAuth
	}
	return false
}

// =============================================================================
// PARSER
// =============================================================================

// Request carries everything a provider needs to produce a spec.
type Request struct {
	// Command is the executable name.
	Command string
	// Subcommands is the subcommand chain, possibly empty.
	Subcommands []string
	// HelpText is the raw captured help output.
	HelpText string
}

// Identity is the spec identity the parsed result must carry: the command
// words joined by spaces. Provider output is overridden with this value so
// a hallucinated identity cannot poison the cache.
func (r Request) Identity() string {
	return strings.Join(append([]string{r.Command}, r.Subcommands...), " ")
}

// Parser turns help text into a validated spec.
type Parser interface {
	ParseSpec(ctx context.Context, req Request) (*spec.CommandSpec, error)
}

// =============================================================================
// RATE LIMITING
// =============================================================================

// limited wraps a Parser with an outbound rate limiter.
type limited struct {
	parser  Parser
	limiter *rate.Limiter
}

// Limit caps the call rate of a parser. Callers block (honoring ctx)
// until a token is available.
func Limit(p Parser, r rate.Limit, burst int) Parser {
	return &limited{parser: p, limiter: rate.NewLimiter(r, burst)}
}

func (l *limited) ParseSpec(ctx context.Context, req Request) (*spec.CommandSpec, error) {
	if err := l.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return l.parser.ParseSpec(ctx, req)
}

// =============================================================================
// RESPONSE DECODING
// =============================================================================

// decodeSpec turns raw model text into a validated spec with the
// request's identity pinned.
func decodeSpec(req Request, text string) (*spec.CommandSpec, error) {
	payload := extractJSON(text)
	if payload == "" {
		return nil, &ClientError{Type: ErrTypeInvalidResponse, Message: "no JSON object in model output"}
	}

	cs, err := spec.Decode([]byte(payload))
	if err != nil {
		return nil, &ClientError{Type: ErrTypeInvalidResponse, Message: "model produced an invalid spec", Cause: err}
	}

	cs.Identity = req.Identity()
	if err := cs.Validate(); err != nil {
		return nil, &ClientError{Type: ErrTypeInvalidResponse, Message: "model produced an invalid spec", Cause: err}
	}
	return cs, nil
}

// extractJSON pulls the first top-level JSON object out of model text,
// tolerating markdown code fences and prose around it.
func extractJSON(s string) string {
	start := strings.IndexByte(s, '{')
	if start == -1 {
		return ""
	}
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if escaped {
			escaped = false
			continue
		}
		switch c {
		case '\\':
			if inString {
				escaped = true
			}
		case '"':
			inString = !inString
		case '{':
			if !inString {
				depth++
			}
		case '}':
			if !inString {
				depth--
				if depth == 0 {
					return s[start : i+1]
				}
			}
		}
	}
	return ""
}

// =============================================================================
// FACTORY
// =============================================================================

// ProviderConfig selects and configures a provider.
type ProviderConfig struct {
	Provider  string // "anthropic" or "ollama"
	Model     string
	APIKey    string // resolved from the configured env var, anthropic only
	BaseURL   string // override; empty uses the provider default
	RatePerMin int   // outbound call budget; 0 disables limiting
}

// NewParser builds the configured provider, wrapped in a rate limiter
// when a budget is set.
func NewParser(cfg ProviderConfig) (Parser, error) {
	var p Parser
	switch cfg.Provider {
	case "anthropic":
		ac, err := NewAnthropicClient(AnthropicConfig{
			BaseURL: cfg.BaseURL,
			Model:   cfg.Model,
			APIKey:  cfg.APIKey,
		})
		if err != nil {
			return nil, err
		}
		p = ac
	case "ollama", "":
		p = NewOllamaClient(OllamaConfig{
			BaseURL: cfg.BaseURL,
			Model:   cfg.Model,
		})
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.Provider)
	}

	if cfg.RatePerMin > 0 {
		p = Limit(p, rate.Limit(float64(cfg.RatePerMin)/60.0), 1)
	}
	return p, nil
}
