// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/jeranaias/quocli/internal/spec"
)

// =============================================================================
// CLIENT CONFIGURATION
// =============================================================================

// AnthropicConfig holds configuration for the Anthropic provider.
type AnthropicConfig struct {
	// BaseURL is the API base URL (default: https://api.anthropic.com).
	BaseURL string

	// Model to request (default: claude-3-5-haiku-latest).
	Model string

	// APIKey authenticates requests. Required.
	APIKey string

	// Timeout for a single request (default: 60s).
	Timeout time.Duration

	// MaxRetries for transient failures (default: 3).
	MaxRetries int

	// RetryDelay between retries (default: 1s).
	RetryDelay time.Duration
}

// =============================================================================
// WIRE TYPES
// =============================================================================

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicRequest struct {
	Model     string             `json:"model"`
	MaxTokens int                `json:"max_tokens"`
	System    string             `json:"system"`
	Messages  []anthropicMessage `json:"messages"`
}

type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Error *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// =============================================================================
// CLIENT
// =============================================================================

// AnthropicClient talks to the Anthropic Messages API.
type AnthropicClient struct {
	config     AnthropicConfig
	httpClient *http.Client
}

// NewAnthropicClient creates a client, filling in defaults for zero
// values. Fails when no API key is configured.
func NewAnthropicClient(config AnthropicConfig) (*AnthropicClient, error) {
	if config.APIKey == "" {
		return nil, ErrNoAPIKey
	}
	if config.BaseURL == "" {
		config.BaseURL = "https://api.anthropic.com"
	}
	if config.Model == "" {
		config.Model = "claude-3-5-haiku-latest"
	}
	if config.Timeout == 0 {
		config.Timeout = 60 * time.Second
	}
	if config.MaxRetries == 0 {
		config.MaxRetries = 3
	}
	if config.RetryDelay == 0 {
		config.RetryDelay = 1 * time.Second
	}

	return &AnthropicClient{
		config:     config,
		httpClient: &http.Client{Timeout: config.Timeout},
	}, nil
}

// ParseSpec implements Parser. Transient failures (connection errors,
// 429, 5xx) are retried with a fixed delay up to MaxRetries.
func (c *AnthropicClient) ParseSpec(ctx context.Context, req Request) (*spec.CommandSpec, error) {
	body, err := json.Marshal(anthropicRequest{
		Model:     c.config.Model,
		MaxTokens: 4096,
		System:    systemPrompt,
		Messages:  []anthropicMessage{{Role: "user", Content: buildPrompt(req)}},
	})
	if err != nil {
		return nil, &ClientError{Type: ErrTypeInvalidResponse, Message: "failed to marshal request", Cause: err}
	}

	var lastErr error
	for attempt := 0; attempt <= c.config.MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(c.config.RetryDelay):
			}
		}

		text, retryable, err := c.complete(ctx, body)
		if err == nil {
			return decodeSpec(req, text)
		}
		lastErr = err
		if !retryable {
			return nil, err
		}
	}
	return nil, lastErr
}

// complete performs one API round trip and returns the model's text.
// The second return says whether the failure is worth retrying.
func (c *AnthropicClient) complete(ctx context.Context, body []byte) (string, bool, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.BaseURL+"/v1/messages", bytes.NewReader(body))
	if err != nil {
		return "", false, &ClientError{Type: ErrTypeConnection, Message: "failed to create request", Cause: err}
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", c.config.APIKey)
	httpReq.Header.Set("anthropic-version", "2023-06-01")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return "", true, ErrTimeout
		}
		return "", true, &ClientError{Type: ErrTypeConnection, Message: "request failed", Cause: err}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return "", false, &ClientError{Type: ErrTypeAuth, Message: "authentication rejected: " + resp.Status}
	case resp.StatusCode == http.StatusTooManyRequests:
		return "", true, ErrRateLimited
	case resp.StatusCode >= 500:
		return "", true, &ClientError{Type: ErrTypeConnection, Message: "server error: " + resp.Status}
	case resp.StatusCode != http.StatusOK:
		var apiResp anthropicResponse
		if err := json.NewDecoder(resp.Body).Decode(&apiResp); err == nil && apiResp.Error != nil {
			return "", false, &ClientError{Type: ErrTypeInvalidResponse, Message: apiResp.Error.Message}
		}
		return "", false, &ClientError{Type: ErrTypeInvalidResponse, Message: "request failed: " + resp.Status}
	}

	var apiResp anthropicResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return "", false, &ClientError{Type: ErrTypeInvalidResponse, Message: "failed to decode response", Cause: err}
	}

	var text string
	for _, block := range apiResp.Content {
		if block.Type == "text" {
			text += block.Text
		}
	}
	if text == "" {
		return "", false, &ClientError{Type: ErrTypeInvalidResponse, Message: "empty response from model"}
	}
	return text, false, nil
}
