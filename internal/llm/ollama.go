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

// OllamaConfig holds configuration for the local Ollama provider.
type OllamaConfig struct {
	// BaseURL is the Ollama API base URL (default: http://127.0.0.1:11434).
	// Explicit IPv4 avoids IPv6 localhost resolution issues on Windows.
	BaseURL string

	// Model to request (default: qwen2.5-coder:14b).
	Model string

	// Timeout for a single request (default: 120s; local models are slow).
	Timeout time.Duration
}

// =============================================================================
// WIRE TYPES
// =============================================================================

type ollamaMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ollamaChatRequest struct {
	Model    string          `json:"model"`
	Messages []ollamaMessage `json:"messages"`
	Stream   bool            `json:"stream"`
	Format   string          `json:"format,omitempty"`
}

type ollamaChatResponse struct {
	Message ollamaMessage `json:"message"`
	Error   string        `json:"error"`
}

// =============================================================================
// CLIENT
// =============================================================================

// OllamaClient talks to a local Ollama server.
type OllamaClient struct {
	config     OllamaConfig
	httpClient *http.Client
}

// NewOllamaClient creates a client, filling in defaults for zero values.
func NewOllamaClient(config OllamaConfig) *OllamaClient {
	if config.BaseURL == "" {
		config.BaseURL = "http://127.0.0.1:11434"
	}
	if config.Model == "" {
		config.Model = "qwen2.5-coder:14b"
	}
	if config.Timeout == 0 {
		config.Timeout = 120 * time.Second
	}
	return &OllamaClient{
		config:     config,
		httpClient: &http.Client{Timeout: config.Timeout},
	}
}

// ParseSpec implements Parser. Ollama's JSON mode constrains the output
// to a single object, so no retry loop is needed for fence-stripping.
func (c *OllamaClient) ParseSpec(ctx context.Context, req Request) (*spec.CommandSpec, error) {
	body, err := json.Marshal(ollamaChatRequest{
		Model: c.config.Model,
		Messages: []ollamaMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: buildPrompt(req)},
		},
		Stream: false,
		Format: "json",
	})
	if err != nil {
		return nil, &ClientError{Type: ErrTypeInvalidResponse, Message: "failed to marshal request", Cause: err}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.BaseURL+"/api/chat", bytes.NewReader(body))
	if err != nil {
		return nil, &ClientError{Type: ErrTypeConnection, Message: "failed to create request", Cause: err}
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, ErrTimeout
		}
		return nil, &ClientError{Type: ErrTypeConnection, Message: "Ollama is not reachable", Cause: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, &ClientError{Type: ErrTypeInvalidResponse, Message: "model not found: " + c.config.Model}
	}
	if resp.StatusCode != http.StatusOK {
		var apiResp ollamaChatResponse
		if err := json.NewDecoder(resp.Body).Decode(&apiResp); err == nil && apiResp.Error != "" {
			return nil, &ClientError{Type: ErrTypeInvalidResponse, Message: apiResp.Error}
		}
		return nil, &ClientError{Type: ErrTypeInvalidResponse, Message: "chat request failed: " + resp.Status}
	}

	var apiResp ollamaChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, &ClientError{Type: ErrTypeInvalidResponse, Message: "failed to decode response", Cause: err}
	}
	if apiResp.Message.Content == "" {
		return nil, &ClientError{Type: ErrTypeInvalidResponse, Message: "empty response from model"}
	}

	return decodeSpec(req, apiResp.Message.Content)
}
