package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

const (
	// DefaultBaseURL is the standard local Ollama address.
	DefaultBaseURL = "http://localhost:11434"
	// DefaultModel is used when neither the client nor the request names one.
	DefaultModel = "gpt-oss:20b-cloud"
	// DefaultTimeout bounds a single HTTP request.
	DefaultTimeout = 120 * time.Second
	// DefaultTemperature is applied when a request leaves it unset.
	DefaultTemperature = 0.2
)

// Client talks to an Ollama-compatible backend. It is stateless apart from
// its configuration and safe for concurrent use.
type Client struct {
	baseURL    string
	model      string
	httpClient *http.Client
}

// NewClient creates a gateway client. Empty arguments fall back to the
// package defaults; a trailing slash on baseURL is stripped.
func NewClient(baseURL, model string, timeout time.Duration) *Client {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = DefaultBaseURL
	}
	if strings.TrimSpace(model) == "" {
		model = DefaultModel
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		model:      model,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Model returns the default model the client was configured with.
func (c *Client) Model() string {
	return c.model
}

// Chat sends a conversation to the chat endpoint and returns the normalized
// response text. When the chat endpoint is unsupported (404/501) the request
// is retried once against the legacy generate endpoint with a flattened
// prompt. Any other failure propagates; there are no retries.
func (c *Client) Chat(ctx context.Context, messages []Message, opts Options) (string, error) {
	model := opts.Model
	if model == "" {
		model = c.model
	}
	temperature := DefaultTemperature
	if opts.Temperature != nil {
		temperature = *opts.Temperature
	}
	options := requestOptions{Temperature: temperature}
	if opts.JSONMode {
		// Honored by many backends, silently ignored by some.
		options.Format = "json"
	}

	slog.Debug("sending chat request",
		"model", model,
		"messages_count", len(messages),
		"json_mode", opts.JSONMode)

	body, err := c.postJSON(ctx, c.baseURL+"/api/chat", chatRequest{
		Model:    model,
		Messages: messages,
		Stream:   false,
		Options:  options,
	}, model)
	if err != nil {
		var statusErr *StatusError
		if !errors.As(err, &statusErr) || (statusErr.StatusCode != http.StatusNotFound && statusErr.StatusCode != http.StatusNotImplemented) {
			return "", err
		}

		slog.Debug("chat endpoint unsupported, falling back to generate",
			"status_code", statusErr.StatusCode)

		body, err = c.postJSON(ctx, c.baseURL+"/api/generate", generateRequest{
			Model:   model,
			Prompt:  FlattenMessages(messages),
			Stream:  false,
			Options: options,
		}, model)
		if err != nil {
			return "", err
		}
	}

	if !json.Valid(body) {
		return "", fmt.Errorf("backend returned invalid JSON (model=%s): %s", model, truncate(string(body), errorBodyLimit))
	}
	return ExtractText(body), nil
}

// JSONReply asks the model for strict JSON and coerces the reply into a
// structured value. The system prompt is suffixed with a JSON-only
// instruction and json_mode is requested as a belt-and-braces hint.
func (c *Client) JSONReply(ctx context.Context, systemPrompt, userPrompt string, opts Options) (any, error) {
	messages := []Message{
		{Role: RoleSystem, Content: systemPrompt + "\nReturn ONLY valid JSON."},
		{Role: RoleUser, Content: userPrompt},
	}
	opts.JSONMode = true
	temperature := DefaultTemperature
	opts.Temperature = &temperature

	content, err := c.Chat(ctx, messages, opts)
	if err != nil {
		return nil, err
	}
	return CoerceJSON(content)
}

// postJSON issues one POST and returns the response body. Non-2xx statuses
// become a *StatusError; transport errors propagate as-is.
func (c *Client) postJSON(ctx context.Context, url string, payload any, model string) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	slog.Debug("received backend response",
		"url", url,
		"status_code", resp.StatusCode,
		"response_size", len(body))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &StatusError{
			StatusCode: resp.StatusCode,
			Model:      model,
			Body:       truncate(string(body), errorBodyLimit),
		}
	}
	return body, nil
}
