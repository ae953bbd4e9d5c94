// Package openrouter implements the wire-protocol client for the OpenRouter
// chat-completions endpoint: a one-shot call and a streaming call that
// decodes the event-stream body into a pull-based fragment sequence.
package openrouter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// DefaultBaseURL is the production chat-completions endpoint.
const DefaultBaseURL = "https://openrouter.ai/api/v1/chat/completions"

// Identifying headers sent with every request.
const (
	refererHeader = "https://vietrp.local"
	titleHeader   = "VietRP Chat"
)

// Client talks to a single chat-completions endpoint with a fixed bearer
// credential. It holds no conversation state and is safe for reuse across
// calls; a credential change requires a fresh instance (see Cache).
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// Option customizes a Client.
type Option func(*Client)

// WithBaseURL overrides the completion endpoint, mainly for tests.
func WithBaseURL(url string) Option {
	return func(c *Client) { c.baseURL = url }
}

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.httpClient = h }
}

// NewClient builds a client for the given credential.
func NewClient(apiKey string, opts ...Option) *Client {
	c := &Client{
		apiKey:     apiKey,
		baseURL:    DefaultBaseURL,
		httpClient: http.DefaultClient,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Chat performs a one-shot completion. The first choice's message content is
// the usable result.
func (c *Client) Chat(ctx context.Context, messages []Message, model string, opts Options) (*ChatResponse, error) {
	resp, err := c.post(ctx, messages, model, opts, false)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var result ChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, &TransportError{Err: fmt.Errorf("decode response: %w", err)}
	}
	return &result, nil
}

// ChatStream performs a streaming completion and returns a single-pass,
// non-restartable fragment sequence. The caller owns the stream and must
// Close it; accumulating fragments into a full message is the caller's job.
func (c *Client) ChatStream(ctx context.Context, messages []Message, model string, opts Options) (*Stream, error) {
	resp, err := c.post(ctx, messages, model, opts, true)
	if err != nil {
		return nil, err
	}
	return newStream(resp.Body), nil
}

// post sends the request and maps non-success statuses onto the error
// taxonomy. On success the caller owns the response body.
func (c *Client) post(ctx context.Context, messages []Message, model string, opts Options, stream bool) (*http.Response, error) {
	if c.apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	body := chatRequest{
		Model:       model,
		Messages:    messages,
		Temperature: DefaultTemperature,
		MaxTokens:   DefaultMaxTokens,
		TopP:        DefaultTopP,
		Stream:      stream,
	}
	if opts.Temperature != nil {
		body.Temperature = *opts.Temperature
	}
	if opts.MaxTokens != nil {
		body.MaxTokens = *opts.MaxTokens
	}
	if opts.TopP != nil {
		body.TopP = *opts.TopP
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("HTTP-Referer", refererHeader)
	req.Header.Set("X-Title", titleHeader)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &TransportError{Err: err}
	}

	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		message := remoteErrorMessage(resp.Body)
		if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
			return nil, &AuthError{Status: resp.StatusCode, Message: message}
		}
		return nil, &APIError{Status: resp.StatusCode, Message: message}
	}

	return resp, nil
}

// remoteErrorMessage extracts the error text from a failure body, tolerating
// unparseable bodies.
func remoteErrorMessage(body io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(body, 1<<16))
	if err != nil {
		return ""
	}
	var envelope errorResponse
	if err := json.Unmarshal(data, &envelope); err != nil {
		return ""
	}
	return envelope.Error.Message
}
