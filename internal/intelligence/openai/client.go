// Package openai is a minimal client for the hosted embedding and
// chat-completion endpoints.  Transient failures (network errors, 429 and
// 5xx) are retried with exponential backoff; every other failure surfaces as
// an upstream error.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/BillWilson/pat-checker/internal/config"
	"github.com/BillWilson/pat-checker/internal/infrastructure/monitoring/logging"
	"github.com/BillWilson/pat-checker/pkg/errors"
)

// maxErrorBody caps how much of a failed response body is kept for logs.
const maxErrorBody = 2048

// Embedder turns text into a fixed-width vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// ChatCompleter runs a single system+user exchange constrained to a JSON
// object reply and returns the raw message content.
type ChatCompleter interface {
	ChatJSON(ctx context.Context, system, user string) (string, error)
}

// Client implements Embedder and ChatCompleter over HTTP.
type Client struct {
	cfg        config.OpenAIConfig
	httpClient *http.Client
	logger     logging.Logger
	newBackOff func() backoff.BackOff
}

var (
	_ Embedder      = (*Client)(nil)
	_ ChatCompleter = (*Client)(nil)
)

// Option customises a Client.
type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithBackOff replaces the retry schedule.  The factory is called once per
// request.
func WithBackOff(factory func() backoff.BackOff) Option {
	return func(c *Client) { c.newBackOff = factory }
}

// NewClient validates cfg and returns a ready client.
func NewClient(cfg config.OpenAIConfig, log logging.Logger, opts ...Option) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New(errors.ErrCodeValidation, "openai api key is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = config.DefaultOpenAIBaseURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.Timeout <= 0 {
		cfg.Timeout = config.DefaultOpenAITimeout
	}

	c := &Client{
		cfg:        cfg,
		httpClient: &http.Client{},
		logger:     log.Named("openai"),
		newBackOff: defaultBackOff,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func defaultBackOff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 500 * time.Millisecond
	b.MaxInterval = 8 * time.Second
	b.MaxElapsedTime = 0
	return b
}

// ─────────────────────────────────────────────────────────────────────────────
// Wire types
// ─────────────────────────────────────────────────────────────────────────────

type embeddingRequest struct {
	Model      string `json:"model"`
	Input      string `json:"input"`
	Dimensions int    `json:"dimensions,omitempty"`
}

type embeddingResponse struct {
	Data []struct {
		Index     int       `json:"index"`
		Embedding []float32 `json:"embedding"`
	} `json:"data"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatRequest struct {
	Model          string         `json:"model"`
	Messages       []chatMessage  `json:"messages"`
	ResponseFormat responseFormat `json:"response_format"`
}

type chatResponse struct {
	Choices []struct {
		Index        int         `json:"index"`
		Message      chatMessage `json:"message"`
		FinishReason string      `json:"finish_reason"`
	} `json:"choices"`
}

type errorResponse struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// StatusError is a non-2xx reply from the API.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("openai: status %d: %s", e.StatusCode, e.Message)
}

// Retryable reports whether the status is worth another attempt.
func (e *StatusError) Retryable() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

// ─────────────────────────────────────────────────────────────────────────────
// Operations
// ─────────────────────────────────────────────────────────────────────────────

// Embed returns the embedding of text using the configured model and width.
func (c *Client) Embed(ctx context.Context, text string) ([]float32, error) {
	req := embeddingRequest{
		Model:      c.cfg.EmbeddingModel,
		Input:      text,
		Dimensions: c.cfg.EmbeddingDimensions,
	}
	var resp embeddingResponse
	if err := c.post(ctx, "/embeddings", req, &resp); err != nil {
		return nil, err
	}
	if len(resp.Data) == 0 || len(resp.Data[0].Embedding) == 0 {
		return nil, errors.NewUpstreamError(nil, "embedding response contained no vector")
	}
	vec := resp.Data[0].Embedding
	if c.cfg.EmbeddingDimensions > 0 && len(vec) != c.cfg.EmbeddingDimensions {
		return nil, errors.NewUpstreamError(nil, "embedding has unexpected width").
			WithDetail(fmt.Sprintf("got %d, want %d", len(vec), c.cfg.EmbeddingDimensions))
	}
	return vec, nil
}

// ChatJSON sends system and user as a two-message conversation with JSON
// object output and returns the first choice's content.  Empty content is
// returned as-is for the caller to reject.
func (c *Client) ChatJSON(ctx context.Context, system, user string) (string, error) {
	req := chatRequest{
		Model: c.cfg.ChatModel,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		ResponseFormat: responseFormat{Type: "json_object"},
	}
	var resp chatResponse
	if err := c.post(ctx, "/chat/completions", req, &resp); err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errors.NewUpstreamError(nil, "chat completion returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Transport
// ─────────────────────────────────────────────────────────────────────────────

func (c *Client) post(ctx context.Context, path string, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeSerialization, "failed to encode openai request")
	}

	attempt := 0
	op := func() error {
		attempt++
		return c.do(ctx, path, body, out)
	}
	notify := func(err error, wait time.Duration) {
		c.logger.Warn("OpenAI request failed, retrying",
			logging.String("path", path),
			logging.Int("attempt", attempt),
			logging.Duration("wait", wait),
			logging.Err(err),
		)
	}

	b := backoff.WithContext(backoff.WithMaxRetries(c.newBackOff(), uint64(c.cfg.MaxRetries)), ctx)
	start := time.Now()
	if err := backoff.RetryNotify(op, b, notify); err != nil {
		c.logger.Error("OpenAI request failed",
			logging.String("path", path),
			logging.Int("attempts", attempt),
			logging.Duration("elapsed", time.Since(start)),
			logging.Err(err),
		)
		return errors.NewUpstreamError(err, "upstream model service request failed")
	}
	c.logger.Debug("OpenAI request completed",
		logging.String("path", path),
		logging.Int("attempts", attempt),
		logging.Duration("elapsed", time.Since(start)),
	)
	return nil
}

// do performs one attempt.  Errors that must not be retried are wrapped in
// backoff.Permanent.
func (c *Client) do(ctx context.Context, path string, body []byte, out any) error {
	attemptCtx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(attemptCtx, http.MethodPost, c.cfg.BaseURL+path, bytes.NewReader(body))
	if err != nil {
		return backoff.Permanent(err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return backoff.Permanent(ctx.Err())
		}
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		statusErr := &StatusError{StatusCode: resp.StatusCode, Message: readErrorMessage(resp.Body)}
		if statusErr.Retryable() {
			return statusErr
		}
		return backoff.Permanent(statusErr)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return backoff.Permanent(fmt.Errorf("openai: decode response: %w", err))
	}
	return nil
}

func readErrorMessage(r io.Reader) string {
	raw, _ := io.ReadAll(io.LimitReader(r, maxErrorBody))
	var er errorResponse
	if err := json.Unmarshal(raw, &er); err == nil && er.Error.Message != "" {
		return er.Error.Message
	}
	return strings.TrimSpace(string(raw))
}

// IsStatus reports whether err carries an API reply with the given status.
func IsStatus(err error, status int) bool {
	var se *StatusError
	return stderrors.As(err, &se) && se.StatusCode == status
}
