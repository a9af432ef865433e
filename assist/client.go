// Package assist enriches tasks with an OpenAI-compatible chat model.
//
// Every call is best-effort: when the model is disabled, slow, or returns
// something unusable, callers get a fallback value instead of an error.
package assist

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
)

const (
	// DefaultBaseURL is the OpenAI API root.
	DefaultBaseURL = "https://api.openai.com/v1"

	// DefaultModel is used when Options.Model is empty.
	DefaultModel = "gpt-4o-mini"

	// DefaultTimeout bounds a whole call, retries included.
	DefaultTimeout = 15 * time.Second

	defaultMaxRetries = 3
	defaultRetryDelay = 500 * time.Millisecond
)

// ErrUnavailable reports that no enrichment could be produced. It is only
// logged; public methods never return it.
var ErrUnavailable = errors.New("assist unavailable")

// Options configures a Client.
type Options struct {
	// APIKey authenticates requests. An empty key disables the client.
	APIKey string

	// Model is the chat model name. Defaults to DefaultModel.
	Model string

	// BaseURL is the API root. Defaults to DefaultBaseURL.
	BaseURL string

	// Timeout bounds each call. Defaults to DefaultTimeout.
	Timeout time.Duration

	// MaxRetries is the number of attempts for 429 and 5xx responses.
	MaxRetries int

	// RetryDelay is the first backoff delay; it doubles after each attempt.
	RetryDelay time.Duration

	// HTTPClient sends requests. Defaults to a new http.Client.
	HTTPClient *http.Client

	// Logger receives warnings about unavailable enrichment.
	Logger log.FieldLogger

	// Now returns the reference time for relative due dates.
	Now func() time.Time
}

// Client talks to the chat completions endpoint.
type Client struct {
	apiKey     string
	model      string
	baseURL    string
	timeout    time.Duration
	maxRetries int
	retryDelay time.Duration
	http       *http.Client
	logger     log.FieldLogger
	now        func() time.Time
}

// New creates a client from opts, filling in defaults.
func New(opts Options) *Client {
	c := &Client{
		apiKey:     strings.TrimSpace(opts.APIKey),
		model:      opts.Model,
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		timeout:    opts.Timeout,
		maxRetries: opts.MaxRetries,
		retryDelay: opts.RetryDelay,
		http:       opts.HTTPClient,
		logger:     opts.Logger,
		now:        opts.Now,
	}
	if c.model == "" {
		c.model = DefaultModel
	}
	if c.baseURL == "" {
		c.baseURL = DefaultBaseURL
	}
	if c.timeout <= 0 {
		c.timeout = DefaultTimeout
	}
	if c.maxRetries <= 0 {
		c.maxRetries = defaultMaxRetries
	}
	if c.retryDelay <= 0 {
		c.retryDelay = defaultRetryDelay
	}
	if c.http == nil {
		c.http = &http.Client{}
	}
	if c.logger == nil {
		c.logger = log.StandardLogger()
	}
	if c.now == nil {
		c.now = time.Now
	}
	return c
}

// Enabled reports whether the client has credentials.
func (c *Client) Enabled() bool {
	return c != nil && c.apiKey != ""
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatRequest struct {
	Model          string          `json:"model"`
	Messages       []chatMessage   `json:"messages"`
	Temperature    float64         `json:"temperature"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

type apiError struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// complete sends one chat completion, retrying rate limits and server errors
// with exponential backoff until the client timeout expires.
func (c *Client) complete(ctx context.Context, messages []chatMessage, jsonMode bool) (string, error) {
	if !c.Enabled() {
		return "", fmt.Errorf("%w: no API key configured", ErrUnavailable)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req := chatRequest{
		Model:    c.model,
		Messages: messages,
	}
	if jsonMode {
		req.ResponseFormat = &responseFormat{Type: "json_object"}
	}
	body, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("%w: marshal request: %v", ErrUnavailable, err)
	}

	var lastErr error
	for attempt := 0; attempt < c.maxRetries; attempt++ {
		if attempt > 0 {
			delay := time.Duration(math.Pow(2, float64(attempt-1))) * c.retryDelay
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return "", fmt.Errorf("%w: %v (last error: %v)", ErrUnavailable, ctx.Err(), lastErr)
			}
		}

		content, retry, err := c.send(ctx, body)
		if err == nil {
			return content, nil
		}
		lastErr = err
		if !retry || ctx.Err() != nil {
			break
		}
	}
	return "", fmt.Errorf("%w: %v", ErrUnavailable, lastErr)
}

func (c *Client) send(ctx context.Context, body []byte) (content string, retry bool, err error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", false, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return "", true, fmt.Errorf("request failed: %w", err)
	}
	respBody, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return "", true, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr apiError
		if json.Unmarshal(respBody, &apiErr) == nil && apiErr.Error.Message != "" {
			err = fmt.Errorf("API error (%d): %s", resp.StatusCode, apiErr.Error.Message)
		} else {
			err = fmt.Errorf("API error (%d): %s", resp.StatusCode, strings.TrimSpace(string(respBody)))
		}
		retry = resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500
		return "", retry, err
	}

	var chatResp chatResponse
	if err := json.Unmarshal(respBody, &chatResp); err != nil {
		return "", false, fmt.Errorf("decode response: %w", err)
	}
	if len(chatResp.Choices) == 0 {
		return "", false, errors.New("response has no choices")
	}
	content = strings.TrimSpace(chatResp.Choices[0].Message.Content)
	if content == "" {
		return "", false, errors.New("response is empty")
	}
	return content, false, nil
}
