// Package llm calls the remote chat-completion service that composes answers
// from retrieved context, with bounded retry on transient failures.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cramdeck/cramdeck/internal/retry"
)

// Common errors
var (
	// ErrNoAPIKey means no generation credential is configured. Terminal:
	// retrying cannot help.
	ErrNoAPIKey = errors.New("generation API key not configured")

	// ErrBadStatus wraps a non-200 response from the endpoint.
	ErrBadStatus = errors.New("generation endpoint returned error status")

	// ErrEmptyCompletion means the endpoint answered 200 with no choices.
	ErrEmptyCompletion = errors.New("no completion in response")
)

const (
	// DefaultModel is the generation model when none is configured.
	DefaultModel = "meta-llama/llama-3-8b-instruct"

	// DefaultMaxTokens bounds the completion length.
	DefaultMaxTokens = 500

	// DefaultTimeout bounds a single generation attempt.
	DefaultTimeout = 30 * time.Second

	probeTimeout = 5 * time.Second
)

// promptTemplate embeds the retrieved context and the user query into a
// single instruction for the model.
const promptTemplate = `Generate a response to the following query using the provided context.

Context:
%s

Query:
%s

Response:`

// Client talks to an OpenAI-compatible chat-completion endpoint.
type Client struct {
	baseURL    string
	apiKey     string
	model      string
	maxTokens  int
	httpClient *http.Client
	retryCfg   retry.Config
}

// Option adjusts a Client.
type Option func(*Client)

// WithModel overrides the generation model.
func WithModel(model string) Option {
	return func(c *Client) {
		if model != "" {
			c.model = model
		}
	}
}

// WithMaxTokens overrides the completion token budget.
func WithMaxTokens(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.maxTokens = n
		}
	}
}

// WithTimeout overrides the per-attempt request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// WithRetry overrides the retry policy.
func WithRetry(cfg retry.Config) Option {
	return func(c *Client) {
		c.retryCfg = cfg
	}
}

// NewClient creates a generation client against baseURL (the endpoint is
// baseURL + "/chat/completions").
func NewClient(baseURL, apiKey string, opts ...Option) *Client {
	c := &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		apiKey:    apiKey,
		model:     DefaultModel,
		maxTokens: DefaultMaxTokens,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		retryCfg: retry.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Generate asks the model to answer query grounded in contextText. Transient
// failures (transport errors, timeouts) are retried with exponential backoff
// up to the configured attempt count; a missing credential and a non-200
// response are terminal.
func (c *Client) Generate(ctx context.Context, query, contextText string) (string, error) {
	if c.apiKey == "" {
		return "", ErrNoAPIKey
	}

	prompt := fmt.Sprintf(promptTemplate, contextText, query)

	return retry.Do(ctx, c.retryCfg, func() (string, error) {
		return c.complete(ctx, prompt)
	})
}

func (c *Client) complete(ctx context.Context, prompt string) (string, error) {
	reqBody := map[string]interface{}{
		"model": c.model,
		"messages": []map[string]string{
			{"role": "user", "content": prompt},
		},
		"max_tokens": c.maxTokens,
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return "", retry.Permanent(fmt.Errorf("marshal request: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", retry.Permanent(fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// Timeouts and transport errors are retryable until attempts run out.
		return "", fmt.Errorf("generation request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return "", retry.Permanent(fmt.Errorf("%w: %d: %s", ErrBadStatus, resp.StatusCode, string(bodyBytes)))
	}

	var apiResp struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}

	if len(apiResp.Choices) == 0 {
		return "", retry.Permanent(ErrEmptyCompletion)
	}

	return apiResp.Choices[0].Message.Content, nil
}

// Probe checks whether the generation service is reachable with a cheap GET
// against the base URL. Hosts call it once per outer request before
// committing to remote tiers.
func (c *Client) Probe(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL, nil)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("generation service unreachable: %w", err)
	}
	_ = resp.Body.Close()

	// Any HTTP answer means the service is up; auth problems surface later.
	return nil
}
