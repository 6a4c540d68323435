// Package exa is a client for the Exa semantic search API.
package exa

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/khanglvm/mcp-scout/internal/metrics"
	"github.com/khanglvm/mcp-scout/internal/recommend"
)

const (
	DefaultBaseURL    = "https://api.exa.ai"
	DefaultTimeout    = 30 * time.Second
	DefaultMaxRetries = 3
	DefaultBaseDelay  = 500 * time.Millisecond
	DefaultMaxDelay   = 10 * time.Second

	// maxErrorBody bounds how much of an error response is kept.
	maxErrorBody = 512
)

// Endpoint names, also used as metric labels.
const (
	EndpointSearch      = "search"
	EndpointFindSimilar = "findSimilar"
	EndpointAnswer      = "answer"
)

// Options configures a Client. Zero values fall back to the defaults.
type Options struct {
	APIKey     string
	BaseURL    string
	Timeout    time.Duration
	MaxRetries int
	BaseDelay  time.Duration
	MaxDelay   time.Duration
	HTTPClient *http.Client
	Logger     *zap.Logger
}

// Client talks to the Exa HTTP API.
type Client struct {
	apiKey     string
	baseURL    string
	maxRetries int
	baseDelay  time.Duration
	maxDelay   time.Duration
	http       *http.Client
	logger     *zap.Logger
}

// New creates a client. A missing API key is reported by the first call as
// an *AuthError so that commands not touching the provider still work.
func New(opts Options) *Client {
	c := &Client{
		apiKey:     strings.TrimSpace(opts.APIKey),
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		maxRetries: opts.MaxRetries,
		baseDelay:  opts.BaseDelay,
		maxDelay:   opts.MaxDelay,
		http:       opts.HTTPClient,
		logger:     opts.Logger,
	}
	if c.baseURL == "" {
		c.baseURL = DefaultBaseURL
	}
	if c.maxRetries < 0 {
		c.maxRetries = 0
	}
	if c.baseDelay <= 0 {
		c.baseDelay = DefaultBaseDelay
	}
	if c.maxDelay <= 0 {
		c.maxDelay = DefaultMaxDelay
	}
	if c.http == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		c.http = &http.Client{Timeout: timeout}
	}
	if c.logger == nil {
		c.logger = zap.NewNop()
	}
	return c
}

// Search runs a neural search and returns the hits in provider order.
func (c *Client) Search(ctx context.Context, req SearchRequest) ([]recommend.RawHit, error) {
	payload := searchPayload{
		Query:          req.Query,
		NumResults:     req.NumResults,
		Type:           "auto",
		Contents:       contentsOptions{Text: true, Summary: true, Highlights: true},
		IncludeDomains: req.IncludeDomains,
	}
	var resp resultsResponse
	if err := c.call(ctx, EndpointSearch, payload, &resp); err != nil {
		return nil, err
	}
	if len(resp.Results) == 0 {
		return nil, &EmptyResultError{Endpoint: EndpointSearch, Query: req.Query}
	}
	return toRawHits(resp.Results), nil
}

// FindSimilar returns pages similar to url.
func (c *Client) FindSimilar(ctx context.Context, url string, numResults int) ([]recommend.RawHit, error) {
	payload := findSimilarPayload{
		URL:        url,
		NumResults: numResults,
		Contents:   contentsOptions{Text: true, Summary: true},
	}
	var resp resultsResponse
	if err := c.call(ctx, EndpointFindSimilar, payload, &resp); err != nil {
		return nil, err
	}
	if len(resp.Results) == 0 {
		return nil, &EmptyResultError{Endpoint: EndpointFindSimilar, Query: url}
	}
	return toRawHits(resp.Results), nil
}

// Answer asks a question and returns the answer with its citations.
func (c *Client) Answer(ctx context.Context, query string) (*Answer, error) {
	var resp answerResponse
	if err := c.call(ctx, EndpointAnswer, answerPayload{Query: query, Text: true}, &resp); err != nil {
		return nil, err
	}
	text := strings.TrimSpace(resp.Answer)
	if text == "" {
		return nil, &EmptyResultError{Endpoint: EndpointAnswer, Query: query}
	}

	answer := &Answer{Text: text}
	for _, r := range resp.Citations {
		answer.Citations = append(answer.Citations, Citation{Title: r.Title, URL: r.URL, Author: r.Author})
		hit := r.toRawHit()
		hit.Score = 0
		answer.Hits = append(answer.Hits, hit)
	}
	return answer, nil
}

// call posts payload to endpoint, retrying rate-limit and transient
// failures with exponential backoff.
func (c *Client) call(ctx context.Context, endpoint string, payload, out any) error {
	if c.apiKey == "" {
		metrics.ProviderRequests.WithLabelValues(endpoint, "auth_error").Inc()
		return &AuthError{Message: "EXA_API_KEY is not set"}
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode %s request: %w", endpoint, err)
	}

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		start := time.Now()
		err := c.do(ctx, endpoint, body, out)
		metrics.ProviderLatency.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
		if err == nil {
			metrics.ProviderRequests.WithLabelValues(endpoint, metrics.OutcomeSuccess).Inc()
			return nil
		}
		metrics.ProviderRequests.WithLabelValues(endpoint, outcomeLabel(err)).Inc()
		lastErr = err

		if !IsRetryable(err) || attempt == c.maxRetries || ctx.Err() != nil {
			return err
		}

		delay := c.backoff(attempt, err)
		metrics.ProviderRetries.WithLabelValues(endpoint, outcomeLabel(err)).Inc()
		c.logger.Warn("retrying exa request",
			zap.String("endpoint", endpoint),
			zap.Int("attempt", attempt+1),
			zap.Duration("delay", delay),
			zap.Error(err),
		)

		timer := time.NewTimer(delay)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return fmt.Errorf("exa %s cancelled after %d attempts: %w", endpoint, attempt+1, ctx.Err())
		}
	}
	return lastErr
}

// backoff doubles the base delay per attempt, honoring Retry-After when the
// server sent one, and never exceeds the configured maximum.
func (c *Client) backoff(attempt int, err error) time.Duration {
	delay := c.baseDelay * time.Duration(1<<attempt)
	var rl *RateLimitError
	if errors.As(err, &rl) && rl.RetryAfter > delay {
		delay = rl.RetryAfter
	}
	if delay > c.maxDelay {
		delay = c.maxDelay
	}
	return delay
}

func (c *Client) do(ctx context.Context, endpoint string, body []byte, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/"+endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build %s request: %w", endpoint, err)
	}
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return fmt.Errorf("exa %s: %w", endpoint, ctxErr)
		}
		return &TransientNetworkError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return statusError(resp)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &TransientNetworkError{Err: fmt.Errorf("failed to decode %s response: %w", endpoint, err)}
	}
	return nil
}

// statusError maps a non-2xx response onto the error taxonomy.
func statusError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	msg := strings.TrimSpace(string(raw))
	if msg == "" {
		msg = http.StatusText(resp.StatusCode)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return &AuthError{StatusCode: resp.StatusCode, Message: msg}
	case resp.StatusCode == http.StatusTooManyRequests:
		return &RateLimitError{RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After")), Message: msg}
	case resp.StatusCode >= 500:
		return &TransientNetworkError{StatusCode: resp.StatusCode, Err: errors.New(msg)}
	default:
		return &APIError{StatusCode: resp.StatusCode, Message: msg}
	}
}

// parseRetryAfter accepts both delta-seconds and HTTP-date forms.
func parseRetryAfter(v string) time.Duration {
	v = strings.TrimSpace(v)
	if v == "" {
		return 0
	}
	if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	if t, err := http.ParseTime(v); err == nil {
		if d := time.Until(t); d > 0 {
			return d
		}
	}
	return 0
}

func outcomeLabel(err error) string {
	var (
		auth  *AuthError
		rl    *RateLimitError
		tn    *TransientNetworkError
		empty *EmptyResultError
	)
	switch {
	case errors.As(err, &auth):
		return "auth_error"
	case errors.As(err, &rl):
		return "rate_limited"
	case errors.As(err, &tn):
		return "transient_error"
	case errors.As(err, &empty):
		return metrics.OutcomeEmpty
	default:
		return metrics.OutcomeError
	}
}
