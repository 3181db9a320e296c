// Package ruleio provides a SubscriberSink backed by the Rule.io
// subscribers API.
package ruleio

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/time/rate"

	"github.com/niemi-bil/infoflex-bridge/internal/core/domain"
	"github.com/niemi-bil/infoflex-bridge/internal/core/ports/driven"
	"github.com/niemi-bil/infoflex-bridge/internal/logger"
)

// Ensure Client implements the interface.
var _ driven.SubscriberSink = (*Client)(nil)

// Default configuration values.
const (
	DefaultTimeout           = 30 * time.Second
	DefaultRequestsPerSecond = 2.0
	DefaultMaxRetries        = 2

	defaultRetryAfter = 5 * time.Second
	maxRetryAfter     = time.Minute
	maxResponseBytes  = 1 << 20
)

// Config holds configuration for the Rule.io client.
type Config struct {
	// BaseURL is the API root, e.g. https://app.rule.io/api/v2 (required).
	BaseURL string

	// Token is the bearer token (required).
	Token string

	// RequestsPerSecond is the sustained request rate (default: 2).
	RequestsPerSecond float64

	// Timeout is the per-request timeout (default: 30s).
	Timeout time.Duration

	// MaxRetries is the number of retries after a 429 (default: 2).
	// Negative disables retries.
	MaxRetries int
}

// ConfigFromSettings maps sink settings onto a client config.
func ConfigFromSettings(s domain.SinkSettings) Config {
	return Config{
		BaseURL:           s.BaseURL,
		Token:             s.Token,
		RequestsPerSecond: s.RequestsPerSecond,
		Timeout:           s.Timeout,
	}
}

// APIError is returned when Rule.io answers with a non-2xx status.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("rule.io: status %d: %s", e.StatusCode, e.Body)
}

// Client posts subscriber batches to Rule.io.
type Client struct {
	http       *http.Client
	endpoint   string
	limiter    *rate.Limiter
	maxRetries int

	mu      sync.Mutex
	retryAt time.Time
}

// NewClient creates a client. Without a base URL or token it fails with a
// configuration error wrapping domain.ErrSinkNotConfigured.
func NewClient(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" || cfg.Token == "" {
		return nil, &domain.ConfigurationError{Err: domain.ErrSinkNotConfigured}
	}
	if cfg.RequestsPerSecond <= 0 {
		cfg.RequestsPerSecond = DefaultRequestsPerSecond
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	switch {
	case cfg.MaxRetries == 0:
		cfg.MaxRetries = DefaultMaxRetries
	case cfg.MaxRetries < 0:
		cfg.MaxRetries = 0
	}

	source := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.Token, TokenType: "Bearer"})
	return &Client{
		http: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: &oauth2.Transport{Source: source, Base: http.DefaultTransport},
		},
		endpoint:   strings.TrimSuffix(cfg.BaseURL, "/") + "/subscribers",
		limiter:    rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1),
		maxRetries: cfg.MaxRetries,
	}, nil
}

// Send posts one batch. A 429 is retried after the advertised delay; any
// other non-2xx status returns a failed result with an *APIError.
func (c *Client) Send(ctx context.Context, batch domain.SubscriberBatch) (*domain.SinkResult, error) {
	body, err := json.Marshal(batch)
	if err != nil {
		return nil, fmt.Errorf("marshal batch: %w", err)
	}
	logger.Info("sending %d subscribers to rule.io", len(batch.Subscribers))

	for attempt := 0; ; attempt++ {
		if err := c.wait(ctx); err != nil {
			return failed("request cancelled"), err
		}

		status, header, respBody, err := c.post(ctx, body)
		if err != nil {
			return failed("HTTP request failed: " + err.Error()), err
		}

		if status == http.StatusTooManyRequests && attempt < c.maxRetries {
			delay := retryAfter(header.Get("Retry-After"), time.Now())
			logger.Warn("rule.io rate limited, retrying in %s", delay)
			c.backoff(delay)
			continue
		}

		if status < 200 || status > 299 {
			text := strings.TrimSpace(string(respBody))
			logger.Error("rule.io API error: %d - %s", status, text)
			return failed(fmt.Sprintf("API error: %d - %s", status, text)),
				&APIError{StatusCode: status, Body: text}
		}

		return decodeResult(respBody), nil
	}
}

func (c *Client) post(ctx context.Context, body []byte) (int, http.Header, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return 0, nil, nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, nil, nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return 0, nil, nil, fmt.Errorf("read response: %w", err)
	}
	logger.Debug("rule.io response: %d - %s", resp.StatusCode, respBody)
	return resp.StatusCode, resp.Header, respBody, nil
}

// wait blocks for any pending backoff, then for the token bucket.
func (c *Client) wait(ctx context.Context) error {
	c.mu.Lock()
	retryAt := c.retryAt
	c.mu.Unlock()

	if d := time.Until(retryAt); d > 0 {
		timer := time.NewTimer(d)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
	}
	return c.limiter.Wait(ctx)
}

func (c *Client) backoff(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.retryAt = time.Now().Add(d)
}

// retryAfter parses a Retry-After header given in seconds or as an HTTP
// date. The result is clamped to [0, maxRetryAfter].
func retryAfter(value string, now time.Time) time.Duration {
	value = strings.TrimSpace(value)
	if value == "" {
		return defaultRetryAfter
	}

	var d time.Duration
	if secs, err := strconv.Atoi(value); err == nil {
		d = time.Duration(secs) * time.Second
	} else if at, err := http.ParseTime(value); err == nil {
		d = at.Sub(now)
	} else {
		return defaultRetryAfter
	}

	switch {
	case d < 0:
		return 0
	case d > maxRetryAfter:
		return maxRetryAfter
	}
	return d
}

// decodeResult reads an optional result body. A 2xx answer is a success
// whatever the body says.
func decodeResult(body []byte) *domain.SinkResult {
	result := &domain.SinkResult{}
	if len(bytes.TrimSpace(body)) > 0 {
		if err := json.Unmarshal(body, result); err != nil {
			logger.Debug("rule.io response is not a result document: %v", err)
		}
	}
	result.Success = true
	if result.Message == "" {
		result.Message = "Subscribers created successfully"
	}
	return result
}

func failed(message string) *domain.SinkResult {
	return &domain.SinkResult{Success: false, Message: message}
}
