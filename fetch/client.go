// Package fetch retrieves published spreadsheets over HTTP.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	defaultTimeout  = 30 * time.Second
	defaultMaxBytes = 32 << 20
	excerptBytes    = 4096
)

// ErrUnavailable marks a feed that could not be retrieved.
var ErrUnavailable = errors.New("feed unavailable")

// Client retrieves the raw body behind a feed URL.
type Client interface {
	Fetch(ctx context.Context, rawURL string) ([]byte, error)
}

type httpDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

type ClientConfig struct {
	UserAgent  string
	Timeout    time.Duration
	MaxBytes   int64
	HTTPClient httpDoer
}

type HTTPClient struct {
	userAgent  string
	maxBytes   int64
	httpClient httpDoer
}

func NewClient(cfg ClientConfig) *HTTPClient {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	maxBytes := cfg.MaxBytes
	if maxBytes <= 0 {
		maxBytes = defaultMaxBytes
	}

	doer := cfg.HTTPClient
	if doer == nil {
		doer = &http.Client{Timeout: timeout}
	}

	return &HTTPClient{
		userAgent:  strings.TrimSpace(cfg.UserAgent),
		maxBytes:   maxBytes,
		httpClient: doer,
	}
}

// Fetch downloads rawURL. Transport failures, non-2xx responses and bodies
// larger than the configured limit are reported as ErrUnavailable.
func (c *HTTPClient) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	parsed, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("invalid feed URL %q", rawURL)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, parsed.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request GET %s: %w", parsed.Redacted(), err)
	}
	req.Header.Set("Accept", "text/csv, text/plain, application/vnd.openxmlformats-officedocument.spreadsheetml.sheet, */*; q=0.01")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("%w: request GET %s: %w", ErrUnavailable, parsed.Redacted(), ctxErr)
		}
		return nil, fmt.Errorf("%w: request GET %s failed: %w", ErrUnavailable, parsed.Redacted(), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		excerpt, _ := io.ReadAll(io.LimitReader(resp.Body, excerptBytes))
		return nil, fmt.Errorf(
			"%w: request GET %s failed with status %d: %s",
			ErrUnavailable,
			parsed.Redacted(),
			resp.StatusCode,
			strings.TrimSpace(string(excerpt)),
		)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("%w: read response GET %s: %w", ErrUnavailable, parsed.Redacted(), err)
	}
	if int64(len(body)) > c.maxBytes {
		return nil, fmt.Errorf("%w: response GET %s exceeds %d bytes", ErrUnavailable, parsed.Redacted(), c.maxBytes)
	}
	return body, nil
}
