// Package fetch is the HTTP client shared by the scraping adapters.
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

	"github.com/ppiankov/coreg/internal/util"
	"github.com/ppiankov/coreg/internal/worker"
	"go.uber.org/zap"
)

// ErrDisallowed is returned when robots.txt forbids a URL
var ErrDisallowed = errors.New("disallowed by robots.txt")

// StatusError is a non-2xx response
type StatusError struct {
	Code   int
	Status string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status: %d %s", e.Code, e.Status)
}

// fetchSleepFunc is overridable in tests
var fetchSleepFunc = time.Sleep

// Options configures a Fetcher
type Options struct {
	UserAgent  string
	MaxBytes   int64
	MaxRetries int                 // attempts per request, minimum 1
	Limiter    *worker.HostLimiter // optional
	Robots     *util.RobotsChecker // optional
	Logger     *zap.Logger         // optional
}

// Fetcher performs polite, retried HTTP requests
type Fetcher struct {
	client     *http.Client
	userAgent  string
	maxBytes   int64
	maxRetries int
	limiter    *worker.HostLimiter
	robots     *util.RobotsChecker
	logger     *zap.Logger
}

// New creates a Fetcher using client
func New(client *http.Client, opts Options) *Fetcher {
	if opts.MaxRetries < 1 {
		opts.MaxRetries = 1
	}
	if opts.MaxBytes <= 0 {
		opts.MaxBytes = 10_000_000
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Fetcher{
		client:     client,
		userAgent:  opts.UserAgent,
		maxBytes:   opts.MaxBytes,
		maxRetries: opts.MaxRetries,
		limiter:    opts.Limiter,
		robots:     opts.Robots,
		logger:     opts.Logger,
	}
}

// Result is a fetched response body and its metadata
type Result struct {
	Body        []byte
	StatusCode  int
	ContentType string
	FinalURL    string
}

// Get fetches rawURL, retrying transient failures
func (f *Fetcher) Get(ctx context.Context, rawURL string) (*Result, error) {
	return f.withRetry(ctx, rawURL, func() (*http.Request, error) {
		return http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	})
}

// PostForm submits a url-encoded form, retrying transient failures
func (f *Fetcher) PostForm(ctx context.Context, rawURL string, form url.Values) (*Result, error) {
	encoded := form.Encode()
	return f.withRetry(ctx, rawURL, func() (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, rawURL, strings.NewReader(encoded))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		return req, nil
	})
}

func (f *Fetcher) withRetry(ctx context.Context, rawURL string, build func() (*http.Request, error)) (*Result, error) {
	if err := f.checkRobots(ctx, rawURL); err != nil {
		return nil, err
	}

	var lastErr error
	for attempt := 1; attempt <= f.maxRetries; attempt++ {
		if attempt > 1 {
			backoff := time.Duration(1<<(attempt-2)) * time.Second
			f.logger.Debug("retrying request",
				zap.String("url", rawURL),
				zap.Int("attempt", attempt),
				zap.Duration("backoff", backoff),
				zap.Error(lastErr))
			fetchSleepFunc(backoff)
		}

		if f.limiter != nil {
			if err := f.limiter.Wait(ctx, rawURL); err != nil {
				return nil, err
			}
		}

		req, err := build()
		if err != nil {
			return nil, fmt.Errorf("create request: %w", err)
		}
		result, err := f.do(req)
		if err == nil {
			return result, nil
		}
		lastErr = err
		if ctx.Err() != nil || !isRetryableFetchError(err) {
			return nil, err
		}
	}
	return nil, lastErr
}

func (f *Fetcher) checkRobots(ctx context.Context, rawURL string) error {
	if f.robots == nil {
		return nil
	}
	d, err := f.robots.Check(ctx, rawURL)
	if err != nil {
		return fmt.Errorf("robots: %w", err)
	}
	if !d.Allowed {
		return fmt.Errorf("%s: %w", rawURL, ErrDisallowed)
	}
	if f.limiter != nil && d.CrawlDelay > 0 {
		f.limiter.ApplyCrawlDelay(rawURL, d.CrawlDelay)
	}
	return nil
}

func (f *Fetcher) do(req *http.Request) (*Result, error) {
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, &transportError{err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, &StatusError{Code: resp.StatusCode, Status: resp.Status}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	return &Result{
		Body:        body,
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		FinalURL:    resp.Request.URL.String(),
	}, nil
}

type transportError struct {
	err error
}

func (e *transportError) Error() string { return "fetch: " + e.err.Error() }
func (e *transportError) Unwrap() error { return e.err }

// isRetryableFetchError reports whether a request is worth repeating:
// transport failures, 5xx and 429 are; other statuses and local errors
// are not.
func isRetryableFetchError(err error) bool {
	if err == nil {
		return false
	}
	var se *StatusError
	if errors.As(err, &se) {
		return se.Code >= 500 || se.Code == http.StatusTooManyRequests
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var te *transportError
	return errors.As(err, &te)
}
