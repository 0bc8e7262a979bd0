package crawler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"feedsync/internal/config"
	"feedsync/pkg/utils"
)

// ErrUnexpectedStatusCode indicates an HTTP response with unexpected status.
var ErrUnexpectedStatusCode = errors.New("unexpected status code")

// Scraper handles HTTP fetches with config-driven retry logic.
type Scraper struct {
	client       *http.Client
	retryPolicy  *config.RetryPolicy
	bufferSizeKb int
}

// NewScraperWithConfig creates a new scraper with custom retry policy.
func NewScraperWithConfig(retryPolicy *config.RetryPolicy) *Scraper {
	bufferSizeKb := retryPolicy.BufferSizeKb
	if bufferSizeKb <= 0 {
		bufferSizeKb = 1024
	}

	return &Scraper{
		client: &http.Client{
			Timeout: retryPolicy.GetTimeout(),
		},
		retryPolicy:  retryPolicy,
		bufferSizeKb: bufferSizeKb,
	}
}

// FetchWithMetrics returns (body, statusCode, duration, error). Transport
// errors and retryable statuses are retried with exponential backoff.
func (s *Scraper) FetchWithMetrics(ctx context.Context, url string, header http.Header) ([]byte, int, time.Duration, error) {
	var lastErr error

	var lastStatusCode int

	totalDuration := time.Duration(0)

	for attempt := 1; attempt <= s.retryPolicy.MaxAttempts; attempt++ {
		if attempt > 1 {
			if err := sleepContext(ctx, s.retryPolicy.GetRetryDelay(attempt)); err != nil {
				return nil, lastStatusCode, totalDuration, err
			}
		}

		startTime := time.Now()

		body, status, err := s.do(ctx, url, header)
		totalDuration += time.Since(startTime)
		lastStatusCode = status

		if err == nil {
			return body, status, totalDuration, nil
		}

		lastErr = fmt.Errorf("request failed (attempt %d/%d): %w", attempt, s.retryPolicy.MaxAttempts, err)

		if ctx.Err() != nil {
			return nil, lastStatusCode, totalDuration, ctx.Err()
		}

		// Only retry on transport errors and specific status codes
		if status != 0 && !isRetryableStatus(status) {
			break
		}
	}

	return nil, lastStatusCode, totalDuration, lastErr
}

// Fetch fetches and returns the body of the given URL.
func (s *Scraper) Fetch(ctx context.Context, url string, header http.Header) ([]byte, error) {
	body, _, _, err := s.FetchWithMetrics(ctx, url, header)

	return body, err
}

func (s *Scraper) do(ctx context.Context, url string, header http.Header) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header = utils.BuildHeaders("", header)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		// Drain so the connection can be reused.
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64*1024))

		return nil, resp.StatusCode, fmt.Errorf("%w: %d", ErrUnexpectedStatusCode, resp.StatusCode)
	}

	// bufferSizeKb is in KB, convert to bytes
	limit := int64(s.bufferSizeKb) * 1024

	body, err := io.ReadAll(io.LimitReader(resp.Body, limit))
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("failed to read response body: %w", err)
	}

	return body, resp.StatusCode, nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// isRetryableStatus determines if we should retry based on HTTP status code.
func isRetryableStatus(statusCode int) bool {
	// Retry on temporary failures
	switch statusCode {
	case http.StatusServiceUnavailable: // 503
		return true
	case http.StatusGatewayTimeout: // 504
		return true
	case http.StatusTooManyRequests: // 429
		return true
	case http.StatusRequestTimeout: // 408
		return true
	case http.StatusBadGateway: // 502
		return true
	}

	return false
}
