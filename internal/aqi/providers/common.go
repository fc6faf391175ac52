package providers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// FetchResult is the outcome of one fetch sequence: either a JSON payload or
// the reason the sequence gave up.
type FetchResult struct {
	URL      string
	Payload  json.RawMessage
	Reason   string
	Attempts int
}

// OK reports whether the sequence ended with a payload.
func (r FetchResult) OK() bool { return r.Reason == "" }

// Fetcher performs GET requests with linear backoff between attempts.
type Fetcher struct {
	client  *http.Client
	policy  RetryPolicy
	headers Headers
	logger  *slog.Logger

	// sleep is swapped in tests to observe delays without waiting.
	sleep func(ctx context.Context, d time.Duration) error
}

func NewFetcher(client *http.Client, policy RetryPolicy, headers Headers, logger *slog.Logger) *Fetcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Fetcher{
		client:  client,
		policy:  policy,
		headers: headers,
		logger:  logger,
		sleep:   sleepCtx,
	}
}

func (f *Fetcher) Policy() RetryPolicy { return f.policy }

// Fetch runs the retry sequence against url. It never returns an error: every
// failure ends up as a FetchResult whose Reason is set.
func (f *Fetcher) Fetch(ctx context.Context, url string) FetchResult {
	if f.client == nil {
		return FetchResult{URL: url, Reason: errNoHTTPClient.Error()}
	}
	if err := f.policy.validate(); err != nil {
		return FetchResult{URL: url, Reason: err.Error()}
	}

	for attempt := 1; attempt <= f.policy.MaxAttempts; attempt++ {
		if ctx.Err() != nil {
			return FetchResult{URL: url, Reason: ctx.Err().Error(), Attempts: attempt - 1}
		}

		f.logger.Debug("fetch attempt", "attempt", attempt, "url", url)

		payload, err := f.do(ctx, url, attempt)
		if err == nil {
			f.logger.Debug("fetch succeeded", "attempt", attempt, "url", url)
			return FetchResult{URL: url, Payload: payload, Attempts: attempt}
		}

		f.logFailure(attempt, err)

		if attempt == f.policy.MaxAttempts {
			f.logger.Warn("giving up", "attempts", f.policy.MaxAttempts, "url", url)
			break
		}

		delay := f.policy.Delay(attempt)
		f.logger.Debug("retrying", "in", delay, "attempt", attempt)
		if err := f.sleep(ctx, delay); err != nil {
			return FetchResult{URL: url, Reason: err.Error(), Attempts: attempt}
		}
	}

	return FetchResult{URL: url, Reason: ErrExhausted.Error(), Attempts: f.policy.MaxAttempts}
}

func (f *Fetcher) do(ctx context.Context, url string, attempt int) (json.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	if f.headers.UserAgent != "" {
		req.Header.Set("User-Agent", f.headers.UserAgent)
	}
	if f.headers.Accept != "" {
		req.Header.Set("Accept", f.headers.Accept)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, &NetworkError{Err: err}
	}
	defer resp.Body.Close()

	body, readErr := io.ReadAll(resp.Body)

	if f.policy.PostResponsePause {
		if err := f.sleep(ctx, f.policy.Delay(attempt)*10); err != nil {
			return nil, err
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &HTTPError{Status: resp.StatusCode, Body: truncate(string(body), 100)}
	}
	if readErr != nil {
		return nil, &NetworkError{Err: readErr}
	}
	if !json.Valid(body) {
		var probe any
		return nil, &ParseError{Err: json.Unmarshal(body, &probe)}
	}

	return json.RawMessage(body), nil
}

func (f *Fetcher) logFailure(attempt int, err error) {
	var (
		httpErr  *HTTPError
		netErr   *NetworkError
		parseErr *ParseError
	)
	switch {
	case errors.As(err, &httpErr):
		f.logger.Warn("fetch attempt failed",
			"attempt", attempt,
			"status", httpErr.Status,
			"body", httpErr.Body,
		)
	case errors.As(err, &netErr):
		f.logger.Warn("fetch attempt failed with network error", "attempt", attempt, "error", netErr.Err)
	case errors.As(err, &parseErr):
		f.logger.Warn("fetch attempt returned invalid json", "attempt", attempt, "error", parseErr.Err)
	default:
		f.logger.Warn("fetch attempt failed", "attempt", attempt, "error", err)
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	select {
	case <-ctx.Done():
		timer.Stop()
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
