package relay

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/sony/gobreaker"

	"github.com/i474232898/aqi-display/internal/aqi/providers"
)

// Request asks the relay to fetch a feed URL.
type Request struct {
	URL     string
	CycleID string
}

// Response carries a fetched payload back, tagged with the URL it was fetched
// from so the receiver can drop answers for a URL it no longer shows.
type Response struct {
	Data    json.RawMessage
	URL     string
	CycleID string
}

// Fetcher is the retrying fetch the relay runs for every request.
type Fetcher interface {
	Fetch(ctx context.Context, url string) providers.FetchResult
}

// BreakerConfig trips the relay after Threshold consecutive failed sequences.
// While open, requests are dropped without touching the upstream API until
// Cooldown has passed. A zero Threshold disables the breaker.
type BreakerConfig struct {
	Threshold uint32
	Cooldown  time.Duration
}

var errSequenceFailed = errors.New("fetch sequence failed")

// Relay processes requests one at a time. Failures produce no response.
type Relay struct {
	fetcher   Fetcher
	circuit   *gobreaker.CircuitBreaker
	requests  chan Request
	responses chan Response
	logger    *slog.Logger
}

func New(fetcher Fetcher, breaker BreakerConfig, logger *slog.Logger) *Relay {
	if logger == nil {
		logger = slog.Default()
	}

	r := &Relay{
		fetcher:   fetcher,
		requests:  make(chan Request, 1),
		responses: make(chan Response, 1),
		logger:    logger,
	}

	if breaker.Threshold > 0 {
		threshold := breaker.Threshold
		r.circuit = gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        "waqi",
			MaxRequests: 1,
			Timeout:     breaker.Cooldown,
			ReadyToTrip: func(c gobreaker.Counts) bool {
				return c.ConsecutiveFailures >= threshold
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				logger.Warn("circuit breaker state changed", "name", name, "from", from.String(), "to", to.String())
			},
		})
	}

	return r
}

// Submit queues a request. It returns false when a request is already
// waiting, keeping at most one fetch sequence outstanding.
func (r *Relay) Submit(req Request) bool {
	select {
	case r.requests <- req:
		return true
	default:
		r.logger.Warn("fetch already pending; dropping request", "url", req.URL, "cycle", req.CycleID)
		return false
	}
}

func (r *Relay) Responses() <-chan Response {
	return r.responses
}

// Run serves requests until ctx is done.
func (r *Relay) Run(ctx context.Context) error {
	r.logger.Info("relay started")
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case req := <-r.requests:
			r.handle(ctx, req)
		}
	}
}

func (r *Relay) handle(ctx context.Context, req Request) {
	res, err := r.fetch(ctx, req.URL)
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			r.logger.Warn("circuit open; skipping fetch", "url", req.URL, "cycle", req.CycleID)
			return
		}
		r.logger.Warn("failed to retrieve data",
			"url", req.URL,
			"cycle", req.CycleID,
			"attempts", res.Attempts,
			"reason", res.Reason,
		)
		return
	}

	select {
	case r.responses <- Response{Data: res.Payload, URL: res.URL, CycleID: req.CycleID}:
		r.logger.Debug("data retrieved", "url", req.URL, "cycle", req.CycleID, "attempts", res.Attempts)
	case <-ctx.Done():
	}
}

func (r *Relay) fetch(ctx context.Context, url string) (providers.FetchResult, error) {
	if r.circuit == nil {
		res := r.fetcher.Fetch(ctx, url)
		if !res.OK() {
			return res, errSequenceFailed
		}
		return res, nil
	}

	var res providers.FetchResult
	_, err := r.circuit.Execute(func() (interface{}, error) {
		res = r.fetcher.Fetch(ctx, url)
		if !res.OK() {
			return nil, errSequenceFailed
		}
		return nil, nil
	})
	return res, err
}
