package presenter

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/i474232898/aqi-display/internal/aqi"
	"github.com/i474232898/aqi-display/internal/aqi/providers"
	"github.com/i474232898/aqi-display/internal/relay"
	"github.com/i474232898/aqi-display/internal/scheduler"
)

// Options is the per-instance configuration of the widget.
type Options struct {
	Token                   string
	City                    string
	IAQI                    bool
	UpdateInterval          time.Duration
	OverrideCityDisplayName string
	InitialLoadDelay        time.Duration
	Debug                   bool
	APIBase                 string

	// ResponseTimeout is how long a cycle waits for a response before it
	// counts as failed. It should cover a whole retry sequence.
	ResponseTimeout time.Duration

	Location  *time.Location
	Partition aqi.DayPartition
}

// Relay is the fetch side of the message boundary.
type Relay interface {
	Submit(req relay.Request) bool
	Responses() <-chan relay.Response
}

// Scheduler arranges the next polling cycle.
type Scheduler interface {
	Start()
	Schedule(delay time.Duration) error
	Stop()
}

// Presenter polls the feed through a Relay and keeps the display state.
type Presenter struct {
	opts      Options
	relay     Relay
	store     aqi.Store
	publisher aqi.Publisher
	logger    *slog.Logger
	now       func() time.Time

	sched   Scheduler
	fire    chan struct{}
	changed chan struct{}

	mu     sync.RWMutex
	url    string
	loaded bool

	// loop-owned
	inflight cycle
}

// cycle identifies the request a response must answer.
type cycle struct {
	id  string
	url string
}

func (c cycle) active() bool { return c.id != "" }

func New(opts Options, r Relay, store aqi.Store, publisher aqi.Publisher, logger *slog.Logger) (*Presenter, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.APIBase == "" {
		opts.APIBase = providers.DefaultAPIBase
	}
	if opts.Partition == (aqi.DayPartition{}) {
		opts.Partition = aqi.DefaultDayPartition
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.UpdateInterval <= 0 {
		return nil, fmt.Errorf("update interval must be positive")
	}
	if opts.ResponseTimeout <= 0 {
		return nil, fmt.Errorf("response timeout must be positive")
	}

	url, err := providers.FeedURL(opts.APIBase, opts.City, opts.Token)
	if err != nil {
		return nil, err
	}

	p := &Presenter{
		opts:      opts,
		relay:     r,
		store:     store,
		publisher: publisher,
		logger:    logger,
		now:       time.Now,
		fire:      make(chan struct{}, 1),
		changed:   make(chan struct{}, 1),
		url:       url,
	}
	p.sched = scheduler.New(p.trigger, logger)

	if opts.Debug {
		logger.Info("feed url", "url", url)
	}
	return p, nil
}

// URL returns the feed URL currently shown.
func (p *Presenter) URL() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.url
}

// Run drives polling cycles until ctx is done.
func (p *Presenter) Run(ctx context.Context) error {
	p.sched.Start()
	defer p.sched.Stop()

	p.logger.Info("starting module", "city", p.City(), "interval", p.opts.UpdateInterval)
	if p.opts.Token == "" {
		p.logger.Warn("api token not set; polling disabled")
		<-ctx.Done()
		return ctx.Err()
	}
	p.scheduleUpdate(p.opts.InitialLoadDelay)

	var (
		timer  *time.Timer
		window <-chan time.Time
	)
	disarm := func() {
		if timer != nil {
			timer.Stop()
		}
		timer, window = nil, nil
	}
	defer disarm()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case <-p.fire:
			if p.inflight.active() {
				p.logger.Debug("cycle skipped; fetch still in flight", "cycle", p.inflight.id)
				continue
			}
			if !p.updateAQI() {
				p.scheduleUpdate(p.opts.UpdateInterval)
				continue
			}
			timer = time.NewTimer(p.opts.ResponseTimeout)
			window = timer.C

		case resp := <-p.relay.Responses():
			if !p.inflight.active() || resp.CycleID != p.inflight.id || resp.URL != p.inflight.url {
				p.logger.Debug("response for unknown request dropped", "url", resp.URL, "cycle", resp.CycleID)
				continue
			}
			disarm()
			url := p.inflight.url
			p.inflight = cycle{}
			if p.processAQI(ctx, url, resp.Data) {
				p.scheduleUpdate(p.opts.UpdateInterval)
			} else {
				p.scheduleUpdate(0)
			}

		case <-window:
			disarm()
			url := p.inflight.url
			p.logger.Warn("no response within window", "window", p.opts.ResponseTimeout, "cycle", p.inflight.id)
			p.inflight = cycle{}
			if p.processAQI(ctx, url, nil) {
				p.scheduleUpdate(p.opts.UpdateInterval)
			} else {
				p.scheduleUpdate(0)
			}

		case <-p.changed:
			if !p.inflight.active() {
				p.scheduleUpdate(0)
			}
		}
	}
}

// SetCity points the widget at another city. A fetch already running for the
// previous city is left to finish; its response is discarded.
func (p *Presenter) SetCity(city string) error {
	url, err := providers.FeedURL(p.opts.APIBase, city, p.opts.Token)
	if err != nil {
		return err
	}

	p.mu.Lock()
	p.url = url
	p.opts.City = city
	p.loaded = false
	p.store.Reset()
	p.mu.Unlock()

	p.logger.Info("city changed", "city", city)
	if p.opts.Debug {
		p.logger.Info("feed url", "url", url)
	}

	select {
	case p.changed <- struct{}{}:
	default:
	}
	return nil
}

// City returns the configured city.
func (p *Presenter) City() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.opts.City
}

func (p *Presenter) trigger() {
	select {
	case p.fire <- struct{}{}:
	default:
	}
}

func (p *Presenter) scheduleUpdate(delay time.Duration) {
	if err := p.sched.Schedule(delay); err != nil {
		p.logger.Error("failed to schedule update", "error", err)
	}
}

// updateAQI sends a request for the current URL. It reports whether the
// request was accepted.
func (p *Presenter) updateAQI() bool {
	url := p.URL()
	req := relay.Request{URL: url, CycleID: uuid.NewString()}
	if !p.relay.Submit(req) {
		return false
	}
	p.inflight = cycle{id: req.CycleID, url: url}
	p.logger.Debug("requested data", "cycle", req.CycleID)
	return true
}

// processAQI stores the outcome of a cycle fetched from url. A nil payload
// means no data. It returns false and leaves the display untouched when url
// is no longer the current feed.
func (p *Presenter) processAQI(ctx context.Context, url string, payload []byte) bool {
	snap := aqi.Snapshot{URL: url, Timestamp: p.now()}

	if payload != nil {
		if p.opts.Debug {
			p.logger.Debug("payload received", "payload", string(payload))
		}
		st, err := aqi.DecodeFeed(payload)
		if err != nil {
			p.logger.Warn("failed to decode payload", "error", err)
		}
		snap.Station = st
	}
	if !snap.HasData() {
		snap.Message = aqi.NoDataMessage
		if p.opts.Debug {
			p.logger.Error(aqi.NoDataMessage, "url", snap.URL)
		}
	}

	p.mu.Lock()
	if url != p.url {
		p.mu.Unlock()
		p.logger.Info("discarding stale response", "url", url)
		return false
	}
	p.store.Save(snap)
	p.loaded = true
	p.mu.Unlock()

	if snap.HasData() && p.publisher != nil {
		if err := p.publisher.Publish(ctx, snap); err != nil && !errors.Is(err, context.Canceled) {
			p.logger.Warn("failed to publish snapshot", "error", err)
		}
	}
	return true
}

// View renders the current display state.
func (p *Presenter) View() View {
	p.mu.RLock()
	token, loaded := p.opts.Token, p.loaded
	opts := RenderOptions{
		IAQI:                    p.opts.IAQI,
		OverrideCityDisplayName: p.opts.OverrideCityDisplayName,
		Location:                p.opts.Location,
		Partition:               p.opts.Partition,
	}
	p.mu.RUnlock()

	if token == "" {
		return messageView(StateMissingToken, noTokenMessage)
	}
	if !loaded {
		return messageView(StateNotLoaded, loadingMessage)
	}

	snap, err := p.store.Latest()
	if err != nil {
		return messageView(StateNotLoaded, loadingMessage)
	}
	return RenderSnapshot(snap, opts, p.now())
}

// Snapshot returns the last processed snapshot.
func (p *Presenter) Snapshot() (aqi.Snapshot, error) {
	return p.store.Latest()
}
