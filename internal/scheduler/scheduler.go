package scheduler

import (
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/go-co-op/gocron"
)

const pollTag = "poll"

// Poller runs a job once after a delay. Scheduling again replaces the pending
// run; a run that already started is not interrupted.
type Poller struct {
	scheduler *gocron.Scheduler
	job       func()
	logger    *slog.Logger

	mu   sync.Mutex
	next time.Time
}

// New creates a Poller for job.
func New(job func(), logger *slog.Logger) *Poller {
	if logger == nil {
		logger = slog.Default()
	}
	return &Poller{
		scheduler: gocron.NewScheduler(time.UTC),
		job:       job,
		logger:    logger,
	}
}

// Start starts the underlying scheduler.
func (p *Poller) Start() {
	p.scheduler.StartAsync()
}

// Schedule arranges the next run delay from now. Negative delays run at once.
func (p *Poller) Schedule(delay time.Duration) error {
	if delay < 0 {
		delay = 0
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.scheduler.RemoveByTag(pollTag); err != nil && !errors.Is(err, gocron.ErrJobNotFoundWithTag) {
		return err
	}

	// The interval is never reached: every job runs exactly once.
	s := p.scheduler.Every(time.Hour).LimitRunsTo(1).Tag(pollTag)
	next := time.Now().Add(delay)
	if delay > 0 {
		s = s.StartAt(next)
	}
	if _, err := s.Do(p.run); err != nil {
		return err
	}

	p.next = next
	p.logger.Debug("next update scheduled", "in", delay, "at", next)
	return nil
}

// Next reports when the pending run is due.
func (p *Poller) Next() time.Time {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.next
}

// Stop stops the scheduler and cancels any pending run.
func (p *Poller) Stop() {
	if p.scheduler != nil {
		p.scheduler.Stop()
	}
}

func (p *Poller) run() {
	p.job()
}
