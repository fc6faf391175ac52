package providers

import (
	"fmt"
	"strings"
	"time"
)

// RetryPolicy controls the linear backoff of a fetch sequence.
type RetryPolicy struct {
	MaxAttempts  int           `validate:"gte=1"`
	InitialDelay time.Duration `validate:"gt=0"`

	// PostResponsePause waits Delay(n)*10 after every response before it is
	// evaluated. Only one upstream variant does this; it stays off by default.
	PostResponsePause bool
}

// Delay is the pause after failed attempt n (1-based): InitialDelay * n * 1.5.
func (p RetryPolicy) Delay(attempt int) time.Duration {
	if attempt < 1 {
		return 0
	}
	return time.Duration(float64(p.InitialDelay) * float64(attempt) * 1.5)
}

// WorstCase is the longest a sequence can take when every attempt runs into
// requestTimeout.
func (p RetryPolicy) WorstCase(requestTimeout time.Duration) time.Duration {
	var total time.Duration
	for n := 1; n <= p.MaxAttempts; n++ {
		total += requestTimeout
		if p.PostResponsePause {
			total += p.Delay(n) * 10
		}
		if n < p.MaxAttempts {
			total += p.Delay(n)
		}
	}
	return total
}

func (p RetryPolicy) validate() error {
	if p.MaxAttempts < 1 || p.InitialDelay <= 0 {
		return errInvalidConfig
	}
	return nil
}

// Headers are optional request headers sent with every attempt.
type Headers struct {
	UserAgent string
	Accept    string
}

// Preset bundles a retry policy with the headers it was tuned with.
type Preset struct {
	Name    string
	Policy  RetryPolicy
	Headers Headers
}

const browserUserAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36"

var (
	// PresetStandard: few attempts, one second base.
	PresetStandard = Preset{
		Name:   "standard",
		Policy: RetryPolicy{MaxAttempts: 5, InitialDelay: time.Second},
	}

	// PresetPersistent keeps hammering a flaky endpoint with short pauses and
	// presents itself as a browser.
	PresetPersistent = Preset{
		Name:   "persistent",
		Policy: RetryPolicy{MaxAttempts: 64, InitialDelay: 50 * time.Millisecond},
		Headers: Headers{
			UserAgent: browserUserAgent,
			Accept:    "application/json, text/plain, */*",
		},
	}
)

// LookupPreset resolves a preset by name (case-insensitive).
func LookupPreset(name string) (Preset, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", PresetStandard.Name:
		return PresetStandard, nil
	case PresetPersistent.Name:
		return PresetPersistent, nil
	default:
		return Preset{}, fmt.Errorf("unknown retry preset %q (allowed: standard, persistent)", name)
	}
}
