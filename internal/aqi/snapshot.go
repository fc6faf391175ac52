package aqi

import (
	"context"
	"time"
)

// NoDataMessage is shown when a cycle ends without a usable payload.
const NoDataMessage = "No data returned"

// Snapshot is the last processed result: either station data or a message
// explaining why there is none.
type Snapshot struct {
	URL       string    `json:"-"`
	Station   *Station  `json:"station,omitempty"`
	Message   string    `json:"message,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// HasData reports whether the snapshot carries station data.
func (s Snapshot) HasData() bool { return s.Station != nil }

// Store holds the last processed snapshot.
type Store interface {
	Save(snapshot Snapshot)
	Latest() (Snapshot, error)
	Reset()
}

// Publisher forwards processed snapshots to an outside consumer.
type Publisher interface {
	Publish(ctx context.Context, snapshot Snapshot) error
}
