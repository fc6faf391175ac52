package aqi

import (
	"time"
)

// TimeSlot partitions the day for picking a UV forecast figure.
type TimeSlot int

const (
	SlotNone    TimeSlot = iota // before dawn and after dusk
	SlotAverage                 // dawn to mid morning, mid afternoon to dusk
	SlotMax                     // mid morning to mid afternoon
)

// DayPartition holds the hour boundaries used by ExpectedUV. Dawn and dusk are
// fixed placeholders rather than computed sun times.
type DayPartition struct {
	Dawn      int
	PeakStart int
	PeakEnd   int
	Dusk      int
}

// DefaultDayPartition matches an October day in Britain.
var DefaultDayPartition = DayPartition{Dawn: 7, PeakStart: 10, PeakEnd: 15, Dusk: 18}

// Slot returns the slot for an hour of the day (0-23). Out of range hours map
// to SlotNone.
func (p DayPartition) Slot(hour int) TimeSlot {
	switch {
	case hour < 0 || hour >= 24:
		return SlotNone
	case hour < p.Dawn:
		return SlotNone
	case hour < p.PeakStart:
		return SlotAverage
	case hour < p.PeakEnd:
		return SlotMax
	case hour < p.Dusk:
		return SlotAverage
	default:
		return SlotNone
	}
}

// Pick selects the forecast figure for hour. The none slot reports the day's
// minimum, which the feed gives as 0 outside daylight.
func (p DayPartition) Pick(f UVIForecast, hour int) float64 {
	switch p.Slot(hour) {
	case SlotAverage:
		return f.Avg
	case SlotMax:
		return f.Max
	default:
		return f.Min
	}
}

// ExpectedUV estimates the current UV index from a daily forecast when no live
// reading is available.
func ExpectedUV(f UVIForecast, hour int) float64 {
	return DefaultDayPartition.Pick(f, hour)
}

// HourIn returns the hour of t in loc. A nil loc means UTC.
func HourIn(t time.Time, loc *time.Location) int {
	if loc == nil {
		loc = time.UTC
	}
	return t.In(loc).Hour()
}
