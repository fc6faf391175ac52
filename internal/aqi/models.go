package aqi

import (
	"bytes"
	"encoding/json"
	"strconv"
	"time"
)

// Feed is the envelope returned by the WAQI /feed endpoint.
// On error the API answers {"status":"error","data":"Unknown station"}, so Data
// is kept raw and decoded on demand by Station.
type Feed struct {
	Status string          `json:"status"`
	Data   json.RawMessage `json:"data"`
}

// Station is the measurement block of a successful feed response.
type Station struct {
	AQI      Value                `json:"aqi"`
	City     City                 `json:"city"`
	IAQI     map[string]IAQIValue `json:"iaqi"`
	Time     StationTime          `json:"time"`
	Forecast Forecast             `json:"forecast"`
}

type City struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// IAQIValue is a single individual-index reading, e.g. {"v": 12.3}.
type IAQIValue struct {
	V Value `json:"v"`
}

type StationTime struct {
	S  string `json:"s"`
	TZ string `json:"tz"`
}

type Forecast struct {
	Daily DailyForecast `json:"daily"`
}

type DailyForecast struct {
	UVI []UVIForecast `json:"uvi"`
}

// UVIForecast is one day of the UV index forecast.
type UVIForecast struct {
	Avg float64 `json:"avg"`
	Day string  `json:"day"`
	Max float64 `json:"max"`
	Min float64 `json:"min"`
}

// Value is a numeric field the API sometimes reports as a string ("-" when a
// station has no current reading).
type Value struct {
	Float float64
	Valid bool
}

func (v *Value) UnmarshalJSON(b []byte) error {
	*v = Value{}
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil
		}
		*v = Value{Float: f, Valid: true}
		return nil
	}
	var f float64
	if err := json.Unmarshal(b, &f); err != nil {
		return err
	}
	*v = Value{Float: f, Valid: true}
	return nil
}

func (v Value) MarshalJSON() ([]byte, error) {
	if !v.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(v.Float)
}

// DecodeFeed parses a raw payload and returns its station block. A nil station
// with a nil error means the payload carried no usable data (error shape, empty
// object, or a non-object data field).
func DecodeFeed(payload []byte) (*Station, error) {
	if len(bytes.TrimSpace(payload)) == 0 {
		return nil, nil
	}

	var feed Feed
	if err := json.Unmarshal(payload, &feed); err != nil {
		return nil, err
	}

	data := bytes.TrimSpace(feed.Data)
	if len(data) == 0 || data[0] != '{' {
		return nil, nil
	}

	var st Station
	if err := json.Unmarshal(data, &st); err != nil {
		return nil, err
	}
	return &st, nil
}

// Reading looks up a live iaqi value by measurement key.
func (s *Station) Reading(key string) (float64, bool) {
	if s == nil || s.IAQI == nil {
		return 0, false
	}
	r, ok := s.IAQI[key]
	if !ok || !r.V.Valid {
		return 0, false
	}
	return r.V.Float, true
}

// TodayUVI returns the UV forecast entry for the date of now, falling back to
// the first entry when no entry matches.
func (s *Station) TodayUVI(now time.Time) (UVIForecast, bool) {
	if s == nil || len(s.Forecast.Daily.UVI) == 0 {
		return UVIForecast{}, false
	}
	today := now.Format("2006-01-02")
	for _, f := range s.Forecast.Daily.UVI {
		if f.Day == today {
			return f, true
		}
	}
	return s.Forecast.Daily.UVI[0], true
}
