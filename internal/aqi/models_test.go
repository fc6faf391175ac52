package aqi

import (
	"testing"
	"time"
)

const sampleFeed = `{
  "status": "ok",
  "data": {
    "aqi": 42,
    "city": {"name": "Cardiff", "url": "https://aqicn.org/city/cardiff"},
    "iaqi": {"pm25": {"v": 42}, "t": {"v": 12.6}, "h": {"v": "-"}},
    "time": {"s": "2025-10-19 10:00:00", "tz": "+01:00"},
    "forecast": {"daily": {"uvi": [
      {"avg": 1, "day": "2025-10-18", "max": 2, "min": 0},
      {"avg": 2, "day": "2025-10-19", "max": 3, "min": 0}
    ]}}
  }
}`

func TestDecodeFeed(t *testing.T) {
	st, err := DecodeFeed([]byte(sampleFeed))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if st == nil {
		t.Fatal("expected station, got nil")
	}
	if !st.AQI.Valid || st.AQI.Float != 42 {
		t.Fatalf("unexpected aqi %+v", st.AQI)
	}
	if st.City.Name != "Cardiff" {
		t.Fatalf("unexpected city %q", st.City.Name)
	}
	if v, ok := st.Reading("t"); !ok || v != 12.6 {
		t.Fatalf("expected t=12.6, got %v (%v)", v, ok)
	}
	if _, ok := st.Reading("h"); ok {
		t.Fatal("expected \"-\" reading to be treated as missing")
	}
	if _, ok := st.Reading("no2"); ok {
		t.Fatal("expected missing key to report no reading")
	}
}

func TestDecodeFeedWithoutData(t *testing.T) {
	for _, payload := range []string{
		``,
		`{}`,
		`{"status":"error","data":"Unknown station"}`,
		`{"status":"ok","data":null}`,
	} {
		st, err := DecodeFeed([]byte(payload))
		if err != nil {
			t.Fatalf("payload %q: unexpected error: %v", payload, err)
		}
		if st != nil {
			t.Fatalf("payload %q: expected nil station, got %+v", payload, st)
		}
	}
}

func TestDecodeFeedDashAQI(t *testing.T) {
	st, err := DecodeFeed([]byte(`{"status":"ok","data":{"aqi":"-","city":{"name":"X"}}}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if st.AQI.Valid {
		t.Fatalf("expected invalid aqi, got %+v", st.AQI)
	}
}

func TestTodayUVI(t *testing.T) {
	st, err := DecodeFeed([]byte(sampleFeed))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	f, ok := st.TodayUVI(time.Date(2025, time.October, 19, 9, 0, 0, 0, time.UTC))
	if !ok || f.Max != 3 {
		t.Fatalf("expected today's entry, got %+v (%v)", f, ok)
	}

	f, ok = st.TodayUVI(time.Date(2030, time.January, 1, 9, 0, 0, 0, time.UTC))
	if !ok || f.Day != "2025-10-18" {
		t.Fatalf("expected fallback to first entry, got %+v (%v)", f, ok)
	}
}

func TestLookup(t *testing.T) {
	m, ok := Lookup("t")
	if !ok || m.Unit != "&#xb0;C" {
		t.Fatalf("unexpected measurement %+v (%v)", m, ok)
	}
	for _, k := range append(append([]string{}, AtmosphericKeys...), PollutantKeys...) {
		if _, ok := Lookup(k); !ok {
			t.Errorf("missing measurement for column key %q", k)
		}
	}
}
