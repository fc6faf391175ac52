package aqi

import (
	"testing"
	"time"
	_ "time/tzdata"
)

func TestExpectedUVSlots(t *testing.T) {
	f := UVIForecast{Avg: 2, Max: 4, Min: 0}

	cases := []struct {
		hour int
		want float64
	}{
		{0, 0},
		{3, 0},
		{6, 0},
		{7, 2},
		{8, 2},
		{9, 2},
		{10, 4},
		{11, 4},
		{14, 4},
		{15, 2},
		{17, 2},
		{18, 0},
		{23, 0},
	}

	for _, tc := range cases {
		if got := ExpectedUV(f, tc.hour); got != tc.want {
			t.Errorf("ExpectedUV(hour=%d) = %v; want %v", tc.hour, got, tc.want)
		}
	}
}

func TestDayPartitionSlotOutOfRange(t *testing.T) {
	for _, h := range []int{-1, 24, 99} {
		if got := DefaultDayPartition.Slot(h); got != SlotNone {
			t.Errorf("Slot(%d) = %v; want SlotNone", h, got)
		}
	}
}

func TestHourIn(t *testing.T) {
	london, err := time.LoadLocation("Europe/London")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}

	// 10:30 UTC in July is 11:30 BST.
	ts := time.Date(2025, time.July, 1, 10, 30, 0, 0, time.UTC)
	if got := HourIn(ts, london); got != 11 {
		t.Fatalf("expected 11, got %d", got)
	}
	if got := HourIn(ts, nil); got != 10 {
		t.Fatalf("expected 10 for nil location, got %d", got)
	}
}
