package aqi

import (
	"math"
	"testing"
)

func TestAQIClassBoundaries(t *testing.T) {
	cases := []struct {
		v    float64
		want Category
	}{
		{-5, CategoryEmpty},
		{0, CategoryEmpty},
		{1, CategoryGood},
		{50, CategoryGood},
		{50.9, CategoryGood},
		{51, CategoryModerate},
		{100, CategoryModerate},
		{101, CategoryUnhealthySensitive},
		{150, CategoryUnhealthySensitive},
		{151, CategoryUnhealthy},
		{200, CategoryUnhealthy},
		{201, CategoryVeryUnhealthy},
		{299, CategoryVeryUnhealthy},
		{299.5, CategoryVeryUnhealthy},
		{300, CategoryHazardous},
		{999, CategoryHazardous},
	}

	for _, tc := range cases {
		if got := AQIClass(tc.v).Category; got != tc.want {
			t.Errorf("AQIClass(%v) = %q; want %q", tc.v, got, tc.want)
		}
	}
}

func TestAQIClassBright(t *testing.T) {
	if AQIClass(50).Bright {
		t.Fatalf("expected good class not to be bright")
	}
	if got := AQIClass(120).String(); got != "unhealthy-sensitive bright" {
		t.Fatalf("expected %q, got %q", "unhealthy-sensitive bright", got)
	}
}

func TestUVClassBoundaries(t *testing.T) {
	cases := []struct {
		v    float64
		want Category
	}{
		{0, CategoryGood},
		{2, CategoryGood},
		{2.5, CategoryNone},
		{3, CategoryModerate},
		{5, CategoryModerate},
		{6, CategoryUnhealthySensitive},
		{7, CategoryUnhealthySensitive},
		{8, CategoryUnhealthy},
		{10, CategoryUnhealthy},
		{11, CategoryVeryUnhealthy},
		{14, CategoryVeryUnhealthy},
		{15, CategoryHazardous},
	}

	for _, tc := range cases {
		if got := UVClass(tc.v).Category; got != tc.want {
			t.Errorf("UVClass(%v) = %q; want %q", tc.v, got, tc.want)
		}
	}
}

func TestTemperatureClassBoundaries(t *testing.T) {
	cases := []struct {
		v    float64
		want string
	}{
		{-20, "darkblue bright"},
		{-10, "darkblue bright"},
		{-9, "blue"},
		{0, "blue"},
		{1, "lightgreen"},
		{9.9, "lightgreen"},
		{10, "lightyellow"},
		{15, "yellow"},
		{20, "orange"},
		{25, "darkorange"},
		{30, "red"},
		{35, "darkred bright"},
		{40, "purple bright"},
	}

	for _, tc := range cases {
		if got := TemperatureClass(tc.v).String(); got != tc.want {
			t.Errorf("TemperatureClass(%v) = %q; want %q", tc.v, got, tc.want)
		}
	}
}

func TestWindSpeedClassKeepsUpstreamGap(t *testing.T) {
	cases := []struct {
		v    float64
		want Category
	}{
		{0, CategoryNone},
		{1, CategoryNone},
		{2, CategoryGood},
		{5, CategoryGood},
		{6, CategoryModerate},
		{11, CategoryUnhealthySensitive},
		{17, CategoryUnhealthy},
		{23.9, CategoryUnhealthy},
		{24, CategoryNone},
		{24.5, CategoryNone},
		{25, CategoryHazardous},
	}

	for _, tc := range cases {
		if got := WindSpeedClass(tc.v).Category; got != tc.want {
			t.Errorf("WindSpeedClass(%v) = %q; want %q", tc.v, got, tc.want)
		}
	}
}

func TestHumidityClassBoundaries(t *testing.T) {
	cases := []struct {
		v    float64
		want Category
	}{
		{10, CategoryUnhealthySensitive},
		{30, CategoryUnhealthySensitive},
		{31, CategoryModerate},
		{40, CategoryModerate},
		{41, CategoryGood},
		{65, CategoryGood},
		{66, CategoryModerate},
		{79, CategoryModerate},
		{80, CategoryUnhealthySensitive},
		{90, CategoryUnhealthySensitive},
		{91, CategoryUnderwater},
		{100, CategoryUnderwater},
	}

	for _, tc := range cases {
		if got := HumidityClass(tc.v).Category; got != tc.want {
			t.Errorf("HumidityClass(%v) = %q; want %q", tc.v, got, tc.want)
		}
	}
}

func TestPressureClassBoundaries(t *testing.T) {
	cases := []struct {
		v    float64
		want Category
	}{
		{950, CategoryDarkBlue},
		{979.9, CategoryDarkBlue},
		{980, CategoryBlue},
		{999, CategoryBlue},
		{1000, CategoryNone},
		{1013, CategoryNone},
		{1020, CategoryLightYellow},
		{1034, CategoryLightYellow},
		{1035, CategoryYellow},
	}

	for _, tc := range cases {
		if got := PressureClass(tc.v).Category; got != tc.want {
			t.Errorf("PressureClass(%v) = %q; want %q", tc.v, got, tc.want)
		}
	}
}

// Bands of a scale must never overlap: every value matches at most one band.
func TestScalesDoNotOverlap(t *testing.T) {
	for metric, s := range scales {
		for v := -50.0; v <= 1100; v += 0.25 {
			matches := 0
			for _, b := range s {
				if b.contains(v) {
					matches++
				}
			}
			if matches > 1 {
				t.Fatalf("metric %s: value %v matched %d bands", metric, v, matches)
			}
		}
	}
}

func TestClassifyRejectsNaNAndUnknownMetric(t *testing.T) {
	if got := Classify(MetricAQI, math.NaN()); got != (Class{}) {
		t.Fatalf("expected zero class for NaN, got %+v", got)
	}
	if got := Classify(Metric("co"), 10); got != (Class{}) {
		t.Fatalf("expected zero class for unknown metric, got %+v", got)
	}
	if got := Classify(MetricAQI, math.Inf(1)).Category; got != CategoryHazardous {
		t.Fatalf("expected hazardous for +Inf, got %q", got)
	}
}
