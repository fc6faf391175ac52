package aqi

import (
	"math"
)

// Category is a display severity label. The empty category marks a value that
// falls outside every range of its scale.
type Category string

const (
	CategoryNone               Category = ""
	CategoryEmpty              Category = "empty"
	CategoryGood               Category = "good"
	CategoryModerate           Category = "moderate"
	CategoryUnhealthySensitive Category = "unhealthy-sensitive"
	CategoryUnhealthy          Category = "unhealthy"
	CategoryVeryUnhealthy      Category = "very-unhealthy"
	CategoryHazardous          Category = "hazardous"
	CategoryUnderwater         Category = "underwater"

	CategoryDarkBlue    Category = "darkblue"
	CategoryBlue        Category = "blue"
	CategoryLightGreen  Category = "lightgreen"
	CategoryLightYellow Category = "lightyellow"
	CategoryYellow      Category = "yellow"
	CategoryOrange      Category = "orange"
	CategoryDarkOrange  Category = "darkorange"
	CategoryRed         Category = "red"
	CategoryDarkRed     Category = "darkred"
	CategoryPurple      Category = "purple"
)

// Class is the outcome of classifying one value: a category plus whether the
// value should be highlighted.
type Class struct {
	Category Category `json:"category"`
	Bright   bool     `json:"bright,omitempty"`
}

// String renders the class as CSS class names, e.g. "unhealthy bright".
func (c Class) String() string {
	if c.Category == CategoryNone {
		return ""
	}
	if c.Bright {
		return string(c.Category) + " bright"
	}
	return string(c.Category)
}

// Metric identifies which scale a value is classified against.
type Metric string

const (
	MetricAQI         Metric = "aqi"
	MetricUV          Metric = "uvi"
	MetricTemperature Metric = "t"
	MetricWind        Metric = "w"
	MetricHumidity    Metric = "h"
	MetricPressure    Metric = "p"
)

type bound struct {
	v    float64
	incl bool
}

type band struct {
	lo, hi bound
	class  Class
}

func (b band) contains(v float64) bool {
	aboveLo := v > b.lo.v || (b.lo.incl && v == b.lo.v)
	belowHi := v < b.hi.v || (b.hi.incl && v == b.hi.v)
	return aboveLo && belowHi
}

// scale is evaluated top to bottom; the first band containing the value wins.
type scale []band

func (s scale) classify(v float64) Class {
	for _, b := range s {
		if b.contains(v) {
			return b.class
		}
	}
	return Class{}
}

var (
	negInf = bound{v: math.Inf(-1), incl: true}
	posInf = bound{v: math.Inf(1), incl: true}
)

func incl(v float64) bound { return bound{v: v, incl: true} }
func excl(v float64) bound { return bound{v: v} }

func plain(c Category) Class  { return Class{Category: c} }
func bright(c Category) Class { return Class{Category: c, Bright: true} }

var scales = map[Metric]scale{
	MetricAQI: {
		{negInf, incl(0), plain(CategoryEmpty)},
		{excl(0), excl(51), plain(CategoryGood)},
		{incl(51), excl(101), plain(CategoryModerate)},
		{incl(101), excl(151), bright(CategoryUnhealthySensitive)},
		{incl(151), excl(201), bright(CategoryUnhealthy)},
		{incl(201), excl(300), bright(CategoryVeryUnhealthy)},
		{incl(300), posInf, bright(CategoryHazardous)},
	},
	MetricUV: {
		{negInf, incl(2), plain(CategoryGood)},
		{incl(3), incl(5), plain(CategoryModerate)},
		{incl(6), incl(7), bright(CategoryUnhealthySensitive)},
		{incl(8), incl(10), bright(CategoryUnhealthy)},
		{incl(11), incl(14), bright(CategoryVeryUnhealthy)},
		{incl(15), posInf, bright(CategoryHazardous)},
	},
	MetricTemperature: {
		{negInf, incl(-10), bright(CategoryDarkBlue)},
		{excl(-10), incl(0), plain(CategoryBlue)},
		{excl(0), excl(10), plain(CategoryLightGreen)},
		{incl(10), excl(15), plain(CategoryLightYellow)},
		{incl(15), excl(20), plain(CategoryYellow)},
		{incl(20), excl(25), plain(CategoryOrange)},
		{incl(25), excl(30), plain(CategoryDarkOrange)},
		{incl(30), excl(35), plain(CategoryRed)},
		{incl(35), excl(40), bright(CategoryDarkRed)},
		{incl(40), posInf, bright(CategoryPurple)},
	},
	// [24,25) is unclassified upstream and kept that way.
	MetricWind: {
		{negInf, incl(1), plain(CategoryNone)},
		{excl(1), incl(5), plain(CategoryGood)},
		{excl(5), excl(11), plain(CategoryModerate)},
		{incl(11), excl(17), plain(CategoryUnhealthySensitive)},
		{incl(17), excl(24), bright(CategoryUnhealthy)},
		{incl(25), posInf, bright(CategoryHazardous)},
	},
	MetricHumidity: {
		{negInf, incl(30), plain(CategoryUnhealthySensitive)},
		{incl(31), excl(41), plain(CategoryModerate)},
		{incl(41), excl(66), plain(CategoryGood)},
		{incl(66), excl(80), plain(CategoryModerate)},
		{incl(80), excl(91), plain(CategoryUnhealthySensitive)},
		{incl(91), posInf, plain(CategoryUnderwater)},
	},
	// Standard atmospheric pressure is 1013 hPa.
	MetricPressure: {
		{negInf, excl(980), plain(CategoryDarkBlue)},
		{incl(980), excl(1000), plain(CategoryBlue)},
		{incl(1000), excl(1020), plain(CategoryNone)},
		{incl(1020), excl(1035), plain(CategoryLightYellow)},
		{incl(1035), posInf, plain(CategoryYellow)},
	},
}

// Classify maps a value onto the scale of metric. Unknown metrics, NaN and
// values inside a gap of the scale yield the zero Class.
func Classify(metric Metric, v float64) Class {
	s, ok := scales[metric]
	if !ok || math.IsNaN(v) {
		return Class{}
	}
	return s.classify(v)
}

func AQIClass(v float64) Class         { return Classify(MetricAQI, v) }
func UVClass(v float64) Class          { return Classify(MetricUV, v) }
func TemperatureClass(v float64) Class { return Classify(MetricTemperature, v) }
func WindSpeedClass(v float64) Class   { return Classify(MetricWind, v) }
func HumidityClass(v float64) Class    { return Classify(MetricHumidity, v) }
func PressureClass(v float64) Class    { return Classify(MetricPressure, v) }
