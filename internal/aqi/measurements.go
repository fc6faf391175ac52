package aqi

// Measurement describes how a feed key is labelled and which unit it carries.
type Measurement struct {
	Key   string
	Label string
	Unit  string
}

// Column order of the rendered table. Both lists have the same length so each
// row pairs one atmospheric reading with one pollutant.
var (
	AtmosphericKeys = []string{"t", "h", "p", "w", "uvi"}
	PollutantKeys   = []string{"pm25", "pm10", "no2", "o3", "so2"}
)

var measurements = map[string]Measurement{
	// pollutants
	"pm25": {Key: "pm25", Label: "PM<sub>2.5</sub>"},
	"pm10": {Key: "pm10", Label: "PM<sub>10</sub>"},
	"o3":   {Key: "o3", Label: "O<sub>3</sub>"},
	"no2":  {Key: "no2", Label: "NO<sub>2</sub>"},
	"so2":  {Key: "so2", Label: "SO<sub>2</sub>"},
	"co":   {Key: "co", Label: "CO"},

	// atmospheric
	"t":   {Key: "t", Label: "Temperature 🌡️", Unit: "&#xb0;C"},
	"w":   {Key: "w", Label: "Wind 🍃", Unit: "m/s"},
	"r":   {Key: "r", Label: "Rain 🌧️", Unit: "mm"},
	"h":   {Key: "h", Label: "Rel. humidity 💧", Unit: "%"},
	"d":   {Key: "d", Label: "Dewpoint", Unit: "&#xb0;C"},
	"p":   {Key: "p", Label: "Pressure 🌫️", Unit: "hPa"},
	"uvi": {Key: "uvi", Label: "UV Index 😎"},
	"wg":  {Key: "wg", Label: "Wind gust", Unit: "m/s"},
}

// Lookup returns the static description of a measurement key.
func Lookup(key string) (Measurement, bool) {
	m, ok := measurements[key]
	return m, ok
}
