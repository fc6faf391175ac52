package presenter

import (
	"html/template"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/i474232898/aqi-display/internal/aqi"
	"github.com/i474232898/aqi-display/internal/common"
)

const (
	loadingMessage = "Loading Air Quality Index (AQI)..."
	noTokenMessage = "Please set the API token."
	timestampFmt   = "January 2, 2006 3:04 PM"
)

// State is the display state of the widget.
type State string

const (
	StateMissingToken State = "missing-token"
	StateNotLoaded    State = "not-loaded"
	StateLoadedData   State = "loaded"
	StateLoadedNoData State = "no-data"
)

// Cell is one th/td. HTML is trusted markup (labels and units); Text is
// escaped on output.
type Cell struct {
	Header  bool          `json:"header,omitempty"`
	ColSpan int           `json:"colSpan,omitempty"`
	Class   string        `json:"class,omitempty"`
	Text    string        `json:"text,omitempty"`
	HTML    template.HTML `json:"html,omitempty"`
}

type Row struct {
	Cells []Cell `json:"cells"`
}

type Table struct {
	Class string `json:"class"`
	Rows  []Row  `json:"rows"`
}

// View is the markup tree of the widget: a message or a table.
type View struct {
	State        State  `json:"state"`
	Message      string `json:"message,omitempty"`
	MessageClass string `json:"messageClass,omitempty"`
	Table        *Table `json:"table,omitempty"`
}

// RenderOptions are the settings that shape a rendered table.
type RenderOptions struct {
	IAQI                    bool
	OverrideCityDisplayName string
	Location                *time.Location
	Partition               aqi.DayPartition
}

func messageView(state State, msg string) View {
	return View{State: state, Message: msg, MessageClass: "dimmed light small"}
}

// RenderSnapshot builds the table for a processed snapshot.
func RenderSnapshot(snap aqi.Snapshot, opts RenderOptions, now time.Time) View {
	if !snap.HasData() {
		return View{State: StateLoadedNoData, Table: noDataTable(snap, opts.Location)}
	}

	st := snap.Station
	aqiClass := aqi.Class{Category: aqi.CategoryEmpty}
	aqiText := "-"
	if st.AQI.Valid {
		aqiClass = aqi.AQIClass(st.AQI.Float)
		aqiText = formatNumber(st.AQI.Float)
	}
	cls := aqiClass.String()
	city := common.FirstNonEmpty(opts.OverrideCityDisplayName, st.City.Name)

	table := &Table{Class: "small data"}
	table.Rows = append(table.Rows, Row{Cells: []Cell{
		{Header: true, ColSpan: 2, Class: joinClass("header city", cls), Text: city},
		{Header: true, ColSpan: 1, Class: joinClass("header aqi title", cls), Text: "AQI:"},
		{Header: true, ColSpan: 1, Class: joinClass("header aqi value", cls), Text: aqiText},
	}})

	if opts.IAQI {
		hour := aqi.HourIn(now, opts.Location)
		rows := len(aqi.AtmosphericKeys)
		if len(aqi.PollutantKeys) > rows {
			rows = len(aqi.PollutantKeys)
		}

		for i := 0; i < rows; i++ {
			var row Row
			atmCells, hasAtm := atmosphericCells(st, keyAt(aqi.AtmosphericKeys, i), opts, now, hour)
			polCells, hasPol := pollutantCells(st, keyAt(aqi.PollutantKeys, i), cls)
			if !hasAtm && !hasPol {
				continue
			}
			row.Cells = append(row.Cells, atmCells...)
			row.Cells = append(row.Cells, polCells...)
			table.Rows = append(table.Rows, row)
		}
	}

	return View{State: StateLoadedData, Table: table}
}

func noDataTable(snap aqi.Snapshot, loc *time.Location) *Table {
	msg := common.FirstNonEmpty(snap.Message, aqi.NoDataMessage)
	ts := snap.Timestamp
	if loc != nil {
		ts = ts.In(loc)
	}
	return &Table{
		Class: "small data",
		Rows: []Row{
			{Cells: []Cell{{ColSpan: 4, Text: msg}}},
			{Cells: []Cell{{ColSpan: 4, Class: "small", Text: ts.Format(timestampFmt)}}},
		},
	}
}

func atmosphericCells(st *aqi.Station, key string, opts RenderOptions, now time.Time, hour int) ([]Cell, bool) {
	if key == "" {
		return emptyPair(), false
	}

	value, text, ok := atmosphericValue(st, key, opts, now, hour)
	if !ok {
		return emptyPair(), false
	}

	m, _ := aqi.Lookup(key)
	class := aqi.Classify(aqi.Metric(key), value).String()

	return []Cell{
		{Class: "small atm key", HTML: template.HTML(m.Label)},
		{Class: joinClass("small atm value", class), HTML: template.HTML(template.HTMLEscapeString(text) + m.Unit)},
	}, true
}

// atmosphericValue resolves the reading for key. Live readings are rounded;
// UV falls back to the daily forecast, shown and classified as reported, when
// the station has no live value.
func atmosphericValue(st *aqi.Station, key string, opts RenderOptions, now time.Time, hour int) (float64, string, bool) {
	if v, ok := st.Reading(key); ok {
		v = roundHalfUp(v)
		return v, formatNumber(v), true
	}
	if key != string(aqi.MetricUV) {
		return 0, "", false
	}

	day := now
	if opts.Location != nil {
		day = now.In(opts.Location)
	}
	f, ok := st.TodayUVI(day)
	if !ok {
		return 0, "", false
	}
	v := opts.Partition.Pick(f, hour)
	return v, formatNumber(v), true
}

func pollutantCells(st *aqi.Station, key, aqiClass string) ([]Cell, bool) {
	if key == "" {
		return emptyPair(), false
	}
	v, ok := st.Reading(key)
	if !ok {
		return emptyPair(), false
	}

	m, _ := aqi.Lookup(key)
	return []Cell{
		{Class: "small iaqi key", HTML: template.HTML(m.Label)},
		{Class: joinClass("small iaqi value", aqiClass, key), Text: formatNumber(roundHalfUp(v))},
	}, true
}

func emptyPair() []Cell {
	return []Cell{{}, {}}
}

func keyAt(keys []string, i int) string {
	if i < len(keys) {
		return keys[i]
	}
	return ""
}

func joinClass(parts ...string) string {
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, " ")
}

// roundHalfUp rounds halves toward positive infinity: -9.5 becomes -9.
func roundHalfUp(v float64) float64 {
	return math.Floor(v + 0.5)
}

func formatNumber(v float64) string {
	if v == 0 {
		v = 0 // drop the sign of -0
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
