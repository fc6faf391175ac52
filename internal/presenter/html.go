package presenter

import (
	"embed"
	"html/template"
	"io"
	"time"
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

type pageData struct {
	View           View
	RefreshSeconds int
}

// WriteWidget writes the widget fragment for v.
func WriteWidget(w io.Writer, v View) error {
	return templates.ExecuteTemplate(w, "widget.html", v)
}

// WritePage writes a full HTML document around the widget. The page reloads
// itself every refresh.
func WritePage(w io.Writer, v View, refresh time.Duration) error {
	secs := int(refresh / time.Second)
	if secs < 1 {
		secs = 1
	}
	return templates.ExecuteTemplate(w, "page.html", pageData{View: v, RefreshSeconds: secs})
}

// RefreshInterval is how often a page showing the widget should reload.
func (p *Presenter) RefreshInterval() time.Duration {
	if p.opts.UpdateInterval < time.Minute {
		return p.opts.UpdateInterval
	}
	return time.Minute
}
