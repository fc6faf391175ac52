package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/aqi-display/internal/aqi"
	"github.com/i474232898/aqi-display/internal/presenter"
	"github.com/i474232898/aqi-display/internal/store"
)

type fakeWidget struct {
	city string
	view presenter.View
	snap *aqi.Snapshot
}

func (f *fakeWidget) City() string { return f.city }

func (f *fakeWidget) SetCity(city string) error {
	if city == "broken" {
		return errors.New("city rejected")
	}
	f.city = city
	return nil
}

func (f *fakeWidget) View() presenter.View { return f.view }

func (f *fakeWidget) Snapshot() (aqi.Snapshot, error) {
	if f.snap == nil {
		return aqi.Snapshot{}, store.ErrNotFound
	}
	return *f.snap, nil
}

func (f *fakeWidget) RefreshInterval() time.Duration { return time.Minute }

func newTestApp(w Widget) *fiber.App {
	app := fiber.New()
	RegisterRoutes(app, w)
	return app
}

func TestGetAQIBeforeFirstLoad(t *testing.T) {
	w := &fakeWidget{city: "cardiff", view: presenter.View{State: presenter.StateNotLoaded, Message: "Loading"}}
	app := newTestApp(w)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/aqi", nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, resp.StatusCode)
	}

	var body map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["city"] != "cardiff" {
		t.Fatalf("unexpected city %v", body["city"])
	}
	if _, ok := body["snapshot"]; ok {
		t.Fatalf("expected no snapshot before first load, got %v", body["snapshot"])
	}
	view, _ := body["view"].(map[string]any)
	if view["state"] != "not-loaded" {
		t.Fatalf("unexpected view %v", body["view"])
	}
}

func TestGetAQIWithSnapshot(t *testing.T) {
	w := &fakeWidget{
		city: "cardiff",
		view: presenter.View{State: presenter.StateLoadedNoData},
		snap: &aqi.Snapshot{Message: aqi.NoDataMessage},
	}
	app := newTestApp(w)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/aqi", nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var body struct {
		Snapshot *aqi.Snapshot `json:"snapshot"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Snapshot == nil || body.Snapshot.Message != aqi.NoDataMessage {
		t.Fatalf("unexpected snapshot %+v", body.Snapshot)
	}
}

func TestGetPage(t *testing.T) {
	w := &fakeWidget{view: presenter.View{State: presenter.StateMissingToken, Message: "Please set the API token.", MessageClass: "dimmed light small"}}
	app := newTestApp(w)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Fatalf("unexpected content type %q", ct)
	}
	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), "Please set the API token.") {
		t.Fatalf("expected token message in page:\n%s", body)
	}
}

func TestPutCity(t *testing.T) {
	w := &fakeWidget{city: "cardiff"}
	app := newTestApp(w)

	req := httptest.NewRequest(http.MethodPut, "/api/v1/city", strings.NewReader(`{"city":"london"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusAccepted {
		t.Fatalf("expected status %d, got %d", http.StatusAccepted, resp.StatusCode)
	}
	if w.city != "london" {
		t.Fatalf("expected city to change, got %q", w.city)
	}
}

func TestPutCityValidation(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"missing city", `{}`},
		{"empty city", `{"city":""}`},
		{"query characters", `{"city":"london?token=x"}`},
		{"rejected by widget", `{"city":"broken"}`},
		{"malformed json", `{"city":`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := &fakeWidget{city: "cardiff"}
			app := newTestApp(w)

			req := httptest.NewRequest(http.MethodPut, "/api/v1/city", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			resp, err := app.Test(req)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if resp.StatusCode != http.StatusBadRequest {
				t.Fatalf("expected status %d, got %d", http.StatusBadRequest, resp.StatusCode)
			}
			if w.city != "cardiff" {
				t.Fatalf("expected city unchanged, got %q", w.city)
			}
		})
	}
}
