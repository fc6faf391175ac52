package httpapi

import (
	"bytes"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/aqi-display/internal/aqi"
	"github.com/i474232898/aqi-display/internal/presenter"
	"github.com/i474232898/aqi-display/internal/store"
)

var validate = validator.New()

// Widget is the display state the handlers read and reconfigure.
type Widget interface {
	City() string
	SetCity(city string) error
	View() presenter.View
	Snapshot() (aqi.Snapshot, error)
	RefreshInterval() time.Duration
}

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, w Widget) {
	app.Get("/", func(c *fiber.Ctx) error {
		var buf bytes.Buffer
		if err := presenter.WritePage(&buf, w.View(), w.RefreshInterval()); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "failed to render page")
		}
		c.Type("html", "utf-8")
		return c.Send(buf.Bytes())
	})

	v1 := app.Group("/api/v1")

	v1.Get("/aqi", func(c *fiber.Ctx) error {
		resp := aqiResponse{City: w.City(), View: w.View()}

		snap, err := w.Snapshot()
		switch {
		case err == nil:
			resp.Snapshot = &snap
		case !errors.Is(err, store.ErrNotFound):
			return fiber.NewError(fiber.StatusInternalServerError, "failed to read air quality data")
		}
		return c.JSON(resp)
	})

	v1.Get("/aqi/widget", func(c *fiber.Ctx) error {
		var buf bytes.Buffer
		if err := presenter.WriteWidget(&buf, w.View()); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "failed to render widget")
		}
		c.Type("html", "utf-8")
		return c.Send(buf.Bytes())
	})

	v1.Put("/city", func(c *fiber.Ctx) error {
		var req cityRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}
		if err := validate.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		if err := w.SetCity(req.City); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"city": w.City()})
	})
}

type aqiResponse struct {
	City     string         `json:"city"`
	View     presenter.View `json:"view"`
	Snapshot *aqi.Snapshot  `json:"snapshot,omitempty"`
}

// cityRequest accepts a city name, a station id ("@1234") or a geo query.
type cityRequest struct {
	City string `json:"city" validate:"required,max=128,excludesall=?#"`
}
