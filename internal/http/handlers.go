package http

import (
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/rs/zerolog/log"

	"github.com/ANIKETSHETTY47/energy-usage-database/internal/domain"
	"github.com/ANIKETSHETTY47/energy-usage-database/internal/service"
)

var validate = validator.New()

// NewApp builds the fiber app with every route registered.
func NewApp(svcs *service.Services) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: errorHandler,
		JSONEncoder:  sonic.Marshal,
		JSONDecoder:  sonic.Unmarshal,
	})
	app.Use(recover.New())
	app.Use(requestLogger)

	app.Get("/health", func(c *fiber.Ctx) error { return c.SendString("ok") })

	Register(app, svcs)
	return app
}

func Register(app *fiber.App, svcs *service.Services) {
	h := &handlers{svcs: svcs}

	g := app.Group("/energy/:type")
	g.Get("meters", h.listMeters)
	g.Get("date-ranges", h.dateRanges)
	g.Get("timestamps", h.timestamps)
	g.Get("value", h.readValue)
	g.Put("entries", h.updateEntry)
	g.Get("readings", h.readings)
	g.Get("usage", h.usage)
	g.Get("logs", h.listLogs)
	g.Post("logs/archive", h.archiveLog)
	g.Get("logs/:name", h.readLog)
	g.Get("updates/recent", h.recentUpdates)
}

type handlers struct {
	svcs *service.Services
}

func (h *handlers) listMeters(c *fiber.Ctx) error {
	out, err := h.svcs.Readings.ListMeters(c.UserContext(), c.Params("type"))
	if err != nil {
		return err
	}
	return c.JSON(out)
}

type dateRangesResponse struct {
	Ranges domain.DateRanges `json:"ranges"`
	Bounds *domain.DateRange `json:"bounds,omitempty"`
}

func (h *handlers) dateRanges(c *fiber.Ctx) error {
	ranges, err := h.svcs.Ranges.ResolveDateRanges(c.UserContext(), c.Params("type"), splitList(c.Query("meters")))
	if err != nil {
		return err
	}
	resp := dateRangesResponse{Ranges: ranges}
	if b, ok := ranges.Bounds(); ok {
		resp.Bounds = &b
	}
	return c.JSON(resp)
}

func (h *handlers) timestamps(c *fiber.Ctx) error {
	ts, err := h.svcs.Readings.Timestamps(c.UserContext(), c.Params("type"), c.Query("meter"))
	if err != nil {
		return err
	}
	out := make([]string, len(ts))
	for i, t := range ts {
		out[i] = t.Format(domain.TimestampLayout)
	}
	return c.JSON(fiber.Map{"timestamps": out})
}

func (h *handlers) readValue(c *fiber.Ctx) error {
	ts, err := domain.ParseTimestamp(c.Query("timestamp"))
	if err != nil {
		return err
	}
	meter := c.Query("meter")
	v, err := h.svcs.Entries.ReadValue(c.UserContext(), c.Params("type"), ts, meter)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"meter": meter, "timestamp": ts.Format(domain.TimestampLayout), "value": v})
}

type updateEntryRequest struct {
	Timestamp  string   `json:"timestamp" validate:"required"`
	Meter      string   `json:"meter" validate:"required"`
	Value      *float64 `json:"value" validate:"required"`
	ActorName  string   `json:"actor_name" validate:"required"`
	ActorEmail string   `json:"actor_email" validate:"required,email"`
}

func (h *handlers) updateEntry(c *fiber.Ctx) error {
	var req updateEntryRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid body: "+err.Error())
	}
	if err := validate.Struct(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	ts, err := domain.ParseTimestamp(req.Timestamp)
	if err != nil {
		return err
	}

	actor := domain.Actor{Name: req.ActorName, Email: req.ActorEmail}
	v, err := h.svcs.Entries.UpdateEntry(c.UserContext(), c.Params("type"), ts, req.Meter, *req.Value, actor)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"meter":     req.Meter,
		"timestamp": ts.Format(domain.TimestampLayout),
		"value":     v,
	})
}

func (h *handlers) readings(c *fiber.Ctx) error {
	from, to, err := window(c)
	if err != nil {
		return err
	}
	out, err := h.svcs.Readings.Readings(c.UserContext(), c.Params("type"), splitList(c.Query("meters")), from, to)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"readings": out})
}

func (h *handlers) usage(c *fiber.Ctx) error {
	from, to, err := window(c)
	if err != nil {
		return err
	}
	out, err := h.svcs.Readings.TotalUsage(c.UserContext(), c.Params("type"), splitList(c.Query("meters")), from, to)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"usage": out})
}

func (h *handlers) listLogs(c *fiber.Ctx) error {
	files, err := h.svcs.Logs.ListFiles(c.Params("type"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"files": files})
}

func (h *handlers) readLog(c *fiber.Ctx) error {
	lines, err := h.svcs.Logs.Read(c.Params("type"), c.Params("name"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"name": c.Params("name"), "lines": lines})
}

func (h *handlers) archiveLog(c *fiber.Ctx) error {
	key, err := h.svcs.Logs.Archive(c.UserContext(), c.Params("type"))
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"key": key})
}

func (h *handlers) recentUpdates(c *fiber.Ctx) error {
	out, err := h.svcs.Logs.RecentUpdates(c.UserContext(), c.Params("type"), int32(c.QueryInt("limit", 20)))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"updates": out})
}

func window(c *fiber.Ctx) (from, to time.Time, err error) {
	if from, err = domain.ParseDate(c.Query("from")); err != nil {
		return
	}
	to, err = domain.ParseDate(c.Query("to"))
	return
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func requestLogger(c *fiber.Ctx) error {
	start := time.Now()
	err := c.Next()
	log.Debug().
		Err(err).
		Str("method", c.Method()).
		Str("path", c.Path()).
		Dur("took", time.Since(start)).
		Msg("request")
	return err
}
