package handler

import (
	"database/sql"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/adsloty/adsloty/internal/config"
	"github.com/adsloty/adsloty/internal/model"
	"github.com/adsloty/adsloty/internal/pricing"
	"github.com/adsloty/adsloty/internal/repository"
	"github.com/adsloty/adsloty/internal/schedule"
)

// WidgetHandler serves the public embed API.  Everything here is
// anonymous, cache-friendly and CORS-open so writers can drop the
// widget on their own sites.
type WidgetHandler struct {
	Cfg      *config.Config
	Writers  *repository.WriterRepo
	Bookings *repository.BookingRepo
}

func NewWidgetHandler(cfg *config.Config, writers *repository.WriterRepo, bookings *repository.BookingRepo) *WidgetHandler {
	if cfg == nil || writers == nil || bookings == nil {
		panic("nil dependency passed to NewWidgetHandler")
	}
	return &WidgetHandler{Cfg: cfg, Writers: writers, Bookings: bookings}
}

func (h *WidgetHandler) writer(c echo.Context) (model.Writer, error) {
	id, ok := parseID(c, "writer_id")
	if !ok {
		return model.Writer{}, fail(c, http.StatusBadRequest, "invalid writer id")
	}
	w, err := h.Writers.GetByID(c.Request().Context(), id)
	if err != nil {
		if err == sql.ErrNoRows {
			return model.Writer{}, fail(c, http.StatusNotFound, "newsletter not found")
		}
		return model.Writer{}, fail(c, http.StatusInternalServerError, "query failed")
	}
	return w, nil
}

// Info handles GET /v1/widget/:writer_id.  It returns the subset of
// the listing the embed renders.
func (h *WidgetHandler) Info(c echo.Context) error {
	w, err := h.writer(c)
	if err != nil {
		return err
	}
	resp := echo.Map{
		"writer_id":         w.ID,
		"newsletter_name":   w.NewsletterName,
		"category":          w.Category,
		"subscriber_count":  w.SubscriberCount,
		"open_rate_bps":     w.OpenRateBps,
		"price_cents":       w.PriceCents,
		"currency":          w.Currency,
		"slots_per_week":    w.SlotsPerWeek,
		"monthly_potential": pricing.MonthlyPotential(int64(w.PriceCents), int64(w.SlotsPerWeek)),
	}
	if w.NewsletterURL != nil {
		resp["newsletter_url"] = *w.NewsletterURL
	}
	return c.JSON(http.StatusOK, resp)
}

// Availability handles GET /v1/widget/:writer_id/availability.  ?weeks
// defaults to 8 and is capped at 26 so an embed cannot ask for an
// unbounded calendar.
func (h *WidgetHandler) Availability(c echo.Context) error {
	w, err := h.writer(c)
	if err != nil {
		return err
	}
	weeks := queryInt(c, "weeks", h.Cfg.AvailabilityWeeks)
	if weeks < 1 {
		weeks = 1
	}
	if weeks > 26 {
		weeks = 26
	}
	now := time.Now().UTC()
	start := schedule.EarliestBookable(now, w.LeadTimeDays)
	until := start.AddDate(0, 0, (weeks-1)*7)
	facts, err := h.Bookings.WeekFacts(c.Request().Context(), w.ID, w.SlotsPerWeek, start, until)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "availability lookup failed"})
	}
	slots := schedule.Resolve(schedule.GenerateSlots(start, 1, weeks, w.PriceCents), facts)

	out := make([]echo.Map, 0, len(slots))
	for _, s := range slots {
		out = append(out, echo.Map{
			"date":        schedule.DateKey(s.Date),
			"available":   s.Available(),
			"remaining":   s.Remaining,
			"price_cents": s.PriceCents,
		})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"writer_id": w.ID,
		"currency":  w.Currency,
		"weeks":     out,
	})
}

// CheckSlot handles GET /v1/widget/:writer_id/slots/:date.  The date is
// normalized to its week before the lookup.
func (h *WidgetHandler) CheckSlot(c echo.Context) error {
	w, err := h.writer(c)
	if err != nil {
		return err
	}
	date, perr := time.Parse("2006-01-02", strings.TrimSpace(c.Param("date")))
	if perr != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "date must be YYYY-MM-DD"})
	}
	now := time.Now().UTC()
	week := schedule.WeekStart(date)
	earliest := schedule.EarliestBookable(now, w.LeadTimeDays)

	resp := echo.Map{
		"writer_id":   w.ID,
		"date":        schedule.DateKey(week),
		"price_cents": w.PriceCents,
		"currency":    w.Currency,
	}
	if week.Before(earliest) {
		resp["available"] = false
		resp["remaining"] = 0
		return c.JSON(http.StatusOK, resp)
	}
	facts, err := h.Bookings.WeekFacts(c.Request().Context(), w.ID, w.SlotsPerWeek, week, week)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "availability lookup failed"})
	}
	slots := schedule.Resolve(schedule.GenerateSlots(week, 1, 1, w.PriceCents), facts)
	s := slots[0]
	resp["available"] = s.Available()
	resp["remaining"] = s.Remaining
	return c.JSON(http.StatusOK, resp)
}

// Embed handles GET /v1/widget/:writer_id/embed and returns the script
// snippet a writer pastes into their site.
func (h *WidgetHandler) Embed(c echo.Context) error {
	w, err := h.writer(c)
	if err != nil {
		return err
	}
	base := c.Scheme() + "://" + c.Request().Host
	snippet := fmt.Sprintf(`<script src=%q data-writer-id="%d" async></script>`, base+"/widget.js", w.ID)
	return c.JSON(http.StatusOK, echo.Map{
		"writer_id": w.ID,
		"snippet":   snippet,
	})
}
