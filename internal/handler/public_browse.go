package handler

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/adsloty/adsloty/internal/config"
	"github.com/adsloty/adsloty/internal/market"
	"github.com/adsloty/adsloty/internal/model"
	"github.com/adsloty/adsloty/internal/pricing"
	"github.com/adsloty/adsloty/internal/repository"
	"github.com/adsloty/adsloty/internal/schedule"
)

// BrowseHandler serves the public marketplace: newsletter listings with
// filtering, sorting and pagination, and the per-newsletter detail view
// with real slot availability.  No authentication is required; these
// routes sit behind the response cache.
type BrowseHandler struct {
	Cfg      config.Config
	Writers  *repository.WriterRepo
	Bookings *repository.BookingRepo
}

// NewBrowseHandler constructs a BrowseHandler.  All dependencies must be
// non-nil.
func NewBrowseHandler(cfg config.Config, writers *repository.WriterRepo, bookings *repository.BookingRepo) *BrowseHandler {
	if writers == nil || bookings == nil {
		panic("nil repository passed to NewBrowseHandler")
	}
	return &BrowseHandler{Cfg: cfg, Writers: writers, Bookings: bookings}
}

// listingFor projects a writer profile onto a marketplace listing,
// resolving real availability over the browse window.
func (h *BrowseHandler) listingFor(ctx context.Context, w model.Writer, now time.Time) (market.Listing, error) {
	l := market.Listing{
		ID:           w.ID,
		Name:         w.NewsletterName,
		Category:     w.Category,
		Subscribers:  w.SubscriberCount,
		OpenRateBps:  w.OpenRateBps,
		ClickRateBps: w.ClickRateBps,
		PriceCents:   w.PriceCents,
		Currency:     w.Currency,
		Featured:     w.Featured,
	}
	if w.Description != nil {
		l.Description = *w.Description
	}

	weeks := h.Cfg.AvailabilityWeeks
	start := schedule.EarliestBookable(now, w.LeadTimeDays)
	until := start.AddDate(0, 0, (weeks-1)*7)
	facts, err := h.Bookings.WeekFacts(ctx, w.ID, w.SlotsPerWeek, start, until)
	if err != nil {
		return l, err
	}
	slots := schedule.Resolve(schedule.GenerateSlots(start, 1, weeks, w.PriceCents), facts)
	for _, s := range slots {
		l.AvailableSlots += s.Remaining
		if l.NextAvailable == nil && s.Available() {
			d := s.Date
			l.NextAvailable = &d
		}
	}
	return l, nil
}

// ListNewsletters handles GET /v1/newsletters.  Filters arrive as query
// parameters; all active predicates are AND-combined and the result is
// sorted and paginated server-side.
func (h *BrowseHandler) ListNewsletters(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	writers, err := h.Writers.ListAll(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	now := time.Now().UTC()
	listings := make([]market.Listing, 0, len(writers))
	for _, w := range writers {
		l, err := h.listingFor(ctx, w, now)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "availability lookup failed"})
		}
		listings = append(listings, l)
	}

	criteria := market.Criteria{
		Search:         c.QueryParam("search"),
		Category:       c.QueryParam("category"),
		MinSubscribers: queryUint32(c, "min_subscribers"),
		MaxSubscribers: queryUint32(c, "max_subscribers"),
		MinPriceCents:  queryUint32(c, "min_price"),
		MaxPriceCents:  queryUint32(c, "max_price"),
		AvailableOnly:  c.QueryParam("available_only") == "true",
	}
	sortKey := market.ParseSortKey(c.QueryParam("sort"))
	page := queryInt(c, "page", 1)
	pageSize := queryInt(c, "page_size", h.Cfg.BrowsePageSize)
	if pageSize < 1 || pageSize > 100 {
		pageSize = h.Cfg.BrowsePageSize
	}

	filtered := market.FilterAndSort(listings, criteria, sortKey)
	items, totalPages := market.Paginate(filtered, page, pageSize)

	return c.JSON(http.StatusOK, echo.Map{
		"newsletters": items,
		"page":        page,
		"total_pages": totalPages,
		"total":       len(filtered),
		"sort":        string(sortKey),
	})
}

// slotResp is the wire shape of one candidate issue week.
type slotResp struct {
	Date       string   `json:"date"`
	State      string   `json:"state"` // available | booked | blackout
	Remaining  uint32   `json:"remaining"`
	PriceCents uint32   `json:"price_cents"`
	Refs       []string `json:"booking_refs,omitempty"`
	Reason     string   `json:"reason,omitempty"`
}

func slotsToResp(slots []schedule.Slot) []slotResp {
	out := make([]slotResp, 0, len(slots))
	for _, s := range slots {
		r := slotResp{
			Date:       schedule.DateKey(s.Date),
			Remaining:  s.Remaining,
			PriceCents: s.PriceCents,
		}
		switch s.State.Kind {
		case schedule.KindBooked:
			r.State = "booked"
			r.Refs = s.State.BookingRefs
		case schedule.KindBlackout:
			r.State = "blackout"
			r.Reason = s.State.Reason
		default:
			r.State = "available"
		}
		out = append(out, r)
	}
	return out
}

// GetNewsletter handles GET /v1/newsletters/:id.  The detail view adds
// the upcoming slot calendar and the writer's monthly earning potential
// at the listed price.
func (h *BrowseHandler) GetNewsletter(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid newsletter id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	w, err := h.Writers.GetByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "newsletter not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	now := time.Now().UTC()
	weeks := queryInt(c, "weeks", h.Cfg.AvailabilityWeeks)
	if weeks < 1 || weeks > 26 {
		weeks = h.Cfg.AvailabilityWeeks
	}
	start := schedule.EarliestBookable(now, w.LeadTimeDays)
	until := start.AddDate(0, 0, (weeks-1)*7)
	facts, err := h.Bookings.WeekFacts(ctx, w.ID, w.SlotsPerWeek, start, until)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "availability lookup failed"})
	}
	slots := schedule.Resolve(schedule.GenerateSlots(start, 1, weeks, w.PriceCents), facts)

	l, err := h.listingFor(ctx, w, now)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "availability lookup failed"})
	}

	resp := echo.Map{
		"newsletter":        l,
		"slots":             slotsToResp(slots),
		"slots_per_week":    w.SlotsPerWeek,
		"lead_time_days":    w.LeadTimeDays,
		"monthly_potential": pricing.MonthlyPotential(int64(w.PriceCents), int64(w.SlotsPerWeek)),
	}
	if w.NewsletterURL != nil {
		resp["newsletter_url"] = *w.NewsletterURL
	}
	return c.JSON(http.StatusOK, resp)
}
