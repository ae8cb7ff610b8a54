package handler

import (
	"database/sql"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/adsloty/adsloty/internal/model"
	"github.com/adsloty/adsloty/internal/payment"
	"github.com/adsloty/adsloty/internal/pricing"
	"github.com/adsloty/adsloty/internal/repository"
	"github.com/adsloty/adsloty/internal/validation"
)

// WriterHandler bundles the repositories writers use to manage their
// profile, schedule, review queue and payouts.  The payment client is
// used to refund rejected bookings.
type WriterHandler struct {
	Writers   *repository.WriterRepo
	Sponsors  *repository.SponsorRepo
	Bookings  *repository.BookingRepo
	Blackouts *repository.BlackoutRepo
	Payouts   *repository.PayoutRepo
	Users     *repository.UserRepo
	Payments  *payment.Client
}

// NewWriterHandler constructs a WriterHandler.  All dependencies must be
// non-nil.
func NewWriterHandler(writers *repository.WriterRepo, sponsors *repository.SponsorRepo, bookings *repository.BookingRepo, blackouts *repository.BlackoutRepo, payouts *repository.PayoutRepo, users *repository.UserRepo, payments *payment.Client) *WriterHandler {
	if writers == nil || sponsors == nil || bookings == nil || blackouts == nil || payouts == nil || users == nil || payments == nil {
		panic("nil dependency passed to NewWriterHandler")
	}
	return &WriterHandler{Writers: writers, Sponsors: sponsors, Bookings: bookings, Blackouts: blackouts, Payouts: payouts, Users: users, Payments: payments}
}

// profile loads the calling writer's profile, translating lookup
// failures into the responses shared by every writer endpoint.
func (h *WriterHandler) profile(c echo.Context) (model.Writer, error) {
	userID, err := getUserID(c)
	if err != nil {
		return model.Writer{}, fail(c, http.StatusUnauthorized, "unauthorized")
	}
	w, err := h.Writers.GetByUserID(c.Request().Context(), userID)
	if err != nil {
		if err == sql.ErrNoRows {
			return model.Writer{}, fail(c, http.StatusNotFound, "writer profile not found")
		}
		return model.Writer{}, fail(c, http.StatusInternalServerError, "query failed")
	}
	return w, nil
}

type writerProfileReq struct {
	NewsletterName  string  `json:"newsletter_name"`
	NewsletterURL   *string `json:"newsletter_url"`
	Description     *string `json:"description"`
	Category        string  `json:"category"`
	SubscriberCount uint32  `json:"subscriber_count"`
	OpenRateBps     uint32  `json:"open_rate_bps"`
	ClickRateBps    uint32  `json:"click_rate_bps"`
	PriceCents      uint32  `json:"price_cents"`
	Currency        string  `json:"currency"`
	SlotsPerWeek    uint32  `json:"slots_per_week"`
	LeadTimeDays    uint32  `json:"lead_time_days"`
	AutoApprove     bool    `json:"auto_approve"`
	MinPayoutCents  uint32  `json:"min_payout_cents"`
}

// validate normalizes and checks the request, returning a client-facing
// message when the input is unusable.
func (r *writerProfileReq) validate() string {
	r.NewsletterName = validation.SanitizeText(strings.TrimSpace(r.NewsletterName))
	if r.NewsletterName == "" {
		return "newsletter_name is required"
	}
	r.Category = strings.ToLower(strings.TrimSpace(r.Category))
	if r.Category == "" {
		return "category is required"
	}
	if r.PriceCents == 0 {
		return "price_cents must be positive"
	}
	if r.SlotsPerWeek == 0 || r.SlotsPerWeek > 10 {
		return "slots_per_week must be between 1 and 10"
	}
	if r.OpenRateBps > 10000 || r.ClickRateBps > 10000 {
		return "rates are basis points between 0 and 10000"
	}
	if r.NewsletterURL != nil && *r.NewsletterURL != "" {
		clean, err := validation.ValidateURL(*r.NewsletterURL)
		if err != nil {
			return "invalid newsletter_url"
		}
		r.NewsletterURL = &clean
	}
	if r.Description != nil {
		d := validation.SanitizeText(strings.TrimSpace(*r.Description))
		r.Description = &d
	}
	r.Currency = strings.ToLower(strings.TrimSpace(r.Currency))
	if r.Currency == "" {
		r.Currency = "usd"
	}
	return ""
}

func (r *writerProfileReq) apply(w *model.Writer) {
	w.NewsletterName = r.NewsletterName
	w.NewsletterURL = r.NewsletterURL
	w.Description = r.Description
	w.Category = r.Category
	w.SubscriberCount = r.SubscriberCount
	w.OpenRateBps = r.OpenRateBps
	w.ClickRateBps = r.ClickRateBps
	w.PriceCents = r.PriceCents
	w.Currency = r.Currency
	w.SlotsPerWeek = r.SlotsPerWeek
	w.LeadTimeDays = r.LeadTimeDays
	w.AutoApprove = r.AutoApprove
	w.MinPayoutCents = r.MinPayoutCents
}

// CreateProfile handles POST /v1/writer/profile.  One profile per user;
// a second create returns 409.
func (h *WriterHandler) CreateProfile(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req writerProfileReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if msg := req.validate(); msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}

	w := model.Writer{UserID: userID, PlatformFeeBps: 1500} // 15% platform commission
	req.apply(&w)
	if err := h.Writers.Create(c.Request().Context(), &w); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "profile or newsletter name already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create profile failed"})
	}
	return c.JSON(http.StatusCreated, writerProfileResp(w))
}

// GetProfile handles GET /v1/writer/profile.
func (h *WriterHandler) GetProfile(c echo.Context) error {
	w, err := h.profile(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, writerProfileResp(w))
}

// UpdateProfile handles PATCH /v1/writer/profile.
func (h *WriterHandler) UpdateProfile(c echo.Context) error {
	w, err := h.profile(c)
	if err != nil {
		return err
	}
	var req writerProfileReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if msg := req.validate(); msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}
	req.apply(&w)
	if err := h.Writers.Update(c.Request().Context(), &w); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "newsletter name already exists"})
		}
		if errors.Is(err, repository.ErrForbidden) {
			return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update profile failed"})
	}
	return c.JSON(http.StatusOK, writerProfileResp(w))
}

func writerProfileResp(w model.Writer) echo.Map {
	resp := echo.Map{
		"id":                w.ID,
		"newsletter_name":   w.NewsletterName,
		"category":          w.Category,
		"subscriber_count":  w.SubscriberCount,
		"open_rate_bps":     w.OpenRateBps,
		"click_rate_bps":    w.ClickRateBps,
		"price_cents":       w.PriceCents,
		"currency":          w.Currency,
		"slots_per_week":    w.SlotsPerWeek,
		"lead_time_days":    w.LeadTimeDays,
		"auto_approve":      w.AutoApprove,
		"platform_fee_bps":  w.PlatformFeeBps,
		"min_payout_cents":  w.MinPayoutCents,
		"featured":          w.Featured,
		"monthly_potential": pricing.MonthlyPotential(int64(w.PriceCents), int64(w.SlotsPerWeek)),
	}
	if w.NewsletterURL != nil {
		resp["newsletter_url"] = *w.NewsletterURL
	}
	if w.Description != nil {
		resp["description"] = *w.Description
	}
	return resp
}
