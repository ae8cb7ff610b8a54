package handler

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/adsloty/adsloty/internal/config"
	"github.com/adsloty/adsloty/internal/model"
	"github.com/adsloty/adsloty/internal/payment"
	"github.com/adsloty/adsloty/internal/repository"
)

// AdminHandler covers the back-office surface: working the payout
// queue and periodic maintenance sweeps.
type AdminHandler struct {
	Cfg      *config.Config
	Payouts  *repository.PayoutRepo
	Bookings *repository.BookingRepo
	Tokens   *repository.TokenRepo
	Payments *payment.Client
}

func NewAdminHandler(cfg *config.Config, payouts *repository.PayoutRepo, bookings *repository.BookingRepo, tokens *repository.TokenRepo, payments *payment.Client) *AdminHandler {
	if cfg == nil || payouts == nil || bookings == nil || tokens == nil || payments == nil {
		panic("nil dependency passed to NewAdminHandler")
	}
	return &AdminHandler{Cfg: cfg, Payouts: payouts, Bookings: bookings, Tokens: tokens, Payments: payments}
}

// ListPayouts handles GET /v1/admin/payouts?status=pending.
func (h *AdminHandler) ListPayouts(c echo.Context) error {
	status := model.PayoutStatus(strings.TrimSpace(c.QueryParam("status")))
	if status == "" {
		status = model.PayoutPending
	}
	switch status {
	case model.PayoutPending, model.PayoutProcessing, model.PayoutPaid, model.PayoutFailed:
	default:
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown payout status"})
	}
	list, err := h.Payouts.ListByStatus(c.Request().Context(), status)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	out := make([]echo.Map, 0, len(list))
	for _, p := range list {
		out = append(out, adminPayoutResp(p))
	}
	return c.JSON(http.StatusOK, echo.Map{"payouts": out})
}

// adminPayoutResp adds the identifiers the back office keys on.
func adminPayoutResp(p model.Payout) echo.Map {
	resp := payoutResp(p)
	resp["id"] = p.ID
	resp["writer_id"] = p.WriterID
	return resp
}

type payoutStatusReq struct {
	Status        string  `json:"status"`
	FailureReason *string `json:"failure_reason"`
}

// UpdatePayoutStatus handles PATCH /v1/admin/payouts/:id.  The status
// walks the payout lifecycle; failing a payout requires a reason and
// returns the attached earnings to the writer's balance.
func (h *AdminHandler) UpdatePayoutStatus(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid payout id"})
	}
	var req payoutStatusReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	next := model.PayoutStatus(strings.TrimSpace(req.Status))
	switch next {
	case model.PayoutProcessing, model.PayoutPaid, model.PayoutFailed:
	default:
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown payout status"})
	}
	if next == model.PayoutFailed && (req.FailureReason == nil || strings.TrimSpace(*req.FailureReason) == "") {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "failure_reason required"})
	}

	p, err := h.Payouts.UpdateStatus(c.Request().Context(), id, next, req.FailureReason)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrInvalidTransition):
			return c.JSON(http.StatusConflict, echo.Map{"error": "illegal payout transition"})
		default:
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
		}
	}
	return c.JSON(http.StatusOK, adminPayoutResp(p))
}

// CleanupTokens handles POST /v1/admin/maintenance/tokens and removes
// refresh tokens past their expiry.
func (h *AdminHandler) CleanupTokens(c echo.Context) error {
	n, err := h.Tokens.DeleteExpired(c.Request().Context(), time.Now().UTC())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "cleanup failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"deleted": n})
}

// ExpireStaleBookings handles POST /v1/admin/maintenance/bookings.
// Checkouts abandoned past the configured window are cancelled so they
// stop consuming slot capacity.
func (h *AdminHandler) ExpireStaleBookings(c echo.Context) error {
	cutoff := time.Now().UTC().Add(-time.Duration(h.Cfg.PendingExpiryHours) * time.Hour)
	n, err := h.Bookings.ExpireStalePending(c.Request().Context(), cutoff)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "sweep failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"cancelled": n})
}

// UpcomingApproved handles GET /v1/admin/bookings/upcoming?days=7 and
// lists approved ads due to run soon, for chasing publication.
func (h *AdminHandler) UpcomingApproved(c echo.Context) error {
	days := queryInt(c, "days", 7)
	if days < 1 || days > 60 {
		days = 7
	}
	details, err := h.Bookings.ListUpcomingApproved(c.Request().Context(), time.Duration(days)*24*time.Hour)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	out := make([]echo.Map, 0, len(details))
	for _, d := range details {
		b := d.Booking
		out = append(out, echo.Map{
			"ref":        b.Ref,
			"newsletter": d.NewsletterName,
			"company":    d.CompanyName,
			"slot_date":  b.SlotDate.Format("2006-01-02"),
			"writer_id":  b.WriterID,
		})
	}
	return c.JSON(http.StatusOK, echo.Map{"bookings": out})
}

// InspectOrder handles GET /v1/admin/orders/:order_id and fetches the
// provider's view of an order when reconciling disputes.
func (h *AdminHandler) InspectOrder(c echo.Context) error {
	orderID := strings.TrimSpace(c.Param("order_id"))
	if orderID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid order id"})
	}
	order, err := h.Payments.GetOrder(c.Request().Context(), orderID)
	if err != nil {
		if errors.Is(err, payment.ErrNotConfigured) {
			return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "payments are not configured"})
		}
		return c.JSON(http.StatusBadGateway, echo.Map{"error": "provider lookup failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"order_id": order.ID,
		"status":   order.Status,
		"total":    order.Total,
		"currency": order.Currency,
	})
}
