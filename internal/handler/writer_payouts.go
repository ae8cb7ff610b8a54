package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/adsloty/adsloty/internal/model"
	"github.com/adsloty/adsloty/internal/queue"
	"github.com/adsloty/adsloty/internal/repository"
	queue_publisher "github.com/adsloty/adsloty/internal/service"
)

// PayoutSummary handles GET /v1/writer/payouts/summary.
func (h *WriterHandler) PayoutSummary(c echo.Context) error {
	w, err := h.profile(c)
	if err != nil {
		return err
	}
	s, err := h.Payouts.Summarize(c.Request().Context(), w.ID, w.MinPayoutCents)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, s)
}

type payoutReq struct {
	// BookingRefs optionally restricts the withdrawal to a subset of
	// eligible bookings; empty means everything available.
	BookingRefs []string `json:"booking_refs"`
}

// RequestPayout handles POST /v1/writer/payouts.  The amount is derived
// from the writer's published bookings server-side; a balance below the
// minimum threshold, or a subset naming an ineligible booking, returns
// 409.
func (h *WriterHandler) RequestPayout(c echo.Context) error {
	w, err := h.profile(c)
	if err != nil {
		return err
	}
	var req payoutReq
	_ = c.Bind(&req) // an empty body is a request for the full balance
	p, err := h.Payouts.Request(c.Request().Context(), uuid.NewString(), w.ID, w.Currency, w.MinPayoutCents, req.BookingRefs)
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "nothing eligible to withdraw at the requested amount"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "payout request failed"})
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = queue_publisher.PublishPayoutRequested(ctx, queue.PayoutRequestedEvent{
			PayoutRef:    p.Ref,
			WriterID:     w.ID,
			WriterUserID: w.UserID,
			AmountCents:  p.AmountCents,
			Currency:     p.Currency,
			RequestedAt:  p.CreatedAt.Format(time.RFC3339),
		})
	}()

	return c.JSON(http.StatusCreated, payoutResp(p))
}

// ListPayouts handles GET /v1/writer/payouts.
func (h *WriterHandler) ListPayouts(c echo.Context) error {
	w, err := h.profile(c)
	if err != nil {
		return err
	}
	payouts, err := h.Payouts.ListByWriter(c.Request().Context(), w.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	out := make([]echo.Map, 0, len(payouts))
	for _, p := range payouts {
		out = append(out, payoutResp(p))
	}
	return c.JSON(http.StatusOK, echo.Map{"payouts": out})
}

func payoutResp(p model.Payout) echo.Map {
	resp := echo.Map{
		"ref":          p.Ref,
		"amount_cents": p.AmountCents,
		"currency":     p.Currency,
		"status":       string(p.Status),
		"created_at":   p.CreatedAt,
	}
	if p.PaidAt != nil {
		resp["paid_at"] = *p.PaidAt
	}
	if p.FailedAt != nil {
		resp["failed_at"] = *p.FailedAt
	}
	if p.FailureReason != nil {
		resp["failure_reason"] = *p.FailureReason
	}
	return resp
}
