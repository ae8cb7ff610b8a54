package handler

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/adsloty/adsloty/internal/model"
	"github.com/adsloty/adsloty/internal/queue"
	"github.com/adsloty/adsloty/internal/repository"
	"github.com/adsloty/adsloty/internal/schedule"
	queue_publisher "github.com/adsloty/adsloty/internal/service"
	"github.com/adsloty/adsloty/internal/validation"
)

// bookingWriterResp renders a booking the way the writer dashboard shows
// it, with the writer-side status projection.
func bookingWriterResp(d repository.BookingDetail) echo.Map {
	b := d.Booking
	resp := echo.Map{
		"ref":          b.Ref,
		"company":      d.CompanyName,
		"slot_date":    schedule.DateKey(b.SlotDate),
		"status":       b.Status.WriterView(),
		"amount_cents": b.AmountCents,
		"payout_cents": b.PayoutCents,
		"currency":     b.Currency,
		"created_at":   b.CreatedAt,
		"creative": echo.Map{
			"headline":  b.Creative.Headline,
			"copy":      b.Creative.Copy,
			"click_url": b.Creative.ClickURL,
		},
	}
	if b.Creative.CTAText != nil {
		resp["cta_text"] = *b.Creative.CTAText
	}
	if b.RejectReason != nil {
		resp["reject_reason"] = *b.RejectReason
	}
	return resp
}

// ListBookings handles GET /v1/writer/bookings.  Status, date range,
// sort and limit/offset arrive as query parameters.
func (h *WriterHandler) ListBookings(c echo.Context) error {
	w, err := h.profile(c)
	if err != nil {
		return err
	}
	details, err := h.Bookings.ListByWriter(c.Request().Context(), w.ID, listOptions(c))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	out := make([]echo.Map, 0, len(details))
	for _, d := range details {
		out = append(out, bookingWriterResp(d))
	}
	return c.JSON(http.StatusOK, echo.Map{"bookings": out})
}

// PendingReview handles GET /v1/writer/bookings/pending.  Oldest first
// so the queue is worked in arrival order.
func (h *WriterHandler) PendingReview(c echo.Context) error {
	w, err := h.profile(c)
	if err != nil {
		return err
	}
	details, err := h.Bookings.ListPendingReview(c.Request().Context(), w.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	out := make([]echo.Map, 0, len(details))
	for _, d := range details {
		out = append(out, bookingWriterResp(d))
	}
	return c.JSON(http.StatusOK, echo.Map{"bookings": out})
}

// owned loads a booking by ref and checks it belongs to the calling
// writer's profile.
func (h *WriterHandler) owned(c echo.Context, w model.Writer) (model.Booking, error) {
	ref := strings.TrimSpace(c.Param("ref"))
	if ref == "" {
		return model.Booking{}, fail(c, http.StatusBadRequest, "invalid booking ref")
	}
	b, err := h.Bookings.GetByRef(c.Request().Context(), ref)
	if err != nil {
		return model.Booking{}, fail(c, http.StatusNotFound, "booking not found")
	}
	if b.WriterID != w.ID {
		return model.Booking{}, fail(c, http.StatusForbidden, "forbidden")
	}
	return b, nil
}

func (h *WriterHandler) publishReviewed(b model.Booking, w model.Writer, outcome, reason string) {
	var sponsorUserID uint64
	if sp, err := h.sponsorUser(b.SponsorID); err == nil {
		sponsorUserID = sp
	}
	ev := queue.BookingReviewedEvent{
		BookingRef:     b.Ref,
		SponsorUserID:  sponsorUserID,
		NewsletterName: w.NewsletterName,
		SlotDate:       schedule.DateKey(b.SlotDate),
		Outcome:        outcome,
		RejectReason:   reason,
		ReviewedAt:     time.Now().UTC().Format(time.RFC3339),
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = queue_publisher.PublishBookingReviewed(ctx, ev)
}

// sponsorUser resolves the owning user of a sponsor profile for event
// routing.
func (h *WriterHandler) sponsorUser(sponsorID uint64) (uint64, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	sp, err := h.Sponsors.GetByID(ctx, sponsorID)
	if err != nil {
		return 0, err
	}
	return sp.UserID, nil
}

// Approve handles POST /v1/writer/bookings/:ref/approve.
func (h *WriterHandler) Approve(c echo.Context) error {
	w, err := h.profile(c)
	if err != nil {
		return err
	}
	b, err := h.owned(c, w)
	if err != nil {
		return err
	}
	updated, err := h.Bookings.Transition(c.Request().Context(), b.ID, model.StatusApproved, nil, nil)
	if err != nil {
		if errors.Is(err, repository.ErrInvalidTransition) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "booking cannot be approved from its current state"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "approve failed"})
	}
	go h.publishReviewed(updated, w, "approved", "")
	return c.JSON(http.StatusOK, echo.Map{"ref": updated.Ref, "status": updated.Status.WriterView()})
}

type rejectReq struct {
	Reason string `json:"reason"`
}

// Reject handles POST /v1/writer/bookings/:ref/reject.  A reason is
// required; the captured payment is refunded through the provider.
func (h *WriterHandler) Reject(c echo.Context) error {
	w, err := h.profile(c)
	if err != nil {
		return err
	}
	b, err := h.owned(c, w)
	if err != nil {
		return err
	}
	var req rejectReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	reason := validation.SanitizeText(strings.TrimSpace(req.Reason))
	if reason == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "reason is required"})
	}

	updated, err := h.Bookings.Transition(c.Request().Context(), b.ID, model.StatusRejected, &reason, nil)
	if err != nil {
		if errors.Is(err, repository.ErrInvalidTransition) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "booking cannot be rejected from its current state"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "reject failed"})
	}

	// Refund is best-effort here; a provider-side failure is retried by
	// support, the rejection itself stands.
	if updated.ProviderOrderID != nil {
		if err := h.Payments.RefundOrder(c.Request().Context(), *updated.ProviderOrderID); err != nil {
			log.Printf("refund for booking %s failed: %v", updated.Ref, err)
		}
	}
	go h.publishReviewed(updated, w, "rejected", reason)
	return c.JSON(http.StatusOK, echo.Map{"ref": updated.Ref, "status": updated.Status.WriterView(), "reject_reason": reason})
}

// MarkPublished handles POST /v1/writer/bookings/:ref/published.  Only
// approved bookings can be marked; doing so makes their payout portion
// eligible for withdrawal.
func (h *WriterHandler) MarkPublished(c echo.Context) error {
	w, err := h.profile(c)
	if err != nil {
		return err
	}
	b, err := h.owned(c, w)
	if err != nil {
		return err
	}
	updated, err := h.Bookings.Transition(c.Request().Context(), b.ID, model.StatusPublished, nil, nil)
	if err != nil {
		if errors.Is(err, repository.ErrInvalidTransition) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "only approved bookings can be marked published"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	go h.publishReviewed(updated, w, "published", "")
	return c.JSON(http.StatusOK, echo.Map{"ref": updated.Ref, "status": updated.Status.WriterView()})
}
