package handler

import (
	"context"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/adsloty/adsloty/internal/model"
	"github.com/adsloty/adsloty/internal/payment"
	"github.com/adsloty/adsloty/internal/queue"
	"github.com/adsloty/adsloty/internal/repository"
	"github.com/adsloty/adsloty/internal/schedule"
	queue_publisher "github.com/adsloty/adsloty/internal/service"
)

// WebhookHandler receives payment provider callbacks.  Deliveries are
// authenticated by HMAC signature, never by session, and must be
// idempotent because providers redeliver on any non-2xx answer.
type WebhookHandler struct {
	Payments *payment.Client
	Bookings *repository.BookingRepo
	Writers  *repository.WriterRepo
	Sponsors *repository.SponsorRepo
}

func NewWebhookHandler(payments *payment.Client, bookings *repository.BookingRepo, writers *repository.WriterRepo, sponsors *repository.SponsorRepo) *WebhookHandler {
	if payments == nil || bookings == nil || writers == nil || sponsors == nil {
		panic("nil dependency passed to NewWebhookHandler")
	}
	return &WebhookHandler{Payments: payments, Bookings: bookings, Writers: writers, Sponsors: sponsors}
}

// Receive handles POST /v1/webhooks/payment.
func (h *WebhookHandler) Receive(c echo.Context) error {
	body, err := io.ReadAll(io.LimitReader(c.Request().Body, 1<<20))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "read body failed"})
	}
	if !h.Payments.VerifySignature(body, c.Request().Header.Get("X-Signature")) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid signature"})
	}
	ev, err := payment.ParseWebhook(body)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "malformed webhook"})
	}

	switch {
	case ev.IsOrderCreated():
		return h.orderCreated(c, ev)
	case ev.IsOrderRefunded():
		return h.orderRefunded(c, ev)
	default:
		// Unknown events are acknowledged so the provider stops
		// redelivering them.
		return c.JSON(http.StatusOK, echo.Map{"status": "ignored"})
	}
}

func (h *WebhookHandler) orderCreated(c echo.Context, ev payment.WebhookEvent) error {
	ctx := c.Request().Context()
	ref := ev.BookingRef()
	if ref == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "missing booking ref"})
	}

	// Redelivery check: if this order already marked a booking paid,
	// acknowledge without a second transition.
	if prior, err := h.Bookings.GetByProviderOrder(ctx, ev.Data.ID); err == nil && prior.Status != model.StatusPendingPayment {
		return c.JSON(http.StatusOK, echo.Map{"status": "already processed"})
	}

	b, err := h.Bookings.GetByRef(ctx, ref)
	if err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "unknown booking"})
	}
	if b.Status != model.StatusPendingPayment {
		return c.JSON(http.StatusOK, echo.Map{"status": "already processed"})
	}

	orderID := ev.Data.ID
	b, err = h.Bookings.Transition(ctx, b.ID, model.StatusPaid, nil, &orderID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "transition failed"})
	}

	w, err := h.Writers.GetByID(ctx, b.WriterID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if w.AutoApprove {
		if b, err = h.Bookings.Transition(ctx, b.ID, model.StatusApproved, nil, nil); err != nil {
			log.Printf("auto-approve for booking %s failed: %v", b.Ref, err)
		}
	}

	sp, err := h.Sponsors.GetByID(ctx, b.SponsorID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	event := queue.BookingPaidEvent{
		BookingRef:     b.Ref,
		WriterID:       w.ID,
		WriterUserID:   w.UserID,
		SponsorID:      sp.ID,
		SponsorUserID:  sp.UserID,
		NewsletterName: w.NewsletterName,
		CompanyName:    sp.CompanyName,
		SlotDate:       schedule.DateKey(b.SlotDate),
		AmountCents:    b.AmountCents,
		AutoApproved:   w.AutoApprove,
		PaidAt:         time.Now().UTC().Format(time.RFC3339),
	}
	go func() {
		pctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := queue_publisher.PublishBookingPaid(pctx, event); err != nil {
			log.Printf("publish booking.paid for %s failed: %v", event.BookingRef, err)
		}
	}()

	return c.JSON(http.StatusOK, echo.Map{"status": "ok"})
}

func (h *WebhookHandler) orderRefunded(c echo.Context, ev payment.WebhookEvent) error {
	ctx := c.Request().Context()

	b, err := h.Bookings.GetByProviderOrder(ctx, ev.Data.ID)
	if err != nil {
		// Refunds for rejected bookings come back through here too;
		// the booking may already be terminal or unknown.
		if ref := ev.BookingRef(); ref != "" {
			b, err = h.Bookings.GetByRef(ctx, ref)
		}
		if err != nil {
			return c.JSON(http.StatusOK, echo.Map{"status": "ignored"})
		}
	}
	if b.Status == model.StatusRefunded || b.Status == model.StatusRejected {
		return c.JSON(http.StatusOK, echo.Map{"status": "already processed"})
	}
	if _, err := h.Bookings.Transition(ctx, b.ID, model.StatusRefunded, nil, nil); err != nil {
		log.Printf("refund transition for booking %s failed: %v", b.Ref, err)
		return c.JSON(http.StatusOK, echo.Map{"status": "ignored"})
	}
	return c.JSON(http.StatusOK, echo.Map{"status": "ok"})
}
