package handler

import (
	"database/sql"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/adsloty/adsloty/internal/model"
	"github.com/adsloty/adsloty/internal/payment"
	"github.com/adsloty/adsloty/internal/pricing"
	"github.com/adsloty/adsloty/internal/repository"
	"github.com/adsloty/adsloty/internal/schedule"
	"github.com/adsloty/adsloty/internal/validation"
	"github.com/adsloty/adsloty/internal/wizard"
)

// wizardResp renders the session state returned by every wizard
// endpoint so the client always knows the current step.
func wizardResp(id string, sess *wizard.Session) echo.Map {
	resp := echo.Map{
		"wizard_id": id,
		"step":      sess.Step().String(),
		"writer_id": sess.WriterID(),
	}
	if date, price, ok := sess.Slot(); ok {
		resp["slot_date"] = schedule.DateKey(date)
		resp["price_cents"] = price
	}
	if cr, ok := sess.Creative(); ok {
		creative := echo.Map{
			"headline":  cr.Headline,
			"copy":      cr.Copy,
			"click_url": cr.ClickURL,
		}
		if cr.CTAText != nil {
			creative["cta_text"] = *cr.CTAText
		}
		resp["creative"] = creative
	}
	return resp
}

func wizardErr(c echo.Context, err error) error {
	switch {
	case errors.Is(err, wizard.ErrClosed):
		return c.JSON(http.StatusGone, echo.Map{"error": "wizard session expired"})
	case errors.Is(err, wizard.ErrWrongStep):
		return c.JSON(http.StatusConflict, echo.Map{"error": "operation not valid for current step"})
	case errors.Is(err, wizard.ErrNoSlot):
		return c.JSON(http.StatusConflict, echo.Map{"error": "select a week first"})
	case errors.Is(err, wizard.ErrCheckoutInFlight):
		return c.JSON(http.StatusConflict, echo.Map{"error": "checkout already in progress"})
	case errors.Is(err, validation.ErrValidation):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "wizard operation failed"})
	}
}

type startWizardReq struct {
	WriterID uint64 `json:"writer_id"`
}

// StartWizard handles POST /v1/sponsor/bookings/wizard.  It opens a
// session against one newsletter and returns the bookable weeks.
func (h *SponsorHandler) StartWizard(c echo.Context) error {
	sp, err := h.sponsorProfile(c)
	if err != nil {
		return err
	}
	var req startWizardReq
	if err := c.Bind(&req); err != nil || req.WriterID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "writer_id required"})
	}
	w, err := h.Writers.GetByID(c.Request().Context(), req.WriterID)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "newsletter not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	id, sess := h.Wizards.Open(sp.ID, w.ID)
	slots, err := h.bookableSlots(c, w)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "availability lookup failed"})
	}
	resp := wizardResp(id, sess)
	resp["slots"] = slotsToResp(slots)
	return c.JSON(http.StatusCreated, resp)
}

// bookableSlots resolves the weeks a sponsor may pick right now.
func (h *SponsorHandler) bookableSlots(c echo.Context, w model.Writer) ([]schedule.Slot, error) {
	now := time.Now().UTC()
	weeks := h.Cfg.AvailabilityWeeks
	start := schedule.EarliestBookable(now, w.LeadTimeDays)
	until := start.AddDate(0, 0, (weeks-1)*7)
	facts, err := h.Bookings.WeekFacts(c.Request().Context(), w.ID, w.SlotsPerWeek, start, until)
	if err != nil {
		return nil, err
	}
	return schedule.Resolve(schedule.GenerateSlots(start, 1, weeks, w.PriceCents), facts), nil
}

// session fetches the sponsor's wizard session from the store.
func (h *SponsorHandler) session(c echo.Context, sp model.Sponsor) (string, *wizard.Session, error) {
	id := strings.TrimSpace(c.Param("id"))
	sess, ok := h.Wizards.Get(id, sp.ID)
	if !ok {
		return "", nil, fail(c, http.StatusNotFound, "wizard session not found")
	}
	return id, sess, nil
}

// WizardState handles GET /v1/sponsor/bookings/wizard/:id.
func (h *SponsorHandler) WizardState(c echo.Context) error {
	sp, err := h.sponsorProfile(c)
	if err != nil {
		return err
	}
	id, sess, err := h.session(c, sp)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, wizardResp(id, sess))
}

// CancelWizard handles DELETE /v1/sponsor/bookings/wizard/:id.  An
// abandoned wizard holds nothing in the database, so cancelling it
// only releases the in-memory session.
func (h *SponsorHandler) CancelWizard(c echo.Context) error {
	sp, err := h.sponsorProfile(c)
	if err != nil {
		return err
	}
	id, _, err := h.session(c, sp)
	if err != nil {
		return err
	}
	h.Wizards.Close(id)
	return c.NoContent(http.StatusNoContent)
}

type selectSlotReq struct {
	Date string `json:"date"` // YYYY-MM-DD, a bookable week start
}

// SelectSlot handles POST /v1/sponsor/bookings/wizard/:id/slot.  The
// chosen week must be currently bookable; the listing price is captured
// into the session here and never recomputed.
func (h *SponsorHandler) SelectSlot(c echo.Context) error {
	sp, err := h.sponsorProfile(c)
	if err != nil {
		return err
	}
	id, sess, err := h.session(c, sp)
	if err != nil {
		return err
	}
	var req selectSlotReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	date, err := time.Parse("2006-01-02", strings.TrimSpace(req.Date))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "date must be YYYY-MM-DD"})
	}
	w, err := h.Writers.GetByID(c.Request().Context(), sess.WriterID())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	slots, err := h.bookableSlots(c, w)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "availability lookup failed"})
	}
	want := schedule.WeekStart(date)
	var picked *schedule.Slot
	for i := range slots {
		if slots[i].Date.Equal(want) {
			picked = &slots[i]
			break
		}
	}
	if picked == nil || !picked.Available() {
		return c.JSON(http.StatusConflict, echo.Map{"error": "week is not bookable"})
	}
	if err := sess.SelectSlot(picked.Date, picked.PriceCents); err != nil {
		return wizardErr(c, err)
	}
	return c.JSON(http.StatusOK, wizardResp(id, sess))
}

type creativeReq struct {
	Headline string  `json:"headline"`
	Copy     string  `json:"copy"`
	CTAText  *string `json:"cta_text"`
	ClickURL string  `json:"click_url"`
	ImageURL *string `json:"image_url"`
	ImageAlt *string `json:"image_alt"`
}

// SubmitCreative handles POST /v1/sponsor/bookings/wizard/:id/creative.
func (h *SponsorHandler) SubmitCreative(c echo.Context) error {
	sp, err := h.sponsorProfile(c)
	if err != nil {
		return err
	}
	id, sess, err := h.session(c, sp)
	if err != nil {
		return err
	}
	var req creativeReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	cr := model.AdCreative{
		Headline: req.Headline,
		Copy:     req.Copy,
		CTAText:  req.CTAText,
		ClickURL: req.ClickURL,
		ImageURL: req.ImageURL,
		ImageAlt: req.ImageAlt,
	}
	if err := sess.SubmitCreative(cr); err != nil {
		return wizardErr(c, err)
	}
	return c.JSON(http.StatusOK, wizardResp(id, sess))
}

// Back handles POST /v1/sponsor/bookings/wizard/:id/back.  Data entered
// on later steps is preserved.
func (h *SponsorHandler) Back(c echo.Context) error {
	sp, err := h.sponsorProfile(c)
	if err != nil {
		return err
	}
	id, sess, err := h.session(c, sp)
	if err != nil {
		return err
	}
	if err := sess.Back(); err != nil {
		return wizardErr(c, err)
	}
	return c.JSON(http.StatusOK, wizardResp(id, sess))
}

// Checkout handles POST /v1/sponsor/bookings/wizard/:id/checkout.  The
// booking is created with an in-transaction availability re-check (409
// when the week filled up since browsing), then a hosted checkout is
// opened with the provider.  The payment itself completes through the
// webhook.
func (h *SponsorHandler) Checkout(c echo.Context) error {
	sp, err := h.sponsorProfile(c)
	if err != nil {
		return err
	}
	id, sess, err := h.session(c, sp)
	if err != nil {
		return err
	}
	// Claim the payment step up front so concurrent checkout calls on
	// the same session cannot each open a live checkout.  The claim is
	// released on any failure path so the sponsor can retry.
	if err := sess.BeginPayment(); err != nil {
		return wizardErr(c, err)
	}
	claimed := true
	defer func() {
		if claimed {
			sess.AbortPayment()
		}
	}()
	if sp.BillingEmail == nil || *sp.BillingEmail == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "billing_email required before checkout"})
	}
	if !h.Payments.Configured() {
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "payments are not configured"})
	}

	w, err := h.Writers.GetByID(c.Request().Context(), sess.WriterID())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	slotDate, priceCents, _ := sess.Slot()
	creative, _ := sess.Creative()
	// The slot was validated on selection, but a session can sit idle
	// long enough for the lead-time window to close.
	if slotDate.Before(schedule.EarliestBookable(time.Now().UTC(), w.LeadTimeDays)) {
		return c.JSON(http.StatusConflict, echo.Map{"error": "lead time for the selected week has passed"})
	}

	fee, payout := pricing.SplitFee(priceCents, w.PlatformFeeBps)
	b := model.Booking{
		Ref:              uuid.NewString(),
		WriterID:         w.ID,
		SponsorID:        sp.ID,
		SlotDate:         slotDate,
		Creative:         creative,
		Status:           model.StatusPendingPayment,
		AmountCents:      priceCents,
		PlatformFeeCents: fee,
		PayoutCents:      payout,
		Currency:         w.Currency,
	}
	if err := h.Bookings.CreateWithAvailabilityCheck(c.Request().Context(), &b, w.SlotsPerWeek); err != nil {
		if errors.Is(err, repository.ErrSlotUnavailable) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "week is no longer available"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create booking failed"})
	}

	checkout, err := h.Payments.CreateCheckout(c.Request().Context(), payment.CheckoutParams{
		BookingRef:     b.Ref,
		WriterID:       w.ID,
		SponsorID:      sp.ID,
		SponsorEmail:   *sp.BillingEmail,
		NewsletterName: w.NewsletterName,
		SlotDate:       schedule.DateKey(b.SlotDate),
		AmountCents:    b.AmountCents,
		SuccessURL:     h.Cfg.CheckoutSuccessURL,
	})
	if err != nil {
		// Release the held week so the sponsor can retry.
		_, _ = h.Bookings.Transition(c.Request().Context(), b.ID, model.StatusCancelled, nil, nil)
		return c.JSON(http.StatusBadGateway, echo.Map{"error": "checkout creation failed"})
	}

	if err := sess.CompletePayment(); err != nil {
		return wizardErr(c, err)
	}
	claimed = false
	resp := wizardResp(id, sess)
	resp["booking_ref"] = b.Ref
	resp["checkout_url"] = checkout.CheckoutURL
	resp["amount_cents"] = b.AmountCents
	return c.JSON(http.StatusCreated, resp)
}

// bookingSponsorResp renders a booking the way the sponsor campaign
// screens show it, with the sponsor-side status projection.
func bookingSponsorResp(d repository.BookingDetail, now time.Time) echo.Map {
	b := d.Booking
	resp := echo.Map{
		"ref":          b.Ref,
		"newsletter":   d.NewsletterName,
		"slot_date":    schedule.DateKey(b.SlotDate),
		"status":       b.Status.SponsorView(b.SlotDate, now),
		"amount_cents": b.AmountCents,
		"currency":     b.Currency,
		"created_at":   b.CreatedAt,
	}
	if b.RejectReason != nil {
		resp["reject_reason"] = *b.RejectReason
	}
	return resp
}

// ListCampaigns handles GET /v1/sponsor/bookings.
func (h *SponsorHandler) ListCampaigns(c echo.Context) error {
	sp, err := h.sponsorProfile(c)
	if err != nil {
		return err
	}
	details, err := h.Bookings.ListBySponsor(c.Request().Context(), sp.ID, listOptions(c))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	now := time.Now().UTC()
	out := make([]echo.Map, 0, len(details))
	for _, d := range details {
		out = append(out, bookingSponsorResp(d, now))
	}
	return c.JSON(http.StatusOK, echo.Map{"bookings": out})
}

// UpdateCreative handles PATCH /v1/sponsor/bookings/:ref/creative.  The
// ad content of a booking can be revised until the writer reviews it.
func (h *SponsorHandler) UpdateCreative(c echo.Context) error {
	sp, err := h.sponsorProfile(c)
	if err != nil {
		return err
	}
	ref := strings.TrimSpace(c.Param("ref"))
	b, err := h.Bookings.GetByRef(c.Request().Context(), ref)
	if err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
	}
	if b.SponsorID != sp.ID {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}
	var req creativeReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	cr, err := validation.ValidateCreative(model.AdCreative{
		Headline: req.Headline,
		Copy:     req.Copy,
		CTAText:  req.CTAText,
		ClickURL: req.ClickURL,
		ImageURL: req.ImageURL,
		ImageAlt: req.ImageAlt,
	})
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	if err := h.Bookings.UpdateCreative(c.Request().Context(), b.ID, sp.ID, cr); err != nil {
		switch {
		case errors.Is(err, repository.ErrForbidden):
			return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
		case errors.Is(err, repository.ErrInvalidTransition):
			return c.JSON(http.StatusConflict, echo.Map{"error": "creative can no longer be edited"})
		default:
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
		}
	}
	return c.JSON(http.StatusOK, echo.Map{"ref": b.Ref, "status": "updated"})
}

// GetCampaign handles GET /v1/sponsor/bookings/:ref.
func (h *SponsorHandler) GetCampaign(c echo.Context) error {
	sp, err := h.sponsorProfile(c)
	if err != nil {
		return err
	}
	ref := strings.TrimSpace(c.Param("ref"))
	b, err := h.Bookings.GetByRef(c.Request().Context(), ref)
	if err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
	}
	if b.SponsorID != sp.ID {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}
	now := time.Now().UTC()
	resp := echo.Map{
		"ref":          b.Ref,
		"slot_date":    schedule.DateKey(b.SlotDate),
		"status":       b.Status.SponsorView(b.SlotDate, now),
		"amount_cents": b.AmountCents,
		"currency":     b.Currency,
		"created_at":   b.CreatedAt,
		"creative": echo.Map{
			"headline":  b.Creative.Headline,
			"copy":      b.Creative.Copy,
			"click_url": b.Creative.ClickURL,
		},
	}
	if b.RejectReason != nil {
		resp["reject_reason"] = *b.RejectReason
	}
	return c.JSON(http.StatusOK, resp)
}
