package model

import "time"

// BookingStatus is the canonical lifecycle state of a booking.  There is
// one state machine shared by both sides of the marketplace; the writer
// and sponsor dashboards each render a projection of it (see WriterView
// and SponsorView) instead of maintaining their own vocabularies.
type BookingStatus string

const (
    StatusPendingPayment BookingStatus = "pending_payment" // checkout created, not yet paid
    StatusPaid           BookingStatus = "paid"            // payment captured, awaiting review
    StatusApproved       BookingStatus = "approved"        // writer accepted the creative
    StatusPublished      BookingStatus = "published"       // ad ran in the issue
    StatusRejected       BookingStatus = "rejected"        // writer declined, refund issued
    StatusCancelled      BookingStatus = "cancelled"       // abandoned before payment
    StatusRefunded       BookingStatus = "refunded"        // provider-initiated refund
)

// transitions lists the permitted successor states for each status.
// Terminal states map to an empty set.  Bookings are never hard-deleted;
// every outcome is expressed as a transition.
var transitions = map[BookingStatus][]BookingStatus{
    StatusPendingPayment: {StatusPaid, StatusCancelled},
    StatusPaid:           {StatusApproved, StatusRejected, StatusRefunded},
    StatusApproved:       {StatusPublished, StatusRejected, StatusRefunded},
    StatusPublished:      {StatusRefunded},
    StatusRejected:       {},
    StatusCancelled:      {},
    StatusRefunded:       {},
}

// CanTransition reports whether moving from s to next is a legal step of
// the booking state machine.
func (s BookingStatus) CanTransition(next BookingStatus) bool {
    for _, t := range transitions[s] {
        if t == next {
            return true
        }
    }
    return false
}

// Terminal reports whether the status admits no further transitions.
func (s BookingStatus) Terminal() bool { return len(transitions[s]) == 0 }

// WriterView projects the canonical status onto the vocabulary shown in
// the writer dashboard: pending, approved, published, rejected.
func (s BookingStatus) WriterView() string {
    switch s {
    case StatusPendingPayment, StatusPaid:
        return "pending"
    case StatusApproved:
        return "approved"
    case StatusPublished:
        return "published"
    default:
        return "rejected"
    }
}

// SponsorView projects the canonical status onto the vocabulary shown in
// the sponsor campaign screens: draft, scheduled, active, completed,
// rejected.  A published booking whose slot date has passed relative to
// now is reported as completed.
func (s BookingStatus) SponsorView(slotDate, now time.Time) string {
    switch s {
    case StatusPendingPayment:
        return "draft"
    case StatusPaid, StatusApproved:
        return "scheduled"
    case StatusPublished:
        if slotDate.Before(now.Truncate(24 * time.Hour)) {
            return "completed"
        }
        return "active"
    default:
        return "rejected"
    }
}

// AdCreative holds the sponsor-supplied ad content carried by a booking.
// Copy is limited to 280 characters; the optional headline and CTA text
// have their own limits enforced by the validation package.
type AdCreative struct {
    Headline string  // bookings.ad_headline (optional, <=100 chars)
    Copy     string  // bookings.ad_copy (required, <=280 chars)
    CTAText  *string // bookings.ad_cta_text (nullable, <=50 chars)
    ClickURL string  // bookings.ad_click_url
    ImageURL *string // bookings.ad_image_url (nullable)
    ImageAlt *string // bookings.ad_image_alt (nullable)
}

// Booking records a sponsor's commitment to a weekly slot of a writer's
// newsletter.  It corresponds to a row in the `bookings` table.  The
// price is captured from the writer profile at creation time and never
// recomputed; the fee split is stored alongside so payout accounting
// does not depend on the writer's current fee setting.
//
// Fields:
//  ID               – primary key identifier.
//  Ref              – public UUID reference used in checkout metadata.
//  WriterID         – writer whose slot is booked.
//  SponsorID        – sponsor who booked it.
//  SlotDate         – the Monday of the booked issue week (UTC date).
//  Creative         – submitted ad content.
//  Status           – canonical lifecycle state.
//  AmountCents      – gross price captured at creation.
//  PlatformFeeCents – platform commission portion of the amount.
//  PayoutCents      – writer's portion (amount minus fee).
//  Currency         – ISO currency code.
//  RejectReason     – reason recorded on rejection (nullable elsewhere).
//  ProviderOrderID  – payment provider order reference (nullable).
//  CreatedAt        – creation timestamp.
//  PaidAt           – when the payment webhook confirmed the order.
//  ReviewedAt       – when the writer approved or rejected.
//  PublishedAt      – when the writer marked the ad as published.
type Booking struct {
    ID               uint64        // bookings.id
    Ref              string        // bookings.ref (UUID)
    WriterID         uint64        // bookings.writer_id
    SponsorID        uint64        // bookings.sponsor_id
    SlotDate         time.Time     // bookings.slot_date (DATE)
    Creative         AdCreative    // ad_* columns
    Status           BookingStatus // bookings.status
    AmountCents      uint32        // bookings.amount_cents
    PlatformFeeCents uint32        // bookings.platform_fee_cents
    PayoutCents      uint32        // bookings.payout_cents
    Currency         string        // bookings.currency
    RejectReason     *string       // bookings.reject_reason (nullable)
    ProviderOrderID  *string       // bookings.provider_order_id (nullable)
    CreatedAt        time.Time     // bookings.created_at
    PaidAt           *time.Time    // bookings.paid_at (nullable)
    ReviewedAt       *time.Time    // bookings.reviewed_at (nullable)
    PublishedAt      *time.Time    // bookings.published_at (nullable)
}
