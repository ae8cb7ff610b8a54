// Package queue defines message payloads exchanged over the message broker.
package queue

// Queue names.  Each event type has its own durable queue.
const (
	BookingPaidQueue     = "booking.paid"
	BookingReviewedQueue = "booking.reviewed"
	PayoutRequestedQueue = "payout.requested"
)

// BookingPaidEvent is published when the payment webhook confirms an
// order.  It carries enough for downstream consumers to notify the
// writer and feed analytics without querying the primary database.
type BookingPaidEvent struct {
	BookingRef     string `json:"booking_ref"`
	WriterID       uint64 `json:"writer_id"`
	WriterUserID   uint64 `json:"writer_user_id"`
	SponsorID      uint64 `json:"sponsor_id"`
	SponsorUserID  uint64 `json:"sponsor_user_id"`
	NewsletterName string `json:"newsletter_name"`
	CompanyName    string `json:"company_name"`
	SlotDate       string `json:"slot_date"`
	AmountCents    uint32 `json:"amount_cents"`
	AutoApproved   bool   `json:"auto_approved"`
	PaidAt         string `json:"paid_at"`
}

// BookingReviewedEvent is published when a writer approves or rejects a
// paid booking, or marks an approved one as published.
type BookingReviewedEvent struct {
	BookingRef     string `json:"booking_ref"`
	SponsorUserID  uint64 `json:"sponsor_user_id"`
	NewsletterName string `json:"newsletter_name"`
	SlotDate       string `json:"slot_date"`
	Outcome        string `json:"outcome"` // approved | rejected | published
	RejectReason   string `json:"reject_reason,omitempty"`
	ReviewedAt     string `json:"reviewed_at"`
}

// PayoutRequestedEvent is published when a writer requests a payout so
// the payment rail integration can pick it up.
type PayoutRequestedEvent struct {
	PayoutRef    string `json:"payout_ref"`
	WriterID     uint64 `json:"writer_id"`
	WriterUserID uint64 `json:"writer_user_id"`
	AmountCents  uint64 `json:"amount_cents"`
	Currency     string `json:"currency"`
	RequestedAt  string `json:"requested_at"`
}
