package model

import "time"

// PayoutStatus tracks the lifecycle of a withdrawal request.
type PayoutStatus string

const (
    PayoutPending    PayoutStatus = "pending"    // requested, not yet picked up
    PayoutProcessing PayoutStatus = "processing" // handed to the payment rail
    PayoutPaid       PayoutStatus = "paid"       // funds delivered
    PayoutFailed     PayoutStatus = "failed"     // delivery failed, reason recorded
)

// Payout is a writer's withdrawal request against accumulated earnings,
// stored in the `payouts` table.  The amount is always derived from the
// published bookings rolled into the payout, never client-supplied, so a
// request can never exceed the available balance.  A failed payout must
// carry a failure reason for the writer.
//
// Fields:
//  ID            – primary key identifier.
//  Ref           – public UUID reference passed to the payment rail.
//  WriterID      – writer withdrawing earnings.
//  AmountCents   – sum of payout portions of the covered bookings.
//  Currency      – ISO currency code.
//  Status        – payout lifecycle state.
//  FailureReason – reason recorded when Status is failed (nullable).
//  CreatedAt     – creation timestamp.
//  PaidAt        – when the payout was delivered (nullable).
//  FailedAt      – when the payout failed (nullable).
type Payout struct {
    ID            uint64       // payouts.id
    Ref           string       // payouts.ref (UUID)
    WriterID      uint64       // payouts.writer_id
    AmountCents   uint64       // payouts.amount_cents
    Currency      string       // payouts.currency
    Status        PayoutStatus // payouts.status
    FailureReason *string      // payouts.failure_reason (nullable)
    CreatedAt     time.Time    // payouts.created_at
    PaidAt        *time.Time   // payouts.paid_at (nullable)
    FailedAt      *time.Time   // payouts.failed_at (nullable)
}
