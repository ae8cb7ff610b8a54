package model

import (
    "testing"
    "time"
)

func TestBookingStatusTransitions(t *testing.T) {
    cases := []struct {
        from, to BookingStatus
        ok       bool
    }{
        {StatusPendingPayment, StatusPaid, true},
        {StatusPendingPayment, StatusCancelled, true},
        {StatusPendingPayment, StatusApproved, false},
        {StatusPaid, StatusApproved, true},
        {StatusPaid, StatusRejected, true},
        {StatusPaid, StatusPublished, false},
        {StatusApproved, StatusPublished, true},
        {StatusApproved, StatusRejected, true},
        {StatusApproved, StatusRefunded, true},
        {StatusPublished, StatusRefunded, true},
        {StatusPublished, StatusRejected, false},
        {StatusRejected, StatusPaid, false},
        {StatusRefunded, StatusPaid, false},
    }
    for _, tc := range cases {
        if got := tc.from.CanTransition(tc.to); got != tc.ok {
            t.Errorf("%s -> %s: got %v, want %v", tc.from, tc.to, got, tc.ok)
        }
    }
}

func TestTerminalStatuses(t *testing.T) {
    for _, s := range []BookingStatus{StatusRejected, StatusCancelled, StatusRefunded} {
        if !s.Terminal() {
            t.Errorf("%s should be terminal", s)
        }
    }
    // A published booking can still be refunded by a chargeback, so it
    // is not terminal.
    for _, s := range []BookingStatus{StatusPendingPayment, StatusPaid, StatusApproved, StatusPublished} {
        if s.Terminal() {
            t.Errorf("%s should not be terminal", s)
        }
    }
}

func TestWriterViewProjection(t *testing.T) {
    cases := map[BookingStatus]string{
        StatusPendingPayment: "pending",
        StatusPaid:           "pending",
        StatusApproved:       "approved",
        StatusPublished:      "published",
        StatusRejected:       "rejected",
        StatusRefunded:       "rejected",
    }
    for s, want := range cases {
        if got := s.WriterView(); got != want {
            t.Errorf("WriterView(%s) = %q, want %q", s, got, want)
        }
    }
}

func TestSponsorViewProjection(t *testing.T) {
    now := time.Date(2026, 3, 16, 12, 0, 0, 0, time.UTC)
    future := now.AddDate(0, 0, 14)
    past := now.AddDate(0, 0, -14)

    if got := StatusPendingPayment.SponsorView(future, now); got != "draft" {
        t.Errorf("pending_payment = %q, want draft", got)
    }
    if got := StatusPaid.SponsorView(future, now); got != "scheduled" {
        t.Errorf("paid = %q, want scheduled", got)
    }
    if got := StatusApproved.SponsorView(future, now); got != "scheduled" {
        t.Errorf("approved = %q, want scheduled", got)
    }
    if got := StatusPublished.SponsorView(future, now); got != "active" {
        t.Errorf("published/future = %q, want active", got)
    }
    if got := StatusPublished.SponsorView(past, now); got != "completed" {
        t.Errorf("published/past = %q, want completed", got)
    }
    if got := StatusRejected.SponsorView(future, now); got != "rejected" {
        t.Errorf("rejected = %q, want rejected", got)
    }
}
