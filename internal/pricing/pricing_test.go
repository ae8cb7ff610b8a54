package pricing

import "testing"

func TestMonthlyPotentialZeroOnUnconfigured(t *testing.T) {
    for _, n := range []int64{0, 1, 2, 100} {
        if got := MonthlyPotential(0, n); got != 0 {
            t.Errorf("MonthlyPotential(0, %d) = %d, want 0", n, got)
        }
    }
    for _, p := range []int64{0, 100, 25000} {
        if got := MonthlyPotential(p, 0); got != 0 {
            t.Errorf("MonthlyPotential(%d, 0) = %d, want 0", p, got)
        }
    }
    if got := MonthlyPotential(-500, 2); got != 0 {
        t.Errorf("negative price = %d, want 0", got)
    }
}

func TestMonthlyPotential(t *testing.T) {
    // 250 per slot, 2 slots per week -> 2000 per month.
    if got := MonthlyPotential(250, 2); got != 2000 {
        t.Errorf("MonthlyPotential(250, 2) = %d, want 2000", got)
    }
    if got := MonthlyPotential(25000, 1); got != 100000 {
        t.Errorf("MonthlyPotential(25000, 1) = %d, want 100000", got)
    }
}

func TestSplitFee(t *testing.T) {
    cases := []struct {
        amount, bps  uint32
        fee, payout  uint32
    }{
        {10000, 1000, 1000, 9000}, // 10% of $100
        {25000, 1500, 3750, 21250},
        {999, 1000, 99, 900}, // truncation favors the writer
        {1, 1000, 0, 1},
        {10000, 0, 0, 10000},
    }
    for _, tc := range cases {
        fee, payout := SplitFee(tc.amount, tc.bps)
        if fee != tc.fee || payout != tc.payout {
            t.Errorf("SplitFee(%d, %d) = (%d, %d), want (%d, %d)",
                tc.amount, tc.bps, fee, payout, tc.fee, tc.payout)
        }
        if fee+payout != tc.amount {
            t.Errorf("SplitFee(%d, %d) does not conserve the amount", tc.amount, tc.bps)
        }
    }
}
