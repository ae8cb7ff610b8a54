// Package pricing holds the money arithmetic of the marketplace.  All
// amounts are integer cents; percentages are basis points.  Fee splits
// truncate the platform portion toward zero so the remainder always
// lands on the writer's side.
package pricing

// MonthlyPotential returns the revenue a writer can earn in a month of
// four issue weeks at the given price per slot.  Non-positive inputs
// mean the profile is not yet configured and yield zero rather than an
// error.
func MonthlyPotential(priceCents int64, slotsPerWeek int64) int64 {
    if priceCents <= 0 || slotsPerWeek <= 0 {
        return 0
    }
    return priceCents * slotsPerWeek * 4
}

// SplitFee divides a gross amount into the platform fee and the writer
// payout.  feeBps is the platform commission in basis points; the fee is
// truncated toward zero and the writer receives the remainder, so
// fee+payout always equals the gross amount.
func SplitFee(amountCents uint32, feeBps uint32) (fee uint32, payout uint32) {
    fee = uint32(uint64(amountCents) * uint64(feeBps) / 10000)
    return fee, amountCents - fee
}
