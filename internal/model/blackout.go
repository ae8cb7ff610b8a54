package model

import "time"

// BlackoutDate marks an issue week a writer will not sell, regardless of
// remaining capacity.  Rows live in the `blackout_dates` table and are
// looked up by the availability engine when deriving bookable slots.
//
// Fields:
//  ID          – primary key identifier.
//  WriterID    – owning writer profile.
//  BlockedDate – the Monday of the blocked issue week (UTC date).
//  Reason      – optional note shown in the writer's schedule.
//  CreatedAt   – creation timestamp.
type BlackoutDate struct {
    ID          uint64    // blackout_dates.id
    WriterID    uint64    // blackout_dates.writer_id
    BlockedDate time.Time // blackout_dates.blocked_date (DATE)
    Reason      *string   // blackout_dates.reason (nullable)
    CreatedAt   time.Time // blackout_dates.created_at
}
