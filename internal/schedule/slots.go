// Package schedule derives the bookable calendar weeks of a newsletter.
// Slot generation is a pure function over a reference date and cadence;
// the state of each slot (available, booked, blacked out) is resolved
// against real booking counts and writer-defined blackout dates rather
// than any positional rule.
package schedule

import "time"

// SlotKind enumerates the resolved states of a candidate week.
type SlotKind int

const (
    // KindAvailable means the week still has unsold capacity.
    KindAvailable SlotKind = iota
    // KindBooked means every slot of the week is already sold.
    KindBooked
    // KindBlackout means the writer blocked the week explicitly.
    KindBlackout
)

// SlotState is a tagged value describing why a week is or is not
// bookable.  BookingRefs is populated for booked weeks, Reason for
// blackout weeks.
type SlotState struct {
    Kind        SlotKind
    BookingRefs []string // refs of the bookings consuming the week
    Reason      string   // writer-supplied blackout reason
}

// Slot is one candidate issue week offered to sponsors.  The price is
// inherited from the writer profile at generation time and is not
// recomputed later (bookings capture it permanently on creation).
type Slot struct {
    Date       time.Time // week start, normalized UTC date
    PriceCents uint32
    Remaining  uint32 // unsold capacity for the week
    State      SlotState
}

// Available reports whether the slot can still be booked.
func (s Slot) Available() bool { return s.State.Kind == KindAvailable }

// WeekStart normalizes t to the Monday of its ISO week at midnight UTC.
// All slot and blackout dates are stored in this form so that equality
// comparisons work across sources.
func WeekStart(t time.Time) time.Time {
    t = t.UTC()
    wd := int(t.Weekday())
    if wd == 0 { // Sunday belongs to the preceding Monday
        wd = 7
    }
    day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
    return day.AddDate(0, 0, -(wd - 1))
}

// DateKey formats a normalized date for use as a map key.
func DateKey(t time.Time) string { return t.UTC().Format("2006-01-02") }

// GenerateSlots returns exactly count candidate slots starting from the
// week of the reference date, stepping cadenceWeeks weeks at a time.
// Dates are strictly increasing and every slot carries the same price.
// All slots start out available; callers resolve real availability with
// Resolve.  A non-positive count or cadence yields an empty slice.
func GenerateSlots(reference time.Time, cadenceWeeks, count int, priceCents uint32) []Slot {
    if count <= 0 || cadenceWeeks <= 0 {
        return []Slot{}
    }
    slots := make([]Slot, 0, count)
    start := WeekStart(reference)
    for i := 0; i < count; i++ {
        slots = append(slots, Slot{
            Date:       start.AddDate(0, 0, i*cadenceWeeks*7),
            PriceCents: priceCents,
            State:      SlotState{Kind: KindAvailable},
        })
    }
    return slots
}

// WeekFacts carries the per-writer availability inputs used to resolve
// slot states: selling capacity per week, booking refs per week keyed by
// DateKey, and blackout reasons keyed by DateKey.
type WeekFacts struct {
    SlotsPerWeek uint32
    Bookings     map[string][]string // date key -> refs of active bookings
    Blackouts    map[string]string   // date key -> blackout reason
}

// Resolve marks each generated slot with its real state.  A blackout
// always wins over bookings.  A week whose active bookings have consumed
// the writer's weekly capacity is booked; anything else stays available
// with the remaining capacity recorded.  The input slice is returned
// with states filled in.
func Resolve(slots []Slot, facts WeekFacts) []Slot {
    for i := range slots {
        key := DateKey(slots[i].Date)
        if reason, ok := facts.Blackouts[key]; ok {
            slots[i].State = SlotState{Kind: KindBlackout, Reason: reason}
            slots[i].Remaining = 0
            continue
        }
        refs := facts.Bookings[key]
        // Zero capacity resolves booked even with no bookings, so a
        // misconfigured writer never shows open weeks.
        if uint32(len(refs)) >= facts.SlotsPerWeek {
            slots[i].State = SlotState{Kind: KindBooked, BookingRefs: refs}
            slots[i].Remaining = 0
            continue
        }
        remaining := facts.SlotsPerWeek - uint32(len(refs))
        slots[i].State = SlotState{Kind: KindAvailable, BookingRefs: refs}
        slots[i].Remaining = remaining
    }
    return slots
}

// EarliestBookable returns the first week start a sponsor may book given
// the writer's lead time.  Weeks beginning before now+leadTimeDays are
// never offered.
func EarliestBookable(now time.Time, leadTimeDays uint32) time.Time {
    min := now.UTC().AddDate(0, 0, int(leadTimeDays))
    start := WeekStart(min)
    if start.Before(time.Date(min.Year(), min.Month(), min.Day(), 0, 0, 0, 0, time.UTC)) {
        start = start.AddDate(0, 0, 7)
    }
    return start
}
