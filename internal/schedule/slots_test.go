package schedule

import (
    "testing"
    "time"
)

func TestGenerateSlotsCountAndOrdering(t *testing.T) {
    ref := time.Date(2026, 4, 8, 15, 30, 0, 0, time.UTC) // a Wednesday
    for _, count := range []int{1, 4, 12, 26} {
        slots := GenerateSlots(ref, 1, count, 25000)
        if len(slots) != count {
            t.Fatalf("count=%d: got %d slots", count, len(slots))
        }
        for i, s := range slots {
            if s.PriceCents != 25000 {
                t.Errorf("slot %d price = %d, want 25000", i, s.PriceCents)
            }
            if i > 0 {
                diff := s.Date.Sub(slots[i-1].Date)
                if diff != 7*24*time.Hour {
                    t.Errorf("slot %d is %v after previous, want one week", i, diff)
                }
                if !slots[i-1].Date.Before(s.Date) {
                    t.Errorf("slot dates not strictly increasing at %d", i)
                }
            }
        }
    }
}

func TestGenerateSlotsCadence(t *testing.T) {
    ref := time.Date(2026, 4, 6, 0, 0, 0, 0, time.UTC) // a Monday
    slots := GenerateSlots(ref, 2, 5, 100)
    for i := 1; i < len(slots); i++ {
        if diff := slots[i].Date.Sub(slots[i-1].Date); diff != 14*24*time.Hour {
            t.Errorf("cadence 2: gap %v, want two weeks", diff)
        }
    }
}

func TestGenerateSlotsDegenerateInputs(t *testing.T) {
    ref := time.Now()
    if got := GenerateSlots(ref, 1, 0, 100); len(got) != 0 {
        t.Errorf("count=0: got %d slots", len(got))
    }
    if got := GenerateSlots(ref, 0, 12, 100); len(got) != 0 {
        t.Errorf("cadence=0: got %d slots", len(got))
    }
}

func TestWeekStartNormalization(t *testing.T) {
    monday := time.Date(2026, 4, 6, 0, 0, 0, 0, time.UTC)
    cases := []time.Time{
        monday,
        monday.Add(5 * time.Hour),
        time.Date(2026, 4, 8, 23, 59, 0, 0, time.UTC), // Wednesday
        time.Date(2026, 4, 12, 1, 0, 0, 0, time.UTC),  // Sunday
    }
    for _, in := range cases {
        if got := WeekStart(in); !got.Equal(monday) {
            t.Errorf("WeekStart(%v) = %v, want %v", in, got, monday)
        }
    }
}

func TestResolveStates(t *testing.T) {
    ref := time.Date(2026, 4, 6, 0, 0, 0, 0, time.UTC)
    slots := GenerateSlots(ref, 1, 4, 5000)

    facts := WeekFacts{
        SlotsPerWeek: 2,
        Bookings: map[string][]string{
            DateKey(slots[1].Date): {"bk-1", "bk-2"}, // full week
            DateKey(slots[2].Date): {"bk-3"},         // partially sold
        },
        Blackouts: map[string]string{
            DateKey(slots[3].Date): "holiday issue",
        },
    }
    resolved := Resolve(slots, facts)

    if !resolved[0].Available() || resolved[0].Remaining != 2 {
        t.Errorf("slot 0: want available with 2 remaining, got %+v", resolved[0])
    }
    if resolved[1].State.Kind != KindBooked {
        t.Errorf("slot 1: want booked, got %+v", resolved[1].State)
    }
    if len(resolved[1].State.BookingRefs) != 2 {
        t.Errorf("slot 1: want 2 booking refs, got %v", resolved[1].State.BookingRefs)
    }
    if !resolved[2].Available() || resolved[2].Remaining != 1 {
        t.Errorf("slot 2: want available with 1 remaining, got %+v", resolved[2])
    }
    if resolved[3].State.Kind != KindBlackout || resolved[3].State.Reason != "holiday issue" {
        t.Errorf("slot 3: want blackout with reason, got %+v", resolved[3].State)
    }
}

func TestResolveBlackoutWinsOverBookings(t *testing.T) {
    ref := time.Date(2026, 4, 6, 0, 0, 0, 0, time.UTC)
    slots := GenerateSlots(ref, 1, 1, 5000)
    key := DateKey(slots[0].Date)
    resolved := Resolve(slots, WeekFacts{
        SlotsPerWeek: 1,
        Bookings:     map[string][]string{key: {"bk-1"}},
        Blackouts:    map[string]string{key: "migrating platforms"},
    })
    if resolved[0].State.Kind != KindBlackout {
        t.Fatalf("want blackout to win, got %+v", resolved[0].State)
    }
}

func TestResolveZeroCapacity(t *testing.T) {
    ref := time.Date(2026, 4, 6, 0, 0, 0, 0, time.UTC)
    slots := GenerateSlots(ref, 1, 2, 5000)
    resolved := Resolve(slots, WeekFacts{
        SlotsPerWeek: 0,
        Bookings:     map[string][]string{DateKey(slots[1].Date): {"bk-1"}},
    })
    for i, s := range resolved {
        if s.Available() {
            t.Errorf("slot %d: zero capacity must not resolve available, got %+v", i, s.State)
        }
        if s.Remaining != 0 {
            t.Errorf("slot %d: remaining = %d, want 0", i, s.Remaining)
        }
    }
}

func TestEarliestBookableRespectsLeadTime(t *testing.T) {
    now := time.Date(2026, 4, 8, 10, 0, 0, 0, time.UTC) // Wednesday
    got := EarliestBookable(now, 7)
    // now+7d = Wed Apr 15; its week starts Mon Apr 13 which is before the
    // minimum date, so the next week is the earliest bookable one.
    want := time.Date(2026, 4, 20, 0, 0, 0, 0, time.UTC)
    if !got.Equal(want) {
        t.Errorf("EarliestBookable = %v, want %v", got, want)
    }

    // A lead time landing exactly on a Monday keeps that week.
    now = time.Date(2026, 4, 6, 0, 0, 0, 0, time.UTC)
    got = EarliestBookable(now, 14)
    want = time.Date(2026, 4, 20, 0, 0, 0, 0, time.UTC)
    if !got.Equal(want) {
        t.Errorf("EarliestBookable on Monday = %v, want %v", got, want)
    }
}
