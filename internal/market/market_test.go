package market

import "testing"

func sampleListings() []Listing {
    return []Listing{
        {ID: 1, Name: "The Morning Byte", Description: "Daily tech digest", Category: "tech",
            Subscribers: 45000, OpenRateBps: 5200, PriceCents: 45000, AvailableSlots: 3, Featured: true},
        {ID: 2, Name: "Ledger Lines", Description: "Personal finance deep dives", Category: "finance",
            Subscribers: 8500, OpenRateBps: 6100, PriceCents: 15000, AvailableSlots: 2},
        {ID: 3, Name: "Startup Soup", Description: "Founders and funding", Category: "tech",
            Subscribers: 120000, OpenRateBps: 4300, PriceCents: 90000, AvailableSlots: 0, Featured: true},
        {ID: 4, Name: "Quiet Kitchen", Description: "Weeknight recipes", Category: "food",
            Subscribers: 15000, OpenRateBps: 7000, PriceCents: 12000, AvailableSlots: 1},
        {ID: 5, Name: "Byte-Sized Finance", Description: "Markets in five minutes", Category: "finance",
            Subscribers: 62000, OpenRateBps: 4800, PriceCents: 55000, AvailableSlots: 4},
    }
}

func TestFilterPredicatesAllSatisfied(t *testing.T) {
    listings := sampleListings()
    c := Criteria{
        Search:         "byte",
        MinSubscribers: 10000,
        MaxPriceCents:  60000,
        AvailableOnly:  true,
    }
    got := FilterAndSort(listings, c, SortRecommended)
    for _, l := range got {
        if !c.Matches(l) {
            t.Errorf("result %d does not satisfy the criteria", l.ID)
        }
    }
    // "byte" matches 1 and 5; both clear the other predicates.
    if len(got) != 2 {
        t.Fatalf("got %d results, want 2", len(got))
    }
}

func TestFilterIsIdempotent(t *testing.T) {
    listings := sampleListings()
    c := Criteria{Category: "finance", AvailableOnly: true}
    once := FilterAndSort(listings, c, SortPriceLow)
    twice := FilterAndSort(once, c, SortPriceLow)
    if len(once) != len(twice) {
        t.Fatalf("idempotence broken: %d then %d results", len(once), len(twice))
    }
    for i := range once {
        if once[i].ID != twice[i].ID {
            t.Errorf("position %d differs after refiltering", i)
        }
    }
}

func TestSearchIsCaseInsensitive(t *testing.T) {
    listings := sampleListings()
    upper := FilterAndSort(listings, Criteria{Search: "MORNING"}, SortRecommended)
    lower := FilterAndSort(listings, Criteria{Search: "morning"}, SortRecommended)
    if len(upper) != 1 || len(lower) != 1 || upper[0].ID != lower[0].ID {
        t.Errorf("case-insensitive search broken: %v vs %v", upper, lower)
    }
}

func TestCategoryWildcard(t *testing.T) {
    listings := sampleListings()
    if got := FilterAndSort(listings, Criteria{Category: "all"}, SortRecommended); len(got) != len(listings) {
        t.Errorf(`category "all": got %d, want %d`, len(got), len(listings))
    }
}

func TestZeroSlotsNeverAvailable(t *testing.T) {
    listings := sampleListings()
    got := FilterAndSort(listings, Criteria{AvailableOnly: true}, SortRecommended)
    for _, l := range got {
        if l.AvailableSlots == 0 {
            t.Errorf("listing %d has zero slots but passed the available filter", l.ID)
        }
    }
}

func TestRecommendedSortOrder(t *testing.T) {
    listings := []Listing{
        {ID: 1, PriceCents: 15000, Subscribers: 8500},
        {ID: 2, PriceCents: 45000, Subscribers: 45000, Featured: true},
    }
    got := FilterAndSort(listings, Criteria{}, SortRecommended)
    if got[0].Subscribers != 45000 || got[1].Subscribers != 8500 {
        t.Fatalf("recommended order wrong: %v", got)
    }

    // Featured listings come before every non-featured listing, and
    // subscriber counts are non-increasing within each group.
    full := FilterAndSort(sampleListings(), Criteria{}, SortRecommended)
    seenNonFeatured := false
    for i, l := range full {
        if !l.Featured {
            seenNonFeatured = true
        } else if seenNonFeatured {
            t.Fatalf("featured listing %d after non-featured at position %d", l.ID, i)
        }
        if i > 0 && full[i-1].Featured == l.Featured && full[i-1].Subscribers < l.Subscribers {
            t.Errorf("subscribers increase within group at position %d", i)
        }
    }
}

func TestPriceLowSort(t *testing.T) {
    got := FilterAndSort(sampleListings(), Criteria{}, SortPriceLow)
    for i := 1; i < len(got); i++ {
        if got[i-1].PriceCents > got[i].PriceCents {
            t.Fatalf("price not ascending at position %d", i)
        }
    }
}

func TestStableSortKeepsTies(t *testing.T) {
    listings := []Listing{
        {ID: 10, PriceCents: 5000},
        {ID: 11, PriceCents: 5000},
        {ID: 12, PriceCents: 5000},
    }
    got := FilterAndSort(listings, Criteria{}, SortPriceLow)
    for i, want := range []uint64{10, 11, 12} {
        if got[i].ID != want {
            t.Fatalf("tie order not preserved: %v", got)
        }
    }
}

func TestPagination(t *testing.T) {
    listings := sampleListings()
    page, total := Paginate(listings, 1, 2)
    if len(page) != 2 || total != 3 {
        t.Fatalf("page 1: len=%d total=%d", len(page), total)
    }
    page, _ = Paginate(listings, 3, 2)
    if len(page) != 1 {
        t.Fatalf("last page: len=%d, want 1", len(page))
    }
    page, _ = Paginate(listings, 4, 2)
    if len(page) != 0 {
        t.Fatalf("out-of-range page should be empty, got %d", len(page))
    }
}

func TestBrowserResetsPageOnFilterChange(t *testing.T) {
    b := NewBrowser(2)
    b.SetCriteria(Criteria{Category: "tech"})
    b.SetPage(2)
    if b.Page() != 2 {
        t.Fatalf("page = %d, want 2", b.Page())
    }
    // Same criteria again: page stays.
    b.SetCriteria(Criteria{Category: "tech"})
    if b.Page() != 2 {
        t.Fatalf("page reset on unchanged criteria")
    }
    // Changed criteria: back to page 1.
    b.SetCriteria(Criteria{Category: "finance"})
    if b.Page() != 1 {
        t.Fatalf("page = %d after filter change, want 1", b.Page())
    }
}

func TestParseSortKeyFallback(t *testing.T) {
    if got := ParseSortKey("price-low"); got != SortPriceLow {
        t.Errorf("price-low parsed as %q", got)
    }
    if got := ParseSortKey("bogus"); got != SortRecommended {
        t.Errorf("unknown key parsed as %q, want recommended", got)
    }
}
