// Package market implements the marketplace browse engine: filtering,
// sorting and pagination over newsletter listings.  The engine is a pure
// function over in-memory records so handlers can apply it to whatever
// slice the repository returned; all predicates are AND-combined and the
// sort is stable so ties keep their original order.
package market

import (
    "sort"
    "strings"
    "time"
)

// Listing is the browse-facing projection of a writer profile.
type Listing struct {
    ID             uint64     `json:"id"`
    Name           string     `json:"name"`
    Description    string     `json:"description"`
    Category       string     `json:"category"`
    Subscribers    uint32     `json:"subscribers"`
    OpenRateBps    uint32     `json:"open_rate_bps"`
    ClickRateBps   uint32     `json:"click_rate_bps"`
    PriceCents     uint32     `json:"price_cents"`
    Currency       string     `json:"currency"`
    AvailableSlots uint32     `json:"available_slots"`
    NextAvailable  *time.Time `json:"next_available,omitempty"`
    Featured       bool       `json:"featured"`
}

// Criteria holds the filter inputs.  Zero values disable a predicate:
// empty Search matches everything, empty or "all" Category matches every
// category, a zero MaxSubscribers / MaxPriceCents means unbounded above.
type Criteria struct {
    Search         string
    Category       string
    MinSubscribers uint32
    MaxSubscribers uint32
    MinPriceCents  uint32
    MaxPriceCents  uint32
    AvailableOnly  bool
}

// Matches reports whether the listing satisfies every active predicate.
// A listing with no available slots is unbookable and never matches when
// AvailableOnly is set.
func (c Criteria) Matches(l Listing) bool {
    if s := strings.TrimSpace(strings.ToLower(c.Search)); s != "" {
        name := strings.ToLower(l.Name)
        desc := strings.ToLower(l.Description)
        if !strings.Contains(name, s) && !strings.Contains(desc, s) {
            return false
        }
    }
    if cat := strings.ToLower(c.Category); cat != "" && cat != "all" {
        if !strings.EqualFold(l.Category, cat) {
            return false
        }
    }
    if l.Subscribers < c.MinSubscribers {
        return false
    }
    if c.MaxSubscribers > 0 && l.Subscribers > c.MaxSubscribers {
        return false
    }
    if l.PriceCents < c.MinPriceCents {
        return false
    }
    if c.MaxPriceCents > 0 && l.PriceCents > c.MaxPriceCents {
        return false
    }
    if c.AvailableOnly && l.AvailableSlots == 0 {
        return false
    }
    return true
}

// SortKey selects the listing ordering.
type SortKey string

const (
    SortRecommended SortKey = "recommended" // featured first, then subscribers desc
    SortPriceLow    SortKey = "price-low"   // ascending price
    SortSubscribers SortKey = "subscribers" // descending subscriber count
    SortOpenRate    SortKey = "open-rate"   // descending open rate
)

// ParseSortKey maps a query parameter onto a SortKey, falling back to
// the recommended ordering for unknown values.
func ParseSortKey(s string) SortKey {
    switch SortKey(strings.ToLower(strings.TrimSpace(s))) {
    case SortPriceLow:
        return SortPriceLow
    case SortSubscribers:
        return SortSubscribers
    case SortOpenRate:
        return SortOpenRate
    default:
        return SortRecommended
    }
}

// FilterAndSort returns the listings matching the criteria, ordered by
// the sort key.  The input slice is not modified.
func FilterAndSort(listings []Listing, c Criteria, key SortKey) []Listing {
    out := make([]Listing, 0, len(listings))
    for _, l := range listings {
        if c.Matches(l) {
            out = append(out, l)
        }
    }
    switch key {
    case SortPriceLow:
        sort.SliceStable(out, func(i, j int) bool { return out[i].PriceCents < out[j].PriceCents })
    case SortSubscribers:
        sort.SliceStable(out, func(i, j int) bool { return out[i].Subscribers > out[j].Subscribers })
    case SortOpenRate:
        sort.SliceStable(out, func(i, j int) bool { return out[i].OpenRateBps > out[j].OpenRateBps })
    default: // recommended
        sort.SliceStable(out, func(i, j int) bool {
            if out[i].Featured != out[j].Featured {
                return out[i].Featured
            }
            return out[i].Subscribers > out[j].Subscribers
        })
    }
    return out
}

// Paginate slices one fixed-size page out of the filtered results.
// Pages are 1-based; out-of-range pages yield an empty slice.  The
// returned total is the page count for the full result set.
func Paginate(items []Listing, page, pageSize int) (pageItems []Listing, totalPages int) {
    if pageSize <= 0 {
        return []Listing{}, 0
    }
    totalPages = (len(items) + pageSize - 1) / pageSize
    if page < 1 || page > totalPages {
        return []Listing{}, totalPages
    }
    start := (page - 1) * pageSize
    end := start + pageSize
    if end > len(items) {
        end = len(items)
    }
    return items[start:end], totalPages
}

// Browser tracks a browse session's criteria, sort and current page.
// Changing any filter resets the page to 1 so the viewer never lands on
// a page that no longer exists for the narrowed result set.
type Browser struct {
    criteria Criteria
    sortKey  SortKey
    page     int
    pageSize int
}

// NewBrowser returns a Browser on page 1 with the given page size.
func NewBrowser(pageSize int) *Browser {
    return &Browser{sortKey: SortRecommended, page: 1, pageSize: pageSize}
}

// SetCriteria replaces the filter criteria and resets to page 1 when the
// criteria actually changed.
func (b *Browser) SetCriteria(c Criteria) {
    if c != b.criteria {
        b.page = 1
    }
    b.criteria = c
}

// SetSort replaces the ordering.  Sorting does not invalidate the page
// count, so the current page is kept.
func (b *Browser) SetSort(key SortKey) { b.sortKey = key }

// SetPage moves to the given 1-based page.
func (b *Browser) SetPage(page int) {
    if page < 1 {
        page = 1
    }
    b.page = page
}

// Page returns the current page number.
func (b *Browser) Page() int { return b.page }

// View applies the session's criteria, sort and page to the listings.
func (b *Browser) View(listings []Listing) (pageItems []Listing, totalPages int) {
    filtered := FilterAndSort(listings, b.criteria, b.sortKey)
    return Paginate(filtered, b.page, b.pageSize)
}
