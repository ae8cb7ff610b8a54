package model

import "time"

// Writer represents a newsletter writer's bookable advertising profile
// as stored in the `writers` table.  One user with the WRITER role owns
// exactly one profile.  The profile carries the audience statistics and
// pricing shown in the public marketplace as well as the scheduling
// parameters used by the availability engine.
//
// Fields:
//  ID              – primary key identifier.
//  UserID          – owning user.
//  NewsletterName  – display name of the newsletter (unique per platform).
//  NewsletterURL   – optional public URL of the newsletter.
//  Description     – optional marketplace description.
//  Category        – marketplace category (e.g. "tech", "finance").
//  SubscriberCount – self-reported subscriber count.
//  OpenRateBps     – open rate in basis points (0–10000).
//  ClickRateBps    – click rate in basis points (0–10000).
//  PriceCents      – price per weekly slot in cents, must be positive.
//  Currency        – ISO currency code, lowercase ("usd").
//  SlotsPerWeek    – number of ad slots sold per issue week.
//  LeadTimeDays    – minimum days between booking and slot date.
//  AutoApprove     – approve paid bookings without manual review.
//  PlatformFeeBps  – platform commission in basis points.
//  MinPayoutCents  – minimum balance required to request a payout.
//  Featured        – whether the listing is promoted in search results.
//  CreatedAt       – creation timestamp.
//  UpdatedAt       – last update timestamp.
type Writer struct {
    ID              uint64    // writers.id
    UserID          uint64    // writers.user_id
    NewsletterName  string    // writers.newsletter_name
    NewsletterURL   *string   // writers.newsletter_url (nullable)
    Description     *string   // writers.description (nullable)
    Category        string    // writers.category
    SubscriberCount uint32    // writers.subscriber_count
    OpenRateBps     uint32    // writers.open_rate_bps
    ClickRateBps    uint32    // writers.click_rate_bps
    PriceCents      uint32    // writers.price_cents
    Currency        string    // writers.currency
    SlotsPerWeek    uint32    // writers.slots_per_week
    LeadTimeDays    uint32    // writers.lead_time_days
    AutoApprove     bool      // writers.auto_approve
    PlatformFeeBps  uint32    // writers.platform_fee_bps
    MinPayoutCents  uint32    // writers.min_payout_cents
    Featured        bool      // writers.featured
    CreatedAt       time.Time // writers.created_at
    UpdatedAt       time.Time // writers.updated_at
}
