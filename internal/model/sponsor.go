package model

import "time"

// Sponsor represents an advertiser's company profile as stored in the
// `sponsors` table.  One user with the SPONSOR role owns exactly one
// profile.  The billing email is required before a booking can be
// created because the payment provider sends receipts to it.
//
// Fields:
//  ID           – primary key identifier.
//  UserID       – owning user.
//  CompanyName  – advertiser's display name.
//  WebsiteURL   – optional company website.
//  LogoURL      – optional logo shown next to campaign entries.
//  BillingEmail – email address used for checkout receipts (nullable).
//  CreatedAt    – creation timestamp.
//  UpdatedAt    – last update timestamp.
type Sponsor struct {
    ID           uint64    // sponsors.id
    UserID       uint64    // sponsors.user_id
    CompanyName  string    // sponsors.company_name
    WebsiteURL   *string   // sponsors.website_url (nullable)
    LogoURL      *string   // sponsors.logo_url (nullable)
    BillingEmail *string   // sponsors.billing_email (nullable)
    CreatedAt    time.Time // sponsors.created_at
    UpdatedAt    time.Time // sponsors.updated_at
}
