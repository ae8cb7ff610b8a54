package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/adsloty/adsloty/internal/model"
)

// SponsorRepo provides CRUD operations for sponsor company profiles.
type SponsorRepo struct {
	db *sql.DB
}

// NewSponsorRepo returns a new SponsorRepo bound to the given database.
func NewSponsorRepo(db *sql.DB) *SponsorRepo { return &SponsorRepo{db: db} }

const sponsorCols = `id, user_id, company_name, website_url, logo_url, billing_email, created_at, updated_at`

func scanSponsor(row interface{ Scan(...any) error }) (model.Sponsor, error) {
	var s model.Sponsor
	var site, logo, billing sql.NullString
	err := row.Scan(&s.ID, &s.UserID, &s.CompanyName, &site, &logo, &billing, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return s, err
	}
	if site.Valid {
		v := site.String
		s.WebsiteURL = &v
	}
	if logo.Valid {
		v := logo.String
		s.LogoURL = &v
	}
	if billing.Valid {
		v := billing.String
		s.BillingEmail = &v
	}
	return s, nil
}

// Create inserts a sponsor profile and populates its generated ID.  A
// second profile for the same user maps to ErrConflict.
func (r *SponsorRepo) Create(ctx context.Context, s *model.Sponsor) error {
	const q = `INSERT INTO sponsors (user_id, company_name, website_url, logo_url, billing_email) VALUES (?,?,?,?,?)`
	res, err := r.db.ExecContext(ctx, q, s.UserID, s.CompanyName, s.WebsiteURL, s.LogoURL, s.BillingEmail)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return ErrConflict
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	s.ID = uint64(id)
	return nil
}

// GetByUserID fetches the profile owned by the given user.
func (r *SponsorRepo) GetByUserID(ctx context.Context, userID uint64) (model.Sponsor, error) {
	return scanSponsor(r.db.QueryRowContext(ctx,
		`SELECT `+sponsorCols+` FROM sponsors WHERE user_id=? LIMIT 1`, userID))
}

// GetByID fetches a sponsor profile by its ID.
func (r *SponsorRepo) GetByID(ctx context.Context, id uint64) (model.Sponsor, error) {
	return scanSponsor(r.db.QueryRowContext(ctx,
		`SELECT `+sponsorCols+` FROM sponsors WHERE id=? LIMIT 1`, id))
}

// Update rewrites the mutable profile fields, enforcing ownership the
// same way WriterRepo.Update does.
func (r *SponsorRepo) Update(ctx context.Context, s *model.Sponsor) error {
	const q = `UPDATE sponsors SET company_name=?, website_url=?, logo_url=?, billing_email=? WHERE id=? AND user_id=?`
	res, err := r.db.ExecContext(ctx, q, s.CompanyName, s.WebsiteURL, s.LogoURL, s.BillingEmail, s.ID, s.UserID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrForbidden
	}
	return nil
}
