package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/adsloty/adsloty/internal/model"
)

// WriterRepo provides CRUD operations for writer profiles.  A profile is
// the bookable marketplace listing of one newsletter; the newsletter
// name is unique across the platform.
type WriterRepo struct {
	db *sql.DB
}

// NewWriterRepo returns a new WriterRepo bound to the given database.
func NewWriterRepo(db *sql.DB) *WriterRepo { return &WriterRepo{db: db} }

const writerCols = `id, user_id, newsletter_name, newsletter_url, description, category,
	subscriber_count, open_rate_bps, click_rate_bps, price_cents, currency,
	slots_per_week, lead_time_days, auto_approve, platform_fee_bps,
	min_payout_cents, featured, created_at, updated_at`

func scanWriter(row interface{ Scan(...any) error }) (model.Writer, error) {
	var w model.Writer
	var url, desc sql.NullString
	err := row.Scan(
		&w.ID, &w.UserID, &w.NewsletterName, &url, &desc, &w.Category,
		&w.SubscriberCount, &w.OpenRateBps, &w.ClickRateBps, &w.PriceCents, &w.Currency,
		&w.SlotsPerWeek, &w.LeadTimeDays, &w.AutoApprove, &w.PlatformFeeBps,
		&w.MinPayoutCents, &w.Featured, &w.CreatedAt, &w.UpdatedAt,
	)
	if err != nil {
		return w, err
	}
	if url.Valid {
		v := url.String
		w.NewsletterURL = &v
	}
	if desc.Valid {
		v := desc.String
		w.Description = &v
	}
	return w, nil
}

// Create inserts a writer profile and populates its generated ID.  A
// duplicate newsletter name or a second profile for the same user maps
// to ErrConflict.
func (r *WriterRepo) Create(ctx context.Context, w *model.Writer) error {
	const q = `INSERT INTO writers
		(user_id, newsletter_name, newsletter_url, description, category,
		 subscriber_count, open_rate_bps, click_rate_bps, price_cents, currency,
		 slots_per_week, lead_time_days, auto_approve, platform_fee_bps, min_payout_cents, featured)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`
	res, err := r.db.ExecContext(ctx, q,
		w.UserID, w.NewsletterName, w.NewsletterURL, w.Description, w.Category,
		w.SubscriberCount, w.OpenRateBps, w.ClickRateBps, w.PriceCents, w.Currency,
		w.SlotsPerWeek, w.LeadTimeDays, w.AutoApprove, w.PlatformFeeBps, w.MinPayoutCents, w.Featured,
	)
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
	w.ID = uint64(id)
	return nil
}

// GetByID fetches a writer profile by its ID.
func (r *WriterRepo) GetByID(ctx context.Context, id uint64) (model.Writer, error) {
	return scanWriter(r.db.QueryRowContext(ctx,
		`SELECT `+writerCols+` FROM writers WHERE id=? LIMIT 1`, id))
}

// GetByUserID fetches the profile owned by the given user.
func (r *WriterRepo) GetByUserID(ctx context.Context, userID uint64) (model.Writer, error) {
	return scanWriter(r.db.QueryRowContext(ctx,
		`SELECT `+writerCols+` FROM writers WHERE user_id=? LIMIT 1`, userID))
}

// Update rewrites the mutable profile fields.  Ownership is enforced by
// matching both the profile ID and the owning user ID; a mismatch
// updates zero rows and returns ErrForbidden.
func (r *WriterRepo) Update(ctx context.Context, w *model.Writer) error {
	const q = `UPDATE writers SET
		newsletter_name=?, newsletter_url=?, description=?, category=?,
		subscriber_count=?, open_rate_bps=?, click_rate_bps=?, price_cents=?, currency=?,
		slots_per_week=?, lead_time_days=?, auto_approve=?, min_payout_cents=?
		WHERE id=? AND user_id=?`
	res, err := r.db.ExecContext(ctx, q,
		w.NewsletterName, w.NewsletterURL, w.Description, w.Category,
		w.SubscriberCount, w.OpenRateBps, w.ClickRateBps, w.PriceCents, w.Currency,
		w.SlotsPerWeek, w.LeadTimeDays, w.AutoApprove, w.MinPayoutCents,
		w.ID, w.UserID,
	)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return ErrConflict
		}
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

// ListAll returns every writer profile ordered by ID.  The browse
// handler projects these onto marketplace listings and applies the
// filter engine in memory.
func (r *WriterRepo) ListAll(ctx context.Context) ([]model.Writer, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+writerCols+` FROM writers ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	writers := make([]model.Writer, 0)
	for rows.Next() {
		w, err := scanWriter(rows)
		if err != nil {
			return nil, err
		}
		writers = append(writers, w)
	}
	return writers, rows.Err()
}
