package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/adsloty/adsloty/internal/model"
	"github.com/adsloty/adsloty/internal/schedule"
)

// BookingRepo provides operations for slot bookings.  Bookings tie a
// sponsor to one issue week of a writer's newsletter.  Creation
// re-checks availability inside a transaction so two sponsors racing
// for the last slot of a week cannot both win.  All timestamp fields
// are assumed to be stored in UTC.
type BookingRepo struct {
	db *sql.DB
}

// NewBookingRepo returns a new BookingRepo bound to the given database.
func NewBookingRepo(db *sql.DB) *BookingRepo { return &BookingRepo{db: db} }

const bookingCols = `b.id, b.ref, b.writer_id, b.sponsor_id, b.slot_date,
	b.ad_headline, b.ad_copy, b.ad_cta_text, b.ad_click_url, b.ad_image_url, b.ad_image_alt,
	b.status, b.amount_cents, b.platform_fee_cents, b.payout_cents, b.currency,
	b.reject_reason, b.provider_order_id, b.created_at, b.paid_at, b.reviewed_at, b.published_at`

// activeStatuses are the states that consume slot capacity.  Cancelled,
// rejected and refunded bookings release their week.
const activeStatuses = `'pending_payment','paid','approved','published'`

func scanBooking(row interface{ Scan(...any) error }) (model.Booking, error) {
	var b model.Booking
	var headline, ctaText, imageURL, imageAlt sql.NullString
	var rejectReason, orderID sql.NullString
	var paidAt, reviewedAt, publishedAt sql.NullTime
	err := row.Scan(
		&b.ID, &b.Ref, &b.WriterID, &b.SponsorID, &b.SlotDate,
		&headline, &b.Creative.Copy, &ctaText, &b.Creative.ClickURL, &imageURL, &imageAlt,
		&b.Status, &b.AmountCents, &b.PlatformFeeCents, &b.PayoutCents, &b.Currency,
		&rejectReason, &orderID, &b.CreatedAt, &paidAt, &reviewedAt, &publishedAt,
	)
	if err != nil {
		return b, err
	}
	if headline.Valid {
		b.Creative.Headline = headline.String
	}
	if ctaText.Valid {
		v := ctaText.String
		b.Creative.CTAText = &v
	}
	if imageURL.Valid {
		v := imageURL.String
		b.Creative.ImageURL = &v
	}
	if imageAlt.Valid {
		v := imageAlt.String
		b.Creative.ImageAlt = &v
	}
	if rejectReason.Valid {
		v := rejectReason.String
		b.RejectReason = &v
	}
	if orderID.Valid {
		v := orderID.String
		b.ProviderOrderID = &v
	}
	if paidAt.Valid {
		t := paidAt.Time
		b.PaidAt = &t
	}
	if reviewedAt.Valid {
		t := reviewedAt.Time
		b.ReviewedAt = &t
	}
	if publishedAt.Valid {
		t := publishedAt.Time
		b.PublishedAt = &t
	}
	return b, nil
}

// CreateWithAvailabilityCheck inserts a booking after re-verifying, in
// the same transaction, that the requested week still has capacity and
// is not blacked out.  The count query locks the matching rows so a
// concurrent create for the same week serializes behind it.  Returns
// ErrSlotUnavailable when the week lost its last slot, in which case
// nothing is inserted.
func (r *BookingRepo) CreateWithAvailabilityCheck(ctx context.Context, b *model.Booking, slotsPerWeek uint32) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	slotDate := schedule.WeekStart(b.SlotDate)

	var blackouts int
	if err := tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM blackout_dates WHERE writer_id=? AND blocked_date=?`,
		b.WriterID, slotDate).Scan(&blackouts); err != nil {
		return err
	}
	if blackouts > 0 {
		return ErrSlotUnavailable
	}

	var active uint32
	if err := tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM bookings
		 WHERE writer_id=? AND slot_date=? AND status IN (`+activeStatuses+`)
		 FOR UPDATE`,
		b.WriterID, slotDate).Scan(&active); err != nil {
		return err
	}
	if slotsPerWeek == 0 || active >= slotsPerWeek {
		return ErrSlotUnavailable
	}

	const q = `INSERT INTO bookings
		(ref, writer_id, sponsor_id, slot_date,
		 ad_headline, ad_copy, ad_cta_text, ad_click_url, ad_image_url, ad_image_alt,
		 status, amount_cents, platform_fee_cents, payout_cents, currency)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`
	var headline any
	if b.Creative.Headline != "" {
		headline = b.Creative.Headline
	}
	res, err := tx.ExecContext(ctx, q,
		b.Ref, b.WriterID, b.SponsorID, slotDate,
		headline, b.Creative.Copy, b.Creative.CTAText, b.Creative.ClickURL, b.Creative.ImageURL, b.Creative.ImageAlt,
		string(b.Status), b.AmountCents, b.PlatformFeeCents, b.PayoutCents, b.Currency,
	)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	b.ID = uint64(id)
	b.SlotDate = slotDate
	return nil
}

// GetByRef fetches a booking by its public UUID reference.
func (r *BookingRepo) GetByRef(ctx context.Context, ref string) (model.Booking, error) {
	return scanBooking(r.db.QueryRowContext(ctx,
		`SELECT `+bookingCols+` FROM bookings b WHERE b.ref=? LIMIT 1`, ref))
}

// GetByID fetches a booking by its numeric ID.
func (r *BookingRepo) GetByID(ctx context.Context, id uint64) (model.Booking, error) {
	return scanBooking(r.db.QueryRowContext(ctx,
		`SELECT `+bookingCols+` FROM bookings b WHERE b.id=? LIMIT 1`, id))
}

// GetByProviderOrder fetches a booking by the payment provider's order
// ID.  Used by the webhook handler for idempotency: a redelivered event
// whose order is already attached to a booking in the target state is a
// no-op.
func (r *BookingRepo) GetByProviderOrder(ctx context.Context, orderID string) (model.Booking, error) {
	return scanBooking(r.db.QueryRowContext(ctx,
		`SELECT `+bookingCols+` FROM bookings b WHERE b.provider_order_id=? LIMIT 1`, orderID))
}

// transitionTimestamps maps a target status to the timestamp column
// stamped alongside the transition, if any.
var transitionTimestamps = map[model.BookingStatus]string{
	model.StatusPaid:      "paid_at",
	model.StatusApproved:  "reviewed_at",
	model.StatusRejected:  "reviewed_at",
	model.StatusPublished: "published_at",
}

// Transition moves a booking to the next status inside a transaction,
// validating the step against the state machine under a row lock.  The
// optional reason is recorded for rejections; the optional orderID
// attaches the payment provider order on the paid transition.  Returns
// ErrInvalidTransition when the step is not legal from the current
// status.
func (r *BookingRepo) Transition(ctx context.Context, bookingID uint64, next model.BookingStatus, reason, orderID *string) (model.Booking, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return model.Booking{}, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	var current string
	if err := tx.QueryRowContext(ctx,
		`SELECT status FROM bookings WHERE id=? FOR UPDATE`, bookingID).Scan(&current); err != nil {
		return model.Booking{}, err
	}
	if !model.BookingStatus(current).CanTransition(next) {
		return model.Booking{}, ErrInvalidTransition
	}

	q := `UPDATE bookings SET status=?`
	args := []any{string(next)}
	if col, ok := transitionTimestamps[next]; ok {
		q += `, ` + col + `=NOW()`
	}
	if reason != nil {
		q += `, reject_reason=?`
		args = append(args, *reason)
	}
	if orderID != nil {
		q += `, provider_order_id=?`
		args = append(args, *orderID)
	}
	q += ` WHERE id=?`
	args = append(args, bookingID)
	if _, err := tx.ExecContext(ctx, q, args...); err != nil {
		return model.Booking{}, err
	}

	b, err := scanBooking(tx.QueryRowContext(ctx,
		`SELECT `+bookingCols+` FROM bookings b WHERE b.id=?`, bookingID))
	if err != nil {
		return model.Booking{}, err
	}
	if err := tx.Commit(); err != nil {
		return model.Booking{}, err
	}
	committed = true
	return b, nil
}

// BookingDetail pairs a booking with the display names of both parties.
// It is the row shape returned by the dashboard list queries; handlers
// add the role-specific status projection before responding.
type BookingDetail struct {
	Booking        model.Booking
	NewsletterName string
	CompanyName    string
}

const detailCols = bookingCols + `, w.newsletter_name, sp.company_name`

const detailJoins = ` FROM bookings b
	JOIN writers w ON w.id = b.writer_id
	JOIN sponsors sp ON sp.id = b.sponsor_id`

func (r *BookingRepo) listDetails(ctx context.Context, q string, args ...any) ([]BookingDetail, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	details := make([]BookingDetail, 0)
	for rows.Next() {
		var d BookingDetail
		var headline, ctaText, imageURL, imageAlt sql.NullString
		var rejectReason, orderID sql.NullString
		var paidAt, reviewedAt, publishedAt sql.NullTime
		b := &d.Booking
		if err := rows.Scan(
			&b.ID, &b.Ref, &b.WriterID, &b.SponsorID, &b.SlotDate,
			&headline, &b.Creative.Copy, &ctaText, &b.Creative.ClickURL, &imageURL, &imageAlt,
			&b.Status, &b.AmountCents, &b.PlatformFeeCents, &b.PayoutCents, &b.Currency,
			&rejectReason, &orderID, &b.CreatedAt, &paidAt, &reviewedAt, &publishedAt,
			&d.NewsletterName, &d.CompanyName,
		); err != nil {
			return nil, err
		}
		if headline.Valid {
			b.Creative.Headline = headline.String
		}
		if ctaText.Valid {
			v := ctaText.String
			b.Creative.CTAText = &v
		}
		if imageURL.Valid {
			v := imageURL.String
			b.Creative.ImageURL = &v
		}
		if imageAlt.Valid {
			v := imageAlt.String
			b.Creative.ImageAlt = &v
		}
		if rejectReason.Valid {
			v := rejectReason.String
			b.RejectReason = &v
		}
		if orderID.Valid {
			v := orderID.String
			b.ProviderOrderID = &v
		}
		if paidAt.Valid {
			t := paidAt.Time
			b.PaidAt = &t
		}
		if reviewedAt.Valid {
			t := reviewedAt.Time
			b.ReviewedAt = &t
		}
		if publishedAt.Valid {
			t := publishedAt.Time
			b.PublishedAt = &t
		}
		details = append(details, d)
	}
	return details, rows.Err()
}

// ListOptions narrows and orders a booking list.  Zero values disable a
// filter.  Sort must be one of slot_date, created or amount (optionally
// suffixed with _desc); anything else falls back to newest first.
type ListOptions struct {
	Status model.BookingStatus
	From   *time.Time
	Until  *time.Time
	Sort   string
	Limit  int
	Offset int
}

// listOrder maps the public sort names onto columns.  A whitelist keeps
// user input out of the ORDER BY clause.
var listOrder = map[string]string{
	"slot_date":      "b.slot_date ASC",
	"slot_date_desc": "b.slot_date DESC",
	"created":        "b.created_at ASC",
	"created_desc":   "b.created_at DESC",
	"amount":         "b.amount_cents ASC",
	"amount_desc":    "b.amount_cents DESC",
}

func (o ListOptions) clauses(owner string, ownerID uint64) (string, []any) {
	where := ` WHERE ` + owner + `=?`
	args := []any{ownerID}
	if o.Status != "" {
		where += ` AND b.status=?`
		args = append(args, string(o.Status))
	}
	if o.From != nil {
		where += ` AND b.slot_date >= ?`
		args = append(args, *o.From)
	}
	if o.Until != nil {
		where += ` AND b.slot_date <= ?`
		args = append(args, *o.Until)
	}
	order, ok := listOrder[o.Sort]
	if !ok {
		order = "b.created_at DESC"
	}
	where += ` ORDER BY ` + order
	limit := o.Limit
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	where += ` LIMIT ? OFFSET ?`
	args = append(args, limit, o.Offset)
	return where, args
}

// ListByWriter returns a writer's bookings, newest first by default.
func (r *BookingRepo) ListByWriter(ctx context.Context, writerID uint64, opts ListOptions) ([]BookingDetail, error) {
	where, args := opts.clauses("b.writer_id", writerID)
	return r.listDetails(ctx, `SELECT `+detailCols+detailJoins+where, args...)
}

// ListBySponsor returns a sponsor's bookings, newest first by default.
func (r *BookingRepo) ListBySponsor(ctx context.Context, sponsorID uint64, opts ListOptions) ([]BookingDetail, error) {
	where, args := opts.clauses("b.sponsor_id", sponsorID)
	return r.listDetails(ctx, `SELECT `+detailCols+detailJoins+where, args...)
}

// nullIfEmpty maps an optional text column to NULL when unset.
func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// UpdateCreative replaces a booking's ad content.  Sponsors may only do
// this before the writer reviews: pending_payment and paid states.
// Returns ErrInvalidTransition when the booking is past review and
// ErrForbidden when it belongs to another sponsor.
func (r *BookingRepo) UpdateCreative(ctx context.Context, bookingID, sponsorID uint64, cr model.AdCreative) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE bookings SET ad_headline=?, ad_copy=?, ad_cta_text=?, ad_click_url=?, ad_image_url=?, ad_image_alt=?
		 WHERE id=? AND sponsor_id=? AND status IN ('pending_payment','paid')`,
		nullIfEmpty(cr.Headline), cr.Copy, cr.CTAText, cr.ClickURL, cr.ImageURL, cr.ImageAlt,
		bookingID, sponsorID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		var owner uint64
		if err := r.db.QueryRowContext(ctx,
			`SELECT sponsor_id FROM bookings WHERE id=?`, bookingID).Scan(&owner); err != nil {
			return err
		}
		if owner != sponsorID {
			return ErrForbidden
		}
		return ErrInvalidTransition
	}
	return nil
}

// ListPendingReview returns the paid bookings a writer still has to
// approve or reject, oldest first so the review queue is FIFO.
func (r *BookingRepo) ListPendingReview(ctx context.Context, writerID uint64) ([]BookingDetail, error) {
	return r.listDetails(ctx,
		`SELECT `+detailCols+detailJoins+` WHERE b.writer_id=? AND b.status='paid' ORDER BY b.paid_at ASC`,
		writerID)
}

// WeekFacts loads the availability inputs for a writer's weeks between
// from and until (inclusive, normalized week starts): the refs of active
// bookings per week and the writer's blackout reasons per week.  The
// schedule package resolves slot states from these.
func (r *BookingRepo) WeekFacts(ctx context.Context, writerID uint64, slotsPerWeek uint32, from, until time.Time) (schedule.WeekFacts, error) {
	facts := schedule.WeekFacts{
		SlotsPerWeek: slotsPerWeek,
		Bookings:     make(map[string][]string),
		Blackouts:    make(map[string]string),
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT slot_date, ref FROM bookings
		 WHERE writer_id=? AND slot_date BETWEEN ? AND ? AND status IN (`+activeStatuses+`)
		 ORDER BY slot_date, id`,
		writerID, from, until)
	if err != nil {
		return facts, err
	}
	defer rows.Close()
	for rows.Next() {
		var date time.Time
		var ref string
		if err := rows.Scan(&date, &ref); err != nil {
			return facts, err
		}
		key := schedule.DateKey(date)
		facts.Bookings[key] = append(facts.Bookings[key], ref)
	}
	if err := rows.Err(); err != nil {
		return facts, err
	}

	brows, err := r.db.QueryContext(ctx,
		`SELECT blocked_date, reason FROM blackout_dates
		 WHERE writer_id=? AND blocked_date BETWEEN ? AND ?`,
		writerID, from, until)
	if err != nil {
		return facts, err
	}
	defer brows.Close()
	for brows.Next() {
		var date time.Time
		var reason sql.NullString
		if err := brows.Scan(&date, &reason); err != nil {
			return facts, err
		}
		facts.Blackouts[schedule.DateKey(date)] = reason.String
	}
	return facts, brows.Err()
}

// ListUpcomingApproved returns approved bookings across all writers
// whose slot date falls within the window, soonest first.  The back
// office uses it to chase writers whose ads are due to run.
func (r *BookingRepo) ListUpcomingApproved(ctx context.Context, within time.Duration) ([]BookingDetail, error) {
	cutoff := time.Now().UTC().Add(within)
	return r.listDetails(ctx,
		`SELECT `+detailCols+detailJoins+` WHERE b.status='approved' AND b.slot_date <= ? ORDER BY b.slot_date ASC`,
		cutoff)
}

// ExpireStalePending cancels pending_payment bookings older than the
// cutoff so abandoned checkouts release their slots.  Returns the number
// of bookings cancelled.
func (r *BookingRepo) ExpireStalePending(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE bookings SET status='cancelled' WHERE status='pending_payment' AND created_at < ?`,
		cutoff)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
