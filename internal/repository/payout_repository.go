package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/adsloty/adsloty/internal/model"
)

// PayoutRepo manages writer withdrawal requests.  Earnings become
// eligible when a booking reaches the published state; requesting a
// payout rolls every eligible booking into one payout row inside a
// transaction so the amount is always derived server-side.
type PayoutRepo struct {
	db *sql.DB
}

// NewPayoutRepo returns a new PayoutRepo bound to the given database.
func NewPayoutRepo(db *sql.DB) *PayoutRepo { return &PayoutRepo{db: db} }

const payoutCols = `id, ref, writer_id, amount_cents, currency, status, failure_reason, created_at, paid_at, failed_at`

func scanPayout(row interface{ Scan(...any) error }) (model.Payout, error) {
	var p model.Payout
	var failureReason sql.NullString
	var paidAt, failedAt sql.NullTime
	err := row.Scan(&p.ID, &p.Ref, &p.WriterID, &p.AmountCents, &p.Currency,
		&p.Status, &failureReason, &p.CreatedAt, &paidAt, &failedAt)
	if err != nil {
		return p, err
	}
	if failureReason.Valid {
		v := failureReason.String
		p.FailureReason = &v
	}
	if paidAt.Valid {
		t := paidAt.Time
		p.PaidAt = &t
	}
	if failedAt.Valid {
		t := failedAt.Time
		p.FailedAt = &t
	}
	return p, nil
}

// Summary aggregates a writer's earnings for the payouts dashboard.
// Pending counts paid and approved bookings that have not run yet;
// available counts published bookings not rolled into a payout.
type Summary struct {
	PendingCents   uint64 `json:"pending_cents"`
	AvailableCents uint64 `json:"available_cents"`
	PaidOutCents   uint64 `json:"paid_out_cents"`
	EligibleCount  uint32 `json:"eligible_count"`
	MinPayoutCents uint32 `json:"min_payout_cents"`
	CanRequest     bool   `json:"can_request"`
}

// Summarize computes the earnings summary for a writer.
func (r *PayoutRepo) Summarize(ctx context.Context, writerID uint64, minPayoutCents uint32) (Summary, error) {
	s := Summary{MinPayoutCents: minPayoutCents}
	err := r.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(payout_cents),0) FROM bookings
		 WHERE writer_id=? AND status IN ('paid','approved')`,
		writerID).Scan(&s.PendingCents)
	if err != nil {
		return s, err
	}
	err = r.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(payout_cents),0), COUNT(*) FROM bookings
		 WHERE writer_id=? AND status='published' AND payout_id IS NULL`,
		writerID).Scan(&s.AvailableCents, &s.EligibleCount)
	if err != nil {
		return s, err
	}
	err = r.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(amount_cents),0) FROM payouts
		 WHERE writer_id=? AND status='paid'`,
		writerID).Scan(&s.PaidOutCents)
	if err != nil {
		return s, err
	}
	s.CanRequest = s.AvailableCents >= uint64(minPayoutCents)
	return s, nil
}

// Request creates a payout covering every eligible published booking of
// the writer.  Eligible rows are locked, summed, attached to the new
// payout and the derived amount recorded, all in one transaction.
// Returns ErrConflict when the available balance is below the writer's
// minimum payout threshold or there is nothing to withdraw.
// An optional bookingRefs subset restricts the withdrawal to those
// bookings; unknown or ineligible refs make the request fail rather
// than silently shrink it.
func (r *PayoutRepo) Request(ctx context.Context, ref string, writerID uint64, currency string, minPayoutCents uint32, bookingRefs []string) (model.Payout, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return model.Payout{}, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	eligible := `writer_id=? AND status='published' AND payout_id IS NULL`
	args := []any{writerID}
	if len(bookingRefs) > 0 {
		eligible += ` AND ref IN (?` + strings.Repeat(",?", len(bookingRefs)-1) + `)`
		for _, br := range bookingRefs {
			args = append(args, br)
		}
	}

	var total uint64
	var count int
	if err := tx.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(payout_cents),0), COUNT(*) FROM bookings WHERE `+eligible+` FOR UPDATE`,
		args...).Scan(&total, &count); err != nil {
		return model.Payout{}, err
	}
	if count == 0 || total < uint64(minPayoutCents) {
		return model.Payout{}, ErrConflict
	}
	if len(bookingRefs) > 0 && count != len(bookingRefs) {
		return model.Payout{}, ErrConflict
	}

	res, err := tx.ExecContext(ctx,
		`INSERT INTO payouts (ref, writer_id, amount_cents, currency, status) VALUES (?,?,?,?,'pending')`,
		ref, writerID, total, currency)
	if err != nil {
		return model.Payout{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Payout{}, err
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE bookings SET payout_id=? WHERE `+eligible,
		append([]any{id}, args...)...); err != nil {
		return model.Payout{}, err
	}

	p, err := scanPayout(tx.QueryRowContext(ctx,
		`SELECT `+payoutCols+` FROM payouts WHERE id=?`, id))
	if err != nil {
		return model.Payout{}, err
	}
	if err := tx.Commit(); err != nil {
		return model.Payout{}, err
	}
	committed = true
	return p, nil
}

// ListByWriter returns a writer's payouts newest first.
func (r *PayoutRepo) ListByWriter(ctx context.Context, writerID uint64) ([]model.Payout, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+payoutCols+` FROM payouts WHERE writer_id=? ORDER BY created_at DESC`, writerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Payout, 0)
	for rows.Next() {
		p, err := scanPayout(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// ListByStatus returns all payouts in one state, oldest first, which is
// the order the back office works the queue in.
func (r *PayoutRepo) ListByStatus(ctx context.Context, status model.PayoutStatus) ([]model.Payout, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+payoutCols+` FROM payouts WHERE status=? ORDER BY created_at ASC`, string(status))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Payout, 0)
	for rows.Next() {
		p, err := scanPayout(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// payoutTransitions mirrors the payout lifecycle: pending to processing,
// then processing to paid or failed.  Failed payouts release their bookings so
// the writer can request again.
var payoutTransitions = map[model.PayoutStatus][]model.PayoutStatus{
	model.PayoutPending:    {model.PayoutProcessing},
	model.PayoutProcessing: {model.PayoutPaid, model.PayoutFailed},
}

func payoutCanTransition(from, to model.PayoutStatus) bool {
	for _, t := range payoutTransitions[from] {
		if t == to {
			return true
		}
	}
	return false
}

// UpdateStatus advances a payout's lifecycle, used by the admin
// endpoints that mirror the payment rail's progress.  A failure reason
// is required for the failed state; failing a payout detaches its
// bookings so the earnings return to the available balance.  Returns
// ErrInvalidTransition for illegal steps.
func (r *PayoutRepo) UpdateStatus(ctx context.Context, payoutID uint64, next model.PayoutStatus, failureReason *string) (model.Payout, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return model.Payout{}, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	var current string
	if err := tx.QueryRowContext(ctx,
		`SELECT status FROM payouts WHERE id=? FOR UPDATE`, payoutID).Scan(&current); err != nil {
		return model.Payout{}, err
	}
	if !payoutCanTransition(model.PayoutStatus(current), next) {
		return model.Payout{}, ErrInvalidTransition
	}

	switch next {
	case model.PayoutPaid:
		if _, err := tx.ExecContext(ctx,
			`UPDATE payouts SET status='paid', paid_at=NOW() WHERE id=?`, payoutID); err != nil {
			return model.Payout{}, err
		}
	case model.PayoutFailed:
		if failureReason == nil || *failureReason == "" {
			return model.Payout{}, ErrConflict
		}
		if _, err := tx.ExecContext(ctx,
			`UPDATE payouts SET status='failed', failed_at=NOW(), failure_reason=? WHERE id=?`,
			*failureReason, payoutID); err != nil {
			return model.Payout{}, err
		}
		if _, err := tx.ExecContext(ctx,
			`UPDATE bookings SET payout_id=NULL WHERE payout_id=?`, payoutID); err != nil {
			return model.Payout{}, err
		}
	default:
		if _, err := tx.ExecContext(ctx,
			`UPDATE payouts SET status=? WHERE id=?`, string(next), payoutID); err != nil {
			return model.Payout{}, err
		}
	}

	p, err := scanPayout(tx.QueryRowContext(ctx,
		`SELECT `+payoutCols+` FROM payouts WHERE id=?`, payoutID))
	if err != nil {
		return model.Payout{}, err
	}
	if err := tx.Commit(); err != nil {
		return model.Payout{}, err
	}
	committed = true
	return p, nil
}

