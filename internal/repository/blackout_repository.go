package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/adsloty/adsloty/internal/model"
	"github.com/adsloty/adsloty/internal/schedule"
)

// BlackoutRepo manages a writer's blocked issue weeks.  Dates are stored
// as normalized week starts so they compare directly against slot dates.
type BlackoutRepo struct {
	db *sql.DB
}

// NewBlackoutRepo returns a new BlackoutRepo bound to the given database.
func NewBlackoutRepo(db *sql.DB) *BlackoutRepo { return &BlackoutRepo{db: db} }

// Create blocks one week.  Blocking a week that already has active
// bookings is allowed; the existing bookings keep running but no new
// ones can be created for it.  A duplicate block maps to ErrConflict.
func (r *BlackoutRepo) Create(ctx context.Context, b *model.BlackoutDate) error {
	b.BlockedDate = schedule.WeekStart(b.BlockedDate)
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO blackout_dates (writer_id, blocked_date, reason) VALUES (?,?,?)`,
		b.WriterID, b.BlockedDate, b.Reason)
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
	b.ID = uint64(id)
	return nil
}

// Delete unblocks a week.  Ownership is enforced by matching writer_id;
// a mismatch or missing row returns sql.ErrNoRows.
func (r *BlackoutRepo) Delete(ctx context.Context, id, writerID uint64) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM blackout_dates WHERE id=? AND writer_id=?`, id, writerID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// ListByWriter returns a writer's blocked weeks in date order.
func (r *BlackoutRepo) ListByWriter(ctx context.Context, writerID uint64) ([]model.BlackoutDate, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, writer_id, blocked_date, reason, created_at FROM blackout_dates
		 WHERE writer_id=? ORDER BY blocked_date`, writerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.BlackoutDate, 0)
	for rows.Next() {
		var b model.BlackoutDate
		var reason sql.NullString
		if err := rows.Scan(&b.ID, &b.WriterID, &b.BlockedDate, &reason, &b.CreatedAt); err != nil {
			return nil, err
		}
		if reason.Valid {
			v := reason.String
			b.Reason = &v
		}
		out = append(out, b)
	}
	return out, rows.Err()
}
