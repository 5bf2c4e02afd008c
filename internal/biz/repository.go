package biz

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bizdir/bizdir/internal/platform/db"
	"github.com/bizdir/bizdir/internal/platform/httpx"
	"github.com/bizdir/bizdir/internal/resource"
)

const bizColumns = `id, title, description, address, city, phone, created_at, updated_at`

// BizRepository persists Biz records in PostgreSQL.
type BizRepository struct {
	pool *pgxpool.Pool
}

// NewBizRepository constructs a BizRepository.
func NewBizRepository(pool *pgxpool.Pool) *BizRepository {
	return &BizRepository{pool: pool}
}

func scanBiz(row pgx.Row) (Biz, error) {
	var b Biz
	err := row.Scan(&b.ID, &b.Title, &b.Description, &b.Address, &b.City, &b.Phone, &b.CreatedAt, &b.UpdatedAt)
	return b, err
}

// List returns every business ordered by id.
func (r *BizRepository) List(ctx context.Context) ([]Biz, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+bizColumns+` FROM biz ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("biz: list: %w", err)
	}
	defer rows.Close()

	var out []Biz
	for rows.Next() {
		b, err := scanBiz(rows)
		if err != nil {
			return nil, fmt.Errorf("biz: scan: %w", err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// Get fetches a business by id.
func (r *BizRepository) Get(ctx context.Context, id int64) (Biz, error) {
	b, err := scanBiz(r.pool.QueryRow(ctx, `SELECT `+bizColumns+` FROM biz WHERE id = $1`, id))
	if err != nil {
		return Biz{}, db.Translate(err)
	}
	return b, nil
}

// Create inserts a business.
func (r *BizRepository) Create(ctx context.Context, b Biz) (Biz, error) {
	created, err := scanBiz(r.pool.QueryRow(ctx, `INSERT INTO biz (title, description, address, city, phone)
VALUES ($1, $2, $3, $4, $5)
RETURNING `+bizColumns, b.Title, b.Description, b.Address, b.City, b.Phone))
	if err != nil {
		return Biz{}, db.Translate(err)
	}
	return created, nil
}

// Update locks the row, applies fn and writes the editable columns back.
func (r *BizRepository) Update(ctx context.Context, id int64, fn func(*Biz) error) (Biz, error) {
	var updated Biz
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		current, err := scanBiz(tx.QueryRow(ctx, `SELECT `+bizColumns+` FROM biz WHERE id = $1 FOR UPDATE`, id))
		if err != nil {
			return db.Translate(err)
		}
		if err := fn(&current); err != nil {
			return err
		}
		updated, err = scanBiz(tx.QueryRow(ctx, `UPDATE biz
SET title = $2, description = $3, address = $4, city = $5, phone = $6, updated_at = NOW()
WHERE id = $1
RETURNING `+bizColumns, id, current.Title, current.Description, current.Address, current.City, current.Phone))
		return db.Translate(err)
	})
	if err != nil {
		return Biz{}, err
	}
	return updated, nil
}

// Delete removes a business together with its hours and comments.
func (r *BizRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM biz WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("biz: delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}

const hoursColumns = `id, biz_id, weekday, to_char(from_hour, 'HH24:MI:SS'), to_char(to_hour, 'HH24:MI:SS')`

// HoursRepository persists Hours records in PostgreSQL.
type HoursRepository struct {
	pool *pgxpool.Pool
}

// NewHoursRepository constructs an HoursRepository.
func NewHoursRepository(pool *pgxpool.Pool) *HoursRepository {
	return &HoursRepository{pool: pool}
}

func scanHours(row pgx.Row) (Hours, error) {
	var h Hours
	err := row.Scan(&h.ID, &h.BizID, &h.Weekday, &h.FromHour, &h.ToHour)
	return h, err
}

// List returns all opening hours ordered by business and weekday.
func (r *HoursRepository) List(ctx context.Context) ([]Hours, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+hoursColumns+` FROM hours ORDER BY biz_id, weekday, from_hour, id`)
	if err != nil {
		return nil, fmt.Errorf("hours: list: %w", err)
	}
	defer rows.Close()

	var out []Hours
	for rows.Next() {
		h, err := scanHours(rows)
		if err != nil {
			return nil, fmt.Errorf("hours: scan: %w", err)
		}
		out = append(out, h)
	}
	return out, rows.Err()
}

// Get fetches one opening window.
func (r *HoursRepository) Get(ctx context.Context, id int64) (Hours, error) {
	h, err := scanHours(r.pool.QueryRow(ctx, `SELECT `+hoursColumns+` FROM hours WHERE id = $1`, id))
	if err != nil {
		return Hours{}, db.Translate(err)
	}
	return h, nil
}

// Create inserts an opening window. A missing biz is a validation error.
func (r *HoursRepository) Create(ctx context.Context, h Hours) (Hours, error) {
	created, err := scanHours(r.pool.QueryRow(ctx, `INSERT INTO hours (biz_id, weekday, from_hour, to_hour)
VALUES ($1, $2, $3::time, $4::time)
RETURNING `+hoursColumns, h.BizID, h.Weekday, h.FromHour, h.ToHour))
	if err != nil {
		return Hours{}, db.Translate(err)
	}
	return created, nil
}

// Update locks the row, applies fn and writes it back.
func (r *HoursRepository) Update(ctx context.Context, id int64, fn func(*Hours) error) (Hours, error) {
	var updated Hours
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		current, err := scanHours(tx.QueryRow(ctx, `SELECT `+hoursColumns+` FROM hours WHERE id = $1 FOR UPDATE`, id))
		if err != nil {
			return db.Translate(err)
		}
		if err := fn(&current); err != nil {
			return err
		}
		updated, err = scanHours(tx.QueryRow(ctx, `UPDATE hours
SET biz_id = $2, weekday = $3, from_hour = $4::time, to_hour = $5::time
WHERE id = $1
RETURNING `+hoursColumns, id, current.BizID, current.Weekday, current.FromHour, current.ToHour))
		return db.Translate(err)
	})
	if err != nil {
		return Hours{}, err
	}
	return updated, nil
}

// Delete removes an opening window.
func (r *HoursRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM hours WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("hours: delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}

var (
	_ resource.Store[Biz]   = (*BizRepository)(nil)
	_ resource.Store[Hours] = (*HoursRepository)(nil)
)
