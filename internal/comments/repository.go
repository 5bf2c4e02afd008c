package comments

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bizdir/bizdir/internal/platform/db"
	"github.com/bizdir/bizdir/internal/platform/httpx"
	"github.com/bizdir/bizdir/internal/resource"
)

const columns = `id, biz_id, user_id, body, created_at, updated_at`

// Repository persists comments in PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func scan(row pgx.Row) (Comment, error) {
	var c Comment
	err := row.Scan(&c.ID, &c.BizID, &c.UserID, &c.Body, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

// List returns every comment, oldest first.
func (r *Repository) List(ctx context.Context) ([]Comment, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+columns+` FROM comments ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("comments: list: %w", err)
	}
	defer rows.Close()

	var out []Comment
	for rows.Next() {
		c, err := scan(rows)
		if err != nil {
			return nil, fmt.Errorf("comments: scan: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// Get fetches a comment by id.
func (r *Repository) Get(ctx context.Context, id int64) (Comment, error) {
	c, err := scan(r.pool.QueryRow(ctx, `SELECT `+columns+` FROM comments WHERE id = $1`, id))
	if err != nil {
		return Comment{}, db.Translate(err)
	}
	return c, nil
}

// Create inserts a comment owned by c.UserID.
func (r *Repository) Create(ctx context.Context, c Comment) (Comment, error) {
	created, err := scan(r.pool.QueryRow(ctx, `INSERT INTO comments (biz_id, user_id, body)
VALUES ($1, $2, $3)
RETURNING `+columns, c.BizID, c.UserID, c.Body))
	if err != nil {
		return Comment{}, db.Translate(err)
	}
	return created, nil
}

// Update locks the row, applies fn and writes biz and body back. The author
// column is never rewritten.
func (r *Repository) Update(ctx context.Context, id int64, fn func(*Comment) error) (Comment, error) {
	var updated Comment
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		current, err := scan(tx.QueryRow(ctx, `SELECT `+columns+` FROM comments WHERE id = $1 FOR UPDATE`, id))
		if err != nil {
			return db.Translate(err)
		}
		if err := fn(&current); err != nil {
			return err
		}
		updated, err = scan(tx.QueryRow(ctx, `UPDATE comments
SET biz_id = $2, body = $3, updated_at = NOW()
WHERE id = $1
RETURNING `+columns, id, current.BizID, current.Body))
		return db.Translate(err)
	})
	if err != nil {
		return Comment{}, err
	}
	return updated, nil
}

// Delete removes a comment.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM comments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("comments: delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}

var _ resource.Store[Comment] = (*Repository)(nil)
