package groups

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bizdir/bizdir/internal/platform/db"
	"github.com/bizdir/bizdir/internal/platform/httpx"
)

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// ListGroups returns every group with its member count.
func (r *Repository) ListGroups(ctx context.Context) ([]Group, error) {
	rows, err := r.pool.Query(ctx, `SELECT g.name, COUNT(ug.user_id)::int
FROM groups g
LEFT JOIN user_groups ug ON ug.group_id = g.id
GROUP BY g.name
ORDER BY g.name`)
	if err != nil {
		return nil, fmt.Errorf("groups: list: %w", err)
	}
	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (Group, error) {
		var g Group
		err := row.Scan(&g.Name, &g.Members)
		return g, err
	})
	if err != nil {
		return nil, fmt.Errorf("groups: list: %w", err)
	}
	return out, nil
}

// Grant adds userID to the named group. Granting an existing membership is
// a no-op.
func (r *Repository) Grant(ctx context.Context, name string, userID int64) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		var groupID int64
		if err := tx.QueryRow(ctx, `SELECT id FROM groups WHERE name = $1`, name).Scan(&groupID); err != nil {
			return db.Translate(err)
		}
		var exists bool
		if err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE id = $1)`, userID).Scan(&exists); err != nil {
			return fmt.Errorf("groups: find user: %w", err)
		}
		if !exists {
			return &httpx.ValidationError{Fields: httpx.FieldErrors{"user": "Invalid pk - object does not exist."}}
		}
		_, err := tx.Exec(ctx, `INSERT INTO user_groups (user_id, group_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`, userID, groupID)
		return db.Translate(err)
	})
}

// Revoke removes userID from the named group.
func (r *Repository) Revoke(ctx context.Context, name string, userID int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM user_groups ug
USING groups g
WHERE ug.group_id = g.id AND g.name = $1 AND ug.user_id = $2`, name, userID)
	if err != nil {
		return fmt.Errorf("groups: revoke: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}

var _ RepositoryPort = (*Repository)(nil)
