package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bizdir/bizdir/internal/platform/db"
)

// Repository defines persistence operations for the auth module.
type Repository interface {
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByID(ctx context.Context, id int64) (*User, error)
	CreateUser(ctx context.Context, user User, groups []string) (*User, error)
	Groups(ctx context.Context, userID int64) ([]string, error)
	AddToGroup(ctx context.Context, userID int64, group string) error
}

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

const userColumns = `id, email, username, name, password_hash, is_active, created_at`

func scanUser(row pgx.Row) (*User, error) {
	var u User
	if err := row.Scan(&u.ID, &u.Email, &u.Username, &u.Name, &u.PasswordHash, &u.IsActive, &u.CreatedAt); err != nil {
		return nil, db.Translate(err)
	}
	return &u, nil
}

// FindByEmail fetches a user by email, case-insensitively.
func (r *PGRepository) FindByEmail(ctx context.Context, email string) (*User, error) {
	return scanUser(r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE lower(email) = lower($1)`, strings.TrimSpace(email)))
}

// FindByID fetches a user by id.
func (r *PGRepository) FindByID(ctx context.Context, id int64) (*User, error) {
	return scanUser(r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
}

// CreateUser inserts the user and its initial group memberships in one
// transaction.
func (r *PGRepository) CreateUser(ctx context.Context, user User, groups []string) (*User, error) {
	var created *User
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		var err error
		created, err = scanUser(tx.QueryRow(ctx, `INSERT INTO users (email, username, name, password_hash, is_active)
VALUES ($1, $2, $3, $4, TRUE)
RETURNING `+userColumns, user.Email, user.Username, user.Name, user.PasswordHash))
		if err != nil {
			return err
		}
		for _, g := range groups {
			if err := addToGroup(ctx, tx, created.ID, g); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// Groups lists the names of the groups the user belongs to.
func (r *PGRepository) Groups(ctx context.Context, userID int64) ([]string, error) {
	rows, err := r.pool.Query(ctx, `SELECT g.name FROM groups g
JOIN user_groups ug ON ug.group_id = g.id
WHERE ug.user_id = $1
ORDER BY g.name`, userID)
	if err != nil {
		return nil, fmt.Errorf("auth: groups: %w", err)
	}
	groups, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("auth: groups: %w", err)
	}
	return groups, nil
}

// AddToGroup grants membership, creating the group when missing.
func (r *PGRepository) AddToGroup(ctx context.Context, userID int64, group string) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return addToGroup(ctx, tx, userID, group)
	})
}

func addToGroup(ctx context.Context, tx pgx.Tx, userID int64, group string) error {
	group = strings.TrimSpace(group)
	if group == "" {
		return errors.New("auth: group name required")
	}
	var groupID int64
	err := tx.QueryRow(ctx, `INSERT INTO groups (name) VALUES ($1)
ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
RETURNING id`, group).Scan(&groupID)
	if err != nil {
		return fmt.Errorf("auth: ensure group %s: %w", group, err)
	}
	_, err = tx.Exec(ctx, `INSERT INTO user_groups (user_id, group_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`, userID, groupID)
	if err != nil {
		return db.Translate(err)
	}
	return nil
}

var _ Repository = (*PGRepository)(nil)
