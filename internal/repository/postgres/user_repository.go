package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	domain "github.com/Voridan/giveaway-platform/internal/domain/user"
)

// UserRepository resolves owner and partner identities in Postgres.
type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository { return &UserRepository{db: db} }

// Create inserts a user and fills its id and creation time.
func (r *UserRepository) Create(ctx context.Context, u *domain.User) error {
	const q = `
	INSERT INTO users (user_name, email, is_admin)
	VALUES ($1, lower($2), $3)
	RETURNING id, created_at`
	if err := r.db.QueryRowContext(ctx, q, u.UserName, u.Email, u.IsAdmin).Scan(&u.ID, &u.CreatedAt); err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// GetByID returns a user by id, nil if not found.
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	const q = `SELECT id, user_name, email, is_admin, created_at FROM users WHERE id = $1`
	var u domain.User
	if err := r.db.QueryRowContext(ctx, q, id).Scan(&u.ID, &u.UserName, &u.Email, &u.IsAdmin, &u.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

// GetManyByID returns the users that exist among ids, ordered by id.
func (r *UserRepository) GetManyByID(ctx context.Context, ids []int64) ([]domain.User, error) {
	if len(ids) == 0 {
		return []domain.User{}, nil
	}
	const q = `SELECT id, user_name, email, is_admin, created_at FROM users WHERE id = ANY($1::bigint[]) ORDER BY id`
	rows, err := r.db.QueryContext(ctx, q, pq.Array(ids))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []domain.User{}
	for rows.Next() {
		var u domain.User
		if err := rows.Scan(&u.ID, &u.UserName, &u.Email, &u.IsAdmin, &u.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}
