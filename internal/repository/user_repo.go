package repository

import (
	"context"
	"errors"
	"fmt"

	"recruitment_portal/internal/model"

	"github.com/jackc/pgx/v5"
)

// UserRepository defines operations for user data
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	FindByID(ctx context.Context, id string) (*model.User, error)
}

type userRepository struct {
	db DBTX
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(db DBTX) UserRepository {
	return &userRepository{db: db}
}

const userColumns = `id, first_name, last_name, email, phone, password_hash, role, created_at`

// Create inserts a new user; a taken email yields ErrDuplicate
func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	sql := `INSERT INTO users (` + userColumns + `)
            VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.db.Exec(ctx, sql, user.ID, user.FirstName, user.LastName, user.Email, user.Phone,
		user.PasswordHash, user.Role, user.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("user %s: %w", user.Email, ErrDuplicate)
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// FindByEmail retrieves a user by email; (nil, nil) when absent
func (r *userRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	sql := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	user, err := scanUser(r.db.QueryRow(ctx, sql, email))
	if err != nil {
		return nil, fmt.Errorf("failed to find user by email: %w", err)
	}
	return user, nil
}

// FindByID retrieves a user by ID; (nil, nil) when absent
func (r *userRepository) FindByID(ctx context.Context, id string) (*model.User, error) {
	sql := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	user, err := scanUser(r.db.QueryRow(ctx, sql, id))
	if err != nil {
		return nil, fmt.Errorf("failed to find user by ID: %w", err)
	}
	return user, nil
}

func scanUser(row pgx.Row) (*model.User, error) {
	user := &model.User{}
	err := row.Scan(&user.ID, &user.FirstName, &user.LastName, &user.Email, &user.Phone,
		&user.PasswordHash, &user.Role, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil // Not found is not an error here, the service layer decides
		}
		return nil, err
	}
	return user, nil
}
