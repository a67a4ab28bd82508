package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/Sagar-1103/taskify/internal/domain"
	"github.com/Sagar-1103/taskify/pkg/database"
	apperrors "github.com/Sagar-1103/taskify/pkg/errors"
)

// MsgDuplicateEmail is the client message for a signup with a taken email.
const MsgDuplicateEmail = "User with email already exists"

const userColumns = `id, name, email, password_hash, COALESCE(refresh_token, ''), token_version, created_at, updated_at`

// UserRepository implements repository.UserRepository using PostgreSQL.
type UserRepository struct {
	db     database.DBTX
	tracer *database.QueryTracer
}

// NewUserRepository creates a new PostgreSQL-backed user repository.
func NewUserRepository(db database.DBTX, tracer *database.QueryTracer) *UserRepository {
	return &UserRepository{db: db, tracer: tracer}
}

// Create inserts a new user into the database.
func (r *UserRepository) Create(ctx context.Context, u *domain.User) (err error) {
	query := `
		INSERT INTO users (id, name, email, password_hash, refresh_token, token_version, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NULLIF($5, ''), $6, $7, $8)`

	ctx, end := r.tracer.Start(ctx, "CreateUser", query)
	defer func() { end(err) }()

	_, err = r.db.Exec(ctx, query,
		u.ID,
		u.Name,
		u.Email,
		u.PasswordHash,
		u.RefreshToken,
		u.TokenVersion,
		u.CreatedAt,
		u.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.AlreadyExists(MsgDuplicateEmail)
		}
		return fmt.Errorf("insert user: %w", err)
	}

	return nil
}

// GetByID retrieves a user by their ID.
func (r *UserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return r.scanUser(ctx, "GetUserByID", query, id)
}

// GetByEmail retrieves a user by their email address.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return r.scanUser(ctx, "GetUserByEmail", query, email)
}

// Update modifies an existing user in the database.
func (r *UserRepository) Update(ctx context.Context, u *domain.User) (err error) {
	u.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE users
		SET name = $1, email = $2, password_hash = $3, token_version = $4, updated_at = $5
		WHERE id = $6`

	ctx, end := r.tracer.Start(ctx, "UpdateUser", query)
	defer func() { end(err) }()

	ct, err := r.db.Exec(ctx, query,
		u.Name,
		u.Email,
		u.PasswordHash,
		u.TokenVersion,
		u.UpdatedAt,
		u.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.AlreadyExists(MsgDuplicateEmail)
		}
		if isInvalidID(err) {
			return apperrors.ErrNotFound
		}
		return fmt.Errorf("update user: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}

	return nil
}

// SetRefreshToken stores or, for an empty hash, clears the refresh token digest.
func (r *UserRepository) SetRefreshToken(ctx context.Context, id, tokenHash string) (err error) {
	query := `UPDATE users SET refresh_token = NULLIF($1, ''), updated_at = $2 WHERE id = $3`

	ctx, end := r.tracer.Start(ctx, "SetRefreshToken", query)
	defer func() { end(err) }()

	ct, err := r.db.Exec(ctx, query, tokenHash, time.Now().UTC(), id)
	if err != nil {
		if isInvalidID(err) {
			return apperrors.ErrNotFound
		}
		return fmt.Errorf("set refresh token: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}

	return nil
}

func (r *UserRepository) scanUser(ctx context.Context, op, query string, args ...any) (_ *domain.User, err error) {
	ctx, end := r.tracer.Start(ctx, op, query)
	defer func() { end(err) }()

	var u domain.User
	err = r.db.QueryRow(ctx, query, args...).Scan(
		&u.ID,
		&u.Name,
		&u.Email,
		&u.PasswordHash,
		&u.RefreshToken,
		&u.TokenVersion,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || isInvalidID(err) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}

	return &u, nil
}
