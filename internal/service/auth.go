package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Sagar-1103/taskify/internal/auth"
	"github.com/Sagar-1103/taskify/internal/domain"
	"github.com/Sagar-1103/taskify/internal/repository"
	apperrors "github.com/Sagar-1103/taskify/pkg/errors"
)

// MaxPasswordBytes is the longest password bcrypt can hash without truncation.
const MaxPasswordBytes = 72

// Client-facing auth messages.
const (
	MsgAllFieldsRequired  = "All fields are required"
	MsgEmailTaken         = "User with email already exists"
	MsgInvalidCredentials = "Invalid user credentials"
	MsgPasswordsRequired  = "Both current and new passwords are required"
	MsgIncorrectPassword  = "Incorrect current password"
	MsgPasswordTooLong    = "Password must be at most 72 bytes"
)

// SignupInput holds the parameters for registering a new user.
type SignupInput struct {
	Name     string
	Email    string
	Password string
}

// LoginInput holds the parameters for user login.
type LoginInput struct {
	Email    string
	Password string
}

// LoginResult is returned by a successful login.
type LoginResult struct {
	User         *domain.User `json:"user"`
	AccessToken  string       `json:"accessToken"`
	RefreshToken string       `json:"refreshToken"`
}

// AuthOptions tunes AuthService behavior.
type AuthOptions struct {
	// RevokeTokensOnPasswordChange bumps the user's token version on a
	// password change so every outstanding access token stops validating.
	RevokeTokensOnPasswordChange bool
}

// AuthService implements signup, login, logout and password change.
type AuthService struct {
	users  repository.UserRepository
	tokens *auth.TokenManager
	hasher *auth.Hasher
	events EventPublisher
	opts   AuthOptions
	logger *slog.Logger
}

// NewAuthService creates a new auth service.
func NewAuthService(
	users repository.UserRepository,
	tokens *auth.TokenManager,
	hasher *auth.Hasher,
	events EventPublisher,
	opts AuthOptions,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		users:  users,
		tokens: tokens,
		hasher: hasher,
		events: events,
		opts:   opts,
		logger: logger,
	}
}

// Signup registers a new user and returns it without secrets.
func (s *AuthService) Signup(ctx context.Context, in SignupInput) (*domain.User, error) {
	name := strings.TrimSpace(in.Name)
	email := strings.TrimSpace(in.Email)
	if name == "" || email == "" || strings.TrimSpace(in.Password) == "" {
		return nil, apperrors.InvalidInput(MsgAllFieldsRequired)
	}
	if len(in.Password) > MaxPasswordBytes {
		return nil, apperrors.InvalidInput(MsgPasswordTooLong)
	}

	_, err := s.users.GetByEmail(ctx, email)
	switch {
	case err == nil:
		return nil, apperrors.AlreadyExists(MsgEmailTaken)
	case !errors.Is(err, apperrors.ErrNotFound):
		return nil, fmt.Errorf("check existing user: %w", err)
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	user := &domain.User{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	// The unique index still guards against a concurrent signup with the
	// same email.
	if err := s.users.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	if err := s.events.UserRegistered(ctx, user); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish user.registered event",
			slog.String("user_id", user.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "user registered", slog.String("user_id", user.ID))

	return user.Sanitized(), nil
}

// Login verifies credentials, issues a token pair and records the refresh
// token digest, replacing any previous session. Unknown emails and wrong
// passwords fail identically.
func (s *AuthService) Login(ctx context.Context, in LoginInput) (*LoginResult, error) {
	email := strings.TrimSpace(in.Email)
	if email == "" || in.Password == "" {
		return nil, apperrors.InvalidInput(MsgAllFieldsRequired)
	}

	user, err := s.users.GetByEmail(ctx, email)
	if errors.Is(err, apperrors.ErrNotFound) {
		return nil, apperrors.Unauthorized(MsgInvalidCredentials)
	}
	if err != nil {
		return nil, fmt.Errorf("get user by email: %w", err)
	}

	if err := s.hasher.Verify(in.Password, user.PasswordHash); err != nil {
		if errors.Is(err, auth.ErrPasswordMismatch) {
			return nil, apperrors.Unauthorized(MsgInvalidCredentials)
		}
		return nil, fmt.Errorf("verify password: %w", err)
	}

	pair, err := s.tokens.GeneratePair(user.ID, user.Name, user.Email, user.TokenVersion)
	if err != nil {
		return nil, fmt.Errorf("generate tokens: %w", err)
	}
	if err := s.users.SetRefreshToken(ctx, user.ID, auth.HashToken(pair.RefreshToken)); err != nil {
		return nil, fmt.Errorf("store refresh token: %w", err)
	}

	s.logger.InfoContext(ctx, "user logged in", slog.String("user_id", user.ID))

	return &LoginResult{
		User:         user.Sanitized(),
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	}, nil
}

// Logout clears the stored refresh token. Calling it again is a no-op.
// Access tokens stay valid until they expire.
func (s *AuthService) Logout(ctx context.Context, userID string) error {
	err := s.users.SetRefreshToken(ctx, userID, "")
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		return fmt.Errorf("clear refresh token: %w", err)
	}

	s.logger.InfoContext(ctx, "user logged out", slog.String("user_id", userID))
	return nil
}

// ChangePassword replaces the password after verifying the current one.
func (s *AuthService) ChangePassword(ctx context.Context, userID, current, next string) error {
	if current == "" || strings.TrimSpace(next) == "" {
		return apperrors.InvalidInput(MsgPasswordsRequired)
	}
	if len(next) > MaxPasswordBytes {
		return apperrors.InvalidInput(MsgPasswordTooLong)
	}

	user, err := s.users.GetByID(ctx, userID)
	if errors.Is(err, apperrors.ErrNotFound) {
		return apperrors.Unauthorized(auth.MsgInvalidToken)
	}
	if err != nil {
		return fmt.Errorf("get user: %w", err)
	}

	if err := s.hasher.Verify(current, user.PasswordHash); err != nil {
		if errors.Is(err, auth.ErrPasswordMismatch) {
			return apperrors.Unauthorized(MsgIncorrectPassword)
		}
		return fmt.Errorf("verify password: %w", err)
	}

	hash, err := s.hasher.Hash(next)
	if err != nil {
		return err
	}
	user.PasswordHash = hash
	if s.opts.RevokeTokensOnPasswordChange {
		user.TokenVersion++
	}

	if err := s.users.Update(ctx, user); err != nil {
		return fmt.Errorf("update password: %w", err)
	}

	s.logger.InfoContext(ctx, "password changed",
		slog.String("user_id", user.ID),
		slog.Bool("tokens_revoked", s.opts.RevokeTokensOnPasswordChange),
	)
	return nil
}
