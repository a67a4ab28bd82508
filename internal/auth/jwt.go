package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// DefaultIssuer is the iss claim of every token.
const DefaultIssuer = "taskify"

// AccessClaims is the payload of an access token.
type AccessClaims struct {
	UserID  string `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Version int    `json:"ver"`
	jwt.RegisteredClaims
}

// RefreshClaims is the payload of a refresh token.
type RefreshClaims struct {
	UserID string `json:"id"`
	jwt.RegisteredClaims
}

// TokenConfig configures a TokenManager. Both secrets are required and must
// differ so a refresh token can never pass as an access token.
type TokenConfig struct {
	AccessSecret  string
	RefreshSecret string
	AccessExpiry  time.Duration
	RefreshExpiry time.Duration
	Issuer        string
}

// TokenPair is the result of a successful login.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// TokenManager signs and verifies HS256 tokens.
type TokenManager struct {
	accessSecret  []byte
	refreshSecret []byte
	accessExpiry  time.Duration
	refreshExpiry time.Duration
	issuer        string
	now           func() time.Time
}

// NewTokenManager validates cfg and returns a TokenManager.
func NewTokenManager(cfg TokenConfig) (*TokenManager, error) {
	switch {
	case cfg.AccessSecret == "":
		return nil, errors.New("access token secret is not set")
	case cfg.RefreshSecret == "":
		return nil, errors.New("refresh token secret is not set")
	case cfg.AccessSecret == cfg.RefreshSecret:
		return nil, errors.New("access and refresh token secrets must differ")
	case cfg.AccessExpiry <= 0:
		return nil, fmt.Errorf("access token expiry must be positive, got %s", cfg.AccessExpiry)
	case cfg.RefreshExpiry <= 0:
		return nil, fmt.Errorf("refresh token expiry must be positive, got %s", cfg.RefreshExpiry)
	}
	issuer := cfg.Issuer
	if issuer == "" {
		issuer = DefaultIssuer
	}
	return &TokenManager{
		accessSecret:  []byte(cfg.AccessSecret),
		refreshSecret: []byte(cfg.RefreshSecret),
		accessExpiry:  cfg.AccessExpiry,
		refreshExpiry: cfg.RefreshExpiry,
		issuer:        issuer,
		now:           time.Now,
	}, nil
}

func (m *TokenManager) registered(subject string, ttl time.Duration) jwt.RegisteredClaims {
	now := m.now().UTC()
	return jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		Subject:   subject,
		Issuer:    m.issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
}

// GenerateAccessToken signs an access token for the given identity.
func (m *TokenManager) GenerateAccessToken(userID, name, email string, version int) (string, error) {
	claims := &AccessClaims{
		UserID:           userID,
		Name:             name,
		Email:            email,
		Version:          version,
		RegisteredClaims: m.registered(userID, m.accessExpiry),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.accessSecret)
	if err != nil {
		return "", fmt.Errorf("sign access token: %w", err)
	}
	return signed, nil
}

// GenerateRefreshToken signs a refresh token carrying only the user id.
func (m *TokenManager) GenerateRefreshToken(userID string) (string, error) {
	claims := &RefreshClaims{
		UserID:           userID,
		RegisteredClaims: m.registered(userID, m.refreshExpiry),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.refreshSecret)
	if err != nil {
		return "", fmt.Errorf("sign refresh token: %w", err)
	}
	return signed, nil
}

// GeneratePair signs an access and a refresh token.
func (m *TokenManager) GeneratePair(userID, name, email string, version int) (TokenPair, error) {
	access, err := m.GenerateAccessToken(userID, name, email, version)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, err := m.GenerateRefreshToken(userID)
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

func (m *TokenManager) parserOptions() []jwt.ParserOption {
	return []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(m.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	}
}

// ValidateAccessToken verifies signature, algorithm, issuer and expiry and
// returns the claims.
func (m *TokenManager) ValidateAccessToken(raw string) (*AccessClaims, error) {
	claims := &AccessClaims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return m.accessSecret, nil
	}, m.parserOptions()...)
	if err != nil {
		return nil, fmt.Errorf("parse access token: %w", err)
	}
	if !token.Valid || claims.UserID == "" {
		return nil, errors.New("invalid access token claims")
	}
	return claims, nil
}

// ValidateRefreshToken verifies a refresh token and returns its claims.
func (m *TokenManager) ValidateRefreshToken(raw string) (*RefreshClaims, error) {
	claims := &RefreshClaims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return m.refreshSecret, nil
	}, m.parserOptions()...)
	if err != nil {
		return nil, fmt.Errorf("parse refresh token: %w", err)
	}
	if !token.Valid || claims.UserID == "" {
		return nil, errors.New("invalid refresh token claims")
	}
	return claims, nil
}
