package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testAccessSecret  = "access-secret-for-tests-0123456789abcdef"
	testRefreshSecret = "refresh-secret-for-tests-0123456789abcdef"
)

func newTestTokens(t *testing.T) *TokenManager {
	t.Helper()
	m, err := NewTokenManager(TokenConfig{
		AccessSecret:  testAccessSecret,
		RefreshSecret: testRefreshSecret,
		AccessExpiry:  time.Hour,
		RefreshExpiry: 7 * 24 * time.Hour,
	})
	require.NoError(t, err)
	return m
}

func TestNewTokenManager_Validation(t *testing.T) {
	base := TokenConfig{AccessSecret: "a", RefreshSecret: "b", AccessExpiry: time.Hour, RefreshExpiry: time.Hour}

	tests := []struct {
		name   string
		mutate func(*TokenConfig)
		want   string
	}{
		{"missing access secret", func(c *TokenConfig) { c.AccessSecret = "" }, "access token secret is not set"},
		{"missing refresh secret", func(c *TokenConfig) { c.RefreshSecret = "" }, "refresh token secret is not set"},
		{"same secrets", func(c *TokenConfig) { c.RefreshSecret = c.AccessSecret }, "must differ"},
		{"zero access expiry", func(c *TokenConfig) { c.AccessExpiry = 0 }, "access token expiry"},
		{"negative refresh expiry", func(c *TokenConfig) { c.RefreshExpiry = -time.Second }, "refresh token expiry"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base
			tt.mutate(&cfg)
			_, err := NewTokenManager(cfg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}

	m, err := NewTokenManager(base)
	require.NoError(t, err)
	assert.Equal(t, DefaultIssuer, m.issuer)
}

func TestAccessToken_RoundTrip(t *testing.T) {
	m := newTestTokens(t)

	raw, err := m.GenerateAccessToken("user-1", "Ada", "ada@example.com", 2)
	require.NoError(t, err)

	claims, err := m.ValidateAccessToken(raw)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "Ada", claims.Name)
	assert.Equal(t, "ada@example.com", claims.Email)
	assert.Equal(t, 2, claims.Version)
	assert.Equal(t, "user-1", claims.Subject)
	assert.Equal(t, DefaultIssuer, claims.Issuer)
	assert.WithinDuration(t, time.Now().Add(time.Hour), claims.ExpiresAt.Time, 5*time.Second)
}

func TestAccessToken_Expired(t *testing.T) {
	m := newTestTokens(t)
	m.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	raw, err := m.GenerateAccessToken("user-1", "Ada", "ada@example.com", 0)
	require.NoError(t, err)

	m.now = time.Now
	_, err = m.ValidateAccessToken(raw)
	require.Error(t, err)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestAccessToken_WrongSecret(t *testing.T) {
	m := newTestTokens(t)
	other, err := NewTokenManager(TokenConfig{
		AccessSecret: "some-other-access-secret", RefreshSecret: testRefreshSecret,
		AccessExpiry: time.Hour, RefreshExpiry: time.Hour,
	})
	require.NoError(t, err)

	raw, err := other.GenerateAccessToken("user-1", "Ada", "ada@example.com", 0)
	require.NoError(t, err)

	_, err = m.ValidateAccessToken(raw)
	assert.ErrorIs(t, err, jwt.ErrTokenSignatureInvalid)
}

func TestAccessToken_RejectsRefreshToken(t *testing.T) {
	m := newTestTokens(t)
	refresh, err := m.GenerateRefreshToken("user-1")
	require.NoError(t, err)

	_, err = m.ValidateAccessToken(refresh)
	require.Error(t, err)
}

func TestAccessToken_RejectsOtherAlgorithms(t *testing.T) {
	m := newTestTokens(t)
	claims := &AccessClaims{UserID: "user-1", RegisteredClaims: m.registered("user-1", time.Hour)}

	hs512, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte(testAccessSecret))
	require.NoError(t, err)
	_, err = m.ValidateAccessToken(hs512)
	assert.ErrorIs(t, err, jwt.ErrTokenSignatureInvalid)

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = m.ValidateAccessToken(none)
	assert.Error(t, err)
}

func TestAccessToken_WrongIssuer(t *testing.T) {
	m := newTestTokens(t)
	claims := &AccessClaims{UserID: "user-1", RegisteredClaims: m.registered("user-1", time.Hour)}
	claims.Issuer = "someone-else"

	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testAccessSecret))
	require.NoError(t, err)
	_, err = m.ValidateAccessToken(raw)
	assert.ErrorIs(t, err, jwt.ErrTokenInvalidIssuer)
}

func TestAccessToken_Malformed(t *testing.T) {
	_, err := newTestTokens(t).ValidateAccessToken("not.a.jwt")
	assert.ErrorIs(t, err, jwt.ErrTokenMalformed)
}

func TestRefreshToken_RoundTrip(t *testing.T) {
	m := newTestTokens(t)
	raw, err := m.GenerateRefreshToken("user-1")
	require.NoError(t, err)

	claims, err := m.ValidateRefreshToken(raw)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.WithinDuration(t, time.Now().Add(7*24*time.Hour), claims.ExpiresAt.Time, 5*time.Second)
}

func TestGeneratePair_UniqueRefreshTokens(t *testing.T) {
	m := newTestTokens(t)
	a, err := m.GeneratePair("user-1", "Ada", "ada@example.com", 0)
	require.NoError(t, err)
	b, err := m.GeneratePair("user-1", "Ada", "ada@example.com", 0)
	require.NoError(t, err)

	assert.NotEqual(t, a.RefreshToken, b.RefreshToken, "tokens issued in the same second must still differ")
	assert.NotEqual(t, a.AccessToken, a.RefreshToken)
}
