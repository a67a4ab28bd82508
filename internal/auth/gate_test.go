package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sagar-1103/taskify/internal/domain"
	apperrors "github.com/Sagar-1103/taskify/pkg/errors"
	"github.com/Sagar-1103/taskify/pkg/logger"
)

type fakeUsers struct {
	users map[string]*domain.User
	err   error
}

func (f *fakeUsers) GetByID(_ context.Context, id string) (*domain.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	u, ok := f.users[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	c := *u
	return &c, nil
}

func newTestGate(t *testing.T) (*Gate, *TokenManager, *fakeUsers) {
	t.Helper()
	tokens := newTestTokens(t)
	users := &fakeUsers{users: map[string]*domain.User{
		"user-1": {
			ID:           "user-1",
			Name:         "Ada",
			Email:        "ada@example.com",
			PasswordHash: "$2a$10$hash",
			RefreshToken: "digest",
			TokenVersion: 1,
		},
	}}
	return NewGate(tokens, users, slog.New(slog.NewTextHandler(io.Discard, nil))), tokens, users
}

func accessToken(t *testing.T, m *TokenManager, userID string, version int) string {
	t.Helper()
	raw, err := m.GenerateAccessToken(userID, "Ada", "ada@example.com", version)
	require.NoError(t, err)
	return raw
}

func assertUnauthorized(t *testing.T, err error, msg string) {
	t.Helper()
	var appErr *apperrors.AppError
	require.True(t, errors.As(err, &appErr), "want AppError, got %v", err)
	assert.Equal(t, http.StatusUnauthorized, appErr.Status)
	assert.Equal(t, msg, appErr.Message)
}

// --- Authenticate ---

func TestAuthenticate_Success(t *testing.T) {
	g, tokens, _ := newTestGate(t)

	u, err := g.Authenticate(context.Background(), accessToken(t, tokens, "user-1", 1))
	require.NoError(t, err)
	assert.Equal(t, "user-1", u.ID)
	assert.Empty(t, u.PasswordHash)
	assert.Empty(t, u.RefreshToken)
}

func TestAuthenticate_Failures(t *testing.T) {
	g, tokens, _ := newTestGate(t)

	expired := func() string {
		tokens.now = func() time.Time { return time.Now().Add(-3 * time.Hour) }
		defer func() { tokens.now = time.Now }()
		return accessToken(t, tokens, "user-1", 1)
	}()

	tests := []struct {
		name  string
		token string
		want  string
	}{
		{"missing", "", MsgUnauthorized},
		{"malformed", "abc.def.ghi", MsgInvalidToken},
		{"expired", expired, MsgInvalidToken},
		{"unknown user", accessToken(t, tokens, "ghost", 1), MsgInvalidToken},
		{"stale version", accessToken(t, tokens, "user-1", 0), MsgRevokedToken},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := g.Authenticate(context.Background(), tt.token)
			assertUnauthorized(t, err, tt.want)
		})
	}
}

func TestAuthenticate_StoreFailureIsInternal(t *testing.T) {
	g, tokens, users := newTestGate(t)
	users.err = errors.New("connection reset")

	_, err := g.Authenticate(context.Background(), accessToken(t, tokens, "user-1", 1))
	require.Error(t, err)
	assert.Equal(t, http.StatusInternalServerError, apperrors.HTTPStatus(err))
	assert.Contains(t, err.Error(), "connection reset")
}

// --- Middleware ---

func TestMiddleware_RejectsWithEnvelope(t *testing.T) {
	g, _, _ := newTestGate(t)
	called := false
	h := g.Middleware(http.HandlerFunc(func(http.ResponseWriter, *http.Request) { called = true }))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/tasks", nil))

	assert.False(t, called)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	var body map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, float64(401), body["statusCode"])
	assert.Equal(t, false, body["success"])
	assert.Equal(t, MsgUnauthorized, body["message"])
}

func TestMiddleware_StoresUser(t *testing.T) {
	g, tokens, _ := newTestGate(t)

	var (
		got    *domain.User
		userID string
	)
	h := g.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = UserFromContext(r.Context())
		userID = logger.UserIDFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest(http.MethodGet, "/tasks", nil)
	req.Header.Set("Authorization", "Bearer "+accessToken(t, tokens, "user-1", 1))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	require.NotNil(t, got)
	assert.Equal(t, "user-1", got.ID)
	assert.Empty(t, got.PasswordHash)
	assert.Equal(t, "user-1", userID)
}

// --- ExtractToken ---

func TestExtractToken_Precedence(t *testing.T) {
	newReq := func(body string) *http.Request {
		r := httptest.NewRequest(http.MethodPost, "/auth/logout", strings.NewReader(body))
		r.Header.Set("Content-Type", "application/json")
		return r
	}

	r := newReq(`{"token":"from-body"}`)
	r.AddCookie(&http.Cookie{Name: AccessTokenCookie, Value: "from-cookie"})
	r.Header.Set("Authorization", "Bearer from-header")
	assert.Equal(t, "from-cookie", ExtractToken(r))

	r = newReq(`{"token":"from-body"}`)
	r.Header.Set("Authorization", "Bearer from-header")
	assert.Equal(t, "from-body", ExtractToken(r))

	r = newReq(`{"title":"x"}`)
	r.Header.Set("Authorization", "Bearer from-header")
	assert.Equal(t, "from-header", ExtractToken(r))
}

func TestExtractToken_EmptyCookieFallsThrough(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/tasks", nil)
	r.AddCookie(&http.Cookie{Name: AccessTokenCookie, Value: ""})
	r.Header.Set("Authorization", "Bearer from-header")
	assert.Equal(t, "from-header", ExtractToken(r))
}

func TestExtractToken_BodyIsRestored(t *testing.T) {
	body := `{"token":"abc","title":"Write docs"}`
	r := httptest.NewRequest(http.MethodPost, "/tasks", strings.NewReader(body))
	r.Header.Set("Content-Type", "application/json; charset=utf-8")

	assert.Equal(t, "abc", ExtractToken(r))

	rest, err := io.ReadAll(r.Body)
	require.NoError(t, err)
	assert.Equal(t, body, string(rest))
}

func TestExtractToken_IgnoresNonJSONBody(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/tasks", bytes.NewBufferString(`{"token":"abc"}`))
	r.Header.Set("Content-Type", "text/plain")
	assert.Empty(t, ExtractToken(r))
}

func TestBearerToken(t *testing.T) {
	tests := map[string]string{
		"Bearer abc":    "abc",
		"bearer abc":    "abc",
		"  Bearer  abc": "abc",
		"Basic abc":     "",
		"abc":           "",
		"Bearer":        "",
		"":              "",
	}
	for in, want := range tests {
		assert.Equal(t, want, bearerToken(in), "header %q", in)
	}
}
