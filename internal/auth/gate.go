package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strings"

	"github.com/Sagar-1103/taskify/internal/domain"
	apperrors "github.com/Sagar-1103/taskify/pkg/errors"
	"github.com/Sagar-1103/taskify/pkg/httputil"
	"github.com/Sagar-1103/taskify/pkg/logger"
	"github.com/Sagar-1103/taskify/pkg/validator"
)

// AccessTokenCookie is the cookie checked first for a bearer token.
const AccessTokenCookie = "accessToken"

// Client-facing gate failures.
const (
	MsgUnauthorized = "Unauthorized request"
	MsgInvalidToken = "Invalid Access Token"
	MsgRevokedToken = "Access token has been revoked"
)

// UserFinder loads the user a token refers to.
type UserFinder interface {
	GetByID(ctx context.Context, id string) (*domain.User, error)
}

// Gate authenticates requests by access token.
type Gate struct {
	tokens *TokenManager
	users  UserFinder
	logger *slog.Logger
}

// NewGate creates a Gate.
func NewGate(tokens *TokenManager, users UserFinder, logger *slog.Logger) *Gate {
	return &Gate{tokens: tokens, users: users, logger: logger}
}

// Authenticate resolves raw to a sanitized user. Every failure is a 401
// AppError; lookup failures other than not-found are wrapped as internal.
func (g *Gate) Authenticate(ctx context.Context, raw string) (*domain.User, error) {
	if raw == "" {
		return nil, apperrors.Unauthorized(MsgUnauthorized)
	}

	claims, err := g.tokens.ValidateAccessToken(raw)
	if err != nil {
		g.logger.DebugContext(ctx, "access token rejected", slog.String("error", err.Error()))
		return nil, apperrors.Unauthorized(MsgInvalidToken)
	}

	user, err := g.users.GetByID(ctx, claims.UserID)
	if errors.Is(err, apperrors.ErrNotFound) {
		return nil, apperrors.Unauthorized(MsgInvalidToken)
	}
	if err != nil {
		return nil, apperrors.Internal(fmt.Errorf("load token user: %w", err))
	}
	if user.TokenVersion != claims.Version {
		return nil, apperrors.Unauthorized(MsgRevokedToken)
	}

	return user.Sanitized(), nil
}

// Middleware rejects unauthenticated requests with a 401 envelope and stores
// the user in the request context otherwise. The request-scoped logger gains
// a user_id attribute.
func (g *Gate) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, err := g.Authenticate(r.Context(), ExtractToken(r))
		if err != nil {
			httputil.WriteError(w, r, err, g.logger)
			return
		}

		ctx := WithUser(r.Context(), user)
		ctx = logger.WithUserID(ctx, user.ID)
		ctx = logger.NewContext(ctx, logger.FromContext(r.Context()).With(slog.String("user_id", user.ID)))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// ExtractToken returns the access token from, in order of precedence, the
// accessToken cookie, a "token" field in a JSON body, or an
// "Authorization: Bearer" header. The body is restored for the next handler.
func ExtractToken(r *http.Request) string {
	if c, err := r.Cookie(AccessTokenCookie); err == nil && c.Value != "" {
		return c.Value
	}
	if tok := tokenFromBody(r); tok != "" {
		return tok
	}
	return bearerToken(r.Header.Get("Authorization"))
}

func tokenFromBody(r *http.Request) string {
	if r.Body == nil || r.Body == http.NoBody {
		return ""
	}
	if mt, _, err := mime.ParseMediaType(r.Header.Get("Content-Type")); err != nil || mt != "application/json" {
		return ""
	}

	buf, err := io.ReadAll(io.LimitReader(r.Body, validator.MaxBodyBytes+1))
	rest := r.Body
	r.Body = struct {
		io.Reader
		io.Closer
	}{io.MultiReader(bytes.NewReader(buf), rest), rest}
	if err != nil || len(buf) == 0 {
		return ""
	}

	var body struct {
		Token string `json:"token"`
	}
	if json.Unmarshal(buf, &body) != nil {
		return ""
	}
	return strings.TrimSpace(body.Token)
}

func bearerToken(header string) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
