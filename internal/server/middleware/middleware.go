// Package middleware provides the HTTP authentication filter and the
// authorization guards built on top of it.
//
// Authenticate never rejects a request by itself: a missing, malformed,
// expired or otherwise invalid access token simply leaves the request
// anonymous. Whether anonymous is acceptable is decided downstream by
// RequireAuth / RequireRole.
package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/Anish-3-12/public-issue/internal/common"
	"github.com/Anish-3-12/public-issue/internal/logging"
	"github.com/Anish-3-12/public-issue/internal/server/auth"
	"github.com/Anish-3-12/public-issue/internal/server/models"
)

type ctxKey int

const principalKey ctxKey = 0

const bearerPrefix = "Bearer "

// UserFinder is the slice of the user store the filter needs to confirm
// that a token's subject still exists.
type UserFinder interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
}

// Authenticator turns valid bearer tokens into a request-scoped Principal.
type Authenticator struct {
	codec  *auth.Codec
	users  UserFinder
	logger logging.Logger
	now    func() time.Time
}

func NewAuthenticator(codec *auth.Codec, users UserFinder, logger logging.Logger) *Authenticator {
	return &Authenticator{
		codec:  codec,
		users:  users,
		logger: logger.With("module", "auth_filter"),
		now:    time.Now,
	}
}

// Authenticate inspects the Authorization header and, when it carries a
// verifiable access token for an existing user, stores the Principal in the
// request context. On any failure the request proceeds anonymously.
func (a *Authenticator) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" {
			next.ServeHTTP(w, r)
			return
		}

		tokenString, ok := strings.CutPrefix(header, bearerPrefix)
		if !ok || tokenString == "" {
			next.ServeHTTP(w, r)
			return
		}

		claims, err := a.codec.Verify(tokenString, a.now())
		if err != nil {
			a.logger.Debug(r.Context(), "access token rejected", "reason", err.Error())
			next.ServeHTTP(w, r)
			return
		}

		user, err := a.users.FindByID(r.Context(), claims.Subject)
		if err != nil {
			if !errors.Is(err, common.ErrorNotFound) {
				a.logger.Error(r.Context(), "user lookup failed", "error", err.Error())
			}
			next.ServeHTTP(w, r)
			return
		}

		principal := &models.Principal{UserID: user.ID, Role: user.Role}
		next.ServeHTTP(w, r.WithContext(withPrincipal(r.Context(), principal)))
	})
}

func withPrincipal(ctx context.Context, p *models.Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

// PrincipalFromContext returns the authenticated identity, if any.
func PrincipalFromContext(ctx context.Context) (*models.Principal, bool) {
	p, ok := ctx.Value(principalKey).(*models.Principal)
	return p, ok
}

// RequireAuth rejects anonymous requests with 401.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := PrincipalFromContext(r.Context()); !ok {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireRole rejects anonymous requests with 401 and authenticated
// requests of a different role with 403.
func RequireRole(role models.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, ok := PrincipalFromContext(r.Context())
			if !ok {
				writeError(w, http.StatusUnauthorized, "unauthorized")
				return
			}
			if p.Role != role {
				writeError(w, http.StatusForbidden, "forbidden")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func writeError(w http.ResponseWriter, status int, key string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": key})
}
