package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Anish-3-12/public-issue/internal/common"
	"github.com/Anish-3-12/public-issue/internal/logging"
	"github.com/Anish-3-12/public-issue/internal/server/auth"
	"github.com/Anish-3-12/public-issue/internal/server/models"
)

type fakeUserFinder struct {
	users map[string]*models.User
	err   error
}

func (f *fakeUserFinder) FindByID(ctx context.Context, id string) (*models.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	u, ok := f.users[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return u, nil
}

func testAuthenticator(t *testing.T) (*Authenticator, *auth.Codec, *fakeUserFinder) {
	t.Helper()
	codec, err := auth.NewCodec([]byte("0123456789abcdef0123456789abcdef"), 15*time.Minute)
	if err != nil {
		t.Fatalf("NewCodec error: %v", err)
	}
	users := &fakeUserFinder{users: map[string]*models.User{
		"u1": {ID: "u1", Email: "asha@example.com", Role: models.RoleCitizen},
		"u2": {ID: "u2", Email: "root@example.com", Role: models.RoleAdmin},
	}}
	logger := logging.NewSlogLogger(slog.New(slog.DiscardHandler))
	return NewAuthenticator(codec, users, logger), codec, users
}

// capture records the principal (or its absence) seen by the inner handler.
type capture struct {
	called    bool
	principal *models.Principal
	ok        bool
}

func (c *capture) handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c.called = true
		c.principal, c.ok = PrincipalFromContext(r.Context())
	})
}

func doRequest(t *testing.T, h http.Handler, authorization string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/me", nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestAuthenticate_ValidToken(t *testing.T) {
	a, codec, _ := testAuthenticator(t)
	token, err := codec.Issue("u1", "asha@example.com", models.RoleCitizen, time.Now())
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	var c capture
	rec := doRequest(t, a.Authenticate(c.handler()), "Bearer "+token)

	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", rec.Code)
	}
	if !c.ok {
		t.Fatalf("expected principal in context")
	}
	if c.principal.UserID != "u1" || c.principal.Role != models.RoleCitizen {
		t.Fatalf("unexpected principal: %+v", c.principal)
	}
}

func TestAuthenticate_FailuresProceedAnonymously(t *testing.T) {
	a, codec, users := testAuthenticator(t)

	now := time.Now()
	expired, err := codec.Issue("u1", "asha@example.com", models.RoleCitizen, now.Add(-time.Hour))
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}
	orphan, err := codec.Issue("gone", "gone@example.com", models.RoleCitizen, now)
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	otherCodec, err := auth.NewCodec([]byte("another-secret-another-secret-32"), 15*time.Minute)
	if err != nil {
		t.Fatalf("NewCodec error: %v", err)
	}
	forged, err := otherCodec.Issue("u1", "asha@example.com", models.RoleCitizen, now)
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	good, err := codec.Issue("u1", "asha@example.com", models.RoleCitizen, now)
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	tests := []struct {
		name          string
		authorization string
	}{
		{"no header", ""},
		{"wrong scheme", "Basic dXNlcjpwdw=="},
		{"bare bearer", "Bearer "},
		{"garbage token", "Bearer not.a.jwt"},
		{"tampered token", "Bearer " + flipLastPayloadByte(t, good)},
		{"forged signature", "Bearer " + forged},
		{"expired token", "Bearer " + expired},
		{"unknown subject", "Bearer " + orphan},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var c capture
			rec := doRequest(t, a.Authenticate(c.handler()), tt.authorization)
			if rec.Code != http.StatusOK {
				t.Fatalf("filter must not reject, got status %d", rec.Code)
			}
			if !c.called {
				t.Fatalf("inner handler not reached")
			}
			if c.ok {
				t.Fatalf("request must stay anonymous, got principal %+v", c.principal)
			}
		})
	}

	// A transient store failure degrades to anonymous too.
	users.err = context.DeadlineExceeded
	var c capture
	rec := doRequest(t, a.Authenticate(c.handler()), "Bearer "+good)
	if rec.Code != http.StatusOK || c.ok {
		t.Fatalf("store failure must degrade to anonymous, status=%d ok=%v", rec.Code, c.ok)
	}
}

func flipLastPayloadByte(t *testing.T, token string) string {
	t.Helper()
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		t.Fatalf("unexpected token shape: %q", token)
	}
	payload := []byte(parts[1])
	i := len(payload) - 1
	if payload[i] == 'A' {
		payload[i] = 'B'
	} else {
		payload[i] = 'A'
	}
	parts[1] = string(payload)
	return strings.Join(parts, ".")
}

func TestRequireAuth(t *testing.T) {
	var c capture

	rec := doRequest(t, RequireAuth(c.handler()), "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous request: want 401, got %d", rec.Code)
	}
	if c.called {
		t.Fatalf("inner handler must not run for anonymous requests")
	}
	if got := rec.Body.String(); !strings.Contains(got, `"unauthorized"`) {
		t.Fatalf("unexpected body: %s", got)
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(withPrincipal(req.Context(), &models.Principal{UserID: "u1", Role: models.RoleCitizen}))
	rec = httptest.NewRecorder()
	RequireAuth(c.handler()).ServeHTTP(rec, req)
	if rec.Code != http.StatusOK || !c.called {
		t.Fatalf("authenticated request must pass, status=%d called=%v", rec.Code, c.called)
	}
}

func TestRequireRole(t *testing.T) {
	guard := RequireRole(models.RoleAdmin)

	run := func(p *models.Principal) (*httptest.ResponseRecorder, *capture) {
		var c capture
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if p != nil {
			req = req.WithContext(withPrincipal(req.Context(), p))
		}
		rec := httptest.NewRecorder()
		guard(c.handler()).ServeHTTP(rec, req)
		return rec, &c
	}

	if rec, _ := run(nil); rec.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous: want 401, got %d", rec.Code)
	}
	if rec, c := run(&models.Principal{UserID: "u1", Role: models.RoleCitizen}); rec.Code != http.StatusForbidden || c.called {
		t.Fatalf("citizen: want 403 without handler call, got %d called=%v", rec.Code, c.called)
	}
	if rec, c := run(&models.Principal{UserID: "u2", Role: models.RoleAdmin}); rec.Code != http.StatusOK || !c.called {
		t.Fatalf("admin: want pass-through, got %d called=%v", rec.Code, c.called)
	}
}

func TestAuthenticate_ThenRequireRoleChain(t *testing.T) {
	a, codec, _ := testAuthenticator(t)
	adminToken, err := codec.Issue("u2", "root@example.com", models.RoleAdmin, time.Now())
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}
	citizenToken, err := codec.Issue("u1", "asha@example.com", models.RoleCitizen, time.Now())
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	var c capture
	chain := a.Authenticate(RequireRole(models.RoleAdmin)(c.handler()))

	if rec := doRequest(t, chain, "Bearer "+adminToken); rec.Code != http.StatusOK {
		t.Fatalf("admin through chain: want 200, got %d", rec.Code)
	}
	if rec := doRequest(t, chain, "Bearer "+citizenToken); rec.Code != http.StatusForbidden {
		t.Fatalf("citizen through chain: want 403, got %d", rec.Code)
	}
	if rec := doRequest(t, chain, ""); rec.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous through chain: want 401, got %d", rec.Code)
	}
}
