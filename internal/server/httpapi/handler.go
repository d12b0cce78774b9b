// Package httpapi exposes the session lifecycle over a small JSON API:
//
//	POST /api/v1/auth/signup
//	POST /api/v1/auth/login
//	POST /api/v1/auth/refresh
//	POST /api/v1/auth/logout
//	GET  /api/v1/me
//
// Handlers stay thin: decode, call the service, translate the sentinel
// error into a stable machine-readable key.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/Anish-3-12/public-issue/internal/common"
	"github.com/Anish-3-12/public-issue/internal/logging"
	"github.com/Anish-3-12/public-issue/internal/server/middleware"
	"github.com/Anish-3-12/public-issue/internal/server/models"
	"github.com/Anish-3-12/public-issue/internal/server/services"
)

const minPasswordLength = 8

// SessionService is the part of the session layer the handlers call.
type SessionService interface {
	Login(ctx context.Context, email, password string) (*services.TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (string, error)
	Logout(ctx context.Context, refreshToken string) error
}

// UserService is the part of the user layer the handlers call.
type UserService interface {
	Signup(ctx context.Context, name, email, password string) (*models.User, error)
	FindByID(ctx context.Context, id string) (*models.User, error)
}

type Handler struct {
	sessions SessionService
	users    UserService
	logger   logging.Logger
}

func NewHandler(sessions SessionService, users UserService, logger logging.Logger) *Handler {
	return &Handler{
		sessions: sessions,
		users:    users,
		logger:   logger.With("module", "httpapi"),
	}
}

// Register wires the routes onto mux. The auth endpoints are public; /me
// sits behind RequireAuth and expects the authentication filter to have
// run already.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/v1/auth/signup", h.signup)
	mux.HandleFunc("POST /api/v1/auth/login", h.login)
	mux.HandleFunc("POST /api/v1/auth/refresh", h.refresh)
	mux.HandleFunc("POST /api/v1/auth/logout", h.logout)
	mux.Handle("GET /api/v1/me", middleware.RequireAuth(http.HandlerFunc(h.me)))
}

type signupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type userResponse struct {
	ID    string      `json:"id"`
	Name  string      `json:"name"`
	Email string      `json:"email"`
	Role  models.Role `json:"role"`
}

func toUserResponse(u *models.User) userResponse {
	return userResponse{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role}
}

func (h *Handler) signup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request")
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	if req.Name == "" || req.Email == "" || len(req.Password) < minPasswordLength {
		writeError(w, http.StatusBadRequest, "invalid_request")
		return
	}

	user, err := h.users.Signup(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			writeError(w, http.StatusConflict, "email_already_registered")
			return
		}
		h.internalError(w, r, "signup failed", err)
		return
	}
	writeJSON(w, http.StatusCreated, toUserResponse(user))
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type tokenPairResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request")
		return
	}

	pair, err := h.sessions.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, common.ErrBadCredentials) {
			writeError(w, http.StatusUnauthorized, "invalid_credentials")
			return
		}
		h.internalError(w, r, "login failed", err)
		return
	}
	writeJSON(w, http.StatusOK, tokenPairResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	})
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

func (h *Handler) refresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.RefreshToken == "" {
		writeError(w, http.StatusBadRequest, "refresh_token_required")
		return
	}

	access, err := h.sessions.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		if errors.Is(err, common.ErrRefreshTokenInvalid) {
			writeError(w, http.StatusUnauthorized, "invalid_or_expired_refresh_token")
			return
		}
		h.internalError(w, r, "refresh failed", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"access_token": access})
}

// logout reports ok whether or not the token was live, so the endpoint
// cannot be used to probe token validity.
func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err == nil && req.RefreshToken != "" {
		if err := h.sessions.Logout(r.Context(), req.RefreshToken); err != nil {
			h.internalError(w, r, "logout failed", err)
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) me(w http.ResponseWriter, r *http.Request) {
	principal, _ := middleware.PrincipalFromContext(r.Context())

	user, err := h.users.FindByID(r.Context(), principal.UserID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		h.internalError(w, r, "user lookup failed", err)
		return
	}
	writeJSON(w, http.StatusOK, toUserResponse(user))
}

func (h *Handler) internalError(w http.ResponseWriter, r *http.Request, msg string, err error) {
	h.logger.Error(r.Context(), msg, "error", err.Error())
	writeError(w, http.StatusInternalServerError, "internal_error")
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, key string) {
	writeJSON(w, status, map[string]string{"error": key})
}
