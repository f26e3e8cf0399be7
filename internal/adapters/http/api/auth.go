package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/okian/liao/internal/adapters/session"
	"github.com/okian/liao/pkg/metrics"
)

// AuthDependencies is the session surface used by AuthHandler.
type AuthDependencies interface {
	Login(ctx context.Context, code string) (string, session.Session, error)
	SessionTTL() time.Duration
}

// AuthHandler exchanges passcodes for session cookies.
type AuthHandler struct {
	deps       AuthDependencies
	limiter    *session.IPRateLimiter
	cookieName string
	secure     bool
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(deps AuthDependencies, limiter *session.IPRateLimiter, cookieName string, secure bool) *AuthHandler {
	return &AuthHandler{deps: deps, limiter: limiter, cookieName: cookieName, secure: secure}
}

type loginRequest struct {
	Code string `json:"code"`
}

type sessionResponse struct {
	Token     string    `json:"token,omitempty"`
	ExpiresAt time.Time `json:"expires_at"`
}

// HandleLogin handles POST /api/login.
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	const op = "api.login"
	if h.limiter != nil && !h.limiter.Allow(session.ClientIP(r)) {
		metrics.RecordLoginAttempt("rate_limited")
		writeServiceError(w, op, session.ErrRateLimited)
		return
	}
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeServiceError(w, op, fmt.Errorf("%w: %v", ErrBadRequest, err))
		return
	}
	token, sess, err := h.deps.Login(r.Context(), req.Code)
	if err != nil {
		writeServiceError(w, op, err)
		return
	}
	http.SetCookie(w, session.Cookie(h.cookieName, token, h.deps.SessionTTL(), h.secure))
	writeJSON(w, http.StatusOK, sessionResponse{Token: token, ExpiresAt: sess.ExpiresAt})
}

// HandleLogout handles POST /api/logout. It always succeeds.
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, _ *http.Request) {
	http.SetCookie(w, session.ClearCookie(h.cookieName, h.secure))
	w.WriteHeader(http.StatusNoContent)
}

// HandleSession handles GET /api/session for an authenticated caller.
func (h *AuthHandler) HandleSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := SessionFrom(r.Context())
	if !ok {
		writeServiceError(w, "api.session", ErrUnauthorized)
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse{ExpiresAt: sess.ExpiresAt})
}
