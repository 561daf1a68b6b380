package httpadapter

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"adtest/internal/core/domain"
	"adtest/internal/session"
)

type sessionCtxKey struct{}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// sessionFrom returns the session attached by requireSession, or nil.
func sessionFrom(ctx context.Context) *domain.Session {
	s, _ := ctx.Value(sessionCtxKey{}).(*domain.Session)
	return s
}

func (h *Handler) currentSession(r *http.Request) *domain.Session {
	cookie, err := r.Cookie(session.CookieName)
	if err != nil {
		return nil
	}
	return h.sessions.Load(cookie.Value)
}

// requireSession rejects requests without a live session cookie.
func (h *Handler) requireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s := h.currentSession(r)
		if s == nil {
			h.writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "unauthorized"})
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), sessionCtxKey{}, s)))
	})
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.badRequest(w, "invalid JSON")
		return
	}
	s, err := h.sessions.Login(req.Username, req.Password)
	if errors.Is(err, session.ErrInvalidCredentials) {
		h.writeJSON(w, http.StatusUnauthorized, errorResponse{Error: err.Error()})
		return
	}
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     session.CookieName,
		Value:    s.Token,
		Path:     "/",
		HttpOnly: true,
		Expires:  s.ExpiresAt,
		MaxAge:   int(time.Until(s.ExpiresAt) / time.Second),
		SameSite: http.SameSiteLaxMode,
	})
	h.writeJSON(w, http.StatusOK, s)
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(session.CookieName); err == nil {
		h.sessions.Logout(cookie.Value)
	}
	http.SetCookie(w, &http.Cookie{
		Name:     session.CookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleSession(w http.ResponseWriter, r *http.Request) {
	s := h.currentSession(r)
	if s == nil {
		h.writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "unauthorized"})
		return
	}
	h.writeJSON(w, http.StatusOK, s)
}
