package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"expansive/internal/auth"
	"expansive/internal/core"
)

// SessionCookieName is the name of the session cookie.
const SessionCookieName = "session"

type contextKey string

const identityContextKey contextKey = "identity"

// withIdentity resolves the session cookie once at the boundary and injects
// the identity into the request context. Missing, tampered or expired
// sessions leave the request anonymous; the route guards decide what that
// means.
func (s *Server) withIdentity(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(SessionCookieName)
		if err != nil || cookie.Value == "" {
			next(w, r)
			return
		}

		token, ok := auth.VerifyToken(cookie.Value, s.secret)
		if !ok {
			// Tampered or foreign cookie; drop it.
			s.clearSessionCookie(w)
			next(w, r)
			return
		}

		identity, err := s.accounts.Resolve(r.Context(), token)
		if err != nil {
			if errors.Is(err, core.ErrUnauthenticated) {
				s.clearSessionCookie(w)
			}
			next(w, r)
			return
		}

		ctx := context.WithValue(r.Context(), identityContextKey, identity)
		next(w, r.WithContext(ctx))
	}
}

// requirePage guards page routes: anonymous callers are redirected to the
// login page, never shown an error.
func (s *Server) requirePage(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !identityFrom(r).Valid() {
			http.Redirect(w, r, "/login", http.StatusFound)
			return
		}
		next(w, r)
	}
}

// identityFrom returns the authenticated identity, or the zero Identity for
// anonymous requests.
func identityFrom(r *http.Request) core.Identity {
	if id, ok := r.Context().Value(identityContextKey).(core.Identity); ok {
		return id
	}
	return core.Identity{}
}

// sessionToken extracts the verified bare session token from the request, if
// any. Used by logout to drop the server-side row.
func (s *Server) sessionToken(r *http.Request) string {
	cookie, err := r.Cookie(SessionCookieName)
	if err != nil || cookie.Value == "" {
		return ""
	}
	token, ok := auth.VerifyToken(cookie.Value, s.secret)
	if !ok {
		return ""
	}
	return token
}

func (s *Server) setSessionCookie(w http.ResponseWriter, token string, expiresAt time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    auth.SignToken(token, s.secret),
		Path:     "/",
		MaxAge:   int(time.Until(expiresAt).Seconds()),
		HttpOnly: true,
		Secure:   s.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})
}

func (s *Server) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})
}
