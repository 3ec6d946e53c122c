package http

import (
	"errors"
	"net/http"

	"expansive/internal/core"
	applog "expansive/internal/log"
)

func (s *Server) handleRegisterForm(w http.ResponseWriter, r *http.Request) {
	if identityFrom(r).Valid() {
		http.Redirect(w, r, "/dashboard", http.StatusFound)
		return
	}
	s.render(w, "register.html", pageData{})
}

// handleRegister creates the account and sends the user to the login page.
// Registration never starts a session.
func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	_, err := s.accounts.Register(r.Context(),
		r.FormValue("username"),
		r.FormValue("email"),
		r.FormValue("password"),
	)
	switch {
	case errors.Is(err, core.ErrInvalidInput):
		http.Error(w, "Invalid Input", http.StatusBadRequest)
		return
	case errors.Is(err, core.ErrConflict):
		http.Error(w, "User Already Exists", http.StatusBadRequest)
		return
	case err != nil:
		s.renderError(w, r, err)
		return
	}

	http.Redirect(w, r, "/login", http.StatusFound)
}

func (s *Server) handleLoginForm(w http.ResponseWriter, r *http.Request) {
	if identityFrom(r).Valid() {
		http.Redirect(w, r, "/dashboard", http.StatusFound)
		return
	}
	s.render(w, "login.html", pageData{})
}

// handleLogin verifies credentials and starts a session. Unknown email and
// wrong password produce the same response.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	session, err := s.accounts.Login(r.Context(),
		r.FormValue("email"),
		r.FormValue("password"),
	)
	switch {
	case errors.Is(err, core.ErrInvalidCredentials):
		http.Error(w, "Invalid Login", http.StatusBadRequest)
		return
	case err != nil:
		s.renderError(w, r, err)
		return
	}

	s.setSessionCookie(w, session.Token, session.ExpiresAt)
	http.Redirect(w, r, "/dashboard", http.StatusFound)
}

// handleLogout drops the server-side session and clears the cookie. Safe to
// call anonymously.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if token := s.sessionToken(r); token != "" {
		if err := s.accounts.Logout(r.Context(), token); err != nil {
			s.logger.WarnContext(r.Context(), "Failed to delete session",
				applog.FieldError, err.Error(),
			)
		}
	}
	s.clearSessionCookie(w)
	http.Redirect(w, r, "/login", http.StatusFound)
}
