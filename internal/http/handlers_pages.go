package http

import (
	"errors"
	"net/http"
	"strconv"

	"expansive/internal/core"
	applog "expansive/internal/log"
)

// pageData feeds the single-page template. ActiveSection drives which panel
// the layout highlights.
type pageData struct {
	Username      string
	ActiveSection string
	Expenses      []core.Expense
	Summary       core.Summary
}

func (s *Server) handleWelcome(w http.ResponseWriter, r *http.Request) {
	s.render(w, "welcome.html", pageData{Username: identityFrom(r).Username})
}

// handleRoot routes the bare path to the dashboard for authenticated users
// and to the welcome page for everyone else.
func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if identityFrom(r).Valid() {
		http.Redirect(w, r, "/dashboard", http.StatusFound)
		return
	}
	http.Redirect(w, r, "/welcome", http.StatusFound)
}

// sectionHandler renders the app shell with the named section active. The
// dashboard, add, analytics and history pages share one template and one
// data load.
func (s *Server) sectionHandler(section string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity := identityFrom(r)

		expenses, err := s.expenses.List(r.Context(), identity.UserID)
		if err != nil {
			s.renderError(w, r, err)
			return
		}
		summary, err := s.expenses.Summarize(r.Context(), identity.UserID)
		if err != nil {
			s.renderError(w, r, err)
			return
		}

		s.render(w, "index.html", pageData{
			Username:      identity.Username,
			ActiveSection: section,
			Expenses:      expenses,
			Summary:       summary,
		})
	}
}

// handleAddExpense accepts the add form. Invalid input is skipped without an
// error page: the user lands back on the dashboard either way.
func (s *Server) handleAddExpense(w http.ResponseWriter, r *http.Request) {
	identity := identityFrom(r)

	ne, err := core.ValidateNewExpense(
		r.FormValue("title"),
		r.FormValue("amount"),
		r.FormValue("category"),
	)
	if err != nil {
		s.logger.InfoContext(r.Context(), "Skipping invalid expense form",
			applog.FieldUserID, identity.UserID,
			applog.FieldError, err.Error(),
		)
		http.Redirect(w, r, "/dashboard", http.StatusFound)
		return
	}

	if _, err := s.expenses.Add(r.Context(), identity.UserID, ne); err != nil {
		s.renderError(w, r, err)
		return
	}
	http.Redirect(w, r, "/dashboard", http.StatusFound)
}

// handleDeleteExpense removes an owned expense. A bad or non-numeric ID and
// someone else's row are all silent no-ops for the page surface.
func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	identity := identityFrom(r)

	err := core.ErrNotFound
	if id, perr := strconv.ParseInt(r.PathValue("id"), 10, 64); perr == nil {
		err = s.expenses.Delete(r.Context(), identity.UserID, id)
	}
	if err != nil && !errors.Is(err, core.ErrNotFound) && !errors.Is(err, core.ErrNotOwner) {
		s.renderError(w, r, err)
		return
	}
	http.Redirect(w, r, "/dashboard", http.StatusFound)
}

func (s *Server) render(w http.ResponseWriter, name string, data pageData) {
	if s.templates == nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.templates.ExecuteTemplate(w, name, data); err != nil {
		s.logger.Error("Failed rendering template", "template", name, applog.FieldError, err.Error())
	}
}

func (s *Server) renderError(w http.ResponseWriter, r *http.Request, err error) {
	s.logger.ErrorContext(r.Context(), "Request failed",
		applog.FieldPath, r.URL.Path,
		applog.FieldError, err.Error(),
	)
	if errors.Is(err, core.ErrStoreBusy) {
		http.Error(w, "Service Unavailable", http.StatusServiceUnavailable)
		return
	}
	http.Error(w, "Internal Server Error", http.StatusInternalServerError)
}
