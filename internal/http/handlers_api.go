package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"expansive/internal/core"
	applog "expansive/internal/log"
)

// successResponse is the envelope for successful mutations. Summary and
// Items are returned together so clients refresh in one round trip; items is
// always present, even when the list just became empty.
type successResponse struct {
	OK      bool         `json:"ok"`
	Summary core.Summary `json:"summary"`
	Items   []apiItem    `json:"items"`
}

// failureResponse is the envelope for failed API calls. The zero value
// renders as the bare {"ok":false} body.
type failureResponse struct {
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

type apiItem struct {
	ID       int64      `json:"id"`
	Title    string     `json:"title"`
	Amount   core.Money `json:"amount"`
	Category string     `json:"category"`
	Date     string     `json:"date"`
}

type addRequest struct {
	Title    string      `json:"title"`
	Amount   json.Number `json:"amount"`
	Category string      `json:"category"`
}

// handleAPIAdd creates an expense from a JSON body and responds with the
// refreshed summary and item list.
func (s *Server) handleAPIAdd(w http.ResponseWriter, r *http.Request) {
	identity := identityFrom(r)
	if !identity.Valid() {
		writeJSON(w, http.StatusUnauthorized, failureResponse{Error: "not_logged_in"})
		return
	}

	var req addRequest
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()
	if err := dec.Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, failureResponse{Error: "invalid_input"})
		return
	}

	ne, err := core.ValidateNewExpense(req.Title, req.Amount.String(), req.Category)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, failureResponse{Error: "invalid_input"})
		return
	}

	if _, err := s.expenses.Add(r.Context(), identity.UserID, ne); err != nil {
		s.apiError(w, r, err)
		return
	}
	s.writeState(w, r, identity.UserID)
}

// handleAPIDelete removes an owned expense. Malformed IDs, unknown IDs and
// rows the caller does not own all read as a plain failure.
func (s *Server) handleAPIDelete(w http.ResponseWriter, r *http.Request) {
	identity := identityFrom(r)
	if !identity.Valid() {
		writeJSON(w, http.StatusUnauthorized, failureResponse{Error: "not_logged_in"})
		return
	}

	err := core.ErrNotFound
	if id, perr := strconv.ParseInt(r.PathValue("id"), 10, 64); perr == nil {
		err = s.expenses.Delete(r.Context(), identity.UserID, id)
	}
	switch {
	case err == nil:
		s.writeState(w, r, identity.UserID)
	case errors.Is(err, core.ErrNotFound), errors.Is(err, core.ErrNotOwner):
		writeJSON(w, http.StatusBadRequest, failureResponse{})
	default:
		s.apiError(w, r, err)
	}
}

// handleAPIExpenses lists the caller's expenses. Anonymous callers get an
// empty list rather than an error.
func (s *Server) handleAPIExpenses(w http.ResponseWriter, r *http.Request) {
	identity := identityFrom(r)
	if !identity.Valid() {
		writeJSON(w, http.StatusOK, []apiItem{})
		return
	}

	expenses, err := s.expenses.List(r.Context(), identity.UserID)
	if err != nil {
		s.apiError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toItems(expenses))
}

// handleAPISummary reports the caller's totals. Anonymous callers get an
// empty object.
func (s *Server) handleAPISummary(w http.ResponseWriter, r *http.Request) {
	identity := identityFrom(r)
	if !identity.Valid() {
		writeJSON(w, http.StatusOK, struct{}{})
		return
	}

	summary, err := s.expenses.Summarize(r.Context(), identity.UserID)
	if err != nil {
		s.apiError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

// writeState responds with the post-mutation summary and item list.
func (s *Server) writeState(w http.ResponseWriter, r *http.Request, userID int64) {
	summary, err := s.expenses.Summarize(r.Context(), userID)
	if err != nil {
		s.apiError(w, r, err)
		return
	}
	expenses, err := s.expenses.List(r.Context(), userID)
	if err != nil {
		s.apiError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, successResponse{
		OK:      true,
		Summary: summary,
		Items:   toItems(expenses),
	})
}

func (s *Server) apiError(w http.ResponseWriter, r *http.Request, err error) {
	s.logger.ErrorContext(r.Context(), "API request failed",
		applog.FieldPath, r.URL.Path,
		applog.FieldError, err.Error(),
	)
	if errors.Is(err, core.ErrStoreBusy) {
		writeJSON(w, http.StatusServiceUnavailable, failureResponse{Error: "store_busy"})
		return
	}
	writeJSON(w, http.StatusInternalServerError, failureResponse{Error: "internal"})
}

func toItems(expenses []core.Expense) []apiItem {
	items := make([]apiItem, 0, len(expenses))
	for _, e := range expenses {
		items = append(items, apiItem{
			ID:       e.ID,
			Title:    e.Title,
			Amount:   e.Amount,
			Category: e.Category,
			Date:     e.DisplayDate(),
		})
	}
	return items
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
