package core

import (
	"errors"
	"strings"
	"time"
)

// DefaultCategory is substituted whenever an expense carries no category.
const DefaultCategory = "General"

// IncomeCategory marks a category as a credit rather than a debit when it
// matches case-insensitively. Domain convention, not a separate entity type.
const IncomeCategory = "income"

type (
	User struct {
		ID           int64     `json:"id"`
		Username     string    `json:"username"`
		Email        string    `json:"email"`
		PasswordHash string    `json:"-"`
		CreatedAt    time.Time `json:"created_at"`
	}

	Expense struct {
		ID       int64     `json:"id"`
		Title    string    `json:"title"`
		Amount   Money     `json:"amount"`
		Category string    `json:"category"`
		Date     time.Time `json:"-"`
		Owner    *int64    `json:"-"`
	}

	// NewExpense is a validated request to create an expense. Build it
	// through ValidateNewExpense so the page and the API surface share one
	// validation path.
	NewExpense struct {
		Title    string
		Amount   Money
		Category string
	}

	// Session binds a client-held token to an authenticated identity.
	Session struct {
		Token     string
		UserID    int64
		Username  string
		CreatedAt time.Time
		ExpiresAt time.Time
	}

	// Identity is the session-derived actor injected into protected
	// operations. Resolved once at the HTTP boundary, passed explicitly.
	Identity struct {
		UserID   int64
		Username string
	}
)

var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrEmptyTitle         = errors.New("empty title")
	ErrInvalidAmount      = errors.New("invalid amount")
	ErrUnauthenticated    = errors.New("unauthenticated")
	ErrNotOwner           = errors.New("not the owner")
	ErrNotFound           = errors.New("not found")
	ErrConflict           = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid login")
	ErrStoreBusy          = errors.New("store busy")
)

// ValidateNewExpense trims and validates raw expense input. The title must be
// non-empty after trimming and the amount must parse to a positive value.
// A blank category falls back to DefaultCategory.
func ValidateNewExpense(title, amount, category string) (NewExpense, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return NewExpense{}, ErrEmptyTitle
	}

	cents, err := ParseAmount(amount)
	if err != nil {
		return NewExpense{}, err
	}

	category = strings.TrimSpace(category)
	if category == "" {
		category = DefaultCategory
	}

	return NewExpense{
		Title:    title,
		Amount:   Money{Cents: cents},
		Category: category,
	}, nil
}

// ValidateRegistration normalizes and checks registration input. The email is
// lowercased; all three fields must be non-empty after trimming.
func ValidateRegistration(username, email, password string) (string, string, string, error) {
	username = strings.TrimSpace(username)
	email = strings.ToLower(strings.TrimSpace(email))
	password = strings.TrimSpace(password)

	if username == "" || email == "" || password == "" {
		return "", "", "", ErrInvalidInput
	}
	return username, email, password, nil
}

// DisplayDate renders an expense timestamp at minute precision, matching the
// list view format.
func (e Expense) DisplayDate() string {
	return e.Date.Format("2006-01-02 15:04")
}

// OwnedBy reports whether the expense belongs to the given user. Legacy rows
// without an owner belong to nobody.
func (e Expense) OwnedBy(userID int64) bool {
	return e.Owner != nil && *e.Owner == userID
}

func (id Identity) Valid() bool {
	return id.UserID != 0
}
