// Package storage implements the SQLite persistence layer: users, expenses,
// sessions, and the per-category aggregation query.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"expansive/internal/core"

	_ "modernc.org/sqlite"
)

// Repository is the durable store for users, expenses and sessions. All
// methods are safe for concurrent use; SQLite runs in WAL mode with a bounded
// busy timeout, so a contended write fails with core.ErrStoreBusy instead of
// blocking indefinitely.
type Repository struct {
	db *sql.DB
}

// NewRepository opens (creating if necessary) the database at dbPath, applies
// pragmas and runs migrations.
func NewRepository(dbPath string, busyTimeout time.Duration) (*Repository, error) {
	if dir := filepath.Dir(dbPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	dsn := fmt.Sprintf("file:%s?%s", dbPath, url.Values{
		"_pragma": []string{
			fmt.Sprintf("busy_timeout(%d)", busyTimeout.Milliseconds()),
			"journal_mode(WAL)",
			"synchronous(NORMAL)",
			"foreign_keys(ON)",
		},
	}.Encode())

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Repository{db: db}, nil
}

func (r *Repository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// ---- expenses ----

// CreateExpense inserts a validated expense for owner with a server-assigned
// timestamp.
func (r *Repository) CreateExpense(ctx context.Context, owner int64, ne core.NewExpense) (core.Expense, error) {
	now := time.Now().UTC()
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO expenses (title, amount_cents, category, date, user_id) VALUES (?, ?, ?, ?, ?)`,
		ne.Title, ne.Amount.Cents, ne.Category, now, owner,
	)
	if err != nil {
		return core.Expense{}, mapErr("create expense", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return core.Expense{}, fmt.Errorf("create expense: last insert id: %w", err)
	}

	return core.Expense{
		ID:       id,
		Title:    ne.Title,
		Amount:   ne.Amount,
		Category: ne.Category,
		Date:     now,
		Owner:    &owner,
	}, nil
}

// ListExpenses returns expenses newest-first (descending insertion id, which
// is monotonic with creation order). A nil owner returns the unscoped list,
// used only for legacy unowned rows; user-facing callers always pass an
// owner.
func (r *Repository) ListExpenses(ctx context.Context, owner *int64) ([]core.Expense, error) {
	query := `SELECT id, title, amount_cents, category, date, user_id FROM expenses ORDER BY id DESC`
	args := []any{}
	if owner != nil {
		query = `SELECT id, title, amount_cents, category, date, user_id FROM expenses WHERE user_id = ? ORDER BY id DESC`
		args = append(args, *owner)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapErr("list expenses", err)
	}
	defer rows.Close()

	expenses := []core.Expense{}
	for rows.Next() {
		var (
			e        core.Expense
			category sql.NullString
			userID   sql.NullInt64
		)
		if err := rows.Scan(&e.ID, &e.Title, &e.Amount.Cents, &category, &e.Date, &userID); err != nil {
			return nil, fmt.Errorf("list expenses: scan: %w", err)
		}
		e.Category = category.String
		if e.Category == "" {
			e.Category = core.DefaultCategory
		}
		if userID.Valid {
			uid := userID.Int64
			e.Owner = &uid
		}
		expenses = append(expenses, e)
	}
	if err := rows.Err(); err != nil {
		return nil, mapErr("list expenses", err)
	}

	return expenses, nil
}

// CategoryTotals sums amounts per category for one owner (or all rows when
// owner is nil). Blank-category folding happens in core.Summarize.
func (r *Repository) CategoryTotals(ctx context.Context, owner *int64) ([]core.CategoryTotal, error) {
	query := `SELECT category, SUM(amount_cents) FROM expenses GROUP BY category`
	args := []any{}
	if owner != nil {
		query = `SELECT category, SUM(amount_cents) FROM expenses WHERE user_id = ? GROUP BY category`
		args = append(args, *owner)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapErr("category totals", err)
	}
	defer rows.Close()

	var totals []core.CategoryTotal
	for rows.Next() {
		var (
			category sql.NullString
			cents    sql.NullInt64
		)
		if err := rows.Scan(&category, &cents); err != nil {
			return nil, fmt.Errorf("category totals: scan: %w", err)
		}
		totals = append(totals, core.CategoryTotal{
			Category: category.String,
			Total:    core.Money{Cents: cents.Int64},
		})
	}
	if err := rows.Err(); err != nil {
		return nil, mapErr("category totals", err)
	}

	return totals, nil
}

// DeleteExpense removes an expense after verifying ownership. This is the
// sole guard against cross-user deletion: a missing row yields
// core.ErrNotFound, a row owned by someone else (or by nobody) yields
// core.ErrNotOwner, and in neither case is anything deleted.
func (r *Repository) DeleteExpense(ctx context.Context, owner, id int64) error {
	var userID sql.NullInt64
	err := r.db.QueryRowContext(ctx, `SELECT user_id FROM expenses WHERE id = ?`, id).Scan(&userID)
	if err != nil {
		return mapErr("delete expense", err)
	}
	e := core.Expense{ID: id}
	if userID.Valid {
		e.Owner = &userID.Int64
	}
	if !e.OwnedBy(owner) {
		return core.ErrNotOwner
	}

	res, err := r.db.ExecContext(ctx, `DELETE FROM expenses WHERE id = ? AND user_id = ?`, id, owner)
	if err != nil {
		return mapErr("delete expense", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		// Row vanished between the check and the delete.
		return core.ErrNotFound
	}
	return nil
}

// ---- users ----

// CreateUser inserts a new user. A username or email collision surfaces as
// core.ErrConflict; the two causes are not distinguished.
func (r *Repository) CreateUser(ctx context.Context, username, email, passwordHash string) (core.User, error) {
	now := time.Now().UTC()
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO users (username, email, password_hash, created_at) VALUES (?, ?, ?, ?)`,
		username, email, passwordHash, now,
	)
	if err != nil {
		return core.User{}, mapErr("create user", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return core.User{}, fmt.Errorf("create user: last insert id: %w", err)
	}

	return core.User{
		ID:           id,
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    now,
	}, nil
}

// UserByEmail looks up a user by (already lowercased) email.
func (r *Repository) UserByEmail(ctx context.Context, email string) (core.User, error) {
	var u core.User
	err := r.db.QueryRowContext(ctx,
		`SELECT id, username, email, password_hash, created_at FROM users WHERE email = ?`, email,
	).Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.CreatedAt)
	if err != nil {
		return core.User{}, mapErr("user by email", err)
	}
	return u, nil
}

// UserByUsername looks up a user by username.
func (r *Repository) UserByUsername(ctx context.Context, username string) (core.User, error) {
	var u core.User
	err := r.db.QueryRowContext(ctx,
		`SELECT id, username, email, password_hash, created_at FROM users WHERE username = ?`, username,
	).Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.CreatedAt)
	if err != nil {
		return core.User{}, mapErr("user by username", err)
	}
	return u, nil
}

// ---- sessions ----

// CreateSession stores a new session row.
func (r *Repository) CreateSession(ctx context.Context, s core.Session) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO sessions (token, user_id, created_at, expires_at) VALUES (?, ?, ?, ?)`,
		s.Token, s.UserID, s.CreatedAt, s.ExpiresAt,
	)
	if err != nil {
		return mapErr("create session", err)
	}
	return nil
}

// SessionByToken resolves a token to its session and owning username. Expired
// or unknown tokens yield core.ErrNotFound.
func (r *Repository) SessionByToken(ctx context.Context, token string) (core.Session, error) {
	var s core.Session
	err := r.db.QueryRowContext(ctx, `
		SELECT s.token, s.user_id, u.username, s.created_at, s.expires_at
		FROM sessions s
		JOIN users u ON s.user_id = u.id
		WHERE s.token = ? AND s.expires_at > ?`,
		token, time.Now().UTC(),
	).Scan(&s.Token, &s.UserID, &s.Username, &s.CreatedAt, &s.ExpiresAt)
	if err != nil {
		return core.Session{}, mapErr("session by token", err)
	}
	return s, nil
}

// DeleteSession removes a session by token. Deleting an absent token is not
// an error, which makes logout idempotent.
func (r *Repository) DeleteSession(ctx context.Context, token string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE token = ?`, token); err != nil {
		return mapErr("delete session", err)
	}
	return nil
}

// DeleteExpiredSessions sweeps expired session rows and reports how many were
// removed.
func (r *Repository) DeleteExpiredSessions(ctx context.Context) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE expires_at <= ?`, time.Now().UTC())
	if err != nil {
		return 0, mapErr("delete expired sessions", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete expired sessions: rows affected: %w", err)
	}
	return n, nil
}

// mapErr translates driver errors into the domain taxonomy, wrapping
// everything else with the operation name.
func mapErr(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, sql.ErrNoRows):
		return core.ErrNotFound
	case strings.Contains(err.Error(), "UNIQUE constraint failed"):
		return core.ErrConflict
	case strings.Contains(err.Error(), "SQLITE_BUSY"),
		strings.Contains(err.Error(), "database is locked"):
		return core.ErrStoreBusy
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}
