// Package http wires the page and API surfaces: route registration, session
// resolution, security middleware and graceful shutdown.
package http

import (
	"context"
	"html/template"
	"io/fs"
	"net/http"
	"sync"

	applog "expansive/internal/log"
	"expansive/internal/services"
	appweb "expansive/web"
)

// Server hosts both presentation surfaces over the shared services.
type Server struct {
	http.Server

	accounts *services.AccountService
	expenses *services.ExpenseService

	templates    *template.Template
	secret       []byte
	secureCookie bool

	rateLimiter *rateLimiter
	logger      *applog.Logger

	shutdownOnce sync.Once
}

// Options carries the server's boundary configuration.
type Options struct {
	Addr         string
	Secret       []byte
	SecureCookie bool
	Logger       *applog.Logger
}

// NewServer configures routes and templates, returning a ready-to-run
// http.Server.
func NewServer(opts Options, accounts *services.AccountService, expenses *services.ExpenseService) *Server {
	mux := http.NewServeMux()

	logger := opts.Logger
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}

	s := &Server{
		Server: http.Server{
			Addr:    opts.Addr,
			Handler: mux,
		},
		accounts:     accounts,
		expenses:     expenses,
		secret:       opts.Secret,
		secureCookie: opts.SecureCookie,
		rateLimiter:  newRateLimiter(),
		logger:       logger.WithComponent(applog.ComponentHTTP),
	}

	// Parse embedded templates at startup.
	t, err := template.ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		s.logger.Error("Failed parsing templates", "error", err)
	}
	s.templates = t

	// Static assets (served from embedded FS).
	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		mux.Handle("GET /static/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Cache-Control", "public, max-age=3600")
			static.ServeHTTP(w, r)
		}))
	} else {
		s.logger.Error("Failed to mount embedded static FS", "error", err)
	}

	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", handleReady)

	// Page routes.
	page := func(h http.HandlerFunc) http.HandlerFunc { return s.withRequest(s.withIdentity(h)) }
	protected := func(h http.HandlerFunc) http.HandlerFunc { return page(s.requirePage(h)) }

	mux.HandleFunc("GET /welcome", page(s.handleWelcome))
	mux.HandleFunc("GET /{$}", page(s.handleRoot))
	mux.HandleFunc("GET /dashboard", protected(s.sectionHandler("dashboard")))
	mux.HandleFunc("GET /add", protected(s.sectionHandler("add")))
	mux.HandleFunc("GET /analytics", protected(s.sectionHandler("analytics")))
	mux.HandleFunc("GET /history", protected(s.sectionHandler("history")))
	mux.HandleFunc("POST /add", protected(s.handleAddExpense))
	mux.HandleFunc("GET /delete/{id}", protected(s.handleDeleteExpense))

	mux.HandleFunc("GET /register", page(s.handleRegisterForm))
	mux.HandleFunc("POST /register", page(s.handleRegister))
	mux.HandleFunc("GET /login", page(s.handleLoginForm))
	mux.HandleFunc("POST /login", page(s.handleLogin))
	mux.HandleFunc("GET /logout", page(s.handleLogout))

	// JSON API. Same session mechanism as the pages; the handlers decide how
	// anonymity is reported.
	mux.HandleFunc("POST /api/add", page(s.handleAPIAdd))
	mux.HandleFunc("DELETE /api/delete/{id}", page(s.handleAPIDelete))
	mux.HandleFunc("GET /api/expenses", page(s.handleAPIExpenses))
	mux.HandleFunc("GET /api/summary", page(s.handleAPISummary))

	return s
}

// Shutdown gracefully shuts down the server and its cleanup routines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		if s.rateLimiter != nil {
			s.rateLimiter.stop()
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
