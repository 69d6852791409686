package api

import (
	"database/sql"
	"net/http"

	"github.com/erazemk/gegenstand/internal/auth"
	"github.com/erazemk/gegenstand/internal/imaging"
	"github.com/erazemk/gegenstand/internal/metrics"
	"github.com/erazemk/gegenstand/internal/model"
	"github.com/erazemk/gegenstand/internal/ratelimit"
	"github.com/erazemk/gegenstand/internal/service"
)

// Options configure the router. Only Tokens is required.
type Options struct {
	Tokens *auth.Tokens
	// Reminders is shared with the background scheduler so both are
	// serialized by one lock. Nil creates a private sweep without email.
	Reminders *service.Reminders
	// Limiter throttles the public auth endpoints. Nil disables it.
	Limiter        *ratelimit.Limiter
	AllowedOrigins []string
	Photo          imaging.Options
	// Today is the clock for sweeps and safe_to_discard. Nil means
	// model.Today.
	Today func() model.Date
}

// NewRouter creates the HTTP handler with all endpoints registered.
func NewRouter(db *sql.DB, opts Options) http.Handler {
	if opts.Today == nil {
		opts.Today = model.Today
	}
	if opts.Reminders == nil {
		opts.Reminders = service.NewReminders(db, nil)
	}

	accounts := service.NewAccounts(db, opts.Tokens)
	authHandler := &AuthHandler{Accounts: accounts}
	itemsHandler := &ItemsHandler{Items: service.NewItems(db, opts.Photo), Today: opts.Today}
	notificationsHandler := &NotificationsHandler{
		Notifications: service.NewNotifications(db, opts.Reminders, opts.Today),
	}

	mux := http.NewServeMux()

	authMW := AuthMiddleware(accounts)
	limit := RateLimitMiddleware(opts.Limiter)

	// Public.
	mux.Handle("POST /auth/register", limit(http.HandlerFunc(authHandler.Register)))
	mux.Handle("POST /auth/login", limit(http.HandlerFunc(authHandler.Login)))
	mux.Handle("GET /health", Health(db))
	mux.Handle("GET /metrics", metrics.Handler())

	// Account.
	mux.Handle("POST /auth/logout", authMW(http.HandlerFunc(authHandler.Logout)))
	mux.Handle("GET /api/me", authMW(http.HandlerFunc(authHandler.Me)))

	// Items, always scoped to the caller.
	mux.Handle("GET /gegenstaende", authMW(http.HandlerFunc(itemsHandler.List)))
	mux.Handle("POST /gegenstaende", authMW(http.HandlerFunc(itemsHandler.Create)))
	mux.Handle("GET /gegenstaende/{id}", authMW(http.HandlerFunc(itemsHandler.Get)))
	mux.Handle("PUT /gegenstaende/{id}", authMW(http.HandlerFunc(itemsHandler.Update)))
	mux.Handle("DELETE /gegenstaende/{id}", authMW(http.HandlerFunc(itemsHandler.Delete)))
	mux.Handle("PUT /gegenstaende/{id}/photo", authMW(http.HandlerFunc(itemsHandler.UploadPhoto)))
	mux.Handle("GET /gegenstaende/{id}/photo", authMW(http.HandlerFunc(itemsHandler.GetPhoto)))

	// Notifications.
	mux.Handle("GET /notifications", authMW(http.HandlerFunc(notificationsHandler.List)))
	mux.Handle("PUT /notifications/{id}/seen", authMW(http.HandlerFunc(notificationsHandler.MarkSeen)))

	return LoggingMiddleware(CORSMiddleware(opts.AllowedOrigins)(mux))
}
