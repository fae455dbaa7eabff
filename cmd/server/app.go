package main

import (
	"context"
	"net/http"
	"time"

	"github.com/diewo77/go-backoffice/auth"
	"github.com/diewo77/go-backoffice/httpx"
	"github.com/diewo77/go-backoffice/internal/handlers"
	"github.com/diewo77/go-backoffice/internal/lock"
	"github.com/diewo77/go-backoffice/internal/middleware"
	"github.com/diewo77/go-backoffice/internal/models"
	"github.com/diewo77/go-backoffice/internal/policy"
	"github.com/diewo77/go-backoffice/internal/services"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Options tune the services behind the routes. Zero values fall back to defaults.
type Options struct {
	Locker       lock.Locker
	TokenTTL     time.Duration
	OrgLookupTTL time.Duration
	LockTTL      time.Duration
	LockWait     time.Duration
}

func (o *Options) defaults() {
	if o.Locker == nil {
		o.Locker = lock.NewLocalLocker()
	}
	if o.TokenTTL == 0 {
		o.TokenTTL = 24 * time.Hour
	}
	if o.OrgLookupTTL == 0 {
		o.OrgLookupTTL = 5 * time.Minute
	}
	if o.LockTTL == 0 {
		o.LockTTL = 30 * time.Second
	}
	if o.LockWait == 0 {
		o.LockWait = 5 * time.Second
	}
}

// App is the main application handler that sets up all routes.
type App struct {
	mux     *http.ServeMux
	handler http.Handler
	db      *gorm.DB
	log     logrus.FieldLogger
	authz   *policy.Authorizer

	authH      *handlers.AuthHandler
	scheduleH  *handlers.ScheduleHandler
	templatesH *handlers.TemplateHandler
}

// NewApp creates a new application with all routes configured.
func NewApp(db *gorm.DB, log logrus.FieldLogger, opts Options) *App {
	opts.defaults()
	authz := policy.NewAuthorizer(db, opts.OrgLookupTTL)
	scheduleSvc := services.NewScheduleService(db, authz, opts.Locker, log)
	scheduleSvc.SetLockTimings(opts.LockTTL, opts.LockWait)

	app := &App{
		mux:        http.NewServeMux(),
		db:         db,
		log:        log,
		authz:      authz,
		authH:      handlers.NewAuthHandler(db, opts.TokenTTL, log),
		scheduleH:  handlers.NewScheduleHandler(scheduleSvc, log),
		templatesH: handlers.NewTemplateHandler(services.NewTemplateService(db, authz, log)),
	}
	app.setupRoutes()

	// outermost first: request id, logging, recover, language, identity
	var h http.Handler = auth.Middleware(app.mux)
	h = middleware.Prefs(h)
	h = middleware.Recover(log)(h)
	h = middleware.Logging(log)(h)
	app.handler = middleware.RequestID(h)
	return app
}

// ServeHTTP implements http.Handler.
func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.handler.ServeHTTP(w, r)
}

// setupRoutes configures all application routes.
func (a *App) setupRoutes() {
	// Public routes
	a.mux.HandleFunc("GET /health", a.health)
	a.mux.HandleFunc("GET /healthz", a.healthz)
	a.mux.HandleFunc("POST /login", a.authH.Login)
	a.mux.HandleFunc("POST /logout", a.authH.Logout)

	// Payment condition templates
	th := a.templatesH
	a.mux.Handle("GET /payment-conditions/templates", a.protect(th.List))
	a.mux.Handle("POST /payment-conditions/templates", a.protect(th.Create))

	// Invoice schedules
	sh := a.scheduleH
	a.mux.Handle("GET /invoices/{id}/payment-schedule", a.protect(sh.GetInvoice))
	a.mux.Handle("POST /invoices/{id}/payment-schedule", a.protect(sh.SaveInvoice))
	a.mux.Handle("PUT /invoices/{id}/payment-schedule", a.protect(sh.SaveInvoice))
	a.mux.Handle("PATCH /invoices/{id}/payment-schedule/{scheduleId}", a.protect(sh.UpdateStatus))
	a.mux.Handle("GET /invoices/{id}/payment-schedule/export", a.protect(sh.Export(models.KindInvoice)))

	// Quote schedules
	a.mux.Handle("GET /quotes/{id}/payment-schedule", a.protect(sh.GetQuote))
	a.mux.Handle("POST /quotes/{id}/payment-schedule", a.protect(sh.SaveQuote))
	a.mux.Handle("PUT /quotes/{id}/payment-schedule", a.protect(sh.SaveQuote))
	a.mux.Handle("GET /quotes/{id}/payment-schedule/export", a.protect(sh.Export(models.KindQuote)))
}

// protect requires an authenticated user attached to an organization.
func (a *App) protect(h http.HandlerFunc) http.Handler {
	return auth.RequireAuth(a.authz.RequireTenant(h))
}

func (a *App) health(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// healthz also checks the database.
func (a *App) healthz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	sqlDB, err := a.db.DB()
	if err == nil {
		err = sqlDB.PingContext(ctx)
	}
	if err != nil {
		a.log.WithError(err).Warn("health check: database unreachable")
		httpx.JSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable", "database": "down"})
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok", "database": "up"})
}
