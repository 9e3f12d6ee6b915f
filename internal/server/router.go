// Package server assembles the HTTP surface: routes, auth gating, and the
// logging/metrics/recovery middleware chain.
package server

import (
	"context"
	"log/slog"
	"net/http"

	"gorm.io/gorm"

	"github.com/invoiceo/invoiceo/internal/auth"
	"github.com/invoiceo/invoiceo/internal/autofill"
	"github.com/invoiceo/invoiceo/internal/config"
	"github.com/invoiceo/invoiceo/internal/gate"
	"github.com/invoiceo/invoiceo/internal/handlers"
	"github.com/invoiceo/invoiceo/internal/httpx"
	"github.com/invoiceo/invoiceo/internal/middleware"
	"github.com/invoiceo/invoiceo/internal/models"
	"github.com/invoiceo/invoiceo/internal/services"
	"github.com/invoiceo/invoiceo/internal/store"
)

// New constructs the root http.Handler with all routes and middlewares applied.
func New(cfg config.Config, db *gorm.DB, st *store.Store, rec *services.Reconciler, af *autofill.Service) http.Handler {
	mux := http.NewServeMux()

	// RequireAuth rejects sessions whose user has since been deleted.
	auth.SetUserVerifier(func(_ context.Context, uid uint) bool {
		var count int64
		if err := db.Model(&models.User{}).Where("id = ?", uid).Limit(1).Count(&count).Error; err != nil {
			return false
		}
		return count > 0
	})

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, _ *http.Request) {
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		if err := db.Exec("SELECT 1").Error; err != nil {
			httpx.JSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded"})
			return
		}
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	mux.Handle("GET /metrics", middleware.MetricsHandler())

	authHandler := handlers.NewAuthHandler(db)
	authHandler.Register(mux)

	isAdmin := func(ctx context.Context, _ uint) bool {
		id, ok := auth.IdentityFromContext(ctx)
		return ok && id.Admin
	}
	policy := gate.NewAdminBypassPolicy(gate.NewOwnershipPolicy(), isAdmin)
	quota := gate.ClientQuota{FreeLimit: cfg.FreeClientLimit}

	protected := func(h http.HandlerFunc) http.Handler {
		return auth.RequireAuth(h)
	}

	ch := handlers.NewClientHandler(st, policy, quota)
	mux.Handle("GET /api/clients", protected(ch.List))
	mux.Handle("POST /api/clients", protected(ch.Create))
	mux.Handle("POST /api/clients/update", protected(ch.Update))
	mux.Handle("POST /api/clients/delete", protected(ch.Delete))

	ph := handlers.NewProductHandler(st, policy)
	mux.Handle("GET /api/products", protected(ph.List))
	mux.Handle("POST /api/products", protected(ph.Create))
	mux.Handle("POST /api/products/update", protected(ph.Update))
	mux.Handle("POST /api/products/delete", protected(ph.Delete))

	ih := handlers.NewInvoiceHandler(st, rec)
	mux.Handle("GET /api/invoices", protected(ih.List))
	mux.Handle("GET /api/invoices/get", protected(ih.Get))
	mux.Handle("POST /api/invoices", protected(ih.Create))
	mux.Handle("POST /api/invoices/update", protected(ih.Update))
	mux.Handle("POST /api/invoices/status", protected(ih.SetStatus))
	mux.Handle("POST /api/invoices/delete", protected(ih.Delete))

	ah := handlers.NewAutofillHandler(af)
	mux.Handle("POST /api/invoices/autofill", protected(ah.Suggest))

	wh := handlers.NewWatchHandler(st)
	mux.Handle("GET /api/watch/{collection}", protected(wh.Watch))

	dh := handlers.NewDashboardHandler(st)
	mux.Handle("GET /api/dashboard", protected(dh.Stats))

	// Sessions are parsed once at the edge so the logger can attribute
	// requests; RequireAuth then gates the protected routes.
	return auth.Middleware(middleware.Logging(middleware.Metrics(withRecover(mux))))
}

func withRecover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				slog.Error("panic recovered", "path", r.URL.Path, "panic", rec)
				httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
			}
		}()
		next.ServeHTTP(w, r)
	})
}
