/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. RequestID:     Unique ID per request for tracing
  2. RequestLogger: httplog access log (ECS schema)
  3. requestScoped: Handler logger tagged with the request ID
  4. Recoverer:     Panic recovery (500 instead of crash)
  5. CleanPath:     Collapses double slashes before routing
  6. Heartbeat:     GET /ping liveness probe
  7. CORS:          Cross-origin requests for frontend

ROUTE GROUPS:
  /api/employees/*          Employees, patterns, records, entitlement
  /api/sickness-records/*   Record update/delete by ID
  /api/entitlement-tiers    OSP tiers
  /api/reports/sickness     Batched sickness report
  /api/imports/sickness/*   Import validation
  /api/scenarios/*          Demo scenarios and store reset (dev only)
  /                         API index page

SECURITY NOTE:
  No authentication middleware currently. All endpoints are public.

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/warp/sickpay-engine/logging"
)

// RouterOptions carries the settings that come from configuration.
type RouterOptions struct {
	AllowedOrigins []string
	// AccessLog enables the httplog request logger.
	AccessLog bool
}

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler, opts RouterOptions) *chi.Mux {
	r := chi.NewRouter()

	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:5173", "http://localhost:8080"}
	}

	// Middleware
	r.Use(middleware.RequestID)
	if opts.AccessLog {
		r.Use(httplog.RequestLogger(h.Logger, &httplog.Options{
			Level:  slog.LevelInfo,
			Schema: httplog.SchemaECS,
		}))
	}
	r.Use(requestScoped(h.Logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.CleanPath)
	r.Use(middleware.Heartbeat("/ping"))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-Id"},
		ExposedHeaders:   []string{"X-Request-Id"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// API routes
	r.Route("/api", func(r chi.Router) {
		r.Get("/health", h.Health)

		// Employee routes
		r.Route("/employees", func(r chi.Router) {
			r.Get("/", h.ListEmployees)
			r.Post("/", h.CreateEmployee)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", h.GetEmployee)
				r.Get("/work-pattern", h.GetWorkPattern)
				r.Put("/work-pattern", h.ReplaceWorkPattern)
				r.Get("/sickness-records", h.ListSicknessRecords)
				r.Post("/sickness-records", h.CreateSicknessRecord)
				r.Get("/ssp-usage", h.GetSSPUsage)
				r.Get("/sickness-summary", h.GetSicknessSummary)
				r.Get("/sickness-chains", h.GetSicknessChains)
				r.Get("/opening-balance", h.GetOpeningBalance)
				r.Put("/opening-balance", h.SetOpeningBalance)
			})
		})

		// Sickness record routes
		r.Route("/sickness-records", func(r chi.Router) {
			r.Put("/{recordID}", h.UpdateSicknessRecord)
			r.Delete("/{recordID}", h.DeleteSicknessRecord)
		})

		// Entitlement tier routes
		r.Route("/entitlement-tiers", func(r chi.Router) {
			r.Get("/", h.ListEntitlementTiers)
			r.Post("/", h.SaveEntitlementTier)
		})

		r.Get("/reports/sickness", h.GetSicknessReport)
		r.Post("/imports/sickness/validate", h.ValidateImport)
		r.Post("/working-days", h.CountWorkingDays)

		// Scenario routes
		r.Route("/scenarios", func(r chi.Router) {
			r.Get("/", h.ListScenarios)
			r.Get("/current", h.GetCurrentScenario)
			r.Post("/load", h.LoadScenario)
			r.Post("/reset", h.ResetData)
		})
	})

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(`<!DOCTYPE html>
<html>
<head><title>Sick Pay Engine</title></head>
<body style="font-family: system-ui; max-width: 800px; margin: 50px auto; padding: 20px;">
<h1>Sick Pay Engine API</h1>
<p>Load a demo with <code>POST /api/scenarios/load {"scenario_id": "sickness-team"}</code></p>
<h2>API Endpoints</h2>
<ul>
<li><a href="/api/employees">/api/employees</a> - List employees</li>
<li><a href="/api/reports/sickness">/api/reports/sickness</a> - Sickness report</li>
<li><a href="/api/entitlement-tiers">/api/entitlement-tiers</a> - OSP tiers</li>
<li><a href="/api/scenarios">/api/scenarios</a> - List scenarios</li>
</ul>
</body>
</html>`))
	})

	return r
}

// requestScoped stores a logger tagged with the chi request ID in the
// request context so services log with it.
func requestScoped(base *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			logger := base
			if id := middleware.GetReqID(r.Context()); id != "" {
				logger = base.With(slog.String("request_id", id))
			}
			next.ServeHTTP(w, r.WithContext(logging.ContextWithLogger(r.Context(), logger)))
		})
	}
}
