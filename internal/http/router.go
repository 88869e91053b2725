// Package http wires all handlers into the route table.
package http

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"rechnung-backend/internal/handlers"
	"rechnung-backend/internal/health"
	"rechnung-backend/internal/middleware"
)

type Handlers struct {
	Auth      *handlers.AuthHandler
	Customers *handlers.CustomerHandler
	Invoices  *handlers.InvoiceHandler
	Settings  *handlers.SettingsHandler
	Dashboard *handlers.DashboardHandler
	Health    *health.Handler
}

// NewRouter builds the route table. Everything under /api requires a valid
// bearer token.
func NewRouter(h Handlers, authMW *middleware.AuthMiddleware) *mux.Router {
	r := mux.NewRouter()
	r.Use(middleware.Metrics)

	r.HandleFunc("/health", h.Health.Live).Methods(http.MethodGet)
	r.HandleFunc("/health/ready", h.Health.Ready).Methods(http.MethodGet)
	r.HandleFunc("/health/detailed", h.Health.Detailed).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	r.HandleFunc("/auth/signup", h.Auth.Signup).Methods(http.MethodPost)
	r.HandleFunc("/auth/login", h.Auth.Login).Methods(http.MethodPost)

	api := r.PathPrefix("/api").Subrouter()
	api.Use(authMW.Authenticate)

	api.HandleFunc("/customers", h.Customers.List).Methods(http.MethodGet)
	api.HandleFunc("/customers", h.Customers.Create).Methods(http.MethodPost)
	api.HandleFunc("/customers/{id}", h.Customers.Get).Methods(http.MethodGet)
	api.HandleFunc("/customers/{id}", h.Customers.Update).Methods(http.MethodPut)
	api.HandleFunc("/customers/{id}", h.Customers.Delete).Methods(http.MethodDelete)

	api.HandleFunc("/invoices", h.Invoices.List).Methods(http.MethodGet)
	api.HandleFunc("/invoices", h.Invoices.Create).Methods(http.MethodPost)
	api.HandleFunc("/invoices/{id}", h.Invoices.Get).Methods(http.MethodGet)
	api.HandleFunc("/invoices/{id}", h.Invoices.Delete).Methods(http.MethodDelete)
	api.HandleFunc("/invoices/{id}/status", h.Invoices.UpdateStatus).Methods(http.MethodPut)
	api.HandleFunc("/invoices/{id}/pdf", h.Invoices.ExportPDF).Methods(http.MethodGet)

	api.HandleFunc("/settings", h.Settings.Get).Methods(http.MethodGet)
	api.HandleFunc("/settings", h.Settings.Save).Methods(http.MethodPut)

	api.HandleFunc("/dashboard/stats", h.Dashboard.Stats).Methods(http.MethodGet)

	return r
}
