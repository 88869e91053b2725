package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests processed, by method, path and status code.",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency in seconds, by method and path.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	InvoicesCreatedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "invoices_created_total",
			Help: "Total number of invoices created.",
		},
	)

	PDFExportsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "invoice_pdf_exports_total",
			Help: "Total number of invoice PDFs generated.",
		},
	)
)
