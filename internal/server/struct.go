package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/54b3r/edurec-go/internal/catalog"
	"github.com/54b3r/edurec-go/internal/domain"
	"github.com/54b3r/edurec-go/internal/pipeline"
)

// Config holds the HTTP server configuration.
type Config struct {
	// Host is the address to bind to (default: 127.0.0.1).
	Host string
	// Port is the TCP port to listen on (default: 8080).
	Port int
	// ReadTimeout is the maximum duration for reading the request.
	ReadTimeout time.Duration
	// WriteTimeout is the maximum duration for writing the response. It must
	// exceed the re-rank timeout so a slow model call can still fall back.
	WriteTimeout time.Duration
	// ShutdownTimeout is the maximum duration for a graceful shutdown.
	ShutdownTimeout time.Duration
	// Logger is the structured logger used by the server and its handlers.
	// If nil, slog.Default() is used.
	Logger *slog.Logger
	// Pingers is the ordered list of dependency probes run by GET /api/ready.
	// If empty, /api/ready returns 200 with no checks (liveness-only mode).
	Pingers []Pinger
	// RateLimit is the sustained request rate allowed per IP on the
	// recommendation endpoints (requests/second). Defaults to 10 if zero.
	RateLimit float64
	// RateBurst is the maximum instantaneous burst per IP. Defaults to 20 if zero.
	RateBurst int
	// CORSOrigins lists the allowed origins. Empty allows all origins.
	CORSOrigins []string
	// MaxBodyBytes caps inbound JSON bodies. Defaults to 1 MiB if zero.
	MaxBodyBytes int64
	// MetricsRegistry receives the server metrics. If nil, a private
	// registry is created.
	MetricsRegistry prometheus.Registerer
	// MetricsGatherer is served on GET /metrics. If nil and MetricsRegistry
	// is a *prometheus.Registry, that registry is used.
	MetricsGatherer prometheus.Gatherer
}

// recommender is the interface the recommendation handlers call.
// *pipeline.Orchestrator satisfies it; tests inject a fake.
type recommender interface {
	// Recommend runs the pipeline for profile.
	Recommend(ctx context.Context, profile *domain.UserProfile) (*pipeline.Response, error)
}

// Server is the HTTP front end of the recommendation pipeline.
type Server struct {
	// recommender runs the pipeline for each recommendation request.
	recommender recommender
	// store serves the catalogue and persona listings.
	store catalog.Store
	// cfg holds the resolved server configuration.
	cfg *Config
	// httpServer is the underlying net/http server.
	httpServer *http.Server
	// log is the structured logger for this server instance.
	log *slog.Logger
	// pingers is the ordered list of dependency probes for GET /api/ready.
	pingers []Pinger
	// metrics holds the Prometheus metrics for this server.
	metrics *serverMetrics
	// stopRL stops the rate limiter's background eviction goroutine on shutdown.
	stopRL func()
}

// errorResponse is the JSON body of every non-2xx response.
type errorResponse struct {
	// Error is a human-readable description of the failure.
	Error string `json:"error"`
	// Fields lists invalid profile fields on a 400 validation failure.
	Fields []domain.FieldError `json:"fields,omitempty"`
	// PipelineLog is the step log up to a fatal pipeline failure.
	PipelineLog []domain.PipelineStep `json:"pipeline_log,omitempty"`
}

// contentResponse is the JSON body of GET /api/content.
type contentResponse struct {
	// Count is the number of items.
	Count int `json:"count"`
	// Items is the full catalogue.
	Items []domain.ContentItem `json:"items"`
}

// usersResponse is the JSON body of GET /api/users.
type usersResponse struct {
	// Count is the number of personas.
	Count int `json:"count"`
	// Users is the persona list.
	Users []domain.UserProfile `json:"users"`
}
