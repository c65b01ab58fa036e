package commands

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/cloudwego/eino/callbacks"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/54b3r/edurec-go/internal/logging"
	"github.com/54b3r/edurec-go/internal/server"
	"github.com/54b3r/edurec-go/internal/tracing"
	"github.com/54b3r/edurec-go/internal/version"
)

// NewServeCmd constructs the `edurec serve` command, which starts the HTTP
// API in front of the recommendation pipeline.
func NewServeCmd() *cobra.Command {
	var host string
	var port int
	var rateLimit float64
	var rateBurst int
	var corsOrigins string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the edurec HTTP API",
		Long: `Start the edurec HTTP API.

Endpoints:
  POST /api/recommend             recommend for an inline learner profile
  POST /api/users/{id}/recommend  recommend for a stored persona
  GET  /api/content               list the content catalogue
  GET  /api/users[/{id}]          list or fetch personas
  GET  /api/health, /api/ready    liveness and readiness probes
  GET  /metrics                   Prometheus metrics

Examples:
  edurec serve
  edurec serve --port 9090
  MODEL_PROVIDER=rules edurec serve
  CATALOG_DB=~/.edurec/catalog.db edurec serve`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			log := logging.New()
			ctx = logging.WithLogger(ctx, log)

			if !cmd.Flags().Changed("cors-origins") {
				corsOrigins = os.Getenv("CORS_ALLOWED_ORIGINS")
			}

			log.Info("serve starting",
				slog.String("version", version.String()),
				slog.String("provider", os.Getenv("MODEL_PROVIDER")),
			)

			// Langfuse tracing is opt-in: a no-op unless both keys are set.
			handler, flush, ok := tracing.Setup(tracing.ConfigFromEnv())
			if ok {
				callbacks.AppendGlobalHandlers(handler)
				defer flush()
				log.Info("langfuse tracing enabled")
			} else {
				log.Info("langfuse tracing disabled", slog.String("reason", "LANGFUSE_PUBLIC_KEY not set"))
			}

			reg := prometheus.NewRegistry()
			reg.MustRegister(
				collectors.NewGoCollector(),
				collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
			)

			st, err := buildStack(ctx, reg, log)
			if err != nil {
				return fmt.Errorf("serve: %w", err)
			}
			defer st.close()

			srv, err := server.New(st.pipeline, st.store, &server.Config{
				Host:      host,
				Port:      port,
				Logger:    log,
				RateLimit: rateLimit,
				RateBurst: rateBurst,
				Pingers: []server.Pinger{
					server.NewCatalogPinger(st.store),
					server.NewEmbedderPinger(st.embedder, embedderLabel(st.embCfg)),
				},
				CORSOrigins:     splitOrigins(corsOrigins),
				MetricsRegistry: reg,
				MetricsGatherer: reg,
			})
			if err != nil {
				return fmt.Errorf("serve: failed to create server: %w", err)
			}

			return srv.Start(ctx)
		},
	}

	cmd.Flags().StringVar(&host, "host", "127.0.0.1", "Host address to bind to")
	cmd.Flags().IntVarP(&port, "port", "p", 8080, "TCP port to listen on")
	cmd.Flags().Float64Var(&rateLimit, "rate-limit", 10, "Recommendation requests per second allowed per client IP")
	cmd.Flags().IntVar(&rateBurst, "rate-burst", 20, "Burst size for the per-IP rate limiter")
	cmd.Flags().StringVar(&corsOrigins, "cors-origins", "", "Comma-separated allowed CORS origins (default: CORS_ALLOWED_ORIGINS, else all)")

	return cmd
}

// splitOrigins parses a comma-separated origin list, dropping blanks.
func splitOrigins(s string) []string {
	var out []string
	for _, o := range strings.Split(s, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}
