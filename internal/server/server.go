// Package server wires the record handlers, the metrics instrumentation
// and the middleware into two HTTP servers: the API server and a
// standalone metrics server exposing the same registry.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/aanand-mishra/record-service/internal/config"
	"github.com/aanand-mishra/record-service/internal/http/handlers/home"
	"github.com/aanand-mishra/record-service/internal/http/handlers/record"
	"github.com/aanand-mishra/record-service/internal/http/middleware"
	"github.com/aanand-mishra/record-service/internal/metrics"
	"github.com/aanand-mishra/record-service/internal/storage"
	"github.com/aanand-mishra/record-service/internal/utils/response"
)

// Server owns the two http.Servers and their shared dependencies.
type Server struct {
	cfg     *config.Config
	log     *slog.Logger
	api     *http.Server
	metrics *http.Server
}

// New builds both servers. Nothing listens until Run or Serve is called.
func New(cfg *config.Config, store storage.Storage, m *metrics.Metrics, log *slog.Logger) (*Server, error) {
	router, err := Routes(store, m, cfg.Version)
	if err != nil {
		return nil, err
	}

	handler := middleware.Chain(router,
		middleware.RequestID,
		middleware.Logger(log),
		middleware.Recover(log),
	)

	metricsMux := http.NewServeMux()
	metricsMux.Handle("GET /metrics", m.Handler())

	return &Server{
		cfg: cfg,
		log: log,
		api: &http.Server{
			Addr:    cfg.HTTPServer.Addr(),
			Handler: handler,

			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		metrics: &http.Server{
			Addr:              cfg.MetricsAddr(),
			Handler:           metricsMux,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}, nil
}

// Routes returns the API route table. Every route except /metrics and
// /healthz is instrumented under its own pattern as the endpoint label.
//
//	GET    /                → home page
//	GET    /api/data        → list records
//	POST   /api/data        → create a record
//	GET    /api/data/{id}   → get one record
//	PUT    /api/data/{id}   → update a record
//	DELETE /api/data/{id}   → delete a record
//	GET    /metrics         → text exposition of the registry
//	GET    /healthz         → liveness
func Routes(store storage.Storage, m *metrics.Metrics, version string) (*http.ServeMux, error) {
	homeHandler, err := home.Handler(version)
	if err != nil {
		return nil, fmt.Errorf("home page: %w", err)
	}

	const (
		rootLabel   = "/"
		listLabel   = "/api/data"
		recordLabel = "/api/data/{id}"
	)

	router := http.NewServeMux()
	router.Handle("GET /{$}", m.Instrument(rootLabel, homeHandler))
	router.Handle("GET /api/data", m.Instrument(listLabel, record.GetList(store)))
	router.Handle("POST /api/data", m.Instrument(listLabel, record.New(store)))
	router.Handle("GET /api/data/{id}", m.Instrument(recordLabel, record.GetByID(store)))
	router.Handle("PUT /api/data/{id}", m.Instrument(recordLabel, record.Update(store)))
	router.Handle("DELETE /api/data/{id}", m.Instrument(recordLabel, record.Delete(store)))
	router.Handle("GET /metrics", m.TextHandler())
	router.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		response.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	return router, nil
}

// Run listens on the configured addresses and serves until ctx is done.
func (s *Server) Run(ctx context.Context) error {
	apiLn, err := net.Listen("tcp", s.api.Addr)
	if err != nil {
		return fmt.Errorf("listen api: %w", err)
	}
	metricsLn, err := net.Listen("tcp", s.metrics.Addr)
	if err != nil {
		apiLn.Close()
		return fmt.Errorf("listen metrics: %w", err)
	}
	return s.Serve(ctx, apiLn, metricsLn)
}

// Serve runs both servers on the given listeners. When ctx is cancelled,
// or either server fails, both are shut down gracefully within the
// configured timeout. A clean shutdown returns nil.
func (s *Server) Serve(ctx context.Context, apiLn, metricsLn net.Listener) error {
	g, gctx := errgroup.WithContext(ctx)

	serve := func(name string, srv *http.Server, ln net.Listener) func() error {
		return func() error {
			s.log.Info("server started",
				slog.String("server", name),
				slog.String("address", ln.Addr().String()))
			if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("%s server: %w", name, err)
			}
			return nil
		}
	}
	g.Go(serve("api", s.api, apiLn))
	g.Go(serve("metrics", s.metrics, metricsLn))

	g.Go(func() error {
		<-gctx.Done()
		s.log.Info("stopping servers")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.HTTPServer.ShutdownTimeout)
		defer cancel()

		return errors.Join(
			s.api.Shutdown(shutdownCtx),
			s.metrics.Shutdown(shutdownCtx),
		)
	})

	return g.Wait()
}
