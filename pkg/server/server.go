// Copyright © 2025 Prabhjot Singh Sethi, All Rights reserved
// Author: Prabhjot Singh Sethi <prabhjot.sethi@gmail.com>

package server

import (
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/go-core-stack/crossenv-gateway/pkg/config"
	"github.com/go-core-stack/crossenv-gateway/pkg/forward"
	"github.com/go-core-stack/crossenv-gateway/pkg/middleware"
	"github.com/go-core-stack/crossenv-gateway/pkg/target"
)

const metricsNamespace = "crossenv"

// Server routes inbound requests to the forwarding engine and the local endpoints.
type Server struct {
	// cfg keeps runtime knobs such as timeouts and the static directory.
	cfg config.Config
	// resolver maps from/to plus override headers onto upstream base URLs.
	resolver *target.Resolver
	// engine performs the upstream calls.
	engine *forward.Engine
	// static serves the UI page and assets, nil when disabled.
	static fs.FS
	// logger emits structured logs for observability.
	logger zerolog.Logger
	// now is the clock reported by the health endpoint.
	now func() time.Time
	// handler is the fully wired router.
	handler http.Handler
}

// New wires the resolver, the forwarding engine and the router for cfg.
func New(cfg config.Config) (*Server, error) {
	fromURL, toURL, err := cfg.BaseURLs()
	if err != nil {
		return nil, err
	}
	resolver, err := target.NewResolver(fromURL, toURL)
	if err != nil {
		return nil, fmt.Errorf("build target resolver: %w", err)
	}

	var registry *prometheus.Registry
	if cfg.Metrics {
		registry = prometheus.NewRegistry()
		registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}

	s := &Server{
		cfg:      cfg,
		resolver: resolver,
		engine: forward.New(forward.Options{
			Timeout:            cfg.RequestTimeout,
			InsecureSkipVerify: cfg.InsecureSkipVerify,
			Registerer:         registererOrNil(registry),
			Namespace:          metricsNamespace,
		}),
		logger: log.With().Str("component", "server").Logger(),
		now:    time.Now,
	}
	if cfg.StaticDir != "" {
		s.static = os.DirFS(cfg.StaticDir)
	}

	s.handler = s.routes(registry)
	return s, nil
}

func (s *Server) routes(registry *prometheus.Registry) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logger(s.logger), middleware.Recover, middleware.CORS)
	if registry != nil {
		r.Use(middleware.NewPrometheus(registry, metricsNamespace).Wrap)
	}

	r.HandleFunc("/proxy/{target}/*", s.handleProxy)
	r.Get("/health", s.handleHealth)
	if registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	}
	r.Get("/", s.handleIndex)
	r.Get("/*", s.handleStatic)
	r.Head("/*", s.handleStatic)

	r.NotFound(s.handleNotFound)
	r.MethodNotAllowed(s.handleNotFound)
	return r
}

// ServeHTTP dispatches through the router and its middleware.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

// Close releases pooled upstream connections.
func (s *Server) Close() {
	s.engine.CloseIdleConnections()
}

// registererOrNil avoids handing a typed nil *Registry to the engine.
func registererOrNil(r *prometheus.Registry) prometheus.Registerer {
	if r == nil {
		return nil
	}
	return r
}
