// Copyright © 2025 Prabhjot Singh Sethi, All Rights reserved
// Author: Prabhjot Singh Sethi <prabhjot.sethi@gmail.com>

package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"golang.org/x/sync/errgroup"

	"github.com/go-core-stack/crossenv-gateway/pkg/target"
)

// ListenAndServe listens on the configured address and serves until ctx is
// canceled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.ListenAddr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.cfg.ListenAddr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is canceled. In-flight requests
// get up to the configured shutdown timeout to complete.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:      s,
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
		IdleTimeout:  s.cfg.IdleTimeout,
	}

	eg, ctx := errgroup.WithContext(ctx)

	eg.Go(func() error {
		event := s.logger.Info().Str("listen_addr", ln.Addr().String())
		for _, name := range []target.Name{target.From, target.To} {
			if tc, ok := s.resolver.Config(name); ok {
				event = event.
					Str(string(name)+"_url", tc.DefaultBaseURL.Redacted()).
					Str(string(name)+"_override_header", tc.OverrideHeader)
			}
		}
		event.Msg("starting cross-env gateway")
		if err := srv.Serve(ln); !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("gateway server exited unexpectedly: %w", err)
		}
		return nil
	})

	eg.Go(func() error {
		<-ctx.Done()
		s.shutdown(srv)
		return nil
	})

	return eg.Wait()
}

func (s *Server) shutdown(srv *http.Server) {
	s.logger.Info().Msg("shutting down cross-env gateway")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		s.logger.Error().Err(err).Msg("graceful shutdown failed; forcing close")
		if closeErr := srv.Close(); closeErr != nil {
			s.logger.Error().Err(closeErr).Msg("forced close failed")
		}
	}
	s.Close()

	s.logger.Info().Msg("gateway stopped")
}
