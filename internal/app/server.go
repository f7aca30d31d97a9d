package app

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/guttosm/compliance-track/config"
	"github.com/rs/zerolog/log"
)

const (
	defaultWriteTimeout = 15 * time.Second
	shutdownGrace       = 10 * time.Second
)

// Server runs the HTTP listener until its context ends.
type Server struct {
	httpServer *http.Server
	grace      time.Duration
}

// NewServer builds the listener. Responses may take the configured request timeout
// plus a margin to be written.
func NewServer(handler http.Handler, cfg config.ServerConfig) *Server {
	write := defaultWriteTimeout
	if cfg.RequestTimeout+5*time.Second > write {
		write = cfg.RequestTimeout + 5*time.Second
	}
	return &Server{
		httpServer: &http.Server{
			Addr:              ":" + cfg.Port,
			Handler:           handler,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      write,
			IdleTimeout:       60 * time.Second,
			MaxHeaderBytes:    1 << 20,
		},
		grace: shutdownGrace,
	}
}

// Run listens on the configured address. See Serve.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is done, then lets in-flight requests
// finish within the grace period.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	served := make(chan error, 1)
	go func() {
		log.Info().Str("addr", ln.Addr().String()).Msg("http server listening")
		served <- s.httpServer.Serve(ln)
	}()

	select {
	case err := <-served:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("http server draining")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.grace)
	defer cancel()
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http server shutdown incomplete")
		return err
	}
	log.Info().Msg("http server stopped")
	return nil
}
