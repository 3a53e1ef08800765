package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"fuel-receipts/internal/metrics"
)

// Options configure the HTTP server.
type Options struct {
	Addr            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	Mode            string
}

// NewRouter wires routes and middleware onto a gin engine.
func NewRouter(gen Generator, m *metrics.Metrics, mode string, logger zerolog.Logger) *gin.Engine {
	if mode != "" {
		gin.SetMode(mode)
	}
	logger = logger.With().Str("component", "http").Logger()

	router := gin.New()
	router.Use(requestID(logger), accessLog(logger, m), recovery(logger))

	h := &handlers{
		generator: gen,
		logger:    logger,
		now:       time.Now,
	}

	api := router.Group("/api")
	api.POST("/generate-yearly-receipts", h.generateYearly)
	api.POST("/generate-receipt", h.echoReceipt)

	router.GET("/healthz", h.healthz)
	if m != nil {
		router.GET("/metrics", gin.WrapH(m.Handler()))
	}
	return router
}

// Server runs the router until its context is cancelled.
type Server struct {
	opts   Options
	srv    *http.Server
	logger zerolog.Logger
}

// NewServer builds a Server around router.
func NewServer(router http.Handler, opts Options, logger zerolog.Logger) *Server {
	if opts.ShutdownTimeout <= 0 {
		opts.ShutdownTimeout = 10 * time.Second
	}
	return &Server{
		opts: opts,
		srv: &http.Server{
			Addr:         opts.Addr,
			Handler:      router,
			ReadTimeout:  opts.ReadTimeout,
			WriteTimeout: opts.WriteTimeout,
		},
		logger: logger.With().Str("component", "http_server").Logger(),
	}
}

// Run listens until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", s.opts.Addr).Msg("http server listening")
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.opts.ShutdownTimeout)
	defer cancel()
	if err := s.srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown http server: %w", err)
	}
	s.logger.Info().Msg("http server stopped")
	return nil
}
