package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"lyricsync/internal/logging"
	"lyricsync/internal/lyrics"
	"lyricsync/internal/pipeline"
	"lyricsync/internal/runlog"
)

// Processor runs the full generate flow for one upload.
type Processor interface {
	Run(ctx context.Context, req pipeline.Request) (pipeline.Result, error)
}

// Embedder writes lyrics into a copy of an audio file.
type Embedder interface {
	Embed(ctx context.Context, src, dst, text string, meta lyrics.Metadata) error
}

// RunLister returns recent run ledger entries.
type RunLister interface {
	List(ctx context.Context, limit int) ([]runlog.Run, error)
}

// Options configures the HTTP surface.
type Options struct {
	StagingDir    string
	APIToken      string
	CORSOrigins   []string
	MaxUploadMB   int
	Version       string
	Centiseconds  lyrics.CentisecondPolicy
	DefaultFormat string
}

// Server is the HTTP API.
type Server struct {
	echo      *echo.Echo
	opts      Options
	processor Processor
	embedder  Embedder
	runs      RunLister
	logger    *slog.Logger
}

// New builds the router. runs may be nil when the ledger is unavailable.
func New(opts Options, processor Processor, embedder Embedder, runs RunLister, logger *slog.Logger) *Server {
	if len(opts.CORSOrigins) == 0 {
		opts.CORSOrigins = []string{"http://localhost:5173"}
	}
	if opts.MaxUploadMB <= 0 {
		opts.MaxUploadMB = 200
	}
	if opts.DefaultFormat == "" {
		opts.DefaultFormat = "lrc"
	}
	s := &Server{
		echo:      echo.New(),
		opts:      opts,
		processor: processor,
		embedder:  embedder,
		runs:      runs,
		logger:    logging.NewComponentLogger(logger, "api"),
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	e := s.echo
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = s.handleError

	e.Use(middleware.Recover())
	e.Use(s.requestContext)
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: s.opts.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))
	e.Use(middleware.BodyLimit(fmt.Sprintf("%dM", s.opts.MaxUploadMB)))

	e.GET("/", s.handleHealth)
	e.GET("/api/health", s.handleHealth)

	e.POST("/api/process", s.handleProcess, s.requireToken)
	e.POST("/process-lyrics", s.handleProcess, s.requireToken)
	e.POST("/api/embed", s.handleEmbed, s.requireToken)
	e.POST("/api/render", s.handleRender, s.requireToken)
	e.GET("/api/runs", s.handleRuns, s.requireToken)
}

// Handler returns the router for tests and custom listeners.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Serve accepts connections on listener until ctx is done, then shuts down
// gracefully.
func (s *Server) Serve(ctx context.Context, listener net.Listener) error {
	server := &http.Server{
		Handler:           s.echo,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Serve(listener)
	}()
	s.logger.Info("api server listening", logging.String("address", listener.Addr().String()))

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("api serve: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("api shutdown: %w", err)
		}
		return nil
	}
}

// ListenAndServe binds address and calls Serve.
func (s *Server) ListenAndServe(ctx context.Context, address string) error {
	address = strings.TrimSpace(address)
	if address == "" {
		return errors.New("api bind address not configured")
	}
	listener, err := net.Listen("tcp", address)
	if err != nil {
		return fmt.Errorf("api listen: %w", err)
	}
	return s.Serve(ctx, listener)
}
