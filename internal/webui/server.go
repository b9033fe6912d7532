package webui

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/ben-bakker/searchai/internal/types"
)

// ServerConfig holds the gateway server configuration
type ServerConfig struct {
	Host            string
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
	MaxRequestBytes int64
	AllowedOrigins  []string // "*" allows any origin
}

// DefaultServerConfig returns the default server configuration
func DefaultServerConfig() *ServerConfig {
	return &ServerConfig{
		Host:            "0.0.0.0",
		Port:            5000,
		ReadTimeout:     30 * time.Second,
		WriteTimeout:    90 * time.Second,
		IdleTimeout:     120 * time.Second,
		ShutdownTimeout: 30 * time.Second,
		MaxRequestBytes: 64 << 10,
		AllowedOrigins:  []string{"http://localhost:3000", "http://localhost:3001"},
	}
}

// ServerConfigFromConfig builds a ServerConfig from the loaded application config
func ServerConfigFromConfig(cfg *types.Config) *ServerConfig {
	return &ServerConfig{
		Host:            cfg.ServerHost,
		Port:            cfg.ServerPort,
		ReadTimeout:     cfg.ServerReadTimeout,
		WriteTimeout:    cfg.ServerWriteTimeout,
		IdleTimeout:     cfg.ServerIdleTimeout,
		ShutdownTimeout: cfg.ServerShutdownTimeout,
		MaxRequestBytes: int64(cfg.MaxRequestBytes),
		AllowedOrigins:  cfg.CORSAllowedOrigins,
	}
}

// Searcher runs one search request end to end
type Searcher interface {
	Search(ctx context.Context, query string, opts *types.SearchOptionsOverride) (*types.SearchResponse, error)
}

// Server is the HTTP gateway in front of the search orchestrator
type Server struct {
	config       *ServerConfig
	searcher     Searcher
	httpServer   *http.Server
	handler      http.Handler
	origins      map[string]struct{}
	anyOrigin    bool
	logger       *log.Logger
	shutdownOnce sync.Once
}

// NewServer creates a new gateway server
func NewServer(serverConfig *ServerConfig, searcher Searcher, logger *log.Logger) (*Server, error) {
	if searcher == nil {
		return nil, fmt.Errorf("searcher is required")
	}
	if serverConfig == nil {
		serverConfig = DefaultServerConfig()
	}
	if logger == nil {
		logger = log.New(log.Writer(), "[server] ", log.LstdFlags)
	}

	s := &Server{
		config:   serverConfig,
		searcher: searcher,
		origins:  make(map[string]struct{}, len(serverConfig.AllowedOrigins)),
		logger:   logger,
	}
	for _, origin := range serverConfig.AllowedOrigins {
		if origin == "*" {
			s.anyOrigin = true
			continue
		}
		s.origins[origin] = struct{}{}
	}

	mux, err := s.setupRoutes()
	if err != nil {
		return nil, err
	}
	s.handler = s.loggingMiddleware(s.corsMiddleware(mux))

	return s, nil
}

// Handler returns the fully wrapped HTTP handler
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Addr returns the listen address
func (s *Server) Addr() string {
	return net.JoinHostPort(s.config.Host, strconv.Itoa(s.config.Port))
}

// Run starts the server and blocks until context is cancelled
func (s *Server) Run(ctx context.Context) error {
	s.httpServer = &http.Server{
		Addr:         s.Addr(),
		Handler:      s.handler,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
		IdleTimeout:  s.config.IdleTimeout,
	}

	errChan := make(chan error, 1)
	go func() {
		s.logger.Printf("Starting search gateway at http://%s", s.Addr())
		if err := s.httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
		close(errChan)
	}()

	select {
	case <-ctx.Done():
		return s.shutdown()
	case err := <-errChan:
		return err
	}
}

// shutdown performs graceful shutdown
func (s *Server) shutdown() error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.logger.Println("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.config.ShutdownTimeout)
		defer cancel()

		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			shutdownErr = fmt.Errorf("server shutdown error: %w", err)
		}
	})
	return shutdownErr
}

// setupRoutes configures HTTP routes
func (s *Server) setupRoutes() (*http.ServeMux, error) {
	mux := http.NewServeMux()

	staticFS, err := fs.Sub(staticFiles, "static")
	if err != nil {
		return nil, fmt.Errorf("failed to setup static files: %w", err)
	}
	mux.Handle("/", http.FileServer(http.FS(staticFS)))

	mux.HandleFunc("/api/search", s.handleSearch)
	mux.HandleFunc("/api/health", s.handleHealth)

	return mux, nil
}
