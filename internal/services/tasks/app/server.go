// Package server wires the tasks runtime and HTTP lifecycle.
package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/louisbranch/tasktrack/internal/platform/config"
	"github.com/louisbranch/tasktrack/internal/platform/httpx"
	"github.com/louisbranch/tasktrack/internal/services/tasks/api/rest"
	"github.com/louisbranch/tasktrack/internal/services/tasks/authn"
	"github.com/louisbranch/tasktrack/internal/services/tasks/domain"
	"github.com/louisbranch/tasktrack/internal/services/tasks/storage/sqlite"
)

const shutdownTimeout = 5 * time.Second

type serverEnv struct {
	DBPath string `env:"TASKTRACK_TASKS_DB_PATH"`
}

func loadServerEnv() serverEnv {
	var cfg serverEnv
	_ = config.ParseEnv(&cfg)
	if strings.TrimSpace(cfg.DBPath) == "" {
		cfg.DBPath = filepath.Join("data", "tasks.db")
	}
	return cfg
}

// Server hosts the tasks HTTP API and storage lifecycle.
type Server struct {
	listener   net.Listener
	httpServer *http.Server
	store      *sqlite.Store
	service    *domain.Service
}

// New creates a configured tasks server listening on the provided port.
func New(port int) (*Server, error) {
	return NewWithAddr(fmt.Sprintf(":%d", port))
}

// NewWithAddr creates a configured tasks server for the provided address.
func NewWithAddr(addr string) (*Server, error) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listen on %s: %w", addr, err)
	}

	authCfg, err := authn.LoadConfigFromEnv(nil)
	if err != nil {
		_ = listener.Close()
		return nil, err
	}

	env := loadServerEnv()
	store, err := openTaskStore(env.DBPath)
	if err != nil {
		_ = listener.Close()
		return nil, err
	}

	service := domain.NewService(newDomainStoreAdapter(store, store), nil, nil)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	api := http.NewServeMux()
	rest.NewHandler(service).Routes(api)
	mux.Handle("/v1/", authn.Middleware(authCfg)(api))

	handler := httpx.Chain(mux, httpx.RequestID(), httpx.RecoverPanic())

	return &Server{
		listener:   listener,
		httpServer: &http.Server{Handler: otelhttp.NewHandler(handler, "tasks")},
		store:      store,
		service:    service,
	}, nil
}

// Addr returns the listener address for the server.
func (s *Server) Addr() string {
	if s == nil || s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Service returns the domain service backing the API. Seed tooling uses it to
// provision records through the same validation path the API takes.
func (s *Server) Service() *domain.Service {
	if s == nil {
		return nil
	}
	return s.service
}

// Run creates and serves a tasks server until context cancellation.
func Run(ctx context.Context, port int) error {
	server, err := New(port)
	if err != nil {
		return err
	}
	return server.Serve(ctx)
}

// Serve starts the HTTP server until context cancellation.
func (s *Server) Serve(ctx context.Context) error {
	if s == nil {
		return errors.New("server is nil")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	defer s.Close()

	log.Printf("tasks server listening at %v", s.listener.Addr())
	serveErr := make(chan error, 1)
	go func() {
		serveErr <- s.httpServer.Serve(s.listener)
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		err := <-serveErr
		if err == nil || errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve http: %w", err)
	case err := <-serveErr:
		if err == nil || errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve http: %w", err)
	}
}

// Close releases tasks server resources.
func (s *Server) Close() {
	if s == nil {
		return
	}
	if s.httpServer != nil {
		_ = s.httpServer.Close()
	}
	if s.listener != nil {
		_ = s.listener.Close()
	}
	if s.store != nil {
		if err := s.store.Close(); err != nil {
			log.Printf("close tasks store: %v", err)
		}
	}
}

func openTaskStore(path string) (*sqlite.Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create storage dir: %w", err)
		}
	}
	store, err := sqlite.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open tasks sqlite store: %w", err)
	}
	return store, nil
}
