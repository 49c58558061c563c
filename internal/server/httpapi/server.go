// Package httpapi exposes the REST surface of the todo API: route wiring,
// bearer-token middleware, and JSON rendering. All business rules live in the
// services package; handlers only translate between HTTP and typed calls.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/ccaio-oliveira/test-alugamais/internal/logging"
	"github.com/ccaio-oliveira/test-alugamais/internal/server/services"
)

// HTTPServer serves the /api/v1 endpoints.
type HTTPServer struct {
	address string
	logger  logging.Logger
	auth    *services.AuthService
	todos   *services.TodoService
	tokens  *services.TokenService
}

// NewHTTPServer constructs the server around the auth gateway, todo service,
// and token service.
func NewHTTPServer(address string, l logging.Logger, as *services.AuthService, ts *services.TodoService, tokens *services.TokenService) (*HTTPServer, error) {
	return &HTTPServer{
		address: address,
		logger:  l.With("module", "http_server"),
		auth:    as,
		todos:   ts,
		tokens:  tokens,
	}, nil
}

// Handler builds the route table. Exposed for tests.
func (s *HTTPServer) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/v1/auth/register", s.handleRegister)
	mux.HandleFunc("POST /api/v1/auth/login", s.handleLogin)
	mux.Handle("GET /api/v1/auth/me", s.withAuth(http.HandlerFunc(s.handleMe)))
	mux.Handle("GET /api/v1/auth/refresh", s.withAuth(http.HandlerFunc(s.handleRefresh)))
	mux.Handle("GET /api/v1/auth/logout", s.withAuth(http.HandlerFunc(s.handleLogout)))

	mux.Handle("GET /api/v1/todos", s.withAuth(http.HandlerFunc(s.handleTodoList)))
	mux.Handle("POST /api/v1/todos", s.withAuth(http.HandlerFunc(s.handleTodoCreate)))
	mux.Handle("GET /api/v1/todos/{id}", s.withAuth(http.HandlerFunc(s.handleTodoGet)))
	mux.Handle("PATCH /api/v1/todos/{id}", s.withAuth(http.HandlerFunc(s.handleTodoUpdate)))
	mux.Handle("DELETE /api/v1/todos/{id}", s.withAuth(http.HandlerFunc(s.handleTodoDelete)))
	mux.Handle("PATCH /api/v1/todos/{id}/toggle", s.withAuth(http.HandlerFunc(s.handleTodoToggle)))

	return s.withRequestLog(mux)
}

// Run starts the HTTP server and shuts it down gracefully when ctx is
// cancelled.
func (s *HTTPServer) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:    s.address,
		Handler: s.Handler(),
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.address)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}
