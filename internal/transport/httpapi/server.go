package httpapi

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"poolkeeper/internal/bootstrap/logging"
	"poolkeeper/internal/errs"
)

const DefaultAddr = ":8000"

// Server binds the router to a listener and serves until Stop.
type Server struct {
	addr    string
	handler http.Handler

	mu   sync.Mutex
	srv  *http.Server
	ln   net.Listener
	done chan struct{}
}

func NewServer(addr string, handler http.Handler) *Server {
	if addr == "" {
		addr = DefaultAddr
	}
	return &Server{addr: addr, handler: handler}
}

// Addr is the bound address once started, otherwise the configured one.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ln != nil {
		return s.ln.Addr().String()
	}
	return s.addr
}

func (s *Server) Start(ctx context.Context) error {
	if ctx == nil {
		return errors.New("context is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.srv != nil {
		return errors.New("http server already started")
	}

	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return errs.Wrapf(err, "listen on %s", s.addr)
	}

	logCtx := logging.With(context.WithoutCancel(ctx), "transport.http")
	srv := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return logCtx },
	}
	done := make(chan struct{})
	s.srv, s.ln, s.done = srv, ln, done

	go func() {
		defer close(done)
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Error(logCtx, "http server failed", slog.Any("err", errs.Loggable(err)))
		}
	}()

	logging.Info(logCtx, "http server started", slog.String("addr", ln.Addr().String()))
	return nil
}

func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	srv, done := s.srv, s.done
	s.mu.Unlock()
	if srv == nil {
		return nil
	}

	if err := srv.Shutdown(ctx); err != nil {
		return errs.Wrap(err, "shutdown http server")
	}
	<-done
	logging.Info(ctx, "http server stopped")
	return nil
}
