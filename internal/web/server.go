package web

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/vitos/take_profit/internal/domain"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

type Server struct {
	router  *http.ServeMux
	server  *http.Server
	form    domain.OrderFormService
	formMu  sync.Mutex // the form is single-threaded; requests are serialized here
	limiter *rate.Limiter
	logger  *zap.Logger
}

type Options struct {
	Port              int
	CommandsPerSecond float64 // 0 disables throttling
	Burst             int
}

func NewServer(opts Options, form domain.OrderFormService, logger *zap.Logger) *Server {
	s := &Server{
		router: http.NewServeMux(),
		form:   form,
		logger: logger,
	}
	if opts.CommandsPerSecond > 0 {
		s.limiter = rate.NewLimiter(rate.Limit(opts.CommandsPerSecond), opts.Burst)
	}
	s.routes()
	s.server = &http.Server{
		Addr:    fmt.Sprintf(":%d", opts.Port),
		Handler: s.router,
	}
	return s
}

func (s *Server) routes() {
	s.router.HandleFunc("GET /status", s.handleStatus)

	s.router.HandleFunc("GET /api/order-form", s.handleSnapshot)
	s.router.Handle("POST /api/commands", s.throttle(http.HandlerFunc(s.handleCommand)))

	s.router.HandleFunc("GET /ws", s.handleWS)
}

// Handler exposes the router for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) Start() error {
	s.logger.Info("Starting web server", zap.String("addr", s.server.Addr))
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

func (s *Server) apply(cmd domain.Command) (domain.CommandResult, error) {
	s.formMu.Lock()
	defer s.formMu.Unlock()
	return s.form.Apply(cmd)
}

func (s *Server) snapshot() domain.OrderFormSnapshot {
	s.formMu.Lock()
	defer s.formMu.Unlock()
	return s.form.Snapshot()
}

func (s *Server) allow() bool {
	return s.limiter == nil || s.limiter.Allow()
}

func (s *Server) throttle(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.allow() {
			http.Error(w, "Too Many Requests", http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}
