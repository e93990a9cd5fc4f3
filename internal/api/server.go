package api

import (
	"context"
	"log"
	"net/http"
	"sync"

	"golang.org/x/time/rate"

	"colroute/internal/auth"
	"colroute/internal/config"
	"colroute/internal/store"
	"colroute/internal/webhooks"
)

type Server struct {
	Store   store.Store
	Broker  EventBroker
	Auth    *auth.Verifier
	Pub     *webhooks.Publisher
	Worker  *webhooks.Worker
	Cfg     config.Config
	limiter *rate.Limiter

	// bg scopes async runs; Shutdown cancels it and waits for them.
	bg       context.Context
	cancel   context.CancelFunc
	runs     sync.WaitGroup
	stopOnce sync.Once
}

// NewServer creates a Server from cfg. Without a database URL it uses the
// in-memory store; without a Redis URL it uses the in-process broker.
func NewServer(cfg config.Config) (*Server, error) {
	var s store.Store
	if cfg.Database.URL == "" {
		s = store.NewMemory()
	} else {
		sp, err := store.NewPostgres(cfg.Database.URL)
		if err != nil {
			return nil, err
		}
		if cfg.Database.Migrate {
			if err := sp.Migrate(context.Background()); err != nil {
				return nil, err
			}
		}
		s = sp
	}
	var broker EventBroker
	if cfg.Redis.URL != "" {
		rb, err := NewRedisBroker(cfg.Redis.URL)
		if err != nil {
			log.Printf("redis broker unavailable, using in-memory broker: %v", err)
			broker = NewBroker()
		} else {
			broker = rb
		}
	} else {
		broker = NewBroker()
	}
	srv := &Server{
		Store:  s,
		Broker: broker,
		Auth:   auth.NewVerifier(cfg.Auth.Mode, cfg.Auth.HMACSecret),
		Cfg:    cfg,
	}
	if len(cfg.Webhooks.URLs) > 0 {
		srv.Worker = webhooks.NewWorker(cfg.Webhooks.MaxAttempts)
		srv.Pub = webhooks.NewPublisher(srv.Worker, cfg.Webhooks.URLs, cfg.Webhooks.Secret)
	}
	if cfg.Server.RateRPS > 0 {
		burst := cfg.Server.RateBurst
		if burst < 1 {
			burst = 1
		}
		srv.limiter = rate.NewLimiter(rate.Limit(cfg.Server.RateRPS), burst)
	}
	srv.bg, srv.cancel = context.WithCancel(context.Background())
	return srv, nil
}

// Shutdown cancels in-flight async runs and waits for them to record their
// outcome. Calls after the first are no-ops.
func (s *Server) Shutdown() {
	s.stopOnce.Do(func() {
		s.cancel()
		s.runs.Wait()
		if s.Worker != nil {
			close(s.Worker.Stop)
		}
	})
}

// RateLimit rejects requests beyond the configured rate with 429.
func (s *Server) RateLimit(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.limiter != nil && !s.limiter.Allow() {
			w.Header().Set("Retry-After", "1")
			writeProblem(w, http.StatusTooManyRequests, "Too Many Requests", "run submission rate exceeded", r.URL.Path)
			return
		}
		next(w, r)
	}
}
