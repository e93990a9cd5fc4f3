package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"colroute/internal/api"
	"colroute/internal/config"
	"colroute/internal/metrics"
)

func main() {
	cfgPath := flag.String("config", config.Path(), "YAML config file (env COLROUTE_CONFIG)")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	metrics.RegisterDefault()

	srvDeps, err := api.NewServer(cfg)
	if err != nil {
		log.Fatalf("failed to init server: %v", err)
	}

	mux := http.NewServeMux()
	route := func(pattern string, h http.Handler) { mux.Handle(pattern, instrument(pattern, h)) }

	// Runs
	route("/v1/runs", http.HandlerFunc(srvDeps.RunsHandler))
	route("/v1/runs/", http.HandlerFunc(srvDeps.RunByIDHandler)) // includes /snapshots, /events/stream, /ws
	route("/v1/optimizer/config", http.HandlerFunc(srvDeps.OptimizerConfigHandler))

	// Health
	route("/healthz", http.HandlerFunc(srvDeps.HealthHandler))
	route("/readyz", http.HandlerFunc(srvDeps.ReadyHandler))

	// Ops
	mux.Handle("/metrics", srvDeps.MetricsHandler())
	mux.HandleFunc("/debug/vars", srvDeps.DebugJSON)

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           logMiddleware(mux),
		ReadHeaderTimeout: 5 * time.Second,
	}

	if srvDeps.Worker != nil {
		srvDeps.Worker.Start()
	}

	go func() {
		log.Printf("API listening on %s", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	log.Printf("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("http shutdown: %v", err)
	}
	srvDeps.Shutdown()
}

func logMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		dur := time.Since(start)
		log.Printf("%s %s %s %v", r.RemoteAddr, r.Method, r.URL.Path, dur)
	})
}

// instrument counts requests under the registered pattern so run ids do not
// become label values.
func instrument(pattern string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sr := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sr, r)
		status := strconv.Itoa(sr.status)
		metrics.HTTPRequests.WithLabelValues(r.Method, pattern, status).Inc()
		metrics.HTTPDuration.WithLabelValues(r.Method, pattern, status).Observe(time.Since(start).Seconds())
	})
}

// statusRecorder keeps the Flusher and Hijacker of the wrapped writer
// reachable for SSE and WebSocket handlers.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

func (s *statusRecorder) Flush() {
	if f, ok := s.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (s *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := s.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("hijack not supported")
	}
	s.status = http.StatusSwitchingProtocols
	return h.Hijack()
}

func (s *statusRecorder) Unwrap() http.ResponseWriter { return s.ResponseWriter }
