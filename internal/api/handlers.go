package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"colroute/internal/metrics"
	"colroute/internal/model"
	"colroute/internal/store"
)

// RunsHandler handles POST/GET /v1/runs
func (s *Server) RunsHandler(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/v1/runs" {
		writeProblem(w, http.StatusNotFound, "Not Found", "", r.URL.Path)
		return
	}
	switch r.Method {
	case http.MethodPost:
		s.RateLimit(s.submitRun)(w, r)
	case http.MethodGet:
		p := s.getPrincipal(r)
		q := r.URL.Query()
		limit := 100
		if v := q.Get("limit"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				writeProblem(w, http.StatusBadRequest, "Invalid limit", err.Error(), r.URL.Path)
				return
			}
			limit = n
		}
		items, next, err := s.Store.ListRuns(r.Context(), p.Tenant, q.Get("status"), q.Get("cursor"), limit)
		if err != nil {
			writeProblem(w, http.StatusInternalServerError, "List runs failed", err.Error(), r.URL.Path)
			return
		}
		if items == nil {
			items = []model.Run{}
		}
		writeJSON(w, http.StatusOK, map[string]any{"items": items, "nextCursor": next})
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (s *Server) submitRun(w http.ResponseWriter, r *http.Request) {
	p := s.getPrincipal(r)
	if !p.CanSubmit() {
		writeProblem(w, http.StatusForbidden, "Forbidden", "dispatcher or admin required", r.URL.Path)
		return
	}
	var req model.RunRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid JSON", err.Error(), r.URL.Path)
		return
	}
	o, cfg, err := s.validateRunRequest(&req)
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid run request", err.Error(), r.URL.Path)
		return
	}
	if req.TenantID == "" || !p.IsAdmin() {
		req.TenantID = p.Tenant
	}
	run, err := s.Store.CreateRun(r.Context(), model.RunInput{
		TenantID: req.TenantID,
		Label:    req.Label,
		Points:   o.Size(),
		Config:   cfg,
	})
	if err != nil {
		writeProblem(w, http.StatusInternalServerError, "Create run failed", err.Error(), r.URL.Path)
		return
	}
	w.Header().Set("Location", "/v1/runs/"+run.ID)
	if req.Async {
		s.startAsync(run, o, cfg)
		writeJSON(w, http.StatusAccepted, run)
		return
	}
	done, err := s.execute(r.Context(), run, o, cfg)
	if err != nil {
		writeProblem(w, http.StatusInternalServerError, "Run failed", err.Error(), r.URL.Path)
		return
	}
	if done.Status == model.StatusFailed {
		writeProblem(w, http.StatusUnprocessableEntity, "Run failed", fmt.Sprintf("run %s: %s", done.ID, done.Error), r.URL.Path)
		return
	}
	writeJSON(w, http.StatusOK, done)
}

// RunByIDHandler handles GET /v1/runs/{id}, /snapshots, /events/stream and /ws
func (s *Server) RunByIDHandler(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/v1/runs/")
	if rest == r.URL.Path || rest == "" {
		writeProblem(w, http.StatusNotFound, "Not Found", "missing id", r.URL.Path)
		return
	}
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	parts := strings.Split(rest, "/")
	id := parts[0]
	tenant := s.getPrincipal(r).Tenant
	switch {
	case len(parts) == 1:
		run, err := s.Store.GetRun(r.Context(), tenant, id)
		if err != nil {
			s.writeStoreError(w, r, "Run", err)
			return
		}
		writeJSON(w, http.StatusOK, run)
	case len(parts) == 2 && parts[1] == "snapshots":
		snaps, err := s.Store.ListSnapshots(r.Context(), tenant, id)
		if err != nil {
			s.writeStoreError(w, r, "Snapshots", err)
			return
		}
		if snaps == nil {
			snaps = []model.Snapshot{}
		}
		writeJSON(w, http.StatusOK, map[string]any{"items": snaps})
	case len(parts) == 3 && parts[1] == "events" && parts[2] == "stream":
		s.streamSSE(w, r, tenant, id)
	case len(parts) == 2 && parts[1] == "ws":
		s.streamWS(w, r, tenant, id)
	default:
		writeProblem(w, http.StatusNotFound, "Not Found", "", r.URL.Path)
	}
}

func (s *Server) writeStoreError(w http.ResponseWriter, r *http.Request, what string, err error) {
	if errors.Is(err, store.ErrNotFound) {
		writeProblem(w, http.StatusNotFound, what+" not found", err.Error(), r.URL.Path)
		return
	}
	writeProblem(w, http.StatusInternalServerError, what+" lookup failed", err.Error(), r.URL.Path)
}

// subscribeRun subscribes to run events and returns the run's current state.
// Subscribing first means no event published after the lookup is lost.
func (s *Server) subscribeRun(ctx context.Context, tenant, id string) (model.Run, chan Event, error) {
	ch := s.Broker.Subscribe(id)
	run, err := s.Store.GetRun(ctx, tenant, id)
	if err != nil {
		s.Broker.Unsubscribe(id, ch)
		return model.Run{}, nil, err
	}
	return run, ch, nil
}

// statusEvent describes the run as it stands when a stream opens.
func statusEvent(run model.Run) Event {
	data := map[string]any{"runId": run.ID, "status": run.Status}
	if run.Result != nil {
		data["result"] = run.Result
	}
	if run.Error != "" {
		data["error"] = run.Error
	}
	return Event{Type: "run.status", Data: data}
}

func terminal(status string) bool {
	return status == model.StatusCompleted || status == model.StatusFailed
}

func (s *Server) streamSSE(w http.ResponseWriter, r *http.Request, tenant, id string) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeProblem(w, http.StatusInternalServerError, "Streaming unsupported", "", r.URL.Path)
		return
	}
	run, ch, err := s.subscribeRun(r.Context(), tenant, id)
	if err != nil {
		s.writeStoreError(w, r, "Run", err)
		return
	}
	defer s.Broker.Unsubscribe(id, ch)
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	send := func(evt Event) {
		b, _ := json.Marshal(evt.Data)
		fmt.Fprintf(w, "event: %s\n", evt.Type)
		fmt.Fprintf(w, "data: %s\n\n", b)
		flusher.Flush()
	}
	send(statusEvent(run))
	if terminal(run.Status) {
		return
	}
	heartbeat := time.NewTicker(15 * time.Second)
	defer heartbeat.Stop()
	for {
		select {
		case <-r.Context().Done():
			return
		case evt, ok := <-ch:
			if !ok {
				return
			}
			send(evt)
			if evt.Type == EventCompleted || evt.Type == EventFailed {
				return
			}
		case <-heartbeat.C:
			send(Event{Type: "heartbeat", Data: map[string]any{"runId": id, "ts": time.Now().UTC().Format(time.RFC3339)}})
		}
	}
}

// OptimizerConfigHandler returns the GA defaults applied to runs that omit them.
func (s *Server) OptimizerConfigHandler(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/v1/optimizer/config" || r.Method != http.MethodGet {
		writeProblem(w, http.StatusNotFound, "Not Found", "", r.URL.Path)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"algorithm": "ga",
		"defaults":  s.Cfg.GA,
		"maxPoints": s.Cfg.Server.MaxPoints,
	})
}

func (s *Server) HealthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) ReadyHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 500*time.Millisecond)
	defer cancel()
	if err := s.Store.Ping(ctx); err != nil {
		writeProblem(w, http.StatusServiceUnavailable, "Not Ready", err.Error(), r.URL.Path)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// MetricsHandler exposes the service registry.
func (s *Server) MetricsHandler() http.Handler {
	return promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{})
}
