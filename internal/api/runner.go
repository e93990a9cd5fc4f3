package api

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"colroute/internal/ga"
	"colroute/internal/metrics"
	"colroute/internal/model"
)

// execute runs the engine for run and records its progress and outcome.
// Progress goes to the store and the broker; the outcome also goes to
// metrics and webhooks.
func (s *Server) execute(ctx context.Context, run model.Run, o *ga.Oracle, cfg ga.Config) (model.Run, error) {
	if err := s.Store.StartRun(ctx, run.ID); err != nil {
		s.fail(run, fmt.Errorf("start run: %w", err))
		return model.Run{}, err
	}
	s.Broker.Publish(run.ID, Event{Type: EventStarted, Data: map[string]any{"runId": run.ID, "points": run.Points}})

	obs := ga.ObserverFunc(func(st ga.GenerationStats) {
		if err := s.Store.AppendSnapshot(ctx, run.ID, st); err != nil {
			log.Printf("run %s: snapshot at generation %d: %v", run.ID, st.Generation, err)
		}
		s.Broker.Publish(run.ID, Event{Type: EventProgress, Data: map[string]any{
			"runId":          run.ID,
			"generation":     st.Generation,
			"generations":    cfg.Generations,
			"bestDistance":   st.BestDistance,
			"meanDistance":   st.MeanDistance,
			"stdDevDistance": st.StdDevDistance,
		}})
	})
	if cfg.Parallelism == 0 {
		cfg.Parallelism = s.Cfg.GA.Parallelism
	}
	start := time.Now()
	res, err := runEngine(ctx, o, cfg, obs)
	dur := time.Since(start)
	if err != nil {
		s.fail(run, err)
		return s.Store.GetRun(context.WithoutCancel(ctx), run.TenantID, run.ID)
	}

	out := model.RunResult{
		Route:           model.RouteFromPoints(res.Route),
		InitialDistance: res.InitialDistance,
		FinalDistance:   res.FinalDistance,
		Generations:     res.Generations,
		DurationMs:      dur.Milliseconds(),
	}
	if err := s.Store.CompleteRun(ctx, run.ID, out); err != nil {
		return model.Run{}, err
	}
	metrics.GARuns.WithLabelValues(model.StatusCompleted).Inc()
	metrics.GARunDuration.Observe(dur.Seconds())
	metrics.GAGenerations.Add(float64(res.Generations))
	if res.InitialDistance > 0 {
		metrics.GABestDistanceRatio.Observe(res.FinalDistance / res.InitialDistance)
	}
	data := map[string]any{
		"runId":           run.ID,
		"route":           out.Route,
		"initialDistance": out.InitialDistance,
		"finalDistance":   out.FinalDistance,
		"generations":     out.Generations,
	}
	s.Broker.Publish(run.ID, Event{Type: EventCompleted, Data: data})
	s.Pub.Emit(ctx, run.TenantID, EventCompleted, data)
	log.Printf("run %s: %d points, %d generations, distance %.3f -> %.3f in %v",
		run.ID, run.Points, res.Generations, res.InitialDistance, res.FinalDistance, dur)
	return s.Store.GetRun(ctx, run.TenantID, run.ID)
}

func runEngine(ctx context.Context, o *ga.Oracle, cfg ga.Config, obs ga.Observer) (ga.Result, error) {
	e, err := ga.NewEngine(o, cfg, ga.WithObserver(obs))
	if err != nil {
		return ga.Result{}, err
	}
	return e.Run(ctx)
}

// fail records a run that could not finish. It uses a context detached from
// cancellation so a shutdown still leaves the run marked failed.
func (s *Server) fail(run model.Run, cause error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	msg := cause.Error()
	if errors.Is(cause, context.Canceled) {
		msg = "cancelled"
	}
	if err := s.Store.FailRun(ctx, run.ID, msg); err != nil {
		log.Printf("run %s: record failure: %v", run.ID, err)
	}
	metrics.GARuns.WithLabelValues(model.StatusFailed).Inc()
	data := map[string]any{"runId": run.ID, "error": msg}
	s.Broker.Publish(run.ID, Event{Type: EventFailed, Data: data})
	s.Pub.Emit(ctx, run.TenantID, EventFailed, data)
	log.Printf("run %s failed: %s", run.ID, msg)
}

// startAsync executes run in the background under the server's lifetime context.
func (s *Server) startAsync(run model.Run, o *ga.Oracle, cfg ga.Config) {
	s.runs.Add(1)
	go func() {
		defer s.runs.Done()
		if _, err := s.execute(s.bg, run, o, cfg); err != nil {
			log.Printf("run %s: %v", run.ID, err)
		}
	}()
}
