package webhooks

import (
	"bytes"
	"context"
	"log"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"

	"colroute/internal/metrics"
)

// Delivery is one queued webhook POST.
type Delivery struct {
	ID            string
	EventType     string
	URL           string
	Secret        string
	Payload       []byte
	Attempts      int
	NextAttemptAt time.Time
	LastError     string
	ResponseCode  int
}

// Worker delivers queued webhooks with retries and exponential backoff.
type Worker struct {
	HTTP        *http.Client
	Stop        chan struct{}
	MaxAttempts int

	mu      sync.Mutex
	pending []*Delivery
	dead    []Delivery
}

func NewWorker(maxAttempts int) *Worker {
	if maxAttempts < 1 {
		maxAttempts = 10
	}
	return &Worker{HTTP: &http.Client{Timeout: 5 * time.Second}, Stop: make(chan struct{}), MaxAttempts: maxAttempts}
}

// Enqueue schedules a delivery for immediate attempt and returns its id.
func (w *Worker) Enqueue(eventType, url, secret string, payload []byte) string {
	d := &Delivery{ID: uuid.New().String(), EventType: eventType, URL: url, Secret: secret, Payload: payload, NextAttemptAt: time.Now()}
	w.mu.Lock()
	w.pending = append(w.pending, d)
	w.mu.Unlock()
	return d.ID
}

func (w *Worker) Start() {
	go func() {
		ticker := time.NewTicker(1 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-w.Stop:
				return
			case <-ticker.C:
				w.processOnce()
			}
		}
	}()
}

// Pending returns the number of deliveries still queued.
func (w *Worker) Pending() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.pending)
}

// DeadLetters returns deliveries that exhausted their attempts.
func (w *Worker) DeadLetters() []Delivery {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]Delivery(nil), w.dead...)
}

// due removes and returns up to limit deliveries whose attempt time has passed.
func (w *Worker) due(now time.Time, limit int) []*Delivery {
	w.mu.Lock()
	defer w.mu.Unlock()
	var out []*Delivery
	keep := w.pending[:0]
	for _, d := range w.pending {
		if len(out) < limit && !d.NextAttemptAt.After(now) {
			out = append(out, d)
			continue
		}
		keep = append(keep, d)
	}
	w.pending = keep
	return out
}

func (w *Worker) processOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	for _, it := range w.due(time.Now(), 50) {
		success := false
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, it.URL, bytes.NewReader(it.Payload))
		if err != nil {
			w.deadLetter(it, err.Error())
			continue
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Event-Type", it.EventType)
		if it.Secret != "" {
			req.Header.Set("X-Signature", SignHMAC(it.Secret, it.Payload))
		}
		start := time.Now()
		resp, err := w.HTTP.Do(req)
		latency := time.Since(start)
		code := 0
		if err == nil && resp != nil {
			code = resp.StatusCode
			if resp.Body != nil {
				_ = resp.Body.Close()
			}
			if code >= 200 && code < 300 {
				success = true
			}
		}
		status := "failed"
		if success {
			status = "delivered"
		}
		metrics.WebhookDeliveries.WithLabelValues(it.EventType, status).Inc()
		metrics.WebhookLatency.WithLabelValues(it.EventType, status).Observe(float64(latency.Milliseconds()))
		if success {
			continue
		}
		it.Attempts++
		it.ResponseCode = code
		it.LastError = "status " + strconv.Itoa(code)
		if err != nil {
			it.LastError = err.Error()
		}
		if it.Attempts >= w.MaxAttempts {
			w.deadLetter(it, it.LastError)
			continue
		}
		it.NextAttemptAt = time.Now().Add(nextBackoff(it.Attempts - 1))
		w.mu.Lock()
		w.pending = append(w.pending, it)
		w.mu.Unlock()
	}
}

func (w *Worker) deadLetter(d *Delivery, reason string) {
	d.LastError = reason
	log.Printf("webhook %s to %s dead-lettered after %d attempts: %s", d.ID, d.URL, d.Attempts, reason)
	w.mu.Lock()
	w.dead = append(w.dead, *d)
	w.mu.Unlock()
}

func nextBackoff(attempts int) time.Duration {
	if attempts < 0 {
		attempts = 0
	}
	if attempts > 12 {
		attempts = 12
	}
	base := time.Second * time.Duration(1<<attempts)
	if base > time.Hour {
		base = time.Hour
	}
	return base
}
