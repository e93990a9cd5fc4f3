package webhooks

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"
)

func TestWorkerProcessOnce_SuccessAndSignature(t *testing.T) {
	var mu sync.Mutex
	var gotSig, gotType string
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		gotSig = r.Header.Get("X-Signature")
		gotType = r.Header.Get("X-Event-Type")
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		w.WriteHeader(200)
	}))
	defer srv.Close()

	w := &Worker{HTTP: srv.Client(), Stop: make(chan struct{}), MaxAttempts: 3}
	pub := NewPublisher(w, []string{srv.URL}, "secret")
	pub.Emit(context.Background(), "t1", "run.completed", map[string]any{"runId": "r1"})
	if w.Pending() != 1 {
		t.Fatalf("expected one pending delivery, got %d", w.Pending())
	}

	w.processOnce()

	mu.Lock()
	defer mu.Unlock()
	if gotSig == "" || gotType != "run.completed" {
		t.Fatalf("missing signature/type headers: sig=%q type=%q", gotSig, gotType)
	}
	if gotBody["tenantId"] != "t1" || gotBody["type"] != "run.completed" {
		t.Fatalf("unexpected payload: %+v", gotBody)
	}
	if w.Pending() != 0 || len(w.DeadLetters()) != 0 {
		t.Fatalf("expected delivery to be done: pending=%d dead=%d", w.Pending(), len(w.DeadLetters()))
	}
}

func TestWorkerProcessOnce_RetryThenDeadLetter(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(500) }))
	defer srv.Close()
	w := &Worker{HTTP: srv.Client(), Stop: make(chan struct{}), MaxAttempts: 2}
	w.Enqueue("run.failed", srv.URL, "", []byte(`{}`))

	w.processOnce()
	if w.Pending() != 1 {
		t.Fatalf("expected delivery to be rescheduled")
	}
	// not due yet
	w.processOnce()
	if w.Pending() != 1 {
		t.Fatalf("delivery retried before its backoff elapsed")
	}
	w.mu.Lock()
	w.pending[0].NextAttemptAt = time.Now().Add(-time.Second)
	w.mu.Unlock()

	w.processOnce()
	dead := w.DeadLetters()
	if w.Pending() != 0 || len(dead) != 1 {
		t.Fatalf("expected dead letter: pending=%d dead=%d", w.Pending(), len(dead))
	}
	if dead[0].Attempts != 2 || dead[0].ResponseCode != 500 {
		t.Fatalf("unexpected dead letter: %+v", dead[0])
	}
}

func TestNextBackoff(t *testing.T) {
	if nextBackoff(-1) != time.Second || nextBackoff(0) != time.Second || nextBackoff(3) != 8*time.Second {
		t.Fatal("unexpected backoff progression")
	}
	if nextBackoff(40) != time.Hour {
		t.Fatalf("backoff should cap at 1h, got %v", nextBackoff(40))
	}
}

func TestSignatureRoundTrip(t *testing.T) {
	body := []byte(`{"a":1}`)
	if !VerifyHMAC("k", body, SignHMAC("k", body)) {
		t.Fatal("signature should verify")
	}
	if VerifyHMAC("k2", body, SignHMAC("k", body)) {
		t.Fatal("signature with other key should not verify")
	}
}
