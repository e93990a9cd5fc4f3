package webhooks

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// Publisher fans run events out to every configured endpoint.
type Publisher struct {
	Worker *Worker
	URLs   []string
	Secret string
}

func NewPublisher(w *Worker, urls []string, secret string) *Publisher {
	return &Publisher{Worker: w, URLs: urls, Secret: secret}
}

// Emit queues eventType with data for delivery to all endpoints.
func (p *Publisher) Emit(ctx context.Context, tenantID, eventType string, data any) {
	if p == nil || p.Worker == nil || len(p.URLs) == 0 {
		return
	}
	payload := map[string]any{
		"id":       fmt.Sprintf("evt_%d", time.Now().UnixNano()),
		"type":     eventType,
		"tenantId": tenantID,
		"ts":       time.Now().UTC().Format(time.RFC3339),
		"data":     data,
	}
	body, _ := json.Marshal(payload)
	for _, u := range p.URLs {
		p.Worker.Enqueue(eventType, u, p.Secret, body)
	}
}
