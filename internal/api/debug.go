package api

import (
	"net/http"
	"time"

	"colroute/internal/buildinfo"
)

// DebugJSON reports build info and which backends are configured, without secrets.
func (s *Server) DebugJSON(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"build": buildinfo.Info(),
		"time":  time.Now().UTC().Format(time.RFC3339),
		"config": map[string]any{
			"addr":               s.Cfg.Server.Addr,
			"authMode":           s.Cfg.Auth.Mode,
			"rateRps":            s.Cfg.Server.RateRPS,
			"rateBurst":          s.Cfg.Server.RateBurst,
			"maxPoints":          s.Cfg.Server.MaxPoints,
			"webhookEndpoints":   len(s.Cfg.Webhooks.URLs),
			"webhookMaxAttempts": s.Cfg.Webhooks.MaxAttempts,
			"hasDatabaseURL":     s.Cfg.Database.URL != "",
			"hasRedisURL":        s.Cfg.Redis.URL != "",
			"hasWebhookSecret":   s.Cfg.Webhooks.Secret != "",
			"pendingWebhooks":    s.pendingWebhooks(),
		},
	})
}

func (s *Server) pendingWebhooks() int {
	if s.Worker == nil {
		return 0
	}
	return s.Worker.Pending()
}
