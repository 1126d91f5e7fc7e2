// path: internal/handlers/health_handler.go
package handlers

import "net/http"

// HealthHandler serves GET /api/health (spec §6): a liveness probe with no
// dependency on the database or any downstream service.
type HealthHandler struct{}

func NewHealthHandler() *HealthHandler {
	return &HealthHandler{}
}

// Check responds 200 unconditionally; process liveness is what's being
// probed, not readiness of its dependencies.
func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	respondSuccess(w, map[string]string{"status": "ok"})
}
