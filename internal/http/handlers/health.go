package handlers

import (
	"net/http"
)

// Health is the liveness probe. It deliberately skips the database: a
// degraded database surfaces as 5xx on real endpoints, not as a dead process.
func (a *App) Health(w http.ResponseWriter, r *http.Request) {
	a.json(w, http.StatusOK, map[string]string{"status": "ok", "service": "fieldquote"})
}
