package http

import (
	"net/http"
	"time"

	"github.com/lockdownlabs/gatehouse/pkg/gatesdk"
	"github.com/lockdownlabs/gatehouse/pkg/httpx"
)

// LivezHandler always returns 200 OK while the process is running.
func LivezHandler(startTime time.Time, version string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		httpx.WriteJSON(w, http.StatusOK, gatesdk.HealthResponse{
			Status:  "ok",
			Uptime:  time.Since(startTime).String(),
			Version: version,
		})
	}
}
