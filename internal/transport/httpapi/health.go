package httpapi

import (
	"net/http"

	"poolkeeper/internal/scheduler"
)

func (a *api) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type readyResponse struct {
	Status   string                 `json:"status"`
	Error    string                 `json:"error,omitempty"`
	LastTick *scheduler.TickSummary `json:"last_tick,omitempty"`
}

// ready reports database reachability. Like the liveness probe it always answers 200;
// the status field carries the verdict.
func (a *api) ready(w http.ResponseWriter, r *http.Request) {
	if a.DB == nil {
		writeJSON(w, http.StatusOK, readyResponse{Status: "not ready", Error: "database is not configured"})
		return
	}
	if err := a.DB.Ping(r.Context()); err != nil {
		writeJSON(w, http.StatusOK, readyResponse{Status: "not ready", Error: err.Error()})
		return
	}

	resp := readyResponse{Status: "ready"}
	if a.Meta != nil {
		if summary, ok, err := scheduler.LastTick(r.Context(), a.Meta); err == nil && ok {
			resp.LastTick = &summary
		}
	}
	writeJSON(w, http.StatusOK, resp)
}
