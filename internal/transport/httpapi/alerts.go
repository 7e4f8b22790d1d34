package httpapi

import (
	"net/http"

	"poolkeeper/internal/usecase/alerts"
)

func (req alertRequest) input() alerts.Input {
	return alerts.Input{
		Name:           req.Name,
		Cadence:        req.Cadence,
		AlertTime:      req.AlertTime,
		DaysOfWeek:     req.DaysOfWeek,
		OnLowInventory: req.OnLowInventory,
		OnDueTasks:     req.OnDueTasks,
	}
}

func (a *api) listAlerts(w http.ResponseWriter, r *http.Request) {
	items, err := a.Alerts.List(r.Context(), ownerFrom(r.Context()).ID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	resp := make([]alertResponse, 0, len(items))
	for _, item := range items {
		resp = append(resp, toAlertResponse(item))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (a *api) createAlert(w http.ResponseWriter, r *http.Request) {
	var req alertRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	alert, err := a.Alerts.Create(r.Context(), ownerFrom(r.Context()).ID, req.input())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toAlertResponse(alert))
}

func (a *api) getAlert(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "alertID")
	if err != nil {
		writeError(w, r, err)
		return
	}
	alert, err := a.Alerts.Get(r.Context(), ownerFrom(r.Context()).ID, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toAlertResponse(alert))
}

func (a *api) updateAlert(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "alertID")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req alertRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	alert, err := a.Alerts.Update(r.Context(), ownerFrom(r.Context()).ID, id, req.input())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toAlertResponse(alert))
}

func (a *api) deleteAlert(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "alertID")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := a.Alerts.Delete(r.Context(), ownerFrom(r.Context()).ID, id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
