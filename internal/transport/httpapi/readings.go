package httpapi

import (
	"net/http"
	"strings"

	"poolkeeper/internal/domain/pool"
	"poolkeeper/internal/errs"
	"poolkeeper/internal/usecase/readings"
)

func (a *api) listReadingTypes(w http.ResponseWriter, r *http.Request) {
	types, err := a.Readings.ListTypes(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	resp := make([]readingTypeResponse, 0, len(types))
	for _, rt := range types {
		resp = append(resp, toReadingTypeResponse(rt))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (a *api) createReadingType(w http.ResponseWriter, r *http.Request) {
	var req readingTypeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}

	rt, err := a.Readings.CreateType(r.Context(), readings.TypeInput{
		Slug:     req.Slug,
		Name:     req.Name,
		Unit:     req.Unit,
		Low:      req.Low,
		High:     req.High,
		IsActive: active,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toReadingTypeResponse(rt))
}

func (a *api) createReading(w http.ResponseWriter, r *http.Request) {
	var req readingRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if strings.TrimSpace(req.ReadingDate) == "" {
		writeError(w, r, errs.Invalid("reading_date is required"))
		return
	}
	date, err := pool.ParseDate(req.ReadingDate)
	if err != nil {
		writeError(w, r, err)
		return
	}

	reading, err := a.Readings.CreateReading(r.Context(), ownerFrom(r.Context()).ID, readings.ReadingInput{
		Slug:        req.Slug,
		Value:       req.Value,
		ReadingDate: date,
		Notes:       req.Notes,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toReadingResponse(reading))
}

func (a *api) listReadings(w http.ResponseWriter, r *http.Request) {
	slug := strings.TrimSpace(r.URL.Query().Get("slug"))
	if slug == "" {
		writeError(w, r, errs.Invalid("slug is required"))
		return
	}
	days, err := intQuery(r, "days", readings.DefaultWindowDays)
	if err != nil {
		writeError(w, r, err)
		return
	}

	items, err := a.Readings.ListReadings(r.Context(), ownerFrom(r.Context()).ID, slug, days)
	if err != nil {
		writeError(w, r, err)
		return
	}
	points := make([]readingPoint, 0, len(items))
	for _, item := range items {
		points = append(points, readingPoint{
			ReadingDate: pool.FormatDate(item.ReadingDate),
			Value:       item.Value,
		})
	}
	writeJSON(w, http.StatusOK, points)
}

func (a *api) deleteReading(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "readingID")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := a.Readings.DeleteReading(r.Context(), ownerFrom(r.Context()).ID, id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
