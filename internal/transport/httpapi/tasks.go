package httpapi

import (
	"net/http"

	"poolkeeper/internal/domain/pool"
	"poolkeeper/internal/errs"
	"poolkeeper/internal/usecase/tasks"
)

func (a *api) listTasks(w http.ResponseWriter, r *http.Request) {
	items, err := a.Tasks.List(r.Context(), ownerFrom(r.Context()).ID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	resp := make([]taskResponse, 0, len(items))
	for _, t := range items {
		resp = append(resp, toTaskResponse(t))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (a *api) createTask(w http.ResponseWriter, r *http.Request) {
	var req taskRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	input := tasks.CreateInput{
		Name:          req.Name,
		Description:   req.Description,
		FrequencyDays: req.FrequencyDays,
	}
	if req.NextDueDate != nil {
		due, err := pool.ParseDate(*req.NextDueDate)
		if err != nil {
			writeError(w, r, err)
			return
		}
		input.NextDueDate = &due
	}

	task, err := a.Tasks.Create(r.Context(), ownerFrom(r.Context()).ID, input)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toTaskResponse(task))
}

func (a *api) getTask(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "taskID")
	if err != nil {
		writeError(w, r, err)
		return
	}
	task, err := a.Tasks.Get(r.Context(), ownerFrom(r.Context()).ID, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toTaskResponse(task))
}

func (a *api) updateTask(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "taskID")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req taskRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if req.NextDueDate == nil {
		writeError(w, r, errs.Invalid("next_due_date is required"))
		return
	}
	due, err := pool.ParseDate(*req.NextDueDate)
	if err != nil {
		writeError(w, r, err)
		return
	}

	task, err := a.Tasks.Update(r.Context(), ownerFrom(r.Context()).ID, id, tasks.UpdateInput{
		Name:          req.Name,
		Description:   req.Description,
		FrequencyDays: req.FrequencyDays,
		NextDueDate:   due,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toTaskResponse(task))
}

func (a *api) completeTask(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "taskID")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req completeRequest
	if r.ContentLength != 0 {
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, r, err)
			return
		}
	}

	task, err := a.Tasks.Complete(r.Context(), ownerFrom(r.Context()).ID, id, req.Notes)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toTaskResponse(task))
}

func (a *api) deleteTask(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "taskID")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := a.Tasks.Delete(r.Context(), ownerFrom(r.Context()).ID, id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *api) taskHistory(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "taskID")
	if err != nil {
		writeError(w, r, err)
		return
	}
	page, err := intQuery(r, "page", 1)
	if err != nil {
		writeError(w, r, err)
		return
	}
	size, err := intQuery(r, "page_size", pool.DefaultPageSize)
	if err != nil {
		writeError(w, r, err)
		return
	}

	history, err := a.Tasks.History(r.Context(), ownerFrom(r.Context()).ID, id, page, size)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toHistoryResponse(history))
}

