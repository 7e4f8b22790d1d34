package httpapi

import (
	"net/http"

	"poolkeeper/internal/usecase/inventory"
)

func (req inventoryRequest) input() inventory.Input {
	return inventory.Input{
		Name:             req.Name,
		QuantityOnHand:   req.QuantityOnHand,
		Unit:             req.Unit,
		ReorderThreshold: req.ReorderThreshold,
	}
}

func (a *api) listInventory(w http.ResponseWriter, r *http.Request) {
	items, err := a.Inventory.List(r.Context(), ownerFrom(r.Context()).ID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	resp := make([]inventoryResponse, 0, len(items))
	for _, item := range items {
		resp = append(resp, toInventoryResponse(item))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (a *api) createInventory(w http.ResponseWriter, r *http.Request) {
	var req inventoryRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	item, err := a.Inventory.Create(r.Context(), ownerFrom(r.Context()).ID, req.input())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toInventoryResponse(item))
}

func (a *api) getInventory(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "itemID")
	if err != nil {
		writeError(w, r, err)
		return
	}
	item, err := a.Inventory.Get(r.Context(), ownerFrom(r.Context()).ID, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toInventoryResponse(item))
}

func (a *api) updateInventory(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "itemID")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req inventoryRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	item, err := a.Inventory.Update(r.Context(), ownerFrom(r.Context()).ID, id, req.input())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toInventoryResponse(item))
}

func (a *api) deleteInventory(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "itemID")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := a.Inventory.Delete(r.Context(), ownerFrom(r.Context()).ID, id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
