package httpapi

import (
	"time"

	"github.com/google/uuid"

	"poolkeeper/internal/domain/pool"
	"poolkeeper/internal/usecase/tasks"
)

type taskRequest struct {
	Name          string  `json:"name"`
	Description   string  `json:"description"`
	FrequencyDays int     `json:"frequency_days"`
	NextDueDate   *string `json:"next_due_date"`
}

type taskResponse struct {
	ID                  uuid.UUID `json:"id"`
	UserID              uuid.UUID `json:"user_id"`
	Name                string    `json:"name"`
	Description         string    `json:"description"`
	FrequencyDays       int       `json:"frequency_days"`
	LastCompletedDate   *string   `json:"last_completed_date"`
	NextDueDate         string    `json:"next_due_date"`
	LastCompletionNotes *string   `json:"last_completion_notes"`
}

func toTaskResponse(t pool.Task) taskResponse {
	resp := taskResponse{
		ID:                  t.ID,
		UserID:              t.OwnerID,
		Name:                t.Name,
		Description:         t.Description,
		FrequencyDays:       t.FrequencyDays,
		NextDueDate:         pool.FormatDate(t.NextDueDate),
		LastCompletionNotes: t.LastCompletionNotes,
	}
	if t.LastCompletedDate != nil {
		d := pool.FormatDate(*t.LastCompletedDate)
		resp.LastCompletedDate = &d
	}
	return resp
}

type completeRequest struct {
	Notes string `json:"notes"`
}

type completionResponse struct {
	ID            uuid.UUID `json:"id"`
	TaskID        uuid.UUID `json:"task_id"`
	CompletedDate string    `json:"completed_date"`
	Notes         *string   `json:"notes"`
	CreatedAt     time.Time `json:"created_at"`
}

type historyResponse struct {
	Items      []completionResponse `json:"items"`
	Total      int64                `json:"total"`
	Page       int                  `json:"page"`
	PageSize   int                  `json:"page_size"`
	TotalPages int                  `json:"total_pages"`
}

func toHistoryResponse(h tasks.HistoryPage) historyResponse {
	items := make([]completionResponse, 0, len(h.Items))
	for _, c := range h.Items {
		items = append(items, completionResponse{
			ID:            c.ID,
			TaskID:        c.TaskID,
			CompletedDate: pool.FormatDate(c.CompletedDate),
			Notes:         c.Notes,
			CreatedAt:     c.CreatedAt,
		})
	}
	return historyResponse{
		Items:      items,
		Total:      h.Total,
		Page:       h.Number,
		PageSize:   h.Size,
		TotalPages: h.TotalPages,
	}
}

type alertRequest struct {
	Name           string `json:"name"`
	Cadence        string `json:"cadence"`
	AlertTime      string `json:"alert_time"`
	DaysOfWeek     []int  `json:"days_of_week"`
	OnLowInventory bool   `json:"alert_on_low_inventory"`
	OnDueTasks     bool   `json:"alert_on_due_tasks"`
}

type alertResponse struct {
	ID             uuid.UUID  `json:"id"`
	UserID         uuid.UUID  `json:"user_id"`
	Name           string     `json:"name"`
	Cadence        string     `json:"cadence"`
	AlertTime      string     `json:"alert_time"`
	DaysOfWeek     []int      `json:"days_of_week"`
	OnLowInventory bool       `json:"alert_on_low_inventory"`
	OnDueTasks     bool       `json:"alert_on_due_tasks"`
	LastSent       *time.Time `json:"last_sent"`
}

func toAlertResponse(a pool.Alert) alertResponse {
	days := a.DaysOfWeek.Days()
	if days == nil {
		days = []int{}
	}
	return alertResponse{
		ID:             a.ID,
		UserID:         a.OwnerID,
		Name:           a.Name,
		Cadence:        string(a.Cadence),
		AlertTime:      a.AlertTime.String(),
		DaysOfWeek:     days,
		OnLowInventory: a.OnLowInventory,
		OnDueTasks:     a.OnDueTasks,
		LastSent:       a.LastSent,
	}
}

type inventoryRequest struct {
	Name             string  `json:"name"`
	QuantityOnHand   float64 `json:"quantity_on_hand"`
	Unit             string  `json:"unit"`
	ReorderThreshold float64 `json:"reorder_threshold"`
}

type inventoryResponse struct {
	ID               uuid.UUID `json:"id"`
	UserID           uuid.UUID `json:"user_id"`
	Name             string    `json:"name"`
	QuantityOnHand   float64   `json:"quantity_on_hand"`
	Unit             string    `json:"unit"`
	ReorderThreshold float64   `json:"reorder_threshold"`
	IsLow            bool      `json:"is_low"`
}

func toInventoryResponse(i pool.InventoryItem) inventoryResponse {
	return inventoryResponse{
		ID:               i.ID,
		UserID:           i.OwnerID,
		Name:             i.Name,
		QuantityOnHand:   i.QuantityOnHand,
		Unit:             i.Unit,
		ReorderThreshold: i.ReorderThreshold,
		IsLow:            i.IsLow(),
	}
}

type readingTypeRequest struct {
	Slug     string   `json:"slug"`
	Name     string   `json:"name"`
	Unit     string   `json:"unit"`
	Low      *float64 `json:"low"`
	High     *float64 `json:"high"`
	IsActive *bool    `json:"is_active"`
}

type readingTypeResponse struct {
	ID           uuid.UUID `json:"id"`
	Slug         string    `json:"slug"`
	Name         string    `json:"name"`
	Unit         string    `json:"unit"`
	Low          *float64  `json:"low"`
	High         *float64  `json:"high"`
	IsActive     bool      `json:"is_active"`
	DisplayOrder int       `json:"display_order"`
}

func toReadingTypeResponse(rt pool.ReadingType) readingTypeResponse {
	return readingTypeResponse{
		ID:           rt.ID,
		Slug:         rt.Slug,
		Name:         rt.Name,
		Unit:         rt.Unit,
		Low:          rt.Low,
		High:         rt.High,
		IsActive:     rt.IsActive,
		DisplayOrder: rt.DisplayOrder,
	}
}

type readingRequest struct {
	Slug        string  `json:"reading_type_slug"`
	Value       float64 `json:"reading_value"`
	ReadingDate string  `json:"reading_date"`
	Notes       string  `json:"notes"`
}

type readingResponse struct {
	ID          uuid.UUID `json:"id"`
	Slug        string    `json:"reading_type_slug"`
	TypeName    string    `json:"reading_type_name"`
	Unit        string    `json:"unit"`
	Value       float64   `json:"reading_value"`
	ReadingDate string    `json:"reading_date"`
	Notes       *string   `json:"notes"`
	CreatedAt   time.Time `json:"created_at"`
}

func toReadingResponse(r pool.Reading) readingResponse {
	return readingResponse{
		ID:          r.ID,
		Slug:        r.TypeSlug,
		TypeName:    r.TypeName,
		Unit:        r.Unit,
		Value:       r.Value,
		ReadingDate: pool.FormatDate(r.ReadingDate),
		Notes:       r.Notes,
		CreatedAt:   r.CreatedAt,
	}
}

// readingPoint is the chart-friendly projection served by the series endpoint.
type readingPoint struct {
	ReadingDate string  `json:"reading_date"`
	Value       float64 `json:"reading_value"`
}
