package ports

import (
	"context"
	"time"

	"github.com/google/uuid"

	"poolkeeper/internal/domain/pool"
)

// Owner-scoped lookups return an errs.ErrNotFound error when the row is missing
// or belongs to another owner.

type TaskRepository interface {
	CreateTask(ctx context.Context, task pool.Task) (pool.Task, error)
	GetTask(ctx context.Context, ownerID, taskID uuid.UUID) (pool.Task, error)
	ListTasks(ctx context.Context, ownerID uuid.UUID) ([]pool.Task, error)
	// ListDueTasks returns tasks with next_due_date on or before the given date.
	ListDueTasks(ctx context.Context, ownerID uuid.UUID, onOrBefore time.Time) ([]pool.Task, error)
	// UpdateTask writes name, description, frequency and next due date only.
	UpdateTask(ctx context.Context, task pool.Task) error
	DeleteTask(ctx context.Context, ownerID, taskID uuid.UUID) error

	// RecordCompletion appends a history row and refreshes the task's last-completion
	// mirror and next due date in the same transaction.
	RecordCompletion(ctx context.Context, taskID uuid.UUID, completedOn, nextDue time.Time, notes *string) (pool.Completion, error)
	CountCompletions(ctx context.Context, taskID uuid.UUID) (int64, error)
	// ListCompletions orders by completed date, newest first.
	ListCompletions(ctx context.Context, taskID uuid.UUID, offset, limit int) ([]pool.Completion, error)
	// BackfillCompletions inserts history rows for mirrored completions that have none.
	BackfillCompletions(ctx context.Context) (int64, error)
}

type AlertRepository interface {
	ListAllAlerts(ctx context.Context) ([]pool.Alert, error)
	ListAlerts(ctx context.Context, ownerID uuid.UUID) ([]pool.Alert, error)
	GetAlert(ctx context.Context, ownerID, alertID uuid.UUID) (pool.Alert, error)
	CreateAlert(ctx context.Context, alert pool.Alert) (pool.Alert, error)
	// UpdateAlert writes every user-editable field; last_sent is left alone.
	UpdateAlert(ctx context.Context, alert pool.Alert) error
	DeleteAlert(ctx context.Context, ownerID, alertID uuid.UUID) error
	// AdvanceLastSent moves the watermark forward to sentAt. It reports false when the
	// stored watermark is already at or past sentAt, or the alert is gone.
	AdvanceLastSent(ctx context.Context, alertID uuid.UUID, sentAt time.Time) (bool, error)
}

type InventoryRepository interface {
	ListItems(ctx context.Context, ownerID uuid.UUID) ([]pool.InventoryItem, error)
	// ListLowItems returns items whose quantity is at or below the reorder threshold.
	ListLowItems(ctx context.Context, ownerID uuid.UUID) ([]pool.InventoryItem, error)
	GetItem(ctx context.Context, ownerID, itemID uuid.UUID) (pool.InventoryItem, error)
	CreateItem(ctx context.Context, item pool.InventoryItem) (pool.InventoryItem, error)
	UpdateItem(ctx context.Context, item pool.InventoryItem) error
	DeleteItem(ctx context.Context, ownerID, itemID uuid.UUID) error
}

type ReadingRepository interface {
	ListActiveTypes(ctx context.Context) ([]pool.ReadingType, error)
	GetTypeBySlug(ctx context.Context, slug string) (pool.ReadingType, error)
	CreateType(ctx context.Context, rt pool.ReadingType) (pool.ReadingType, error)
	// UpsertType inserts or refreshes a catalogue entry keyed by slug.
	UpsertType(ctx context.Context, rt pool.ReadingType) error

	CreateReading(ctx context.Context, reading pool.Reading) (pool.Reading, error)
	// ListReadings returns readings dated on or after since, oldest first.
	ListReadings(ctx context.Context, ownerID, typeID uuid.UUID, since time.Time) ([]pool.Reading, error)
	DeleteReading(ctx context.Context, ownerID, readingID uuid.UUID) error
}

type UserRepository interface {
	GetUser(ctx context.Context, userID uuid.UUID) (pool.User, error)
	GetUserByEmail(ctx context.Context, email string) (pool.User, error)
	CreateUser(ctx context.Context, user pool.User) (pool.User, error)
	// DeleteUser removes the user and every record the user owns.
	DeleteUser(ctx context.Context, userID uuid.UUID) error
}

// MetaStore is a small key/value table for operational state.
type MetaStore interface {
	Get(ctx context.Context, key string) (value string, found bool, err error)
	Set(ctx context.Context, key string, value string) error
	Delete(ctx context.Context, key string) error
}

// Pinger is satisfied by stores that can report liveness.
type Pinger interface {
	Ping(ctx context.Context) error
}
