package pool

import (
	"time"

	"github.com/google/uuid"
)

// Dates below are civil dates stored as midnight UTC (see DateOf).

type User struct {
	ID             uuid.UUID
	Email          string
	HashedPassword string
	IsActive       bool
}

type Task struct {
	ID                  uuid.UUID
	OwnerID             uuid.UUID
	Name                string
	Description         string
	FrequencyDays       int
	LastCompletedDate   *time.Time
	NextDueDate         time.Time
	LastCompletionNotes *string
}

// Completion is one append-only entry of a task's completion history.
type Completion struct {
	ID            uuid.UUID
	TaskID        uuid.UUID
	CompletedDate time.Time
	Notes         *string
	CreatedAt     time.Time
}

type Alert struct {
	ID             uuid.UUID
	OwnerID        uuid.UUID
	Name           string
	Cadence        Cadence
	DaysOfWeek     WeekdaySet
	AlertTime      TimeOfDay
	OnLowInventory bool
	OnDueTasks     bool
	LastSent       *time.Time
}

type InventoryItem struct {
	ID               uuid.UUID
	OwnerID          uuid.UUID
	Name             string
	QuantityOnHand   float64
	Unit             string
	ReorderThreshold float64
}

// IsLow reports whether the item is at or below its reorder threshold.
func (i InventoryItem) IsLow() bool {
	return i.QuantityOnHand <= i.ReorderThreshold
}

type ReadingType struct {
	ID           uuid.UUID
	Slug         string
	Name         string
	Unit         string
	Low          *float64
	High         *float64
	IsActive     bool
	DisplayOrder int
}

type Reading struct {
	ID          uuid.UUID
	OwnerID     uuid.UUID
	TypeID      uuid.UUID
	Value       float64
	ReadingDate time.Time
	Notes       *string
	CreatedAt   time.Time

	// Filled from the joined reading type on reads.
	TypeSlug string
	TypeName string
	Unit     string
}
