package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type MaintenanceTask struct {
	ID                  uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	OwnerID             uuid.UUID       `gorm:"column:user_id;type:uuid;not null;index;uniqueIndex:ux_maintenance_tasks_owner_name,priority:1"`
	Name                string          `gorm:"column:name;type:text;not null;uniqueIndex:ux_maintenance_tasks_owner_name,priority:2"`
	Description         *string         `gorm:"column:description;type:text"`
	FrequencyDays       int             `gorm:"column:frequency_days;not null"`
	LastCompletedDate   *datatypes.Date `gorm:"column:last_completed_date"`
	NextDueDate         datatypes.Date  `gorm:"column:next_due_date;not null;index"`
	LastCompletionNotes *string         `gorm:"column:last_completion_notes;type:text"`
}

func (MaintenanceTask) TableName() string {
	return "maintenance_tasks"
}

type TaskCompletion struct {
	ID            uuid.UUID      `gorm:"column:id;type:uuid;primaryKey"`
	TaskID        uuid.UUID      `gorm:"column:task_id;type:uuid;not null;index"`
	CompletedDate datatypes.Date `gorm:"column:completed_date;not null;index"`
	Notes         *string        `gorm:"column:notes;type:text"`
	CreatedAt     time.Time      `gorm:"column:created_at;not null"`
}

func (TaskCompletion) TableName() string {
	return "task_completion_history"
}
