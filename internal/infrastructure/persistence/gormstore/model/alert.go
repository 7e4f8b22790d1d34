package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type Alert struct {
	ID      uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	OwnerID uuid.UUID `gorm:"column:user_id;type:uuid;not null;index"`
	Name    string    `gorm:"column:name;type:text;not null"`
	Cadence string    `gorm:"column:cadence;type:text;not null"`
	// DaysOfWeek holds pool.WeekdaySet.Encode(); NULL for the empty set.
	DaysOfWeek     *string        `gorm:"column:days_of_week;type:text"`
	AlertTime      datatypes.Time `gorm:"column:alert_time;not null"`
	OnLowInventory bool           `gorm:"column:alert_on_low_inventory;not null;default:false"`
	OnDueTasks     bool           `gorm:"column:alert_on_due_tasks;not null;default:false"`
	LastSent       *time.Time     `gorm:"column:last_sent"`
}

func (Alert) TableName() string {
	return "alerts"
}
