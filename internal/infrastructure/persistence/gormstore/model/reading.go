package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type ReadingType struct {
	ID           uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	Slug         string    `gorm:"column:slug;type:text;not null;uniqueIndex"`
	Name         string    `gorm:"column:name;type:text;not null"`
	Unit         *string   `gorm:"column:unit;type:text"`
	Low          *float64  `gorm:"column:low"`
	High         *float64  `gorm:"column:high"`
	IsActive     bool      `gorm:"column:is_active;not null"`
	DisplayOrder int       `gorm:"column:display_order;not null;index"`
}

func (ReadingType) TableName() string {
	return "reading_types"
}

type Reading struct {
	ID            uuid.UUID      `gorm:"column:id;type:uuid;primaryKey"`
	OwnerID       uuid.UUID      `gorm:"column:user_id;type:uuid;not null;index"`
	ReadingTypeID uuid.UUID      `gorm:"column:reading_type_id;type:uuid;not null;index"`
	Value         float64        `gorm:"column:reading_value;not null"`
	ReadingDate   datatypes.Date `gorm:"column:reading_date;not null;index"`
	Notes         *string        `gorm:"column:notes;type:text"`
	CreatedAt     time.Time      `gorm:"column:created_at;not null"`
}

func (Reading) TableName() string {
	return "readings"
}
