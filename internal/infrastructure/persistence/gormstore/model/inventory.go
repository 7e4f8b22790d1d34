package model

import "github.com/google/uuid"

type ChemicalInventory struct {
	ID               uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	OwnerID          uuid.UUID `gorm:"column:user_id;type:uuid;not null;index"`
	Name             string    `gorm:"column:name;type:text;not null;index"`
	QuantityOnHand   float64   `gorm:"column:quantity_on_hand;not null"`
	Unit             string    `gorm:"column:unit;type:text;not null"`
	ReorderThreshold float64   `gorm:"column:reorder_threshold;not null"`
}

func (ChemicalInventory) TableName() string {
	return "chemical_inventory"
}
