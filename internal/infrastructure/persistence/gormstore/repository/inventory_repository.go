package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"poolkeeper/internal/domain/pool"
	"poolkeeper/internal/errs"
	"poolkeeper/internal/infrastructure/persistence/gormstore/model"
	"poolkeeper/internal/ports"
)

type InventoryRepository struct {
	store
}

var _ ports.InventoryRepository = (*InventoryRepository)(nil)

func NewInventoryRepository(db *gorm.DB) *InventoryRepository {
	return &InventoryRepository{store{db: db}}
}

func (r *InventoryRepository) ListItems(ctx context.Context, ownerID uuid.UUID) ([]pool.InventoryItem, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return nil, err
	}

	var rows []model.ChemicalInventory
	if err := db.Where("user_id = ?", ownerID).Order("name asc").Find(&rows).Error; err != nil {
		return nil, errs.Persistence(err, "query inventory")
	}
	return mapItems(rows), nil
}

func (r *InventoryRepository) ListLowItems(ctx context.Context, ownerID uuid.UUID) ([]pool.InventoryItem, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return nil, err
	}

	var rows []model.ChemicalInventory
	if err := db.
		Where("user_id = ? AND quantity_on_hand <= reorder_threshold", ownerID).
		Order("name asc").
		Find(&rows).Error; err != nil {
		return nil, errs.Persistence(err, "query low inventory")
	}
	return mapItems(rows), nil
}

func (r *InventoryRepository) GetItem(ctx context.Context, ownerID, itemID uuid.UUID) (pool.InventoryItem, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return pool.InventoryItem{}, err
	}

	var row model.ChemicalInventory
	if err := db.Where("id = ? AND user_id = ?", itemID, ownerID).Take(&row).Error; err != nil {
		if isRecordNotFound(err) {
			return pool.InventoryItem{}, errs.NotFound("inventory item %s not found", itemID)
		}
		return pool.InventoryItem{}, errs.Persistence(err, "query inventory item")
	}
	return mapItem(row), nil
}

func (r *InventoryRepository) CreateItem(ctx context.Context, item pool.InventoryItem) (pool.InventoryItem, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return pool.InventoryItem{}, err
	}

	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	row := model.ChemicalInventory{
		ID:               item.ID,
		OwnerID:          item.OwnerID,
		Name:             item.Name,
		QuantityOnHand:   item.QuantityOnHand,
		Unit:             item.Unit,
		ReorderThreshold: item.ReorderThreshold,
	}
	if err := db.Create(&row).Error; err != nil {
		return pool.InventoryItem{}, errs.Persistence(err, "insert inventory item")
	}
	return mapItem(row), nil
}

func (r *InventoryRepository) UpdateItem(ctx context.Context, item pool.InventoryItem) error {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return err
	}

	result := db.Model(&model.ChemicalInventory{}).
		Where("id = ? AND user_id = ?", item.ID, item.OwnerID).
		Updates(map[string]any{
			"name":              item.Name,
			"quantity_on_hand":  item.QuantityOnHand,
			"unit":              item.Unit,
			"reorder_threshold": item.ReorderThreshold,
		})
	if result.Error != nil {
		return errs.Persistence(result.Error, "update inventory item")
	}
	if result.RowsAffected == 0 {
		return errs.NotFound("inventory item %s not found", item.ID)
	}
	return nil
}

func (r *InventoryRepository) DeleteItem(ctx context.Context, ownerID, itemID uuid.UUID) error {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return err
	}

	result := db.Where("id = ? AND user_id = ?", itemID, ownerID).Delete(&model.ChemicalInventory{})
	if result.Error != nil {
		return errs.Persistence(result.Error, "delete inventory item")
	}
	if result.RowsAffected == 0 {
		return errs.NotFound("inventory item %s not found", itemID)
	}
	return nil
}

func mapItem(row model.ChemicalInventory) pool.InventoryItem {
	return pool.InventoryItem{
		ID:               row.ID,
		OwnerID:          row.OwnerID,
		Name:             row.Name,
		QuantityOnHand:   row.QuantityOnHand,
		Unit:             row.Unit,
		ReorderThreshold: row.ReorderThreshold,
	}
}

func mapItems(rows []model.ChemicalInventory) []pool.InventoryItem {
	items := make([]pool.InventoryItem, 0, len(rows))
	for _, row := range rows {
		items = append(items, mapItem(row))
	}
	return items
}
