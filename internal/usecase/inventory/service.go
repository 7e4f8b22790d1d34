package inventory

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"poolkeeper/internal/domain/pool"
	"poolkeeper/internal/errs"
	"poolkeeper/internal/ports"
)

type Service struct {
	repo ports.InventoryRepository
}

func NewService(repo ports.InventoryRepository) *Service {
	return &Service{repo: repo}
}

type Input struct {
	Name             string
	QuantityOnHand   float64
	Unit             string
	ReorderThreshold float64
}

func (in Input) toItem(ownerID uuid.UUID) (pool.InventoryItem, error) {
	item := pool.InventoryItem{
		OwnerID:          ownerID,
		Name:             strings.TrimSpace(in.Name),
		QuantityOnHand:   in.QuantityOnHand,
		Unit:             strings.TrimSpace(in.Unit),
		ReorderThreshold: in.ReorderThreshold,
	}
	if err := pool.ValidateInventoryItem(item); err != nil {
		return pool.InventoryItem{}, err
	}
	return item, nil
}

func (s *Service) List(ctx context.Context, ownerID uuid.UUID) ([]pool.InventoryItem, error) {
	if err := s.check(ctx); err != nil {
		return nil, err
	}
	return s.repo.ListItems(ctx, ownerID)
}

func (s *Service) Get(ctx context.Context, ownerID, itemID uuid.UUID) (pool.InventoryItem, error) {
	if err := s.check(ctx); err != nil {
		return pool.InventoryItem{}, err
	}
	return s.repo.GetItem(ctx, ownerID, itemID)
}

func (s *Service) Create(ctx context.Context, ownerID uuid.UUID, input Input) (pool.InventoryItem, error) {
	if err := s.check(ctx); err != nil {
		return pool.InventoryItem{}, err
	}

	item, err := input.toItem(ownerID)
	if err != nil {
		return pool.InventoryItem{}, err
	}
	return s.repo.CreateItem(ctx, item)
}

// Update replaces every field of the item.
func (s *Service) Update(ctx context.Context, ownerID, itemID uuid.UUID, input Input) (pool.InventoryItem, error) {
	if err := s.check(ctx); err != nil {
		return pool.InventoryItem{}, err
	}

	item, err := input.toItem(ownerID)
	if err != nil {
		return pool.InventoryItem{}, err
	}
	item.ID = itemID
	if err := s.repo.UpdateItem(ctx, item); err != nil {
		return pool.InventoryItem{}, err
	}
	return item, nil
}

func (s *Service) Delete(ctx context.Context, ownerID, itemID uuid.UUID) error {
	if err := s.check(ctx); err != nil {
		return err
	}
	return s.repo.DeleteItem(ctx, ownerID, itemID)
}

func (s *Service) check(ctx context.Context) error {
	if ctx == nil {
		return errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return errs.Wrap(err, "check context")
	}
	if s.repo == nil {
		return errors.New("inventory repository is required")
	}
	return nil
}
