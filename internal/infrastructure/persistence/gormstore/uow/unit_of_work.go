package uow

import (
	"context"
	"errors"
	"log/slog"

	"gorm.io/gorm"

	"poolkeeper/internal/bootstrap/logging"
	"poolkeeper/internal/errs"
	"poolkeeper/internal/ports"
)

// UnitOfWork runs pool maintenance writes in a single gorm transaction.
type UnitOfWork struct {
	db *gorm.DB
}

var _ ports.UnitOfWork = (*UnitOfWork)(nil)

func NewUnitOfWork(db *gorm.DB) *UnitOfWork {
	return &UnitOfWork{db: db}
}

// WithTx nests into the caller's transaction instead of opening a second one.
func (u *UnitOfWork) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if ctx == nil {
		return errors.New("context is required")
	}
	if ports.InTx(ctx) {
		return fn(ctx)
	}

	err := u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(ports.WithTxContext(ctx, tx))
	})
	if err != nil {
		logging.Debug(logging.With(ctx, "gormstore.uow"), "transaction rolled back", slog.Any("err", errs.Loggable(err)))
	}
	return err
}
