package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"poolkeeper/internal/errs"
	"poolkeeper/internal/ports"
)

// store is embedded by every repository and resolves the transaction, if any, from ctx.
type store struct {
	db *gorm.DB
}

func (s store) dbFromContext(ctx context.Context) (*gorm.DB, error) {
	if ctx == nil {
		return nil, errors.New("context is required")
	}

	tx := ports.TxFromContext(ctx)
	if tx == nil {
		return s.db.WithContext(ctx), nil
	}

	gormTx, ok := tx.(*gorm.DB)
	if !ok || gormTx == nil {
		return nil, fmt.Errorf("invalid tx in context: %T", tx)
	}
	return gormTx.WithContext(ctx), nil
}

// inTx runs fn in the caller's transaction, or in a new one when ctx carries none.
func (s store) inTx(ctx context.Context, fn func(ctx context.Context, db *gorm.DB) error) error {
	if ctx == nil {
		return errors.New("context is required")
	}
	if ports.InTx(ctx) {
		db, err := s.dbFromContext(ctx)
		if err != nil {
			return err
		}
		return fn(ctx, db)
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(ports.WithTxContext(ctx, tx), tx)
	})
}

func (s store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return errs.Persistence(err, "get sql db")
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return errs.Persistence(err, "ping database")
	}
	return nil
}

// DBPinger reports whether the database answers.
type DBPinger struct {
	store
}

var _ ports.Pinger = (*DBPinger)(nil)

func NewDBPinger(db *gorm.DB) *DBPinger {
	return &DBPinger{store{db: db}}
}

func isDuplicate(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") || strings.Contains(msg, "duplicate key")
}

func isRecordNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
