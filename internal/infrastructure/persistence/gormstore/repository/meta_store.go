package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"poolkeeper/internal/errs"
	"poolkeeper/internal/infrastructure/persistence/gormstore/model"
	"poolkeeper/internal/ports"
)

type MetaStore struct {
	store
}

var _ ports.MetaStore = (*MetaStore)(nil)

func NewMetaStore(db *gorm.DB) *MetaStore {
	return &MetaStore{store{db: db}}
}

func (m *MetaStore) Get(ctx context.Context, key string) (string, bool, error) {
	if ctx == nil {
		return "", false, errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return "", false, errs.Wrap(err, "check context")
	}

	trimmedKey := strings.TrimSpace(key)
	if trimmedKey == "" {
		return "", false, errors.New("key is required")
	}

	db, err := m.dbFromContext(ctx)
	if err != nil {
		return "", false, err
	}

	var row model.AppMeta
	if err := db.Where("key = ?", trimmedKey).Take(&row).Error; err != nil {
		if isRecordNotFound(err) {
			return "", false, nil
		}
		return "", false, errs.Persistence(err, "query app meta by key")
	}
	return row.Value, true, nil
}

func (m *MetaStore) Set(ctx context.Context, key string, value string) error {
	if ctx == nil {
		return errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return errs.Wrap(err, "check context")
	}

	trimmedKey := strings.TrimSpace(key)
	if trimmedKey == "" {
		return errors.New("key is required")
	}

	db, err := m.dbFromContext(ctx)
	if err != nil {
		return err
	}

	row := model.AppMeta{
		Key:       trimmedKey,
		Value:     value,
		UpdatedAt: time.Now().UTC().Format(time.RFC3339Nano),
	}
	if err := db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "key"}},
		DoUpdates: clause.Assignments(map[string]any{
			"value":      row.Value,
			"updated_at": row.UpdatedAt,
		}),
	}).Create(&row).Error; err != nil {
		return errs.Persistence(err, "upsert app meta key")
	}
	return nil
}

func (m *MetaStore) Delete(ctx context.Context, key string) error {
	if ctx == nil {
		return errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return errs.Wrap(err, "check context")
	}

	trimmedKey := strings.TrimSpace(key)
	if trimmedKey == "" {
		return errors.New("key is required")
	}

	db, err := m.dbFromContext(ctx)
	if err != nil {
		return err
	}
	if err := db.Where("key = ?", trimmedKey).Delete(&model.AppMeta{}).Error; err != nil {
		return errs.Persistence(err, "delete app meta key")
	}
	return nil
}
