package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"poolkeeper/internal/domain/pool"
	"poolkeeper/internal/errs"
	"poolkeeper/internal/infrastructure/persistence/gormstore/model"
	"poolkeeper/internal/ports"
)

type ReadingRepository struct {
	store
}

var _ ports.ReadingRepository = (*ReadingRepository)(nil)

func NewReadingRepository(db *gorm.DB) *ReadingRepository {
	return &ReadingRepository{store{db: db}}
}

func (r *ReadingRepository) ListActiveTypes(ctx context.Context) ([]pool.ReadingType, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return nil, err
	}

	var rows []model.ReadingType
	if err := db.Where("is_active = ?", true).Order("display_order asc").Order("slug asc").Find(&rows).Error; err != nil {
		return nil, errs.Persistence(err, "query reading types")
	}

	items := make([]pool.ReadingType, 0, len(rows))
	for _, row := range rows {
		items = append(items, mapReadingType(row))
	}
	return items, nil
}

func (r *ReadingRepository) GetTypeBySlug(ctx context.Context, slug string) (pool.ReadingType, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return pool.ReadingType{}, err
	}

	var row model.ReadingType
	if err := db.Where("slug = ?", slug).Take(&row).Error; err != nil {
		if isRecordNotFound(err) {
			return pool.ReadingType{}, errs.NotFound("reading type %q not found", slug)
		}
		return pool.ReadingType{}, errs.Persistence(err, "query reading type")
	}
	return mapReadingType(row), nil
}

func (r *ReadingRepository) CreateType(ctx context.Context, rt pool.ReadingType) (pool.ReadingType, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return pool.ReadingType{}, err
	}

	if rt.ID == uuid.Nil {
		rt.ID = uuid.New()
	}
	row := readingTypeRow(rt)
	if err := db.Create(&row).Error; err != nil {
		if isDuplicate(err) {
			return pool.ReadingType{}, pool.ErrDuplicateSlug
		}
		return pool.ReadingType{}, errs.Persistence(err, "insert reading type")
	}
	return mapReadingType(row), nil
}

func (r *ReadingRepository) UpsertType(ctx context.Context, rt pool.ReadingType) error {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return err
	}

	if rt.ID == uuid.Nil {
		rt.ID = uuid.New()
	}
	row := readingTypeRow(rt)
	if err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "slug"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "unit", "low", "high", "is_active", "display_order"}),
	}).Create(&row).Error; err != nil {
		return errs.Persistence(err, "upsert reading type")
	}
	return nil
}

func (r *ReadingRepository) CreateReading(ctx context.Context, reading pool.Reading) (pool.Reading, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return pool.Reading{}, err
	}

	if reading.ID == uuid.Nil {
		reading.ID = uuid.New()
	}
	if reading.CreatedAt.IsZero() {
		reading.CreatedAt = time.Now().UTC()
	}
	row := model.Reading{
		ID:            reading.ID,
		OwnerID:       reading.OwnerID,
		ReadingTypeID: reading.TypeID,
		Value:         reading.Value,
		ReadingDate:   datatypes.Date(pool.DateOf(reading.ReadingDate)),
		Notes:         reading.Notes,
		CreatedAt:     reading.CreatedAt.UTC(),
	}
	if err := db.Create(&row).Error; err != nil {
		return pool.Reading{}, errs.Persistence(err, "insert reading")
	}

	created := mapReading(row)
	created.TypeSlug, created.TypeName, created.Unit = reading.TypeSlug, reading.TypeName, reading.Unit
	return created, nil
}

func (r *ReadingRepository) ListReadings(ctx context.Context, ownerID, typeID uuid.UUID, since time.Time) ([]pool.Reading, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return nil, err
	}

	var rows []model.Reading
	if err := db.
		Where("user_id = ? AND reading_type_id = ? AND reading_date >= ?", ownerID, typeID, datatypes.Date(pool.DateOf(since))).
		Order("reading_date asc").
		Order("created_at asc").
		Find(&rows).Error; err != nil {
		return nil, errs.Persistence(err, "query readings")
	}

	items := make([]pool.Reading, 0, len(rows))
	for _, row := range rows {
		items = append(items, mapReading(row))
	}
	return items, nil
}

func (r *ReadingRepository) DeleteReading(ctx context.Context, ownerID, readingID uuid.UUID) error {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return err
	}

	result := db.Where("id = ? AND user_id = ?", readingID, ownerID).Delete(&model.Reading{})
	if result.Error != nil {
		return errs.Persistence(result.Error, "delete reading")
	}
	if result.RowsAffected == 0 {
		return errs.NotFound("reading %s not found", readingID)
	}
	return nil
}

func readingTypeRow(rt pool.ReadingType) model.ReadingType {
	return model.ReadingType{
		ID:           rt.ID,
		Slug:         rt.Slug,
		Name:         rt.Name,
		Unit:         optionalString(rt.Unit),
		Low:          rt.Low,
		High:         rt.High,
		IsActive:     rt.IsActive,
		DisplayOrder: rt.DisplayOrder,
	}
}

func mapReadingType(row model.ReadingType) pool.ReadingType {
	rt := pool.ReadingType{
		ID:           row.ID,
		Slug:         row.Slug,
		Name:         row.Name,
		Low:          row.Low,
		High:         row.High,
		IsActive:     row.IsActive,
		DisplayOrder: row.DisplayOrder,
	}
	if row.Unit != nil {
		rt.Unit = *row.Unit
	}
	return rt
}

func mapReading(row model.Reading) pool.Reading {
	return pool.Reading{
		ID:          row.ID,
		OwnerID:     row.OwnerID,
		TypeID:      row.ReadingTypeID,
		Value:       row.Value,
		ReadingDate: pool.DateOf(time.Time(row.ReadingDate)),
		Notes:       row.Notes,
		CreatedAt:   row.CreatedAt.UTC(),
	}
}
