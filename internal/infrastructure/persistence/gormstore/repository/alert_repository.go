package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"poolkeeper/internal/domain/pool"
	"poolkeeper/internal/errs"
	"poolkeeper/internal/infrastructure/persistence/gormstore/model"
	"poolkeeper/internal/ports"
)

type AlertRepository struct {
	store
}

var _ ports.AlertRepository = (*AlertRepository)(nil)

func NewAlertRepository(db *gorm.DB) *AlertRepository {
	return &AlertRepository{store{db: db}}
}

func (r *AlertRepository) ListAllAlerts(ctx context.Context) ([]pool.Alert, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return nil, err
	}

	var rows []model.Alert
	if err := db.Order("user_id asc").Order("name asc").Find(&rows).Error; err != nil {
		return nil, errs.Persistence(err, "query alerts")
	}
	return mapAlerts(rows)
}

func (r *AlertRepository) ListAlerts(ctx context.Context, ownerID uuid.UUID) ([]pool.Alert, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return nil, err
	}

	var rows []model.Alert
	if err := db.Where("user_id = ?", ownerID).Order("name asc").Find(&rows).Error; err != nil {
		return nil, errs.Persistence(err, "query alerts")
	}
	return mapAlerts(rows)
}

func (r *AlertRepository) GetAlert(ctx context.Context, ownerID, alertID uuid.UUID) (pool.Alert, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return pool.Alert{}, err
	}

	var row model.Alert
	if err := db.Where("id = ? AND user_id = ?", alertID, ownerID).Take(&row).Error; err != nil {
		if isRecordNotFound(err) {
			return pool.Alert{}, errs.NotFound("alert %s not found", alertID)
		}
		return pool.Alert{}, errs.Persistence(err, "query alert")
	}
	return mapAlert(row)
}

func (r *AlertRepository) CreateAlert(ctx context.Context, alert pool.Alert) (pool.Alert, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return pool.Alert{}, err
	}

	if alert.ID == uuid.Nil {
		alert.ID = uuid.New()
	}
	row := alertRow(alert)
	if err := db.Create(&row).Error; err != nil {
		return pool.Alert{}, errs.Persistence(err, "insert alert")
	}
	return mapAlert(row)
}

func (r *AlertRepository) UpdateAlert(ctx context.Context, alert pool.Alert) error {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return err
	}

	row := alertRow(alert)
	result := db.Model(&model.Alert{}).
		Where("id = ? AND user_id = ?", alert.ID, alert.OwnerID).
		Updates(map[string]any{
			"name":                   row.Name,
			"cadence":                row.Cadence,
			"days_of_week":           row.DaysOfWeek,
			"alert_time":             row.AlertTime,
			"alert_on_low_inventory": row.OnLowInventory,
			"alert_on_due_tasks":     row.OnDueTasks,
		})
	if result.Error != nil {
		return errs.Persistence(result.Error, "update alert")
	}
	if result.RowsAffected == 0 {
		return errs.NotFound("alert %s not found", alert.ID)
	}
	return nil
}

func (r *AlertRepository) DeleteAlert(ctx context.Context, ownerID, alertID uuid.UUID) error {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return err
	}

	result := db.Where("id = ? AND user_id = ?", alertID, ownerID).Delete(&model.Alert{})
	if result.Error != nil {
		return errs.Persistence(result.Error, "delete alert")
	}
	if result.RowsAffected == 0 {
		return errs.NotFound("alert %s not found", alertID)
	}
	return nil
}

func (r *AlertRepository) AdvanceLastSent(ctx context.Context, alertID uuid.UUID, sentAt time.Time) (bool, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return false, err
	}

	sentAt = sentAt.UTC()
	result := db.Model(&model.Alert{}).
		Where("id = ? AND (last_sent IS NULL OR last_sent < ?)", alertID, sentAt).
		Update("last_sent", sentAt)
	if result.Error != nil {
		return false, errs.Persistence(result.Error, "advance alert last_sent")
	}
	return result.RowsAffected > 0, nil
}

func alertRow(alert pool.Alert) model.Alert {
	row := model.Alert{
		ID:             alert.ID,
		OwnerID:        alert.OwnerID,
		Name:           alert.Name,
		Cadence:        string(alert.Cadence),
		AlertTime:      datatypes.NewTime(alert.AlertTime.Hour, alert.AlertTime.Minute, alert.AlertTime.Second, 0),
		OnLowInventory: alert.OnLowInventory,
		OnDueTasks:     alert.OnDueTasks,
	}
	if !alert.DaysOfWeek.Empty() {
		days := alert.DaysOfWeek.Encode()
		row.DaysOfWeek = &days
	}
	if alert.LastSent != nil {
		sent := alert.LastSent.UTC()
		row.LastSent = &sent
	}
	return row
}

func mapAlert(row model.Alert) (pool.Alert, error) {
	alert := pool.Alert{
		ID:             row.ID,
		OwnerID:        row.OwnerID,
		Name:           row.Name,
		Cadence:        pool.Cadence(row.Cadence),
		AlertTime:      timeOfDay(row.AlertTime),
		OnLowInventory: row.OnLowInventory,
		OnDueTasks:     row.OnDueTasks,
	}
	if row.DaysOfWeek != nil {
		days, err := pool.DecodeWeekdaySet(*row.DaysOfWeek)
		if err != nil {
			return pool.Alert{}, errs.Persistence(err, "decode alert days_of_week")
		}
		alert.DaysOfWeek = days
	}
	if row.LastSent != nil {
		sent := row.LastSent.UTC()
		alert.LastSent = &sent
	}
	return alert, nil
}

func mapAlerts(rows []model.Alert) ([]pool.Alert, error) {
	items := make([]pool.Alert, 0, len(rows))
	for _, row := range rows {
		alert, err := mapAlert(row)
		if err != nil {
			return nil, err
		}
		items = append(items, alert)
	}
	return items, nil
}

func timeOfDay(t datatypes.Time) pool.TimeOfDay {
	d := time.Duration(t)
	return pool.TimeOfDay{
		Hour:   int(d / time.Hour),
		Minute: int(d % time.Hour / time.Minute),
		Second: int(d % time.Minute / time.Second),
	}
}
