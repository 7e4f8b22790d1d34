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

type TaskRepository struct {
	store
}

var _ ports.TaskRepository = (*TaskRepository)(nil)

func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{store{db: db}}
}

func (r *TaskRepository) CreateTask(ctx context.Context, task pool.Task) (pool.Task, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return pool.Task{}, err
	}

	if task.ID == uuid.Nil {
		task.ID = uuid.New()
	}
	row := taskRow(task)
	if err := db.Create(&row).Error; err != nil {
		if isDuplicate(err) {
			return pool.Task{}, pool.ErrDuplicateName
		}
		return pool.Task{}, errs.Persistence(err, "insert task")
	}
	return mapTask(row), nil
}

func (r *TaskRepository) GetTask(ctx context.Context, ownerID, taskID uuid.UUID) (pool.Task, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return pool.Task{}, err
	}

	var row model.MaintenanceTask
	if err := db.Where("id = ? AND user_id = ?", taskID, ownerID).Take(&row).Error; err != nil {
		if isRecordNotFound(err) {
			return pool.Task{}, errs.NotFound("task %s not found", taskID)
		}
		return pool.Task{}, errs.Persistence(err, "query task")
	}
	return mapTask(row), nil
}

func (r *TaskRepository) ListTasks(ctx context.Context, ownerID uuid.UUID) ([]pool.Task, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return nil, err
	}

	var rows []model.MaintenanceTask
	if err := db.Where("user_id = ?", ownerID).Order("next_due_date asc").Order("name asc").Find(&rows).Error; err != nil {
		return nil, errs.Persistence(err, "query tasks")
	}
	return mapTasks(rows), nil
}

func (r *TaskRepository) ListDueTasks(ctx context.Context, ownerID uuid.UUID, onOrBefore time.Time) ([]pool.Task, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return nil, err
	}

	var rows []model.MaintenanceTask
	if err := db.
		Where("user_id = ? AND next_due_date <= ?", ownerID, datatypes.Date(pool.DateOf(onOrBefore))).
		Order("next_due_date asc").
		Order("name asc").
		Find(&rows).Error; err != nil {
		return nil, errs.Persistence(err, "query due tasks")
	}
	return mapTasks(rows), nil
}

func (r *TaskRepository) UpdateTask(ctx context.Context, task pool.Task) error {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return err
	}

	result := db.Model(&model.MaintenanceTask{}).
		Where("id = ? AND user_id = ?", task.ID, task.OwnerID).
		Updates(map[string]any{
			"name":           task.Name,
			"description":    optionalString(task.Description),
			"frequency_days": task.FrequencyDays,
			"next_due_date":  datatypes.Date(pool.DateOf(task.NextDueDate)),
		})
	if result.Error != nil {
		if isDuplicate(result.Error) {
			return pool.ErrDuplicateName
		}
		return errs.Persistence(result.Error, "update task")
	}
	if result.RowsAffected == 0 {
		return errs.NotFound("task %s not found", task.ID)
	}
	return nil
}

func (r *TaskRepository) DeleteTask(ctx context.Context, ownerID, taskID uuid.UUID) error {
	return r.inTx(ctx, func(_ context.Context, db *gorm.DB) error {
		var count int64
		if err := db.Model(&model.MaintenanceTask{}).Where("id = ? AND user_id = ?", taskID, ownerID).Count(&count).Error; err != nil {
			return errs.Persistence(err, "check task")
		}
		if count == 0 {
			return errs.NotFound("task %s not found", taskID)
		}

		if err := db.Where("task_id = ?", taskID).Delete(&model.TaskCompletion{}).Error; err != nil {
			return errs.Persistence(err, "delete task history")
		}
		if err := db.Where("id = ? AND user_id = ?", taskID, ownerID).Delete(&model.MaintenanceTask{}).Error; err != nil {
			return errs.Persistence(err, "delete task")
		}
		return nil
	})
}

func (r *TaskRepository) RecordCompletion(ctx context.Context, taskID uuid.UUID, completedOn, nextDue time.Time, notes *string) (pool.Completion, error) {
	row := model.TaskCompletion{
		ID:            uuid.New(),
		TaskID:        taskID,
		CompletedDate: datatypes.Date(pool.DateOf(completedOn)),
		Notes:         notes,
		CreatedAt:     time.Now().UTC(),
	}

	err := r.inTx(ctx, func(_ context.Context, db *gorm.DB) error {
		completed := datatypes.Date(pool.DateOf(completedOn))
		result := db.Model(&model.MaintenanceTask{}).
			Where("id = ?", taskID).
			Updates(map[string]any{
				"last_completed_date":   &completed,
				"last_completion_notes": notes,
				"next_due_date":         datatypes.Date(pool.DateOf(nextDue)),
			})
		if result.Error != nil {
			return errs.Persistence(result.Error, "update task completion")
		}
		if result.RowsAffected == 0 {
			return errs.NotFound("task %s not found", taskID)
		}

		if err := db.Create(&row).Error; err != nil {
			return errs.Persistence(err, "insert completion history")
		}
		return nil
	})
	if err != nil {
		return pool.Completion{}, err
	}
	return mapCompletion(row), nil
}

func (r *TaskRepository) CountCompletions(ctx context.Context, taskID uuid.UUID) (int64, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return 0, err
	}

	var count int64
	if err := db.Model(&model.TaskCompletion{}).Where("task_id = ?", taskID).Count(&count).Error; err != nil {
		return 0, errs.Persistence(err, "count completion history")
	}
	return count, nil
}

func (r *TaskRepository) ListCompletions(ctx context.Context, taskID uuid.UUID, offset, limit int) ([]pool.Completion, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return nil, err
	}

	var rows []model.TaskCompletion
	if err := db.
		Where("task_id = ?", taskID).
		Order("completed_date desc").
		Order("created_at desc").
		Order("id desc").
		Offset(offset).
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, errs.Persistence(err, "query completion history")
	}

	items := make([]pool.Completion, 0, len(rows))
	for _, row := range rows {
		items = append(items, mapCompletion(row))
	}
	return items, nil
}

func (r *TaskRepository) BackfillCompletions(ctx context.Context) (int64, error) {
	var inserted int64
	err := r.inTx(ctx, func(_ context.Context, db *gorm.DB) error {
		var tasks []model.MaintenanceTask
		if err := db.Where("last_completed_date IS NOT NULL").Find(&tasks).Error; err != nil {
			return errs.Persistence(err, "query completed tasks")
		}

		for _, task := range tasks {
			var count int64
			if err := db.Model(&model.TaskCompletion{}).
				Where("task_id = ? AND completed_date = ?", task.ID, *task.LastCompletedDate).
				Count(&count).Error; err != nil {
				return errs.Persistence(err, "check completion history")
			}
			if count > 0 {
				continue
			}

			completed := time.Time(*task.LastCompletedDate)
			row := model.TaskCompletion{
				ID:            uuid.New(),
				TaskID:        task.ID,
				CompletedDate: *task.LastCompletedDate,
				Notes:         task.LastCompletionNotes,
				CreatedAt:     pool.DateOf(completed).Add(12 * time.Hour),
			}
			if err := db.Create(&row).Error; err != nil {
				return errs.Persistence(err, "insert backfilled completion")
			}
			inserted++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return inserted, nil
}

func taskRow(task pool.Task) model.MaintenanceTask {
	row := model.MaintenanceTask{
		ID:                  task.ID,
		OwnerID:             task.OwnerID,
		Name:                task.Name,
		Description:         optionalString(task.Description),
		FrequencyDays:       task.FrequencyDays,
		NextDueDate:         datatypes.Date(pool.DateOf(task.NextDueDate)),
		LastCompletionNotes: task.LastCompletionNotes,
	}
	if task.LastCompletedDate != nil {
		d := datatypes.Date(pool.DateOf(*task.LastCompletedDate))
		row.LastCompletedDate = &d
	}
	return row
}

func mapTask(row model.MaintenanceTask) pool.Task {
	task := pool.Task{
		ID:                  row.ID,
		OwnerID:             row.OwnerID,
		Name:                row.Name,
		FrequencyDays:       row.FrequencyDays,
		NextDueDate:         pool.DateOf(time.Time(row.NextDueDate)),
		LastCompletionNotes: row.LastCompletionNotes,
	}
	if row.Description != nil {
		task.Description = *row.Description
	}
	if row.LastCompletedDate != nil {
		d := pool.DateOf(time.Time(*row.LastCompletedDate))
		task.LastCompletedDate = &d
	}
	return task
}

func mapTasks(rows []model.MaintenanceTask) []pool.Task {
	items := make([]pool.Task, 0, len(rows))
	for _, row := range rows {
		items = append(items, mapTask(row))
	}
	return items
}

func mapCompletion(row model.TaskCompletion) pool.Completion {
	return pool.Completion{
		ID:            row.ID,
		TaskID:        row.TaskID,
		CompletedDate: pool.DateOf(time.Time(row.CompletedDate)),
		Notes:         row.Notes,
		CreatedAt:     row.CreatedAt.UTC(),
	}
}

func optionalString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
