// Package tasks manages recurring maintenance tasks and their completion history.
package tasks

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"poolkeeper/internal/bootstrap/logging"
	"poolkeeper/internal/domain/pool"
	"poolkeeper/internal/errs"
	"poolkeeper/internal/ports"
)

type Service struct {
	repo  ports.TaskRepository
	uow   ports.UnitOfWork
	clock ports.Clock
}

func NewService(repo ports.TaskRepository, uow ports.UnitOfWork, clock ports.Clock) *Service {
	return &Service{
		repo:  repo,
		uow:   uow,
		clock: clock,
	}
}

type CreateInput struct {
	Name          string
	Description   string
	FrequencyDays int
	// NextDueDate defaults to today + FrequencyDays.
	NextDueDate *time.Time
}

// UpdateInput replaces every editable field. The last-completion mirror is not editable.
type UpdateInput struct {
	Name          string
	Description   string
	FrequencyDays int
	NextDueDate   time.Time
}

type HistoryPage struct {
	Items []pool.Completion
	pool.Page
}

func (s *Service) Create(ctx context.Context, ownerID uuid.UUID, input CreateInput) (pool.Task, error) {
	if err := s.check(ctx); err != nil {
		return pool.Task{}, err
	}

	name := strings.TrimSpace(input.Name)
	if err := pool.ValidateTaskFields(name, input.FrequencyDays); err != nil {
		return pool.Task{}, err
	}

	nextDue := pool.AddDays(s.clock.Today(), input.FrequencyDays)
	if input.NextDueDate != nil {
		nextDue = pool.DateOf(*input.NextDueDate)
	}

	created, err := s.repo.CreateTask(ctx, pool.Task{
		OwnerID:       ownerID,
		Name:          name,
		Description:   strings.TrimSpace(input.Description),
		FrequencyDays: input.FrequencyDays,
		NextDueDate:   nextDue,
	})
	if err != nil {
		return pool.Task{}, err
	}

	logging.Info(logging.With(ctx, "usecase.tasks"), "task created",
		slog.String("task_id", created.ID.String()),
		slog.String("next_due_date", pool.FormatDate(created.NextDueDate)),
	)
	return created, nil
}

func (s *Service) Get(ctx context.Context, ownerID, taskID uuid.UUID) (pool.Task, error) {
	if err := s.check(ctx); err != nil {
		return pool.Task{}, err
	}
	return s.repo.GetTask(ctx, ownerID, taskID)
}

func (s *Service) List(ctx context.Context, ownerID uuid.UUID) ([]pool.Task, error) {
	if err := s.check(ctx); err != nil {
		return nil, err
	}
	return s.repo.ListTasks(ctx, ownerID)
}

func (s *Service) Update(ctx context.Context, ownerID, taskID uuid.UUID, input UpdateInput) (pool.Task, error) {
	if err := s.check(ctx); err != nil {
		return pool.Task{}, err
	}

	name := strings.TrimSpace(input.Name)
	if err := pool.ValidateTaskFields(name, input.FrequencyDays); err != nil {
		return pool.Task{}, err
	}
	if input.NextDueDate.IsZero() {
		return pool.Task{}, errs.Invalid("next_due_date is required")
	}

	var updated pool.Task
	if err := s.uow.WithTx(ctx, func(txCtx context.Context) error {
		current, err := s.repo.GetTask(txCtx, ownerID, taskID)
		if err != nil {
			return err
		}

		current.Name = name
		current.Description = strings.TrimSpace(input.Description)
		current.FrequencyDays = input.FrequencyDays
		current.NextDueDate = pool.DateOf(input.NextDueDate)
		if err := s.repo.UpdateTask(txCtx, current); err != nil {
			return err
		}
		updated = current
		return nil
	}); err != nil {
		return pool.Task{}, err
	}
	return updated, nil
}

// Complete records a completion dated today and reschedules the task from today.
func (s *Service) Complete(ctx context.Context, ownerID, taskID uuid.UUID, notes string) (pool.Task, error) {
	if err := s.check(ctx); err != nil {
		return pool.Task{}, err
	}

	var storedNotes *string
	if trimmed := strings.TrimSpace(notes); trimmed != "" {
		storedNotes = &trimmed
	}

	today := s.clock.Today()
	var completed pool.Task
	if err := s.uow.WithTx(ctx, func(txCtx context.Context) error {
		task, err := s.repo.GetTask(txCtx, ownerID, taskID)
		if err != nil {
			return err
		}

		nextDue := pool.NextDueDate(today, task.FrequencyDays)
		if _, err := s.repo.RecordCompletion(txCtx, task.ID, today, nextDue, storedNotes); err != nil {
			return err
		}

		task.LastCompletedDate = &today
		task.LastCompletionNotes = storedNotes
		task.NextDueDate = nextDue
		completed = task
		return nil
	}); err != nil {
		return pool.Task{}, err
	}

	logging.Info(logging.With(ctx, "usecase.tasks"), "task completed",
		slog.String("task_id", completed.ID.String()),
		slog.String("next_due_date", pool.FormatDate(completed.NextDueDate)),
	)
	return completed, nil
}

func (s *Service) Delete(ctx context.Context, ownerID, taskID uuid.UUID) error {
	if err := s.check(ctx); err != nil {
		return err
	}
	return s.repo.DeleteTask(ctx, ownerID, taskID)
}

// History returns one page of the task's completions, newest first.
func (s *Service) History(ctx context.Context, ownerID, taskID uuid.UUID, page, pageSize int) (HistoryPage, error) {
	if err := s.check(ctx); err != nil {
		return HistoryPage{}, err
	}
	if _, err := pool.NewPage(page, pageSize, 0); err != nil {
		return HistoryPage{}, err
	}

	var out HistoryPage
	if err := s.uow.WithTx(ctx, func(txCtx context.Context) error {
		if _, err := s.repo.GetTask(txCtx, ownerID, taskID); err != nil {
			return err
		}

		total, err := s.repo.CountCompletions(txCtx, taskID)
		if err != nil {
			return err
		}
		window, err := pool.NewPage(page, pageSize, total)
		if err != nil {
			return err
		}

		items, err := s.repo.ListCompletions(txCtx, taskID, window.Offset(), window.Size)
		if err != nil {
			return err
		}
		out = HistoryPage{Items: items, Page: window}
		return nil
	}); err != nil {
		return HistoryPage{}, err
	}
	return out, nil
}

// BackfillHistory writes a history row for every mirrored completion that lacks one.
func (s *Service) BackfillHistory(ctx context.Context) (int64, error) {
	if err := s.check(ctx); err != nil {
		return 0, err
	}

	inserted, err := s.repo.BackfillCompletions(ctx)
	if err != nil {
		return 0, err
	}
	logging.Info(logging.With(ctx, "usecase.tasks"), "completion history backfilled", slog.Int64("inserted", inserted))
	return inserted, nil
}

func (s *Service) check(ctx context.Context) error {
	if ctx == nil {
		return errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return errs.Wrap(err, "check context")
	}
	if s.repo == nil {
		return errors.New("task repository is required")
	}
	if s.uow == nil {
		return errors.New("unit of work is required")
	}
	if s.clock == nil {
		return errors.New("clock is required")
	}
	return nil
}
