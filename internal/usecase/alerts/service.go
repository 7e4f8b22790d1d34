// Package alerts manages alert subscriptions.
package alerts

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"poolkeeper/internal/bootstrap/logging"
	"poolkeeper/internal/domain/pool"
	"poolkeeper/internal/errs"
	"poolkeeper/internal/ports"
)

type Service struct {
	repo ports.AlertRepository
	uow  ports.UnitOfWork
}

func NewService(repo ports.AlertRepository, uow ports.UnitOfWork) *Service {
	return &Service{repo: repo, uow: uow}
}

type Input struct {
	Name           string
	Cadence        string
	AlertTime      string
	DaysOfWeek     []int
	OnLowInventory bool
	OnDueTasks     bool
}

func (in Input) toAlert(ownerID uuid.UUID) (pool.Alert, error) {
	cadence, err := pool.ParseCadence(in.Cadence)
	if err != nil {
		return pool.Alert{}, err
	}
	days, err := pool.NewWeekdaySet(in.DaysOfWeek...)
	if err != nil {
		return pool.Alert{}, err
	}
	at, err := pool.ParseTimeOfDay(strings.TrimSpace(in.AlertTime))
	if err != nil {
		return pool.Alert{}, err
	}

	alert := pool.Alert{
		OwnerID:        ownerID,
		Name:           strings.TrimSpace(in.Name),
		Cadence:        cadence,
		DaysOfWeek:     days,
		AlertTime:      at,
		OnLowInventory: in.OnLowInventory,
		OnDueTasks:     in.OnDueTasks,
	}
	if err := pool.ValidateAlert(alert); err != nil {
		return pool.Alert{}, err
	}
	return alert, nil
}

func (s *Service) List(ctx context.Context, ownerID uuid.UUID) ([]pool.Alert, error) {
	if err := s.check(ctx); err != nil {
		return nil, err
	}
	return s.repo.ListAlerts(ctx, ownerID)
}

func (s *Service) Get(ctx context.Context, ownerID, alertID uuid.UUID) (pool.Alert, error) {
	if err := s.check(ctx); err != nil {
		return pool.Alert{}, err
	}
	return s.repo.GetAlert(ctx, ownerID, alertID)
}

func (s *Service) Create(ctx context.Context, ownerID uuid.UUID, input Input) (pool.Alert, error) {
	if err := s.check(ctx); err != nil {
		return pool.Alert{}, err
	}

	alert, err := input.toAlert(ownerID)
	if err != nil {
		return pool.Alert{}, err
	}
	created, err := s.repo.CreateAlert(ctx, alert)
	if err != nil {
		return pool.Alert{}, err
	}

	logging.Info(logging.With(ctx, "usecase.alerts"), "alert created",
		slog.String("alert_id", created.ID.String()),
		slog.String("cadence", string(created.Cadence)),
	)
	return created, nil
}

// Update replaces the alert's settings. The send watermark is preserved.
func (s *Service) Update(ctx context.Context, ownerID, alertID uuid.UUID, input Input) (pool.Alert, error) {
	if err := s.check(ctx); err != nil {
		return pool.Alert{}, err
	}

	next, err := input.toAlert(ownerID)
	if err != nil {
		return pool.Alert{}, err
	}

	var updated pool.Alert
	if err := s.uow.WithTx(ctx, func(txCtx context.Context) error {
		current, err := s.repo.GetAlert(txCtx, ownerID, alertID)
		if err != nil {
			return err
		}

		next.ID = current.ID
		next.LastSent = current.LastSent
		if err := s.repo.UpdateAlert(txCtx, next); err != nil {
			return err
		}
		updated = next
		return nil
	}); err != nil {
		return pool.Alert{}, err
	}
	return updated, nil
}

func (s *Service) Delete(ctx context.Context, ownerID, alertID uuid.UUID) error {
	if err := s.check(ctx); err != nil {
		return err
	}
	return s.repo.DeleteAlert(ctx, ownerID, alertID)
}

func (s *Service) check(ctx context.Context) error {
	if ctx == nil {
		return errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return errs.Wrap(err, "check context")
	}
	if s.repo == nil {
		return errors.New("alert repository is required")
	}
	if s.uow == nil {
		return errors.New("unit of work is required")
	}
	return nil
}
