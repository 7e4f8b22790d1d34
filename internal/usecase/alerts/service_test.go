package alerts

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	gormsqlite "github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"poolkeeper/internal/domain/pool"
	"poolkeeper/internal/errs"
	"poolkeeper/internal/infrastructure/persistence/gormstore/model"
	"poolkeeper/internal/infrastructure/persistence/gormstore/repository"
	"poolkeeper/internal/infrastructure/persistence/gormstore/uow"
)

func setupService(t *testing.T) (*Service, *repository.AlertRepository) {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "alerts.sqlite")
	db, err := gorm.Open(gormsqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("get sql db: %v", err)
	}
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})
	if err := db.AutoMigrate(model.All()...); err != nil {
		t.Fatalf("auto migrate: %v", err)
	}

	repo := repository.NewAlertRepository(db)
	return NewService(repo, uow.NewUnitOfWork(db)), repo
}

func TestCreateNormalisesWeekdays(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()
	owner := uuid.New()

	alert, err := svc.Create(ctx, owner, Input{
		Name:       "Chemistry day",
		Cadence:    "Weekly",
		AlertTime:  "08:00",
		DaysOfWeek: []int{3, 1, 3},
		OnDueTasks: true,
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	got, err := svc.Get(ctx, owner, alert.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Cadence != pool.CadenceWeekly {
		t.Fatalf("cadence = %q", got.Cadence)
	}
	if days := got.DaysOfWeek.Days(); len(days) != 2 || days[0] != 1 || days[1] != 3 {
		t.Fatalf("days_of_week = %v, want [1 3]", days)
	}
	if got.AlertTime.String() != "08:00:00" {
		t.Fatalf("alert_time = %s", got.AlertTime)
	}
}

func TestCreateValidation(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()

	tests := []struct {
		name  string
		input Input
		want  error
	}{
		{name: "unknown cadence", input: Input{Name: "a", Cadence: "monthly", AlertTime: "08:00"}, want: pool.ErrInvalidCadence},
		{name: "weekday out of range", input: Input{Name: "a", Cadence: "weekly", AlertTime: "08:00", DaysOfWeek: []int{7}}, want: pool.ErrInvalidWeekday},
		{name: "weekly without days", input: Input{Name: "a", Cadence: "weekly", AlertTime: "08:00"}, want: pool.ErrWeeklyNeedsDays},
		{name: "empty name", input: Input{Cadence: "daily", AlertTime: "08:00"}, want: pool.ErrNameRequired},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.Create(ctx, uuid.New(), tt.input); !errors.Is(err, tt.want) {
				t.Fatalf("Create() error = %v, want %v", err, tt.want)
			}
		})
	}

	if _, err := svc.Create(ctx, uuid.New(), Input{Name: "a", Cadence: "daily", AlertTime: "8am"}); !errs.IsValidation(err) {
		t.Fatalf("Create(bad time) error = %v, want validation", err)
	}
}

func TestUpdatePreservesLastSent(t *testing.T) {
	svc, repo := setupService(t)
	ctx := context.Background()
	owner := uuid.New()

	alert, err := svc.Create(ctx, owner, Input{Name: "Daily", Cadence: "daily", AlertTime: "07:30"})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	sent := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	if _, err := repo.AdvanceLastSent(ctx, alert.ID, sent); err != nil {
		t.Fatalf("AdvanceLastSent() error = %v", err)
	}

	updated, err := svc.Update(ctx, owner, alert.ID, Input{Name: "Weekly", Cadence: "weekly", AlertTime: "09:00", DaysOfWeek: []int{0}})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if updated.LastSent == nil || !updated.LastSent.Equal(sent) {
		t.Fatalf("Update() last_sent = %v", updated.LastSent)
	}

	got, err := svc.Get(ctx, owner, alert.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Cadence != pool.CadenceWeekly || got.LastSent == nil || !got.LastSent.Equal(sent) {
		t.Fatalf("Get() after update = %+v", got)
	}

	if err := svc.Delete(ctx, uuid.New(), alert.ID); !errs.IsNotFound(err) {
		t.Fatalf("Delete(other owner) error = %v, want not found", err)
	}
	if err := svc.Delete(ctx, owner, alert.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
}
