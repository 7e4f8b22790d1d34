package tasks

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

type testClock struct {
	now time.Time
}

func (c *testClock) Now() time.Time   { return c.now.UTC() }
func (c *testClock) Today() time.Time { return pool.DateOf(c.now) }

func setupService(t *testing.T, today string) (*Service, *testClock) {
	t.Helper()
	svc, c, _ := setupServiceDB(t, today)
	return svc, c
}

func setupServiceDB(t *testing.T, today string) (*Service, *testClock, *gorm.DB) {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "tasks.sqlite")
	db, err := gorm.Open(gormsqlite.Open(dsn), &gorm.Config{TranslateError: true})
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

	c := &testClock{now: mustDate(t, today).Add(15 * time.Hour)}
	return NewService(repository.NewTaskRepository(db), uow.NewUnitOfWork(db), c), c, db
}

func mustDate(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := pool.ParseDate(s)
	if err != nil {
		t.Fatalf("ParseDate(%q) error = %v", s, err)
	}
	return d
}

func TestCreateDefaultsNextDueFromToday(t *testing.T) {
	svc, _ := setupService(t, "2026-03-10")
	ctx := context.Background()
	owner := uuid.New()

	task, err := svc.Create(ctx, owner, CreateInput{Name: "  Clean filter ", FrequencyDays: 14})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if task.Name != "Clean filter" {
		t.Fatalf("Create() name = %q", task.Name)
	}
	if want := mustDate(t, "2026-03-24"); !task.NextDueDate.Equal(want) {
		t.Fatalf("Create() next_due_date = %s, want %s", task.NextDueDate, want)
	}

	explicit := mustDate(t, "2026-04-01")
	task, err = svc.Create(ctx, owner, CreateInput{Name: "Shock", FrequencyDays: 7, NextDueDate: &explicit})
	if err != nil {
		t.Fatalf("Create(explicit) error = %v", err)
	}
	if !task.NextDueDate.Equal(explicit) {
		t.Fatalf("Create(explicit) next_due_date = %s", task.NextDueDate)
	}
}

func TestCreateValidation(t *testing.T) {
	svc, _ := setupService(t, "2026-03-10")
	ctx := context.Background()
	owner := uuid.New()

	tests := []struct {
		name  string
		input CreateInput
		want  error
	}{
		{name: "empty name", input: CreateInput{Name: " ", FrequencyDays: 1}, want: pool.ErrNameRequired},
		{name: "zero frequency", input: CreateInput{Name: "x", FrequencyDays: 0}, want: pool.ErrFrequencyTooLow},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.Create(ctx, owner, tt.input); !errors.Is(err, tt.want) {
				t.Fatalf("Create() error = %v, want %v", err, tt.want)
			}
		})
	}

	if _, err := svc.Create(ctx, owner, CreateInput{Name: "dup", FrequencyDays: 1}); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if _, err := svc.Create(ctx, owner, CreateInput{Name: "dup", FrequencyDays: 2}); !errs.IsValidation(err) {
		t.Fatalf("Create(duplicate) error = %v, want validation", err)
	}
}

func TestCompleteAdvancesFromTodayAndRecordsHistory(t *testing.T) {
	svc, c := setupService(t, "2026-03-10")
	ctx := context.Background()
	owner := uuid.New()

	overdue := mustDate(t, "2026-02-01")
	task, err := svc.Create(ctx, owner, CreateInput{Name: "Brush walls", FrequencyDays: 7, NextDueDate: &overdue})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	done, err := svc.Complete(ctx, owner, task.ID, "  ")
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if want := mustDate(t, "2026-03-17"); !done.NextDueDate.Equal(want) {
		t.Fatalf("Complete() next_due_date = %s, want %s", done.NextDueDate, want)
	}
	if done.LastCompletionNotes != nil {
		t.Fatalf("Complete() blank notes stored as %q", *done.LastCompletionNotes)
	}

	c.now = c.now.AddDate(0, 0, 1)
	if _, err := svc.Complete(ctx, owner, task.ID, "second pass"); err != nil {
		t.Fatalf("Complete(second) error = %v", err)
	}

	got, err := svc.Get(ctx, owner, task.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.LastCompletedDate == nil || !got.LastCompletedDate.Equal(mustDate(t, "2026-03-11")) {
		t.Fatalf("last_completed_date = %v", got.LastCompletedDate)
	}
	if got.LastCompletionNotes == nil || *got.LastCompletionNotes != "second pass" {
		t.Fatalf("last_completion_notes = %v", got.LastCompletionNotes)
	}

	history, err := svc.History(ctx, owner, task.ID, 1, 10)
	if err != nil {
		t.Fatalf("History() error = %v", err)
	}
	if history.Total != 2 || len(history.Items) != 2 {
		t.Fatalf("History() total = %d, items = %d", history.Total, len(history.Items))
	}
	if !history.Items[0].CompletedDate.Equal(mustDate(t, "2026-03-11")) {
		t.Fatalf("History() first item = %s, want newest first", history.Items[0].CompletedDate)
	}

	if _, err := svc.Complete(ctx, uuid.New(), task.ID, ""); !errs.IsNotFound(err) {
		t.Fatalf("Complete(other owner) error = %v, want not found", err)
	}
}

func TestCompleteFailureLeavesTaskUntouched(t *testing.T) {
	svc, _, db := setupServiceDB(t, "2026-03-10")
	ctx := context.Background()
	owner := uuid.New()

	due := mustDate(t, "2026-03-05")
	task, err := svc.Create(ctx, owner, CreateInput{Name: "Backwash", FrequencyDays: 7, NextDueDate: &due})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if err := db.Migrator().DropTable(&model.TaskCompletion{}); err != nil {
		t.Fatalf("drop history table: %v", err)
	}

	if _, err := svc.Complete(ctx, owner, task.ID, "skimmed"); !errors.Is(err, errs.ErrPersistence) {
		t.Fatalf("Complete() error = %v, want persistence error", err)
	}

	got, err := svc.Get(ctx, owner, task.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.LastCompletedDate != nil || got.LastCompletionNotes != nil {
		t.Fatalf("Get() mirror = %v / %v, want untouched", got.LastCompletedDate, got.LastCompletionNotes)
	}
	if !got.NextDueDate.Equal(due) {
		t.Fatalf("Get() next_due_date = %s, want %s", got.NextDueDate, due)
	}
}

func TestUpdateKeepsCompletionMirror(t *testing.T) {
	svc, _ := setupService(t, "2026-03-10")
	ctx := context.Background()
	owner := uuid.New()

	task, err := svc.Create(ctx, owner, CreateInput{Name: "Backwash", FrequencyDays: 30})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if _, err := svc.Complete(ctx, owner, task.ID, "ok"); err != nil {
		t.Fatalf("Complete() error = %v", err)
	}

	updated, err := svc.Update(ctx, owner, task.ID, UpdateInput{
		Name:          "Backwash filter",
		Description:   "sand filter",
		FrequencyDays: 21,
		NextDueDate:   mustDate(t, "2026-03-20"),
	})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if updated.LastCompletedDate == nil || updated.LastCompletionNotes == nil {
		t.Fatalf("Update() cleared the completion mirror: %+v", updated)
	}

	got, err := svc.Get(ctx, owner, task.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Name != "Backwash filter" || got.FrequencyDays != 21 || !got.NextDueDate.Equal(mustDate(t, "2026-03-20")) {
		t.Fatalf("Get() after update = %+v", got)
	}
	if got.LastCompletedDate == nil || *got.LastCompletionNotes != "ok" {
		t.Fatalf("Get() mirror after update = %+v", got)
	}

	if _, err := svc.Update(ctx, owner, task.ID, UpdateInput{Name: "x", FrequencyDays: 0, NextDueDate: mustDate(t, "2026-03-20")}); !errors.Is(err, pool.ErrFrequencyTooLow) {
		t.Fatalf("Update(frequency 0) error = %v", err)
	}
	if _, err := svc.Update(ctx, owner, uuid.New(), UpdateInput{Name: "x", FrequencyDays: 1, NextDueDate: mustDate(t, "2026-03-20")}); !errs.IsNotFound(err) {
		t.Fatalf("Update(missing) error = %v, want not found", err)
	}
}

func TestHistoryPaging(t *testing.T) {
	svc, c := setupService(t, "2026-01-01")
	ctx := context.Background()
	owner := uuid.New()

	task, err := svc.Create(ctx, owner, CreateInput{Name: "Skim", FrequencyDays: 1})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	empty, err := svc.History(ctx, owner, task.ID, 1, 10)
	if err != nil {
		t.Fatalf("History(empty) error = %v", err)
	}
	if empty.Total != 0 || empty.TotalPages != 1 || len(empty.Items) != 0 {
		t.Fatalf("History(empty) = %+v", empty)
	}

	for i := 0; i < 37; i++ {
		if _, err := svc.Complete(ctx, owner, task.ID, ""); err != nil {
			t.Fatalf("Complete(%d) error = %v", i, err)
		}
		c.now = c.now.AddDate(0, 0, 1)
	}

	tests := []struct {
		page, size, wantItems, wantPages int
	}{
		{page: 1, size: 15, wantItems: 15, wantPages: 3},
		{page: 3, size: 15, wantItems: 7, wantPages: 3},
		{page: 4, size: 15, wantItems: 0, wantPages: 3},
		{page: 1, size: 100, wantItems: 37, wantPages: 1},
	}
	for _, tt := range tests {
		got, err := svc.History(ctx, owner, task.ID, tt.page, tt.size)
		if err != nil {
			t.Fatalf("History(%d, %d) error = %v", tt.page, tt.size, err)
		}
		if len(got.Items) != tt.wantItems || got.TotalPages != tt.wantPages || got.Total != 37 {
			t.Fatalf("History(%d, %d) items = %d pages = %d total = %d", tt.page, tt.size, len(got.Items), got.TotalPages, got.Total)
		}
	}

	for _, bad := range [][2]int{{0, 10}, {1, 0}, {1, 101}} {
		if _, err := svc.History(ctx, owner, task.ID, bad[0], bad[1]); !errs.IsValidation(err) {
			t.Fatalf("History(%d, %d) error = %v, want validation", bad[0], bad[1], err)
		}
	}
	if _, err := svc.History(ctx, uuid.New(), task.ID, 1, 10); !errs.IsNotFound(err) {
		t.Fatalf("History(other owner) error = %v, want not found", err)
	}
}

func TestDeleteRemovesTask(t *testing.T) {
	svc, _ := setupService(t, "2026-03-10")
	ctx := context.Background()
	owner := uuid.New()

	task, err := svc.Create(ctx, owner, CreateInput{Name: "Drain", FrequencyDays: 365})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if err := svc.Delete(ctx, owner, task.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := svc.Get(ctx, owner, task.ID); !errs.IsNotFound(err) {
		t.Fatalf("Get(after delete) error = %v", err)
	}
	if err := svc.Delete(ctx, owner, task.ID); !errs.IsNotFound(err) {
		t.Fatalf("Delete(again) error = %v", err)
	}
}
