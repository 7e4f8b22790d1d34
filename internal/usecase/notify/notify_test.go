package notify

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	gormsqlite "github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"poolkeeper/internal/domain/pool"
	"poolkeeper/internal/infrastructure/clock"
	"poolkeeper/internal/infrastructure/persistence/gormstore/model"
	"poolkeeper/internal/infrastructure/persistence/gormstore/repository"
	"poolkeeper/internal/ports"
)

type testMailer struct {
	sent  []ports.MailMessage
	err   error
	block bool
}

func (m *testMailer) Send(ctx context.Context, msg ports.MailMessage) error {
	if m.block {
		<-ctx.Done()
		return ctx.Err()
	}
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, msg)
	return nil
}

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "notify.sqlite")
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
	return db
}

func TestScanUsesInclusiveBoundaries(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()
	owner := uuid.New()
	inventory := repository.NewInventoryRepository(db)
	tasks := repository.NewTaskRepository(db)

	if _, err := inventory.CreateItem(ctx, pool.InventoryItem{OwnerID: owner, Name: "Chlorine", QuantityOnHand: 2, Unit: "lb", ReorderThreshold: 2}); err != nil {
		t.Fatalf("CreateItem() error = %v", err)
	}
	if _, err := inventory.CreateItem(ctx, pool.InventoryItem{OwnerID: owner, Name: "Salt", QuantityOnHand: 9, Unit: "bag", ReorderThreshold: 2}); err != nil {
		t.Fatalf("CreateItem() error = %v", err)
	}
	today := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	if _, err := tasks.CreateTask(ctx, pool.Task{OwnerID: owner, Name: "Due today", FrequencyDays: 7, NextDueDate: today}); err != nil {
		t.Fatalf("CreateTask() error = %v", err)
	}
	if _, err := tasks.CreateTask(ctx, pool.Task{OwnerID: owner, Name: "Tomorrow", FrequencyDays: 7, NextDueDate: today.AddDate(0, 0, 1)}); err != nil {
		t.Fatalf("CreateTask() error = %v", err)
	}

	scanner := NewScanner(inventory, tasks, clock.Fixed{At: today.Add(10 * time.Hour)})

	facts, err := scanner.Scan(ctx, owner, true, true)
	if err != nil {
		t.Fatalf("Scan() error = %v", err)
	}
	if len(facts.LowItems) != 1 || facts.LowItems[0].Name != "Chlorine" {
		t.Fatalf("Scan() low items = %+v", facts.LowItems)
	}
	if len(facts.DueTasks) != 1 || facts.DueTasks[0].Name != "Due today" {
		t.Fatalf("Scan() due tasks = %+v", facts.DueTasks)
	}

	facts, err = scanner.Scan(ctx, owner, false, false)
	if err != nil {
		t.Fatalf("Scan(nothing watched) error = %v", err)
	}
	if !facts.Empty() {
		t.Fatalf("Scan(nothing watched) = %+v, want empty", facts)
	}
}

func TestRenderSectionsAndEscaping(t *testing.T) {
	report, err := Render("Morning", Facts{
		LowItems: []pool.InventoryItem{{Name: "<Acid>", QuantityOnHand: 1.5, Unit: "gal", ReorderThreshold: 2}},
		DueTasks: []pool.Task{{Name: "Brush", NextDueDate: time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)}},
	})
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	if report.Subject != "Pool Alert: Morning" {
		t.Fatalf("Subject = %q", report.Subject)
	}
	for _, want := range []string{"Low Chemical Inventory", "&lt;Acid&gt;", "1.5 gal (reorder at 2)", "Tasks Due Soon", "Due 2026-03-10"} {
		if !strings.Contains(report.HTMLBody, want) {
			t.Fatalf("HTMLBody missing %q:\n%s", want, report.HTMLBody)
		}
	}
	if strings.Contains(report.HTMLBody, "All systems normal") {
		t.Fatalf("HTMLBody has the all-clear line alongside facts")
	}
	if !strings.Contains(report.TextBody, "- <Acid>: 1.5 gal (reorder at 2)") {
		t.Fatalf("TextBody = %q", report.TextBody)
	}

	onlyTasks, err := Render("Tasks", Facts{DueTasks: []pool.Task{{Name: "Skim"}}})
	if err != nil {
		t.Fatalf("Render(tasks only) error = %v", err)
	}
	if strings.Contains(onlyTasks.HTMLBody, "Low Chemical Inventory") {
		t.Fatalf("HTMLBody rendered an empty inventory section")
	}
}

func TestNotifierSwallowsFailures(t *testing.T) {
	ctx := context.Background()
	report := Report{Subject: "Pool Alert: x", HTMLBody: "<p>x</p>"}

	ok := &testMailer{}
	if !NewNotifier(ok, time.Second).Send(ctx, "owner@example.com", report) {
		t.Fatalf("Send() = false with a working mailer")
	}
	if len(ok.sent) != 1 || ok.sent[0].To != "owner@example.com" {
		t.Fatalf("sent = %+v", ok.sent)
	}

	failing := &testMailer{err: errors.New("connection refused")}
	if NewNotifier(failing, time.Second).Send(ctx, "owner@example.com", report) {
		t.Fatalf("Send() = true with a failing mailer")
	}
}

func TestNotifierBoundsSendTime(t *testing.T) {
	blocking := &testMailer{block: true}
	n := NewNotifier(blocking, 50*time.Millisecond)

	start := time.Now()
	if n.Send(context.Background(), "owner@example.com", Report{Subject: "s"}) {
		t.Fatalf("Send() = true for a blocked mailer")
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Fatalf("Send() took %s, timeout not applied", elapsed)
	}
}
