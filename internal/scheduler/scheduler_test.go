package scheduler

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"sync"
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
	"poolkeeper/internal/usecase/notify"
)

type testMailer struct {
	mu      sync.Mutex
	sent    []ports.MailMessage
	blockTo string
	panicTo string
}

func (m *testMailer) Send(ctx context.Context, msg ports.MailMessage) error {
	if m.panicTo != "" && msg.To == m.panicTo {
		panic("smtp client exploded")
	}
	if msg.To == m.blockTo {
		<-ctx.Done()
		return ctx.Err()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, msg)
	return nil
}

func (m *testMailer) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sent)
}

type testPublisher struct {
	mu     sync.Mutex
	events map[string][][]byte
	err    error
	// ticks, when set, receives every tick summary without blocking the publisher.
	ticks chan []byte
}

func (p *testPublisher) Publish(_ context.Context, subject string, payload []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.events == nil {
		p.events = map[string][][]byte{}
	}
	p.events[subject] = append(p.events[subject], payload)
	if subject == SubjectTick && p.ticks != nil {
		select {
		case p.ticks <- payload:
		default:
		}
	}
	return p.err
}

type fixture struct {
	db        *gorm.DB
	mailer    *testMailer
	alerts    *repository.AlertRepository
	users     *repository.UserRepository
	inventory *repository.InventoryRepository
	meta      *repository.MetaStore
}

// 2026-03-10 is a Tuesday.
var tuesdayNoon = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func setupFixture(t *testing.T) *fixture {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "scheduler.sqlite") + "?_pragma=busy_timeout(5000)"
	db, err := gorm.Open(gormsqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("get sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})
	if err := db.AutoMigrate(model.All()...); err != nil {
		t.Fatalf("auto migrate: %v", err)
	}

	return &fixture{
		db:        db,
		mailer:    &testMailer{},
		alerts:    repository.NewAlertRepository(db),
		users:     repository.NewUserRepository(db),
		inventory: repository.NewInventoryRepository(db),
		meta:      repository.NewMetaStore(db),
	}
}

func (f *fixture) scheduler(at time.Time, sendTimeout time.Duration) *Scheduler {
	c := clock.Fixed{At: at}
	return New(Deps{
		Alerts:   f.alerts,
		Users:    f.users,
		Scanner:  notify.NewScanner(f.inventory, repository.NewTaskRepository(f.db), c),
		Notifier: notify.NewNotifier(f.mailer, sendTimeout),
		Meta:     f.meta,
		Clock:    c,
	}, Config{Enabled: true, Interval: time.Minute})
}

func (f *fixture) user(t *testing.T, email string) pool.User {
	t.Helper()
	u, err := f.users.CreateUser(context.Background(), pool.User{Email: email, HashedPassword: "x", IsActive: true})
	if err != nil {
		t.Fatalf("CreateUser() error = %v", err)
	}
	return u
}

func (f *fixture) lowItem(t *testing.T, owner uuid.UUID) {
	t.Helper()
	if _, err := f.inventory.CreateItem(context.Background(), pool.InventoryItem{
		OwnerID: owner, Name: "Chlorine", QuantityOnHand: 1, Unit: "lb", ReorderThreshold: 2,
	}); err != nil {
		t.Fatalf("CreateItem() error = %v", err)
	}
}

func (f *fixture) alert(t *testing.T, a pool.Alert) pool.Alert {
	t.Helper()
	created, err := f.alerts.CreateAlert(context.Background(), a)
	if err != nil {
		t.Fatalf("CreateAlert() error = %v", err)
	}
	return created
}

func (f *fixture) lastSent(t *testing.T, a pool.Alert) *time.Time {
	t.Helper()
	got, err := f.alerts.GetAlert(context.Background(), a.OwnerID, a.ID)
	if err != nil {
		t.Fatalf("GetAlert() error = %v", err)
	}
	return got.LastSent
}

func TestTickSendsOncePerDay(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()
	owner := f.user(t, "owner@example.com")
	f.lowItem(t, owner.ID)
	alert := f.alert(t, pool.Alert{OwnerID: owner.ID, Name: "Daily", Cadence: pool.CadenceDaily, OnLowInventory: true})

	summary, err := f.scheduler(tuesdayNoon, time.Second).Tick(ctx)
	if err != nil {
		t.Fatalf("Tick() error = %v", err)
	}
	if summary.Evaluated != 1 || summary.Fired != 1 || summary.Sent != 1 {
		t.Fatalf("Tick() summary = %+v", summary)
	}
	if f.mailer.count() != 1 || f.mailer.sent[0].To != "owner@example.com" || f.mailer.sent[0].Subject != "Pool Alert: Daily" {
		t.Fatalf("sent = %+v", f.mailer.sent)
	}
	if got := f.lastSent(t, alert); got == nil || !got.Equal(tuesdayNoon) {
		t.Fatalf("last_sent = %v, want %s", got, tuesdayNoon)
	}

	summary, err = f.scheduler(tuesdayNoon.Add(5*time.Minute), time.Second).Tick(ctx)
	if err != nil {
		t.Fatalf("Tick(again) error = %v", err)
	}
	if summary.Fired != 0 || f.mailer.count() != 1 {
		t.Fatalf("Tick(again) resent: summary = %+v, sent = %d", summary, f.mailer.count())
	}

	summary, err = f.scheduler(tuesdayNoon.AddDate(0, 0, 1), time.Second).Tick(ctx)
	if err != nil {
		t.Fatalf("Tick(next day) error = %v", err)
	}
	if summary.Sent != 1 || f.mailer.count() != 2 {
		t.Fatalf("Tick(next day) summary = %+v", summary)
	}
}

func TestTickEmptyReportLeavesWatermark(t *testing.T) {
	f := setupFixture(t)
	owner := f.user(t, "quiet@example.com")
	alert := f.alert(t, pool.Alert{OwnerID: owner.ID, Name: "Tasks", Cadence: pool.CadenceDaily, OnDueTasks: true, OnLowInventory: true})

	summary, err := f.scheduler(tuesdayNoon, time.Second).Tick(context.Background())
	if err != nil {
		t.Fatalf("Tick() error = %v", err)
	}
	if summary.Fired != 1 || summary.SkippedEmpty != 1 || summary.Sent != 0 {
		t.Fatalf("Tick() summary = %+v", summary)
	}
	if f.mailer.count() != 0 {
		t.Fatalf("sent %d messages for an empty report", f.mailer.count())
	}
	if got := f.lastSent(t, alert); got != nil {
		t.Fatalf("last_sent = %v, want nil", got)
	}
}

func TestTickWeeklyRespectsWeekday(t *testing.T) {
	f := setupFixture(t)
	owner := f.user(t, "weekly@example.com")
	f.lowItem(t, owner.ID)

	monWed, _ := pool.NewWeekdaySet(1, 3)
	alert := f.alert(t, pool.Alert{OwnerID: owner.ID, Name: "Weekly", Cadence: pool.CadenceWeekly, DaysOfWeek: monWed, OnLowInventory: true})

	summary, err := f.scheduler(tuesdayNoon, time.Second).Tick(context.Background())
	if err != nil {
		t.Fatalf("Tick(tuesday) error = %v", err)
	}
	if summary.Fired != 0 || f.lastSent(t, alert) != nil {
		t.Fatalf("Tick(tuesday) fired a Monday/Wednesday alert: %+v", summary)
	}

	summary, err = f.scheduler(tuesdayNoon.AddDate(0, 0, 1), time.Second).Tick(context.Background())
	if err != nil {
		t.Fatalf("Tick(wednesday) error = %v", err)
	}
	if summary.Sent != 1 {
		t.Fatalf("Tick(wednesday) summary = %+v", summary)
	}
}

func TestTickIsolatesSlowSendAndMissingOwner(t *testing.T) {
	f := setupFixture(t)
	slow := f.user(t, "slow@example.com")
	fast := f.user(t, "fast@example.com")
	f.lowItem(t, slow.ID)
	f.lowItem(t, fast.ID)
	f.mailer.blockTo = "slow@example.com"

	slowAlert := f.alert(t, pool.Alert{OwnerID: slow.ID, Name: "A slow", Cadence: pool.CadenceDaily, OnLowInventory: true})
	fastAlert := f.alert(t, pool.Alert{OwnerID: fast.ID, Name: "B fast", Cadence: pool.CadenceDaily, OnLowInventory: true})
	f.alert(t, pool.Alert{OwnerID: uuid.New(), Name: "Orphan", Cadence: pool.CadenceDaily, OnLowInventory: true})

	summary, err := f.scheduler(tuesdayNoon, 50*time.Millisecond).Tick(context.Background())
	if err != nil {
		t.Fatalf("Tick() error = %v", err)
	}
	if summary.Evaluated != 3 || summary.Sent != 1 || summary.Undelivered != 1 || summary.SkippedOwner != 1 {
		t.Fatalf("Tick() summary = %+v", summary)
	}
	if f.lastSent(t, fastAlert) == nil {
		t.Fatalf("fast alert watermark not advanced")
	}
	if f.lastSent(t, slowAlert) == nil {
		t.Fatalf("timed-out alert watermark not advanced")
	}
}

func TestTickDropsOverlappingRun(t *testing.T) {
	f := setupFixture(t)
	s := f.scheduler(tuesdayNoon, time.Second)

	s.tickMu.Lock()
	summary, err := s.Tick(context.Background())
	s.tickMu.Unlock()
	if err != nil {
		t.Fatalf("Tick() error = %v", err)
	}
	if !summary.Overlapped {
		t.Fatalf("Tick() summary = %+v, want overlapped", summary)
	}
}

func TestTickStoresLastSummary(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()
	owner := f.user(t, "meta@example.com")
	f.alert(t, pool.Alert{OwnerID: owner.ID, Name: "Daily", Cadence: pool.CadenceDaily, OnDueTasks: true})

	if _, found, err := LastTick(ctx, f.meta); err != nil || found {
		t.Fatalf("LastTick(before) found = %v, err = %v", found, err)
	}
	if _, err := f.scheduler(tuesdayNoon, time.Second).Tick(ctx); err != nil {
		t.Fatalf("Tick() error = %v", err)
	}

	last, found, err := LastTick(ctx, f.meta)
	if err != nil || !found {
		t.Fatalf("LastTick() found = %v, err = %v", found, err)
	}
	if last.Evaluated != 1 || last.SkippedEmpty != 1 || !last.StartedAt.Equal(tuesdayNoon) {
		t.Fatalf("LastTick() = %+v", last)
	}
}

func TestTickPublishesEvents(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()
	owner := f.user(t, "events@example.com")
	f.lowItem(t, owner.ID)
	alert := f.alert(t, pool.Alert{OwnerID: owner.ID, Name: "Daily", Cadence: pool.CadenceDaily, OnLowInventory: true})

	// A failing publisher must not affect delivery or the watermark.
	events := &testPublisher{err: errors.New("broker down")}
	s := f.scheduler(tuesdayNoon, time.Second)
	s.deps.Events = events

	summary, err := s.Tick(ctx)
	if err != nil {
		t.Fatalf("Tick() error = %v", err)
	}
	if summary.Sent != 1 {
		t.Fatalf("Tick() summary = %+v", summary)
	}
	if got := f.lastSent(t, alert); got == nil {
		t.Fatal("last_sent = nil, want advanced")
	}

	if len(events.events[SubjectTick]) != 1 {
		t.Fatalf("tick events = %d, want 1", len(events.events[SubjectTick]))
	}
	sent := events.events[SubjectAlertSent]
	if len(sent) != 1 {
		t.Fatalf("alert events = %d, want 1", len(sent))
	}
	var event AlertSentEvent
	if err := json.Unmarshal(sent[0], &event); err != nil {
		t.Fatalf("decode event: %v", err)
	}
	if event.AlertID != alert.ID || !event.Delivered || event.LowItems != 1 || event.DueTasks != 0 {
		t.Fatalf("event = %+v", event)
	}
}

func TestTickRecoversPanickingAlert(t *testing.T) {
	f := setupFixture(t)
	broken := f.user(t, "broken@example.com")
	healthy := f.user(t, "healthy@example.com")
	f.lowItem(t, broken.ID)
	f.lowItem(t, healthy.ID)
	f.mailer.panicTo = "broken@example.com"

	brokenAlert := f.alert(t, pool.Alert{OwnerID: broken.ID, Name: "A broken", Cadence: pool.CadenceDaily, OnLowInventory: true})
	healthyAlert := f.alert(t, pool.Alert{OwnerID: healthy.ID, Name: "B healthy", Cadence: pool.CadenceDaily, OnLowInventory: true})

	// The broken alert fires again the next day; the healthy one is delivered both days.
	for day := 0; day < 2; day++ {
		at := tuesdayNoon.AddDate(0, 0, day)
		summary, err := f.scheduler(at, time.Second).Tick(context.Background())
		if err != nil {
			t.Fatalf("Tick(day %d) error = %v", day, err)
		}
		if summary.Evaluated != 2 || summary.Fired != 2 || summary.Failed != 1 || summary.Sent != 1 {
			t.Fatalf("Tick(day %d) summary = %+v", day, summary)
		}
		if got := f.lastSent(t, healthyAlert); got == nil || !got.Equal(at) {
			t.Fatalf("Tick(day %d) healthy last_sent = %v, want %s", day, got, at)
		}
		if got := f.lastSent(t, brokenAlert); got != nil {
			t.Fatalf("Tick(day %d) broken last_sent = %v, want nil", day, got)
		}
	}
	if f.mailer.count() != 2 {
		t.Fatalf("sent = %d, want 2", f.mailer.count())
	}
}

func TestStartStopRunsLoop(t *testing.T) {
	f := setupFixture(t)
	owner := f.user(t, "loop@example.com")
	f.alert(t, pool.Alert{OwnerID: owner.ID, Name: "Daily", Cadence: pool.CadenceDaily, OnDueTasks: true})

	events := &testPublisher{ticks: make(chan []byte, 1)}
	s := f.scheduler(tuesdayNoon, time.Second)
	s.deps.Events = events
	s.cfg.Interval = 50 * time.Millisecond

	ctx := context.Background()
	if err := s.Start(ctx); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if err := s.Start(ctx); err == nil {
		t.Fatalf("Start(again) expected error")
	}

	var raw []byte
	select {
	case raw = <-events.ticks:
	case <-time.After(5 * time.Second):
		t.Fatalf("no tick published before deadline")
	}
	var published TickSummary
	if err := json.Unmarshal(raw, &published); err != nil {
		t.Fatalf("decode tick summary: %v", err)
	}
	if published.Evaluated != 1 || published.SkippedEmpty != 1 {
		t.Fatalf("published summary = %+v", published)
	}

	stopCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := s.Stop(stopCtx); err != nil {
		t.Fatalf("Stop() error = %v", err)
	}
	if err := s.Stop(stopCtx); err != nil {
		t.Fatalf("Stop(again) error = %v", err)
	}

	last, found, err := LastTick(ctx, f.meta)
	if err != nil {
		t.Fatalf("LastTick() error = %v", err)
	}
	if !found || last.Evaluated != 1 {
		t.Fatalf("LastTick() = %+v, found = %v", last, found)
	}
}
