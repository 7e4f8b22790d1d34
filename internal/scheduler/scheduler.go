// Package scheduler runs the periodic alert check.
package scheduler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"runtime/debug"
	"sync"
	"time"

	"github.com/google/uuid"

	"poolkeeper/internal/bootstrap/logging"
	"poolkeeper/internal/domain/pool"
	"poolkeeper/internal/errs"
	"poolkeeper/internal/ports"
	"poolkeeper/internal/usecase/notify"
)

// LastTickKey is the meta key holding the JSON TickSummary of the most recent tick.
const LastTickKey = "scheduler.last_tick"

// Event subjects, relative to the publisher's prefix.
const (
	SubjectTick      = "scheduler.tick"
	SubjectAlertSent = "alerts.sent"
)

type Config struct {
	Enabled  bool
	Interval time.Duration
}

// TickSummary counts what one pass over the alerts did.
type TickSummary struct {
	StartedAt    time.Time `json:"started_at"`
	FinishedAt   time.Time `json:"finished_at"`
	Evaluated    int       `json:"evaluated"`
	Fired        int       `json:"fired"`
	Sent         int       `json:"sent"`
	Undelivered  int       `json:"undelivered"`
	SkippedEmpty int       `json:"skipped_empty"`
	SkippedOwner int       `json:"skipped_owner"`
	Failed       int       `json:"failed"`
	// Overlapped is set when the tick was dropped because another one was still running.
	Overlapped bool   `json:"overlapped,omitempty"`
	Error      string `json:"error,omitempty"`
}

// AlertSentEvent is published after every delivery attempt.
type AlertSentEvent struct {
	AlertID   uuid.UUID `json:"alert_id"`
	UserID    uuid.UUID `json:"user_id"`
	AlertName string    `json:"alert_name"`
	SentAt    time.Time `json:"sent_at"`
	Delivered bool      `json:"delivered"`
	LowItems  int       `json:"low_items"`
	DueTasks  int       `json:"due_tasks"`
}

type Deps struct {
	Alerts   ports.AlertRepository
	Users    ports.UserRepository
	Scanner  *notify.Scanner
	Notifier *notify.Notifier
	Meta     ports.MetaStore
	Clock    ports.Clock
	// Events is optional.
	Events ports.EventPublisher
}

type Scheduler struct {
	deps Deps
	cfg  Config

	tickMu sync.Mutex

	lifeMu sync.Mutex
	stop   chan struct{}
	done   chan struct{}
}

func New(deps Deps, cfg Config) *Scheduler {
	if cfg.Interval <= 0 {
		cfg.Interval = 5 * time.Minute
	}
	return &Scheduler{deps: deps, cfg: cfg}
}

// Start launches the background loop. The first tick runs one interval after Start.
func (s *Scheduler) Start(ctx context.Context) error {
	if ctx == nil {
		return errors.New("context is required")
	}
	logCtx := logging.With(ctx, "scheduler")
	if !s.cfg.Enabled {
		logging.Info(logCtx, "alert scheduler disabled")
		return nil
	}

	s.lifeMu.Lock()
	defer s.lifeMu.Unlock()
	if s.stop != nil {
		return errors.New("scheduler already started")
	}
	s.stop = make(chan struct{})
	s.done = make(chan struct{})

	// Ticks outlive the start context; Stop ends the loop between ticks.
	runCtx := context.WithoutCancel(logCtx)
	go s.loop(runCtx, s.stop, s.done)

	logging.Info(logCtx, "alert scheduler started", slog.Duration("interval", s.cfg.Interval))
	return nil
}

func (s *Scheduler) loop(ctx context.Context, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if _, err := s.Tick(ctx); err != nil {
				logging.Error(ctx, "alert tick failed", slog.Any("err", errs.Loggable(err)))
			}
		}
	}
}

// Stop waits for an in-flight tick to finish, or for ctx to expire.
func (s *Scheduler) Stop(ctx context.Context) error {
	s.lifeMu.Lock()
	stop, done := s.stop, s.done
	s.stop, s.done = nil, nil
	s.lifeMu.Unlock()

	if stop == nil {
		return nil
	}
	close(stop)

	select {
	case <-done:
		logging.Info(logging.With(ctx, "scheduler"), "alert scheduler stopped")
		return nil
	case <-ctx.Done():
		return errs.Wrap(ctx.Err(), "wait for alert tick")
	}
}

// Tick evaluates every alert once. A tick that starts while another is running does
// nothing and reports Overlapped.
func (s *Scheduler) Tick(ctx context.Context) (TickSummary, error) {
	if ctx == nil {
		return TickSummary{}, errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return TickSummary{}, errs.Wrap(err, "check context")
	}

	logCtx := logging.With(ctx, "scheduler")
	if !s.tickMu.TryLock() {
		logging.Warn(logCtx, "previous alert tick still running, skipping")
		return TickSummary{Overlapped: true}, nil
	}
	defer s.tickMu.Unlock()

	now := s.deps.Clock.Now()
	summary := TickSummary{StartedAt: now}

	alerts, err := s.deps.Alerts.ListAllAlerts(ctx)
	if err != nil {
		summary.Error = err.Error()
		s.finish(logCtx, &summary)
		return summary, errs.Wrap(err, "list alerts")
	}

	for _, alert := range alerts {
		summary.Evaluated++
		s.visit(logCtx, alert, now, &summary)
	}

	s.finish(logCtx, &summary)
	return summary, nil
}

func (s *Scheduler) visit(ctx context.Context, alert pool.Alert, now time.Time, summary *TickSummary) {
	ctx = logging.WithAttrs(ctx,
		slog.String("alert_id", alert.ID.String()),
		slog.String("alert_name", alert.Name),
	)
	// A panic in one alert's scan, render or send is counted and logged; later alerts still run.
	defer func() {
		if r := recover(); r != nil {
			summary.Failed++
			logging.Error(ctx, "alert evaluation panicked",
				slog.Any("panic", r),
				slog.String("stack", string(debug.Stack())),
			)
		}
	}()

	if !pool.ShouldFire(alert, now) {
		return
	}
	summary.Fired++

	owner, err := s.deps.Users.GetUser(ctx, alert.OwnerID)
	if err != nil {
		if errs.IsNotFound(err) {
			summary.SkippedOwner++
			logging.Warn(ctx, "alert owner missing, skipping")
			return
		}
		summary.Failed++
		logging.Error(ctx, "load alert owner failed", slog.Any("err", errs.Loggable(err)))
		return
	}

	facts, err := s.deps.Scanner.Scan(ctx, alert.OwnerID, alert.OnLowInventory, alert.OnDueTasks)
	if err != nil {
		summary.Failed++
		logging.Error(ctx, "scan alert conditions failed", slog.Any("err", errs.Loggable(err)))
		return
	}
	if facts.Empty() {
		summary.SkippedEmpty++
		logging.Info(ctx, "no items to report")
		return
	}

	report, err := notify.Render(alert.Name, facts)
	if err != nil {
		summary.Failed++
		logging.Error(ctx, "render alert report failed", slog.Any("err", errs.Loggable(err)))
		return
	}

	delivered := s.deps.Notifier.Send(ctx, owner.Email, report)
	if delivered {
		summary.Sent++
	} else {
		summary.Undelivered++
	}
	s.publish(ctx, SubjectAlertSent, AlertSentEvent{
		AlertID:   alert.ID,
		UserID:    alert.OwnerID,
		AlertName: alert.Name,
		SentAt:    now,
		Delivered: delivered,
		LowItems:  len(facts.LowItems),
		DueTasks:  len(facts.DueTasks),
	})

	// The watermark advances even when delivery failed.
	advanced, err := s.deps.Alerts.AdvanceLastSent(ctx, alert.ID, now)
	if err != nil {
		summary.Failed++
		logging.Error(ctx, "persist alert last_sent failed", slog.Any("err", errs.Loggable(err)))
		return
	}
	if !advanced {
		logging.Warn(ctx, "alert last_sent already at or past this tick")
	}
}

func (s *Scheduler) finish(ctx context.Context, summary *TickSummary) {
	summary.FinishedAt = s.deps.Clock.Now()

	logging.Info(ctx, "alert tick finished",
		slog.Int("evaluated", summary.Evaluated),
		slog.Int("fired", summary.Fired),
		slog.Int("sent", summary.Sent),
		slog.Int("undelivered", summary.Undelivered),
		slog.Int("skipped_empty", summary.SkippedEmpty),
		slog.Int("failed", summary.Failed),
	)

	raw, err := json.Marshal(summary)
	if err != nil {
		logging.Warn(ctx, "encode tick summary failed", slog.Any("err", errs.Loggable(err)))
		return
	}
	if s.deps.Meta != nil {
		if err := s.deps.Meta.Set(ctx, LastTickKey, string(raw)); err != nil {
			logging.Warn(ctx, "store tick summary failed", slog.Any("err", errs.Loggable(err)))
		}
	}
	if s.deps.Events != nil {
		if err := s.deps.Events.Publish(ctx, SubjectTick, raw); err != nil {
			logging.Warn(ctx, "publish tick summary failed", slog.Any("err", errs.Loggable(err)))
		}
	}
}

func (s *Scheduler) publish(ctx context.Context, subject string, event any) {
	if s.deps.Events == nil {
		return
	}
	raw, err := json.Marshal(event)
	if err != nil {
		logging.Warn(ctx, "encode event failed", slog.String("subject", subject), slog.Any("err", errs.Loggable(err)))
		return
	}
	if err := s.deps.Events.Publish(ctx, subject, raw); err != nil {
		logging.Warn(ctx, "publish event failed", slog.String("subject", subject), slog.Any("err", errs.Loggable(err)))
	}
}

// LastTick reads the summary stored by the most recent tick.
func LastTick(ctx context.Context, meta ports.MetaStore) (TickSummary, bool, error) {
	raw, found, err := meta.Get(ctx, LastTickKey)
	if err != nil || !found {
		return TickSummary{}, false, err
	}

	var summary TickSummary
	if err := json.Unmarshal([]byte(raw), &summary); err != nil {
		return TickSummary{}, false, errs.Wrap(err, "decode tick summary")
	}
	return summary, true, nil
}
