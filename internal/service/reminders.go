package service

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/erazemk/gegenstand/internal/metrics"
	"github.com/erazemk/gegenstand/internal/model"
	"github.com/erazemk/gegenstand/internal/notify"
	"github.com/erazemk/gegenstand/internal/store"
)

// ReminderMessage is the notification text for a due item.
func ReminderMessage(item *model.Item) string {
	return fmt.Sprintf(`Reminder: "%s" can be discarded or sold from %s.`, item.Name, item.DisposeOn)
}

// outboxSize bounds the mail queue drained by Run.
const outboxSize = 64

// Reminders fires one notification per item once its disposal date arrives.
type Reminders struct {
	db       *sql.DB
	notifier notify.Notifier

	// Serializes sweeps of this process. Mail is never sent while it is held.
	mu sync.Mutex

	outbox  chan delivery
	queuing atomic.Bool
}

type delivery struct {
	item    model.Item
	message string
}

// NewReminders returns a sweep writing to db and mailing through notifier,
// which may be nil.
func NewReminders(db *sql.DB, notifier notify.Notifier) *Reminders {
	if notifier == nil {
		notifier = notify.Noop{}
	}
	return &Reminders{db: db, notifier: notifier, outbox: make(chan delivery, outboxSize)}
}

// RunSweep writes a notification for every item due on or before today that
// has reminders enabled and has not been reminded yet, then marks it. It
// returns how many notifications were written.
//
// A failure to mark an item is logged and the sweep moves on, so that item
// may be reminded again by a later sweep.
//
// Marked items are mailed after the sweep lock is released. While Run is
// active the mail goes to its queue; otherwise it is sent before returning.
func (r *Reminders) RunSweep(ctx context.Context, today model.Date) (int, error) {
	fired, batch, err := r.sweep(ctx, today)
	r.dispatch(ctx, batch)
	return fired, err
}

func (r *Reminders) sweep(ctx context.Context, today model.Date) (int, []delivery, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	start := time.Now()
	metrics.SweepRunsTotal.Inc()
	defer func() { metrics.SweepDuration.Observe(time.Since(start).Seconds()) }()

	due, err := store.ListDueItems(ctx, r.db, today)
	if err != nil {
		return 0, nil, fmt.Errorf("reminder sweep: %w", err)
	}

	fired := 0
	var batch []delivery
	for i := range due {
		item := &due[i]
		if err := ctx.Err(); err != nil {
			return fired, batch, err
		}

		message := ReminderMessage(item)
		if _, err := store.CreateNotification(ctx, r.db, item.ID, message); err != nil {
			metrics.SweepFailuresTotal.WithLabelValues("notify").Inc()
			slog.Error("failed to write reminder", "item", item.ID, "error", err)
			continue
		}
		fired++
		metrics.RemindersFiredTotal.Inc()

		ok, err := store.MarkReminderSent(ctx, r.db, item.ID)
		if err != nil {
			metrics.SweepFailuresTotal.WithLabelValues("mark").Inc()
			slog.Error("failed to mark reminder sent", "item", item.ID, "error", err)
			continue
		}
		if !ok {
			slog.Warn("item gone or already reminded", "item", item.ID)
			continue
		}

		batch = append(batch, delivery{item: *item, message: message})
	}

	if fired > 0 {
		slog.Info("reminder sweep finished", "date", today.String(), "fired", fired)
	}
	return fired, batch, nil
}

// dispatch hands mail to Run's queue when it is draining one and sends it
// inline otherwise, or when the queue is full.
func (r *Reminders) dispatch(ctx context.Context, batch []delivery) {
	for _, d := range batch {
		if r.queuing.Load() {
			select {
			case r.outbox <- d:
				continue
			default:
				slog.Warn("reminder mail queue full, sending inline", "item", d.item.ID)
			}
		}
		r.deliver(ctx, d)
	}
}

func (r *Reminders) deliver(ctx context.Context, d delivery) {
	owner, err := store.GetUser(ctx, r.db, d.item.OwnerID)
	if err != nil || owner == nil {
		slog.Warn("reminder owner lookup failed", "item", d.item.ID, "error", err)
		return
	}
	if err := r.notifier.Send(ctx, owner, &d.item, d.message); err != nil {
		metrics.SweepFailuresTotal.WithLabelValues("deliver").Inc()
		slog.Warn("reminder delivery failed", "item", d.item.ID, "error", err)
	}
}

// drainOutbox sends queued mail until ctx is cancelled.
func (r *Reminders) drainOutbox(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case d := <-r.outbox:
			r.deliver(ctx, d)
		}
	}
}

// Run sweeps once immediately and then on every tick of interval until ctx
// is cancelled. today supplies the current date; nil means model.Today.
// While it runs, reminder mail from every sweep is sent by a background
// worker instead of by the sweeping caller.
func (r *Reminders) Run(ctx context.Context, interval time.Duration, today func() model.Date) {
	if today == nil {
		today = model.Today
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		r.drainOutbox(ctx)
	}()
	r.queuing.Store(true)
	defer func() {
		r.queuing.Store(false)
		wg.Wait()
		if n := len(r.outbox); n > 0 {
			slog.Warn("reminder mail left unsent", "count", n)
		}
	}()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	slog.Info("reminder scheduler started", "interval", interval)
	for {
		if _, err := r.RunSweep(ctx, today()); err != nil && ctx.Err() == nil {
			slog.Error("reminder sweep failed", "error", err)
		}

		select {
		case <-ctx.Done():
			slog.Info("reminder scheduler stopped")
			return
		case <-ticker.C:
		}
	}
}
