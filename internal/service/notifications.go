package service

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/erazemk/gegenstand/internal/model"
	"github.com/erazemk/gegenstand/internal/store"
)

// Notifications serves the reminder feed. Reading the feed runs a sweep
// first so fresh reminders show up without waiting for the scheduler.
type Notifications struct {
	db        *sql.DB
	reminders *Reminders
	today     func() model.Date
}

// NewNotifications returns a feed service. today defaults to model.Today.
func NewNotifications(db *sql.DB, reminders *Reminders, today func() model.Date) *Notifications {
	if today == nil {
		today = model.Today
	}
	return &Notifications{db: db, reminders: reminders, today: today}
}

// List sweeps, then returns notifications newest first.
func (s *Notifications) List(ctx context.Context, unseenOnly bool) ([]model.Notification, error) {
	if s.reminders != nil {
		if _, err := s.reminders.RunSweep(ctx, s.today()); err != nil {
			slog.Error("on-demand reminder sweep failed", "error", err)
		}
	}

	notifications, err := store.ListNotifications(ctx, s.db, unseenOnly)
	if err != nil {
		return nil, err
	}
	if notifications == nil {
		notifications = []model.Notification{}
	}
	return notifications, nil
}

// MarkSeen acknowledges a notification. Repeating it is harmless.
func (s *Notifications) MarkSeen(ctx context.Context, id int64) (*model.Notification, error) {
	ok, err := store.MarkNotificationSeen(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNotFound
	}

	n, err := store.GetNotification(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if n == nil {
		return nil, ErrNotFound
	}
	return n, nil
}
