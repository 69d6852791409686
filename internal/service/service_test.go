package service

import (
	"context"
	"database/sql"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/erazemk/gegenstand/internal/auth"
	"github.com/erazemk/gegenstand/internal/db"
	"github.com/erazemk/gegenstand/internal/imaging"
	"github.com/erazemk/gegenstand/internal/model"
	"github.com/erazemk/gegenstand/internal/store"
)

var testToday = model.NewDate(2026, time.October, 15)

type recordingNotifier struct {
	mu   sync.Mutex
	sent []string
}

func (n *recordingNotifier) Send(_ context.Context, owner *model.User, _ *model.Item, message string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, owner.Email+": "+message)
	return nil
}

type fixture struct {
	db            *sql.DB
	tokens        *auth.Tokens
	accounts      *Accounts
	items         *Items
	reminders     *Reminders
	notifications *Notifications
	notifier      *recordingNotifier
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	database := db.NewTestDB(t)
	tokens := auth.NewTokens("test-secret", time.Hour)
	notifier := &recordingNotifier{}
	reminders := NewReminders(database, notifier)
	return &fixture{
		db:            database,
		tokens:        tokens,
		accounts:      NewAccounts(database, tokens),
		items:         NewItems(database, imaging.Options{}),
		reminders:     reminders,
		notifications: NewNotifications(database, reminders, func() model.Date { return testToday }),
		notifier:      notifier,
	}
}

func (f *fixture) user(t *testing.T, email string) *model.User {
	t.Helper()
	user, err := f.accounts.CreateUser(context.Background(), "Test", email, "password")
	require.NoError(t, err)
	return user
}

func validInput(name string) model.ItemInput {
	return model.ItemInput{
		Name:       name,
		Location:   "Keller",
		Importance: model.ImportanceImportant,
		Category:   model.CategoryTools,
	}
}

func date(y int, m time.Month, d int) *model.Date {
	v := model.NewDate(y, m, d)
	return &v
}

func boolPtr(b bool) *bool { return &b }

// setReminderSent bypasses the service to put an item into a given state.
func setReminderSent(t *testing.T, database *sql.DB, id int64) {
	t.Helper()
	ok, err := store.MarkReminderSent(context.Background(), database, id)
	require.NoError(t, err)
	require.True(t, ok)
}
