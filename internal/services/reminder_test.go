package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dhanadurga/backend/domain"
	"github.com/dhanadurga/backend/internal/clock"
	"github.com/dhanadurga/backend/internal/config"
	"github.com/dhanadurga/backend/repository"
	"github.com/dhanadurga/backend/repository/memory"
	"github.com/dhanadurga/backend/usecase/activity"
)

type sentMessage struct {
	channel, target, subject, body string
}

type captureNotifier struct {
	sent    []sentMessage
	failing bool
}

func (n *captureNotifier) Send(_ context.Context, channel, target, subject, body string) error {
	if n.failing {
		return errors.New("smtp unreachable")
	}
	n.sent = append(n.sent, sentMessage{channel, target, subject, body})
	return nil
}

type staticUserRepo struct {
	users []domain.User
}

func (r *staticUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	for i := range r.users {
		if r.users[i].ID == id {
			return &r.users[i], nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *staticUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	for i := range r.users {
		if r.users[i].Email == email {
			return &r.users[i], nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *staticUserRepo) Create(_ context.Context, user *domain.User) error {
	r.users = append(r.users, *user)
	return nil
}

func (r *staticUserRepo) UpdatePassword(context.Context, string, string) error { return nil }

func (r *staticUserRepo) List(context.Context) ([]domain.User, error) {
	return r.users, nil
}

var reminderNow = time.Date(2026, 9, 1, 9, 0, 0, 0, time.UTC)

type reminderFixture struct {
	engine   *ReminderEngine
	store    *activity.Store
	notifier *captureNotifier
}

func newReminderFixture(t *testing.T) *reminderFixture {
	t.Helper()
	docs := memory.NewStore()
	fixed := clock.Fixed{At: reminderNow}
	store := activity.New(docs, nil, fixed, nil)
	users := &staticUserRepo{users: []domain.User{
		{ID: "u1", Name: "Priya", Email: "priya@example.com"},
	}}
	notifier := &captureNotifier{}
	engine := NewReminderEngine(store, users, repository.NewAlertLog(docs), notifier, fixed, config.SchedulerConfig{}, nil)
	return &reminderFixture{engine: engine, store: store, notifier: notifier}
}

func (f *reminderFixture) seed(t *testing.T, title, start string) *domain.Activity {
	t.Helper()
	created, err := f.store.Create(context.Background(), &domain.Activity{
		UserID:    "u1",
		Title:     title,
		Date:      reminderNow.Format(domain.DateLayout),
		StartTime: start,
		Category:  domain.CategoryTask,
	})
	require.NoError(t, err)
	return created
}

func (f *reminderFixture) byChannel(channel string) []sentMessage {
	var out []sentMessage
	for _, msg := range f.notifier.sent {
		if msg.channel == channel {
			out = append(out, msg)
		}
	}
	return out
}

func TestReminderPassEmailWindow(t *testing.T) {
	ctx := context.Background()
	f := newReminderFixture(t)
	f.seed(t, "at the near edge", "09:00")
	f.seed(t, "inside the window", "09:05")
	f.seed(t, "at the far edge", "09:10")
	f.seed(t, "too far out", "09:11")
	f.seed(t, "already past", "08:59")

	f.engine.RunReminderPass(ctx)

	emails := f.byChannel(domain.ChannelEmail)
	require.Len(t, emails, 3)
	subjects := make([]string, 0, len(emails))
	for _, msg := range emails {
		subjects = append(subjects, msg.subject)
		assert.Equal(t, "priya@example.com", msg.target)
	}
	assert.ElementsMatch(t, []string{
		"Reminder: at the near edge",
		"Reminder: inside the window",
		"Reminder: at the far edge",
	}, subjects)
}

func TestReminderPassWhatsAppExactMinute(t *testing.T) {
	ctx := context.Background()
	f := newReminderFixture(t)
	f.seed(t, "exactly twenty out", "09:20")
	f.seed(t, "nineteen out", "09:19")
	f.seed(t, "twentyone out", "09:21")

	f.engine.RunReminderPass(ctx)

	messages := f.byChannel(domain.ChannelWhatsApp)
	require.Len(t, messages, 1)
	assert.Equal(t, "Reminder: exactly twenty out", messages[0].subject)
	assert.Empty(t, messages[0].target)
}

func TestReminderPassIsIdempotent(t *testing.T) {
	ctx := context.Background()
	f := newReminderFixture(t)
	f.seed(t, "once only", "09:05")

	f.engine.RunReminderPass(ctx)
	f.engine.RunReminderPass(ctx)

	assert.Len(t, f.byChannel(domain.ChannelEmail), 1)
}

func TestReminderRetriedAfterFailedDelivery(t *testing.T) {
	ctx := context.Background()
	f := newReminderFixture(t)
	f.seed(t, "flaky delivery", "09:05")

	f.notifier.failing = true
	f.engine.RunReminderPass(ctx)
	assert.Empty(t, f.notifier.sent)

	// No alert was recorded, so the next pass sends it.
	f.notifier.failing = false
	f.engine.RunReminderPass(ctx)
	assert.Len(t, f.byChannel(domain.ChannelEmail), 1)
}

func TestReminderSkipsCompletedItems(t *testing.T) {
	ctx := context.Background()
	f := newReminderFixture(t)
	item := f.seed(t, "done already", "09:05")
	_, err := f.store.UpdateByID(ctx, item.ID, "u1", map[string]interface{}{
		"status": domain.StatusCompleted,
	})
	require.NoError(t, err)

	f.engine.RunReminderPass(ctx)
	assert.Empty(t, f.notifier.sent)
}

func TestReminderBodyCarriesDescription(t *testing.T) {
	ctx := context.Background()
	f := newReminderFixture(t)
	_, err := f.store.Create(ctx, &domain.Activity{
		UserID:      "u1",
		Title:       "standup",
		Description: "bring the sprint notes",
		Date:        reminderNow.Format(domain.DateLayout),
		StartTime:   "09:05",
		Category:    domain.CategoryMeeting,
	})
	require.NoError(t, err)

	f.engine.RunReminderPass(ctx)

	emails := f.byChannel(domain.ChannelEmail)
	require.Len(t, emails, 1)
	assert.Contains(t, emails[0].body, "standup starts at 09:05.")
	assert.Contains(t, emails[0].body, "bring the sprint notes")
}

func TestDailySummary(t *testing.T) {
	ctx := context.Background()
	f := newReminderFixture(t)
	done := f.seed(t, "morning run", "06:30")
	_, err := f.store.UpdateByID(ctx, done.ID, "u1", map[string]interface{}{
		"status": domain.StatusCompleted,
	})
	require.NoError(t, err)
	f.seed(t, "evening review", "20:00")

	f.engine.RunDailySummary(ctx)

	emails := f.byChannel(domain.ChannelEmail)
	require.Len(t, emails, 1)
	assert.Equal(t, "priya@example.com", emails[0].target)
	assert.Contains(t, emails[0].subject, "2026-09-01")
	assert.Contains(t, emails[0].body, "06:30 morning run")
	assert.Contains(t, emails[0].body, "20:00 evening review")
	assert.Contains(t, emails[0].body, "<br>")

	messages := f.byChannel(domain.ChannelWhatsApp)
	require.Len(t, messages, 1)
	assert.Contains(t, messages[0].body, "Still pending:")
}

func TestDailySummarySkipsEmptyDay(t *testing.T) {
	f := newReminderFixture(t)
	f.engine.RunDailySummary(context.Background())
	assert.Empty(t, f.notifier.sent)
}
