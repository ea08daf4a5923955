package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/dhanadurga/backend/domain"
	"github.com/dhanadurga/backend/internal/clock"
	"github.com/dhanadurga/backend/internal/config"
	"github.com/dhanadurga/backend/repository"
	"github.com/dhanadurga/backend/usecase"
	"github.com/dhanadurga/backend/usecase/activity"
)

// ReminderEngine polls for items whose start time is approaching and
// dispatches reminders over email and WhatsApp, plus an evening summary.
// A (task, user, method) alert is recorded only after a successful send,
// so a failed delivery is retried on the next poll.
type ReminderEngine struct {
	activities *activity.Store
	users      repository.UserRepository
	alerts     repository.AlertLog
	notifier   usecase.Notifier
	clock      clock.Clock
	cfg        config.SchedulerConfig
	cron       *cron.Cron
	logger     *zap.Logger
}

func NewReminderEngine(
	activities *activity.Store,
	users repository.UserRepository,
	alerts repository.AlertLog,
	notifier usecase.Notifier,
	clk clock.Clock,
	cfg config.SchedulerConfig,
	logger *zap.Logger,
) *ReminderEngine {
	if logger == nil {
		logger = zap.NewNop()
	}
	if clk == nil {
		clk = clock.System{}
	}
	if cfg.ReminderInterval <= 0 {
		cfg.ReminderInterval = time.Minute
	}
	if cfg.EmailLeadMinutes <= 0 {
		cfg.EmailLeadMinutes = 10
	}
	if cfg.WhatsAppLeadMinutes <= 0 {
		cfg.WhatsAppLeadMinutes = 20
	}
	if cfg.SummaryHour <= 0 || cfg.SummaryHour > 23 {
		cfg.SummaryHour = 21
	}

	re := &ReminderEngine{
		activities: activities,
		users:      users,
		alerts:     alerts,
		notifier:   notifier,
		clock:      clk,
		cfg:        cfg,
		cron:       cron.New(cron.WithSeconds()),
		logger:     logger,
	}

	poll := fmt.Sprintf("@every %ds", int(cfg.ReminderInterval.Seconds()))
	_, _ = re.cron.AddFunc(poll, func() {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.ReminderInterval)
		defer cancel()
		re.RunReminderPass(ctx)
	})
	summarySpec := fmt.Sprintf("0 0 %d * * *", cfg.SummaryHour)
	_, _ = re.cron.AddFunc(summarySpec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()
		re.RunDailySummary(ctx)
	})

	return re
}

func (re *ReminderEngine) Start() {
	if re == nil || re.cron == nil {
		return
	}
	re.cron.Start()
	re.logger.Info("reminder engine started",
		zap.Duration("interval", re.cfg.ReminderInterval),
		zap.Int("summary_hour", re.cfg.SummaryHour))
}

func (re *ReminderEngine) Stop(ctx context.Context) {
	if re == nil || re.cron == nil {
		return
	}
	stopCtx := re.cron.Stop()
	select {
	case <-stopCtx.Done():
	case <-ctx.Done():
	}
	re.logger.Info("reminder engine stopped")
}

// RunReminderPass runs both channel checks once. The email window is
// inclusive on both ends, so an item whose start time equals now or
// now+lead still qualifies; WhatsApp fires only on the exact minute.
func (re *ReminderEngine) RunReminderPass(ctx context.Context) {
	now := re.clock.Now()
	today := now.Format(domain.DateLayout)

	windowEnd := now.Add(time.Duration(re.cfg.EmailLeadMinutes) * time.Minute)
	re.dispatchMatching(ctx, domain.ChannelEmail, repository.Filter{
		Eq:  map[string]string{"date": today, "status": domain.StatusPending},
		Gte: map[string]string{"start_time": now.Format(domain.TimeLayout)},
		Lte: map[string]string{"start_time": windowEnd.Format(domain.TimeLayout)},
	})

	exact := now.Add(time.Duration(re.cfg.WhatsAppLeadMinutes) * time.Minute)
	re.dispatchMatching(ctx, domain.ChannelWhatsApp, repository.Filter{
		Eq: map[string]string{
			"date":       today,
			"status":     domain.StatusPending,
			"start_time": exact.Format(domain.TimeLayout),
		},
	})
}

func (re *ReminderEngine) dispatchMatching(ctx context.Context, channel string, filter repository.Filter) {
	items, err := re.activities.Matching(ctx, filter)
	if err != nil {
		re.logger.Error("reminder scan failed", zap.String("channel", channel), zap.Error(err))
		return
	}
	for i := range items {
		re.remind(ctx, channel, &items[i])
	}
}

func (re *ReminderEngine) remind(ctx context.Context, channel string, item *domain.Activity) {
	sent, err := re.alerts.AlreadySent(ctx, item.UserID, item.ID, channel)
	if err != nil {
		re.logger.Error("alert lookup failed", zap.String("task_id", item.ID), zap.Error(err))
		return
	}
	if sent {
		return
	}

	target := ""
	if channel == domain.ChannelEmail {
		user, err := re.users.GetByID(ctx, item.UserID)
		if err != nil {
			re.logger.Warn("reminder owner not found", zap.String("user_id", item.UserID))
			return
		}
		target = user.Email
	}

	subject := fmt.Sprintf("Reminder: %s", item.Title)
	body := reminderBody(item)
	if err := re.notifier.Send(ctx, channel, target, subject, body); err != nil {
		re.logger.Warn("reminder delivery failed, will retry",
			zap.String("channel", channel),
			zap.String("task_id", item.ID),
			zap.Error(err))
		return
	}

	if err := re.alerts.Record(ctx, domain.AlertRecord{
		UserID:      item.UserID,
		TaskID:      item.ID,
		Method:      channel,
		AlertSentAt: re.clock.Now(),
	}); err != nil {
		re.logger.Error("alert record failed", zap.String("task_id", item.ID), zap.Error(err))
	}
}

// RunDailySummary sends every user their day in review over both
// channels. Summaries are not deduplicated; the cron spec fires once a
// day.
func (re *ReminderEngine) RunDailySummary(ctx context.Context) {
	users, err := re.users.List(ctx)
	if err != nil {
		re.logger.Error("summary user listing failed", zap.Error(err))
		return
	}
	today := re.clock.Now().Format(domain.DateLayout)
	for i := range users {
		re.summarize(ctx, &users[i], today)
	}
}

func (re *ReminderEngine) summarize(ctx context.Context, user *domain.User, today string) {
	items, err := re.activities.ForDate(ctx, user.ID, today)
	if err != nil {
		re.logger.Error("summary scan failed", zap.String("user_id", user.ID), zap.Error(err))
		return
	}
	// Owners with nothing scheduled today get no summary.
	if len(items) == 0 {
		return
	}

	var completed, pending []string
	for _, item := range items {
		line := item.Title
		if item.StartTime != "" {
			line = item.StartTime + " " + line
		}
		if item.IsCompleted() {
			completed = append(completed, line)
		} else {
			pending = append(pending, line)
		}
	}

	body := summaryBody(today, completed, pending)
	subject := fmt.Sprintf("Daily summary for %s", today)
	if err := re.notifier.Send(ctx, domain.ChannelEmail, user.Email, subject, strings.ReplaceAll(body, "\n", "<br>")); err != nil {
		re.logger.Warn("summary email failed", zap.String("user_id", user.ID), zap.Error(err))
	}
	if err := re.notifier.Send(ctx, domain.ChannelWhatsApp, "", subject, body); err != nil {
		re.logger.Warn("summary whatsapp failed", zap.String("user_id", user.ID), zap.Error(err))
	}
}

func reminderBody(item *domain.Activity) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s starts at %s.", item.Title, item.StartTime)
	if item.Description != "" {
		b.WriteString("\n" + item.Description)
	}
	return b.String()
}

func summaryBody(today string, completed, pending []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Here is your day in review for %s.\n", today)
	b.WriteString("\nCompleted:\n")
	if len(completed) == 0 {
		b.WriteString("- nothing yet\n")
	}
	for _, line := range completed {
		b.WriteString("- " + line + "\n")
	}
	b.WriteString("\nStill pending:\n")
	if len(pending) == 0 {
		b.WriteString("- all clear\n")
	}
	for _, line := range pending {
		b.WriteString("- " + line + "\n")
	}
	return b.String()
}
