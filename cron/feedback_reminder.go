package cron

import (
	"context"
	"time"

	"servicedesk/utils"

	"go.uber.org/zap"
)

// ReminderSender is the part of the service-order service the sweep needs.
type ReminderSender interface {
	SendFeedbackReminders(ctx context.Context, olderThan time.Duration) (int, error)
}

// StartFeedbackReminderCron reminds requesters of orders left completed but
// unconfirmed for longer than olderThan. It blocks until ctx is done.
func StartFeedbackReminderCron(ctx context.Context, svc ReminderSender, olderThan, interval time.Duration) {
	logger := utils.GetLogger()
	if interval <= 0 || olderThan <= 0 {
		logger.Warn("Feedback reminder cron disabled", zap.Duration("interval", interval), zap.Duration("olderThan", olderThan))
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("Feedback reminder cron shutdown signal received")
			return
		case <-ticker.C:
			runFeedbackReminders(ctx, svc, olderThan)
		}
	}
}

func runFeedbackReminders(ctx context.Context, svc ReminderSender, olderThan time.Duration) {
	sent, err := svc.SendFeedbackReminders(ctx, olderThan)
	if err != nil {
		utils.GetLogger().Error("Feedback reminder sweep failed", zap.Error(err))
		return
	}
	if sent > 0 {
		utils.GetLogger().Info("Feedback reminders sent", zap.Int("count", sent))
	}
}
