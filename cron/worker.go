package cron

import (
	"context"
	"fmt"
	"time"

	"servicedesk/config"
	"servicedesk/models"
	"servicedesk/services/tasks"
	"servicedesk/utils"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// Deliverer sends one queued WhatsApp message.
type Deliverer interface {
	Deliver(ctx context.Context, p models.WhatsAppPayload) error
}

// QueueRedisOpt is the asynq connection shared by the client and the worker.
func QueueRedisOpt() asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisQueueDB,
	}
}

// NewNotificationMux routes notification tasks to d.
func NewNotificationMux(d Deliverer) *asynq.ServeMux {
	mux := asynq.NewServeMux()
	mux.HandleFunc(tasks.TypeWhatsAppSend, handleWhatsAppTask(d))
	return mux
}

// InitNotificationWorker runs the async worker in background. The returned
// server must be shut down by the caller.
func InitNotificationWorker(d Deliverer) *asynq.Server {
	logger := utils.GetLogger()
	srv := asynq.NewServer(
		QueueRedisOpt(),
		asynq.Config{
			Concurrency: 5,
			Queues: map[string]int{
				"default": 1,
			},
		},
	)
	mux := NewNotificationMux(d)

	go func() {
		logger.Info("Starting notification worker")
		const maxAttempts = 5

		for attempts := 1; attempts <= maxAttempts; attempts++ {
			err := srv.Run(mux)
			if err == nil {
				return
			}
			logger.Error("Notification worker failed to start",
				zap.Int("attempt", attempts), zap.Error(err))
			if attempts == maxAttempts {
				logger.Error("Notification worker gave up; messages will queue until restart")
				return
			}
			time.Sleep(time.Duration(attempts*2) * time.Second)
		}
	}()
	return srv
}

func handleWhatsAppTask(d Deliverer) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		p, err := tasks.ParseWhatsAppTask(task)
		if err != nil {
			utils.GetLogger().Warn("Invalid notification payload", zap.Error(err))
			return fmt.Errorf("invalid payload: %v: %w", err, asynq.SkipRetry)
		}
		if err := d.Deliver(ctx, p); err != nil {
			utils.GetLogger().Warn("WhatsApp delivery failed",
				zap.String("orderId", p.OrderID), zap.String("kind", string(p.Kind)), zap.Error(err))
			return fmt.Errorf("deliver %s: %v: %w", p.OrderID, err, asynq.SkipRetry)
		}
		return nil
	}
}
