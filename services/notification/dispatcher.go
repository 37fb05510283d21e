package notification

import (
	"context"
	"errors"
	"sync"

	userRepo "servicedesk/database/repository/user"
	"servicedesk/models"
	"servicedesk/services/tasks"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// Enqueuer is satisfied by *asynq.Client.
type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// Dispatcher turns lifecycle events into WhatsApp messages for the requester
// and push messages for the technician. Notify returns at once; all lookups
// and sends happen in the background and failures are only logged.
type Dispatcher struct {
	Users    userRepo.UserRepository
	WhatsApp *WhatsAppClient
	// Queue is optional; without it messages are sent from a goroutine.
	Queue  Enqueuer
	Push   PushSender
	Logger *zap.Logger

	wg sync.WaitGroup
}

func (d *Dispatcher) logger() *zap.Logger {
	if d.Logger != nil {
		return d.Logger
	}
	return zap.NewNop()
}

func (d *Dispatcher) Notify(ctx context.Context, order models.ServiceOrder, kind models.NotificationKind) {
	bg := context.WithoutCancel(ctx)
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		d.dispatch(bg, order, kind)
	}()
}

// Wait blocks until every background dispatch has finished.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

func (d *Dispatcher) dispatch(ctx context.Context, order models.ServiceOrder, kind models.NotificationKind) {
	if kind == models.NotifyAssigned {
		d.pushToTechnician(ctx, order)
	}

	body := requesterMessage(order, kind)
	if body == "" {
		return
	}
	requester, err := d.Users.GetByID(ctx, order.UserID)
	if err != nil {
		d.logger().Warn("Notification skipped: requester lookup failed",
			zap.String("orderId", order.ID), zap.String("kind", string(kind)), zap.Error(err))
		return
	}
	if requester.Phone == "" {
		d.logger().Info("Notification skipped: requester has no phone",
			zap.String("orderId", order.ID), zap.String("userId", requester.UID))
		return
	}

	payload := models.WhatsAppPayload{
		OrderID:     order.ID,
		OrderNumber: order.OrderNumber,
		Kind:        kind,
		Phone:       requester.Phone,
		Body:        body,
	}

	if d.Queue != nil {
		task, opts, err := tasks.NewWhatsAppTask(payload)
		if err == nil {
			if _, err = d.Queue.EnqueueContext(ctx, task, opts...); err == nil {
				return
			}
		}
		d.logger().Warn("Enqueue failed, sending inline", zap.String("orderId", order.ID), zap.Error(err))
	}
	if err := d.Deliver(ctx, payload); err != nil && !errors.Is(err, errWhatsAppNotConfigured) {
		d.logger().Warn("WhatsApp delivery failed",
			zap.String("orderId", payload.OrderID), zap.String("kind", string(kind)), zap.Error(err))
	}
}

var errWhatsAppNotConfigured = errors.New("whatsapp is not configured")

// Deliver sends one queued message. It is also the asynq task handler body.
func (d *Dispatcher) Deliver(ctx context.Context, p models.WhatsAppPayload) error {
	if !d.WhatsApp.Configured() {
		d.logger().Debug("WhatsApp not configured, dropping message", zap.String("orderId", p.OrderID))
		return errWhatsAppNotConfigured
	}
	if err := d.WhatsApp.SendText(ctx, p.Phone, p.Body); err != nil {
		return err
	}
	d.logger().Info("WhatsApp notification sent", zap.String("orderId", p.OrderID), zap.String("kind", string(p.Kind)))
	return nil
}

func (d *Dispatcher) pushToTechnician(ctx context.Context, order models.ServiceOrder) {
	if d.Push == nil || order.TechnicianID == "" {
		return
	}
	tech, err := d.Users.GetByID(ctx, order.TechnicianID)
	if err != nil || tech.DeviceToken == "" {
		return
	}
	if _, err := d.Push.Send(ctx, assignmentPush(tech.DeviceToken, order.ID, order.OrderNumber, order.Title)); err != nil {
		d.logger().Warn("Push to technician failed",
			zap.String("orderId", order.ID), zap.String("technicianId", tech.UID), zap.Error(err))
	}
}
