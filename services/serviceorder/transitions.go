package serviceorder

import (
	"context"
	"strings"
	"time"

	"servicedesk/apperrors"
	"servicedesk/models"

	"go.uber.org/zap"
)

// resolveFunc picks the event to apply once the current order is known.
type resolveFunc func(current models.ServiceOrder) (Event, error)

func fixed(ev Event) resolveFunc {
	return func(models.ServiceOrder) (Event, error) { return ev, nil }
}

// apply runs one transition as a single read-guard-write against the store.
// History and notifications happen only after the write is committed, since
// the store may invoke the guard more than once.
func (s *DefaultServiceOrderService) apply(ctx context.Context, id string, resolve resolveFunc, in Input) (*models.ServiceOrder, error) {
	now := s.now()
	var outcome *Outcome

	updated, err := s.Orders.Mutate(ctx, id, func(current models.ServiceOrder) (*models.OrderPatch, error) {
		ev, err := resolve(current)
		if err != nil {
			return nil, err
		}
		o, err := Plan(current, ev, in, now)
		if err != nil {
			return nil, err
		}
		outcome = o
		return o.Patch, nil
	})
	if err != nil {
		s.logRejection(id, in.Actor, err)
		return nil, err
	}

	s.record(ctx, models.StatusChange{
		OrderID:     updated.ID,
		OrderNumber: updated.OrderNumber,
		Event:       string(outcome.Event),
		FromStatus:  outcome.From,
		Via:         outcome.Via,
		ToStatus:    outcome.To,
		Actor:       in.Actor.Snapshot(),
		Note:        noteFor(in),
		Version:     updated.Version,
		CreatedAt:   now,
	})
	s.logger().Info("Service order transition",
		zap.String("orderId", updated.ID),
		zap.String("event", string(outcome.Event)),
		zap.String("from", string(outcome.From)),
		zap.String("to", string(outcome.To)),
		zap.String("actor", in.Actor.UID))

	if outcome.Notify != "" && s.Notifier != nil {
		s.Notifier.Notify(ctx, *updated, outcome.Notify)
	}
	return updated, nil
}

func (s *DefaultServiceOrderService) logRejection(id string, actor models.User, err error) {
	fields := []zap.Field{zap.String("orderId", id), zap.String("actor", actor.UID), zap.Error(err)}
	switch apperrors.HTTPStatus(err) {
	case 400, 403, 404, 409:
		s.logger().Info("Service order transition rejected", fields...)
	default:
		s.logger().Error("Service order transition failed", fields...)
	}
}

func noteFor(in Input) string {
	for _, v := range []string{in.Reason, in.Notes, in.Feedback} {
		if t := strings.TrimSpace(v); t != "" {
			return t
		}
	}
	return ""
}

func (s *DefaultServiceOrderService) Assign(ctx context.Context, actor models.User, id, technicianID string) (*models.ServiceOrder, error) {
	in := Input{Actor: actor, TechnicianID: strings.TrimSpace(technicianID)}
	if in.TechnicianID != "" {
		tech, err := s.Users.GetByID(ctx, in.TechnicianID)
		switch {
		case err == nil:
			in.Technician = tech
		case isNotFound(err):
			// left nil; the guard reports it once the edge is known to exist
		default:
			return nil, err
		}
	}
	return s.apply(ctx, id, fixed(EventAssign), in)
}

func (s *DefaultServiceOrderService) Start(ctx context.Context, actor models.User, id string) (*models.ServiceOrder, error) {
	return s.apply(ctx, id, fixed(EventStart), Input{Actor: actor})
}

func (s *DefaultServiceOrderService) Pause(ctx context.Context, actor models.User, id, reason string) (*models.ServiceOrder, error) {
	return s.apply(ctx, id, fixed(EventPause), Input{Actor: actor, Reason: reason})
}

func (s *DefaultServiceOrderService) Resume(ctx context.Context, actor models.User, id string) (*models.ServiceOrder, error) {
	return s.apply(ctx, id, fixed(EventResume), Input{Actor: actor})
}

func (s *DefaultServiceOrderService) Complete(ctx context.Context, actor models.User, id, notes string) (*models.ServiceOrder, error) {
	return s.apply(ctx, id, fixed(EventComplete), Input{Actor: actor, Notes: notes})
}

func (s *DefaultServiceOrderService) Confirm(ctx context.Context, actor models.User, id string, rating *int, feedback string) (*models.ServiceOrder, error) {
	return s.apply(ctx, id, fixed(EventConfirm), Input{Actor: actor, Rating: rating, Feedback: feedback})
}

func (s *DefaultServiceOrderService) Reopen(ctx context.Context, actor models.User, id, reason string) (*models.ServiceOrder, error) {
	return s.apply(ctx, id, fixed(EventReopen), Input{Actor: actor, Reason: reason})
}

func (s *DefaultServiceOrderService) Cancel(ctx context.Context, actor models.User, id, reason string) (*models.ServiceOrder, error) {
	return s.apply(ctx, id, fixed(EventCancel), Input{Actor: actor, Reason: reason})
}

// ChangeStatus is the generic transition: the target status is resolved into
// the event that reaches it from the order's current status.
func (s *DefaultServiceOrderService) ChangeStatus(ctx context.Context, actor models.User, id string, req models.StatusChangeRequest) (*models.ServiceOrder, error) {
	in := Input{
		Actor:    actor,
		Reason:   req.Reason,
		Notes:    req.Notes,
		Rating:   req.Rating,
		Feedback: req.Feedback,
	}
	// Clients send the pause/cancel/reopen reason as notes too.
	if strings.TrimSpace(in.Reason) == "" {
		in.Reason = req.Notes
	}
	return s.apply(ctx, id, func(current models.ServiceOrder) (Event, error) {
		return EventForTarget(current.Status, req.Status)
	}, in)
}

func (s *DefaultServiceOrderService) SubmitFeedback(ctx context.Context, actor models.User, id string, rating int, feedback string) (*models.ServiceOrder, error) {
	now := s.now()
	updated, err := s.Orders.Mutate(ctx, id, func(current models.ServiceOrder) (*models.OrderPatch, error) {
		return PlanFeedback(current, actor, rating, feedback, now)
	})
	if err != nil {
		s.logRejection(id, actor, err)
		return nil, err
	}
	s.record(ctx, models.StatusChange{
		OrderID:     updated.ID,
		OrderNumber: updated.OrderNumber,
		Event:       "feedback",
		FromStatus:  updated.Status,
		ToStatus:    updated.Status,
		Actor:       actor.Snapshot(),
		Note:        strings.TrimSpace(feedback),
		Version:     updated.Version,
		CreatedAt:   now,
	})
	return updated, nil
}

// SendFeedbackReminders notifies requesters whose orders have sat completed
// and unconfirmed for longer than olderThan. Each order is reminded once.
func (s *DefaultServiceOrderService) SendFeedbackReminders(ctx context.Context, olderThan time.Duration) (int, error) {
	now := s.now()
	cutoff := now.Add(-olderThan)

	orders, err := s.Orders.List(ctx, models.ServiceOrderFilter{Status: models.StatusCompleted})
	if err != nil {
		return 0, err
	}

	sent := 0
	for _, o := range orders {
		if o.FeedbackReminderSentAt != nil || o.CompletedAt == nil || o.CompletedAt.After(cutoff) {
			continue
		}
		stamped := false
		updated, err := s.Orders.Mutate(ctx, o.ID, func(current models.ServiceOrder) (*models.OrderPatch, error) {
			stamped = false
			if current.Status != models.StatusCompleted || current.FeedbackReminderSentAt != nil {
				return nil, nil
			}
			stamped = true
			return &models.OrderPatch{FeedbackReminderSentAt: &now, UpdatedAt: now}, nil
		})
		if err != nil {
			s.logger().Warn("Failed to stamp feedback reminder", zap.String("orderId", o.ID), zap.Error(err))
			continue
		}
		if !stamped {
			continue
		}
		if s.Notifier != nil {
			s.Notifier.Notify(ctx, *updated, models.NotifyFeedbackReminder)
		}
		sent++
	}
	return sent, nil
}

func isNotFound(err error) bool {
	_, ok := apperrors.IsNotFoundError(err)
	return ok
}
