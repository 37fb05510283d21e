// File: services/serviceorder/lifecycle.go
package serviceorder

import (
	"fmt"
	"strings"
	"time"

	"servicedesk/apperrors"
	"servicedesk/models"
)

// Event is a status-changing operation requested on a service order.
type Event string

const (
	EventAssign   Event = "assign"
	EventStart    Event = "start"
	EventPause    Event = "pause"
	EventResume   Event = "resume"
	EventComplete Event = "complete"
	EventConfirm  Event = "confirm"
	EventReopen   Event = "reopen"
	EventCancel   Event = "cancel"
)

var AllEvents = []Event{
	EventAssign, EventStart, EventPause, EventResume,
	EventComplete, EventConfirm, EventReopen, EventCancel,
}

// transitions is the only place legal edges are declared. A (status, event)
// pair that is absent here is a conflict. Cancelled and confirmed have no
// outgoing edges.
var transitions = map[models.OrderStatus]map[Event]models.OrderStatus{
	models.StatusOpen: {
		EventAssign: models.StatusAssigned,
		EventCancel: models.StatusCancelled,
	},
	models.StatusAssigned: {
		EventStart:  models.StatusInProgress,
		EventCancel: models.StatusCancelled,
	},
	models.StatusInProgress: {
		EventPause:    models.StatusPaused,
		EventComplete: models.StatusCompleted,
		EventCancel:   models.StatusCancelled,
	},
	models.StatusPaused: {
		EventResume: models.StatusInProgress,
		EventCancel: models.StatusCancelled,
	},
	models.StatusCompleted: {
		EventConfirm: models.StatusConfirmed,
		EventReopen:  models.StatusInProgress,
	},
}

// Target returns the status an event leads to from current, if any.
func Target(current models.OrderStatus, ev Event) (models.OrderStatus, bool) {
	to, ok := transitions[current.Normalize()][ev]
	return to, ok
}

// Input carries the guard fields an event may need.
type Input struct {
	Actor models.User

	// Technician is the resolved assignee for EventAssign; nil when the id
	// did not resolve to a user.
	TechnicianID string
	Technician   *models.User

	Reason   string
	Notes    string
	Rating   *int
	Feedback string
}

// Outcome is a planned transition: the edge taken and the partial update that
// realises it.
type Outcome struct {
	Event  Event
	From   models.OrderStatus
	Via    models.OrderStatus
	To     models.OrderStatus
	Patch  *models.OrderPatch
	Notify models.NotificationKind
}

// Plan checks authorization, the transition table and the guard fields for
// ev against order, in that order, and returns the resulting partial update.
// It never mutates order.
func Plan(order models.ServiceOrder, ev Event, in Input, now time.Time) (*Outcome, error) {
	current := order.Status.Normalize()

	if err := authorize(order, ev, in.Actor); err != nil {
		return nil, err
	}
	to, ok := Target(current, ev)
	if !ok {
		return nil, apperrors.NewConflictError(string(current), string(ev))
	}

	out := &Outcome{Event: ev, From: current, To: to}
	patch := &models.OrderPatch{Status: &to, UpdatedAt: now}

	switch ev {
	case EventAssign:
		tech, err := guardTechnician(in)
		if err != nil {
			return nil, err
		}
		patch.TechnicianID = &tech.UID
		patch.TechnicianName = &tech.Name
		out.Notify = models.NotifyAssigned

	case EventStart:
		if order.TechnicianID == "" {
			return nil, &apperrors.ConflictError{
				Message:   "service order has no technician assigned",
				Current:   string(current),
				Attempted: string(ev),
			}
		}
		patch.StartTime = &now

	case EventPause:
		reason, err := requireReason(in.Reason)
		if err != nil {
			return nil, err
		}
		by := in.Actor.Snapshot()
		patch.PauseReason = &models.ReasonRecord{Reason: reason, CreatedAt: now}
		patch.PausedBy = &by

	case EventResume:
		patch.Clear = []string{models.FieldPauseReason, models.FieldPausedBy}

	case EventComplete:
		patch.CompletedAt = &now
		patch.EndTime = &now
		if notes := strings.TrimSpace(in.Notes); notes != "" {
			patch.TechnicianNotes = &notes
		}
		out.Notify = models.NotifyCompleted

	case EventConfirm:
		if in.Rating != nil {
			if err := validateRating(*in.Rating); err != nil {
				return nil, err
			}
			r := *in.Rating
			patch.UserRating = &r
		}
		if fb := strings.TrimSpace(in.Feedback); fb != "" {
			patch.UserFeedback = &fb
		}
		patch.ConfirmedAt = &now

	case EventReopen:
		reason, err := requireReason(in.Reason)
		if err != nil {
			return nil, err
		}
		count := order.ReopenCount + 1
		patch.ReopenReason = &models.ReasonRecord{Reason: reason, CreatedAt: now}
		patch.ReopenCount = &count
		patch.Clear = []string{models.FieldCompletedAt, models.FieldEndTime}
		out.Via = models.StatusReopened

	case EventCancel:
		reason, err := requireReason(in.Reason)
		if err != nil {
			return nil, err
		}
		by := in.Actor.Snapshot()
		patch.CancellationReason = &models.ReasonRecord{Reason: reason, CreatedAt: now}
		patch.CancelledBy = &by
		out.Notify = models.NotifyCancelled
	}

	out.Patch = patch
	return out, nil
}

// PlanFeedback records a rating and feedback without changing status. It is
// only legal once the work is completed or confirmed.
func PlanFeedback(order models.ServiceOrder, actor models.User, rating int, feedback string, now time.Time) (*models.OrderPatch, error) {
	if !actor.IsAdmin() && actor.UID != order.UserID {
		return nil, apperrors.NewForbiddenError("only the requester can rate a service order")
	}
	current := order.Status.Normalize()
	if current != models.StatusCompleted && current != models.StatusConfirmed {
		return nil, &apperrors.ConflictError{
			Message:   fmt.Sprintf("feedback is only accepted for completed or confirmed orders, current status is %s", current),
			Current:   string(current),
			Attempted: "feedback",
		}
	}
	if err := validateRating(rating); err != nil {
		return nil, err
	}
	fb := strings.TrimSpace(feedback)
	return &models.OrderPatch{
		UserRating:   &rating,
		UserFeedback: &fb,
		UpdatedAt:    now,
	}, nil
}

// EventForTarget resolves the generic "move to status" request into the event
// that leads there from current.
func EventForTarget(current, target models.OrderStatus) (Event, error) {
	current = current.Normalize()
	if !target.Valid() {
		return "", apperrors.NewValidationError(
			fmt.Sprintf("unknown status %q", target),
			apperrors.ValidationDetail{Field: "status", Message: "must be a canonical status"},
		)
	}
	if target == models.StatusAssigned {
		return "", apperrors.NewValidationError(
			"assigning requires a technician; use the assign operation",
			apperrors.ValidationDetail{Field: "status", Message: "assigned is set by assign"},
		)
	}
	for _, ev := range AllEvents {
		to, ok := Target(current, ev)
		if !ok {
			continue
		}
		if to == target || (target == models.StatusReopened && ev == EventReopen) {
			return ev, nil
		}
	}
	return "", &apperrors.ConflictError{
		Message:   fmt.Sprintf("cannot move service order from %s to %s", current, target),
		Current:   string(current),
		Attempted: string(target),
	}
}

func authorize(order models.ServiceOrder, ev Event, actor models.User) error {
	if actor.IsAdmin() {
		return nil
	}
	switch ev {
	case EventAssign:
		return apperrors.NewForbiddenError("only admins can assign service orders")
	case EventStart, EventPause, EventResume, EventComplete:
		if actor.UserType != models.UserTypeTechnician || order.TechnicianID == "" || actor.UID != order.TechnicianID {
			return apperrors.NewForbiddenError("only the assigned technician can " + string(ev) + " this service order")
		}
	case EventConfirm, EventReopen, EventCancel:
		if actor.UID != order.UserID {
			return apperrors.NewForbiddenError("only the requester can " + string(ev) + " this service order")
		}
	}
	return nil
}

func guardTechnician(in Input) (*models.User, error) {
	if strings.TrimSpace(in.TechnicianID) == "" {
		return nil, apperrors.NewValidationError("technicianId is required",
			apperrors.ValidationDetail{Field: "technicianId", Message: "required field"})
	}
	if in.Technician == nil {
		return nil, apperrors.NewValidationError("technician not found",
			apperrors.ValidationDetail{Field: "technicianId", Message: "no such user"})
	}
	if in.Technician.UserType != models.UserTypeTechnician {
		return nil, apperrors.NewValidationError("user is not a technician",
			apperrors.ValidationDetail{Field: "technicianId", Message: "must reference a technician"})
	}
	if !in.Technician.IsActive {
		return nil, apperrors.NewValidationError("technician is inactive",
			apperrors.ValidationDetail{Field: "technicianId", Message: "must reference an active technician"})
	}
	return in.Technician, nil
}

func requireReason(reason string) (string, error) {
	r := strings.TrimSpace(reason)
	if r == "" {
		return "", apperrors.NewValidationError("reason is required",
			apperrors.ValidationDetail{Field: "reason", Message: "required field"})
	}
	return r, nil
}

func validateRating(r int) error {
	if r < 1 || r > 5 {
		return apperrors.NewValidationError("rating must be between 1 and 5",
			apperrors.ValidationDetail{Field: "rating", Message: "must be between 1 and 5"})
	}
	return nil
}
