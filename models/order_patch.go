package models

import "time"

// Document field names of a service order that can be cleared by a patch.
const (
	FieldCompletedAt  = "completedAt"
	FieldEndTime      = "endTime"
	FieldPauseReason  = "pauseReason"
	FieldPausedBy     = "pausedBy"
	FieldScheduledAt  = "scheduledAt"
	FieldReopenReason = "reopenReason"
)

// OrderPatch is a partial update of a service order. Only populated fields
// are written; Clear names fields removed from the document. UpdatedAt and
// Version are always written.
type OrderPatch struct {
	Status *OrderStatus

	Title       *string
	TitleID     *string
	Description *string
	Priority    *Priority
	SectorID    *string
	SectorName  *string
	ScheduledAt *time.Time

	TechnicianID   *string
	TechnicianName *string

	StartTime   *time.Time
	EndTime     *time.Time
	CompletedAt *time.Time
	ConfirmedAt *time.Time

	TechnicianNotes    *string
	UserFeedback       *string
	UserRating         *int
	CancellationReason *ReasonRecord
	CancelledBy        *ActorSnapshot
	PauseReason        *ReasonRecord
	PausedBy           *ActorSnapshot
	ReopenReason       *ReasonRecord
	ReopenCount        *int

	FeedbackReminderSentAt *time.Time

	Clear []string

	UpdatedAt time.Time
	Version   int64
}

// PatchField is one document path and the value written to it. A nil Value
// means the field is deleted.
type PatchField struct {
	Path  string
	Value any
}

// Fields lists the document writes performed by the patch.
func (p *OrderPatch) Fields() []PatchField {
	var out []PatchField
	add := func(path string, set bool, v any) {
		if set {
			out = append(out, PatchField{Path: path, Value: v})
		}
	}
	if p.Status != nil {
		add("status", true, string(*p.Status))
	}
	if p.Priority != nil {
		add("priority", true, string(*p.Priority))
	}
	add("title", p.Title != nil, deref(p.Title))
	add("titleId", p.TitleID != nil, deref(p.TitleID))
	add("description", p.Description != nil, deref(p.Description))
	add("sectorId", p.SectorID != nil, deref(p.SectorID))
	add("sectorName", p.SectorName != nil, deref(p.SectorName))
	add("technicianId", p.TechnicianID != nil, deref(p.TechnicianID))
	add("technicianName", p.TechnicianName != nil, deref(p.TechnicianName))
	add("technicianNotes", p.TechnicianNotes != nil, deref(p.TechnicianNotes))
	add("userFeedback", p.UserFeedback != nil, deref(p.UserFeedback))
	if p.UserRating != nil {
		add("userRating", true, *p.UserRating)
	}
	if p.ReopenCount != nil {
		add("reopenCount", true, *p.ReopenCount)
	}
	addTime := func(path string, t *time.Time) {
		if t != nil {
			add(path, true, *t)
		}
	}
	addTime(FieldScheduledAt, p.ScheduledAt)
	addTime("startTime", p.StartTime)
	addTime(FieldEndTime, p.EndTime)
	addTime(FieldCompletedAt, p.CompletedAt)
	addTime("confirmedAt", p.ConfirmedAt)
	addTime("feedbackReminderSentAt", p.FeedbackReminderSentAt)
	if p.CancellationReason != nil {
		add("cancellationReason", true, *p.CancellationReason)
	}
	if p.CancelledBy != nil {
		add("cancelledBy", true, *p.CancelledBy)
	}
	if p.PauseReason != nil {
		add(FieldPauseReason, true, *p.PauseReason)
	}
	if p.PausedBy != nil {
		add(FieldPausedBy, true, *p.PausedBy)
	}
	if p.ReopenReason != nil {
		add(FieldReopenReason, true, *p.ReopenReason)
	}
	for _, f := range p.Clear {
		out = append(out, PatchField{Path: f, Value: nil})
	}
	out = append(out,
		PatchField{Path: "updatedAt", Value: p.UpdatedAt},
		PatchField{Path: "version", Value: p.Version},
	)
	return out
}

// ApplyTo mutates o the same way the stored document is mutated.
func (p *OrderPatch) ApplyTo(o *ServiceOrder) {
	if p.Status != nil {
		o.Status = *p.Status
	}
	if p.Title != nil {
		o.Title = *p.Title
	}
	if p.TitleID != nil {
		o.TitleID = *p.TitleID
	}
	if p.Description != nil {
		o.Description = *p.Description
	}
	if p.Priority != nil {
		o.Priority = *p.Priority
	}
	if p.SectorID != nil {
		o.SectorID = *p.SectorID
	}
	if p.SectorName != nil {
		o.SectorName = *p.SectorName
	}
	if p.TechnicianID != nil {
		o.TechnicianID = *p.TechnicianID
	}
	if p.TechnicianName != nil {
		o.TechnicianName = *p.TechnicianName
	}
	if p.TechnicianNotes != nil {
		o.TechnicianNotes = *p.TechnicianNotes
	}
	if p.UserFeedback != nil {
		o.UserFeedback = *p.UserFeedback
	}
	if p.UserRating != nil {
		r := *p.UserRating
		o.UserRating = &r
	}
	if p.ReopenCount != nil {
		o.ReopenCount = *p.ReopenCount
	}
	o.ScheduledAt = pick(p.ScheduledAt, o.ScheduledAt)
	o.StartTime = pick(p.StartTime, o.StartTime)
	o.EndTime = pick(p.EndTime, o.EndTime)
	o.CompletedAt = pick(p.CompletedAt, o.CompletedAt)
	o.ConfirmedAt = pick(p.ConfirmedAt, o.ConfirmedAt)
	o.FeedbackReminderSentAt = pick(p.FeedbackReminderSentAt, o.FeedbackReminderSentAt)
	if p.CancellationReason != nil {
		r := *p.CancellationReason
		o.CancellationReason = &r
	}
	if p.CancelledBy != nil {
		a := *p.CancelledBy
		o.CancelledBy = &a
	}
	if p.PauseReason != nil {
		r := *p.PauseReason
		o.PauseReason = &r
	}
	if p.PausedBy != nil {
		a := *p.PausedBy
		o.PausedBy = &a
	}
	if p.ReopenReason != nil {
		r := *p.ReopenReason
		o.ReopenReason = &r
	}
	for _, f := range p.Clear {
		switch f {
		case FieldCompletedAt:
			o.CompletedAt = nil
		case FieldEndTime:
			o.EndTime = nil
		case FieldPauseReason:
			o.PauseReason = nil
		case FieldPausedBy:
			o.PausedBy = nil
		case FieldScheduledAt:
			o.ScheduledAt = nil
		case FieldReopenReason:
			o.ReopenReason = nil
		}
	}
	o.UpdatedAt = p.UpdatedAt
	o.Version = p.Version
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func pick(v, fallback *time.Time) *time.Time {
	if v != nil {
		t := *v
		return &t
	}
	return fallback
}
