// models/service_order.go
package models

import "time"

// ReasonRecord is a free-text reason stamped with the time it was given.
type ReasonRecord struct {
	Reason    string    `firestore:"reason" json:"reason"`
	CreatedAt time.Time `firestore:"createdAt" json:"createdAt"`
}

// ActorSnapshot is a copy of the acting user's identity at the time of an action.
type ActorSnapshot struct {
	UID      string   `firestore:"uid" json:"uid"`
	Name     string   `firestore:"name" json:"name"`
	UserType UserType `firestore:"userType" json:"userType"`
}

// ServiceOrder is a work ticket requested by an end-user against an
// establishment and fulfilled by a technician.
type ServiceOrder struct {
	ID          string `firestore:"-" json:"id"`
	OrderNumber string `firestore:"orderNumber" json:"orderNumber"`

	Title       string   `firestore:"title" json:"title"`
	TitleID     string   `firestore:"titleId,omitempty" json:"titleId,omitempty"`
	Description string   `firestore:"description" json:"description"`
	Priority    Priority `firestore:"priority" json:"priority"`

	EstablishmentID   string `firestore:"establishmentId" json:"establishmentId"`
	EstablishmentName string `firestore:"establishmentName" json:"establishmentName"`
	SectorID          string `firestore:"sectorId,omitempty" json:"sectorId,omitempty"`
	SectorName        string `firestore:"sectorName,omitempty" json:"sectorName,omitempty"`
	UserID            string `firestore:"userId" json:"userId"`
	UserName          string `firestore:"userName" json:"userName"`
	TechnicianID      string `firestore:"technicianId,omitempty" json:"technicianId,omitempty"`
	TechnicianName    string `firestore:"technicianName,omitempty" json:"technicianName,omitempty"`

	Status  OrderStatus `firestore:"status" json:"status"`
	Version int64       `firestore:"version" json:"version"`

	CreatedAt   time.Time  `firestore:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time  `firestore:"updatedAt" json:"updatedAt"`
	ScheduledAt *time.Time `firestore:"scheduledAt,omitempty" json:"scheduledAt,omitempty"`
	StartTime   *time.Time `firestore:"startTime,omitempty" json:"startTime,omitempty"`
	EndTime     *time.Time `firestore:"endTime,omitempty" json:"endTime,omitempty"`
	CompletedAt *time.Time `firestore:"completedAt,omitempty" json:"completedAt,omitempty"`
	ConfirmedAt *time.Time `firestore:"confirmedAt,omitempty" json:"confirmedAt,omitempty"`

	TechnicianNotes    string         `firestore:"technicianNotes,omitempty" json:"technicianNotes,omitempty"`
	UserFeedback       string         `firestore:"userFeedback,omitempty" json:"userFeedback,omitempty"`
	UserRating         *int           `firestore:"userRating,omitempty" json:"userRating,omitempty"`
	CancellationReason *ReasonRecord  `firestore:"cancellationReason,omitempty" json:"cancellationReason,omitempty"`
	CancelledBy        *ActorSnapshot `firestore:"cancelledBy,omitempty" json:"cancelledBy,omitempty"`
	PauseReason        *ReasonRecord  `firestore:"pauseReason,omitempty" json:"pauseReason,omitempty"`
	PausedBy           *ActorSnapshot `firestore:"pausedBy,omitempty" json:"pausedBy,omitempty"`
	ReopenReason       *ReasonRecord  `firestore:"reopenReason,omitempty" json:"reopenReason,omitempty"`
	ReopenCount        int            `firestore:"reopenCount,omitempty" json:"reopenCount,omitempty"`

	FeedbackReminderSentAt *time.Time `firestore:"feedbackReminderSentAt,omitempty" json:"feedbackReminderSentAt,omitempty"`
}

// Clone returns a deep copy so stored documents are never aliased by callers.
func (o ServiceOrder) Clone() ServiceOrder {
	c := o
	c.ScheduledAt = cloneTime(o.ScheduledAt)
	c.StartTime = cloneTime(o.StartTime)
	c.EndTime = cloneTime(o.EndTime)
	c.CompletedAt = cloneTime(o.CompletedAt)
	c.ConfirmedAt = cloneTime(o.ConfirmedAt)
	c.FeedbackReminderSentAt = cloneTime(o.FeedbackReminderSentAt)
	if o.UserRating != nil {
		r := *o.UserRating
		c.UserRating = &r
	}
	if o.CancellationReason != nil {
		r := *o.CancellationReason
		c.CancellationReason = &r
	}
	if o.PauseReason != nil {
		r := *o.PauseReason
		c.PauseReason = &r
	}
	if o.ReopenReason != nil {
		r := *o.ReopenReason
		c.ReopenReason = &r
	}
	if o.CancelledBy != nil {
		a := *o.CancelledBy
		c.CancelledBy = &a
	}
	if o.PausedBy != nil {
		a := *o.PausedBy
		c.PausedBy = &a
	}
	return c
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}

// ServiceOrderFilter narrows a listing. Empty fields are ignored.
type ServiceOrderFilter struct {
	Status          OrderStatus
	Priority        Priority
	EstablishmentID string
	TechnicianID    string
	UserID          string
	CreatedFrom     *time.Time
	CreatedTo       *time.Time
	Limit           int
}

// Matches reports whether o satisfies every populated field of f.
func (f ServiceOrderFilter) Matches(o ServiceOrder) bool {
	if f.Status != "" && o.Status.Normalize() != f.Status.Normalize() {
		return false
	}
	if f.Priority != "" && o.Priority != f.Priority {
		return false
	}
	if f.EstablishmentID != "" && o.EstablishmentID != f.EstablishmentID {
		return false
	}
	if f.TechnicianID != "" && o.TechnicianID != f.TechnicianID {
		return false
	}
	if f.UserID != "" && o.UserID != f.UserID {
		return false
	}
	if f.CreatedFrom != nil && o.CreatedAt.Before(*f.CreatedFrom) {
		return false
	}
	if f.CreatedTo != nil && o.CreatedAt.After(*f.CreatedTo) {
		return false
	}
	return true
}
