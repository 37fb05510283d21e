package models

// OrderStatus is the lifecycle status of a service order. It is declared once
// here and shared by every component that reads or writes a status.
type OrderStatus string

const (
	StatusOpen       OrderStatus = "open"
	StatusAssigned   OrderStatus = "assigned"
	StatusInProgress OrderStatus = "in_progress"
	StatusPaused     OrderStatus = "paused"
	StatusCompleted  OrderStatus = "completed"
	StatusConfirmed  OrderStatus = "confirmed"
	StatusCancelled  OrderStatus = "cancelled"
	StatusReopened   OrderStatus = "reopened"

	// statusPendingLegacy was written by older clients for a freshly opened
	// order. It is read back as StatusOpen.
	statusPendingLegacy OrderStatus = "pending"
)

// AllOrderStatuses lists the canonical statuses in lifecycle order.
var AllOrderStatuses = []OrderStatus{
	StatusOpen,
	StatusAssigned,
	StatusInProgress,
	StatusPaused,
	StatusCompleted,
	StatusConfirmed,
	StatusCancelled,
	StatusReopened,
}

func (s OrderStatus) Valid() bool {
	for _, v := range AllOrderStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// Normalize maps legacy values onto the canonical set.
func (s OrderStatus) Normalize() OrderStatus {
	if s == statusPendingLegacy || s == "" {
		return StatusOpen
	}
	return s
}

// StoredValues lists the raw values that normalise to s, for store-side
// filters.
func (s OrderStatus) StoredValues() []string {
	if s == StatusOpen {
		return []string{string(StatusOpen), string(statusPendingLegacy)}
	}
	return []string{string(s)}
}

// Terminal reports whether no further transition is permitted.
func (s OrderStatus) Terminal() bool {
	return s == StatusCancelled || s == StatusConfirmed
}

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

var AllPriorities = []Priority{PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent}

func (p Priority) Valid() bool {
	for _, v := range AllPriorities {
		if p == v {
			return true
		}
	}
	return false
}

// UserType is the role of an application user. Matching is exact.
type UserType string

const (
	UserTypeAdmin      UserType = "admin"
	UserTypeTechnician UserType = "technician"
	UserTypeEndUser    UserType = "end_user"
)

func (t UserType) Valid() bool {
	switch t {
	case UserTypeAdmin, UserTypeTechnician, UserTypeEndUser:
		return true
	}
	return false
}
