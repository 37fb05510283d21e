package models

import "time"

// Request bodies. Binding tags are checked by gin before a handler runs.

type RegisterRequest struct {
	Email           string `json:"email" binding:"required,email"`
	Password        string `json:"password" binding:"required,min=8,max=72"`
	Name            string `json:"name" binding:"required,min=2,max=120"`
	Phone           string `json:"phone" binding:"required,e164"`
	EstablishmentID string `json:"establishmentId" binding:"required"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type CreateUserRequest struct {
	Email           string   `json:"email" binding:"required,email"`
	Password        string   `json:"password" binding:"required,min=8,max=72"`
	Name            string   `json:"name" binding:"required,min=2,max=120"`
	Phone           string   `json:"phone" binding:"required,e164"`
	UserType        UserType `json:"userType" binding:"required,oneof=admin technician end_user"`
	EstablishmentID string   `json:"establishmentId"`
}

type UpdateUserRequest struct {
	Name            *string   `json:"name" binding:"omitempty,min=2,max=120"`
	Phone           *string   `json:"phone" binding:"omitempty,e164"`
	UserType        *UserType `json:"userType" binding:"omitempty,oneof=admin technician end_user"`
	EstablishmentID *string   `json:"establishmentId"`
	IsActive        *bool     `json:"isActive"`
}

type EstablishmentRequest struct {
	Name     string `json:"name" binding:"required,min=2,max=160"`
	Address  string `json:"address" binding:"required,max=300"`
	Phone    string `json:"phone" binding:"omitempty,e164"`
	Email    string `json:"email" binding:"omitempty,email"`
	IsActive *bool  `json:"isActive"`
}

type SectorRequest struct {
	Name string `json:"name" binding:"required,min=2,max=120"`
}

type TitleRequest struct {
	Name        string `json:"name" binding:"required,min=2,max=160"`
	Description string `json:"description" binding:"max=500"`
	IsActive    *bool  `json:"isActive"`
}

type CreateServiceOrderRequest struct {
	Title           string     `json:"title" binding:"required,min=3,max=160"`
	TitleID         string     `json:"titleId"`
	Description     string     `json:"description" binding:"required,min=5,max=2000"`
	Priority        Priority   `json:"priority" binding:"required,oneof=low medium high urgent"`
	EstablishmentID string     `json:"establishmentId"`
	SectorID        string     `json:"sectorId"`
	ScheduledAt     *time.Time `json:"scheduledAt"`
}

type UpdateServiceOrderRequest struct {
	Title       *string    `json:"title" binding:"omitempty,min=3,max=160"`
	Description *string    `json:"description" binding:"omitempty,min=5,max=2000"`
	Priority    *Priority  `json:"priority" binding:"omitempty,oneof=low medium high urgent"`
	SectorID    *string    `json:"sectorId"`
	ScheduledAt *time.Time `json:"scheduledAt"`
}

type AssignRequest struct {
	TechnicianID string `json:"technicianId" binding:"required"`
}

type ReasonRequest struct {
	Reason string `json:"reason" binding:"required,max=500"`
}

type CompleteRequest struct {
	Notes string `json:"notes" binding:"max=2000"`
}

// ConfirmRequest may be empty; rating and feedback are optional on confirm.
type ConfirmRequest struct {
	Rating   *int   `json:"rating" binding:"omitempty,min=1,max=5"`
	Feedback string `json:"feedback" binding:"max=2000"`
}

type FeedbackRequest struct {
	Rating   *int   `json:"rating" binding:"required,min=1,max=5"`
	Feedback string `json:"feedback" binding:"max=2000"`
}

// StatusChangeRequest drives the generic transition endpoint. Which optional
// fields are required depends on the event the target status resolves to.
type StatusChangeRequest struct {
	Status   OrderStatus `json:"status" binding:"required,oneof=open assigned in_progress paused completed confirmed cancelled reopened"`
	Notes    string      `json:"notes" binding:"max=2000"`
	Reason   string      `json:"reason" binding:"max=500"`
	Rating   *int        `json:"rating" binding:"omitempty,min=1,max=5"`
	Feedback string      `json:"feedback" binding:"max=2000"`
}

// DeviceTokenRequest registers the caller's FCM token for push messages.
type DeviceTokenRequest struct {
	Token string `json:"token" binding:"required,max=4096"`
}
