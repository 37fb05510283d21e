package models

import "time"

// Establishment is a physical site that owns sectors and service orders.
type Establishment struct {
	ID        string    `firestore:"-" json:"id"`
	Name      string    `firestore:"name" json:"name"`
	Address   string    `firestore:"address" json:"address"`
	Phone     string    `firestore:"phone" json:"phone"`
	Email     string    `firestore:"email" json:"email"`
	IsActive  bool      `firestore:"isActive" json:"isActive"`
	CreatedAt time.Time `firestore:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `firestore:"updatedAt" json:"updatedAt"`
}

// Sector is scoped under an establishment.
type Sector struct {
	ID              string    `firestore:"-" json:"id"`
	EstablishmentID string    `firestore:"-" json:"establishmentId"`
	Name            string    `firestore:"name" json:"name"`
	CreatedAt       time.Time `firestore:"createdAt" json:"createdAt"`
}

// Title is a preset service-order title offered to requesters.
type Title struct {
	ID          string    `firestore:"-" json:"id"`
	Name        string    `firestore:"name" json:"name"`
	Description string    `firestore:"description,omitempty" json:"description,omitempty"`
	IsActive    bool      `firestore:"isActive" json:"isActive"`
	CreatedAt   time.Time `firestore:"createdAt" json:"createdAt"`
}
