// models/user.go
package models

import "time"

// User is an application user. UID is the Firebase Auth uid and the
// document key in the users collection.
type User struct {
	UID             string    `firestore:"-" json:"uid"`
	Email           string    `firestore:"email" json:"email"`
	Name            string    `firestore:"name" json:"name"`
	Phone           string    `firestore:"phone" json:"phone"`
	UserType        UserType  `firestore:"userType" json:"userType"`
	EstablishmentID string    `firestore:"establishmentId,omitempty" json:"establishmentId,omitempty"`
	IsActive        bool      `firestore:"isActive" json:"isActive"`
	AvatarURL       string    `firestore:"avatarUrl,omitempty" json:"avatarUrl,omitempty"`
	DeviceToken     string    `firestore:"deviceToken,omitempty" json:"-"`
	PasswordHash    string    `firestore:"passwordHash,omitempty" json:"-"`
	CreatedAt       time.Time `firestore:"createdAt" json:"createdAt"`
	UpdatedAt       time.Time `firestore:"updatedAt" json:"updatedAt"`
}

// Snapshot copies the identity fields recorded on an order by an action.
func (u User) Snapshot() ActorSnapshot {
	return ActorSnapshot{UID: u.UID, Name: u.Name, UserType: u.UserType}
}

func (u User) IsAdmin() bool {
	return u.UserType == UserTypeAdmin
}

// UserUpdate carries the mutable user fields; nil means unchanged.
type UserUpdate struct {
	Name            *string
	Phone           *string
	UserType        *UserType
	EstablishmentID *string
	IsActive        *bool
	AvatarURL       *string
	DeviceToken     *string
	UpdatedAt       time.Time
}

func (u UserUpdate) ApplyTo(usr *User) {
	if u.Name != nil {
		usr.Name = *u.Name
	}
	if u.Phone != nil {
		usr.Phone = *u.Phone
	}
	if u.UserType != nil {
		usr.UserType = *u.UserType
	}
	if u.EstablishmentID != nil {
		usr.EstablishmentID = *u.EstablishmentID
	}
	if u.IsActive != nil {
		usr.IsActive = *u.IsActive
	}
	if u.AvatarURL != nil {
		usr.AvatarURL = *u.AvatarURL
	}
	if u.DeviceToken != nil {
		usr.DeviceToken = *u.DeviceToken
	}
	usr.UpdatedAt = u.UpdatedAt
}

// Fields lists the document writes performed by the update.
func (u UserUpdate) Fields() []PatchField {
	var out []PatchField
	if u.Name != nil {
		out = append(out, PatchField{Path: "name", Value: *u.Name})
	}
	if u.Phone != nil {
		out = append(out, PatchField{Path: "phone", Value: *u.Phone})
	}
	if u.UserType != nil {
		out = append(out, PatchField{Path: "userType", Value: string(*u.UserType)})
	}
	if u.EstablishmentID != nil {
		out = append(out, PatchField{Path: "establishmentId", Value: *u.EstablishmentID})
	}
	if u.IsActive != nil {
		out = append(out, PatchField{Path: "isActive", Value: *u.IsActive})
	}
	if u.AvatarURL != nil {
		out = append(out, PatchField{Path: "avatarUrl", Value: *u.AvatarURL})
	}
	if u.DeviceToken != nil {
		out = append(out, PatchField{Path: "deviceToken", Value: *u.DeviceToken})
	}
	return append(out, PatchField{Path: "updatedAt", Value: u.UpdatedAt})
}
