package user

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID          uuid.UUID `json:"id" db:"id"`
	ClerkID     string    `json:"clerkId" db:"clerk_id"`
	Name        string    `json:"name" db:"name"`
	PhoneNumber string    `json:"phoneNumber" db:"phone_number"`
	PushToken   *string   `json:"-" db:"push_token"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time `json:"updatedAt" db:"updated_at"`
}

// HasPushToken reports whether the user can receive push notifications.
func (u *User) HasPushToken() bool {
	return u.PushToken != nil && *u.PushToken != ""
}

// AnonUser stands in for a nominee that has no account yet. It is keyed by
// phone number and folded into a User when that number signs up.
type AnonUser struct {
	ID          uuid.UUID `json:"id" db:"id"`
	PhoneNumber string    `json:"phoneNumber" db:"phone_number"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time `json:"updatedAt" db:"updated_at"`
}

type RegisterUserRequest struct {
	ClerkID     string `json:"clerkId" validate:"required"`
	Name        string `json:"name" validate:"required"`
	PhoneNumber string `json:"phoneNumber" validate:"required"`
	PushToken   string `json:"pushToken,omitempty"`
}

type RegisterPushTokenRequest struct {
	Token string `json:"token" validate:"required"`
}

type ContactsRequest struct {
	PhoneNumbers []string `json:"phoneNumbers"`
}
