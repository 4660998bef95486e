package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Role is a closed enumeration with stable wire values.
type Role int

const (
	RoleListener Role = 1
	RoleArtist   Role = 2
)

func (r Role) Valid() bool {
	return r == RoleListener || r == RoleArtist
}

func (r Role) String() string {
	switch r {
	case RoleListener:
		return "listener"
	case RoleArtist:
		return "artist"
	}
	return "unknown"
}

// User represents an account in the system. Role changes do not retroactively
// change ownership of catalog entities the user already created.
type User struct {
	ID                uuid.UUID `json:"id" db:"id"`
	Email             string    `json:"email" db:"email"`
	Username          string    `json:"username" db:"username"`
	PasswordHash      string    `json:"-" db:"password_hash"`
	Role              Role      `json:"role" db:"role"`
	ProfilePictureURL *string   `json:"profile_picture_url,omitempty" db:"profile_picture_url"`
	BillingCustomerID *string   `json:"-" db:"billing_customer_id"`
	SubscriptionID    *string   `json:"-" db:"subscription_id"`
	Plan              *string   `json:"plan,omitempty" db:"plan"`
	CreatedAt         time.Time `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time `json:"updated_at" db:"updated_at"`
}

type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
	Update(ctx context.Context, user *User) error
	Delete(ctx context.Context, id uuid.UUID) error
	SetProfilePicture(ctx context.Context, id uuid.UUID, url string) error
	SetBillingLink(ctx context.Context, id uuid.UUID, customerID, subscriptionID, plan *string) error
}
