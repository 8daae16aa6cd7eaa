package shared

import (
	"context"
	"time"

	firebaseauth "firebase.google.com/go/v4/auth"
)

// User is the cross-package view of a local user record.
type User struct {
	ID              string
	Email           *string
	DisplayName     *string
	FirstName       *string
	LastName        *string
	ProfileImageURL *string
	Phone           *string
	Bio             *string
	IsAgent         bool
	Roles           []string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Service defines the user operations other packages depend on.
type Service interface {
	GetUserByID(ctx context.Context, id string) (*User, error)
	GetOrCreateUserFromFirebaseClaims(ctx context.Context, firebaseToken *firebaseauth.Token) (usr *User, wasCreated bool, err error)
}

// PropertyLookup resolves the owner of a property. It returns a common.ErrNotFound
// APIError when the property does not exist.
type PropertyLookup interface {
	GetPropertyOwnerID(ctx context.Context, propertyID uint) (string, error)
}
