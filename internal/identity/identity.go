// Package identity models the identity provider that owns user credentials.
// The rest of the application only sees verified claims (Identity) and the
// Directory interface; the concrete backing store is an implementation detail.
package identity

import (
	"context"
	"errors"
)

// ErrUserNotFound is returned by Directory lookups when no user exists.
var ErrUserNotFound = errors.New("identity user not found")

// Identity is the decoded caller identity attached to authenticated requests.
type Identity struct {
	SubjectID   string
	Email       string
	DisplayName string
	AvatarURL   string
}

// Update describes a partial update of an identity user. Nil fields are left
// untouched.
type Update struct {
	Email         *string
	EmailVerified *bool
	DisplayName   *string
	AvatarURL     *string
}

// Directory is the user-management surface of the identity provider used by
// the federation flow.
type Directory interface {
	// GetUser fetches a user by subject id. Returns ErrUserNotFound when absent.
	GetUser(ctx context.Context, uid string) (*User, error)
	// GetUserByEmail fetches a user by email. Returns ErrUserNotFound when absent.
	GetUserByEmail(ctx context.Context, email string) (*User, error)
	// CreateUser registers a new user record.
	CreateUser(ctx context.Context, user *User) error
	// UpdateUser applies a partial update to an existing user.
	UpdateUser(ctx context.Context, uid string, update Update) error
}
