// Package models contains data structures for the application's domain models.
package models

import "time"

// Profile roles
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// Profile represents a user profile keyed by the identity provider's subject id.
// Profiles are created lazily on the first authenticated request and are never
// hard-deleted by this system.
type Profile struct {
	ID          string    `gorm:"primaryKey" json:"id"`
	Email       string    `json:"email,omitempty"`
	DisplayName string    `json:"displayName,omitempty"`
	AvatarURL   string    `json:"avatarUrl,omitempty"`
	Bio         string    `json:"bio,omitempty"`
	Role        string    `gorm:"not null;default:user" json:"role"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// ProfileRef is the author shape embedded in post and comment responses.
type ProfileRef struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName,omitempty"`
	AvatarURL   string `json:"avatarUrl,omitempty"`
}

// Ref returns the embeddable reference form of the profile.
func (p *Profile) Ref() *ProfileRef {
	if p == nil {
		return nil
	}
	return &ProfileRef{ID: p.ID, DisplayName: p.DisplayName, AvatarURL: p.AvatarURL}
}
