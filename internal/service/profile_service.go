package service

import (
	"context"
	"errors"

	"moeum/internal/identity"
	"moeum/internal/models"
	"moeum/internal/repository"

	"gorm.io/gorm"
)

const (
	maxDisplayNameLen = 50
	maxBioLen         = 500
)

type ProfileService struct {
	profileRepo repository.ProfileRepository
}

type UpdateProfileInput struct {
	ProfileID   string
	DisplayName *string
	AvatarURL   *string
	Bio         *string
}

func NewProfileService(profileRepo repository.ProfileRepository) *ProfileService {
	return &ProfileService{profileRepo: profileRepo}
}

// GetOrCreateProfile resolves the caller's profile, creating it on first
// login. Existing profiles are only enriched: provider metadata fills fields
// that are still empty and never overwrites what the user has set themselves.
func (s *ProfileService) GetOrCreateProfile(ctx context.Context, caller *identity.Identity) (*models.Profile, error) {
	existing, err := s.profileRepo.GetByID(ctx, caller.SubjectID)
	if err == nil {
		updates := map[string]any{}
		if existing.DisplayName == "" && caller.DisplayName != "" {
			updates["display_name"] = caller.DisplayName
		}
		if existing.AvatarURL == "" && caller.AvatarURL != "" {
			updates["avatar_url"] = caller.AvatarURL
		}
		if len(updates) == 0 {
			return existing, nil
		}
		return s.profileRepo.Update(ctx, caller.SubjectID, updates)
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	profile := &models.Profile{
		ID:          caller.SubjectID,
		Email:       caller.Email,
		DisplayName: caller.DisplayName,
		AvatarURL:   caller.AvatarURL,
		Role:        models.RoleUser,
	}
	if err := s.profileRepo.Create(ctx, profile); err != nil {
		return nil, err
	}
	return profile, nil
}

func (s *ProfileService) GetProfile(ctx context.Context, id string) (*models.Profile, error) {
	profile, err := s.profileRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Profile")
		}
		return nil, err
	}
	return profile, nil
}

// UpdateProfile overwrites the provided fields unconditionally, unlike the
// enrichment performed at login.
func (s *ProfileService) UpdateProfile(ctx context.Context, in UpdateProfileInput) (*models.Profile, error) {
	updates := map[string]any{}
	if in.DisplayName != nil {
		if len([]rune(*in.DisplayName)) > maxDisplayNameLen {
			return nil, models.NewValidationError("displayName must be at most 50 characters")
		}
		updates["display_name"] = *in.DisplayName
	}
	if in.AvatarURL != nil {
		updates["avatar_url"] = *in.AvatarURL
	}
	if in.Bio != nil {
		if len([]rune(*in.Bio)) > maxBioLen {
			return nil, models.NewValidationError("bio must be at most 500 characters")
		}
		updates["bio"] = *in.Bio
	}

	profile, err := s.profileRepo.Update(ctx, in.ProfileID, updates)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Profile")
		}
		return nil, err
	}
	return profile, nil
}
