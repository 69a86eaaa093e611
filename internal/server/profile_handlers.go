package server

import (
	"moeum/internal/models"
	"moeum/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetMyProfile handles GET /api/v1/profiles/me. The profile is created on
// first access, seeded from the identity provider's claims.
func (s *Server) GetMyProfile(c *fiber.Ctx) error {
	profile, err := s.profileService.GetOrCreateProfile(c.Context(), s.caller(c))
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return models.OK(c, profile)
}

// UpdateMyProfile handles PUT /api/v1/profiles/me
func (s *Server) UpdateMyProfile(c *fiber.Ctx) error {
	ctx := c.Context()
	caller := s.caller(c)

	var req struct {
		DisplayName *string `json:"displayName"`
		AvatarURL   *string `json:"avatarUrl"`
		Bio         *string `json:"bio"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c,
			models.NewValidationError("Invalid request body"))
	}

	// Make sure the row exists before the partial update.
	if _, err := s.profileService.GetOrCreateProfile(ctx, caller); err != nil {
		return models.RespondWithError(c, err)
	}

	profile, err := s.profileService.UpdateProfile(ctx, service.UpdateProfileInput{
		ProfileID:   caller.SubjectID,
		DisplayName: req.DisplayName,
		AvatarURL:   req.AvatarURL,
		Bio:         req.Bio,
	})
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return models.OK(c, profile)
}
