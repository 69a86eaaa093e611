package server

import (
	"moeum/internal/models"

	"github.com/gofiber/fiber/v2"
)

// NaverLoginState handles GET /api/v1/auth/naver/state.
// It issues the one-time state nonce the client must carry through the Naver
// authorization redirect.
func (s *Server) NaverLoginState(c *fiber.Ctx) error {
	state, err := s.federationService.IssueState(c.Context())
	if err != nil {
		return models.RespondWithError(c, models.NewUpstreamError("Failed to issue state", err))
	}
	return models.OK(c, fiber.Map{"state": state})
}

// KakaoLogin handles POST /api/v1/auth/kakao
func (s *Server) KakaoLogin(c *fiber.Ctx) error {
	var req struct {
		Code string `json:"code"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c,
			models.NewValidationError("Invalid request body"))
	}
	if req.Code == "" {
		return models.RespondWithError(c,
			models.NewValidationError("Authorization code is required"))
	}

	result, err := s.federationService.LoginWithKakao(c.Context(), req.Code)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return models.OK(c, result)
}

// NaverLogin handles POST /api/v1/auth/naver
func (s *Server) NaverLogin(c *fiber.Ctx) error {
	var req struct {
		Code  string `json:"code"`
		State string `json:"state"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c,
			models.NewValidationError("Invalid request body"))
	}
	if req.Code == "" || req.State == "" {
		return models.RespondWithError(c,
			models.NewValidationError("Authorization code and state are required"))
	}

	result, err := s.federationService.LoginWithNaver(c.Context(), req.Code, req.State)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return models.OK(c, result)
}
