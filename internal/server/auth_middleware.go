package server

import (
	"context"
	"strings"

	"moeum/internal/identity"
	"moeum/internal/middleware"
	"moeum/internal/models"

	"github.com/gofiber/fiber/v2"
)

// bearerToken extracts the credential from the Authorization header.
func bearerToken(c *fiber.Ctx) string {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return ""
	}
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return ""
	}
	return parts[1]
}

func (s *Server) attachCaller(c *fiber.Ctx, caller *identity.Identity) {
	c.Locals("subjectID", caller.SubjectID)
	c.Locals("caller", caller)
	ctx := context.WithValue(c.UserContext(), middleware.SubjectIDKey, caller.SubjectID)
	c.SetUserContext(ctx)
}

// RequireAuth returns middleware that rejects requests without a valid
// bearer credential.
func (s *Server) RequireAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenString := bearerToken(c)
		if tokenString == "" {
			return models.RespondWithError(c,
				models.NewUnauthorizedError("Authorization required"))
		}

		caller, err := s.tokens.Verify(tokenString)
		if err != nil {
			return models.RespondWithError(c,
				models.NewUnauthorizedError("Invalid or expired token"))
		}

		s.attachCaller(c, caller)
		return c.Next()
	}
}

// OptionalAuth attaches the caller identity when a valid credential is
// present but never rejects the request. Malformed credentials are treated
// the same as anonymous callers.
func (s *Server) OptionalAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenString := bearerToken(c)
		if tokenString == "" {
			return c.Next()
		}
		caller, err := s.tokens.Verify(tokenString)
		if err != nil {
			return c.Next()
		}
		s.attachCaller(c, caller)
		return c.Next()
	}
}

// callerID returns the authenticated subject id, or "" for anonymous callers.
func (s *Server) callerID(c *fiber.Ctx) string {
	if id, ok := c.Locals("subjectID").(string); ok {
		return id
	}
	return ""
}

// caller returns the full decoded identity for authenticated requests.
func (s *Server) caller(c *fiber.Ctx) *identity.Identity {
	if id, ok := c.Locals("caller").(*identity.Identity); ok {
		return id
	}
	return nil
}
