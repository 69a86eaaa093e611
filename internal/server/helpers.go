package server

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

// clientIP resolves the viewer's address, honoring the first hop of
// X-Forwarded-For when the app runs behind a proxy.
func clientIP(c *fiber.Ctx) string {
	if xff := c.Get("X-Forwarded-For"); xff != "" {
		parts := strings.Split(xff, ",")
		return strings.TrimSpace(parts[0])
	}
	return c.IP()
}

// viewerKey identifies a viewer for view dedup: the subject id when
// authenticated, the client address otherwise.
func (s *Server) viewerKey(c *fiber.Ctx) string {
	if id := s.callerID(c); id != "" {
		return id
	}
	return clientIP(c)
}
