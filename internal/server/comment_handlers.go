package server

import (
	"moeum/internal/models"
	"moeum/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetComments handles GET /api/v1/posts/:postId/comments
func (s *Server) GetComments(c *fiber.Ctx) error {
	postID := c.Params("postId")

	comments, err := s.commentService.ListComments(c.Context(), postID, s.callerID(c))
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return models.OK(c, comments)
}

// CreateComment handles POST /api/v1/posts/:postId/comments
func (s *Server) CreateComment(c *fiber.Ctx) error {
	ctx := c.Context()
	caller := s.caller(c)
	postID := c.Params("postId")

	var req struct {
		Content  string  `json:"content"`
		ParentID *string `json:"parentId"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c,
			models.NewValidationError("Invalid request body"))
	}

	if _, err := s.profileService.GetOrCreateProfile(ctx, caller); err != nil {
		return models.RespondWithError(c, err)
	}

	comment, err := s.commentService.CreateComment(ctx, service.CreateCommentInput{
		PostID:   postID,
		AuthorID: caller.SubjectID,
		Content:  req.Content,
		ParentID: req.ParentID,
	})
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return models.Created(c, comment)
}

// UpdateComment handles PUT /api/v1/comments/:id
func (s *Server) UpdateComment(c *fiber.Ctx) error {
	id := c.Params("id")

	var req struct {
		Content string `json:"content"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c,
			models.NewValidationError("Invalid request body"))
	}

	comment, err := s.commentService.UpdateComment(c.Context(), id, s.callerID(c), req.Content)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return models.OK(c, comment)
}

// DeleteComment handles DELETE /api/v1/comments/:id
func (s *Server) DeleteComment(c *fiber.Ctx) error {
	id := c.Params("id")

	if err := s.commentService.DeleteComment(c.Context(), id, s.callerID(c)); err != nil {
		return models.RespondWithError(c, err)
	}
	return models.Message(c, "Comment deleted")
}
