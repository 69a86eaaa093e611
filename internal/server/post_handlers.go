package server

import (
	"moeum/internal/models"
	"moeum/internal/service"

	"github.com/gofiber/fiber/v2"
)

// CreatePost handles POST /api/v1/posts
func (s *Server) CreatePost(c *fiber.Ctx) error {
	ctx := c.Context()
	caller := s.caller(c)

	var req struct {
		Title         string             `json:"title"`
		Content       models.PostContent `json:"content"`
		Summary       string             `json:"summary"`
		CoverImageURL string             `json:"coverImageUrl"`
		Status        string             `json:"status"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c,
			models.NewValidationError("Invalid request body"))
	}

	// A profile row must exist before the first authored content.
	if _, err := s.profileService.GetOrCreateProfile(ctx, caller); err != nil {
		return models.RespondWithError(c, err)
	}

	post, err := s.postService.CreatePost(ctx, service.CreatePostInput{
		AuthorID:      caller.SubjectID,
		Title:         req.Title,
		Content:       req.Content,
		Summary:       req.Summary,
		CoverImageURL: req.CoverImageURL,
		Status:        req.Status,
	})
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return models.Created(c, post)
}

// GetPosts handles GET /api/v1/posts
func (s *Server) GetPosts(c *fiber.Ctx) error {
	page, err := s.postService.ListPosts(c.Context(), service.ListPostsInput{
		ViewerID:  s.callerID(c),
		Page:      c.QueryInt("page", 1),
		Limit:     c.QueryInt("limit", 10),
		SortBy:    c.Query("sortBy"),
		SortOrder: c.Query("sortOrder"),
		Status:    c.Query("status"),
		AuthorID:  c.Query("authorId"),
		Search:    c.Query("search"),
	})
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return models.OK(c, page)
}

// GetPost handles GET /api/v1/posts/:id. Reading a published post counts a
// view; the increment runs off the request path and never affects the
// response.
func (s *Server) GetPost(c *fiber.Ctx) error {
	id := c.Params("id")

	post, err := s.postService.GetPost(c.Context(), id, s.callerID(c))
	if err != nil {
		return models.RespondWithError(c, err)
	}

	if post.Status == models.PostStatusPublished {
		s.viewCounter.Record(post.ID, s.viewerKey(c))
	}

	return models.OK(c, post)
}

// UpdatePost handles PUT /api/v1/posts/:id
func (s *Server) UpdatePost(c *fiber.Ctx) error {
	id := c.Params("id")

	var req struct {
		Title         *string            `json:"title"`
		Content       models.PostContent `json:"content"`
		Summary       *string            `json:"summary"`
		CoverImageURL *string            `json:"coverImageUrl"`
		Status        *string            `json:"status"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c,
			models.NewValidationError("Invalid request body"))
	}

	post, err := s.postService.UpdatePost(c.Context(), service.UpdatePostInput{
		ActorID:       s.callerID(c),
		PostID:        id,
		Title:         req.Title,
		Content:       req.Content,
		Summary:       req.Summary,
		CoverImageURL: req.CoverImageURL,
		Status:        req.Status,
	})
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return models.OK(c, post)
}

// DeletePost handles DELETE /api/v1/posts/:id
func (s *Server) DeletePost(c *fiber.Ctx) error {
	id := c.Params("id")

	if err := s.postService.DeletePost(c.Context(), id, s.callerID(c)); err != nil {
		return models.RespondWithError(c, err)
	}
	return models.Message(c, "Post deleted")
}
