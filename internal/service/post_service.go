// Package service contains the application's business logic, between the
// HTTP handlers and the repositories.
package service

import (
	"context"
	"errors"
	"math"
	"strings"
	"time"

	"moeum/internal/models"
	"moeum/internal/repository"

	"gorm.io/gorm"
)

const (
	maxTitleLen   = 200
	maxPageSize   = 100
	summaryRunes  = 10
	defaultLimit  = 10
	defaultSortBy = "created_at"
)

type PostService struct {
	postRepo repository.PostRepository
	now      func() time.Time
}

type CreatePostInput struct {
	AuthorID      string
	Title         string
	Content       models.PostContent
	Summary       string
	CoverImageURL string
	Status        string
}

type UpdatePostInput struct {
	ActorID       string
	PostID        string
	Title         *string
	Content       models.PostContent
	Summary       *string
	CoverImageURL *string
	Status        *string
}

type ListPostsInput struct {
	ViewerID  string
	Page      int
	Limit     int
	SortBy    string
	SortOrder string
	Status    string
	AuthorID  string
	Search    string
}

func NewPostService(postRepo repository.PostRepository, now func() time.Time) *PostService {
	if now == nil {
		now = time.Now
	}
	return &PostService{postRepo: postRepo, now: now}
}

func (s *PostService) CreatePost(ctx context.Context, in CreatePostInput) (*models.Post, error) {
	if err := validateTitle(in.Title); err != nil {
		return nil, err
	}
	if in.Content == nil {
		return nil, models.NewValidationError("content is required")
	}
	status := in.Status
	if status == "" {
		status = models.PostStatusDraft
	}
	if err := validateStatus(status); err != nil {
		return nil, err
	}

	summary := in.Summary
	if summary == "" {
		summary = extractSummary(in.Content)
	}

	post := &models.Post{
		AuthorID:      in.AuthorID,
		Title:         in.Title,
		Content:       in.Content,
		Summary:       summary,
		CoverImageURL: in.CoverImageURL,
		Status:        status,
	}
	if status == models.PostStatusPublished {
		now := s.now()
		post.PublishedAt = &now
	}

	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, err
	}
	return s.postRepo.GetByID(ctx, post.ID)
}

// GetPost returns the post, hiding drafts from everyone but their author.
// A draft requested by a non-author is reported as not found, not forbidden,
// so its existence is not leaked.
func (s *PostService) GetPost(ctx context.Context, id, viewerID string) (*models.Post, error) {
	post, err := s.postRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Post")
		}
		return nil, err
	}
	if post.Status == models.PostStatusDraft && post.AuthorID != viewerID {
		return nil, models.NewNotFoundError("Post")
	}
	return post, nil
}

func (s *PostService) ListPosts(ctx context.Context, in ListPostsInput) (*models.PaginatedResponse[*models.Post], error) {
	if in.Page < 1 {
		in.Page = 1
	}
	if in.Limit < 1 {
		in.Limit = defaultLimit
	}
	if in.Limit > maxPageSize {
		in.Limit = maxPageSize
	}
	if in.SortBy == "" {
		in.SortBy = defaultSortBy
	}

	status := in.Status
	if status == "" {
		status = models.PostStatusPublished
	}
	// Drafts are only listable by their own author, and only when the caller
	// filters on their own id. Anything else is silently downgraded.
	if status != models.PostStatusPublished {
		if in.ViewerID == "" || in.AuthorID != in.ViewerID {
			status = models.PostStatusPublished
		}
	}

	posts, total, err := s.postRepo.List(ctx, repository.PostListParams{
		Page:      in.Page,
		Limit:     in.Limit,
		SortBy:    in.SortBy,
		SortOrder: in.SortOrder,
		Status:    status,
		AuthorID:  in.AuthorID,
		Search:    in.Search,
	})
	if err != nil {
		return nil, err
	}

	return &models.PaginatedResponse[*models.Post]{
		Items:      posts,
		Total:      total,
		Page:       in.Page,
		Limit:      in.Limit,
		TotalPages: int(math.Ceil(float64(total) / float64(in.Limit))),
	}, nil
}

func (s *PostService) UpdatePost(ctx context.Context, in UpdatePostInput) (*models.Post, error) {
	post, err := s.postRepo.GetByID(ctx, in.PostID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Post")
		}
		return nil, err
	}
	if post.AuthorID != in.ActorID {
		return nil, models.NewForbiddenError("You can only update your own posts")
	}

	if in.Title != nil {
		if err := validateTitle(*in.Title); err != nil {
			return nil, err
		}
		post.Title = *in.Title
	}
	if in.Content != nil {
		post.Content = in.Content
		// Rederive the summary unless the caller supplied one explicitly.
		if in.Summary == nil {
			post.Summary = extractSummary(in.Content)
		}
	}
	if in.Summary != nil {
		post.Summary = *in.Summary
	}
	if in.CoverImageURL != nil {
		post.CoverImageURL = *in.CoverImageURL
	}
	if in.Status != nil {
		if err := validateStatus(*in.Status); err != nil {
			return nil, err
		}
		// publishedAt is stamped on the first transition to published and
		// never changes afterwards, even across unpublish/republish cycles.
		if *in.Status == models.PostStatusPublished && post.PublishedAt == nil {
			now := s.now()
			post.PublishedAt = &now
		}
		post.Status = *in.Status
	}

	if err := s.postRepo.Update(ctx, post); err != nil {
		return nil, err
	}
	return s.postRepo.GetByID(ctx, post.ID)
}

func (s *PostService) DeletePost(ctx context.Context, postID, actorID string) error {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.NewNotFoundError("Post")
		}
		return err
	}
	if post.AuthorID != actorID {
		return models.NewForbiddenError("You can only delete your own posts")
	}
	return s.postRepo.Delete(ctx, postID)
}

func validateTitle(title string) error {
	if strings.TrimSpace(title) == "" {
		return models.NewValidationError("title is required")
	}
	if len([]rune(title)) > maxTitleLen {
		return models.NewValidationError("title must be at most 200 characters")
	}
	return nil
}

func validateStatus(status string) error {
	if status != models.PostStatusDraft && status != models.PostStatusPublished {
		return models.NewValidationError("status must be draft or published")
	}
	return nil
}

// extractSummary derives the list preview from the post body. Only text
// bodies produce a summary; anything longer than ten characters is truncated
// with an ellipsis marker.
func extractSummary(content models.PostContent) string {
	text, ok := content.Text()
	if !ok {
		return ""
	}
	trimmed := strings.TrimSpace(text)
	runes := []rune(trimmed)
	if len(runes) <= summaryRunes {
		return trimmed
	}
	return string(runes[:summaryRunes]) + "..."
}
