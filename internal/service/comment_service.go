package service

import (
	"context"
	"errors"
	"strings"

	"moeum/internal/models"
	"moeum/internal/repository"

	"gorm.io/gorm"
)

const maxCommentLen = 2000

type CommentService struct {
	commentRepo repository.CommentRepository
	postRepo    repository.PostRepository
}

type CreateCommentInput struct {
	PostID   string
	AuthorID string
	Content  string
	ParentID *string
}

func NewCommentService(commentRepo repository.CommentRepository, postRepo repository.PostRepository) *CommentService {
	return &CommentService{commentRepo: commentRepo, postRepo: postRepo}
}

// visiblePost loads the target post, treating drafts of other authors the
// same as missing posts.
func (s *CommentService) visiblePost(ctx context.Context, postID, viewerID string) (*models.Post, error) {
	post, err := s.postRepo.GetByID(ctx, postID)
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

func (s *CommentService) CreateComment(ctx context.Context, in CreateCommentInput) (*models.Comment, error) {
	if err := validateCommentContent(in.Content); err != nil {
		return nil, err
	}
	if _, err := s.visiblePost(ctx, in.PostID, in.AuthorID); err != nil {
		return nil, err
	}
	if in.ParentID != nil {
		parent, err := s.commentRepo.GetByID(ctx, *in.ParentID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, models.NewNotFoundError("Parent comment")
			}
			return nil, err
		}
		if parent.PostID != in.PostID {
			return nil, models.NewValidationError("parentId must reference a comment on the same post")
		}
	}

	comment := &models.Comment{
		PostID:   in.PostID,
		AuthorID: in.AuthorID,
		Content:  in.Content,
		ParentID: in.ParentID,
	}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, err
	}
	return s.commentRepo.GetByID(ctx, comment.ID)
}

func (s *CommentService) ListComments(ctx context.Context, postID, viewerID string) ([]*models.Comment, error) {
	if _, err := s.visiblePost(ctx, postID, viewerID); err != nil {
		return nil, err
	}
	return s.commentRepo.ListByPost(ctx, postID)
}

func (s *CommentService) UpdateComment(ctx context.Context, commentID, actorID, content string) (*models.Comment, error) {
	if err := validateCommentContent(content); err != nil {
		return nil, err
	}
	comment, err := s.commentRepo.GetByID(ctx, commentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Comment")
		}
		return nil, err
	}
	if comment.AuthorID != actorID {
		return nil, models.NewForbiddenError("You can only update your own comments")
	}

	comment.Content = content
	if err := s.commentRepo.Update(ctx, comment); err != nil {
		return nil, err
	}
	return s.commentRepo.GetByID(ctx, comment.ID)
}

func (s *CommentService) DeleteComment(ctx context.Context, commentID, actorID string) error {
	comment, err := s.commentRepo.GetByID(ctx, commentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.NewNotFoundError("Comment")
		}
		return err
	}
	if comment.AuthorID != actorID {
		return models.NewForbiddenError("You can only delete your own comments")
	}
	return s.commentRepo.Delete(ctx, commentID)
}

func validateCommentContent(content string) error {
	if strings.TrimSpace(content) == "" {
		return models.NewValidationError("content is required")
	}
	if len([]rune(content)) > maxCommentLen {
		return models.NewValidationError("content must be at most 2000 characters")
	}
	return nil
}
