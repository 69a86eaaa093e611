package repository

import (
	"context"

	"moeum/internal/cache"
	"moeum/internal/models"

	"gorm.io/gorm"
)

// PostListParams carries the pagination, sorting, and filter options for
// listing posts. Zero-valued filters are ignored.
type PostListParams struct {
	Page      int
	Limit     int
	SortBy    string
	SortOrder string
	Status    string
	AuthorID  string
	Search    string
}

// PostRepository defines the interface for post data operations
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id string) (*models.Post, error)
	List(ctx context.Context, params PostListParams) ([]*models.Post, int64, error)
	Update(ctx context.Context, post *models.Post) error
	Delete(ctx context.Context, id string) error
	IncrementViews(ctx context.Context, id string) (bool, error)
}

type postRepository struct {
	db *gorm.DB
}

// NewPostRepository creates a new post repository
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	return r.db.WithContext(ctx).Create(post).Error
}

func (r *postRepository) GetByID(ctx context.Context, id string) (*models.Post, error) {
	var post models.Post
	err := r.db.WithContext(ctx).
		Preload("Author").
		First(&post, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &post, nil
}

func (r *postRepository) List(ctx context.Context, params PostListParams) ([]*models.Post, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Post{})

	if params.Status != "" {
		query = query.Where("status = ?", params.Status)
	}
	if params.AuthorID != "" {
		query = query.Where("author_id = ?", params.AuthorID)
	}
	if params.Search != "" {
		query = query.Where("title ILIKE ?", "%"+params.Search+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var posts []*models.Post
	err := query.
		Preload("Author").
		Order(orderClause(params.SortBy, params.SortOrder)).
		Limit(params.Limit).
		Offset((params.Page - 1) * params.Limit).
		Find(&posts).Error
	if err != nil {
		return nil, 0, err
	}
	return posts, total, nil
}

// orderClause whitelists the sortable columns so user input never reaches
// the ORDER BY clause directly.
func orderClause(sortBy, sortOrder string) string {
	column := "created_at"
	switch sortBy {
	case "views_count", "published_at":
		column = sortBy
	}
	direction := "DESC"
	if sortOrder == "asc" {
		direction = "ASC"
	}
	return column + " " + direction
}

func (r *postRepository) Update(ctx context.Context, post *models.Post) error {
	if err := r.db.WithContext(ctx).Save(post).Error; err != nil {
		return err
	}
	cache.InvalidatePost(ctx, post.ID)
	return nil
}

func (r *postRepository) Delete(ctx context.Context, id string) error {
	if err := r.db.WithContext(ctx).Delete(&models.Post{}, "id = ?", id).Error; err != nil {
		return err
	}
	cache.InvalidatePost(ctx, id)
	return nil
}

// IncrementViews bumps the view counter atomically. It reports whether a row
// was updated so callers can tell a missing post from a counted view.
func (r *postRepository) IncrementViews(ctx context.Context, id string) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Post{}).
		Where("id = ?", id).
		UpdateColumn("views_count", gorm.Expr("views_count + 1"))
	if result.Error != nil {
		return false, result.Error
	}
	if result.RowsAffected > 0 {
		cache.InvalidatePost(ctx, id)
	}
	return result.RowsAffected > 0, nil
}
