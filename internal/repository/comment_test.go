package repository

import (
	"context"
	"regexp"
	"testing"

	"moeum/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestCommentRepository_Create(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewCommentRepository(db)
	ctx := context.Background()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO "comments"`)).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	comment := &models.Comment{
		PostID:   "post-1",
		AuthorID: "user-1",
		Content:  "nice",
	}
	err := repo.Create(ctx, comment)
	assert.NoError(t, err)
	assert.NotEmpty(t, comment.ID, "BeforeCreate should assign a UUID")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCommentRepository_GetByID(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewCommentRepository(db)
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		rows := sqlmock.NewRows([]string{"id", "post_id", "author_id", "content"}).
			AddRow("comment-1", "post-1", "user-1", "nice")
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "comments" WHERE id = $1`)).
			WithArgs("comment-1", 1).
			WillReturnRows(rows)
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "profiles" WHERE "profiles"."id" = $1`)).
			WithArgs("user-1").
			WillReturnRows(sqlmock.NewRows([]string{"id", "display_name"}).AddRow("user-1", "Writer"))

		comment, err := repo.GetByID(ctx, "comment-1")
		require.NoError(t, err)
		assert.Equal(t, "nice", comment.Content)
		require.NotNil(t, comment.AuthorRef)
		assert.Equal(t, "Writer", comment.AuthorRef.DisplayName)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Not found", func(t *testing.T) {
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "comments" WHERE id = $1`)).
			WithArgs("missing", 1).
			WillReturnError(gorm.ErrRecordNotFound)

		comment, err := repo.GetByID(ctx, "missing")
		assert.Nil(t, comment)
		assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestCommentRepository_ListByPost(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewCommentRepository(db)
	ctx := context.Background()

	rows := sqlmock.NewRows([]string{"id", "post_id", "author_id", "content"}).
		AddRow("comment-1", "post-1", "user-1", "first").
		AddRow("comment-2", "post-1", "user-2", "second")
	mock.ExpectQuery(`SELECT \* FROM "comments" WHERE post_id = \$1 .* ORDER BY created_at ASC`).
		WillReturnRows(rows)
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "profiles" WHERE "profiles"."id" IN ($1,$2)`)).
		WithArgs("user-1", "user-2").
		WillReturnRows(sqlmock.NewRows([]string{"id", "display_name"}).
			AddRow("user-1", "Writer").
			AddRow("user-2", "Reader"))

	comments, err := repo.ListByPost(ctx, "post-1")
	require.NoError(t, err)
	require.Len(t, comments, 2)
	assert.Equal(t, "first", comments[0].Content)
	assert.Equal(t, "second", comments[1].Content)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCommentRepository_Delete(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewCommentRepository(db)
	ctx := context.Background()

	// Soft delete: an UPDATE setting deleted_at.
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "comments" SET "deleted_at"=`)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.Delete(ctx, "comment-1")
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
