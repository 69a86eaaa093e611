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

func TestProfileRepository_GetByID(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewProfileRepository(db)
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		rows := sqlmock.NewRows([]string{"id", "display_name", "role"}).
			AddRow("kakao:42", "Nori", "user")
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "profiles" WHERE id = $1`)).
			WithArgs("kakao:42", 1).
			WillReturnRows(rows)

		profile, err := repo.GetByID(ctx, "kakao:42")
		require.NoError(t, err)
		assert.Equal(t, "Nori", profile.DisplayName)
		assert.Equal(t, models.RoleUser, profile.Role)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Not found", func(t *testing.T) {
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "profiles" WHERE id = $1`)).
			WithArgs("missing", 1).
			WillReturnError(gorm.ErrRecordNotFound)

		profile, err := repo.GetByID(ctx, "missing")
		assert.Nil(t, profile)
		assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestProfileRepository_Create(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewProfileRepository(db)
	ctx := context.Background()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO "profiles"`)).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	err := repo.Create(ctx, &models.Profile{
		ID:          "kakao:42",
		DisplayName: "Nori",
		Role:        models.RoleUser,
	})
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProfileRepository_Update(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewProfileRepository(db)
	ctx := context.Background()

	t.Run("Updates then refetches", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectExec(regexp.QuoteMeta(`UPDATE "profiles" SET`)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		rows := sqlmock.NewRows([]string{"id", "display_name"}).
			AddRow("kakao:42", "Renamed")
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "profiles" WHERE id = $1`)).
			WithArgs("kakao:42", 1).
			WillReturnRows(rows)

		profile, err := repo.Update(ctx, "kakao:42", map[string]any{"display_name": "Renamed"})
		require.NoError(t, err)
		assert.Equal(t, "Renamed", profile.DisplayName)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("No rows affected means missing profile", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectExec(regexp.QuoteMeta(`UPDATE "profiles" SET`)).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectCommit()

		profile, err := repo.Update(ctx, "missing", map[string]any{"bio": "hi"})
		assert.Nil(t, profile)
		assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Empty field map skips the write", func(t *testing.T) {
		rows := sqlmock.NewRows([]string{"id", "display_name"}).
			AddRow("kakao:42", "Nori")
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "profiles" WHERE id = $1`)).
			WithArgs("kakao:42", 1).
			WillReturnRows(rows)

		profile, err := repo.Update(ctx, "kakao:42", map[string]any{})
		require.NoError(t, err)
		assert.Equal(t, "Nori", profile.DisplayName)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
