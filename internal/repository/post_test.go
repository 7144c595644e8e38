package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"atheneum/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestPostRepository_Create(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	post := &models.Post{Title: "Intro to Goroutines", Content: "Concurrency is not parallelism.", AuthorID: 1}

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "posts"`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	mock.ExpectCommit()

	err := repo.Create(ctx, post)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostRepository_GetByID(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	tests := []struct {
		name          string
		postID        uint
		mockBehavior  func()
		expectedTitle string
		expectedCode  string
	}{
		{
			name:   "Success with Author",
			postID: 1,
			mockBehavior: func() {
				mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "posts" WHERE "posts"."id" = $1 AND "posts"."deleted_at" IS NULL ORDER BY "posts"."id" LIMIT $2`)).
					WithArgs(1, 1).
					WillReturnRows(sqlmock.NewRows([]string{"id", "title", "status", "author_id"}).
						AddRow(1, "Intro to Goroutines", "draft", 10))

				mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "users" WHERE "users"."id" = $1 AND "users"."deleted_at" IS NULL`)).
					WithArgs(10).
					WillReturnRows(sqlmock.NewRows([]string{"id", "username"}).AddRow(10, "alice"))
			},
			expectedTitle: "Intro to Goroutines",
		},
		{
			name:   "Not Found",
			postID: 99,
			mockBehavior: func() {
				mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "posts" WHERE "posts"."id" = $1 AND "posts"."deleted_at" IS NULL ORDER BY "posts"."id" LIMIT $2`)).
					WithArgs(99, 1).
					WillReturnError(gorm.ErrRecordNotFound)
			},
			expectedCode: models.CodeNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.mockBehavior()
			post, err := repo.GetByID(ctx, tt.postID)

			if tt.expectedCode != "" {
				assert.Error(t, err)
				var appErr *models.AppError
				if assert.ErrorAs(t, err, &appErr) {
					assert.Equal(t, tt.expectedCode, appErr.Code)
				}
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.expectedTitle, post.Title)
				assert.Equal(t, "alice", post.Author.Username)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestPostRepository_UpdateStatusFrom(t *testing.T) {
	ctx := context.Background()

	t.Run("Applies when status matches", func(t *testing.T) {
		db, mock := setupMockDB(t)
		repo := NewPostRepository(db)

		mock.ExpectBegin()
		mock.ExpectExec(regexp.QuoteMeta(`UPDATE "posts" SET`)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		err := repo.UpdateStatusFrom(ctx, 1, models.StatusDraft, models.StatusUnderReview, nil)
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Stale when status moved concurrently", func(t *testing.T) {
		db, mock := setupMockDB(t)
		repo := NewPostRepository(db)

		// Another moderator already approved this post, so zero rows
		// match the expected under_review status.
		mock.ExpectBegin()
		mock.ExpectExec(regexp.QuoteMeta(`UPDATE "posts" SET`)).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectCommit()

		err := repo.UpdateStatusFrom(ctx, 1, models.StatusUnderReview, models.StatusPublished, nil)
		assert.ErrorIs(t, err, ErrStaleStatus)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Propagates database errors", func(t *testing.T) {
		db, mock := setupMockDB(t)
		repo := NewPostRepository(db)

		mock.ExpectBegin()
		mock.ExpectExec(regexp.QuoteMeta(`UPDATE "posts" SET`)).
			WillReturnError(errors.New("connection timeout"))
		mock.ExpectRollback()

		err := repo.UpdateStatusFrom(ctx, 1, models.StatusDraft, models.StatusUnderReview, nil)
		assert.Error(t, err)
		assert.NotErrorIs(t, err, ErrStaleStatus)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestPostRepository_IncrementViewCount(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "posts" SET "view_count"=view_count + 1`)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.IncrementViewCount(ctx, 1)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostRepository_ListPublished(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "posts" WHERE status = $1 AND "posts"."deleted_at" IS NULL ORDER BY published_at DESC LIMIT $2`)).
		WithArgs("published", 10).
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "status", "author_id"}).
			AddRow(2, "Newest", "published", 10).
			AddRow(1, "Older", "published", 10))

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "users" WHERE "users"."id" = $1 AND "users"."deleted_at" IS NULL`)).
		WithArgs(10).
		WillReturnRows(sqlmock.NewRows([]string{"id", "username"}).AddRow(10, "alice"))

	posts, err := repo.ListPublished(ctx, 10, 0)
	assert.NoError(t, err)
	assert.Len(t, posts, 2)
	assert.Equal(t, "Newest", posts[0].Title)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostRepository_ListDueScheduled(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "posts" WHERE (status = $1 AND scheduled_for <= $2) AND "posts"."deleted_at" IS NULL ORDER BY scheduled_for ASC LIMIT $3`)).
		WithArgs("scheduled", now, 50).
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "status"}).
			AddRow(3, "Due Post", "scheduled"))

	posts, err := repo.ListDueScheduled(ctx, now, 50)
	assert.NoError(t, err)
	assert.Len(t, posts, 1)
	assert.Equal(t, "Due Post", posts[0].Title)
	assert.NoError(t, mock.ExpectationsWereMet())
}
