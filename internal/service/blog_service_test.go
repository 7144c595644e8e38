package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"atheneum/internal/models"
	"atheneum/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// postRepoStub is a stub for repository.PostRepository.
type postRepoStub struct {
	createFn             func(context.Context, *models.Post) error
	getByIDFn            func(context.Context, uint) (*models.Post, error)
	listPublishedFn      func(context.Context, int, int) ([]*models.Post, error)
	listByAuthorFn       func(context.Context, uint, int, int) ([]*models.Post, error)
	listByStatusFn       func(context.Context, models.ReviewStatus, int, int) ([]*models.Post, error)
	updateFn             func(context.Context, *models.Post) error
	updateStatusFromFn   func(context.Context, uint, models.ReviewStatus, models.ReviewStatus, map[string]any) error
	deleteFn             func(context.Context, uint) error
	incrementViewCountFn func(context.Context, uint) error
	listDueScheduledFn   func(context.Context, time.Time, int) ([]*models.Post, error)
}

func (s *postRepoStub) Create(ctx context.Context, post *models.Post) error {
	return s.createFn(ctx, post)
}
func (s *postRepoStub) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	return s.getByIDFn(ctx, id)
}
func (s *postRepoStub) ListPublished(ctx context.Context, limit, offset int) ([]*models.Post, error) {
	return s.listPublishedFn(ctx, limit, offset)
}
func (s *postRepoStub) ListByAuthor(ctx context.Context, authorID uint, limit, offset int) ([]*models.Post, error) {
	return s.listByAuthorFn(ctx, authorID, limit, offset)
}
func (s *postRepoStub) ListByStatus(ctx context.Context, status models.ReviewStatus, limit, offset int) ([]*models.Post, error) {
	return s.listByStatusFn(ctx, status, limit, offset)
}
func (s *postRepoStub) Update(ctx context.Context, post *models.Post) error {
	return s.updateFn(ctx, post)
}
func (s *postRepoStub) UpdateStatusFrom(ctx context.Context, id uint, from, to models.ReviewStatus, updates map[string]any) error {
	return s.updateStatusFromFn(ctx, id, from, to, updates)
}
func (s *postRepoStub) Delete(ctx context.Context, id uint) error {
	return s.deleteFn(ctx, id)
}
func (s *postRepoStub) IncrementViewCount(ctx context.Context, id uint) error {
	return s.incrementViewCountFn(ctx, id)
}
func (s *postRepoStub) ListDueScheduled(ctx context.Context, now time.Time, limit int) ([]*models.Post, error) {
	return s.listDueScheduledFn(ctx, now, limit)
}

func noopPostRepo() *postRepoStub {
	return &postRepoStub{
		createFn:        func(_ context.Context, _ *models.Post) error { return nil },
		getByIDFn:       func(_ context.Context, _ uint) (*models.Post, error) { return &models.Post{}, nil },
		listPublishedFn: func(_ context.Context, _, _ int) ([]*models.Post, error) { return nil, nil },
		listByAuthorFn:  func(_ context.Context, _ uint, _, _ int) ([]*models.Post, error) { return nil, nil },
		listByStatusFn: func(_ context.Context, _ models.ReviewStatus, _, _ int) ([]*models.Post, error) {
			return nil, nil
		},
		updateFn: func(_ context.Context, _ *models.Post) error { return nil },
		updateStatusFromFn: func(_ context.Context, _ uint, _, _ models.ReviewStatus, _ map[string]any) error {
			return nil
		},
		deleteFn:             func(_ context.Context, _ uint) error { return nil },
		incrementViewCountFn: func(_ context.Context, _ uint) error { return nil },
		listDueScheduledFn:   func(_ context.Context, _ time.Time, _ int) ([]*models.Post, error) { return nil, nil },
	}
}

// assertAppErrorCode asserts that err is an AppError with the given code.
func assertAppErrorCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %T: %v", err, err)
	assert.Equal(t, code, appErr.Code)
}

func assertValidationError(t *testing.T, err error) {
	t.Helper()
	assertAppErrorCode(t, err, models.CodeValidation)
}

func assertUnauthorizedError(t *testing.T, err error) {
	t.Helper()
	assertAppErrorCode(t, err, models.CodeUnauthorized)
}

func assertInvalidStateError(t *testing.T, err error) {
	t.Helper()
	assertAppErrorCode(t, err, models.CodeInvalidState)
}

func assertNotFoundError(t *testing.T, err error) {
	t.Helper()
	assertAppErrorCode(t, err, models.CodeNotFound)
}

func validFields() PostFieldsInput {
	return PostFieldsInput{
		Title:   "Understanding Interfaces",
		Content: "Interfaces in Go are satisfied implicitly.",
		Tags:    []string{"go", "basics"},
	}
}

func TestBlogService_CreateDraft_Validation(t *testing.T) {
	t.Parallel()
	svc := NewBlogService(noopPostRepo())
	ctx := context.Background()

	tests := []struct {
		name   string
		mutate func(*PostFieldsInput)
	}{
		{"blank title", func(in *PostFieldsInput) { in.Title = "   " }},
		{"blank content", func(in *PostFieldsInput) { in.Content = "" }},
		{"title too long", func(in *PostFieldsInput) { in.Title = strings.Repeat("a", 301) }},
		{"blank tag", func(in *PostFieldsInput) { in.Tags = []string{"go", " "} }},
		{"too many tags", func(in *PostFieldsInput) {
			in.Tags = []string{"a", "b", "c", "d", "e", "f", "g", "h", "i", "j", "k"}
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validFields()
			tt.mutate(&in)
			_, err := svc.CreateDraft(ctx, 1, in)
			assertValidationError(t, err)
		})
	}
}

func TestBlogService_CreateDraft(t *testing.T) {
	t.Parallel()
	repo := noopPostRepo()
	var created *models.Post
	repo.createFn = func(_ context.Context, p *models.Post) error {
		p.ID = 7
		created = p
		return nil
	}
	repo.getByIDFn = func(_ context.Context, id uint) (*models.Post, error) {
		return created, nil
	}
	svc := NewBlogService(repo)

	post, err := svc.CreateDraft(context.Background(), 42, validFields())
	require.NoError(t, err)
	assert.Equal(t, uint(42), post.AuthorID)
	assert.Equal(t, models.StatusDraft, post.Status)
	assert.Nil(t, post.PublishedAt)
}

func TestBlogService_CreateDraft_Anonymous(t *testing.T) {
	t.Parallel()
	svc := NewBlogService(noopPostRepo())
	_, err := svc.CreateDraft(context.Background(), 0, validFields())
	assertUnauthorizedError(t, err)
}

func TestBlogService_UpdateDraft(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	post := func(status models.ReviewStatus) *models.Post {
		return &models.Post{ID: 1, AuthorID: 42, Status: status, AdminFeedback: "needs work"}
	}

	t.Run("owner edits draft", func(t *testing.T) {
		repo := noopPostRepo()
		repo.getByIDFn = func(_ context.Context, _ uint) (*models.Post, error) { return post(models.StatusDraft), nil }
		svc := NewBlogService(repo)

		updated, err := svc.UpdateDraft(ctx, 42, 1, validFields())
		require.NoError(t, err)
		assert.Equal(t, "Understanding Interfaces", updated.Title)
		assert.Equal(t, models.StatusDraft, updated.Status)
	})

	t.Run("editing rejected keeps status and feedback", func(t *testing.T) {
		repo := noopPostRepo()
		repo.getByIDFn = func(_ context.Context, _ uint) (*models.Post, error) { return post(models.StatusRejected), nil }
		svc := NewBlogService(repo)

		updated, err := svc.UpdateDraft(ctx, 42, 1, validFields())
		require.NoError(t, err)
		assert.Equal(t, models.StatusRejected, updated.Status)
		assert.Equal(t, "needs work", updated.AdminFeedback)
	})

	t.Run("non-owner", func(t *testing.T) {
		repo := noopPostRepo()
		repo.getByIDFn = func(_ context.Context, _ uint) (*models.Post, error) { return post(models.StatusDraft), nil }
		svc := NewBlogService(repo)

		_, err := svc.UpdateDraft(ctx, 99, 1, validFields())
		assertUnauthorizedError(t, err)
	})

	t.Run("frozen while under review", func(t *testing.T) {
		repo := noopPostRepo()
		repo.getByIDFn = func(_ context.Context, _ uint) (*models.Post, error) { return post(models.StatusUnderReview), nil }
		svc := NewBlogService(repo)

		_, err := svc.UpdateDraft(ctx, 42, 1, validFields())
		assertInvalidStateError(t, err)
	})

	t.Run("published posts are immutable", func(t *testing.T) {
		repo := noopPostRepo()
		repo.getByIDFn = func(_ context.Context, _ uint) (*models.Post, error) { return post(models.StatusPublished), nil }
		svc := NewBlogService(repo)

		_, err := svc.UpdateDraft(ctx, 42, 1, validFields())
		assertInvalidStateError(t, err)
	})
}

func TestBlogService_SubmitForReview(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("from draft", func(t *testing.T) {
		repo := noopPostRepo()
		var gotFrom, gotTo models.ReviewStatus
		var gotUpdates map[string]any
		repo.getByIDFn = func(_ context.Context, _ uint) (*models.Post, error) {
			return &models.Post{ID: 1, AuthorID: 42, Status: models.StatusDraft}, nil
		}
		repo.updateStatusFromFn = func(_ context.Context, _ uint, from, to models.ReviewStatus, updates map[string]any) error {
			gotFrom, gotTo, gotUpdates = from, to, updates
			return nil
		}
		svc := NewBlogService(repo)

		_, err := svc.SubmitForReview(ctx, 42, 1)
		require.NoError(t, err)
		assert.Equal(t, models.StatusDraft, gotFrom)
		assert.Equal(t, models.StatusUnderReview, gotTo)
		assert.Contains(t, gotUpdates, "submitted_at")
	})

	t.Run("resubmit after rejection", func(t *testing.T) {
		repo := noopPostRepo()
		repo.getByIDFn = func(_ context.Context, _ uint) (*models.Post, error) {
			return &models.Post{ID: 1, AuthorID: 42, Status: models.StatusRejected}, nil
		}
		svc := NewBlogService(repo)

		_, err := svc.SubmitForReview(ctx, 42, 1)
		assert.NoError(t, err)
	})

	t.Run("invalid from published", func(t *testing.T) {
		repo := noopPostRepo()
		repo.getByIDFn = func(_ context.Context, _ uint) (*models.Post, error) {
			return &models.Post{ID: 1, AuthorID: 42, Status: models.StatusPublished}, nil
		}
		svc := NewBlogService(repo)

		_, err := svc.SubmitForReview(ctx, 42, 1)
		assertInvalidStateError(t, err)
	})

	t.Run("loses the race", func(t *testing.T) {
		repo := noopPostRepo()
		repo.getByIDFn = func(_ context.Context, _ uint) (*models.Post, error) {
			return &models.Post{ID: 1, AuthorID: 42, Status: models.StatusDraft}, nil
		}
		repo.updateStatusFromFn = func(_ context.Context, _ uint, _, _ models.ReviewStatus, _ map[string]any) error {
			return repository.ErrStaleStatus
		}
		svc := NewBlogService(repo)

		_, err := svc.SubmitForReview(ctx, 42, 1)
		assertInvalidStateError(t, err)
	})

	t.Run("not owner", func(t *testing.T) {
		repo := noopPostRepo()
		repo.getByIDFn = func(_ context.Context, _ uint) (*models.Post, error) {
			return &models.Post{ID: 1, AuthorID: 42, Status: models.StatusDraft}, nil
		}
		svc := NewBlogService(repo)

		_, err := svc.SubmitForReview(ctx, 7, 1)
		assertUnauthorizedError(t, err)
	})
}

func TestBlogService_DeleteOwnPost(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("owner deletes draft", func(t *testing.T) {
		repo := noopPostRepo()
		repo.getByIDFn = func(_ context.Context, _ uint) (*models.Post, error) {
			return &models.Post{ID: 1, AuthorID: 42, Status: models.StatusDraft}, nil
		}
		deleted := false
		repo.deleteFn = func(_ context.Context, _ uint) error { deleted = true; return nil }
		svc := NewBlogService(repo)

		require.NoError(t, svc.DeleteOwnPost(ctx, 42, 1))
		assert.True(t, deleted)
	})

	t.Run("published cannot be deleted by author", func(t *testing.T) {
		repo := noopPostRepo()
		repo.getByIDFn = func(_ context.Context, _ uint) (*models.Post, error) {
			return &models.Post{ID: 1, AuthorID: 42, Status: models.StatusPublished}, nil
		}
		svc := NewBlogService(repo)

		assertInvalidStateError(t, svc.DeleteOwnPost(ctx, 42, 1))
	})

	t.Run("non-owner", func(t *testing.T) {
		repo := noopPostRepo()
		repo.getByIDFn = func(_ context.Context, _ uint) (*models.Post, error) {
			return &models.Post{ID: 1, AuthorID: 42, Status: models.StatusDraft}, nil
		}
		svc := NewBlogService(repo)

		assertUnauthorizedError(t, svc.DeleteOwnPost(ctx, 9, 1))
	})
}

func TestBlogService_GetPost_Visibility(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	draft := &models.Post{ID: 1, AuthorID: 42, Status: models.StatusDraft}

	tests := []struct {
		name     string
		viewer   models.Viewer
		wantsErr bool
	}{
		{"anonymous sees nothing", models.Viewer{}, true},
		{"other author sees nothing", models.Viewer{UserID: 9}, true},
		{"owner sees own draft", models.Viewer{UserID: 42}, false},
		{"admin sees everything", models.Viewer{UserID: 9, IsAdmin: true}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := noopPostRepo()
			repo.getByIDFn = func(_ context.Context, _ uint) (*models.Post, error) { return draft, nil }
			svc := NewBlogService(repo)

			_, err := svc.GetPost(ctx, tt.viewer, 1)
			if tt.wantsErr {
				// A hidden post is indistinguishable from a missing one.
				assertNotFoundError(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestBlogService_GetPost_CountsPublicViews(t *testing.T) {
	t.Parallel()
	now := time.Now()
	repo := noopPostRepo()
	repo.getByIDFn = func(_ context.Context, _ uint) (*models.Post, error) {
		return &models.Post{ID: 1, AuthorID: 42, Status: models.StatusPublished, PublishedAt: &now, ViewCount: 5}, nil
	}
	bumped := false
	repo.incrementViewCountFn = func(_ context.Context, _ uint) error { bumped = true; return nil }
	svc := NewBlogService(repo)

	post, err := svc.GetPost(context.Background(), models.Viewer{}, 1)
	require.NoError(t, err)
	assert.True(t, bumped)
	assert.Equal(t, uint(6), post.ViewCount)
}

func TestBlogService_ListMine(t *testing.T) {
	t.Parallel()
	repo := noopPostRepo()
	repo.listByAuthorFn = func(_ context.Context, authorID uint, _, _ int) ([]*models.Post, error) {
		assert.Equal(t, uint(42), authorID)
		return []*models.Post{
			{ID: 1, Status: models.StatusDraft},
			{ID: 2, Status: models.StatusUnderReview},
			{ID: 3, Status: models.StatusPublished},
		}, nil
	}
	svc := NewBlogService(repo)

	posts, err := svc.ListMine(context.Background(), 42, 20, 0)
	require.NoError(t, err)
	assert.Len(t, posts, 3)

	_, err = svc.ListMine(context.Background(), 0, 20, 0)
	assertUnauthorizedError(t, err)
}
