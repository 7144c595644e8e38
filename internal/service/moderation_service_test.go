package service

import (
	"context"
	"testing"
	"time"

	"atheneum/internal/models"
	"atheneum/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func adminChecker(adminIDs ...uint) func(ctx context.Context, userID uint) (bool, error) {
	return func(_ context.Context, userID uint) (bool, error) {
		for _, id := range adminIDs {
			if id == userID {
				return true, nil
			}
		}
		return false, nil
	}
}

// feedbackRecorder captures feedback published during moderation.
type feedbackRecorder struct {
	authorID uint
	postID   uint
	action   string
	feedback string
	calls    int
}

func (r *feedbackRecorder) PublishFeedback(_ context.Context, authorID, postID uint, action, feedback string) error {
	r.authorID = authorID
	r.postID = postID
	r.action = action
	r.feedback = feedback
	r.calls++
	return nil
}

func underReviewPost() *models.Post {
	now := time.Now()
	return &models.Post{ID: 1, AuthorID: 42, Status: models.StatusUnderReview, SubmittedAt: &now}
}

func TestModerationService_Approve(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("publishes immediately", func(t *testing.T) {
		repo := noopPostRepo()
		repo.getByIDFn = func(_ context.Context, _ uint) (*models.Post, error) { return underReviewPost(), nil }
		var gotTo models.ReviewStatus
		var gotUpdates map[string]any
		repo.updateStatusFromFn = func(_ context.Context, _ uint, _, to models.ReviewStatus, updates map[string]any) error {
			gotTo, gotUpdates = to, updates
			return nil
		}
		svc := NewModerationService(repo, adminChecker(1), nil)

		_, err := svc.Approve(ctx, 1, 1, nil)
		require.NoError(t, err)
		assert.Equal(t, models.StatusPublished, gotTo)
		assert.Contains(t, gotUpdates, "published_at")
	})

	t.Run("future publish time schedules", func(t *testing.T) {
		repo := noopPostRepo()
		repo.getByIDFn = func(_ context.Context, _ uint) (*models.Post, error) { return underReviewPost(), nil }
		var gotTo models.ReviewStatus
		var gotUpdates map[string]any
		repo.updateStatusFromFn = func(_ context.Context, _ uint, _, to models.ReviewStatus, updates map[string]any) error {
			gotTo, gotUpdates = to, updates
			return nil
		}
		svc := NewModerationService(repo, adminChecker(1), nil)

		at := time.Now().Add(2 * time.Hour)
		_, err := svc.Approve(ctx, 1, 1, &at)
		require.NoError(t, err)
		assert.Equal(t, models.StatusScheduled, gotTo)
		assert.Contains(t, gotUpdates, "scheduled_for")
	})

	t.Run("past publish time publishes now", func(t *testing.T) {
		repo := noopPostRepo()
		repo.getByIDFn = func(_ context.Context, _ uint) (*models.Post, error) { return underReviewPost(), nil }
		var gotTo models.ReviewStatus
		repo.updateStatusFromFn = func(_ context.Context, _ uint, _, to models.ReviewStatus, _ map[string]any) error {
			gotTo = to
			return nil
		}
		svc := NewModerationService(repo, adminChecker(1), nil)

		at := time.Now().Add(-time.Hour)
		_, err := svc.Approve(ctx, 1, 1, &at)
		require.NoError(t, err)
		assert.Equal(t, models.StatusPublished, gotTo)
	})

	t.Run("not under review", func(t *testing.T) {
		repo := noopPostRepo()
		repo.getByIDFn = func(_ context.Context, _ uint) (*models.Post, error) {
			return &models.Post{ID: 1, Status: models.StatusDraft}, nil
		}
		svc := NewModerationService(repo, adminChecker(1), nil)

		_, err := svc.Approve(ctx, 1, 1, nil)
		assertInvalidStateError(t, err)
	})

	t.Run("second approver loses", func(t *testing.T) {
		repo := noopPostRepo()
		repo.getByIDFn = func(_ context.Context, _ uint) (*models.Post, error) { return underReviewPost(), nil }
		repo.updateStatusFromFn = func(_ context.Context, _ uint, _, _ models.ReviewStatus, _ map[string]any) error {
			return repository.ErrStaleStatus
		}
		svc := NewModerationService(repo, adminChecker(1), nil)

		_, err := svc.Approve(ctx, 1, 1, nil)
		assertInvalidStateError(t, err)
	})

	t.Run("non-admin", func(t *testing.T) {
		repo := noopPostRepo()
		svc := NewModerationService(repo, adminChecker(1), nil)

		_, err := svc.Approve(ctx, 9, 1, nil)
		assertUnauthorizedError(t, err)
	})
}

func TestModerationService_Reject(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("stores feedback and notifies author", func(t *testing.T) {
		repo := noopPostRepo()
		repo.getByIDFn = func(_ context.Context, _ uint) (*models.Post, error) { return underReviewPost(), nil }
		var gotTo models.ReviewStatus
		var gotUpdates map[string]any
		repo.updateStatusFromFn = func(_ context.Context, _ uint, _, to models.ReviewStatus, updates map[string]any) error {
			gotTo, gotUpdates = to, updates
			return nil
		}
		rec := &feedbackRecorder{}
		svc := NewModerationService(repo, adminChecker(1), rec)

		_, err := svc.Reject(ctx, 1, 1, "Sources are missing")
		require.NoError(t, err)
		assert.Equal(t, models.StatusRejected, gotTo)
		assert.Equal(t, "Sources are missing", gotUpdates["admin_feedback"])
		assert.Equal(t, 1, rec.calls)
		assert.Equal(t, uint(42), rec.authorID)
		assert.Equal(t, "reject", rec.action)
	})

	t.Run("blank feedback", func(t *testing.T) {
		repo := noopPostRepo()
		svc := NewModerationService(repo, adminChecker(1), nil)

		_, err := svc.Reject(ctx, 1, 1, "   ")
		assertValidationError(t, err)
	})

	t.Run("not under review", func(t *testing.T) {
		repo := noopPostRepo()
		repo.getByIDFn = func(_ context.Context, _ uint) (*models.Post, error) {
			return &models.Post{ID: 1, Status: models.StatusPublished}, nil
		}
		svc := NewModerationService(repo, adminChecker(1), nil)

		_, err := svc.Reject(ctx, 1, 1, "late objection")
		assertInvalidStateError(t, err)
	})
}

func TestModerationService_RequestRevision(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	repo := noopPostRepo()
	repo.getByIDFn = func(_ context.Context, _ uint) (*models.Post, error) { return underReviewPost(), nil }
	var gotTo models.ReviewStatus
	repo.updateStatusFromFn = func(_ context.Context, _ uint, _, to models.ReviewStatus, updates map[string]any) error {
		gotTo = to
		assert.Equal(t, "Please shorten the intro", updates["admin_feedback"])
		return nil
	}
	rec := &feedbackRecorder{}
	svc := NewModerationService(repo, adminChecker(1), rec)

	_, err := svc.RequestRevision(ctx, 1, 1, "Please shorten the intro")
	require.NoError(t, err)
	assert.Equal(t, models.StatusDraft, gotTo)
	assert.Equal(t, "request_revision", rec.action)

	_, err = svc.RequestRevision(ctx, 1, 1, "")
	assertValidationError(t, err)
}

func TestModerationService_Archive(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	statuses := []struct {
		from models.ReviewStatus
		ok   bool
	}{
		{models.StatusPublished, true},
		{models.StatusRejected, true},
		{models.StatusDraft, false},
		{models.StatusUnderReview, false},
		{models.StatusArchived, false},
	}
	for _, tt := range statuses {
		t.Run(string(tt.from), func(t *testing.T) {
			repo := noopPostRepo()
			repo.getByIDFn = func(_ context.Context, _ uint) (*models.Post, error) {
				return &models.Post{ID: 1, Status: tt.from}, nil
			}
			svc := NewModerationService(repo, adminChecker(1), nil)

			_, err := svc.Archive(ctx, 1, 1)
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assertInvalidStateError(t, err)
			}
		})
	}
}

func TestModerationService_ListByStatus(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	repo := noopPostRepo()
	repo.listByStatusFn = func(_ context.Context, status models.ReviewStatus, _, _ int) ([]*models.Post, error) {
		assert.Equal(t, models.StatusUnderReview, status)
		return []*models.Post{{ID: 1}}, nil
	}
	svc := NewModerationService(repo, adminChecker(1), nil)

	posts, err := svc.ListByStatus(ctx, 1, models.StatusUnderReview, 20, 0)
	require.NoError(t, err)
	assert.Len(t, posts, 1)

	_, err = svc.ListByStatus(ctx, 1, models.ReviewStatus("bogus"), 20, 0)
	assertValidationError(t, err)

	_, err = svc.ListByStatus(ctx, 9, models.StatusUnderReview, 20, 0)
	assertUnauthorizedError(t, err)
}

func TestModerationService_Delete(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	repo := noopPostRepo()
	repo.getByIDFn = func(_ context.Context, id uint) (*models.Post, error) {
		if id != 1 {
			return nil, models.NewNotFoundError("Post", id)
		}
		return &models.Post{ID: 1, AuthorID: 42, Status: models.StatusPublished}, nil
	}
	deleted := false
	repo.deleteFn = func(_ context.Context, _ uint) error { deleted = true; return nil }
	svc := NewModerationService(repo, adminChecker(1), nil)

	require.NoError(t, svc.Delete(ctx, 1, 1))
	assert.True(t, deleted)

	assertNotFoundError(t, svc.Delete(ctx, 1, 99))
	assertUnauthorizedError(t, svc.Delete(ctx, 42, 1))
}
