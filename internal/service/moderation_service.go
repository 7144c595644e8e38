package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"atheneum/internal/middleware"
	"atheneum/internal/models"
	"atheneum/internal/repository"
)

// FeedbackPublisher delivers moderation feedback to the post's author over
// the realtime channel. Delivery is best-effort; the feedback itself is
// always persisted on the post first.
type FeedbackPublisher interface {
	PublishFeedback(ctx context.Context, authorID, postID uint, action, feedback string) error
}

// ModerationService carries the admin side of the review workflow. Every
// caller must already be authenticated as an admin; route middleware
// enforces that, and isAdmin re-checks it here so the service cannot be
// misused from other code paths.
type ModerationService struct {
	postRepo repository.PostRepository
	isAdmin  func(ctx context.Context, userID uint) (bool, error)
	notifier FeedbackPublisher
}

func NewModerationService(
	postRepo repository.PostRepository,
	isAdmin func(ctx context.Context, userID uint) (bool, error),
	notifier FeedbackPublisher,
) *ModerationService {
	return &ModerationService{
		postRepo: postRepo,
		isAdmin:  isAdmin,
		notifier: notifier,
	}
}

func (s *ModerationService) requireAdmin(ctx context.Context, adminID uint) error {
	ok, err := s.isAdmin(ctx, adminID)
	if err != nil {
		return err
	}
	if !ok {
		return models.NewUnauthorizedError("Admin privileges required")
	}
	return nil
}

// transition performs one conditional status change and records the
// outcome metric. The expected prior status travels into the SQL WHERE
// clause, so out of any number of concurrent moderators exactly one wins.
func (s *ModerationService) transition(
	ctx context.Context, postID uint, from, to models.ReviewStatus, action string, updates map[string]any,
) error {
	if !from.CanTransition(to) {
		middleware.ReviewTransitions.WithLabelValues(action, "invalid").Inc()
		return models.NewInvalidStateError("Cannot " + action + " a post in status " + string(from))
	}

	err := s.postRepo.UpdateStatusFrom(ctx, postID, from, to, updates)
	if err != nil {
		if errors.Is(err, repository.ErrStaleStatus) {
			middleware.ReviewTransitions.WithLabelValues(action, "stale").Inc()
			return models.NewInvalidStateError("Post status changed; " + action + " no longer applies")
		}
		middleware.ReviewTransitions.WithLabelValues(action, "error").Inc()
		return err
	}

	middleware.ReviewTransitions.WithLabelValues(action, "applied").Inc()
	return nil
}

// Approve publishes an under-review post. With a future publishAt the post
// is scheduled instead and the publisher loop flips it when due.
func (s *ModerationService) Approve(ctx context.Context, adminID, postID uint, publishAt *time.Time) (*models.Post, error) {
	if err := s.requireAdmin(ctx, adminID); err != nil {
		return nil, err
	}
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	if publishAt != nil && publishAt.After(now) {
		err = s.transition(ctx, postID, post.Status, models.StatusScheduled, "approve", map[string]any{
			"scheduled_for": *publishAt,
		})
	} else {
		err = s.transition(ctx, postID, post.Status, models.StatusPublished, "approve", map[string]any{
			"published_at": now,
		})
	}
	if err != nil {
		return nil, err
	}
	return s.postRepo.GetByID(ctx, postID)
}

// Reject sends an under-review post back to its author with feedback.
func (s *ModerationService) Reject(ctx context.Context, adminID, postID uint, feedback string) (*models.Post, error) {
	return s.moderateWithFeedback(ctx, adminID, postID, models.StatusRejected, "reject", feedback)
}

// RequestRevision returns an under-review post to draft with feedback so
// the author can amend and resubmit.
func (s *ModerationService) RequestRevision(ctx context.Context, adminID, postID uint, feedback string) (*models.Post, error) {
	return s.moderateWithFeedback(ctx, adminID, postID, models.StatusDraft, "request_revision", feedback)
}

func (s *ModerationService) moderateWithFeedback(
	ctx context.Context, adminID, postID uint, to models.ReviewStatus, action, feedback string,
) (*models.Post, error) {
	if err := s.requireAdmin(ctx, adminID); err != nil {
		return nil, err
	}
	if strings.TrimSpace(feedback) == "" {
		return nil, models.NewValidationError("Feedback is required")
	}
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}

	err = s.transition(ctx, postID, post.Status, to, action, map[string]any{
		"admin_feedback": feedback,
	})
	if err != nil {
		return nil, err
	}

	if s.notifier != nil {
		if err := s.notifier.PublishFeedback(ctx, post.AuthorID, postID, action, feedback); err != nil {
			slog.Warn("feedback delivery failed",
				"post_id", postID, "author_id", post.AuthorID, "action", action, "error", err)
		}
	}
	return s.postRepo.GetByID(ctx, postID)
}

// Archive retires a published or rejected post. Archived is terminal.
func (s *ModerationService) Archive(ctx context.Context, adminID, postID uint) (*models.Post, error) {
	if err := s.requireAdmin(ctx, adminID); err != nil {
		return nil, err
	}
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if err := s.transition(ctx, postID, post.Status, models.StatusArchived, "archive", nil); err != nil {
		return nil, err
	}
	return s.postRepo.GetByID(ctx, postID)
}

// ListByStatus returns the moderation queue for one status, most recently
// submitted first.
func (s *ModerationService) ListByStatus(ctx context.Context, adminID uint, status models.ReviewStatus, limit, offset int) ([]*models.Post, error) {
	if err := s.requireAdmin(ctx, adminID); err != nil {
		return nil, err
	}
	if !status.Valid() {
		return nil, models.NewValidationError("Unknown status: " + string(status))
	}
	return s.postRepo.ListByStatus(ctx, status, limit, offset)
}

// Delete removes any post, regardless of owner or status.
func (s *ModerationService) Delete(ctx context.Context, adminID, postID uint) error {
	if err := s.requireAdmin(ctx, adminID); err != nil {
		return err
	}
	if _, err := s.postRepo.GetByID(ctx, postID); err != nil {
		return err
	}
	return s.postRepo.Delete(ctx, postID)
}
