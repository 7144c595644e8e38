package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"atheneum/internal/cache"
	"atheneum/internal/models"
	"atheneum/internal/repository"
)

const (
	maxTitleLen   = 300
	maxContentLen = 100000
	maxExcerptLen = 500
	maxTags       = 10
)

// BlogService carries the author side of the post workflow plus the public
// read surface. Moderation actions live in ModerationService.
type BlogService struct {
	postRepo repository.PostRepository
}

type PostFieldsInput struct {
	Title          string   `json:"title"`
	Content        string   `json:"content"`
	Excerpt        string   `json:"excerpt"`
	Tags           []string `json:"tags"`
	FeaturedImage  string   `json:"featured_image"`
	SEOTitle       string   `json:"seo_title"`
	SEODescription string   `json:"seo_description"`
	AuthorTitle    string   `json:"author_title"`
	AuthorImageURL string   `json:"author_image_url"`
}

func NewBlogService(postRepo repository.PostRepository) *BlogService {
	return &BlogService{postRepo: postRepo}
}

func validatePostFields(in PostFieldsInput) error {
	if strings.TrimSpace(in.Title) == "" {
		return models.NewValidationError("Title is required")
	}
	if len(in.Title) > maxTitleLen {
		return models.NewValidationError("Title too long (max 300 characters)")
	}
	if strings.TrimSpace(in.Content) == "" {
		return models.NewValidationError("Content is required")
	}
	if len(in.Content) > maxContentLen {
		return models.NewValidationError("Content too long (max 100000 characters)")
	}
	if len(in.Excerpt) > maxExcerptLen {
		return models.NewValidationError("Excerpt too long (max 500 characters)")
	}
	if len(in.Tags) > maxTags {
		return models.NewValidationError("Too many tags (max 10)")
	}
	for _, tag := range in.Tags {
		if strings.TrimSpace(tag) == "" {
			return models.NewValidationError("Tags cannot be blank")
		}
	}
	return nil
}

func applyPostFields(post *models.Post, in PostFieldsInput) {
	post.Title = in.Title
	post.Content = in.Content
	post.Excerpt = in.Excerpt
	post.Tags = in.Tags
	post.FeaturedImage = in.FeaturedImage
	post.SEOTitle = in.SEOTitle
	post.SEODescription = in.SEODescription
	post.AuthorTitle = in.AuthorTitle
	post.AuthorImageURL = in.AuthorImageURL
}

// CreateDraft creates a new post in draft for the calling author.
func (s *BlogService) CreateDraft(ctx context.Context, authorID uint, in PostFieldsInput) (*models.Post, error) {
	if authorID == 0 {
		return nil, models.NewUnauthorizedError("Authentication required")
	}
	if err := validatePostFields(in); err != nil {
		return nil, err
	}

	post := &models.Post{
		AuthorID: authorID,
		Status:   models.StatusDraft,
	}
	applyPostFields(post, in)

	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, err
	}
	return s.postRepo.GetByID(ctx, post.ID)
}

// UpdateDraft replaces the content fields of an editable post. Only the
// owner may edit, only in draft or rejected, and the status never changes
// here: a rejected post stays rejected (feedback intact) until the author
// resubmits it.
func (s *BlogService) UpdateDraft(ctx context.Context, authorID, postID uint, in PostFieldsInput) (*models.Post, error) {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post.AuthorID != authorID {
		return nil, models.NewUnauthorizedError("You can only edit your own posts")
	}
	if !post.Status.Editable() {
		return nil, models.NewInvalidStateError("Post cannot be edited in status " + string(post.Status))
	}
	if err := validatePostFields(in); err != nil {
		return nil, err
	}

	applyPostFields(post, in)
	if err := s.postRepo.Update(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

// SubmitForReview moves an owned draft or rejected post into the review
// queue. The status check happens again inside the conditional update, so
// two racing submits cannot both succeed.
func (s *BlogService) SubmitForReview(ctx context.Context, authorID, postID uint) (*models.Post, error) {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post.AuthorID != authorID {
		return nil, models.NewUnauthorizedError("You can only submit your own posts")
	}
	if !post.Status.CanTransition(models.StatusUnderReview) {
		return nil, models.NewInvalidStateError("Post cannot be submitted from status " + string(post.Status))
	}

	now := time.Now()
	err = s.postRepo.UpdateStatusFrom(ctx, postID, post.Status, models.StatusUnderReview, map[string]any{
		"submitted_at": now,
	})
	if err != nil {
		return nil, mapTransitionError(err, "submit")
	}
	return s.postRepo.GetByID(ctx, postID)
}

// DeleteOwnPost soft-deletes an owned, not-yet-published post.
func (s *BlogService) DeleteOwnPost(ctx context.Context, authorID, postID uint) error {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return err
	}
	if post.AuthorID != authorID {
		return models.NewUnauthorizedError("You can only delete your own posts")
	}
	if post.Status == models.StatusPublished {
		return models.NewInvalidStateError("Published posts cannot be deleted; archive them instead")
	}
	return s.postRepo.Delete(ctx, postID)
}

// ListMine returns every post of the calling author regardless of status.
func (s *BlogService) ListMine(ctx context.Context, authorID uint, limit, offset int) ([]*models.Post, error) {
	if authorID == 0 {
		return nil, models.NewUnauthorizedError("Authentication required")
	}
	return s.postRepo.ListByAuthor(ctx, authorID, limit, offset)
}

// GetPost fetches a single post projected through the viewer's visibility.
// A post the viewer may not see reads as NotFound, identical to a post
// that does not exist. Public reads bump the view counter.
func (s *BlogService) GetPost(ctx context.Context, viewer models.Viewer, postID uint) (*models.Post, error) {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if !post.VisibleTo(viewer) {
		return nil, models.NewNotFoundError("Post", postID)
	}
	if post.Status == models.StatusPublished {
		if err := s.postRepo.IncrementViewCount(ctx, postID); err == nil {
			post.ViewCount++
		}
	}
	return post, nil
}

// ListPublished returns the public feed, newest publication first. The
// first page is served through the cache.
func (s *BlogService) ListPublished(ctx context.Context, limit, offset int) ([]*models.Post, error) {
	if limit <= 0 {
		limit = 20
	}

	var posts []*models.Post
	if offset == 0 && limit <= 20 {
		err := cache.Aside(ctx, cache.PublishedListKey, &posts, cache.PublishedListTTL, func() error {
			var fetchErr error
			posts, fetchErr = s.postRepo.ListPublished(ctx, limit, offset)
			return fetchErr
		})
		if err != nil {
			return nil, err
		}
		return posts, nil
	}
	return s.postRepo.ListPublished(ctx, limit, offset)
}

// mapTransitionError converts the repository's stale-status sentinel into
// the invalid-state error callers expect, leaving other errors untouched.
func mapTransitionError(err error, action string) error {
	if errors.Is(err, repository.ErrStaleStatus) {
		return models.NewInvalidStateError("Post status changed; " + action + " no longer applies")
	}
	return err
}
