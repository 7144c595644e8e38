// Package server contains HTTP and WebSocket handlers for the application's API endpoints.
package server

import (
	"time"

	"atheneum/internal/models"

	"github.com/gofiber/fiber/v2"
)

// feedbackRequest is the body for moderation actions that carry a comment.
type feedbackRequest struct {
	Feedback string `json:"feedback"`
}

// GetReviewQueue handles GET /api/admin/posts?status=
// @Summary List posts by status
// @Description Returns posts in the given workflow status, oldest submission first
// @Tags admin
// @Produce json
// @Param status query string true "Workflow status" Enums(draft, under_review, published, rejected, scheduled, archived)
// @Param limit query int false "Page size (max 100)"
// @Param offset query int false "Offset"
// @Success 200 {array} models.Post
// @Failure 400 {object} models.ErrorResponse
// @Router /admin/posts [get]
// @Security BearerAuth
func (s *Server) GetReviewQueue(c *fiber.Ctx) error {
	adminID := c.Locals("userID").(uint)
	p := parsePagination(c, 20)

	status := models.ReviewStatus(c.Query("status", string(models.StatusUnderReview)))
	posts, err := s.moderationService.ListByStatus(c.UserContext(), adminID, status, p.Limit, p.Offset)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(posts)
}

// ApprovePost handles POST /api/admin/posts/:id/approve
// @Summary Approve a post
// @Description Publishes a post under review, or schedules it when publish_at is in the future
// @Tags admin
// @Accept json
// @Produce json
// @Param id path int true "Post ID"
// @Param request body object{publish_at=string} false "Optional RFC3339 publish time"
// @Success 200 {object} models.Post
// @Failure 409 {object} models.ErrorResponse
// @Router /admin/posts/{id}/approve [post]
// @Security BearerAuth
func (s *Server) ApprovePost(c *fiber.Ctx) error {
	adminID := c.Locals("userID").(uint)
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		PublishAt *time.Time `json:"publish_at"`
	}
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return models.RespondWithError(c, fiber.StatusBadRequest,
				models.NewValidationError("Invalid request body"))
		}
	}

	post, err := s.moderationService.Approve(c.UserContext(), adminID, id, req.PublishAt)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(post)
}

// RejectPost handles POST /api/admin/posts/:id/reject
// @Summary Reject a post
// @Description Rejects a post under review with mandatory feedback for the author
// @Tags admin
// @Accept json
// @Produce json
// @Param id path int true "Post ID"
// @Param request body feedbackRequest true "Feedback for the author"
// @Success 200 {object} models.Post
// @Failure 400 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /admin/posts/{id}/reject [post]
// @Security BearerAuth
func (s *Server) RejectPost(c *fiber.Ctx) error {
	adminID := c.Locals("userID").(uint)
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req feedbackRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	post, err := s.moderationService.Reject(c.UserContext(), adminID, id, req.Feedback)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(post)
}

// RequestPostRevision handles POST /api/admin/posts/:id/request-revision
// @Summary Request changes on a post
// @Description Returns a post under review to draft with mandatory feedback
// @Tags admin
// @Accept json
// @Produce json
// @Param id path int true "Post ID"
// @Param request body feedbackRequest true "Feedback for the author"
// @Success 200 {object} models.Post
// @Failure 400 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /admin/posts/{id}/request-revision [post]
// @Security BearerAuth
func (s *Server) RequestPostRevision(c *fiber.Ctx) error {
	adminID := c.Locals("userID").(uint)
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req feedbackRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	post, err := s.moderationService.RequestRevision(c.UserContext(), adminID, id, req.Feedback)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(post)
}

// ArchivePost handles POST /api/admin/posts/:id/archive
// @Summary Archive a post
// @Description Removes a published or rejected post from circulation
// @Tags admin
// @Produce json
// @Param id path int true "Post ID"
// @Success 200 {object} models.Post
// @Failure 409 {object} models.ErrorResponse
// @Router /admin/posts/{id}/archive [post]
// @Security BearerAuth
func (s *Server) ArchivePost(c *fiber.Ctx) error {
	adminID := c.Locals("userID").(uint)
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	post, err := s.moderationService.Archive(c.UserContext(), adminID, id)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(post)
}

// AdminDeletePost handles DELETE /api/admin/posts/:id
// @Summary Delete any post
// @Description Deletes a post regardless of status or ownership
// @Tags admin
// @Produce json
// @Param id path int true "Post ID"
// @Success 200 {object} object{message=string}
// @Failure 404 {object} models.ErrorResponse
// @Router /admin/posts/{id} [delete]
// @Security BearerAuth
func (s *Server) AdminDeletePost(c *fiber.Ctx) error {
	adminID := c.Locals("userID").(uint)
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.moderationService.Delete(c.UserContext(), adminID, id); err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(fiber.Map{"message": "Post deleted"})
}
