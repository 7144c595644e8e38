// Package server contains HTTP and WebSocket handlers for the application's API endpoints.
package server

import (
	"atheneum/internal/models"
	"atheneum/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetPublishedPosts handles GET /api/posts
// @Summary List published posts
// @Description Returns the public feed of published posts, newest first
// @Tags posts
// @Produce json
// @Param limit query int false "Page size (max 100)"
// @Param offset query int false "Offset"
// @Success 200 {array} models.Post
// @Router /posts [get]
func (s *Server) GetPublishedPosts(c *fiber.Ctx) error {
	p := parsePagination(c, 20)

	posts, err := s.blogService.ListPublished(c.UserContext(), p.Limit, p.Offset)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(posts)
}

// GetPost handles GET /api/posts/:id
// @Summary Get a single post
// @Description Returns a post if the caller may see it. Unpublished posts are
// @Description visible only to their author and to admins; everyone else gets 404.
// @Tags posts
// @Produce json
// @Param id path int true "Post ID"
// @Success 200 {object} models.Post
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/{id} [get]
func (s *Server) GetPost(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	viewer := s.viewerFromCtx(c)
	post, err := s.blogService.GetPost(c.UserContext(), viewer, id)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(post)
}

// CreatePost handles POST /api/posts
// @Summary Create a draft
// @Description Creates a new post in draft status owned by the caller
// @Tags posts
// @Accept json
// @Produce json
// @Param request body service.PostFieldsInput true "Post fields"
// @Success 201 {object} models.Post
// @Failure 400 {object} models.ErrorResponse
// @Router /posts [post]
// @Security BearerAuth
func (s *Server) CreatePost(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	var in service.PostFieldsInput
	if err := c.BodyParser(&in); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	post, err := s.blogService.CreateDraft(c.UserContext(), userID, in)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(post)
}

// UpdatePost handles PUT /api/posts/:id
// @Summary Update an editable post
// @Description Updates content fields of a draft or rejected post owned by the caller
// @Tags posts
// @Accept json
// @Produce json
// @Param id path int true "Post ID"
// @Param request body service.PostFieldsInput true "Post fields"
// @Success 200 {object} models.Post
// @Failure 409 {object} models.ErrorResponse
// @Router /posts/{id} [put]
// @Security BearerAuth
func (s *Server) UpdatePost(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var in service.PostFieldsInput
	if err := c.BodyParser(&in); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	post, err := s.blogService.UpdateDraft(c.UserContext(), userID, id, in)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(post)
}

// SubmitPost handles POST /api/posts/:id/submit
// @Summary Submit a post for review
// @Description Moves a draft or rejected post into the review queue
// @Tags posts
// @Produce json
// @Param id path int true "Post ID"
// @Success 200 {object} models.Post
// @Failure 409 {object} models.ErrorResponse
// @Router /posts/{id}/submit [post]
// @Security BearerAuth
func (s *Server) SubmitPost(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	post, err := s.blogService.SubmitForReview(c.UserContext(), userID, id)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(post)
}

// DeletePost handles DELETE /api/posts/:id
// @Summary Delete an own post
// @Description Deletes a post owned by the caller; published posts must be archived first
// @Tags posts
// @Produce json
// @Param id path int true "Post ID"
// @Success 200 {object} object{message=string}
// @Failure 409 {object} models.ErrorResponse
// @Router /posts/{id} [delete]
// @Security BearerAuth
func (s *Server) DeletePost(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.blogService.DeleteOwnPost(c.UserContext(), userID, id); err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(fiber.Map{"message": "Post deleted"})
}

// GetMyPosts handles GET /api/posts/me
// @Summary List own posts
// @Description Returns all of the caller's posts in every status, newest first
// @Tags posts
// @Produce json
// @Param limit query int false "Page size (max 100)"
// @Param offset query int false "Offset"
// @Success 200 {array} models.Post
// @Router /posts/me [get]
// @Security BearerAuth
func (s *Server) GetMyPosts(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	p := parsePagination(c, 20)

	posts, err := s.blogService.ListMine(c.UserContext(), userID, p.Limit, p.Offset)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(posts)
}
