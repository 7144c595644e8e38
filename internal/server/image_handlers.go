// Package server contains HTTP and WebSocket handlers for the application's API endpoints.
package server

import (
	"io"

	"atheneum/internal/models"
	"atheneum/internal/service"

	"github.com/gofiber/fiber/v2"
)

// ImageUploadResponse is the API response after uploading a featured image.
type ImageUploadResponse struct {
	Hash   string `json:"hash"`
	URL    string `json:"url"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Bytes  int    `json:"bytes"`
}

// UploadImage handles POST /api/images
// @Summary Upload a featured image
// @Description Accepts a JPEG, PNG, GIF or WebP upload, re-encodes it to WebP
// @Description and returns the URL to reference as a post's featured image
// @Tags images
// @Accept mpfd
// @Produce json
// @Param image formData file true "Image file"
// @Success 201 {object} ImageUploadResponse
// @Failure 400 {object} models.ErrorResponse
// @Router /images [post]
// @Security BearerAuth
func (s *Server) UploadImage(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	file, err := c.FormFile("image")
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("No file uploaded"))
	}

	src, err := file.Open()
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Unable to read uploaded file"))
	}
	defer func() { _ = src.Close() }()

	content, err := io.ReadAll(src)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Unable to read uploaded file"))
	}

	uploaded, err := s.imageService.Upload(c.UserContext(), service.UploadImageInput{
		UserID:      userID,
		Filename:    file.Filename,
		ContentType: file.Header.Get("Content-Type"),
		Content:     content,
	})
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(ImageUploadResponse{
		Hash:   uploaded.Hash,
		URL:    uploaded.URL,
		Width:  uploaded.Width,
		Height: uploaded.Height,
		Bytes:  uploaded.Bytes,
	})
}
