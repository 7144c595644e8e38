// Package server contains HTTP and WebSocket handlers for the application's API endpoints.
package server

import (
	"strings"

	"atheneum/internal/models"
	"atheneum/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetQuizzes handles GET /api/quizzes
// @Summary List quizzes
// @Tags quizzes
// @Produce json
// @Param limit query int false "Page size (max 100)"
// @Param offset query int false "Offset"
// @Success 200 {array} models.Quiz
// @Router /quizzes [get]
func (s *Server) GetQuizzes(c *fiber.Ctx) error {
	p := parsePagination(c, 20)

	quizzes, err := s.quizService.ListQuizzes(c.UserContext(), p.Limit, p.Offset)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(quizzes)
}

// GetQuiz handles GET /api/quizzes/:id
// @Summary Get a quiz with its questions
// @Tags quizzes
// @Produce json
// @Param id path int true "Quiz ID"
// @Success 200 {object} models.Quiz
// @Failure 404 {object} models.ErrorResponse
// @Router /quizzes/{id} [get]
func (s *Server) GetQuiz(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	quiz, err := s.quizService.GetQuiz(c.UserContext(), id)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(quiz)
}

// SubmitQuizAttempt handles POST /api/quizzes/:id/attempts
// @Summary Submit quiz answers
// @Description Scores the submitted answers; a passing attempt credits the quiz's points
// @Tags quizzes
// @Accept json
// @Produce json
// @Param id path int true "Quiz ID"
// @Param request body object{answers=[]int} true "Chosen option index per question, in position order"
// @Success 201 {object} models.QuizAttempt
// @Failure 400 {object} models.ErrorResponse
// @Router /quizzes/{id}/attempts [post]
// @Security BearerAuth
func (s *Server) SubmitQuizAttempt(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Answers []int `json:"answers"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	attempt, err := s.quizService.Submit(c.UserContext(), service.SubmitQuizInput{
		UserID:  userID,
		QuizID:  id,
		Answers: req.Answers,
	})
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(attempt)
}

// GetMyQuizAttempts handles GET /api/quizzes/attempts/me
// @Summary List own quiz attempts
// @Tags quizzes
// @Produce json
// @Param limit query int false "Page size (max 100)"
// @Param offset query int false "Offset"
// @Success 200 {array} models.QuizAttempt
// @Router /quizzes/attempts/me [get]
// @Security BearerAuth
func (s *Server) GetMyQuizAttempts(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	p := parsePagination(c, 20)

	attempts, err := s.quizService.ListAttempts(c.UserContext(), userID, p.Limit, p.Offset)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(attempts)
}

// createQuizRequest is the admin payload for creating a quiz.
type createQuizRequest struct {
	Title        string `json:"title"`
	Description  string `json:"description"`
	PassMark     int    `json:"pass_mark"`
	PointsReward int    `json:"points_reward"`
	Questions    []struct {
		Prompt        string   `json:"prompt"`
		Options       []string `json:"options"`
		CorrectOption int      `json:"correct_option"`
	} `json:"questions"`
}

// CreateQuiz handles POST /api/admin/quizzes
// @Summary Create a quiz
// @Tags admin
// @Accept json
// @Produce json
// @Param request body createQuizRequest true "Quiz definition"
// @Success 201 {object} models.Quiz
// @Failure 400 {object} models.ErrorResponse
// @Router /admin/quizzes [post]
// @Security BearerAuth
func (s *Server) CreateQuiz(c *fiber.Ctx) error {
	var req createQuizRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	if strings.TrimSpace(req.Title) == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Title is required"))
	}
	if len(req.Questions) == 0 {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("At least one question is required"))
	}

	quiz := &models.Quiz{
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
	}
	if req.PassMark > 0 {
		if req.PassMark > 100 {
			return models.RespondWithError(c, fiber.StatusBadRequest,
				models.NewValidationError("Pass mark must be between 1 and 100"))
		}
		quiz.PassMark = req.PassMark
	}
	if req.PointsReward > 0 {
		quiz.PointsReward = req.PointsReward
	}

	for i, q := range req.Questions {
		if strings.TrimSpace(q.Prompt) == "" {
			return models.RespondWithError(c, fiber.StatusBadRequest,
				models.NewValidationError("Every question needs a prompt"))
		}
		if len(q.Options) < 2 {
			return models.RespondWithError(c, fiber.StatusBadRequest,
				models.NewValidationError("Every question needs at least two options"))
		}
		if q.CorrectOption < 0 || q.CorrectOption >= len(q.Options) {
			return models.RespondWithError(c, fiber.StatusBadRequest,
				models.NewValidationError("Correct option index out of range"))
		}
		quiz.Questions = append(quiz.Questions, models.QuizQuestion{
			Position:      i,
			Prompt:        strings.TrimSpace(q.Prompt),
			Options:       q.Options,
			CorrectOption: q.CorrectOption,
		})
	}

	if err := s.quizRepo.Create(c.UserContext(), quiz); err != nil {
		return respondServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(quiz)
}
