package service

import (
	"context"
	"log/slog"

	"atheneum/internal/models"
	"atheneum/internal/repository"
)

// QuizService scores quiz submissions and credits points on a pass.
type QuizService struct {
	quizRepo    repository.QuizRepository
	userRepo    repository.UserRepository
	leaderboard *LeaderboardService
}

type SubmitQuizInput struct {
	UserID  uint
	QuizID  uint
	Answers []int
}

func NewQuizService(
	quizRepo repository.QuizRepository,
	userRepo repository.UserRepository,
	leaderboard *LeaderboardService,
) *QuizService {
	return &QuizService{
		quizRepo:    quizRepo,
		userRepo:    userRepo,
		leaderboard: leaderboard,
	}
}

// GetQuiz returns the quiz with its questions in position order. Correct
// option indexes never serialize to clients.
func (s *QuizService) GetQuiz(ctx context.Context, id uint) (*models.Quiz, error) {
	return s.quizRepo.GetByID(ctx, id)
}

func (s *QuizService) ListQuizzes(ctx context.Context, limit, offset int) ([]*models.Quiz, error) {
	return s.quizRepo.List(ctx, limit, offset)
}

// Submit scores one attempt: a point per correct answer, a percentage
// against the question count, pass/fail against the quiz pass mark. The
// attempt is persisted either way; a pass additionally credits the quiz's
// point reward to the account and the leaderboard.
func (s *QuizService) Submit(ctx context.Context, in SubmitQuizInput) (*models.QuizAttempt, error) {
	if in.UserID == 0 {
		return nil, models.NewUnauthorizedError("Authentication required")
	}

	quiz, err := s.quizRepo.GetByID(ctx, in.QuizID)
	if err != nil {
		return nil, err
	}
	if len(quiz.Questions) == 0 {
		return nil, models.NewValidationError("Quiz has no questions")
	}
	if len(in.Answers) != len(quiz.Questions) {
		return nil, models.NewValidationError("Answer count does not match question count")
	}

	score := 0
	for i, q := range quiz.Questions {
		answer := in.Answers[i]
		if answer < 0 || answer >= len(q.Options) {
			return nil, models.NewValidationError("Answer out of range for question " + q.Prompt)
		}
		if answer == q.CorrectOption {
			score++
		}
	}

	total := len(quiz.Questions)
	percent := score * 100 / total
	passed := percent >= quiz.PassMark

	attempt := &models.QuizAttempt{
		QuizID:  quiz.ID,
		UserID:  in.UserID,
		Answers: in.Answers,
		Score:   score,
		Total:   total,
		Percent: percent,
		Passed:  passed,
	}
	if err := s.quizRepo.CreateAttempt(ctx, attempt); err != nil {
		return nil, err
	}

	if passed && quiz.PointsReward > 0 {
		if err := s.userRepo.AddPoints(ctx, in.UserID, quiz.PointsReward); err != nil {
			slog.Error("failed to credit quiz points",
				"user_id", in.UserID, "quiz_id", quiz.ID, "points", quiz.PointsReward, "error", err)
			return attempt, nil
		}
		if s.leaderboard != nil {
			s.leaderboard.Award(ctx, in.UserID, quiz.PointsReward)
		}
	}
	return attempt, nil
}

// ListAttempts returns the caller's own attempt history, newest first.
func (s *QuizService) ListAttempts(ctx context.Context, userID uint, limit, offset int) ([]*models.QuizAttempt, error) {
	if userID == 0 {
		return nil, models.NewUnauthorizedError("Authentication required")
	}
	return s.quizRepo.ListAttempts(ctx, userID, limit, offset)
}
