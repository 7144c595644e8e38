package service

import (
	"context"
	"testing"

	"atheneum/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// quizRepoStub is a stub for repository.QuizRepository.
type quizRepoStub struct {
	createFn        func(context.Context, *models.Quiz) error
	getByIDFn       func(context.Context, uint) (*models.Quiz, error)
	listFn          func(context.Context, int, int) ([]*models.Quiz, error)
	createAttemptFn func(context.Context, *models.QuizAttempt) error
	listAttemptsFn  func(context.Context, uint, int, int) ([]*models.QuizAttempt, error)
}

func (s *quizRepoStub) Create(ctx context.Context, quiz *models.Quiz) error {
	return s.createFn(ctx, quiz)
}
func (s *quizRepoStub) GetByID(ctx context.Context, id uint) (*models.Quiz, error) {
	return s.getByIDFn(ctx, id)
}
func (s *quizRepoStub) List(ctx context.Context, limit, offset int) ([]*models.Quiz, error) {
	return s.listFn(ctx, limit, offset)
}
func (s *quizRepoStub) CreateAttempt(ctx context.Context, attempt *models.QuizAttempt) error {
	return s.createAttemptFn(ctx, attempt)
}
func (s *quizRepoStub) ListAttempts(ctx context.Context, userID uint, limit, offset int) ([]*models.QuizAttempt, error) {
	return s.listAttemptsFn(ctx, userID, limit, offset)
}

// userRepoStub is a stub for repository.UserRepository.
type userRepoStub struct {
	getByIDFn       func(context.Context, uint) (*models.User, error)
	getByEmailFn    func(context.Context, string) (*models.User, error)
	getByUsernameFn func(context.Context, string) (*models.User, error)
	createFn        func(context.Context, *models.User) error
	updateFn        func(context.Context, *models.User) error
	listFn          func(context.Context, int, int) ([]models.User, error)
	addPointsFn     func(context.Context, uint, int) error
	topByPointsFn   func(context.Context, int) ([]models.User, error)
}

func (s *userRepoStub) GetByID(ctx context.Context, id uint) (*models.User, error) {
	return s.getByIDFn(ctx, id)
}
func (s *userRepoStub) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.getByEmailFn(ctx, email)
}
func (s *userRepoStub) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.getByUsernameFn(ctx, username)
}
func (s *userRepoStub) Create(ctx context.Context, user *models.User) error {
	return s.createFn(ctx, user)
}
func (s *userRepoStub) Update(ctx context.Context, user *models.User) error {
	return s.updateFn(ctx, user)
}
func (s *userRepoStub) List(ctx context.Context, limit, offset int) ([]models.User, error) {
	return s.listFn(ctx, limit, offset)
}
func (s *userRepoStub) AddPoints(ctx context.Context, id uint, delta int) error {
	return s.addPointsFn(ctx, id, delta)
}
func (s *userRepoStub) TopByPoints(ctx context.Context, limit int) ([]models.User, error) {
	return s.topByPointsFn(ctx, limit)
}

func noopUserRepo() *userRepoStub {
	return &userRepoStub{
		getByIDFn:       func(_ context.Context, _ uint) (*models.User, error) { return &models.User{}, nil },
		getByEmailFn:    func(_ context.Context, _ string) (*models.User, error) { return nil, nil },
		getByUsernameFn: func(_ context.Context, _ string) (*models.User, error) { return nil, nil },
		createFn:        func(_ context.Context, _ *models.User) error { return nil },
		updateFn:        func(_ context.Context, _ *models.User) error { return nil },
		listFn:          func(_ context.Context, _, _ int) ([]models.User, error) { return nil, nil },
		addPointsFn:     func(_ context.Context, _ uint, _ int) error { return nil },
		topByPointsFn:   func(_ context.Context, _ int) ([]models.User, error) { return nil, nil },
	}
}

func sampleQuiz() *models.Quiz {
	return &models.Quiz{
		ID:           5,
		Title:        "Go Fundamentals",
		PassMark:     70,
		PointsReward: 10,
		Questions: []models.QuizQuestion{
			{ID: 1, Position: 1, Prompt: "Zero value of a pointer?", Options: []string{"0", "nil", "panic"}, CorrectOption: 1},
			{ID: 2, Position: 2, Prompt: "Keyword for a goroutine?", Options: []string{"go", "run", "spawn"}, CorrectOption: 0},
			{ID: 3, Position: 3, Prompt: "Maps are safe for concurrent writes?", Options: []string{"yes", "no"}, CorrectOption: 1},
		},
	}
}

func quizServiceForTest(quiz *models.Quiz, attempts *[]*models.QuizAttempt, pointsAwarded *int) *QuizService {
	quizRepo := &quizRepoStub{
		getByIDFn: func(_ context.Context, _ uint) (*models.Quiz, error) { return quiz, nil },
		createAttemptFn: func(_ context.Context, a *models.QuizAttempt) error {
			if attempts != nil {
				*attempts = append(*attempts, a)
			}
			return nil
		},
	}
	userRepo := noopUserRepo()
	userRepo.addPointsFn = func(_ context.Context, _ uint, delta int) error {
		if pointsAwarded != nil {
			*pointsAwarded += delta
		}
		return nil
	}
	return NewQuizService(quizRepo, userRepo, nil)
}

func TestQuizService_Submit_Scoring(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	tests := []struct {
		name        string
		answers     []int
		wantScore   int
		wantPercent int
		wantPassed  bool
	}{
		{"all correct", []int{1, 0, 1}, 3, 100, true},
		{"two of three is 66 percent and fails the 70 mark", []int{1, 0, 0}, 2, 66, false},
		{"none correct", []int{0, 1, 0}, 0, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var attempts []*models.QuizAttempt
			points := 0
			svc := quizServiceForTest(sampleQuiz(), &attempts, &points)

			attempt, err := svc.Submit(ctx, SubmitQuizInput{UserID: 42, QuizID: 5, Answers: tt.answers})
			require.NoError(t, err)
			assert.Equal(t, tt.wantScore, attempt.Score)
			assert.Equal(t, 3, attempt.Total)
			assert.Equal(t, tt.wantPercent, attempt.Percent)
			assert.Equal(t, tt.wantPassed, attempt.Passed)
			require.Len(t, attempts, 1)

			if tt.wantPassed {
				assert.Equal(t, 10, points)
			} else {
				assert.Zero(t, points)
			}
		})
	}
}

func TestQuizService_Submit_Validation(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("anonymous", func(t *testing.T) {
		svc := quizServiceForTest(sampleQuiz(), nil, nil)
		_, err := svc.Submit(ctx, SubmitQuizInput{UserID: 0, QuizID: 5, Answers: []int{1, 0, 1}})
		assertUnauthorizedError(t, err)
	})

	t.Run("wrong answer count", func(t *testing.T) {
		svc := quizServiceForTest(sampleQuiz(), nil, nil)
		_, err := svc.Submit(ctx, SubmitQuizInput{UserID: 42, QuizID: 5, Answers: []int{1}})
		assertValidationError(t, err)
	})

	t.Run("answer out of range", func(t *testing.T) {
		svc := quizServiceForTest(sampleQuiz(), nil, nil)
		_, err := svc.Submit(ctx, SubmitQuizInput{UserID: 42, QuizID: 5, Answers: []int{1, 7, 1}})
		assertValidationError(t, err)
	})

	t.Run("empty quiz", func(t *testing.T) {
		quiz := sampleQuiz()
		quiz.Questions = nil
		svc := quizServiceForTest(quiz, nil, nil)
		_, err := svc.Submit(ctx, SubmitQuizInput{UserID: 42, QuizID: 5, Answers: nil})
		assertValidationError(t, err)
	})
}

func TestQuizService_Submit_PointCreditFailureKeepsAttempt(t *testing.T) {
	t.Parallel()

	quizRepo := &quizRepoStub{
		getByIDFn:       func(_ context.Context, _ uint) (*models.Quiz, error) { return sampleQuiz(), nil },
		createAttemptFn: func(_ context.Context, _ *models.QuizAttempt) error { return nil },
	}
	userRepo := noopUserRepo()
	userRepo.addPointsFn = func(_ context.Context, _ uint, _ int) error {
		return models.NewNotFoundError("User", 42)
	}
	svc := NewQuizService(quizRepo, userRepo, nil)

	attempt, err := svc.Submit(context.Background(), SubmitQuizInput{UserID: 42, QuizID: 5, Answers: []int{1, 0, 1}})
	require.NoError(t, err)
	assert.True(t, attempt.Passed)
}
