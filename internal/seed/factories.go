// Package seed provides helpers to create test and demo data for the
// application database. These helpers are intended for development and
// testing only.
package seed

import (
	"fmt"
	"math/rand"
	"time"

	"atheneum/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Factory builds domain entities and persists them to the database.
// It is a thin helper used by seed presets and tests.
type Factory struct {
	db *gorm.DB
	r  *rand.Rand
}

// NewFactory creates a new Factory bound to the provided Gorm DB.
func NewFactory(db *gorm.DB) *Factory {
	gofakeit.Seed(time.Now().UnixNano())
	return &Factory{
		db: db,
		r:  rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// CreateUser persists a random user. All seeded accounts share the password
// "password123!ABC" so developers can log in as any of them.
func (f *Factory) CreateUser(admin bool, overrides ...func(*models.User)) (*models.User, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte("password123!ABC"), bcrypt.MinCost)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Username: fmt.Sprintf("%s%d", gofakeit.Username(), f.r.Intn(10000)),
		Email:    gofakeit.Email(),
		Password: string(hashed),
		Bio:      gofakeit.Sentence(8),
		Avatar:   fmt.Sprintf("https://picsum.photos/seed/%s/200/200", gofakeit.UUID()),
		IsAdmin:  admin,
	}
	for _, override := range overrides {
		override(user)
	}

	if err := f.db.Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// BuildPost constructs an unsaved post for the given author in the given
// workflow status, with the timestamps that status implies.
func (f *Factory) BuildPost(author *models.User, status models.ReviewStatus, overrides ...func(*models.Post)) *models.Post {
	post := &models.Post{
		Title:    gofakeit.Sentence(5),
		Content:  gofakeit.Paragraph(3, 4, 12, "\n\n"),
		Excerpt:  gofakeit.Sentence(12),
		Tags:     []string{gofakeit.Word(), gofakeit.Word()},
		AuthorID: author.ID,
		Status:   status,
	}

	// Spread created_at over the past 90 days.
	daysBack := f.r.Intn(90)
	post.CreatedAt = time.Now().Add(-time.Duration(daysBack)*24*time.Hour -
		time.Duration(f.r.Intn(24))*time.Hour)

	now := time.Now()
	switch status {
	case models.StatusUnderReview:
		submitted := post.CreatedAt.Add(time.Hour)
		post.SubmittedAt = &submitted
	case models.StatusPublished:
		submitted := post.CreatedAt.Add(time.Hour)
		published := submitted.Add(2 * time.Hour)
		post.SubmittedAt = &submitted
		post.PublishedAt = &published
		post.ViewCount = uint(f.r.Intn(5000))
		post.FeaturedImage = fmt.Sprintf("https://picsum.photos/seed/%s/1200/630", gofakeit.UUID())
	case models.StatusScheduled:
		submitted := post.CreatedAt.Add(time.Hour)
		scheduled := now.Add(time.Duration(1+f.r.Intn(72)) * time.Hour)
		post.SubmittedAt = &submitted
		post.ScheduledFor = &scheduled
	case models.StatusRejected:
		submitted := post.CreatedAt.Add(time.Hour)
		post.SubmittedAt = &submitted
		post.AdminFeedback = gofakeit.Sentence(10)
	case models.StatusArchived:
		submitted := post.CreatedAt.Add(time.Hour)
		published := submitted.Add(2 * time.Hour)
		post.SubmittedAt = &submitted
		post.PublishedAt = &published
	}

	for _, override := range overrides {
		override(post)
	}
	return post
}

// CreatePost builds and persists a post.
func (f *Factory) CreatePost(author *models.User, status models.ReviewStatus, overrides ...func(*models.Post)) (*models.Post, error) {
	post := f.BuildPost(author, status, overrides...)
	if err := f.db.Create(post).Error; err != nil {
		return nil, err
	}
	return post, nil
}

// CreateQuiz persists a quiz with the given number of questions, each with
// four options and a random answer key.
func (f *Factory) CreateQuiz(questions int, overrides ...func(*models.Quiz)) (*models.Quiz, error) {
	if questions <= 0 {
		questions = 5
	}

	quiz := &models.Quiz{
		Title:        gofakeit.Sentence(4),
		Description:  gofakeit.Sentence(15),
		PassMark:     70,
		PointsReward: 10,
	}

	for i := 0; i < questions; i++ {
		quiz.Questions = append(quiz.Questions, models.QuizQuestion{
			Position: i,
			Prompt:   gofakeit.Question(),
			Options: []string{
				gofakeit.Word(), gofakeit.Word(), gofakeit.Word(), gofakeit.Word(),
			},
			CorrectOption: f.r.Intn(4),
		})
	}

	for _, override := range overrides {
		override(quiz)
	}

	if err := f.db.Create(quiz).Error; err != nil {
		return nil, err
	}
	return quiz, nil
}
