package seed

import (
	"fmt"
	"log"

	"atheneum/internal/models"

	"gorm.io/gorm"
)

// Options configuration for the seeder
type Options struct {
	NumAuthors  int
	NumPosts    int
	NumQuizzes  int
	ShouldClean bool
}

// statusMix is the rough distribution of workflow statuses across seeded
// posts; published dominates so the public feed looks alive.
var statusMix = []models.ReviewStatus{
	models.StatusPublished,
	models.StatusPublished,
	models.StatusPublished,
	models.StatusDraft,
	models.StatusUnderReview,
	models.StatusRejected,
	models.StatusScheduled,
	models.StatusArchived,
}

// Seed populates the database with demo authors, posts across all workflow
// statuses and quizzes. Intended for development environments only.
func Seed(db *gorm.DB, opts Options) error {
	if opts.NumAuthors <= 0 {
		opts.NumAuthors = 10
	}
	if opts.NumPosts <= 0 {
		opts.NumPosts = 50
	}
	if opts.NumQuizzes <= 0 {
		opts.NumQuizzes = 5
	}

	if opts.ShouldClean {
		if err := clearData(db); err != nil {
			return fmt.Errorf("clear existing data: %w", err)
		}
	}

	f := NewFactory(db)

	// One known admin account plus regular authors.
	admin, err := f.CreateUser(true, func(u *models.User) {
		u.Username = "editor"
		u.Email = "editor@atheneum.local"
	})
	if err != nil {
		return fmt.Errorf("create admin: %w", err)
	}

	authors := make([]*models.User, 0, opts.NumAuthors)
	for i := 0; i < opts.NumAuthors; i++ {
		author, err := f.CreateUser(false)
		if err != nil {
			return fmt.Errorf("create author: %w", err)
		}
		authors = append(authors, author)
	}

	for i := 0; i < opts.NumPosts; i++ {
		author := authors[i%len(authors)]
		status := statusMix[i%len(statusMix)]
		if _, err := f.CreatePost(author, status); err != nil {
			return fmt.Errorf("create post: %w", err)
		}
	}

	for i := 0; i < opts.NumQuizzes; i++ {
		if _, err := f.CreateQuiz(5); err != nil {
			return fmt.Errorf("create quiz: %w", err)
		}
	}

	log.Printf("seeded %d authors (+admin %q), %d posts, %d quizzes",
		opts.NumAuthors, admin.Username, opts.NumPosts, opts.NumQuizzes)
	return nil
}

func clearData(db *gorm.DB) error {
	// Delete in dependency order; hard delete so reruns start clean.
	for _, model := range []interface{}{
		&models.QuizAttempt{},
		&models.QuizQuestion{},
		&models.Quiz{},
		&models.Post{},
		&models.User{},
	} {
		if err := db.Unscoped().Where("1 = 1").Delete(model).Error; err != nil {
			return err
		}
	}
	return nil
}
