package seed

import (
	"fmt"
	"os"
	"time"

	"atheneum/internal/models"

	"golang.org/x/crypto/bcrypt"
	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
)

// Preset is a declarative YAML fixture: exact users, posts and quizzes
// instead of random ones. Used for demo environments that need stable
// content and for repeatable manual testing.
type Preset struct {
	Users   []PresetUser `yaml:"users"`
	Posts   []PresetPost `yaml:"posts"`
	Quizzes []PresetQuiz `yaml:"quizzes"`
}

type PresetUser struct {
	Username string `yaml:"username"`
	Email    string `yaml:"email"`
	Password string `yaml:"password"`
	Admin    bool   `yaml:"admin"`
	Bio      string `yaml:"bio"`
}

type PresetPost struct {
	Author   string   `yaml:"author"` // username of an entry in Users
	Title    string   `yaml:"title"`
	Content  string   `yaml:"content"`
	Excerpt  string   `yaml:"excerpt"`
	Tags     []string `yaml:"tags"`
	Status   string   `yaml:"status"`
	Feedback string   `yaml:"feedback"`
}

type PresetQuiz struct {
	Title        string           `yaml:"title"`
	Description  string           `yaml:"description"`
	PassMark     int              `yaml:"pass_mark"`
	PointsReward int              `yaml:"points_reward"`
	Questions    []PresetQuestion `yaml:"questions"`
}

type PresetQuestion struct {
	Prompt        string   `yaml:"prompt"`
	Options       []string `yaml:"options"`
	CorrectOption int      `yaml:"correct_option"`
}

// LoadPreset reads and parses a YAML preset file.
func LoadPreset(path string) (*Preset, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read preset: %w", err)
	}
	var preset Preset
	if err := yaml.Unmarshal(raw, &preset); err != nil {
		return nil, fmt.Errorf("parse preset: %w", err)
	}
	return &preset, nil
}

// Apply persists the preset's entities. Users are created first so posts
// can reference them by username.
func (p *Preset) Apply(db *gorm.DB) error {
	usersByName := make(map[string]*models.User, len(p.Users))

	for _, pu := range p.Users {
		password := pu.Password
		if password == "" {
			password = "password123!ABC"
		}
		hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
		if err != nil {
			return err
		}

		user := &models.User{
			Username: pu.Username,
			Email:    pu.Email,
			Password: string(hashed),
			Bio:      pu.Bio,
			IsAdmin:  pu.Admin,
		}
		if err := db.Create(user).Error; err != nil {
			return fmt.Errorf("preset user %q: %w", pu.Username, err)
		}
		usersByName[pu.Username] = user
	}

	now := time.Now()
	for _, pp := range p.Posts {
		author, ok := usersByName[pp.Author]
		if !ok {
			return fmt.Errorf("preset post %q references unknown author %q", pp.Title, pp.Author)
		}

		status := models.ReviewStatus(pp.Status)
		if pp.Status == "" {
			status = models.StatusDraft
		}
		if !status.Valid() {
			return fmt.Errorf("preset post %q has unknown status %q", pp.Title, pp.Status)
		}

		post := &models.Post{
			Title:         pp.Title,
			Content:       pp.Content,
			Excerpt:       pp.Excerpt,
			Tags:          pp.Tags,
			AuthorID:      author.ID,
			Status:        status,
			AdminFeedback: pp.Feedback,
		}
		switch status {
		case models.StatusUnderReview:
			post.SubmittedAt = &now
		case models.StatusPublished, models.StatusArchived:
			post.SubmittedAt = &now
			post.PublishedAt = &now
		case models.StatusScheduled:
			post.SubmittedAt = &now
			scheduled := now.Add(24 * time.Hour)
			post.ScheduledFor = &scheduled
		case models.StatusRejected:
			post.SubmittedAt = &now
		}

		if err := db.Create(post).Error; err != nil {
			return fmt.Errorf("preset post %q: %w", pp.Title, err)
		}
	}

	for _, pq := range p.Quizzes {
		quiz := &models.Quiz{
			Title:        pq.Title,
			Description:  pq.Description,
			PassMark:     pq.PassMark,
			PointsReward: pq.PointsReward,
		}
		for i, q := range pq.Questions {
			if q.CorrectOption < 0 || q.CorrectOption >= len(q.Options) {
				return fmt.Errorf("preset quiz %q question %d: correct option out of range", pq.Title, i)
			}
			quiz.Questions = append(quiz.Questions, models.QuizQuestion{
				Position:      i,
				Prompt:        q.Prompt,
				Options:       q.Options,
				CorrectOption: q.CorrectOption,
			})
		}
		if err := db.Create(quiz).Error; err != nil {
			return fmt.Errorf("preset quiz %q: %w", pq.Title, err)
		}
	}

	return nil
}
