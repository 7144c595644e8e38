package models

import (
	"time"

	"gorm.io/gorm"
)

// Quiz is a set of single-answer questions attached to course content.
type Quiz struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	Title       string `gorm:"not null" json:"title"`
	Description string `gorm:"type:text" json:"description"`
	// PassMark is the minimum percentage required to pass.
	PassMark int `gorm:"not null;default:70" json:"pass_mark"`
	// PointsReward is credited to the account on a passing attempt.
	PointsReward int            `gorm:"not null;default:10" json:"points_reward"`
	Questions    []QuizQuestion `gorm:"foreignKey:QuizID" json:"questions,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

// QuizQuestion is one question with a fixed option order and exactly one
// correct option. The correct index is never serialized to clients.
type QuizQuestion struct {
	ID            uint     `gorm:"primaryKey" json:"id"`
	QuizID        uint     `gorm:"not null;index" json:"quiz_id"`
	Position      int      `gorm:"not null" json:"position"`
	Prompt        string   `gorm:"type:text;not null" json:"prompt"`
	Options       []string `gorm:"serializer:json" json:"options"`
	CorrectOption int      `gorm:"not null" json:"-"`
}

// QuizAttempt records one scored submission.
type QuizAttempt struct {
	ID     uint `gorm:"primaryKey" json:"id"`
	QuizID uint `gorm:"not null;index" json:"quiz_id"`
	UserID uint `gorm:"not null;index" json:"user_id"`
	// Answers holds the chosen option index per question, in question
	// position order.
	Answers   []int     `gorm:"serializer:json" json:"answers"`
	Score     int       `gorm:"not null" json:"score"`
	Total     int       `gorm:"not null" json:"total"`
	Percent   int       `gorm:"not null" json:"percent"`
	Passed    bool      `gorm:"not null" json:"passed"`
	CreatedAt time.Time `json:"created_at"`
}
