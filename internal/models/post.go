package models

import (
	"time"

	"gorm.io/gorm"
)

// Post represents a blog post moving through the review/publication
// workflow. Status changes go through the repository's conditional update
// so concurrent moderators cannot both win the same transition.
type Post struct {
	ID      uint   `gorm:"primaryKey" json:"id"`
	Title   string `gorm:"not null" json:"title"`
	Content string `gorm:"type:text;not null" json:"content"`
	Excerpt string `gorm:"type:text" json:"excerpt"`
	// Tags keep their submitted order; stored as a JSON array column.
	Tags           []string `gorm:"serializer:json" json:"tags,omitempty"`
	FeaturedImage  string   `json:"featured_image,omitempty"`
	SEOTitle       string   `json:"seo_title,omitempty"`
	SEODescription string   `json:"seo_description,omitempty"`

	AuthorID uint `gorm:"not null;index" json:"author_id"`
	Author   User `gorm:"foreignKey:AuthorID" json:"author"`
	// Denormalized byline fields; optional, shown instead of the account
	// profile when set.
	AuthorTitle    string `json:"author_title,omitempty"`
	AuthorImageURL string `json:"author_image_url,omitempty"`

	Status ReviewStatus `gorm:"type:varchar(20);not null;default:'draft';index" json:"status"`
	// AdminFeedback holds the last moderation comment. Set only by reject
	// and request-revision; overwritten by the next moderation action,
	// never cleared by the author.
	AdminFeedback string     `gorm:"type:text" json:"admin_feedback,omitempty"`
	SubmittedAt   *time.Time `json:"submitted_at,omitempty"`
	PublishedAt   *time.Time `json:"published_at,omitempty"`
	ScheduledFor  *time.Time `json:"scheduled_for,omitempty"`

	// ViewCount is incremented atomically in SQL on public reads.
	ViewCount uint `gorm:"not null;default:0" json:"view_count"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// VisibleTo reports whether the given viewer may read this post.
// Published posts are public; everything else is visible only to the
// owning author and to admins.
func (p *Post) VisibleTo(v Viewer) bool {
	if p.Status == StatusPublished {
		return true
	}
	return v.IsAdmin || (v.UserID != 0 && v.UserID == p.AuthorID)
}

// Viewer identifies the caller of a read operation. The zero value is an
// anonymous reader. Passed explicitly into every operation; there is no
// ambient current-user state.
type Viewer struct {
	UserID  uint
	IsAdmin bool
}
