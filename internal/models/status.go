package models

// ReviewStatus defines lifecycle states for a blog post in the
// review/publication workflow.
type ReviewStatus string

const (
	// StatusDraft indicates the post is being written and is editable by its author.
	StatusDraft ReviewStatus = "draft"
	// StatusUnderReview indicates the post awaits moderation and is frozen for the author.
	StatusUnderReview ReviewStatus = "under_review"
	// StatusPublished indicates the post is live and visible to anonymous readers.
	StatusPublished ReviewStatus = "published"
	// StatusRejected indicates a moderator declined the post; the author may revise and resubmit.
	StatusRejected ReviewStatus = "rejected"
	// StatusScheduled indicates the post was approved with a future publish time.
	StatusScheduled ReviewStatus = "scheduled"
	// StatusArchived indicates the post was taken out of rotation. Terminal.
	StatusArchived ReviewStatus = "archived"
)

// transitions is the single source of truth for which status changes are
// legal. Every mutating operation consults CanTransition; nothing else may
// decide transition legality.
var transitions = map[ReviewStatus]map[ReviewStatus]bool{
	StatusDraft:       {StatusUnderReview: true},
	StatusRejected:    {StatusUnderReview: true, StatusArchived: true},
	StatusUnderReview: {StatusPublished: true, StatusScheduled: true, StatusRejected: true, StatusDraft: true},
	StatusScheduled:   {StatusPublished: true},
	StatusPublished:   {StatusArchived: true},
	StatusArchived:    {},
}

// Valid reports whether s is a known review status.
func (s ReviewStatus) Valid() bool {
	_, ok := transitions[s]
	return ok
}

// CanTransition reports whether a post may move from s to target.
func (s ReviewStatus) CanTransition(target ReviewStatus) bool {
	return transitions[s][target]
}

// Editable reports whether the owning author may mutate post content in
// status s. Under-review and published posts are frozen.
func (s ReviewStatus) Editable() bool {
	return s == StatusDraft || s == StatusRejected
}

// Submittable reports whether the owning author may submit the post for
// review from status s.
func (s ReviewStatus) Submittable() bool {
	return s.CanTransition(StatusUnderReview)
}
