package cache

import (
	"context"
	"fmt"
	"time"
)

const (
	PostKeyPrefix     = "post:%d"
	UserKeyPrefix     = "user:%d"
	PublishedListKey  = "posts:published"
	QuizKeyPrefix     = "quiz:%d"
	LeaderboardSetKey = "leaderboard:points"
)

const (
	PostTTL          = 30 * time.Minute
	UserTTL          = 5 * time.Minute
	PublishedListTTL = 2 * time.Minute
	QuizTTL          = 10 * time.Minute
)

func PostKey(postID uint) string {
	return fmt.Sprintf(PostKeyPrefix, postID)
}

func UserKey(userID uint) string {
	return fmt.Sprintf(UserKeyPrefix, userID)
}

func QuizKey(quizID uint) string {
	return fmt.Sprintf(QuizKeyPrefix, quizID)
}

func Invalidate(ctx context.Context, key string) {
	if client != nil {
		client.Del(ctx, key)
	}
}

func InvalidatePost(ctx context.Context, postID uint) {
	Invalidate(ctx, PostKey(postID))
}

func InvalidateUser(ctx context.Context, userID uint) {
	Invalidate(ctx, UserKey(userID))
}

// InvalidatePublishedList drops the cached public listing. Called on every
// transition that changes what anonymous readers can see.
func InvalidatePublishedList(ctx context.Context) {
	Invalidate(ctx, PublishedListKey)
}
