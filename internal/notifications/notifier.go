// Package notifications delivers moderation feedback to authors in real
// time over Redis pub/sub and websockets.
package notifications

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"runtime/debug"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// FeedbackEvent is the payload published when a moderator rejects a post
// or requests a revision.
type FeedbackEvent struct {
	Type     string    `json:"type"`
	PostID   uint      `json:"post_id"`
	AuthorID uint      `json:"author_id"`
	Action   string    `json:"action"`
	Feedback string    `json:"feedback"`
	At       time.Time `json:"at"`
}

// Notifier publishes events into per-author Redis channels.
type Notifier struct {
	rdb *redis.Client
}

// NewNotifier creates a new Notifier instance using the provided Redis client.
func NewNotifier(rdb *redis.Client) *Notifier {
	return &Notifier{rdb: rdb}
}

// PublishFeedback sends a moderation feedback event to the author's
// channel. Best-effort: the feedback is persisted on the post regardless.
func (n *Notifier) PublishFeedback(ctx context.Context, authorID, postID uint, action, feedback string) error {
	if n.rdb == nil {
		return nil
	}
	payload, err := json.Marshal(FeedbackEvent{
		Type:     "moderation_feedback",
		PostID:   postID,
		AuthorID: authorID,
		Action:   action,
		Feedback: feedback,
		At:       time.Now(),
	})
	if err != nil {
		return fmt.Errorf("marshal feedback event: %w", err)
	}
	return n.rdb.Publish(ctx, AuthorChannel(authorID), payload).Err()
}

// StartPatternSubscriber subscribes to the pattern `feedback:author:*` and
// calls onMessage for each incoming message.
func (n *Notifier) StartPatternSubscriber(
	ctx context.Context, onMessage func(channel string, payload string),
) error {
	if n.rdb == nil {
		return nil
	}
	sub := n.rdb.PSubscribe(ctx, "feedback:author:*")
	ch := sub.Channel()

	go func() {
		defer func() { _ = sub.Close() }()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				func() {
					defer func() {
						if r := recover(); r != nil {
							slog.Error("panic in feedback subscriber", "panic", r, "stack", string(debug.Stack()))
						}
					}()
					onMessage(msg.Channel, msg.Payload)
				}()
			}
		}
	}()

	return nil
}

// AuthorChannel derives the Redis channel name for an author's feedback.
func AuthorChannel(authorID uint) string {
	return "feedback:author:" + strconv.FormatUint(uint64(authorID), 10)
}
