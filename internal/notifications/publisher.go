package notifications

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"atheneum/internal/middleware"
	"atheneum/internal/models"
	"atheneum/internal/observability"
	"atheneum/internal/repository"

	"go.opentelemetry.io/otel/attribute"
)

// publisherBatchSize bounds how many due posts one tick will flip.
const publisherBatchSize = 50

// ScheduledPublisher ticks on an interval and publishes scheduled posts
// whose time has come. Each flip goes through the same conditional status
// update as a manual approval, so a racing moderator action and the
// publisher can never both win.
type ScheduledPublisher struct {
	postRepo repository.PostRepository
	interval time.Duration

	started  bool
	stopOnce sync.Once
	stop     chan struct{}
	done     chan struct{}
}

// NewScheduledPublisher creates a publisher loop. A zero or negative
// interval disables it; StartWiring then does nothing.
func NewScheduledPublisher(postRepo repository.PostRepository, interval time.Duration) *ScheduledPublisher {
	return &ScheduledPublisher{
		postRepo: postRepo,
		interval: interval,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Name returns a human-readable identifier for this component.
func (p *ScheduledPublisher) Name() string { return "scheduled publisher" }

// StartWiring starts the tick loop. The notifier is unused; the publisher
// shares the wiring contract so the server can manage it like the hubs.
func (p *ScheduledPublisher) StartWiring(ctx context.Context, _ *Notifier) error {
	if p.interval <= 0 {
		return nil
	}

	p.started = true
	go func() {
		defer close(p.done)
		ticker := time.NewTicker(p.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-p.stop:
				return
			case <-ticker.C:
				p.PublishDue(ctx, time.Now())
			}
		}
	}()
	return nil
}

// PublishDue flips every scheduled post whose scheduled_for has passed.
// Returns how many posts were published this pass.
func (p *ScheduledPublisher) PublishDue(ctx context.Context, now time.Time) int {
	span, ctx := observability.NewSpan(ctx, "publisher.publish_due")
	defer span.End()

	due, err := p.postRepo.ListDueScheduled(ctx, now, publisherBatchSize)
	if err != nil {
		span.SetError(err)
		slog.Error("scheduled publisher list failed", "error", err)
		return 0
	}

	published := 0
	for _, post := range due {
		err := p.postRepo.UpdateStatusFrom(ctx, post.ID, models.StatusScheduled, models.StatusPublished, map[string]any{
			"published_at": now,
		})
		if err != nil {
			if errors.Is(err, repository.ErrStaleStatus) {
				// Someone moved the post since the listing; nothing to do.
				middleware.ReviewTransitions.WithLabelValues("scheduled_publish", "stale").Inc()
				continue
			}
			slog.Error("scheduled publish failed", "post_id", post.ID, "error", err)
			middleware.ReviewTransitions.WithLabelValues("scheduled_publish", "error").Inc()
			continue
		}
		middleware.ReviewTransitions.WithLabelValues("scheduled_publish", "applied").Inc()
		slog.Info("scheduled post published", "post_id", post.ID, "scheduled_for", post.ScheduledFor)
		published++
	}
	span.AddAttributes(attribute.Int("publisher.due", len(due)), attribute.Int("publisher.published", published))
	return published
}

// Shutdown stops the loop and waits for the current pass to finish.
func (p *ScheduledPublisher) Shutdown(ctx context.Context) error {
	p.stopOnce.Do(func() { close(p.stop) })
	if !p.started {
		return nil
	}
	select {
	case <-p.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
