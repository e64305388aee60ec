package clicks

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/serroba/shortlink/internal/messaging"
	"github.com/serroba/shortlink/internal/shortlink"
	"go.uber.org/zap"
)

// Recorder applies access events to the registry's click counters.
// It sits behind an at-least-once transport, so every event is deduplicated
// on its message id before the increment: replays never double-count.
type Recorder struct {
	registry shortlink.Registry
	dedup    Deduper
	logger   *zap.Logger
}

// NewRecorder creates a recorder.
func NewRecorder(registry shortlink.Registry, dedup Deduper, logger *zap.Logger) *Recorder {
	return &Recorder{
		registry: registry,
		dedup:    dedup,
		logger:   logger,
	}
}

// HandleAccessed is the consumer handler for TopicLinkAccessed.
// Unknown codes are dropped and acked: the link may never have existed, and
// redelivery cannot fix that. Storage failures return an error so the message
// is redelivered.
func (r *Recorder) HandleAccessed(ctx context.Context, eventID string, event *LinkAccessedEvent) error {
	first, err := r.dedup.First(ctx, eventID)
	if err != nil {
		return err
	}

	if !first {
		r.logger.Debug("duplicate access event dropped",
			zap.String("event_id", eventID),
			zap.String("code", event.Code),
		)

		return nil
	}

	err = r.registry.IncrementClicks(ctx, shortlink.Code(event.Code))
	if err != nil {
		if errors.Is(err, shortlink.ErrNotFound) {
			r.logger.Debug("access event for unknown code dropped",
				zap.String("code", event.Code),
			)

			return nil
		}

		// The id was claimed but nothing was applied. Release the claim so
		// the redelivered message is not mistaken for a duplicate.
		if forgetErr := r.dedup.Forget(ctx, eventID); forgetErr != nil {
			r.logger.Error("failed to unmark event after increment failure",
				zap.String("event_id", eventID),
				zap.Error(forgetErr),
			)
		}

		return fmt.Errorf("increment clicks for %s: %w", event.Code, err)
	}

	return nil
}

// NewAccessRecorder builds the resolver-side hook that turns a resolved link
// into a published access event. Publishing is fire-and-forget: the redirect
// already happened, so a publish failure is logged and the visit lost rather
// than failing the user request.
func NewAccessRecorder(
	publish messaging.Publish[LinkAccessedEvent],
	meta func(ctx context.Context) (clientIP, userAgent, referrer string),
	logger *zap.Logger,
) shortlink.AccessRecorder {
	return func(ctx context.Context, link *shortlink.ShortLink) {
		event := &LinkAccessedEvent{
			Code:       string(link.Code),
			AccessedAt: time.Now().UTC(),
		}

		if meta != nil {
			event.ClientIP, event.UserAgent, event.Referrer = meta(ctx)
		}

		if err := publish(event); err != nil {
			logger.Error("failed to publish access event",
				zap.String("code", event.Code),
				zap.Error(err),
			)
		}
	}
}
