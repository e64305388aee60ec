package clicks

import (
	"context"

	"github.com/serroba/shortlink/internal/messaging"
	"go.uber.org/zap"
)

// NewAuditHandler returns a consumer handler that logs created links.
// Creation events carry no state to apply, so logging is the whole job.
func NewAuditHandler(logger *zap.Logger) messaging.Handler[LinkCreatedEvent] {
	return func(_ context.Context, _ string, event *LinkCreatedEvent) error {
		logger.Info("link created",
			zap.String("code", event.Code),
			zap.String("originalUrl", event.OriginalURL),
			zap.String("ownerId", event.OwnerID),
			zap.String("mode", event.Mode),
			zap.Time("createdAt", event.CreatedAt),
		)

		return nil
	}
}
