package messaging

import (
	"github.com/ThreeDotsLabs/watermill"
	"go.uber.org/zap"
)

// NewWatermillLogger adapts the service logger to the interface the stream
// transport expects, so publisher and subscriber internals log through the
// same zap pipeline as the rest of the service.
func NewWatermillLogger(logger *zap.Logger) watermill.LoggerAdapter {
	return streamLogger{logger: logger}
}

type streamLogger struct {
	logger *zap.Logger
}

func (l streamLogger) Error(msg string, err error, fields watermill.LogFields) {
	l.logger.Error(msg, l.convert(fields, zap.Error(err))...)
}

func (l streamLogger) Info(msg string, fields watermill.LogFields) {
	l.logger.Info(msg, l.convert(fields)...)
}

func (l streamLogger) Debug(msg string, fields watermill.LogFields) {
	l.logger.Debug(msg, l.convert(fields)...)
}

// Trace maps to debug; zap has no level below it.
func (l streamLogger) Trace(msg string, fields watermill.LogFields) {
	l.logger.Debug(msg, l.convert(fields)...)
}

func (l streamLogger) With(fields watermill.LogFields) watermill.LoggerAdapter {
	return streamLogger{logger: l.logger.With(l.convert(fields)...)}
}

func (streamLogger) convert(fields watermill.LogFields, extra ...zap.Field) []zap.Field {
	out := make([]zap.Field, 0, len(fields)+len(extra))
	for key, value := range fields {
		out = append(out, zap.Any(key, value))
	}

	return append(out, extra...)
}
