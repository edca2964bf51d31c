package notify

import (
	"context"
	"log/slog"
)

// LogSender writes messages to the log instead of a chat transport
type LogSender struct {
	logger *slog.Logger
}

// NewLogSender creates a sender that logs every message
func NewLogSender(logger *slog.Logger) *LogSender {
	return &LogSender{logger: logger.With("component", "log_sender")}
}

// Send logs msg
func (s *LogSender) Send(ctx context.Context, destination string, msg Message) error {
	s.logger.InfoContext(ctx, msg.Header, "destination", destination, "text", msg.Text())
	return nil
}
