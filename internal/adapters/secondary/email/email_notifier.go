package email

import (
	"context"
	"log/slog"
	"net/mail"

	"github.com/lorrc/ticket-metrics/internal/core/ports"
)

// MockSMTPNotifier is a secondary adapter that mocks sending emails.
// It implements the ports.Notifier interface.
type MockSMTPNotifier struct {
	logger *slog.Logger
}

// NewMockSMTPNotifier creates a new mock notifier logging through logger.
func NewMockSMTPNotifier(logger *slog.Logger) ports.Notifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &MockSMTPNotifier{
		logger: logger.With("component", "email_notifier"),
	}
}

// Notify logs one mock email per recipient instead of sending it.
// Malformed addresses are logged and skipped.
func (n *MockSMTPNotifier) Notify(ctx context.Context, params ports.NotificationParams) {
	for _, recipient := range params.Recipients {
		addr, err := mail.ParseAddress(recipient)
		if err != nil {
			n.logger.WarnContext(ctx, "skipping invalid alert recipient",
				"recipient", recipient,
				"error", err,
			)
			continue
		}

		n.logger.InfoContext(ctx, "mock email sent",
			"to_name", addr.Name,
			"to_email", addr.Address,
			"subject", params.Subject,
			"message", params.Message,
			"dataset", params.Dataset,
		)
	}
}
