package email_test

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/lorrc/ticket-metrics/internal/adapters/secondary/email"
	"github.com/lorrc/ticket-metrics/internal/core/ports"
	"github.com/stretchr/testify/assert"
)

func TestMockSMTPNotifier_Notify(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	notifier := email.NewMockSMTPNotifier(logger)

	notifier.Notify(context.Background(), ports.NotificationParams{
		Recipients: []string{"Gestao TI <gestao@example.com>", "not-an-address", "ti@example.com"},
		Subject:    "SLA abaixo da meta em sla",
		Dataset:    "sla",
	})

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Len(t, lines, 3)
	assert.Contains(t, lines[0], `"to_email":"gestao@example.com"`)
	assert.Contains(t, lines[1], "skipping invalid alert recipient")
	assert.Contains(t, lines[2], `"to_email":"ti@example.com"`)
	assert.Contains(t, lines[2], `"component":"email_notifier"`)
}
