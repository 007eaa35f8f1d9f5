// Copyright (c) 2024-2026 Lulla AI
// Author: Lulla Engineering <engineering@lulla.ai>
//
// Licensed under GPL-2.0 with Lulla Additional Terms.
// See LICENSE.md or contact sales@lulla.ai for commercial usage.

package internal_alert

import (
	"context"
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/lullai/config"
	"github.com/lullai/pkg/commons"
)

type emailChannel struct {
	cfg    *config.AlertConfig
	logger commons.Logger
	client *sendgrid.Client
}

func newEmailChannel(cfg *config.AlertConfig, logger commons.Logger) channel {
	return &emailChannel{
		cfg:    cfg,
		logger: logger,
		client: sendgrid.NewSendClient(cfg.SendgridApiKey),
	}
}

func (c *emailChannel) Name() string { return "email" }

// mailContent renders the alert mail shared by every email transport.
func mailContent(alert *Alert) (subject, body string) {
	subject = fmt.Sprintf("Lulla alert: %s cry needs attention", alert.Type)
	body = fmt.Sprintf(
		"Your baby's recording at %s was classified as %q with high urgency (confidence %d%%).\n\nSuggested action: %s\n",
		alert.CapturedAt.Format("15:04"), alert.Type, alert.Confidence, alert.Action)
	return subject, body
}

// Send mails the caregiver whose capture triggered the alert. A recording
// saved without a known email address has nowhere to go and is skipped,
// not failed.
func (c *emailChannel) Send(ctx context.Context, alert *Alert) error {
	if alert.Email == "" {
		c.logger.Debugf("email alert skipped for recording %s: no address on file", alert.RecordingId)
		return nil
	}

	from := mail.NewEmail(c.cfg.FromName, c.cfg.FromEmail)
	to := mail.NewEmail("", alert.Email)
	subject, body := mailContent(alert)

	message := mail.NewSingleEmail(from, subject, to, body, "")
	response, err := c.client.SendWithContext(ctx, message)
	if err != nil {
		return fmt.Errorf("sendgrid send failed: %w", err)
	}
	if response.StatusCode >= 400 {
		return fmt.Errorf("sendgrid rejected the mail: status=%d, body=%s", response.StatusCode, response.Body)
	}
	return nil
}
