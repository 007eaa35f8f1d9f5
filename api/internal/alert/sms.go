// Copyright (c) 2024-2026 Lulla AI
// Author: Lulla Engineering <engineering@lulla.ai>
//
// Licensed under GPL-2.0 with Lulla Additional Terms.
// See LICENSE.md or contact sales@lulla.ai for commercial usage.

package internal_alert

import (
	"context"
	"fmt"

	"github.com/twilio/twilio-go"
	openapi "github.com/twilio/twilio-go/rest/api/v2010"

	"github.com/lullai/config"
	"github.com/lullai/pkg/commons"
)

type smsChannel struct {
	cfg    *config.AlertConfig
	logger commons.Logger
	client *twilio.RestClient
}

func newSmsChannel(cfg *config.AlertConfig, logger commons.Logger) channel {
	return &smsChannel{
		cfg:    cfg,
		logger: logger,
		client: twilio.NewRestClientWithParams(twilio.ClientParams{
			Username: cfg.TwilioAccountSid,
			Password: cfg.TwilioAuthToken,
		}),
	}
}

func (c *smsChannel) Name() string { return "sms" }

// Send texts the configured caregiver number. The twilio client has no
// context hook on CreateMessage; the dispatcher's timeout still bounds
// the surrounding dispatch.
func (c *smsChannel) Send(ctx context.Context, alert *Alert) error {
	if c.cfg.TwilioFromNumber == "" || c.cfg.TwilioToNumber == "" {
		c.logger.Debugf("sms alert skipped for recording %s: numbers not configured", alert.RecordingId)
		return nil
	}

	body := fmt.Sprintf("Lulla: %s cry detected at %s, urgency high (%d%%). %s",
		alert.Type, alert.CapturedAt.Format("15:04"), alert.Confidence, alert.Action)

	params := &openapi.CreateMessageParams{}
	params.SetTo(c.cfg.TwilioToNumber)
	params.SetFrom(c.cfg.TwilioFromNumber)
	params.SetBody(body)

	message, err := c.client.Api.CreateMessage(params)
	if err != nil {
		return fmt.Errorf("twilio message failed: %w", err)
	}

	sid := ""
	if message.Sid != nil {
		sid = *message.Sid
	}
	c.logger.Debugf("twilio message accepted: sid=%s, recordingId=%s", sid, alert.RecordingId)
	return nil
}
