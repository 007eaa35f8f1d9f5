// Copyright (c) 2024-2026 Lulla AI
// Author: Lulla Engineering <engineering@lulla.ai>
//
// Licensed under GPL-2.0 with Lulla Additional Terms.
// See LICENSE.md or contact sales@lulla.ai for commercial usage.

package internal_alert

import (
	"context"
	"fmt"

	"github.com/go-resty/resty/v2"

	"github.com/lullai/config"
	"github.com/lullai/pkg/commons"
)

type webhookChannel struct {
	cfg    *config.AlertConfig
	logger commons.Logger
	client *resty.Client
}

func newWebhookChannel(cfg *config.AlertConfig, logger commons.Logger) channel {
	return &webhookChannel{
		cfg:    cfg,
		logger: logger,
		client: resty.New().SetTimeout(sendTimeout),
	}
}

func (c *webhookChannel) Name() string { return "webhook" }

// Send posts the alert as JSON to the configured endpoint. One attempt,
// like every other outbound call in this service.
func (c *webhookChannel) Send(ctx context.Context, alert *Alert) error {
	response, err := c.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(alert).
		Post(c.cfg.WebhookUrl)
	if err != nil {
		return fmt.Errorf("webhook post failed: %w", err)
	}
	if response.IsError() {
		return fmt.Errorf("webhook returned status %d", response.StatusCode())
	}
	return nil
}
