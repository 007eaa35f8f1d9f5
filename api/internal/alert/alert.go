// Copyright (c) 2024-2026 Lulla AI
// Author: Lulla Engineering <engineering@lulla.ai>
//
// Licensed under GPL-2.0 with Lulla Additional Terms.
// See LICENSE.md or contact sales@lulla.ai for commercial usage.

package internal_alert

import (
	"context"
	"time"

	internal_classifier "github.com/lullai/api/internal/classifier"
	"github.com/lullai/config"
	"github.com/lullai/pkg/commons"
	"github.com/lullai/pkg/utils"
)

// sendTimeout bounds each individual channel send. A slow provider must
// not hold the dispatch goroutine hostage.
const sendTimeout = 15 * time.Second

// Alert is what the outbound channels get to say about one urgent
// recording. Email goes to the owning caregiver when their address is
// known; SMS and webhook targets come from configuration.
type Alert struct {
	RecordingId string    `json:"recordingId"`
	UserId      string    `json:"userId"`
	Email       string    `json:"-"`
	Type        string    `json:"type"`
	Urgency     string    `json:"urgency"`
	Confidence  int       `json:"confidence"`
	Action      string    `json:"action"`
	CapturedAt  time.Time `json:"capturedAt"`
}

// channel is one outbound notification path. Implementations are built
// only when their credentials are configured, so a missing channel is
// simply absent from the dispatcher.
type channel interface {
	Name() string
	Send(ctx context.Context, alert *Alert) error
}

// Dispatcher fans urgent recordings out to every configured channel.
// Sends are fire-and-forget: failures are logged and never surface to the
// save path that triggered them.
type Dispatcher struct {
	logger   commons.Logger
	channels []channel
}

// NewDispatcher builds the dispatcher from configuration. With nothing
// configured it still works; it just has nowhere to send.
func NewDispatcher(cfg *config.AppConfig, logger commons.Logger) *Dispatcher {
	dispatcher := &Dispatcher{logger: logger}

	// one mail path: Sendgrid when configured, otherwise SES
	switch {
	case cfg.AlertConfig.SendgridApiKey != "":
		dispatcher.channels = append(dispatcher.channels, newEmailChannel(&cfg.AlertConfig, logger))
	case cfg.AlertConfig.SesRegion != "" && cfg.AlertConfig.SesAccessKey != "" && cfg.AlertConfig.SesSecretKey != "":
		dispatcher.channels = append(dispatcher.channels, newSesChannel(&cfg.AlertConfig, logger))
	}
	if cfg.AlertConfig.TwilioAccountSid != "" && cfg.AlertConfig.TwilioAuthToken != "" {
		dispatcher.channels = append(dispatcher.channels, newSmsChannel(&cfg.AlertConfig, logger))
	}
	if cfg.AlertConfig.WebhookUrl != "" {
		dispatcher.channels = append(dispatcher.channels, newWebhookChannel(&cfg.AlertConfig, logger))
	}

	for _, ch := range dispatcher.channels {
		logger.Infof("alert channel enabled: %s", ch.Name())
	}
	return dispatcher
}

// Notify fans the alert out in the background and returns immediately.
// Only high-urgency alerts go anywhere.
func (d *Dispatcher) Notify(ctx context.Context, alert *Alert) {
	if alert == nil || internal_classifier.ParseUrgency(alert.Urgency) != internal_classifier.UrgencyHigh {
		return
	}
	if len(d.channels) == 0 {
		return
	}

	utils.Go(ctx, func() {
		d.dispatch(context.Background(), alert)
	})
}

// dispatch delivers to each channel in turn. Sequential is deliberate:
// an alert fans out to at most three channels and ordering failures in
// the log beats interleaving them.
func (d *Dispatcher) dispatch(ctx context.Context, alert *Alert) {
	start := time.Now()
	for _, ch := range d.channels {
		sendCtx, cancel := context.WithTimeout(ctx, sendTimeout)
		if err := ch.Send(sendCtx, alert); err != nil {
			d.logger.Errorf("alert send failed on %s for recording %s: %v", ch.Name(), alert.RecordingId, err)
		} else {
			d.logger.Infof("alert sent: channel=%s, recordingId=%s, type=%s", ch.Name(), alert.RecordingId, alert.Type)
		}
		cancel()
	}
	d.logger.Benchmark("AlertDispatcher.dispatch", time.Since(start))
}
