// Copyright (c) 2024-2026 Lulla AI
// Author: Lulla Engineering <engineering@lulla.ai>
//
// Licensed under GPL-2.0 with Lulla Additional Terms.
// See LICENSE.md or contact sales@lulla.ai for commercial usage.

package internal_alert

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	aws_config "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	ses_types "github.com/aws/aws-sdk-go-v2/service/ses/types"

	"github.com/lullai/config"
	"github.com/lullai/pkg/commons"
)

// sesChannel mails through Amazon SES for deployments that run on AWS
// without a Sendgrid account. The dispatcher enables it only when
// Sendgrid is not configured, so there is always exactly one mail path.
type sesChannel struct {
	cfg    *config.AlertConfig
	logger commons.Logger
}

func newSesChannel(cfg *config.AlertConfig, logger commons.Logger) channel {
	return &sesChannel{cfg: cfg, logger: logger}
}

func (c *sesChannel) Name() string { return "ses" }

func (c *sesChannel) getClient(ctx context.Context) (*ses.Client, error) {
	awsCfg, err := aws_config.LoadDefaultConfig(ctx,
		aws_config.WithRegion(c.cfg.SesRegion),
		aws_config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(c.cfg.SesAccessKey, c.cfg.SesSecretKey, ""),
		),
	)
	if err != nil {
		c.logger.Errorf("unable to get client for ses %v", err)
		return nil, errors.New("unable to resolve the credential for aws")
	}
	return ses.NewFromConfig(awsCfg), nil
}

func (c *sesChannel) Send(ctx context.Context, alert *Alert) error {
	if alert.Email == "" {
		c.logger.Debugf("ses alert skipped for recording %s: no address on file", alert.RecordingId)
		return nil
	}

	client, err := c.getClient(ctx)
	if err != nil {
		return err
	}

	subject, body := mailContent(alert)
	_, err = client.SendEmail(ctx, &ses.SendEmailInput{
		Source:      aws.String(c.cfg.FromEmail),
		Destination: &ses_types.Destination{ToAddresses: []string{alert.Email}},
		Message: &ses_types.Message{
			Subject: &ses_types.Content{Data: aws.String(subject)},
			Body:    &ses_types.Body{Text: &ses_types.Content{Data: aws.String(body)}},
		},
	})
	if err != nil {
		return fmt.Errorf("ses send failed: %w", err)
	}
	return nil
}
