// Copyright (c) 2024-2026 Lulla AI
// Author: Lulla Engineering <engineering@lulla.ai>
//
// Licensed under GPL-2.0 with Lulla Additional Terms.
// See LICENSE.md or contact sales@lulla.ai for commercial usage.

package internal_classifier

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	aws_config "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	bedrock_types "github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"
	"github.com/aws/smithy-go/logging"

	"github.com/lullai/config"
	"github.com/lullai/pkg/commons"
)

type bedrockClassifier struct {
	cfg    *config.AppConfig
	logger commons.Logger
}

func NewBedrockClassifier(cfg *config.AppConfig, logger commons.Logger) (Classifier, error) {
	cc := cfg.ClassifierConfig
	if cc.BedrockRegion == "" || cc.BedrockAccessKey == "" || cc.BedrockSecretKey == "" {
		return nil, errors.New("bedrock classifier requires region, access key and secret key")
	}
	return &bedrockClassifier{cfg: cfg, logger: logger}, nil
}

func (c *bedrockClassifier) Name() string { return "bedrock" }

// Logf routes the aws sdk logger onto the service logger.
func (c *bedrockClassifier) Logf(classification logging.Classification, format string, v ...interface{}) {
	c.logger.Debugf(format, v...)
}

func (c *bedrockClassifier) getClient(ctx context.Context) (*bedrockruntime.Client, error) {
	cc := c.cfg.ClassifierConfig
	awsCfg, err := aws_config.LoadDefaultConfig(ctx,
		aws_config.WithRegion(cc.BedrockRegion),
		aws_config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cc.BedrockAccessKey, cc.BedrockSecretKey, ""),
		),
		aws_config.WithLogger(c),
	)
	if err != nil {
		c.logger.Errorf("unable to get client for bedrock %v", err)
		return nil, errors.New("unable to resolve the credential for aws")
	}
	return bedrockruntime.NewFromConfig(awsCfg), nil
}

func (c *bedrockClassifier) Classify(ctx context.Context, audio *Audio) (*Analysis, error) {
	prompt, tokens, err := BuildPrompt(audio, c.cfg.ClassifierConfig.PromptVersion)
	if err != nil {
		return nil, err
	}
	c.logger.Debugf("classification request started for bedrock: model=%s, promptTokens=%d",
		c.cfg.ClassifierConfig.Model, tokens)

	client, err := c.getClient(ctx)
	if err != nil {
		return nil, err
	}

	llmRequest := bedrockruntime.ConverseInput{
		ModelId: aws.String(c.cfg.ClassifierConfig.Model),
		Messages: []bedrock_types.Message{
			{
				Role: "user",
				Content: []bedrock_types.ContentBlock{
					&bedrock_types.ContentBlockMemberText{Value: prompt},
				},
			},
		},
	}
	if c.cfg.ClassifierConfig.MaxTokens > 0 {
		llmRequest.InferenceConfig = &bedrock_types.InferenceConfiguration{
			MaxTokens: aws.Int32(int32(c.cfg.ClassifierConfig.MaxTokens)),
		}
	}

	// single minute timeout and cancellable by the client as context will get cancel
	ctx, cancel := context.WithTimeout(ctx, classifyTimeout(c.cfg))
	defer cancel()

	resp, err := client.Converse(ctx, &llmRequest)
	if err != nil {
		c.logger.Errorf("classification response from bedrock %v", err)
		return nil, fmt.Errorf("bedrock classification failed: %w", err)
	}

	var reply strings.Builder
	switch v := resp.Output.(type) {
	case *bedrock_types.ConverseOutputMemberMessage:
		for _, choice := range v.Value.Content {
			switch x := choice.(type) {
			case *bedrock_types.ContentBlockMemberText:
				reply.WriteString(x.Value)
			}
		}
	}
	if reply.Len() == 0 {
		return nil, errors.New("bedrock returned an empty completion")
	}

	return ParseAnalysis(reply.String()), nil
}
