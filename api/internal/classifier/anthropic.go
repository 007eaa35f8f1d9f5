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

	"github.com/anthropics/anthropic-sdk-go"
	anthropic_option "github.com/anthropics/anthropic-sdk-go/option"

	"github.com/lullai/config"
	"github.com/lullai/pkg/commons"
)

type anthropicClassifier struct {
	cfg    *config.AppConfig
	logger commons.Logger
	client anthropic.Client
}

func NewAnthropicClassifier(cfg *config.AppConfig, logger commons.Logger) (Classifier, error) {
	if cfg.ClassifierConfig.AnthropicApiKey == "" {
		return nil, errors.New("anthropic classifier requires an api key")
	}
	return &anthropicClassifier{
		cfg:    cfg,
		logger: logger,
		client: anthropic.NewClient(anthropic_option.WithAPIKey(cfg.ClassifierConfig.AnthropicApiKey)),
	}, nil
}

func (c *anthropicClassifier) Name() string { return "anthropic" }

func (c *anthropicClassifier) Classify(ctx context.Context, audio *Audio) (*Analysis, error) {
	prompt, tokens, err := BuildPrompt(audio, c.cfg.ClassifierConfig.PromptVersion)
	if err != nil {
		return nil, err
	}
	c.logger.Debugf("classification request started for anthropic: model=%s, promptTokens=%d",
		c.cfg.ClassifierConfig.Model, tokens)

	maxTokens := int64(c.cfg.ClassifierConfig.MaxTokens)
	if maxTokens <= 0 {
		maxTokens = 1024
	}

	// single minute timeout and cancellable by the client as context will get cancel
	ctx, cancel := context.WithTimeout(ctx, classifyTimeout(c.cfg))
	defer cancel()

	message, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(c.cfg.ClassifierConfig.Model),
		MaxTokens: maxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		c.logger.Errorf("classification response from anthropic %v", err)
		return nil, fmt.Errorf("anthropic classification failed: %w", err)
	}

	var reply strings.Builder
	for _, block := range message.Content {
		switch variant := block.AsAny().(type) {
		case anthropic.TextBlock:
			reply.WriteString(variant.Text)
		}
	}
	if reply.Len() == 0 {
		return nil, errors.New("anthropic returned an empty completion")
	}

	return ParseAnalysis(reply.String()), nil
}
