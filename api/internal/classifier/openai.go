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
	"time"

	"github.com/openai/openai-go"
	openai_option "github.com/openai/openai-go/option"

	"github.com/lullai/config"
	"github.com/lullai/pkg/commons"
)

type openaiClassifier struct {
	cfg    *config.AppConfig
	logger commons.Logger
	client openai.Client
}

func NewOpenaiClassifier(cfg *config.AppConfig, logger commons.Logger) (Classifier, error) {
	if cfg.ClassifierConfig.OpenaiApiKey == "" {
		return nil, errors.New("openai classifier requires an api key")
	}
	return &openaiClassifier{
		cfg:    cfg,
		logger: logger,
		client: openai.NewClient(openai_option.WithAPIKey(cfg.ClassifierConfig.OpenaiApiKey)),
	}, nil
}

func (c *openaiClassifier) Name() string { return "openai" }

func (c *openaiClassifier) Classify(ctx context.Context, audio *Audio) (*Analysis, error) {
	prompt, tokens, err := BuildPrompt(audio, c.cfg.ClassifierConfig.PromptVersion)
	if err != nil {
		return nil, err
	}
	c.logger.Debugf("classification request started for openai: model=%s, promptTokens=%d",
		c.cfg.ClassifierConfig.Model, tokens)

	// single minute timeout and cancellable by the client as context will get cancel
	ctx, cancel := context.WithTimeout(ctx, classifyTimeout(c.cfg))
	defer cancel()

	params := openai.ChatCompletionNewParams{
		Model: openai.ChatModel(c.cfg.ClassifierConfig.Model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
	}
	if c.cfg.ClassifierConfig.MaxTokens > 0 {
		params.MaxTokens = openai.Int(int64(c.cfg.ClassifierConfig.MaxTokens))
	}

	completion, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		c.logger.Errorf("classification response from openai %v", err)
		return nil, fmt.Errorf("openai classification failed: %w", err)
	}
	if len(completion.Choices) == 0 {
		return nil, errors.New("openai returned an empty completion")
	}

	return ParseAnalysis(completion.Choices[0].Message.Content), nil
}

func classifyTimeout(cfg *config.AppConfig) time.Duration {
	if s := cfg.ClassifierConfig.TimeoutSeconds; s > 0 {
		return time.Duration(s) * time.Second
	}
	return time.Minute
}
