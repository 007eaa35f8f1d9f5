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

	"google.golang.org/genai"

	"github.com/lullai/config"
	"github.com/lullai/pkg/commons"
)

type googleClassifier struct {
	cfg    *config.AppConfig
	logger commons.Logger
}

func NewGoogleClassifier(cfg *config.AppConfig, logger commons.Logger) (Classifier, error) {
	if cfg.ClassifierConfig.GoogleApiKey == "" {
		return nil, errors.New("google classifier requires an api key")
	}
	return &googleClassifier{cfg: cfg, logger: logger}, nil
}

func (c *googleClassifier) Name() string { return "google" }

func (c *googleClassifier) Classify(ctx context.Context, audio *Audio) (*Analysis, error) {
	// Gemini takes the clip as a real audio part, so the instruction text
	// goes without the embedded payload the text-only providers get.
	instruction, tokens, err := BuildInstruction(audio, c.cfg.ClassifierConfig.PromptVersion)
	if err != nil {
		return nil, err
	}
	c.logger.Debugf("classification request started for google: model=%s, promptTokens=%d, audioBytes=%d",
		c.cfg.ClassifierConfig.Model, tokens, len(audio.WAV))

	// single minute timeout and cancellable by the client as context will get cancel
	ctx, cancel := context.WithTimeout(ctx, classifyTimeout(c.cfg))
	defer cancel()

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  c.cfg.ClassifierConfig.GoogleApiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		c.logger.Errorf("unable to get client for google %v", err)
		return nil, fmt.Errorf("google classification failed: %w", err)
	}

	parts := []*genai.Part{genai.NewPartFromText(instruction)}
	if len(audio.WAV) > 0 {
		parts = append(parts, genai.NewPartFromBytes(audio.WAV, audio.MimeType))
	}
	contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}

	resp, err := client.Models.GenerateContent(ctx, c.cfg.ClassifierConfig.Model, contents, nil)
	if err != nil {
		c.logger.Errorf("classification response from google %v", err)
		return nil, fmt.Errorf("google classification failed: %w", err)
	}

	reply := resp.Text()
	if reply == "" {
		return nil, errors.New("google returned an empty completion")
	}

	return ParseAnalysis(reply), nil
}
