// Copyright (c) 2024-2026 Lulla AI
// Author: Lulla Engineering <engineering@lulla.ai>
//
// Licensed under GPL-2.0 with Lulla Additional Terms.
// See LICENSE.md or contact sales@lulla.ai for commercial usage.

package internal_classifier

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lullai/config"
	"github.com/lullai/pkg/commons"
)

func newTestLogger(t *testing.T) commons.Logger {
	logger, err := commons.NewApplicationLogger(
		commons.Name("test-classifier"),
		commons.Path(t.TempDir()),
		commons.Level("debug"),
	)
	require.NoError(t, err)
	return logger
}

func classifierConfig(provider string) *config.AppConfig {
	return &config.AppConfig{
		ClassifierConfig: config.ClassifierConfig{
			Provider:         provider,
			Model:            "test-model",
			OpenaiApiKey:     "sk-test",
			AnthropicApiKey:  "sk-ant-test",
			GoogleApiKey:     "aiza-test",
			BedrockRegion:    "us-east-1",
			BedrockAccessKey: "AKIATEST",
			BedrockSecretKey: "secret",
		},
	}
}

func TestGetClassifierByProvider(t *testing.T) {
	logger := newTestLogger(t)

	tests := []struct {
		provider string
		name     string
	}{
		{"openai", "openai"},
		{"OpenAI", "openai"},
		{"anthropic", "anthropic"},
		{"claude", "anthropic"},
		{"google", "google"},
		{"gemini", "google"},
		{"bedrock", "bedrock"},
		{"aws", "bedrock"},
	}

	for _, tt := range tests {
		t.Run(tt.provider, func(t *testing.T) {
			classifier, err := GetClassifier(classifierConfig(tt.provider), logger)
			require.NoError(t, err)
			assert.Equal(t, tt.name, classifier.Name())
		})
	}
}

func TestGetClassifierUnknownProvider(t *testing.T) {
	_, err := GetClassifier(classifierConfig("watson"), newTestLogger(t))
	assert.Error(t, err)
}

func TestGetClassifierMissingKey(t *testing.T) {
	cfg := classifierConfig("openai")
	cfg.ClassifierConfig.OpenaiApiKey = ""

	_, err := GetClassifier(cfg, newTestLogger(t))
	assert.Error(t, err)
}
