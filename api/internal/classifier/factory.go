// Copyright (c) 2024-2026 Lulla AI
// Author: Lulla Engineering <engineering@lulla.ai>
//
// Licensed under GPL-2.0 with Lulla Additional Terms.
// See LICENSE.md or contact sales@lulla.ai for commercial usage.
package internal_classifier

import (
	"errors"
	"strings"

	"github.com/lullai/config"
	"github.com/lullai/pkg/commons"
)

// GetClassifier resolves the configured model provider. Provider names
// are matched case-insensitively; unknown names are a startup error, not
// a runtime fallback.
func GetClassifier(cfg *config.AppConfig, logger commons.Logger) (Classifier, error) {
	switch provider := strings.ToLower(cfg.ClassifierConfig.Provider); provider {
	case "openai":
		return NewOpenaiClassifier(cfg, logger)
	case "anthropic", "claude":
		return NewAnthropicClassifier(cfg, logger)
	case "google", "gemini":
		return NewGoogleClassifier(cfg, logger)
	case "bedrock", "aws":
		return NewBedrockClassifier(cfg, logger)
	default:
		return nil, errors.New("illegal provider for classification request")
	}
}
