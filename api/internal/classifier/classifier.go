// Copyright (c) 2024-2026 Lulla AI
// Author: Lulla Engineering <engineering@lulla.ai>
//
// Licensed under GPL-2.0 with Lulla Additional Terms.
// See LICENSE.md or contact sales@lulla.ai for commercial usage.

package internal_classifier

import (
	"context"
	"strings"
	"time"

	internal_audio "github.com/lullai/api/internal/audio"
)

// Urgency is the coarse severity attached to an interpreted cry.
type Urgency string

const (
	UrgencyLow    Urgency = "low"
	UrgencyMedium Urgency = "medium"
	UrgencyHigh   Urgency = "high"
)

// ParseUrgency maps free text from the model onto a known urgency.
// Anything unrecognized lands on medium.
func ParseUrgency(s string) Urgency {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "low":
		return UrgencyLow
	case "high":
		return UrgencyHigh
	default:
		return UrgencyMedium
	}
}

// Defaults substituted when the model reply cannot be parsed, or for
// individual fields the reply left out.
const (
	DefaultType       = "general"
	DefaultConfidence = 75
	DefaultAction     = "Check on your baby: offer a feed, a fresh diaper, or gentle soothing."
)

// Analysis is the interpreted meaning of one recording. The type
// vocabulary is open: models return values like "hungry", "tired",
// "discomfort", "pain" or anything else they deem fitting.
type Analysis struct {
	Type        string  `json:"type" mapstructure:"type"`
	Urgency     Urgency `json:"urgency" mapstructure:"urgency"`
	Confidence  int     `json:"confidence" mapstructure:"confidence"`
	Action      string  `json:"action" mapstructure:"action"`
	Explanation string  `json:"explanation" mapstructure:"explanation"`
}

// DefaultAnalysis is the fixed record substituted when a model reply is
// not parseable. The raw reply is preserved as the explanation so nothing
// the model said is lost.
func DefaultAnalysis(rawReply string) *Analysis {
	return &Analysis{
		Type:        DefaultType,
		Urgency:     UrgencyMedium,
		Confidence:  DefaultConfidence,
		Action:      DefaultAction,
		Explanation: rawReply,
	}
}

// Audio carries one finished capture to the classifier. Text-only
// providers receive the WAV base64-embedded in the prompt itself; Gemini
// gets the raw bytes as an inline part instead.
type Audio struct {
	WAV        []byte
	WavBase64  string
	MimeType   string
	SampleRate int
	Duration   time.Duration
	Level      internal_audio.Level
	Crying     bool
}

// Classifier interprets one finished recording. Transport failures come
// back as (nil, err); unparseable replies degrade to DefaultAnalysis and
// are not errors.
type Classifier interface {
	Name() string
	Classify(ctx context.Context, audio *Audio) (*Analysis, error)
}
