// Copyright (c) 2024-2026 Lulla AI
// Author: Lulla Engineering <engineering@lulla.ai>
//
// Licensed under GPL-2.0 with Lulla Additional Terms.
// See LICENSE.md or contact sales@lulla.ai for commercial usage.

package internal_classifier

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseAnalysisCleanJSON(t *testing.T) {
	reply := `{"type": "hungry", "urgency": "high", "confidence": 88, "action": "Offer a feed.", "explanation": "Rhythmic low-pitched cry."}`

	analysis := ParseAnalysis(reply)

	assert.Equal(t, "hungry", analysis.Type)
	assert.Equal(t, UrgencyHigh, analysis.Urgency)
	assert.Equal(t, 88, analysis.Confidence)
	assert.Equal(t, "Offer a feed.", analysis.Action)
	assert.Equal(t, "Rhythmic low-pitched cry.", analysis.Explanation)
}

func TestParseAnalysisFencedJSON(t *testing.T) {
	reply := "```json\n{\"type\": \"tired\", \"urgency\": \"low\", \"confidence\": 70, \"action\": \"Start the bedtime routine.\", \"explanation\": \"Whiny drawn-out sounds.\"}\n```"

	analysis := ParseAnalysis(reply)

	assert.Equal(t, "tired", analysis.Type)
	assert.Equal(t, UrgencyLow, analysis.Urgency)
	assert.Equal(t, 70, analysis.Confidence)
}

func TestParseAnalysisJSONWrappedInProse(t *testing.T) {
	reply := `Sure! Here is my assessment: {"type": "discomfort", "urgency": "medium", "confidence": 65, "action": "Check the diaper.", "explanation": "Intermittent fussing."} Hope that helps.`

	analysis := ParseAnalysis(reply)

	assert.Equal(t, "discomfort", analysis.Type)
	assert.Equal(t, 65, analysis.Confidence)
}

func TestParseAnalysisWeaklyTypedFields(t *testing.T) {
	tests := []struct {
		name       string
		reply      string
		confidence int
	}{
		{"string confidence", `{"type": "pain", "urgency": "high", "confidence": "82", "action": "a", "explanation": "e"}`, 82},
		{"float confidence", `{"type": "pain", "urgency": "high", "confidence": 82.6, "action": "a", "explanation": "e"}`, 82},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			analysis := ParseAnalysis(tt.reply)
			assert.Equal(t, tt.confidence, analysis.Confidence)
		})
	}
}

func TestParseAnalysisGarbageYieldsDefaultRecord(t *testing.T) {
	reply := "I'm sorry, I cannot interpret this audio."

	analysis := ParseAnalysis(reply)

	assert.Equal(t, DefaultType, analysis.Type)
	assert.Equal(t, UrgencyMedium, analysis.Urgency)
	assert.Equal(t, DefaultConfidence, analysis.Confidence)
	assert.Equal(t, DefaultAction, analysis.Action)
	assert.Equal(t, reply, analysis.Explanation)
}

func TestParseAnalysisInvalidJSONYieldsDefaultRecord(t *testing.T) {
	reply := `{"type": "hungry", "urgency": `

	analysis := ParseAnalysis(reply)

	assert.Equal(t, DefaultType, analysis.Type)
	assert.Equal(t, DefaultConfidence, analysis.Confidence)
	assert.Equal(t, reply, analysis.Explanation)
}

func TestParseAnalysisFillsMissingFields(t *testing.T) {
	reply := `{"type": "Hungry"}`

	analysis := ParseAnalysis(reply)

	assert.Equal(t, "hungry", analysis.Type)
	assert.Equal(t, UrgencyMedium, analysis.Urgency)
	assert.Equal(t, DefaultConfidence, analysis.Confidence)
	assert.Equal(t, DefaultAction, analysis.Action)
	assert.Equal(t, reply, analysis.Explanation)
}

func TestParseAnalysisClampsConfidence(t *testing.T) {
	analysis := ParseAnalysis(`{"type": "pain", "urgency": "high", "confidence": 140, "action": "a", "explanation": "e"}`)
	assert.Equal(t, 100, analysis.Confidence)
}

func TestParseUrgency(t *testing.T) {
	tests := []struct {
		input    string
		expected Urgency
	}{
		{"low", UrgencyLow},
		{"HIGH", UrgencyHigh},
		{" medium ", UrgencyMedium},
		{"urgent", UrgencyMedium},
		{"", UrgencyMedium},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, ParseUrgency(tt.input))
		})
	}
}
