// Copyright (c) 2024-2026 Lulla AI
// Author: Lulla Engineering <engineering@lulla.ai>
//
// Licensed under GPL-2.0 with Lulla Additional Terms.
// See LICENSE.md or contact sales@lulla.ai for commercial usage.

package internal_classifier

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	internal_audio "github.com/lullai/api/internal/audio"
)

func testAudio(crying bool) *Audio {
	return &Audio{
		SampleRate: 16000,
		Duration:   12 * time.Second,
		Level:      internal_audio.Level{Rms: 0.31, Peak: 0.87},
		Crying:     crying,
	}
}

func TestBuildPromptRendersAudioSummary(t *testing.T) {
	prompt, _, err := BuildPrompt(testAudio(true), "latest")
	require.NoError(t, err)

	assert.Contains(t, prompt, "12.0")
	assert.Contains(t, prompt, "16000")
	assert.Contains(t, prompt, "0.310")
	assert.Contains(t, prompt, "0.870")
}

func TestBuildPromptCryingBranch(t *testing.T) {
	crying, _, err := BuildPrompt(testAudio(true), "latest")
	require.NoError(t, err)

	quiet, _, err := BuildPrompt(testAudio(false), "latest")
	require.NoError(t, err)

	assert.NotEqual(t, crying, quiet)
	assert.Contains(t, crying, "Sustained crying was detected")
	assert.Contains(t, quiet, "No sustained crying")
}

func TestBuildPromptRequestsStructuredReply(t *testing.T) {
	prompt, _, err := BuildPrompt(testAudio(false), "latest")
	require.NoError(t, err)

	for _, key := range []string{"type", "urgency", "confidence", "action", "explanation"} {
		assert.Contains(t, prompt, key)
	}
	assert.Contains(t, prompt, "JSON")
}

func TestBuildPromptEmbedsAudioPayload(t *testing.T) {
	audio := testAudio(true)
	audio.WavBase64 = "UklGRgAAAABXQVZF"

	prompt, _, err := BuildPrompt(audio, "latest")
	require.NoError(t, err)
	assert.Contains(t, prompt, "base64-encoded WAV")
	assert.Contains(t, prompt, audio.WavBase64)

	instruction, _, err := BuildInstruction(audio, "latest")
	require.NoError(t, err)
	assert.NotContains(t, instruction, audio.WavBase64)
}

func TestBuildPromptVersionPin(t *testing.T) {
	pinned, _, err := BuildPrompt(testAudio(false), "vrsn_1")
	require.NoError(t, err)

	latest, _, err := BuildPrompt(testAudio(false), "latest")
	require.NoError(t, err)

	assert.Equal(t, latest, pinned)
}

func TestBuildPromptUnknownVersionFallsBack(t *testing.T) {
	prompt, _, err := BuildPrompt(testAudio(false), "vrsn_999")
	require.NoError(t, err)
	assert.NotEmpty(t, prompt)
}
