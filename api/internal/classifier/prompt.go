// Copyright (c) 2024-2026 Lulla AI
// Author: Lulla Engineering <engineering@lulla.ai>
//
// Licensed under GPL-2.0 with Lulla Additional Terms.
// See LICENSE.md or contact sales@lulla.ai for commercial usage.

package internal_classifier

import (
	"fmt"
	"sync"

	"github.com/flosch/pongo2/v6"
	"github.com/pkoukk/tiktoken-go"

	"github.com/lullai/pkg/utils"
)

// Prompt templates by revision. Replies must be JSON-only so the parser
// has a fighting chance; everything else about the wording is fair game
// for iteration, which is why revisions are kept around and pinnable via
// CLASSIFIER__PROMPT_VERSION ("vrsn_<n>", anything else means latest).
var promptTemplates = map[uint64]string{
	1: `You are an expert in infant cry interpretation. A caregiver recorded their baby for {{ duration }} seconds (sample rate {{ sample_rate }} Hz). The recording's average loudness was {{ rms }} and its peak loudness {{ peak }}, both on a 0-1 scale.{% if crying %} Sustained crying was detected for most of the clip.{% else %} No sustained crying was detected; the sounds may be fussing, babbling or ambient noise.{% endif %}{% if audio_base64 %}

The clip itself follows as a base64-encoded WAV file:
{{ audio_base64 }}{% endif %}

Classify the most likely reason for the sounds. Reply with ONLY a JSON object, no prose and no code fences, with exactly these keys:
{"type": "<one or two words, e.g. hungry, tired, discomfort, pain, general>", "urgency": "<low|medium|high>", "confidence": <integer 0-100>, "action": "<one short sentence a caregiver should do now>", "explanation": "<two sentences on what the sound characteristics suggest>"}`,
}

// maxPromptTokens caps the rendered prompt at roughly the smallest
// context window among the supported providers. The base64 payload
// dominates the count, so this effectively bounds clip length for the
// text-only providers; a longer clip is rejected up front instead of
// failing inside the provider call.
const maxPromptTokens = 120000

const tokenizerEncoding = "cl100k_base"

var (
	tokenizerOnce sync.Once
	tokenizer     *tiktoken.Tiktoken
)

func latestPromptVersion() uint64 {
	var latest uint64
	for v := range promptTemplates {
		if v > latest {
			latest = v
		}
	}
	return latest
}

// resolvePromptVersion picks the template revision: a parseable pin wins,
// otherwise latest.
func resolvePromptVersion(version string) uint64 {
	if pinned := utils.GetVersionDefinition(version); pinned != nil {
		if _, ok := promptTemplates[*pinned]; ok {
			return *pinned
		}
	}
	return latestPromptVersion()
}

// BuildPrompt renders the full classification prompt for one capture,
// audio payload embedded, and returns it with its token count. The count
// is 0 when the tokenizer assets are unavailable (air-gapped deploys);
// the budget check is advisory and skipped in that case.
func BuildPrompt(audio *Audio, version string) (string, int, error) {
	return render(audio, version, audio.WavBase64)
}

// BuildInstruction renders the same prompt without the embedded payload,
// for providers that take the audio as a separate inline part.
func BuildInstruction(audio *Audio, version string) (string, int, error) {
	return render(audio, version, "")
}

func render(audio *Audio, version string, wavBase64 string) (string, int, error) {
	revision := resolvePromptVersion(version)
	tpl, err := pongo2.FromString(promptTemplates[revision])
	if err != nil {
		return "", 0, fmt.Errorf("failed to compile prompt template %d: %w", revision, err)
	}

	rendered, err := tpl.Execute(pongo2.Context{
		"duration":     fmt.Sprintf("%.1f", audio.Duration.Seconds()),
		"sample_rate":  audio.SampleRate,
		"rms":          fmt.Sprintf("%.3f", audio.Level.Rms),
		"peak":         fmt.Sprintf("%.3f", audio.Level.Peak),
		"crying":       audio.Crying,
		"audio_base64": wavBase64,
	})
	if err != nil {
		return "", 0, fmt.Errorf("failed to render prompt template %d: %w", revision, err)
	}

	tokens := countTokens(rendered)
	if tokens > maxPromptTokens {
		return "", tokens, fmt.Errorf("prompt template %d renders to %d tokens, limit is %d", revision, tokens, maxPromptTokens)
	}

	return rendered, tokens, nil
}

func countTokens(text string) int {
	tokenizerOnce.Do(func() {
		enc, err := tiktoken.GetEncoding(tokenizerEncoding)
		if err == nil {
			tokenizer = enc
		}
	})
	if tokenizer == nil {
		return 0
	}
	return len(tokenizer.Encode(text, nil, nil))
}
