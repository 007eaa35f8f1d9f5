// Copyright (c) 2024-2026 Lulla AI
// Author: Lulla Engineering <engineering@lulla.ai>
//
// Licensed under GPL-2.0 with Lulla Additional Terms.
// See LICENSE.md or contact sales@lulla.ai for commercial usage.

package internal_classifier

import (
	"encoding/json"
	"strings"

	"github.com/mitchellh/mapstructure"
)

// ParseAnalysis turns a raw model reply into an Analysis. It never fails:
// replies that are not parseable JSON yield the fixed default record with
// the raw reply preserved as the explanation. Models are told to answer
// JSON-only, but in practice they wrap replies in code fences, prepend
// prose, or return numbers as strings, so parsing is deliberately loose.
func ParseAnalysis(reply string) *Analysis {
	candidate := extractJSON(reply)
	if candidate == "" {
		return DefaultAnalysis(reply)
	}

	var raw map[string]interface{}
	if err := json.Unmarshal([]byte(candidate), &raw); err != nil {
		return DefaultAnalysis(reply)
	}

	var analysis Analysis
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           &analysis,
	})
	if err != nil {
		return DefaultAnalysis(reply)
	}
	if err := decoder.Decode(raw); err != nil {
		return DefaultAnalysis(reply)
	}

	return normalize(&analysis, reply)
}

// extractJSON returns the outermost {...} object in the reply, with any
// markdown code fences removed first. Empty when no object is present.
func extractJSON(reply string) string {
	cleaned := strings.TrimSpace(reply)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")

	start := strings.Index(cleaned, "{")
	end := strings.LastIndex(cleaned, "}")
	if start == -1 || end == -1 || end < start {
		return ""
	}
	return cleaned[start : end+1]
}

// normalize fills field-level gaps the same way the full default record
// would: a reply can be valid JSON and still omit or mangle individual
// keys.
func normalize(analysis *Analysis, reply string) *Analysis {
	analysis.Type = strings.ToLower(strings.TrimSpace(analysis.Type))
	if analysis.Type == "" {
		analysis.Type = DefaultType
	}

	analysis.Urgency = ParseUrgency(string(analysis.Urgency))

	if analysis.Confidence <= 0 {
		analysis.Confidence = DefaultConfidence
	}
	if analysis.Confidence > 100 {
		analysis.Confidence = 100
	}

	analysis.Action = strings.TrimSpace(analysis.Action)
	if analysis.Action == "" {
		analysis.Action = DefaultAction
	}

	analysis.Explanation = strings.TrimSpace(analysis.Explanation)
	if analysis.Explanation == "" {
		analysis.Explanation = strings.TrimSpace(reply)
	}

	return analysis
}
