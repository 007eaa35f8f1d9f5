// Copyright (c) 2024-2026 Lulla AI
// Author: Lulla Engineering <engineering@lulla.ai>
//
// Licensed under GPL-2.0 with Lulla Additional Terms.
// See LICENSE.md or contact sales@lulla.ai for commercial usage.
package internal_audio

import (
	"encoding/binary"
	"math"
)

// Level is the loudness of a PCM frame, both values normalized to 0..1.
type Level struct {
	Rms  float32 `json:"rms"`
	Peak float32 `json:"peak"`
}

// MeasureLevel computes RMS and peak amplitude over a LINEAR16 buffer.
// A trailing odd byte is ignored.
func MeasureLevel(pcm []byte) Level {
	samples := len(pcm) / AudioBytesPerSample
	if samples == 0 {
		return Level{}
	}

	var sumSquares float64
	var peak float64
	for i := 0; i < samples; i++ {
		s := int16(binary.LittleEndian.Uint16(pcm[i*AudioBytesPerSample:]))
		v := float64(s) / 32768.0
		sumSquares += v * v
		if a := math.Abs(v); a > peak {
			peak = a
		}
	}

	return Level{
		Rms:  float32(math.Sqrt(sumSquares / float64(samples))),
		Peak: float32(peak),
	}
}
