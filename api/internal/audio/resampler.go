// Copyright (c) 2024-2026 Lulla AI
// Author: Lulla Engineering <engineering@lulla.ai>
//
// Licensed under GPL-2.0 with Lulla Additional Terms.
// See LICENSE.md or contact sales@lulla.ai for commercial usage.

package internal_audio

import (
	"encoding/binary"
	"fmt"

	"github.com/lullai/pkg/commons"
)

// AudioResampler converts LINEAR16 PCM between sample rates.
type AudioResampler interface {
	Resample(pcm []byte, from *AudioConfig, to *AudioConfig) ([]byte, error)
}

type linearResampler struct {
	logger commons.Logger
}

// GetResampler returns the process resampler. Linear interpolation is
// plenty for level metering and speech-band model input; this is not a
// mastering-grade converter.
func GetResampler(logger commons.Logger) (AudioResampler, error) {
	return &linearResampler{logger: logger}, nil
}

func (r *linearResampler) Resample(pcm []byte, from *AudioConfig, to *AudioConfig) ([]byte, error) {
	if from.Channels != 1 || to.Channels != 1 {
		return nil, fmt.Errorf("resampler supports mono only, got %d -> %d channels", from.Channels, to.Channels)
	}
	if from.SampleRate == to.SampleRate {
		return pcm, nil
	}
	if from.SampleRate == 0 || to.SampleRate == 0 {
		return nil, fmt.Errorf("invalid sample rate: %d -> %d", from.SampleRate, to.SampleRate)
	}

	inSamples := len(pcm) / AudioBytesPerSample
	if inSamples == 0 {
		return nil, nil
	}

	ratio := float64(from.SampleRate) / float64(to.SampleRate)
	outSamples := int(float64(inSamples) / ratio)
	out := make([]byte, outSamples*AudioBytesPerSample)

	for i := 0; i < outSamples; i++ {
		pos := float64(i) * ratio
		idx := int(pos)
		frac := pos - float64(idx)

		s0 := int16(binary.LittleEndian.Uint16(pcm[idx*AudioBytesPerSample:]))
		s1 := s0
		if idx+1 < inSamples {
			s1 = int16(binary.LittleEndian.Uint16(pcm[(idx+1)*AudioBytesPerSample:]))
		}

		sample := float64(s0)*(1-frac) + float64(s1)*frac
		binary.LittleEndian.PutUint16(out[i*AudioBytesPerSample:], uint16(int16(sample)))
	}

	return out, nil
}
