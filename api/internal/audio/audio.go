// Copyright (c) 2024-2026 Lulla AI
// Author: Lulla Engineering <engineering@lulla.ai>
//
// Licensed under GPL-2.0 with Lulla Additional Terms.
// See LICENSE.md or contact sales@lulla.ai for commercial usage.

package internal_audio

// Encoding identifies the byte layout of raw audio handed to the service.
type Encoding string

const (
	// Linear16 is 16-bit little-endian PCM.
	Linear16 Encoding = "linear16"
	// MuLaw8 is 8-bit G.711 µ-law, common on telephony sources.
	MuLaw8 Encoding = "mulaw"
)

const (
	AudioBytesPerSample = 2  // LINEAR16 → 2 bytes per sample
	AudioBitsPerSample  = 16 // LINEAR16 → 16 bits per sample
	AudioPCMFormat      = 1  // WAV PCM format tag
)

type AudioConfig struct {
	SampleRate uint32
	Channels   uint16
	Encoding   Encoding
}

func (c *AudioConfig) GetSampleRate() uint32 {
	return c.SampleRate
}

func (c *AudioConfig) GetChannels() uint16 {
	return c.Channels
}

// BytesPerSecond is the PCM byte rate after decode to LINEAR16.
func (c *AudioConfig) BytesPerSecond() int {
	return int(c.SampleRate) * int(c.Channels) * AudioBytesPerSample
}

func NewLinear16khzMonoAudioConfig() *AudioConfig {
	return &AudioConfig{SampleRate: 16000, Channels: 1, Encoding: Linear16}
}

func NewLinear48khzMonoAudioConfig() *AudioConfig {
	return &AudioConfig{SampleRate: 48000, Channels: 1, Encoding: Linear16}
}

// LULLA_INTERNAL_AUDIO_CONFIG is the canonical in-process format. Every
// inbound stream is normalized to it before metering, triggering and
// persistence.
var LULLA_INTERNAL_AUDIO_CONFIG = NewLinear16khzMonoAudioConfig()

// BROWSER_AUDIO_CONFIG is what a browser AudioContext delivers by default.
var BROWSER_AUDIO_CONFIG = NewLinear48khzMonoAudioConfig()
