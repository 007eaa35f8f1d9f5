// Copyright (c) 2024-2026 Lulla AI
// Author: Lulla Engineering <engineering@lulla.ai>
//
// Licensed under GPL-2.0 with Lulla Additional Terms.
// See LICENSE.md or contact sales@lulla.ai for commercial usage.

package internal_audio

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/lullai/pkg/commons"
)

func newTestLogger(t *testing.T) commons.Logger {
	t.Helper()
	logger, err := commons.NewApplicationLogger(
		commons.Name("test-audio"),
		commons.Path(t.TempDir()),
		commons.Level("debug"),
	)
	if err != nil {
		t.Fatalf("failed to create test logger: %v", err)
	}
	return logger
}

// pcm16 builds a LINEAR16 buffer where every sample carries the same value.
func pcm16(sample int16, samples int) []byte {
	buf := make([]byte, samples*AudioBytesPerSample)
	for i := 0; i < samples; i++ {
		binary.LittleEndian.PutUint16(buf[i*AudioBytesPerSample:], uint16(sample))
	}
	return buf
}

func TestEncodeWAVHeader(t *testing.T) {
	cfg := NewLinear16khzMonoAudioConfig()
	pcmData := pcm16(0x0101, 1600)

	wav, err := EncodeWAV(pcmData, cfg)
	if err != nil {
		t.Fatalf("EncodeWAV error: %v", err)
	}
	if len(wav) != 44+len(pcmData) {
		t.Fatalf("expected %d bytes, got %d", 44+len(pcmData), len(wav))
	}
	if string(wav[0:4]) != "RIFF" || string(wav[8:12]) != "WAVE" {
		t.Error("missing RIFF/WAVE header")
	}
	if sr := binary.LittleEndian.Uint32(wav[24:28]); sr != cfg.SampleRate {
		t.Errorf("sample rate: expected %d, got %d", cfg.SampleRate, sr)
	}
	if ch := binary.LittleEndian.Uint16(wav[22:24]); ch != cfg.Channels {
		t.Errorf("channels: expected %d, got %d", cfg.Channels, ch)
	}
	if bits := binary.LittleEndian.Uint16(wav[34:36]); bits != AudioBitsPerSample {
		t.Errorf("bits per sample: expected %d, got %d", AudioBitsPerSample, bits)
	}
	if dataLen := binary.LittleEndian.Uint32(wav[40:44]); int(dataLen) != len(pcmData) {
		t.Errorf("data length: expected %d, got %d", len(pcmData), dataLen)
	}
	if !bytes.Equal(wav[44:], pcmData) {
		t.Error("PCM payload mismatch")
	}
}

func TestMeasureLevel(t *testing.T) {
	tests := []struct {
		name    string
		pcm     []byte
		minRms  float32
		maxRms  float32
		minPeak float32
	}{
		{"silence", pcm16(0, 160), 0, 0.0001, 0},
		{"full scale", pcm16(32767, 160), 0.99, 1.0, 0.99},
		{"half scale", pcm16(16384, 160), 0.45, 0.55, 0.45},
		{"empty", nil, 0, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			level := MeasureLevel(tt.pcm)
			if level.Rms < tt.minRms || level.Rms > tt.maxRms {
				t.Errorf("rms out of range: got %f, want [%f, %f]", level.Rms, tt.minRms, tt.maxRms)
			}
			if level.Peak < tt.minPeak {
				t.Errorf("peak too low: got %f, want >= %f", level.Peak, tt.minPeak)
			}
		})
	}
}

func TestDecodeToLinear16Passthrough(t *testing.T) {
	data := pcm16(0x0202, 80)
	out, err := DecodeToLinear16(data, Linear16)
	if err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if !bytes.Equal(out, data) {
		t.Error("linear16 input must pass through untouched")
	}
}

func TestDecodeToLinear16MuLaw(t *testing.T) {
	in := make([]byte, 160)
	for i := range in {
		in[i] = 0xFF
	}
	out, err := DecodeToLinear16(in, MuLaw8)
	if err != nil {
		t.Fatalf("decode error: %v", err)
	}
	// µ-law expands each byte into one 16-bit sample.
	if len(out) != len(in)*AudioBytesPerSample {
		t.Errorf("expected %d bytes, got %d", len(in)*AudioBytesPerSample, len(out))
	}
}

func TestDecodeToLinear16UnknownEncoding(t *testing.T) {
	if _, err := DecodeToLinear16([]byte{1, 2}, Encoding("opus")); err == nil {
		t.Fatal("expected error for unsupported encoding")
	}
}

func TestResampleDownToInternalRate(t *testing.T) {
	resampler, err := GetResampler(newTestLogger(t))
	if err != nil {
		t.Fatalf("GetResampler error: %v", err)
	}

	in := pcm16(1000, 480) // 10ms at 48kHz
	out, err := resampler.Resample(in, BROWSER_AUDIO_CONFIG, LULLA_INTERNAL_AUDIO_CONFIG)
	if err != nil {
		t.Fatalf("Resample error: %v", err)
	}
	if got := len(out) / AudioBytesPerSample; got != 160 {
		t.Errorf("expected 160 samples, got %d", got)
	}
	// A constant signal must stay constant through interpolation.
	for i := 0; i < len(out); i += AudioBytesPerSample {
		if s := int16(binary.LittleEndian.Uint16(out[i:])); s != 1000 {
			t.Errorf("sample %d: expected 1000, got %d", i/AudioBytesPerSample, s)
			break
		}
	}
}

func TestResampleSameRateIsIdentity(t *testing.T) {
	resampler, _ := GetResampler(newTestLogger(t))
	in := pcm16(42, 160)
	out, err := resampler.Resample(in, LULLA_INTERNAL_AUDIO_CONFIG, LULLA_INTERNAL_AUDIO_CONFIG)
	if err != nil {
		t.Fatalf("Resample error: %v", err)
	}
	if !bytes.Equal(out, in) {
		t.Error("same-rate resample must be identity")
	}
}
