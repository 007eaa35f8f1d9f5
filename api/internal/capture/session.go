// Copyright (c) 2024-2026 Lulla AI
// Author: Lulla Engineering <engineering@lulla.ai>
//
// Licensed under GPL-2.0 with Lulla Additional Terms.
// See LICENSE.md or contact sales@lulla.ai for commercial usage.

package internal_capture

import (
	"bytes"
	"encoding/base64"
	"errors"
	"sync"
	"time"

	internal_audio "github.com/lullai/api/internal/audio"
	internal_classifier "github.com/lullai/api/internal/classifier"
	internal_entity "github.com/lullai/api/internal/entity"
	"github.com/lullai/pkg/commons"
	"github.com/lullai/pkg/utils"
)

// SessionState is the capture lifecycle. A session is only ever observable
// in one of these; "analyzing" covers the synchronous stop→classify window.
type SessionState string

const (
	StateIdle      SessionState = "idle"
	StateRecording SessionState = "recording"
	StateAnalyzing SessionState = "analyzing"
)

var (
	ErrNotRecording = errors.New("capture session is not recording")
	ErrNoAudio      = errors.New("no audio captured")
)

// EventKind tags messages on the live feed.
type EventKind string

const (
	EventLevel    EventKind = "level"
	EventAnalysis EventKind = "analysis"
)

// Event is one message on a session's live feed: a level sample while
// recording, then a single final analysis event (analysis may be null when
// classification failed; the feed still signals completion). The final
// event also carries the unsaved draft so a live client has everything it
// needs to save without a second round trip.
type Event struct {
	Kind     EventKind                     `json:"kind"`
	Level    *internal_audio.Level         `json:"level,omitempty"`
	Crying   bool                          `json:"crying"`
	Analysis *internal_classifier.Analysis `json:"analysis,omitempty"`
	Draft    *internal_entity.Recording    `json:"draft,omitempty"`
}

// Sample is what one ingested chunk produced.
type Sample struct {
	Level  internal_audio.Level
	Crying bool
	// Full is set when the buffered audio reached the clip cap with this
	// chunk; the caller must finalize as if stop had been requested.
	Full bool
}

// Session accumulates one capture for one user. Audio arrives in chunks in
// the client's format and is normalized to the internal config on ingest,
// so the buffer is always LINEAR16 at the classifier rate. Level samples
// are fanned out to subscribers as they are measured.
type Session struct {
	Id        string
	UserId    string
	StartedAt time.Time

	cfg       *internal_audio.AudioConfig
	resampler internal_audio.AudioResampler
	detector  *Detector
	logger    commons.Logger
	maxBytes  int

	mu          sync.Mutex
	state       SessionState
	pcm         bytes.Buffer
	rmsHistory  []float32
	peak        float32
	maxTimer    *time.Timer
	subscribers map[uint64]chan Event
	subSeq      uint64
	// clock is injectable for testing; defaults to time.Now.
	clock func() time.Time
}

func (s *Session) State() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Subscribe attaches a listener to the live feed. The returned cancel is
// safe to call more than once. Subscribing to a finished session yields a
// channel that is already closed.
func (s *Session) Subscribe() (<-chan Event, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ch := make(chan Event, 16)
	if s.state == StateIdle {
		close(ch)
		return ch, func() {}
	}

	s.subSeq++
	id := s.subSeq
	s.subscribers[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			if _, ok := s.subscribers[id]; ok {
				delete(s.subscribers, id)
				close(ch)
			}
		})
	}
}

// publish pushes an event to all subscribers without blocking: a slow
// listener drops samples rather than stalling ingest. Caller holds the lock.
func (s *Session) publish(event Event) {
	for _, ch := range s.subscribers {
		select {
		case ch <- event:
		default:
		}
	}
}

// closeSubscribers tears the feed down. Caller holds the lock.
func (s *Session) closeSubscribers() {
	for id, ch := range s.subscribers {
		delete(s.subscribers, id)
		close(ch)
	}
}

// ingest normalizes and appends one chunk, measures its level and feeds
// the detector. Empty chunks are ignored.
func (s *Session) ingest(chunk []byte) (*Sample, error) {
	if len(chunk) == 0 {
		return nil, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateRecording {
		return nil, ErrNotRecording
	}

	pcm, err := internal_audio.DecodeToLinear16(chunk, s.cfg.Encoding)
	if err != nil {
		return nil, err
	}
	if s.cfg.GetSampleRate() != internal_audio.LULLA_INTERNAL_AUDIO_CONFIG.GetSampleRate() {
		pcm, err = s.resampler.Resample(pcm, s.cfg, internal_audio.LULLA_INTERNAL_AUDIO_CONFIG)
		if err != nil {
			return nil, err
		}
	}

	s.pcm.Write(pcm)

	level := internal_audio.MeasureLevel(pcm)
	s.rmsHistory = append(s.rmsHistory, level.Rms)
	if level.Peak > s.peak {
		s.peak = level.Peak
	}
	crying := s.detector.Sample(level, s.clock())

	s.publish(Event{
		Kind:   EventLevel,
		Level:  &level,
		Crying: crying,
	})

	return &Sample{
		Level:  level,
		Crying: crying,
		Full:   s.pcm.Len() >= s.maxBytes,
	}, nil
}

// finalize moves recording→analyzing and hands back the capture as
// classifier input. The session stays registered and non-idle until
// complete() runs.
func (s *Session) finalize() (*internal_classifier.Audio, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateRecording {
		return nil, ErrNotRecording
	}
	if s.maxTimer != nil {
		s.maxTimer.Stop()
		s.maxTimer = nil
	}

	if s.pcm.Len() == 0 {
		s.state = StateIdle
		s.closeSubscribers()
		return nil, ErrNoAudio
	}
	s.state = StateAnalyzing

	pcm := make([]byte, s.pcm.Len())
	copy(pcm, s.pcm.Bytes())

	internalCfg := internal_audio.LULLA_INTERNAL_AUDIO_CONFIG
	wav, err := internal_audio.EncodeWAV(pcm, internalCfg)
	if err != nil {
		s.state = StateIdle
		s.closeSubscribers()
		return nil, err
	}

	duration := time.Duration(float64(len(pcm)) / float64(internalCfg.BytesPerSecond()) * float64(time.Second))

	// the prompt wants clip-wide loudness, not the last chunk's
	clipLevel := internal_audio.Level{
		Rms:  utils.AverageFloat32(s.rmsHistory),
		Peak: s.peak,
	}

	return &internal_classifier.Audio{
		WAV:        wav,
		WavBase64:  base64.StdEncoding.EncodeToString(wav),
		MimeType:   "audio/wav",
		SampleRate: int(internalCfg.GetSampleRate()),
		Duration:   duration,
		Level:      clipLevel,
		Crying:     s.detector.Sustained(),
	}, nil
}

// complete publishes the final analysis event (analysis may be nil), tears
// down the feed and returns the session to idle.
func (s *Session) complete(analysis *internal_classifier.Analysis, draft *internal_entity.Recording) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.publish(Event{
		Kind:     EventAnalysis,
		Analysis: analysis,
		Draft:    draft,
	})
	s.closeSubscribers()
	s.state = StateIdle
}

// cancel discards buffered audio and returns to idle. Only a recording
// session can be cancelled; once analyzing, the classify call is already
// in flight.
func (s *Session) cancel() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateRecording {
		return ErrNotRecording
	}
	if s.maxTimer != nil {
		s.maxTimer.Stop()
		s.maxTimer = nil
	}

	s.pcm.Reset()
	s.closeSubscribers()
	s.state = StateIdle
	return nil
}
