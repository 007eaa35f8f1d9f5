// Copyright (c) 2024-2026 Lulla AI
// Author: Lulla Engineering <engineering@lulla.ai>
//
// Licensed under GPL-2.0 with Lulla Additional Terms.
// See LICENSE.md or contact sales@lulla.ai for commercial usage.

package internal_capture

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	internal_audio "github.com/lullai/api/internal/audio"
	internal_classifier "github.com/lullai/api/internal/classifier"
	internal_entity "github.com/lullai/api/internal/entity"
	"github.com/lullai/config"
	"github.com/lullai/pkg/commons"
)

var (
	// ErrAlreadyRecording rejects a second Start while the user has a
	// non-idle session. Double start is a hard error here, not something
	// left to the client's buttons.
	ErrAlreadyRecording = errors.New("a capture session is already active for this user")
	ErrSessionNotFound  = errors.New("capture session not found")
)

// StopResult is what a finalized capture produced: the classifier's
// analysis (nil when classification failed, which is not an error) and an
// unsaved recording draft the client can POST to keep.
type StopResult struct {
	Analysis *internal_classifier.Analysis `json:"analysis"`
	Draft    *internal_entity.Recording    `json:"draft"`
	Duration time.Duration                 `json:"-"`
}

// IngestResult carries the chunk's sample back to the caller, plus the
// stop result when this chunk hit the clip cap and finalized the session.
type IngestResult struct {
	Sample    *Sample
	Finalized *StopResult
}

// Manager owns every live capture session: at most one non-idle session
// per user, addressed by session id. Finalizing runs the classifier and
// unregisters the session, so the user can start again immediately after.
type Manager struct {
	cfg        *config.AppConfig
	logger     commons.Logger
	classifier internal_classifier.Classifier
	resampler  internal_audio.AudioResampler

	mu     sync.Mutex
	byUser map[string]*Session
	byID   map[string]*Session
}

func NewManager(cfg *config.AppConfig, classifier internal_classifier.Classifier, logger commons.Logger) (*Manager, error) {
	resampler, err := internal_audio.GetResampler(logger)
	if err != nil {
		return nil, err
	}
	return &Manager{
		cfg:        cfg,
		logger:     logger,
		classifier: classifier,
		resampler:  resampler,
		byUser:     make(map[string]*Session),
		byID:       make(map[string]*Session),
	}, nil
}

// Start creates a recording session for the user. audioCfg describes what
// the client will send; nil means the browser default (48kHz mono PCM).
func (m *Manager) Start(ctx context.Context, userID string, audioCfg *internal_audio.AudioConfig) (*Session, error) {
	if audioCfg == nil {
		audioCfg = internal_audio.BROWSER_AUDIO_CONFIG
	}
	if audioCfg.GetChannels() != 1 {
		return nil, errors.New("capture supports mono audio only")
	}
	switch audioCfg.Encoding {
	case internal_audio.Linear16, internal_audio.MuLaw8:
	default:
		return nil, errors.New("capture supports linear16 and mulaw encodings only")
	}

	maxDuration := time.Duration(m.cfg.CaptureConfig.MaxDurationSeconds) * time.Second
	if maxDuration <= 0 {
		maxDuration = 30 * time.Second
	}

	session := &Session{
		Id:        uuid.New().String(),
		UserId:    userID,
		StartedAt: time.Now(),
		cfg:       audioCfg,
		resampler: m.resampler,
		detector: NewDetector(
			m.cfg.CaptureConfig.TriggerThreshold,
			time.Duration(m.cfg.CaptureConfig.TriggerHangoverMs)*time.Millisecond,
		),
		logger:      m.logger,
		maxBytes:    int(maxDuration.Seconds() * float64(internal_audio.LULLA_INTERNAL_AUDIO_CONFIG.BytesPerSecond())),
		state:       StateRecording,
		subscribers: make(map[uint64]chan Event),
		clock:       time.Now,
	}

	m.mu.Lock()
	if _, exists := m.byUser[userID]; exists {
		m.mu.Unlock()
		return nil, ErrAlreadyRecording
	}
	m.byUser[userID] = session
	m.byID[session.Id] = session
	m.mu.Unlock()

	// Wall-clock cap: a client that stops sending without stopping the
	// session still gets finalized, exactly as an explicit stop would.
	session.mu.Lock()
	session.maxTimer = time.AfterFunc(maxDuration, func() {
		if _, err := m.Stop(context.Background(), session.Id); err != nil &&
			!errors.Is(err, ErrSessionNotFound) && !errors.Is(err, ErrNotRecording) {
			m.logger.Warnf("auto-stop for capture session %s failed: %v", session.Id, err)
		}
	})
	session.mu.Unlock()

	m.logger.Infof("capture session started: sessionId=%s, user=%s, rate=%d, encoding=%s",
		session.Id, userID, audioCfg.GetSampleRate(), audioCfg.Encoding)

	return session, nil
}

// Get resolves a live session by id.
func (m *Manager) Get(sessionID string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	session, ok := m.byID[sessionID]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return session, nil
}

// Ingest appends one audio chunk. When the chunk fills the clip cap the
// session is finalized in the same call and the result rides along.
func (m *Manager) Ingest(ctx context.Context, sessionID string, chunk []byte) (*IngestResult, error) {
	session, err := m.Get(sessionID)
	if err != nil {
		return nil, err
	}

	sample, err := session.ingest(chunk)
	if err != nil {
		m.logger.Errorf("capture ingest failed: sessionId=%s, %v", sessionID, err)
		return nil, err
	}

	result := &IngestResult{Sample: sample}
	if sample != nil && sample.Full {
		finalized, err := m.finalize(ctx, session)
		if err != nil {
			return nil, err
		}
		result.Finalized = finalized
	}
	return result, nil
}

// Stop finalizes the session: encode, classify, unregister.
func (m *Manager) Stop(ctx context.Context, sessionID string) (*StopResult, error) {
	session, err := m.Get(sessionID)
	if err != nil {
		return nil, err
	}
	return m.finalize(ctx, session)
}

// Cancel discards the session without classification.
func (m *Manager) Cancel(ctx context.Context, sessionID string) error {
	session, err := m.Get(sessionID)
	if err != nil {
		return err
	}
	if err := session.cancel(); err != nil {
		return err
	}
	m.remove(session)

	m.logger.Infof("capture session cancelled: sessionId=%s, user=%s", session.Id, session.UserId)
	return nil
}

func (m *Manager) finalize(ctx context.Context, session *Session) (*StopResult, error) {
	audio, err := session.finalize()
	if err != nil {
		// Any failure other than "someone else is already finalizing"
		// means the session idled itself out; unregister it so the user
		// is free to start over.
		if !errors.Is(err, ErrNotRecording) {
			m.remove(session)
			m.logger.Errorf("capture session %s aborted: %v", session.Id, err)
		}
		return nil, err
	}

	analysis := m.classify(ctx, audio)

	draft := &internal_entity.Recording{
		UserId:    session.UserId,
		AudioData: audio.WavBase64,
	}
	if analysis != nil {
		draft.Type = analysis.Type
		draft.Urgency = string(analysis.Urgency)
		draft.Confidence = analysis.Confidence
		draft.Action = analysis.Action
	}

	session.complete(analysis, draft)
	m.remove(session)

	m.logger.Infof("capture session finalized: sessionId=%s, user=%s, duration=%.1fs, analyzed=%t",
		session.Id, session.UserId, audio.Duration.Seconds(), analysis != nil)

	return &StopResult{
		Analysis: analysis,
		Draft:    draft,
		Duration: audio.Duration,
	}, nil
}

// classify runs the adapter and degrades to a nil analysis on transport
// failure; the capture itself still succeeds.
func (m *Manager) classify(ctx context.Context, audio *internal_classifier.Audio) *internal_classifier.Analysis {
	if m.classifier == nil {
		return nil
	}
	analysis, err := m.classifier.Classify(ctx, audio)
	if err != nil {
		m.logger.Errorf("classification failed, continuing without analysis: %v", err)
		return nil
	}
	return analysis
}

func (m *Manager) remove(session *Session) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.byID, session.Id)
	if current, ok := m.byUser[session.UserId]; ok && current == session {
		delete(m.byUser, session.UserId)
	}
}
