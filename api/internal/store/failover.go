// Copyright (c) 2024-2026 Lulla AI
// Author: Lulla Engineering <engineering@lulla.ai>
//
// Licensed under GPL-2.0 with Lulla Additional Terms.
// See LICENSE.md or contact sales@lulla.ai for commercial usage.

package internal_store

import (
	"context"
	"sync/atomic"

	internal_entity "github.com/lullai/api/internal/entity"
	"github.com/lullai/pkg/commons"
)

// failoverStore tries Postgres first and falls back to the local file
// store on any remote error, per call. The fallback is silent towards the
// caller: a degraded save still succeeds, it just lands on the device.
// Rows written locally are never replayed to Postgres.
type failoverStore struct {
	remote RecordingStore
	local  RecordingStore
	logger commons.Logger
	mode   atomic.Value
}

// NewFailoverStore combines a remote and a local store into one.
func NewFailoverStore(remote, local RecordingStore, logger commons.Logger) RecordingStore {
	s := &failoverStore{
		remote: remote,
		local:  local,
		logger: logger,
	}
	s.mode.Store(ModeRemote)
	return s
}

func (s *failoverStore) Save(ctx context.Context, recording *internal_entity.Recording) (string, error) {
	recordingID, err := s.remote.Save(ctx, recording)
	if err == nil {
		s.mode.Store(ModeRemote)
		return recordingID, nil
	}

	s.logger.Warnf("remote save failed, storing on device: %v", err)
	s.mode.Store(ModeLocal)
	return s.local.Save(ctx, recording)
}

func (s *failoverStore) List(ctx context.Context, userID string, limit int) ([]*internal_entity.Recording, error) {
	recordings, err := s.remote.List(ctx, userID, limit)
	if err == nil {
		s.mode.Store(ModeRemote)
		return recordings, nil
	}

	s.logger.Warnf("remote list failed, reading device copy: %v", err)
	s.mode.Store(ModeLocal)
	return s.local.List(ctx, userID, limit)
}

func (s *failoverStore) Delete(ctx context.Context, recordingID, userID string) error {
	err := s.remote.Delete(ctx, recordingID, userID)
	if err == nil {
		s.mode.Store(ModeRemote)
		return nil
	}

	// A recording saved while degraded only exists on the device, so a
	// remote miss still has to try the local file before giving up.
	s.logger.Warnf("remote delete failed, trying device copy: %v", err)
	s.mode.Store(ModeLocal)
	return s.local.Delete(ctx, recordingID, userID)
}

func (s *failoverStore) Mode() Mode {
	return s.mode.Load().(Mode)
}
