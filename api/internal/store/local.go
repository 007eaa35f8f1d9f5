// Copyright (c) 2024-2026 Lulla AI
// Author: Lulla Engineering <engineering@lulla.ai>
//
// Licensed under GPL-2.0 with Lulla Additional Terms.
// See LICENSE.md or contact sales@lulla.ai for commercial usage.

package internal_store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	internal_entity "github.com/lullai/api/internal/entity"
	"github.com/lullai/pkg/commons"
	gorm_generator "github.com/lullai/pkg/models/gorm/generators"
	type_enums "github.com/lullai/pkg/types/enums"
)

// localRecordingCap bounds the on-device history. The file is rewritten
// most-recent-first on every save, so hitting the cap evicts the oldest.
const localRecordingCap = 50

type localStore struct {
	path   string
	logger commons.Logger
	mu     sync.Mutex
}

// NewLocalStore creates a recording store backed by one JSON file per user
// under path. It is the degraded-mode backend: everything Postgres does is
// approximated with a mutex and a whole-file rewrite, which is fine at a
// 50-entry cap.
func NewLocalStore(path string, logger commons.Logger) (RecordingStore, error) {
	if err := os.MkdirAll(path, 0o755); err != nil {
		return nil, fmt.Errorf("failed to ensure local recording dir %s: %w", path, err)
	}
	return &localStore{
		path:   path,
		logger: logger,
	}, nil
}

// file maps a user to their recording file. User ids are snowflakes or
// UUIDs, but the filename must not trust that.
func (s *localStore) file(userID string) string {
	safe := strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', '.':
			return '_'
		}
		return r
	}, userID)
	return filepath.Join(s.path, fmt.Sprintf("recordings_%s.json", safe))
}

func (s *localStore) read(userID string) ([]*internal_entity.Recording, error) {
	data, err := os.ReadFile(s.file(userID))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read local recordings for user %s: %w", userID, err)
	}

	var recordings []*internal_entity.Recording
	if err := json.Unmarshal(data, &recordings); err != nil {
		return nil, fmt.Errorf("failed to decode local recordings for user %s: %w", userID, err)
	}
	return recordings, nil
}

func (s *localStore) write(userID string, recordings []*internal_entity.Recording) error {
	data, err := json.Marshal(recordings)
	if err != nil {
		return fmt.Errorf("failed to encode local recordings for user %s: %w", userID, err)
	}
	if err := os.WriteFile(s.file(userID), data, 0o644); err != nil {
		return fmt.Errorf("failed to write local recordings for user %s: %w", userID, err)
	}
	return nil
}

// Save inserts the recording at the front of the user's file and truncates
// to the cap. Identifier and timestamps are filled here because no gorm
// hook runs on this path.
func (s *localStore) Save(ctx context.Context, recording *internal_entity.Recording) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if recording.RecordingId == "" {
		recording.RecordingId = uuid.New().String()
	}
	if recording.Status == "" {
		recording.Status = type_enums.ACTIVE
	}
	if recording.Id == 0 {
		recording.Id = gorm_generator.ID()
	}
	if recording.CreatedDate.IsZero() {
		recording.CreatedDate = time.Now()
	}

	recordings, err := s.read(recording.UserId)
	if err != nil {
		return "", err
	}

	recordings = append([]*internal_entity.Recording{recording}, recordings...)
	if len(recordings) > localRecordingCap {
		recordings = recordings[:localRecordingCap]
	}

	if err := s.write(recording.UserId, recordings); err != nil {
		return "", err
	}

	s.logger.Infof("saved recording locally: recordingId=%s, user=%s, retained=%d",
		recording.RecordingId, recording.UserId, len(recordings))

	return recording.RecordingId, nil
}

// List returns the user's recordings in file order, which is maintained
// most recent first.
func (s *localStore) List(ctx context.Context, userID string, limit int) ([]*internal_entity.Recording, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if limit <= 0 {
		limit = defaultListLimit
	}

	recordings, err := s.read(userID)
	if err != nil {
		return nil, err
	}
	if len(recordings) > limit {
		recordings = recordings[:limit]
	}

	s.logger.Debugf("listed local recordings: user=%s, count=%d", userID, len(recordings))
	return recordings, nil
}

// Delete removes the recording from the user's file. Unlike Postgres this
// is a hard remove; the device copy is the user's own storage.
func (s *localStore) Delete(ctx context.Context, recordingID, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	recordings, err := s.read(userID)
	if err != nil {
		return err
	}

	kept := recordings[:0]
	for _, recording := range recordings {
		if recording.RecordingId != recordingID {
			kept = append(kept, recording)
		}
	}
	if len(kept) == len(recordings) {
		return fmt.Errorf("recording %s not found for user %s", recordingID, userID)
	}

	if err := s.write(userID, kept); err != nil {
		return err
	}

	s.logger.Debugf("deleted local recording: recordingId=%s, user=%s", recordingID, userID)
	return nil
}

func (s *localStore) Mode() Mode {
	return ModeLocal
}

// Prune rewrites every user file keeping only entries inside the
// retention window, and removes files that end up empty. Local files have
// no soft-deleted rows to purge; Delete already removed them for real.
func (s *localStore) Prune(ctx context.Context, olderThan time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	files, err := filepath.Glob(filepath.Join(s.path, "recordings_*.json"))
	if err != nil {
		return 0, fmt.Errorf("failed to scan local recording files: %w", err)
	}

	var pruned int64
	for _, file := range files {
		data, err := os.ReadFile(file)
		if err != nil {
			return pruned, fmt.Errorf("failed to read %s: %w", file, err)
		}

		var recordings []*internal_entity.Recording
		if err := json.Unmarshal(data, &recordings); err != nil {
			return pruned, fmt.Errorf("failed to decode %s: %w", file, err)
		}

		kept := recordings[:0]
		for _, recording := range recordings {
			if recording.CreatedDate.Before(olderThan) {
				pruned++
				continue
			}
			kept = append(kept, recording)
		}
		if len(kept) == len(recordings) {
			continue
		}

		if len(kept) == 0 {
			if err := os.Remove(file); err != nil {
				return pruned, fmt.Errorf("failed to remove %s: %w", file, err)
			}
			continue
		}

		encoded, err := json.Marshal(kept)
		if err != nil {
			return pruned, fmt.Errorf("failed to encode %s: %w", file, err)
		}
		if err := os.WriteFile(file, encoded, 0o644); err != nil {
			return pruned, fmt.Errorf("failed to rewrite %s: %w", file, err)
		}
	}

	if pruned > 0 {
		s.logger.Infof("pruned local recordings: count=%d, olderThan=%s", pruned, olderThan.Format(time.RFC3339))
	}
	return pruned, nil
}
