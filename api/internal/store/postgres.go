// Copyright (c) 2024-2026 Lulla AI
// Author: Lulla Engineering <engineering@lulla.ai>
//
// Licensed under GPL-2.0 with Lulla Additional Terms.
// See LICENSE.md or contact sales@lulla.ai for commercial usage.

package internal_store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	internal_entity "github.com/lullai/api/internal/entity"
	"github.com/lullai/pkg/commons"
	"github.com/lullai/pkg/connectors"
	type_enums "github.com/lullai/pkg/types/enums"
)

type postgresStore struct {
	postgres connectors.PostgresConnector
	logger   commons.Logger
}

// NewPostgresStore creates a recording store backed by Postgres.
func NewPostgresStore(postgres connectors.PostgresConnector, logger commons.Logger) RecordingStore {
	return &postgresStore{
		postgres: postgres,
		logger:   logger,
	}
}

// Save stores a recording in Postgres with a generated UUID as the recordingId.
func (s *postgresStore) Save(ctx context.Context, recording *internal_entity.Recording) (string, error) {
	if recording.RecordingId == "" {
		recording.RecordingId = uuid.New().String()
	}
	if recording.Status == "" {
		recording.Status = type_enums.ACTIVE
	}

	db := s.postgres.DB(ctx)
	if err := db.Create(recording).Error; err != nil {
		return "", fmt.Errorf("failed to save recording %s: %w", recording.RecordingId, err)
	}

	s.logger.Infof("saved recording: recordingId=%s, user=%s, type=%s, urgency=%s",
		recording.RecordingId, recording.UserId, recording.Type, recording.Urgency)

	return recording.RecordingId, nil
}

// List returns the user's active recordings ordered most recent first.
func (s *postgresStore) List(ctx context.Context, userID string, limit int) ([]*internal_entity.Recording, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}

	db := s.postgres.DB(ctx)
	var recordings []*internal_entity.Recording
	if err := db.
		Where("user_id = ? AND status = ?", userID, type_enums.ACTIVE).
		Order("created_date DESC").
		Limit(limit).
		Find(&recordings).Error; err != nil {
		return nil, fmt.Errorf("failed to list recordings for user %s: %w", userID, err)
	}

	s.logger.Tracef(ctx, "listed recordings: user=%s, count=%d", userID, len(recordings))
	return recordings, nil
}

// Delete flips the recording to DELETED. The row stays in Postgres until
// the retention sweep purges it, so an accidental delete is recoverable
// on the operator side while disappearing from the user's history at once.
func (s *postgresStore) Delete(ctx context.Context, recordingID, userID string) error {
	db := s.postgres.DB(ctx)
	result := db.Model(&internal_entity.Recording{}).
		Where("recording_id = ? AND user_id = ? AND status = ?", recordingID, userID, type_enums.ACTIVE).
		Updates(map[string]interface{}{
			"status":       type_enums.DELETED,
			"updated_date": time.Now(),
		})

	if result.Error != nil {
		return fmt.Errorf("failed to delete recording %s: %w", recordingID, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("recording %s not found for user %s", recordingID, userID)
	}

	s.logger.Tracef(ctx, "deleted recording: recordingId=%s, user=%s", recordingID, userID)
	return nil
}

func (s *postgresStore) Mode() Mode {
	return ModeRemote
}

// Prune hard-deletes rows past the retention window along with rows the
// user already soft-deleted. Audio payloads make these rows heavy, so
// this is the only place they actually leave the table.
func (s *postgresStore) Prune(ctx context.Context, olderThan time.Time) (int64, error) {
	db := s.postgres.DB(ctx)
	result := db.
		Where("created_date < ? OR status = ?", olderThan, type_enums.DELETED).
		Delete(&internal_entity.Recording{})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to prune recordings: %w", result.Error)
	}

	if result.RowsAffected > 0 {
		s.logger.Infof("pruned recordings: count=%d, olderThan=%s", result.RowsAffected, olderThan.Format(time.RFC3339))
	}
	return result.RowsAffected, nil
}
