// Copyright (c) 2024-2026 Lulla AI
// Author: Lulla Engineering <engineering@lulla.ai>
//
// Licensed under GPL-2.0 with Lulla Additional Terms.
// See LICENSE.md or contact sales@lulla.ai for commercial usage.

package internal_store

import (
	"context"
	"time"

	internal_entity "github.com/lullai/api/internal/entity"
)

// Mode reports which backend actually served the caller. It is cosmetic:
// the listen client shows an "offline, stored on this device" banner when
// a save landed locally, nothing else keys off it.
type Mode string

const (
	ModeRemote Mode = "remote"
	ModeLocal  Mode = "local"
)

// RecordingStore provides operations to save and retrieve classified
// recordings for a user.
//
// Recordings are created once, on the explicit save action, and never
// mutated afterwards. Two backends exist behind this interface: Postgres
// for normal operation and a per-user JSON file for degraded/offline
// operation. Rows saved locally stay local; there is no reconciliation
// back to Postgres when connectivity returns.
type RecordingStore interface {
	// Save stores a recording with a generated recordingId (UUID) when the
	// caller did not set one. Returns the recordingId.
	Save(ctx context.Context, recording *internal_entity.Recording) (string, error)

	// List returns the user's recordings, most recent first. A limit <= 0
	// means the default page size of 20.
	List(ctx context.Context, userID string, limit int) ([]*internal_entity.Recording, error)

	// Delete removes a single recording owned by userID. Deleting a
	// recording that does not exist (or belongs to someone else) is an
	// error so the client can distinguish a stale id from success.
	Delete(ctx context.Context, recordingID, userID string) error

	// Mode reports which backend served the most recent call.
	Mode() Mode
}

// Pruner is the retention hook. Both concrete backends implement it; the
// failover wrapper deliberately does not, because pruning is a
// per-backend maintenance task, not a user operation that should fail
// over.
type Pruner interface {
	// Prune removes recordings captured before olderThan, plus anything
	// the user already deleted, and returns how many went away.
	Prune(ctx context.Context, olderThan time.Time) (int64, error)
}

const defaultListLimit = 20
