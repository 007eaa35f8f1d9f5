// Copyright (c) 2024-2026 Lulla AI
// Author: Lulla Engineering <engineering@lulla.ai>
//
// Licensed under GPL-2.0 with Lulla Additional Terms.
// See LICENSE.md or contact sales@lulla.ai for commercial usage.

package internal_store

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	internal_entity "github.com/lullai/api/internal/entity"
	"github.com/lullai/pkg/commons"
)

func newTestLogger(t *testing.T) commons.Logger {
	logger, err := commons.NewApplicationLogger(
		commons.Name("test-store"),
		commons.Path(t.TempDir()),
		commons.Level("debug"),
	)
	require.NoError(t, err)
	return logger
}

// mockLogger captures warnings so degradation paths can be asserted on.
type mockLogger struct {
	warnMessages []string
}

func newMockLogger() *mockLogger {
	return &mockLogger{
		warnMessages: make([]string, 0),
	}
}

func (m *mockLogger) Level() zapcore.Level                            { return zapcore.DebugLevel }
func (m *mockLogger) Debug(args ...interface{})                       {}
func (m *mockLogger) Debugf(template string, args ...interface{})     {}
func (m *mockLogger) Debugw(msg string, keysAndValues ...interface{}) {}
func (m *mockLogger) Info(args ...interface{})                        {}
func (m *mockLogger) Infof(template string, args ...interface{})      {}
func (m *mockLogger) Infow(msg string, keysAndValues ...interface{})  {}
func (m *mockLogger) Warn(args ...interface{})                        {}
func (m *mockLogger) Warnf(template string, args ...interface{}) {
	m.warnMessages = append(m.warnMessages, fmt.Sprintf(template, args...))
}
func (m *mockLogger) Warnw(msg string, keysAndValues ...interface{})  {}
func (m *mockLogger) Error(args ...interface{})                       {}
func (m *mockLogger) Errorf(template string, args ...interface{})     {}
func (m *mockLogger) Errorw(msg string, keysAndValues ...interface{}) {}
func (m *mockLogger) DPanic(args ...interface{})                      {}
func (m *mockLogger) DPanicf(template string, args ...interface{})    {}
func (m *mockLogger) Panic(args ...interface{})                       {}
func (m *mockLogger) Panicf(template string, args ...interface{})     {}
func (m *mockLogger) Fatal(args ...interface{})                       {}
func (m *mockLogger) Fatalf(template string, args ...interface{})     {}
func (m *mockLogger) Benchmark(functionName string, duration time.Duration) {
}
func (m *mockLogger) Tracef(ctx context.Context, format string, args ...interface{}) {
}
func (m *mockLogger) Sync() error { return nil }

// testConnector satisfies connectors.PostgresConnector over any gorm DB so
// store tests can run on sqlite and on a sqlmock-backed handle.
type testConnector struct {
	db *gorm.DB
}

func (c *testConnector) DB(ctx context.Context) *gorm.DB { return c.db.WithContext(ctx) }
func (c *testConnector) Ping(ctx context.Context) error  { return nil }
func (c *testConnector) Migrate() error                  { return nil }
func (c *testConnector) Close() error                    { return nil }

func newSQLiteStore(t *testing.T) RecordingStore {
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&internal_entity.Recording{}))
	return NewPostgresStore(&testConnector{db: db}, newTestLogger(t))
}

// newClosedRemoteStore builds a remote store whose database handle is
// already closed, so every call fails the way an unreachable Postgres does.
func newClosedRemoteStore(t *testing.T) RecordingStore {
	mockDb, mock, err := sqlmock.New()
	require.NoError(t, err)

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: mockDb}), &gorm.Config{
		DisableAutomaticPing: true,
	})
	require.NoError(t, err)

	mock.ExpectClose()
	require.NoError(t, mockDb.Close())

	return NewPostgresStore(&testConnector{db: db}, newTestLogger(t))
}

func newRecording(userID string, createdAt time.Time) *internal_entity.Recording {
	rec := &internal_entity.Recording{
		UserId:     userID,
		Type:       "hungry",
		Urgency:    "medium",
		Confidence: 80,
		Action:     "Offer a feed.",
		AudioData:  "UklGRg==",
	}
	rec.CreatedDate = createdAt
	return rec
}

func TestPostgresStoreSaveListMostRecentFirst(t *testing.T) {
	store := newSQLiteStore(t)
	ctx := context.Background()
	base := time.Now().Add(-time.Hour)

	var ids []string
	for i := 0; i < 3; i++ {
		id, err := store.Save(ctx, newRecording("user-1", base.Add(time.Duration(i)*time.Minute)))
		require.NoError(t, err)
		ids = append(ids, id)
	}

	recordings, err := store.List(ctx, "user-1", 0)
	require.NoError(t, err)
	require.Len(t, recordings, 3)
	assert.Equal(t, ids[2], recordings[0].RecordingId)
	assert.Equal(t, ids[0], recordings[2].RecordingId)
}

func TestPostgresStoreListDefaultLimit(t *testing.T) {
	store := newSQLiteStore(t)
	ctx := context.Background()
	base := time.Now().Add(-time.Hour)

	for i := 0; i < 25; i++ {
		_, err := store.Save(ctx, newRecording("user-1", base.Add(time.Duration(i)*time.Second)))
		require.NoError(t, err)
	}

	recordings, err := store.List(ctx, "user-1", 0)
	require.NoError(t, err)
	assert.Len(t, recordings, defaultListLimit)
}

func TestPostgresStoreListScopedToUser(t *testing.T) {
	store := newSQLiteStore(t)
	ctx := context.Background()

	_, err := store.Save(ctx, newRecording("user-1", time.Now()))
	require.NoError(t, err)
	_, err = store.Save(ctx, newRecording("user-2", time.Now()))
	require.NoError(t, err)

	recordings, err := store.List(ctx, "user-1", 0)
	require.NoError(t, err)
	require.Len(t, recordings, 1)
	assert.Equal(t, "user-1", recordings[0].UserId)
}

func TestPostgresStoreDelete(t *testing.T) {
	store := newSQLiteStore(t)
	ctx := context.Background()

	id, err := store.Save(ctx, newRecording("user-1", time.Now()))
	require.NoError(t, err)

	require.NoError(t, store.Delete(ctx, id, "user-1"))

	recordings, err := store.List(ctx, "user-1", 0)
	require.NoError(t, err)
	assert.Empty(t, recordings)

	// already deleted, and a foreign user never had it
	assert.Error(t, store.Delete(ctx, id, "user-1"))
	assert.Error(t, store.Delete(ctx, id, "user-2"))
}

func TestLocalStoreSaveListMostRecentFirst(t *testing.T) {
	store, err := NewLocalStore(t.TempDir(), newTestLogger(t))
	require.NoError(t, err)
	ctx := context.Background()

	var ids []string
	for i := 0; i < 3; i++ {
		id, err := store.Save(ctx, newRecording("user-1", time.Time{}))
		require.NoError(t, err)
		ids = append(ids, id)
	}

	recordings, err := store.List(ctx, "user-1", 0)
	require.NoError(t, err)
	require.Len(t, recordings, 3)
	assert.Equal(t, ids[2], recordings[0].RecordingId)
	assert.Equal(t, ids[0], recordings[2].RecordingId)
}

func TestLocalStoreNeverExceedsCap(t *testing.T) {
	store, err := NewLocalStore(t.TempDir(), newTestLogger(t))
	require.NoError(t, err)
	ctx := context.Background()

	for i := 0; i < localRecordingCap+10; i++ {
		_, err := store.Save(ctx, newRecording("user-1", time.Time{}))
		require.NoError(t, err)

		recordings, err := store.List(ctx, "user-1", localRecordingCap+10)
		require.NoError(t, err)
		assert.LessOrEqual(t, len(recordings), localRecordingCap)
	}
}

func TestLocalStoreDelete(t *testing.T) {
	store, err := NewLocalStore(t.TempDir(), newTestLogger(t))
	require.NoError(t, err)
	ctx := context.Background()

	id, err := store.Save(ctx, newRecording("user-1", time.Time{}))
	require.NoError(t, err)
	keep, err := store.Save(ctx, newRecording("user-1", time.Time{}))
	require.NoError(t, err)

	require.NoError(t, store.Delete(ctx, id, "user-1"))

	recordings, err := store.List(ctx, "user-1", 0)
	require.NoError(t, err)
	require.Len(t, recordings, 1)
	assert.Equal(t, keep, recordings[0].RecordingId)

	assert.Error(t, store.Delete(ctx, id, "user-1"))
}

func TestFailoverStorePrefersRemote(t *testing.T) {
	logger := newTestLogger(t)
	local, err := NewLocalStore(t.TempDir(), logger)
	require.NoError(t, err)
	store := NewFailoverStore(newSQLiteStore(t), local, logger)
	ctx := context.Background()

	_, err = store.Save(ctx, newRecording("user-1", time.Now()))
	require.NoError(t, err)
	assert.Equal(t, ModeRemote, store.Mode())

	// nothing leaked to the device copy
	recordings, err := local.List(ctx, "user-1", 0)
	require.NoError(t, err)
	assert.Empty(t, recordings)
}

func TestFailoverStoreFallsBackWhenRemoteDown(t *testing.T) {
	logger := newTestLogger(t)
	local, err := NewLocalStore(t.TempDir(), logger)
	require.NoError(t, err)
	store := NewFailoverStore(newClosedRemoteStore(t), local, logger)
	ctx := context.Background()

	// 51 saves while the remote is unreachable: the device copy holds 50,
	// oldest evicted first.
	var ids []string
	for i := 0; i < localRecordingCap+1; i++ {
		id, err := store.Save(ctx, newRecording("user-1", time.Time{}))
		require.NoError(t, err)
		ids = append(ids, id)
	}
	assert.Equal(t, ModeLocal, store.Mode())

	recordings, err := store.List(ctx, "user-1", localRecordingCap+1)
	require.NoError(t, err)
	require.Len(t, recordings, localRecordingCap)
	assert.Equal(t, ids[len(ids)-1], recordings[0].RecordingId)
	for _, recording := range recordings {
		assert.NotEqual(t, ids[0], recording.RecordingId, "oldest entry should have been evicted")
	}

	// delete flows to the device copy too
	require.NoError(t, store.Delete(ctx, ids[len(ids)-1], "user-1"))
	recordings, err = store.List(ctx, "user-1", localRecordingCap+1)
	require.NoError(t, err)
	assert.Len(t, recordings, localRecordingCap-1)
}

func TestFailoverStoreLogsDegradation(t *testing.T) {
	logger := newMockLogger()
	local, err := NewLocalStore(t.TempDir(), logger)
	require.NoError(t, err)
	store := NewFailoverStore(newClosedRemoteStore(t), local, logger)

	_, err = store.Save(context.Background(), newRecording("user-1", time.Time{}))
	require.NoError(t, err)

	// degraded saves succeed towards the caller but leave a warning behind
	require.NotEmpty(t, logger.warnMessages)
	assert.Contains(t, logger.warnMessages[0], "storing on device")
}

func TestFailoverStoreListFallsBack(t *testing.T) {
	logger := newTestLogger(t)
	local, err := NewLocalStore(t.TempDir(), logger)
	require.NoError(t, err)
	store := NewFailoverStore(newClosedRemoteStore(t), local, logger)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := store.Save(ctx, newRecording("user-1", time.Time{}))
		require.NoError(t, err)
	}

	recordings, err := store.List(ctx, "user-1", 0)
	require.NoError(t, err)
	assert.Len(t, recordings, 5)

	for i, recording := range recordings {
		assert.Equal(t, "hungry", recording.Type, fmt.Sprintf("recording %d", i))
	}
}
