// Copyright (c) 2024-2026 Lulla AI
// Author: Lulla Engineering <engineering@lulla.ai>
//
// Licensed under GPL-2.0 with Lulla Additional Terms.
// See LICENSE.md or contact sales@lulla.ai for commercial usage.

package internal_auth

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	internal_entity "github.com/lullai/api/internal/entity"
	"github.com/lullai/config"
	"github.com/lullai/pkg/commons"
)

func newTestLogger(t *testing.T) commons.Logger {
	logger, err := commons.NewApplicationLogger(
		commons.Name("test-auth"),
		commons.Path(t.TempDir()),
		commons.Level("debug"),
	)
	require.NoError(t, err)
	return logger
}

type testConnector struct {
	db *gorm.DB
}

func (c *testConnector) DB(ctx context.Context) *gorm.DB { return c.db.WithContext(ctx) }
func (c *testConnector) Ping(ctx context.Context) error  { return nil }
func (c *testConnector) Migrate() error                  { return nil }
func (c *testConnector) Close() error                    { return nil }

type testRedis struct {
	client *redis.Client
}

func (c *testRedis) Client() *redis.Client          { return c.client }
func (c *testRedis) Ping(ctx context.Context) error { return c.client.Ping(ctx).Err() }
func (c *testRedis) Close() error                   { return c.client.Close() }

func newTestService(t *testing.T) (*Service, redismock.ClientMock) {
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&internal_entity.User{}))

	client, mock := redismock.NewClientMock()

	cfg := &config.AppConfig{
		Secret:     "test-secret",
		AuthConfig: config.AuthConfig{TokenTtlMinutes: 60},
	}
	return NewService(cfg, newTestLogger(t), &testConnector{db: db}, &testRedis{client: client}), mock
}

func TestRegisterStoresHashedPassword(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	principal, err := svc.Register(ctx, "parent@example.com", "hunter2!", "Avery")
	require.NoError(t, err)
	assert.NotEmpty(t, principal.UserId)
	assert.Equal(t, "parent@example.com", principal.Email)
	assert.Equal(t, "Avery", principal.Name)

	user, err := svc.users.GetByEmail(ctx, "parent@example.com")
	require.NoError(t, err)
	assert.NotEqual(t, "hunter2!", user.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("hunter2!")))
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "parent@example.com", "hunter2!", "Avery")
	require.NoError(t, err)

	_, err = svc.Register(ctx, "parent@example.com", "other-pass", "Impostor")
	assert.Error(t, err)
}

func TestLoginIssuesVerifiableToken(t *testing.T) {
	svc, mock := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "parent@example.com", "hunter2!", "Avery")
	require.NoError(t, err)

	result, err := svc.Login(ctx, "parent@example.com", "hunter2!")
	require.NoError(t, err)
	assert.NotEmpty(t, result.Token)
	assert.True(t, result.ExpiresAt.After(time.Now()))
	assert.Equal(t, "parent@example.com", result.User.Email)

	claims, err := svc.parse(result.Token)
	require.NoError(t, err)
	mock.ExpectExists(revokedKeyPrefix + claims.ID).SetVal(0)

	principal, err := svc.Verify(ctx, result.Token)
	require.NoError(t, err)
	assert.Equal(t, result.User.UserId, principal.UserId)
	assert.Equal(t, "Avery", principal.Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "parent@example.com", "hunter2!", "Avery")
	require.NoError(t, err)

	_, err = svc.Login(ctx, "parent@example.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(ctx, "nobody@example.com", "hunter2!")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestVerifyRejectsMalformedToken(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Verify(context.Background(), "not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyRejectsForeignSignature(t *testing.T) {
	svc, _ := newTestService(t)

	forged, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &lullaClaims{
		Email: "parent@example.com",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "1",
			ID:        "forged-jti",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString([]byte("someone-elses-secret"))
	require.NoError(t, err)

	_, err = svc.Verify(context.Background(), forged)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestLogoutRevokesToken(t *testing.T) {
	svc, mock := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "parent@example.com", "hunter2!", "Avery")
	require.NoError(t, err)
	result, err := svc.Login(ctx, "parent@example.com", "hunter2!")
	require.NoError(t, err)
	claims, err := svc.parse(result.Token)
	require.NoError(t, err)

	// the revocation TTL is whatever remains of the token's life, so only
	// the key is pinned down here
	key := revokedKeyPrefix + claims.ID
	mock.CustomMatch(func(expected, actual []interface{}) error {
		if len(actual) < 2 || actual[1] != key {
			return fmt.Errorf("unexpected revocation args: %v", actual)
		}
		return nil
	}).ExpectSet(key, "1", time.Hour).SetVal("OK")

	require.NoError(t, svc.Logout(ctx, result.Token))

	mock.ExpectExists(key).SetVal(1)
	_, err = svc.Verify(ctx, result.Token)
	assert.ErrorIs(t, err, ErrRevokedToken)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLogoutRejectsGarbageToken(t *testing.T) {
	svc, _ := newTestService(t)
	assert.ErrorIs(t, svc.Logout(context.Background(), "expired-or-garbage"), ErrInvalidToken)
}

func TestNotifierPublishesLoginTransitions(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "parent@example.com", "hunter2!", "Avery")
	require.NoError(t, err)

	states, cancel := svc.Notifier().Subscribe()
	defer cancel()

	// the subscription primes with the current (signed-out) state
	initial := <-states
	assert.Nil(t, initial.User)
	assert.False(t, initial.IsLoading)

	_, err = svc.Login(ctx, "parent@example.com", "hunter2!")
	require.NoError(t, err)

	loading := <-states
	assert.True(t, loading.IsLoading)

	signedIn := <-states
	require.NotNil(t, signedIn.User)
	assert.Equal(t, "parent@example.com", signedIn.User.Email)
}

func TestNotifierLateSubscriberSeesCurrentState(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "parent@example.com", "hunter2!", "Avery")
	require.NoError(t, err)
	_, err = svc.Login(ctx, "parent@example.com", "hunter2!")
	require.NoError(t, err)

	states, cancel := svc.Notifier().Subscribe()
	defer cancel()

	current := <-states
	require.NotNil(t, current.User)
	assert.Equal(t, "parent@example.com", current.User.Email)

	cancel()
	cancel() // safe to call again
}
