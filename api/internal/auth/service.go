// Copyright (c) 2024-2026 Lulla AI
// Author: Lulla Engineering <engineering@lulla.ai>
//
// Licensed under GPL-2.0 with Lulla Additional Terms.
// See LICENSE.md or contact sales@lulla.ai for commercial usage.

package internal_auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	internal_entity "github.com/lullai/api/internal/entity"
	"github.com/lullai/config"
	"github.com/lullai/pkg/commons"
	"github.com/lullai/pkg/connectors"
	"github.com/lullai/pkg/types"
)

// Redis key prefix for revoked token ids. Entries expire with the token
// itself, so the set never needs sweeping.
const revokedKeyPrefix = "auth:revoked:"

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrRevokedToken       = errors.New("token has been revoked")
)

type lullaClaims struct {
	Email string `json:"email,omitempty"`
	Name  string `json:"name,omitempty"`
	jwt.RegisteredClaims
}

// LoginResult carries the issued token and its subject.
type LoginResult struct {
	Token     string           `json:"token"`
	ExpiresAt time.Time        `json:"expiresAt"`
	User      *types.Principal `json:"user"`
}

// Service implements login/logout on the users table with HS256 tokens.
// Logout revokes the token's jti in redis for the remainder of its life;
// both operations publish {user, isLoading} transitions on the notifier.
type Service struct {
	cfg      *config.AppConfig
	logger   commons.Logger
	users    UserStore
	redis    connectors.RedisConnector
	notifier *Notifier
}

func NewService(cfg *config.AppConfig, logger commons.Logger, postgres connectors.PostgresConnector, redis connectors.RedisConnector) *Service {
	return &Service{
		cfg:      cfg,
		logger:   logger,
		users:    NewUserStore(postgres, logger),
		redis:    redis,
		notifier: NewNotifier(),
	}
}

// Notifier exposes the auth state feed for the live surfaces.
func (s *Service) Notifier() *Notifier {
	return s.notifier
}

func (s *Service) tokenTTL() time.Duration {
	minutes := s.cfg.AuthConfig.TokenTtlMinutes
	if minutes <= 0 {
		minutes = 24 * 60
	}
	return time.Duration(minutes) * time.Minute
}

// Register creates an account. The password is stored as a bcrypt hash.
func (s *Service) Register(ctx context.Context, email, password, name string) (*types.Principal, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &internal_entity.User{
		Email:        email,
		Name:         name,
		PasswordHash: string(hash),
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	return principalOf(user), nil
}

// Login verifies the credentials and issues a bearer token. The notifier
// sees loading → signed-in (or loading → signed-out on failure).
func (s *Service) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	s.notifier.Publish(State{IsLoading: true})

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		s.notifier.Publish(State{})
		s.logger.Debugf("login rejected for %s: %v", email, err)
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		s.notifier.Publish(State{})
		s.logger.Debugf("login rejected for %s: password mismatch", email)
		return nil, ErrInvalidCredentials
	}

	principal := principalOf(user)
	expiresAt := time.Now().Add(s.tokenTTL())
	claims := &lullaClaims{
		Email: user.Email,
		Name:  user.Name,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   principal.UserId,
			ID:        uuid.New().String(),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.cfg.Secret))
	if err != nil {
		s.notifier.Publish(State{})
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}

	s.notifier.Publish(State{User: principal})
	s.logger.Infof("login: user=%s", principal.UserId)

	return &LoginResult{
		Token:     token,
		ExpiresAt: expiresAt,
		User:      principal,
	}, nil
}

// Logout revokes the token for the remainder of its life. Errors are for
// the caller's log only; the client treats logout as fire-and-forget.
func (s *Service) Logout(ctx context.Context, rawToken string) error {
	claims, err := s.parse(rawToken)
	if err != nil {
		return err
	}

	remaining := time.Until(claims.ExpiresAt.Time)
	if remaining > 0 {
		if err := s.redis.Client().Set(ctx, revokedKeyPrefix+claims.ID, "1", remaining).Err(); err != nil {
			return fmt.Errorf("failed to revoke token: %w", err)
		}
	}

	s.notifier.Publish(State{})
	s.logger.Infof("logout: user=%s", claims.Subject)
	return nil
}

// Verify authenticates a bearer token and resolves its principal,
// rejecting revoked tokens.
func (s *Service) Verify(ctx context.Context, rawToken string) (*types.Principal, error) {
	claims, err := s.parse(rawToken)
	if err != nil {
		return nil, err
	}

	revoked, err := s.redis.Client().Exists(ctx, revokedKeyPrefix+claims.ID).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to check token revocation: %w", err)
	}
	if revoked > 0 {
		return nil, ErrRevokedToken
	}

	return &types.Principal{
		UserId: claims.Subject,
		Email:  claims.Email,
		Name:   claims.Name,
	}, nil
}

func (s *Service) parse(rawToken string) (*lullaClaims, error) {
	claims := &lullaClaims{}
	token, err := jwt.ParseWithClaims(rawToken, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(s.cfg.Secret), nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.ExpiresAt == nil || claims.ID == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

func principalOf(user *internal_entity.User) *types.Principal {
	return &types.Principal{
		UserId: fmt.Sprintf("%d", user.Id),
		Email:  user.Email,
		Name:   user.Name,
	}
}
