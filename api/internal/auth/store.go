// Copyright (c) 2024-2026 Lulla AI
// Author: Lulla Engineering <engineering@lulla.ai>
//
// Licensed under GPL-2.0 with Lulla Additional Terms.
// See LICENSE.md or contact sales@lulla.ai for commercial usage.

package internal_auth

import (
	"context"
	"fmt"

	internal_entity "github.com/lullai/api/internal/entity"
	"github.com/lullai/pkg/commons"
	"github.com/lullai/pkg/connectors"
	type_enums "github.com/lullai/pkg/types/enums"
)

// UserStore provides the account lookups the auth service needs.
type UserStore interface {
	// Create stores a new user. The email must be unused.
	Create(ctx context.Context, user *internal_entity.User) error

	// GetByEmail resolves an active user by email.
	GetByEmail(ctx context.Context, email string) (*internal_entity.User, error)
}

type postgresUserStore struct {
	postgres connectors.PostgresConnector
	logger   commons.Logger
}

// NewUserStore creates a user store backed by Postgres.
func NewUserStore(postgres connectors.PostgresConnector, logger commons.Logger) UserStore {
	return &postgresUserStore{
		postgres: postgres,
		logger:   logger,
	}
}

func (s *postgresUserStore) Create(ctx context.Context, user *internal_entity.User) error {
	if user.Status == "" {
		user.Status = type_enums.ACTIVE
	}

	db := s.postgres.DB(ctx)
	if err := db.Create(user).Error; err != nil {
		return fmt.Errorf("failed to create user %s: %w", user.Email, err)
	}

	s.logger.Infof("created user: id=%d, email=%s", user.Id, user.Email)
	return nil
}

func (s *postgresUserStore) GetByEmail(ctx context.Context, email string) (*internal_entity.User, error) {
	db := s.postgres.DB(ctx)
	var user internal_entity.User
	if err := db.Where("email = ? AND status = ?", email, type_enums.ACTIVE).First(&user).Error; err != nil {
		return nil, fmt.Errorf("user not found: %s: %w", email, err)
	}
	return &user, nil
}
