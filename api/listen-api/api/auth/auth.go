// Copyright (c) 2024-2026 Lulla AI
// Author: Lulla Engineering <engineering@lulla.ai>
//
// Licensed under GPL-2.0 with Lulla Additional Terms.
// See LICENSE.md or contact sales@lulla.ai for commercial usage.

package auth_api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	internal_auth "github.com/lullai/api/internal/auth"
	"github.com/lullai/config"
	"github.com/lullai/pkg/commons"
	"github.com/lullai/pkg/types"
)

type AuthApi struct {
	cfg     *config.AppConfig
	logger  commons.Logger
	service *internal_auth.Service
}

func New(cfg *config.AppConfig, logger commons.Logger, service *internal_auth.Service) *AuthApi {
	return &AuthApi{
		cfg:     cfg,
		logger:  logger,
		service: service,
	}
}

type registerRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	Name     string `json:"name"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Register creates an account.
//
// @Router /v1/auth/register [post]
func (api *AuthApi) Register(c *gin.Context) {
	var request registerRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}

	principal, err := api.service.Register(c.Request.Context(), request.Email, request.Password, request.Name)
	if err != nil {
		api.logger.Errorf("registration failed for %s: %v", request.Email, err)
		c.JSON(http.StatusConflict, gin.H{
			"success": false,
			"error":   "unable to create the account, the email may already be in use",
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "data": principal})
}

// Login verifies credentials and issues a bearer token.
//
// @Router /v1/auth/login [post]
func (api *AuthApi) Login(c *gin.Context) {
	var request loginRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}

	result, err := api.service.Login(c.Request.Context(), request.Email, request.Password)
	if err != nil {
		if errors.Is(err, internal_auth.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "invalid email or password"})
			return
		}
		api.logger.Errorf("login failed for %s: %v", request.Email, err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "unable to sign in, please try again"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": result})
}

// Logout revokes the presented token. The client treats logout as
// fire-and-forget, so everything short of a missing token answers 200.
//
// @Router /v1/auth/logout [post]
func (api *AuthApi) Logout(c *gin.Context) {
	raw := internal_auth.BearerToken(c)
	if raw == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "missing bearer token"})
		return
	}

	if err := api.service.Logout(c.Request.Context(), raw); err != nil {
		api.logger.Debugf("logout with unusable token: %v", err)
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// Me resolves the authenticated caller; it sits behind the auth
// middleware, so reaching it at all means the token verified.
//
// @Router /v1/auth/me [get]
func (api *AuthApi) Me(c *gin.Context) {
	principal, ok := types.GetAuthPrinciple(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "unauthenticated request"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": principal})
}
