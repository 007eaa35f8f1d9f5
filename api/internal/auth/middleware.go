// Copyright (c) 2024-2026 Lulla AI
// Author: Lulla Engineering <engineering@lulla.ai>
//
// Licensed under GPL-2.0 with Lulla Additional Terms.
// See LICENSE.md or contact sales@lulla.ai for commercial usage.

package internal_auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/lullai/pkg/commons"
	"github.com/lullai/pkg/types"
	"github.com/lullai/pkg/utils"
)

// Middleware authenticates the bearer token and attaches the principal.
// Browsers cannot set headers on a WebSocket handshake, so the live
// endpoints may carry the token as an access_token query parameter.
func Middleware(service *Service, logger commons.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := BearerToken(c)
		if raw == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error":   "missing bearer token",
			})
			return
		}

		principal, err := service.Verify(c.Request.Context(), raw)
		if err != nil {
			logger.Debugf("unauthenticated request for %s: %v", c.FullPath(), err)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error":   "unauthenticated request",
			})
			return
		}

		types.SetAuthPrinciple(c, principal)
		c.Next()
	}
}

// BearerToken extracts the raw token from the request, from the
// Authorization header with or without the Bearer prefix, or from the
// access_token query parameter on handshake-style requests.
func BearerToken(c *gin.Context) string {
	header := c.GetHeader(utils.HEADER_AUTH_KEY)
	if after, found := strings.CutPrefix(header, "Bearer "); found && utils.IsNotEmpty(after) {
		return after
	}
	if utils.IsNotEmpty(header) {
		return header
	}
	return c.Query("access_token")
}
