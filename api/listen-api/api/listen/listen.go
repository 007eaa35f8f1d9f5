// Copyright (c) 2024-2026 Lulla AI
// Author: Lulla Engineering <engineering@lulla.ai>
//
// Licensed under GPL-2.0 with Lulla Additional Terms.
// See LICENSE.md or contact sales@lulla.ai for commercial usage.

package listen_api

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	internal_audio "github.com/lullai/api/internal/audio"
	internal_auth "github.com/lullai/api/internal/auth"
	internal_capture "github.com/lullai/api/internal/capture"
	"github.com/lullai/config"
	"github.com/lullai/pkg/commons"
	"github.com/lullai/pkg/types"
)

type ListenApi struct {
	cfg     *config.AppConfig
	logger  commons.Logger
	manager *internal_capture.Manager
	auth    *internal_auth.Service
}

func New(cfg *config.AppConfig, logger commons.Logger, manager *internal_capture.Manager, auth *internal_auth.Service) *ListenApi {
	return &ListenApi{
		cfg:     cfg,
		logger:  logger,
		manager: manager,
		auth:    auth,
	}
}

// startRequest describes the audio the client is about to stream. All
// fields are optional; the zero request means the browser default
// (48kHz mono PCM).
type startRequest struct {
	SampleRate uint32 `json:"sampleRate"`
	Channels   uint16 `json:"channels"`
	Encoding   string `json:"encoding"`
}

func (r *startRequest) audioConfig() *internal_audio.AudioConfig {
	if r.SampleRate == 0 && r.Channels == 0 && r.Encoding == "" {
		return nil
	}
	cfg := internal_audio.BROWSER_AUDIO_CONFIG
	out := &internal_audio.AudioConfig{
		SampleRate: cfg.SampleRate,
		Channels:   cfg.Channels,
		Encoding:   cfg.Encoding,
	}
	if r.SampleRate != 0 {
		out.SampleRate = r.SampleRate
	}
	if r.Channels != 0 {
		out.Channels = r.Channels
	}
	if r.Encoding != "" {
		out.Encoding = internal_audio.Encoding(r.Encoding)
	}
	return out
}

// session loads the addressed capture session and checks the caller owns
// it. A session belonging to someone else reports not-found rather than
// forbidden, so session ids cannot be probed.
func (api *ListenApi) session(c *gin.Context, principal *types.Principal) (*internal_capture.Session, bool) {
	session, err := api.manager.Get(c.Param("sessionId"))
	if err != nil || session.UserId != principal.UserId {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "capture session not found"})
		return nil, false
	}
	return session, true
}

// Start opens a capture session for the calling user.
//
// @Router /v1/listen/start [post]
func (api *ListenApi) Start(c *gin.Context) {
	principal, ok := types.GetAuthPrinciple(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "unauthenticated request"})
		return
	}

	// an empty body is fine: it means the browser default format
	var request startRequest
	if err := c.ShouldBindJSON(&request); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}

	session, err := api.manager.Start(c.Request.Context(), principal.UserId, request.audioConfig())
	if err != nil {
		if errors.Is(err, internal_capture.ErrAlreadyRecording) {
			c.JSON(http.StatusConflict, gin.H{"success": false, "error": err.Error()})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data": gin.H{
			"sessionId": session.Id,
			"state":     session.State(),
			"startedAt": session.StartedAt,
		},
	})
}

// Chunk ingests one raw audio frame posted as the request body.
//
// @Router /v1/listen/:sessionId/chunk [post]
func (api *ListenApi) Chunk(c *gin.Context) {
	principal, ok := types.GetAuthPrinciple(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "unauthenticated request"})
		return
	}
	session, ok := api.session(c, principal)
	if !ok {
		return
	}

	chunk, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "unable to read the audio chunk"})
		return
	}

	result, err := api.manager.Ingest(c.Request.Context(), session.Id, chunk)
	if err != nil {
		if errors.Is(err, internal_capture.ErrSessionNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "capture session not found"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}

	// Hitting the clip cap finalizes exactly as an explicit stop would,
	// so the client gets the stop payload here.
	if result.Finalized != nil {
		c.JSON(http.StatusOK, gin.H{"success": true, "data": result.Finalized})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"level":  result.Sample.Level,
			"crying": result.Sample.Crying,
		},
	})
}

// Stop finalizes the session: the buffered audio is classified and the
// analysis plus an unsaved recording draft come back. A nil analysis
// with success=true means the classifier was unreachable; the draft is
// still usable.
//
// @Router /v1/listen/:sessionId/stop [post]
func (api *ListenApi) Stop(c *gin.Context) {
	principal, ok := types.GetAuthPrinciple(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "unauthenticated request"})
		return
	}
	session, ok := api.session(c, principal)
	if !ok {
		return
	}

	result, err := api.manager.Stop(c.Request.Context(), session.Id)
	if err != nil {
		switch {
		case errors.Is(err, internal_capture.ErrSessionNotFound):
			c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "capture session not found"})
		case errors.Is(err, internal_capture.ErrNoAudio):
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "no audio was captured"})
		default:
			api.logger.Errorf("stop failed for session %s: %v", session.Id, err)
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "unable to finalize the capture"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": result})
}

// Cancel discards the session and its buffered audio.
//
// @Router /v1/listen/:sessionId/cancel [post]
func (api *ListenApi) Cancel(c *gin.Context) {
	principal, ok := types.GetAuthPrinciple(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "unauthenticated request"})
		return
	}
	session, ok := api.session(c, principal)
	if !ok {
		return
	}

	if err := api.manager.Cancel(c.Request.Context(), session.Id); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "capture session not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}
