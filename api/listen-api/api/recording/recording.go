// Copyright (c) 2024-2026 Lulla AI
// Author: Lulla Engineering <engineering@lulla.ai>
//
// Licensed under GPL-2.0 with Lulla Additional Terms.
// See LICENSE.md or contact sales@lulla.ai for commercial usage.

package recording_api

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	internal_alert "github.com/lullai/api/internal/alert"
	internal_classifier "github.com/lullai/api/internal/classifier"
	internal_entity "github.com/lullai/api/internal/entity"
	internal_store "github.com/lullai/api/internal/store"
	"github.com/lullai/config"
	"github.com/lullai/pkg/commons"
	"github.com/lullai/pkg/types"
)

// maxListLimit caps one history page. The store default of 20 applies
// when the client asks for nothing in particular.
const maxListLimit = 50

type RecordingApi struct {
	cfg    *config.AppConfig
	logger commons.Logger
	store  internal_store.RecordingStore
	alerts *internal_alert.Dispatcher
}

func New(cfg *config.AppConfig, logger commons.Logger, store internal_store.RecordingStore, alerts *internal_alert.Dispatcher) *RecordingApi {
	return &RecordingApi{
		cfg:    cfg,
		logger: logger,
		store:  store,
		alerts: alerts,
	}
}

// saveRequest is the capture draft the client decided to keep: the
// classification fields plus the audio itself. Analyses never saved are
// simply gone.
type saveRequest struct {
	Type       string `json:"type"`
	Urgency    string `json:"urgency"`
	Confidence int    `json:"confidence"`
	Action     string `json:"action"`
	AudioData  string `json:"audioData" binding:"required"`
}

// Save persists one recording for the calling user. The response's
// storage field tells the client whether the row reached the backend or
// only this deployment's local fallback, which the client uses for its
// offline banner and for nothing else.
//
// @Router /v1/recordings [post]
func (api *RecordingApi) Save(c *gin.Context) {
	principal, ok := types.GetAuthPrinciple(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "unauthenticated request"})
		return
	}

	var request saveRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}

	recording := &internal_entity.Recording{
		UserId:     principal.UserId,
		Type:       strings.TrimSpace(strings.ToLower(request.Type)),
		Urgency:    string(internal_classifier.ParseUrgency(request.Urgency)),
		Confidence: request.Confidence,
		Action:     request.Action,
		AudioData:  request.AudioData,
	}
	if recording.Type == "" {
		recording.Type = internal_classifier.DefaultType
	}

	recordingID, err := api.store.Save(c.Request.Context(), recording)
	if err != nil {
		api.logger.Errorf("save recording failed for user %s: %v", principal.UserId, err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "unable to save the recording, please try again"})
		return
	}

	api.alerts.Notify(c.Request.Context(), &internal_alert.Alert{
		RecordingId: recordingID,
		UserId:      principal.UserId,
		Email:       principal.Email,
		Type:        recording.Type,
		Urgency:     recording.Urgency,
		Confidence:  recording.Confidence,
		Action:      recording.Action,
		CapturedAt:  time.Now(),
	})

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    recording,
		"storage": api.store.Mode(),
	})
}

// List returns the caller's history, most recent first.
//
// @Router /v1/recordings [get]
func (api *RecordingApi) List(c *gin.Context) {
	principal, ok := types.GetAuthPrinciple(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "unauthenticated request"})
		return
	}

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "limit must be a non-negative integer"})
			return
		}
		limit = parsed
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}

	recordings, err := api.store.List(c.Request.Context(), principal.UserId, limit)
	if err != nil {
		api.logger.Errorf("list recordings failed for user %s: %v", principal.UserId, err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "unable to load your recordings, please try again"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    recordings,
		"storage": api.store.Mode(),
	})
}

// Delete removes one recording owned by the caller.
//
// @Router /v1/recordings/:recordingId [delete]
func (api *RecordingApi) Delete(c *gin.Context) {
	principal, ok := types.GetAuthPrinciple(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "unauthenticated request"})
		return
	}

	recordingID := c.Param("recordingId")
	if err := api.store.Delete(c.Request.Context(), recordingID, principal.UserId); err != nil {
		api.logger.Debugf("delete recording %s failed for user %s: %v", recordingID, principal.UserId, err)
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "recording not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"storage": api.store.Mode(),
	})
}
