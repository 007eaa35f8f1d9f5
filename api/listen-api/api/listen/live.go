// Copyright (c) 2024-2026 Lulla AI
// Author: Lulla Engineering <engineering@lulla.ai>
//
// Licensed under GPL-2.0 with Lulla Additional Terms.
// See LICENSE.md or contact sales@lulla.ai for commercial usage.

package listen_api

import (
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	internal_capture "github.com/lullai/api/internal/capture"
	"github.com/lullai/pkg/types"
	"github.com/lullai/pkg/utils"
)

// WSMessageType defines the type of message and what data structure to expect
type WSMessageType string

const (
	// Request types (client -> server, text frames; audio arrives as
	// binary frames with no envelope)
	WSTypeStop   WSMessageType = "stop"   // Data: nil
	WSTypeCancel WSMessageType = "cancel" // Data: nil
	WSTypePing   WSMessageType = "ping"   // Data: nil

	// Response types (server -> client)
	WSTypeLevel     WSMessageType = "level"      // Data: capture.Event
	WSTypeAnalysis  WSMessageType = "analysis"   // Data: capture.Event
	WSTypeAuthState WSMessageType = "auth_state" // Data: auth.State
	WSTypeError     WSMessageType = "error"      // Data: WSErrorData
	WSTypePong      WSMessageType = "pong"       // Data: nil
)

// WSMessage is the envelope for every text frame in either direction.
type WSMessage struct {
	Type      WSMessageType `json:"type"`
	Timestamp int64         `json:"timestamp"`
	Data      interface{}   `json:"data,omitempty"`
}

// WSErrorData carries a non-fatal error to the client.
type WSErrorData struct {
	Message string `json:"message"`
}

var liveUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// liveReadLimit bounds one inbound frame. A second of browser PCM is
// under 100KB, so 1MB leaves generous headroom.
const liveReadLimit = 1 << 20

// liveConn wraps the socket with a write lock: level relays, auth
// relays and command replies all write concurrently.
type liveConn struct {
	conn    *websocket.Conn
	writeMu sync.Mutex
}

func (l *liveConn) send(msgType WSMessageType, data interface{}) error {
	l.writeMu.Lock()
	defer l.writeMu.Unlock()

	payload, err := json.Marshal(WSMessage{
		Type:      msgType,
		Timestamp: time.Now().UnixMilli(),
		Data:      data,
	})
	if err != nil {
		return err
	}
	return l.conn.WriteMessage(websocket.TextMessage, payload)
}

// goodbye sends a close frame and drops the socket. Used by the relay
// when the session feed ends, so the client sees the final analysis
// before the close.
func (l *liveConn) goodbye() {
	l.writeMu.Lock()
	l.conn.WriteControl(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second),
	)
	l.writeMu.Unlock()
	l.conn.Close()
}

// Live streams a capture session over WebSocket: binary frames ingest
// audio, text frames carry stop/cancel/ping envelopes, and the server
// pushes level samples, auth transitions and the final analysis. The
// feed closing (stop, cancel, clip cap or timer) closes the socket.
//
// @Router /v1/listen/:sessionId/live [get]
func (api *ListenApi) Live(c *gin.Context) {
	principal, ok := types.GetAuthPrinciple(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "unauthenticated request"})
		return
	}
	session, ok := api.session(c, principal)
	if !ok {
		return
	}

	conn, err := liveUpgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		api.logger.Errorf("websocket upgrade failed for session %s: %v", session.Id, err)
		return
	}
	conn.SetReadLimit(liveReadLimit)

	live := &liveConn{conn: conn}
	events, cancelFeed := session.Subscribe()
	states, cancelAuth := api.auth.Notifier().Subscribe()
	done := make(chan struct{})

	// relay: session feed and auth transitions out to the client. The
	// feed closing is the session's end-of-life signal; the relay says
	// goodbye so the reader unblocks.
	utils.Go(c.Request.Context(), func() {
		defer live.goodbye()
		for {
			select {
			case event, ok := <-events:
				if !ok {
					return
				}
				kind := WSTypeLevel
				if event.Kind == internal_capture.EventAnalysis {
					kind = WSTypeAnalysis
				}
				if err := live.send(kind, event); err != nil {
					return
				}
			case state, ok := <-states:
				if !ok {
					return
				}
				if err := live.send(WSTypeAuthState, state); err != nil {
					return
				}
			case <-done:
				return
			}
		}
	})

	api.liveReadLoop(c, live, session)

	close(done)
	cancelFeed()
	cancelAuth()
	conn.Close()
}

// liveReadLoop consumes client frames until the socket dies. Stop and
// cancel do not return directly: the resulting feed close travels
// through the relay, which closes the socket and ends this loop.
func (api *ListenApi) liveReadLoop(c *gin.Context, live *liveConn, session *internal_capture.Session) {
	ctx := c.Request.Context()
	for {
		frameType, payload, err := live.conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				api.logger.Debugf("live socket closed for session %s", session.Id)
			}
			return
		}

		switch frameType {
		case websocket.BinaryMessage:
			_, err := api.manager.Ingest(ctx, session.Id, payload)
			if err != nil {
				// a frame racing the finalize just loses; anything else
				// is a malformed chunk the client should hear about
				if errors.Is(err, internal_capture.ErrSessionNotFound) || errors.Is(err, internal_capture.ErrNotRecording) {
					api.logger.Debugf("late chunk for session %s dropped", session.Id)
					continue
				}
				live.send(WSTypeError, WSErrorData{Message: err.Error()})
			}

		case websocket.TextMessage:
			var msg WSMessage
			if err := json.Unmarshal(payload, &msg); err != nil {
				live.send(WSTypeError, WSErrorData{Message: "unreadable message"})
				continue
			}

			switch msg.Type {
			case WSTypePing:
				live.send(WSTypePong, nil)
			case WSTypeStop:
				if _, err := api.manager.Stop(ctx, session.Id); err != nil {
					if errors.Is(err, internal_capture.ErrNoAudio) {
						live.send(WSTypeError, WSErrorData{Message: "no audio was captured"})
					}
					return
				}
			case WSTypeCancel:
				if err := api.manager.Cancel(ctx, session.Id); err != nil {
					return
				}
			default:
				live.send(WSTypeError, WSErrorData{Message: "unknown message type"})
			}
		}
	}
}
