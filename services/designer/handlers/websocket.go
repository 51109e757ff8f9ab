// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/AleutianAI/AleutianBlueprint/services/designer/datatypes"
	"github.com/AleutianAI/AleutianBlueprint/services/designer/observability"
	"github.com/AleutianAI/AleutianBlueprint/services/designer/validation"
)

// WSValidateRequest is one message on the live validation socket: a
// full project snapshot plus the phase to validate.
type WSValidateRequest struct {
	Project *datatypes.Project `json:"project"`
	Phase   datatypes.Phase    `json:"phase"`
}

// WSValidateResponse is the per-message reply.
type WSValidateResponse struct {
	Phase       datatypes.Phase              `json:"phase"`
	Validations []datatypes.ValidationResult `json:"validations,omitempty"`
	Error       string                       `json:"error,omitempty"`
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
	ReadBufferSize:  1024 * 1024,
	WriteBufferSize: 1024 * 1024,
}

func sendJSON(ws *websocket.Conn, v interface{}) error {
	err := ws.WriteJSON(v)
	if err != nil {
		slog.Warn("Failed to write WebSocket JSON", "error", err)
	}
	return err
}

// HandleValidationWebSocket serves the live validation feed the wizard
// uses while the user edits. Each inbound {project, phase} message gets
// one validation batch back; a bad message produces an error reply on
// the same socket, not a close.
func HandleValidationWebSocket() gin.HandlerFunc {
	return func(c *gin.Context) {
		ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			slog.Error("failed to upgrade the websocket", "error", err)
			return
		}
		defer ws.Close()

		sessionID := uuid.New().String()
		slog.Info("Validation websocket connected", "sessionID", sessionID)

		if err := sendJSON(ws, map[string]interface{}{
			"action":    "session_created",
			"sessionId": sessionID,
		}); err != nil {
			return
		}

		for {
			var req WSValidateRequest
			if err := ws.ReadJSON(&req); err != nil {
				slog.Info("Validation websocket disconnected", "sessionID", sessionID, "error", err.Error())
				break
			}

			var resp WSValidateResponse
			resp.Phase = req.Phase
			switch {
			case req.Project == nil:
				resp.Error = "project is required"
			case !req.Phase.Valid():
				resp.Error = "unknown phase"
			default:
				resp.Validations = validation.Run(req.Project, req.Phase)
				observability.ValidationRuns.WithLabelValues(string(req.Phase)).Inc()
			}

			if err := sendJSON(ws, resp); err != nil {
				return
			}
		}
	}
}
