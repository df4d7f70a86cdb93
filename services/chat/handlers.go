// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package chat

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/AleutianAI/agentswarm/services/chat/routing"
	"github.com/AleutianAI/agentswarm/services/chat/support"
)

// =============================================================================
// Request/Response Types
// =============================================================================

// ChatRequest is the POST /v1/chat body.
type ChatRequest struct {
	Message string `json:"message"`
	UserID  string `json:"user_id"`
}

// ChatResponse is the POST /v1/chat reply.
type ChatResponse struct {
	Response string `json:"response"`
	Route    string `json:"route"`
}

// ErrorResponse is the uniform error body.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// ForceTransferRequest is the test-only transfer override body.
type ForceTransferRequest struct {
	Status string  `json:"status"`
	Amount float64 `json:"amount"`
}

// =============================================================================
// Handlers
// =============================================================================

// Handlers binds the HTTP surface to the turn pipeline and its lookups.
//
// Thread Safety: Safe for concurrent use; all state lives in the service
// and collaborators.
type Handlers struct {
	svc      *Service
	store    *support.Store
	redirect *routing.RedirectPolicy
	logger   *slog.Logger
}

// NewHandlers creates the HTTP handlers.
func NewHandlers(svc *Service, store *support.Store, redirect *routing.RedirectPolicy, logger *slog.Logger) *Handlers {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handlers{svc: svc, store: store, redirect: redirect, logger: logger}
}

// HandleChat handles POST /v1/chat.
//
// Description:
//
//	Runs one conversational turn. A missing message or user_id is a 400;
//	everything downstream resolves to a labeled 200 — the pipeline never
//	surfaces internal failures to the user.
//
// Response:
//
//	200 OK: ChatResponse
//	400 Bad Request: Missing message or user_id
func (h *Handlers) HandleChat(c *gin.Context) {
	requestID := getOrCreateRequestID(c)
	logger := slog.With("request_id", requestID, "handler", "HandleChat")

	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "invalid JSON body",
			Code:  "INVALID_BODY",
		})
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "message is required",
			Code:  "MISSING_PARAMETER",
		})
		return
	}
	if strings.TrimSpace(req.UserID) == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "user_id is required",
			Code:  "MISSING_PARAMETER",
		})
		return
	}

	route, answer := h.svc.Respond(c.Request.Context(), req.Message, req.UserID)

	logger.Info("chat turn",
		slog.String("user_id", req.UserID),
		slog.String("route", route),
	)
	c.JSON(http.StatusOK, ChatResponse{Response: answer, Route: route})
}

// HandleUserInfo handles GET /v1/chat/support/user_info/:user_id.
func (h *Handlers) HandleUserInfo(c *gin.Context) {
	userID := c.Param("user_id")
	if userID == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "user_id parameter is required",
			Code:  "MISSING_PARAMETER",
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"user_id": userID,
		"info":    h.store.UserInfo(userID),
	})
}

// HandleTransferStatus handles GET /v1/chat/support/transfer_status/:user_id.
func (h *Handlers) HandleTransferStatus(c *gin.Context) {
	userID := c.Param("user_id")
	if userID == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "user_id parameter is required",
			Code:  "MISSING_PARAMETER",
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"user_id": userID,
		"status":  h.store.TransferStatus(userID),
	})
}

// HandleForceTransfer handles POST /v1/chat/test/force_transfer/:user_id.
//
// Description:
//
//	Test-only: overrides the user's last transfer so failure paths can be
//	exercised without waiting on generated data.
//
// Response:
//
//	200 OK: the resulting transfer
//	400 Bad Request: invalid status
func (h *Handlers) HandleForceTransfer(c *gin.Context) {
	userID := c.Param("user_id")

	var req ForceTransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "invalid JSON body",
			Code:  "INVALID_BODY",
		})
		return
	}

	transfer, err := h.store.ForceTransfer(userID, req.Status, req.Amount)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: err.Error(),
			Code:  "INVALID_STATUS",
		})
		return
	}

	h.logger.Info("test: transfer forced",
		slog.String("user_id", userID),
		slog.String("status", transfer.Status),
	)
	c.JSON(http.StatusOK, gin.H{
		"user_id": userID,
		"id":      transfer.ID,
		"status":  transfer.Status,
		"amount":  transfer.Amount,
	})
}

// HandleForceRedirect handles POST /v1/chat/test/force_redirect/:user_id.
//
// Test-only: raises the user's clarification counter to the redirect
// threshold so the next unresolved turn escalates.
func (h *Handlers) HandleForceRedirect(c *gin.Context) {
	userID := c.Param("user_id")
	count := h.redirect.ForceRedirect(userID)

	h.logger.Info("test: redirect forced",
		slog.String("user_id", userID),
		slog.Int("clarification_count", count),
	)
	c.JSON(http.StatusOK, gin.H{
		"user_id":             userID,
		"clarification_count": count,
	})
}

// HandleHealth handles GET /v1/chat/health. Liveness only.
func (h *Handlers) HandleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// HandleReady handles GET /v1/chat/ready. The pipeline has no external
// startup dependency; readiness tracks construction.
func (h *Handlers) HandleReady(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}

// getOrCreateRequestID returns the inbound X-Request-ID or mints one.
func getOrCreateRequestID(c *gin.Context) string {
	if id := c.GetHeader("X-Request-ID"); id != "" {
		return id
	}
	return uuid.New().String()
}
