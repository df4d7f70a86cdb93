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
	"github.com/gin-gonic/gin"
)

// RegisterRoutes registers all chat routes with the router.
//
// Description:
//
//	Registers all /v1/chat/* endpoints with the given Gin router group.
//	The router group should already have any required middleware applied.
//
// Inputs:
//
//	rg - Gin router group (typically /v1)
//	handlers - The handlers instance
//
// Endpoints:
//
//	POST /v1/chat - Run one conversational turn
//
//	GET  /v1/chat/support/user_info/:user_id - Profile summary lookup
//	GET  /v1/chat/support/transfer_status/:user_id - Last transfer state
//
//	POST /v1/chat/test/force_transfer/:user_id - Override last transfer (test-only)
//	POST /v1/chat/test/force_redirect/:user_id - Raise clarification counter (test-only)
//
//	GET  /v1/chat/health - Health check
//	GET  /v1/chat/ready - Readiness check
func RegisterRoutes(rg *gin.RouterGroup, handlers *Handlers) {
	chat := rg.Group("/chat")
	{
		chat.POST("", handlers.HandleChat)

		// Support lookups
		sup := chat.Group("/support")
		{
			sup.GET("/user_info/:user_id", handlers.HandleUserInfo)
			sup.GET("/transfer_status/:user_id", handlers.HandleTransferStatus)
		}

		// Test-only hooks
		test := chat.Group("/test")
		{
			test.POST("/force_transfer/:user_id", handlers.HandleForceTransfer)
			test.POST("/force_redirect/:user_id", handlers.HandleForceRedirect)
		}

		// Health checks
		chat.GET("/health", handlers.HandleHealth)
		chat.GET("/ready", handlers.HandleReady)
	}
}
