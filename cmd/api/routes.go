package main

import (
	"voicebot-platform/internal/httpapi"
	"voicebot-platform/internal/rbac"
	"voicebot-platform/internal/webhook"

	"github.com/gin-gonic/gin"
)

// registerRoutes wires HTTP routes to handlers.
// Keep this file free of business logic. Handlers should delegate to internal modules.
func registerRoutes(r *gin.Engine, wh webhook.Handlers, api httpapi.Handlers, authMW gin.HandlerFunc) {
	// public
	r.GET("/healthz", api.Health)

	// Gateway webhooks (public). The gateway retries on non-2xx, so these
	// handlers always answer 200 with well-formed markup.
	hooks := r.Group("/webhooks")
	{
		hooks.POST("/voice", wh.HandleVoice)
		hooks.POST("/speech", wh.HandleSpeech)
		hooks.POST("/status", wh.HandleStatus)
	}

	// Token issuance sits outside the protected group.
	r.POST("/v1/auth/login", api.Login)

	v1 := r.Group("/v1")
	v1.Use(authMW)
	{
		calls := v1.Group("/calls")
		calls.Use(rbac.RequireAnyRole(rbac.RoleOperator))
		{
			calls.POST("", api.PlaceCall)
			calls.GET("/:call_sid", api.GetCall)
		}

		sessions := v1.Group("/sessions")
		sessions.Use(rbac.RequireAnyRole(rbac.RoleAdmin))
		{
			sessions.GET("", api.ListSessions)
			sessions.PUT("/:call_sid/prompt", api.OverrideSessionPrompt)
		}

		// Admin-only configuration and reporting.
		v1.PUT("/prompts/default", rbac.RequireAnyRole(rbac.RoleAdmin), api.SetDefaultPrompt)
		v1.GET("/reports/dispositions", rbac.RequireAnyRole(rbac.RoleAdmin), api.DispositionReport)
	}
}
