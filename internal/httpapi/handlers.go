package httpapi

import (
	"crypto/subtle"
	"errors"
	"net/http"
	"time"

	"voicebot-platform/internal/auth"
	"voicebot-platform/internal/dialog"
	"voicebot-platform/internal/rbac"
	"voicebot-platform/internal/reporting"
	"voicebot-platform/internal/telephony"

	"github.com/gin-gonic/gin"
)

// Handlers groups HTTP handlers for dependency injection.
// Keep these thin: parse/validate input, call internal services, return JSON.

type Handlers struct {
	Auth        *auth.Manager
	OperatorKey string

	Ctrl    *dialog.Controller
	Placer  *dialog.CallPlacer
	Dialer  telephony.Dialer
	Reports *reporting.Service
}

// --- Auth ---

type loginRequest struct {
	OperatorID string `json:"operator_id"`
	Role       string `json:"role"`
	APIKey     string `json:"api_key"`
}

// Login exchanges the shared operator key for a JWT token pair.
func (h Handlers) Login(c *gin.Context) {
	if h.Auth == nil || h.OperatorKey == "" {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "auth not configured"})
		return
	}
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if req.OperatorID == "" || req.Role == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "operator_id, role required"})
		return
	}
	if req.Role != rbac.RoleOperator && req.Role != rbac.RoleAdmin {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "unknown role"})
		return
	}
	if subtle.ConstantTimeCompare([]byte(req.APIKey), []byte(h.OperatorKey)) != 1 {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid api key"})
		return
	}
	pair, err := h.Auth.IssuePair(time.Now(), req.OperatorID, req.Role)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "token issuance failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"access_token": pair.AccessToken, "refresh_token": pair.RefreshToken})
}

// --- Calls ---

// PlaceCall starts one outbound call via the telephony gateway.
func (h Handlers) PlaceCall(c *gin.Context) {
	if h.Placer == nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "dialer not configured"})
		return
	}
	var req dialog.PlaceCallRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	res, err := h.Placer.PlaceCall(c.Request.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, telephony.ErrNotReady):
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "telephony gateway not configured"})
		case errors.Is(err, telephony.ErrInvalidNumber):
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid destination number"})
		default:
			c.AbortWithStatusJSON(http.StatusBadGateway, gin.H{"error": "call placement failed"})
		}
		return
	}
	c.JSON(http.StatusCreated, res)
}

// GetCall returns the live session snapshot when the call is active, and
// otherwise falls back to the gateway's view of the call.
func (h Handlers) GetCall(c *gin.Context) {
	callID := c.Param("call_sid")
	if callID == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "call_sid required"})
		return
	}

	withHistory := c.Query("history") == "true"
	if snap, ok := h.Ctrl.Sessions().Snapshot(callID, withHistory); ok {
		c.JSON(http.StatusOK, gin.H{"source": "session", "session": snap})
		return
	}

	if h.Dialer != nil && h.Dialer.Ready() {
		status, err := h.Dialer.FetchStatus(c.Request.Context(), callID)
		if err == nil {
			c.JSON(http.StatusOK, gin.H{"source": "gateway", "call_sid": callID, "status": status})
			return
		}
	}
	c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "call not found"})
}

// ListSessions returns snapshots of all live sessions, without history.
func (h Handlers) ListSessions(c *gin.Context) {
	store := h.Ctrl.Sessions()
	ids := store.CallIDs()

	sessions := make([]any, 0, len(ids))
	for _, id := range ids {
		if snap, ok := store.Snapshot(id, false); ok {
			sessions = append(sessions, snap)
		}
	}
	c.JSON(http.StatusOK, gin.H{"count": len(sessions), "sessions": sessions})
}

// --- Prompts ---

type promptRequest struct {
	Prompt string `json:"prompt"`
}

// SetDefaultPrompt replaces the greeting used when a call carries no staged
// message. Admin only.
func (h Handlers) SetDefaultPrompt(c *gin.Context) {
	var req promptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if req.Prompt == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "prompt required"})
		return
	}
	h.Ctrl.SetDefaultPurpose(req.Prompt)
	c.JSON(http.StatusOK, gin.H{"prompt": h.Ctrl.CurrentDefaultPurpose()})
}

// OverrideSessionPrompt changes the purpose of one live session. Admin only.
func (h Handlers) OverrideSessionPrompt(c *gin.Context) {
	callID := c.Param("call_sid")
	var req promptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if callID == "" || req.Prompt == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "call_sid and prompt required"})
		return
	}
	if !h.Ctrl.OverridePurpose(callID, req.Prompt) {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"call_sid": callID, "prompt": req.Prompt})
}

// --- Reports ---

// DispositionReport aggregates finished calls over [from, to).
// Defaults to the last 24 hours when neither bound is given.
func (h Handlers) DispositionReport(c *gin.Context) {
	if h.Reports == nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "reporting not configured"})
		return
	}

	now := time.Now()
	rng := reporting.TimeRange{From: now.Add(-24 * time.Hour), To: now}
	if raw := c.Query("from"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "from must be RFC3339"})
			return
		}
		rng.From = t
	}
	if raw := c.Query("to"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "to must be RFC3339"})
			return
		}
		rng.To = t
	}

	summary, err := h.Reports.Dispositions(c.Request.Context(), reporting.DispositionRequest{Range: rng})
	if err != nil {
		if errors.Is(err, reporting.ErrInvalidRequest) {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid time range"})
			return
		}
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "report failed"})
		return
	}
	c.JSON(http.StatusOK, summary)
}

// --- Health ---

func (h Handlers) Health(c *gin.Context) {
	status := gin.H{
		"status":         "ok",
		"live_sessions":  h.Ctrl.Sessions().Len(),
		"dialer_ready":   h.Dialer != nil && h.Dialer.Ready(),
		"default_prompt": h.Ctrl.CurrentDefaultPurpose() != "",
	}
	c.JSON(http.StatusOK, status)
}
