package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"voicebot-platform/internal/auth"
	"voicebot-platform/internal/calllog"
	"voicebot-platform/internal/config"
	"voicebot-platform/internal/dialog"
	"voicebot-platform/internal/greeting"
	"voicebot-platform/internal/rbac"
	"voicebot-platform/internal/reporting"
	"voicebot-platform/internal/session"
	"voicebot-platform/internal/telephony"
)

type stubDialer struct {
	ready  bool
	status string
}

func (d stubDialer) Name() string { return "stub" }
func (d stubDialer) Ready() bool  { return d.ready }

func (d stubDialer) PlaceCall(context.Context, telephony.PlaceCallRequest) (telephony.PlaceCallResult, error) {
	return telephony.PlaceCallResult{CallID: "CA999", Status: "queued"}, nil
}

func (d stubDialer) FetchStatus(context.Context, string) (string, error) {
	if d.status == "" {
		return "", telephony.ErrNotReady
	}
	return d.status, nil
}

func newTestHandlers(t *testing.T, d telephony.Dialer) (Handlers, *dialog.Controller) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	m, err := auth.NewManager(config.AuthConfig{
		JWTSecret:       "test-secret",
		AccessTokenTTL:  15 * time.Minute,
		RefreshTokenTTL: 24 * time.Hour,
	})
	if err != nil {
		t.Fatalf("auth init failed: %v", err)
	}

	greetings := greeting.NewMemoryStore(time.Minute)
	repo := calllog.NewMemoryRepo()
	ctrl := dialog.NewController(session.NewStore(), greetings, repo)

	h := Handlers{
		Auth:        m,
		OperatorKey: "op-key",
		Ctrl:        ctrl,
		Placer: &dialog.CallPlacer{
			Dialer:                d,
			Greetings:             greetings,
			BaseURL:               "https://bot.example.com",
			DefaultTimeoutSeconds: 30,
		},
		Dialer:  d,
		Reports: reporting.NewService(repo),
	}
	return h, ctrl
}

func doJSON(t *testing.T, r *gin.Engine, method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestLogin(t *testing.T) {
	h, _ := newTestHandlers(t, stubDialer{ready: true})
	r := gin.New()
	r.POST("/v1/auth/login", h.Login)

	w := doJSON(t, r, http.MethodPost, "/v1/auth/login", `{"operator_id":"op-1","role":"operator","api_key":"wrong"}`, nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for wrong key, got %d", w.Code)
	}

	w = doJSON(t, r, http.MethodPost, "/v1/auth/login", `{"operator_id":"op-1","role":"superuser","api_key":"op-key"}`, nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown role, got %d", w.Code)
	}

	w = doJSON(t, r, http.MethodPost, "/v1/auth/login", `{"operator_id":"op-1","role":"operator","api_key":"op-key"}`, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var resp map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad json: %v", err)
	}
	if resp["access_token"] == "" || resp["refresh_token"] == "" {
		t.Fatalf("missing tokens: %v", resp)
	}
}

func TestPlaceCall(t *testing.T) {
	h, _ := newTestHandlers(t, stubDialer{ready: true})
	r := gin.New()
	r.POST("/v1/calls", h.PlaceCall)

	w := doJSON(t, r, http.MethodPost, "/v1/calls", `{"to":"+15550001111","message":"Hi there"}`, nil)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), "CA999") {
		t.Fatalf("missing call id: %s", w.Body.String())
	}

	w = doJSON(t, r, http.MethodPost, "/v1/calls", `{"to":"123"}`, nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad number, got %d", w.Code)
	}
}

func TestPlaceCallDialerNotReady(t *testing.T) {
	h, _ := newTestHandlers(t, stubDialer{ready: false})
	r := gin.New()
	r.POST("/v1/calls", h.PlaceCall)

	w := doJSON(t, r, http.MethodPost, "/v1/calls", `{"to":"+15550001111"}`, nil)
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", w.Code)
	}
}

func TestGetCall(t *testing.T) {
	h, ctrl := newTestHandlers(t, stubDialer{ready: true, status: "completed"})
	r := gin.New()
	r.GET("/v1/calls/:call_sid", h.GetCall)

	ctrl.Connect(context.Background(), dialog.ConnectInput{CallID: "CA1"})

	w := doJSON(t, r, http.MethodGet, "/v1/calls/CA1", "", nil)
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"source":"session"`) {
		t.Fatalf("expected session snapshot, got %d: %s", w.Code, w.Body.String())
	}

	// Finished calls fall back to the gateway.
	w = doJSON(t, r, http.MethodGet, "/v1/calls/CA2", "", nil)
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"source":"gateway"`) {
		t.Fatalf("expected gateway fallback, got %d: %s", w.Code, w.Body.String())
	}
}

func TestGetCallNotFound(t *testing.T) {
	h, _ := newTestHandlers(t, stubDialer{ready: false})
	r := gin.New()
	r.GET("/v1/calls/:call_sid", h.GetCall)

	w := doJSON(t, r, http.MethodGet, "/v1/calls/ghost", "", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}

func TestListSessions(t *testing.T) {
	h, ctrl := newTestHandlers(t, stubDialer{ready: true})
	r := gin.New()
	r.GET("/v1/sessions", h.ListSessions)

	ctx := context.Background()
	ctrl.Connect(ctx, dialog.ConnectInput{CallID: "CA1"})
	ctrl.Connect(ctx, dialog.ConnectInput{CallID: "CA2"})

	w := doJSON(t, r, http.MethodGet, "/v1/sessions", "", nil)
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"count":2`) {
		t.Fatalf("expected 2 sessions, got %d: %s", w.Code, w.Body.String())
	}
}

func TestPromptEndpoints(t *testing.T) {
	h, ctrl := newTestHandlers(t, stubDialer{ready: true})
	r := gin.New()
	r.PUT("/v1/prompts/default", h.SetDefaultPrompt)
	r.PUT("/v1/sessions/:call_sid/prompt", h.OverrideSessionPrompt)

	w := doJSON(t, r, http.MethodPut, "/v1/prompts/default", `{"prompt":""}`, nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for empty prompt, got %d", w.Code)
	}

	w = doJSON(t, r, http.MethodPut, "/v1/prompts/default", `{"prompt":"collect feedback"}`, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if ctrl.CurrentDefaultPurpose() != "collect feedback" {
		t.Fatalf("default purpose not updated")
	}

	w = doJSON(t, r, http.MethodPut, "/v1/sessions/ghost/prompt", `{"prompt":"x"}`, nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for absent session, got %d", w.Code)
	}

	ctrl.Connect(context.Background(), dialog.ConnectInput{CallID: "CA1"})
	w = doJSON(t, r, http.MethodPut, "/v1/sessions/CA1/prompt", `{"prompt":"new purpose"}`, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if got := ctrl.Sessions().Get("CA1").Purpose; got != "new purpose" {
		t.Fatalf("session purpose not updated: %q", got)
	}
}

func TestDispositionReport(t *testing.T) {
	h, ctrl := newTestHandlers(t, stubDialer{ready: true})
	r := gin.New()
	r.GET("/v1/reports/dispositions", h.DispositionReport)

	ctx := context.Background()
	ctrl.Connect(ctx, dialog.ConnectInput{CallID: "CA1"})
	ctrl.Speech(ctx, dialog.SpeechInput{CallID: "CA1", Transcript: "tomorrow works"})

	w := doJSON(t, r, http.MethodGet, "/v1/reports/dispositions", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var got reporting.DispositionSummary
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("bad json: %v", err)
	}
	if got.TotalCalls != 1 || got.DateConfirmed != 1 {
		t.Fatalf("unexpected summary: %+v", got)
	}

	w = doJSON(t, r, http.MethodGet, "/v1/reports/dispositions?from=yesterday", "", nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad timestamp, got %d", w.Code)
	}
}

func TestProtectedRouteAuthFlow(t *testing.T) {
	h, _ := newTestHandlers(t, stubDialer{ready: true})
	r := gin.New()
	v1 := r.Group("/v1")
	v1.Use(auth.RequireAccessToken(h.Auth))
	v1.GET("/sessions", rbac.RequireAnyRole(rbac.RoleOperator), h.ListSessions)
	v1.PUT("/prompts/default", rbac.RequireAnyRole(rbac.RoleAdmin), h.SetDefaultPrompt)

	w := doJSON(t, r, http.MethodGet, "/v1/sessions", "", nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", w.Code)
	}

	pair, err := h.Auth.IssuePair(time.Now(), "op-1", rbac.RoleOperator)
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}
	bearer := map[string]string{"Authorization": "Bearer " + pair.AccessToken}

	w = doJSON(t, r, http.MethodGet, "/v1/sessions", "", bearer)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 with token, got %d: %s", w.Code, w.Body.String())
	}

	// Operators cannot reach admin-only routes.
	w = doJSON(t, r, http.MethodPut, "/v1/prompts/default", `{"prompt":"x"}`, bearer)
	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for operator on admin route, got %d", w.Code)
	}

	adminPair, err := h.Auth.IssuePair(time.Now(), "admin-1", rbac.RoleAdmin)
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}
	w = doJSON(t, r, http.MethodPut, "/v1/prompts/default", `{"prompt":"x"}`,
		map[string]string{"Authorization": "Bearer " + adminPair.AccessToken})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 for admin, got %d", w.Code)
	}
}
