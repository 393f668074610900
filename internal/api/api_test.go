package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"ai-companion-demo/backend/internal/ai"
	"ai-companion-demo/backend/internal/models"
	"ai-companion-demo/backend/internal/service"
	"ai-companion-demo/backend/internal/store"
	"ai-companion-demo/backend/pkg/config"
	"ai-companion-demo/backend/pkg/jwt"
	"ai-companion-demo/backend/pkg/logger"
	"ai-companion-demo/backend/pkg/metrics"
	"ai-companion-demo/backend/pkg/router"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type generatorFunc func(ctx context.Context, req ai.GenerateRequest) (string, error)

func (f generatorFunc) GenerateReply(ctx context.Context, req ai.GenerateRequest) (string, error) {
	return f(ctx, req)
}

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Server.Env = "test"
	cfg.JWT.Secret = "test-secret"
	cfg.JWT.Expiry = time.Hour
	// Keep the limiter out of the way for test traffic
	cfg.Security.RateLimit = 1000
	cfg.Security.RateLimitBurst = 1000
	return cfg
}

func newTestRouter(t *testing.T, generator service.ReplyGenerator) *router.Router {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := testConfig()
	log := logger.New(logger.Config{Level: "error", JSON: true, Output: io.Discard})
	jwtService := jwt.NewService(cfg.JWT.Secret, cfg.JWT.Expiry)
	memStore := store.NewMemStore()

	r := router.New(router.Deps{
		Config:     cfg,
		Logger:     log,
		JWTService: jwtService,
		Users:      service.NewUserService(memStore, jwtService),
		Messages:   service.NewMessageService(memStore, generator),
		Metrics:    metrics.New(),
	})
	r.SetupRoutes()
	return r
}

func doJSON(t *testing.T, r *router.Router, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequest(method, path, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	r.Engine.ServeHTTP(w, req)
	return w
}

func registerUser(t *testing.T, r *router.Router, username string) string {
	t.Helper()

	w := doJSON(t, r, http.MethodPost, "/api/auth/register", "", gin.H{
		"username": username,
		"password": "secret123",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var resp struct {
		Token string      `json:"token"`
		User  models.User `json:"user"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

func staticGenerator(reply string) generatorFunc {
	return func(ctx context.Context, req ai.GenerateRequest) (string, error) {
		return reply, nil
	}
}

func TestRegister(t *testing.T) {
	r := newTestRouter(t, nil)

	w := doJSON(t, r, http.MethodPost, "/api/auth/register", "", gin.H{
		"username": "alice",
		"password": "secret123",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var resp struct {
		Token string      `json:"token"`
		User  models.User `json:"user"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, "alice", resp.User.Username)
	assert.Equal(t, models.DefaultAIName, resp.User.AIName)
	assert.Equal(t, models.DefaultWakeTime, resp.User.WakeTime)
	assert.Equal(t, models.DefaultWaterInterval, resp.User.WaterInterval)

	// The password hash never leaves the server
	assert.NotContains(t, w.Body.String(), "password")
}

func TestRegisterDuplicate(t *testing.T) {
	r := newTestRouter(t, nil)

	registerUser(t, r, "alice")
	w := doJSON(t, r, http.MethodPost, "/api/auth/register", "", gin.H{
		"username": "alice",
		"password": "other456",
	})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestLogin(t *testing.T) {
	r := newTestRouter(t, nil)
	registerUser(t, r, "alice")

	w := doJSON(t, r, http.MethodPost, "/api/auth/login", "", gin.H{
		"username": "alice",
		"password": "secret123",
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "token")

	w = doJSON(t, r, http.MethodPost, "/api/auth/login", "", gin.H{
		"username": "alice",
		"password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestMe(t *testing.T) {
	r := newTestRouter(t, nil)
	token := registerUser(t, r, "alice")

	w := doJSON(t, r, http.MethodGet, "/api/auth/me", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"alice"`)
}

func TestProtectedRoutesRequireAuth(t *testing.T) {
	r := newTestRouter(t, nil)

	tests := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/messages"},
		{http.MethodPost, "/api/messages"},
		{http.MethodPost, "/api/generate-message"},
		{http.MethodPatch, "/api/settings"},
		{http.MethodGet, "/api/auth/me"},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			w := doJSON(t, r, tt.method, tt.path, "", nil)
			assert.Equal(t, http.StatusUnauthorized, w.Code)

			w = doJSON(t, r, tt.method, tt.path, "not-a-real-token", nil)
			assert.Equal(t, http.StatusUnauthorized, w.Code)
		})
	}
}

func TestSendAndListMessages(t *testing.T) {
	r := newTestRouter(t, nil)
	token := registerUser(t, r, "alice")

	for i := 0; i < 3; i++ {
		w := doJSON(t, r, http.MethodPost, "/api/messages", token, gin.H{
			"content": fmt.Sprintf("message %d", i),
		})
		require.Equal(t, http.StatusCreated, w.Code)
	}

	w := doJSON(t, r, http.MethodGet, "/api/messages", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var messages []models.Message
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &messages))
	require.Len(t, messages, 3)
	for i, m := range messages {
		assert.Equal(t, fmt.Sprintf("message %d", i), m.Content)
		assert.False(t, m.IsAI)
	}
}

func TestSendEmptyMessage(t *testing.T) {
	r := newTestRouter(t, nil)
	token := registerUser(t, r, "alice")

	w := doJSON(t, r, http.MethodPost, "/api/messages", token, gin.H{"content": "   "})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, r, http.MethodPost, "/api/messages", token, gin.H{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestMessageIsolationBetweenUsers(t *testing.T) {
	r := newTestRouter(t, nil)
	aliceToken := registerUser(t, r, "alice")
	bobToken := registerUser(t, r, "bob")

	w := doJSON(t, r, http.MethodPost, "/api/messages", aliceToken, gin.H{"content": "alice only"})
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, r, http.MethodGet, "/api/messages", bobToken, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var messages []models.Message
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &messages))
	assert.Empty(t, messages)
}

func TestGenerateMessage(t *testing.T) {
	r := newTestRouter(t, staticGenerator("hi there"))
	token := registerUser(t, r, "alice")

	w := doJSON(t, r, http.MethodPost, "/api/messages", token, gin.H{"content": "hello"})
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, r, http.MethodPost, "/api/generate-message", token, gin.H{"type": "conversation"})
	require.Equal(t, http.StatusCreated, w.Code)

	var reply models.Message
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &reply))
	assert.Equal(t, "hi there", reply.Content)
	assert.True(t, reply.IsAI)

	w = doJSON(t, r, http.MethodGet, "/api/messages", token, nil)
	var messages []models.Message
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &messages))
	require.Len(t, messages, 2)
	assert.False(t, messages[0].IsAI)
	assert.True(t, messages[1].IsAI)
}

func TestGenerateMessageQuotaExceeded(t *testing.T) {
	r := newTestRouter(t, generatorFunc(func(ctx context.Context, req ai.GenerateRequest) (string, error) {
		return "", fmt.Errorf("%w: upstream said no", ai.ErrQuotaExceeded)
	}))
	token := registerUser(t, r, "alice")

	w := doJSON(t, r, http.MethodPost, "/api/messages", token, gin.H{"content": "hello"})
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, r, http.MethodPost, "/api/generate-message", token, gin.H{"type": "conversation"})
	require.Equal(t, http.StatusTooManyRequests, w.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Rate Limit Exceeded", resp["error"])
	assert.Equal(t, "The AI is currently unavailable due to high usage. Please try again in a few moments.", resp["message"])

	// No AI message was stored
	w = doJSON(t, r, http.MethodGet, "/api/messages", token, nil)
	var messages []models.Message
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &messages))
	assert.Len(t, messages, 1)
}

func TestGenerateMessageFailure(t *testing.T) {
	r := newTestRouter(t, generatorFunc(func(ctx context.Context, req ai.GenerateRequest) (string, error) {
		return "", fmt.Errorf("%w: boom", ai.ErrGenerationFailed)
	}))
	token := registerUser(t, r, "alice")

	w := doJSON(t, r, http.MethodPost, "/api/generate-message", token, gin.H{"type": "conversation"})
	require.Equal(t, http.StatusInternalServerError, w.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Failed to generate AI response", resp["error"])
	assert.Equal(t, "I'm having trouble responding right now. Please try again in a moment.", resp["message"])
}

func TestUpdateSettings(t *testing.T) {
	r := newTestRouter(t, nil)
	token := registerUser(t, r, "alice")

	w := doJSON(t, r, http.MethodPatch, "/api/settings", token, gin.H{
		"aiName":   "Buddy",
		"useVoice": true,
	})
	require.Equal(t, http.StatusOK, w.Code)

	var user models.User
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &user))
	assert.Equal(t, "Buddy", user.AIName)
	assert.True(t, user.UseVoice)
	// Unset fields keep their previous values
	assert.Equal(t, models.DefaultWakeTime, user.WakeTime)
	assert.Equal(t, models.DefaultWaterInterval, user.WaterInterval)
}

func TestUpdateSettingsInvalid(t *testing.T) {
	r := newTestRouter(t, nil)
	token := registerUser(t, r, "alice")

	tests := []struct {
		name string
		body gin.H
	}{
		{"interval below minimum", gin.H{"waterInterval": 29}},
		{"interval above maximum", gin.H{"waterInterval": 241}},
		{"empty companion name", gin.H{"aiName": ""}},
		{"malformed wake time", gin.H{"wakeTime": "25:99"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doJSON(t, r, http.MethodPatch, "/api/settings", token, tt.body)
			require.Equal(t, http.StatusBadRequest, w.Code)

			var resp map[string]any
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, "Invalid settings", resp["error"])
		})
	}
}

func TestGenerateUsesUpdatedSettings(t *testing.T) {
	var captured ai.GenerateRequest
	r := newTestRouter(t, generatorFunc(func(ctx context.Context, req ai.GenerateRequest) (string, error) {
		captured = req
		return "ok", nil
	}))
	token := registerUser(t, r, "alice")

	w := doJSON(t, r, http.MethodPatch, "/api/settings", token, gin.H{"aiName": "Buddy"})
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, r, http.MethodPost, "/api/generate-message", token, gin.H{"type": "conversation"})
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "Buddy", captured.AIName)
}

func TestHealthEndpoint(t *testing.T) {
	r := newTestRouter(t, nil)

	for _, path := range []string{"/health", "/api/health"} {
		w := doJSON(t, r, http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"status":"ok"`)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	r := newTestRouter(t, nil)
	registerUser(t, r, "alice")

	w := doJSON(t, r, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "http_requests_total")
}
