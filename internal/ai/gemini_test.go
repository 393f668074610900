package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return NewClient(Config{
		APIKey:  "test-key",
		Model:   "gemini-pro",
		BaseURL: server.URL,
	})
}

func generateRequest() GenerateRequest {
	return GenerateRequest{
		Username: "alice",
		AIName:   "Buddy",
		RecentMessages: []ContextMessage{
			{Content: "hello", IsAI: false},
		},
		Preferences: Preferences{
			AIName:        "Buddy",
			WakeTime:      "08:00",
			WaterInterval: 120,
		},
	}
}

func TestGenerateReplySuccess(t *testing.T) {
	var captured generateContentRequest

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))

		json.NewEncoder(w).Encode(map[string]any{
			"candidates": []map[string]any{
				{"content": map[string]any{
					"role":  "model",
					"parts": []map[string]any{{"text": "hi there"}},
				}},
			},
		})
	})

	reply, err := client.GenerateReply(context.Background(), generateRequest())
	require.NoError(t, err)
	assert.Equal(t, "hi there", reply)

	// All context travels in a single turn with fixed sampling parameters
	require.Len(t, captured.Contents, 1)
	assert.Contains(t, captured.Contents[0].Parts[0].Text, "alice: hello")
	assert.Equal(t, 0.9, captured.GenerationConfig.Temperature)
	assert.Equal(t, 1, captured.GenerationConfig.TopK)
	assert.Equal(t, float64(1), captured.GenerationConfig.TopP)
	assert.Equal(t, 150, captured.GenerationConfig.MaxOutputTokens)
}

func TestGenerateReplyNotConfigured(t *testing.T) {
	client := NewClient(Config{APIKey: ""})

	_, err := client.GenerateReply(context.Background(), generateRequest())
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestGenerateReplyQuotaExceeded(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{
				"code":    429,
				"message": "Resource has been exhausted: quota exceeded",
				"status":  "RESOURCE_EXHAUSTED",
			},
		})
	})

	_, err := client.GenerateReply(context.Background(), generateRequest())
	assert.ErrorIs(t, err, ErrQuotaExceeded)
}

func TestGenerateReplyInvalidCredential(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{
				"code":    400,
				"message": "API key not valid. Please pass a valid API key.",
				"status":  "INVALID_ARGUMENT",
			},
		})
	})

	_, err := client.GenerateReply(context.Background(), generateRequest())
	assert.ErrorIs(t, err, ErrInvalidCredential)
}

func TestGenerateReplyGenericFailure(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{
				"code":    500,
				"message": "Internal error encountered.",
				"status":  "INTERNAL",
			},
		})
	})

	_, err := client.GenerateReply(context.Background(), generateRequest())
	assert.ErrorIs(t, err, ErrGenerationFailed)
	assert.NotErrorIs(t, err, ErrQuotaExceeded)
	assert.NotErrorIs(t, err, ErrInvalidCredential)
}

func TestGenerateReplyEmptyGeneration(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"candidates": []any{}})
	})

	_, err := client.GenerateReply(context.Background(), generateRequest())
	assert.ErrorIs(t, err, ErrEmptyGeneration)
}
