package api

import (
	"errors"
	"net/http"

	"ai-companion-demo/backend/internal/ai"
	"ai-companion-demo/backend/internal/models"
	"ai-companion-demo/backend/internal/service"
	apperrors "ai-companion-demo/backend/pkg/errors"
	"ai-companion-demo/backend/pkg/logger"
	"ai-companion-demo/backend/pkg/metrics"
	"ai-companion-demo/backend/pkg/middleware"

	"github.com/gin-gonic/gin"
)

// MessageHandler exposes message history, submission and AI reply generation
type MessageHandler struct {
	messages *service.MessageService
	users    *service.UserService
	metrics  *metrics.Metrics
}

// NewMessageHandler creates a new message handler
func NewMessageHandler(messages *service.MessageService, users *service.UserService, m *metrics.Metrics) *MessageHandler {
	return &MessageHandler{messages: messages, users: users, metrics: m}
}

// List handles GET /api/messages
func (h *MessageHandler) List(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.Error(apperrors.NewUnauthorizedError("AUTH_REQUIRED", "Authentication required"))
		return
	}

	messages, err := h.messages.List(c.Request.Context(), userID)
	if err != nil {
		logger.FromContext(c).LogError(err, "failed to list messages")
		c.Error(apperrors.NewInternalServerError("SERVER_ERROR", "Failed to load messages"))
		return
	}

	c.JSON(http.StatusOK, messages)
}

// Send handles POST /api/messages
func (h *MessageHandler) Send(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.Error(apperrors.NewUnauthorizedError("AUTH_REQUIRED", "Authentication required"))
		return
	}

	var req models.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperrors.NewBadRequestError("INVALID_REQUEST", "Message content is required").WithDetails(err.Error()))
		return
	}

	message, err := h.messages.Send(c.Request.Context(), userID, req.Content)
	if err != nil {
		if errors.Is(err, service.ErrEmptyContent) {
			c.Error(apperrors.NewBadRequestError("EMPTY_CONTENT", "Message content must not be empty"))
			return
		}
		logger.FromContext(c).LogError(err, "failed to store message")
		c.Error(apperrors.NewInternalServerError("SERVER_ERROR", "Failed to store message"))
		return
	}

	c.JSON(http.StatusCreated, message)
}

// Generate handles POST /api/generate-message. Generation failures keep the
// flat {error, message} shape the chat frontend renders directly.
func (h *MessageHandler) Generate(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.Error(apperrors.NewUnauthorizedError("AUTH_REQUIRED", "Authentication required"))
		return
	}

	var req models.GenerateMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperrors.NewBadRequestError("INVALID_REQUEST", "Invalid request body").WithDetails(err.Error()))
		return
	}

	user, err := h.users.GetUserByID(c.Request.Context(), userID)
	if err != nil {
		logger.FromContext(c).LogError(err, "failed to load user for generation")
		c.Error(apperrors.NewInternalServerError("SERVER_ERROR", "Failed to load user"))
		return
	}

	message, err := h.messages.GenerateReply(c.Request.Context(), user)
	if err != nil {
		logger.FromContext(c).LogError(err, "AI reply generation failed")

		if errors.Is(err, ai.ErrQuotaExceeded) {
			h.metrics.ObserveGeneration("quota_exceeded")
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error":   "Rate Limit Exceeded",
				"message": "The AI is currently unavailable due to high usage. Please try again in a few moments.",
			})
			return
		}

		h.metrics.ObserveGeneration("failure")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to generate AI response",
			"message": "I'm having trouble responding right now. Please try again in a moment.",
		})
		return
	}

	h.metrics.ObserveGeneration("success")
	c.JSON(http.StatusCreated, message)
}
