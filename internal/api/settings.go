package api

import (
	"errors"
	"net/http"

	"ai-companion-demo/backend/internal/models"
	"ai-companion-demo/backend/internal/service"
	apperrors "ai-companion-demo/backend/pkg/errors"
	"ai-companion-demo/backend/pkg/logger"
	"ai-companion-demo/backend/pkg/middleware"

	"github.com/gin-gonic/gin"
)

// SettingsHandler exposes companion settings updates
type SettingsHandler struct {
	users *service.UserService
}

// NewSettingsHandler creates a new settings handler
func NewSettingsHandler(users *service.UserService) *SettingsHandler {
	return &SettingsHandler{users: users}
}

// Update handles PATCH /api/settings
func (h *SettingsHandler) Update(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.Error(apperrors.NewUnauthorizedError("AUTH_REQUIRED", "Authentication required"))
		return
	}

	var req models.UserSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid settings"})
		return
	}

	user, err := h.users.UpdateSettings(c.Request.Context(), userID, req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidSettings):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid settings"})
		case errors.Is(err, service.ErrUserNotFound):
			c.Error(apperrors.NewNotFoundError("USER_NOT_FOUND", "User not found"))
		default:
			logger.FromContext(c).LogError(err, "failed to update settings")
			c.Error(apperrors.NewInternalServerError("SERVER_ERROR", "Failed to update settings"))
		}
		return
	}

	c.JSON(http.StatusOK, user)
}
