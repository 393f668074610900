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

// AuthHandler exposes registration, login and current-user endpoints
type AuthHandler struct {
	users *service.UserService
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(users *service.UserService) *AuthHandler {
	return &AuthHandler{users: users}
}

// Register handles POST /api/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperrors.NewBadRequestError("INVALID_REQUEST", "Username and password are required").WithDetails(err.Error()))
		return
	}

	user, token, err := h.users.Register(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, service.ErrUserAlreadyExists) {
			c.Error(apperrors.NewConflictError("USERNAME_TAKEN", "Username is already taken"))
			return
		}
		logger.FromContext(c).LogError(err, "failed to register user")
		c.Error(apperrors.NewInternalServerError("REGISTRATION_FAILED", "Failed to register user"))
		return
	}

	c.JSON(http.StatusCreated, gin.H{"user": user, "token": token})
}

// Login handles POST /api/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperrors.NewBadRequestError("INVALID_REQUEST", "Username and password are required").WithDetails(err.Error()))
		return
	}

	user, token, err := h.users.Login(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			c.Error(apperrors.NewUnauthorizedError("INVALID_CREDENTIALS", "Invalid username or password"))
			return
		}
		logger.FromContext(c).LogError(err, "failed to log in user")
		c.Error(apperrors.NewInternalServerError("LOGIN_FAILED", "Failed to log in"))
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": user, "token": token})
}

// Me handles GET /api/auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.Error(apperrors.NewUnauthorizedError("AUTH_REQUIRED", "Authentication required"))
		return
	}

	user, err := h.users.GetUserByID(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			c.Error(apperrors.NewNotFoundError("USER_NOT_FOUND", "User not found"))
			return
		}
		logger.FromContext(c).LogError(err, "failed to load current user")
		c.Error(apperrors.NewInternalServerError("SERVER_ERROR", "Failed to load user"))
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": user})
}
