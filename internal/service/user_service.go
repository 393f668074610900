package service

import (
	"context"
	"errors"

	"ai-companion-demo/backend/internal/models"
	"ai-companion-demo/backend/internal/store"
	"ai-companion-demo/backend/pkg/jwt"
)

var (
	ErrUserAlreadyExists  = errors.New("user with this username already exists")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidSettings    = errors.New("invalid settings")
)

// UserService handles registration, login and settings updates
type UserService struct {
	store      store.Store
	jwtService *jwt.Service
}

// NewUserService creates a new user service
func NewUserService(store store.Store, jwtService *jwt.Service) *UserService {
	return &UserService{store: store, jwtService: jwtService}
}

// Register creates a new user with hashed credentials and returns a session token
func (s *UserService) Register(ctx context.Context, req *models.RegisterRequest) (*models.User, string, error) {
	hash, err := models.HashPassword(req.Password)
	if err != nil {
		return nil, "", err
	}

	user, err := s.store.CreateUser(ctx, req.Username, hash)
	if err != nil {
		if errors.Is(err, store.ErrDuplicateUsername) {
			return nil, "", ErrUserAlreadyExists
		}
		return nil, "", err
	}

	token, err := s.jwtService.GenerateToken(user.ID, user.Username)
	if err != nil {
		return nil, "", err
	}

	return user, token, nil
}

// Login authenticates a user and returns a session token
func (s *UserService) Login(ctx context.Context, req *models.LoginRequest) (*models.User, string, error) {
	user, err := s.store.GetUserByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", err
	}

	if !models.CheckPasswordHash(req.Password, user.Password) {
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.jwtService.GenerateToken(user.ID, user.Username)
	if err != nil {
		return nil, "", err
	}

	return user, token, nil
}

// GetUserByID retrieves a user by ID
func (s *UserService) GetUserByID(ctx context.Context, id uint) (*models.User, error) {
	user, err := s.store.GetUser(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

// UpdateSettings validates the partial settings payload and merges it into
// the user record; fields not supplied are preserved.
func (s *UserService) UpdateSettings(ctx context.Context, id uint, req models.UserSettingsRequest) (*models.User, error) {
	if err := req.Validate(); err != nil {
		return nil, ErrInvalidSettings
	}

	user, err := s.store.UpdateUserSettings(ctx, id, req)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}
