package store

import (
	"context"
	"sync"

	"ai-companion-demo/backend/internal/models"
)

// MemStore is the volatile in-memory Store implementation. It is the
// reference backend and the backend used by the test suite.
type MemStore struct {
	mu            sync.RWMutex
	users         map[uint]*models.User
	usersByName   map[string]uint
	messages      map[uint][]models.Message
	nextUserID    uint
	nextMessageID uint
}

// NewMemStore creates an empty in-memory store
func NewMemStore() *MemStore {
	return &MemStore{
		users:         make(map[uint]*models.User),
		usersByName:   make(map[string]uint),
		messages:      make(map[uint][]models.Message),
		nextUserID:    1,
		nextMessageID: 1,
	}
}

func (s *MemStore) GetUser(_ context.Context, id uint) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	copied := *user
	return &copied, nil
}

func (s *MemStore) GetUserByUsername(_ context.Context, username string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.usersByName[username]
	if !ok {
		return nil, ErrUserNotFound
	}
	copied := *s.users[id]
	return &copied, nil
}

func (s *MemStore) CreateUser(_ context.Context, username, passwordHash string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.usersByName[username]; exists {
		return nil, ErrDuplicateUsername
	}

	now := nowFunc()
	user := &models.User{
		ID:        s.nextUserID,
		Username:  username,
		Password:  passwordHash,
		CreatedAt: now,
		UpdatedAt: now,
	}
	user.ApplyCompanionDefaults()
	s.nextUserID++

	s.users[user.ID] = user
	s.usersByName[username] = user.ID
	s.messages[user.ID] = []models.Message{}

	copied := *user
	return &copied, nil
}

func (s *MemStore) UpdateUserSettings(_ context.Context, id uint, settings models.UserSettingsRequest) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}

	if settings.AIName != nil {
		user.AIName = *settings.AIName
	}
	if settings.WakeTime != nil {
		user.WakeTime = *settings.WakeTime
	}
	if settings.WaterInterval != nil {
		user.WaterInterval = *settings.WaterInterval
	}
	if settings.UseVoice != nil {
		user.UseVoice = *settings.UseVoice
	}
	user.UpdatedAt = nowFunc()

	copied := *user
	return &copied, nil
}

func (s *MemStore) GetMessages(_ context.Context, userID uint) ([]models.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	history := s.messages[userID]
	result := make([]models.Message, len(history))
	copy(result, history)
	return result, nil
}

func (s *MemStore) AddMessage(_ context.Context, userID uint, content string, isAI bool) (*models.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	message := models.Message{
		ID:        s.nextMessageID,
		UserID:    userID,
		Content:   content,
		IsAI:      isAI,
		Timestamp: nowFunc(),
	}
	s.nextMessageID++

	s.messages[userID] = append(s.messages[userID], message)

	return &message, nil
}
