package service

import (
	"context"
	"errors"
	"strings"

	"ai-companion-demo/backend/internal/ai"
	"ai-companion-demo/backend/internal/models"
	"ai-companion-demo/backend/internal/store"
)

// MaxContextMessages bounds the recent-message slice fed to the reply generator
const MaxContextMessages = 5

var ErrEmptyContent = errors.New("message content must not be empty")

// ReplyGenerator produces companion replies; satisfied by ai.Client and by
// mocks in tests
type ReplyGenerator interface {
	GenerateReply(ctx context.Context, req ai.GenerateRequest) (string, error)
}

// MessageService handles message history and AI reply orchestration
type MessageService struct {
	store     store.Store
	generator ReplyGenerator
}

// NewMessageService creates a new message service
func NewMessageService(store store.Store, generator ReplyGenerator) *MessageService {
	return &MessageService{store: store, generator: generator}
}

// List returns the caller's full ordered message history
func (s *MessageService) List(ctx context.Context, userID uint) ([]models.Message, error) {
	return s.store.GetMessages(ctx, userID)
}

// Send stores a human-authored message
func (s *MessageService) Send(ctx context.Context, userID uint, content string) (*models.Message, error) {
	if strings.TrimSpace(content) == "" {
		return nil, ErrEmptyContent
	}
	return s.store.AddMessage(ctx, userID, content, false)
}

// GenerateReply loads the caller's recent history, requests a companion
// reply and stores it. On generator failure nothing is stored; the typed
// ai errors propagate for the handler to translate.
func (s *MessageService) GenerateReply(ctx context.Context, user *models.User) (*models.Message, error) {
	history, err := s.store.GetMessages(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	recent := history
	if len(recent) > MaxContextMessages {
		recent = recent[len(recent)-MaxContextMessages:]
	}

	contextMessages := make([]ai.ContextMessage, len(recent))
	for i, m := range recent {
		contextMessages[i] = ai.ContextMessage{Content: m.Content, IsAI: m.IsAI}
	}

	reply, err := s.generator.GenerateReply(ctx, ai.GenerateRequest{
		Username:       user.Username,
		AIName:         user.AIName,
		RecentMessages: contextMessages,
		Preferences: ai.Preferences{
			AIName:        user.AIName,
			WakeTime:      user.WakeTime,
			WaterInterval: user.WaterInterval,
			UseVoice:      user.UseVoice,
		},
	})
	if err != nil {
		return nil, err
	}

	return s.store.AddMessage(ctx, user.ID, reply, true)
}
