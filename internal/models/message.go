package models

import (
	"time"
)

// Message represents one line of a user's conversation with their companion.
// Messages are append-only and ordered by insertion.
type Message struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"index" json:"userId"`
	Content   string    `json:"content"`
	IsAI      bool      `json:"isAi"`
	Timestamp time.Time `json:"timestamp"`
}

// SendMessageRequest is the request structure for submitting a message
type SendMessageRequest struct {
	Content string `json:"content" binding:"required"`
}

// GenerateMessageRequest is the request structure for requesting an AI reply
type GenerateMessageRequest struct {
	Type string `json:"type"`
}
