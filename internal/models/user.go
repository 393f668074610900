package models

import (
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// Default companion preferences assigned at registration
const (
	DefaultAIName        = "AI Friend"
	DefaultWakeTime      = "08:00"
	DefaultWaterInterval = 120
	DefaultUseVoice      = false
)

// Water reminder interval bounds in minutes
const (
	MinWaterInterval = 30
	MaxWaterInterval = 240
)

// User represents a registered user and their companion preferences
type User struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	Username      string    `gorm:"uniqueIndex" json:"username"`
	Password      string    `json:"-"` // bcrypt hash, never serialized
	AIName        string    `gorm:"default:AI Friend" json:"aiName"`
	WakeTime      string    `gorm:"default:08:00" json:"wakeTime"`
	WaterInterval int       `gorm:"default:120" json:"waterInterval"`
	UseVoice      bool      `gorm:"default:false" json:"useVoice"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// ApplyCompanionDefaults fills unset companion preference fields
func (u *User) ApplyCompanionDefaults() {
	if u.AIName == "" {
		u.AIName = DefaultAIName
	}
	if u.WakeTime == "" {
		u.WakeTime = DefaultWakeTime
	}
	if u.WaterInterval == 0 {
		u.WaterInterval = DefaultWaterInterval
	}
}

// RegisterRequest is the request structure for user registration
type RegisterRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required,min=6"`
}

// LoginRequest is the request structure for user login
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// UserSettingsRequest is the partial settings payload for PATCH /api/settings.
// Pointer fields distinguish "absent" from zero values.
type UserSettingsRequest struct {
	AIName        *string `json:"aiName"`
	WakeTime      *string `json:"wakeTime"`
	WaterInterval *int    `json:"waterInterval"`
	UseVoice      *bool   `json:"useVoice"`
}

// Validate checks the supplied fields against the recognized settings shape
func (r *UserSettingsRequest) Validate() error {
	if r.AIName != nil && *r.AIName == "" {
		return fmt.Errorf("aiName must not be empty")
	}
	if r.WakeTime != nil {
		if _, err := time.Parse("15:04", *r.WakeTime); err != nil {
			return fmt.Errorf("wakeTime must be in HH:MM format")
		}
	}
	if r.WaterInterval != nil {
		if *r.WaterInterval < MinWaterInterval || *r.WaterInterval > MaxWaterInterval {
			return fmt.Errorf("waterInterval must be between %d and %d", MinWaterInterval, MaxWaterInterval)
		}
	}
	return nil
}

// HashPassword hashes a password for storage
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

// CheckPasswordHash compares a password with a hash
func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}
