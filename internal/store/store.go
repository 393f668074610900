package store

import (
	"context"
	"errors"
	"time"

	"ai-companion-demo/backend/internal/models"
)

var (
	ErrUserNotFound      = errors.New("user not found")
	ErrDuplicateUsername = errors.New("username already taken")
)

// nowFunc returns the current time; overridable in tests
var nowFunc = time.Now

// Store is the persistence contract for users and their message history.
// All mutations are immediately visible to subsequent reads on the same
// instance; message identifiers are assigned monotonically per instance.
type Store interface {
	// GetUser returns the user with the given id, or ErrUserNotFound.
	GetUser(ctx context.Context, id uint) (*models.User, error)

	// GetUserByUsername returns the user with the given username, or ErrUserNotFound.
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)

	// CreateUser assigns a fresh identifier, fills companion-preference
	// defaults and stores the user. Returns ErrDuplicateUsername if the
	// username already exists; the check is atomic with respect to
	// concurrent creation of the same username.
	CreateUser(ctx context.Context, username, passwordHash string) (*models.User, error)

	// UpdateUserSettings merges the supplied settings fields into the
	// user record, leaving absent fields untouched.
	UpdateUserSettings(ctx context.Context, id uint, settings models.UserSettingsRequest) (*models.User, error)

	// GetMessages returns the full ordered message history for a user,
	// most-recent-last. An unknown user yields an empty slice.
	GetMessages(ctx context.Context, userID uint) ([]models.Message, error)

	// AddMessage appends a message to the user's history with a fresh
	// identifier and the current timestamp.
	AddMessage(ctx context.Context, userID uint, content string, isAI bool) (*models.Message, error)
}
