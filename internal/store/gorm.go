package store

import (
	"context"
	"errors"
	"fmt"

	"ai-companion-demo/backend/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// GormStore is the durable Store implementation backed by Postgres
type GormStore struct {
	db *gorm.DB
}

// NewGormStore opens a Postgres connection and runs migrations
func NewGormStore(host, port, user, password, dbname, sslmode string) (*GormStore, error) {
	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		host, port, user, password, dbname, sslmode)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.AutoMigrate(&models.User{}, &models.Message{}); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &GormStore{db: db}, nil
}

// NewGormStoreWithDB wraps an existing gorm connection (used in tests)
func NewGormStoreWithDB(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// Ping checks database connectivity for health reporting
func (s *GormStore) Ping() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}

func (s *GormStore) GetUser(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	result := s.db.WithContext(ctx).First(&user, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, result.Error
	}
	return &user, nil
}

func (s *GormStore) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	result := s.db.WithContext(ctx).Where("username = ?", username).First(&user)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, result.Error
	}
	return &user, nil
}

func (s *GormStore) CreateUser(ctx context.Context, username, passwordHash string) (*models.User, error) {
	user := models.User{
		Username: username,
		Password: passwordHash,
	}
	user.ApplyCompanionDefaults()

	// The unique index on username makes the duplicate check atomic
	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrDuplicateUsername
		}
		return nil, err
	}

	return &user, nil
}

func (s *GormStore) UpdateUserSettings(ctx context.Context, id uint, settings models.UserSettingsRequest) (*models.User, error) {
	var user models.User

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&user, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrUserNotFound
			}
			return err
		}

		updates := map[string]interface{}{}
		if settings.AIName != nil {
			updates["ai_name"] = *settings.AIName
		}
		if settings.WakeTime != nil {
			updates["wake_time"] = *settings.WakeTime
		}
		if settings.WaterInterval != nil {
			updates["water_interval"] = *settings.WaterInterval
		}
		if settings.UseVoice != nil {
			updates["use_voice"] = *settings.UseVoice
		}

		if len(updates) == 0 {
			return nil
		}

		if err := tx.Model(&user).Updates(updates).Error; err != nil {
			return err
		}
		return tx.First(&user, id).Error
	})
	if err != nil {
		return nil, err
	}

	return &user, nil
}

func (s *GormStore) GetMessages(ctx context.Context, userID uint) ([]models.Message, error) {
	messages := []models.Message{}
	result := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("id asc").
		Find(&messages)
	if result.Error != nil {
		return nil, result.Error
	}
	return messages, nil
}

func (s *GormStore) AddMessage(ctx context.Context, userID uint, content string, isAI bool) (*models.Message, error) {
	message := models.Message{
		UserID:  userID,
		Content: content,
		IsAI:    isAI,
	}

	// Assign the timestamp inside the insert transaction so ordering
	// follows identifier assignment
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		message.Timestamp = nowFunc()
		return tx.Create(&message).Error
	})
	if err != nil {
		return nil, err
	}

	return &message, nil
}
