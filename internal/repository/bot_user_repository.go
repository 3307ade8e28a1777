package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/yukikurage/goal-boards-api/internal/models"
)

// GormBotUserRepository is a GORM implementation of BotUserRepository
type GormBotUserRepository struct {
	db *gorm.DB
}

// NewBotUserRepository creates a new BotUserRepository
func NewBotUserRepository(db *gorm.DB) BotUserRepository {
	return &GormBotUserRepository{db: db}
}

func (r *GormBotUserRepository) FindByChatID(ctx context.Context, chatID int64) (*models.BotUser, error) {
	var botUser models.BotUser
	if err := r.db.WithContext(ctx).Where("chat_id = ?", chatID).First(&botUser).Error; err != nil {
		return nil, err
	}
	return &botUser, nil
}

func (r *GormBotUserRepository) FindByVerificationCode(ctx context.Context, code string) (*models.BotUser, error) {
	var botUser models.BotUser
	if err := r.db.WithContext(ctx).Where("verification_code = ?", code).First(&botUser).Error; err != nil {
		return nil, err
	}
	return &botUser, nil
}

// SaveCode stores a new verification code, creating the chat row on first contact
func (r *GormBotUserRepository) SaveCode(ctx context.Context, chatID int64, code string) (*models.BotUser, error) {
	var botUser models.BotUser
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("chat_id = ?", chatID).First(&botUser).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			botUser = models.BotUser{ChatID: chatID, VerificationCode: &code}
			return tx.Omit("User").Create(&botUser).Error
		case err != nil:
			return err
		}
		botUser.VerificationCode = &code
		return tx.Model(&botUser).Update("verification_code", code).Error
	})
	if err != nil {
		return nil, err
	}
	return &botUser, nil
}

func (r *GormBotUserRepository) Link(ctx context.Context, id, userID uint64) error {
	return r.db.WithContext(ctx).
		Model(&models.BotUser{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"user_id":           userID,
			"verification_code": nil,
		}).Error
}
