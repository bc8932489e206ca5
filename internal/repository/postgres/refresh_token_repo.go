package postgres

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/yourusername/charter-api/internal/domain/entity"
	apperrors "github.com/yourusername/charter-api/internal/pkg/errors"
)

// RefreshTokenRepo реализует repository.RefreshTokenRepository
type RefreshTokenRepo struct {
	db *gorm.DB
}

// NewRefreshTokenRepo создает новый репозиторий refresh-токенов
func NewRefreshTokenRepo(db *gorm.DB) (*RefreshTokenRepo, error) {
	if db == nil {
		return nil, fmt.Errorf("GORM DB instance is required for RefreshTokenRepo")
	}
	return &RefreshTokenRepo{db: db}, nil
}

// Create сохраняет новый refresh-токен
func (r *RefreshTokenRepo) Create(token *entity.RefreshToken) error {
	if err := r.db.Create(token).Error; err != nil {
		return fmt.Errorf("ошибка создания refresh токена: %w", err)
	}
	return nil
}

// GetByToken находит refresh-токен по значению
func (r *RefreshTokenRepo) GetByToken(tokenValue string) (*entity.RefreshToken, error) {
	var token entity.RefreshToken
	err := r.db.Where("token = ?", tokenValue).First(&token).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("ошибка получения refresh токена: %w", err)
	}

	if !token.IsValid(time.Now()) {
		return nil, apperrors.ErrExpiredToken
	}
	return &token, nil
}

// Delete физически удаляет токен по значению
func (r *RefreshTokenRepo) Delete(tokenValue string) error {
	return r.db.Where("token = ?", tokenValue).Delete(&entity.RefreshToken{}).Error
}

// DeleteAllForUser удаляет все токены пользователя (выход со всех устройств)
func (r *RefreshTokenRepo) DeleteAllForUser(userID uint) error {
	return r.db.Where("user_id = ?", userID).Delete(&entity.RefreshToken{}).Error
}

// CleanupExpired удаляет просроченные токены и возвращает их количество
func (r *RefreshTokenRepo) CleanupExpired() (int64, error) {
	result := r.db.Where("expires_at <= ?", time.Now()).Delete(&entity.RefreshToken{})
	if result.Error != nil {
		return 0, fmt.Errorf("ошибка очистки просроченных токенов: %w", result.Error)
	}
	return result.RowsAffected, nil
}
