package repository

import (
	"github.com/yourusername/charter-api/internal/domain/entity"
)

// RefreshTokenRepository интерфейс для работы с refresh-токенами
type RefreshTokenRepository interface {
	Create(token *entity.RefreshToken) error
	GetByToken(token string) (*entity.RefreshToken, error)
	Delete(token string) error
	DeleteAllForUser(userID uint) error
	// CleanupExpired удаляет просроченные токены и возвращает их количество
	CleanupExpired() (int64, error)
}
