package repository

import (
	"github.com/yourusername/charter-api/internal/domain/entity"
)

// UserRepository определяет методы для работы с пользователями
type UserRepository interface {
	Create(user *entity.User) error
	GetByID(id uint) (*entity.User, error)
	GetByEmail(email string) (*entity.User, error)
	Update(user *entity.User) error
	UpdateProfile(userID uint, updates map[string]interface{}) error
	UpdatePassword(userID uint, newPassword string) error
	// IncrementBookingCount атомарно увеличивает счётчик бронирований
	IncrementBookingCount(userID uint) error
	// IncrementCancellationCount атомарно увеличивает счётчик отмен
	IncrementCancellationCount(userID uint) error
	List(limit, offset int) ([]entity.User, int64, error)
	// ListByProfileStatus возвращает клиентов с заданным статусом профиля (для очереди модерации)
	ListByProfileStatus(status string, limit, offset int) ([]entity.User, int64, error)
}
