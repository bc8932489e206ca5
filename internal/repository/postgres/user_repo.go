package postgres

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"github.com/yourusername/charter-api/internal/domain/entity"
	apperrors "github.com/yourusername/charter-api/internal/pkg/errors"
)

// UserRepo реализует repository.UserRepository с использованием PostgreSQL и GORM
type UserRepo struct {
	db *gorm.DB
}

// NewUserRepo создает новый репозиторий пользователей
func NewUserRepo(db *gorm.DB) *UserRepo {
	return &UserRepo{db: db}
}

// Create сохраняет нового пользователя
func (r *UserRepo) Create(user *entity.User) error {
	if err := r.db.Create(user).Error; err != nil {
		// 23505 — unique_violation: email уже занят
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("%w: email already registered", apperrors.ErrConflict)
		}
		return fmt.Errorf("ошибка создания пользователя: %w", err)
	}
	return nil
}

// GetByID находит пользователя по ID
func (r *UserRepo) GetByID(id uint) (*entity.User, error) {
	var user entity.User
	if err := r.db.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("ошибка получения пользователя по ID: %w", err)
	}
	return &user, nil
}

// GetByEmail находит пользователя по email
func (r *UserRepo) GetByEmail(email string) (*entity.User, error) {
	var user entity.User
	if err := r.db.Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("ошибка получения пользователя по email: %w", err)
	}
	return &user, nil
}

// Update сохраняет изменённого пользователя целиком
func (r *UserRepo) Update(user *entity.User) error {
	return r.db.Save(user).Error
}

// UpdateProfile обновляет отдельные поля профиля
func (r *UserRepo) UpdateProfile(userID uint, updates map[string]interface{}) error {
	result := r.db.Model(&entity.User{}).Where("id = ?", userID).Updates(updates)
	if result.Error != nil {
		return fmt.Errorf("ошибка обновления профиля: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// UpdatePassword обновляет пароль пользователя (хеширование выполняет hook BeforeSave)
func (r *UserRepo) UpdatePassword(userID uint, newPassword string) error {
	user, err := r.GetByID(userID)
	if err != nil {
		return err
	}
	user.Password = newPassword
	return r.db.Save(user).Error
}

// IncrementBookingCount атомарно увеличивает счётчик бронирований
func (r *UserRepo) IncrementBookingCount(userID uint) error {
	return r.db.Model(&entity.User{}).
		Where("id = ?", userID).
		Update("booking_count", gorm.Expr("booking_count + 1")).Error
}

// IncrementCancellationCount атомарно увеличивает счётчик отмен
func (r *UserRepo) IncrementCancellationCount(userID uint) error {
	return r.db.Model(&entity.User{}).
		Where("id = ?", userID).
		Update("cancellation_count", gorm.Expr("cancellation_count + 1")).Error
}

// List возвращает пользователей с пагинацией и общим количеством
func (r *UserRepo) List(limit, offset int) ([]entity.User, int64, error) {
	var users []entity.User
	var total int64

	if err := r.db.Model(&entity.User{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("ошибка подсчёта пользователей: %w", err)
	}

	err := r.db.Order("created_at DESC").Limit(limit).Offset(offset).Find(&users).Error
	if err != nil {
		return nil, 0, fmt.Errorf("ошибка получения списка пользователей: %w", err)
	}
	return users, total, nil
}

// ListByProfileStatus возвращает клиентов с заданным статусом профиля
func (r *UserRepo) ListByProfileStatus(status string, limit, offset int) ([]entity.User, int64, error) {
	var users []entity.User
	var total int64

	query := r.db.Model(&entity.User{}).
		Where("role = ? AND profile_status = ?", entity.RoleCustomer, status)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("ошибка подсчёта профилей: %w", err)
	}

	err := query.Order("created_at ASC").Limit(limit).Offset(offset).Find(&users).Error
	if err != nil {
		return nil, 0, fmt.Errorf("ошибка получения очереди профилей: %w", err)
	}
	return users, total, nil
}
