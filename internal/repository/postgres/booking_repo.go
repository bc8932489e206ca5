package postgres

import (
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/yourusername/charter-api/internal/domain/entity"
	apperrors "github.com/yourusername/charter-api/internal/pkg/errors"
)

// BookingRepo реализует repository.BookingRepository
type BookingRepo struct {
	db *gorm.DB
}

// NewBookingRepo создает новый репозиторий бронирований
func NewBookingRepo(db *gorm.DB) *BookingRepo {
	return &BookingRepo{db: db}
}

// Create сохраняет новое бронирование
func (r *BookingRepo) Create(booking *entity.Booking) error {
	if err := r.db.Create(booking).Error; err != nil {
		// unique_violation по reference практически невозможен (uuid), но
		// прячем его за ErrConflict, а не отдаём наружу сырой текст драйвера
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return fmt.Errorf("%w: duplicate booking reference", apperrors.ErrConflict)
		}
		return fmt.Errorf("ошибка создания бронирования: %w", err)
	}
	return nil
}

// GetByID находит бронирование по ID вместе с рейсом
func (r *BookingRepo) GetByID(id uint) (*entity.Booking, error) {
	var booking entity.Booking
	err := r.db.Preload("Flight").Preload("User").First(&booking, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("ошибка получения бронирования по ID: %w", err)
	}
	return &booking, nil
}

// GetByReference находит бронирование по внешнему идентификатору
func (r *BookingRepo) GetByReference(reference string) (*entity.Booking, error) {
	var booking entity.Booking
	err := r.db.Preload("Flight").Preload("User").
		Where("reference = ?", reference).First(&booking).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("ошибка получения бронирования по reference: %w", err)
	}
	return &booking, nil
}

// Update сохраняет изменённое бронирование
func (r *BookingRepo) Update(booking *entity.Booking) error {
	return r.db.Save(booking).Error
}

// UpdateStatus переводит бронирование в новый статус с отметкой времени
func (r *BookingRepo) UpdateStatus(id uint, status string, at time.Time) error {
	updates := map[string]interface{}{"status": status}
	switch status {
	case entity.BookingStatusConfirmed:
		updates["confirmed_at"] = at
	case entity.BookingStatusCancelled:
		updates["cancelled_at"] = at
	}

	result := r.db.Model(&entity.Booking{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return fmt.Errorf("ошибка обновления статуса бронирования: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// ListByUser возвращает бронирования пользователя с пагинацией
func (r *BookingRepo) ListByUser(userID uint, limit, offset int) ([]entity.Booking, int64, error) {
	return r.list(r.db.Where("user_id = ?", userID), limit, offset)
}

// ListByFlight возвращает бронирования рейса с пагинацией
func (r *BookingRepo) ListByFlight(flightID uint, limit, offset int) ([]entity.Booking, int64, error) {
	return r.list(r.db.Where("flight_id = ?", flightID), limit, offset)
}

func (r *BookingRepo) list(query *gorm.DB, limit, offset int) ([]entity.Booking, int64, error) {
	var bookings []entity.Booking
	var total int64

	if err := query.Model(&entity.Booking{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("ошибка подсчёта бронирований: %w", err)
	}

	err := query.Preload("Flight").
		Order("created_at DESC").Limit(limit).Offset(offset).
		Find(&bookings).Error
	if err != nil {
		return nil, 0, fmt.Errorf("ошибка получения списка бронирований: %w", err)
	}
	return bookings, total, nil
}

// ListForPeriod возвращает бронирования, созданные в интервале [from, to)
func (r *BookingRepo) ListForPeriod(from, to time.Time) ([]entity.Booking, error) {
	var bookings []entity.Booking
	err := r.db.Preload("Flight").Preload("User").
		Where("created_at >= ? AND created_at < ?", from, to).
		Order("created_at ASC").
		Find(&bookings).Error
	if err != nil {
		return nil, fmt.Errorf("ошибка получения бронирований за период: %w", err)
	}
	return bookings, nil
}
