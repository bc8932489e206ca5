package postgres

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/yourusername/charter-api/internal/domain/entity"
	"github.com/yourusername/charter-api/internal/domain/repository"
	apperrors "github.com/yourusername/charter-api/internal/pkg/errors"
)

// FlightRepo реализует repository.FlightRepository
type FlightRepo struct {
	db *gorm.DB
}

// NewFlightRepo создает новый репозиторий рейсов
func NewFlightRepo(db *gorm.DB) *FlightRepo {
	return &FlightRepo{db: db}
}

// Create сохраняет новый рейс
func (r *FlightRepo) Create(flight *entity.CharterFlight) error {
	if err := r.db.Create(flight).Error; err != nil {
		return fmt.Errorf("ошибка создания рейса: %w", err)
	}
	return nil
}

// GetByID находит рейс по ID
func (r *FlightRepo) GetByID(id uint) (*entity.CharterFlight, error) {
	var flight entity.CharterFlight
	if err := r.db.First(&flight, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("ошибка получения рейса по ID: %w", err)
	}
	return &flight, nil
}

// Update сохраняет изменённый рейс
func (r *FlightRepo) Update(flight *entity.CharterFlight) error {
	return r.db.Save(flight).Error
}

// UpdateStatus переводит рейс в новый статус
func (r *FlightRepo) UpdateStatus(id uint, status string) error {
	result := r.db.Model(&entity.CharterFlight{}).Where("id = ?", id).Update("status", status)
	if result.Error != nil {
		return fmt.Errorf("ошибка обновления статуса рейса: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// Search возвращает рейсы по фильтру с пагинацией
func (r *FlightRepo) Search(filter repository.FlightSearchFilter, limit, offset int) ([]entity.CharterFlight, int64, error) {
	query := r.db.Model(&entity.CharterFlight{})

	if filter.Origin != "" {
		query = query.Where("origin ILIKE ?", filter.Origin)
	}
	if filter.Destination != "" {
		query = query.Where("destination ILIKE ?", filter.Destination)
	}
	if filter.DepartureFrom != nil {
		query = query.Where("departure_time >= ?", *filter.DepartureFrom)
	}
	if filter.DepartureTo != nil {
		query = query.Where("departure_time < ?", *filter.DepartureTo)
	}
	if filter.OnlyBookable {
		query = query.Where("status = ? AND seats_available > 0 AND departure_time > ?",
			entity.FlightStatusScheduled, time.Now())
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("ошибка подсчёта рейсов: %w", err)
	}

	var flights []entity.CharterFlight
	err := query.Order("departure_time ASC").Limit(limit).Offset(offset).Find(&flights).Error
	if err != nil {
		return nil, 0, fmt.Errorf("ошибка поиска рейсов: %w", err)
	}
	return flights, total, nil
}

// AdjustSeats атомарно изменяет количество свободных мест на delta.
// Условие seats_available + delta >= 0 проверяется в самом UPDATE, поэтому
// два конкурентных бронирования не могут увести инвентарь в минус.
func (r *FlightRepo) AdjustSeats(id uint, delta int) error {
	result := r.db.Model(&entity.CharterFlight{}).
		Where("id = ? AND seats_available + ? >= 0", id, delta).
		Update("seats_available", gorm.Expr("seats_available + ?", delta))
	if result.Error != nil {
		return fmt.Errorf("ошибка изменения инвентаря мест: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		// Либо рейса нет, либо мест не хватает
		if _, err := r.GetByID(id); err != nil {
			return err
		}
		return fmt.Errorf("%w: not enough seats available", apperrors.ErrConflict)
	}
	return nil
}
