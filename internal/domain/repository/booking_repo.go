package repository

import (
	"time"

	"github.com/yourusername/charter-api/internal/domain/entity"
)

// BookingRepository определяет методы для работы с бронированиями
type BookingRepository interface {
	Create(booking *entity.Booking) error
	GetByID(id uint) (*entity.Booking, error)
	GetByReference(reference string) (*entity.Booking, error)
	Update(booking *entity.Booking) error
	UpdateStatus(id uint, status string, at time.Time) error
	ListByUser(userID uint, limit, offset int) ([]entity.Booking, int64, error)
	ListByFlight(flightID uint, limit, offset int) ([]entity.Booking, int64, error)
	// ListForPeriod возвращает бронирования, созданные в интервале [from, to) — для отчётов
	ListForPeriod(from, to time.Time) ([]entity.Booking, error)
}
