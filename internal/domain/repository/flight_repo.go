package repository

import (
	"time"

	"github.com/yourusername/charter-api/internal/domain/entity"
)

// FlightSearchFilter задаёт необязательные условия поиска рейсов
type FlightSearchFilter struct {
	Origin        string
	Destination   string
	DepartureFrom *time.Time
	DepartureTo   *time.Time
	OnlyBookable  bool
}

// FlightRepository определяет методы для работы с чартерными рейсами
type FlightRepository interface {
	Create(flight *entity.CharterFlight) error
	GetByID(id uint) (*entity.CharterFlight, error)
	Update(flight *entity.CharterFlight) error
	UpdateStatus(id uint, status string) error
	Search(filter FlightSearchFilter, limit, offset int) ([]entity.CharterFlight, int64, error)
	// AdjustSeats атомарно изменяет количество свободных мест на delta.
	// Возвращает apperrors.ErrConflict, если мест не хватает.
	AdjustSeats(id uint, delta int) error
}
