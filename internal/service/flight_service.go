package service

import (
	"fmt"
	"log"
	"time"

	"github.com/yourusername/charter-api/internal/domain/entity"
	"github.com/yourusername/charter-api/internal/domain/repository"
	apperrors "github.com/yourusername/charter-api/internal/pkg/errors"
)

const flightCacheTTL = 5 * time.Minute

// FlightService предоставляет операции над чартерными рейсами.
// Карточки рейсов кешируются в Redis: публичный поиск — самая горячая
// читающая нагрузка приложения.
type FlightService struct {
	flightRepo repository.FlightRepository
	cacheRepo  repository.CacheRepository
}

// NewFlightService создает сервис рейсов
func NewFlightService(flightRepo repository.FlightRepository, cacheRepo repository.CacheRepository) (*FlightService, error) {
	if flightRepo == nil {
		return nil, fmt.Errorf("flight repository is required")
	}
	return &FlightService{
		flightRepo: flightRepo,
		cacheRepo:  cacheRepo,
	}, nil
}

// Create добавляет новый рейс (действие персонала)
func (s *FlightService) Create(flight *entity.CharterFlight) error {
	if flight.Origin == "" || flight.Destination == "" {
		return fmt.Errorf("%w: origin and destination are required", apperrors.ErrValidation)
	}
	if flight.SeatsTotal < 1 {
		return fmt.Errorf("%w: seats_total must be at least 1", apperrors.ErrValidation)
	}
	if !flight.DepartureTime.Before(flight.ArrivalTime) {
		return fmt.Errorf("%w: departure must precede arrival", apperrors.ErrValidation)
	}

	if flight.SeatsAvailable == 0 {
		flight.SeatsAvailable = flight.SeatsTotal
	}
	if flight.Status == "" {
		flight.Status = entity.FlightStatusScheduled
	}
	return s.flightRepo.Create(flight)
}

// GetByID возвращает рейс, используя кеш
func (s *FlightService) GetByID(id uint) (*entity.CharterFlight, error) {
	cacheKey := fmt.Sprintf("flight:%d", id)

	if s.cacheRepo != nil {
		var cached entity.CharterFlight
		if err := s.cacheRepo.GetJSON(cacheKey, &cached); err == nil {
			return &cached, nil
		}
	}

	flight, err := s.flightRepo.GetByID(id)
	if err != nil {
		return nil, err
	}

	if s.cacheRepo != nil {
		if err := s.cacheRepo.SetJSON(cacheKey, flight, flightCacheTTL); err != nil {
			log.Printf("[FlightService] Ошибка записи рейса #%d в кеш: %v", id, err)
		}
	}
	return flight, nil
}

// Update сохраняет изменённый рейс и сбрасывает кеш
func (s *FlightService) Update(flight *entity.CharterFlight) error {
	if err := s.flightRepo.Update(flight); err != nil {
		return err
	}
	s.invalidate(flight.ID)
	return nil
}

// UpdateStatus переводит рейс в новый статус и сбрасывает кеш
func (s *FlightService) UpdateStatus(id uint, status string) error {
	switch status {
	case entity.FlightStatusScheduled, entity.FlightStatusDeparted, entity.FlightStatusCancelled:
	default:
		return fmt.Errorf("%w: unknown flight status %q", apperrors.ErrValidation, status)
	}

	if err := s.flightRepo.UpdateStatus(id, status); err != nil {
		return err
	}
	s.invalidate(id)
	return nil
}

// Search возвращает рейсы по фильтру с пагинацией
func (s *FlightService) Search(filter repository.FlightSearchFilter, limit, offset int) ([]entity.CharterFlight, int64, error) {
	if limit < 1 {
		limit = 20
	} else if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	return s.flightRepo.Search(filter, limit, offset)
}

func (s *FlightService) invalidate(id uint) {
	if s.cacheRepo == nil {
		return
	}
	if err := s.cacheRepo.Delete(fmt.Sprintf("flight:%d", id)); err != nil {
		log.Printf("[FlightService] Ошибка сброса кеша рейса #%d: %v", id, err)
	}
}
