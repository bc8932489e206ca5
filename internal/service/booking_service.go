package service

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/yourusername/charter-api/internal/domain/entity"
	"github.com/yourusername/charter-api/internal/domain/repository"
	apperrors "github.com/yourusername/charter-api/internal/pkg/errors"
)

// BookingNotAllowedError несёт категориальную причину отказа оценщика
// допуска. Разворачивается в ErrBookingNotAllowed для обработчиков.
type BookingNotAllowedError struct {
	Reason entity.EligibilityReason
}

func (e *BookingNotAllowedError) Error() string {
	return fmt.Sprintf("booking not allowed: %s", e.Reason)
}

func (e *BookingNotAllowedError) Unwrap() error {
	return ErrBookingNotAllowed
}

// BookingEventPublisher рассылает события жизненного цикла бронирований
// подключенным дашбордам. Реализуется websocket-менеджером; nil допустим.
type BookingEventPublisher interface {
	PublishBookingEvent(eventType string, booking *entity.Booking)
}

// BookingService управляет жизненным циклом бронирований. Создание нового
// бронирования проходит через EligibilityService; инвентарь мест рейса
// корректируется атомарно на уровне репозитория.
type BookingService struct {
	bookingRepo repository.BookingRepository
	flightRepo  repository.FlightRepository
	userRepo    repository.UserRepository
	eligibility *EligibilityService
	events      BookingEventPublisher
}

// NewBookingService создает сервис бронирований
func NewBookingService(
	bookingRepo repository.BookingRepository,
	flightRepo repository.FlightRepository,
	userRepo repository.UserRepository,
	eligibility *EligibilityService,
	events BookingEventPublisher,
) (*BookingService, error) {
	if bookingRepo == nil || flightRepo == nil || userRepo == nil {
		return nil, fmt.Errorf("booking, flight and user repositories are required")
	}
	if eligibility == nil {
		return nil, fmt.Errorf("eligibility service is required")
	}
	return &BookingService{
		bookingRepo: bookingRepo,
		flightRepo:  flightRepo,
		userRepo:    userRepo,
		eligibility: eligibility,
		events:      events,
	}, nil
}

// Create оформляет новое бронирование для пользователя
func (s *BookingService) Create(userID, flightID uint, passengers int) (*entity.Booking, error) {
	if passengers < 1 {
		return nil, fmt.Errorf("%w: passengers must be at least 1", apperrors.ErrValidation)
	}

	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return nil, err
	}

	decision := s.eligibility.Evaluate(entity.EligibilitySubjectFromUser(user))
	if !decision.Allowed {
		return nil, &BookingNotAllowedError{Reason: decision.Reason}
	}

	flight, err := s.flightRepo.GetByID(flightID)
	if err != nil {
		return nil, err
	}
	if !flight.IsBookable(time.Now(), passengers) {
		return nil, ErrFlightNotBookable
	}

	// Резервируем места до записи бронирования; при нехватке репозиторий
	// вернет ErrConflict
	if err := s.flightRepo.AdjustSeats(flight.ID, -passengers); err != nil {
		if errors.Is(err, apperrors.ErrConflict) {
			return nil, ErrFlightNotBookable
		}
		return nil, err
	}

	booking := &entity.Booking{
		Reference:  uuid.NewString(),
		UserID:     user.ID,
		FlightID:   flight.ID,
		Passengers: passengers,
		TotalPrice: flight.PricePerSeat * int64(passengers),
		Status:     entity.BookingStatusPending,
	}
	if err := s.bookingRepo.Create(booking); err != nil {
		// Возвращаем зарезервированные места
		if seatErr := s.flightRepo.AdjustSeats(flight.ID, passengers); seatErr != nil {
			log.Printf("[BookingService] Ошибка возврата мест рейса #%d: %v", flight.ID, seatErr)
		}
		return nil, err
	}

	if err := s.userRepo.IncrementBookingCount(user.ID); err != nil {
		log.Printf("[BookingService] Ошибка инкремента счётчика бронирований user=%d: %v", user.ID, err)
	}

	booking.Flight = flight
	s.publish("booking:created", booking)
	return booking, nil
}

// Confirm переводит бронирование из pending в confirmed (действие персонала)
func (s *BookingService) Confirm(bookingID uint) (*entity.Booking, error) {
	booking, err := s.bookingRepo.GetByID(bookingID)
	if err != nil {
		return nil, err
	}
	if booking.Status != entity.BookingStatusPending {
		return nil, fmt.Errorf("%w: booking is not pending", apperrors.ErrConflict)
	}

	now := time.Now()
	if err := s.bookingRepo.UpdateStatus(booking.ID, entity.BookingStatusConfirmed, now); err != nil {
		return nil, err
	}
	booking.Status = entity.BookingStatusConfirmed
	booking.ConfirmedAt = &now

	s.publish("booking:confirmed", booking)
	return booking, nil
}

// Cancel отменяет бронирование. Места возвращаются в инвентарь рейса;
// счётчик отмен увеличивается только когда бронирование отменяет сам
// владелец (отмена персоналом клиента не штрафует).
func (s *BookingService) Cancel(bookingID, actorID uint) (*entity.Booking, error) {
	booking, err := s.bookingRepo.GetByID(bookingID)
	if err != nil {
		return nil, err
	}
	if !booking.IsCancellable() {
		return nil, fmt.Errorf("%w: booking is already cancelled", apperrors.ErrConflict)
	}

	now := time.Now()
	if err := s.bookingRepo.UpdateStatus(booking.ID, entity.BookingStatusCancelled, now); err != nil {
		return nil, err
	}
	booking.Status = entity.BookingStatusCancelled
	booking.CancelledAt = &now

	if err := s.flightRepo.AdjustSeats(booking.FlightID, booking.Passengers); err != nil {
		log.Printf("[BookingService] Ошибка возврата мест рейса #%d после отмены: %v", booking.FlightID, err)
	}

	if actorID == booking.UserID {
		if err := s.userRepo.IncrementCancellationCount(booking.UserID); err != nil {
			log.Printf("[BookingService] Ошибка инкремента счётчика отмен user=%d: %v", booking.UserID, err)
		}
	}

	s.publish("booking:cancelled", booking)
	return booking, nil
}

// GetByID возвращает бронирование по ID
func (s *BookingService) GetByID(bookingID uint) (*entity.Booking, error) {
	return s.bookingRepo.GetByID(bookingID)
}

// GetByReference возвращает бронирование по внешнему идентификатору
func (s *BookingService) GetByReference(reference string) (*entity.Booking, error) {
	return s.bookingRepo.GetByReference(reference)
}

// ListForUser возвращает бронирования пользователя с пагинацией
func (s *BookingService) ListForUser(userID uint, limit, offset int) ([]entity.Booking, int64, error) {
	return s.bookingRepo.ListByUser(userID, limit, offset)
}

// ListForFlight возвращает бронирования рейса с пагинацией
func (s *BookingService) ListForFlight(flightID uint, limit, offset int) ([]entity.Booking, int64, error) {
	return s.bookingRepo.ListByFlight(flightID, limit, offset)
}

// ListForPeriod возвращает бронирования, созданные в интервале [from, to) — для отчётов
func (s *BookingService) ListForPeriod(from, to time.Time) ([]entity.Booking, error) {
	return s.bookingRepo.ListForPeriod(from, to)
}

func (s *BookingService) publish(eventType string, booking *entity.Booking) {
	if s.events == nil {
		return
	}
	s.events.PublishBookingEvent(eventType, booking)
}
