package service

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/charter-api/internal/domain/entity"
	"github.com/yourusername/charter-api/internal/domain/repository"
	apperrors "github.com/yourusername/charter-api/internal/pkg/errors"
)

// ============================================================================
// Моки репозиториев для BookingService
// ============================================================================

// MockUserRepository реализует repository.UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(user *entity.User) error {
	args := m.Called(user)
	return args.Error(0)
}

func (m *MockUserRepository) GetByID(id uint) (*entity.User, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.User), args.Error(1)
}

func (m *MockUserRepository) GetByEmail(email string) (*entity.User, error) {
	args := m.Called(email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.User), args.Error(1)
}

func (m *MockUserRepository) Update(user *entity.User) error {
	args := m.Called(user)
	return args.Error(0)
}

func (m *MockUserRepository) UpdateProfile(userID uint, updates map[string]interface{}) error {
	args := m.Called(userID, updates)
	return args.Error(0)
}

func (m *MockUserRepository) UpdatePassword(userID uint, newPassword string) error {
	args := m.Called(userID, newPassword)
	return args.Error(0)
}

func (m *MockUserRepository) IncrementBookingCount(userID uint) error {
	args := m.Called(userID)
	return args.Error(0)
}

func (m *MockUserRepository) IncrementCancellationCount(userID uint) error {
	args := m.Called(userID)
	return args.Error(0)
}

func (m *MockUserRepository) List(limit, offset int) ([]entity.User, int64, error) {
	args := m.Called(limit, offset)
	return args.Get(0).([]entity.User), args.Get(1).(int64), args.Error(2)
}

func (m *MockUserRepository) ListByProfileStatus(status string, limit, offset int) ([]entity.User, int64, error) {
	args := m.Called(status, limit, offset)
	return args.Get(0).([]entity.User), args.Get(1).(int64), args.Error(2)
}

// MockFlightRepository реализует repository.FlightRepository
type MockFlightRepository struct {
	mock.Mock
}

func (m *MockFlightRepository) Create(flight *entity.CharterFlight) error {
	args := m.Called(flight)
	return args.Error(0)
}

func (m *MockFlightRepository) GetByID(id uint) (*entity.CharterFlight, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.CharterFlight), args.Error(1)
}

func (m *MockFlightRepository) Update(flight *entity.CharterFlight) error {
	args := m.Called(flight)
	return args.Error(0)
}

func (m *MockFlightRepository) UpdateStatus(id uint, status string) error {
	args := m.Called(id, status)
	return args.Error(0)
}

func (m *MockFlightRepository) Search(filter repository.FlightSearchFilter, limit, offset int) ([]entity.CharterFlight, int64, error) {
	args := m.Called(filter, limit, offset)
	return args.Get(0).([]entity.CharterFlight), args.Get(1).(int64), args.Error(2)
}

func (m *MockFlightRepository) AdjustSeats(id uint, delta int) error {
	args := m.Called(id, delta)
	return args.Error(0)
}

// MockBookingRepository реализует repository.BookingRepository
type MockBookingRepository struct {
	mock.Mock
}

func (m *MockBookingRepository) Create(booking *entity.Booking) error {
	args := m.Called(booking)
	return args.Error(0)
}

func (m *MockBookingRepository) GetByID(id uint) (*entity.Booking, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Booking), args.Error(1)
}

func (m *MockBookingRepository) GetByReference(reference string) (*entity.Booking, error) {
	args := m.Called(reference)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Booking), args.Error(1)
}

func (m *MockBookingRepository) Update(booking *entity.Booking) error {
	args := m.Called(booking)
	return args.Error(0)
}

func (m *MockBookingRepository) UpdateStatus(id uint, status string, at time.Time) error {
	args := m.Called(id, status, at)
	return args.Error(0)
}

func (m *MockBookingRepository) ListByUser(userID uint, limit, offset int) ([]entity.Booking, int64, error) {
	args := m.Called(userID, limit, offset)
	return args.Get(0).([]entity.Booking), args.Get(1).(int64), args.Error(2)
}

func (m *MockBookingRepository) ListByFlight(flightID uint, limit, offset int) ([]entity.Booking, int64, error) {
	args := m.Called(flightID, limit, offset)
	return args.Get(0).([]entity.Booking), args.Get(1).(int64), args.Error(2)
}

func (m *MockBookingRepository) ListForPeriod(from, to time.Time) ([]entity.Booking, error) {
	args := m.Called(from, to)
	return args.Get(0).([]entity.Booking), args.Error(1)
}

// recordingPublisher запоминает опубликованные события
type recordingPublisher struct {
	events []string
}

func (p *recordingPublisher) PublishBookingEvent(eventType string, booking *entity.Booking) {
	p.events = append(p.events, eventType)
}

// ============================================================================
// Хелперы
// ============================================================================

func approvedTestCustomer() *entity.User {
	return &entity.User{
		ID:             7,
		Email:          "customer@example.com",
		Role:           entity.RoleCustomer,
		MembershipType: entity.MembershipNone,
		ProfileStatus:  entity.ProfileStatusApproved,
	}
}

func scheduledTestFlight() *entity.CharterFlight {
	return &entity.CharterFlight{
		ID:             3,
		Origin:         "Алматы",
		Destination:    "Дубай",
		DepartureTime:  time.Now().Add(72 * time.Hour),
		ArrivalTime:    time.Now().Add(76 * time.Hour),
		SeatsTotal:     50,
		SeatsAvailable: 10,
		PricePerSeat:   250000,
		Status:         entity.FlightStatusScheduled,
	}
}

func createTestBookingService(t *testing.T, bookingRepo *MockBookingRepository, flightRepo *MockFlightRepository, userRepo *MockUserRepository, publisher BookingEventPublisher) *BookingService {
	t.Helper()

	svc, err := NewBookingService(bookingRepo, flightRepo, userRepo, NewEligibilityService(), publisher)
	require.NoError(t, err)
	return svc
}

// ============================================================================
// Тесты
// ============================================================================

func TestBookingService_Create_Success(t *testing.T) {
	// Arrange
	mockBookingRepo := new(MockBookingRepository)
	mockFlightRepo := new(MockFlightRepository)
	mockUserRepo := new(MockUserRepository)
	publisher := &recordingPublisher{}

	flight := scheduledTestFlight()
	mockUserRepo.On("GetByID", uint(7)).Return(approvedTestCustomer(), nil)
	mockFlightRepo.On("GetByID", uint(3)).Return(flight, nil)
	mockFlightRepo.On("AdjustSeats", uint(3), -2).Return(nil)
	mockBookingRepo.On("Create", mock.AnythingOfType("*entity.Booking")).Return(nil)
	mockUserRepo.On("IncrementBookingCount", uint(7)).Return(nil)

	svc := createTestBookingService(t, mockBookingRepo, mockFlightRepo, mockUserRepo, publisher)

	// Act
	booking, err := svc.Create(7, 3, 2)

	// Assert
	require.NoError(t, err, "Создание бронирования должно быть успешным")
	assert.NotEmpty(t, booking.Reference, "Бронирование должно получить внешний идентификатор")
	assert.Equal(t, entity.BookingStatusPending, booking.Status)
	assert.Equal(t, int64(500000), booking.TotalPrice, "Сумма = цена места * число пассажиров")
	assert.Equal(t, []string{"booking:created"}, publisher.events)
	mockBookingRepo.AssertExpectations(t)
	mockFlightRepo.AssertExpectations(t)
	mockUserRepo.AssertExpectations(t)
}

func TestBookingService_Create_NotEligible(t *testing.T) {
	// Arrange
	mockBookingRepo := new(MockBookingRepository)
	mockFlightRepo := new(MockFlightRepository)
	mockUserRepo := new(MockUserRepository)

	user := approvedTestCustomer()
	user.ProfileStatus = entity.ProfileStatusPending
	mockUserRepo.On("GetByID", uint(7)).Return(user, nil)

	svc := createTestBookingService(t, mockBookingRepo, mockFlightRepo, mockUserRepo, nil)

	// Act
	_, err := svc.Create(7, 3, 1)

	// Assert
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrBookingNotAllowed)

	var notAllowed *BookingNotAllowedError
	require.ErrorAs(t, err, &notAllowed)
	assert.Equal(t, entity.ReasonProfileNotApproved, notAllowed.Reason)

	// До рейса и мест дело не дошло
	mockFlightRepo.AssertNotCalled(t, "GetByID")
	mockFlightRepo.AssertNotCalled(t, "AdjustSeats")
	mockBookingRepo.AssertNotCalled(t, "Create")
}

func TestBookingService_Create_NotEnoughSeats(t *testing.T) {
	// Arrange
	mockBookingRepo := new(MockBookingRepository)
	mockFlightRepo := new(MockFlightRepository)
	mockUserRepo := new(MockUserRepository)

	flight := scheduledTestFlight()
	flight.SeatsAvailable = 1

	mockUserRepo.On("GetByID", uint(7)).Return(approvedTestCustomer(), nil)
	mockFlightRepo.On("GetByID", uint(3)).Return(flight, nil)

	svc := createTestBookingService(t, mockBookingRepo, mockFlightRepo, mockUserRepo, nil)

	// Act
	_, err := svc.Create(7, 3, 2)

	// Assert
	assert.ErrorIs(t, err, ErrFlightNotBookable, "Нехватка мест должна давать flight_not_bookable")
	mockBookingRepo.AssertNotCalled(t, "Create")
}

func TestBookingService_Create_SeatRaceLost(t *testing.T) {
	// Мест хватало на момент чтения, но параллельное бронирование забрало их
	// раньше: репозиторий отвечает конфликтом на резервирование
	mockBookingRepo := new(MockBookingRepository)
	mockFlightRepo := new(MockFlightRepository)
	mockUserRepo := new(MockUserRepository)

	mockUserRepo.On("GetByID", uint(7)).Return(approvedTestCustomer(), nil)
	mockFlightRepo.On("GetByID", uint(3)).Return(scheduledTestFlight(), nil)
	mockFlightRepo.On("AdjustSeats", uint(3), -2).Return(apperrors.ErrConflict)

	svc := createTestBookingService(t, mockBookingRepo, mockFlightRepo, mockUserRepo, nil)

	// Act
	_, err := svc.Create(7, 3, 2)

	// Assert
	assert.ErrorIs(t, err, ErrFlightNotBookable)
	mockBookingRepo.AssertNotCalled(t, "Create")
}

func TestBookingService_Create_RestoresSeatsOnFailure(t *testing.T) {
	// Arrange
	mockBookingRepo := new(MockBookingRepository)
	mockFlightRepo := new(MockFlightRepository)
	mockUserRepo := new(MockUserRepository)

	mockUserRepo.On("GetByID", uint(7)).Return(approvedTestCustomer(), nil)
	mockFlightRepo.On("GetByID", uint(3)).Return(scheduledTestFlight(), nil)
	mockFlightRepo.On("AdjustSeats", uint(3), -2).Return(nil)
	mockBookingRepo.On("Create", mock.AnythingOfType("*entity.Booking")).Return(errors.New("db down"))
	// Зарезервированные места возвращаются
	mockFlightRepo.On("AdjustSeats", uint(3), 2).Return(nil)

	svc := createTestBookingService(t, mockBookingRepo, mockFlightRepo, mockUserRepo, nil)

	// Act
	_, err := svc.Create(7, 3, 2)

	// Assert
	require.Error(t, err)
	mockFlightRepo.AssertCalled(t, "AdjustSeats", uint(3), 2)
	mockUserRepo.AssertNotCalled(t, "IncrementBookingCount")
}

func TestBookingService_Create_InvalidPassengers(t *testing.T) {
	mockBookingRepo := new(MockBookingRepository)
	mockFlightRepo := new(MockFlightRepository)
	mockUserRepo := new(MockUserRepository)

	svc := createTestBookingService(t, mockBookingRepo, mockFlightRepo, mockUserRepo, nil)

	_, err := svc.Create(7, 3, 0)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
	mockUserRepo.AssertNotCalled(t, "GetByID")
}

func TestBookingService_Cancel_ByOwner(t *testing.T) {
	// Arrange
	mockBookingRepo := new(MockBookingRepository)
	mockFlightRepo := new(MockFlightRepository)
	mockUserRepo := new(MockUserRepository)
	publisher := &recordingPublisher{}

	booking := &entity.Booking{
		ID:         11,
		Reference:  "ref-11",
		UserID:     7,
		FlightID:   3,
		Passengers: 2,
		Status:     entity.BookingStatusConfirmed,
	}
	mockBookingRepo.On("GetByID", uint(11)).Return(booking, nil)
	mockBookingRepo.On("UpdateStatus", uint(11), entity.BookingStatusCancelled, mock.AnythingOfType("time.Time")).Return(nil)
	mockFlightRepo.On("AdjustSeats", uint(3), 2).Return(nil)
	mockUserRepo.On("IncrementCancellationCount", uint(7)).Return(nil)

	svc := createTestBookingService(t, mockBookingRepo, mockFlightRepo, mockUserRepo, publisher)

	// Act: отменяет сам владелец
	cancelled, err := svc.Cancel(11, 7)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, entity.BookingStatusCancelled, cancelled.Status)
	assert.NotNil(t, cancelled.CancelledAt)
	assert.Equal(t, []string{"booking:cancelled"}, publisher.events)
	mockUserRepo.AssertCalled(t, "IncrementCancellationCount", uint(7))
}

func TestBookingService_Cancel_ByStaff_NoPenalty(t *testing.T) {
	// Отмена персоналом не увеличивает счётчик отмен клиента
	mockBookingRepo := new(MockBookingRepository)
	mockFlightRepo := new(MockFlightRepository)
	mockUserRepo := new(MockUserRepository)

	booking := &entity.Booking{
		ID:         11,
		UserID:     7,
		FlightID:   3,
		Passengers: 1,
		Status:     entity.BookingStatusPending,
	}
	mockBookingRepo.On("GetByID", uint(11)).Return(booking, nil)
	mockBookingRepo.On("UpdateStatus", uint(11), entity.BookingStatusCancelled, mock.AnythingOfType("time.Time")).Return(nil)
	mockFlightRepo.On("AdjustSeats", uint(3), 1).Return(nil)

	svc := createTestBookingService(t, mockBookingRepo, mockFlightRepo, mockUserRepo, nil)

	// Act: actorID — оператор, не владелец
	_, err := svc.Cancel(11, 100)

	// Assert
	require.NoError(t, err)
	mockUserRepo.AssertNotCalled(t, "IncrementCancellationCount")
}

func TestBookingService_Cancel_AlreadyCancelled(t *testing.T) {
	mockBookingRepo := new(MockBookingRepository)
	mockFlightRepo := new(MockFlightRepository)
	mockUserRepo := new(MockUserRepository)

	booking := &entity.Booking{ID: 11, UserID: 7, Status: entity.BookingStatusCancelled}
	mockBookingRepo.On("GetByID", uint(11)).Return(booking, nil)

	svc := createTestBookingService(t, mockBookingRepo, mockFlightRepo, mockUserRepo, nil)

	_, err := svc.Cancel(11, 7)
	assert.ErrorIs(t, err, apperrors.ErrConflict)
	mockBookingRepo.AssertNotCalled(t, "UpdateStatus")
}

func TestBookingService_Confirm(t *testing.T) {
	mockBookingRepo := new(MockBookingRepository)
	mockFlightRepo := new(MockFlightRepository)
	mockUserRepo := new(MockUserRepository)
	publisher := &recordingPublisher{}

	booking := &entity.Booking{ID: 11, UserID: 7, Status: entity.BookingStatusPending}
	mockBookingRepo.On("GetByID", uint(11)).Return(booking, nil)
	mockBookingRepo.On("UpdateStatus", uint(11), entity.BookingStatusConfirmed, mock.AnythingOfType("time.Time")).Return(nil)

	svc := createTestBookingService(t, mockBookingRepo, mockFlightRepo, mockUserRepo, publisher)

	confirmed, err := svc.Confirm(11)
	require.NoError(t, err)
	assert.Equal(t, entity.BookingStatusConfirmed, confirmed.Status)
	assert.NotNil(t, confirmed.ConfirmedAt)
	assert.Equal(t, []string{"booking:confirmed"}, publisher.events)
}

func TestBookingService_Confirm_NotPending(t *testing.T) {
	mockBookingRepo := new(MockBookingRepository)
	mockFlightRepo := new(MockFlightRepository)
	mockUserRepo := new(MockUserRepository)

	booking := &entity.Booking{ID: 11, Status: entity.BookingStatusConfirmed}
	mockBookingRepo.On("GetByID", uint(11)).Return(booking, nil)

	svc := createTestBookingService(t, mockBookingRepo, mockFlightRepo, mockUserRepo, nil)

	_, err := svc.Confirm(11)
	assert.ErrorIs(t, err, apperrors.ErrConflict)
}
