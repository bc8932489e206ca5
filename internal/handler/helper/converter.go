package helper

import (
	"github.com/yourusername/charter-api/internal/domain/entity"
	"github.com/yourusername/charter-api/internal/handler/dto"
)

// ConvertUserToDTO преобразует пользователя для админских списков
func ConvertUserToDTO(u *entity.User) *dto.UserDTO {
	return &dto.UserDTO{
		ID:                  u.ID,
		Email:               u.Email,
		FullName:            u.FullName,
		Phone:               u.Phone,
		Role:                u.Role,
		MembershipType:      u.MembershipType,
		MembershipExpiresAt: u.MembershipExpiresAt,
		ProfileStatus:       u.ProfileStatus,
		BookingCount:        u.BookingCount,
		CancellationCount:   u.CancellationCount,
		CreatedAt:           u.CreatedAt,
	}
}

// ConvertUsersToDTO преобразует срез пользователей
func ConvertUsersToDTO(users []entity.User) []*dto.UserDTO {
	converted := make([]*dto.UserDTO, len(users))
	for i := range users {
		converted[i] = ConvertUserToDTO(&users[i])
	}
	return converted
}

// ConvertBookingToSummary преобразует бронирование для списков.
// Поля рейса заполняются, когда рейс загружен вместе с бронированием.
func ConvertBookingToSummary(b *entity.Booking) *dto.BookingSummaryDTO {
	summary := &dto.BookingSummaryDTO{
		ID:         b.ID,
		Reference:  b.Reference,
		Passengers: b.Passengers,
		TotalPrice: b.TotalPrice,
		Status:     b.Status,
		CreatedAt:  b.CreatedAt,
	}
	if b.Flight != nil {
		summary.Origin = b.Flight.Origin
		summary.Destination = b.Flight.Destination
		summary.Departure = b.Flight.DepartureTime
	}
	return summary
}

// ConvertBookingsToSummaries преобразует срез бронирований
func ConvertBookingsToSummaries(bookings []entity.Booking) []*dto.BookingSummaryDTO {
	converted := make([]*dto.BookingSummaryDTO, len(bookings))
	for i := range bookings {
		converted[i] = ConvertBookingToSummary(&bookings[i])
	}
	return converted
}
