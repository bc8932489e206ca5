package dto

import "time"

// BookingSummaryDTO представляет бронирование в списках
type BookingSummaryDTO struct {
	ID          uint      `json:"id"`
	Reference   string    `json:"reference"`
	Origin      string    `json:"origin"`
	Destination string    `json:"destination"`
	Departure   time.Time `json:"departure"`
	Passengers  int       `json:"passengers"`
	TotalPrice  int64     `json:"total_price"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
}

// PaginatedBookingsResponse представляет пагинированный список бронирований
type PaginatedBookingsResponse struct {
	Bookings []*BookingSummaryDTO `json:"bookings"` // Список бронирований на странице
	Total    int64                `json:"total"`    // Общее количество бронирований
	Page     int                  `json:"page"`     // Текущая страница
	PerPage  int                  `json:"per_page"` // Количество бронирований на странице
}
