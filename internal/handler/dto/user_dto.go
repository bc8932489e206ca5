package dto

import "time"

// UserDTO представляет пользователя в админских списках
type UserDTO struct {
	ID                  uint       `json:"id"`
	Email               string     `json:"email"`
	FullName            string     `json:"full_name"`
	Phone               string     `json:"phone"`
	Role                string     `json:"role"`
	MembershipType      string     `json:"membership_type"`
	MembershipExpiresAt *time.Time `json:"membership_expires_at,omitempty"`
	ProfileStatus       string     `json:"profile_status"`
	BookingCount        int        `json:"booking_count"`
	CancellationCount   int        `json:"cancellation_count"`
	CreatedAt           time.Time  `json:"created_at"`
}

// PaginatedUsersResponse представляет пагинированный список пользователей
type PaginatedUsersResponse struct {
	Users   []*UserDTO `json:"users"`    // Список пользователей на странице
	Total   int64      `json:"total"`    // Общее количество пользователей
	Page    int        `json:"page"`     // Текущая страница
	PerPage int        `json:"per_page"` // Количество пользователей на странице
}
