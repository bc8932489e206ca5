package service

import "errors"

// Ошибки потоков аутентификации и бронирования. Значения используются
// обработчиками как стабильные error_type для клиента.
var (
	ErrInvalidCredentials = errors.New("invalid_credentials")

	// Двухфакторная проверка
	ErrCodeNotFound       = errors.New("code_not_found")
	ErrCodeExpired        = errors.New("code_expired")
	ErrCodeMismatch       = errors.New("code_mismatch")
	ErrTooManyAttempts    = errors.New("too_many_attempts")
	ErrResendNotAvailable = errors.New("resend_not_available")

	// Бронирования
	ErrBookingNotAllowed = errors.New("booking_not_allowed")
	ErrFlightNotBookable = errors.New("flight_not_bookable")
)
