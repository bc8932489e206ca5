package entity

import "time"

// TwoFactorCode хранит одноразовый код подтверждения входа для одного
// идентификатора (email). На идентификатор существует не более одной живой
// записи: повторная выдача перезаписывает предыдущую вместе со счётчиком
// попыток.
type TwoFactorCode struct {
	Identity    string    `json:"identity"` // email, ключ поиска
	DisplayName string    `json:"display_name"`
	Code        string    `json:"-"` // 6 цифр, диапазон [100000, 999999]
	IssuedAt    time.Time `json:"issued_at"`
	ExpiresAt   time.Time `json:"expires_at"`
	Attempts    int       `json:"attempts"`
	MaxAttempts int       `json:"max_attempts"`
}

// IsExpired возвращает true, если срок действия кода истёк к моменту now
func (c *TwoFactorCode) IsExpired(now time.Time) bool {
	return now.After(c.ExpiresAt)
}

// AttemptsExhausted возвращает true, когда попытки ввода исчерпаны
func (c *TwoFactorCode) AttemptsExhausted() bool {
	return c.Attempts >= c.MaxAttempts
}

// AttemptsRemaining возвращает оставшееся число попыток (не меньше нуля)
func (c *TwoFactorCode) AttemptsRemaining() int {
	remaining := c.MaxAttempts - c.Attempts
	if remaining < 0 {
		return 0
	}
	return remaining
}
