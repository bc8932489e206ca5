package entity

import "time"

// RefreshToken хранит refresh-токен сессии пользователя
type RefreshToken struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	Token     string    `gorm:"size:64;not null;uniqueIndex" json:"-"`
	ExpiresAt time.Time `gorm:"not null;index" json:"expires_at"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
}

func (RefreshToken) TableName() string {
	return "refresh_tokens"
}

// IsValid проверяет, действителен ли токен в момент now
func (rt *RefreshToken) IsValid(now time.Time) bool {
	return rt.ExpiresAt.After(now)
}
