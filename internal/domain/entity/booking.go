package entity

import "time"

// Статусы бронирования
const (
	BookingStatusPending   = "pending"
	BookingStatusConfirmed = "confirmed"
	BookingStatusCancelled = "cancelled"
)

// Booking представляет бронирование мест на чартерном рейсе
type Booking struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	Reference string `gorm:"size:36;not null;uniqueIndex" json:"reference"` // uuid, внешний идентификатор
	UserID    uint   `gorm:"not null;index" json:"user_id"`
	FlightID  uint   `gorm:"not null;index" json:"flight_id"`

	Passengers int    `gorm:"not null;default:1" json:"passengers"`
	TotalPrice int64  `gorm:"not null" json:"total_price"` // минорные единицы валюты
	Status     string `gorm:"size:20;not null;default:'pending';index" json:"status"`

	ConfirmedAt *time.Time `gorm:"type:timestamp" json:"confirmed_at,omitempty"`
	CancelledAt *time.Time `gorm:"type:timestamp" json:"cancelled_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	User   *User          `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Flight *CharterFlight `gorm:"foreignKey:FlightID" json:"flight,omitempty"`
}

func (Booking) TableName() string {
	return "bookings"
}

// IsCancellable возвращает true, если бронирование ещё можно отменить
func (b *Booking) IsCancellable() bool {
	return b.Status == BookingStatusPending || b.Status == BookingStatusConfirmed
}
