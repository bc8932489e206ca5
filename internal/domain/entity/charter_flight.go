package entity

import "time"

// Статусы чартерного рейса
const (
	FlightStatusScheduled = "scheduled"
	FlightStatusDeparted  = "departed"
	FlightStatusCancelled = "cancelled"
)

// CharterFlight представляет чартерный рейс с инвентарём мест
type CharterFlight struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	Origin         string    `gorm:"size:100;not null;index" json:"origin"`
	Destination    string    `gorm:"size:100;not null;index" json:"destination"`
	DepartureTime  time.Time `gorm:"not null;index" json:"departure_time"`
	ArrivalTime    time.Time `gorm:"not null" json:"arrival_time"`
	Aircraft       string    `gorm:"size:100;not null;default:''" json:"aircraft"`
	SeatsTotal     int       `gorm:"not null" json:"seats_total"`
	SeatsAvailable int       `gorm:"not null" json:"seats_available"`
	PricePerSeat   int64     `gorm:"not null" json:"price_per_seat"` // минорные единицы валюты
	Status         string    `gorm:"size:20;not null;default:'scheduled'" json:"status"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (CharterFlight) TableName() string {
	return "charter_flights"
}

// IsBookable возвращает true, если на рейс можно оформить бронирование
func (f *CharterFlight) IsBookable(now time.Time, seats int) bool {
	return f.Status == FlightStatusScheduled &&
		f.DepartureTime.After(now) &&
		f.SeatsAvailable >= seats
}
