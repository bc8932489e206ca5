package websocket

import (
	"github.com/yourusername/charter-api/internal/domain/entity"
)

// Manager адаптирует хаб к событиям доменных сервисов
type Manager struct {
	hub *Hub
}

// NewManager создает менеджер поверх хаба
func NewManager(hub *Hub) *Manager {
	return &Manager{hub: hub}
}

// PublishBookingEvent рассылает событие жизненного цикла бронирования
// всем подключенным дашбордам
func (m *Manager) PublishBookingEvent(eventType string, booking *entity.Booking) {
	m.hub.Broadcast(Event{Type: eventType, Data: booking})
}
