package websocket

import (
	"encoding/json"
	"log"
	"sync"
)

// Event — сообщение, рассылаемое подключенным клиентам
type Event struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// Hub поддерживает множество активных клиентов и рассылает им события.
// Доступ к дашборду есть только у персонала, поэтому одного хаба без
// шардирования достаточно.
type Hub struct {
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	broadcast  chan []byte

	mu sync.RWMutex
}

// NewHub создает новый хаб
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan []byte, 256),
	}
}

// Run запускает цикл обработки хаба (вызывается в отдельной горутине)
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			count := len(h.clients)
			h.mu.Unlock()
			log.Printf("[WebSocket] Клиент user=%d подключен, всего клиентов: %d", client.UserID, count)

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			count := len(h.clients)
			h.mu.Unlock()
			log.Printf("[WebSocket] Клиент user=%d отключен, всего клиентов: %d", client.UserID, count)

		case message := <-h.broadcast:
			h.mu.Lock()
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					// Буфер клиента переполнен — отключаем его, чтобы не
					// блокировать рассылку остальным
					log.Printf("[WebSocket] Буфер клиента user=%d переполнен, отключаем", client.UserID)
					delete(h.clients, client)
					close(client.send)
				}
			}
			h.mu.Unlock()
		}
	}
}

// Broadcast сериализует событие и рассылает его всем клиентам
func (h *Hub) Broadcast(event Event) {
	payload, err := json.Marshal(event)
	if err != nil {
		log.Printf("[WebSocket] Ошибка сериализации события %s: %v", event.Type, err)
		return
	}

	select {
	case h.broadcast <- payload:
	default:
		log.Printf("[WebSocket] Очередь рассылки переполнена, событие %s отброшено", event.Type)
	}
}

// ClientCount возвращает число подключенных клиентов
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
