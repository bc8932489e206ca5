package handler

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	gorillaws "github.com/gorilla/websocket"

	"github.com/yourusername/charter-api/internal/websocket"
)

// WSHandler обрабатывает WebSocket соединения дашборда персонала
type WSHandler struct {
	hub            *websocket.Hub
	allowedOrigins []string
	upgrader       gorillaws.Upgrader
}

// NewWSHandler создает новый обработчик WebSocket
func NewWSHandler(hub *websocket.Hub, allowedOrigins []string) *WSHandler {
	handler := &WSHandler{
		hub:            hub,
		allowedOrigins: allowedOrigins,
	}
	handler.upgrader = gorillaws.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     handler.checkOrigin,
	}
	return handler
}

// checkOrigin сверяет Origin со списком из конфигурации CORS.
// Пустой Origin — не браузерный клиент (curl, мобильное приложение), пропускаем.
func (h *WSHandler) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	for _, allowed := range h.allowedOrigins {
		if origin == allowed {
			return true
		}
	}
	log.Printf("[WSHandler] Отклонено WebSocket соединение с origin: %s", origin)
	return false
}

// Dashboard апгрейдит соединение и подключает клиента к хабу событий.
// Маршрут защищён RequireAuth + StaffOnly.
func (h *WSHandler) Dashboard(c *gin.Context) {
	userID := c.GetUint("user_id")

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("[WSHandler] Ошибка апгрейда соединения user=%d: %v", userID, err)
		return
	}

	client := websocket.NewClient(h.hub, conn, userID)
	client.Start()
}
