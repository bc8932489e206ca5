package handler

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/charter-api/internal/domain/entity"
	"github.com/yourusername/charter-api/internal/domain/repository"
	"github.com/yourusername/charter-api/internal/service"
)

// FlightHandler обрабатывает запросы, связанные с чартерными рейсами
type FlightHandler struct {
	flightService *service.FlightService
}

// NewFlightHandler создает новый обработчик рейсов
func NewFlightHandler(flightService *service.FlightService) *FlightHandler {
	return &FlightHandler{flightService: flightService}
}

// CreateFlightRequest представляет запрос на создание рейса
type CreateFlightRequest struct {
	Origin        string    `json:"origin" binding:"required,min=2,max=100"`
	Destination   string    `json:"destination" binding:"required,min=2,max=100"`
	DepartureTime time.Time `json:"departure_time" binding:"required"`
	ArrivalTime   time.Time `json:"arrival_time" binding:"required"`
	Aircraft      string    `json:"aircraft" binding:"omitempty,max=100"`
	SeatsTotal    int       `json:"seats_total" binding:"required,min=1,max=1000"`
	PricePerSeat  int64     `json:"price_per_seat" binding:"required,min=1"`
}

// UpdateFlightStatusRequest представляет запрос на смену статуса рейса
type UpdateFlightStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=scheduled departed cancelled"`
}

// Search возвращает рейсы по фильтру (публичный маршрут)
func (h *FlightHandler) Search(c *gin.Context) {
	filter := repository.FlightSearchFilter{
		Origin:       c.Query("origin"),
		Destination:  c.Query("destination"),
		OnlyBookable: c.Query("bookable") == "true",
	}
	if from := c.Query("departure_from"); from != "" {
		t, err := time.Parse(time.RFC3339, from)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "departure_from must be RFC3339"})
			return
		}
		filter.DepartureFrom = &t
	}
	if to := c.Query("departure_to"); to != "" {
		t, err := time.Parse(time.RFC3339, to)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "departure_to must be RFC3339"})
			return
		}
		filter.DepartureTo = &t
	}

	page, pageSize := parsePagination(c)
	flights, total, err := h.flightService.Search(filter, pageSize, (page-1)*pageSize)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"flights":  flights,
		"total":    total,
		"page":     page,
		"per_page": pageSize,
	})
}

// GetFlight возвращает рейс по ID (публичный маршрут)
func (h *FlightHandler) GetFlight(c *gin.Context) {
	flightID := c.GetUint("flight_id")

	flight, err := h.flightService.GetByID(flightID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, flight)
}

// CreateFlight добавляет новый рейс (действие персонала)
func (h *FlightHandler) CreateFlight(c *gin.Context) {
	var req CreateFlightRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	flight := &entity.CharterFlight{
		Origin:        req.Origin,
		Destination:   req.Destination,
		DepartureTime: req.DepartureTime,
		ArrivalTime:   req.ArrivalTime,
		Aircraft:      req.Aircraft,
		SeatsTotal:    req.SeatsTotal,
		PricePerSeat:  req.PricePerSeat,
	}
	if err := h.flightService.Create(flight); err != nil {
		respondError(c, err)
		return
	}

	log.Printf("[FlightHandler] Создан рейс ID=%d %s-%s", flight.ID, flight.Origin, flight.Destination)
	c.JSON(http.StatusCreated, flight)
}

// UpdateFlightRequest представляет запрос на изменение рейса. Поля
// передаются целиком: частичное обновление не поддерживается.
type UpdateFlightRequest struct {
	Origin        string    `json:"origin" binding:"required,min=2,max=100"`
	Destination   string    `json:"destination" binding:"required,min=2,max=100"`
	DepartureTime time.Time `json:"departure_time" binding:"required"`
	ArrivalTime   time.Time `json:"arrival_time" binding:"required"`
	Aircraft      string    `json:"aircraft" binding:"omitempty,max=100"`
	PricePerSeat  int64     `json:"price_per_seat" binding:"required,min=1"`
}

// UpdateFlight изменяет данные рейса (действие персонала). Количество мест
// через этот маршрут не меняется: им управляют бронирования.
func (h *FlightHandler) UpdateFlight(c *gin.Context) {
	flightID := c.GetUint("flight_id")

	var req UpdateFlightRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	flight, err := h.flightService.GetByID(flightID)
	if err != nil {
		respondError(c, err)
		return
	}

	flight.Origin = req.Origin
	flight.Destination = req.Destination
	flight.DepartureTime = req.DepartureTime
	flight.ArrivalTime = req.ArrivalTime
	flight.Aircraft = req.Aircraft
	flight.PricePerSeat = req.PricePerSeat

	if err := h.flightService.Update(flight); err != nil {
		respondError(c, err)
		return
	}

	log.Printf("[FlightHandler] Обновлен рейс ID=%d", flightID)
	c.JSON(http.StatusOK, flight)
}

// UpdateFlightStatus переводит рейс в новый статус (действие персонала)
func (h *FlightHandler) UpdateFlightStatus(c *gin.Context) {
	flightID := c.GetUint("flight_id")

	var req UpdateFlightStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.flightService.UpdateStatus(flightID, req.Status); err != nil {
		respondError(c, err)
		return
	}

	log.Printf("[FlightHandler] Рейс ID=%d переведен в статус %s", flightID, req.Status)
	c.JSON(http.StatusOK, gin.H{"message": "Flight status updated"})
}
