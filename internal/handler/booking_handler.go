package handler

import (
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/charter-api/internal/domain/entity"
	"github.com/yourusername/charter-api/internal/handler/dto"
	"github.com/yourusername/charter-api/internal/handler/helper"
	"github.com/yourusername/charter-api/internal/pdf"
	"github.com/yourusername/charter-api/internal/service"
)

// BookingHandler обрабатывает запросы, связанные с бронированиями
type BookingHandler struct {
	bookingService *service.BookingService
	pdfGenerator   pdf.Generator
}

// NewBookingHandler создает новый обработчик бронирований
func NewBookingHandler(bookingService *service.BookingService, pdfGenerator pdf.Generator) *BookingHandler {
	return &BookingHandler{
		bookingService: bookingService,
		pdfGenerator:   pdfGenerator,
	}
}

// CreateBookingRequest представляет запрос на бронирование
type CreateBookingRequest struct {
	FlightID   uint `json:"flight_id" binding:"required"`
	Passengers int  `json:"passengers" binding:"required,min=1,max=50"`
}

// CreateBooking оформляет бронирование для текущего пользователя
func (h *BookingHandler) CreateBooking(c *gin.Context) {
	userID := c.GetUint("user_id")

	var req CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	booking, err := h.bookingService.Create(userID, req.FlightID, req.Passengers)
	if err != nil {
		var notAllowed *service.BookingNotAllowedError
		if errors.As(err, &notAllowed) {
			c.JSON(http.StatusForbidden, gin.H{
				"error":      "Booking is not allowed for this account",
				"error_type": string(notAllowed.Reason),
			})
			return
		}
		if errors.Is(err, service.ErrFlightNotBookable) {
			c.JSON(http.StatusConflict, gin.H{"error": "Flight is not available for booking", "error_type": "flight_not_bookable"})
			return
		}
		respondError(c, err)
		return
	}

	log.Printf("[BookingHandler] Создано бронирование %s: user=%d flight=%d мест=%d",
		booking.Reference, userID, req.FlightID, req.Passengers)
	c.JSON(http.StatusCreated, booking)
}

// GetBooking возвращает бронирование. Клиент видит только свои бронирования.
func (h *BookingHandler) GetBooking(c *gin.Context) {
	bookingID := c.GetUint("booking_id")

	booking, err := h.bookingService.GetByID(bookingID)
	if err != nil {
		respondError(c, err)
		return
	}
	if !h.canAccess(c, booking) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Access denied", "error_type": "forbidden"})
		return
	}
	c.JSON(http.StatusOK, booking)
}

// DownloadConfirmation отдает PDF-подтверждение бронирования
func (h *BookingHandler) DownloadConfirmation(c *gin.Context) {
	bookingID := c.GetUint("booking_id")

	booking, err := h.bookingService.GetByID(bookingID)
	if err != nil {
		respondError(c, err)
		return
	}
	if !h.canAccess(c, booking) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Access denied", "error_type": "forbidden"})
		return
	}
	if booking.Status != entity.BookingStatusConfirmed {
		c.JSON(http.StatusConflict, gin.H{"error": "Booking is not confirmed yet", "error_type": "conflict"})
		return
	}

	c.Header("Content-Type", "application/pdf")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"booking_%s.pdf\"", booking.Reference))
	if err := h.pdfGenerator.WriteBookingConfirmation(c.Writer, booking); err != nil {
		log.Printf("[BookingHandler] Ошибка генерации PDF для бронирования %s: %v", booking.Reference, err)
	}
}

// ListMyBookings возвращает бронирования текущего пользователя
func (h *BookingHandler) ListMyBookings(c *gin.Context) {
	userID := c.GetUint("user_id")
	page, pageSize := parsePagination(c)

	bookings, total, err := h.bookingService.ListForUser(userID, pageSize, (page-1)*pageSize)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.PaginatedBookingsResponse{
		Bookings: helper.ConvertBookingsToSummaries(bookings),
		Total:    total,
		Page:     page,
		PerPage:  pageSize,
	})
}

// ListFlightBookings возвращает бронирования рейса (действие персонала)
func (h *BookingHandler) ListFlightBookings(c *gin.Context) {
	flightID := c.GetUint("flight_id")
	page, pageSize := parsePagination(c)

	bookings, total, err := h.bookingService.ListForFlight(flightID, pageSize, (page-1)*pageSize)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.PaginatedBookingsResponse{
		Bookings: helper.ConvertBookingsToSummaries(bookings),
		Total:    total,
		Page:     page,
		PerPage:  pageSize,
	})
}

// ConfirmBooking подтверждает бронирование (действие персонала)
func (h *BookingHandler) ConfirmBooking(c *gin.Context) {
	bookingID := c.GetUint("booking_id")

	booking, err := h.bookingService.Confirm(bookingID)
	if err != nil {
		respondError(c, err)
		return
	}

	log.Printf("[BookingHandler] Бронирование %s подтверждено", booking.Reference)
	c.JSON(http.StatusOK, booking)
}

// CancelBooking отменяет бронирование. Клиент может отменить только свое.
func (h *BookingHandler) CancelBooking(c *gin.Context) {
	bookingID := c.GetUint("booking_id")
	actorID := c.GetUint("user_id")

	booking, err := h.bookingService.GetByID(bookingID)
	if err != nil {
		respondError(c, err)
		return
	}
	if !h.canAccess(c, booking) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Access denied", "error_type": "forbidden"})
		return
	}

	cancelled, err := h.bookingService.Cancel(bookingID, actorID)
	if err != nil {
		respondError(c, err)
		return
	}

	log.Printf("[BookingHandler] Бронирование %s отменено (actor=%d)", cancelled.Reference, actorID)
	c.JSON(http.StatusOK, cancelled)
}

// canAccess возвращает true, когда бронирование принадлежит текущему
// пользователю или запрос пришел от персонала
func (h *BookingHandler) canAccess(c *gin.Context, booking *entity.Booking) bool {
	if booking.UserID == c.GetUint("user_id") {
		return true
	}
	role := c.GetString("role")
	return role == entity.RoleOperator || role == entity.RoleAdmin
}
