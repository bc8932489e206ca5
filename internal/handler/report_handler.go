package handler

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"

	"github.com/yourusername/charter-api/internal/domain/entity"
	"github.com/yourusername/charter-api/internal/service"
)

// ReportHandler формирует отчёты по бронированиям (действия персонала)
type ReportHandler struct {
	bookingService *service.BookingService
}

// NewReportHandler создает новый обработчик отчётов
func NewReportHandler(bookingService *service.BookingService) *ReportHandler {
	return &ReportHandler{bookingService: bookingService}
}

// ExportBookings выгружает бронирования за период в Excel.
// Параметры from/to — даты в формате RFC3339; по умолчанию последние 30 дней.
func (h *ReportHandler) ExportBookings(c *gin.Context) {
	to := time.Now()
	from := to.AddDate(0, 0, -30)

	if raw := c.Query("from"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "from must be RFC3339"})
			return
		}
		from = t
	}
	if raw := c.Query("to"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "to must be RFC3339"})
			return
		}
		to = t
	}
	if !from.Before(to) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "from must precede to"})
		return
	}

	bookings, err := h.bookingService.ListForPeriod(from, to)
	if err != nil {
		respondError(c, err)
		return
	}

	filename := fmt.Sprintf("bookings_%s_%s", from.Format("20060102"), to.Format("20060102"))
	h.exportXLSX(c, bookings, filename)
}

// exportXLSX пишет бронирования в Excel через StreamWriter — эффективно
// для больших выгрузок
func (h *ReportHandler) exportXLSX(c *gin.Context, bookings []entity.Booking, filename string) {
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s.xlsx\"", filename))

	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Bookings"
	f.SetSheetName("Sheet1", sheetName)

	sw, err := f.NewStreamWriter(sheetName)
	if err != nil {
		log.Printf("[ReportHandler] Ошибка создания StreamWriter: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create Excel file"})
		return
	}

	// Заголовки
	headers := []interface{}{"Reference", "Customer", "Email", "Route", "Departure", "Passengers", "Total", "Status", "Created"}
	if err := sw.SetRow("A1", headers); err != nil {
		log.Printf("[ReportHandler] Ошибка записи заголовков: %v", err)
	}

	// Данные
	for i, b := range bookings {
		rowNum := i + 2 // Начинаем с 2 строки (1 - заголовки)
		cell := fmt.Sprintf("A%d", rowNum)

		customer := ""
		email := ""
		if b.User != nil {
			customer = sanitizeForExcel(b.User.FullName)
			email = sanitizeForExcel(b.User.Email)
		}
		route := ""
		departure := ""
		if b.Flight != nil {
			route = fmt.Sprintf("%s - %s", b.Flight.Origin, b.Flight.Destination)
			departure = b.Flight.DepartureTime.Format("2006-01-02 15:04")
		}

		row := []interface{}{b.Reference, customer, email, route, departure, b.Passengers, b.TotalPrice, b.Status, b.CreatedAt.Format("2006-01-02 15:04")}
		if err := sw.SetRow(cell, row); err != nil {
			log.Printf("[ReportHandler] Ошибка записи строки %d: %v", rowNum, err)
		}
	}

	if err := sw.Flush(); err != nil {
		log.Printf("[ReportHandler] Ошибка при Flush: %v", err)
	}

	// Записываем в response
	if err := f.Write(c.Writer); err != nil {
		log.Printf("[ReportHandler] Ошибка записи Excel в response: %v", err)
	}
}

// sanitizeForExcel экранирует данные для защиты от formula injection в Excel
func sanitizeForExcel(s string) string {
	if len(s) == 0 {
		return s
	}
	// Символы, начинающие формулу в Excel/LibreOffice: = + - @ \t \r
	if s[0] == '=' || s[0] == '+' || s[0] == '-' || s[0] == '@' || s[0] == '\t' || s[0] == '\r' {
		return "'" + s
	}
	return s
}
