package pdf

import (
	"fmt"
	"io"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/yourusername/charter-api/internal/domain/entity"
)

// Generator — интерфейс (удобно мокать в тестах)
type Generator interface {
	WriteBookingConfirmation(w io.Writer, booking *entity.Booking) error
}

// ConfirmationGenerator строит PDF-подтверждение бронирования
type ConfirmationGenerator struct {
	companyName string
}

func NewConfirmationGenerator(companyName string) *ConfirmationGenerator {
	if companyName == "" {
		companyName = "Charter API"
	}
	return &ConfirmationGenerator{companyName: companyName}
}

// WriteBookingConfirmation пишет готовый документ в w. Бронирование должно
// быть загружено вместе с рейсом и пользователем.
func (g *ConfirmationGenerator) WriteBookingConfirmation(w io.Writer, booking *entity.Booking) error {
	if booking == nil || booking.Flight == nil {
		return fmt.Errorf("booking with flight is required")
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(fmt.Sprintf("Booking %s", booking.Reference), false)
	pdf.SetAuthor(g.companyName, false)
	pdf.SetMargins(20, 20, 20)
	pdf.SetAutoPageBreak(true, 20)
	pdf.AddPage()

	// ===== Заголовок
	pdf.SetFont("Helvetica", "B", 18)
	pdf.CellFormat(0, 10, "BOOKING CONFIRMATION", "", 1, "C", false, 0, "")

	pdf.SetFont("Helvetica", "", 12)
	sub := fmt.Sprintf("Ref %s  issued  %s", booking.Reference, time.Now().Format("02.01.2006"))
	pdf.CellFormat(0, 7, sub, "", 1, "C", false, 0, "")
	g.hr(pdf)

	// ===== Пассажир
	if booking.User != nil {
		g.row(pdf, "Passenger", booking.User.FullName)
		g.row(pdf, "Email", booking.User.Email)
	}

	// ===== Рейс
	flight := booking.Flight
	g.row(pdf, "Route", fmt.Sprintf("%s - %s", flight.Origin, flight.Destination))
	g.row(pdf, "Departure", flight.DepartureTime.Format("02.01.2006 15:04 MST"))
	g.row(pdf, "Arrival", flight.ArrivalTime.Format("02.01.2006 15:04 MST"))
	if flight.Aircraft != "" {
		g.row(pdf, "Aircraft", flight.Aircraft)
	}
	g.hr(pdf)

	// ===== Итоги
	g.row(pdf, "Passengers", fmt.Sprintf("%d", booking.Passengers))
	g.row(pdf, "Status", booking.Status)
	g.row(pdf, "Total", fmt.Sprintf("%d KZT", booking.TotalPrice))

	pdf.Ln(8)
	pdf.SetFont("Helvetica", "I", 9)
	pdf.MultiCell(0, 5, "Present this confirmation together with a valid ID at the check-in desk. The booking is subject to the charter terms of carriage.", "", "L", false)

	return pdf.Output(w)
}

func (g *ConfirmationGenerator) row(pdf *gofpdf.Fpdf, label, value string) {
	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(50, 8, label, "", 0, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 11)
	pdf.CellFormat(0, 8, value, "", 1, "L", false, 0, "")
}

func (g *ConfirmationGenerator) hr(pdf *gofpdf.Fpdf) {
	pdf.Ln(3)
	x, y := pdf.GetXY()
	pdf.SetDrawColor(180, 180, 180)
	pdf.Line(x, y, 190, y)
	pdf.Ln(5)
}
