package excel

import (
	"fmt"
	"sort"

	"github.com/xuri/excelize/v2"

	"carrental-backend/internal/domain"
)

const (
	rentalsSheet = "Rentals"
	summarySheet = "Summary"
)

var rentalHeaders = []string{
	"Rental ID", "Request ID", "Car", "Customer", "Phone",
	"Pickup", "Return", "Status", "Price per day", "Subtotal", "Taxes", "Total",
}

// Generator builds the rentals export workbook.
type Generator struct{}

func NewGenerator() *Generator {
	return &Generator{}
}

// Rentals writes one row per rental and a per-status summary. cars is used to
// resolve display names and may be missing entries.
func (g *Generator) Rentals(rentals []domain.Rental, cars map[int32]*domain.Car) ([]byte, error) {
	file := excelize.NewFile()
	defer file.Close()

	if err := file.SetSheetName("Sheet1", rentalsSheet); err != nil {
		return nil, err
	}
	if err := g.writeRentals(file, rentals, cars); err != nil {
		return nil, err
	}

	if _, err := file.NewSheet(summarySheet); err != nil {
		return nil, err
	}
	g.writeSummary(file, rentals)

	file.SetActiveSheet(0)
	buf, err := file.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func (g *Generator) writeRentals(file *excelize.File, rentals []domain.Rental, cars map[int32]*domain.Car) error {
	for i, h := range rentalHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = file.SetCellValue(rentalsSheet, cell, h)
	}
	bold, err := file.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	_ = file.SetRowStyle(rentalsSheet, 1, 1, bold)

	for i, r := range rentals {
		rowNum := i + 2
		requestID := ""
		if r.RequestID != nil {
			requestID = fmt.Sprintf("%d", *r.RequestID)
		}
		values := []interface{}{
			r.ID,
			requestID,
			carName(cars, r.CarID),
			r.CustomerName,
			r.CustomerPhone,
			r.StartDate + " " + r.StartTime,
			r.EndDate + " " + r.EndTime,
			string(r.Status),
			r.PricePerDay,
			r.Subtotal,
			r.TaxesFees + r.AdditionalTaxes,
			r.TotalAmount,
		}
		cell, _ := excelize.CoordinatesToCellName(1, rowNum)
		if err := file.SetSheetRow(rentalsSheet, cell, &values); err != nil {
			return err
		}
	}

	_ = file.SetColWidth(rentalsSheet, "C", "D", 28)
	_ = file.SetColWidth(rentalsSheet, "F", "G", 18)
	_ = file.SetPanes(rentalsSheet, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"})
	return nil
}

func (g *Generator) writeSummary(file *excelize.File, rentals []domain.Rental) {
	counts := map[domain.RentalStatus]int{}
	revenue := map[domain.RentalStatus]float64{}
	for _, r := range rentals {
		counts[r.Status]++
		revenue[r.Status] += r.TotalAmount
	}
	statuses := make([]string, 0, len(counts))
	for s := range counts {
		statuses = append(statuses, string(s))
	}
	sort.Strings(statuses)

	set := func(cell string, value interface{}) {
		_ = file.SetCellValue(summarySheet, cell, value)
	}
	set("A1", "Status")
	set("B1", "Rentals")
	set("C1", "Total amount")

	var total float64
	for i, s := range statuses {
		row := i + 2
		set(fmt.Sprintf("A%d", row), s)
		set(fmt.Sprintf("B%d", row), counts[domain.RentalStatus(s)])
		set(fmt.Sprintf("C%d", row), revenue[domain.RentalStatus(s)])
		total += revenue[domain.RentalStatus(s)]
	}
	last := len(statuses) + 2
	set(fmt.Sprintf("A%d", last), "All")
	set(fmt.Sprintf("B%d", last), len(rentals))
	set(fmt.Sprintf("C%d", last), total)
	_ = file.SetColWidth(summarySheet, "A", "C", 16)
}

func carName(cars map[int32]*domain.Car, id int32) string {
	if c, ok := cars[id]; ok && c != nil {
		return c.DisplayName()
	}
	return fmt.Sprintf("car #%d", id)
}
