package pdf

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/jung-kurt/gofpdf"

	"carrental-backend/internal/domain"
)

// Generator renders rental contracts with the core Helvetica font.
type Generator struct {
	company  string
	compress bool
}

func NewGenerator(company string) *Generator {
	if company == "" {
		company = "Car Rental"
	}
	return &Generator{company: company, compress: true}
}

func (g *Generator) Contract(doc *domain.ContractDocument) ([]byte, error) {
	if doc == nil || doc.Rental == nil {
		return nil, fmt.Errorf("contract document has no rental")
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetCompression(g.compress)
	pdf.SetTitle(fmt.Sprintf("Rental contract %d", doc.Rental.ID), true)
	pdf.SetMargins(15, 15, 15)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 10, tr(g.company+" - Vehicle Rental Agreement"), "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(0, 6, fmt.Sprintf("Contract No. %06d    Issued %s", doc.Rental.ID, doc.Issued.Format("2006-01-02 15:04")), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	section(pdf, tr, "Customer")
	for _, line := range customerLines(doc) {
		pdf.MultiCell(0, 5, tr(line), "", "L", false)
	}
	pdf.Ln(2)

	section(pdf, tr, "Vehicle")
	pdf.MultiCell(0, 5, tr(vehicleLine(doc.Car)), "", "L", false)
	pdf.Ln(2)

	section(pdf, tr, "Rental period")
	r := doc.Rental
	pdf.MultiCell(0, 5, tr(fmt.Sprintf("Pickup: %s %s", r.StartDate, r.StartTime)), "", "L", false)
	pdf.MultiCell(0, 5, tr(fmt.Sprintf("Return: %s %s", r.EndDate, r.EndTime)), "", "L", false)
	pdf.Ln(2)

	section(pdf, tr, "Charges")
	widths := []float64{120, 60}
	row(pdf, tr, []string{"Item", "Amount"}, widths, true)
	row(pdf, tr, []string{fmt.Sprintf("Daily rate %s", money(r.PricePerDay)), ""}, widths, false)
	for _, opt := range doc.Options {
		row(pdf, tr, []string{"Option: " + opt.Label, optionTerms(opt)}, widths, false)
	}
	row(pdf, tr, []string{"Subtotal", money(r.Subtotal)}, widths, false)
	if r.TaxesFees > 0 {
		row(pdf, tr, []string{"Taxes and fees", money(r.TaxesFees)}, widths, false)
	}
	if r.AdditionalTaxes > 0 {
		row(pdf, tr, []string{"Additional taxes", money(r.AdditionalTaxes)}, widths, false)
	}
	row(pdf, tr, []string{"Total", money(r.TotalAmount)}, widths, true)
	pdf.Ln(6)

	if doc.Request != nil && strings.TrimSpace(doc.Request.Comment) != "" {
		section(pdf, tr, "Notes")
		pdf.MultiCell(0, 5, tr(doc.Request.Comment), "", "L", false)
		pdf.Ln(4)
	}

	section(pdf, tr, "Signatures")
	pdf.CellFormat(0, 8, "Company: ______________________", "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 8, "Customer: ______________________", "", 1, "L", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render contract: %w", err)
	}
	return buf.Bytes(), nil
}

func section(pdf *gofpdf.Fpdf, tr func(string) string, title string) {
	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(0, 8, tr(title), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
}

func row(pdf *gofpdf.Fpdf, tr func(string) string, cols []string, widths []float64, bold bool) {
	style := ""
	if bold {
		style = "B"
	}
	pdf.SetFont("Helvetica", style, 10)
	for i, col := range cols {
		align := "L"
		if i > 0 {
			align = "R"
		}
		pdf.CellFormat(widths[i], 7, tr(col), "1", 0, align, false, 0, "")
	}
	pdf.Ln(-1)
	pdf.SetFont("Helvetica", "", 10)
}

func customerLines(doc *domain.ContractDocument) []string {
	if req := doc.Request; req != nil {
		return []string{
			req.CustomerName(),
			"Email: " + req.CustomerEmail,
			"Phone: " + orDash(req.CustomerPhone),
		}
	}
	return []string{
		orDash(doc.Rental.CustomerName),
		"Phone: " + orDash(doc.Rental.CustomerPhone),
	}
}

func vehicleLine(car *domain.Car) string {
	if car == nil {
		return "-"
	}
	line := car.DisplayName()
	if car.Year > 0 {
		line += fmt.Sprintf(" (%d)", car.Year)
	}
	if car.Seats > 0 {
		line += fmt.Sprintf(", %d seats", car.Seats)
	}
	return line
}

func optionTerms(opt domain.RentalOption) string {
	switch opt.PricingMode {
	case domain.OptionPricingPercentage:
		return fmt.Sprintf("%.0f%% of daily rate", opt.Rate*100)
	case domain.OptionPricingFixedDaily:
		return money(opt.Rate) + " per day"
	default:
		return "included"
	}
}

func money(v float64) string {
	return fmt.Sprintf("%.2f", v)
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}
