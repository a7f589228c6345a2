package pdf

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/TDXM1001/zugou-rental/internal/model"
)

type Generator struct {
	fontName string
}

func NewGenerator() (*Generator, error) {
	return &Generator{fontName: "Helvetica"}, nil
}

// Generate renders the printable lease agreement for a contract.
func (g *Generator) Generate(doc model.LeaseDocument) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.AddPage()

	pdf.SetFont(g.fontName, "B", 14)
	pdf.CellFormat(0, 10, "Residential Lease Agreement", "", 1, "C", false, 0, "")

	pdf.SetFont(g.fontName, "", 11)
	pdf.CellFormat(0, 6, fmt.Sprintf("Contract No. %s, signed %s", doc.Contract.ContractNumber, formatDate(doc.Contract.SignedDate)), "", 1, "C", false, 0, "")
	pdf.CellFormat(0, 6, fmt.Sprintf("Status: %s", doc.Contract.Status), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	addPartyBlock(pdf, g.fontName, "Landlord", doc.Landlord)
	pdf.Ln(2)
	addPartyBlock(pdf, g.fontName, "Tenant", doc.Tenant)
	pdf.Ln(4)

	pdf.SetFont(g.fontName, "B", 12)
	pdf.CellFormat(0, 8, "Premises", "", 1, "L", false, 0, "")
	pdf.SetFont(g.fontName, "", 11)
	pdf.MultiCell(0, 5, fmt.Sprintf("%s, %s", safeValue(doc.Property.Title), safeValue(doc.Property.Address)), "", "L", false)
	pdf.Ln(2)

	pdf.SetFont(g.fontName, "B", 12)
	pdf.CellFormat(0, 8, "Lease term", "", 1, "L", false, 0, "")
	pdf.SetFont(g.fontName, "", 11)
	pdf.CellFormat(0, 6, fmt.Sprintf("From %s to %s (%d months)",
		formatDate(doc.Contract.EffectiveDate),
		formatDate(doc.Contract.ExpiryDate),
		doc.Contract.LeaseDuration,
	), "", 1, "L", false, 0, "")
	pdf.Ln(2)

	pdf.SetFont(g.fontName, "B", 12)
	pdf.CellFormat(0, 8, "Payments", "", 1, "L", false, 0, "")
	pdf.SetFont(g.fontName, "", 10)

	headers := []string{"Item", "Amount", "Schedule"}
	colWidths := []float64{90, 45, 45}
	drawTableRow(pdf, g.fontName, headers, colWidths, true)
	drawTableRow(pdf, g.fontName, []string{"Monthly rent", formatMoney(doc.Contract.MonthlyRent), scheduleLabel(doc.Contract)}, colWidths, false)
	drawTableRow(pdf, g.fontName, []string{"Deposit", formatMoney(doc.Contract.Deposit), "on signing"}, colWidths, false)
	if doc.Contract.ManagementFee > 0 {
		drawTableRow(pdf, g.fontName, []string{"Management fee", formatMoney(doc.Contract.ManagementFee), scheduleLabel(doc.Contract)}, colWidths, false)
	}
	if doc.Contract.OtherFees > 0 {
		drawTableRow(pdf, g.fontName, []string{"Other fees", formatMoney(doc.Contract.OtherFees), scheduleLabel(doc.Contract)}, colWidths, false)
	}
	pdf.Ln(2)

	if len(doc.Contract.Terms) > 0 {
		pdf.SetFont(g.fontName, "B", 12)
		pdf.CellFormat(0, 8, "Additional terms", "", 1, "L", false, 0, "")
		pdf.SetFont(g.fontName, "", 10)
		for key, value := range doc.Contract.Terms {
			pdf.MultiCell(0, 5, fmt.Sprintf("%s: %s", key, value), "", "L", false)
		}
		pdf.Ln(2)
	}

	if strings.TrimSpace(doc.Contract.Notes) != "" {
		pdf.SetFont(g.fontName, "B", 12)
		pdf.CellFormat(0, 8, "Notes", "", 1, "L", false, 0, "")
		pdf.SetFont(g.fontName, "", 10)
		pdf.MultiCell(0, 5, doc.Contract.Notes, "", "L", false)
		pdf.Ln(2)
	}

	pdf.Ln(4)
	pdf.SetFont(g.fontName, "B", 12)
	pdf.CellFormat(0, 8, "Signatures", "", 1, "L", false, 0, "")
	signatureBlock(pdf, g.fontName, "Landlord", doc.Landlord.Name)
	signatureBlock(pdf, g.fontName, "Tenant", doc.Tenant.Name)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func addPartyBlock(pdf *gofpdf.Fpdf, fontName, title string, user model.User) {
	pdf.SetFont(fontName, "B", 11)
	pdf.CellFormat(0, 6, title, "", 1, "L", false, 0, "")
	pdf.SetFont(fontName, "", 10)
	pdf.MultiCell(0, 5, fmt.Sprintf("%s (user #%d)", safeValue(user.Name), user.ID), "", "L", false)
}

func drawTableRow(pdf *gofpdf.Fpdf, fontName string, cols []string, widths []float64, header bool) {
	style := ""
	if header {
		style = "B"
	}
	pdf.SetFont(fontName, style, 10)
	for i, col := range cols {
		align := "L"
		if i == 1 {
			align = "R"
		}
		pdf.CellFormat(widths[i], 8, col, "1", 0, align, false, 0, "")
	}
	pdf.Ln(-1)
}

func signatureBlock(pdf *gofpdf.Fpdf, fontName, label, name string) {
	pdf.SetFont(fontName, "", 11)
	pdf.CellFormat(0, 6, fmt.Sprintf("%s: ______________________ /%s/", label, safeValue(name)), "", 1, "L", false, 0, "")
}

func scheduleLabel(contract model.Contract) string {
	switch contract.PaymentMethod {
	case model.PaymentMonthly:
		return fmt.Sprintf("monthly, day %d", contract.PaymentDay)
	case model.PaymentQuarterly:
		return fmt.Sprintf("quarterly, day %d", contract.PaymentDay)
	case model.PaymentSemiAnnually:
		return fmt.Sprintf("every six months, day %d", contract.PaymentDay)
	case model.PaymentAnnually:
		return fmt.Sprintf("annually, day %d", contract.PaymentDay)
	default:
		return string(contract.PaymentMethod)
	}
}

func safeValue(value string) string {
	if strings.TrimSpace(value) == "" {
		return "-"
	}
	return value
}

func formatMoney(minor int64) string {
	return fmt.Sprintf("%d.%02d", minor/100, minor%100)
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format("2006-01-02")
}
