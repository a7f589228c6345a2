package excel

import (
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/TDXM1001/zugou-rental/internal/model"
)

type Generator struct{}

func NewGenerator() *Generator {
	return &Generator{}
}

// Generate builds the contract register workbook: a summary sheet with the
// per-status breakdown and one detail sheet per status.
func (g *Generator) Generate(register model.ContractRegister) ([]byte, error) {
	file := excelize.NewFile()

	summarySheet := "Summary"
	file.SetSheetName("Sheet1", summarySheet)
	if err := g.writeSummary(file, summarySheet, register); err != nil {
		return nil, err
	}

	for _, section := range register.Sections {
		sheetName := sheetNameFor(section.Status)
		file.NewSheet(sheetName)
		if err := g.writeSection(file, sheetName, section); err != nil {
			return nil, err
		}
	}

	file.SetActiveSheet(0)
	buf, err := file.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (g *Generator) writeSummary(file *excelize.File, sheet string, register model.ContractRegister) error {
	set := func(cell string, value interface{}) {
		_ = file.SetCellValue(sheet, cell, value)
	}

	set("A1", "Contract register")
	set("A2", "Scope")
	set("B2", register.Scope)
	set("A3", "Generated")
	set("B3", formatDate(register.GeneratedAt))
	set("A4", "Total contracts")
	set("B4", register.Total)

	tableRow := 6
	set(fmt.Sprintf("A%d", tableRow), "Status")
	set(fmt.Sprintf("B%d", tableRow), "Contracts")
	for i, section := range register.Sections {
		row := tableRow + 1 + i
		set(fmt.Sprintf("A%d", row), string(section.Status))
		set(fmt.Sprintf("B%d", row), len(section.Contracts))
	}

	_ = file.SetColWidth(sheet, "A", "A", 24)
	_ = file.SetColWidth(sheet, "B", "B", 14)
	return nil
}

func (g *Generator) writeSection(file *excelize.File, sheet string, section model.RegisterSection) error {
	set := func(cell string, value interface{}) {
		_ = file.SetCellValue(sheet, cell, value)
	}

	headers := []string{
		"Contract number",
		"Property",
		"Landlord",
		"Tenant",
		"Effective",
		"Expiry",
		"Months",
		"Monthly rent",
		"Deposit",
		"Payment",
	}
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		set(cell, header)
	}

	for i, contract := range section.Contracts {
		row := 2 + i
		set(fmt.Sprintf("A%d", row), contract.ContractNumber)
		set(fmt.Sprintf("B%d", row), contract.PropertyID)
		set(fmt.Sprintf("C%d", row), contract.LandlordID)
		set(fmt.Sprintf("D%d", row), contract.TenantID)
		set(fmt.Sprintf("E%d", row), formatDate(contract.EffectiveDate))
		set(fmt.Sprintf("F%d", row), formatDate(contract.ExpiryDate))
		set(fmt.Sprintf("G%d", row), contract.LeaseDuration)
		set(fmt.Sprintf("H%d", row), formatMoney(contract.MonthlyRent))
		set(fmt.Sprintf("I%d", row), formatMoney(contract.Deposit))
		set(fmt.Sprintf("J%d", row), string(contract.PaymentMethod))
	}

	_ = file.SetColWidth(sheet, "A", "A", 20)
	_ = file.SetColWidth(sheet, "B", "D", 12)
	_ = file.SetColWidth(sheet, "E", "F", 14)
	_ = file.SetColWidth(sheet, "G", "J", 14)
	return nil
}

func sheetNameFor(status model.ContractStatus) string {
	return "Status - " + string(status)
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02")
}

// formatMoney renders integer minor units as a decimal amount.
func formatMoney(minor int64) string {
	return fmt.Sprintf("%d.%02d", minor/100, minor%100)
}
