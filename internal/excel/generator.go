package excel

import (
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/veeduria/obras-service/internal/model"
)

type Generator struct{}

func NewGenerator() *Generator {
	return &Generator{}
}

// Generate builds the progress statement workbook: a summary sheet with the
// contract ledger figures and latest classification, plus a sheet listing
// every report with its accumulated values.
func (g *Generator) Generate(statement model.ProgressStatement) ([]byte, error) {
	file := excelize.NewFile()

	summarySheet := "Resumen"
	file.SetSheetName("Sheet1", summarySheet)
	if err := g.writeSummary(file, summarySheet, statement); err != nil {
		return nil, err
	}

	reportsSheet := "Avances"
	file.NewSheet(reportsSheet)
	if err := g.writeReports(file, reportsSheet, statement); err != nil {
		return nil, err
	}

	file.SetActiveSheet(0)
	buf, err := file.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (g *Generator) writeSummary(file *excelize.File, sheet string, statement model.ProgressStatement) error {
	set := func(cell string, value interface{}) {
		_ = file.SetCellValue(sheet, cell, value)
	}

	contract := statement.Contract
	set("A1", "Contrato")
	set("B1", contract.Name)
	set("A2", "Valor inicial")
	set("B2", contract.InitialValue)
	set("A3", "Valor comprometido")
	set("B3", contract.CommittedValue)
	set("A4", "Fecha de inicio")
	set("B4", formatDate(contract.StartDate))
	set("A5", "Fecha de terminación vigente")
	set("B5", formatDate(contract.CurrentEndDate))
	set("A6", "Generado")
	set("B6", formatDateTime(statement.GeneratedAt))

	if len(statement.Entries) > 0 {
		latest := statement.Entries[len(statement.Entries)-1]
		set("A8", "Avance físico acumulado (%)")
		set("B8", latest.AccumulatedPhysicalPercent)
		set("A9", "Avance financiero acumulado (%)")
		set("B9", latest.FinancialPercent)
		set("A10", "Estado")
		set("B10", string(latest.Status))
	}

	_ = file.SetColWidth(sheet, "A", "A", 36)
	_ = file.SetColWidth(sheet, "B", "B", 24)
	return nil
}

func (g *Generator) writeReports(file *excelize.File, sheet string, statement model.ProgressStatement) error {
	set := func(cell string, value interface{}) {
		_ = file.SetCellValue(sheet, cell, value)
	}

	headers := []string{
		"Fecha",
		"Valor del periodo",
		"Avance físico del periodo (%)",
		"Valor acumulado",
		"Avance físico acumulado (%)",
		"Avance financiero acumulado (%)",
		"Estado",
		"Observaciones",
	}
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		set(cell, header)
	}

	for i, entry := range statement.Entries {
		row := i + 2
		set(fmt.Sprintf("A%d", row), formatDateTime(entry.Report.CreatedAt))
		set(fmt.Sprintf("B%d", row), entry.Report.Value)
		set(fmt.Sprintf("C%d", row), entry.Report.PhysicalPercent)
		set(fmt.Sprintf("D%d", row), entry.AccumulatedValue)
		set(fmt.Sprintf("E%d", row), entry.AccumulatedPhysicalPercent)
		set(fmt.Sprintf("F%d", row), entry.FinancialPercent)
		set(fmt.Sprintf("G%d", row), string(entry.Status))
		set(fmt.Sprintf("H%d", row), entry.Report.Note)
	}

	_ = file.SetColWidth(sheet, "A", "A", 20)
	_ = file.SetColWidth(sheet, "B", "F", 22)
	_ = file.SetColWidth(sheet, "G", "G", 12)
	_ = file.SetColWidth(sheet, "H", "H", 40)
	return nil
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02")
}

func formatDateTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02 15:04:05")
}
