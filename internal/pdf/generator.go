package pdf

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/veeduria/obras-service/internal/model"
)

type Generator struct {
	fontName string
}

func NewGenerator() (*Generator, error) {
	return &Generator{fontName: "Helvetica"}, nil
}

// Generate renders the ledger statement: contract header, every surviving
// addition and modification, and the resulting committed value and current
// end date.
func (g *Generator) Generate(statement model.LedgerStatement) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	contract := statement.Contract

	pdf.SetFont(g.fontName, "B", 14)
	pdf.CellFormat(0, 10, tr("Estado del contrato"), "", 1, "C", false, 0, "")

	pdf.SetFont(g.fontName, "", 11)
	pdf.CellFormat(0, 6, tr(contract.Name), "", 1, "C", false, 0, "")
	pdf.CellFormat(0, 6, tr(fmt.Sprintf("Vigencia: %s — %s", formatDate(contract.StartDate), formatDate(contract.CurrentEndDate))), "", 1, "C", false, 0, "")
	pdf.CellFormat(0, 6, tr(fmt.Sprintf("Generado: %s", formatDate(statement.GeneratedAt))), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont(g.fontName, "B", 12)
	pdf.CellFormat(0, 8, tr("Adiciones presupuestales"), "", 1, "L", false, 0, "")
	additionWidths := []float64{35, 45, 100}
	g.drawTableRow(pdf, tr, []string{"Fecha", "Valor", "Observaciones"}, additionWidths, true)
	for _, a := range statement.Additions {
		g.drawTableRow(pdf, tr, []string{
			formatDate(a.EffectiveDate),
			formatAmount(a.Amount),
			a.Note,
		}, additionWidths, false)
	}
	if len(statement.Additions) == 0 {
		g.drawTableRow(pdf, tr, []string{"—", "—", "Sin adiciones registradas"}, additionWidths, false)
	}
	pdf.Ln(4)

	pdf.SetFont(g.fontName, "B", 12)
	pdf.CellFormat(0, 8, tr("Modificaciones de plazo"), "", 1, "L", false, 0, "")
	modWidths := []float64{30, 30, 30, 20, 70}
	g.drawTableRow(pdf, tr, []string{"Tipo", "Inicio", "Fin", "Días", "Observaciones"}, modWidths, true)
	for _, m := range statement.Modifications {
		g.drawTableRow(pdf, tr, []string{
			string(m.Kind),
			formatDate(m.StartDate),
			formatDate(m.EndDate),
			fmt.Sprintf("%d", m.DurationDays),
			m.Note,
		}, modWidths, false)
	}
	if len(statement.Modifications) == 0 {
		g.drawTableRow(pdf, tr, []string{"—", "—", "—", "—", "Sin modificaciones registradas"}, modWidths, false)
	}
	pdf.Ln(6)

	pdf.SetFont(g.fontName, "", 11)
	pdf.CellFormat(0, 6, tr(fmt.Sprintf("Valor inicial: %s", formatAmount(contract.InitialValue))), "", 1, "R", false, 0, "")
	pdf.CellFormat(0, 6, tr(fmt.Sprintf("Valor comprometido vigente: %s", formatAmount(contract.CommittedValue))), "", 1, "R", false, 0, "")
	pdf.CellFormat(0, 6, tr(fmt.Sprintf("Fecha de terminación inicial: %s", formatDate(contract.InitialEndDate))), "", 1, "R", false, 0, "")
	pdf.CellFormat(0, 6, tr(fmt.Sprintf("Fecha de terminación vigente: %s", formatDate(contract.CurrentEndDate))), "", 1, "R", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (g *Generator) drawTableRow(pdf *gofpdf.Fpdf, tr func(string) string, cols []string, widths []float64, header bool) {
	style := ""
	if header {
		style = "B"
	}
	pdf.SetFont(g.fontName, style, 10)
	for i, col := range cols {
		align := "L"
		if i > 0 && i < len(cols)-1 {
			align = "R"
		}
		pdf.CellFormat(widths[i], 8, tr(col), "1", 0, align, false, 0, "")
	}
	pdf.Ln(-1)
}

func formatAmount(value int64) string {
	return fmt.Sprintf("$%d", value)
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return "—"
	}
	return t.Format("2006-01-02")
}
