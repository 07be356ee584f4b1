package infra

// pdf.go renders the end-of-day closing report with go-pdf/fpdf.
// Layout (A5 portrait):
//   - Store header and commercial date
//   - Closing metadata (range, closed at, sales count)
//   - Totals block: gross, cash, electronic, expenses, net
//   - Per-channel payment table
//
// The file is saved to storagePath/cierre_{fecha}.pdf.

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/Lorenara04/SAN-ROQUE-MB/internal/dto"

	"github.com/go-pdf/fpdf"
	"github.com/shopspring/decimal"
)

const nombreNegocio = "San Roque Minimarket"

// GenerateCierrePDF writes the closing report and returns the file path.
// storagePath is created if needed.
func GenerateCierrePDF(c *dto.CierreResponse, storagePath string) (string, error) {
	if err := os.MkdirAll(storagePath, 0755); err != nil {
		return "", fmt.Errorf("pdf: create storage dir: %w", err)
	}

	filePath := filepath.Join(storagePath, fmt.Sprintf("cierre_%s.pdf", c.FechaComercial))

	pdf := fpdf.New("P", "mm", "A5", "")
	pdf.SetMargins(10, 10, 10)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pageW, _ := pdf.GetPageSize()
	contentW := pageW - 20

	// ── Header ───────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(contentW, 8, tr(nombreNegocio), "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(contentW, 6, tr("Cierre de caja "+c.FechaComercial), "", 1, "C", false, 0, "")
	pdf.Ln(3)

	pdf.SetFont("Helvetica", "", 8)
	pdf.CellFormat(contentW, 4, fmt.Sprintf("Jornada: %s a %s",
		c.RangoInicio.Format("02/01/2006 15:04"), c.RangoFin.Format("02/01/2006 15:04")), "", 1, "L", false, 0, "")
	pdf.CellFormat(contentW, 4, "Cerrado: "+c.CerradoAt.Format("02/01/2006 15:04"), "", 1, "L", false, 0, "")
	pdf.CellFormat(contentW, 4, fmt.Sprintf("Ventas registradas: %d", c.Ventas), "", 1, "L", false, 0, "")
	pdf.Ln(2)
	pdf.Line(10, pdf.GetY(), pageW-10, pdf.GetY())
	pdf.Ln(3)

	// ── Totals ───────────────────────────────────────────────────────────────
	labelW := contentW * 0.6
	valueW := contentW * 0.4
	fila := func(label string, v decimal.Decimal, bold bool) {
		style := ""
		if bold {
			style = "B"
		}
		pdf.SetFont("Helvetica", style, 9)
		pdf.CellFormat(labelW, 6, tr(label), "", 0, "L", false, 0, "")
		pdf.CellFormat(valueW, 6, "$"+v.StringFixed(2), "", 1, "R", false, 0, "")
	}
	fila("Total bruto", c.TotalBruto, true)
	fila("Efectivo", c.TotalEfectivo, false)
	fila("Electronico", c.TotalElectronico, false)
	fila("Egresos", c.TotalEgresos, false)
	fila("Saldo neto", c.SaldoNeto, true)

	// ── Per channel ──────────────────────────────────────────────────────────
	if len(c.Pagos) > 0 {
		pdf.Ln(3)
		pdf.SetFont("Helvetica", "B", 8)
		pdf.CellFormat(labelW, 5, "Medio de pago", "B", 0, "L", false, 0, "")
		pdf.CellFormat(valueW, 5, "Monto", "B", 1, "R", false, 0, "")

		medios := make([]string, 0, len(c.Pagos))
		for m := range c.Pagos {
			medios = append(medios, m)
		}
		sort.Strings(medios)

		pdf.SetFont("Helvetica", "", 8)
		for _, m := range medios {
			pdf.CellFormat(labelW, 5, tr(m), "", 0, "L", false, 0, "")
			pdf.CellFormat(valueW, 5, "$"+c.Pagos[m].StringFixed(2), "", 1, "R", false, 0, "")
		}
	}

	if err := pdf.OutputFileAndClose(filePath); err != nil {
		return "", fmt.Errorf("pdf: write file: %w", err)
	}
	return filePath, nil
}
