package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-pdf/fpdf"
)

// exportSectionPDF renders a landscape document: title block,
// generation timestamp, a banded table and page-numbered footer.
// Nested columns (image lists, embedded objects) are excluded here;
// the CSV exporter keeps them flattened instead.
func exportSectionPDF(dir, key, title string, tbl tableFacade, all bool) (string, error) {
	headers := tbl.ExportHeaders(false)
	rows := tbl.ExportRows(false, all)
	if len(headers) == 0 {
		return "", fmt.Errorf("no exportable columns for %s", key)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create exports dir: %w", err)
	}
	path := filepath.Join(dir, fmt.Sprintf("%s-%s.pdf", key, exportTimestamp()))

	pdf := fpdf.New("L", "mm", "A4", "")
	// Core fonts are cp1252; the translator keeps currency signs and
	// ellipses readable.
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle(title, false)
	pdf.AliasNbPages("")
	pdf.SetAutoPageBreak(true, 18)
	pdf.SetFooterFunc(func() {
		pdf.SetY(-14)
		pdf.SetFont("Helvetica", "I", 8)
		pdf.SetTextColor(120, 120, 120)
		pdf.CellFormat(0, 8, fmt.Sprintf("Page %d of {nb}", pdf.PageNo()), "", 0, "C", false, 0, "")
	})
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.SetTextColor(20, 20, 20)
	pdf.CellFormat(0, 10, tr(title), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	pdf.SetTextColor(110, 110, 110)
	generated := time.Now().UTC().Format("2006-01-02 15:04 MST")
	pdf.CellFormat(0, 6, fmt.Sprintf("Generated %s - %d rows", generated, len(rows)), "", 1, "L", false, 0, "")
	pdf.Ln(3)

	widths := pdfColumnWidths(pdf, headers, rows)
	writeHeaderRow := func() {
		pdf.SetFont("Helvetica", "B", 9)
		pdf.SetFillColor(63, 81, 181)
		pdf.SetTextColor(255, 255, 255)
		for i, header := range headers {
			pdf.CellFormat(widths[i], 8, tr(truncate(header, 40)), "1", 0, "L", true, 0, "")
		}
		pdf.Ln(-1)
	}
	writeHeaderRow()

	pdf.SetFont("Helvetica", "", 9)
	_, pageHeight := pdf.GetPageSize()
	_, _, _, bottom := pdf.GetMargins()
	for i, row := range rows {
		if pdf.GetY() > pageHeight-bottom-26 {
			pdf.AddPage()
			writeHeaderRow()
			pdf.SetFont("Helvetica", "", 9)
		}
		if i%2 == 1 {
			pdf.SetFillColor(238, 240, 248)
		} else {
			pdf.SetFillColor(255, 255, 255)
		}
		pdf.SetTextColor(30, 30, 30)
		for j, cell := range row {
			if j >= len(widths) {
				break
			}
			pdf.CellFormat(widths[j], 7, tr(truncate(cell, 60)), "1", 0, "L", true, 0, "")
		}
		pdf.Ln(-1)
	}

	if err := pdf.OutputFileAndClose(path); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	return path, nil
}

// pdfColumnWidths distributes the printable width proportionally to
// the longest value each column holds, clamped so no column starves.
func pdfColumnWidths(pdf *fpdf.Fpdf, headers []string, rows [][]string) []float64 {
	pageWidth, _ := pdf.GetPageSize()
	left, _, right, _ := pdf.GetMargins()
	printable := pageWidth - left - right

	longest := make([]int, len(headers))
	for i, header := range headers {
		longest[i] = len(header)
	}
	for _, row := range rows {
		for i, cell := range row {
			if i >= len(longest) {
				break
			}
			length := len(cell)
			if length > 60 {
				length = 60
			}
			if length > longest[i] {
				longest[i] = length
			}
		}
	}

	total := 0
	for _, length := range longest {
		total += length
	}
	widths := make([]float64, len(headers))
	if total == 0 {
		for i := range widths {
			widths[i] = printable / float64(len(headers))
		}
		return widths
	}
	minWidth := 16.0
	for i, length := range longest {
		widths[i] = printable * float64(length) / float64(total)
		if widths[i] < minWidth {
			widths[i] = minWidth
		}
	}
	// Rescale after clamping so the row still fits the page.
	var sum float64
	for _, w := range widths {
		sum += w
	}
	for i := range widths {
		widths[i] = widths[i] * printable / sum
	}
	return widths
}
