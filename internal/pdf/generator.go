// Package pdf renders invoices as A4 documents in the usual German layout:
// sender line, recipient window, meta box, items table, totals block and a
// footer with company, contact, tax and bank details.
package pdf

import (
	"bytes"

	"github.com/jung-kurt/gofpdf/v2"

	"rechnung-backend/internal/models"
)

const (
	marginLeft  = 20.0
	marginTop   = 20.0
	marginRight = 20.0
	contentW    = 170.0
)

// Column widths of the items table, summing to the content width.
var colWidths = [6]float64{68, 18, 14, 25, 15, 30}

var colTitles = [6]string{"Beschreibung", "Menge", "Einh.", "Einzelpreis", "MwSt.", "Netto"}

type Generator struct{}

func NewGenerator() *Generator {
	return &Generator{}
}

func (g *Generator) Render(inv *models.InvoiceWithDetails, settings *models.UserSettings) ([]byte, error) {
	doc := gofpdf.New("P", "mm", "A4", "")
	tr := doc.UnicodeTranslatorFromDescriptor("")
	doc.SetMargins(marginLeft, marginTop, marginRight)
	doc.SetAutoPageBreak(true, 50)
	doc.AddPage()

	g.senderLine(doc, tr, settings)
	g.recipient(doc, tr, &inv.Customer)
	g.header(doc, tr, inv)
	g.itemsTable(doc, tr, inv.Items)
	g.totals(doc, tr, inv)
	g.notes(doc, tr, inv)
	g.footer(doc, tr, settings)

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (g *Generator) senderLine(doc *gofpdf.Fpdf, tr func(string) string, s *models.UserSettings) {
	parts := []string{s.CompanyName}
	if v := str(s.Street); v != "" {
		parts = append(parts, v)
	}
	if line := joinNonEmpty(" ", str(s.PostalCode), str(s.City)); line != "" {
		parts = append(parts, line)
	}

	doc.SetFont("Helvetica", "", 8)
	doc.SetTextColor(128, 128, 128)
	doc.SetXY(marginLeft, 45)
	doc.CellFormat(contentW, 4, tr(joinNonEmpty(" | ", parts...)), "B", 1, "L", false, 0, "")
	doc.SetTextColor(0, 0, 0)
}

func (g *Generator) recipient(doc *gofpdf.Fpdf, tr func(string) string, c *models.Customer) {
	doc.SetXY(marginLeft, 52)
	doc.SetFont("Helvetica", "", 10)
	doc.CellFormat(100, 5, tr(c.Name), "", 1, "L", false, 0, "")
	if v := str(c.Street); v != "" {
		doc.CellFormat(100, 5, tr(v), "", 1, "L", false, 0, "")
	}
	if line := joinNonEmpty(" ", str(c.PostalCode), str(c.City)); line != "" {
		doc.CellFormat(100, 5, tr(line), "", 1, "L", false, 0, "")
	}
	if c.Country != "" && c.Country != "Deutschland" {
		doc.CellFormat(100, 5, tr(c.Country), "", 1, "L", false, 0, "")
	}
}

// metaRows builds the label/value pairs of the meta box. Due date and the
// customer's VAT id only appear when set.
func metaRows(inv *models.InvoiceWithDetails) [][2]string {
	rows := [][2]string{
		{"Rechnungsnummer", inv.InvoiceNumber},
		{"Rechnungsdatum", FormatDate(inv.InvoiceDate)},
	}
	if v := str(inv.DueDate); v != "" {
		rows = append(rows, [2]string{"Fällig am", FormatDate(v)})
	}
	if v := str(inv.Customer.VatID); v != "" {
		rows = append(rows, [2]string{"USt-IdNr. Kunde", v})
	}
	return rows
}

func (g *Generator) header(doc *gofpdf.Fpdf, tr func(string) string, inv *models.InvoiceWithDetails) {
	doc.SetXY(marginLeft, 90)
	doc.SetFont("Helvetica", "B", 18)
	doc.CellFormat(100, 8, "Rechnung", "", 1, "L", false, 0, "")

	doc.SetFont("Helvetica", "", 10)
	metaY := 90.0
	for _, row := range metaRows(inv) {
		doc.SetXY(120, metaY)
		doc.SetFont("Helvetica", "", 9)
		doc.CellFormat(35, 5, tr(row[0]+":"), "", 0, "L", false, 0, "")
		doc.SetFont("Helvetica", "B", 9)
		doc.CellFormat(35, 5, tr(row[1]), "", 0, "R", false, 0, "")
		metaY += 5
	}
}

func (g *Generator) itemsTable(doc *gofpdf.Fpdf, tr func(string) string, items []models.InvoiceItem) {
	doc.SetXY(marginLeft, 110)

	doc.SetFont("Helvetica", "B", 9)
	doc.SetFillColor(240, 240, 240)
	aligns := [6]string{"L", "R", "L", "R", "R", "R"}
	for i, title := range colTitles {
		doc.CellFormat(colWidths[i], 7, tr(title), "B", 0, aligns[i], true, 0, "")
	}
	doc.Ln(-1)

	doc.SetFont("Helvetica", "", 9)
	for _, item := range items {
		cells := [6]string{
			item.Description,
			formatQuantity(item.Quantity),
			item.Unit,
			FormatEUR(item.UnitPrice),
			formatRate(item.VatRate),
			FormatEUR(item.NetAmount),
		}
		for i, cell := range cells {
			doc.CellFormat(colWidths[i], 6, tr(cell), "B", 0, aligns[i], false, 0, "")
		}
		doc.Ln(-1)
	}
}

func (g *Generator) totals(doc *gofpdf.Fpdf, tr func(string) string, inv *models.InvoiceWithDetails) {
	doc.Ln(4)
	rows := [][2]string{
		{"Nettobetrag", FormatEUR(inv.NetTotal)},
		{"MwSt.", FormatEUR(inv.VatTotal)},
		{"Gesamtbetrag", FormatEUR(inv.GrossTotal)},
	}
	for i, row := range rows {
		bold := i == len(rows)-1
		if bold {
			doc.SetFont("Helvetica", "B", 10)
		} else {
			doc.SetFont("Helvetica", "", 10)
		}
		doc.SetX(marginLeft + 100)
		border := ""
		if bold {
			border = "T"
		}
		doc.CellFormat(40, 6, tr(row[0]), border, 0, "L", false, 0, "")
		doc.CellFormat(30, 6, tr(row[1]), border, 1, "R", false, 0, "")
	}
}

func (g *Generator) notes(doc *gofpdf.Fpdf, tr func(string) string, inv *models.InvoiceWithDetails) {
	notes := str(inv.Notes)
	if notes == "" {
		return
	}
	doc.Ln(8)
	doc.SetFont("Helvetica", "B", 9)
	doc.CellFormat(contentW, 5, "Hinweise", "", 1, "L", false, 0, "")
	doc.SetFont("Helvetica", "", 9)
	doc.MultiCell(contentW, 4.5, tr(notes), "", "L", false)
}

func (g *Generator) footer(doc *gofpdf.Fpdf, tr func(string) string, s *models.UserSettings) {
	columns := [4][]string{
		joinLines(
			s.CompanyName,
			str(s.Street),
			joinNonEmpty(" ", str(s.PostalCode), str(s.City)),
		),
		joinLines(
			prefixed("Tel. ", str(s.Phone)),
			str(s.Email),
		),
		joinLines(
			prefixed("Steuernr. ", str(s.TaxNumber)),
			prefixed("USt-IdNr. ", str(s.VatID)),
		),
		joinLines(
			str(s.BankName),
			prefixed("IBAN ", str(s.IBAN)),
			prefixed("BIC ", str(s.BIC)),
		),
	}

	doc.SetY(-40)
	doc.SetFont("Helvetica", "", 7)
	doc.SetTextColor(128, 128, 128)
	doc.CellFormat(contentW, 2, "", "T", 1, "L", false, 0, "")

	colW := contentW / 4
	top := doc.GetY()
	for i, lines := range columns {
		y := top
		for _, line := range lines {
			doc.SetXY(marginLeft+float64(i)*colW, y)
			doc.CellFormat(colW, 3.5, tr(line), "", 0, "L", false, 0, "")
			y += 3.5
		}
	}
	doc.SetTextColor(0, 0, 0)
}

func str(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func joinNonEmpty(sep string, parts ...string) string {
	out := ""
	for _, p := range parts {
		if p == "" {
			continue
		}
		if out != "" {
			out += sep
		}
		out += p
	}
	return out
}

func joinLines(lines ...string) []string {
	var out []string
	for _, l := range lines {
		if l != "" {
			out = append(out, l)
		}
	}
	return out
}

func prefixed(prefix, v string) string {
	if v == "" {
		return ""
	}
	return prefix + v
}

func formatQuantity(q float64) string {
	s := FormatEUR(q)
	// Quantity uses the same German decimal notation without the currency.
	return s[:len(s)-len(" €")]
}

func formatRate(rate float64) string {
	s := formatQuantity(rate)
	// Whole-number rates print without decimals, e.g. "19%".
	if len(s) > 3 && s[len(s)-3:] == ",00" {
		s = s[:len(s)-3]
	}
	return s + "%"
}
