package pdf

import (
	"bytes"
	"fmt"
	"os"

	"github.com/jung-kurt/gofpdf"

	"github.com/buildium/backend/internal/domain/invoice"
)

// Page geometry in points on A4 portrait. Rows are drawn by a moving
// cursor; once it passes breakY the engine opens a new page and
// repeats the table header before drawing the next row.
const (
	marginLeft  = 40.0
	marginTop   = 40.0
	marginRight = 40.0
	rowHeight   = 18.0
	breakY      = 720.0
	pageWidth   = 595.28
)

// Column x positions of the line table
var colX = [...]float64{40, 110, 300, 360, 420, 480}

var colLabels = [...]string{"Réf", "Désignation", "Qté", "Unité", "PU HT", "TVA %"}

// Document is the rendered artifact together with layout facts the
// caller can assert on.
type Document struct {
	Data      []byte
	PageCount int
	RowCount  int
}

// Renderer produces the fixed A4 invoice document. Rendering is a pure
// function of the invoice record: amounts are printed as stored, never
// recomputed, and the embedded creation date is derived from the issue
// date so regenerating an invoice yields identical bytes.
type Renderer struct {
	logoPath string
}

// NewRenderer creates a Renderer. logoPath may be empty or point to a
// missing file; the letterhead then falls back to the issuer name.
func NewRenderer(logoPath string) *Renderer {
	return &Renderer{logoPath: logoPath}
}

// Render returns the document bytes only, satisfying the application
// layer's renderer contract.
func (r *Renderer) Render(inv *invoice.Invoice) ([]byte, error) {
	doc, err := r.Layout(inv)
	if err != nil {
		return nil, err
	}
	return doc.Data, nil
}

// Layout renders the invoice and reports the resulting page geometry.
func (r *Renderer) Layout(inv *invoice.Invoice) (*Document, error) {
	doc := gofpdf.New("P", "pt", "A4", "")
	doc.SetCreationDate(inv.IssueDate.UTC())
	// Resource dictionaries are otherwise emitted in map order, which
	// breaks byte-identical regeneration.
	doc.SetCatalogSort(true)
	doc.SetMargins(marginLeft, marginTop, marginRight)
	doc.SetAutoPageBreak(false, 0)
	doc.AliasNbPages("")
	tr := doc.UnicodeTranslatorFromDescriptor("")

	doc.SetFooterFunc(func() {
		doc.SetY(-30)
		doc.SetFont("Helvetica", "I", 8)
		doc.SetTextColor(120, 120, 120)
		doc.CellFormat(0, 10, tr(fmt.Sprintf("Page %d/{nb}", doc.PageNo())), "", 0, "C", false, 0, "")
	})

	doc.AddPage()
	y := r.drawLetterhead(doc, tr, inv)
	y = drawTableHeader(doc, tr, y)

	rows := 0
	for _, line := range inv.Lines {
		if y > breakY {
			doc.AddPage()
			y = drawTableHeader(doc, tr, marginTop)
		}
		drawRow(doc, tr, y, line)
		y += rowHeight
		rows++
	}

	// The totals block, amount in words and closing lines stay
	// together; break early if they would not fit.
	if y > breakY-6*rowHeight {
		doc.AddPage()
		y = marginTop
	}
	y = drawTotals(doc, tr, y+rowHeight, inv.Totals)
	y = drawAmountInWords(doc, tr, y+rowHeight, inv.Totals)
	drawClosing(doc, tr, y+2*rowHeight)

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, fmt.Errorf("rendering invoice %s: %w", inv.Number, err)
	}
	return &Document{
		Data:      buf.Bytes(),
		PageCount: doc.PageCount(),
		RowCount:  rows,
	}, nil
}

// drawLetterhead draws the logo, title, invoice identity and the two
// party blocks. Only the first page carries the letterhead.
func (r *Renderer) drawLetterhead(doc *gofpdf.Fpdf, tr func(string) string, inv *invoice.Invoice) float64 {
	y := marginTop

	if r.logoAvailable() {
		doc.ImageOptions(r.logoPath, marginLeft, y, 120, 0, false, gofpdf.ImageOptions{}, 0, "")
		y += 50
	} else {
		doc.SetFont("Helvetica", "B", 16)
		doc.Text(marginLeft, y+14, tr(inv.Issuer.Name))
		y += 30
	}

	doc.SetFont("Helvetica", "B", 20)
	doc.Text(marginLeft, y+20, "FACTURE")
	doc.SetFont("Helvetica", "", 10)
	doc.Text(400, y+8, tr(fmt.Sprintf("N° : %s", inv.Number)))
	doc.Text(400, y+22, tr(fmt.Sprintf("Date : %s", inv.IssueDate.Format("02/01/2006"))))
	y += 44

	drawParty(doc, tr, y, "Émetteur", inv.Issuer, marginLeft)
	drawParty(doc, tr, y, "Client", inv.Counterparty, 320)
	h := partyBlockHeight(inv.Issuer)
	if ch := partyBlockHeight(inv.Counterparty); ch > h {
		h = ch
	}
	return y + h + 16
}

// partyBlockHeight mirrors drawParty's cursor advance so the two
// blocks can sit side by side.
func partyBlockHeight(p invoice.Party) float64 {
	h := 26.0 + 2*12.0
	for _, opt := range []string{p.ICE, p.RC, p.TaxID, p.Phone, p.Email} {
		if opt != "" {
			h += 12.0
		}
	}
	return h
}

func drawParty(doc *gofpdf.Fpdf, tr func(string) string, y float64, title string, p invoice.Party, x float64) {
	doc.SetFont("Helvetica", "B", 10)
	doc.Text(x, y+10, tr(title))
	y += 26

	doc.SetFont("Helvetica", "", 9)
	write := func(s string) {
		doc.Text(x, y, tr(s))
		y += 12
	}
	write(p.Name)
	write(p.Address)
	if p.ICE != "" {
		write("ICE : " + p.ICE)
	}
	if p.RC != "" {
		write("RC : " + p.RC)
	}
	if p.TaxID != "" {
		write("IF : " + p.TaxID)
	}
	if p.Phone != "" {
		write("Tél : " + p.Phone)
	}
	if p.Email != "" {
		write(p.Email)
	}
}

// drawTableHeader draws the column labels with a rule underneath and
// returns the cursor position of the first row.
func drawTableHeader(doc *gofpdf.Fpdf, tr func(string) string, y float64) float64 {
	doc.SetFont("Helvetica", "B", 9)
	for i, label := range colLabels {
		doc.Text(colX[i], y+12, tr(label))
	}
	doc.SetLineWidth(0.5)
	doc.Line(marginLeft, y+16, pageWidth-marginRight, y+16)
	return y + rowHeight + 4
}

// drawRow prints one line's stored values at the cursor. Quantities
// keep their exact scale; monetary cells round to 2 decimal places
// for display only.
func drawRow(doc *gofpdf.Fpdf, tr func(string) string, y float64, line invoice.ComputedLine) {
	doc.SetFont("Helvetica", "", 9)
	doc.Text(colX[0], y+10, tr(clip(line.Reference, 14)))
	doc.Text(colX[1], y+10, tr(clip(line.Designation, 40)))
	doc.Text(colX[2], y+10, line.Quantity.String())
	doc.Text(colX[3], y+10, tr(clip(line.Unit, 10)))
	doc.Text(colX[4], y+10, line.UnitPriceExcl.StringFixed(2))
	doc.Text(colX[5], y+10, line.TaxRate.StringFixed(2))
}

// drawTotals prints the three aggregate amounts right-aligned.
func drawTotals(doc *gofpdf.Fpdf, tr func(string) string, y float64, totals invoice.Totals) float64 {
	doc.SetLineWidth(0.5)
	doc.Line(320, y-6, pageWidth-marginRight, y-6)

	doc.SetFont("Helvetica", "", 10)
	doc.Text(360, y+10, tr("Total HT"))
	rightText(doc, y+10, totals.ExclAmount().String())
	y += rowHeight
	doc.Text(360, y+10, "TVA")
	rightText(doc, y+10, totals.TaxAmount().String())
	y += rowHeight
	doc.SetFont("Helvetica", "B", 10)
	doc.Text(360, y+10, "Total TTC")
	rightText(doc, y+10, totals.InclAmount().String())
	return y + rowHeight
}

func drawAmountInWords(doc *gofpdf.Fpdf, tr func(string) string, y float64, totals invoice.Totals) float64 {
	words, err := invoice.AmountInWordsMAD(totals.InclAmount())
	if err != nil {
		return y
	}
	doc.SetFont("Helvetica", "I", 9)
	doc.Text(marginLeft, y+10, tr("Arrêtée la présente facture à la somme de : "+words))
	return y + rowHeight
}

func drawClosing(doc *gofpdf.Fpdf, tr func(string) string, y float64) {
	doc.SetFont("Helvetica", "", 9)
	doc.Text(400, y+10, tr("Cachet et signature"))
	doc.SetFont("Helvetica", "I", 9)
	doc.Text(marginLeft, y+40, tr("Merci pour votre confiance."))
}

// rightText right-aligns a string against the table's right edge.
func rightText(doc *gofpdf.Fpdf, y float64, s string) {
	w := doc.GetStringWidth(s)
	doc.Text(pageWidth-marginRight-w, y, s)
}

func clip(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-1]) + "…"
}

func (r *Renderer) logoAvailable() bool {
	if r.logoPath == "" {
		return false
	}
	info, err := os.Stat(r.logoPath)
	return err == nil && !info.IsDir()
}
