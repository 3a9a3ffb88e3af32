package pdf

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"
)

// Generator renders reports; mocked in handler tests.
type Generator interface {
	GeneratePipelineReport(data PipelineReportData) ([]byte, error)
}

type ReportGenerator struct {
	FontPath string // optional TTF, e.g. "assets/fonts/DejaVuSans.ttf"
	fontName string
}

type StatusCount struct {
	Label string
	Count int
}

type PipelineReportData struct {
	GeneratedAt   time.Time
	Leads         []StatusCount
	TotalLeads    int
	Accounts      []StatusCount
	TotalAccounts int
}

// NewReportGenerator uses the built-in Helvetica font unless fontPath names
// a UTF-8 TTF file.
func NewReportGenerator(fontPath string) *ReportGenerator {
	g := &ReportGenerator{FontPath: fontPath, fontName: "Helvetica"}
	if fontPath != "" {
		g.fontName = "DejaVu"
	}
	return g
}

func (g *ReportGenerator) GeneratePipelineReport(data PipelineReportData) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Pipeline report", false)
	pdf.SetAuthor("IRIS AI CRM", false)
	pdf.SetMargins(20, 20, 20)
	pdf.SetAutoPageBreak(true, 20)

	g.addUTF8Font(pdf)
	pdf.AliasNbPages("")
	pdf.SetFooterFunc(func() {
		pdf.SetY(-15)
		pdf.SetFont(g.fontName, "", 10)
		pdf.CellFormat(0, 10, fmt.Sprintf("Page %d/{nb}", pdf.PageNo()), "", 0, "C", false, 0, "")
	})
	pdf.AddPage()

	pdf.SetFont(g.fontName, "B", 18)
	pdf.CellFormat(0, 10, "PIPELINE REPORT", "", 1, "C", false, 0, "")
	pdf.SetFont(g.fontName, "", 12)
	pdf.CellFormat(0, 7, "Generated "+data.GeneratedAt.Format("02.01.2006 15:04 MST"), "", 1, "C", false, 0, "")
	g.hr(pdf)
	pdf.Ln(3)

	g.sectionTitle(pdf, "Leads by status")
	g.countTable(pdf, data.Leads, data.TotalLeads)
	pdf.Ln(2)
	g.hr(pdf)

	g.sectionTitle(pdf, "Accounts by status")
	g.countTable(pdf, data.Accounts, data.TotalAccounts)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pipeline report: %w", err)
	}
	return buf.Bytes(), nil
}

func (g *ReportGenerator) countTable(pdf *gofpdf.Fpdf, rows []StatusCount, total int) {
	for _, r := range rows {
		g.kvLine(pdf, r.Label, fmt.Sprintf("%d", r.Count))
	}
	pdf.SetFont(g.fontName, "B", 11)
	pdf.CellFormat(60, 7, "Total:", "T", 0, "L", false, 0, "")
	pdf.CellFormat(0, 7, fmt.Sprintf("%d", total), "T", 1, "L", false, 0, "")
}

func (g *ReportGenerator) sectionTitle(pdf *gofpdf.Fpdf, s string) {
	pdf.SetFont(g.fontName, "B", 12)
	pdf.CellFormat(0, 7, s, "", 1, "L", false, 0, "")
	pdf.SetFont(g.fontName, "", 11)
}

func (g *ReportGenerator) kvLine(pdf *gofpdf.Fpdf, key, val string) {
	pdf.SetFont(g.fontName, "", 11)
	pdf.CellFormat(60, 6, key+":", "", 0, "L", false, 0, "")
	pdf.CellFormat(0, 6, val, "", 1, "L", false, 0, "")
}

func (g *ReportGenerator) hr(pdf *gofpdf.Fpdf) {
	y := pdf.GetY() + 1.5
	pdf.SetLineWidth(0.2)
	pdf.Line(20, y, 190, y)
	pdf.SetY(y + 2)
}

func (g *ReportGenerator) addUTF8Font(pdf *gofpdf.Fpdf) {
	if g.FontPath == "" {
		return
	}
	pdf.AddUTF8Font(g.fontName, "", g.FontPath)
	pdf.AddUTF8Font(g.fontName, "B", g.FontPath)
}
