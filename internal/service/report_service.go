package service

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"strconv"
	"strings"
	"time"

	"pocket-coach/internal/models"
	"pocket-coach/pkg/metrics"

	"github.com/go-pdf/fpdf"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	ChartPie   = "pie"
	ChartBar   = "bar"
	ChartTable = "table"

	FormatHTML = "html"
	FormatPDF  = "pdf"
)

// Report is a rendered document ready to be sent to the client.
type Report struct {
	ContentType string
	FileName    string
	Body        []byte
}

type reportRow struct {
	Category string
	Amount   string
	Percent  int
	Color    string
}

type reportData struct {
	UserName    string
	MonthLabel  string
	Total       string
	TopCategory string
	Chart       string
	Rows        []reportRow
	GeneratedOn string
}

type ReportService struct {
	userRepo UserRepository
	expenses *ExpenseService
	metrics  *metrics.Metrics
	logger   *zap.Logger
}

func NewReportService(userRepo UserRepository, expenses *ExpenseService, m *metrics.Metrics, logger *zap.Logger) *ReportService {
	return &ReportService{
		userRepo: userRepo,
		expenses: expenses,
		metrics:  m,
		logger:   logger,
	}
}

// Monthly renders the spending report for month as HTML or PDF.
func (s *ReportService) Monthly(ctx context.Context, userID uuid.UUID, month, chart, format string) (*Report, error) {
	m, err := models.ParseMonth(month)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if chart == "" {
		chart = ChartPie
	}
	if chart != ChartPie && chart != ChartBar && chart != ChartTable {
		return nil, fmt.Errorf("%w: chart must be pie, bar or table", ErrInvalidInput)
	}
	if format == "" {
		format = FormatHTML
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}
	stats, err := s.expenses.Stats(ctx, userID, m.Start(), m.End())
	if err != nil {
		return nil, err
	}

	data := buildReportData(user.DisplayName(), m, stats, chart, time.Now())
	fileName := "relatorio-" + m.String()

	var report *Report
	switch format {
	case FormatHTML:
		body, err := renderReportHTML(data)
		if err != nil {
			return nil, err
		}
		report = &Report{ContentType: "text/html; charset=utf-8", FileName: fileName + ".html", Body: body}
	case FormatPDF:
		body, err := renderReportPDF(data)
		if err != nil {
			return nil, err
		}
		report = &Report{ContentType: "application/pdf", FileName: fileName + ".pdf", Body: body}
	default:
		return nil, fmt.Errorf("%w: format must be html or pdf", ErrInvalidInput)
	}

	s.metrics.ReportGenerated(format)
	s.logger.Info("Monthly report generated",
		zap.String("user_id", userID.String()),
		zap.String("month", m.String()),
		zap.String("format", format),
		zap.String("chart", chart),
	)
	return report, nil
}

func buildReportData(userName string, m models.Month, stats *models.ExpenseStats, chart string, now time.Time) reportData {
	data := reportData{
		UserName:    userName,
		MonthLabel:  m.Label(),
		Total:       formatEuro(stats.Total),
		TopCategory: "N/A",
		Chart:       chart,
		GeneratedOn: now.Format("02/01/2006"),
	}
	if len(stats.ByCategory) > 0 {
		top := stats.ByCategory[0]
		data.TopCategory = fmt.Sprintf("%s (%s)", top.Category, formatEuro(top.Amount))
	}
	for _, c := range stats.ByCategory {
		data.Rows = append(data.Rows, reportRow{
			Category: c.Category,
			Amount:   formatEuro(c.Amount),
			Percent:  sharePercent(c.Amount, stats.Total),
			Color:    c.Color,
		})
	}
	return data
}

// sharePercent is part/total as a whole percentage; a zero total gives 0.
func sharePercent(part, total decimal.Decimal) int {
	if !total.IsPositive() {
		return 0
	}
	return int(part.Div(total).Mul(decimal.NewFromInt(100)).Round(0).IntPart())
}

var reportTemplate = template.Must(template.New("report").Parse(`<html>
<head>
<meta charset="utf-8">
<style>
body { font-family: 'Helvetica', sans-serif; padding: 40px; color: #333; }
h1 { color: #d81b60; border-bottom: 2px solid #d81b60; padding-bottom: 10px; }
.summary-card { background-color: #f8f9fa; padding: 15px; border-radius: 8px; margin-bottom: 20px; }
.highlight { color: #d81b60; font-weight: bold; }
.footer { margin-top: 50px; font-size: 12px; color: #666; text-align: center; border-top: 1px solid #eee; padding-top: 10px; }
</style>
</head>
<body>
<h1>Relatório Financeiro Mensal</h1>
<p><strong>Cliente:</strong> {{.UserName}}</p>
<p><strong>Mês de Referência:</strong> {{.MonthLabel}}</p>
<div class="summary-card">
<h2>Resumo</h2>
<p>Total Gasto: <span class="highlight">{{.Total}}</span></p>
<p>Maior Despesa: <span class="highlight">{{.TopCategory}}</span></p>
</div>
{{if eq .Chart "table"}}
<h3>Detalhes por Categoria</h3>
<table style="width: 100%; border-collapse: collapse;">
<tr style="background-color: #fce4ec;">
<th style="text-align: left; padding: 8px;">Categoria</th>
<th style="text-align: right; padding: 8px;">Valor</th>
<th style="text-align: right; padding: 8px;">%</th>
</tr>
{{range .Rows}}<tr>
<td>{{.Category}}</td>
<td style="text-align: right;">{{.Amount}}</td>
<td style="text-align: right;">{{.Percent}}%</td>
</tr>
{{end}}</table>
{{else if eq .Chart "bar"}}
<h3>Gráfico de Barras</h3>
<div style="padding: 10px;">
{{range .Rows}}<div style="margin-bottom: 10px;">
<div style="display: flex; justify-content: space-between; font-size: 12px; margin-bottom: 2px;"><span>{{.Category}}</span><span>{{.Amount}}</span></div>
<div style="width: 100%; background-color: #f1f1f1; height: 10px; border-radius: 5px;">
<div style="width: {{.Percent}}%; background-color: {{.Color}}; height: 100%; border-radius: 5px;"></div>
</div>
</div>
{{end}}</div>
{{else}}
<h3>Distribuição Visual</h3>
<div style="padding: 10px;">
{{range .Rows}}<div style="display: flex; align-items: center; margin-bottom: 5px;">
<span style="display: inline-block; width: 15px; height: 15px; background-color: {{.Color}}; margin-right: 10px; border-radius: 50%;"></span>
<span style="flex: 1;">{{.Category}}</span>
<span>{{.Amount}}</span>
</div>
{{end}}</div>
{{end}}
<div class="footer">Gerado por Pocket Coach - {{.GeneratedOn}}</div>
</body>
</html>
`))

func renderReportHTML(data reportData) ([]byte, error) {
	var buf bytes.Buffer
	if err := reportTemplate.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("failed to render report: %w", err)
	}
	return buf.Bytes(), nil
}

func renderReportPDF(data reportData) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetMargins(20, 20, 20)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 20)
	pdf.SetTextColor(216, 27, 96)
	pdf.CellFormat(0, 12, tr("Relatório Financeiro Mensal"), "B", 1, "L", false, 0, "")
	pdf.Ln(6)

	pdf.SetTextColor(51, 51, 51)
	labelled := func(label, value string) {
		pdf.SetFont("Helvetica", "B", 11)
		pdf.CellFormat(45, 7, tr(label), "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 11)
		pdf.CellFormat(0, 7, tr(value), "", 1, "L", false, 0, "")
	}
	labelled("Cliente:", data.UserName)
	labelled("Mês de Referência:", data.MonthLabel)
	pdf.Ln(4)

	pdf.SetFillColor(248, 249, 250)
	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(0, 9, "Resumo", "", 1, "L", true, 0, "")
	labelled("Total Gasto:", data.Total)
	labelled("Maior Despesa:", data.TopCategory)
	pdf.Ln(6)

	switch data.Chart {
	case ChartTable:
		pdfTable(pdf, tr, data.Rows)
	case ChartBar:
		pdfBars(pdf, tr, data.Rows)
	default:
		pdfLegend(pdf, tr, data.Rows)
	}

	pdf.Ln(12)
	pdf.SetFont("Helvetica", "", 9)
	pdf.SetTextColor(102, 102, 102)
	pdf.CellFormat(0, 6, tr("Gerado por Pocket Coach - "+data.GeneratedOn), "T", 1, "C", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render PDF report: %w", err)
	}
	return buf.Bytes(), nil
}

func pdfTable(pdf *fpdf.Fpdf, tr func(string) string, rows []reportRow) {
	pdf.SetFont("Helvetica", "B", 13)
	pdf.CellFormat(0, 9, "Detalhes por Categoria", "", 1, "L", false, 0, "")

	pdf.SetFillColor(252, 228, 236)
	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(90, 8, "Categoria", "", 0, "L", true, 0, "")
	pdf.CellFormat(50, 8, "Valor", "", 0, "R", true, 0, "")
	pdf.CellFormat(30, 8, "%", "", 1, "R", true, 0, "")

	pdf.SetFont("Helvetica", "", 11)
	for _, r := range rows {
		pdf.CellFormat(90, 7, tr(r.Category), "", 0, "L", false, 0, "")
		pdf.CellFormat(50, 7, tr(r.Amount), "", 0, "R", false, 0, "")
		pdf.CellFormat(30, 7, strconv.Itoa(r.Percent)+"%", "", 1, "R", false, 0, "")
	}
}

func pdfBars(pdf *fpdf.Fpdf, tr func(string) string, rows []reportRow) {
	pdf.SetFont("Helvetica", "B", 13)
	pdf.CellFormat(0, 9, tr("Gráfico de Barras"), "", 1, "L", false, 0, "")

	const width = 170.0
	for _, r := range rows {
		pdf.SetFont("Helvetica", "", 9)
		pdf.CellFormat(width/2, 5, tr(r.Category), "", 0, "L", false, 0, "")
		pdf.CellFormat(width/2, 5, tr(r.Amount), "", 1, "R", false, 0, "")

		x, y := pdf.GetX(), pdf.GetY()
		pdf.SetFillColor(241, 241, 241)
		pdf.Rect(x, y, width, 3, "F")
		cr, cg, cb := hexRGB(r.Color)
		pdf.SetFillColor(cr, cg, cb)
		if r.Percent > 0 {
			pdf.Rect(x, y, width*float64(r.Percent)/100, 3, "F")
		}
		pdf.Ln(6)
	}
}

func pdfLegend(pdf *fpdf.Fpdf, tr func(string) string, rows []reportRow) {
	pdf.SetFont("Helvetica", "B", 13)
	pdf.CellFormat(0, 9, tr("Distribuição Visual"), "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 11)
	for _, r := range rows {
		x, y := pdf.GetX(), pdf.GetY()
		cr, cg, cb := hexRGB(r.Color)
		pdf.SetFillColor(cr, cg, cb)
		pdf.Circle(x+2.5, y+3.5, 2.2, "F")
		pdf.SetX(x + 8)
		pdf.CellFormat(110, 7, tr(r.Category), "", 0, "L", false, 0, "")
		pdf.CellFormat(52, 7, tr(r.Amount), "", 1, "R", false, 0, "")
	}
}

// hexRGB parses #RRGGBB, falling back to grey.
func hexRGB(hex string) (int, int, int) {
	hex = strings.TrimPrefix(hex, "#")
	if len(hex) != 6 {
		return 112, 112, 112
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return 112, 112, 112
	}
	return int(v >> 16 & 0xff), int(v >> 8 & 0xff), int(v & 0xff)
}
