package service

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"pocket-coach/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func sampleStats() *models.ExpenseStats {
	return &models.ExpenseStats{
		Total: dec("80"),
		ByCategory: []*models.CategoryTotal{
			{Category: "Alimentação", Amount: dec("60"), Color: "#D4A574"},
			{Category: "Lazer", Amount: dec("20"), Color: "#3A4A5A"},
		},
	}
}

func TestSharePercent(t *testing.T) {
	assert.Equal(t, 75, sharePercent(dec("60"), dec("80")))
	assert.Equal(t, 33, sharePercent(dec("1"), dec("3")))
	assert.Equal(t, 0, sharePercent(dec("10"), decimal.Zero))
}

func TestRenderReportHTML(t *testing.T) {
	m, _ := models.ParseMonth("2026-10")
	now := time.Date(2026, 10, 18, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		chart string
		want  []string
	}{
		{ChartTable, []string{"Detalhes por Categoria", "<td style=\"text-align: right;\">75%</td>", "€60.00"}},
		{ChartBar, []string{"Gráfico de Barras", "width: 25%"}},
		{ChartPie, []string{"Distribuição Visual", "background-color: #D4A574"}},
	}

	for _, tt := range tests {
		t.Run(tt.chart, func(t *testing.T) {
			body, err := renderReportHTML(buildReportData("Ana <Silva>", m, sampleStats(), tt.chart, now))
			require.NoError(t, err)

			html := string(body)
			assert.Contains(t, html, "Relatório Financeiro Mensal")
			assert.Contains(t, html, "Ana &lt;Silva&gt;")
			assert.Contains(t, html, "outubro 2026")
			assert.Contains(t, html, "Total Gasto: <span class=\"highlight\">€80.00</span>")
			assert.Contains(t, html, "Alimentação (€60.00)")
			for _, w := range tt.want {
				assert.Contains(t, html, w)
			}
		})
	}
}

func TestBuildReportData_Empty(t *testing.T) {
	m, _ := models.ParseMonth("2026-10")
	data := buildReportData("Ana", m, &models.ExpenseStats{Total: decimal.Zero}, ChartTable, time.Now())

	assert.Equal(t, "N/A", data.TopCategory)
	assert.Equal(t, "€0.00", data.Total)
	assert.Empty(t, data.Rows)
}

func TestRenderReportPDF(t *testing.T) {
	m, _ := models.ParseMonth("2026-10")
	for _, chart := range []string{ChartPie, ChartBar, ChartTable} {
		body, err := renderReportPDF(buildReportData("Ana", m, sampleStats(), chart, time.Now()))
		require.NoError(t, err)
		assert.True(t, bytes.HasPrefix(body, []byte("%PDF-")), chart)
	}
}

func TestHexRGB(t *testing.T) {
	r, g, b := hexRGB("#D4A574")
	assert.Equal(t, []int{212, 165, 116}, []int{r, g, b})
	r, g, b = hexRGB("nope")
	assert.Equal(t, []int{112, 112, 112}, []int{r, g, b})
}

func TestReportService_Monthly(t *testing.T) {
	users := new(mockUserRepo)
	expenseRepo := new(mockExpenseRepo)
	logger := zap.NewNop()
	expenses := NewExpenseService(expenseRepo, users, NewCategoryService(new(mockCategoryRepo), logger), &recordingPublisher{}, nil, logger)
	svc := NewReportService(users, expenses, nil, logger)

	userID := uuid.New()
	name := "Ana Silva"
	users.On("GetByID", mock.Anything, userID).Return(&models.User{ID: userID, Email: "ana@example.com", FullName: &name}, nil)
	expenseRepo.On("List", mock.Anything, userID, mock.Anything).Return([]*models.Expense{
		expense("12.5", category("Casa", "#5A6A7A", models.CategoryTypeExpense)),
	}, nil)

	report, err := svc.Monthly(context.Background(), userID, "2026-10", "", "")
	require.NoError(t, err)
	assert.Equal(t, "text/html; charset=utf-8", report.ContentType)
	assert.Equal(t, "relatorio-2026-10.html", report.FileName)
	assert.True(t, strings.Contains(string(report.Body), "Ana Silva"))

	report, err = svc.Monthly(context.Background(), userID, "2026-10", ChartBar, FormatPDF)
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", report.ContentType)

	_, err = svc.Monthly(context.Background(), userID, "2026-10", "radar", FormatPDF)
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = svc.Monthly(context.Background(), userID, "10-2026", ChartPie, FormatPDF)
	assert.ErrorIs(t, err, ErrInvalidInput)
}
