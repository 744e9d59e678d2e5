package service

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"pocket-coach/internal/models"

	"github.com/shopspring/decimal"
)

// receiptPrompt asks a vision or text model for the receipt fields as JSON.
const receiptPrompt = `You are a receipt extraction assistant. Analyze the receipt and extract:
- merchant (string)
- total (number, the amount paid)
- date (string, YYYY-MM-DD)
- currency (string, ISO 4217 code such as EUR)
- category (string, one of: Alimentação, Transporte, Casa, Saúde, Lazer, Ginásio, Combustível, Compras, Educação, Outros)
- payment_method (string, one of: Dinheiro, Multibanco, Cartão de Crédito, Cartão de Débito, MB Way, Transferência; empty if unknown)
- items (array of {name, quantity, price})
- confidence (number between 0 and 1, how sure you are about total and date)

Return ONLY valid JSON, without markdown and without comments.`

var receiptDateLayouts = []string{
	models.DateLayout,
	"02/01/2006",
	"02-01-2006",
	"02.01.2006",
	"2006/01/02",
	time.RFC3339,
}

type rawReceiptItem struct {
	Name     string          `json:"name"`
	Quantity json.RawMessage `json:"quantity"`
	Price    json.RawMessage `json:"price"`
}

type rawReceipt struct {
	Merchant      string           `json:"merchant"`
	Total         json.RawMessage  `json:"total"`
	Amount        json.RawMessage  `json:"amount"`
	Date          string           `json:"date"`
	Currency      string           `json:"currency"`
	Category      string           `json:"category"`
	PaymentMethod string           `json:"payment_method"`
	Items         []rawReceiptItem `json:"items"`
	Confidence    *float64         `json:"confidence"`
}

// parseReceiptExtraction turns a model reply into a ReceiptExtraction. It
// tolerates fenced output, prose around the JSON, "amount" instead of
// "total", comma decimals and day-first dates.
func parseReceiptExtraction(content string) (*models.ReceiptExtraction, error) {
	jsonStr, err := extractJSONObject(content)
	if err != nil {
		return nil, err
	}

	var raw rawReceipt
	if err := json.Unmarshal([]byte(jsonStr), &raw); err != nil {
		return nil, fmt.Errorf("failed to parse receipt JSON: %w", err)
	}

	total, ok := parseAmount(raw.Total)
	if !ok {
		total, ok = parseAmount(raw.Amount)
	}
	if !ok || !total.IsPositive() {
		return nil, fmt.Errorf("receipt has no usable total")
	}

	x := &models.ReceiptExtraction{
		Merchant:      sanitizeUTF8(strings.TrimSpace(raw.Merchant)),
		Date:          normalizeReceiptDate(raw.Date),
		Total:         total.Round(2),
		Currency:      normalizeCurrency(raw.Currency),
		Category:      strings.TrimSpace(raw.Category),
		PaymentMethod: canonicalPaymentMethod(raw.PaymentMethod),
		Confidence:    0.5,
	}
	if raw.Confidence != nil {
		x.Confidence = clamp01(*raw.Confidence)
	}

	for _, it := range raw.Items {
		name := strings.TrimSpace(it.Name)
		if name == "" {
			continue
		}
		qty, ok := parseAmount(it.Quantity)
		if !ok {
			qty = decimal.NewFromInt(1)
		}
		price, _ := parseAmount(it.Price)
		x.Items = append(x.Items, models.ReceiptItem{Name: sanitizeUTF8(name), Quantity: qty, Price: price})
	}

	return x, nil
}

func parseAmount(raw json.RawMessage) (decimal.Decimal, bool) {
	s := strings.TrimSpace(string(raw))
	if s == "" || s == "null" {
		return decimal.Zero, false
	}
	s = strings.Trim(s, `"`)
	s = strings.NewReplacer("€", "", "EUR", "", " ", "", " ", "").Replace(s)
	d, err := decimal.NewFromString(normalizeSeparators(s))
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

// normalizeSeparators rewrites a localized number so the decimal separator is
// "." and grouping separators are gone. When both "," and "." appear the last
// one is the decimal separator. A lone separator repeated, or a lone comma
// followed by exactly three digits after a non-zero group, is grouping.
func normalizeSeparators(s string) string {
	comma, dot := strings.LastIndex(s, ","), strings.LastIndex(s, ".")
	switch {
	case comma >= 0 && dot >= 0:
		if comma > dot {
			// 1.234,56
			return strings.ReplaceAll(strings.ReplaceAll(s, ".", ""), ",", ".")
		}
		// 1,234.56
		return strings.ReplaceAll(s, ",", "")
	case comma >= 0:
		if strings.Count(s, ",") > 1 || isThousandsGroup(s, comma) {
			return strings.ReplaceAll(s, ",", "")
		}
		return strings.Replace(s, ",", ".", 1)
	case dot >= 0 && strings.Count(s, ".") > 1:
		return strings.ReplaceAll(s, ".", "")
	}
	return s
}

func isThousandsGroup(s string, sep int) bool {
	head, tail := strings.TrimLeft(s[:sep], "+-"), s[sep+1:]
	return len(tail) == 3 && head != "" && head != "0" && len(head) <= 3
}

func normalizeReceiptDate(s string) string {
	s = strings.TrimSpace(s)
	for _, layout := range receiptDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format(models.DateLayout)
		}
	}
	return ""
}

func normalizeCurrency(s string) string {
	s = strings.ToUpper(strings.TrimSpace(s))
	switch s {
	case "€":
		return "EUR"
	case "$":
		return "USD"
	case "£":
		return "GBP"
	}
	if len(s) == 3 {
		return s
	}
	return ""
}

func canonicalPaymentMethod(s string) string {
	s = strings.TrimSpace(s)
	for _, m := range models.PaymentMethods {
		if strings.EqualFold(m, s) {
			return m
		}
	}
	return ""
}

func clamp01(f float64) float64 {
	switch {
	case f < 0:
		return 0
	case f > 1:
		return 1
	}
	return f
}
