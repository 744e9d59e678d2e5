package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMonth(t *testing.T) {
	m, err := ParseMonth("2024-02")
	require.NoError(t, err)

	assert.Equal(t, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), m.Start())
	assert.Equal(t, time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC), m.End())
	assert.Len(t, m.Days(), 29)
	assert.Equal(t, "2024-02", m.String())
	assert.Equal(t, "fevereiro 2024", m.Label())
}

func TestParseMonth_Invalid(t *testing.T) {
	for _, s := range []string{"", "2024-13", "24-01", "2024/01"} {
		_, err := ParseMonth(s)
		assert.Error(t, err, s)
	}
}

func TestMonth_Previous(t *testing.T) {
	m := Month{Year: 2026, Month: time.January}
	assert.Equal(t, Month{Year: 2025, Month: time.December}, m.Previous())
}

func TestDay(t *testing.T) {
	in := time.Date(2026, 10, 18, 23, 59, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2026, 10, 18, 0, 0, 0, 0, time.UTC), Day(in))
}

func TestExpense_IsIncome(t *testing.T) {
	e := &Expense{}
	assert.False(t, e.IsIncome())

	e.Category = &Category{Type: CategoryTypeIncome}
	assert.True(t, e.IsIncome())
}
