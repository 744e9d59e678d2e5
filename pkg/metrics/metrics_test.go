package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics_Counters(t *testing.T) {
	m := New()

	m.HabitToggle(true)
	m.HabitToggle(true)
	m.HabitToggle(false)
	m.ReceiptScan("gigachat", "extracted")
	m.ObserveHTTP("GET", "/api/v1/expenses", 200, 15*time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.habitToggles.WithLabelValues("completed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.habitToggles.WithLabelValues("unchecked")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.receiptScans.WithLabelValues("gigachat", "extracted")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.httpRequests.WithLabelValues("GET", "/api/v1/expenses", "200")))
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.HabitToggle(true)
		m.ExpenseCreated("manual")
		m.ObserveLLM("gigachat", "chat", time.Second)
	})
	assert.Nil(t, m.Registry())
}
