package fetcher

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestMetricsCollector_RunLifecycle(t *testing.T) {
	t.Parallel()

	mc := NewMetricsCollector()

	mc.StartFetch("B0EXAMPLE1")
	mc.RecordSuccess("B0EXAMPLE1", decimal.NewFromFloat(2499))
	mc.StartFetch("B0EXAMPLE2")
	mc.RecordFailure("B0EXAMPLE2", errors.New("marketplace unavailable"))
	mc.FinishRun()

	last := mc.GetLastRunMetrics()
	assert.Len(t, last, 2)
	assert.True(t, last["B0EXAMPLE1"].Success)
	assert.True(t, last["B0EXAMPLE1"].Price.Equal(decimal.NewFromFloat(2499)))
	assert.False(t, last["B0EXAMPLE2"].Success)
	assert.Equal(t, "marketplace unavailable", last["B0EXAMPLE2"].ErrorMessage)

	summary := mc.GetSummary()
	assert.Equal(t, 1, summary.TotalRuns)
	assert.Equal(t, 1, summary.TotalSuccessful)
	assert.Equal(t, 1, summary.TotalFailed)
	assert.Equal(t, 1, summary.LastRunSuccesses)
	assert.Equal(t, 1, summary.LastRunFailures)

	// The next run replaces lastRun wholesale
	mc.StartFetch("B0EXAMPLE3")
	mc.FinishRun()
	assert.Len(t, mc.GetLastRunMetrics(), 1)
}

func TestMetricsCollector_HealthStatus(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		successes   int
		failures    int
		wantHealthy bool
	}{
		{name: "all healthy", successes: 5, failures: 0, wantHealthy: true},
		{name: "above threshold", successes: 8, failures: 2, wantHealthy: true},
		{name: "below threshold", successes: 3, failures: 7, wantHealthy: false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			mc := NewMetricsCollector()
			total := tt.successes + tt.failures

			for i := 0; i < tt.successes; i++ {
				asin := "B0SUCCESS0" + string(rune('A'+i))
				mc.StartFetch(asin)
				mc.RecordSuccess(asin, decimal.NewFromFloat(100))
			}
			for i := 0; i < tt.failures; i++ {
				asin := "B0FAILURE0" + string(rune('A'+i))
				mc.StartFetch(asin)
				mc.RecordFailure(asin, errors.New("boom"))
			}
			mc.FinishRun()

			status := mc.GetHealthStatus(time.Now().Add(time.Hour), total)

			assert.Equal(t, tt.wantHealthy, status.Healthy)
			assert.Equal(t, tt.successes, status.HealthyItems)
			assert.Len(t, status.UnhealthyItems, tt.failures)
		})
	}
}

func TestMetricsCollector_HealthyBeforeFirstRun(t *testing.T) {
	t.Parallel()

	mc := NewMetricsCollector()
	status := mc.GetHealthStatus(time.Time{}, 0)

	assert.True(t, status.Healthy)
	assert.Equal(t, "No poll runs recorded yet", status.Message)
}
