package fetcher

import (
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

// FetchMetrics holds metrics for a single product fetch
type FetchMetrics struct {
	ASIN         string
	StartedAt    time.Time
	CompletedAt  time.Time
	Price        decimal.Decimal
	Success      bool
	ErrorMessage string
	Duration     time.Duration
}

// MetricsCollector collects and aggregates fetch metrics across poll runs
type MetricsCollector struct {
	mu             sync.RWMutex
	currentRun     map[string]*FetchMetrics
	lastRun        map[string]*FetchMetrics
	totalRuns      int
	successfulRuns int
	failedRuns     int
	lastRunTime    time.Time
}

// NewMetricsCollector creates a new MetricsCollector
func NewMetricsCollector() *MetricsCollector {
	return &MetricsCollector{
		currentRun: make(map[string]*FetchMetrics),
		lastRun:    make(map[string]*FetchMetrics),
	}
}

// StartFetch records the start of a fetch for a product
func (mc *MetricsCollector) StartFetch(asin string) {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	mc.currentRun[asin] = &FetchMetrics{
		ASIN:      asin,
		StartedAt: time.Now(),
	}
}

// RecordSuccess records a successful fetch and the price it observed
func (mc *MetricsCollector) RecordSuccess(asin string, price decimal.Decimal) {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	if metrics, ok := mc.currentRun[asin]; ok {
		metrics.CompletedAt = time.Now()
		metrics.Duration = metrics.CompletedAt.Sub(metrics.StartedAt)
		metrics.Price = price
		metrics.Success = true
	}
}

// RecordFailure records a failed fetch
func (mc *MetricsCollector) RecordFailure(asin string, err error) {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	if metrics, ok := mc.currentRun[asin]; ok {
		metrics.CompletedAt = time.Now()
		metrics.Duration = metrics.CompletedAt.Sub(metrics.StartedAt)
		metrics.Success = false
		if err != nil {
			metrics.ErrorMessage = err.Error()
		}
	}
}

// FinishRun marks the current run as complete and moves metrics to lastRun
func (mc *MetricsCollector) FinishRun() {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	for _, metrics := range mc.currentRun {
		if metrics.Success {
			mc.successfulRuns++
		} else {
			mc.failedRuns++
		}
	}

	mc.totalRuns++
	mc.lastRunTime = time.Now()
	mc.lastRun = mc.currentRun
	mc.currentRun = make(map[string]*FetchMetrics)
}

// GetLastRunMetrics returns metrics from the last completed run
func (mc *MetricsCollector) GetLastRunMetrics() map[string]*FetchMetrics {
	mc.mu.RLock()
	defer mc.mu.RUnlock()

	result := make(map[string]*FetchMetrics, len(mc.lastRun))
	for k, v := range mc.lastRun {
		metricsCopy := *v
		result[k] = &metricsCopy
	}
	return result
}

// GetSummary returns a summary of all fetch operations
func (mc *MetricsCollector) GetSummary() MetricsSummary {
	mc.mu.RLock()
	defer mc.mu.RUnlock()

	var lastRunSuccesses, lastRunFailures int
	var totalDuration time.Duration

	for _, metrics := range mc.lastRun {
		if metrics.Success {
			lastRunSuccesses++
		} else {
			lastRunFailures++
		}
		totalDuration += metrics.Duration
	}

	return MetricsSummary{
		TotalRuns:        mc.totalRuns,
		TotalSuccessful:  mc.successfulRuns,
		TotalFailed:      mc.failedRuns,
		LastRunTime:      mc.lastRunTime,
		LastRunSuccesses: lastRunSuccesses,
		LastRunFailures:  lastRunFailures,
		LastRunDuration:  totalDuration,
	}
}

// MetricsSummary provides an overview of fetch performance
type MetricsSummary struct {
	TotalRuns        int
	TotalSuccessful  int
	TotalFailed      int
	LastRunTime      time.Time
	LastRunSuccesses int
	LastRunFailures  int
	LastRunDuration  time.Duration
}

// HealthStatus represents the health of the polling pipeline
type HealthStatus struct {
	Healthy        bool              `json:"healthy"`
	LastRunTime    time.Time         `json:"last_run_time"`
	NextRunTime    time.Time         `json:"next_run_time"`
	TotalItems     int               `json:"total_items"`
	HealthyItems   int               `json:"healthy_items"`
	UnhealthyItems []string          `json:"unhealthy_items,omitempty"`
	ItemStatuses   map[string]string `json:"item_statuses"`
	Message        string            `json:"message,omitempty"`
}

// GetHealthStatus returns the current health of the poller
func (mc *MetricsCollector) GetHealthStatus(nextRunTime time.Time, totalItems int) HealthStatus {
	mc.mu.RLock()
	defer mc.mu.RUnlock()

	status := HealthStatus{
		LastRunTime:  mc.lastRunTime,
		NextRunTime:  nextRunTime,
		TotalItems:   totalItems,
		ItemStatuses: make(map[string]string),
	}

	var healthyCount int
	var unhealthyItems []string

	for asin, metrics := range mc.lastRun {
		if metrics.Success {
			healthyCount++
			status.ItemStatuses[asin] = "healthy"
		} else {
			unhealthyItems = append(unhealthyItems, asin)
			status.ItemStatuses[asin] = "unhealthy: " + metrics.ErrorMessage
		}
	}

	status.HealthyItems = healthyCount
	status.UnhealthyItems = unhealthyItems

	// Consider healthy if at least 70% of items fetched successfully
	if totalItems > 0 {
		successRate := float64(healthyCount) / float64(totalItems)
		status.Healthy = successRate >= 0.7
	}

	if status.Healthy {
		status.Message = "Poller is operating normally"
	} else if len(mc.lastRun) == 0 {
		status.Message = "No poll runs recorded yet"
		status.Healthy = true
	} else {
		status.Message = "Some products are failing to fetch"
	}

	return status
}
