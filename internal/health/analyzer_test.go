package health

import (
	"testing"

	"shared-clipboard/internal/logs"
	"shared-clipboard/internal/metrics"

	"github.com/stretchr/testify/assert"
)

func TestAnalyzer_OK(t *testing.T) {
	reg := metrics.NewRegistry()
	logger := logs.NewLogger(10, logs.DEBUG)

	reg.Add(metrics.EntriesLive, 3)

	report := NewAnalyzer(reg, logger).Analyze()

	assert.Equal(t, StatusOK, report.OverallStatus)
	assert.Equal(t, "System is healthy", report.Summary)
	assert.Equal(t, int64(3), report.LiveEntries)
	assert.Empty(t, report.Signals)
}

func TestAnalyzer_DegradedOnInternalErrors(t *testing.T) {
	reg := metrics.NewRegistry()
	logger := logs.NewLogger(10, logs.DEBUG)

	reg.Inc(metrics.HTTPInternalErrorsTotal)

	report := NewAnalyzer(reg, logger).Analyze()

	assert.Equal(t, StatusDegraded, report.OverallStatus)
	assert.Contains(t, report.Signals, "Internal server errors reported")
}

func TestAnalyzer_CriticalOnPanics(t *testing.T) {
	reg := metrics.NewRegistry()
	logger := logs.NewLogger(10, logs.DEBUG)

	reg.Inc(metrics.HTTPPanicsTotal)
	reg.Inc(metrics.HTTPInternalErrorsTotal)

	report := NewAnalyzer(reg, logger).Analyze()

	assert.Equal(t, StatusCritical, report.OverallStatus)
	assert.Len(t, report.Signals, 2)
}

func TestAnalyzer_RejectionRate(t *testing.T) {
	reg := metrics.NewRegistry()
	logger := logs.NewLogger(10, logs.DEBUG)

	reg.Add(metrics.RejectedTotal, 5)
	reg.Add(metrics.SubmissionsTotal, 1)

	report := NewAnalyzer(reg, logger).Analyze()

	assert.Equal(t, StatusDegraded, report.OverallStatus)
	assert.Contains(t, report.Signals, "Most submissions are rejected as empty")

	reg.Add(metrics.SubmissionsTotal, 10)
	assert.Equal(t, StatusOK, NewAnalyzer(reg, logger).Analyze().OverallStatus)
}

func TestAnalyzer_LogBasedRequestFailures(t *testing.T) {
	reg := metrics.NewRegistry()
	logger := logs.NewLogger(10, logs.DEBUG)

	logger.Error("request failed: encode response")
	logger.Error("request failed: encode response")
	logger.Error("request failed: encode response")

	report := NewAnalyzer(reg, logger).Analyze()

	assert.Equal(t, StatusDegraded, report.OverallStatus)
	assert.Contains(t, report.Signals, "Repeated request failures detected in logs")
}

func TestAnalyzer_LogBasedPanicDetection(t *testing.T) {
	reg := metrics.NewRegistry()
	logger := logs.NewLogger(10, logs.DEBUG)

	logger.Error("panic recovered")

	report := NewAnalyzer(reg, logger).Analyze()

	assert.Equal(t, StatusCritical, report.OverallStatus)
	assert.Contains(t, report.Signals, "Application panics detected in logs")
	assert.Equal(t, "System health issues detected", report.Summary)
}
