package health

import (
	"strings"

	"shared-clipboard/internal/logs"
	"shared-clipboard/internal/metrics"
)

// recentLogWindow is how many log entries the analyzer inspects.
const recentLogWindow = 100

// Analyzer converts metrics + logs into a health report.
type Analyzer struct {
	metrics *metrics.Registry
	logger  *logs.Logger
	rules   []Rule
}

// NewAnalyzer creates a new analyzer.
func NewAnalyzer(
	reg *metrics.Registry,
	logger *logs.Logger,
) *Analyzer {
	return &Analyzer{
		metrics: reg,
		logger:  logger,
		rules: []Rule{
			InternalErrorRule,
			PanicRule,
			RejectionRateRule,
		},
	}
}

// Analyze evaluates metrics and logs and returns a health report.
func (a *Analyzer) Analyze() Report {
	snapshot := a.metrics.Snapshot()

	var (
		signals         = []string{}
		recommendations = []string{}
		status          = StatusOK
	)

	/* ---------- METRICS-BASED RULES ---------- */

	for _, rule := range a.rules {
		result := rule(snapshot)
		if !result.Triggered {
			continue
		}

		signals = append(signals, result.Signal)
		recommendations = append(recommendations, result.Recommendation)
		status = escalate(status, result.Severity)
	}

	/* ---------- LOG-BASED SIGNALS ---------- */

	requestFailures := 0
	panicCount := 0

	for _, entry := range a.logger.GetLast(recentLogWindow) {
		if entry.Level == logs.ERROR &&
			strings.Contains(entry.Message, "request failed") {
			requestFailures++
		}

		if entry.Level == logs.ERROR &&
			strings.Contains(entry.Message, "panic") {
			panicCount++
		}
	}

	if requestFailures >= 3 {
		signals = append(signals,
			"Repeated request failures detected in logs",
		)
		recommendations = append(recommendations,
			"Investigate serialization or handler faults",
		)
		status = escalate(status, StatusDegraded)
	}

	if panicCount > 0 {
		signals = append(signals,
			"Application panics detected in logs",
		)
		recommendations = append(recommendations,
			"Inspect stack traces and stabilize error handling",
		)
		status = StatusCritical
	}

	/* ---------- SUMMARY ---------- */

	summary := "System is healthy"
	if status != StatusOK {
		summary = "System health issues detected"
	}

	return Report{
		OverallStatus:   status,
		Summary:         summary,
		LiveEntries:     snapshot[string(metrics.EntriesLive)],
		Signals:         signals,
		Recommendations: recommendations,
	}
}

func escalate(current, severity Status) Status {
	switch {
	case severity == StatusCritical:
		return StatusCritical
	case severity == StatusDegraded && current == StatusOK:
		return StatusDegraded
	default:
		return current
	}
}
