package health

import "shared-clipboard/internal/metrics"

// RuleResult represents the outcome of a single rule.
type RuleResult struct {
	Triggered      bool
	Signal         string
	Recommendation string
	Severity       Status
}

// Rule evaluates a metrics snapshot.
type Rule func(snapshot map[string]int64) RuleResult

// ---------- RULES ----------

// Internal errors mean requests are failing with 500s.
func InternalErrorRule(snapshot map[string]int64) RuleResult {
	if snapshot[string(metrics.HTTPInternalErrorsTotal)] > 0 {
		return RuleResult{
			Triggered:      true,
			Signal:         "Internal server errors reported",
			Recommendation: "Inspect error logs for failing handlers",
			Severity:       StatusDegraded,
		}
	}
	return RuleResult{}
}

// Recovered panics indicate a programming error in a handler.
func PanicRule(snapshot map[string]int64) RuleResult {
	if snapshot[string(metrics.HTTPPanicsTotal)] > 0 {
		return RuleResult{
			Triggered:      true,
			Signal:         "Handler panics recovered",
			Recommendation: "Inspect stack traces and stabilize error handling",
			Severity:       StatusCritical,
		}
	}
	return RuleResult{}
}

// More rejected than accepted submissions usually means a broken client.
func RejectionRateRule(snapshot map[string]int64) RuleResult {
	rejected := snapshot[string(metrics.RejectedTotal)]
	accepted := snapshot[string(metrics.SubmissionsTotal)]

	if rejected > 0 && rejected > accepted {
		return RuleResult{
			Triggered:      true,
			Signal:         "Most submissions are rejected as empty",
			Recommendation: "Check that clients send a non-empty text field",
			Severity:       StatusDegraded,
		}
	}
	return RuleResult{}
}
