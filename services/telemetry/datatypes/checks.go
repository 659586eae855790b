// Copyright (C) 2025 OCI Coordinator Dashboards contributors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package datatypes

// Severity is the ordered tier of a failed check.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// Weight returns the risk contribution of a failed check at this tier.
// Unknown tiers weigh the same as low.
func (s Severity) Weight() int {
	switch s {
	case SeverityCritical:
		return 40
	case SeverityHigh:
		return 20
	case SeverityMedium:
		return 5
	default:
		return 1
	}
}

// CheckResult is one normalized configuration/health check outcome
// reported by the coordinator.
type CheckResult struct {
	Name     string   `json:"name"`
	Category string   `json:"category,omitempty"`
	Passed   bool     `json:"passed"`
	Severity Severity `json:"severity"`
	Detail   string   `json:"detail,omitempty"`
}

// ScoreSummary is the derived risk/quality rollup of a check run.
type ScoreSummary struct {
	// RiskScore is 0..100; higher is worse.
	RiskScore int `json:"riskScore"`

	// PassRate is 0..1, and 0 when no checks ran.
	PassRate float64 `json:"passRate"`

	Total  int `json:"total"`
	Passed int `json:"passed"`
	Failed int `json:"failed"`
}

// ChecksResponse is the /v1/checks/score payload.
type ChecksResponse struct {
	Envelope
	Checks []CheckResult `json:"checks"`
	Score  ScoreSummary  `json:"score"`
}

// CoordinatorStatus is the normalized coordinator health report.
type CoordinatorStatus struct {
	State         string `json:"state"`
	Version       string `json:"version,omitempty"`
	UptimeSeconds int64  `json:"uptimeSeconds"`
	ActiveAgents  int64  `json:"activeAgents"`
	Message       string `json:"statusMessage,omitempty"`
}

// CoordinatorResponse is the /v1/coordinator/health payload.
type CoordinatorResponse struct {
	Envelope
	Coordinator CoordinatorStatus `json:"coordinator"`
}
