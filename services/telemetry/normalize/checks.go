// Copyright (C) 2025 OCI Coordinator Dashboards contributors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package normalize

import (
	"strings"

	"github.com/adibirzu/oci-coordinator-dashboards/services/telemetry/datatypes"
)

var (
	aliasCheckName  = []string{"name", "check_name", "checkName", "id"}
	aliasCategory   = []string{"category", "group", "area"}
	aliasPassed     = []string{"passed", "ok", "success", "compliant"}
	aliasSeverity   = []string{"severity", "risk_level", "riskLevel", "tier"}
	aliasDetail     = []string{"detail", "details", "message", "remediation"}
	aliasCoordState = []string{"state", "status", "health"}
	aliasVersion    = []string{"version", "build", "agent_version"}
	aliasUptime     = []string{"uptime_seconds", "uptimeSeconds", "uptime"}
	aliasAgents     = []string{"active_agents", "activeAgents", "agents"}
	aliasCoordMsg   = []string{"message", "status_message", "statusMessage"}
)

// CheckResult normalizes one coordinator check outcome. Unrecognized
// severities default to low so an unknown tier can only under-count
// risk, never inflate it.
func CheckResult(r RawRecord) datatypes.CheckResult {
	sev := datatypes.Severity(strings.ToLower(r.Str(aliasSeverity...)))
	switch sev {
	case datatypes.SeverityLow, datatypes.SeverityMedium,
		datatypes.SeverityHigh, datatypes.SeverityCritical:
	default:
		sev = datatypes.SeverityLow
	}

	return datatypes.CheckResult{
		Name:     r.Str(aliasCheckName...),
		Category: r.Str(aliasCategory...),
		Passed:   r.Bool(aliasPassed...),
		Severity: sev,
		Detail:   r.Str(aliasDetail...),
	}
}

// CheckResults normalizes a check run in input order.
func CheckResults(records []RawRecord) []datatypes.CheckResult {
	out := make([]datatypes.CheckResult, 0, len(records))
	for _, r := range records {
		out = append(out, CheckResult(r))
	}
	return out
}

// CoordinatorStatus normalizes the coordinator health report.
func CoordinatorStatus(r RawRecord) datatypes.CoordinatorStatus {
	return datatypes.CoordinatorStatus{
		State:         r.StrOr("UNKNOWN", aliasCoordState...),
		Version:       r.Str(aliasVersion...),
		UptimeSeconds: r.Int(aliasUptime...),
		ActiveAgents:  r.Int(aliasAgents...),
		Message:       r.Str(aliasCoordMsg...),
	}
}
