// Copyright (C) 2025 OCI Coordinator Dashboards contributors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package datatypes

// Statement statuses as reported by the SQL monitoring view.
const (
	StatementExecuting = "EXECUTING"
	StatementDone      = "DONE"
	StatementError     = "ERROR"
	StatementQueued    = "QUEUED"
	StatementUnknown   = "UNKNOWN"
)

// MonitoredStatement is one normalized row from the SQL monitoring
// backend: a long-running or parallel statement under observation.
type MonitoredStatement struct {
	SQLID    string `json:"sqlId"`
	Username string `json:"username"`
	Status   string `json:"status"`

	ElapsedSeconds float64 `json:"elapsedSeconds"`
	CPUSeconds     float64 `json:"cpuSeconds"`
	RowsProcessed  int64   `json:"rowsProcessed"`

	// DOPRequested and DOPActual are the parallel servers the statement
	// asked for versus what the instance granted.
	DOPRequested int64 `json:"dopRequested"`
	DOPActual    int64 `json:"dopActual"`

	// IsHung is derived, never reported by the upstream.
	IsHung bool `json:"isHung"`
}

// SQLMonitorResponse is the /v1/sqlmon/monitor payload.
type SQLMonitorResponse struct {
	Envelope
	Statements []MonitoredStatement `json:"statements"`

	HungCount            int     `json:"hungCount"`
	DOPEfficiencyPercent float64 `json:"dopEfficiencyPercent"`
}
