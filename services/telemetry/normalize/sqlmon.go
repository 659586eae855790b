// Copyright (C) 2025 OCI Coordinator Dashboards contributors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package normalize

import (
	"github.com/adibirzu/oci-coordinator-dashboards/services/telemetry/datatypes"
)

var (
	aliasStmtStatus  = []string{"status", "state", "STATUS"}
	aliasElapsedSecs = []string{"elapsed_seconds", "elapsedSeconds", "elapsed_time", "ELAPSED_TIME"}
	aliasCPUSecs     = []string{"cpu_seconds", "cpuSeconds", "cpu_time", "CPU_TIME"}
	aliasRows        = []string{"rows_processed", "rowsProcessed", "output_rows", "ROWS_PROCESSED"}
	aliasDOPReq      = []string{"px_servers_requested", "dop_requested", "dopRequested", "PX_SERVERS_REQUESTED"}
	aliasDOPAct      = []string{"px_servers_allocated", "dop_actual", "dopActual", "PX_SERVERS_ALLOCATED"}
)

var statementStatuses = []string{
	datatypes.StatementExecuting,
	datatypes.StatementDone,
	datatypes.StatementError,
	datatypes.StatementQueued,
}

// MonitoredStatement normalizes one SQL monitoring row. Hang detection
// is left to the derive package; IsHung starts false.
func MonitoredStatement(r RawRecord) datatypes.MonitoredStatement {
	return datatypes.MonitoredStatement{
		SQLID:          r.Str(aliasSQLID...),
		Username:       r.Str(aliasUsername...),
		Status:         r.Enum(datatypes.StatementUnknown, statementStatuses, aliasStmtStatus...),
		ElapsedSeconds: r.Float(aliasElapsedSecs...),
		CPUSeconds:     r.Float(aliasCPUSecs...),
		RowsProcessed:  r.Int(aliasRows...),
		DOPRequested:   r.Int(aliasDOPReq...),
		DOPActual:      r.Int(aliasDOPAct...),
	}
}

// MonitoredStatements normalizes a flat record list in input order.
func MonitoredStatements(records []RawRecord) []datatypes.MonitoredStatement {
	out := make([]datatypes.MonitoredStatement, 0, len(records))
	for _, r := range records {
		out = append(out, MonitoredStatement(r))
	}
	return out
}
