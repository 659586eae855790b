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

// Alias priority lists for the session backend. Order matters: the
// first present alias wins, so the modern lowercase names come first
// and the legacy uppercase view columns last.
var (
	aliasSessionID  = []string{"sid", "session_id", "sessionId", "SID", "SESSION_ID"}
	aliasInstance   = []string{"inst_id", "instance", "instanceId", "INST_ID", "INSTANCE"}
	aliasSerial     = []string{"serial", "serial#", "serialNumber", "SERIAL#"}
	aliasBlockerSID = []string{"blocking_session", "blocking_sid", "blockingSession", "BLOCKING_SESSION"}
	aliasBlockerIns = []string{"blocking_instance", "blocking_inst_id", "blockingInstance", "BLOCKING_INSTANCE"}
	aliasUsername   = []string{"username", "user_name", "schemaname", "USERNAME"}
	aliasProgram    = []string{"program", "module", "PROGRAM"}
	aliasSQLID      = []string{"sql_id", "sqlId", "SQL_ID"}
	aliasWaitEvent  = []string{"event", "wait_event", "waitEvent", "EVENT"}
	aliasWaitSecs   = []string{"seconds_in_wait", "wait_time_seconds", "waitSeconds", "waits", "total_waits", "WAITS", "SECONDS_IN_WAIT"}
)

// BlockedSession normalizes one blocking-session row. A record with no
// recognizable blocker fields becomes a root blocker.
func BlockedSession(r RawRecord) datatypes.BlockedSession {
	s := datatypes.BlockedSession{
		Key: datatypes.SessionKey{
			SessionID: r.Int(aliasSessionID...),
			Instance:  r.Int(aliasInstance...),
		},
		Serial:      r.Int(aliasSerial...),
		Username:    r.Str(aliasUsername...),
		Program:     r.Str(aliasProgram...),
		SQLID:       r.Str(aliasSQLID...),
		WaitEvent:   r.Str(aliasWaitEvent...),
		WaitSeconds: r.Float(aliasWaitSecs...),
	}

	if r.Has(aliasBlockerSID...) {
		blocker := datatypes.SessionKey{
			SessionID: r.Int(aliasBlockerSID...),
			Instance:  r.Int(aliasBlockerIns...),
		}
		// Some backend versions report "blocked by session 0" instead of
		// omitting the column. Treat that as not blocked.
		if blocker.SessionID != 0 {
			s.BlockedBy = &blocker
		}
	}
	return s
}

// BlockedSessions normalizes a flat record list, preserving input order.
func BlockedSessions(records []RawRecord) []datatypes.BlockedSession {
	out := make([]datatypes.BlockedSession, 0, len(records))
	for _, r := range records {
		out = append(out, BlockedSession(r))
	}
	return out
}
