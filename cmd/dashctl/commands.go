// Copyright (C) 2025 OCI Coordinator Dashboards contributors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/adibirzu/oci-coordinator-dashboards/pkg/logging"
	"github.com/adibirzu/oci-coordinator-dashboards/pkg/validation"
	"github.com/adibirzu/oci-coordinator-dashboards/services/telemetry/datatypes"
)

var logger = logging.Default()

// fetch GETs one service endpoint and returns the raw body. The CLI
// talks to the local service, so a short timeout keeps failures snappy.
func fetch(path string, params url.Values) []byte {
	if skipCacheFlag {
		if params == nil {
			params = url.Values{}
		}
		params.Set("skipCache", "true")
	}
	u := strings.TrimRight(endpointFlag, "/") + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	client := &http.Client{Timeout: 30 * time.Second}
	resp, err := client.Get(u)
	if err != nil {
		log.Fatalf("Error calling the telemetry service: %v", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Fatalf("Error reading response: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		log.Fatalf("Telemetry service returned %s: %s", resp.Status, strings.TrimSpace(string(body)))
	}
	return body
}

// decode unmarshals the body, or prints it raw and exits when --json is
// set.
func decode(body []byte, v any) {
	if jsonFlag {
		fmt.Println(string(body))
		os.Exit(0)
	}
	if err := json.Unmarshal(body, v); err != nil {
		log.Fatalf("Error decoding response: %v", err)
	}
}

// warnStatus flags non-live payloads so a rendered view is never
// mistaken for current production data.
func warnStatus(env datatypes.Envelope) {
	switch env.Status {
	case datatypes.StatusConnected:
	case datatypes.StatusMock:
		logger.Warn("upstream unreachable, showing demo data", "message", env.Message)
	case datatypes.StatusPendingConfig:
		logger.Warn("upstream not configured", "message", env.Message)
	case datatypes.StatusError:
		logger.Error("upstream error", "message", env.Message)
	}
	if env.Cached {
		logger.Info("served from cache", "age_seconds", env.CacheAgeSeconds)
	}
}

func runSessions(cmd *cobra.Command, args []string) {
	params := url.Values{"limit": {fmt.Sprintf("%d", limitFlag)}}
	var resp datatypes.BlockingResponse
	decode(fetch("/v1/sessions/blocking", params), &resp)
	warnStatus(resp.Envelope)

	s := resp.Summary
	fmt.Printf("Blocked sessions: %d  Root blockers: %d  Max wait: %.0fs\n",
		s.TotalBlocked, s.RootBlockers, s.MaxWaitSeconds)
	if len(s.AffectedPrincipals) > 0 {
		fmt.Printf("Affected users: %s\n", strings.Join(s.AffectedPrincipals, ", "))
	}
	fmt.Println()
	for _, e := range resp.Chain {
		marker := "blocks"
		if e.Level == 0 {
			marker = "ROOT"
		}
		fmt.Printf("%s%-8s sid %s  %-12s %6.0fs  %s\n",
			strings.Repeat("  ", e.Level), marker, e.Key.String(),
			e.Username, e.WaitSeconds, e.WaitEvent)
	}
}

func runSQLMonitor(cmd *cobra.Command, args []string) {
	var resp datatypes.SQLMonitorResponse
	decode(fetch("/v1/sqlmon/monitor", nil), &resp)
	warnStatus(resp.Envelope)

	fmt.Printf("Statements: %d  Hung: %d  DOP efficiency: %.1f%%\n\n",
		len(resp.Statements), resp.HungCount, resp.DOPEfficiencyPercent)
	for _, st := range resp.Statements {
		flag := ""
		if st.IsHung {
			flag = "  << HUNG"
		}
		fmt.Printf("%-15s %-10s %-10s %8.0fs %10d rows  dop %d/%d%s\n",
			st.SQLID, st.Username, st.Status, st.ElapsedSeconds,
			st.RowsProcessed, st.DOPActual, st.DOPRequested, flag)
	}
}

func runWorkflow(cmd *cobra.Command, args []string) {
	traceID, err := validation.SanitizeTraceID(args[0])
	if err != nil {
		log.Fatalf("Invalid trace id: %v", err)
	}
	var resp datatypes.WorkflowResponse
	decode(fetch("/v1/traces/"+url.PathEscape(traceID)+"/workflow", nil), &resp)
	warnStatus(resp.Envelope)

	wf := resp.Workflow
	fmt.Printf("Trace %s  status=%s  total=%dms\n", wf.TraceID, wf.Status, wf.DurationMillis)
	if wf.Query != "" {
		fmt.Printf("Query:    %s\n", wf.Query)
	}
	if wf.Response != "" {
		fmt.Printf("Response: %s\n", wf.Response)
	}
	if len(resp.RootCandidates) > 0 {
		logger.Warn("trace has multiple root candidates", "span_ids", resp.RootCandidates)
	}
	fmt.Println()
	for _, st := range wf.Stages {
		mark := " "
		if st.Error {
			mark = "!"
		}
		fmt.Printf("%s %-10s %6dms  %d span(s)\n", mark, st.Stage, st.DurationMillis, st.SpanCount)
	}
}

func runRecentTraces(cmd *cobra.Command, args []string) {
	params := url.Values{"limit": {fmt.Sprintf("%d", limitFlag)}}
	if offsetFlag > 0 {
		params.Set("offset", fmt.Sprintf("%d", offsetFlag))
	}
	var resp datatypes.RecentTracesResponse
	decode(fetch("/v1/traces/recent", params), &resp)
	warnStatus(resp.Envelope)

	st := resp.Stats
	fmt.Printf("Traces: %d  Errors: %d (%.2f%%)  Avg: %dms  Max: %dms\n\n",
		st.Count, st.ErrorCount, st.ErrorRatePercent,
		st.AvgDurationMillis, st.MaxDurationMillis)
	for _, tr := range resp.Traces {
		fmt.Printf("%-24s %-8s %6dms  %d spans  %d errors\n",
			tr.TraceID, tr.Status, tr.DurationMillis, tr.SpanCount, tr.ErrorSpanCount)
	}
}

func runScore(cmd *cobra.Command, args []string) {
	var resp datatypes.ChecksResponse
	decode(fetch("/v1/checks/score", nil), &resp)
	warnStatus(resp.Envelope)

	sc := resp.Score
	fmt.Printf("Risk score: %d/100  Pass rate: %.0f%%  (%d passed, %d failed of %d)\n\n",
		sc.RiskScore, sc.PassRate*100, sc.Passed, sc.Failed, sc.Total)
	for _, ch := range resp.Checks {
		state := "PASS"
		if !ch.Passed {
			state = "FAIL"
		}
		fmt.Printf("%-4s [%-8s] %-40s %s\n", state, ch.Severity, ch.Name, ch.Detail)
	}
}

func runHealth(cmd *cobra.Command, args []string) {
	var resp datatypes.CoordinatorResponse
	decode(fetch("/v1/coordinator/health", nil), &resp)
	warnStatus(resp.Envelope)

	co := resp.Coordinator
	fmt.Printf("Coordinator: %s  version=%s  agents=%d  uptime=%s\n",
		co.State, co.Version, co.ActiveAgents,
		(time.Duration(co.UptimeSeconds) * time.Second).String())
	if co.Message != "" {
		fmt.Printf("Message: %s\n", co.Message)
	}
}
