// Copyright (C) 2025 OCI Coordinator Dashboards contributors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/adibirzu/oci-coordinator-dashboards/services/telemetry/datatypes"
	"github.com/adibirzu/oci-coordinator-dashboards/services/telemetry/normalize"
	"github.com/adibirzu/oci-coordinator-dashboards/services/telemetry/upstream"
)

func init() {
	gin.SetMode(gin.TestMode)
}

var errDown = errors.New("connection refused")

type fakeSessions struct {
	blocking    []normalize.RawRecord
	blockingErr error
	sqlmon      []normalize.RawRecord
	sqlmonErr   error
	calls       int
}

func (f *fakeSessions) FetchBlockingSessions(_ context.Context, _ int) ([]normalize.RawRecord, error) {
	f.calls++
	return f.blocking, f.blockingErr
}

func (f *fakeSessions) FetchMonitoredStatements(_ context.Context) ([]normalize.RawRecord, error) {
	f.calls++
	return f.sqlmon, f.sqlmonErr
}

type fakeTraces struct {
	spans     []normalize.RawRecord
	spansErr  error
	recent    []normalize.RawRecord
	recentErr error
}

func (f *fakeTraces) FetchTraceSpans(_ context.Context, _ string) ([]normalize.RawRecord, error) {
	return f.spans, f.spansErr
}

func (f *fakeTraces) FetchRecentTraces(_ context.Context, _ int) ([]normalize.RawRecord, error) {
	return f.recent, f.recentErr
}

type fakeCoordinator struct {
	health    normalize.RawRecord
	healthErr error
	checks    []normalize.RawRecord
	checksErr error
}

func (f *fakeCoordinator) Health(_ context.Context) (normalize.RawRecord, error) {
	return f.health, f.healthErr
}

func (f *fakeCoordinator) FetchChecks(_ context.Context) ([]normalize.RawRecord, error) {
	return f.checks, f.checksErr
}

// threeLevelChain is one root blocker holding two transitive victims,
// with each record in a different upstream naming convention.
func threeLevelChain() []normalize.RawRecord {
	return []normalize.RawRecord{
		{"sid": 145, "inst_id": 1, "username": "APPUSER", "seconds_in_wait": 847},
		{"session_id": 287, "instance": 1, "user_name": "BATCH",
			"blocking_session": 145, "blocking_instance": 1, "wait_time_seconds": 623},
		{"SID": 156, "INST_ID": 1, "USERNAME": "REPORTS",
			"BLOCKING_SESSION": 287, "BLOCKING_INSTANCE": 1, "SECONDS_IN_WAIT": 212},
	}
}

func newTestRouter(cfg Config) (*gin.Engine, *Server) {
	s := NewServer(cfg)
	r := gin.New()
	r.GET("/v1/sessions/blocking", s.HandleBlockingSessions)
	r.GET("/v1/sqlmon/monitor", s.HandleSQLMonitor)
	r.GET("/v1/traces/recent", s.HandleRecentTraces)
	r.GET("/v1/traces/:traceId/workflow", s.HandleWorkflow)
	r.GET("/v1/checks/score", s.HandleChecksScore)
	r.GET("/v1/coordinator/health", s.HandleCoordinatorHealth)
	r.GET("/v1/cache/stats", s.HandleCacheStats)
	r.POST("/v1/cache/clear", s.HandleCacheClear)
	r.GET("/health", s.HandleHealth)
	return r, s
}

func doGET(t *testing.T, r *gin.Engine, path string, out any) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	r.ServeHTTP(w, req)
	if out != nil && w.Code == http.StatusOK {
		if err := json.Unmarshal(w.Body.Bytes(), out); err != nil {
			t.Fatalf("decode %s response: %v\n%s", path, err, w.Body.String())
		}
	}
	return w
}

func TestBlockingSessions_EndToEnd(t *testing.T) {
	r, _ := newTestRouter(Config{Sessions: &fakeSessions{blocking: threeLevelChain()}})

	var resp datatypes.BlockingResponse
	w := doGET(t, r, "/v1/sessions/blocking", &resp)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if resp.Status != datatypes.StatusConnected {
		t.Fatalf("envelope status = %q, want connected", resp.Status)
	}
	if resp.Summary.TotalBlocked != 2 || resp.Summary.RootBlockers != 1 {
		t.Errorf("summary = %+v, want 2 blocked behind 1 root", resp.Summary)
	}
	if resp.Summary.MaxWaitSeconds != 847 {
		t.Errorf("MaxWaitSeconds = %v, want 847", resp.Summary.MaxWaitSeconds)
	}
	if len(resp.Tree) != 1 || resp.Tree[0].Key.SessionID != 145 {
		t.Fatalf("tree = %+v, want single root 145", resp.Tree)
	}
	wantChain := []int64{145, 287, 156}
	for i, want := range wantChain {
		if resp.Chain[i].Key.SessionID != want {
			t.Errorf("chain[%d] = %d, want %d", i, resp.Chain[i].Key.SessionID, want)
		}
	}
}

func TestBlockingSessions_CacheHitAnnotated(t *testing.T) {
	fake := &fakeSessions{blocking: threeLevelChain()}
	r, _ := newTestRouter(Config{Sessions: fake})

	var first datatypes.BlockingResponse
	doGET(t, r, "/v1/sessions/blocking", &first)
	if first.Cached {
		t.Fatal("first response claims to be cached")
	}

	var second datatypes.BlockingResponse
	doGET(t, r, "/v1/sessions/blocking", &second)
	if !second.Cached {
		t.Fatal("second response was not served from cache")
	}
	if fake.calls != 1 {
		t.Errorf("upstream calls = %d, want 1", fake.calls)
	}
	if second.Summary.TotalBlocked != first.Summary.TotalBlocked {
		t.Error("cached payload differs from the original")
	}
}

func TestBlockingSessions_SkipCache(t *testing.T) {
	fake := &fakeSessions{blocking: threeLevelChain()}
	r, _ := newTestRouter(Config{Sessions: fake})

	doGET(t, r, "/v1/sessions/blocking", nil)
	fake.blocking = threeLevelChain()[:1]

	var resp datatypes.BlockingResponse
	doGET(t, r, "/v1/sessions/blocking?skipCache=true", &resp)

	if resp.Cached {
		t.Error("skipCache response came from cache")
	}
	if resp.Summary.RootBlockers != 1 || resp.Summary.TotalBlocked != 0 {
		t.Errorf("summary = %+v, want the refetched single root", resp.Summary)
	}
	if fake.calls != 2 {
		t.Errorf("upstream calls = %d, want 2", fake.calls)
	}
}

func TestBlockingSessions_BadLimit(t *testing.T) {
	tests := []string{"abc", "0", "-5"}
	for _, raw := range tests {
		t.Run(raw, func(t *testing.T) {
			r, _ := newTestRouter(Config{Sessions: &fakeSessions{}})
			w := doGET(t, r, "/v1/sessions/blocking?limit="+raw, nil)
			if w.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400 for limit %q", w.Code, raw)
			}
		})
	}
}

func TestBlockingSessions_CeilingClamps(t *testing.T) {
	fake := &fakeSessions{blocking: nil}
	r, _ := newTestRouter(Config{Sessions: fake})
	w := doGET(t, r, "/v1/sessions/blocking?limit=99999", nil)
	if w.Code != http.StatusOK {
		t.Errorf("status = %d, an oversized limit clamps rather than fails", w.Code)
	}
}

func TestStatusClassification(t *testing.T) {
	notConfigured := fmt.Errorf("%w: endpoint not set", upstream.ErrNotConfigured)
	malformed := fmt.Errorf("%w: decode record list: bad token", upstream.ErrMalformed)

	tests := []struct {
		name       string
		err        error
		demo       bool
		wantStatus datatypes.Status
	}{
		{"not configured", notConfigured, true, datatypes.StatusPendingConfig},
		{"transient without fallback", errDown, false, datatypes.StatusError},
		{"transient with fallback", errDown, true, datatypes.StatusMock},
		// Malformed means the upstream answered with garbage; demo data
		// must not paper over that.
		{"malformed with fallback", malformed, true, datatypes.StatusError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, _ := newTestRouter(Config{
				Sessions:     &fakeSessions{blockingErr: tt.err},
				DemoFallback: tt.demo,
			})
			var resp datatypes.BlockingResponse
			w := doGET(t, r, "/v1/sessions/blocking", &resp)
			if w.Code != http.StatusOK {
				t.Fatalf("status = %d, upstream trouble must still answer 200", w.Code)
			}
			if resp.Status != tt.wantStatus {
				t.Errorf("envelope status = %q, want %q", resp.Status, tt.wantStatus)
			}
			if tt.wantStatus == datatypes.StatusMock && len(resp.Tree) == 0 {
				t.Error("mock response carried no demo payload")
			}
		})
	}
}

func TestUnusableResponsesAreNotCached(t *testing.T) {
	fake := &fakeSessions{blockingErr: errDown}
	r, _ := newTestRouter(Config{Sessions: fake})

	var down datatypes.BlockingResponse
	doGET(t, r, "/v1/sessions/blocking", &down)
	if down.Status != datatypes.StatusError {
		t.Fatalf("status = %q, want error", down.Status)
	}

	// Upstream recovers; the failure must not have been cached.
	fake.blockingErr = nil
	fake.blocking = threeLevelChain()

	var up datatypes.BlockingResponse
	doGET(t, r, "/v1/sessions/blocking", &up)
	if up.Status != datatypes.StatusConnected || up.Cached {
		t.Errorf("recovered response = %q cached=%v, want fresh connected", up.Status, up.Cached)
	}
}

func TestSQLMonitor(t *testing.T) {
	r, _ := newTestRouter(Config{Sessions: &fakeSessions{
		sqlmon: upstream.DemoMonitoredStatements(),
	}})

	var resp datatypes.SQLMonitorResponse
	doGET(t, r, "/v1/sqlmon/monitor", &resp)

	if resp.HungCount != 1 {
		t.Errorf("HungCount = %d, want 1", resp.HungCount)
	}
	var flagged int
	for _, st := range resp.Statements {
		if st.IsHung {
			flagged++
		}
	}
	if flagged != 1 {
		t.Errorf("flagged statements = %d, the hung flag must survive serialization", flagged)
	}
	// (8+4+0)/(8+16+0) = 50%
	if resp.DOPEfficiencyPercent != 50 {
		t.Errorf("DOPEfficiencyPercent = %v, want 50", resp.DOPEfficiencyPercent)
	}
}

func TestWorkflow(t *testing.T) {
	r, _ := newTestRouter(Config{Traces: &fakeTraces{
		spans: upstream.DemoTraceSpans("trace-1"),
	}})

	var resp datatypes.WorkflowResponse
	doGET(t, r, "/v1/traces/trace-1/workflow", &resp)

	if resp.Status != datatypes.StatusConnected {
		t.Fatalf("status = %q", resp.Status)
	}
	if resp.Workflow.TraceID != "trace-1" {
		t.Errorf("TraceID = %q", resp.Workflow.TraceID)
	}
	if resp.Workflow.Status != datatypes.WorkflowError {
		t.Errorf("workflow status = %q, demo trace has a failing span", resp.Workflow.Status)
	}
	if len(resp.Workflow.Stages) == 0 {
		t.Fatal("no stages mapped from the demo trace")
	}
	if len(resp.RootCandidates) != 0 {
		t.Errorf("RootCandidates = %v, single-root trace must omit them", resp.RootCandidates)
	}
}

func TestWorkflow_BadTraceID(t *testing.T) {
	r, _ := newTestRouter(Config{Traces: &fakeTraces{}})
	w := doGET(t, r, "/v1/traces/bad%20trace/workflow", nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400 for a hostile trace id", w.Code)
	}
}

func TestRecentTraces(t *testing.T) {
	r, _ := newTestRouter(Config{Traces: &fakeTraces{
		recent: upstream.DemoRecentTraces(0),
	}})

	var resp datatypes.RecentTracesResponse
	doGET(t, r, "/v1/traces/recent", &resp)

	if len(resp.Traces) != 3 {
		t.Fatalf("traces = %d, want 3", len(resp.Traces))
	}
	if resp.Stats.Count != 3 || resp.Stats.ErrorCount != 1 {
		t.Errorf("stats = %+v, want count 3 / errors 1", resp.Stats)
	}
	if resp.Stats.ErrorRatePercent != 33.33 {
		t.Errorf("ErrorRatePercent = %v, want 33.33", resp.Stats.ErrorRatePercent)
	}
}

func TestRecentTraces_Offset(t *testing.T) {
	r, _ := newTestRouter(Config{Traces: &fakeTraces{
		recent: upstream.DemoRecentTraces(0),
	}})

	var resp datatypes.RecentTracesResponse
	doGET(t, r, "/v1/traces/recent?offset=1", &resp)

	if len(resp.Traces) != 2 {
		t.Fatalf("traces = %d, want 2 after skipping the first", len(resp.Traces))
	}
	if resp.Traces[0].TraceID == "demo-trace-001" {
		t.Error("offset did not skip the first summary")
	}
	// Stats describe the returned window, not the full fetch.
	if resp.Stats.Count != 2 {
		t.Errorf("stats count = %d, want 2", resp.Stats.Count)
	}

	w := doGET(t, r, "/v1/traces/recent?offset=-1", nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400 for a negative offset", w.Code)
	}
}

func TestChecksScore(t *testing.T) {
	r, _ := newTestRouter(Config{Coordinator: &fakeCoordinator{
		checks: upstream.DemoChecks(),
	}})

	var resp datatypes.ChecksResponse
	doGET(t, r, "/v1/checks/score", &resp)

	if resp.Score.Total != 5 || resp.Score.Failed != 2 {
		t.Errorf("score = %+v, want 5 checks with 2 failures", resp.Score)
	}
	// Failed high (20) + failed medium (5) over 5 checks = 500, clamped.
	if resp.Score.RiskScore != 100 {
		t.Errorf("RiskScore = %d, want the clamp at 100", resp.Score.RiskScore)
	}
	if resp.Score.PassRate != 0.6 {
		t.Errorf("PassRate = %v, want 0.6", resp.Score.PassRate)
	}
}

func TestCoordinatorHealth(t *testing.T) {
	r, _ := newTestRouter(Config{Coordinator: &fakeCoordinator{
		health: normalize.RawRecord{"state": "UP", "version": "2.4.1", "uptime_seconds": 990},
	}})

	var resp datatypes.CoordinatorResponse
	doGET(t, r, "/v1/coordinator/health", &resp)

	if resp.Coordinator.State != "UP" || resp.Coordinator.Version != "2.4.1" {
		t.Errorf("coordinator = %+v", resp.Coordinator)
	}
	if resp.Coordinator.UptimeSeconds != 990 {
		t.Errorf("UptimeSeconds = %d, want 990", resp.Coordinator.UptimeSeconds)
	}
}

func TestCacheStatsAndClear(t *testing.T) {
	fake := &fakeSessions{blocking: threeLevelChain()}
	r, _ := newTestRouter(Config{Sessions: fake})

	doGET(t, r, "/v1/sessions/blocking", nil)
	doGET(t, r, "/v1/sessions/blocking", nil) // hit

	var stats map[string]struct {
		Entries int   `json:"entries"`
		Hits    int64 `json:"hits"`
	}
	doGET(t, r, "/v1/cache/stats", &stats)
	if stats["sessions"].Entries != 1 || stats["sessions"].Hits != 1 {
		t.Errorf("sessions stats = %+v", stats["sessions"])
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/v1/cache/clear", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("clear status = %d", w.Code)
	}

	doGET(t, r, "/v1/cache/stats", &stats)
	if stats["sessions"].Entries != 0 {
		t.Errorf("entries after clear = %d, want 0", stats["sessions"].Entries)
	}
	if stats["sessions"].Hits != 1 {
		t.Errorf("hits after clear = %d, counters must survive", stats["sessions"].Hits)
	}
}

func TestHealth(t *testing.T) {
	r, _ := newTestRouter(Config{})
	var body map[string]string
	w := doGET(t, r, "/health", &body)
	if w.Code != http.StatusOK || body["status"] != "ok" {
		t.Errorf("health = %d %v", w.Code, body)
	}
}
