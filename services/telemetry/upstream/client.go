// Copyright (C) 2025 OCI Coordinator Dashboards contributors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package upstream holds the thin clients for the three monitoring
// backends the engine correlates: the database session backend, the
// APM tracing backend, and the coordinator agent.
//
// Each client makes exactly one attempt per query with a fixed timeout.
// There are no retries here — a failure is classified and returned so
// the handler can fall back to demo data or an error status. Field
// names and casing in the responses are not contractually stable, which
// is why everything is decoded into normalize.RawRecord.
package upstream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/adibirzu/oci-coordinator-dashboards/services/telemetry/normalize"
)

// Per-backend request timeouts. The APM backend paginates large traces
// server-side and is the slowest of the three.
const (
	SessionsTimeout    = 5 * time.Second
	APMTimeout         = 15 * time.Second
	CoordinatorTimeout = 3 * time.Second
)

// ErrNotConfigured marks a query that cannot be attempted because a
// required endpoint or identifier is absent. Handlers surface it as
// pending_config, never as a transient failure.
var ErrNotConfigured = errors.New("upstream not configured")

// ErrMalformed marks a response that arrived but could not be decoded
// at all. Unlike a transient failure this is not demo-fallback
// material: the upstream is reachable and lying, which callers need to
// see as an error.
var ErrMalformed = errors.New("malformed upstream payload")

// HTTPClient is the injectable transport, satisfied by *http.Client and
// by test mocks.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Config carries the environment-owned upstream coordinates. Values are
// opaque strings here; validation of their internal structure belongs
// to the configuration loader that produced them.
type Config struct {
	SessionsURL    string
	APMURL         string
	CoordinatorURL string

	DatabaseID    string
	APMDomainID   string
	CompartmentID string
}

// listEnvelope is the wrapper shape some backend versions use; others
// return a bare JSON array. Both are accepted.
type listEnvelope struct {
	Items []normalize.RawRecord `json:"items"`
	Data  []normalize.RawRecord `json:"data"`
}

// getRecords performs one GET and decodes a record list from either a
// bare array or an {items|data: []} wrapper.
func getRecords(ctx context.Context, client HTTPClient, url string) ([]normalize.RawRecord, error) {
	body, err := getBody(ctx, client, url)
	if err != nil {
		return nil, err
	}

	var records []normalize.RawRecord
	if err := json.Unmarshal(body, &records); err == nil {
		return records, nil
	}

	var wrapped listEnvelope
	if err := json.Unmarshal(body, &wrapped); err != nil {
		return nil, fmt.Errorf("%w: decode record list: %v", ErrMalformed, err)
	}
	if wrapped.Items != nil {
		return wrapped.Items, nil
	}
	return wrapped.Data, nil
}

// getRecord performs one GET and decodes a single JSON object.
func getRecord(ctx context.Context, client HTTPClient, url string) (normalize.RawRecord, error) {
	body, err := getBody(ctx, client, url)
	if err != nil {
		return nil, err
	}
	var record normalize.RawRecord
	if err := json.Unmarshal(body, &record); err != nil {
		return nil, fmt.Errorf("%w: decode record: %v", ErrMalformed, err)
	}
	return record, nil
}

func getBody(ctx context.Context, client HTTPClient, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call upstream: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("upstream returned status %s", resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 16<<20))
	if err != nil {
		return nil, fmt.Errorf("read upstream body: %w", err)
	}
	return body, nil
}
