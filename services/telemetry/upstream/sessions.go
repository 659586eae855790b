// Copyright (C) 2025 OCI Coordinator Dashboards contributors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package upstream

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/adibirzu/oci-coordinator-dashboards/services/telemetry/normalize"
)

// SessionBackend queries the database management service for blocking
// sessions and monitored SQL statements.
type SessionBackend struct {
	baseURL    string
	databaseID string
	client     HTTPClient
}

// NewSessionBackend builds the client. A nil httpClient gets a default
// with the sessions timeout.
func NewSessionBackend(cfg Config, httpClient HTTPClient) *SessionBackend {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: SessionsTimeout}
	}
	return &SessionBackend{
		baseURL:    cfg.SessionsURL,
		databaseID: cfg.DatabaseID,
		client:     httpClient,
	}
}

func (b *SessionBackend) configured() error {
	if b.baseURL == "" {
		return fmt.Errorf("%w: session backend URL not set", ErrNotConfigured)
	}
	if b.databaseID == "" {
		return fmt.Errorf("%w: managed database OCID not set", ErrNotConfigured)
	}
	return nil
}

// FetchBlockingSessions returns the current blocking-session snapshot
// as raw records, capped at limit rows server-side.
func (b *SessionBackend) FetchBlockingSessions(ctx context.Context, limit int) ([]normalize.RawRecord, error) {
	if err := b.configured(); err != nil {
		return nil, err
	}
	endpoint := fmt.Sprintf("%s/databases/%s/blocking-sessions?limit=%d",
		b.baseURL, url.PathEscape(b.databaseID), limit)
	return getRecords(ctx, b.client, endpoint)
}

// FetchMonitoredStatements returns the SQL monitoring snapshot.
func (b *SessionBackend) FetchMonitoredStatements(ctx context.Context) ([]normalize.RawRecord, error) {
	if err := b.configured(); err != nil {
		return nil, err
	}
	endpoint := fmt.Sprintf("%s/databases/%s/sql-monitor",
		b.baseURL, url.PathEscape(b.databaseID))
	return getRecords(ctx, b.client, endpoint)
}
