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

// APMBackend queries the distributed-tracing service for trace span
// lists and recent-trace summaries.
type APMBackend struct {
	baseURL  string
	domainID string
	client   HTTPClient
}

// NewAPMBackend builds the client. A nil httpClient gets a default with
// the APM timeout.
func NewAPMBackend(cfg Config, httpClient HTTPClient) *APMBackend {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: APMTimeout}
	}
	return &APMBackend{
		baseURL:  cfg.APMURL,
		domainID: cfg.APMDomainID,
		client:   httpClient,
	}
}

func (b *APMBackend) configured() error {
	if b.baseURL == "" {
		return fmt.Errorf("%w: APM backend URL not set", ErrNotConfigured)
	}
	if b.domainID == "" {
		return fmt.Errorf("%w: APM domain OCID not set", ErrNotConfigured)
	}
	return nil
}

// FetchTraceSpans returns every span of one trace as raw records. The
// backend may return them in any order; reconstruction does not rely
// on ordering.
func (b *APMBackend) FetchTraceSpans(ctx context.Context, traceID string) ([]normalize.RawRecord, error) {
	if err := b.configured(); err != nil {
		return nil, err
	}
	endpoint := fmt.Sprintf("%s/domains/%s/traces/%s/spans",
		b.baseURL, url.PathEscape(b.domainID), url.PathEscape(traceID))
	return getRecords(ctx, b.client, endpoint)
}

// FetchRecentTraces returns summaries of the most recent traces.
func (b *APMBackend) FetchRecentTraces(ctx context.Context, limit int) ([]normalize.RawRecord, error) {
	if err := b.configured(); err != nil {
		return nil, err
	}
	endpoint := fmt.Sprintf("%s/domains/%s/traces?limit=%d",
		b.baseURL, url.PathEscape(b.domainID), limit)
	return getRecords(ctx, b.client, endpoint)
}
