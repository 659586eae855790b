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

	"github.com/adibirzu/oci-coordinator-dashboards/services/telemetry/normalize"
)

// CoordinatorBackend queries the coordinator agent for health and the
// latest configuration-check run.
type CoordinatorBackend struct {
	baseURL string
	client  HTTPClient
}

// NewCoordinatorBackend builds the client. A nil httpClient gets a
// default with the coordinator timeout.
func NewCoordinatorBackend(cfg Config, httpClient HTTPClient) *CoordinatorBackend {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: CoordinatorTimeout}
	}
	return &CoordinatorBackend{baseURL: cfg.CoordinatorURL, client: httpClient}
}

func (b *CoordinatorBackend) configured() error {
	if b.baseURL == "" {
		return fmt.Errorf("%w: coordinator URL not set", ErrNotConfigured)
	}
	return nil
}

// Health returns the coordinator's health report as one raw record.
func (b *CoordinatorBackend) Health(ctx context.Context) (normalize.RawRecord, error) {
	if err := b.configured(); err != nil {
		return nil, err
	}
	return getRecord(ctx, b.client, b.baseURL+"/health")
}

// FetchChecks returns the latest configuration-check run.
func (b *CoordinatorBackend) FetchChecks(ctx context.Context) ([]normalize.RawRecord, error) {
	if err := b.configured(); err != nil {
		return nil, err
	}
	return getRecords(ctx, b.client, b.baseURL+"/checks")
}
