// Copyright (C) 2025 OCI Coordinator Dashboards contributors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package datatypes holds the canonical, strongly-shaped records the
// telemetry service exchanges with its callers.
//
// Upstream payloads are loosely typed and field names drift between
// backend versions; nothing in this package is ever decoded directly
// from an upstream response. The normalize package is the only producer
// of these structs.
package datatypes

import "time"

// Status classifies how a response payload was obtained.
//
// Every endpoint returns exactly one of these values so the dashboard
// can distinguish live data from fallbacks without inspecting payloads.
type Status string

const (
	// StatusConnected means the payload came from a live upstream call.
	StatusConnected Status = "connected"

	// StatusMock means the upstream was unreachable and the payload is
	// the clearly-labeled demo dataset.
	StatusMock Status = "mock"

	// StatusError means the upstream was reached but returned a failure
	// or an unusable payload.
	StatusError Status = "error"

	// StatusPendingConfig means a required identifier or endpoint is not
	// configured. Distinct from StatusError so the UI can render a setup
	// prompt instead of an incident.
	StatusPendingConfig Status = "pending_config"
)

// Envelope is the uniform response header shared by every derived-metric
// endpoint. Response structs embed it so the status fields serialize at
// the top level of the JSON object.
type Envelope struct {
	Status Status `json:"status"`

	// Message explains non-connected statuses. Empty when connected.
	Message string `json:"message,omitempty"`

	// Cached and CacheAgeSeconds are set only when the payload was
	// served from the response cache.
	Cached          bool  `json:"cached,omitempty"`
	CacheAgeSeconds int64 `json:"cacheAge,omitempty"`

	// Timestamp is the RFC 3339 time the response was assembled.
	Timestamp string `json:"timestamp"`
}

// NewEnvelope returns an Envelope stamped with the current time.
func NewEnvelope(status Status) Envelope {
	return Envelope{
		Status:    status,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
}

// NewErrorEnvelope returns an Envelope for a non-connected status with a
// caller-facing message.
func NewErrorEnvelope(status Status, message string) Envelope {
	env := NewEnvelope(status)
	env.Message = message
	return env
}
