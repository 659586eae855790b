// Copyright (C) 2025 OCI Coordinator Dashboards contributors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package validation provides input validation utilities for
// security-critical operations.
//
// This package contains validators for user-provided inputs that end up
// in upstream request URLs. Using these validators prevents path
// traversal and request-smuggling through crafted identifiers.
package validation

import (
	"fmt"
	"regexp"
	"strings"
)

// traceIDPattern matches APM trace identifiers: hex digests from the
// tracing backend plus the human-readable ids demo data uses. Dots,
// hyphens and underscores are allowed in the interior only.
var traceIDPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._\-]{0,63}$`)

// ValidateTraceID validates a trace identifier before it is embedded in
// an upstream URL path.
//
// Valid trace ids:
//   - 1-64 characters
//   - letters and digits
//   - dots, hyphens, underscores after the first character
//
// Returns an error if the id is invalid.
func ValidateTraceID(traceID string) error {
	if traceID == "" {
		return fmt.Errorf("trace id cannot be empty")
	}
	if !traceIDPattern.MatchString(traceID) {
		return fmt.Errorf("invalid trace id format: %q", traceID)
	}
	return nil
}

// SanitizeTraceID trims surrounding whitespace and validates the result.
// Returns the cleaned id if valid, or an error if invalid.
func SanitizeTraceID(raw string) (string, error) {
	traceID := strings.TrimSpace(raw)
	if err := ValidateTraceID(traceID); err != nil {
		return "", err
	}
	return traceID, nil
}
