// Copyright (C) 2025 OCI Coordinator Dashboards contributors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package normalize converts loosely-typed upstream payloads into the
// canonical records in datatypes.
//
// # Description
//
// The monitoring backends are not contractually stable: the same logical
// field arrives as "sid", "session_id" or "SESSION_ID" depending on the
// backend version, and numbers arrive as JSON numbers or as strings.
// This package is the only place that knowledge lives. Every accessor
// takes an ordered alias list and returns the value of the first alias
// that is present and coercible; everything else yields a fixed default.
//
// Accessors never return errors. A malformed record normalizes to a
// record full of defaults, not a failure — only total payload
// unreadability is surfaced to callers, and that happens upstream of
// this package.
package normalize

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// RawRecord is one upstream fact as decoded from JSON, before any shape
// guarantees. Consumers must go through the typed accessors; direct map
// access defeats the alias handling.
type RawRecord map[string]any

// Str returns the first present alias coerced to a string, or "".
func (r RawRecord) Str(aliases ...string) string {
	return r.StrOr("", aliases...)
}

// StrOr returns the first present alias coerced to a string, or def.
func (r RawRecord) StrOr(def string, aliases ...string) string {
	for _, alias := range aliases {
		v, ok := r[alias]
		if !ok || v == nil {
			continue
		}
		switch t := v.(type) {
		case string:
			return t
		case json.Number:
			return t.String()
		case float64:
			return strconv.FormatFloat(t, 'f', -1, 64)
		case bool:
			return strconv.FormatBool(t)
		case int:
			return strconv.Itoa(t)
		case int64:
			return strconv.FormatInt(t, 10)
		}
	}
	return def
}

// Float returns the first present alias coerced to a float64, or 0.
// String values are parsed; unparsable strings fall through to the next
// alias so a garbage value cannot shadow a usable one.
func (r RawRecord) Float(aliases ...string) float64 {
	for _, alias := range aliases {
		v, ok := r[alias]
		if !ok || v == nil {
			continue
		}
		switch t := v.(type) {
		case float64:
			return t
		case int:
			return float64(t)
		case int64:
			return float64(t)
		case json.Number:
			if f, err := t.Float64(); err == nil {
				return f
			}
		case string:
			if f, err := strconv.ParseFloat(strings.TrimSpace(t), 64); err == nil {
				return f
			}
		}
	}
	return 0
}

// Int returns the first present alias coerced to an int64, or 0.
// Fractional values truncate toward zero.
func (r RawRecord) Int(aliases ...string) int64 {
	for _, alias := range aliases {
		v, ok := r[alias]
		if !ok || v == nil {
			continue
		}
		switch t := v.(type) {
		case float64:
			return int64(t)
		case int:
			return int64(t)
		case int64:
			return t
		case json.Number:
			if n, err := t.Int64(); err == nil {
				return n
			}
			if f, err := t.Float64(); err == nil {
				return int64(f)
			}
		case string:
			s := strings.TrimSpace(t)
			if n, err := strconv.ParseInt(s, 10, 64); err == nil {
				return n
			}
			if f, err := strconv.ParseFloat(s, 64); err == nil {
				return int64(f)
			}
		}
	}
	return 0
}

// Bool returns the first present alias coerced to a bool, or false.
// Accepts true/false, "true"/"false", "Y"/"N", and numeric 0/1 forms.
func (r RawRecord) Bool(aliases ...string) bool {
	for _, alias := range aliases {
		v, ok := r[alias]
		if !ok || v == nil {
			continue
		}
		switch t := v.(type) {
		case bool:
			return t
		case float64:
			return t != 0
		case int:
			return t != 0
		case int64:
			return t != 0
		case string:
			switch strings.ToLower(strings.TrimSpace(t)) {
			case "true", "t", "y", "yes", "1":
				return true
			case "false", "f", "n", "no", "0", "":
				return false
			}
		}
	}
	return false
}

// Enum returns the first present alias whose uppercased value is in
// allowed, or def. Used for status-like fields where arbitrary strings
// would leak into dashboards.
func (r RawRecord) Enum(def string, allowed []string, aliases ...string) string {
	raw := r.Str(aliases...)
	if raw == "" {
		return def
	}
	up := strings.ToUpper(strings.TrimSpace(raw))
	for _, a := range allowed {
		if up == a {
			return a
		}
	}
	return def
}

// Time returns the first present alias parsed as a timestamp, or the
// zero time. Accepts RFC 3339 strings and epoch milliseconds; epoch
// seconds are recognized by magnitude.
func (r RawRecord) Time(aliases ...string) time.Time {
	for _, alias := range aliases {
		v, ok := r[alias]
		if !ok || v == nil {
			continue
		}
		switch t := v.(type) {
		case string:
			if ts, err := time.Parse(time.RFC3339Nano, t); err == nil {
				return ts
			}
			if ts, err := time.Parse(time.RFC3339, t); err == nil {
				return ts
			}
			if n, err := strconv.ParseInt(strings.TrimSpace(t), 10, 64); err == nil {
				return epochToTime(n)
			}
		case float64:
			return epochToTime(int64(t))
		case int64:
			return epochToTime(t)
		case json.Number:
			if n, err := t.Int64(); err == nil {
				return epochToTime(n)
			}
		}
	}
	return time.Time{}
}

// Map returns the first present alias that is a JSON object, or nil.
func (r RawRecord) Map(aliases ...string) map[string]any {
	for _, alias := range aliases {
		if m, ok := r[alias].(map[string]any); ok {
			return m
		}
	}
	return nil
}

// List returns the first present alias that is a JSON array, or nil.
func (r RawRecord) List(aliases ...string) []any {
	for _, alias := range aliases {
		if l, ok := r[alias].([]any); ok {
			return l
		}
	}
	return nil
}

// Has reports whether any alias is present with a non-nil value.
func (r RawRecord) Has(aliases ...string) bool {
	for _, alias := range aliases {
		if v, ok := r[alias]; ok && v != nil {
			return true
		}
	}
	return false
}

// epochToTime treats values below 1e12 as seconds and the rest as
// milliseconds, which keeps both conventions working until 33658 AD.
func epochToTime(n int64) time.Time {
	if n == 0 {
		return time.Time{}
	}
	if n < 1_000_000_000_000 {
		return time.Unix(n, 0).UTC()
	}
	return time.UnixMilli(n).UTC()
}
