// Copyright (C) 2025 OCI Coordinator Dashboards contributors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/adibirzu/oci-coordinator-dashboards/services/telemetry/datatypes"
)

// parseLimit reads the limit query parameter, applying a default and a
// hard ceiling. A malformed or out-of-range value is a caller error and
// ends the request with 400; the second return reports whether the
// handler may continue.
func parseLimit(c *gin.Context, def, ceiling int) (int, bool) {
	raw := c.Query("limit")
	if raw == "" {
		return def, true
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 1 {
		c.JSON(http.StatusBadRequest, datatypes.NewErrorEnvelope(
			datatypes.StatusError, fmt.Sprintf("invalid limit %q", raw)))
		return 0, false
	}
	if limit > ceiling {
		limit = ceiling
	}
	return limit, true
}

// parseOffset reads the offset query parameter for windowed list
// endpoints. Absent means zero; a malformed or negative value ends the
// request with 400.
func parseOffset(c *gin.Context) (int, bool) {
	raw := c.Query("offset")
	if raw == "" {
		return 0, true
	}
	offset, err := strconv.Atoi(raw)
	if err != nil || offset < 0 {
		c.JSON(http.StatusBadRequest, datatypes.NewErrorEnvelope(
			datatypes.StatusError, fmt.Sprintf("invalid offset %q", raw)))
		return 0, false
	}
	return offset, true
}

// parseSkipCache reads the skipCache query parameter. Anything
// strconv.ParseBool accepts works; a bare or absent parameter means
// false.
func parseSkipCache(c *gin.Context) bool {
	raw := c.Query("skipCache")
	if raw == "" {
		return false
	}
	skip, err := strconv.ParseBool(raw)
	if err != nil {
		return false
	}
	return skip
}
