// Copyright (C) 2025 OCI Coordinator Dashboards contributors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package upstream

import (
	"os"
	"strings"
)

// ConfigFromEnv reads the upstream coordinates from the environment.
// Missing values are left empty; the backends report ErrNotConfigured
// when they are asked to query without them.
func ConfigFromEnv() Config {
	return Config{
		SessionsURL:    envURL("SESSIONS_API_URL"),
		APMURL:         envURL("APM_API_URL"),
		CoordinatorURL: envURL("COORDINATOR_API_URL"),

		DatabaseID:    envTrim("MANAGED_DATABASE_ID"),
		APMDomainID:   envTrim("APM_DOMAIN_ID"),
		CompartmentID: envTrim("COMPARTMENT_ID"),
	}
}

// envURL reads a URL-valued variable, stripping quotes the container
// runtime sometimes passes literally, plus any trailing slash so path
// joining stays predictable.
func envURL(name string) string {
	return strings.TrimRight(envTrim(name), "/")
}

func envTrim(name string) string {
	return strings.Trim(os.Getenv(name), "\"' ")
}
