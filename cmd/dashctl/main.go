// Copyright (C) 2025 OCI Coordinator Dashboards contributors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// dashctl is the operator CLI for the telemetry service: it queries the
// derived-metric endpoints and renders them for a terminal, for quick
// triage without opening the dashboards.
package main

import (
	"log"
	"os"

	"github.com/spf13/cobra"
)

var (
	endpointFlag  string
	jsonFlag      bool
	skipCacheFlag bool
	limitFlag     int
	offsetFlag    int

	rootCmd = &cobra.Command{
		Use:   "dashctl",
		Short: "A CLI to query the OCI coordinator telemetry service",
		Long: `dashctl queries the telemetry service's derived-metric endpoints
and renders blocking chains, workflow stages, and risk scores in the
terminal.`,
	}

	sessionsCmd = &cobra.Command{
		Use:   "sessions",
		Short: "Show the current blocking-session dependency chains",
		Run:   runSessions,
	}
	sqlmonCmd = &cobra.Command{
		Use:   "sqlmon",
		Short: "Show monitored SQL statements with hang flags and DOP efficiency",
		Run:   runSQLMonitor,
	}
	workflowCmd = &cobra.Command{
		Use:   "workflow [trace-id]",
		Short: "Show one coordinator request as an ordered stage pipeline",
		Args:  cobra.ExactArgs(1),
		Run:   runWorkflow,
	}
	tracesCmd = &cobra.Command{
		Use:   "traces",
		Short: "Show recent coordinator workflow summaries",
		Run:   runRecentTraces,
	}
	scoreCmd = &cobra.Command{
		Use:   "score",
		Short: "Show the latest check run and derived risk score",
		Run:   runScore,
	}
	healthCmd = &cobra.Command{
		Use:   "health",
		Short: "Show the coordinator agent's health report",
		Run:   runHealth,
	}
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("Error executing command: %v", err)
	}
}

func init() {
	defaultEndpoint := os.Getenv("TELEMETRY_URL")
	if defaultEndpoint == "" {
		defaultEndpoint = "http://localhost:12310"
	}
	rootCmd.PersistentFlags().StringVar(&endpointFlag, "endpoint", defaultEndpoint,
		"Base URL of the telemetry service")
	rootCmd.PersistentFlags().BoolVar(&jsonFlag, "json", false,
		"Print the raw JSON response instead of a rendered view")
	rootCmd.PersistentFlags().BoolVar(&skipCacheFlag, "skip-cache", false,
		"Bypass the service's response cache")

	sessionsCmd.Flags().IntVar(&limitFlag, "limit", 50, "Maximum sessions to fetch")
	tracesCmd.Flags().IntVar(&limitFlag, "limit", 25, "Maximum traces to fetch")
	tracesCmd.Flags().IntVar(&offsetFlag, "offset", 0, "Traces to skip before the window")

	rootCmd.AddCommand(sessionsCmd, sqlmonCmd, workflowCmd, tracesCmd, scoreCmd, healthCmd)
}
