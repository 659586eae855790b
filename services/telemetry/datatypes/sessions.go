// Copyright (C) 2025 OCI Coordinator Dashboards contributors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package datatypes

import "fmt"

// SessionKey identifies a database session. The session id alone is not
// unique across RAC instances, so the instance id is part of the key.
type SessionKey struct {
	SessionID int64 `json:"sessionId"`
	Instance  int64 `json:"instance"`
}

// String renders the composite key in "sid|inst" form, the shape used
// for map keys and chain rendering.
func (k SessionKey) String() string {
	return fmt.Sprintf("%d|%d", k.SessionID, k.Instance)
}

// BlockedSession is one normalized row from the session backend's
// blocking-session view. BlockedBy is nil for root blockers.
type BlockedSession struct {
	Key       SessionKey  `json:"key"`
	Serial    int64       `json:"serial"`
	BlockedBy *SessionKey `json:"blockedBy,omitempty"`
	Username  string      `json:"username"`
	Program   string      `json:"program,omitempty"`
	SQLID     string      `json:"sqlId,omitempty"`
	WaitEvent string      `json:"waitEvent,omitempty"`
	// WaitSeconds is how long the session has been in its current wait.
	WaitSeconds float64 `json:"waitSeconds"`
}

// BlockingNode is a BlockedSession placed in the reconstructed
// dependency tree. Level is the path length from this node's root.
type BlockingNode struct {
	BlockedSession
	Level    int             `json:"level"`
	Children []*BlockingNode `json:"children,omitempty"`
}

// ChainEntry is the flat, discovery-ordered view of the blocking forest
// used by the dependency-chain widget.
type ChainEntry struct {
	Key         SessionKey `json:"key"`
	Level       int        `json:"level"`
	Username    string     `json:"username"`
	WaitEvent   string     `json:"waitEvent,omitempty"`
	WaitSeconds float64    `json:"waitSeconds"`
}

// BlockingSummary is the scalar rollup of one blocking snapshot.
type BlockingSummary struct {
	TotalBlocked       int      `json:"totalBlocked"`
	RootBlockers       int      `json:"rootBlockers"`
	MaxWaitSeconds     float64  `json:"maxWaitTime"`
	AffectedPrincipals []string `json:"affectedPrincipals"`
}

// BlockingResponse is the /v1/sessions/blocking payload.
type BlockingResponse struct {
	Envelope
	Tree    []*BlockingNode `json:"tree"`
	Chain   []ChainEntry    `json:"chain"`
	Summary BlockingSummary `json:"summary"`
}
