// Copyright (C) 2025 OCI Coordinator Dashboards contributors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package reconstruct rebuilds structure that the upstream backends
// flatten away: blocking-dependency forests from session lists and
// parent/child indexes from flat span lists.
package reconstruct

import (
	"github.com/adibirzu/oci-coordinator-dashboards/services/telemetry/datatypes"
)

// BlockingForest is the reconstructed dependency structure of one
// blocking snapshot: a forest of trees rooted at the root blockers,
// plus a flat chain view in DFS discovery order for rendering.
type BlockingForest struct {
	Roots []*datatypes.BlockingNode
	Chain []datatypes.ChainEntry
}

// BuildBlockingForest turns a flat "who blocks whom" session list into
// a forest.
//
// Roots are sessions with no blocker; every other session is attached
// under the session its BlockedBy key names, at level parent+1. When
// two records claim the same composite key the later record in input
// order wins. The upstream promises acyclicity but does not always
// deliver it, so a revisited key is treated as already placed and is
// not descended into again.
func BuildBlockingForest(sessions []datatypes.BlockedSession) BlockingForest {
	// Later duplicates overwrite earlier ones; keyOrder keeps the input
	// order of the surviving records stable for child discovery.
	byKey := make(map[string]datatypes.BlockedSession, len(sessions))
	keyOrder := make([]string, 0, len(sessions))
	for _, s := range sessions {
		k := s.Key.String()
		if _, seen := byKey[k]; !seen {
			keyOrder = append(keyOrder, k)
		}
		byKey[k] = s
	}

	childKeys := make(map[string][]string)
	var rootKeys []string
	for _, k := range keyOrder {
		s := byKey[k]
		if s.BlockedBy == nil {
			rootKeys = append(rootKeys, k)
			continue
		}
		parent := s.BlockedBy.String()
		childKeys[parent] = append(childKeys[parent], k)
	}

	forest := BlockingForest{}
	placed := make(map[string]bool, len(byKey))

	var attach func(key string, level int) *datatypes.BlockingNode
	attach = func(key string, level int) *datatypes.BlockingNode {
		if placed[key] {
			return nil
		}
		placed[key] = true

		s := byKey[key]
		node := &datatypes.BlockingNode{BlockedSession: s, Level: level}
		forest.Chain = append(forest.Chain, datatypes.ChainEntry{
			Key:         s.Key,
			Level:       level,
			Username:    s.Username,
			WaitEvent:   s.WaitEvent,
			WaitSeconds: s.WaitSeconds,
		})
		for _, ck := range childKeys[key] {
			if child := attach(ck, level+1); child != nil {
				node.Children = append(node.Children, child)
			}
		}
		return node
	}

	for _, rk := range rootKeys {
		if root := attach(rk, 0); root != nil {
			forest.Roots = append(forest.Roots, root)
		}
	}

	// Anything still unplaced names a blocker that is missing from the
	// snapshot, or sits on a cycle. Surface it as a tree of its own
	// rather than dropping it; input order keeps this deterministic.
	for _, k := range keyOrder {
		if placed[k] {
			continue
		}
		if orphan := attach(k, 0); orphan != nil {
			forest.Roots = append(forest.Roots, orphan)
		}
	}
	return forest
}
