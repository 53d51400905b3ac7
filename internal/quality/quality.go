//-------------------------------------------------------------------------
//
// pgEdge Warehouse Load Pipeline
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package quality implements the data-quality check catalogue and the
// validator that runs it. Every check is a pure read over the
// operational store or the warehouse: checks count violations and sample
// offending rows, and never block or repair a load.
package quality

import (
	"fmt"
	"sort"
	"sync"
)

// Check categories.
const (
	CategoryCompleteness = "completeness"
	CategoryUniqueness   = "uniqueness"
	CategoryValidity     = "validity"
	CategoryConsistency  = "consistency"
	CategoryReferential  = "referential"
	CategoryBusiness     = "business"
	CategoryStructural   = "structural"
)

// Check is one entry of the catalogue. Query selects a single text
// column identifying each offending row; the runner derives the
// violation count and the sample from it. Checks flagged NeedsAsOf take
// the validation date as $1.
type Check struct {
	Name        string
	Category    string
	Description string
	Query       string
	NeedsAsOf   bool
}

var (
	registry = make(map[string]Check)
	mu       sync.RWMutex
)

// Register adds a check to the catalogue.
func Register(c Check) {
	mu.Lock()
	defer mu.Unlock()
	registry[c.Name] = c
}

// Get retrieves a check by name.
func Get(name string) (Check, error) {
	mu.RLock()
	defer mu.RUnlock()

	c, ok := registry[name]
	if !ok {
		return Check{}, fmt.Errorf("unknown check: %s", name)
	}
	return c, nil
}

// List returns all registered check names, sorted.
func List() []string {
	mu.RLock()
	defer mu.RUnlock()

	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// All returns all registered checks sorted by category then name.
func All() []Check {
	mu.RLock()
	defer mu.RUnlock()

	checks := make([]Check, 0, len(registry))
	for _, c := range registry {
		checks = append(checks, c)
	}
	sort.Slice(checks, func(i, j int) bool {
		if checks[i].Category != checks[j].Category {
			return checks[i].Category < checks[j].Category
		}
		return checks[i].Name < checks[j].Name
	})
	return checks
}
