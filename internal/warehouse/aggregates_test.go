//-------------------------------------------------------------------------
//
// pgEdge Warehouse Load Pipeline
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package warehouse

import (
	"testing"
	"time"
)

func TestScopeAll(t *testing.T) {
	scope := ScopeAll()
	if !scope.All {
		t.Error("Expected ScopeAll to set All")
	}
	if scope.SinceDateKey != 0 {
		t.Errorf("Expected zero SinceDateKey, got %d", scope.SinceDateKey)
	}
}

func TestScopeSince(t *testing.T) {
	tests := []struct {
		name string
		date time.Time
		want int
	}{
		{"mid year", time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), 20240601},
		{"year start", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), 20240101},
		{"year end", time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC), 20231231},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			scope := ScopeSince(DateKey(tt.date))
			if scope.All {
				t.Error("Expected ScopeSince not to set All")
			}
			if scope.SinceDateKey != tt.want {
				t.Errorf("Expected SinceDateKey %d, got %d", tt.want, scope.SinceDateKey)
			}
		})
	}
}
