//-------------------------------------------------------------------------
//
// pgEdge Warehouse Load Pipeline
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package pipeline

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/pgEdge/pgedge-warehouse/internal/warehouse"
)

func TestFinalizeStatus(t *testing.T) {
	tests := []struct {
		name     string
		report   Report
		expected string
	}{
		{
			name:     "clean run",
			report:   Report{Facts: warehouse.FactStats{Loaded: 100}},
			expected: StatusSuccess,
		},
		{
			name:     "idempotent rerun with skips only",
			report:   Report{Facts: warehouse.FactStats{Skipped: 100}},
			expected: StatusSuccess,
		},
		{
			name:     "unresolved rows",
			report:   Report{Facts: warehouse.FactStats{Loaded: 99, Unresolved: 1}},
			expected: StatusWarnings,
		},
		{
			name:     "invalid rows",
			report:   Report{Facts: warehouse.FactStats{Loaded: 99, Invalid: 1}},
			expected: StatusWarnings,
		},
		{
			name:     "flagged rows",
			report:   Report{Facts: warehouse.FactStats{Loaded: 100, Flagged: 2}},
			expected: StatusWarnings,
		},
		{
			name:     "failed stays failed",
			report:   Report{Status: StatusFailed, Facts: warehouse.FactStats{Loaded: 50}},
			expected: StatusFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.report.finalize()
			if tt.report.Status != tt.expected {
				t.Errorf("Expected status %s, got %s", tt.expected, tt.report.Status)
			}
		})
	}
}

func TestAddErrorBounded(t *testing.T) {
	var report Report
	for i := 0; i < maxSamples*3; i++ {
		report.addError(fmt.Sprintf("error %d", i))
	}

	if len(report.Errors) != maxSamples {
		t.Errorf("Expected %d error samples, got %d", maxSamples, len(report.Errors))
	}
	if report.Errors[0] != "error 0" {
		t.Errorf("Expected first error preserved, got %s", report.Errors[0])
	}
}

func TestReportJSONShape(t *testing.T) {
	report := Report{
		Status:    StatusSuccess,
		BatchDate: "2024-06-15",
		Facts:     warehouse.FactStats{Loaded: 10},
	}
	report.finalize()

	data, err := json.Marshal(report)
	if err != nil {
		t.Fatalf("Failed to marshal report: %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Report is not valid JSON: %v", err)
	}
	if decoded["status"] != StatusSuccess {
		t.Errorf("Expected status field, got %v", decoded["status"])
	}
	if decoded["batch_date"] != "2024-06-15" {
		t.Errorf("Expected batch_date field, got %v", decoded["batch_date"])
	}
	if _, present := decoded["aggregates"]; present {
		t.Error("Expected aggregates omitted when nil")
	}
	if _, present := decoded["errors"]; present {
		t.Error("Expected errors omitted when empty")
	}
}
