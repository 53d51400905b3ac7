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
	"math"
	"testing"
)

func costPtr(v float64) *float64 {
	return &v
}

func TestBuildMeasures(t *testing.T) {
	line := SourceLine{
		ItemID:             "ITEM00001",
		Quantity:           2,
		UnitPrice:          10.00,
		DiscountPercentage: 5,
		LineTotal:          19.00,
		ProductCost:        costPtr(6.00),
	}

	m, flag, err := BuildMeasures(line)
	if err != nil {
		t.Fatalf("BuildMeasures failed: %v", err)
	}
	if flag != nil {
		t.Errorf("Expected no quality flag, got %s", *flag)
	}
	if m.DiscountAmount != 1.00 {
		t.Errorf("Expected discount amount 1.00, got %.2f", m.DiscountAmount)
	}
	if m.LineTotal != 19.00 {
		t.Errorf("Expected line total 19.00, got %.2f", m.LineTotal)
	}
	// profit = 19.00 - 6.00 * 2
	if m.Profit != 7.00 {
		t.Errorf("Expected profit 7.00, got %.2f", m.Profit)
	}
}

func TestBuildMeasuresMismatchIsFlaggedNotRejected(t *testing.T) {
	// Claimed line total 25.00 against a recomputed 19.00: the row loads
	// with the claimed value and the mismatch flag.
	line := SourceLine{
		ItemID:             "ITEM00002",
		Quantity:           2,
		UnitPrice:          10.00,
		DiscountPercentage: 5,
		LineTotal:          25.00,
		ProductCost:        costPtr(6.00),
	}

	m, flag, err := BuildMeasures(line)
	if err != nil {
		t.Fatalf("BuildMeasures failed: %v", err)
	}
	if flag == nil {
		t.Fatal("Expected mismatch flag, got nil")
	}
	if *flag != FlagLineTotalMismatch {
		t.Errorf("Expected flag %s, got %s", FlagLineTotalMismatch, *flag)
	}
	if m.LineTotal != 25.00 {
		t.Errorf("Expected claimed line total 25.00 preserved, got %.2f", m.LineTotal)
	}
}

func TestBuildMeasuresToleranceBoundary(t *testing.T) {
	tests := []struct {
		name       string
		lineTotal  float64
		expectFlag bool
	}{
		{"exact match", 19.00, false},
		{"off by exactly the tolerance", 19.01, false},
		{"off by more than the tolerance", 19.02, true},
		{"under by exactly the tolerance", 18.99, false},
		{"under by more than the tolerance", 18.98, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			line := SourceLine{
				ItemID:             "ITEM00003",
				Quantity:           2,
				UnitPrice:          10.00,
				DiscountPercentage: 5,
				LineTotal:          tt.lineTotal,
			}
			_, flag, err := BuildMeasures(line)
			if err != nil {
				t.Fatalf("BuildMeasures failed: %v", err)
			}
			if (flag != nil) != tt.expectFlag {
				t.Errorf("Expected flag=%v, got flag=%v", tt.expectFlag, flag != nil)
			}
		})
	}
}

func TestBuildMeasuresValidation(t *testing.T) {
	tests := []struct {
		name string
		line SourceLine
	}{
		{"zero quantity", SourceLine{ItemID: "I1", Quantity: 0, UnitPrice: 10}},
		{"negative quantity", SourceLine{ItemID: "I1", Quantity: -2, UnitPrice: 10}},
		{"negative unit price", SourceLine{ItemID: "I1", Quantity: 1, UnitPrice: -0.01}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, _, err := BuildMeasures(tt.line); err == nil {
				t.Error("Expected validation error, got nil")
			}
		})
	}
}

func TestBuildMeasuresMissingCost(t *testing.T) {
	// An orphaned item has no product cost; profit falls back to the
	// full line total rather than failing the row.
	line := SourceLine{
		ItemID:    "ITEM00004",
		Quantity:  1,
		UnitPrice: 10.00,
		LineTotal: 10.00,
	}

	m, _, err := BuildMeasures(line)
	if err != nil {
		t.Fatalf("BuildMeasures failed: %v", err)
	}
	if m.Profit != 10.00 {
		t.Errorf("Expected profit 10.00 with missing cost, got %.2f", m.Profit)
	}
}

func TestBuildMeasuresDiscountRounding(t *testing.T) {
	// 3 * 33.33 * 15% = 14.99850 rounds to 15.00
	line := SourceLine{
		ItemID:             "ITEM00005",
		Quantity:           3,
		UnitPrice:          33.33,
		DiscountPercentage: 15,
		LineTotal:          84.99,
		ProductCost:        costPtr(20.00),
	}

	m, flag, err := BuildMeasures(line)
	if err != nil {
		t.Fatalf("BuildMeasures failed: %v", err)
	}
	if math.Abs(m.DiscountAmount-15.00) > 1e-9 {
		t.Errorf("Expected discount amount 15.00, got %.4f", m.DiscountAmount)
	}
	if flag != nil {
		t.Errorf("Expected no flag, got %s", *flag)
	}
}
