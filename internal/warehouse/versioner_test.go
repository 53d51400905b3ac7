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
)

func TestStageNewEntity(t *testing.T) {
	v := NewVersioner(Customers)
	batch := []Record{
		{BusinessKey: "CUST0001", Attributes: map[string]string{"city": "NY"}},
	}

	decisions, stats := v.Stage(batch, map[string]*Version{})
	if len(decisions) != 1 {
		t.Fatalf("Expected 1 decision, got %d", len(decisions))
	}
	if decisions[0].Change.Kind != NewEntity {
		t.Errorf("Expected NewEntity, got %s", decisions[0].Change.Kind)
	}
	if stats.NewEntities != 1 {
		t.Errorf("Expected 1 new entity, got %d", stats.NewEntities)
	}
}

func TestStageUnchangedBatchIsIdempotent(t *testing.T) {
	v := NewVersioner(Customers)
	attrs := map[string]string{"full_name": "Jane Doe", "city": "NY"}
	batch := []Record{{BusinessKey: "CUST0001", Attributes: attrs}}
	current := map[string]*Version{
		"CUST0001": {SurrogateKey: 1, BusinessKey: "CUST0001", Attributes: attrs, IsCurrent: true},
	}

	decisions, stats := v.Stage(batch, current)
	if len(decisions) != 0 {
		t.Errorf("Expected 0 decisions for unchanged batch, got %d", len(decisions))
	}
	if stats.Unchanged != 1 {
		t.Errorf("Expected 1 unchanged, got %d", stats.Unchanged)
	}
}

func TestStageLastWriteWins(t *testing.T) {
	// Multiple records for the same business key within one batch
	// collapse to a single transition using the last-seen values.
	v := NewVersioner(Customers)
	batch := []Record{
		{BusinessKey: "CUST0001", Attributes: map[string]string{"city": "NY"}},
		{BusinessKey: "CUST0001", Attributes: map[string]string{"city": "CA"}},
		{BusinessKey: "CUST0001", Attributes: map[string]string{"city": "TX"}},
	}
	current := map[string]*Version{
		"CUST0001": {SurrogateKey: 1, BusinessKey: "CUST0001",
			Attributes: map[string]string{"city": "NY"}, IsCurrent: true},
	}

	decisions, stats := v.Stage(batch, current)
	if len(decisions) != 1 {
		t.Fatalf("Expected 1 collapsed decision, got %d", len(decisions))
	}
	if got := decisions[0].Record.Attributes["city"]; got != "TX" {
		t.Errorf("Expected last-seen city 'TX', got '%s'", got)
	}
	if stats.Superseded != 1 {
		t.Errorf("Expected 1 superseded, got %d", stats.Superseded)
	}
}

func TestStageLastWriteWinsCollapsesToNoChange(t *testing.T) {
	// A change that the batch itself reverts stages nothing.
	v := NewVersioner(Customers)
	batch := []Record{
		{BusinessKey: "CUST0001", Attributes: map[string]string{"city": "CA"}},
		{BusinessKey: "CUST0001", Attributes: map[string]string{"city": "NY"}},
	}
	current := map[string]*Version{
		"CUST0001": {SurrogateKey: 1, BusinessKey: "CUST0001",
			Attributes: map[string]string{"city": "NY"}, IsCurrent: true},
	}

	decisions, _ := v.Stage(batch, current)
	if len(decisions) != 0 {
		t.Errorf("Expected 0 decisions, got %d", len(decisions))
	}
}

func TestStageMixedBatch(t *testing.T) {
	v := NewVersioner(Customers)
	batch := []Record{
		{BusinessKey: "CUST0001", Attributes: map[string]string{"city": "NY"}},
		{BusinessKey: "CUST0002", Attributes: map[string]string{"city": "LA"}},
		{BusinessKey: "CUST0003", Attributes: map[string]string{"city": "SF"}},
		{BusinessKey: "CUST0004", Attributes: map[string]string{
			"city": "CHI", "registration_date": "2024-01-05"}},
	}
	current := map[string]*Version{
		"CUST0001": {SurrogateKey: 1, BusinessKey: "CUST0001",
			Attributes: map[string]string{"city": "NY"}, IsCurrent: true},
		"CUST0003": {SurrogateKey: 3, BusinessKey: "CUST0003",
			Attributes: map[string]string{"city": "NJ"}, IsCurrent: true},
		"CUST0004": {SurrogateKey: 4, BusinessKey: "CUST0004",
			Attributes: map[string]string{
				"city": "CHI", "registration_date": "2024-01-01"}, IsCurrent: true},
	}

	decisions, stats := v.Stage(batch, current)
	if len(decisions) != 3 {
		t.Fatalf("Expected 3 decisions, got %d", len(decisions))
	}

	expected := VersionStats{NewEntities: 1, Superseded: 1, Overlaid: 1, Unchanged: 1}
	if stats != expected {
		t.Errorf("Expected stats %+v, got %+v", expected, stats)
	}

	// Decisions preserve first-seen batch order.
	kinds := []ChangeKind{decisions[0].Change.Kind, decisions[1].Change.Kind, decisions[2].Change.Kind}
	expectedKinds := []ChangeKind{NewEntity, AttributeChange, OverlayChange}
	for i, k := range expectedKinds {
		if kinds[i] != k {
			t.Errorf("Decision %d: expected %s, got %s", i, k, kinds[i])
		}
	}
}
