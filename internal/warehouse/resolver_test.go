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
	"errors"
	"testing"
	"time"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func datePtr(t time.Time) *time.Time {
	return &t
}

// twoVersionHistory models customer C1: NY from day 1 through day 4,
// CA from day 5 open-ended.
func twoVersionHistory() []Version {
	return []Version{
		{SurrogateKey: 1, BusinessKey: "C1",
			EffectiveDate: day(2024, 6, 1), EndDate: datePtr(day(2024, 6, 4))},
		{SurrogateKey: 2, BusinessKey: "C1",
			EffectiveDate: day(2024, 6, 5), EndDate: nil, IsCurrent: true},
	}
}

func TestResolveHistoricalVersion(t *testing.T) {
	// A late-arriving fact dated day 3 resolves to the version valid on
	// day 3, even though the key has since changed.
	r := NewResolverFromVersions(Customers, twoVersionHistory())

	key, err := r.Resolve("C1", day(2024, 6, 3))
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if key != 1 {
		t.Errorf("Expected historical surrogate key 1, got %d", key)
	}
}

func TestResolveCurrentVersion(t *testing.T) {
	r := NewResolverFromVersions(Customers, twoVersionHistory())

	key, err := r.Resolve("C1", day(2024, 6, 10))
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if key != 2 {
		t.Errorf("Expected current surrogate key 2, got %d", key)
	}
}

func TestResolveIntervalBoundaries(t *testing.T) {
	r := NewResolverFromVersions(Customers, twoVersionHistory())

	tests := []struct {
		name     string
		asOf     time.Time
		expected int64
	}{
		{"effective date of first version", day(2024, 6, 1), 1},
		{"end date of first version", day(2024, 6, 4), 1},
		{"effective date of second version", day(2024, 6, 5), 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key, err := r.Resolve("C1", tt.asOf)
			if err != nil {
				t.Fatalf("Resolve failed: %v", err)
			}
			if key != tt.expected {
				t.Errorf("Expected key %d, got %d", tt.expected, key)
			}
		})
	}
}

func TestResolveTimeOfDayIgnored(t *testing.T) {
	r := NewResolverFromVersions(Customers, twoVersionHistory())

	key, err := r.Resolve("C1", time.Date(2024, 6, 4, 23, 59, 59, 0, time.UTC))
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if key != 1 {
		t.Errorf("Expected key 1 for late-evening day 4, got %d", key)
	}
}

func TestResolveUnknownBusinessKey(t *testing.T) {
	r := NewResolverFromVersions(Customers, twoVersionHistory())

	_, err := r.Resolve("C999", day(2024, 6, 3))
	var unresolved *UnresolvedKeyError
	if !errors.As(err, &unresolved) {
		t.Fatalf("Expected UnresolvedKeyError, got %v", err)
	}
	if unresolved.BusinessKey != "C999" {
		t.Errorf("Expected business key C999 in error, got %s", unresolved.BusinessKey)
	}
}

func TestResolvePredatesHistory(t *testing.T) {
	r := NewResolverFromVersions(Customers, twoVersionHistory())

	_, err := r.Resolve("C1", day(2024, 5, 31))
	var unresolved *UnresolvedKeyError
	if !errors.As(err, &unresolved) {
		t.Fatalf("Expected UnresolvedKeyError for date before all history, got %v", err)
	}
}

func TestResolveAmbiguousOnCorruptedOverlap(t *testing.T) {
	// Two open-ended versions for the same key: the state a broken
	// close-and-open pair would leave behind.
	corrupted := []Version{
		{SurrogateKey: 1, BusinessKey: "C1", EffectiveDate: day(2024, 6, 1), EndDate: nil},
		{SurrogateKey: 2, BusinessKey: "C1", EffectiveDate: day(2024, 6, 5), EndDate: nil},
	}
	r := NewResolverFromVersions(Customers, corrupted)

	_, err := r.Resolve("C1", day(2024, 6, 10))
	var ambiguous *AmbiguousKeyError
	if !errors.As(err, &ambiguous) {
		t.Fatalf("Expected AmbiguousKeyError, got %v", err)
	}
	if len(ambiguous.Keys) != 2 {
		t.Errorf("Expected 2 conflicting keys, got %v", ambiguous.Keys)
	}
}

func TestResolveAmbiguousOnNonAdjacentOverlap(t *testing.T) {
	// The version left open is not the immediate neighbor: an old
	// open-ended version lingers beneath a properly closed middle one.
	corrupted := []Version{
		{SurrogateKey: 1, BusinessKey: "C1", EffectiveDate: day(2024, 6, 1), EndDate: nil},
		{SurrogateKey: 2, BusinessKey: "C1",
			EffectiveDate: day(2024, 6, 5), EndDate: datePtr(day(2024, 6, 9))},
		{SurrogateKey: 3, BusinessKey: "C1", EffectiveDate: day(2024, 6, 10), EndDate: nil},
	}
	r := NewResolverFromVersions(Customers, corrupted)

	_, err := r.Resolve("C1", day(2024, 6, 12))
	var ambiguous *AmbiguousKeyError
	if !errors.As(err, &ambiguous) {
		t.Fatalf("Expected AmbiguousKeyError, got %v", err)
	}
	if len(ambiguous.Keys) != 2 {
		t.Fatalf("Expected 2 conflicting keys, got %v", ambiguous.Keys)
	}
	if ambiguous.Keys[0] != 1 || ambiguous.Keys[1] != 3 {
		t.Errorf("Expected conflicting keys [1 3], got %v", ambiguous.Keys)
	}
}

func TestResolveManyVersions(t *testing.T) {
	// Binary search across a longer history: one version per month.
	var versions []Version
	for m := 1; m <= 12; m++ {
		eff := day(2024, time.Month(m), 1)
		var end *time.Time
		if m < 12 {
			end = datePtr(day(2024, time.Month(m+1), 1).AddDate(0, 0, -1))
		}
		versions = append(versions, Version{
			SurrogateKey: int64(m), BusinessKey: "C1",
			EffectiveDate: eff, EndDate: end,
		})
	}
	r := NewResolverFromVersions(Customers, versions)

	for m := 1; m <= 12; m++ {
		key, err := r.Resolve("C1", day(2024, time.Month(m), 15))
		if err != nil {
			t.Fatalf("Resolve failed for month %d: %v", m, err)
		}
		if key != int64(m) {
			t.Errorf("Month %d: expected key %d, got %d", m, m, key)
		}
	}
}

func BenchmarkResolve(b *testing.B) {
	var versions []Version
	for i := 0; i < 1000; i++ {
		eff := day(2020, 1, 1).AddDate(0, 0, i*7)
		var end *time.Time
		if i < 999 {
			end = datePtr(eff.AddDate(0, 0, 6))
		}
		versions = append(versions, Version{
			SurrogateKey: int64(i + 1), BusinessKey: "C1",
			EffectiveDate: eff, EndDate: end,
		})
	}
	r := NewResolverFromVersions(Customers, versions)
	asOf := day(2020, 1, 1).AddDate(0, 0, 500*7+3)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := r.Resolve("C1", asOf); err != nil {
			b.Fatal(err)
		}
	}
}
