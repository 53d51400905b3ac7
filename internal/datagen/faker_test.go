//-------------------------------------------------------------------------
//
// pgEdge Warehouse Load Pipeline
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package datagen

import (
	"testing"
	"time"
)

func TestNewFaker(t *testing.T) {
	f := NewFaker()
	if f == nil {
		t.Fatal("NewFaker returned nil")
	}
	if f.faker == nil {
		t.Fatal("faker field is nil")
	}
}

func TestNewFakerWithSeed(t *testing.T) {
	seed := uint64(12345)
	f1 := NewFakerWithSeed(seed)
	f2 := NewFakerWithSeed(seed)

	// Same seed should produce same sequence
	for i := 0; i < 10; i++ {
		v1 := f1.Int(0, 1000)
		v2 := f2.Int(0, 1000)
		if v1 != v2 {
			t.Errorf("Same seed produced different values: %d != %d", v1, v2)
		}
	}
}

func TestFakerFirstName(t *testing.T) {
	f := NewFaker()
	name := f.FirstName()
	if name == "" {
		t.Error("FirstName returned empty string")
	}
}

func TestFakerLastName(t *testing.T) {
	f := NewFaker()
	name := f.LastName()
	if name == "" {
		t.Error("LastName returned empty string")
	}
}

func TestFakerEmail(t *testing.T) {
	f := NewFaker()
	email := f.Email()
	if email == "" {
		t.Error("Email returned empty string")
	}
	// Basic email format check
	if len(email) < 5 {
		t.Error("Email too short")
	}
}

func TestFakerPhone(t *testing.T) {
	f := NewFaker()
	phone := f.Phone()
	if phone == "" {
		t.Error("Phone returned empty string")
	}
}

func TestFakerStreet(t *testing.T) {
	f := NewFaker()
	street := f.Street()
	if street == "" {
		t.Error("Street returned empty string")
	}
}

func TestFakerCity(t *testing.T) {
	f := NewFaker()
	city := f.City()
	if city == "" {
		t.Error("City returned empty string")
	}
}

func TestFakerState(t *testing.T) {
	f := NewFaker()
	state := f.State()
	if state == "" {
		t.Error("State returned empty string")
	}
	if len(state) < 3 {
		t.Errorf("State should be a full name, got abbreviation-sized %q", state)
	}
}

func TestFakerCountry(t *testing.T) {
	f := NewFaker()
	country := f.Country()
	if country == "" {
		t.Error("Country returned empty string")
	}
}

func TestFakerCompany(t *testing.T) {
	f := NewFaker()
	company := f.Company()
	if company == "" {
		t.Error("Company returned empty string")
	}
}

func TestFakerProductName(t *testing.T) {
	f := NewFaker()
	name := f.ProductName()
	if name == "" {
		t.Error("ProductName returned empty string")
	}
}

func TestFakerWord(t *testing.T) {
	f := NewFaker()
	w := f.Word()
	if w == "" {
		t.Error("Word returned empty string")
	}
}

func TestFakerDateRange(t *testing.T) {
	f := NewFaker()
	start := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	d := f.DateRange(start, end)
	if d.Before(start) || d.After(end) {
		t.Errorf("DateRange %v not in range [%v, %v]", d, start, end)
	}
}

func TestFakerInt(t *testing.T) {
	f := NewFaker()
	for i := 0; i < 100; i++ {
		v := f.Int(5, 10)
		if v < 5 || v > 10 {
			t.Errorf("Int %d not in range [5, 10]", v)
		}
	}
}

func TestFakerFloat64(t *testing.T) {
	f := NewFaker()
	for i := 0; i < 100; i++ {
		v := f.Float64(1.5, 3.5)
		if v < 1.5 || v > 3.5 {
			t.Errorf("Float64 %f not in range [1.5, 3.5]", v)
		}
	}
}

func TestChoose(t *testing.T) {
	f := NewFaker()
	items := []string{"a", "b", "c", "d", "e"}

	for i := 0; i < 100; i++ {
		chosen := Choose(f, items)
		found := false
		for _, item := range items {
			if item == chosen {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("Choose returned item not in slice: %s", chosen)
		}
	}
}

func TestChooseEmpty(t *testing.T) {
	f := NewFaker()
	var items []string

	chosen := Choose(f, items)
	if chosen != "" {
		t.Errorf("Choose on empty slice should return zero value, got: %s", chosen)
	}
}

func TestTruncate(t *testing.T) {
	// Test truncation
	s1 := Truncate("hello world", 5)
	if s1 != "hello" {
		t.Errorf("Truncate should truncate to 5, got: %s", s1)
	}

	// Test no truncation needed
	s2 := Truncate("hi", 10)
	if s2 != "hi" {
		t.Errorf("Truncate should not modify shorter string, got: %s", s2)
	}

	// Test exact length
	s3 := Truncate("exact", 5)
	if s3 != "exact" {
		t.Errorf("Truncate should keep exact length string, got: %s", s3)
	}
}

func BenchmarkFakerInt(b *testing.B) {
	f := NewFaker()
	for i := 0; i < b.N; i++ {
		f.Int(0, 1000)
	}
}

func BenchmarkChoose(b *testing.B) {
	f := NewFaker()
	items := []string{"a", "b", "c", "d", "e"}
	for i := 0; i < b.N; i++ {
		Choose(f, items)
	}
}
