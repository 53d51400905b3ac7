//-------------------------------------------------------------------------
//
// pgEdge Warehouse Load Pipeline
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package staging

import (
	"strings"
	"testing"
)

func TestCustomerValues(t *testing.T) {
	rec := []string{"CUST0001", "Mary", "O'Brien", "mary@example.com", "555-0100",
		"2022-03-15", "Austin", "Texas", "USA", "26-35"}

	v, err := customerValues(rec)
	if err != nil {
		t.Fatalf("customerValues failed: %v", err)
	}
	if !strings.Contains(v, "O''Brien") {
		t.Errorf("Expected escaped apostrophe in values, got: %s", v)
	}
	if !strings.HasPrefix(v, "('CUST0001'") {
		t.Errorf("Expected customer_id first, got: %s", v)
	}
	if !strings.Contains(v, "'2022-03-15'") {
		t.Errorf("Expected quoted registration date, got: %s", v)
	}
}

func TestCustomerValuesRejectsBadDate(t *testing.T) {
	rec := []string{"CUST0001", "Mary", "Smith", "mary@example.com", "555-0100",
		"not-a-date", "Austin", "Texas", "USA", "26-35"}

	if _, err := customerValues(rec); err == nil {
		t.Error("Expected error for invalid registration date, got nil")
	}
}

func TestProductValues(t *testing.T) {
	rec := []string{"PROD0001", "Widget Pro", "Electronics", "Gadgets",
		"199.99", "120.50", "Acme's Best", "42", "SUP001"}

	v, err := productValues(rec)
	if err != nil {
		t.Fatalf("productValues failed: %v", err)
	}
	if !strings.Contains(v, "199.99") || !strings.Contains(v, "120.50") {
		t.Errorf("Expected price and cost in values, got: %s", v)
	}
	if !strings.Contains(v, "Acme''s Best") {
		t.Errorf("Expected escaped brand, got: %s", v)
	}
	if !strings.Contains(v, ", 42,") {
		t.Errorf("Expected unquoted stock quantity, got: %s", v)
	}
}

func TestTransactionValues(t *testing.T) {
	rec := []string{"TXN00001", "CUST0001", "2024-06-15", "14:30:00",
		"Credit Card", "12 Main St, Austin", "359.97"}

	v, err := transactionValues(rec)
	if err != nil {
		t.Fatalf("transactionValues failed: %v", err)
	}
	if !strings.Contains(v, "'14:30:00'") {
		t.Errorf("Expected quoted transaction time, got: %s", v)
	}
	if !strings.HasSuffix(v, "359.97)") {
		t.Errorf("Expected total amount last, got: %s", v)
	}
}

func TestItemValues(t *testing.T) {
	rec := []string{"ITEM00001", "TXN00001", "PROD0001", "3", "119.99", "10.00", "323.97"}

	v, err := itemValues(rec)
	if err != nil {
		t.Fatalf("itemValues failed: %v", err)
	}
	if !strings.Contains(v, ", 3,") {
		t.Errorf("Expected unquoted quantity, got: %s", v)
	}
	if !strings.Contains(v, "10.00") {
		t.Errorf("Expected discount percentage, got: %s", v)
	}
}

func TestItemValuesRejectsBadQuantity(t *testing.T) {
	rec := []string{"ITEM00001", "TXN00001", "PROD0001", "three", "119.99", "10.00", "323.97"}

	if _, err := itemValues(rec); err == nil {
		t.Error("Expected error for non-numeric quantity, got nil")
	}
}

func TestEscapeSingleQuote(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"plain", "plain"},
		{"O'Brien", "O''Brien"},
		{"a''b", "a''''b"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := escapeSingleQuote(tt.input); got != tt.expected {
			t.Errorf("escapeSingleQuote(%q): expected %q, got %q", tt.input, tt.expected, got)
		}
	}
}
