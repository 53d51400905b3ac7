//-------------------------------------------------------------------------
//
// pgEdge Warehouse Load Pipeline
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package quality

import (
	"strings"
	"testing"
)

func TestGet(t *testing.T) {
	knownChecks := []string{
		"null_customer_emails",
		"duplicate_customer_emails",
		"duplicate_transactions",
		"invalid_product_prices",
		"line_total_mismatches",
		"orphan_transactions",
		"future_dated_transactions",
		"customer_current_versions",
		"fact_orphan_keys",
	}

	for _, name := range knownChecks {
		t.Run(name, func(t *testing.T) {
			check, err := Get(name)
			if err != nil {
				t.Fatalf("Failed to get check '%s': %v", name, err)
			}
			if check.Name != name {
				t.Errorf("Check name mismatch: expected '%s', got '%s'", name, check.Name)
			}
			if check.Description == "" {
				t.Error("Check description should not be empty")
			}
			if check.Query == "" {
				t.Error("Check query should not be empty")
			}
		})
	}
}

func TestGetInvalidCheck(t *testing.T) {
	_, err := Get("nonexistent")
	if err == nil {
		t.Error("Expected error for nonexistent check, got nil")
	}
}

func TestListCoversAllCategories(t *testing.T) {
	categories := map[string]bool{}
	for _, name := range List() {
		check, err := Get(name)
		if err != nil {
			t.Fatalf("Failed to get check: %v", err)
		}
		categories[check.Category] = true
	}

	expected := []string{
		CategoryCompleteness,
		CategoryUniqueness,
		CategoryValidity,
		CategoryConsistency,
		CategoryReferential,
		CategoryBusiness,
		CategoryStructural,
	}
	for _, cat := range expected {
		if !categories[cat] {
			t.Errorf("Expected at least one check in category '%s'", cat)
		}
	}
}

func TestAllSortedByCategoryThenName(t *testing.T) {
	checks := All()
	if len(checks) == 0 {
		t.Fatal("All returned no checks")
	}

	for i := 1; i < len(checks); i++ {
		prev, cur := checks[i-1], checks[i]
		if prev.Category > cur.Category {
			t.Errorf("Checks not sorted by category: %s before %s", prev.Category, cur.Category)
		}
		if prev.Category == cur.Category && prev.Name > cur.Name {
			t.Errorf("Checks not sorted by name within %s: %s before %s",
				cur.Category, prev.Name, cur.Name)
		}
	}
}

func TestCheckQueriesAreReadOnly(t *testing.T) {
	// Every catalogue query must be a pure read.
	for _, check := range All() {
		upper := strings.ToUpper(check.Query)
		for _, verb := range []string{"INSERT ", "UPDATE ", "DELETE ", "TRUNCATE ", "DROP "} {
			if strings.Contains(upper, verb) {
				t.Errorf("Check '%s' query contains mutating verb %s", check.Name, verb)
			}
		}
	}
}

func TestAsOfChecksTakeParameter(t *testing.T) {
	for _, check := range All() {
		hasParam := strings.Contains(check.Query, "$1")
		if check.NeedsAsOf && !hasParam {
			t.Errorf("Check '%s' declares NeedsAsOf but its query has no $1", check.Name)
		}
		if !check.NeedsAsOf && hasParam {
			t.Errorf("Check '%s' uses $1 without declaring NeedsAsOf", check.Name)
		}
	}
}
