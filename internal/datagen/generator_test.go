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
	"encoding/csv"
	"math"
	"os"
	"path/filepath"
	"regexp"
	"testing"
	"time"

	"github.com/pgEdge/pgedge-warehouse/internal/model"
)

func testConfig(seed uint64) Config {
	return Config{
		Customers:    20,
		Products:     10,
		Transactions: 50,
		StartDate:    time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		EndDate:      time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC),
		Seed:         seed,
	}
}

func TestGenerateCounts(t *testing.T) {
	batch := New(testConfig(42)).Generate()

	if len(batch.Customers) != 20 {
		t.Errorf("Expected 20 customers, got %d", len(batch.Customers))
	}
	if len(batch.Products) != 10 {
		t.Errorf("Expected 10 products, got %d", len(batch.Products))
	}
	if len(batch.Transactions) != 50 {
		t.Errorf("Expected 50 transactions, got %d", len(batch.Transactions))
	}
	if len(batch.Items) < 50 {
		t.Errorf("Expected at least one item per transaction, got %d items", len(batch.Items))
	}
	if len(batch.Items) > 50*5 {
		t.Errorf("Expected at most 5 items per transaction, got %d items", len(batch.Items))
	}
}

func TestGenerateBusinessKeyFormats(t *testing.T) {
	batch := New(testConfig(42)).Generate()

	custPattern := regexp.MustCompile(`^CUST\d{4}$`)
	prodPattern := regexp.MustCompile(`^PROD\d{4}$`)
	txnPattern := regexp.MustCompile(`^TXN\d{5}$`)
	itemPattern := regexp.MustCompile(`^ITEM\d{5}$`)
	supPattern := regexp.MustCompile(`^SUP\d{3}$`)

	for _, c := range batch.Customers {
		if !custPattern.MatchString(c.ID) {
			t.Errorf("Bad customer ID format: %s", c.ID)
		}
	}
	for _, p := range batch.Products {
		if !prodPattern.MatchString(p.ID) {
			t.Errorf("Bad product ID format: %s", p.ID)
		}
		if !supPattern.MatchString(p.SupplierID) {
			t.Errorf("Bad supplier ID format: %s", p.SupplierID)
		}
	}
	for _, tx := range batch.Transactions {
		if !txnPattern.MatchString(tx.ID) {
			t.Errorf("Bad transaction ID format: %s", tx.ID)
		}
	}
	for _, item := range batch.Items {
		if !itemPattern.MatchString(item.ID) {
			t.Errorf("Bad item ID format: %s", item.ID)
		}
	}
}

func TestGenerateDeterministicWithSeed(t *testing.T) {
	b1 := New(testConfig(777)).Generate()
	b2 := New(testConfig(777)).Generate()

	if len(b1.Items) != len(b2.Items) {
		t.Fatalf("Same seed produced different item counts: %d != %d",
			len(b1.Items), len(b2.Items))
	}
	for i := range b1.Customers {
		if b1.Customers[i] != b2.Customers[i] {
			t.Errorf("Same seed produced different customer at index %d", i)
		}
	}
	for i := range b1.Transactions {
		if b1.Transactions[i] != b2.Transactions[i] {
			t.Errorf("Same seed produced different transaction at index %d", i)
		}
	}
}

func TestGenerateUniqueEmails(t *testing.T) {
	cfg := testConfig(42)
	cfg.Customers = 200
	batch := New(cfg).Generate()

	seen := make(map[string]bool)
	for _, c := range batch.Customers {
		if seen[c.Email] {
			t.Errorf("Duplicate customer email: %s", c.Email)
		}
		seen[c.Email] = true
	}
}

func TestGenerateProductEconomics(t *testing.T) {
	batch := New(testConfig(42)).Generate()

	for _, p := range batch.Products {
		if p.Price < 100 || p.Price > 5000 {
			t.Errorf("Product %s price %.2f out of range [100, 5000]", p.ID, p.Price)
		}
		if p.Cost >= p.Price {
			t.Errorf("Product %s cost %.2f not below price %.2f", p.ID, p.Cost, p.Price)
		}
		if p.StockQuantity < 10 || p.StockQuantity > 500 {
			t.Errorf("Product %s stock %d out of range [10, 500]", p.ID, p.StockQuantity)
		}
	}
}

func TestGenerateLineArithmetic(t *testing.T) {
	batch := New(testConfig(42)).Generate()

	totals := make(map[string]float64)
	for _, item := range batch.Items {
		if item.Quantity < 1 || item.Quantity > 5 {
			t.Errorf("Item %s quantity %d out of range [1, 5]", item.ID, item.Quantity)
		}
		valid := false
		for _, d := range DiscountLevels {
			if item.DiscountPercentage == d {
				valid = true
			}
		}
		if !valid {
			t.Errorf("Item %s has unexpected discount %.1f", item.ID, item.DiscountPercentage)
		}

		expected := math.Round(float64(item.Quantity)*item.UnitPrice*
			(1-item.DiscountPercentage/100)*100) / 100
		if math.Abs(item.LineTotal-expected) > 0.005 {
			t.Errorf("Item %s line total %.2f, expected %.2f", item.ID, item.LineTotal, expected)
		}
		totals[item.TransactionID] += item.LineTotal
	}

	for _, tx := range batch.Transactions {
		if math.Abs(tx.TotalAmount-math.Round(totals[tx.ID]*100)/100) > 0.01 {
			t.Errorf("Transaction %s total %.2f does not match item sum %.2f",
				tx.ID, tx.TotalAmount, totals[tx.ID])
		}
	}
}

func TestGenerateDateWindows(t *testing.T) {
	cfg := testConfig(42)
	batch := New(cfg).Generate()

	for _, tx := range batch.Transactions {
		if tx.Date.Before(cfg.StartDate) || tx.Date.After(cfg.EndDate.AddDate(0, 0, 1)) {
			t.Errorf("Transaction %s date %v outside configured window", tx.ID, tx.Date)
		}
	}
	for _, c := range batch.Customers {
		if c.RegistrationDate.After(cfg.StartDate.AddDate(0, 0, 1)) {
			t.Errorf("Customer %s registered %v, after the transaction window start",
				c.ID, c.RegistrationDate)
		}
	}
}

func TestCheckIntegrityCleanBatch(t *testing.T) {
	batch := New(testConfig(42)).Generate()

	report := batch.CheckIntegrity()
	if report.OrphanTransactions != 0 {
		t.Errorf("Expected 0 orphan transactions, got %d", report.OrphanTransactions)
	}
	if report.OrphanItemProducts != 0 {
		t.Errorf("Expected 0 orphan item products, got %d", report.OrphanItemProducts)
	}
	if report.OrphanItemTransactions != 0 {
		t.Errorf("Expected 0 orphan item transactions, got %d", report.OrphanItemTransactions)
	}
	if report.Score != 100 {
		t.Errorf("Expected integrity score 100, got %d", report.Score)
	}
}

func TestCheckIntegrityDetectsOrphans(t *testing.T) {
	batch := New(testConfig(42)).Generate()
	batch.Transactions[0].CustomerID = "CUST9999"
	batch.Items[0].ProductID = "PROD9999"

	report := batch.CheckIntegrity()
	if report.OrphanTransactions != 1 {
		t.Errorf("Expected 1 orphan transaction, got %d", report.OrphanTransactions)
	}
	if report.OrphanItemProducts != 1 {
		t.Errorf("Expected 1 orphan item product, got %d", report.OrphanItemProducts)
	}
	if report.Score != 90 {
		t.Errorf("Expected integrity score 90, got %d", report.Score)
	}
}

func TestWriteCSV(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "raw")
	batch := New(testConfig(42)).Generate()

	meta, err := WriteCSV(dir, batch, 42)
	if err != nil {
		t.Fatalf("WriteCSV failed: %v", err)
	}
	if meta.Customers != len(batch.Customers) || meta.Items != len(batch.Items) {
		t.Errorf("Metadata counts do not match batch: %+v", meta)
	}

	tests := []struct {
		file   string
		header []string
		rows   int
	}{
		{CustomersFile, model.CustomerHeader, len(batch.Customers)},
		{ProductsFile, model.ProductHeader, len(batch.Products)},
		{TransactionsFile, model.TransactionHeader, len(batch.Transactions)},
		{ItemsFile, model.TransactionItemHeader, len(batch.Items)},
	}
	for _, tt := range tests {
		t.Run(tt.file, func(t *testing.T) {
			f, err := os.Open(filepath.Join(dir, tt.file))
			if err != nil {
				t.Fatalf("Failed to open %s: %v", tt.file, err)
			}
			defer f.Close()

			records, err := csv.NewReader(f).ReadAll()
			if err != nil {
				t.Fatalf("Failed to parse %s: %v", tt.file, err)
			}
			if len(records) != tt.rows+1 {
				t.Fatalf("Expected %d records plus header, got %d rows", tt.rows, len(records))
			}
			for i, col := range tt.header {
				if records[0][i] != col {
					t.Errorf("Header column %d: expected %s, got %s", i, col, records[0][i])
				}
			}
		})
	}

	if _, err := os.Stat(filepath.Join(dir, MetadataFile)); err != nil {
		t.Errorf("Expected metadata file to exist: %v", err)
	}
}

func TestWriteCSVRoundTrip(t *testing.T) {
	dir := t.TempDir()
	batch := New(testConfig(42)).Generate()

	if _, err := WriteCSV(dir, batch, 42); err != nil {
		t.Fatalf("WriteCSV failed: %v", err)
	}

	f, err := os.Open(filepath.Join(dir, CustomersFile))
	if err != nil {
		t.Fatalf("Failed to open customers file: %v", err)
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("Failed to parse customers file: %v", err)
	}
	for i, rec := range records[1:] {
		c, err := model.ParseCustomer(rec)
		if err != nil {
			t.Fatalf("Row %d failed to parse: %v", i, err)
		}
		want := batch.Customers[i]
		if c.ID != want.ID || c.Email != want.Email {
			t.Errorf("Row %d round trip mismatch: got %s/%s, want %s/%s",
				i, c.ID, c.Email, want.ID, want.Email)
		}
		if c.RegistrationDate.Format(model.DateFormat) !=
			want.RegistrationDate.Format(model.DateFormat) {
			t.Errorf("Row %d registration date mismatch", i)
		}
	}
}

func BenchmarkGenerate(b *testing.B) {
	cfg := Config{
		Customers:    100,
		Products:     50,
		Transactions: 500,
		StartDate:    time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		EndDate:      time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC),
		Seed:         1,
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		New(cfg).Generate()
	}
}
