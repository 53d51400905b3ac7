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
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pgEdge/pgedge-warehouse/internal/model"
)

// File names written under the raw data directory.
const (
	CustomersFile    = "customers.csv"
	ProductsFile     = "products.csv"
	TransactionsFile = "transactions.csv"
	ItemsFile        = "transaction_items.csv"
	MetadataFile     = "generation_metadata.json"
)

// Metadata describes a generated batch and is written alongside the CSVs.
type Metadata struct {
	GeneratedAt  time.Time       `json:"generated_at"`
	Seed         uint64          `json:"seed,omitempty"`
	Customers    int             `json:"customers"`
	Products     int             `json:"products"`
	Transactions int             `json:"transactions"`
	Items        int             `json:"transaction_items"`
	StartDate    string          `json:"start_date"`
	EndDate      string          `json:"end_date"`
	Integrity    IntegrityReport `json:"integrity"`
}

// WriteCSV writes the batch as CSV files plus a metadata JSON file under
// dir, creating the directory as needed.
func WriteCSV(dir string, batch *Batch, seed uint64) (*Metadata, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	customerRecords := make([][]string, 0, len(batch.Customers))
	for _, c := range batch.Customers {
		customerRecords = append(customerRecords, c.Record())
	}
	if err := writeFile(filepath.Join(dir, CustomersFile),
		model.CustomerHeader, customerRecords); err != nil {
		return nil, err
	}

	productRecords := make([][]string, 0, len(batch.Products))
	for _, p := range batch.Products {
		productRecords = append(productRecords, p.Record())
	}
	if err := writeFile(filepath.Join(dir, ProductsFile),
		model.ProductHeader, productRecords); err != nil {
		return nil, err
	}

	transactionRecords := make([][]string, 0, len(batch.Transactions))
	for _, t := range batch.Transactions {
		transactionRecords = append(transactionRecords, t.Record())
	}
	if err := writeFile(filepath.Join(dir, TransactionsFile),
		model.TransactionHeader, transactionRecords); err != nil {
		return nil, err
	}

	itemRecords := make([][]string, 0, len(batch.Items))
	for _, i := range batch.Items {
		itemRecords = append(itemRecords, i.Record())
	}
	if err := writeFile(filepath.Join(dir, ItemsFile),
		model.TransactionItemHeader, itemRecords); err != nil {
		return nil, err
	}

	start, end := batch.DateRange()
	meta := &Metadata{
		GeneratedAt:  time.Now().UTC(),
		Seed:         seed,
		Customers:    len(batch.Customers),
		Products:     len(batch.Products),
		Transactions: len(batch.Transactions),
		Items:        len(batch.Items),
		StartDate:    start.Format(model.DateFormat),
		EndDate:      end.Format(model.DateFormat),
		Integrity:    batch.CheckIntegrity(),
	}
	data, err := json.MarshalIndent(meta, "", "    ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal generation metadata: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, MetadataFile), data, 0o644); err != nil {
		return nil, fmt.Errorf("failed to write generation metadata: %w", err)
	}
	return meta, nil
}

func writeFile(path string, header []string, records [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", filepath.Base(path), err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return fmt.Errorf("failed to write header to %s: %w", filepath.Base(path), err)
	}
	if err := w.WriteAll(records); err != nil {
		return fmt.Errorf("failed to write records to %s: %w", filepath.Base(path), err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to flush %s: %w", filepath.Base(path), err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", filepath.Base(path), err)
	}
	return nil
}
