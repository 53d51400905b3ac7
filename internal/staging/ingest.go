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
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pgEdge/pgedge-warehouse/internal/logging"
	"github.com/pgEdge/pgedge-warehouse/internal/model"
)

// insertBatchSize is the number of rows per multi-row INSERT.
const insertBatchSize = 1000

// Summary reports how many rows each landing table received.
type Summary struct {
	Customers    int `json:"customers"`
	Products     int `json:"products"`
	Transactions int `json:"transactions"`
	Items        int `json:"transaction_items"`
}

// Total returns the number of rows ingested across all tables.
func (s Summary) Total() int {
	return s.Customers + s.Products + s.Transactions + s.Items
}

// Ingester loads CSV files into the staging schema.
type Ingester struct {
	pool *pgxpool.Pool
}

// NewIngester creates an ingester backed by the pool.
func NewIngester(pool *pgxpool.Pool) *Ingester {
	return &Ingester{pool: pool}
}

// Ingest truncates the landing tables and reloads them from the CSV
// files under dir. Each table's row count is verified against the file's
// record count after loading.
func (in *Ingester) Ingest(ctx context.Context, dir string) (*Summary, error) {
	var summary Summary

	files := []struct {
		file    string
		table   string
		columns string
		header  []string
		count   *int
		values  func([]string) (string, error)
	}{
		{
			file:    "customers.csv",
			table:   "staging.customers",
			columns: "(customer_id, first_name, last_name, email, phone, registration_date, city, state, country, age_group)",
			header:  model.CustomerHeader,
			count:   &summary.Customers,
			values:  customerValues,
		},
		{
			file:    "products.csv",
			table:   "staging.products",
			columns: "(product_id, product_name, category, sub_category, price, cost, brand, stock_quantity, supplier_id)",
			header:  model.ProductHeader,
			count:   &summary.Products,
			values:  productValues,
		},
		{
			file:    "transactions.csv",
			table:   "staging.transactions",
			columns: "(transaction_id, customer_id, transaction_date, transaction_time, payment_method, shipping_address, total_amount)",
			header:  model.TransactionHeader,
			count:   &summary.Transactions,
			values:  transactionValues,
		},
		{
			file:    "transaction_items.csv",
			table:   "staging.transaction_items",
			columns: "(item_id, transaction_id, product_id, quantity, unit_price, discount_percentage, line_total)",
			header:  model.TransactionItemHeader,
			count:   &summary.Items,
			values:  itemValues,
		},
	}

	for _, f := range files {
		n, err := in.ingestFile(ctx, filepath.Join(dir, f.file), f.table, f.columns, f.header, f.values)
		if err != nil {
			return nil, err
		}
		*f.count = n
		logging.Info().Str("table", f.table).Int("rows", n).Msg("Staged file")
	}

	return &summary, nil
}

func (in *Ingester) ingestFile(ctx context.Context, path, table, columns string,
	header []string, values func([]string) (string, error)) (int, error) {

	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("failed to open %s: %w", filepath.Base(path), err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	first, err := reader.Read()
	if err != nil {
		return 0, fmt.Errorf("failed to read header of %s: %w", filepath.Base(path), err)
	}
	if len(first) != len(header) || first[0] != header[0] {
		return 0, fmt.Errorf("%s has unexpected header %v", filepath.Base(path), first)
	}

	if _, err := in.pool.Exec(ctx, fmt.Sprintf("TRUNCATE %s", table)); err != nil {
		return 0, fmt.Errorf("failed to truncate %s: %w", table, err)
	}

	total := 0
	batch := make([]string, 0, insertBatchSize)
	for {
		rec, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return 0, fmt.Errorf("failed to read %s: %w", filepath.Base(path), err)
		}
		row, err := values(rec)
		if err != nil {
			return 0, fmt.Errorf("%s row %d: %w", filepath.Base(path), total+1, err)
		}
		batch = append(batch, row)
		total++

		if len(batch) >= insertBatchSize {
			if err := in.executeBatchInsert(ctx, table, columns, batch); err != nil {
				return 0, err
			}
			batch = batch[:0]
		}
	}
	if len(batch) > 0 {
		if err := in.executeBatchInsert(ctx, table, columns, batch); err != nil {
			return 0, err
		}
	}

	var loaded int
	if err := in.pool.QueryRow(ctx,
		fmt.Sprintf("SELECT COUNT(*) FROM %s", table)).Scan(&loaded); err != nil {
		return 0, fmt.Errorf("failed to count %s: %w", table, err)
	}
	if loaded != total {
		return 0, fmt.Errorf("%s loaded %d rows, file has %d", table, loaded, total)
	}
	return total, nil
}

func (in *Ingester) executeBatchInsert(ctx context.Context, table, columns string, values []string) error {
	if len(values) == 0 {
		return nil
	}
	sql := fmt.Sprintf("INSERT INTO %s %s VALUES %s", table, columns, strings.Join(values, ", "))
	if _, err := in.pool.Exec(ctx, sql); err != nil {
		return fmt.Errorf("failed to insert into %s: %w", table, err)
	}
	return nil
}

func customerValues(rec []string) (string, error) {
	c, err := model.ParseCustomer(rec)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("('%s', '%s', '%s', '%s', '%s', '%s', '%s', '%s', '%s', '%s')",
		escapeSingleQuote(c.ID),
		escapeSingleQuote(c.FirstName),
		escapeSingleQuote(c.LastName),
		escapeSingleQuote(c.Email),
		escapeSingleQuote(c.Phone),
		c.RegistrationDate.Format(model.DateFormat),
		escapeSingleQuote(c.City),
		escapeSingleQuote(c.State),
		escapeSingleQuote(c.Country),
		escapeSingleQuote(c.AgeGroup),
	), nil
}

func productValues(rec []string) (string, error) {
	p, err := model.ParseProduct(rec)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("('%s', '%s', '%s', '%s', %.2f, %.2f, '%s', %d, '%s')",
		escapeSingleQuote(p.ID),
		escapeSingleQuote(p.Name),
		escapeSingleQuote(p.Category),
		escapeSingleQuote(p.SubCategory),
		p.Price,
		p.Cost,
		escapeSingleQuote(p.Brand),
		p.StockQuantity,
		escapeSingleQuote(p.SupplierID),
	), nil
}

func transactionValues(rec []string) (string, error) {
	t, err := model.ParseTransaction(rec)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("('%s', '%s', '%s', '%s', '%s', '%s', %.2f)",
		escapeSingleQuote(t.ID),
		escapeSingleQuote(t.CustomerID),
		t.Date.Format(model.DateFormat),
		t.Time,
		escapeSingleQuote(t.PaymentMethod),
		escapeSingleQuote(t.ShippingAddress),
		t.TotalAmount,
	), nil
}

func itemValues(rec []string) (string, error) {
	i, err := model.ParseTransactionItem(rec)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("('%s', '%s', '%s', %d, %.2f, %.2f, %.2f)",
		escapeSingleQuote(i.ID),
		escapeSingleQuote(i.TransactionID),
		escapeSingleQuote(i.ProductID),
		i.Quantity,
		i.UnitPrice,
		i.DiscountPercentage,
		i.LineTotal,
	), nil
}

func escapeSingleQuote(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}
