//-------------------------------------------------------------------------
//
// pgEdge Warehouse Load Pipeline
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package production

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pgEdge/pgedge-warehouse/internal/logging"
)

// Summary reports the outcome of one staging-to-production transform.
type Summary struct {
	CustomersUpserted    int64 `json:"customers_upserted"`
	ProductsUpserted     int64 `json:"products_upserted"`
	ProductsFiltered     int64 `json:"products_filtered"`
	TransactionsInserted int64 `json:"transactions_inserted"`
	TransactionsFiltered int64 `json:"transactions_filtered"`
	ItemsInserted        int64 `json:"items_inserted"`
	ItemsFiltered        int64 `json:"items_filtered"`
}

// Customers and products carry the latest operational attributes, so
// staging rows replace production rows for the same business key. Text
// fields are trimmed and emails lowercased on the way in.
const upsertCustomersSQL = `
INSERT INTO production.customers
    (customer_id, first_name, last_name, email, phone, registration_date,
     city, state, country, age_group, updated_at)
SELECT
    TRIM(customer_id),
    TRIM(first_name),
    TRIM(last_name),
    LOWER(TRIM(email)),
    TRIM(phone),
    registration_date,
    TRIM(city),
    TRIM(state),
    TRIM(country),
    TRIM(age_group),
    NOW()
FROM staging.customers
WHERE TRIM(customer_id) <> ''
ON CONFLICT (customer_id) DO UPDATE SET
    first_name        = EXCLUDED.first_name,
    last_name         = EXCLUDED.last_name,
    email             = EXCLUDED.email,
    phone             = EXCLUDED.phone,
    registration_date = EXCLUDED.registration_date,
    city              = EXCLUDED.city,
    state             = EXCLUDED.state,
    country           = EXCLUDED.country,
    age_group         = EXCLUDED.age_group,
    updated_at        = NOW()
`

const upsertProductsSQL = `
INSERT INTO production.products
    (product_id, product_name, category, sub_category, price, cost,
     brand, stock_quantity, supplier_id, updated_at)
SELECT
    TRIM(product_id),
    TRIM(product_name),
    TRIM(category),
    TRIM(sub_category),
    price,
    cost,
    TRIM(brand),
    stock_quantity,
    TRIM(supplier_id),
    NOW()
FROM staging.products
WHERE TRIM(product_id) <> ''
  AND price > 0
  AND cost > 0
  AND cost < price
ON CONFLICT (product_id) DO UPDATE SET
    product_name   = EXCLUDED.product_name,
    category       = EXCLUDED.category,
    sub_category   = EXCLUDED.sub_category,
    price          = EXCLUDED.price,
    cost           = EXCLUDED.cost,
    brand          = EXCLUDED.brand,
    stock_quantity = EXCLUDED.stock_quantity,
    supplier_id    = EXCLUDED.supplier_id,
    updated_at     = NOW()
`

// Transactions and their items are operational events and never change
// after the fact, so the transform only appends rows whose IDs are new.
const insertTransactionsSQL = `
INSERT INTO production.transactions
    (transaction_id, customer_id, transaction_date, transaction_time,
     payment_method, shipping_address, total_amount)
SELECT
    TRIM(s.transaction_id),
    TRIM(s.customer_id),
    s.transaction_date,
    s.transaction_time,
    TRIM(s.payment_method),
    TRIM(s.shipping_address),
    s.total_amount
FROM staging.transactions s
WHERE TRIM(s.transaction_id) <> ''
  AND s.total_amount > 0
  AND NOT EXISTS (
      SELECT 1 FROM production.transactions p
      WHERE p.transaction_id = TRIM(s.transaction_id)
  )
`

const insertItemsSQL = `
INSERT INTO production.transaction_items
    (item_id, transaction_id, product_id, quantity, unit_price,
     discount_percentage, line_total)
SELECT
    TRIM(s.item_id),
    TRIM(s.transaction_id),
    TRIM(s.product_id),
    s.quantity,
    s.unit_price,
    COALESCE(s.discount_percentage, 0),
    s.line_total
FROM staging.transaction_items s
WHERE TRIM(s.item_id) <> ''
  AND s.quantity > 0
  AND NOT EXISTS (
      SELECT 1 FROM production.transaction_items p
      WHERE p.item_id = TRIM(s.item_id)
  )
`

// Transformer moves cleansed rows from staging into production.
type Transformer struct {
	pool *pgxpool.Pool
}

// NewTransformer creates a transformer backed by the pool.
func NewTransformer(pool *pgxpool.Pool) *Transformer {
	return &Transformer{pool: pool}
}

// Transform runs the full staging-to-production transform in one
// transaction. Entity tables are upserted, event tables appended;
// staging rows failing the validity filters are counted and skipped.
func (t *Transformer) Transform(ctx context.Context) (*Summary, error) {
	tx, err := t.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transform transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var summary Summary

	tag, err := tx.Exec(ctx, upsertCustomersSQL)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert customers: %w", err)
	}
	summary.CustomersUpserted = tag.RowsAffected()

	var stagedProducts int64
	if err := tx.QueryRow(ctx,
		`SELECT COUNT(*) FROM staging.products`).Scan(&stagedProducts); err != nil {
		return nil, fmt.Errorf("failed to count staged products: %w", err)
	}
	tag, err = tx.Exec(ctx, upsertProductsSQL)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert products: %w", err)
	}
	summary.ProductsUpserted = tag.RowsAffected()
	summary.ProductsFiltered = stagedProducts - tag.RowsAffected()

	var stagedTxns, existingTxns int64
	if err := tx.QueryRow(ctx,
		`SELECT COUNT(*) FROM staging.transactions`).Scan(&stagedTxns); err != nil {
		return nil, fmt.Errorf("failed to count staged transactions: %w", err)
	}
	if err := tx.QueryRow(ctx, `
		SELECT COUNT(*) FROM staging.transactions s
		WHERE EXISTS (
		    SELECT 1 FROM production.transactions p
		    WHERE p.transaction_id = TRIM(s.transaction_id)
		)`).Scan(&existingTxns); err != nil {
		return nil, fmt.Errorf("failed to count existing transactions: %w", err)
	}
	tag, err = tx.Exec(ctx, insertTransactionsSQL)
	if err != nil {
		return nil, fmt.Errorf("failed to insert transactions: %w", err)
	}
	summary.TransactionsInserted = tag.RowsAffected()
	summary.TransactionsFiltered = stagedTxns - existingTxns - tag.RowsAffected()

	var stagedItems, existingItems int64
	if err := tx.QueryRow(ctx,
		`SELECT COUNT(*) FROM staging.transaction_items`).Scan(&stagedItems); err != nil {
		return nil, fmt.Errorf("failed to count staged items: %w", err)
	}
	if err := tx.QueryRow(ctx, `
		SELECT COUNT(*) FROM staging.transaction_items s
		WHERE EXISTS (
		    SELECT 1 FROM production.transaction_items p
		    WHERE p.item_id = TRIM(s.item_id)
		)`).Scan(&existingItems); err != nil {
		return nil, fmt.Errorf("failed to count existing items: %w", err)
	}
	tag, err = tx.Exec(ctx, insertItemsSQL)
	if err != nil {
		return nil, fmt.Errorf("failed to insert transaction items: %w", err)
	}
	summary.ItemsInserted = tag.RowsAffected()
	summary.ItemsFiltered = stagedItems - existingItems - tag.RowsAffected()

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transform: %w", err)
	}

	logging.Info().
		Int64("customers", summary.CustomersUpserted).
		Int64("products", summary.ProductsUpserted).
		Int64("transactions", summary.TransactionsInserted).
		Int64("items", summary.ItemsInserted).
		Msg("Transform complete")
	return &summary, nil
}
