//-------------------------------------------------------------------------
//
// pgEdge Warehouse Load Pipeline
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package staging ingests raw CSV batches into the staging schema.
// Staging is a landing zone: text-typed columns, no constraints beyond
// primary keys, truncate-and-reload on every ingest.
package staging

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

const createSchemaSQL = `
CREATE SCHEMA IF NOT EXISTS staging;

CREATE TABLE IF NOT EXISTS staging.customers (
    customer_id       TEXT PRIMARY KEY,
    first_name        TEXT,
    last_name         TEXT,
    email             TEXT,
    phone             TEXT,
    registration_date DATE,
    city              TEXT,
    state             TEXT,
    country           TEXT,
    age_group         TEXT,
    loaded_at         TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS staging.products (
    product_id     TEXT PRIMARY KEY,
    product_name   TEXT,
    category       TEXT,
    sub_category   TEXT,
    price          NUMERIC(10,2),
    cost           NUMERIC(10,2),
    brand          TEXT,
    stock_quantity INTEGER,
    supplier_id    TEXT,
    loaded_at      TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS staging.transactions (
    transaction_id   TEXT PRIMARY KEY,
    customer_id      TEXT,
    transaction_date DATE,
    transaction_time TIME,
    payment_method   TEXT,
    shipping_address TEXT,
    total_amount     NUMERIC(12,2),
    loaded_at        TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS staging.transaction_items (
    item_id             TEXT PRIMARY KEY,
    transaction_id      TEXT,
    product_id          TEXT,
    quantity            INTEGER,
    unit_price          NUMERIC(10,2),
    discount_percentage NUMERIC(5,2),
    line_total          NUMERIC(12,2),
    loaded_at           TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
`

// CreateSchema creates the staging schema and its landing tables.
func CreateSchema(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, createSchemaSQL); err != nil {
		return fmt.Errorf("failed to create staging schema: %w", err)
	}
	return nil
}

// DropSchema drops the staging schema and everything in it.
func DropSchema(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, `DROP SCHEMA IF EXISTS staging CASCADE`); err != nil {
		return fmt.Errorf("failed to drop staging schema: %w", err)
	}
	return nil
}
