//-------------------------------------------------------------------------
//
// pgEdge Warehouse Load Pipeline
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package production maintains the cleansed operational schema. The
// transform step moves rows from staging into production: entity tables
// are upserted with the latest attributes, event tables are append-only.
package production

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

const createSchemaSQL = `
CREATE SCHEMA IF NOT EXISTS production;

CREATE TABLE IF NOT EXISTS production.customers (
    customer_id       TEXT PRIMARY KEY,
    first_name        TEXT NOT NULL,
    last_name         TEXT NOT NULL,
    email             TEXT,
    phone             TEXT,
    registration_date DATE,
    city              TEXT,
    state             TEXT,
    country           TEXT,
    age_group         TEXT,
    updated_at        TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS production.products (
    product_id     TEXT PRIMARY KEY,
    product_name   TEXT NOT NULL,
    category       TEXT,
    sub_category   TEXT,
    price          NUMERIC(10,2) NOT NULL CHECK (price > 0),
    cost           NUMERIC(10,2) NOT NULL CHECK (cost > 0),
    brand          TEXT,
    stock_quantity INTEGER,
    supplier_id    TEXT,
    updated_at     TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS production.transactions (
    transaction_id   TEXT PRIMARY KEY,
    customer_id      TEXT NOT NULL,
    transaction_date DATE NOT NULL,
    transaction_time TIME,
    payment_method   TEXT,
    shipping_address TEXT,
    total_amount     NUMERIC(12,2) NOT NULL CHECK (total_amount > 0)
);

CREATE TABLE IF NOT EXISTS production.transaction_items (
    item_id             TEXT PRIMARY KEY,
    transaction_id      TEXT NOT NULL,
    product_id          TEXT NOT NULL,
    quantity            INTEGER NOT NULL CHECK (quantity > 0),
    unit_price          NUMERIC(10,2) NOT NULL,
    discount_percentage NUMERIC(5,2) NOT NULL DEFAULT 0,
    line_total          NUMERIC(12,2) NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_transactions_date
    ON production.transactions (transaction_date);
CREATE INDEX IF NOT EXISTS idx_items_transaction
    ON production.transaction_items (transaction_id);
`

// CreateSchema creates the production schema and its tables.
func CreateSchema(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, createSchemaSQL); err != nil {
		return fmt.Errorf("failed to create production schema: %w", err)
	}
	return nil
}

// DropSchema drops the production schema and everything in it.
func DropSchema(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, `DROP SCHEMA IF EXISTS production CASCADE`); err != nil {
		return fmt.Errorf("failed to drop production schema: %w", err)
	}
	return nil
}
