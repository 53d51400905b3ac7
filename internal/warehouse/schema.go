//-------------------------------------------------------------------------
//
// pgEdge Warehouse Load Pipeline
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package warehouse implements the dimensional warehouse load engine:
// SCD Type 2 dimension versioning, date-scoped surrogate key resolution,
// immutable fact loading, and aggregate refresh.
package warehouse

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Schema SQL for the star schema. Dimension surrogate keys come from
// explicit sequences so the versioner can allocate keys inside the batch
// transaction; aborted batches leave gaps, never reuse.
const createSchemaSQL = `
CREATE SCHEMA IF NOT EXISTS warehouse;

-- Date Dimension (pre-populated, immutable calendar)
CREATE TABLE IF NOT EXISTS warehouse.dim_date (
    date_key     INTEGER PRIMARY KEY,
    full_date    DATE NOT NULL,
    year         INTEGER NOT NULL,
    quarter      INTEGER NOT NULL,
    month        INTEGER NOT NULL,
    day          INTEGER NOT NULL,
    month_name   VARCHAR(9) NOT NULL,
    day_name     VARCHAR(9) NOT NULL,
    week_of_year INTEGER NOT NULL,
    is_weekend   BOOLEAN NOT NULL
);

-- Payment Method Dimension (static lookup)
CREATE TABLE IF NOT EXISTS warehouse.dim_payment_method (
    payment_method_key  BIGSERIAL PRIMARY KEY,
    payment_method_name TEXT NOT NULL UNIQUE,
    payment_type        TEXT NOT NULL
);

-- Customer Dimension (SCD Type 2)
CREATE SEQUENCE IF NOT EXISTS warehouse.dim_customers_key_seq;

CREATE TABLE IF NOT EXISTS warehouse.dim_customers (
    customer_key      BIGINT PRIMARY KEY,
    customer_id       TEXT NOT NULL,
    full_name         TEXT,
    email             TEXT,
    city              TEXT,
    state             TEXT,
    country           TEXT,
    age_group         TEXT,
    registration_date DATE,
    effective_date    DATE NOT NULL,
    end_date          DATE,
    is_current        BOOLEAN NOT NULL
);

-- Exactly one current version per business key
CREATE UNIQUE INDEX IF NOT EXISTS idx_dim_customers_current
    ON warehouse.dim_customers (customer_id) WHERE is_current;
CREATE INDEX IF NOT EXISTS idx_dim_customers_history
    ON warehouse.dim_customers (customer_id, effective_date);

-- Product Dimension (SCD Type 2)
CREATE SEQUENCE IF NOT EXISTS warehouse.dim_products_key_seq;

CREATE TABLE IF NOT EXISTS warehouse.dim_products (
    product_key    BIGINT PRIMARY KEY,
    product_id     TEXT NOT NULL,
    product_name   TEXT,
    category       TEXT,
    sub_category   TEXT,
    brand          TEXT,
    price_range    TEXT,
    effective_date DATE NOT NULL,
    end_date       DATE,
    is_current     BOOLEAN NOT NULL
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_dim_products_current
    ON warehouse.dim_products (product_id) WHERE is_current;
CREATE INDEX IF NOT EXISTS idx_dim_products_history
    ON warehouse.dim_products (product_id, effective_date);

-- Sales Fact (append-only; item_id is the degenerate line identity)
CREATE TABLE IF NOT EXISTS warehouse.fact_sales (
    sales_key          BIGSERIAL PRIMARY KEY,
    date_key           INTEGER NOT NULL REFERENCES warehouse.dim_date(date_key),
    customer_key       BIGINT NOT NULL REFERENCES warehouse.dim_customers(customer_key),
    product_key        BIGINT NOT NULL REFERENCES warehouse.dim_products(product_key),
    payment_method_key BIGINT NOT NULL REFERENCES warehouse.dim_payment_method(payment_method_key),
    transaction_id     TEXT NOT NULL,
    item_id            TEXT NOT NULL UNIQUE,
    quantity           INTEGER NOT NULL,
    unit_price         NUMERIC(10,2) NOT NULL,
    discount_amount    NUMERIC(12,2) NOT NULL,
    line_total         NUMERIC(12,2) NOT NULL,
    profit             NUMERIC(12,2) NOT NULL,
    quality_flag       TEXT
);

CREATE INDEX IF NOT EXISTS idx_fact_sales_date ON warehouse.fact_sales(date_key);
CREATE INDEX IF NOT EXISTS idx_fact_sales_customer ON warehouse.fact_sales(customer_key);
CREATE INDEX IF NOT EXISTS idx_fact_sales_product ON warehouse.fact_sales(product_key);

-- Aggregates (fully derived from fact_sales, rebuildable at any time)
CREATE TABLE IF NOT EXISTS warehouse.agg_daily_sales (
    date_key           INTEGER PRIMARY KEY,
    total_transactions INTEGER NOT NULL,
    total_quantity     BIGINT NOT NULL,
    total_sales        NUMERIC(14,2) NOT NULL,
    total_profit       NUMERIC(14,2) NOT NULL,
    unique_customers   INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS warehouse.agg_product_performance (
    product_key       BIGINT PRIMARY KEY,
    total_quantity    BIGINT NOT NULL,
    total_sales       NUMERIC(14,2) NOT NULL,
    total_profit      NUMERIC(14,2) NOT NULL,
    transaction_count INTEGER NOT NULL,
    avg_unit_price    NUMERIC(10,2) NOT NULL
);

CREATE TABLE IF NOT EXISTS warehouse.agg_customer_metrics (
    customer_key          BIGINT PRIMARY KEY,
    total_transactions    INTEGER NOT NULL,
    total_items           BIGINT NOT NULL,
    total_spent           NUMERIC(14,2) NOT NULL,
    total_profit          NUMERIC(14,2) NOT NULL,
    avg_transaction_value NUMERIC(12,2) NOT NULL,
    first_date_key        INTEGER NOT NULL,
    last_date_key         INTEGER NOT NULL
);
`

// Drop schema SQL
const dropSchemaSQL = `
DROP SCHEMA IF EXISTS warehouse CASCADE;
`

// CreateSchema creates the warehouse star schema.
func CreateSchema(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, createSchemaSQL)
	return err
}

// DropSchema drops the warehouse star schema.
func DropSchema(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, dropSchemaSQL)
	return err
}
