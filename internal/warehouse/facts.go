//-------------------------------------------------------------------------
//
// pgEdge Warehouse Load Pipeline
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package warehouse

import (
	"context"
	"fmt"
	"math"
	"time"
)

// MeasureTolerance is the allowed gap between an incoming line total and
// its recomputation from quantity, unit price and discount.
const MeasureTolerance = 0.01

// FlagLineTotalMismatch marks fact rows whose claimed line total
// disagrees with the recomputed value. Mismatched rows load with the
// incoming value and this flag; the pipeline favors completeness over
// silent correction or loss.
const FlagLineTotalMismatch = "line_total_mismatch"

// SourceLine is one operational transaction item joined with its
// transaction and product, ready for key resolution and fact loading.
type SourceLine struct {
	ItemID             string
	TransactionID      string
	CustomerID         string
	ProductID          string
	PaymentMethod      string
	TransactionDate    time.Time
	Quantity           int
	UnitPrice          float64
	DiscountPercentage float64
	LineTotal          float64
	ProductCost        *float64
}

// Measures holds the validated measures of one fact row. The operational
// store carries discount as a percentage; the fact stores the derived
// currency amount.
type Measures struct {
	Quantity       int
	UnitPrice      float64
	DiscountAmount float64
	LineTotal      float64
	Profit         float64
}

// FactRow is one immutable fact_sales row. Corrections are made by new
// compensating rows, never by update.
type FactRow struct {
	DateKey          int
	CustomerKey      int64
	ProductKey       int64
	PaymentMethodKey int64
	TransactionID    string
	ItemID           string
	Measures         Measures
	QualityFlag      *string
}

// FactStats counts the outcomes of one fact loading pass.
type FactStats struct {
	Loaded     int `json:"loaded"`
	Skipped    int `json:"skipped"`
	Unresolved int `json:"unresolved"`
	Flagged    int `json:"flagged"`
	Invalid    int `json:"invalid"`
}

// FetchSourceLines reads the operational transaction items with their
// transaction context and product cost. Products are left-joined so an
// orphaned item still reaches key resolution and is reported there
// instead of silently vanishing from the batch.
func FetchSourceLines(ctx context.Context, q Querier) ([]SourceLine, error) {
	rows, err := q.Query(ctx, `
        SELECT ti.item_id, ti.transaction_id, t.customer_id, ti.product_id,
               t.payment_method, t.transaction_date,
               ti.quantity, ti.unit_price, ti.discount_percentage, ti.line_total,
               p.cost
        FROM production.transaction_items ti
        JOIN production.transactions t ON ti.transaction_id = t.transaction_id
        LEFT JOIN production.products p ON ti.product_id = p.product_id
        ORDER BY ti.item_id
    `)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch source lines: %w", err)
	}
	defer rows.Close()

	var lines []SourceLine
	for rows.Next() {
		var l SourceLine
		if err := rows.Scan(&l.ItemID, &l.TransactionID, &l.CustomerID, &l.ProductID,
			&l.PaymentMethod, &l.TransactionDate,
			&l.Quantity, &l.UnitPrice, &l.DiscountPercentage, &l.LineTotal,
			&l.ProductCost); err != nil {
			return nil, err
		}
		lines = append(lines, l)
	}
	return lines, rows.Err()
}

// BuildMeasures validates and derives the measures for one source line.
// Quantity and unit price violations return an error; a line total that
// disagrees with its recomputation beyond the tolerance returns the
// mismatch flag but no error, so the row still loads.
func BuildMeasures(line SourceLine) (Measures, *string, error) {
	if line.Quantity <= 0 {
		return Measures{}, nil, fmt.Errorf("item %s: quantity must be positive, got %d",
			line.ItemID, line.Quantity)
	}
	if line.UnitPrice < 0 {
		return Measures{}, nil, fmt.Errorf("item %s: unit price must not be negative, got %.2f",
			line.ItemID, line.UnitPrice)
	}

	discountAmount := round2(float64(line.Quantity) * line.UnitPrice * line.DiscountPercentage / 100)
	recomputed := round2(float64(line.Quantity)*line.UnitPrice - discountAmount)

	var cost float64
	if line.ProductCost != nil {
		cost = *line.ProductCost
	}

	m := Measures{
		Quantity:       line.Quantity,
		UnitPrice:      line.UnitPrice,
		DiscountAmount: discountAmount,
		LineTotal:      line.LineTotal,
		Profit:         round2(line.LineTotal - cost*float64(line.Quantity)),
	}

	if math.Abs(line.LineTotal-recomputed) > MeasureTolerance+1e-9 {
		flag := FlagLineTotalMismatch
		return m, &flag, nil
	}
	return m, nil, nil
}

// InsertFact appends one fact row. item_id carries a unique constraint,
// so re-running an already loaded batch inserts nothing and the load
// stays idempotent. Returns whether a row was actually written.
func InsertFact(ctx context.Context, q Querier, row FactRow) (bool, error) {
	tag, err := q.Exec(ctx, `
        INSERT INTO warehouse.fact_sales
            (date_key, customer_key, product_key, payment_method_key,
             transaction_id, item_id, quantity, unit_price,
             discount_amount, line_total, profit, quality_flag)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
        ON CONFLICT (item_id) DO NOTHING
    `, row.DateKey, row.CustomerKey, row.ProductKey, row.PaymentMethodKey,
		row.TransactionID, row.ItemID, row.Measures.Quantity, row.Measures.UnitPrice,
		row.Measures.DiscountAmount, row.Measures.LineTotal, row.Measures.Profit,
		row.QualityFlag)
	if err != nil {
		return false, fmt.Errorf("failed to insert fact for item %s: %w", row.ItemID, err)
	}
	return tag.RowsAffected() == 1, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
