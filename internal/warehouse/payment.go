//-------------------------------------------------------------------------
//
// pgEdge Warehouse Load Pipeline
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package warehouse

import (
	"context"
	"fmt"
)

// PaymentType classifies a payment method name. Cash on Delivery is the
// only offline channel the operational store produces.
func PaymentType(name string) string {
	if name == "Cash on Delivery" {
		return "Offline"
	}
	return "Online"
}

// SyncPaymentMethods inserts any payment method names seen in the
// operational transactions that the dimension does not know yet. The
// dimension is effectively static, so existing rows are never touched.
// Returns the number of new methods added.
func SyncPaymentMethods(ctx context.Context, q Querier) (int, error) {
	rows, err := q.Query(ctx, `
        SELECT DISTINCT payment_method
        FROM production.transactions
        WHERE payment_method IS NOT NULL
        ORDER BY payment_method
    `)
	if err != nil {
		return 0, fmt.Errorf("failed to read payment methods: %w", err)
	}
	methods, err := collectKeys(rows)
	if err != nil {
		return 0, err
	}

	added := 0
	for _, name := range methods {
		tag, err := q.Exec(ctx, `
            INSERT INTO warehouse.dim_payment_method (payment_method_name, payment_type)
            VALUES ($1, $2)
            ON CONFLICT (payment_method_name) DO NOTHING
        `, name, PaymentType(name))
		if err != nil {
			return added, fmt.Errorf("failed to insert payment method %s: %w", name, err)
		}
		added += int(tag.RowsAffected())
	}
	return added, nil
}

// LoadPaymentKeys returns the surrogate key for every payment method
// name in the dimension.
func LoadPaymentKeys(ctx context.Context, q Querier) (map[string]int64, error) {
	rows, err := q.Query(ctx, `
        SELECT payment_method_name, payment_method_key
        FROM warehouse.dim_payment_method
    `)
	if err != nil {
		return nil, fmt.Errorf("failed to load payment keys: %w", err)
	}
	defer rows.Close()

	keys := make(map[string]int64)
	for rows.Next() {
		var name string
		var key int64
		if err := rows.Scan(&name, &key); err != nil {
			return nil, err
		}
		keys[name] = key
	}
	return keys, rows.Err()
}
