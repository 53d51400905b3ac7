//-------------------------------------------------------------------------
//
// pgEdge Warehouse Load Pipeline
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package quality

// Catalogue of checks over the operational (production schema) store.
// Line-total and transaction-total reconciliation both use the same
// tolerance the fact loader applies.

func init() {
	// Completeness
	Register(Check{
		Name:        "null_customer_emails",
		Category:    CategoryCompleteness,
		Description: "Customers with a missing email address",
		Query: `
            SELECT customer_id FROM production.customers
            WHERE email IS NULL OR email = ''
            ORDER BY customer_id`,
	})
	Register(Check{
		Name:        "blank_business_keys",
		Category:    CategoryCompleteness,
		Description: "Customers or products with a blank business key",
		Query: `
            SELECT 'customer' FROM production.customers WHERE customer_id = ''
            UNION ALL
            SELECT 'product' FROM production.products WHERE product_id = ''`,
	})
	Register(Check{
		Name:        "null_transaction_customers",
		Category:    CategoryCompleteness,
		Description: "Transactions without a customer reference",
		Query: `
            SELECT transaction_id FROM production.transactions
            WHERE customer_id IS NULL OR customer_id = ''
            ORDER BY transaction_id`,
	})

	// Uniqueness
	Register(Check{
		Name:        "duplicate_customer_emails",
		Category:    CategoryUniqueness,
		Description: "Customers sharing an email address (counts every row in a duplicate group)",
		Query: `
            SELECT customer_id FROM production.customers
            WHERE email IN (
                SELECT email FROM production.customers
                WHERE email IS NOT NULL
                GROUP BY email HAVING COUNT(*) > 1
            )
            ORDER BY customer_id`,
	})
	Register(Check{
		Name:        "duplicate_transactions",
		Category:    CategoryUniqueness,
		Description: "Transactions duplicated by customer, date and amount",
		Query: `
            SELECT transaction_id FROM production.transactions t
            WHERE EXISTS (
                SELECT 1 FROM production.transactions o
                WHERE o.customer_id = t.customer_id
                  AND o.transaction_date = t.transaction_date
                  AND o.total_amount = t.total_amount
                  AND o.transaction_id <> t.transaction_id
            )
            ORDER BY transaction_id`,
	})

	// Validity
	Register(Check{
		Name:        "invalid_product_prices",
		Category:    CategoryValidity,
		Description: "Products priced at or below zero",
		Query: `
            SELECT product_id FROM production.products
            WHERE price <= 0
            ORDER BY product_id`,
	})
	Register(Check{
		Name:        "invalid_product_costs",
		Category:    CategoryValidity,
		Description: "Products with cost at or below zero, or at or above price",
		Query: `
            SELECT product_id FROM production.products
            WHERE cost <= 0 OR cost >= price
            ORDER BY product_id`,
	})
	Register(Check{
		Name:        "invalid_discounts",
		Category:    CategoryValidity,
		Description: "Items with a discount percentage outside 0-100",
		Query: `
            SELECT item_id FROM production.transaction_items
            WHERE discount_percentage < 0 OR discount_percentage > 100
            ORDER BY item_id`,
	})
	Register(Check{
		Name:        "invalid_quantities",
		Category:    CategoryValidity,
		Description: "Items with a non-positive quantity",
		Query: `
            SELECT item_id FROM production.transaction_items
            WHERE quantity <= 0
            ORDER BY item_id`,
	})

	// Consistency
	Register(Check{
		Name:        "line_total_mismatches",
		Category:    CategoryConsistency,
		Description: "Items whose line total disagrees with quantity, price and discount beyond 0.01",
		Query: `
            SELECT item_id FROM production.transaction_items
            WHERE ABS(line_total -
                      (quantity * unit_price * (1 - discount_percentage / 100))) > 0.01
            ORDER BY item_id`,
	})
	Register(Check{
		Name:        "transaction_total_mismatches",
		Category:    CategoryConsistency,
		Description: "Transactions whose total disagrees with the sum of item line totals beyond 0.01",
		Query: `
            SELECT t.transaction_id
            FROM production.transactions t
            JOIN production.transaction_items ti ON ti.transaction_id = t.transaction_id
            GROUP BY t.transaction_id, t.total_amount
            HAVING ABS(t.total_amount - SUM(ti.line_total)) > 0.01
            ORDER BY t.transaction_id`,
	})

	// Referential integrity
	Register(Check{
		Name:        "orphan_transactions",
		Category:    CategoryReferential,
		Description: "Transactions referencing a missing customer",
		Query: `
            SELECT t.transaction_id
            FROM production.transactions t
            LEFT JOIN production.customers c ON t.customer_id = c.customer_id
            WHERE c.customer_id IS NULL
            ORDER BY t.transaction_id`,
	})
	Register(Check{
		Name:        "orphan_items_product",
		Category:    CategoryReferential,
		Description: "Transaction items referencing a missing product",
		Query: `
            SELECT ti.item_id
            FROM production.transaction_items ti
            LEFT JOIN production.products p ON ti.product_id = p.product_id
            WHERE p.product_id IS NULL
            ORDER BY ti.item_id`,
	})
	Register(Check{
		Name:        "orphan_items_transaction",
		Category:    CategoryReferential,
		Description: "Transaction items referencing a missing transaction",
		Query: `
            SELECT ti.item_id
            FROM production.transaction_items ti
            LEFT JOIN production.transactions t ON ti.transaction_id = t.transaction_id
            WHERE t.transaction_id IS NULL
            ORDER BY ti.item_id`,
	})

	// Business rules
	Register(Check{
		Name:        "future_dated_transactions",
		Category:    CategoryBusiness,
		Description: "Transactions dated after the validation date",
		NeedsAsOf:   true,
		Query: `
            SELECT transaction_id FROM production.transactions
            WHERE transaction_date > $1
            ORDER BY transaction_id`,
	})
	Register(Check{
		Name:        "registration_after_transaction",
		Category:    CategoryBusiness,
		Description: "Transactions dated before the customer's registration",
		Query: `
            SELECT t.transaction_id
            FROM production.transactions t
            JOIN production.customers c ON t.customer_id = c.customer_id
            WHERE c.registration_date > t.transaction_date
            ORDER BY t.transaction_id`,
	})
}
