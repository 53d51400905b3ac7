//-------------------------------------------------------------------------
//
// pgEdge Warehouse Load Pipeline
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package quality

// Structural checks over the warehouse itself. These restate the
// dimension invariants the versioner verifies before commit, so a clean
// load can never fail them; they exist to catch corruption introduced
// outside the pipeline.

func init() {
	Register(Check{
		Name:        "customer_current_versions",
		Category:    CategoryStructural,
		Description: "Customer business keys without exactly one current open-ended version",
		Query: `
            SELECT customer_id FROM warehouse.dim_customers
            GROUP BY customer_id
            HAVING COUNT(*) FILTER (WHERE is_current AND end_date IS NULL) <> 1
            ORDER BY customer_id`,
	})
	Register(Check{
		Name:        "product_current_versions",
		Category:    CategoryStructural,
		Description: "Product business keys without exactly one current open-ended version",
		Query: `
            SELECT product_id FROM warehouse.dim_products
            GROUP BY product_id
            HAVING COUNT(*) FILTER (WHERE is_current AND end_date IS NULL) <> 1
            ORDER BY product_id`,
	})
	Register(Check{
		Name:        "customer_interval_overlaps",
		Category:    CategoryStructural,
		Description: "Customer versions with overlapping validity intervals",
		Query: `
            SELECT DISTINCT a.customer_id
            FROM warehouse.dim_customers a
            JOIN warehouse.dim_customers b
              ON a.customer_id = b.customer_id
             AND a.customer_key < b.customer_key
             AND a.effective_date <= COALESCE(b.end_date, 'infinity'::date)
             AND b.effective_date <= COALESCE(a.end_date, 'infinity'::date)
            ORDER BY a.customer_id`,
	})
	Register(Check{
		Name:        "product_interval_overlaps",
		Category:    CategoryStructural,
		Description: "Product versions with overlapping validity intervals",
		Query: `
            SELECT DISTINCT a.product_id
            FROM warehouse.dim_products a
            JOIN warehouse.dim_products b
              ON a.product_id = b.product_id
             AND a.product_key < b.product_key
             AND a.effective_date <= COALESCE(b.end_date, 'infinity'::date)
             AND b.effective_date <= COALESCE(a.end_date, 'infinity'::date)
            ORDER BY a.product_id`,
	})
	Register(Check{
		Name:        "fact_orphan_keys",
		Category:    CategoryStructural,
		Description: "Fact rows referencing a dimension key that does not exist",
		Query: `
            SELECT f.item_id
            FROM warehouse.fact_sales f
            LEFT JOIN warehouse.dim_customers c ON f.customer_key = c.customer_key
            LEFT JOIN warehouse.dim_products p ON f.product_key = p.product_key
            LEFT JOIN warehouse.dim_date d ON f.date_key = d.date_key
            WHERE c.customer_key IS NULL
               OR p.product_key IS NULL
               OR d.date_key IS NULL
            ORDER BY f.item_id`,
	})
}
