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
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Querier is the subset of pgx operations the warehouse engine needs.
// Both *pgxpool.Pool and pgx.Tx satisfy it, so the same code runs inside
// and outside the batch transaction.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Record is one incoming operational row keyed by its business key.
// A missing attribute key represents SQL NULL, so null vs non-null
// comparisons work without sentinel values.
type Record struct {
	BusinessKey string
	Attributes  map[string]string
}

// Version is one time-versioned row of an SCD Type 2 dimension.
// EndDate nil means the validity interval is open-ended.
type Version struct {
	SurrogateKey  int64
	BusinessKey   string
	Attributes    map[string]string
	EffectiveDate time.Time
	EndDate       *time.Time
	IsCurrent     bool
}

// Dimension describes one SCD Type 2 dimension table. Tracked columns
// participate in change detection and produce new versions; Overlay
// columns are rewritten in place on the current version (Type 1) and
// never open a new validity interval.
type Dimension struct {
	Name            string
	Table           string
	SurrogateColumn string
	BusinessColumn  string
	Sequence        string
	Tracked         []string
	Overlay         []string
}

// Customers is the customer dimension.
var Customers = Dimension{
	Name:            "customers",
	Table:           "warehouse.dim_customers",
	SurrogateColumn: "customer_key",
	BusinessColumn:  "customer_id",
	Sequence:        "warehouse.dim_customers_key_seq",
	Tracked:         []string{"full_name", "email", "city", "state", "country", "age_group"},
	Overlay:         []string{"registration_date"},
}

// Products is the product dimension.
var Products = Dimension{
	Name:            "products",
	Table:           "warehouse.dim_products",
	SurrogateColumn: "product_key",
	BusinessColumn:  "product_id",
	Sequence:        "warehouse.dim_products_key_seq",
	Tracked:         []string{"product_name", "category", "sub_category", "brand"},
	Overlay:         []string{"price_range"},
}

// AttributeColumns returns all attribute columns, tracked first.
func (d Dimension) AttributeColumns() []string {
	cols := make([]string, 0, len(d.Tracked)+len(d.Overlay))
	cols = append(cols, d.Tracked...)
	cols = append(cols, d.Overlay...)
	return cols
}

// IsTracked reports whether the column participates in change detection.
func (d Dimension) IsTracked(column string) bool {
	for _, c := range d.Tracked {
		if c == column {
			return true
		}
	}
	return false
}

// PriceRange buckets a product price the way the product dimension
// records it: <50 Budget, <200 Mid-range, otherwise Premium.
func PriceRange(price float64) string {
	switch {
	case price < 50:
		return "Budget"
	case price < 200:
		return "Mid-range"
	default:
		return "Premium"
	}
}

// FetchCustomerRecords reads the operational customer batch and shapes it
// into dimension records. full_name is derived here so the dimension
// never stores the split name columns.
func FetchCustomerRecords(ctx context.Context, q Querier) ([]Record, error) {
	rows, err := q.Query(ctx, `
        SELECT customer_id,
               first_name || ' ' || last_name,
               email, city, state, country, age_group,
               registration_date
        FROM production.customers
        ORDER BY customer_id
    `)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch customer records: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var id string
		var fullName, email, city, state, country, ageGroup *string
		var registration *time.Time
		if err := rows.Scan(&id, &fullName, &email, &city, &state, &country,
			&ageGroup, &registration); err != nil {
			return nil, err
		}
		attrs := make(map[string]string)
		setAttr(attrs, "full_name", fullName)
		setAttr(attrs, "email", email)
		setAttr(attrs, "city", city)
		setAttr(attrs, "state", state)
		setAttr(attrs, "country", country)
		setAttr(attrs, "age_group", ageGroup)
		if registration != nil {
			attrs["registration_date"] = registration.Format("2006-01-02")
		}
		records = append(records, Record{BusinessKey: id, Attributes: attrs})
	}
	return records, rows.Err()
}

// FetchProductRecords reads the operational product batch and shapes it
// into dimension records, deriving the price_range overlay bucket.
func FetchProductRecords(ctx context.Context, q Querier) ([]Record, error) {
	rows, err := q.Query(ctx, `
        SELECT product_id, product_name, category, sub_category, brand, price
        FROM production.products
        ORDER BY product_id
    `)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch product records: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var id string
		var name, category, subCategory, brand *string
		var price *float64
		if err := rows.Scan(&id, &name, &category, &subCategory, &brand, &price); err != nil {
			return nil, err
		}
		attrs := make(map[string]string)
		setAttr(attrs, "product_name", name)
		setAttr(attrs, "category", category)
		setAttr(attrs, "sub_category", subCategory)
		setAttr(attrs, "brand", brand)
		if price != nil {
			attrs["price_range"] = PriceRange(*price)
		}
		records = append(records, Record{BusinessKey: id, Attributes: attrs})
	}
	return records, rows.Err()
}

// LoadCurrentVersions returns the current version of every business key
// in the dimension, keyed by business key.
func LoadCurrentVersions(ctx context.Context, q Querier, dim Dimension) (map[string]*Version, error) {
	// Attribute columns are cast to text so DATE-typed overlay columns
	// compare against the record's canonical YYYY-MM-DD form.
	cols := dim.AttributeColumns()
	query := fmt.Sprintf(`
        SELECT %s, %s, %s::text, effective_date, end_date, is_current
        FROM %s
        WHERE is_current
    `, dim.SurrogateColumn, dim.BusinessColumn, strings.Join(cols, "::text, "), dim.Table)

	rows, err := q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to load current %s versions: %w", dim.Name, err)
	}
	defer rows.Close()

	current := make(map[string]*Version)
	for rows.Next() {
		v, err := scanVersion(rows, cols)
		if err != nil {
			return nil, err
		}
		current[v.BusinessKey] = v
	}
	return current, rows.Err()
}

func scanVersion(rows pgx.Rows, cols []string) (*Version, error) {
	v := &Version{Attributes: make(map[string]string)}
	attrVals := make([]*string, len(cols))

	dest := make([]any, 0, len(cols)+5)
	dest = append(dest, &v.SurrogateKey, &v.BusinessKey)
	for i := range attrVals {
		dest = append(dest, &attrVals[i])
	}
	dest = append(dest, &v.EffectiveDate, &v.EndDate, &v.IsCurrent)

	if err := rows.Scan(dest...); err != nil {
		return nil, err
	}
	for i, col := range cols {
		setAttr(v.Attributes, col, attrVals[i])
	}
	return v, nil
}

func setAttr[T any](attrs map[string]string, column string, val *T) {
	if val == nil {
		return
	}
	attrs[column] = fmt.Sprint(*val)
}
