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
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
)

// Decision is one staged version transition for a business key. Staging
// is pure so the merge logic is testable without a database; Apply
// performs the writes.
type Decision struct {
	Change  Change
	Record  Record
	Current *Version // nil for NewEntity
}

// VersionStats counts the writes one dimension merge performed.
type VersionStats struct {
	NewEntities int `json:"new_entities"`
	Superseded  int `json:"superseded"`
	Overlaid    int `json:"overlaid"`
	Unchanged   int `json:"unchanged"`
}

// Versioner applies SCD Type 2 merges for one dimension.
type Versioner struct {
	Dim Dimension
}

// NewVersioner creates a versioner for the dimension.
func NewVersioner(dim Dimension) *Versioner {
	return &Versioner{Dim: dim}
}

// Stage runs change detection over an incoming batch against the current
// versions and returns the transitions to apply. Multiple records for
// the same business key collapse to a single transition using the last
// record seen in batch order. An unchanged batch stages zero decisions,
// so re-running it is a no-op.
func (v *Versioner) Stage(batch []Record, current map[string]*Version) ([]Decision, VersionStats) {
	// Last-write-wins collapse, preserving first-seen key order.
	latest := make(map[string]Record, len(batch))
	var order []string
	for _, rec := range batch {
		if _, seen := latest[rec.BusinessKey]; !seen {
			order = append(order, rec.BusinessKey)
		}
		latest[rec.BusinessKey] = rec
	}

	var decisions []Decision
	var stats VersionStats
	for _, key := range order {
		rec := latest[key]
		cur := current[key]
		change := v.Dim.Detect(rec, cur)

		switch change.Kind {
		case NoChange:
			stats.Unchanged++
			continue
		case NewEntity:
			stats.NewEntities++
		case AttributeChange:
			stats.Superseded++
		case OverlayChange:
			stats.Overlaid++
		}
		decisions = append(decisions, Decision{Change: change, Record: rec, Current: cur})
	}
	return decisions, stats
}

// Apply executes staged decisions against the dimension table. The
// caller supplies the batch transaction: every close-and-open pair must
// commit atomically, so Apply never begins or commits a transaction
// itself. Closed versions end the day before the batch date.
func (v *Versioner) Apply(ctx context.Context, tx Querier, decisions []Decision, batchDate time.Time) error {
	for _, d := range decisions {
		switch d.Change.Kind {
		case NewEntity:
			if err := v.insertVersion(ctx, tx, d.Record, batchDate); err != nil {
				return err
			}

		case AttributeChange:
			if err := v.closeVersion(ctx, tx, d.Current, batchDate); err != nil {
				return err
			}
			if err := v.insertVersion(ctx, tx, d.Record, batchDate); err != nil {
				return err
			}

		case OverlayChange:
			if err := v.overlayVersion(ctx, tx, d); err != nil {
				return err
			}
		}
	}
	return nil
}

// insertVersion allocates a fresh surrogate key and opens a new current
// version effective on the batch date.
func (v *Versioner) insertVersion(ctx context.Context, tx Querier, rec Record, batchDate time.Time) error {
	key, err := AllocateKey(ctx, tx, v.Dim)
	if err != nil {
		return err
	}

	cols := v.Dim.AttributeColumns()
	colList := make([]string, 0, len(cols)+5)
	colList = append(colList, v.Dim.SurrogateColumn, v.Dim.BusinessColumn)
	colList = append(colList, cols...)
	colList = append(colList, "effective_date", "end_date", "is_current")

	args := make([]any, 0, len(colList))
	args = append(args, key, rec.BusinessKey)
	for _, col := range cols {
		if val, ok := rec.Attributes[col]; ok {
			args = append(args, val)
		} else {
			args = append(args, nil)
		}
	}
	args = append(args, batchDate, nil, true)

	placeholders := make([]string, len(colList))
	for i := range placeholders {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
	}

	_, err = tx.Exec(ctx, fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		v.Dim.Table, strings.Join(colList, ", "), strings.Join(placeholders, ", ")), args...)
	if err != nil {
		if isUniqueViolation(err) {
			return &AllocationConflictError{Dimension: v.Dim.Name, Err: err}
		}
		return fmt.Errorf("failed to insert %s version for %s: %w", v.Dim.Name, rec.BusinessKey, err)
	}
	return nil
}

// closeVersion ends the superseded version the day before the batch date.
func (v *Versioner) closeVersion(ctx context.Context, tx Querier, cur *Version, batchDate time.Time) error {
	tag, err := tx.Exec(ctx, fmt.Sprintf(`
        UPDATE %s SET end_date = $1, is_current = FALSE
        WHERE %s = $2 AND is_current
    `, v.Dim.Table, v.Dim.SurrogateColumn),
		batchDate.AddDate(0, 0, -1), cur.SurrogateKey)
	if err != nil {
		return fmt.Errorf("failed to close %s version %d: %w", v.Dim.Name, cur.SurrogateKey, err)
	}
	if tag.RowsAffected() != 1 {
		return &InvariantViolationError{
			Dimension:    v.Dim.Name,
			Detail:       fmt.Sprintf("current version %d vanished before close", cur.SurrogateKey),
			BusinessKeys: []string{cur.BusinessKey},
		}
	}
	return nil
}

// overlayVersion rewrites untracked columns on the current version in
// place. No new validity interval opens.
func (v *Versioner) overlayVersion(ctx context.Context, tx Querier, d Decision) error {
	sets := make([]string, 0, len(d.Change.OverlayFields))
	args := make([]any, 0, len(d.Change.OverlayFields)+1)
	for _, col := range d.Change.OverlayFields {
		if val, ok := d.Record.Attributes[col]; ok {
			args = append(args, val)
		} else {
			args = append(args, nil)
		}
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
	}
	args = append(args, d.Current.SurrogateKey)

	_, err := tx.Exec(ctx, fmt.Sprintf("UPDATE %s SET %s WHERE %s = $%d",
		v.Dim.Table, strings.Join(sets, ", "), v.Dim.SurrogateColumn, len(args)), args...)
	if err != nil {
		return fmt.Errorf("failed to overlay %s version %d: %w", v.Dim.Name, d.Current.SurrogateKey, err)
	}
	return nil
}

// VerifyIntegrity checks the dimension's structural invariants: exactly
// one current open-ended version per business key, and non-overlapping
// validity intervals. Violations are fatal and must abort the batch
// before commit.
func VerifyIntegrity(ctx context.Context, q Querier, dim Dimension) error {
	rows, err := q.Query(ctx, fmt.Sprintf(`
        SELECT %s
        FROM %s
        GROUP BY %s
        HAVING COUNT(*) FILTER (WHERE is_current AND end_date IS NULL) <> 1
            OR COUNT(*) FILTER (WHERE is_current <> (end_date IS NULL)) > 0
        LIMIT 5
    `, dim.BusinessColumn, dim.Table, dim.BusinessColumn))
	if err != nil {
		return fmt.Errorf("failed to verify %s current versions: %w", dim.Name, err)
	}
	bad, err := collectKeys(rows)
	if err != nil {
		return err
	}
	if len(bad) > 0 {
		return &InvariantViolationError{
			Dimension:    dim.Name,
			Detail:       "business keys without exactly one current open-ended version",
			BusinessKeys: bad,
		}
	}

	rows, err = q.Query(ctx, fmt.Sprintf(`
        SELECT DISTINCT a.%[1]s
        FROM %[2]s a
        JOIN %[2]s b
          ON a.%[1]s = b.%[1]s
         AND a.%[3]s < b.%[3]s
         AND a.effective_date <= COALESCE(b.end_date, 'infinity'::date)
         AND b.effective_date <= COALESCE(a.end_date, 'infinity'::date)
        LIMIT 5
    `, dim.BusinessColumn, dim.Table, dim.SurrogateColumn))
	if err != nil {
		return fmt.Errorf("failed to verify %s intervals: %w", dim.Name, err)
	}
	bad, err = collectKeys(rows)
	if err != nil {
		return err
	}
	if len(bad) > 0 {
		return &InvariantViolationError{
			Dimension:    dim.Name,
			Detail:       "overlapping validity intervals",
			BusinessKeys: bad,
		}
	}
	return nil
}

func collectKeys(rows pgx.Rows) ([]string, error) {
	defer rows.Close()
	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, err
		}
		keys = append(keys, key)
	}
	return keys, rows.Err()
}
