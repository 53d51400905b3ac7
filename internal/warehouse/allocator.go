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

// AllocateKey issues the next surrogate key for the dimension. Keys come
// from a PostgreSQL sequence, so they are strictly increasing and never
// reused: a key drawn inside a transaction that later aborts is
// abandoned, leaving a gap. A key counts as spent only when the version
// row it identifies durably commits.
func AllocateKey(ctx context.Context, q Querier, dim Dimension) (int64, error) {
	var key int64
	if err := q.QueryRow(ctx,
		fmt.Sprintf("SELECT nextval('%s')", dim.Sequence)).Scan(&key); err != nil {
		return 0, fmt.Errorf("failed to allocate %s surrogate key: %w", dim.Name, err)
	}
	return key, nil
}
