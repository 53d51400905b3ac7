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
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
)

// UnresolvedKeyError reports a business key with no dimension version
// covering the requested date. Fatal for the affected fact row only.
type UnresolvedKeyError struct {
	Dimension   string
	BusinessKey string
	AsOf        time.Time
}

func (e *UnresolvedKeyError) Error() string {
	return fmt.Sprintf("no %s version covers business key %s as of %s",
		e.Dimension, e.BusinessKey, e.AsOf.Format("2006-01-02"))
}

// AmbiguousKeyError reports more than one dimension version covering the
// same date for a business key. This cannot happen while the validity
// interval invariant holds, so it signals corrupted dimension state.
type AmbiguousKeyError struct {
	Dimension   string
	BusinessKey string
	AsOf        time.Time
	Keys        []int64
}

func (e *AmbiguousKeyError) Error() string {
	return fmt.Sprintf("%d %s versions cover business key %s as of %s (surrogate keys %v)",
		len(e.Keys), e.Dimension, e.BusinessKey, e.AsOf.Format("2006-01-02"), e.Keys)
}

// AllocationConflictError reports a surrogate key collision. Always fatal:
// the whole batch must abort and roll back.
type AllocationConflictError struct {
	Dimension string
	Err       error
}

func (e *AllocationConflictError) Error() string {
	return fmt.Sprintf("surrogate key conflict in %s dimension: %v", e.Dimension, e.Err)
}

func (e *AllocationConflictError) Unwrap() error {
	return e.Err
}

// InvariantViolationError reports a structural invariant violation in a
// dimension table, such as a business key with zero or two current
// versions. Always fatal before commit.
type InvariantViolationError struct {
	Dimension    string
	Detail       string
	BusinessKeys []string
}

func (e *InvariantViolationError) Error() string {
	return fmt.Sprintf("%s dimension invariant violated: %s (keys %v)",
		e.Dimension, e.Detail, e.BusinessKeys)
}

// isUniqueViolation reports whether err is a PostgreSQL unique constraint
// violation (SQLSTATE 23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
