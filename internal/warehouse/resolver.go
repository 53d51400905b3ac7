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
	"sort"
	"time"
)

// interval is one version's validity window in the resolver's arena.
// A nil end means open-ended.
type interval struct {
	key       int64
	effective time.Time
	end       *time.Time

	// Coverage of the earlier versions of the same key, filled by
	// annotateHistory: whether any is open-ended, and the latest end
	// date among the closed ones. Earlier versions all start on or
	// before any date this interval matches, so these two values are
	// enough to tell whether one of them still covers that date.
	priorOpen   bool
	priorMaxEnd time.Time
}

// annotateHistory fills each interval's prior-coverage fields. The
// history must already be sorted by effective date.
func annotateHistory(history []interval) {
	var open bool
	var maxEnd time.Time
	for i := range history {
		history[i].priorOpen = open
		history[i].priorMaxEnd = maxEnd
		if history[i].end == nil {
			open = true
		} else if history[i].end.After(maxEnd) {
			maxEnd = *history[i].end
		}
	}
}

// Resolver maps (business key, date) pairs to surrogate keys by validity
// interval containment. It holds every version of the dimension sorted
// by effective date per business key, so resolution is a binary search
// rather than a table scan per fact row. Late-arriving facts resolve
// against the historical version valid at transaction time, never the
// current one.
type Resolver struct {
	dim      Dimension
	versions map[string][]interval
}

// NewResolver loads the full version history of the dimension. Build it
// after the versioner has applied its decisions in the same transaction
// so facts see the batch's own dimension state.
func NewResolver(ctx context.Context, q Querier, dim Dimension) (*Resolver, error) {
	rows, err := q.Query(ctx, fmt.Sprintf(`
        SELECT %s, %s, effective_date, end_date
        FROM %s
        ORDER BY %s, effective_date
    `, dim.BusinessColumn, dim.SurrogateColumn, dim.Table, dim.BusinessColumn))
	if err != nil {
		return nil, fmt.Errorf("failed to load %s version history: %w", dim.Name, err)
	}
	defer rows.Close()

	versions := make(map[string][]interval)
	for rows.Next() {
		var businessKey string
		var iv interval
		if err := rows.Scan(&businessKey, &iv.key, &iv.effective, &iv.end); err != nil {
			return nil, err
		}
		versions[businessKey] = append(versions[businessKey], iv)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for key := range versions {
		annotateHistory(versions[key])
	}
	return &Resolver{dim: dim, versions: versions}, nil
}

// NewResolverFromVersions builds a resolver over an in-memory version
// set, sorting each business key's history by effective date.
func NewResolverFromVersions(dim Dimension, versions []Version) *Resolver {
	byKey := make(map[string][]interval)
	for _, v := range versions {
		byKey[v.BusinessKey] = append(byKey[v.BusinessKey], interval{
			key:       v.SurrogateKey,
			effective: truncateDay(v.EffectiveDate),
			end:       v.EndDate,
		})
	}
	for key := range byKey {
		history := byKey[key]
		sort.Slice(history, func(i, j int) bool {
			return history[i].effective.Before(history[j].effective)
		})
		annotateHistory(history)
	}
	return &Resolver{dim: dim, versions: byKey}
}

// Resolve returns the surrogate key of the version whose validity
// interval contains asOf's date. It fails with UnresolvedKeyError when
// no version covers the date and AmbiguousKeyError when more than one
// does; ambiguity cannot occur while the interval invariant holds, so it
// signals corruption rather than a data problem.
func (r *Resolver) Resolve(businessKey string, asOf time.Time) (int64, error) {
	asOf = truncateDay(asOf)
	history := r.versions[businessKey]
	if len(history) == 0 {
		return 0, &UnresolvedKeyError{Dimension: r.dim.Name, BusinessKey: businessKey, AsOf: asOf}
	}

	// Last interval whose effective date is on or before asOf.
	idx := sort.Search(len(history), func(i int) bool {
		return history[i].effective.After(asOf)
	}) - 1
	if idx < 0 || !contains(history[idx], asOf) {
		return 0, &UnresolvedKeyError{Dimension: r.dim.Name, BusinessKey: businessKey, AsOf: asOf}
	}

	// A broken close-and-open leaves a superseded version still covering
	// the date. Any earlier version can be the one left open, not just
	// the neighbor, so check the prior coverage of the whole history.
	if idx > 0 && (history[idx].priorOpen || !history[idx].priorMaxEnd.Before(asOf)) {
		var keys []int64
		for i := 0; i <= idx; i++ {
			if contains(history[i], asOf) {
				keys = append(keys, history[i].key)
			}
		}
		return 0, &AmbiguousKeyError{
			Dimension:   r.dim.Name,
			BusinessKey: businessKey,
			AsOf:        asOf,
			Keys:        keys,
		}
	}
	return history[idx].key, nil
}

func contains(iv interval, asOf time.Time) bool {
	if asOf.Before(iv.effective) {
		return false
	}
	return iv.end == nil || !asOf.After(*iv.end)
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
