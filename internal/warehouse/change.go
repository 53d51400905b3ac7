//-------------------------------------------------------------------------
//
// pgEdge Warehouse Load Pipeline
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package warehouse

// ChangeKind classifies the outcome of comparing an incoming record
// against the current dimension version.
type ChangeKind int

const (
	// NoChange means every tracked and overlay attribute is equal.
	NoChange ChangeKind = iota

	// NewEntity means no current version exists for the business key.
	NewEntity

	// AttributeChange means at least one tracked attribute differs.
	AttributeChange

	// OverlayChange means only untracked overlay attributes differ; they
	// are rewritten on the current version without a new validity interval.
	OverlayChange
)

// String returns the change kind name.
func (k ChangeKind) String() string {
	switch k {
	case NoChange:
		return "no_change"
	case NewEntity:
		return "new_entity"
	case AttributeChange:
		return "attribute_change"
	case OverlayChange:
		return "overlay_change"
	default:
		return "unknown"
	}
}

// Change is the result of change detection for one business key.
type Change struct {
	Kind ChangeKind

	// ChangedFields lists the tracked columns that differ. Empty unless
	// Kind is AttributeChange.
	ChangedFields []string

	// OverlayFields lists the overlay columns that differ. Set for both
	// AttributeChange and OverlayChange so the apply step carries the
	// overlay values forward in either case.
	OverlayFields []string
}

// Detect compares an incoming record against the current version of its
// business key. Comparison is field-by-field, case-sensitive and
// null-aware: a null on one side and a value on the other is a change.
func (d Dimension) Detect(incoming Record, current *Version) Change {
	if current == nil {
		return Change{Kind: NewEntity}
	}

	var changed, overlaid []string
	for _, col := range d.Tracked {
		if !attrEqual(incoming.Attributes, current.Attributes, col) {
			changed = append(changed, col)
		}
	}
	for _, col := range d.Overlay {
		if !attrEqual(incoming.Attributes, current.Attributes, col) {
			overlaid = append(overlaid, col)
		}
	}

	switch {
	case len(changed) > 0:
		return Change{Kind: AttributeChange, ChangedFields: changed, OverlayFields: overlaid}
	case len(overlaid) > 0:
		return Change{Kind: OverlayChange, OverlayFields: overlaid}
	default:
		return Change{Kind: NoChange}
	}
}

// attrEqual compares one attribute across two maps, treating a missing
// key as NULL.
func attrEqual(a, b map[string]string, column string) bool {
	av, aok := a[column]
	bv, bok := b[column]
	return aok == bok && av == bv
}
