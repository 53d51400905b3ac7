//-------------------------------------------------------------------------
//
// pgEdge Warehouse Load Pipeline
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package pipeline

import (
	"github.com/pgEdge/pgedge-warehouse/internal/warehouse"
)

// Run statuses. A batch that commits with skipped or flagged rows is a
// warning, not a success: the operator has rows to chase.
const (
	StatusSuccess  = "success"
	StatusWarnings = "success-with-warnings"
	StatusFailed   = "failed"
)

// maxSamples bounds the per-category error samples carried in a report.
const maxSamples = 10

// Report is the structured outcome of one warehouse load run.
type Report struct {
	Status              string                    `json:"status"`
	BatchDate           string                    `json:"batch_date"`
	PaymentMethodsAdded int                       `json:"payment_methods_added"`
	Customers           warehouse.VersionStats    `json:"customers"`
	Products            warehouse.VersionStats    `json:"products"`
	Facts               warehouse.FactStats       `json:"facts"`
	Aggregates          *warehouse.AggregateStats `json:"aggregates,omitempty"`
	Errors              []string                  `json:"errors,omitempty"`
	DurationMS          int64                     `json:"duration_ms"`
}

// addError records an error sample, keeping the report bounded.
func (r *Report) addError(msg string) {
	if len(r.Errors) < maxSamples {
		r.Errors = append(r.Errors, msg)
	}
}

// finalize derives the run status from the accumulated counts. A report
// already marked failed stays failed.
func (r *Report) finalize() {
	if r.Status == StatusFailed {
		return
	}
	if r.Facts.Unresolved > 0 || r.Facts.Invalid > 0 || r.Facts.Flagged > 0 {
		r.Status = StatusWarnings
		return
	}
	r.Status = StatusSuccess
}
