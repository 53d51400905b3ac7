//-------------------------------------------------------------------------
//
// pgEdge Warehouse Load Pipeline
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package quality

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// CheckResult is the outcome of one check.
type CheckResult struct {
	Name        string   `json:"name"`
	Category    string   `json:"category"`
	Description string   `json:"description"`
	Status      string   `json:"status"`
	Violations  int64    `json:"violations"`
	Samples     []string `json:"samples,omitempty"`
	DurationMS  int64    `json:"duration_ms"`
}

// Report is the structured result of a validation run.
type Report struct {
	Timestamp       time.Time     `json:"check_timestamp"`
	Results         []CheckResult `json:"checks_performed"`
	TotalViolations int64         `json:"total_violations"`
	Score           int           `json:"overall_quality_score"`
	Grade           string        `json:"quality_grade"`
}

// NewReport assembles a report from check results, scoring and grading
// the overall run.
func NewReport(timestamp time.Time, results []CheckResult) *Report {
	var total int64
	for i := range results {
		if results[i].Violations == 0 {
			results[i].Status = "passed"
		} else {
			results[i].Status = "failed"
		}
		total += results[i].Violations
	}

	score := Score(total)
	return &Report{
		Timestamp:       timestamp,
		Results:         results,
		TotalViolations: total,
		Score:           score,
		Grade:           Grade(score),
	}
}

// Score converts a violation total into a 0-100 quality score.
func Score(totalViolations int64) int {
	score := 100 - totalViolations
	if score < 0 {
		return 0
	}
	return int(score)
}

// Grade letter-grades a quality score.
func Grade(score int) string {
	switch {
	case score >= 90:
		return "A"
	case score >= 80:
		return "B"
	case score >= 70:
		return "C"
	case score >= 60:
		return "D"
	default:
		return "F"
	}
}

// Write serializes the report as indented JSON at the given path,
// creating parent directories as needed.
func (r *Report) Write(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create report directory: %w", err)
	}
	data, err := json.MarshalIndent(r, "", "    ")
	if err != nil {
		return fmt.Errorf("failed to marshal quality report: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write quality report: %w", err)
	}
	return nil
}
