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
)

// DateKey returns the integer calendar key for a date (YYYYMMDD).
func DateKey(t time.Time) int {
	return t.Year()*10000 + int(t.Month())*100 + t.Day()
}

// Quarter returns the calendar quarter of a date.
func Quarter(t time.Time) int {
	return (int(t.Month())-1)/3 + 1
}

// IsWeekend reports whether the date falls on Saturday or Sunday.
func IsWeekend(t time.Time) bool {
	wd := t.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// PopulateCalendar fills dim_date for the inclusive date range. Calendar
// rows are pure functions of the date and never change, so existing keys
// are left untouched and re-running is safe. Returns the number of rows
// written.
func PopulateCalendar(ctx context.Context, q Querier, start, end time.Time) (int, error) {
	start = truncateDay(start)
	end = truncateDay(end)
	if end.Before(start) {
		return 0, fmt.Errorf("calendar end %s before start %s",
			end.Format("2006-01-02"), start.Format("2006-01-02"))
	}

	const batchSize = 1000
	total := 0
	batch := make([]string, 0, batchSize)

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		_, err := q.Exec(ctx, fmt.Sprintf(`
            INSERT INTO warehouse.dim_date
                (date_key, full_date, year, quarter, month, day,
                 month_name, day_name, week_of_year, is_weekend)
            VALUES %s
            ON CONFLICT (date_key) DO NOTHING
        `, strings.Join(batch, ", ")))
		if err != nil {
			return fmt.Errorf("failed to populate calendar: %w", err)
		}
		total += len(batch)
		batch = batch[:0]
		return nil
	}

	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		_, week := d.ISOWeek()
		batch = append(batch, fmt.Sprintf("(%d, '%s', %d, %d, %d, %d, '%s', '%s', %d, %t)",
			DateKey(d), d.Format("2006-01-02"), d.Year(), Quarter(d),
			int(d.Month()), d.Day(), d.Month().String(), d.Weekday().String(),
			week, IsWeekend(d)))
		if len(batch) >= batchSize {
			if err := flush(); err != nil {
				return total, err
			}
		}
	}
	if err := flush(); err != nil {
		return total, err
	}
	return total, nil
}

// CalendarRange returns the lowest and highest populated date keys, or
// ok=false when the calendar is empty.
func CalendarRange(ctx context.Context, q Querier) (minKey, maxKey int, ok bool, err error) {
	var lo, hi *int
	if err = q.QueryRow(ctx,
		`SELECT MIN(date_key), MAX(date_key) FROM warehouse.dim_date`).Scan(&lo, &hi); err != nil {
		return 0, 0, false, fmt.Errorf("failed to read calendar range: %w", err)
	}
	if lo == nil || hi == nil {
		return 0, 0, false, nil
	}
	return *lo, *hi, true, nil
}
