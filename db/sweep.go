// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/danielhkuo/huddle/models"
	"github.com/danielhkuo/huddle/viewmodel"
)

// ClosedCounts reports how many items CloseExpired closed per table.
type ClosedCounts struct {
	Polls   int
	Forms   int
	Surveys int
}

func (c ClosedCounts) Total() int {
	return c.Polls + c.Forms + c.Surveys
}

// CloseExpired moves every active poll, feedback form and survey whose
// deadline is before now to closed.
func CloseExpired(ctx context.Context, db *sql.DB, now time.Time) (ClosedCounts, error) {
	var counts ClosedCounts
	var err error

	if counts.Polls, err = closeExpiredIn(ctx, db, "poll", now); err != nil {
		return counts, err
	}
	if counts.Forms, err = closeExpiredIn(ctx, db, "feedback_form", now); err != nil {
		return counts, err
	}
	if counts.Surveys, err = closeExpiredIn(ctx, db, "survey", now); err != nil {
		return counts, err
	}
	return counts, nil
}

// table is one of a fixed set of names, never user input.
func closeExpiredIn(ctx context.Context, db *sql.DB, table string, now time.Time) (int, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, deadline FROM `+table+`
		WHERE status = $1 AND deadline IS NOT NULL
	`, models.StatusActive)
	if err != nil {
		return 0, fmt.Errorf("failed to query %s deadlines: %w", table, err)
	}

	var expired []string
	for rows.Next() {
		var id string
		var deadline time.Time
		if err := rows.Scan(&id, &deadline); err != nil {
			rows.Close()
			return 0, fmt.Errorf("failed to scan %s deadline: %w", table, err)
		}
		if viewmodel.IsPastDeadline(&deadline, now) {
			expired = append(expired, id)
		}
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return 0, fmt.Errorf("failed to read %s deadlines: %w", table, err)
	}
	rows.Close()

	closed := 0
	for _, id := range expired {
		res, err := db.ExecContext(ctx, `
			UPDATE `+table+`
			SET status = $1, closed_at = $2
			WHERE id = $3 AND status = $4
		`, models.StatusClosed, now, id, models.StatusActive)
		if err != nil {
			return closed, fmt.Errorf("failed to close %s %s: %w", table, id, err)
		}
		if n, _ := res.RowsAffected(); n > 0 {
			closed++
		}
	}
	return closed, nil
}
