package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/cvoinescu/garda/pkg/db"
)

// GetReservations retrieves all reservation records.
func (s *Store) GetReservations(ctx context.Context) ([]db.ReservationRow, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, staff_id, reserved_on, shift_label, status, submitted_at
		FROM reservation
		ORDER BY submitted_at, id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query reservations: %w", err)
	}
	defer rows.Close()

	var reservations []db.ReservationRow
	for rows.Next() {
		var r db.ReservationRow
		var reservedOn, submittedAt time.Time
		if err := rows.Scan(&r.ID, &r.StaffID, &reservedOn, &r.ShiftLabel, &r.Status, &submittedAt); err != nil {
			return nil, fmt.Errorf("failed to scan reservation row: %w", err)
		}
		r.Date = reservedOn.Format("2006-01-02")
		r.SubmittedAt = submittedAt.UTC().Format(time.RFC3339)
		reservations = append(reservations, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating reservations: %w", err)
	}
	return reservations, nil
}

// ReplaceReservations rewrites the reservation table with the given rows.
func (s *Store) ReplaceReservations(ctx context.Context, reservations []db.ReservationRow) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM reservation`); err != nil {
		return fmt.Errorf("failed to clear reservations: %w", err)
	}
	for _, r := range reservations {
		_, err := tx.Exec(ctx, `
			INSERT INTO reservation (id, staff_id, reserved_on, shift_label, status, submitted_at)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, r.ID, r.StaffID, r.Date, r.ShiftLabel, r.Status, r.SubmittedAt)
		if err != nil {
			return fmt.Errorf("failed to insert reservation %s: %w", r.ID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit reservations: %w", err)
	}
	return nil
}

// GetPriorityLedger retrieves all priority ledger entries.
func (s *Store) GetPriorityLedger(ctx context.Context) ([]db.PriorityRow, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT staff_id, month, score
		FROM priority_ledger
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query priority ledger: %w", err)
	}
	defer rows.Close()

	var entries []db.PriorityRow
	for rows.Next() {
		var r db.PriorityRow
		if err := rows.Scan(&r.StaffID, &r.Month, &r.Score); err != nil {
			return nil, fmt.Errorf("failed to scan priority row: %w", err)
		}
		entries = append(entries, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating priority ledger: %w", err)
	}
	return entries, nil
}

// ReplacePriorityLedger rewrites the priority ledger with the given rows.
func (s *Store) ReplacePriorityLedger(ctx context.Context, entries []db.PriorityRow) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM priority_ledger`); err != nil {
		return fmt.Errorf("failed to clear priority ledger: %w", err)
	}
	for _, e := range entries {
		_, err := tx.Exec(ctx, `
			INSERT INTO priority_ledger (staff_id, month, score)
			VALUES ($1, $2, $3)
		`, e.StaffID, e.Month, e.Score)
		if err != nil {
			return fmt.Errorf("failed to insert priority entry: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit priority ledger: %w", err)
	}
	return nil
}

// ReplaceSchedule rewrites the schedule table with the given rows.
func (s *Store) ReplaceSchedule(ctx context.Context, entries []db.ScheduleRow) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM schedule`); err != nil {
		return fmt.Errorf("failed to clear schedule: %w", err)
	}
	for _, e := range entries {
		_, err := tx.Exec(ctx, `
			INSERT INTO schedule (scheduled_on, shift_label, staff_id)
			VALUES ($1, $2, $3)
		`, e.Date, e.ShiftLabel, e.StaffID)
		if err != nil {
			return fmt.Errorf("failed to insert schedule entry: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit schedule: %w", err)
	}
	return nil
}
