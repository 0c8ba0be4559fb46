package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/cvoinescu/garda/pkg/db"
)

// GetStaff retrieves all staff records.
func (s *Store) GetStaff(ctx context.Context) ([]db.StaffRow, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, name, specialty, max_shifts_per_month
		FROM staff
		ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query staff: %w", err)
	}
	defer rows.Close()

	var staff []db.StaffRow
	for rows.Next() {
		var r db.StaffRow
		if err := rows.Scan(&r.ID, &r.Name, &r.Specialty, &r.MaxShiftsPerMonth); err != nil {
			return nil, fmt.Errorf("failed to scan staff row: %w", err)
		}
		staff = append(staff, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating staff: %w", err)
	}
	return staff, nil
}

// GetAbsences retrieves all absence records.
func (s *Store) GetAbsences(ctx context.Context) ([]db.AbsenceRow, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT staff_id, absent_on
		FROM absence
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query absences: %w", err)
	}
	defer rows.Close()

	var absences []db.AbsenceRow
	for rows.Next() {
		var r db.AbsenceRow
		var absentOn time.Time
		if err := rows.Scan(&r.StaffID, &absentOn); err != nil {
			return nil, fmt.Errorf("failed to scan absence row: %w", err)
		}
		r.Date = absentOn.Format("2006-01-02")
		absences = append(absences, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating absences: %w", err)
	}
	return absences, nil
}

// InsertAbsence adds one absence record.
func (s *Store) InsertAbsence(ctx context.Context, row db.AbsenceRow) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO absence (staff_id, absent_on)
		VALUES ($1, $2)
		ON CONFLICT DO NOTHING
	`, row.StaffID, row.Date)
	if err != nil {
		return fmt.Errorf("failed to insert absence: %w", err)
	}
	return nil
}

// GetPreferences retrieves all preference records.
func (s *Store) GetPreferences(ctx context.Context) ([]db.PreferenceRow, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT staff_id, weekday, shift_label
		FROM preference
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query preferences: %w", err)
	}
	defer rows.Close()

	var prefs []db.PreferenceRow
	for rows.Next() {
		var r db.PreferenceRow
		if err := rows.Scan(&r.StaffID, &r.Weekday, &r.ShiftLabel); err != nil {
			return nil, fmt.Errorf("failed to scan preference row: %w", err)
		}
		prefs = append(prefs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating preferences: %w", err)
	}
	return prefs, nil
}
