package services

import (
	"fmt"
	"sort"
	"time"

	"github.com/cvoinescu/garda/pkg/core/engine"
	"github.com/cvoinescu/garda/pkg/db"
)

// Conversions between stored rows and engine types. Stored tables are edited
// by hand, so malformed rows are expected: they turn into warnings, never
// errors, and rows the engine cannot represent are passed through writes
// untouched.

func staffFromRows(rows []db.StaffRow, defaultCap int) []engine.Staff {
	staff := make([]engine.Staff, 0, len(rows))
	for _, row := range rows {
		cap := row.MaxShiftsPerMonth
		if cap <= 0 {
			cap = defaultCap
		}
		staff = append(staff, engine.Staff{
			ID:                row.ID,
			Name:              row.Name,
			Specialty:         row.Specialty,
			MaxShiftsPerMonth: cap,
		})
	}
	return staff
}

func absencesFromRows(rows []db.AbsenceRow) ([]engine.Absence, []engine.Warning) {
	absences := make([]engine.Absence, 0, len(rows))
	var warnings []engine.Warning
	for _, row := range rows {
		date, err := time.Parse(engine.DateLayout, row.Date)
		if err != nil {
			warnings = append(warnings, engine.Warning{
				Reason: engine.ReasonMalformedRecord,
				Detail: fmt.Sprintf("absence row for staff %d has unparseable date %q", row.StaffID, row.Date),
			})
			continue
		}
		absences = append(absences, engine.Absence{StaffID: row.StaffID, Date: date})
	}
	return absences, warnings
}

func preferencesFromRows(rows []db.PreferenceRow) ([]engine.Preference, []engine.Warning) {
	preferences := make([]engine.Preference, 0, len(rows))
	var warnings []engine.Warning
	for _, row := range rows {
		if row.Weekday < 0 || row.Weekday > 6 {
			warnings = append(warnings, engine.Warning{
				Reason: engine.ReasonMalformedRecord,
				Detail: fmt.Sprintf("preference row for staff %d has weekday %d outside 0-6", row.StaffID, row.Weekday),
			})
			continue
		}
		label := row.ShiftLabel
		if label == "" {
			label = engine.AnyShift
		}
		preferences = append(preferences, engine.Preference{
			StaffID:    row.StaffID,
			Weekday:    time.Weekday(row.Weekday),
			ShiftLabel: label,
		})
	}
	return preferences, warnings
}

// reservationsFromRows converts claim rows. Rows with an unparseable date
// cannot be adjudicated and come back in passthrough so a whole-table
// rewrite keeps them in storage.
func reservationsFromRows(rows []db.ReservationRow) ([]engine.Reservation, []db.ReservationRow, []engine.Warning) {
	reservations := make([]engine.Reservation, 0, len(rows))
	var passthrough []db.ReservationRow
	var warnings []engine.Warning
	for _, row := range rows {
		date, err := time.Parse(engine.DateLayout, row.Date)
		if err != nil {
			warnings = append(warnings, engine.Warning{
				ShiftLabel: row.ShiftLabel,
				Reason:     engine.ReasonMalformedRecord,
				Detail:     fmt.Sprintf("reservation %s has unparseable date %q", row.ID, row.Date),
			})
			passthrough = append(passthrough, row)
			continue
		}

		status := engine.ReservationStatus(row.Status)
		if status == "" {
			status = engine.ReservationPending
		}

		// A missing or malformed submission timestamp falls back to the zero
		// time; within a contested slot the claim id then orders it.
		submitted, _ := time.Parse(time.RFC3339, row.SubmittedAt)

		reservations = append(reservations, engine.Reservation{
			ID:          row.ID,
			StaffID:     row.StaffID,
			Date:        date,
			ShiftLabel:  row.ShiftLabel,
			Status:      status,
			SubmittedAt: submitted,
		})
	}
	return reservations, passthrough, warnings
}

func ledgerFromRows(rows []db.PriorityRow) engine.PriorityLedger {
	ledger := make(engine.PriorityLedger)
	for _, row := range rows {
		if ledger[row.Month] == nil {
			ledger[row.Month] = make(map[int]int)
		}
		ledger[row.Month][row.StaffID] = row.Score
	}
	return ledger
}

func scheduleToRows(entries []engine.ScheduleEntry) []db.ScheduleRow {
	rows := make([]db.ScheduleRow, 0, len(entries))
	for _, entry := range entries {
		rows = append(rows, db.ScheduleRow{
			Date:       entry.Date.Format(engine.DateLayout),
			ShiftLabel: entry.ShiftLabel,
			StaffID:    entry.StaffID,
		})
	}
	return rows
}

func reservationsToRows(reservations []engine.Reservation) []db.ReservationRow {
	rows := make([]db.ReservationRow, 0, len(reservations))
	for _, r := range reservations {
		submitted := ""
		if !r.SubmittedAt.IsZero() {
			submitted = r.SubmittedAt.Format(time.RFC3339)
		}
		rows = append(rows, db.ReservationRow{
			ID:          r.ID,
			StaffID:     r.StaffID,
			Date:        r.Date.Format(engine.DateLayout),
			ShiftLabel:  r.ShiftLabel,
			Status:      string(r.Status),
			SubmittedAt: submitted,
		})
	}
	return rows
}

// ledgerToRows flattens the ledger sorted by month then staff id, so the
// rewritten table is stable across runs.
func ledgerToRows(ledger engine.PriorityLedger) []db.PriorityRow {
	months := make([]string, 0, len(ledger))
	for month := range ledger {
		months = append(months, month)
	}
	sort.Strings(months)

	var rows []db.PriorityRow
	for _, month := range months {
		ids := make([]int, 0, len(ledger[month]))
		for id := range ledger[month] {
			ids = append(ids, id)
		}
		sort.Ints(ids)
		for _, id := range ids {
			rows = append(rows, db.PriorityRow{StaffID: id, Month: month, Score: ledger[month][id]})
		}
	}
	return rows
}
