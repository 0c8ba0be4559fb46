package db

// Row types mirror the stored tables one to one. Dates travel as ISO
// strings ("2006-01-02"); conversion to engine types happens in the
// services layer, where malformed rows are dropped with warnings instead
// of failing the run.

// StaffRow is one roster member record.
type StaffRow struct {
	ID                int
	Name              string
	Specialty         string
	MaxShiftsPerMonth int
}

// AbsenceRow marks one staff member unavailable on one date.
type AbsenceRow struct {
	StaffID int
	Date    string
}

// PreferenceRow is a soft weekday/shift preference. Weekday is 0-6 with
// Sunday = 0; ShiftLabel may be the wildcard "any".
type PreferenceRow struct {
	StaffID    int
	Weekday    int
	ShiftLabel string
}

// ReservationRow is a pre-claimed slot with its lifecycle status.
type ReservationRow struct {
	ID          string
	StaffID     int
	Date        string
	ShiftLabel  string
	Status      string
	SubmittedAt string // RFC 3339
}

// PriorityRow is one priority ledger entry for a (staff, month) pair.
type PriorityRow struct {
	StaffID int
	Month   string // "2006-01"
	Score   int
}

// ScheduleRow is one generated schedule line.
type ScheduleRow struct {
	Date       string
	ShiftLabel string
	StaffID    int
}
