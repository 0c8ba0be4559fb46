package db

import "context"

// RosterStore is the collaborator contract for loading the input tables and
// persisting the run outputs. Writes use whole-table replace semantics:
// the stored table afterwards contains exactly the rows given, no row-level
// upsert. Both the Postgres and the Google Sheets backend satisfy it.
type RosterStore interface {
	GetStaff(ctx context.Context) ([]StaffRow, error)
	GetAbsences(ctx context.Context) ([]AbsenceRow, error)
	GetPreferences(ctx context.Context) ([]PreferenceRow, error)
	GetReservations(ctx context.Context) ([]ReservationRow, error)
	GetPriorityLedger(ctx context.Context) ([]PriorityRow, error)

	ReplaceSchedule(ctx context.Context, rows []ScheduleRow) error
	ReplaceReservations(ctx context.Context, rows []ReservationRow) error
	ReplacePriorityLedger(ctx context.Context, rows []PriorityRow) error

	InsertAbsence(ctx context.Context, row AbsenceRow) error
}
