package engine

import "time"

// IneligibilityReason says why the filter rejected a candidate.
type IneligibilityReason string

const (
	ReasonAbsent     IneligibilityReason = "absent"
	ReasonCapReached IneligibilityReason = "cap_reached"
)

type absenceKey struct {
	staffID int
	date    string
}

// AvailabilityFilter applies the hard constraints: an absence on file, or a
// monthly cap already reached. It has no side effects and never ranks
// candidates; ranking is the scorer's job.
type AvailabilityFilter struct {
	roster   *RosterIndex
	absences map[absenceKey]struct{}
}

// NewAvailabilityFilter builds a filter over the roster and absence set.
// Absence rows referencing staff outside the roster are ignored here; the
// builder reports them separately.
func NewAvailabilityFilter(roster *RosterIndex, absences []Absence) *AvailabilityFilter {
	set := make(map[absenceKey]struct{}, len(absences))
	for _, a := range absences {
		set[absenceKey{a.StaffID, a.Date.Format(DateLayout)}] = struct{}{}
	}
	return &AvailabilityFilter{roster: roster, absences: set}
}

// Check reports whether the staff member may be assigned on the date.
// Returns (false, reason) for ineligible candidates.
func (f *AvailabilityFilter) Check(staffID int, date time.Time) (bool, IneligibilityReason) {
	if _, absent := f.absences[absenceKey{staffID, date.Format(DateLayout)}]; absent {
		return false, ReasonAbsent
	}
	staff, ok := f.roster.Lookup(staffID)
	if !ok {
		return false, ReasonAbsent
	}
	if f.roster.MonthlyCount(staffID, date) >= staff.Cap() {
		return false, ReasonCapReached
	}
	return true, ""
}
