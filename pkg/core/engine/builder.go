package engine

import (
	"time"

	"github.com/google/uuid"
)

// Input is one complete snapshot for one run. The engine holds no state
// across runs; everything it needs arrives here.
type Input struct {
	Staff        []Staff
	Absences     []Absence
	Preferences  []Preference
	Reservations []Reservation
	Ledger       PriorityLedger

	// Start and End bound the run, inclusive.
	Start time.Time
	End   time.Time

	// Labels is the ordered shift template for each date.
	Labels []string

	// LabelOverrides substitutes the label set on specific dates, keyed by
	// ISO date. Used for template overrides such as a reduced weekend
	// template.
	LabelOverrides map[string][]string

	// Specialty restricts the eligible pool to one specialty tag when set.
	Specialty string

	// Policy controls whether approved reservations are checked against
	// absence and cap. Defaults to ReservationOverride.
	Policy ReservationPolicy

	// Rand supplies jitter and tie-break randomness. Nil gets a fresh
	// time-seeded source; tests inject a fixed seed for reproducibility.
	Rand Rand
}

// Result is the complete outcome of one run. Entries follow generation
// order: date-major, then template label order within each date.
type Result struct {
	RunID        string
	Entries      []ScheduleEntry
	Warnings     []Warning
	Reservations []Reservation
	Ledger       PriorityLedger
}

// Generate runs the full allocation: validation, reservation resolution,
// then generic filling with forced fallback. The only error conditions are
// the validation ones; every other anomaly degrades to a warning so each
// slot is always covered.
func Generate(input Input) (*Result, error) {
	staff, err := validateRoster(input.Staff, input.Specialty)
	if err != nil {
		return nil, err
	}
	if input.Start.After(input.End) {
		return nil, errInvalidRange(input.Start.Format(DateLayout), input.End.Format(DateLayout))
	}
	if len(input.Labels) == 0 {
		return nil, errEmptyTemplate()
	}

	rng := input.Rand
	if rng == nil {
		rng = NewRand(time.Now().UnixNano())
	}

	roster := NewRosterIndex(staff)

	result := &Result{RunID: uuid.NewString()}

	absences, warnings := cleanAbsences(input.Absences, roster)
	result.Warnings = append(result.Warnings, warnings...)

	claims, excluded, warnings := cleanReservations(input.Reservations, roster)
	result.Warnings = append(result.Warnings, warnings...)

	filter := NewAvailabilityFilter(roster, absences)
	scorer := NewFairnessScorer(roster, input.Preferences, rng)
	cycler := NewCycler(staff)

	dates := expandDates(input.Start, input.End)
	slots := make(map[SlotKey]struct{})
	for _, date := range dates {
		for _, label := range labelsFor(input, date) {
			slots[SlotKey{Date: date.Format(DateLayout), Label: label}] = struct{}{}
		}
	}

	var check ClaimChecker
	if input.Policy == ReservationEnforce {
		check = filter.Check
	}
	resolution := ResolveReservations(claims, input.Ledger, slots, check, rng)
	if input.Policy == ReservationEnforce {
		demoteExcessApprovals(&resolution, roster)
	}
	result.Warnings = append(result.Warnings, resolution.Warnings...)
	// Excluded claims ride along unchanged so a whole-table rewrite of the
	// reservation table never loses them.
	result.Reservations = append(resolution.Reservations, excluded...)
	result.Ledger = resolution.Ledger

	for _, date := range dates {
		warned := false
		for _, label := range labelsFor(input, date) {
			key := SlotKey{Date: date.Format(DateLayout), Label: label}

			// Pre-claimed slots skip filtering and scoring entirely. The
			// counters still move so the fairness scorer sees the load.
			if staffID, reserved := resolution.Approved[key]; reserved {
				roster.RecordAssignment(staffID, date)
				result.Entries = append(result.Entries, ScheduleEntry{
					Date: date, ShiftLabel: label, StaffID: staffID,
				})
				continue
			}

			staffID, forced := pickCandidate(cycler, filter, scorer, date, label)
			if forced && !warned {
				result.Warnings = append(result.Warnings, Warning{
					Date:       date,
					ShiftLabel: label,
					Reason:     ReasonConstraintExhausted,
					Detail:     "no eligible staff; assigning past hard constraints",
				})
				warned = true
			}
			roster.RecordAssignment(staffID, date)
			result.Entries = append(result.Entries, ScheduleEntry{
				Date: date, ShiftLabel: label, StaffID: staffID,
			})
		}
	}

	return result, nil
}

// pickCandidate fills one slot. Candidates are enumerated in rotation
// order, hard-filtered, then ranked by fairness score; the pointer advances
// one past the winner. If nobody survives the filter the staff member at
// the pointer is forced in and the pointer advances by one.
func pickCandidate(
	cycler *Cycler,
	filter *AvailabilityFilter,
	scorer *FairnessScorer,
	date time.Time,
	label string,
) (staffID int, forced bool) {
	bestOffset := -1
	var bestScore float64

	for offset, id := range cycler.Rotation() {
		if ok, _ := filter.Check(id, date); !ok {
			continue
		}
		score := scorer.Score(id, date, label)
		// Strict comparison: equal scores fall to the earlier candidate in
		// rotation order, so the pointer is the tie-break.
		if bestOffset == -1 || score > bestScore {
			bestOffset = offset
			bestScore = score
		}
	}

	if bestOffset == -1 {
		id := cycler.Current()
		cycler.Advance(1)
		return id, true
	}

	rotation := cycler.Rotation()
	id := rotation[bestOffset]
	cycler.Advance(bestOffset + 1)
	return id, false
}

// labelsFor returns the shift labels for a date, honoring overrides.
func labelsFor(input Input, date time.Time) []string {
	if labels, ok := input.LabelOverrides[date.Format(DateLayout)]; ok {
		return labels
	}
	return input.Labels
}

// expandDates lists every date in [start, end] inclusive.
func expandDates(start, end time.Time) []time.Time {
	var dates []time.Time
	for d := truncateDate(start); !d.After(truncateDate(end)); d = d.AddDate(0, 0, 1) {
		dates = append(dates, d)
	}
	return dates
}

func truncateDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
