package engine

// validateRoster checks the staff list and applies the optional specialty
// filter. Rows without a positive id are dropped the way the source system
// dropped blank spreadsheet rows; duplicate ids are a hard error because
// every downstream table keys on them.
func validateRoster(staff []Staff, specialty string) ([]Staff, error) {
	valid := make([]Staff, 0, len(staff))
	seen := make(map[int]struct{}, len(staff))
	for _, s := range staff {
		if s.ID <= 0 {
			continue
		}
		if _, dup := seen[s.ID]; dup {
			return nil, errDuplicateStaffID(s.ID)
		}
		seen[s.ID] = struct{}{}
		valid = append(valid, s)
	}

	if len(valid) == 0 {
		return nil, ErrEmptyRoster
	}

	if specialty != "" {
		filtered := valid[:0:0]
		for _, s := range valid {
			if s.Specialty == specialty {
				filtered = append(filtered, s)
			}
		}
		if len(filtered) == 0 {
			return nil, errEmptySpecialty(specialty)
		}
		valid = filtered
	}

	return valid, nil
}

// cleanAbsences drops malformed or unknown-staff absence rows, collecting a
// warning per dropped row instead of aborting the run.
func cleanAbsences(absences []Absence, roster *RosterIndex) ([]Absence, []Warning) {
	kept := make([]Absence, 0, len(absences))
	var warnings []Warning
	for _, a := range absences {
		if a.Date.IsZero() {
			warnings = append(warnings, Warning{
				Reason: ReasonMalformedRecord,
				Detail: "absence row without a date dropped",
			})
			continue
		}
		if _, ok := roster.Lookup(a.StaffID); !ok {
			warnings = append(warnings, Warning{
				Date:   a.Date,
				Reason: ReasonUnknownStaff,
				Detail: "absence row for staff outside the run's roster dropped",
			})
			continue
		}
		kept = append(kept, a)
	}
	return kept, warnings
}

// cleanReservations splits claims into ones this run can adjudicate and
// malformed or unknown-staff ones. Excluded claims keep their stored status
// untouched; the engine never deletes a reservation.
func cleanReservations(reservations []Reservation, roster *RosterIndex) (kept, excluded []Reservation, warnings []Warning) {
	kept = make([]Reservation, 0, len(reservations))
	for _, r := range reservations {
		if r.Date.IsZero() || r.ShiftLabel == "" {
			warnings = append(warnings, Warning{
				Reason: ReasonMalformedRecord,
				Detail: "reservation row without a date or shift label excluded from resolution",
			})
			excluded = append(excluded, r)
			continue
		}
		if _, ok := roster.Lookup(r.StaffID); !ok {
			warnings = append(warnings, Warning{
				Date:       r.Date,
				ShiftLabel: r.ShiftLabel,
				Reason:     ReasonUnknownStaff,
				Detail:     "reservation for staff outside the run's roster excluded from resolution",
			})
			excluded = append(excluded, r)
			continue
		}
		kept = append(kept, r)
	}
	return kept, excluded, warnings
}
