package engine

import "fmt"

// ValidationError aborts a run before any slot is processed. The caller
// either gets a complete schedule or one of these; never a partial result.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

// IntegrityError marks input defects that cannot be absorbed into warnings,
// such as duplicate staff identifiers.
type IntegrityError struct {
	Reason string
}

func (e *IntegrityError) Error() string {
	return e.Reason
}

// ErrEmptyRoster is returned when no staff with a valid id is supplied.
var ErrEmptyRoster = &ValidationError{Reason: "roster contains no staff with a valid id"}

func errEmptySpecialty(specialty string) error {
	return &ValidationError{Reason: fmt.Sprintf("no staff matches specialty %q", specialty)}
}

func errInvalidRange(startISO, endISO string) error {
	return &ValidationError{Reason: fmt.Sprintf("start date %s is after end date %s", startISO, endISO)}
}

func errEmptyTemplate() error {
	return &ValidationError{Reason: "shift template has no labels"}
}

func errDuplicateStaffID(id int) error {
	return &IntegrityError{Reason: fmt.Sprintf("duplicate staff id %d in roster", id)}
}
