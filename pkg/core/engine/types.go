package engine

import (
	"math/rand"
	"time"
)

// DateLayout is the ISO date format used for all date keys in the engine.
const DateLayout = "2006-01-02"

// AnyShift is the wildcard shift label in a preference record.
const AnyShift = "any"

// DefaultMonthlyCap is applied when a staff record carries no usable cap.
// Effectively unlimited, matching the behaviour users expect from a blank cell.
const DefaultMonthlyCap = 9999

// Staff is a single roster member. The engine treats staff records as
// read-only input for the duration of a run.
type Staff struct {
	ID                int
	Name              string
	Specialty         string
	MaxShiftsPerMonth int
}

// Cap returns the effective monthly shift cap for this staff member.
func (s Staff) Cap() int {
	if s.MaxShiftsPerMonth <= 0 {
		return DefaultMonthlyCap
	}
	return s.MaxShiftsPerMonth
}

// Absence marks a staff member as unavailable on a date. Set semantics:
// duplicates are harmless.
type Absence struct {
	StaffID int
	Date    time.Time
}

// Preference is a soft signal that a staff member likes working a
// particular weekday and shift label. It never excludes a candidate.
type Preference struct {
	StaffID    int
	Weekday    time.Weekday
	ShiftLabel string // concrete label or AnyShift
}

// ReservationStatus is the lifecycle state of a pre-claimed slot.
type ReservationStatus string

const (
	ReservationPending  ReservationStatus = "pending"
	ReservationApproved ReservationStatus = "approved"
	ReservationRejected ReservationStatus = "rejected"
)

// Reservation is a staff-submitted claim on a specific slot, filed before
// generation. The resolver is the only part of the engine that changes its
// status; reservations are never deleted here.
type Reservation struct {
	ID          string
	StaffID     int
	Date        time.Time
	ShiftLabel  string
	Status      ReservationStatus
	SubmittedAt time.Time
}

// ScheduleEntry is one line of the generated schedule: exactly one staff
// member covering one slot.
type ScheduleEntry struct {
	Date       time.Time
	ShiftLabel string
	StaffID    int
}

// Warning reason codes attached to a run instead of aborting it.
const (
	ReasonConstraintExhausted = "constraint_exhausted"
	ReasonMalformedRecord     = "malformed_record"
	ReasonUnknownStaff        = "unknown_staff"
	ReasonReservationBlocked  = "reservation_blocked"
)

// Warning records an anomaly the engine absorbed rather than raised.
type Warning struct {
	Date       time.Time
	ShiftLabel string
	Reason     string
	Detail     string
}

// SlotKey identifies one (date, shift label) pair requiring an assignment.
type SlotKey struct {
	Date  string // ISO date
	Label string
}

// MonthKey returns the "2006-01" key for a date, used by monthly counters
// and the priority ledger.
func MonthKey(date time.Time) string {
	return date.Format("2006-01")
}

// NextMonthKey returns the month key following the given date's month.
// Computed from the first of the month so a Jan 31 claim escalates into
// February, not March.
func NextMonthKey(date time.Time) string {
	first := time.Date(date.Year(), date.Month(), 1, 0, 0, 0, 0, time.UTC)
	return MonthKey(first.AddDate(0, 1, 0))
}

// PriorityLedger holds per-month, per-staff reservation priority scores.
// Scores only ever go up: losing a contested slot escalates the loser's
// score for the following month.
type PriorityLedger map[string]map[int]int

// Score returns the ledger score for a staff member in a month, 0 if absent.
func (l PriorityLedger) Score(monthKey string, staffID int) int {
	return l[monthKey][staffID]
}

// Clone returns a deep copy. The resolver works on copies so the caller's
// tables are never aliased mid-run.
func (l PriorityLedger) Clone() PriorityLedger {
	out := make(PriorityLedger, len(l))
	for month, scores := range l {
		copied := make(map[int]int, len(scores))
		for id, score := range scores {
			copied[id] = score
		}
		out[month] = copied
	}
	return out
}

// Escalate increments a staff member's score for a month by one.
func (l PriorityLedger) Escalate(monthKey string, staffID int) {
	if l[monthKey] == nil {
		l[monthKey] = make(map[int]int)
	}
	l[monthKey][staffID]++
}

// Rand is the source of randomness for jitter and reservation tie-breaks.
// Injected so tests can fix the seed or script the sequence; *rand.Rand
// satisfies it.
type Rand interface {
	Float64() float64
	Intn(n int) int
}

// NewRand returns a seedable Rand backed by math/rand.
func NewRand(seed int64) Rand {
	return rand.New(rand.NewSource(seed))
}
