package engine

import "time"

// RosterIndex holds the staff list plus the running assignment history for
// one run: monthly counters, totals, weekend counts and last-assigned dates.
// It is lookup/increment only; nothing here decides anything.
type RosterIndex struct {
	staff []Staff
	byID  map[int]Staff

	monthly      map[int]map[string]int
	total        map[int]int
	weekend      map[int]int
	lastAssigned map[int]time.Time
}

// NewRosterIndex builds an index over the given staff list.
func NewRosterIndex(staff []Staff) *RosterIndex {
	idx := &RosterIndex{
		staff:        staff,
		byID:         make(map[int]Staff, len(staff)),
		monthly:      make(map[int]map[string]int),
		total:        make(map[int]int),
		weekend:      make(map[int]int),
		lastAssigned: make(map[int]time.Time),
	}
	for _, s := range staff {
		idx.byID[s.ID] = s
	}
	return idx
}

// Staff returns the indexed staff list in roster order.
func (r *RosterIndex) Staff() []Staff {
	return r.staff
}

// Lookup returns the staff record for an id.
func (r *RosterIndex) Lookup(id int) (Staff, bool) {
	s, ok := r.byID[id]
	return s, ok
}

// MonthlyCount returns how many shifts a staff member has been assigned in
// the month containing date.
func (r *RosterIndex) MonthlyCount(staffID int, date time.Time) int {
	return r.monthly[staffID][MonthKey(date)]
}

// TotalCount returns the staff member's total assignments so far this run.
func (r *RosterIndex) TotalCount(staffID int) int {
	return r.total[staffID]
}

// WeekendCount returns the staff member's Saturday/Sunday assignments so far.
func (r *RosterIndex) WeekendCount(staffID int) int {
	return r.weekend[staffID]
}

// LastAssigned returns the most recent date this staff member was assigned,
// and whether they have been assigned at all this run.
func (r *RosterIndex) LastAssigned(staffID int) (time.Time, bool) {
	d, ok := r.lastAssigned[staffID]
	return d, ok
}

// RecordAssignment increments the counters for one assignment. Called
// exactly once per emitted schedule entry, forced assignments included, so
// a forced month can legitimately exceed the cap.
func (r *RosterIndex) RecordAssignment(staffID int, date time.Time) {
	if r.monthly[staffID] == nil {
		r.monthly[staffID] = make(map[string]int)
	}
	r.monthly[staffID][MonthKey(date)]++
	r.total[staffID]++
	if IsWeekend(date) {
		r.weekend[staffID]++
	}
	if last, ok := r.lastAssigned[staffID]; !ok || date.After(last) {
		r.lastAssigned[staffID] = date
	}
}

// IsWeekend reports whether the date is a Saturday or Sunday.
func IsWeekend(date time.Time) bool {
	wd := date.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}
