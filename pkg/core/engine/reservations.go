package engine

import (
	"fmt"
	"sort"
	"time"
)

// ReservationPolicy controls whether claims are checked against the hard
// constraints before conflict resolution.
type ReservationPolicy string

const (
	// ReservationOverride honors a claim regardless of absence or cap: an
	// explicit request beats the soft limits. Matches the source system.
	ReservationOverride ReservationPolicy = "override"

	// ReservationEnforce rejects claims that fail the availability filter
	// before any conflict resolution, with a warning. Enforcement
	// rejections are not lost ties and do not escalate priority.
	ReservationEnforce ReservationPolicy = "enforce"
)

// ClaimChecker is the availability check applied under ReservationEnforce.
// Nil means no check (override policy).
type ClaimChecker func(staffID int, date time.Time) (bool, IneligibilityReason)

// ResolutionOutcome is the result of adjudicating pending claims. All
// tables are fresh copies; the inputs are never mutated.
type ResolutionOutcome struct {
	// Approved maps each won slot to its staff id.
	Approved map[SlotKey]int

	// Reservations is the updated claim list, same order as the input.
	Reservations []Reservation

	// Ledger is the updated priority ledger.
	Ledger PriorityLedger

	Warnings []Warning
}

// ResolveReservations adjudicates pending claims slot by slot.
//
//   - no claims on a slot: nothing happens, the builder fills it generically
//   - one claim: approved unconditionally
//   - several claims: the highest current-month ledger score wins, ties
//     broken uniformly at random; losers are rejected and their next-month
//     score is escalated by one
//
// slots limits resolution to the slots this run will actually fill; nil
// adjudicates every claimed slot. Claims left out stay pending untouched.
func ResolveReservations(
	reservations []Reservation,
	ledger PriorityLedger,
	slots map[SlotKey]struct{},
	check ClaimChecker,
	rng Rand,
) ResolutionOutcome {
	outcome := ResolutionOutcome{
		Approved:     make(map[SlotKey]int),
		Reservations: make([]Reservation, len(reservations)),
		Ledger:       ledger.Clone(),
	}
	copy(outcome.Reservations, reservations)

	// Group pending claims per slot, keeping submission order within a
	// group so behaviour is reproducible under a fixed seed.
	groups := make(map[SlotKey][]int)
	for i, r := range outcome.Reservations {
		if r.Status != ReservationPending {
			continue
		}
		key := SlotKey{Date: r.Date.Format(DateLayout), Label: r.ShiftLabel}
		if slots != nil {
			if _, wanted := slots[key]; !wanted {
				continue
			}
		}
		groups[key] = append(groups[key], i)
	}

	keys := make([]SlotKey, 0, len(groups))
	for key := range groups {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Date != keys[j].Date {
			return keys[i].Date < keys[j].Date
		}
		return keys[i].Label < keys[j].Label
	})

	for _, key := range keys {
		indices := groups[key]
		sort.SliceStable(indices, func(a, b int) bool {
			ra, rb := outcome.Reservations[indices[a]], outcome.Reservations[indices[b]]
			if !ra.SubmittedAt.Equal(rb.SubmittedAt) {
				return ra.SubmittedAt.Before(rb.SubmittedAt)
			}
			return ra.ID < rb.ID
		})

		if check != nil {
			indices = rejectBlockedClaims(&outcome, indices, check)
			if len(indices) == 0 {
				continue
			}
		}

		if len(indices) == 1 {
			idx := indices[0]
			outcome.Reservations[idx].Status = ReservationApproved
			outcome.Approved[key] = outcome.Reservations[idx].StaffID
			continue
		}

		winner := pickWinner(&outcome, indices, rng)
		for _, idx := range indices {
			r := &outcome.Reservations[idx]
			if idx == winner {
				r.Status = ReservationApproved
				outcome.Approved[key] = r.StaffID
				continue
			}
			r.Status = ReservationRejected
			outcome.Ledger.Escalate(NextMonthKey(r.Date), r.StaffID)
		}
	}

	return outcome
}

// rejectBlockedClaims applies the availability check under the enforce
// policy, returning the surviving claim indices.
func rejectBlockedClaims(outcome *ResolutionOutcome, indices []int, check ClaimChecker) []int {
	survivors := indices[:0:0]
	for _, idx := range indices {
		r := &outcome.Reservations[idx]
		if ok, reason := check(r.StaffID, r.Date); !ok {
			r.Status = ReservationRejected
			outcome.Warnings = append(outcome.Warnings, Warning{
				Date:       r.Date,
				ShiftLabel: r.ShiftLabel,
				Reason:     ReasonReservationBlocked,
				Detail:     fmt.Sprintf("reservation by staff %d rejected: %s", r.StaffID, reason),
			})
			continue
		}
		survivors = append(survivors, idx)
	}
	return survivors
}

// demoteExcessApprovals re-checks the approved set against monthly caps in
// slot order. The enforce-policy check sees each claim against pre-run
// counters, so several approvals in one month can collectively pass a cap;
// the overflow is rejected here, without escalation, and the freed slots
// fall back to generic filling.
func demoteExcessApprovals(outcome *ResolutionOutcome, roster *RosterIndex) {
	keys := make([]SlotKey, 0, len(outcome.Approved))
	for key := range outcome.Approved {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Date != keys[j].Date {
			return keys[i].Date < keys[j].Date
		}
		return keys[i].Label < keys[j].Label
	})

	taken := make(map[int]map[string]int)
	for _, key := range keys {
		staffID := outcome.Approved[key]
		staff, ok := roster.Lookup(staffID)
		if !ok {
			continue
		}
		date, err := time.Parse(DateLayout, key.Date)
		if err != nil {
			continue
		}
		month := MonthKey(date)
		if taken[staffID] == nil {
			taken[staffID] = make(map[string]int)
		}
		if roster.MonthlyCount(staffID, date)+taken[staffID][month] < staff.Cap() {
			taken[staffID][month]++
			continue
		}

		delete(outcome.Approved, key)
		for i := range outcome.Reservations {
			r := &outcome.Reservations[i]
			if r.Status == ReservationApproved && r.StaffID == staffID &&
				r.ShiftLabel == key.Label && r.Date.Format(DateLayout) == key.Date {
				r.Status = ReservationRejected
				break
			}
		}
		outcome.Warnings = append(outcome.Warnings, Warning{
			Date:       date,
			ShiftLabel: key.Label,
			Reason:     ReasonReservationBlocked,
			Detail:     fmt.Sprintf("reservation by staff %d rejected: %s", staffID, ReasonCapReached),
		})
	}
}

// pickWinner selects the claim with the highest current-month priority,
// breaking ties uniformly at random. best is seeded from the first claim so
// hand-edited ledgers with negative scores still produce a winner.
func pickWinner(outcome *ResolutionOutcome, indices []int, rng Rand) int {
	var best int
	var tied []int
	for i, idx := range indices {
		r := outcome.Reservations[idx]
		score := outcome.Ledger.Score(MonthKey(r.Date), r.StaffID)
		switch {
		case i == 0 || score > best:
			best = score
			tied = append(tied[:0], idx)
		case score == best:
			tied = append(tied, idx)
		}
	}
	return tied[rng.Intn(len(tied))]
}
