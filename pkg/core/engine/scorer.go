package engine

import "time"

// Scoring terms. The score is additive: load balance dominates, rest and
// weekend terms correct for clustering, preferences nudge, jitter breaks
// lockstep among equally loaded candidates.
const (
	loadBalanceNumerator = 100.0

	minRestDays      = 2
	shortRestPenalty = 50.0
	longRestDays     = 7
	longRestBonus    = 20.0

	preferenceBonus = 30.0

	weekendPenaltyPerShift = 10.0

	jitterSpan = 10.0 // uniform in [-5, +5]
)

type preferenceKey struct {
	staffID int
	weekday time.Weekday
	label   string
}

// FairnessScorer produces a desirability score for an eligible candidate on
// a slot. Higher is better. Candidates must pass the availability filter
// before they reach the scorer; an ineligible candidate is never scored.
type FairnessScorer struct {
	roster *RosterIndex
	prefs  map[preferenceKey]struct{}
	rng    Rand
}

// NewFairnessScorer builds a scorer over the roster history, the preference
// set, and a randomness source for jitter.
func NewFairnessScorer(roster *RosterIndex, prefs []Preference, rng Rand) *FairnessScorer {
	set := make(map[preferenceKey]struct{}, len(prefs))
	for _, p := range prefs {
		set[preferenceKey{p.StaffID, p.Weekday, p.ShiftLabel}] = struct{}{}
	}
	return &FairnessScorer{roster: roster, prefs: set, rng: rng}
}

// Score computes the fairness score for one candidate on one slot.
func (s *FairnessScorer) Score(staffID int, date time.Time, label string) float64 {
	score := loadBalanceNumerator / float64(s.roster.TotalCount(staffID)+1)

	// Rest term: undefined until the candidate has a prior assignment.
	if last, ok := s.roster.LastAssigned(staffID); ok {
		gap := daysBetween(last, date)
		if gap < minRestDays {
			score -= shortRestPenalty
		} else if gap > longRestDays {
			score += longRestBonus
		}
	}

	if s.prefers(staffID, date.Weekday(), label) {
		score += preferenceBonus
	}

	if IsWeekend(date) {
		score -= weekendPenaltyPerShift * float64(s.roster.WeekendCount(staffID))
	}

	score += s.rng.Float64()*jitterSpan - jitterSpan/2

	return score
}

func (s *FairnessScorer) prefers(staffID int, weekday time.Weekday, label string) bool {
	if _, ok := s.prefs[preferenceKey{staffID, weekday, label}]; ok {
		return true
	}
	_, ok := s.prefs[preferenceKey{staffID, weekday, AnyShift}]
	return ok
}

// daysBetween returns whole calendar days from a to b, ignoring clock time.
func daysBetween(a, b time.Time) int {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	ua := time.Date(ay, am, ad, 0, 0, 0, 0, time.UTC)
	ub := time.Date(by, bm, bd, 0, 0, 0, 0, time.UTC)
	return int(ub.Sub(ua).Hours() / 24)
}
