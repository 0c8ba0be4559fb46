package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// steadyRand removes randomness from scoring: Float64 of 0.5 makes the
// jitter term exactly zero, Intn always picks the first option.
type steadyRand struct{}

func (steadyRand) Float64() float64 { return 0.5 }
func (steadyRand) Intn(n int) int   { return 0 }

func TestFairnessScorer_LoadBalanceTerm(t *testing.T) {
	roster := NewRosterIndex([]Staff{{ID: 1}, {ID: 2}})
	scorer := NewFairnessScorer(roster, nil, steadyRand{})

	// Fresh candidate: 100/(0+1) = 100.
	assert.InDelta(t, 100.0, scorer.Score(1, date("2026-03-04"), "Day"), 1e-9)

	roster.RecordAssignment(2, date("2026-03-01"))
	roster.RecordAssignment(2, date("2026-03-01"))

	// Two prior shifts: 100/3, plus the short-rest penalty does not apply
	// because the gap is 3 days.
	assert.InDelta(t, 100.0/3, scorer.Score(2, date("2026-03-04"), "Day"), 1e-9)
}

func TestFairnessScorer_RestTerm(t *testing.T) {
	roster := NewRosterIndex([]Staff{{ID: 1}})
	scorer := NewFairnessScorer(roster, nil, steadyRand{})

	roster.RecordAssignment(1, date("2026-03-10"))
	base := 100.0 / 2

	// gap 1: back-to-back penalty.
	assert.InDelta(t, base-50, scorer.Score(1, date("2026-03-11"), "Day"), 1e-9)
	// gap 2: no penalty, no bonus.
	assert.InDelta(t, base, scorer.Score(1, date("2026-03-12"), "Day"), 1e-9)
	// gap 7: still no bonus.
	assert.InDelta(t, base, scorer.Score(1, date("2026-03-17"), "Day"), 1e-9)
	// gap 8: long-rest bonus.
	assert.InDelta(t, base+20, scorer.Score(1, date("2026-03-18"), "Day"), 1e-9)
}

func TestFairnessScorer_NoRestTermWithoutHistory(t *testing.T) {
	roster := NewRosterIndex([]Staff{{ID: 1}})
	scorer := NewFairnessScorer(roster, nil, steadyRand{})

	// Never assigned: only the load term contributes.
	assert.InDelta(t, 100.0, scorer.Score(1, date("2026-03-04"), "Day"), 1e-9)
}

func TestFairnessScorer_PreferenceTerm(t *testing.T) {
	roster := NewRosterIndex([]Staff{{ID: 1}, {ID: 2}, {ID: 3}})
	scorer := NewFairnessScorer(roster, []Preference{
		{StaffID: 1, Weekday: time.Wednesday, ShiftLabel: "Night"},
		{StaffID: 2, Weekday: time.Wednesday, ShiftLabel: AnyShift},
	}, steadyRand{})

	wednesday := date("2026-03-04")

	assert.InDelta(t, 130.0, scorer.Score(1, wednesday, "Night"), 1e-9)
	assert.InDelta(t, 100.0, scorer.Score(1, wednesday, "Day"), 1e-9, "label mismatch gives no bonus")
	assert.InDelta(t, 130.0, scorer.Score(2, wednesday, "Day"), 1e-9, "wildcard matches every label")
	assert.InDelta(t, 100.0, scorer.Score(3, wednesday, "Night"), 1e-9)
	assert.InDelta(t, 100.0, scorer.Score(1, date("2026-03-05"), "Night"), 1e-9, "weekday mismatch gives no bonus")
}

func TestFairnessScorer_WeekendTerm(t *testing.T) {
	roster := NewRosterIndex([]Staff{{ID: 1}})
	scorer := NewFairnessScorer(roster, nil, steadyRand{})

	roster.RecordAssignment(1, date("2026-02-07")) // Saturday
	roster.RecordAssignment(1, date("2026-02-08")) // Sunday

	base := 100.0 / 3

	// Saturday slot a month later: -10 per weekend shift already held.
	assert.InDelta(t, base-20, scorer.Score(1, date("2026-03-07"), "Day"), 1e-9)
	// Weekday slot: no weekend penalty.
	assert.InDelta(t, base, scorer.Score(1, date("2026-03-09"), "Day"), 1e-9)
}

func TestFairnessScorer_JitterStaysInBounds(t *testing.T) {
	roster := NewRosterIndex([]Staff{{ID: 1}})
	rng := NewRand(7)
	scorer := NewFairnessScorer(roster, nil, rng)

	for i := 0; i < 200; i++ {
		score := scorer.Score(1, date("2026-03-04"), "Day")
		assert.GreaterOrEqual(t, score, 95.0)
		assert.LessOrEqual(t, score, 105.0)
	}
}
