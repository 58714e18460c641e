// Package sm2 implements the SuperMemo-2 spaced-repetition scheduling
// algorithm. All functions are pure and deterministic.
package sm2

import "math"

const (
	// MinEaseFactor is the floor applied to the ease factor on every branch.
	MinEaseFactor = 1.3
	// PassQuality is the lowest recall quality treated as a successful review.
	PassQuality = 3
)

// Result is the next schedule produced by Schedule.
type Result struct {
	IntervalDays int
	EaseFactor   float64
	Repetitions  int
}

// ClampQuality rounds quality to the nearest integer and clamps it to [0, 5].
func ClampQuality(quality float64) int {
	q := int(math.Round(quality))
	if q < 0 {
		return 0
	}
	if q > 5 {
		return 5
	}
	return q
}

// Schedule converts a recall-quality score and the previous SM-2 state into
// the next interval, ease factor and repetition count.
//
// quality >= 3: repetitions increments; interval is 1 on the first success,
// 6 on the second, round(prevInterval * prevEase) after that, and the ease
// factor moves by EF' = EF + (0.1 - (5-q)*(0.08 + (5-q)*0.02)).
// quality < 3: repetitions and interval reset (0, 1), ease unchanged.
// The ease factor never drops below MinEaseFactor.
func Schedule(quality float64, prevInterval int, prevEase float64, prevRepetitions int) Result {
	q := ClampQuality(quality)
	if prevInterval < 1 {
		prevInterval = 1
	}
	if prevEase < MinEaseFactor {
		prevEase = MinEaseFactor
	}
	if prevRepetitions < 0 {
		prevRepetitions = 0
	}

	if q < PassQuality {
		return Result{
			IntervalDays: 1,
			EaseFactor:   prevEase,
			Repetitions:  0,
		}
	}

	reps := prevRepetitions + 1
	var interval int
	switch reps {
	case 1:
		interval = 1
	case 2:
		interval = 6
	default:
		interval = int(math.Round(float64(prevInterval) * prevEase))
	}
	if interval < 1 {
		interval = 1
	}

	fq := float64(5 - q)
	ease := prevEase + (0.1 - fq*(0.08+fq*0.02))
	if ease < MinEaseFactor {
		ease = MinEaseFactor
	}

	return Result{
		IntervalDays: interval,
		EaseFactor:   ease,
		Repetitions:  reps,
	}
}

var masteryDeltaByQuality = map[int]float64{
	5: 0.15,
	4: 0.10,
	3: 0.05,
	2: -0.02,
	1: -0.05,
	0: -0.08,
}

// QualityToMasteryDelta maps a (clamped) recall quality to the fixed mastery
// adjustment applied alongside rescheduling.
func QualityToMasteryDelta(quality float64) float64 {
	return masteryDeltaByQuality[ClampQuality(quality)]
}
