package sm2

import (
	"math"
	"testing"
)

func TestScheduleFirstThreeSuccesses(t *testing.T) {
	first := Schedule(4, 1, 2.5, 0)
	if first.IntervalDays != 1 || first.Repetitions != 1 {
		t.Fatalf("first success: %+v", first)
	}

	second := Schedule(4, first.IntervalDays, first.EaseFactor, first.Repetitions)
	if second.IntervalDays != 6 || second.Repetitions != 2 {
		t.Fatalf("second success: %+v", second)
	}

	third := Schedule(4, second.IntervalDays, second.EaseFactor, second.Repetitions)
	want := int(math.Round(float64(second.IntervalDays) * second.EaseFactor))
	if third.IntervalDays != want || third.Repetitions != 3 {
		t.Fatalf("third success: got interval %d reps %d, want interval %d reps 3", third.IntervalDays, third.Repetitions, want)
	}
}

func TestScheduleFailureResets(t *testing.T) {
	for q := 0.0; q < 3; q++ {
		got := Schedule(q, 17, 2.1, 4)
		if got.IntervalDays != 1 {
			t.Fatalf("quality %v: interval = %d, want 1", q, got.IntervalDays)
		}
		if got.Repetitions != 0 {
			t.Fatalf("quality %v: repetitions = %d, want 0", q, got.Repetitions)
		}
		if got.EaseFactor != 2.1 {
			t.Fatalf("quality %v: ease changed to %v", q, got.EaseFactor)
		}
	}
}

func TestScheduleEaseFactorFloor(t *testing.T) {
	ease := 1.35
	for i := 0; i < 20; i++ {
		// Quality 3 lowers the ease factor each time; it must never go
		// below the floor.
		r := Schedule(3, 1, ease, i)
		if r.EaseFactor < MinEaseFactor {
			t.Fatalf("iteration %d: ease %v below floor", i, r.EaseFactor)
		}
		ease = r.EaseFactor
	}
	if ease != MinEaseFactor {
		t.Fatalf("repeated quality-3 reviews should settle at the floor, got %v", ease)
	}
}

func TestScheduleEaseUpdateFormula(t *testing.T) {
	r := Schedule(5, 6, 2.5, 2)
	if math.Abs(r.EaseFactor-2.6) > 1e-9 {
		t.Fatalf("quality 5 ease = %v, want 2.6", r.EaseFactor)
	}
	r = Schedule(3, 6, 2.5, 2)
	if math.Abs(r.EaseFactor-2.36) > 1e-9 {
		t.Fatalf("quality 3 ease = %v, want 2.36", r.EaseFactor)
	}
}

func TestScheduleClampsQuality(t *testing.T) {
	high := Schedule(9, 1, 2.5, 0)
	exact := Schedule(5, 1, 2.5, 0)
	if high != exact {
		t.Fatalf("quality 9 should clamp to 5: %+v vs %+v", high, exact)
	}

	low := Schedule(-3, 4, 2.2, 2)
	zero := Schedule(0, 4, 2.2, 2)
	if low != zero {
		t.Fatalf("quality -3 should clamp to 0: %+v vs %+v", low, zero)
	}

	// Round first, then clamp.
	if ClampQuality(4.6) != 5 {
		t.Fatalf("ClampQuality(4.6) = %d", ClampQuality(4.6))
	}
	if ClampQuality(2.4) != 2 {
		t.Fatalf("ClampQuality(2.4) = %d", ClampQuality(2.4))
	}
}

func TestQualityToMasteryDelta(t *testing.T) {
	cases := map[float64]float64{
		5:  0.15,
		4:  0.10,
		3:  0.05,
		2:  -0.02,
		1:  -0.05,
		0:  -0.08,
		7:  0.15,  // clamped to 5
		-2: -0.08, // clamped to 0
	}
	for q, want := range cases {
		if got := QualityToMasteryDelta(q); got != want {
			t.Fatalf("QualityToMasteryDelta(%v) = %v, want %v", q, got, want)
		}
	}
}
