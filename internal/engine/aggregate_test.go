package engine

import (
	"math"
	"testing"
	"time"
)

// baseDay is the fixed "day 0" all engine tests count from.
var baseDay = time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

// day returns baseDay shifted by n calendar days.
func day(n int) time.Time {
	return baseDay.AddDate(0, 0, n)
}

// approxEqual compares floats within tol.
func approxEqual(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

/* ─── Window delta tests ─────────────────────────────────────────────── */

// TestWeightChangeByWindow_AnchorRequired verifies that a 30-day window
// evaluated 10 days after the only earlier sample has no anchor (nil), while
// a 10-day window anchors on that sample and reports -2.0.
func TestWeightChangeByWindow_AnchorRequired(t *testing.T) {
	weights := []WeightSample{
		{Date: day(0), WeightKg: 80.0},
		{Date: day(10), WeightKg: 78.0},
	}
	windows := []Window{{Label: "30d", Days: 30}, {Label: "10d", Days: 10}}

	got := WeightChangeByWindow(weights, windows, day(10))

	if got["30d"] != nil {
		t.Errorf("30d = %v, want nil (no anchor)", *got["30d"])
	}
	if got["10d"] == nil {
		t.Fatal("10d = nil, want -2.0")
	}
	if !approxEqual(*got["10d"], -2.0, 1e-9) {
		t.Errorf("10d = %f, want -2.0", *got["10d"])
	}
}

// TestWeightChangeByWindow_NoSamples verifies every window is nil (not zero)
// when there are no weight samples at all.
func TestWeightChangeByWindow_NoSamples(t *testing.T) {
	got := WeightChangeByWindow(nil, DefaultPolicy().Windows, day(0))
	if len(got) != len(DefaultPolicy().Windows) {
		t.Fatalf("got %d windows, want %d", len(got), len(DefaultPolicy().Windows))
	}
	for label, v := range got {
		if v != nil {
			t.Errorf("%s = %f, want nil", label, *v)
		}
	}
}

// TestWeightChangeByWindow_LatestAnchorBeforeCutoff verifies the anchor is
// the latest sample on or before the cutoff, not the earliest.
func TestWeightChangeByWindow_LatestAnchorBeforeCutoff(t *testing.T) {
	weights := []WeightSample{
		{Date: day(0), WeightKg: 90.0},
		{Date: day(5), WeightKg: 88.0},
		{Date: day(20), WeightKg: 85.0},
	}
	got := WeightChangeByWindow(weights, []Window{{Label: "7d", Days: 7}}, day(14))

	// cutoff = day 7; latest on or before is day 5 (88.0); latest overall is day 20.
	if got["7d"] == nil || !approxEqual(*got["7d"], -3.0, 1e-9) {
		t.Errorf("7d = %v, want -3.0", got["7d"])
	}
}

// TestWeightChangeByWindow_AllTime verifies the all-time window anchors on
// the earliest sample and needs at least two samples.
func TestWeightChangeByWindow_AllTime(t *testing.T) {
	all := []Window{{Label: "all", Days: 0}}

	single := WeightChangeByWindow([]WeightSample{{Date: day(0), WeightKg: 70}}, all, day(0))
	if single["all"] != nil {
		t.Errorf("all with one sample = %f, want nil", *single["all"])
	}

	weights := []WeightSample{
		{Date: day(3), WeightKg: 71.5},
		{Date: day(0), WeightKg: 72.0},
		{Date: day(9), WeightKg: 70.0},
	}
	got := WeightChangeByWindow(weights, all, day(9))
	if got["all"] == nil || !approxEqual(*got["all"], -2.0, 1e-9) {
		t.Errorf("all = %v, want -2.0", got["all"])
	}
}

// TestWeightChangeByWindow_AnchorIsLatest verifies a window whose only
// candidate anchor is also the most recent sample reports nil rather than 0.
func TestWeightChangeByWindow_AnchorIsLatest(t *testing.T) {
	weights := []WeightSample{{Date: day(0), WeightKg: 80}}
	got := WeightChangeByWindow(weights, []Window{{Label: "7d", Days: 7}}, day(40))
	if got["7d"] != nil {
		t.Errorf("7d = %f, want nil", *got["7d"])
	}
}

/* ─── Input cleaning tests ───────────────────────────────────────────── */

// TestCleanWeights verifies sorting, invalid-value filtering, per-day
// de-duplication and that the caller's slice is left untouched.
func TestCleanWeights(t *testing.T) {
	in := []WeightSample{
		{Date: day(2), WeightKg: 79},
		{Date: day(0), WeightKg: math.NaN()},
		{Date: day(1), WeightKg: 80},
		{Date: day(1).Add(20 * time.Hour), WeightKg: 80.4},
		{Date: day(3), WeightKg: -1},
		{Date: day(4), WeightKg: math.Inf(1)},
	}
	orig := append([]WeightSample(nil), in...)

	got := cleanWeights(in)

	if len(got) != 2 {
		t.Fatalf("got %d samples, want 2: %+v", len(got), got)
	}
	if !got[0].Date.Equal(day(1)) || got[0].WeightKg != 80.4 {
		t.Errorf("got[0] = %+v, want day 1 at 80.4 (later duplicate wins)", got[0])
	}
	if !got[1].Date.Equal(day(2)) {
		t.Errorf("got[1] = %+v, want day 2", got[1])
	}
	for i := range in {
		if !in[i].Date.Equal(orig[i].Date) {
			t.Fatalf("input reordered at %d", i)
		}
	}
}

// TestCleanLogs verifies samples with negative calories are dropped whole.
func TestCleanLogs(t *testing.T) {
	got := cleanLogs([]EnergyLogSample{
		{Date: day(1), CaloriesConsumed: 2000, CaloriesBurned: 300},
		{Date: day(0), CaloriesConsumed: -5},
		{Date: day(2), CaloriesConsumed: 1800, CaloriesBurned: -100},
	})
	if len(got) != 1 || !got[0].Date.Equal(day(1)) {
		t.Errorf("cleanLogs = %+v, want only day 1", got)
	}
}
