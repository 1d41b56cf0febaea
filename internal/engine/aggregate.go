package engine

import (
	"sort"
	"time"
)

// WeightChangeByWindow returns, for each window, the signed change in kg
// from the window's anchor sample to the most recent sample.
//
// The anchor is the latest sample dated on or before today minus the window
// length (the earliest sample for an all-time window). A window has no
// result (nil) when no anchor exists or when the anchor is itself the most
// recent sample.
func WeightChangeByWindow(weights []WeightSample, windows []Window, today time.Time) map[WindowLabel]*float64 {
	return weightChangeByWindow(cleanWeights(weights), windows, today)
}

func weightChangeByWindow(weights []WeightSample, windows []Window, today time.Time) map[WindowLabel]*float64 {
	out := make(map[WindowLabel]*float64, len(windows))
	for _, w := range windows {
		out[w.Label] = windowDelta(weights, w, today)
	}
	return out
}

// windowDelta computes one window over cleaned, date-ascending samples.
func windowDelta(weights []WeightSample, w Window, today time.Time) *float64 {
	latest, ok := latestWeight(weights)
	if !ok {
		return nil
	}
	anchor, ok := anchorSample(weights, w, today)
	if !ok || anchor.Date.Equal(latest.Date) {
		return nil
	}
	return ptr(latest.WeightKg - anchor.WeightKg)
}

// anchorSample finds the start-of-window sample by binary search.
func anchorSample(weights []WeightSample, w Window, today time.Time) (WeightSample, bool) {
	if len(weights) == 0 {
		return WeightSample{}, false
	}
	if w.AllTime() {
		return weights[0], true
	}
	cutoff := Day(today).AddDate(0, 0, -w.Days)
	// first index strictly after cutoff; the anchor is the one before it
	i := sort.Search(len(weights), func(i int) bool { return weights[i].Date.After(cutoff) })
	if i == 0 {
		return WeightSample{}, false
	}
	return weights[i-1], true
}
