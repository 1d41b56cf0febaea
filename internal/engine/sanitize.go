package engine

import (
	"math"
	"sort"
	"time"
)

// Day truncates t to its calendar day at midnight UTC. The calendar fields
// of t are kept as-is, so a local 23:30 entry stays on its local day.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// daysBetween returns the whole number of calendar days from a to b.
func daysBetween(a, b time.Time) int {
	return int(math.Round(Day(b).Sub(Day(a)).Hours() / 24))
}

// cleanWeights returns a sorted copy of weights with one sample per day.
// Non-finite and non-positive weights are dropped as if never logged. When
// a day appears more than once, the later entry in input order wins.
func cleanWeights(weights []WeightSample) []WeightSample {
	byDay := make(map[time.Time]int, len(weights))
	out := make([]WeightSample, 0, len(weights))
	for _, w := range weights {
		if math.IsNaN(w.WeightKg) || math.IsInf(w.WeightKg, 0) || w.WeightKg <= 0 {
			continue
		}
		s := WeightSample{Date: Day(w.Date), WeightKg: w.WeightKg}
		if i, ok := byDay[s.Date]; ok {
			out[i] = s
			continue
		}
		byDay[s.Date] = len(out)
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}

// cleanLogs returns a sorted copy of logs with one sample per day. A sample
// with negative calories is dropped entirely.
func cleanLogs(logs []EnergyLogSample) []EnergyLogSample {
	byDay := make(map[time.Time]int, len(logs))
	out := make([]EnergyLogSample, 0, len(logs))
	for _, l := range logs {
		if l.CaloriesConsumed < 0 || l.CaloriesBurned < 0 {
			continue
		}
		s := EnergyLogSample{Date: Day(l.Date), CaloriesConsumed: l.CaloriesConsumed, CaloriesBurned: l.CaloriesBurned}
		if i, ok := byDay[s.Date]; ok {
			out[i] = s
			continue
		}
		byDay[s.Date] = len(out)
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}

// latestWeight returns the most recent sample of a cleaned, sorted slice.
func latestWeight(weights []WeightSample) (WeightSample, bool) {
	if len(weights) == 0 {
		return WeightSample{}, false
	}
	return weights[len(weights)-1], true
}

// cleanOptional returns nil for absent, non-finite or non-positive values.
func cleanOptional(v *float64) *float64 {
	if v == nil || math.IsNaN(*v) || math.IsInf(*v, 0) || *v <= 0 {
		return nil
	}
	return v
}

func ptr[T any](v T) *T { return &v }
