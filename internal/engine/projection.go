package engine

import "time"

// projectionInput is everything a rate strategy may look at.
type projectionInput struct {
	cfg         Config
	policy      Policy
	trendDelta  *float64 // aggregator result for the trend window
	intake      intakeStats
	maintenance *int
}

// rateFunc returns a method's daily rate in kg/day. ok is false when the
// inputs cannot support the method, in which case the series is flat.
type rateFunc func(in projectionInput) (rate float64, ok bool)

var rateFuncs = map[Method]rateFunc{
	WeightTrend30Day:     trendRate,
	CurrentEatingHabits:  eatingHabitsRate,
	PerfectGoalAdherence: goalAdherenceRate,
}

// trendRate continues the observed trend-window change.
func trendRate(in projectionInput) (float64, bool) {
	if in.trendDelta == nil {
		return 0, false
	}
	return *in.trendDelta / float64(in.policy.TrendWindowDays), true
}

// eatingHabitsRate assumes the recent average intake continues.
func eatingHabitsRate(in projectionInput) (float64, bool) {
	if in.intake.ValidDays == 0 || in.maintenance == nil {
		return 0, false
	}
	net := in.intake.AvgIntake
	if in.cfg.CountCaloriesBurned {
		net -= in.intake.AvgBurned
	}
	return (net - float64(*in.maintenance)) / in.policy.KcalPerKg, true
}

// goalAdherenceRate assumes the configured calorie goal is hit every day.
func goalAdherenceRate(in projectionInput) (float64, bool) {
	if in.maintenance == nil || in.cfg.DailyCalorieGoal <= 0 {
		return 0, false
	}
	return float64(in.cfg.DailyCalorieGoal-*in.maintenance) / in.policy.KcalPerKg, true
}

// LinearSeries returns horizon+1 points starting at start on day 0 and
// moving by rate kg each day.
func LinearSeries(method Method, start float64, rate float64, today time.Time, horizon int) []ProjectionPoint {
	day0 := Day(today)
	out := make([]ProjectionPoint, horizon+1)
	for d := 0; d <= horizon; d++ {
		out[d] = ProjectionPoint{
			Method:   method,
			Date:     day0.AddDate(0, 0, d),
			WeightKg: start + rate*float64(d),
		}
	}
	return out
}

// project builds every method's series. With no current weight the series
// are empty and every rate is nil.
func project(in projectionInput, current *float64, today time.Time) ([]ProjectionPoint, map[Method]*float64) {
	rates := make(map[Method]*float64, len(Methods))
	if current == nil {
		for _, m := range Methods {
			rates[m] = nil
		}
		return []ProjectionPoint{}, rates
	}

	points := make([]ProjectionPoint, 0, len(Methods)*(in.policy.HorizonDays+1))
	for _, m := range Methods {
		rate, ok := rateFuncs[m](in)
		if ok {
			rates[m] = ptr(rate)
		} else {
			rates[m] = nil
		}
		points = append(points, LinearSeries(m, *current, rate, today, in.policy.HorizonDays)...)
	}
	return points, rates
}
