package engine

import (
	"fmt"
	"math"
)

// GoalReached reports whether weightKg satisfies the goal in cfg. Cutting
// is reached at or below the target, Bulking at or above it, Maintenance
// within MaintenanceToleranceKg of it (inclusive).
func GoalReached(weightKg float64, cfg Config) bool {
	switch cfg.GoalType {
	case Cutting:
		return weightKg <= cfg.TargetWeightKg
	case Bulking:
		return weightKg >= cfg.TargetWeightKg
	case Maintenance:
		return math.Abs(weightKg-cfg.TargetWeightKg) <= cfg.MaintenanceToleranceKg
	}
	return false
}

// progress is the GoalProgressEvaluator result.
type progress struct {
	Reached       bool
	DaysRemaining *int
	Logic         string
	Warning       WarningKind
	Message       string
}

// goalMisconfigured reports settings that make the reached test meaningless.
func goalMisconfigured(cfg Config) string {
	if !cfg.GoalType.Valid() {
		return fmt.Sprintf("Unknown goal type %q. Choose cutting, bulking or maintenance.", cfg.GoalType)
	}
	t := cfg.TargetWeightKg
	if math.IsNaN(t) || math.IsInf(t, 0) || t <= 0 {
		return "Set a target weight to see how long it will take to reach it."
	}
	if cfg.GoalType == Maintenance {
		tol := cfg.MaintenanceToleranceKg
		if math.IsNaN(tol) || math.IsInf(tol, 0) || tol < 0 {
			return "Maintenance tolerance must be zero or more."
		}
	}
	return ""
}

// movingAway reports whether a non-zero rate increases the distance to the
// target for the configured goal.
func movingAway(current, rate float64, cfg Config) bool {
	switch cfg.GoalType {
	case Cutting:
		return rate > 0
	case Bulking:
		return rate < 0
	default:
		return (current-cfg.TargetWeightKg)*rate > 0
	}
}

// trendDescription names the primary method and its weekly rate.
func trendDescription(rate float64) string {
	weekly := rate * 7
	if weekly == 0 {
		weekly = 0 // normalize -0
	}
	return fmt.Sprintf("Based on your current weight trend of %.2f kg/week", weekly)
}

// evaluate runs the goal-reached test and, when the goal is not yet met,
// scans the primary series for the first day that meets it. A target on the
// already-met side of the current weight (above it while Cutting, below it
// while Bulking) reports Reached with zero days, not WarningMisconfiguredGoal.
func evaluate(current *float64, cfg Config, primary []ProjectionPoint, rate *float64, p Policy) progress {
	if current == nil {
		return progress{
			Warning: WarningInsufficientWeightHistory,
			Message: "Log your weight to start tracking progress toward your goal.",
		}
	}
	if msg := goalMisconfigured(cfg); msg != "" {
		return progress{Warning: WarningMisconfiguredGoal, Message: msg}
	}
	if GoalReached(*current, cfg) {
		return progress{
			Reached:       true,
			DaysRemaining: ptr(0),
			Logic:         reachedDescription(*current, cfg),
		}
	}
	if rate == nil {
		return progress{
			Logic:   fmt.Sprintf("A weight trend needs weigh-ins spanning at least %d days", p.TrendWindowDays),
			Warning: WarningInsufficientWeightHistory,
			Message: fmt.Sprintf("Not enough weight history to compute a %d-day trend yet. Keep logging your weight.", p.TrendWindowDays),
		}
	}

	out := progress{Logic: trendDescription(*rate)}
	for d, pt := range primary {
		if GoalReached(pt.WeightKg, cfg) {
			out.DaysRemaining = ptr(d)
			return out
		}
	}

	switch {
	case *rate == 0:
		out.Warning = WarningFlatTrend
		out.Message = "Your weight has been flat, so at this rate you will not reach your goal."
	case movingAway(*current, *rate, cfg):
		out.Warning = WarningAdverseTrend
		out.Message = fmt.Sprintf("Your weight trend is moving away from your goal of %.1f kg.", cfg.TargetWeightKg)
	default:
		out.Warning = WarningBeyondHorizon
		out.Message = fmt.Sprintf("At your current trend you will not reach your goal within %d days.", p.HorizonDays)
	}
	return out
}

func reachedDescription(current float64, cfg Config) string {
	if cfg.GoalType == Maintenance {
		return fmt.Sprintf("Goal reached: %.1f kg is within %.1f kg of your %.1f kg target", current, cfg.MaintenanceToleranceKg, cfg.TargetWeightKg)
	}
	return fmt.Sprintf("Goal reached: %.1f kg against your %.1f kg target", current, cfg.TargetWeightKg)
}
