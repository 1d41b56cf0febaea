package engine

import (
	"math"
	"time"
)

/* ─── Formula source ─────────────────────────────────────────────────── */

// MifflinStJeorBMR returns basal metabolic rate in kcal/day. Any gender
// other than Male uses the female constant.
func MifflinStJeorBMR(weightKg, heightCm float64, ageYears int, g Gender) float64 {
	bmr := 10*weightKg + 6.25*heightCm - 5*float64(ageYears)
	if g == Male {
		return bmr + 5
	}
	return bmr - 161
}

// FormulaMaintenance estimates maintenance calories from the body profile.
// With height, age and activity multiplier present it is BMR × activity;
// otherwise it falls back to a per-kg heuristic (32 male, 29 female).
func FormulaMaintenance(weightKg float64, cfg Config) int {
	height := cleanOptional(cfg.HeightCm)
	activity := cleanOptional(cfg.ActivityMultiplier)
	if height != nil && activity != nil && cfg.AgeYears != nil && *cfg.AgeYears > 0 {
		bmr := MifflinStJeorBMR(weightKg, *height, *cfg.AgeYears, cfg.Gender)
		return int(math.Round(bmr * *activity))
	}
	if cfg.Gender == Male {
		return int(math.Round(weightKg * 32))
	}
	return int(math.Round(weightKg * 29))
}

/* ─── Intake statistics ──────────────────────────────────────────────── */

// intakeStats summarizes the valid-intake days of the calibration window.
type intakeStats struct {
	ValidDays int
	AvgIntake float64
	AvgBurned float64
}

// recentIntake averages the days in [today-days+1, today] whose consumed
// calories are positive. Burned calories are averaged over the same days.
func recentIntake(logs []EnergyLogSample, today time.Time, days int) intakeStats {
	end := Day(today)
	start := end.AddDate(0, 0, -(days - 1))
	var st intakeStats
	var consumed, burned int
	for _, l := range logs {
		if l.Date.Before(start) || l.Date.After(end) || l.CaloriesConsumed <= 0 {
			continue
		}
		st.ValidDays++
		consumed += l.CaloriesConsumed
		burned += l.CaloriesBurned
	}
	if st.ValidDays > 0 {
		st.AvgIntake = float64(consumed) / float64(st.ValidDays)
		st.AvgBurned = float64(burned) / float64(st.ValidDays)
	}
	return st
}

/* ─── AppEstimate source ─────────────────────────────────────────────── */

// calibration is the outcome of one calibration attempt. Kcal is nil when
// the data was insufficient; Reason says which input was missing.
type calibration struct {
	Kcal             *int
	DailyWeightDelta float64
	Intake           intakeStats
	Reason           WarningKind
}

// calibrate derives maintenance from observed weight change and average
// intake: the intake that would have produced zero change.
//
// The weight baseline runs from the latest sample on or before
// today-MinBaselineDays to the most recent sample.
func calibrate(weights []WeightSample, logs []EnergyLogSample, today time.Time, p Policy) calibration {
	c := calibration{Intake: recentIntake(logs, today, p.CalibrationDays)}

	latest, ok := latestWeight(weights)
	if !ok || len(weights) < p.MinWeightSamples {
		c.Reason = WarningInsufficientWeightHistory
		return c
	}
	anchor, ok := anchorSample(weights, Window{Days: p.MinBaselineDays}, today)
	if !ok {
		c.Reason = WarningInsufficientWeightHistory
		return c
	}
	elapsed := daysBetween(anchor.Date, latest.Date)
	if elapsed < p.MinBaselineDays {
		c.Reason = WarningInsufficientWeightHistory
		return c
	}
	if c.Intake.ValidDays < p.MinValidLogDays {
		c.Reason = WarningInsufficientCalorieHistory
		return c
	}

	c.DailyWeightDelta = (latest.WeightKg - anchor.WeightKg) / float64(elapsed)
	implied := c.DailyWeightDelta * p.KcalPerKg
	c.Kcal = ptr(int(math.Round(c.Intake.AvgIntake - implied)))
	return c
}

// CalibratedMaintenance runs the AppEstimate source on raw inputs. It
// returns nil when there is not enough weight or intake history.
func CalibratedMaintenance(weights []WeightSample, logs []EnergyLogSample, today time.Time, p Policy) *int {
	return calibrate(cleanWeights(weights), cleanLogs(logs), today, p).Kcal
}

/* ─── Source resolution ──────────────────────────────────────────────── */

// resolveMaintenance picks the maintenance figure for projections from the
// configured source, falling back to Formula and finally to the policy
// default. current is nil when there are no weight samples.
func resolveMaintenance(cfg Config, current *float64, calibrated *int, p Policy) (*int, Source) {
	switch cfg.EstimationSource {
	case SourceManual:
		if cfg.MaintenanceCaloriesManual > 0 {
			return ptr(cfg.MaintenanceCaloriesManual), SourceManual
		}
	case SourceAppEstimate:
		if calibrated != nil {
			return calibrated, SourceAppEstimate
		}
	}
	if current != nil {
		return ptr(FormulaMaintenance(*current, cfg)), SourceFormula
	}
	if p.FallbackMaintenanceKcal > 0 {
		return ptr(p.FallbackMaintenanceKcal), SourcePolicyDefault
	}
	return nil, ""
}
