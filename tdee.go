package main

import (
	"math"
	"time"

	"lg/stride-api/internal/engine"
)

// activityMultipliers maps activity level strings to their TDEE multiplier.
// This is the single source of truth for valid activity levels — also used for
// input validation in patchUserSettings.
var activityMultipliers = map[string]float64{
	"sedentary":   1.2,
	"light":       1.375,
	"moderate":    1.55,
	"active":      1.725,
	"very_active": 1.9,
}

// maxAgeYears guards against implausible dates of birth.
const maxAgeYears = 130

// ageOn returns the age in whole years on the given day, or ok=false when the
// date of birth is in the future or more than maxAgeYears ago.
func ageOn(dob, today time.Time) (int, bool) {
	age := today.Year() - dob.Year()
	if today.Before(dob.AddDate(age, 0, 0)) {
		age--
	}
	if age < 0 || age > maxAgeYears {
		return 0, false
	}
	return age, true
}

// settingsToEngineConfig maps a settings row onto the engine's Config.
// Missing or implausible profile fields stay nil so the engine can fall
// back to its per-kg heuristic.
func settingsToEngineConfig(s *calorieLogUserSettings, today time.Time) engine.Config {
	cfg := engine.Config{
		DailyCalorieGoal:          s.CalorieBudget,
		TargetWeightKg:            s.TargetWeightKG,
		GoalType:                  engine.GoalType(s.GoalType),
		MaintenanceToleranceKg:    s.MaintenanceToleranceKG,
		MaintenanceCaloriesManual: s.ManualMaintenanceKcal,
		EstimationSource:          engine.Source(s.MaintenanceSource),
		CountCaloriesBurned:       s.CountCaloriesBurned,
		HeightCm:                  s.HeightCM,
	}
	if s.Sex != nil {
		cfg.Gender = engine.Gender(*s.Sex)
	}
	if s.DateOfBirth != nil && !s.DateOfBirth.IsZero() {
		if age, ok := ageOn(s.DateOfBirth.Time, today); ok {
			cfg.AgeYears = &age
		}
	}
	if s.ActivityLevel != nil {
		if mult, ok := activityMultipliers[*s.ActivityLevel]; ok {
			cfg.ActivityMultiplier = &mult
		}
	}
	return cfg
}

// computeTDEE returns BMR (Mifflin-St Jeor) and TDEE for the given weight.
// Returns ok=false when any required profile field is missing or invalid.
func computeTDEE(s *calorieLogUserSettings, weightKG float64, today time.Time) (bmr, tdee int, ok bool) {
	if s.Sex == nil || weightKG <= 0 {
		return 0, 0, false
	}
	cfg := settingsToEngineConfig(s, today)
	if cfg.HeightCm == nil || cfg.AgeYears == nil || cfg.ActivityMultiplier == nil {
		return 0, 0, false
	}

	bmrF := engine.MifflinStJeorBMR(weightKG, *cfg.HeightCm, *cfg.AgeYears, cfg.Gender)
	return int(math.Round(bmrF)), engine.FormulaMaintenance(weightKG, cfg), true
}

// populateComputedTDEE fills the computed-only fields on s from the user's
// profile and latest weigh-in. No-ops if anything required is missing.
func populateComputedTDEE(s *calorieLogUserSettings, weightKG *float64, today time.Time) {
	if weightKG == nil {
		return
	}
	if bmr, tdee, ok := computeTDEE(s, *weightKG, today); ok {
		s.ComputedBMR = &bmr
		s.ComputedTDEE = &tdee
	}
}
