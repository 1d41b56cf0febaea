package engine

import "fmt"

// Window is one look-back window. Days == 0 means all-time.
type Window struct {
	Label WindowLabel `yaml:"label"`
	Days  int         `yaml:"days"`
}

// AllTime reports whether w spans the whole history.
func (w Window) AllTime() bool { return w.Days == 0 }

// Policy holds the tunable constants of the engine. The zero value is not
// usable; start from DefaultPolicy and override what the config file sets.
type Policy struct {
	KcalPerKg float64 `yaml:"kcal_per_kg"`
	// HorizonDays is the last projected day index; series hold HorizonDays+1 points.
	HorizonDays int `yaml:"horizon_days"`
	// CalibrationDays is the intake-averaging window for calibration and
	// for the CurrentEatingHabits projection.
	CalibrationDays int `yaml:"calibration_days"`
	// MinBaselineDays is the minimum span between the two weigh-ins used
	// for calibration.
	MinBaselineDays  int `yaml:"min_baseline_days"`
	MinWeightSamples int `yaml:"min_weight_samples"`
	MinValidLogDays  int `yaml:"min_valid_log_days"`
	// TrendWindowDays is the aggregator window that drives WeightTrend30Day.
	TrendWindowDays int      `yaml:"trend_window_days"`
	Windows         []Window `yaml:"windows"`
	// FallbackMaintenanceKcal is a policy default used only when no source
	// can produce a maintenance figure. 0 disables it.
	FallbackMaintenanceKcal int `yaml:"fallback_maintenance_kcal"`
}

// DefaultPolicy returns the reference constants.
func DefaultPolicy() Policy {
	return Policy{
		KcalPerKg:        KcalPerKg,
		HorizonDays:      60,
		CalibrationDays:  30,
		MinBaselineDays:  30,
		MinWeightSamples: 2,
		MinValidLogDays:  1,
		TrendWindowDays:  30,
		Windows: []Window{
			{Label: "7d", Days: 7},
			{Label: "30d", Days: 30},
			{Label: "90d", Days: 90},
			{Label: "all", Days: 0},
		},
	}
}

// Validate rejects policies that would make the engine divide by zero or
// look at an empty window.
func (p Policy) Validate() error {
	if p.KcalPerKg <= 0 {
		return fmt.Errorf("kcal_per_kg must be positive")
	}
	if p.HorizonDays <= 0 {
		return fmt.Errorf("horizon_days must be positive")
	}
	if p.CalibrationDays <= 0 {
		return fmt.Errorf("calibration_days must be positive")
	}
	if p.MinBaselineDays <= 0 {
		return fmt.Errorf("min_baseline_days must be positive")
	}
	if p.MinWeightSamples < 2 {
		return fmt.Errorf("min_weight_samples must be at least 2")
	}
	if p.MinValidLogDays < 1 {
		return fmt.Errorf("min_valid_log_days must be at least 1")
	}
	if p.TrendWindowDays <= 0 {
		return fmt.Errorf("trend_window_days must be positive")
	}
	if p.FallbackMaintenanceKcal < 0 {
		return fmt.Errorf("fallback_maintenance_kcal must not be negative")
	}
	seen := make(map[WindowLabel]bool, len(p.Windows))
	for _, w := range p.Windows {
		if w.Label == "" {
			return fmt.Errorf("window label is required")
		}
		if w.Days < 0 {
			return fmt.Errorf("window %s: days must not be negative", w.Label)
		}
		if seen[w.Label] {
			return fmt.Errorf("duplicate window label %s", w.Label)
		}
		seen[w.Label] = true
	}
	return nil
}

// trendWindow returns the configured window matching TrendWindowDays, or an
// ad-hoc one when the window list does not include it.
func (p Policy) trendWindow() Window {
	for _, w := range p.Windows {
		if w.Days == p.TrendWindowDays {
			return w
		}
	}
	return Window{Label: WindowLabel(fmt.Sprintf("%dd", p.TrendWindowDays)), Days: p.TrendWindowDays}
}
