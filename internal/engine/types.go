// Package engine calibrates maintenance calories from logged weight and
// intake, projects body weight forward under three behavioral assumptions,
// and evaluates progress toward a weight goal.
//
// Everything here is a pure function of its inputs: no I/O, no shared state.
// Callers pass metric-unit snapshots and receive a new Metrics value.
package engine

import "time"

// KcalPerKg is the energy-balance constant: 1 kg of body mass ≈ 7700 kcal.
const KcalPerKg = 7700.0

// WeightSample is one weigh-in. Date is a calendar day; time of day is ignored.
type WeightSample struct {
	Date     time.Time `json:"date"`
	WeightKg float64   `json:"weight_kg"`
}

// EnergyLogSample is one day of logged energy. CaloriesConsumed == 0 means
// "not logged", not "ate nothing".
type EnergyLogSample struct {
	Date             time.Time `json:"date"`
	CaloriesConsumed int       `json:"calories_consumed"`
	CaloriesBurned   int       `json:"calories_burned"`
}

/* ─── Enums ──────────────────────────────────────────────────────────── */

type GoalType string

const (
	Cutting     GoalType = "cutting"
	Bulking     GoalType = "bulking"
	Maintenance GoalType = "maintenance"
)

// Valid reports whether g is one of the known goal types.
func (g GoalType) Valid() bool {
	switch g {
	case Cutting, Bulking, Maintenance:
		return true
	}
	return false
}

// Source selects where the maintenance figure used by projections comes from.
type Source string

const (
	SourceFormula     Source = "formula"
	SourceAppEstimate Source = "app_estimate"
	SourceManual      Source = "manual"

	// SourcePolicyDefault marks Policy.FallbackMaintenanceKcal. Users cannot select it.
	SourcePolicyDefault Source = "policy_default"
)

func (s Source) Valid() bool {
	switch s {
	case SourceFormula, SourceAppEstimate, SourceManual:
		return true
	}
	return false
}

type Gender string

const (
	Male   Gender = "male"
	Female Gender = "female"
)

// Method is one projection hypothesis. Methods are independent; their
// results are never blended.
type Method string

const (
	WeightTrend30Day     Method = "weight_trend_30d"
	CurrentEatingHabits  Method = "current_eating_habits"
	PerfectGoalAdherence Method = "perfect_goal_adherence"
)

// Methods lists every projection method in output order.
var Methods = []Method{WeightTrend30Day, CurrentEatingHabits, PerfectGoalAdherence}

/* ─── Config ─────────────────────────────────────────────────────────── */

// Config is the user-facing configuration the engine reads. Pointer fields
// are optional profile values; nil means the user never entered them.
type Config struct {
	DailyCalorieGoal          int      `json:"daily_calorie_goal"`
	TargetWeightKg            float64  `json:"target_weight_kg"`
	GoalType                  GoalType `json:"goal_type"`
	MaintenanceToleranceKg    float64  `json:"maintenance_tolerance_kg"`
	MaintenanceCaloriesManual int      `json:"maintenance_calories_manual"`
	EstimationSource          Source   `json:"estimation_source"`
	CountCaloriesBurned       bool     `json:"count_calories_burned"`
	Gender                    Gender   `json:"gender"`
	HeightCm                  *float64 `json:"height_cm"`
	AgeYears                  *int     `json:"age_years"`
	ActivityMultiplier        *float64 `json:"activity_multiplier"`
}

/* ─── Output ─────────────────────────────────────────────────────────── */

// WindowLabel names a look-back window, e.g. "7d" or "all".
type WindowLabel string

// ProjectionPoint is one projected day for one method.
type ProjectionPoint struct {
	Method   Method    `json:"method"`
	Date     time.Time `json:"date"`
	WeightKg float64   `json:"weight_kg"`
}

// WarningKind classifies why DaysRemaining could not be resolved.
type WarningKind string

const (
	WarningNone                       WarningKind = ""
	WarningInsufficientWeightHistory  WarningKind = "insufficient_weight_history"
	WarningInsufficientCalorieHistory WarningKind = "insufficient_calorie_history"
	WarningFlatTrend                  WarningKind = "flat_trend"
	WarningAdverseTrend               WarningKind = "adverse_trend"
	WarningBeyondHorizon              WarningKind = "beyond_horizon"
	WarningMisconfiguredGoal          WarningKind = "misconfigured_goal"
)

// Metrics is the snapshot produced by one Compute call. It is never mutated
// after Compute returns; a recompute builds a new value.
//
// Pointer fields are nil when the value cannot be determined from the data.
type Metrics struct {
	ComputedFor time.Time `json:"computed_for"`

	CurrentWeightKg *float64 `json:"current_weight_kg"`

	// EstimatedMaintenanceKcal follows the configured source, after the
	// Formula fallback. It is the figure the projections use;
	// MaintenanceSource names the source that produced it.
	EstimatedMaintenanceKcal *int   `json:"estimated_maintenance_kcal"`
	MaintenanceSource        Source `json:"maintenance_source,omitempty"`

	// CalibratedMaintenanceKcal is the AppEstimate figure whatever the
	// configured source. CalibrationWarning says why it is nil.
	CalibratedMaintenanceKcal *int        `json:"calibrated_maintenance_kcal"`
	CalibrationWarning        WarningKind `json:"calibration_warning,omitempty"`

	WeightChangeByWindow map[WindowLabel]*float64 `json:"weight_change_by_window"`
	Rates                map[Method]*float64      `json:"rates_kg_per_day"`
	Projections          []ProjectionPoint        `json:"projections"`

	GoalReached            bool        `json:"goal_reached"`
	DaysRemaining          *int        `json:"days_remaining"`
	LogicDescription       string      `json:"logic_description"`
	Warning                WarningKind `json:"warning,omitempty"`
	ProgressWarningMessage string      `json:"progress_warning_message"`
}

// Series returns the projection points for one method, in date order.
func (m Metrics) Series(method Method) []ProjectionPoint {
	var out []ProjectionPoint
	for _, p := range m.Projections {
		if p.Method == method {
			out = append(out, p)
		}
	}
	return out
}
