package main

import (
	"time"

	"github.com/jackc/pgx/v5/pgtype"

	"lg/stride-api/internal/engine"
)

// DateOnly wraps time.Time to serialize as "YYYY-MM-DD" in JSON.
type DateOnly struct{ time.Time }

func (d DateOnly) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.Time.Format("2006-01-02") + `"`), nil
}

func (d *DateOnly) UnmarshalJSON(b []byte) error {
	t, err := time.Parse(`"2006-01-02"`, string(b))
	if err != nil {
		return err
	}
	d.Time = t
	return nil
}

// ScanDate implements pgtype.DateScanner so pgx can scan PostgreSQL date
// columns into DateOnly. NULL zeroes the time so *DateOnly fields end up nil.
func (d *DateOnly) ScanDate(v pgtype.Date) error {
	if !v.Valid {
		d.Time = time.Time{}
		return nil
	}
	d.Time = v.Time
	return nil
}

/* ─── Domain structs ─────────────────────────────────────────────────── */

// user maps to the users table. AuthToken and Password are hidden from JSON responses.
type user struct {
	ID        int        `json:"id" db:"id"`
	Username  string     `json:"username" db:"username"`
	Email     string     `json:"email" db:"email"`
	AuthToken string     `json:"-" db:"auth_token"`
	Password  string     `json:"-" db:"password"`
	CreatedAt *time.Time `json:"created_at" db:"created_at"`
}

// calorieLogItem maps to calorie_log_items. Food items add to calories
// consumed for their date; exercise items add to calories burned.
type calorieLogItem struct {
	ID        int        `json:"id" db:"id"`
	UserID    int        `json:"user_id" db:"user_id"`
	Date      DateOnly   `json:"date" db:"date"`
	ItemName  string     `json:"item_name" db:"item_name"`
	Type      string     `json:"type" db:"type"`
	Calories  int        `json:"calories" db:"calories"`
	CreatedAt *time.Time `json:"created_at" db:"created_at"`
	UpdatedAt *time.Time `json:"updated_at" db:"updated_at"`
}

// weightEntry maps to weight_log. One row per user per day.
type weightEntry struct {
	ID        int        `json:"id" db:"id"`
	UserID    int        `json:"user_id" db:"user_id"`
	Date      DateOnly   `json:"date" db:"date"`
	WeightKG  float64    `json:"weight_kg" db:"weight_kg"`
	CreatedAt *time.Time `json:"created_at" db:"created_at"`
}

// energyDayRow is one row of the per-day GROUP BY over calorie_log_items.
type energyDayRow struct {
	Date             DateOnly `db:"date"`
	CaloriesFood     int      `db:"calories_food"`
	CaloriesExercise int      `db:"calories_exercise"`
}

// calorieLogUserSettings maps to calorie_log_user_settings: the daily goal,
// the weight goal and the body profile the maintenance formula needs.
type calorieLogUserSettings struct {
	UserID        int `json:"user_id"        db:"user_id"`
	CalorieBudget int `json:"calorie_budget" db:"calorie_budget"`

	GoalType               string  `json:"goal_type"                db:"goal_type"`
	TargetWeightKG         float64 `json:"target_weight_kg"         db:"target_weight_kg"`
	MaintenanceToleranceKG float64 `json:"maintenance_tolerance_kg" db:"maintenance_tolerance_kg"`
	MaintenanceSource      string  `json:"maintenance_source"       db:"maintenance_source"`
	ManualMaintenanceKcal  int     `json:"manual_maintenance_kcal"  db:"manual_maintenance_kcal"`
	CountCaloriesBurned    bool    `json:"count_calories_burned"    db:"count_calories_burned"`

	// Profile fields — all nullable; zero-knowledge rows still work.
	Sex           *string   `json:"sex"            db:"sex"`
	DateOfBirth   *DateOnly `json:"date_of_birth"  db:"date_of_birth"`
	HeightCM      *float64  `json:"height_cm"      db:"height_cm"`
	ActivityLevel *string   `json:"activity_level" db:"activity_level"`
	Units         string    `json:"units"          db:"units"`
	SetupComplete bool      `json:"setup_complete" db:"setup_complete"`

	// Computed fields — populated server-side from profile; not stored in DB.
	ComputedBMR  *int `json:"computed_bmr,omitempty"  db:"-"`
	ComputedTDEE *int `json:"computed_tdee,omitempty" db:"-"`
}

// maintenanceHistoryRow maps to maintenance_history: one recorded snapshot
// of the maintenance estimate per user per day.
type maintenanceHistoryRow struct {
	UserID          int      `json:"user_id"           db:"user_id"`
	Date            DateOnly `json:"date"              db:"date"`
	EstimatedKcal   *int     `json:"estimated_kcal"    db:"estimated_kcal"`
	CalibratedKcal  *int     `json:"calibrated_kcal"   db:"calibrated_kcal"`
	Source          *string  `json:"source"            db:"source"`
	CurrentWeightKG *float64 `json:"current_weight_kg" db:"current_weight_kg"`
	TrendKGPerWeek  *float64 `json:"trend_kg_per_week" db:"trend_kg_per_week"`
}

// metricsResponse is the response shape for GET /api/metrics.
type metricsResponse struct {
	engine.Metrics
	Cached bool `json:"cached"`
}

// createCalorieLogItemRequest is the request body for POST /api/calorie-log/items.
type createCalorieLogItemRequest struct {
	Date     string `json:"date"`
	ItemName string `json:"item_name"`
	Type     string `json:"type"`
	Calories int    `json:"calories"`
}

// patchUserSettingsRequest is the request body for PATCH /api/calorie-log/user-settings.
// All fields are pointers — only non-nil fields get written to the database.
type patchUserSettingsRequest struct {
	CalorieBudget          *int     `json:"calorie_budget"`
	GoalType               *string  `json:"goal_type"`
	TargetWeightKG         *float64 `json:"target_weight_kg"`
	MaintenanceToleranceKG *float64 `json:"maintenance_tolerance_kg"`
	MaintenanceSource      *string  `json:"maintenance_source"`
	ManualMaintenanceKcal  *int     `json:"manual_maintenance_kcal"`
	CountCaloriesBurned    *bool    `json:"count_calories_burned"`
	Sex                    *string  `json:"sex"`
	DateOfBirth            *string  `json:"date_of_birth"` // YYYY-MM-DD string, stored as date
	HeightCM               *float64 `json:"height_cm"`
	ActivityLevel          *string  `json:"activity_level"`
	Units                  *string  `json:"units"`
	SetupComplete          *bool    `json:"setup_complete"`
}
