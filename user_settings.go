package main

import (
	"errors"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"

	"lg/stride-api/internal/engine"
)

// Settings bounds. Values outside are rejected as typos.
const (
	maxCalorieBudget   = 20000
	maxToleranceKG     = 50.0
	minHeightCM        = 50.0
	maxHeightCM        = 280.0
	maxManualMaintKcal = 20000
)

// finite reports whether v is a usable number.
func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// validateSettingsPatch checks every provided field and returns a message
// describing the first invalid one, or "" when the patch is acceptable.
func validateSettingsPatch(body *patchUserSettingsRequest) string {
	if body.CalorieBudget != nil && (*body.CalorieBudget < 0 || *body.CalorieBudget > maxCalorieBudget) {
		return "calorie_budget must be between 0 and 20000"
	}
	if body.GoalType != nil && !engine.GoalType(*body.GoalType).Valid() {
		return "goal_type must be one of: cutting, bulking, maintenance"
	}
	if body.TargetWeightKG != nil && !validWeightKG(*body.TargetWeightKG) {
		return "target_weight_kg must be between 0 and 700"
	}
	if t := body.MaintenanceToleranceKG; t != nil && (!finite(*t) || *t < 0 || *t > maxToleranceKG) {
		return "maintenance_tolerance_kg must be between 0 and 50"
	}
	if body.MaintenanceSource != nil && !engine.Source(*body.MaintenanceSource).Valid() {
		return "maintenance_source must be one of: formula, app_estimate, manual"
	}
	if m := body.ManualMaintenanceKcal; m != nil && (*m < 0 || *m > maxManualMaintKcal) {
		return "manual_maintenance_kcal must be between 0 and 20000"
	}
	if body.Sex != nil && engine.Gender(*body.Sex) != engine.Male && engine.Gender(*body.Sex) != engine.Female {
		return "sex must be one of: male, female"
	}
	if body.DateOfBirth != nil {
		if _, err := time.Parse("2006-01-02", *body.DateOfBirth); err != nil {
			return "invalid date_of_birth, expected YYYY-MM-DD"
		}
	}
	if hcm := body.HeightCM; hcm != nil && (!finite(*hcm) || *hcm < minHeightCM || *hcm > maxHeightCM) {
		return "height_cm must be between 50 and 280"
	}
	// An unknown level silently breaks the formula source, so reject it here.
	if body.ActivityLevel != nil {
		if _, ok := activityMultipliers[*body.ActivityLevel]; !ok {
			return "activity_level must be one of: sedentary, light, moderate, active, very_active"
		}
	}
	if body.Units != nil && *body.Units != "metric" && *body.Units != "imperial" {
		return "units must be one of: metric, imperial"
	}
	return ""
}

// latestWeightKG returns the user's most recent weigh-in, or nil when none.
func (h *Handler) latestWeightKG(c *gin.Context, userID int) *float64 {
	var kg float64
	err := h.db.QueryRow(c,
		"SELECT weight_kg FROM weight_log WHERE user_id = @userID ORDER BY date DESC LIMIT 1",
		pgx.NamedArgs{"userID": userID}).Scan(&kg)
	if err != nil {
		return nil
	}
	return &kg
}

// getUserSettings returns the calorie log settings for the authenticated user.
// Computed BMR/TDEE are populated when the profile and a weigh-in are present.
// GET /api/calorie-log/user-settings.
func (h *Handler) getUserSettings(c *gin.Context) {
	userID := c.GetInt("user_id")

	s, err := h.loadSettings(c, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			apiError(c, http.StatusNotFound, "settings not found")
		} else {
			apiError(c, http.StatusInternalServerError, "failed to fetch settings")
		}
		return
	}

	populateComputedTDEE(&s, h.latestWeightKG(c, userID), h.now())

	c.JSON(http.StatusOK, s)
}

// patchUserSettings updates only the provided calorie log settings fields.
// PATCH /api/calorie-log/user-settings. Uses pointer fields in the request body
// to distinguish "not provided" from zero — only non-nil fields get updated.
func (h *Handler) patchUserSettings(c *gin.Context) {
	userID := c.GetInt("user_id")

	var body patchUserSettingsRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if msg := validateSettingsPatch(&body); msg != "" {
		apiError(c, http.StatusBadRequest, msg)
		return
	}

	// Build SET clause dynamically — only update fields the client actually sent
	setClauses := []string{}
	args := pgx.NamedArgs{"userID": userID}
	set := func(column, arg string, value any) {
		setClauses = append(setClauses, column+" = @"+arg)
		args[arg] = value
	}

	if body.CalorieBudget != nil {
		set("calorie_budget", "calorieBudget", *body.CalorieBudget)
	}
	if body.GoalType != nil {
		set("goal_type", "goalType", *body.GoalType)
	}
	if body.TargetWeightKG != nil {
		set("target_weight_kg", "targetWeightKG", *body.TargetWeightKG)
	}
	if body.MaintenanceToleranceKG != nil {
		set("maintenance_tolerance_kg", "maintenanceToleranceKG", *body.MaintenanceToleranceKG)
	}
	if body.MaintenanceSource != nil {
		set("maintenance_source", "maintenanceSource", *body.MaintenanceSource)
	}
	if body.ManualMaintenanceKcal != nil {
		set("manual_maintenance_kcal", "manualMaintenanceKcal", *body.ManualMaintenanceKcal)
	}
	if body.CountCaloriesBurned != nil {
		set("count_calories_burned", "countCaloriesBurned", *body.CountCaloriesBurned)
	}
	if body.Sex != nil {
		set("sex", "sex", *body.Sex)
	}
	if body.DateOfBirth != nil {
		set("date_of_birth", "dateOfBirth", *body.DateOfBirth)
	}
	if body.HeightCM != nil {
		set("height_cm", "heightCM", *body.HeightCM)
	}
	if body.ActivityLevel != nil {
		set("activity_level", "activityLevel", *body.ActivityLevel)
	}
	if body.Units != nil {
		set("units", "units", *body.Units)
	}
	if body.SetupComplete != nil {
		set("setup_complete", "setupComplete", *body.SetupComplete)
	}

	if len(setClauses) == 0 {
		apiError(c, http.StatusBadRequest, "no fields to update")
		return
	}

	query := "UPDATE calorie_log_user_settings SET " +
		strings.Join(setClauses, ", ") +
		" WHERE user_id = @userID RETURNING *"

	s, err := queryOne[calorieLogUserSettings](h.db, c, query, args)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			apiError(c, http.StatusNotFound, "settings not found")
		} else {
			apiError(c, http.StatusInternalServerError, "failed to update settings")
		}
		return
	}

	h.cache.invalidate(userID)
	populateComputedTDEE(&s, h.latestWeightKG(c, userID), h.now())

	c.JSON(http.StatusOK, s)
}
