package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"

	"lg/stride-api/internal/engine"
)

/* ─── Loaders ────────────────────────────────────────────────────────── */

// loadWeightSamples returns every weigh-in for the user, oldest first.
func (h *Handler) loadWeightSamples(ctx context.Context, userID int) ([]engine.WeightSample, error) {
	entries, err := queryMany[weightEntry](h.db, ctx,
		"SELECT * FROM weight_log WHERE user_id = @userID ORDER BY date ASC",
		pgx.NamedArgs{"userID": userID})
	if err != nil {
		return nil, fmt.Errorf("load weights: %w", err)
	}
	samples := make([]engine.WeightSample, len(entries))
	for i, e := range entries {
		samples[i] = engine.WeightSample{Date: e.Date.Time, WeightKg: e.WeightKG}
	}
	return samples, nil
}

// loadEnergyLog sums calorie_log_items per day from since onward. Exercise
// items are calories burned; every other type is calories consumed.
func (h *Handler) loadEnergyLog(ctx context.Context, userID int, since time.Time) ([]engine.EnergyLogSample, error) {
	rows, err := queryMany[energyDayRow](h.db, ctx,
		`SELECT date,
			SUM(CASE WHEN type != 'exercise' THEN calories ELSE 0 END) AS calories_food,
			SUM(CASE WHEN type  = 'exercise' THEN calories ELSE 0 END) AS calories_exercise
		 FROM calorie_log_items
		 WHERE user_id = @userID AND date >= @since
		 GROUP BY date
		 ORDER BY date ASC`,
		pgx.NamedArgs{"userID": userID, "since": since.Format("2006-01-02")})
	if err != nil {
		return nil, fmt.Errorf("load energy log: %w", err)
	}
	logs := make([]engine.EnergyLogSample, len(rows))
	for i, r := range rows {
		logs[i] = engine.EnergyLogSample{
			Date:             r.Date.Time,
			CaloriesConsumed: r.CaloriesFood,
			CaloriesBurned:   r.CaloriesExercise,
		}
	}
	return logs, nil
}

// loadSettings returns the user's settings row. The wrapped error still
// matches pgx.ErrNoRows when the row is missing.
func (h *Handler) loadSettings(ctx context.Context, userID int) (calorieLogUserSettings, error) {
	s, err := queryOne[calorieLogUserSettings](h.db, ctx,
		"SELECT * FROM calorie_log_user_settings WHERE user_id = @userID",
		pgx.NamedArgs{"userID": userID})
	if err != nil {
		return s, fmt.Errorf("load settings: %w", err)
	}
	return s, nil
}

// computeForUser loads everything the engine needs and builds a fresh snapshot.
func (h *Handler) computeForUser(ctx context.Context, userID int, today time.Time) (engine.Metrics, error) {
	s, err := h.loadSettings(ctx, userID)
	if err != nil {
		return engine.Metrics{}, err
	}
	weights, err := h.loadWeightSamples(ctx, userID)
	if err != nil {
		return engine.Metrics{}, err
	}
	since := today.AddDate(0, 0, -h.engine.Policy().CalibrationDays)
	logs, err := h.loadEnergyLog(ctx, userID, since)
	if err != nil {
		return engine.Metrics{}, err
	}

	cfg := settingsToEngineConfig(&s, today)
	return h.engine.Compute(weights, logs, cfg, today), nil
}

// recordMaintenanceHistory upserts today's maintenance figures for the user.
func (h *Handler) recordMaintenanceHistory(ctx context.Context, userID int, m engine.Metrics) error {
	var source *string
	if m.MaintenanceSource != "" {
		s := string(m.MaintenanceSource)
		source = &s
	}
	var trendPerWeek *float64
	if r := m.Rates[engine.WeightTrend30Day]; r != nil {
		w := *r * 7
		trendPerWeek = &w
	}

	_, err := h.db.Exec(ctx,
		`INSERT INTO maintenance_history
			(user_id, date, estimated_kcal, calibrated_kcal, source, current_weight_kg, trend_kg_per_week)
		 VALUES (@userID, @date, @estimated, @calibrated, @source, @current, @trend)
		 ON CONFLICT (user_id, date) DO UPDATE SET
			estimated_kcal = EXCLUDED.estimated_kcal,
			calibrated_kcal = EXCLUDED.calibrated_kcal,
			source = EXCLUDED.source,
			current_weight_kg = EXCLUDED.current_weight_kg,
			trend_kg_per_week = EXCLUDED.trend_kg_per_week`,
		pgx.NamedArgs{
			"userID": userID, "date": m.ComputedFor.Format("2006-01-02"),
			"estimated": m.EstimatedMaintenanceKcal, "calibrated": m.CalibratedMaintenanceKcal,
			"source": source, "current": m.CurrentWeightKg, "trend": trendPerWeek,
		})
	if err != nil {
		return fmt.Errorf("record maintenance history: %w", err)
	}
	return nil
}

// refreshUser recomputes, caches and records one user's snapshot.
func (h *Handler) refreshUser(ctx context.Context, userID int, today time.Time) (engine.Metrics, error) {
	gen := h.cache.generation(userID)
	m, err := h.computeForUser(ctx, userID, today)
	if err != nil {
		return m, err
	}
	h.storeSnapshot(ctx, userID, gen, m)
	return m, nil
}

// storeSnapshot caches m and records its history row. A snapshot computed
// before a write invalidated the user is dropped and not recorded; the
// caller still returns it.
func (h *Handler) storeSnapshot(ctx context.Context, userID int, gen uint64, m engine.Metrics) bool {
	if !h.cache.put(userID, gen, m) {
		return false
	}
	if err := h.recordHistory(ctx, userID, m); err != nil {
		log.Printf("[storeSnapshot] user %d: %v", userID, err)
	}
	return true
}

/* ─── Handlers ───────────────────────────────────────────────────────── */

// getMetrics returns the user's metrics snapshot for today.
// GET /api/metrics. Serves the cached snapshot when it was computed today;
// otherwise recomputes from the database.
func (h *Handler) getMetrics(c *gin.Context) {
	userID := c.GetInt("user_id")
	today := engine.Day(h.now())

	if m, ok := h.cache.get(userID); ok && m.ComputedFor.Equal(today) {
		c.JSON(http.StatusOK, metricsResponse{Metrics: m, Cached: true})
		return
	}

	m, err := h.refreshUser(c, userID, today)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			apiError(c, http.StatusNotFound, "settings not found")
		} else {
			log.Printf("[getMetrics] user %d: %v", userID, err)
			apiError(c, http.StatusInternalServerError, "failed to compute metrics")
		}
		return
	}

	c.JSON(http.StatusOK, metricsResponse{Metrics: m})
}

// getMaintenanceHistory returns recorded maintenance figures within [start, end].
// GET /api/metrics/maintenance-history?start=YYYY-MM-DD&end=YYYY-MM-DD.
func (h *Handler) getMaintenanceHistory(c *gin.Context) {
	userID := c.GetInt("user_id")
	start, end, ok := parseDateRange(c)
	if !ok {
		return
	}

	rows, err := queryMany[maintenanceHistoryRow](h.db, c,
		`SELECT user_id, date, estimated_kcal, calibrated_kcal, source, current_weight_kg, trend_kg_per_week
		 FROM maintenance_history
		 WHERE user_id = @userID AND date >= @start AND date <= @end
		 ORDER BY date ASC`,
		pgx.NamedArgs{"userID": userID, "start": start, "end": end})
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to fetch maintenance history")
		return
	}
	if rows == nil {
		rows = []maintenanceHistoryRow{}
	}

	c.JSON(http.StatusOK, rows)
}
