package main

import (
	"errors"
	"math"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
)

// maxWeightKG bounds accepted weigh-ins. Anything above is a typo.
const maxWeightKG = 700.0

// validWeightKG rejects non-positive, non-finite and implausible weights.
func validWeightKG(kg float64) bool {
	return kg > 0 && kg <= maxWeightKG && !math.IsNaN(kg) && !math.IsInf(kg, 0)
}

// parseDateRange reads and validates the required start/end query params.
// On failure it writes the 400 response and returns ok=false.
func parseDateRange(c *gin.Context) (start, end string, ok bool) {
	start = c.Query("start")
	end = c.Query("end")

	if start == "" || end == "" {
		apiError(c, http.StatusBadRequest, "start and end query params are required")
		return "", "", false
	}
	if _, err := time.Parse("2006-01-02", start); err != nil {
		apiError(c, http.StatusBadRequest, "invalid start, expected YYYY-MM-DD")
		return "", "", false
	}
	if _, err := time.Parse("2006-01-02", end); err != nil {
		apiError(c, http.StatusBadRequest, "invalid end, expected YYYY-MM-DD")
		return "", "", false
	}
	if start > end {
		apiError(c, http.StatusBadRequest, "start must not be after end")
		return "", "", false
	}
	return start, end, true
}

// getWeightLog returns weight entries for the authenticated user within [start, end].
// GET /api/weight-log?start=YYYY-MM-DD&end=YYYY-MM-DD. Empty array when none.
func (h *Handler) getWeightLog(c *gin.Context) {
	userID := c.GetInt("user_id")
	start, end, ok := parseDateRange(c)
	if !ok {
		return
	}

	entries, err := queryMany[weightEntry](h.db, c,
		`SELECT * FROM weight_log
		 WHERE user_id = @userID AND date >= @start AND date <= @end
		 ORDER BY date ASC`,
		pgx.NamedArgs{"userID": userID, "start": start, "end": end})
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to fetch weight log")
		return
	}
	if entries == nil {
		entries = []weightEntry{}
	}

	c.JSON(http.StatusOK, entries)
}

// upsertWeightEntry creates or replaces the weigh-in for a date.
// POST /api/weight-log. Body: { "date": "YYYY-MM-DD", "weight_kg": 82.4 }.
// UNIQUE(user_id, date) keeps one authoritative value per day: the latest post wins.
func (h *Handler) upsertWeightEntry(c *gin.Context) {
	userID := c.GetInt("user_id")

	var body struct {
		Date     string  `json:"date"`
		WeightKG float64 `json:"weight_kg"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if body.Date == "" {
		body.Date = h.now().Format("2006-01-02")
	}
	if _, err := time.Parse("2006-01-02", body.Date); err != nil {
		apiError(c, http.StatusBadRequest, "invalid date, expected YYYY-MM-DD")
		return
	}
	if !validWeightKG(body.WeightKG) {
		apiError(c, http.StatusBadRequest, "weight_kg must be between 0 and 700")
		return
	}

	entry, err := queryOne[weightEntry](h.db, c,
		`INSERT INTO weight_log (user_id, date, weight_kg)
		 VALUES (@userID, @date, @weightKG)
		 ON CONFLICT (user_id, date) DO UPDATE SET weight_kg = EXCLUDED.weight_kg
		 RETURNING *`,
		pgx.NamedArgs{"userID": userID, "date": body.Date, "weightKG": body.WeightKG})
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to upsert weight entry")
		return
	}

	h.cache.invalidate(userID)
	c.JSON(http.StatusCreated, entry)
}

// updateWeightEntry partially updates an existing weight entry.
// PUT /api/weight-log/:id. Body: { "date"?, "weight_kg"? }. Omitted fields keep their values.
func (h *Handler) updateWeightEntry(c *gin.Context) {
	userID := c.GetInt("user_id")
	id := c.Param("id")

	var body struct {
		Date     *string  `json:"date"`
		WeightKG *float64 `json:"weight_kg"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if body.Date != nil {
		if _, err := time.Parse("2006-01-02", *body.Date); err != nil {
			apiError(c, http.StatusBadRequest, "invalid date, expected YYYY-MM-DD")
			return
		}
	}
	if body.WeightKG != nil && !validWeightKG(*body.WeightKG) {
		apiError(c, http.StatusBadRequest, "weight_kg must be between 0 and 700")
		return
	}

	entry, err := queryOne[weightEntry](h.db, c,
		`UPDATE weight_log SET
			date      = COALESCE(@date, date),
			weight_kg = COALESCE(@weightKG, weight_kg)
		 WHERE id = @id AND user_id = @userID
		 RETURNING *`,
		pgx.NamedArgs{"id": id, "userID": userID, "date": body.Date, "weightKG": body.WeightKG})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			apiError(c, http.StatusNotFound, "weight entry not found")
		} else {
			apiError(c, http.StatusInternalServerError, "failed to update weight entry")
		}
		return
	}

	h.cache.invalidate(userID)
	c.JSON(http.StatusOK, entry)
}

// deleteWeightEntry removes a weight log entry by ID.
// DELETE /api/weight-log/:id. Returns 204 on success, 404 if not found.
func (h *Handler) deleteWeightEntry(c *gin.Context) {
	userID := c.GetInt("user_id")
	id := c.Param("id")

	result, err := h.db.Exec(c,
		"DELETE FROM weight_log WHERE id = @id AND user_id = @userID",
		pgx.NamedArgs{"id": id, "userID": userID})
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to delete weight entry")
		return
	}
	if result.RowsAffected() == 0 {
		apiError(c, http.StatusNotFound, "weight entry not found")
		return
	}

	h.cache.invalidate(userID)
	c.Status(http.StatusNoContent)
}
