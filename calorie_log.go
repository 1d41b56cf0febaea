package main

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
)

// validItemTypes is the set of allowed values for the calorie_log_item_type enum.
// Everything except exercise counts toward calories consumed.
var validItemTypes = map[string]bool{
	"breakfast": true,
	"lunch":     true,
	"dinner":    true,
	"snack":     true,
	"exercise":  true,
}

// maxItemCalories bounds a single item. Larger values are treated as typos.
const maxItemCalories = 20000

// createCalorieLogItem inserts a new calorie log entry.
// POST /api/calorie-log/items. Defaults date to today if omitted.
func (h *Handler) createCalorieLogItem(c *gin.Context) {
	userID := c.GetInt("user_id")

	var body createCalorieLogItemRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if body.ItemName == "" {
		apiError(c, http.StatusBadRequest, "item_name is required")
		return
	}
	if !validItemTypes[body.Type] {
		apiError(c, http.StatusBadRequest, "type must be one of: breakfast, lunch, dinner, snack, exercise")
		return
	}
	if body.Calories < 0 || body.Calories > maxItemCalories {
		apiError(c, http.StatusBadRequest, "calories must be between 0 and 20000")
		return
	}
	if body.Date == "" {
		body.Date = h.now().Format("2006-01-02")
	}
	if _, err := time.Parse("2006-01-02", body.Date); err != nil {
		apiError(c, http.StatusBadRequest, "invalid date, expected YYYY-MM-DD")
		return
	}

	item, err := queryOne[calorieLogItem](h.db, c,
		`INSERT INTO calorie_log_items (user_id, date, item_name, type, calories)
		 VALUES (@userID, @date, @itemName, @type, @calories)
		 RETURNING *`,
		pgx.NamedArgs{
			"userID": userID, "date": body.Date, "itemName": body.ItemName,
			"type": body.Type, "calories": body.Calories,
		})
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to create item")
		return
	}

	h.cache.invalidate(userID)
	c.JSON(http.StatusCreated, item)
}

// updateCalorieLogItem updates an existing calorie log entry.
// PUT /api/calorie-log/items/:id. Uses COALESCE so omitted fields keep their current value.
func (h *Handler) updateCalorieLogItem(c *gin.Context) {
	userID := c.GetInt("user_id")
	id := c.Param("id")

	var body struct {
		Date     *string `json:"date"`
		ItemName *string `json:"item_name"`
		Type     *string `json:"type"`
		Calories *int    `json:"calories"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if body.Type != nil && !validItemTypes[*body.Type] {
		apiError(c, http.StatusBadRequest, "type must be one of: breakfast, lunch, dinner, snack, exercise")
		return
	}
	if body.Calories != nil && (*body.Calories < 0 || *body.Calories > maxItemCalories) {
		apiError(c, http.StatusBadRequest, "calories must be between 0 and 20000")
		return
	}
	if body.Date != nil {
		if _, err := time.Parse("2006-01-02", *body.Date); err != nil {
			apiError(c, http.StatusBadRequest, "invalid date, expected YYYY-MM-DD")
			return
		}
	}

	item, err := queryOne[calorieLogItem](h.db, c,
		`UPDATE calorie_log_items SET
			date = COALESCE(@date, date),
			item_name = COALESCE(@itemName, item_name),
			type = COALESCE(@type, type),
			calories = COALESCE(@calories, calories),
			updated_at = now()
		 WHERE id = @id AND user_id = @userID
		 RETURNING *`,
		pgx.NamedArgs{
			"id": id, "userID": userID,
			"date": body.Date, "itemName": body.ItemName, "type": body.Type,
			"calories": body.Calories,
		})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			apiError(c, http.StatusNotFound, "item not found")
		} else {
			apiError(c, http.StatusInternalServerError, "failed to update item")
		}
		return
	}

	h.cache.invalidate(userID)
	c.JSON(http.StatusOK, item)
}

// deleteCalorieLogItem removes a calorie log entry. Returns 204 on success.
// DELETE /api/calorie-log/items/:id.
func (h *Handler) deleteCalorieLogItem(c *gin.Context) {
	userID := c.GetInt("user_id")
	id := c.Param("id")

	result, err := h.db.Exec(c,
		"DELETE FROM calorie_log_items WHERE id = @id AND user_id = @userID",
		pgx.NamedArgs{"id": id, "userID": userID})
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to delete item")
		return
	}
	if result.RowsAffected() == 0 {
		apiError(c, http.StatusNotFound, "item not found")
		return
	}

	h.cache.invalidate(userID)
	c.Status(http.StatusNoContent)
}
