package main

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// heatmapDays is the width of the workout heatmap: twelve weeks.
const heatmapDays = 84

// heatmapCell is one day of the workout heatmap.
type heatmapCell struct {
	Date     string `json:"date"`
	Count    int    `json:"count"`
	Calories int    `json:"calories"`
	Duration int    `json:"duration"`
}

// getWorkouts returns the latest 100 workouts, newest first.
// GET /api/workouts.
func (h *Handler) getWorkouts(c *gin.Context) {
	userID := c.GetString("user_id")

	workouts, err := queryMany[workoutEntry](h.db, c.Request.Context(),
		`SELECT * FROM workouts
		 WHERE user_id = @userID
		 ORDER BY logged_at DESC
		 LIMIT 100`,
		pgx.NamedArgs{"userID": userID})
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to fetch workouts")
		return
	}

	c.JSON(http.StatusOK, workouts)
}

// createWorkout logs a workout. Date defaults to today.
// POST /api/workouts. Body: { type, duration, calories, notes?, date? }.
func (h *Handler) createWorkout(c *gin.Context) {
	userID := c.GetString("user_id")

	var body createWorkoutRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	body.Type = strings.TrimSpace(body.Type)
	if body.Type == "" {
		apiError(c, http.StatusBadRequest, "type is required")
		return
	}
	if body.Duration < 0 || body.Calories < 0 {
		apiError(c, http.StatusBadRequest, "duration and calories must not be negative")
		return
	}
	date, ok := h.bodyDate(c, body.Date)
	if !ok {
		return
	}

	workout, err := queryOne[workoutEntry](h.db, c.Request.Context(),
		`INSERT INTO workouts (id, user_id, type, duration, calories, notes, date)
		 VALUES (@id, @userID, @type, @duration, @calories, @notes, @date)
		 RETURNING *`,
		pgx.NamedArgs{
			"id": uuid.NewString(), "userID": userID, "type": body.Type,
			"duration": body.Duration, "calories": body.Calories,
			"notes": body.Notes, "date": date,
		})
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to create workout")
		return
	}
	recordLogWrite("workout")

	c.JSON(http.StatusCreated, workout)
}

// deleteWorkout removes a workout by ID. Returns 204 on success.
// DELETE /api/workouts/:id. Ownership is enforced by matching user_id too.
func (h *Handler) deleteWorkout(c *gin.Context) {
	userID := c.GetString("user_id")
	id := c.Param("id")

	result, err := h.db.Exec(c.Request.Context(),
		"DELETE FROM workouts WHERE id = @id AND user_id = @userID",
		pgx.NamedArgs{"id": id, "userID": userID})
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to delete workout")
		return
	}
	if result.RowsAffected() == 0 {
		apiError(c, http.StatusNotFound, "workout not found")
		return
	}

	c.Status(http.StatusNoContent)
}

// getWorkoutHeatmap returns one cell per day for the 84 days ending today.
// GET /api/workout-heatmap. Days without workouts are zero-filled.
func (h *Handler) getWorkoutHeatmap(c *gin.Context) {
	userID := c.GetString("user_id")
	end := truncateToDay(h.clock())
	start := end.AddDate(0, 0, -(heatmapDays - 1))

	workouts, err := queryMany[workoutEntry](h.db, c.Request.Context(),
		`SELECT * FROM workouts
		 WHERE user_id = @userID AND date >= @start AND date <= @end`,
		pgx.NamedArgs{
			"userID": userID,
			"start":  start.Format(dateLayout),
			"end":    end.Format(dateLayout),
		})
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to fetch workouts")
		return
	}

	c.JSON(http.StatusOK, buildHeatmap(start, heatmapDays, workouts))
}

// buildHeatmap groups workouts by date and lays them over a gap-filled grid of
// days starting at start. Workouts outside the grid are ignored.
func buildHeatmap(start time.Time, days int, workouts []workoutEntry) []heatmapCell {
	byDate := make(map[string]*heatmapCell, len(workouts))
	for _, w := range workouts {
		key := w.Date.String()
		cell, ok := byDate[key]
		if !ok {
			cell = &heatmapCell{Date: key}
			byDate[key] = cell
		}
		cell.Count++
		cell.Calories += w.Calories
		cell.Duration += w.Duration
	}

	grid := make([]heatmapCell, days)
	for i := 0; i < days; i++ {
		dateStr := start.AddDate(0, 0, i).Format(dateLayout)
		if cell, ok := byDate[dateStr]; ok {
			grid[i] = *cell
		} else {
			grid[i] = heatmapCell{Date: dateStr}
		}
	}
	return grid
}
