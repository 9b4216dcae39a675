package main

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

/* ─── Steps ───────────────────────────────────────────────────────────── */

// getSteps returns the latest 100 daily step counts, newest first.
// GET /api/steps.
func (h *Handler) getSteps(c *gin.Context) {
	userID := c.GetString("user_id")

	entries, err := queryMany[stepsEntry](h.db, c.Request.Context(),
		`SELECT * FROM steps
		 WHERE user_id = @userID
		 ORDER BY date DESC
		 LIMIT 100`,
		pgx.NamedArgs{"userID": userID})
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to fetch steps")
		return
	}

	c.JSON(http.StatusOK, entries)
}

// upsertSteps sets the step count for a date, replacing any earlier value.
// POST /api/steps. Body: { "steps": 8000, "date"?: "YYYY-MM-DD" }.
func (h *Handler) upsertSteps(c *gin.Context) {
	userID := c.GetString("user_id")

	var body struct {
		Steps int     `json:"steps"`
		Date  *string `json:"date"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if body.Steps < 0 {
		apiError(c, http.StatusBadRequest, "steps must not be negative")
		return
	}
	date, ok := h.bodyDate(c, body.Date)
	if !ok {
		return
	}

	entry, err := queryOne[stepsEntry](h.db, c.Request.Context(),
		`INSERT INTO steps (user_id, date, steps)
		 VALUES (@userID, @date, @steps)
		 ON CONFLICT (user_id, date) DO UPDATE
		 SET steps = EXCLUDED.steps, updated_at = now()
		 RETURNING *`,
		pgx.NamedArgs{"userID": userID, "date": date, "steps": body.Steps})
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to save steps")
		return
	}
	recordLogWrite("steps")

	c.JSON(http.StatusOK, entry)
}

/* ─── Water ───────────────────────────────────────────────────────────── */

// getWater returns the glasses logged for a date, or zero when nothing was logged.
// GET /api/water?date=YYYY-MM-DD (defaults to today).
func (h *Handler) getWater(c *gin.Context) {
	userID := c.GetString("user_id")
	date, ok := h.resolveDate(c)
	if !ok {
		return
	}

	entry, err := h.store.WaterOn(c.Request.Context(), userID, date)
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to fetch water")
		return
	}
	if entry == nil {
		c.JSON(http.StatusOK, gin.H{"glasses": 0, "date": date})
		return
	}

	c.JSON(http.StatusOK, entry)
}

// upsertWater sets the glasses of water for a date.
// POST /api/water. Body: { "glasses": 6, "date"?: "YYYY-MM-DD" }.
func (h *Handler) upsertWater(c *gin.Context) {
	userID := c.GetString("user_id")

	var body struct {
		Glasses int     `json:"glasses"`
		Date    *string `json:"date"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if body.Glasses < 0 {
		apiError(c, http.StatusBadRequest, "glasses must not be negative")
		return
	}
	date, ok := h.bodyDate(c, body.Date)
	if !ok {
		return
	}

	entry, err := queryOne[waterEntry](h.db, c.Request.Context(),
		`INSERT INTO water (user_id, date, glasses)
		 VALUES (@userID, @date, @glasses)
		 ON CONFLICT (user_id, date) DO UPDATE
		 SET glasses = EXCLUDED.glasses, updated_at = now()
		 RETURNING *`,
		pgx.NamedArgs{"userID": userID, "date": date, "glasses": body.Glasses})
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to save water")
		return
	}
	recordLogWrite("water")

	c.JSON(http.StatusOK, entry)
}

/* ─── Measurements ────────────────────────────────────────────────────── */

// getMeasurements returns the latest 100 body measurements, newest first.
// GET /api/measurements.
func (h *Handler) getMeasurements(c *gin.Context) {
	userID := c.GetString("user_id")

	entries, err := queryMany[measurementEntry](h.db, c.Request.Context(),
		`SELECT * FROM measurements
		 WHERE user_id = @userID
		 ORDER BY date DESC, logged_at DESC
		 LIMIT 100`,
		pgx.NamedArgs{"userID": userID})
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to fetch measurements")
		return
	}

	c.JSON(http.StatusOK, entries)
}

// addMeasurement records circumferences (cm) for today. Every field is optional.
// POST /api/measurements. Body: { waist?, chest?, hips?, arms?, date? }.
func (h *Handler) addMeasurement(c *gin.Context) {
	userID := c.GetString("user_id")

	var body struct {
		Waist *float64 `json:"waist"`
		Chest *float64 `json:"chest"`
		Hips  *float64 `json:"hips"`
		Arms  *float64 `json:"arms"`
		Date  *string  `json:"date"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	for _, v := range []*float64{body.Waist, body.Chest, body.Hips, body.Arms} {
		if v != nil && *v <= 0 {
			apiError(c, http.StatusBadRequest, "measurements must be positive")
			return
		}
	}
	date, ok := h.bodyDate(c, body.Date)
	if !ok {
		return
	}

	entry, err := queryOne[measurementEntry](h.db, c.Request.Context(),
		`INSERT INTO measurements (id, user_id, waist, chest, hips, arms, date)
		 VALUES (@id, @userID, @waist, @chest, @hips, @arms, @date)
		 RETURNING *`,
		pgx.NamedArgs{
			"id": uuid.NewString(), "userID": userID,
			"waist": body.Waist, "chest": body.Chest, "hips": body.Hips, "arms": body.Arms,
			"date": date,
		})
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to save measurement")
		return
	}
	recordLogWrite("measurement")

	c.JSON(http.StatusCreated, entry)
}
