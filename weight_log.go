package main

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// getWeightLogs returns every weight entry for the authenticated user, oldest
// first. GET /api/weight-logs. Returns an empty array (not null) when nothing
// has been logged.
func (h *Handler) getWeightLogs(c *gin.Context) {
	userID := c.GetString("user_id")

	entries, err := h.store.WeightLogs(c.Request.Context(), userID)
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to fetch weight logs")
		return
	}

	c.JSON(http.StatusOK, entries)
}

// addWeightLog appends a weight entry and makes it the profile's current weight.
// POST /api/weight-logs. Body: { "weight": 89.4, "date"?: "YYYY-MM-DD" }.
// Several entries may share a date; the streak counts the date once.
func (h *Handler) addWeightLog(c *gin.Context) {
	userID := c.GetString("user_id")
	ctx := c.Request.Context()

	var body struct {
		Weight float64 `json:"weight"`
		Date   *string `json:"date"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if body.Weight <= 0 || body.Weight > 500 {
		apiError(c, http.StatusBadRequest, "weight must be between 0 and 500")
		return
	}
	date, ok := h.bodyDate(c, body.Date)
	if !ok {
		return
	}

	tx, err := h.db.Begin(ctx)
	if err != nil {
		log.Printf("[addWeightLog] begin: %v", err)
		apiError(c, http.StatusInternalServerError, "failed to add weight entry")
		return
	}
	defer tx.Rollback(ctx)

	rows, err := tx.Query(ctx,
		`INSERT INTO weight_logs (id, user_id, weight, date)
		 VALUES (@id, @userID, @weight, @date)
		 RETURNING *`,
		pgx.NamedArgs{"id": uuid.NewString(), "userID": userID, "weight": body.Weight, "date": date})
	if err != nil {
		log.Printf("[addWeightLog] insert: %v", err)
		apiError(c, http.StatusInternalServerError, "failed to add weight entry")
		return
	}
	entry, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[weightLogEntry])
	if err != nil {
		log.Printf("[addWeightLog] scan: %v", err)
		apiError(c, http.StatusInternalServerError, "failed to add weight entry")
		return
	}

	if _, err := tx.Exec(ctx,
		"UPDATE profiles SET weight = @weight WHERE user_id = @userID",
		pgx.NamedArgs{"weight": body.Weight, "userID": userID}); err != nil {
		log.Printf("[addWeightLog] profile weight: %v", err)
		apiError(c, http.StatusInternalServerError, "failed to add weight entry")
		return
	}

	if err := tx.Commit(ctx); err != nil {
		log.Printf("[addWeightLog] commit: %v", err)
		apiError(c, http.StatusInternalServerError, "failed to add weight entry")
		return
	}
	recordLogWrite("weight")

	c.JSON(http.StatusCreated, entry)
}
