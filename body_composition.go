package main

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// getBodyCompositions returns the latest 20 body-fat readings, newest first.
// GET /api/body-composition.
func (h *Handler) getBodyCompositions(c *gin.Context) {
	userID := c.GetString("user_id")

	readings, err := queryMany[bodyCompReading](h.db, c.Request.Context(),
		`SELECT * FROM body_compositions
		 WHERE user_id = @userID
		 ORDER BY date DESC, logged_at DESC
		 LIMIT 20`,
		pgx.NamedArgs{"userID": userID})
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to fetch body composition")
		return
	}

	c.JSON(http.StatusOK, readings)
}

// calcBodyComposition estimates body fat with the U.S. Navy method from the
// profile's height and gender, stores the reading and returns lean/fat mass.
// POST /api/body-composition. Body: { waist, neck, hip? } in cm.
func (h *Handler) calcBodyComposition(c *gin.Context) {
	userID := c.GetString("user_id")
	ctx := c.Request.Context()

	var body bodyCompRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}

	p, err := h.store.Profile(ctx, userID)
	if err != nil {
		if errors.Is(err, errNotFound) {
			apiError(c, http.StatusNotFound, "Profile not found")
		} else {
			apiError(c, http.StatusInternalServerError, "failed to fetch profile")
		}
		return
	}

	comp, err := computeBodyComposition(p, body.Waist, body.Neck, body.Hip)
	if err != nil {
		apiError(c, http.StatusBadRequest, err.Error())
		return
	}

	_, err = h.db.Exec(ctx,
		`INSERT INTO body_compositions (id, user_id, body_fat, category, waist, neck, hip, date)
		 VALUES (@id, @userID, @bodyFat, @category, @waist, @neck, @hip, @date)`,
		pgx.NamedArgs{
			"id": uuid.NewString(), "userID": userID,
			"bodyFat": comp.BodyFat, "category": comp.Category,
			"waist": body.Waist, "neck": body.Neck, "hip": body.Hip,
			"date": h.today(),
		})
	if err != nil {
		log.Printf("[calcBodyComposition] insert: %v", err)
		apiError(c, http.StatusInternalServerError, "failed to save body composition")
		return
	}
	recordLogWrite("body_composition")

	c.JSON(http.StatusOK, comp)
}
