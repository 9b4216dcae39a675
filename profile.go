package main

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// getProfile returns the authenticated user's profile.
// GET /api/profile.
func (h *Handler) getProfile(c *gin.Context) {
	userID := c.GetString("user_id")

	p, err := h.store.Profile(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, errNotFound) {
			apiError(c, http.StatusNotFound, "Profile not found")
		} else {
			apiError(c, http.StatusInternalServerError, "failed to fetch profile")
		}
		return
	}

	c.JSON(http.StatusOK, p)
}

// validateProfileUpdate rejects values the calculators cannot work with.
func validateProfileUpdate(body updateProfileRequest) string {
	if body.Weight != nil && (*body.Weight <= 0 || *body.Weight > 500) {
		return "weight must be between 0 and 500"
	}
	if body.HeightCM != nil && (*body.HeightCM <= 0 || *body.HeightCM > 300) {
		return "heightCm must be between 0 and 300"
	}
	if body.Age != nil && (*body.Age <= 0 || *body.Age > 130) {
		return "age must be between 1 and 130"
	}
	if body.Gender != nil && *body.Gender != "male" && *body.Gender != "female" {
		return "gender must be one of: male, female"
	}
	if body.CalTarget != nil && *body.CalTarget < 0 {
		return "calTarget must not be negative"
	}
	if body.GoalKG != nil && *body.GoalKG <= 0 {
		return "goalKg must be positive"
	}
	return ""
}

// updateProfile updates only the provided profile fields.
// PUT /api/profile. Pointer fields in the request body distinguish "not
// provided" from zero. A new weight is also appended to the weight log, dated
// today, in the same transaction so the history and the profile agree.
func (h *Handler) updateProfile(c *gin.Context) {
	userID := c.GetString("user_id")
	ctx := c.Request.Context()

	var body updateProfileRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if msg := validateProfileUpdate(body); msg != "" {
		apiError(c, http.StatusBadRequest, msg)
		return
	}

	// Build SET clause dynamically: only update fields the client actually sent
	setClauses := []string{}
	args := pgx.NamedArgs{"userID": userID}

	if body.Name != nil {
		setClauses = append(setClauses, "name = @name")
		args["name"] = *body.Name
	}
	if body.Weight != nil {
		setClauses = append(setClauses, "weight = @weight")
		args["weight"] = *body.Weight
	}
	if body.HeightCM != nil {
		setClauses = append(setClauses, "height_cm = @heightCM")
		args["heightCM"] = *body.HeightCM
	}
	if body.Age != nil {
		setClauses = append(setClauses, "age = @age")
		args["age"] = *body.Age
	}
	if body.Gender != nil {
		setClauses = append(setClauses, "gender = @gender")
		args["gender"] = *body.Gender
	}
	if body.CalTarget != nil {
		setClauses = append(setClauses, "cal_target = @calTarget")
		args["calTarget"] = *body.CalTarget
	}
	if body.GoalKG != nil {
		setClauses = append(setClauses, "goal_kg = @goalKG")
		args["goalKG"] = *body.GoalKG
	}
	if body.AvatarURL != nil {
		setClauses = append(setClauses, "avatar_url = @avatarURL")
		args["avatarURL"] = *body.AvatarURL
	}

	if len(setClauses) == 0 {
		h.getProfile(c)
		return
	}

	tx, err := h.db.Begin(ctx)
	if err != nil {
		log.Printf("[updateProfile] begin: %v", err)
		apiError(c, http.StatusInternalServerError, "failed to update profile")
		return
	}
	defer tx.Rollback(ctx)

	rows, err := tx.Query(ctx,
		"UPDATE profiles SET "+strings.Join(setClauses, ", ")+" WHERE user_id = @userID RETURNING *",
		args)
	if err != nil {
		log.Printf("[updateProfile] update: %v", err)
		apiError(c, http.StatusInternalServerError, "failed to update profile")
		return
	}
	p, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[profile])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			apiError(c, http.StatusNotFound, "Profile not found")
		} else {
			log.Printf("[updateProfile] scan: %v", err)
			apiError(c, http.StatusInternalServerError, "failed to update profile")
		}
		return
	}

	if body.Weight != nil {
		_, err = tx.Exec(ctx,
			`INSERT INTO weight_logs (id, user_id, weight, date)
			 VALUES (@id, @userID, @weight, @date)`,
			pgx.NamedArgs{"id": uuid.NewString(), "userID": userID, "weight": *body.Weight, "date": h.today()})
		if err != nil {
			log.Printf("[updateProfile] weight log: %v", err)
			apiError(c, http.StatusInternalServerError, "failed to update profile")
			return
		}
	}

	if err := tx.Commit(ctx); err != nil {
		log.Printf("[updateProfile] commit: %v", err)
		apiError(c, http.StatusInternalServerError, "failed to update profile")
		return
	}
	if body.Weight != nil {
		recordLogWrite("weight")
	}

	c.JSON(http.StatusOK, p)
}
