package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Atwater factors, kcal per gram.
const (
	kcalPerGramCarbs   = 4
	kcalPerGramProtein = 4
	kcalPerGramFat     = 9
)

const nutritionModeMacros = "macros"

// optionalFloat decodes a JSON number, a numeric string, "" or null. Form
// inputs post empty strings for untouched fields, which count as unset.
type optionalFloat struct {
	Value float64
	Set   bool
}

func (o *optionalFloat) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) || bytes.Equal(b, []byte(`""`)) {
		*o = optionalFloat{}
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return fmt.Errorf("not a number: %q", s)
		}
		*o = optionalFloat{Value: v, Set: true}
		return nil
	}
	var v float64
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*o = optionalFloat{Value: v, Set: true}
	return nil
}

// Or0 returns the value, or 0 when unset.
func (o optionalFloat) Or0() float64 {
	if !o.Set {
		return 0
	}
	return o.Value
}

// manualNutritionTotals turns a manual entry into the day's totals. Macros mode
// derives calories from grams; any other mode takes calories as given and
// leaves the macros at zero.
func manualNutritionTotals(req manualNutritionRequest) (nutritionTotals, error) {
	for _, v := range []optionalFloat{req.Calories, req.Carbs, req.Protein, req.Fat} {
		if v.Or0() < 0 {
			return nutritionTotals{}, fmt.Errorf("nutrition values must not be negative: %w", errValidation)
		}
	}

	if req.Mode == nutritionModeMacros {
		carbs, protein, fat := req.Carbs.Or0(), req.Protein.Or0(), req.Fat.Or0()
		kcal := carbs*kcalPerGramCarbs + protein*kcalPerGramProtein + fat*kcalPerGramFat
		return nutritionTotals{
			Calories: float64(roundInt(kcal)),
			Carbs:    carbs,
			Protein:  protein,
			Fat:      fat,
		}, nil
	}
	return nutritionTotals{Calories: req.Calories.Or0()}, nil
}

// upsertNutrition writes the whole day's entry, replacing any earlier one.
func upsertNutrition(ctx context.Context, db *pgxpool.Pool, userID, date string, meals []nutritionMeal, total nutritionTotals, source string) (nutritionEntry, error) {
	mealsJSON, err := json.Marshal(meals)
	if err != nil {
		return nutritionEntry{}, err
	}
	totalJSON, err := json.Marshal(total)
	if err != nil {
		return nutritionEntry{}, err
	}

	return queryOne[nutritionEntry](db, ctx,
		`INSERT INTO nutrition (user_id, date, meals, total, source)
		 VALUES (@userID, @date, @meals::jsonb, @total::jsonb, @source)
		 ON CONFLICT (user_id, date) DO UPDATE
		 SET meals = EXCLUDED.meals, total = EXCLUDED.total,
		     source = EXCLUDED.source, updated_at = now()
		 RETURNING *`,
		pgx.NamedArgs{
			"userID": userID, "date": date,
			"meals": string(mealsJSON), "total": string(totalJSON),
			"source": source,
		})
}

// getNutrition returns the nutrition entry for a date, with empty totals when
// nothing was logged. GET /api/nutrition?date=YYYY-MM-DD (defaults to today).
func (h *Handler) getNutrition(c *gin.Context) {
	userID := c.GetString("user_id")
	date, ok := h.resolveDate(c)
	if !ok {
		return
	}

	entry, err := h.store.NutritionOn(c.Request.Context(), userID, date)
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to fetch nutrition")
		return
	}
	if entry == nil {
		c.JSON(http.StatusOK, gin.H{"meals": []nutritionMeal{}, "total": nutritionTotals{}, "date": date})
		return
	}

	c.JSON(http.StatusOK, entry)
}

// logNutritionManual replaces the day's nutrition with one "Manual Entry" meal.
// POST /api/nutrition/manual. Body: { mode: "total"|"macros", calories?, carbs?, protein?, fat?, date? }.
func (h *Handler) logNutritionManual(c *gin.Context) {
	userID := c.GetString("user_id")

	var body manualNutritionRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	date, ok := h.bodyDate(c, body.Date)
	if !ok {
		return
	}
	total, err := manualNutritionTotals(body)
	if err != nil {
		apiError(c, http.StatusBadRequest, "nutrition values must not be negative")
		return
	}

	meals := []nutritionMeal{{
		Name:     "Manual Entry",
		Calories: total.Calories,
		Carbs:    total.Carbs,
		Protein:  total.Protein,
		Fat:      total.Fat,
	}}
	if _, err := upsertNutrition(c.Request.Context(), h.db, userID, date, meals, total, nutritionSourceManual); err != nil {
		log.Printf("[logNutritionManual] upsert for %s: %v", date, err)
		apiError(c, http.StatusInternalServerError, "failed to save nutrition")
		return
	}
	recordLogWrite("nutrition")

	c.JSON(http.StatusOK, gin.H{"total": total, "date": date, "source": nutritionSourceManual})
}

// copyNutritionFromYesterday copies the previous day's meals onto the given date.
// POST /api/nutrition/copy-yesterday?date=YYYY-MM-DD (defaults to today).
func (h *Handler) copyNutritionFromYesterday(c *gin.Context) {
	userID := c.GetString("user_id")
	ctx := c.Request.Context()
	date, ok := h.resolveDate(c)
	if !ok {
		return
	}
	target, _ := time.Parse(dateLayout, date)
	yesterday := target.AddDate(0, 0, -1).Format(dateLayout)

	prev, err := h.store.NutritionOn(ctx, userID, yesterday)
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to fetch nutrition")
		return
	}
	if prev == nil || prev.Total.Calories == 0 {
		apiError(c, http.StatusNotFound, "No nutrition data found for previous day")
		return
	}

	if _, err := upsertNutrition(ctx, h.db, userID, date, prev.Meals, prev.Total, nutritionSourceCopied); err != nil {
		log.Printf("[copyNutritionFromYesterday] upsert for %s: %v", date, err)
		apiError(c, http.StatusInternalServerError, "failed to save nutrition")
		return
	}
	recordLogWrite("nutrition")

	c.JSON(http.StatusOK, gin.H{
		"total":     prev.Total,
		"date":      date,
		"source":    nutritionSourceCopied,
		"from_date": yesterday,
	})
}
