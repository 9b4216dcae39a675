package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"
)

// statsInputs is everything stored for one (user, date) that /stats reads.
type statsInputs struct {
	profile    profile
	weightLogs []weightLogEntry
	workouts   []workoutEntry
	steps      *stepsEntry
	nutrition  *nutritionEntry
	water      *waterEntry
}

// statsResult is the response shape for GET /api/stats. Recomputed on every
// request; nothing here is persisted.
type statsResult struct {
	BMI                 float64           `json:"bmi"`
	BMICategory         string            `json:"bmi_category"`
	BMIColor            string            `json:"bmi_color"`
	BMR                 int               `json:"bmr"`
	TDEE                int               `json:"tdee"`
	Deficit             int               `json:"deficit"`
	BurnedToday         int               `json:"burned_today"`
	BurnedWorkouts      int               `json:"burned_workouts"`
	StepsCalories       int               `json:"steps_calories"`
	Eaten               float64           `json:"eaten"`
	HasNutrition        bool              `json:"has_nutrition"`
	Streak              int               `json:"streak"`
	WeightToLose        float64           `json:"weight_to_lose"`
	DaysToGoal          int               `json:"days_to_goal"`
	WeeksToGoal         int               `json:"weeks_to_goal"`
	WeeklyLoss          float64           `json:"weekly_loss"`
	Projection          []projectionPoint `json:"projection"`
	GoalKG              float64           `json:"goal_kg"`
	CurrentWeight       float64           `json:"current_weight"`
	StepsToday          int               `json:"steps_today"`
	GymDaysSaved        int               `json:"gym_days_saved"`
	WaterGlasses        int               `json:"water_glasses"`
	HealthScore         int               `json:"health_score"`
	PlannedDailyDeficit int               `json:"planned_daily_deficit"`
	Date                string            `json:"date"`
}

// loadDayInputs fetches the weight history and the date's logs. The reads are
// independent of each other, so they run concurrently; the first failure
// cancels the rest.
func loadDayInputs(ctx context.Context, store statsStore, p profile, date string) (statsInputs, error) {
	in := statsInputs{profile: p}
	userID := p.UserID

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logs, err := store.WeightLogs(ctx, userID)
		in.weightLogs = logs
		return err
	})
	g.Go(func() error {
		workouts, err := store.WorkoutsOn(ctx, userID, date)
		in.workouts = workouts
		return err
	})
	g.Go(func() error {
		steps, err := store.StepsOn(ctx, userID, date)
		in.steps = steps
		return err
	})
	g.Go(func() error {
		nutrition, err := store.NutritionOn(ctx, userID, date)
		in.nutrition = nutrition
		return err
	})
	g.Go(func() error {
		water, err := store.WaterOn(ctx, userID, date)
		in.water = water
		return err
	})
	if err := g.Wait(); err != nil {
		return statsInputs{}, err
	}
	return in, nil
}

// buildStats runs the calculators in order over one day's inputs. now only
// anchors the streak, which always counts back from the real current day.
func buildStats(in statsInputs, date string, now time.Time) statsResult {
	p := in.profile

	bmi := computeBMI(p.Weight, p.HeightCM)
	category, color := bmiBandFor(bmi)
	bmr := computeBMR(p.Weight, p.HeightCM, p.Age, p.Gender)
	tdee := computeTDEE(bmr)

	energy := computeEnergyBalance(p, tdee, date, in.workouts, in.steps, in.nutrition)

	streak := computeStreak(in.weightLogs, now)
	proj := computeProjection(p, tdee, in.weightLogs)

	score := computeHealthScore(healthScoreInputs{
		BMI:          bmi,
		Steps:        energy.Steps,
		BurnedToday:  energy.BurnedToday,
		HasNutrition: energy.HasNutrition,
		Eaten:        energy.Eaten,
		CalTarget:    p.CalTarget,
		Streak:       streak,
	})

	water := 0
	if in.water != nil {
		water = in.water.Glasses
	}

	return statsResult{
		BMI:                 bmi,
		BMICategory:         category,
		BMIColor:            color,
		BMR:                 bmr,
		TDEE:                tdee,
		Deficit:             energy.Deficit,
		BurnedToday:         energy.BurnedToday,
		BurnedWorkouts:      energy.BurnedWorkouts,
		StepsCalories:       energy.StepsCalories,
		Eaten:               energy.Eaten,
		HasNutrition:        energy.HasNutrition,
		Streak:              streak,
		WeightToLose:        roundTo(proj.WeightToLose, 1),
		DaysToGoal:          proj.DaysToGoal,
		WeeksToGoal:         proj.WeeksToGoal,
		WeeklyLoss:          roundTo(proj.WeeklyLoss, 2),
		Projection:          proj.Points,
		GoalKG:              p.GoalKG,
		CurrentWeight:       p.Weight,
		StepsToday:          energy.Steps,
		GymDaysSaved:        proj.GymDaysSaved,
		WaterGlasses:        water,
		HealthScore:         score.Total,
		PlannedDailyDeficit: proj.PlannedDailyDeficit,
		Date:                date,
	}
}

// getStats returns the derived daily summary for the authenticated user.
// GET /api/stats?date=YYYY-MM-DD (defaults to today, UTC).
func (h *Handler) getStats(c *gin.Context) {
	started := time.Now()
	userID := c.GetString("user_id")
	ctx := c.Request.Context()

	p, err := h.store.Profile(ctx, userID)
	if err != nil {
		if errors.Is(err, errNotFound) {
			recordStats(statsOutcomeNotFound, started)
			apiError(c, http.StatusNotFound, "Profile not found")
			return
		}
		log.Printf("[getStats] profile lookup failed for user %s: %v", userID, err)
		recordStats(statsOutcomeError, started)
		apiError(c, http.StatusInternalServerError, "failed to compute stats")
		return
	}

	date, ok := h.resolveDate(c)
	if !ok {
		recordStats(statsOutcomeInvalid, started)
		return
	}

	in, err := loadDayInputs(ctx, h.store, p, date)
	if err != nil {
		log.Printf("[getStats] loading %s for user %s failed: %v", date, userID, err)
		recordStats(statsOutcomeError, started)
		apiError(c, http.StatusInternalServerError, "failed to compute stats")
		return
	}

	result := buildStats(in, date, h.clock())
	recordStats(statsOutcomeOK, started)
	c.JSON(http.StatusOK, result)
}
