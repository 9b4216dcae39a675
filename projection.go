package main

import "math"

const (
	kcalPerKG         = 7700 // ≈ 1 kg of body fat
	projectionWeeks   = 24
	projectionHistory = 6   // most recent weight logs shown as actual points
	gymBonusKcal      = 300 // extra daily burn for the "add the gym" estimate
)

// projectionPoint is one week on the weight chart. Historical points carry
// Actual and BMIActual; future points carry Projected and BMIProjected.
type projectionPoint struct {
	Week         int      `json:"week"`
	Actual       *float64 `json:"actual"`
	Projected    *float64 `json:"projected"`
	BMIActual    *float64 `json:"bmi_actual,omitempty"`
	BMIProjected *float64 `json:"bmi_projected,omitempty"`
}

// weightProjection is the linear-deficit forecast toward the goal weight.
type weightProjection struct {
	WeightToLose        float64
	PlannedDailyDeficit int
	WeeklyLoss          float64
	WeeksToGoal         int
	DaysToGoal          int
	GymDaysSaved        int
	Points              []projectionPoint
}

// weeklyLossKG converts a daily kcal deficit into kg lost per week.
func weeklyLossKG(dailyDeficit int) float64 {
	if dailyDeficit <= 0 {
		return 0
	}
	return float64(dailyDeficit*7) / kcalPerKG
}

// weeksToLose returns how many weeks a weekly loss needs to cover toLose, or 0
// when there is no loss.
func weeksToLose(toLose, weeklyLoss float64) int {
	if weeklyLoss <= 0 {
		return 0
	}
	return roundInt(toLose / weeklyLoss)
}

// computeProjection forecasts weight from the planned deficit (TDEE minus the
// calorie target). Only a positive planned deficit produces loss, and projected
// weight never drops below the goal. logs must be in ascending date order.
func computeProjection(p profile, tdee int, logs []weightLogEntry) weightProjection {
	wp := weightProjection{
		WeightToLose:        math.Max(p.Weight-p.GoalKG, 0),
		PlannedDailyDeficit: max(tdee-p.CalTarget, 0),
	}
	wp.WeeklyLoss = weeklyLossKG(wp.PlannedDailyDeficit)
	wp.WeeksToGoal = weeksToLose(wp.WeightToLose, wp.WeeklyLoss)
	wp.DaysToGoal = wp.WeeksToGoal * 7

	history := logs
	if len(history) > projectionHistory {
		history = history[len(history)-projectionHistory:]
	}

	wp.Points = make([]projectionPoint, 0, projectionWeeks)
	for i, l := range history {
		actual := l.Weight
		bmi := computeBMI(l.Weight, p.HeightCM)
		wp.Points = append(wp.Points, projectionPoint{
			Week:      i + 1,
			Actual:    &actual,
			BMIActual: &bmi,
		})
	}

	current := p.Weight
	for week := len(history) + 1; week <= projectionWeeks; week++ {
		current = math.Max(current-wp.WeeklyLoss, p.GoalKG)
		projected := roundTo(current, 1)
		bmi := computeBMI(current, p.HeightCM)
		wp.Points = append(wp.Points, projectionPoint{
			Week:         week,
			Projected:    &projected,
			BMIProjected: &bmi,
		})
	}

	gymWeeks := weeksToLose(wp.WeightToLose, weeklyLossKG(wp.PlannedDailyDeficit+gymBonusKcal))
	wp.GymDaysSaved = max(wp.DaysToGoal-gymWeeks*7, 0)

	return wp
}
