package main

import "math"

const (
	subScoreMax          = 25.0
	stepsGoal            = 10000.0
	burnGoalKcal         = 500.0
	streakGoalDays       = 7.0
	untrackedNutritionPt = 12.0 // partial credit for having a target without logging food
)

// healthScoreInputs are the already-computed figures the score is built from.
type healthScoreInputs struct {
	BMI          float64
	Steps        int
	BurnedToday  int
	HasNutrition bool
	Eaten        float64
	CalTarget    int
	Streak       int
}

// healthScore keeps the four 0–25 sub-scores alongside the rounded total.
type healthScore struct {
	BMI       float64
	Activity  float64
	Nutrition float64
	Streak    float64
	Total     int
}

// computeHealthScore builds the 0–100 composite score.
func computeHealthScore(in healthScoreInputs) healthScore {
	var s healthScore

	if in.BMI >= 18.5 && in.BMI < 25 {
		s.BMI = subScoreMax
	} else {
		s.BMI = math.Max(0, subScoreMax-math.Abs(in.BMI-22)*2)
	}

	s.Activity = math.Min(float64(in.Steps)/stepsGoal, 1)*15 +
		math.Min(float64(in.BurnedToday)/burnGoalKcal, 1)*10

	switch {
	case !in.HasNutrition:
		s.Nutrition = untrackedNutritionPt
	case in.CalTarget > 0:
		diff := math.Abs(in.Eaten - float64(in.CalTarget))
		s.Nutrition = math.Max(0, subScoreMax-diff/float64(in.CalTarget)*subScoreMax)
	}

	s.Streak = math.Min(float64(in.Streak)/streakGoalDays, 1) * subScoreMax

	s.Total = roundInt(math.Max(0, math.Min(s.BMI+s.Activity+s.Nutrition+s.Streak, 100)))
	return s
}
