package main

// Step-calorie model: stride length from height, brisk-walk pace, MET for
// moderate walking.
const (
	strideFactor    = 0.413
	walkingSpeedKMH = 4.8
	walkingMET      = 3.5
)

// energyBalance is one day's calories in and out.
type energyBalance struct {
	BurnedWorkouts int
	StepsCalories  int
	BurnedToday    int
	Steps          int
	HasNutrition   bool
	Eaten          float64
	Deficit        int
}

// stepsCalories estimates kcal burned walking the given number of steps.
func stepsCalories(steps int, heightCM, weightKG float64) int {
	strideM := heightCM * strideFactor / 100
	distanceKM := float64(steps) * strideM / 1000
	walkingHours := distanceKM / walkingSpeedKMH
	return roundInt(walkingMET * weightKG * walkingHours)
}

// computeEnergyBalance combines TDEE with the day's burn and intake.
//
// The deficit is measured against what was actually eaten when the day has
// logged nutrition with a non-zero calorie total, and against the profile's
// calorie target otherwise, so the figure is meaningful before food is logged.
func computeEnergyBalance(p profile, tdee int, date string, workouts []workoutEntry, steps *stepsEntry, nutrition *nutritionEntry) energyBalance {
	var eb energyBalance

	for _, w := range workouts {
		if w.Date.String() == date {
			eb.BurnedWorkouts += w.Calories
		}
	}

	if steps != nil {
		eb.Steps = steps.Steps
	}
	eb.StepsCalories = stepsCalories(eb.Steps, p.HeightCM, p.Weight)
	eb.BurnedToday = eb.BurnedWorkouts + eb.StepsCalories

	if nutrition != nil && nutrition.Total.Calories != 0 {
		eb.HasNutrition = true
		eb.Eaten = nutrition.Total.Calories
	}

	expended := float64(tdee + eb.BurnedToday)
	if eb.HasNutrition {
		eb.Deficit = roundInt(expended - eb.Eaten)
	} else {
		eb.Deficit = roundInt(expended - float64(p.CalTarget))
	}
	return eb
}
