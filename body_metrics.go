package main

import (
	"fmt"
	"math"
)

// sedentaryMultiplier is the fixed activity factor applied to BMR. There is no
// per-user activity level; extra burn is counted separately from workouts and steps.
const sedentaryMultiplier = 1.2

// band is one row of an ordered threshold table: values below upper fall in it.
type band struct {
	upper    float64
	category string
	color    string
}

// bmiBands must stay sorted by upper bound; the last row catches everything else.
var bmiBands = []band{
	{upper: 18.5, category: "Underweight", color: "blue"},
	{upper: 25, category: "Normal", color: "green"},
	{upper: 30, category: "Overweight", color: "orange"},
	{upper: math.Inf(1), category: "Obese", color: "red"},
}

// bodyFatBands holds the per-gender body-fat categories. Anything that is not
// "male" uses the female table, matching the female Navy formula below.
var bodyFatBands = map[string][]band{
	"male": {
		{upper: 6, category: "Essential"},
		{upper: 14, category: "Athletic"},
		{upper: 18, category: "Fitness"},
		{upper: 25, category: "Average"},
		{upper: math.Inf(1), category: "Above Average"},
	},
	"female": {
		{upper: 14, category: "Essential"},
		{upper: 21, category: "Athletic"},
		{upper: 25, category: "Fitness"},
		{upper: 32, category: "Average"},
		{upper: math.Inf(1), category: "Above Average"},
	},
}

// lookupBand returns the first band whose upper bound is above v.
func lookupBand(bands []band, v float64) band {
	for _, b := range bands {
		if v < b.upper {
			return b
		}
	}
	return bands[len(bands)-1]
}

/* ─── Rounding ───────────────────────────────────────────────────────── */

// roundInt rounds half to even, which is how the stats numbers have always been
// rounded (1848.75 → 1849, 2.5 → 2).
func roundInt(x float64) int {
	return int(math.RoundToEven(x))
}

// roundTo rounds x to the given number of decimal places, half to even.
func roundTo(x float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.RoundToEven(x*p) / p
}

/* ─── BMI / BMR / TDEE ───────────────────────────────────────────────── */

// computeBMI returns weight / height(m)² rounded to one decimal.
func computeBMI(weightKG, heightCM float64) float64 {
	heightM := heightCM / 100
	return roundTo(weightKG/(heightM*heightM), 1)
}

// bmiBandFor maps a BMI to its category and display color.
func bmiBandFor(bmi float64) (category, color string) {
	b := lookupBand(bmiBands, bmi)
	return b.category, b.color
}

// computeBMR uses Mifflin-St Jeor: +5 for male, -161 otherwise.
func computeBMR(weightKG, heightCM float64, age int, gender string) int {
	bmr := 10*weightKG + 6.25*heightCM - 5*float64(age)
	if gender == "male" {
		bmr += 5
	} else {
		bmr -= 161
	}
	return roundInt(bmr)
}

// computeTDEE scales an already-rounded BMR by the sedentary multiplier.
func computeTDEE(bmr int) int {
	return roundInt(float64(bmr) * sedentaryMultiplier)
}

/* ─── Body composition (US Navy method) ──────────────────────────────── */

// bodyComposition is the response shape for POST /api/body-composition.
type bodyComposition struct {
	BodyFat  float64 `json:"body_fat"`
	Category string  `json:"category"`
	LeanMass float64 `json:"lean_mass"`
	FatMass  float64 `json:"fat_mass"`
}

// navyBodyFat estimates body-fat percentage from circumferences in cm. The hip
// measurement only matters for the female formula; a missing hip counts as 0.
// Returns errValidation when the log argument would not be positive.
// The result is rounded to one decimal and clamped to [2, 60].
func navyBodyFat(gender string, heightCM, waist, neck float64, hip *float64) (float64, error) {
	if heightCM <= 0 {
		return 0, fmt.Errorf("%w: height must be positive", errValidation)
	}

	var bf float64
	if gender == "male" {
		if waist-neck <= 0 {
			return 0, fmt.Errorf("%w: waist must be larger than neck", errValidation)
		}
		bf = 86.010*math.Log10(waist-neck) - 70.041*math.Log10(heightCM) + 36.76
	} else {
		h := 0.0
		if hip != nil {
			h = *hip
		}
		if waist+h-neck <= 0 {
			return 0, fmt.Errorf("%w: waist plus hip must be larger than neck", errValidation)
		}
		bf = 163.205*math.Log10(waist+h-neck) - 97.684*math.Log10(heightCM) - 78.387
	}

	return math.Max(2, math.Min(roundTo(bf, 1), 60)), nil
}

// bodyFatCategory picks the gender-specific band for a body-fat percentage.
func bodyFatCategory(gender string, bf float64) string {
	bands, ok := bodyFatBands[gender]
	if !ok {
		bands = bodyFatBands["female"]
	}
	return lookupBand(bands, bf).category
}

// computeBodyComposition combines the Navy estimate with the profile's current
// weight to split lean and fat mass.
func computeBodyComposition(p profile, waist, neck float64, hip *float64) (bodyComposition, error) {
	bf, err := navyBodyFat(p.Gender, p.HeightCM, waist, neck, hip)
	if err != nil {
		return bodyComposition{}, err
	}
	return bodyComposition{
		BodyFat:  bf,
		Category: bodyFatCategory(p.Gender, bf),
		LeanMass: roundTo(p.Weight*(1-bf/100), 1),
		FatMass:  roundTo(p.Weight*(bf/100), 1),
	}, nil
}
