package main

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func weeklyWeightLogs() []weightLogEntry {
	return []weightLogEntry{
		{Weight: 92.0, Date: day("2026-01-15")},
		{Weight: 91.2, Date: day("2026-01-22")},
		{Weight: 90.5, Date: day("2026-01-29")},
		{Weight: 90.0, Date: day("2026-02-05")},
		{Weight: 89.5, Date: day("2026-02-12")},
		{Weight: 89.0, Date: day("2026-02-19")},
	}
}

func TestComputeProjection_Summary(t *testing.T) {
	wp := computeProjection(testProfile(), 2219, weeklyWeightLogs())

	require.Equal(t, 10.0, wp.WeightToLose)
	require.Equal(t, 419, wp.PlannedDailyDeficit)
	require.InDelta(t, 0.3809, wp.WeeklyLoss, 0.0001)
	require.Equal(t, 26, wp.WeeksToGoal)
	require.Equal(t, 182, wp.DaysToGoal)
	// With +300 kcal/day the goal takes 15 weeks: 182 - 105.
	require.Equal(t, 77, wp.GymDaysSaved)
}

func TestComputeProjection_Points(t *testing.T) {
	wp := computeProjection(testProfile(), 2219, weeklyWeightLogs())

	require.Len(t, wp.Points, projectionWeeks)

	wantBMI := []float64{30.0, 29.8, 29.6, 29.4, 29.2, 29.1}
	for i, pt := range wp.Points[:6] {
		require.Equal(t, i+1, pt.Week)
		require.NotNil(t, pt.Actual)
		require.Nil(t, pt.Projected)
		require.NotNil(t, pt.BMIActual)
		require.Equal(t, wantBMI[i], *pt.BMIActual)
	}
	require.Equal(t, 92.0, *wp.Points[0].Actual)

	first := wp.Points[6]
	require.Equal(t, 7, first.Week)
	require.Nil(t, first.Actual)
	require.Equal(t, 89.6, *first.Projected)
	require.Equal(t, 29.3, *first.BMIProjected)

	last := wp.Points[len(wp.Points)-1]
	require.Equal(t, 24, last.Week)
	require.Equal(t, 83.1, *last.Projected)
	require.Equal(t, 27.1, *last.BMIProjected)
}

// TestComputeProjection_KeepsLastSixLogs checks that only the most recent logs
// become actual points.
func TestComputeProjection_KeepsLastSixLogs(t *testing.T) {
	logs := append([]weightLogEntry{
		{Weight: 95.0, Date: day("2026-01-01")},
		{Weight: 94.0, Date: day("2026-01-08")},
	}, weeklyWeightLogs()...)

	wp := computeProjection(testProfile(), 2219, logs)

	require.Len(t, wp.Points, projectionWeeks)
	require.Equal(t, 92.0, *wp.Points[0].Actual)
	require.Equal(t, 89.0, *wp.Points[5].Actual)
}

func TestComputeProjection_NeverBelowGoal(t *testing.T) {
	p := testProfile()
	p.Weight = 81
	wp := computeProjection(p, 2219, nil)

	for _, pt := range wp.Points {
		require.NotNil(t, pt.Projected)
		require.GreaterOrEqual(t, *pt.Projected, p.GoalKG)
	}
	require.Equal(t, 80.0, *wp.Points[len(wp.Points)-1].Projected)
}

// TestComputeProjection_NoDeficit covers a calorie target at or above TDEE:
// nothing is lost, so the line stays flat and there is no time to goal.
func TestComputeProjection_NoDeficit(t *testing.T) {
	p := testProfile()
	p.CalTarget = 2500
	wp := computeProjection(p, 2219, nil)

	require.Equal(t, 0, wp.PlannedDailyDeficit)
	require.Equal(t, 0.0, wp.WeeklyLoss)
	require.Equal(t, 0, wp.WeeksToGoal)
	require.Equal(t, 0, wp.DaysToGoal)
	require.Equal(t, 0, wp.GymDaysSaved)
	for _, pt := range wp.Points {
		require.Equal(t, 90.0, *pt.Projected)
	}
}

func TestComputeProjection_AtGoal(t *testing.T) {
	p := testProfile()
	p.Weight = 78
	wp := computeProjection(p, 2219, nil)

	require.Equal(t, 0.0, wp.WeightToLose)
	require.Equal(t, 0, wp.WeeksToGoal)
	require.Equal(t, 0, wp.GymDaysSaved)
}
