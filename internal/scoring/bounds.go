package scoring

import "math"

type MetricBounds struct {
	Min float64
	Max float64
}

// metricBounds is versioned with the schema; widening a range is a data
// migration concern, not a scoring one.
var metricBounds = map[string]MetricBounds{
	MetricMinutes:            {Min: 0, Max: 300},
	MetricCalories:           {Min: 0, Max: 3000},
	MetricSteps:              {Min: 0, Max: 50000},
	MetricWorkouts:           {Min: 0, Max: 10},
	MetricWorkoutsWeekly:     {Min: 0, Max: 21},
	MetricSleepHours:         {Min: 0, Max: 14},
	MetricCookedMealPct:      {Min: 0, Max: 100},
	MetricHealthiness:        {Min: 1, Max: 10},
	MetricProteinGrams:       {Min: 0, Max: 400},
	MetricWaterOunces:        {Min: 0, Max: 256},
	MetricPages:              {Min: 0, Max: 500},
	MetricPagesWeekly:        {Min: 0, Max: 3500},
	MetricCallsFriends:       {Min: 0, Max: 10},
	MetricCallsFamily:        {Min: 0, Max: 10},
	MetricSocialEvents:       {Min: 0, Max: 5},
	MetricCallsFriendsWeekly: {Min: 0, Max: 21},
	MetricCallsFamilyWeekly:  {Min: 0, Max: 21},
	MetricSocialEventsWeekly: {Min: 0, Max: 14},
}

func BoundsFor(metric string) (MetricBounds, bool) {
	b, ok := metricBounds[metric]
	return b, ok
}

// Clamp limits value to the metric's bounds. Unknown metrics pass through.
func Clamp(metric string, value float64) float64 {
	b, ok := metricBounds[metric]
	if !ok {
		return value
	}
	return math.Min(math.Max(value, b.Min), b.Max)
}
