package scoring

import "math"

const categoryPoints = 25

type DayScore struct {
	TotalScore        float64 `json:"totalScore"`
	WorkoutScore      float64 `json:"workoutScore"`
	SleepScore        float64 `json:"sleepScore"`
	DietScore         float64 `json:"dietScore"`
	ReadingScore      float64 `json:"readingScore"`
	CommunityScore    float64 `json:"communityScore"`
	DietScoreBase100  float64 `json:"dietScoreBase100"`
	DietScoreFinal100 float64 `json:"dietScoreFinal100"`
	DietPenaltyTotal  float64 `json:"dietPenaltyTotal"`
	DietPenaltyTier2  float64 `json:"dietPenaltyTier2"`
	DietPenaltyTier3  float64 `json:"dietPenaltyTier3"`
}

// CategoryActuals derives the per-category metric values from a day's log.
// weekly must already include the day itself (see WeeklyActuals).
func CategoryActuals(day DayData, weekly WeeklyTotals) map[string]Actuals {
	return map[string]Actuals{
		CategoryExercise: {
			MetricMinutes:        day.Exercise.TotalMinutes(),
			MetricCalories:       day.Exercise.TotalCalories(),
			MetricSteps:          day.Exercise.Steps.Or(0),
			MetricWorkouts:       float64(day.Exercise.WorkoutsLogged()),
			MetricWorkoutsWeekly: weekly.Workouts,
		},
		CategorySleep: {
			MetricSleepHours: day.Sleep.TotalHours(),
		},
		CategoryDiet: {
			MetricCookedMealPct: day.Diet.CookedMealPct(),
			MetricHealthiness:   day.Diet.Healthiness.Or(0),
			MetricProteinGrams:  day.Diet.ProteinGrams.Or(0),
			MetricWaterOunces:   day.Diet.WaterOunces.Or(0),
		},
		CategoryReading: {
			MetricPages:       day.Reading.TotalPages(),
			MetricPagesWeekly: weekly.Pages,
		},
		CategoryCommunity: {
			MetricCallsFriends:       day.Community.FriendCalls.Or(0),
			MetricCallsFamily:        day.Community.FamilyCalls.Or(0),
			MetricSocialEvents:       day.Community.SocialEvents.Or(0),
			MetricCallsFriendsWeekly: weekly.FriendCalls,
			MetricCallsFamilyWeekly:  weekly.FamilyCalls,
			MetricSocialEventsWeekly: weekly.SocialEvents,
		},
	}
}

// ComputeScores scores one day. A nil cfg means the built-in defaults.
// It never fails: anything unreadable counts as zero.
func ComputeScores(day DayData, cfg *GoalConfig, events []DrinkingEvent, weekly WeeklyTotals, opts Options) DayScore {
	goals := DefaultGoalConfig()
	if cfg != nil {
		goals = Normalize(*cfg)
	}

	actuals := CategoryActuals(day, weekly)
	ratios := make(map[string]float64, len(Categories))
	for _, category := range Categories {
		values := actuals[category]
		for metric, v := range values {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				if opts.StrictValidation {
					opts.logf("scoring: non-finite actual %s.%s=%v treated as 0", category, metric, v)
				}
				values[metric] = 0
			}
		}
		ratios[category] = CategoryScore(values, goals.Categories[category], DefaultCategoryGoal(category))
	}

	penalty := AlcoholPenalty(events)
	score := DayScore{
		DietScoreBase100: ratios[CategoryDiet] * 100,
		DietPenaltyTotal: penalty.Total,
		DietPenaltyTier2: penalty.Tier2,
		DietPenaltyTier3: penalty.Tier3,
	}
	score.DietScoreFinal100 = math.Max(score.DietScoreBase100-penalty.Total, 0)
	// The penalty reaches the total only through the diet ratio.
	ratios[CategoryDiet] = score.DietScoreFinal100 / 100

	points := func(category string, value float64) float64 {
		if !goals.CategoryEnabled(category) {
			return 0
		}
		return value
	}
	score.WorkoutScore = points(CategoryExercise, ratios[CategoryExercise]*categoryPoints)
	score.SleepScore = points(CategorySleep, ratios[CategorySleep]*categoryPoints)
	score.DietScore = points(CategoryDiet, score.DietScoreFinal100/100*categoryPoints)
	score.ReadingScore = points(CategoryReading, ratios[CategoryReading]*categoryPoints)
	score.CommunityScore = points(CategoryCommunity, ratios[CategoryCommunity]*categoryPoints)

	var sum float64
	counted := 0
	for _, category := range goals.EnabledCategories {
		sum += ratios[category]
		counted++
	}
	if counted > 0 {
		score.TotalScore = sum / float64(counted) * 100
	}
	return score
}
