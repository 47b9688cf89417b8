package scoring

import "slices"

const (
	CategoryExercise  = "exercise"
	CategorySleep     = "sleep"
	CategoryDiet      = "diet"
	CategoryReading   = "reading"
	CategoryCommunity = "community"
)

const (
	MetricMinutes        = "minutes"
	MetricCalories       = "calories"
	MetricSteps          = "steps"
	MetricWorkouts       = "workouts"
	MetricWorkoutsWeekly = "workouts_logged_weekly"

	MetricSleepHours = "hours"

	MetricCookedMealPct = "cooked_meal_pct"
	MetricHealthiness   = "healthiness"
	MetricProteinGrams  = "protein_g"
	MetricWaterOunces   = "water_oz"

	MetricPages       = "pages"
	MetricPagesWeekly = "pages_weekly"

	MetricCallsFriends       = "calls_friends"
	MetricCallsFamily        = "calls_family"
	MetricSocialEvents       = "social_events"
	MetricCallsFriendsWeekly = "calls_friends_weekly"
	MetricCallsFamilyWeekly  = "calls_family_weekly"
	MetricSocialEventsWeekly = "social_events_weekly"

	legacyMetricCallsWeekly = "calls_weekly"
	legacyCategoryKnowledge = "knowledge"
)

const (
	PresetDefault = "default"
	PresetCustom  = "custom"
)

// Categories lists every category in display order.
var Categories = []string{CategoryExercise, CategorySleep, CategoryDiet, CategoryReading, CategoryCommunity}

type CategoryGoal struct {
	Enabled []string           `json:"enabled" yaml:"enabled"`
	Targets map[string]float64 `json:"targets" yaml:"targets"`
}

type GoalConfig struct {
	EnabledCategories []string                `json:"enabledCategories" yaml:"enabledCategories"`
	Categories        map[string]CategoryGoal `json:"categories" yaml:"categories"`
	PresetID          string                  `json:"presetId" yaml:"presetId"`
}

func (g CategoryGoal) Clone() CategoryGoal {
	out := CategoryGoal{
		Enabled: make([]string, len(g.Enabled)),
		Targets: make(map[string]float64, len(g.Targets)),
	}
	copy(out.Enabled, g.Enabled)
	for k, v := range g.Targets {
		out.Targets[k] = v
	}
	return out
}

func (c GoalConfig) Clone() GoalConfig {
	out := GoalConfig{
		EnabledCategories: make([]string, len(c.EnabledCategories)),
		Categories:        make(map[string]CategoryGoal, len(c.Categories)),
		PresetID:          c.PresetID,
	}
	copy(out.EnabledCategories, c.EnabledCategories)
	for k, v := range c.Categories {
		out.Categories[k] = v.Clone()
	}
	return out
}

func (c GoalConfig) CategoryEnabled(category string) bool {
	return slices.Contains(c.EnabledCategories, category)
}

func IsCategory(key string) bool {
	return slices.Contains(Categories, key)
}

// defaultGoals is never handed out directly; read it through
// DefaultGoalConfig or DefaultCategoryGoal.
var defaultGoals = GoalConfig{
	EnabledCategories: []string{CategoryExercise, CategorySleep, CategoryDiet, CategoryReading},
	PresetID:          PresetDefault,
	Categories: map[string]CategoryGoal{
		CategoryExercise: {
			Enabled: []string{MetricMinutes},
			Targets: map[string]float64{
				MetricMinutes:        30,
				MetricCalories:       300,
				MetricSteps:          8000,
				MetricWorkouts:       1,
				MetricWorkoutsWeekly: 4,
			},
		},
		CategorySleep: {
			Enabled: []string{MetricSleepHours},
			Targets: map[string]float64{MetricSleepHours: 8},
		},
		CategoryDiet: {
			Enabled: []string{MetricCookedMealPct, MetricHealthiness},
			Targets: map[string]float64{
				MetricCookedMealPct: 70,
				MetricHealthiness:   7,
				MetricProteinGrams:  120,
				MetricWaterOunces:   64,
			},
		},
		CategoryReading: {
			Enabled: []string{MetricPages},
			Targets: map[string]float64{
				MetricPages:       20,
				MetricPagesWeekly: 140,
			},
		},
		CategoryCommunity: {
			Enabled: []string{MetricCallsFriendsWeekly, MetricSocialEventsWeekly},
			Targets: map[string]float64{
				MetricCallsFriends:       1,
				MetricCallsFamily:        1,
				MetricSocialEvents:       1,
				MetricCallsFriendsWeekly: 2,
				MetricCallsFamilyWeekly:  2,
				MetricSocialEventsWeekly: 1,
			},
		},
	},
}

// DefaultGoalConfig returns a fresh deep copy of the built-in goals.
func DefaultGoalConfig() GoalConfig {
	return defaultGoals.Clone()
}

func DefaultCategoryGoal(category string) CategoryGoal {
	g, ok := defaultGoals.Categories[category]
	if !ok {
		return CategoryGoal{Enabled: []string{}, Targets: map[string]float64{}}
	}
	return g.Clone()
}

func DefaultEnabledCategories() []string {
	return slices.Clone(defaultGoals.EnabledCategories)
}
