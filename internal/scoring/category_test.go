package scoring

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClamp(t *testing.T) {
	tests := []struct {
		metric string
		in     float64
		want   float64
	}{
		{MetricMinutes, 45, 45},
		{MetricMinutes, 301, 300},
		{MetricMinutes, -1, 0},
		{MetricHealthiness, 0, 1},
		{"unknown_metric", -40, -40},
	}
	for _, tt := range tests {
		t.Run(tt.metric, func(t *testing.T) {
			got := Clamp(tt.metric, tt.in)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, got, Clamp(tt.metric, got), "clamp is idempotent")
		})
	}
	for metric, b := range metricBounds {
		assert.LessOrEqual(t, b.Min, b.Max, metric)
	}
}

func TestCategoryScore(t *testing.T) {
	defaults := CategoryGoal{
		Enabled: []string{"a"},
		Targets: map[string]float64{"a": 10, "b": 20},
	}
	tests := []struct {
		name    string
		actuals Actuals
		goal    CategoryGoal
		want    float64
	}{
		{
			name:    "half of one metric",
			actuals: Actuals{"a": 5},
			goal:    CategoryGoal{Enabled: []string{"a"}},
			want:    0.5,
		},
		{
			name:    "overachieving caps at one",
			actuals: Actuals{"a": 500, "b": 10},
			goal:    CategoryGoal{Enabled: []string{"a", "b"}},
			want:    0.75,
		},
		{
			name:    "goal target overrides default",
			actuals: Actuals{"b": 10},
			goal:    CategoryGoal{Enabled: []string{"b"}, Targets: map[string]float64{"b": 40}},
			want:    0.25,
		},
		{
			name:    "empty enabled falls back to defaults",
			actuals: Actuals{"a": 10},
			goal:    CategoryGoal{Enabled: []string{}},
			want:    1,
		},
		{
			name:    "invalid targets are skipped",
			actuals: Actuals{"a": 10, "z": 3, "neg": 3},
			goal: CategoryGoal{
				Enabled: []string{"a", "z", "neg", "missing"},
				Targets: map[string]float64{"z": 0, "neg": -4},
			},
			want: 1,
		},
		{
			name:    "nothing countable",
			actuals: Actuals{"z": 3},
			goal:    CategoryGoal{Enabled: []string{"z"}, Targets: map[string]float64{"z": math.NaN()}},
			want:    0,
		},
		{
			name:    "NaN actual counts as zero",
			actuals: Actuals{"a": math.NaN(), "b": 20},
			goal:    CategoryGoal{Enabled: []string{"a", "b"}},
			want:    0.5,
		},
		{
			name:    "negative actual is not clamped",
			actuals: Actuals{"a": -5},
			goal:    CategoryGoal{Enabled: []string{"a"}},
			want:    -0.5,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, CategoryScore(tt.actuals, tt.goal, defaults), 1e-9)
		})
	}
}

func TestCategoryScore_EmptyEverywhere(t *testing.T) {
	empty := CategoryGoal{Enabled: []string{}, Targets: map[string]float64{}}
	assert.Equal(t, 0.0, CategoryScore(Actuals{"a": 1}, empty, empty))
}

func TestCategoryScore_RatioBounds(t *testing.T) {
	goal := DefaultCategoryGoal(CategoryExercise)
	goal.Enabled = []string{MetricMinutes, MetricSteps, MetricCalories}
	for _, scale := range []float64{0, 0.1, 1, 3, 1e9} {
		actuals := Actuals{MetricMinutes: 30 * scale, MetricSteps: 8000 * scale, MetricCalories: 300 * scale}
		r := CategoryScore(actuals, goal, DefaultCategoryGoal(CategoryExercise))
		assert.GreaterOrEqual(t, r, 0.0)
		assert.LessOrEqual(t, r, 1.0)
	}
}

func TestParseNumeric(t *testing.T) {
	tests := []struct {
		in      string
		absent  bool
		invalid bool
		value   float64
	}{
		{"", true, false, 0},
		{"   ", true, false, 0},
		{" 45 ", false, false, 45},
		{"12.75", false, false, 12.75},
		{"abc", false, true, 0},
		{"NaN", false, true, 0},
		{"Inf", false, true, 0},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			n := ParseNumeric(tt.in)
			assert.Equal(t, tt.absent, n.IsAbsent())
			assert.Equal(t, tt.invalid, n.IsInvalid())
			assert.Equal(t, tt.value, n.Or(0))
		})
	}
	assert.Equal(t, 12, ParseNumeric("12.9").Int())
	assert.Equal(t, -3, ParseNumeric("-3.7").Int())
	assert.Equal(t, 0, Invalid().Int())
}
