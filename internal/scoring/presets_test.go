package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPresets_Catalog(t *testing.T) {
	all, err := Presets()
	require.NoError(t, err)
	require.NotEmpty(t, all)
	assert.Equal(t, PresetDefault, all[0].ID)

	for _, p := range all {
		assert.NotEmpty(t, p.Name, p.ID)
		assert.Equal(t, p.ID, p.Config.PresetID)
		assert.NotEmpty(t, p.Config.EnabledCategories)
		assert.Len(t, p.Config.Categories, len(Categories))
	}

	def, ok := PresetByID(PresetDefault)
	require.True(t, ok)
	assert.Equal(t, DefaultGoalConfig().Categories, def.Config.Categories)

	_, ok = PresetByID("nope")
	assert.False(t, ok)
}

func TestPresets_ReturnsCopies(t *testing.T) {
	p, ok := PresetByID("athlete")
	require.True(t, ok)
	p.Config.Categories[CategoryExercise].Targets[MetricMinutes] = 1

	again, _ := PresetByID("athlete")
	assert.Equal(t, 60.0, again.Config.Categories[CategoryExercise].Targets[MetricMinutes])
}

func TestApplyPreset_OnlyTouchesEnabledCategories(t *testing.T) {
	current := DefaultGoalConfig()
	current.EnabledCategories = []string{CategoryExercise, CategoryReading}
	reading := current.Categories[CategoryReading]
	reading.Targets[MetricPages] = 5
	current.Categories[CategoryReading] = reading
	sleep := current.Categories[CategorySleep]
	sleep.Targets[MetricSleepHours] = 6
	current.Categories[CategorySleep] = sleep

	athlete, ok := PresetByID("athlete")
	require.True(t, ok)
	out := ApplyPreset(current, athlete)

	assert.Equal(t, []string{CategoryExercise, CategoryReading}, out.EnabledCategories)
	assert.Equal(t, "athlete", out.PresetID)
	assert.Equal(t, athlete.Config.Categories[CategoryExercise], out.Categories[CategoryExercise])
	assert.Equal(t, 6.0, out.Categories[CategorySleep].Targets[MetricSleepHours], "disabled category keeps user values")
	// athlete has no reading goals of its own beyond defaults
	assert.Equal(t, athlete.Config.Categories[CategoryReading], out.Categories[CategoryReading])
}

func TestClearCategoryMetrics_Isolated(t *testing.T) {
	cfg := mustNormalize(t, map[string]any{
		"exercise": map[string]any{"enabled": []any{"minutes"}},
		"reading":  map[string]any{"enabled": []any{"pages"}},
	}, nil)

	out := ClearCategoryMetrics(cfg, CategoryExercise)

	assert.Equal(t, []string{}, out.Categories[CategoryExercise].Enabled)
	assert.Equal(t, []string{"pages"}, out.Categories[CategoryReading].Enabled)
	assert.Equal(t, PresetCustom, out.PresetID)
	assert.Equal(t, []string{"minutes"}, cfg.Categories[CategoryExercise].Enabled, "input is not mutated")

	// Survives a normalization pass.
	assert.Equal(t, out, Normalize(out))
}

func TestSetCategoryMetric(t *testing.T) {
	target := 12000.0
	out := SetCategoryMetric(DefaultGoalConfig(), CategoryExercise, MetricSteps, true, &target)
	assert.Equal(t, []string{MetricMinutes, MetricSteps}, out.Categories[CategoryExercise].Enabled)
	assert.Equal(t, 12000.0, out.Categories[CategoryExercise].Targets[MetricSteps])
	assert.Equal(t, PresetCustom, out.PresetID)

	huge := 1e9
	out = SetCategoryMetric(out, CategoryExercise, MetricSteps, true, &huge)
	assert.Equal(t, 50000.0, out.Categories[CategoryExercise].Targets[MetricSteps])

	out = SetCategoryMetric(out, CategoryExercise, MetricMinutes, false, nil)
	assert.Equal(t, []string{MetricSteps}, out.Categories[CategoryExercise].Enabled)

	same := SetCategoryMetric(out, "knowledge", MetricPages, true, nil)
	assert.Equal(t, out, same)
}
