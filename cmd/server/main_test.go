package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/jack3sommer3-blip/enkrateia-sub000/internal/scoring"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommandTree(t *testing.T) {
	root := newRootCmd()
	for _, name := range []string{"serve", "migrate", "score"} {
		cmd, _, err := root.Find([]string{name})
		require.NoError(t, err)
		assert.Equal(t, name, cmd.Name())
	}
	assert.NotNil(t, root.Flags().Lookup("in-memory"), "bare invocation accepts serve flags")
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestScoreCommand(t *testing.T) {
	dir := t.TempDir()
	day := writeFile(t, dir, "day.json", `{"sleep": {"hours": "6"}, "diet": {"cookedMeals": 2, "healthiness": 7}}`)
	goals := writeFile(t, dir, "goals.yaml", `
enabledCategories: [sleep, diet]
categories:
  sleep:
    enabled: [hours]
    targets:
      hours: 8
`)

	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"score", "--date", "2026-02-11", "--day", day, "--goals", goals, "--drink", "3:1"})
	require.NoError(t, root.Execute())

	var score scoring.DayScore
	require.NoError(t, json.Unmarshal(out.Bytes(), &score))
	assert.InDelta(t, 18.75, score.SleepScore, 1e-9)
	assert.Equal(t, 3.0, score.DietPenaltyTotal)
	assert.InDelta(t, 97, score.DietScoreFinal100, 1e-9)
	assert.Equal(t, 0.0, score.WorkoutScore)
}

func TestScoreCommand_BadDrink(t *testing.T) {
	dir := t.TempDir()
	day := writeFile(t, dir, "day.json", `{}`)

	root := newRootCmd()
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"score", "--date", "2026-02-11", "--day", day, "--drink", "4:1"})
	assert.Error(t, root.Execute())
}

func TestScoreCommand_StrictReportsNonFinite(t *testing.T) {
	dir := t.TempDir()
	// Two huge calorie entries overflow to +Inf when summed.
	day := writeFile(t, dir, "day.json", `{"exercise": {"workouts": [{"calories": "1e308"}, {"calories": "1e308"}]}}`)

	root := newRootCmd()
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs([]string{"score", "--date", "2026-02-11", "--day", day, "--strict"})
	require.NoError(t, root.Execute())
	assert.Contains(t, errOut.String(), "non-finite actual exercise.calories")
}
