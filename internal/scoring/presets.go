package scoring

import (
	_ "embed"
	"fmt"
	"slices"
	"sync"

	"gopkg.in/yaml.v3"
)

type GoalPreset struct {
	ID          string     `yaml:"id" json:"id"`
	Name        string     `yaml:"name" json:"name"`
	Description string     `yaml:"description" json:"description"`
	Config      GoalConfig `yaml:"config" json:"config"`
}

//go:embed presets.yaml
var presetCatalog []byte

var (
	presetsOnce sync.Once
	presets     []GoalPreset
	presetsErr  error
)

func loadPresets() {
	var parsed []GoalPreset
	if err := yaml.Unmarshal(presetCatalog, &parsed); err != nil {
		presetsErr = fmt.Errorf("parse preset catalog: %w", err)
		return
	}
	for i := range parsed {
		cfg := Normalize(parsed[i].Config)
		cfg.PresetID = parsed[i].ID
		parsed[i].Config = cfg
	}
	presets = parsed
}

// Presets returns copies of the built-in presets in catalog order.
func Presets() ([]GoalPreset, error) {
	presetsOnce.Do(loadPresets)
	if presetsErr != nil {
		return nil, presetsErr
	}
	out := make([]GoalPreset, len(presets))
	for i, p := range presets {
		out[i] = p
		out[i].Config = p.Config.Clone()
	}
	return out, nil
}

func PresetByID(id string) (GoalPreset, bool) {
	all, err := Presets()
	if err != nil {
		return GoalPreset{}, false
	}
	for _, p := range all {
		if p.ID == id {
			return p, true
		}
	}
	return GoalPreset{}, false
}

// ApplyPreset copies the preset's goals into the categories the user already
// has enabled. Enabled categories themselves are left alone.
func ApplyPreset(current GoalConfig, preset GoalPreset) GoalConfig {
	out := Normalize(current)
	for _, category := range out.EnabledCategories {
		if goal, ok := preset.Config.Categories[category]; ok {
			out.Categories[category] = goal.Clone()
		}
	}
	out.PresetID = preset.ID
	return out
}

// ClearCategoryMetrics disables every metric of one category.
func ClearCategoryMetrics(cfg GoalConfig, category string) GoalConfig {
	out := Normalize(cfg)
	if !IsCategory(category) {
		return out
	}
	goal := out.Categories[category]
	goal.Enabled = []string{}
	out.Categories[category] = goal
	out.PresetID = PresetCustom
	return out
}

// SetCategoryMetric toggles one metric and, when target is non-nil, sets its
// target. The config becomes a custom setup.
func SetCategoryMetric(cfg GoalConfig, category, metric string, enabled bool, target *float64) GoalConfig {
	out := Normalize(cfg)
	if !IsCategory(category) || metric == "" {
		return out
	}
	goal := out.Categories[category]
	has := slices.Contains(goal.Enabled, metric)
	switch {
	case enabled && !has:
		goal.Enabled = append(goal.Enabled, metric)
	case !enabled && has:
		goal.Enabled = slices.DeleteFunc(goal.Enabled, func(m string) bool { return m == metric })
	}
	if target != nil {
		if f, ok := finiteNumber(*target); ok {
			goal.Targets[metric] = Clamp(metric, f)
		}
	}
	out.Categories[category] = goal
	out.PresetID = PresetCustom
	return Normalize(out)
}
