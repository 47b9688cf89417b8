package scoring

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"slices"
	"strings"
)

var ErrDeprecatedCategory = errors.New("deprecated category key")

// Options controls validation strictness. StrictValidation turns caller
// mistakes (renamed category keys, NaN actuals) into errors or logged
// notices instead of silent recovery.
type Options struct {
	StrictValidation bool
	Logf             func(format string, args ...any)
}

func (o Options) logf(format string, args ...any) {
	if o.Logf != nil {
		o.Logf(format, args...)
	}
}

// goalShape extracts the per-category goal map from one historical layout
// of the persisted payload.
type goalShape struct {
	name    string
	extract func(raw map[string]any) (map[string]any, bool)
}

// goalShapes is tried in order; the first shape that matches wins.
var goalShapes = []goalShape{
	{name: "categories", extract: categoriesField},
	{name: "goals", extract: goalsField},
	{name: "bare", extract: func(raw map[string]any) (map[string]any, bool) { return raw, true }},
}

func categoriesField(raw map[string]any) (map[string]any, bool) {
	m, ok := raw["categories"].(map[string]any)
	return m, ok
}

func goalsField(raw map[string]any) (map[string]any, bool) {
	m, ok := raw["goals"].(map[string]any)
	if !ok {
		return nil, false
	}
	if nested, ok := categoriesField(m); ok {
		return nested, true
	}
	return m, true
}

// NormalizeGoalConfig turns any persisted or user-supplied goal payload into
// a complete, clamped GoalConfig. enabledOverride is used only when the
// payload carries no enabled category list of its own; pass nil for none.
// The only error is ErrDeprecatedCategory, and only under StrictValidation.
func NormalizeGoalConfig(raw any, enabledOverride []string, opts Options) (GoalConfig, error) {
	input := asMap(raw)

	perCategory := map[string]any{}
	for _, shape := range goalShapes {
		if m, ok := shape.extract(input); ok {
			perCategory = m
			break
		}
	}

	out := GoalConfig{Categories: make(map[string]CategoryGoal, len(Categories))}
	for _, category := range Categories {
		out.Categories[category] = normalizeCategory(category, perCategory[category])
	}

	meta := metadataSources(input)
	enabled, err := resolveEnabledCategories(meta, enabledOverride, opts)
	if err != nil {
		return GoalConfig{}, err
	}
	out.EnabledCategories = enabled
	out.PresetID = resolvePresetID(meta)
	return out, nil
}

// Normalize re-normalizes an already typed config. It never fails.
func Normalize(cfg GoalConfig) GoalConfig {
	out, _ := NormalizeGoalConfig(cfg, nil, Options{})
	return out
}

func normalizeCategory(category string, raw any) CategoryGoal {
	out := DefaultCategoryGoal(category)
	m, ok := raw.(map[string]any)
	if !ok {
		return out
	}
	if list, ok := stringList(m["enabled"]); ok {
		if category == CategoryCommunity {
			for i, key := range list {
				if key == legacyMetricCallsWeekly {
					list[i] = MetricCallsFriendsWeekly
				}
			}
		}
		out.Enabled = dedupe(list)
	}
	targets, _ := m["targets"].(map[string]any)
	for key, v := range targets {
		f, ok := finiteNumber(v)
		if !ok {
			continue
		}
		out.Targets[key] = Clamp(key, f)
	}
	if category == CategoryCommunity {
		if legacy, ok := out.Targets[legacyMetricCallsWeekly]; ok {
			if _, explicit := finiteNumber(targets[MetricCallsFriendsWeekly]); !explicit {
				out.Targets[MetricCallsFriendsWeekly] = Clamp(MetricCallsFriendsWeekly, legacy)
			}
			delete(out.Targets, legacyMetricCallsWeekly)
		}
	}
	return out
}

// metadataSources returns the maps that may carry enabledCategories and
// presetId: the payload itself, then a nested goals object.
func metadataSources(input map[string]any) []map[string]any {
	sources := []map[string]any{input}
	if nested, ok := input["goals"].(map[string]any); ok {
		sources = append(sources, nested)
	}
	return sources
}

func resolveEnabledCategories(meta []map[string]any, override []string, opts Options) ([]string, error) {
	var chosen []string
	found := false
	for _, m := range meta {
		for _, field := range []string{"enabledCategories", "enabled_categories"} {
			if list, ok := stringList(m[field]); ok {
				chosen, found = list, true
				break
			}
		}
		if found {
			break
		}
	}
	if !found && override != nil {
		chosen = slices.Clone(override)
	}

	if opts.StrictValidation && slices.Contains(chosen, legacyCategoryKnowledge) {
		return nil, fmt.Errorf("%w: %q was renamed to %q", ErrDeprecatedCategory, legacyCategoryKnowledge, CategoryReading)
	}

	enabled := make([]string, 0, len(chosen))
	for _, key := range dedupe(chosen) {
		if IsCategory(key) {
			enabled = append(enabled, key)
		}
	}
	if len(enabled) == 0 {
		return DefaultEnabledCategories(), nil
	}
	return enabled, nil
}

func resolvePresetID(meta []map[string]any) string {
	for _, m := range meta {
		for _, field := range []string{"presetId", "preset"} {
			if s, ok := m[field].(string); ok && strings.TrimSpace(s) != "" {
				return strings.TrimSpace(s)
			}
		}
	}
	return PresetDefault
}

func asMap(raw any) map[string]any {
	switch v := raw.(type) {
	case nil:
		return map[string]any{}
	case map[string]any:
		return v
	case GoalConfig:
		return goalConfigToMap(v)
	case *GoalConfig:
		if v == nil {
			return map[string]any{}
		}
		return goalConfigToMap(*v)
	case json.RawMessage:
		return decodeMap(v)
	case []byte:
		return decodeMap(v)
	case string:
		return decodeMap([]byte(v))
	}
	return map[string]any{}
}

func decodeMap(b []byte) map[string]any {
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil || m == nil {
		return map[string]any{}
	}
	return m
}

// goalConfigToMap renders a typed config in the "categories" shape. Nil
// slices are omitted so they fall back to defaults, while empty slices are
// kept as explicit empty lists.
func goalConfigToMap(c GoalConfig) map[string]any {
	categories := make(map[string]any, len(c.Categories))
	for key, goal := range c.Categories {
		entry := map[string]any{}
		if goal.Enabled != nil {
			entry["enabled"] = toAnyList(goal.Enabled)
		}
		if goal.Targets != nil {
			targets := make(map[string]any, len(goal.Targets))
			for k, v := range goal.Targets {
				targets[k] = v
			}
			entry["targets"] = targets
		}
		categories[key] = entry
	}
	out := map[string]any{"categories": categories}
	if c.EnabledCategories != nil {
		out["enabledCategories"] = toAnyList(c.EnabledCategories)
	}
	if c.PresetID != "" {
		out["presetId"] = c.PresetID
	}
	return out
}

func toAnyList(in []string) []any {
	out := make([]any, len(in))
	for i, s := range in {
		out[i] = s
	}
	return out
}

func stringList(v any) ([]string, bool) {
	switch list := v.(type) {
	case []string:
		return cleanStrings(list), true
	case []any:
		strs := make([]string, 0, len(list))
		for _, item := range list {
			if s, ok := item.(string); ok {
				strs = append(strs, s)
			}
		}
		return cleanStrings(strs), true
	}
	return nil, false
}

func cleanStrings(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func dedupe(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

func finiteNumber(v any) (float64, bool) {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int32:
		f = float64(n)
	case int64:
		f = float64(n)
	case json.Number:
		parsed, err := n.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
