package scoring

import "math"

// Actuals maps metric keys to the measured value for one category.
type Actuals map[string]float64

// CategoryScore returns the unweighted mean of min(actual/target, 1) over
// the category's enabled metrics. Metrics without a positive finite target
// are left out of the mean entirely.
func CategoryScore(actuals Actuals, goal, defaults CategoryGoal) float64 {
	enabled := goal.Enabled
	if len(enabled) == 0 {
		enabled = defaults.Enabled
	}
	if len(enabled) == 0 {
		return 0
	}

	targets := make(map[string]float64, len(defaults.Targets)+len(goal.Targets))
	for k, v := range defaults.Targets {
		targets[k] = v
	}
	for k, v := range goal.Targets {
		targets[k] = v
	}

	var sum float64
	counted := 0
	for _, metric := range enabled {
		target, ok := targets[metric]
		if !ok || math.IsNaN(target) || math.IsInf(target, 0) || target <= 0 {
			continue
		}
		counted++
		sum += math.Min(sanitize(actuals[metric])/target, 1)
	}
	if counted == 0 {
		return 0
	}
	return sum / float64(counted)
}

func sanitize(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
