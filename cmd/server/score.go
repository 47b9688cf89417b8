package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/jack3sommer3-blip/enkrateia-sub000/internal/scoring"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

type scoreOptions struct {
	date      string
	dayFile   string
	goalsFile string
	drinks    []string
	strict    bool
}

// newScoreCmd scores a single day offline, without a database or history.
func newScoreCmd() *cobra.Command {
	opts := &scoreOptions{}
	cmd := &cobra.Command{
		Use:   "score",
		Short: "Score one day's log from files",
		Example: `  enkrateia score --date 2026-02-11 --day day.json
  enkrateia score --date 2026-02-11 --day day.json --goals goals.yaml --drink 3:4`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runScore(cmd.OutOrStdout(), cmd.ErrOrStderr(), opts)
		},
	}
	cmd.Flags().StringVar(&opts.date, "date", "", "day being scored (YYYY-MM-DD)")
	cmd.Flags().StringVar(&opts.dayFile, "day", "", "daily log JSON file")
	cmd.Flags().StringVar(&opts.goalsFile, "goals", "", "goal config in YAML or JSON; defaults when empty")
	cmd.Flags().StringArrayVar(&opts.drinks, "drink", nil, "drinking event as tier:drinks, repeatable")
	cmd.Flags().BoolVar(&opts.strict, "strict", false, "reject deprecated goal keys and report unreadable inputs on stderr")
	_ = cmd.MarkFlagRequired("date")
	_ = cmd.MarkFlagRequired("day")
	return cmd
}

func runScore(out, errOut io.Writer, opts *scoreOptions) error {
	if _, err := scoring.ParseDate(opts.date); err != nil {
		return err
	}
	scoringOpts := scoring.Options{
		StrictValidation: opts.strict,
		Logf: func(format string, args ...any) {
			fmt.Fprintf(errOut, format+"\n", args...)
		},
	}

	raw, err := os.ReadFile(opts.dayFile)
	if err != nil {
		return fmt.Errorf("read day: %w", err)
	}
	var day scoring.DayData
	if err := json.Unmarshal(raw, &day); err != nil {
		return fmt.Errorf("parse day: %w", err)
	}

	cfg := scoring.DefaultGoalConfig()
	if opts.goalsFile != "" {
		cfg, err = loadGoals(opts.goalsFile, scoringOpts)
		if err != nil {
			return err
		}
	}

	events := make([]scoring.DrinkingEvent, 0, len(opts.drinks))
	for _, d := range opts.drinks {
		ev, err := parseDrink(d)
		if err != nil {
			return err
		}
		ev.Date = opts.date
		events = append(events, ev)
	}

	score := scoring.ComputeScores(day, &cfg, events, scoring.WeeklyActuals(scoring.WeeklyTotals{}, day), scoringOpts)
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(score)
}

// loadGoals reads YAML, which also covers JSON files.
func loadGoals(path string, opts scoring.Options) (scoring.GoalConfig, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return scoring.GoalConfig{}, fmt.Errorf("read goals: %w", err)
	}
	var doc map[string]any
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return scoring.GoalConfig{}, fmt.Errorf("parse goals: %w", err)
	}
	return scoring.NormalizeGoalConfig(doc, nil, opts)
}

func parseDrink(s string) (scoring.DrinkingEvent, error) {
	tier, drinks, ok := strings.Cut(s, ":")
	if !ok {
		return scoring.DrinkingEvent{}, fmt.Errorf("drink %q: want tier:drinks", s)
	}
	t, err := strconv.Atoi(strings.TrimSpace(tier))
	if err != nil || t < 1 || t > 3 {
		return scoring.DrinkingEvent{}, fmt.Errorf("drink %q: tier must be 1, 2 or 3", s)
	}
	n, err := strconv.Atoi(strings.TrimSpace(drinks))
	if err != nil || n < 0 {
		return scoring.DrinkingEvent{}, fmt.Errorf("drink %q: drinks must be a non-negative integer", s)
	}
	return scoring.DrinkingEvent{Tier: t, Drinks: n}, nil
}
