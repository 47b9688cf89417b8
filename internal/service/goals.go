package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jack3sommer3-blip/enkrateia-sub000/internal/repo"
	"github.com/jack3sommer3-blip/enkrateia-sub000/internal/scoring"
)

// GoalConfig reads and normalizes the user's goals; users who never saved
// any get the defaults.
func (s *Service) GoalConfig(ctx context.Context, userID string) (scoring.GoalConfig, error) {
	row, err := s.Store.GetGoalConfig(ctx, userID)
	if errors.Is(err, repo.ErrNotFound) {
		return scoring.DefaultGoalConfig(), nil
	}
	if err != nil {
		return scoring.GoalConfig{}, fmt.Errorf("get goal config: %w", err)
	}
	cfg, err := scoring.NormalizeGoalConfig(row.Goals, row.EnabledCategories, s.Scoring)
	if err != nil {
		return scoring.GoalConfig{}, fmt.Errorf("normalize stored goals: %w", err)
	}
	return cfg, nil
}

// SaveGoalConfig normalizes a raw payload in any supported layout and
// stores the canonical form.
func (s *Service) SaveGoalConfig(ctx context.Context, userID string, raw json.RawMessage) (scoring.GoalConfig, error) {
	cfg, err := scoring.NormalizeGoalConfig(raw, nil, s.Scoring)
	if err != nil {
		return scoring.GoalConfig{}, err
	}
	return cfg, s.storeGoalConfig(ctx, userID, cfg)
}

func (s *Service) storeGoalConfig(ctx context.Context, userID string, cfg scoring.GoalConfig) error {
	goals, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encode goals: %w", err)
	}
	if err := s.Store.UpsertGoalConfig(ctx, userID, goals, cfg.EnabledCategories); err != nil {
		return fmt.Errorf("save goal config: %w", err)
	}
	return nil
}

func (s *Service) Presets() ([]scoring.GoalPreset, error) {
	return scoring.Presets()
}

func (s *Service) ApplyPreset(ctx context.Context, userID, presetID string) (scoring.GoalConfig, error) {
	preset, ok := scoring.PresetByID(presetID)
	if !ok {
		return scoring.GoalConfig{}, fmt.Errorf("%w: %q", ErrUnknownPreset, presetID)
	}
	return s.updateGoals(ctx, userID, func(cfg scoring.GoalConfig) scoring.GoalConfig {
		return scoring.ApplyPreset(cfg, preset)
	})
}

func (s *Service) ClearCategoryMetrics(ctx context.Context, userID, category string) (scoring.GoalConfig, error) {
	if !scoring.IsCategory(category) {
		return scoring.GoalConfig{}, fmt.Errorf("%w: unknown category %q", ErrValidation, category)
	}
	return s.updateGoals(ctx, userID, func(cfg scoring.GoalConfig) scoring.GoalConfig {
		return scoring.ClearCategoryMetrics(cfg, category)
	})
}

func (s *Service) SetCategoryMetric(ctx context.Context, userID, category, metric string, enabled bool, target *float64) (scoring.GoalConfig, error) {
	if !scoring.IsCategory(category) {
		return scoring.GoalConfig{}, fmt.Errorf("%w: unknown category %q", ErrValidation, category)
	}
	if metric == "" {
		return scoring.GoalConfig{}, fmt.Errorf("%w: metric required", ErrValidation)
	}
	return s.updateGoals(ctx, userID, func(cfg scoring.GoalConfig) scoring.GoalConfig {
		return scoring.SetCategoryMetric(cfg, category, metric, enabled, target)
	})
}

func (s *Service) updateGoals(ctx context.Context, userID string, edit func(scoring.GoalConfig) scoring.GoalConfig) (scoring.GoalConfig, error) {
	unlock := s.days.Lock("goals|" + userID)
	defer unlock()

	cfg, err := s.GoalConfig(ctx, userID)
	if err != nil {
		return scoring.GoalConfig{}, err
	}
	cfg = edit(cfg)
	return cfg, s.storeGoalConfig(ctx, userID, cfg)
}
