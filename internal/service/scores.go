package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/jack3sommer3-blip/enkrateia-sub000/internal/models"
	"github.com/jack3sommer3-blip/enkrateia-sub000/internal/repo"
	"github.com/jack3sommer3-blip/enkrateia-sub000/internal/scoring"

	"golang.org/x/sync/errgroup"
)

// ErrWeeklyHistoryUnavailable means the week's history could not be read.
// The score returned with it counts only the day itself and was not saved.
var ErrWeeklyHistoryUnavailable = errors.New("weekly history unavailable")

const (
	BadgeFirstLog   = "first_log"
	BadgePerfectDay = "perfect_day"

	maxNoteLength = 500
)

func validateDate(date string) error {
	if _, err := scoring.ParseDate(date); err != nil {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	return nil
}

// SaveDailyLog stores the raw log for date and rescores the day.
func (s *Service) SaveDailyLog(ctx context.Context, userID, date string, data json.RawMessage) (scoring.DayScore, error) {
	if err := validateDate(date); err != nil {
		return scoring.DayScore{}, err
	}
	var day scoring.DayData
	if err := json.Unmarshal(data, &day); err != nil {
		return scoring.DayScore{}, fmt.Errorf("%w: invalid log payload", ErrValidation)
	}

	// Write and rescore under one lock: the saved score must match the stored row.
	unlock := s.days.Lock(dayKey(userID, date))
	defer unlock()

	if _, err := s.Store.UpsertDailyLog(ctx, userID, date, data); err != nil {
		return scoring.DayScore{}, fmt.Errorf("save daily log: %w", err)
	}
	s.award(ctx, userID, BadgeFirstLog, date)
	return s.recompute(ctx, userID, date, &day)
}

func dayKey(userID, date string) string {
	return userID + "|" + date
}

func (s *Service) DailyLog(ctx context.Context, userID, date string) (models.DailyLog, error) {
	if err := validateDate(date); err != nil {
		return models.DailyLog{}, err
	}
	return s.Store.GetDailyLog(ctx, userID, date)
}

func (s *Service) DailyLogs(ctx context.Context, userID, start, end string) ([]models.DailyLog, error) {
	if err := validateDate(start); err != nil {
		return nil, err
	}
	if err := validateDate(end); err != nil {
		return nil, err
	}
	if start > end {
		return nil, fmt.Errorf("%w: start after end", ErrValidation)
	}
	return s.Store.ListDailyLogs(ctx, userID, start, end)
}

func (s *Service) AddDrinkingEvent(ctx context.Context, userID string, ev models.DrinkingEvent) (string, scoring.DayScore, error) {
	if err := validateDate(ev.Date); err != nil {
		return "", scoring.DayScore{}, err
	}
	if ev.Tier < 1 || ev.Tier > 3 {
		return "", scoring.DayScore{}, fmt.Errorf("%w: tier must be 1, 2 or 3", ErrValidation)
	}
	if ev.Drinks < 0 {
		return "", scoring.DayScore{}, fmt.Errorf("%w: drinks must not be negative", ErrValidation)
	}
	if ev.Note != nil {
		note := strings.TrimSpace(*ev.Note)
		if len(note) > maxNoteLength {
			return "", scoring.DayScore{}, fmt.Errorf("%w: note too long", ErrValidation)
		}
		ev.Note = &note
	}
	ev.UserID = userID
	id, err := s.Store.CreateDrinkingEvent(ctx, ev)
	if err != nil {
		return "", scoring.DayScore{}, fmt.Errorf("create drinking event: %w", err)
	}
	score, err := s.RecomputeDayScore(ctx, userID, ev.Date)
	return id, score, err
}

func (s *Service) DrinkingEvents(ctx context.Context, userID, date string) ([]models.DrinkingEvent, error) {
	if err := validateDate(date); err != nil {
		return nil, err
	}
	return s.Store.ListDrinkingEvents(ctx, userID, date)
}

func (s *Service) DeleteDrinkingEvent(ctx context.Context, userID, id string) (scoring.DayScore, error) {
	date, err := s.Store.DeleteDrinkingEvent(ctx, id, userID)
	if err != nil {
		return scoring.DayScore{}, err
	}
	return s.RecomputeDayScore(ctx, userID, date)
}

// RecomputeDayScore rescores date from the stored log, goals, drinking
// events and the rest of the week, then saves the result.
func (s *Service) RecomputeDayScore(ctx context.Context, userID, date string) (scoring.DayScore, error) {
	if err := validateDate(date); err != nil {
		return scoring.DayScore{}, err
	}
	unlock := s.days.Lock(dayKey(userID, date))
	defer unlock()
	return s.recompute(ctx, userID, date, nil)
}

// recompute must run with the (user, date) lock held. It uses today when
// the caller has just stored it; otherwise the day is taken from the week's
// history.
func (s *Service) recompute(ctx context.Context, userID, date string, today *scoring.DayData) (scoring.DayScore, error) {
	start, end, err := scoring.WeekWindow(date)
	if err != nil {
		return scoring.DayScore{}, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	var (
		cfg        scoring.GoalConfig
		events     []models.DrinkingEvent
		history    []models.DailyLog
		historyErr error
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		cfg, err = s.GoalConfig(gctx, userID)
		return err
	})
	g.Go(func() error {
		var err error
		events, err = s.Store.ListDrinkingEvents(gctx, userID, date)
		if err != nil {
			return fmt.Errorf("list drinking events: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		history, historyErr = s.Store.ListDailyLogs(gctx, userID, start, end)
		return nil
	})
	if err := g.Wait(); err != nil {
		return scoring.DayScore{}, err
	}

	logs := decodeLogs(history)
	if today == nil {
		day, err := s.dayData(ctx, userID, date, logs, historyErr)
		if err != nil {
			return scoring.DayScore{}, err
		}
		today = &day
	}

	var rest scoring.WeeklyTotals
	if historyErr == nil {
		rest, _ = scoring.AggregateWeek(date, logs)
	}
	weekly := scoring.WeeklyActuals(rest, *today)
	score := scoring.ComputeScores(*today, &cfg, toScoringEvents(events), weekly, s.Scoring)

	if historyErr != nil {
		return score, fmt.Errorf("%w: %w", ErrWeeklyHistoryUnavailable, historyErr)
	}
	if err := s.Store.SaveDayScore(ctx, userID, date, ScoreRow(score)); err != nil {
		return score, fmt.Errorf("save day score: %w", err)
	}
	if score.TotalScore >= 100 {
		s.award(ctx, userID, BadgePerfectDay, date)
	}
	return score, nil
}

func (s *Service) dayData(ctx context.Context, userID, date string, logs []scoring.DailyLog, historyErr error) (scoring.DayData, error) {
	if historyErr == nil {
		for _, l := range logs {
			if l.Date == date {
				return l.Data, nil
			}
		}
		return scoring.DayData{}, nil
	}
	row, err := s.Store.GetDailyLog(ctx, userID, date)
	if errors.Is(err, repo.ErrNotFound) {
		return scoring.DayData{}, nil
	}
	if err != nil {
		return scoring.DayData{}, fmt.Errorf("get daily log: %w", err)
	}
	return decodeDay(row), nil
}

func (s *Service) award(ctx context.Context, userID, code, date string) {
	if _, err := s.Store.AwardBadge(ctx, userID, code, date); err != nil {
		log.Printf("award badge %s for %s: %v", code, userID, err)
	}
}

func decodeDay(row models.DailyLog) scoring.DayData {
	var day scoring.DayData
	if len(row.Data) == 0 {
		return day
	}
	if err := json.Unmarshal(row.Data, &day); err != nil {
		log.Printf("daily log %s (%s) is not readable, scoring it as empty: %v", row.ID, row.Date, err)
		return scoring.DayData{}
	}
	return day
}

func decodeLogs(rows []models.DailyLog) []scoring.DailyLog {
	out := make([]scoring.DailyLog, 0, len(rows))
	for _, row := range rows {
		out = append(out, scoring.DailyLog{Date: row.Date, Data: decodeDay(row)})
	}
	return out
}

func toScoringEvents(rows []models.DrinkingEvent) []scoring.DrinkingEvent {
	out := make([]scoring.DrinkingEvent, 0, len(rows))
	for _, row := range rows {
		ev := scoring.DrinkingEvent{ID: row.ID, UserID: row.UserID, Date: row.Date, Tier: row.Tier, Drinks: row.Drinks}
		if row.Note != nil {
			ev.Note = *row.Note
		}
		out = append(out, ev)
	}
	return out
}

// ScoreRow flattens a DayScore into its persisted columns.
func ScoreRow(s scoring.DayScore) models.DayScoreRow {
	return models.DayScoreRow{
		TotalScore:        s.TotalScore,
		WorkoutScore:      s.WorkoutScore,
		SleepScore:        s.SleepScore,
		DietScore:         s.DietScore,
		ReadingScore:      s.ReadingScore,
		CommunityScore:    s.CommunityScore,
		DietScoreBase100:  s.DietScoreBase100,
		DietScoreFinal100: s.DietScoreFinal100,
		DietPenaltyTotal:  s.DietPenaltyTotal,
		DietPenaltyTier2:  s.DietPenaltyTier2,
		DietPenaltyTier3:  s.DietPenaltyTier3,
	}
}
