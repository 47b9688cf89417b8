package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/jack3sommer3-blip/enkrateia-sub000/internal/auth"
	"github.com/jack3sommer3-blip/enkrateia-sub000/internal/memstore"
	"github.com/jack3sommer3-blip/enkrateia-sub000/internal/models"
	"github.com/jack3sommer3-blip/enkrateia-sub000/internal/repo"
	"github.com/jack3sommer3-blip/enkrateia-sub000/internal/scoring"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const sampleDay = `{
	"exercise": {"workouts": [{"type": "walk", "minutes": "10", "seconds": "300"}], "steps": "4000"},
	"sleep": {"hours": "7", "minutes": "60"},
	"diet": {"cookedMeals": 7, "restaurantMeals": "3", "healthiness": "7"},
	"reading": {"pages": "10"}
}`

// flakyHistory fails every week read.
type flakyHistory struct {
	*memstore.Store
	err error
}

func (f flakyHistory) ListDailyLogs(context.Context, string, string, string) ([]models.DailyLog, error) {
	return nil, f.err
}

// stallingStore parks the first upsert whose payload contains marker until
// release is closed.
type stallingStore struct {
	*memstore.Store
	marker  string
	parked  chan struct{}
	release chan struct{}
	once    sync.Once
}

func (s *stallingStore) UpsertDailyLog(ctx context.Context, userID, date string, data json.RawMessage) (string, error) {
	id, err := s.Store.UpsertDailyLog(ctx, userID, date, data)
	if strings.Contains(string(data), s.marker) {
		s.once.Do(func() {
			close(s.parked)
			<-s.release
		})
	}
	return id, err
}

func newTestService(t *testing.T, store Store) *Service {
	t.Helper()
	m := auth.NewManager("test-secret")
	m.Cost = bcrypt.MinCost
	return New(store, m, false)
}

func registerUser(t *testing.T, svc *Service, email string) string {
	t.Helper()
	id, err := svc.Register(context.Background(), email, "", "password")
	require.NoError(t, err)
	return id
}

func TestRegisterAndLogin(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, memstore.New())

	userID, err := svc.Register(ctx, "  Ann@Example.com ", "", "hunter2")
	require.NoError(t, err)

	me, err := svc.Me(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, "ann@example.com", me.Email)
	assert.Equal(t, "ann", me.DisplayName)

	access, refresh, err := svc.Login(ctx, "ann@example.com", "hunter2")
	require.NoError(t, err)
	assert.NotEmpty(t, refresh)
	claims, err := svc.Auth.ParseToken(access)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)

	_, _, err = svc.Login(ctx, "ann@example.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, _, err = svc.Login(ctx, "nobody@example.com", "hunter2")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Register(ctx, "ann@example.com", "", "again")
	assert.ErrorIs(t, err, repo.ErrDuplicate)
	_, err = svc.Register(ctx, "", "", "x")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestSaveDailyLog_PersistsScore(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	svc := newTestService(t, store)
	userID := registerUser(t, svc, "a@example.com")

	score, err := svc.SaveDailyLog(ctx, userID, "2026-02-11", json.RawMessage(sampleDay))
	require.NoError(t, err)
	assert.InDelta(t, 75, score.TotalScore, 1e-9)

	row, err := svc.DailyLog(ctx, userID, "2026-02-11")
	require.NoError(t, err)
	require.NotNil(t, row.Score)
	assert.Equal(t, ScoreRow(score), *row.Score)

	badges, err := svc.Badges(ctx, userID)
	require.NoError(t, err)
	require.Len(t, badges, 1)
	assert.Equal(t, BadgeFirstLog, badges[0].Code)
}

func TestSaveDailyLog_Validation(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, memstore.New())
	userID := registerUser(t, svc, "a@example.com")

	_, err := svc.SaveDailyLog(ctx, userID, "2026-2-11", json.RawMessage(`{}`))
	assert.ErrorIs(t, err, ErrValidation)
	_, err = svc.SaveDailyLog(ctx, userID, "2026-02-11", json.RawMessage(`[1,2]`))
	assert.ErrorIs(t, err, ErrValidation)
	_, err = svc.DailyLogs(ctx, userID, "2026-02-12", "2026-02-11")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestRecompute_UsesRestOfWeek(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, memstore.New())
	userID := registerUser(t, svc, "a@example.com")

	_, err := svc.SaveGoalConfig(ctx, userID, json.RawMessage(`{
		"enabledCategories": ["exercise"],
		"categories": {"exercise": {"enabled": ["workouts_logged_weekly"], "targets": {"workouts_logged_weekly": 4}}}
	}`))
	require.NoError(t, err)

	workout := json.RawMessage(`{"exercise": {"workouts": [{"type": "run"}]}}`)
	// Sunday of the previous week must not count.
	_, err = svc.SaveDailyLog(ctx, userID, "2026-02-08", workout)
	require.NoError(t, err)
	_, err = svc.SaveDailyLog(ctx, userID, "2026-02-09", workout)
	require.NoError(t, err)

	score, err := svc.SaveDailyLog(ctx, userID, "2026-02-10", workout)
	require.NoError(t, err)
	assert.InDelta(t, 12.5, score.WorkoutScore, 1e-9)
	assert.InDelta(t, 50, score.TotalScore, 1e-9)
}

func TestRecompute_HistoryUnavailable(t *testing.T) {
	ctx := context.Background()
	mem := memstore.New()
	svc := newTestService(t, mem)
	userID := registerUser(t, svc, "a@example.com")
	_, err := mem.UpsertDailyLog(ctx, userID, "2026-02-11", json.RawMessage(sampleDay))
	require.NoError(t, err)

	svc.Store = flakyHistory{Store: mem, err: errors.New("connection reset")}
	score, err := svc.RecomputeDayScore(ctx, userID, "2026-02-11")
	require.ErrorIs(t, err, ErrWeeklyHistoryUnavailable)
	assert.InDelta(t, 75, score.TotalScore, 1e-9, "the day alone is still scored")

	row, err := mem.GetDailyLog(ctx, userID, "2026-02-11")
	require.NoError(t, err)
	assert.Nil(t, row.Score, "a partial score is not saved")
}

func TestDrinkingEvents_Rescore(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, memstore.New())
	userID := registerUser(t, svc, "a@example.com")

	_, err := svc.SaveDailyLog(ctx, userID, "2026-02-11", json.RawMessage(sampleDay))
	require.NoError(t, err)

	id, score, err := svc.AddDrinkingEvent(ctx, userID, models.DrinkingEvent{Date: "2026-02-11", Tier: 3, Drinks: 4})
	require.NoError(t, err)
	assert.NotEmpty(t, id)
	assert.Equal(t, 16.0, score.DietPenaltyTotal)
	assert.InDelta(t, 84, score.DietScoreFinal100, 1e-9)
	assert.InDelta(t, (0.5+1+0.84+0.5)/4*100, score.TotalScore, 1e-9)

	events, err := svc.DrinkingEvents(ctx, userID, "2026-02-11")
	require.NoError(t, err)
	require.Len(t, events, 1)

	_, err = svc.DeleteDrinkingEvent(ctx, "someone-else", id)
	assert.ErrorIs(t, err, repo.ErrNotFound)

	score, err = svc.DeleteDrinkingEvent(ctx, userID, id)
	require.NoError(t, err)
	assert.InDelta(t, 75, score.TotalScore, 1e-9)

	_, _, err = svc.AddDrinkingEvent(ctx, userID, models.DrinkingEvent{Date: "2026-02-11", Tier: 4, Drinks: 1})
	assert.ErrorIs(t, err, ErrValidation)
	_, _, err = svc.AddDrinkingEvent(ctx, userID, models.DrinkingEvent{Date: "2026-02-11", Tier: 2, Drinks: -1})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestGoalConfig_DefaultsAndLegacyRows(t *testing.T) {
	ctx := context.Background()
	mem := memstore.New()
	svc := newTestService(t, mem)

	cfg, err := svc.GoalConfig(ctx, "fresh-user")
	require.NoError(t, err)
	assert.Equal(t, scoring.DefaultGoalConfig(), cfg)

	mem.PutGoalConfigRow(models.GoalConfigRow{
		UserID:            "legacy",
		Goals:             json.RawMessage(`{"community": {"enabled": ["calls_weekly"], "targets": {"calls_weekly": 3}}}`),
		EnabledCategories: []string{"community"},
	})
	cfg, err = svc.GoalConfig(ctx, "legacy")
	require.NoError(t, err)
	assert.Equal(t, []string{scoring.CategoryCommunity}, cfg.EnabledCategories)
	community := cfg.Categories[scoring.CategoryCommunity]
	assert.Equal(t, []string{scoring.MetricCallsFriendsWeekly}, community.Enabled)
	assert.Equal(t, 3.0, community.Targets[scoring.MetricCallsFriendsWeekly])
}

func TestSaveGoalConfig_StrictRejectsKnowledge(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, memstore.New())
	raw := json.RawMessage(`{"enabledCategories": ["reading", "knowledge"]}`)

	cfg, err := svc.SaveGoalConfig(ctx, "u", raw)
	require.NoError(t, err)
	assert.Equal(t, []string{scoring.CategoryReading}, cfg.EnabledCategories)

	svc.Scoring.StrictValidation = true
	_, err = svc.SaveGoalConfig(ctx, "u", raw)
	assert.ErrorIs(t, err, scoring.ErrDeprecatedCategory)
}

func TestPresetEditing(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, memstore.New())

	cfg, err := svc.ApplyPreset(ctx, "u", "athlete")
	require.NoError(t, err)
	assert.Equal(t, "athlete", cfg.PresetID)
	assert.Equal(t, 60.0, cfg.Categories[scoring.CategoryExercise].Targets[scoring.MetricMinutes])

	_, err = svc.ApplyPreset(ctx, "u", "marathoner")
	assert.ErrorIs(t, err, ErrUnknownPreset)

	cfg, err = svc.ClearCategoryMetrics(ctx, "u", scoring.CategorySleep)
	require.NoError(t, err)
	assert.Empty(t, cfg.Categories[scoring.CategorySleep].Enabled)
	assert.Equal(t, scoring.PresetCustom, cfg.PresetID)

	target := 7.5
	cfg, err = svc.SetCategoryMetric(ctx, "u", scoring.CategorySleep, scoring.MetricSleepHours, true, &target)
	require.NoError(t, err)
	assert.Equal(t, []string{scoring.MetricSleepHours}, cfg.Categories[scoring.CategorySleep].Enabled)
	assert.Equal(t, 7.5, cfg.Categories[scoring.CategorySleep].Targets[scoring.MetricSleepHours])

	stored, err := svc.GoalConfig(ctx, "u")
	require.NoError(t, err)
	assert.Equal(t, scoring.PresetCustom, stored.PresetID)
	assert.Equal(t, []string{scoring.MetricSleepHours}, stored.Categories[scoring.CategorySleep].Enabled)
	assert.Equal(t, 7.5, stored.Categories[scoring.CategorySleep].Targets[scoring.MetricSleepHours])

	_, err = svc.ClearCategoryMetrics(ctx, "u", "knowledge")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestSocial(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, memstore.New())
	alice := registerUser(t, svc, "alice@example.com")
	bob := registerUser(t, svc, "bob@example.com")

	_, err := svc.SaveDailyLog(ctx, bob, "2026-02-11", json.RawMessage(sampleDay))
	require.NoError(t, err)
	row, err := svc.DailyLog(ctx, bob, "2026-02-11")
	require.NoError(t, err)

	assert.ErrorIs(t, svc.Follow(ctx, alice, alice), ErrValidation)
	assert.ErrorIs(t, svc.Follow(ctx, alice, "ghost"), repo.ErrNotFound)
	assert.ErrorIs(t, svc.Like(ctx, alice, row.ID), ErrForbidden, "not following yet")

	require.NoError(t, svc.Follow(ctx, alice, bob))
	assert.ErrorIs(t, svc.Follow(ctx, alice, bob), repo.ErrDuplicate)

	feed, err := svc.Feed(ctx, alice, 0)
	require.NoError(t, err)
	require.Len(t, feed, 1)
	assert.Equal(t, bob, feed[0].UserID)

	require.NoError(t, svc.Like(ctx, alice, row.ID))
	_, err = svc.Comment(ctx, alice, row.ID, "   ")
	assert.ErrorIs(t, err, ErrValidation)
	_, err = svc.Comment(ctx, alice, row.ID, " nice week ")
	require.NoError(t, err)

	comments, err := svc.Comments(ctx, bob, row.ID)
	require.NoError(t, err)
	require.Len(t, comments, 1)
	assert.Equal(t, "nice week", comments[0].Body)

	feed, err = svc.Feed(ctx, alice, 0)
	require.NoError(t, err)
	assert.True(t, feed[0].LikedByMe)
	assert.Equal(t, 1, feed[0].LikeCount)
	assert.Equal(t, 1, feed[0].CommentCount)

	require.NoError(t, svc.Unfollow(ctx, alice, bob))
	_, err = svc.Comments(ctx, alice, row.ID)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestKeyedMutex(t *testing.T) {
	k := newKeyedMutex()
	unlock := k.Lock("a")

	acquired := make(chan struct{})
	go func() {
		defer close(acquired)
		k.Lock("a")()
	}()

	select {
	case <-acquired:
		t.Fatal("second holder got the lock while the first still held it")
	case <-time.After(20 * time.Millisecond):
	}
	k.Lock("b")()

	unlock()
	<-acquired
	assert.Equal(t, 0, k.size())
}

func TestRecompute_ConcurrentSameDay(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, memstore.New())
	userID := registerUser(t, svc, "a@example.com")
	_, err := svc.SaveDailyLog(ctx, userID, "2026-02-11", json.RawMessage(sampleDay))
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.RecomputeDayScore(ctx, userID, "2026-02-11")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
	assert.Equal(t, 0, svc.days.size())
}

func TestSaveDailyLog_OverlappingSavesKeepScoreInStep(t *testing.T) {
	ctx := context.Background()
	store := &stallingStore{
		Store:   memstore.New(),
		marker:  `"first"`,
		parked:  make(chan struct{}),
		release: make(chan struct{}),
	}
	svc := newTestService(t, store)
	userID := registerUser(t, svc, "a@example.com")

	first := json.RawMessage(`{"exercise": {"workouts": [{"type": "first"}]}}`)
	second := json.RawMessage(`{"exercise": {"workouts": [{"type": "second"}]}, "sleep": {"hours": "8"}}`)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		_, err := svc.SaveDailyLog(ctx, userID, "2026-02-11", first)
		assert.NoError(t, err)
	}()
	<-store.parked

	var secondScore scoring.DayScore
	go func() {
		defer wg.Done()
		var err error
		secondScore, err = svc.SaveDailyLog(ctx, userID, "2026-02-11", second)
		assert.NoError(t, err)
	}()
	time.Sleep(20 * time.Millisecond)
	close(store.release)
	wg.Wait()

	row, err := store.GetDailyLog(ctx, userID, "2026-02-11")
	require.NoError(t, err)
	assert.Contains(t, string(row.Data), `"second"`)
	require.NotNil(t, row.Score)
	assert.Positive(t, secondScore.SleepScore)
	assert.Equal(t, ScoreRow(secondScore), *row.Score)
}
