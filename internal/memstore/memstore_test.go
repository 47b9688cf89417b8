package memstore

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/jack3sommer3-blip/enkrateia-sub000/internal/models"
	"github.com/jack3sommer3-blip/enkrateia-sub000/internal/repo"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFeedOrderAndCap(t *testing.T) {
	ctx := context.Background()
	s := New()
	me, err := s.CreateUser(ctx, "me@example.com", "me", "hash")
	require.NoError(t, err)
	friend, err := s.CreateUser(ctx, "friend@example.com", "friend", "hash")
	require.NoError(t, err)
	stranger, err := s.CreateUser(ctx, "stranger@example.com", "stranger", "hash")
	require.NoError(t, err)
	require.NoError(t, s.Follow(ctx, me, friend))

	for day := 1; day <= 30; day++ {
		date := fmt.Sprintf("2026-01-%02d", day)
		for _, u := range []string{me, friend, stranger} {
			require.NoError(t, s.SaveDayScore(ctx, u, date, models.DayScoreRow{TotalScore: float64(day)}))
		}
	}
	// Unscored logs stay out of the feed.
	_, err = s.UpsertDailyLog(ctx, me, "2026-02-01", json.RawMessage(`{}`))
	require.NoError(t, err)

	items, err := s.ListFeed(ctx, me, 500)
	require.NoError(t, err)
	require.Len(t, items, repo.FeedLimit)
	assert.Equal(t, "2026-01-30", items[0].Date)
	for i := 1; i < len(items); i++ {
		assert.GreaterOrEqual(t, items[i-1].Date, items[i].Date)
		assert.NotEqual(t, stranger, items[i].UserID)
	}
}

func TestDrinkingEventsScopedToOwner(t *testing.T) {
	ctx := context.Background()
	s := New()
	id, err := s.CreateDrinkingEvent(ctx, models.DrinkingEvent{UserID: "u1", Date: "2026-02-11", Tier: 2, Drinks: 3})
	require.NoError(t, err)

	_, err = s.DeleteDrinkingEvent(ctx, id, "u2")
	assert.ErrorIs(t, err, repo.ErrNotFound)

	date, err := s.DeleteDrinkingEvent(ctx, id, "u1")
	require.NoError(t, err)
	assert.Equal(t, "2026-02-11", date)

	events, err := s.ListDrinkingEvents(ctx, "u1", "2026-02-11")
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestAwardBadgeOnce(t *testing.T) {
	ctx := context.Background()
	s := New()
	first, err := s.AwardBadge(ctx, "u1", "first_log", "2026-02-11")
	require.NoError(t, err)
	again, err := s.AwardBadge(ctx, "u1", "first_log", "2026-02-12")
	require.NoError(t, err)
	assert.True(t, first)
	assert.False(t, again)
}
