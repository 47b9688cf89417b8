// Package memstore keeps everything the service persists in process memory.
// It backs `serve --in-memory` and the service and HTTP tests.
package memstore

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"time"

	"github.com/jack3sommer3-blip/enkrateia-sub000/internal/models"
	"github.com/jack3sommer3-blip/enkrateia-sub000/internal/repo"

	"github.com/google/uuid"
)

type Store struct {
	mu       sync.Mutex
	users    map[string]models.User
	sessions []models.Session
	goals    map[string]models.GoalConfigRow
	logs     map[string]models.DailyLog // user|date
	drinks   map[string]models.DrinkingEvent
	follows  map[string]map[string]bool
	likes    map[string]map[string]bool
	comments []models.Comment
	badges   map[string]models.Badge // user|code
}

func New() *Store {
	return &Store{
		users:   make(map[string]models.User),
		goals:   make(map[string]models.GoalConfigRow),
		logs:    make(map[string]models.DailyLog),
		drinks:  make(map[string]models.DrinkingEvent),
		follows: make(map[string]map[string]bool),
		likes:   make(map[string]map[string]bool),
		badges:  make(map[string]models.Badge),
	}
}

func logKey(userID, date string) string { return userID + "|" + date }

func (s *Store) CreateUser(_ context.Context, email, displayName, passwordHash string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == email {
			return "", repo.ErrDuplicate
		}
	}
	now := time.Now().UTC()
	u := models.User{ID: uuid.NewString(), Email: email, DisplayName: displayName, PasswordHash: passwordHash, CreatedAt: now, UpdatedAt: now}
	s.users[u.ID] = u
	return u.ID, nil
}

func (s *Store) GetUserByEmail(_ context.Context, email string) (string, string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == email {
			return u.ID, u.PasswordHash, nil
		}
	}
	return "", "", repo.ErrNotFound
}

func (s *Store) GetUserByID(_ context.Context, userID string) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[userID]
	if !ok {
		return models.User{}, repo.ErrNotFound
	}
	return u, nil
}

func (s *Store) CreateSession(_ context.Context, userID, token string, expiresAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions = append(s.sessions, models.Session{ID: uuid.NewString(), UserID: userID, Token: token, ExpiresAt: expiresAt, CreatedAt: time.Now().UTC()})
	return nil
}

func (s *Store) GetGoalConfig(_ context.Context, userID string) (models.GoalConfigRow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	row, ok := s.goals[userID]
	if !ok {
		return models.GoalConfigRow{}, repo.ErrNotFound
	}
	return row, nil
}

// PutGoalConfigRow stores a row verbatim, which lets callers seed legacy
// layouts.
func (s *Store) PutGoalConfigRow(row models.GoalConfigRow) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.goals[row.UserID] = row
}

func (s *Store) UpsertGoalConfig(_ context.Context, userID string, goals json.RawMessage, enabledCategories []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.goals[userID] = models.GoalConfigRow{
		UserID:            userID,
		Goals:             append(json.RawMessage(nil), goals...),
		EnabledCategories: append([]string(nil), enabledCategories...),
		UpdatedAt:         time.Now().UTC(),
	}
	return nil
}

func (s *Store) UpsertDailyLog(_ context.Context, userID, date string, data json.RawMessage) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now().UTC()
	key := logKey(userID, date)
	l, ok := s.logs[key]
	if !ok {
		l = models.DailyLog{ID: uuid.NewString(), UserID: userID, Date: date, CreatedAt: now}
	}
	l.Data = append(json.RawMessage(nil), data...)
	l.UpdatedAt = now
	s.logs[key] = l
	return l.ID, nil
}

func (s *Store) GetDailyLog(_ context.Context, userID, date string) (models.DailyLog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.logs[logKey(userID, date)]
	if !ok {
		return models.DailyLog{}, repo.ErrNotFound
	}
	return l, nil
}

func (s *Store) ListDailyLogs(_ context.Context, userID, start, end string) ([]models.DailyLog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var res []models.DailyLog
	for _, l := range s.logs {
		if l.UserID == userID && l.Date >= start && l.Date <= end {
			res = append(res, l)
		}
	}
	sort.Slice(res, func(i, j int) bool { return res[i].Date < res[j].Date })
	return res, nil
}

func (s *Store) SaveDayScore(_ context.Context, userID, date string, score models.DayScoreRow) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now().UTC()
	key := logKey(userID, date)
	l, ok := s.logs[key]
	if !ok {
		l = models.DailyLog{ID: uuid.NewString(), UserID: userID, Date: date, Data: json.RawMessage(`{}`), CreatedAt: now}
	}
	l.Score = &score
	l.UpdatedAt = now
	s.logs[key] = l
	return nil
}

func (s *Store) CreateDrinkingEvent(_ context.Context, ev models.DrinkingEvent) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if ev.ID == "" {
		ev.ID = uuid.NewString()
	}
	ev.CreatedAt = time.Now().UTC()
	s.drinks[ev.ID] = ev
	return ev.ID, nil
}

func (s *Store) DeleteDrinkingEvent(_ context.Context, id, userID string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ev, ok := s.drinks[id]
	if !ok || ev.UserID != userID {
		return "", repo.ErrNotFound
	}
	delete(s.drinks, id)
	return ev.Date, nil
}

func (s *Store) ListDrinkingEvents(_ context.Context, userID, date string) ([]models.DrinkingEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var res []models.DrinkingEvent
	for _, ev := range s.drinks {
		if ev.UserID == userID && ev.Date == date {
			res = append(res, ev)
		}
	}
	sort.Slice(res, func(i, j int) bool { return res[i].CreatedAt.Before(res[j].CreatedAt) })
	return res, nil
}

func (s *Store) Follow(_ context.Context, followerID, followeeID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.follows[followerID] == nil {
		s.follows[followerID] = make(map[string]bool)
	}
	if s.follows[followerID][followeeID] {
		return repo.ErrDuplicate
	}
	s.follows[followerID][followeeID] = true
	return nil
}

func (s *Store) Unfollow(_ context.Context, followerID, followeeID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.follows[followerID][followeeID] {
		return repo.ErrNotFound
	}
	delete(s.follows[followerID], followeeID)
	return nil
}

func (s *Store) ListFeed(_ context.Context, userID string, limit int) ([]models.FeedItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if limit <= 0 || limit > repo.FeedLimit {
		limit = repo.FeedLimit
	}
	var res []models.FeedItem
	for _, l := range s.logs {
		if l.Score == nil || (l.UserID != userID && !s.follows[userID][l.UserID]) {
			continue
		}
		res = append(res, models.FeedItem{
			LogID:        l.ID,
			UserID:       l.UserID,
			DisplayName:  s.users[l.UserID].DisplayName,
			Date:         l.Date,
			TotalScore:   l.Score.TotalScore,
			LikeCount:    len(s.likes[l.ID]),
			CommentCount: s.commentCount(l.ID),
			LikedByMe:    s.likes[l.ID][userID],
			UpdatedAt:    l.UpdatedAt,
		})
	}
	sort.Slice(res, func(i, j int) bool {
		if res[i].Date != res[j].Date {
			return res[i].Date > res[j].Date
		}
		return res[i].UpdatedAt.After(res[j].UpdatedAt)
	})
	if len(res) > limit {
		res = res[:limit]
	}
	return res, nil
}

func (s *Store) commentCount(logID string) int {
	n := 0
	for _, c := range s.comments {
		if c.LogID == logID {
			n++
		}
	}
	return n
}

func (s *Store) logByID(logID string) (models.DailyLog, bool) {
	for _, l := range s.logs {
		if l.ID == logID {
			return l, true
		}
	}
	return models.DailyLog{}, false
}

func (s *Store) Like(_ context.Context, logID, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.logByID(logID); !ok {
		return repo.ErrNotFound
	}
	if s.likes[logID] == nil {
		s.likes[logID] = make(map[string]bool)
	}
	s.likes[logID][userID] = true
	return nil
}

func (s *Store) Unlike(_ context.Context, logID, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.likes[logID], userID)
	return nil
}

func (s *Store) AddComment(_ context.Context, logID, userID, body string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.logByID(logID); !ok {
		return "", repo.ErrNotFound
	}
	c := models.Comment{ID: uuid.NewString(), LogID: logID, UserID: userID, Body: body, CreatedAt: time.Now().UTC()}
	s.comments = append(s.comments, c)
	return c.ID, nil
}

func (s *Store) ListComments(_ context.Context, logID string) ([]models.Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var res []models.Comment
	for _, c := range s.comments {
		if c.LogID == logID {
			res = append(res, c)
		}
	}
	return res, nil
}

func (s *Store) CanViewLog(_ context.Context, logID, userID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.logByID(logID)
	if !ok {
		return false, nil
	}
	return l.UserID == userID || s.follows[userID][l.UserID], nil
}

func (s *Store) AwardBadge(_ context.Context, userID, code, date string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := userID + "|" + code
	if _, ok := s.badges[key]; ok {
		return false, nil
	}
	s.badges[key] = models.Badge{UserID: userID, Code: code, Date: date, AwardedAt: time.Now().UTC()}
	return true, nil
}

func (s *Store) ListBadges(_ context.Context, userID string) ([]models.Badge, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var res []models.Badge
	for _, b := range s.badges {
		if b.UserID == userID {
			res = append(res, b)
		}
	}
	sort.Slice(res, func(i, j int) bool {
		if res[i].AwardedAt.Equal(res[j].AwardedAt) {
			return res[i].Code < res[j].Code
		}
		return res[i].AwardedAt.Before(res[j].AwardedAt)
	})
	return res, nil
}
