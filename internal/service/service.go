package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/jack3sommer3-blip/enkrateia-sub000/internal/auth"
	"github.com/jack3sommer3-blip/enkrateia-sub000/internal/models"
	"github.com/jack3sommer3-blip/enkrateia-sub000/internal/repo"
	"github.com/jack3sommer3-blip/enkrateia-sub000/internal/scoring"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrValidation         = errors.New("validation error")
	ErrUnknownPreset      = errors.New("unknown preset")
	ErrForbidden          = errors.New("forbidden")
)

// Store is the persistence the service needs; *repo.Repo implements it.
type Store interface {
	CreateUser(ctx context.Context, email, displayName, passwordHash string) (string, error)
	GetUserByEmail(ctx context.Context, email string) (string, string, error)
	GetUserByID(ctx context.Context, userID string) (models.User, error)
	CreateSession(ctx context.Context, userID, token string, expiresAt time.Time) error

	GetGoalConfig(ctx context.Context, userID string) (models.GoalConfigRow, error)
	UpsertGoalConfig(ctx context.Context, userID string, goals json.RawMessage, enabledCategories []string) error

	UpsertDailyLog(ctx context.Context, userID, date string, data json.RawMessage) (string, error)
	GetDailyLog(ctx context.Context, userID, date string) (models.DailyLog, error)
	ListDailyLogs(ctx context.Context, userID, start, end string) ([]models.DailyLog, error)
	SaveDayScore(ctx context.Context, userID, date string, s models.DayScoreRow) error

	CreateDrinkingEvent(ctx context.Context, ev models.DrinkingEvent) (string, error)
	DeleteDrinkingEvent(ctx context.Context, id, userID string) (string, error)
	ListDrinkingEvents(ctx context.Context, userID, date string) ([]models.DrinkingEvent, error)

	Follow(ctx context.Context, followerID, followeeID string) error
	Unfollow(ctx context.Context, followerID, followeeID string) error
	ListFeed(ctx context.Context, userID string, limit int) ([]models.FeedItem, error)
	Like(ctx context.Context, logID, userID string) error
	Unlike(ctx context.Context, logID, userID string) error
	AddComment(ctx context.Context, logID, userID, body string) (string, error)
	ListComments(ctx context.Context, logID string) ([]models.Comment, error)
	CanViewLog(ctx context.Context, logID, userID string) (bool, error)
	AwardBadge(ctx context.Context, userID, code, date string) (bool, error)
	ListBadges(ctx context.Context, userID string) ([]models.Badge, error)
}

var _ Store = (*repo.Repo)(nil)

type Service struct {
	Store     Store
	Auth      *auth.Manager
	TokenTTL  time.Duration
	RefreshTT time.Duration
	Scoring   scoring.Options

	days *keyedMutex
}

func New(store Store, authManager *auth.Manager, strict bool) *Service {
	return &Service{
		Store:     store,
		Auth:      authManager,
		TokenTTL:  time.Hour,
		RefreshTT: 7 * 24 * time.Hour,
		Scoring:   scoring.Options{StrictValidation: strict, Logf: log.Printf},
		days:      newKeyedMutex(),
	}
}

func (s *Service) Register(ctx context.Context, email, displayName, password string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return "", fmt.Errorf("%w: email and password required", ErrValidation)
	}
	if displayName = strings.TrimSpace(displayName); displayName == "" {
		displayName = strings.SplitN(email, "@", 2)[0]
	}
	hash, err := s.Auth.HashPassword(password)
	if err != nil {
		return "", err
	}
	userID, err := s.Store.CreateUser(ctx, email, displayName, hash)
	if err != nil {
		return "", fmt.Errorf("create user: %w", err)
	}
	return userID, nil
}

func (s *Service) Login(ctx context.Context, email, password string) (string, string, error) {
	userID, hash, err := s.Store.GetUserByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return "", "", ErrInvalidCredentials
		}
		return "", "", err
	}
	if err := s.Auth.ComparePassword(hash, password); err != nil {
		return "", "", ErrInvalidCredentials
	}
	accessToken, err := s.Auth.GenerateToken(userID, s.TokenTTL)
	if err != nil {
		return "", "", err
	}
	refreshToken, err := auth.NewRefreshToken()
	if err != nil {
		return "", "", err
	}
	if err := s.Store.CreateSession(ctx, userID, refreshToken, time.Now().Add(s.RefreshTT)); err != nil {
		return "", "", err
	}
	return accessToken, refreshToken, nil
}

func (s *Service) Me(ctx context.Context, userID string) (models.User, error) {
	return s.Store.GetUserByID(ctx, userID)
}
