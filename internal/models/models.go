package models

import (
	"encoding/json"
	"time"
)

type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	DisplayName  string    `json:"display_name"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type Session struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

// GoalConfigRow is stored as-is; Goals may hold any historical layout and
// is normalized on every read.
type GoalConfigRow struct {
	UserID            string          `json:"user_id"`
	Goals             json.RawMessage `json:"goals"`
	EnabledCategories []string        `json:"enabled_categories"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

type DailyLog struct {
	ID        string          `json:"id"`
	UserID    string          `json:"user_id"`
	Date      string          `json:"date"`
	Data      json.RawMessage `json:"data"`
	Score     *DayScoreRow    `json:"score,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// DayScoreRow is the flat score columns persisted next to the raw log.
type DayScoreRow struct {
	TotalScore        float64 `json:"total_score"`
	WorkoutScore      float64 `json:"workout_score"`
	SleepScore        float64 `json:"sleep_score"`
	DietScore         float64 `json:"diet_score"`
	ReadingScore      float64 `json:"reading_score"`
	CommunityScore    float64 `json:"community_score"`
	DietScoreBase100  float64 `json:"diet_score_base100"`
	DietScoreFinal100 float64 `json:"diet_score_final100"`
	DietPenaltyTotal  float64 `json:"diet_penalty_total"`
	DietPenaltyTier2  float64 `json:"diet_penalty_tier2"`
	DietPenaltyTier3  float64 `json:"diet_penalty_tier3"`
}

type DrinkingEvent struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Date      string    `json:"date"`
	Tier      int       `json:"tier"`
	Drinks    int       `json:"drinks"`
	Note      *string   `json:"note"`
	CreatedAt time.Time `json:"created_at"`
}

type FeedItem struct {
	LogID        string    `json:"log_id"`
	UserID       string    `json:"user_id"`
	DisplayName  string    `json:"display_name"`
	Date         string    `json:"date"`
	TotalScore   float64   `json:"total_score"`
	LikeCount    int       `json:"like_count"`
	CommentCount int       `json:"comment_count"`
	LikedByMe    bool      `json:"liked_by_me"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type Comment struct {
	ID        string    `json:"id"`
	LogID     string    `json:"log_id"`
	UserID    string    `json:"user_id"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}

type Badge struct {
	UserID    string    `json:"user_id"`
	Code      string    `json:"code"`
	Date      string    `json:"date"`
	AwardedAt time.Time `json:"awarded_at"`
}
