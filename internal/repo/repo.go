package repo

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jack3sommer3-blip/enkrateia-sub000/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrNotFound  = errors.New("not found")
	ErrDuplicate = errors.New("already exists")
)

const FeedLimit = 50

const uniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

type Repo struct {
	Pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repo {
	return &Repo{Pool: pool}
}

func (r *Repo) CreateUser(ctx context.Context, email, displayName, passwordHash string) (string, error) {
	var id string
	err := r.Pool.QueryRow(ctx, `INSERT INTO users (email, display_name, password_hash) VALUES ($1, $2, $3) RETURNING id`, email, displayName, passwordHash).Scan(&id)
	if isUniqueViolation(err) {
		return "", ErrDuplicate
	}
	return id, err
}

func (r *Repo) GetUserByEmail(ctx context.Context, email string) (string, string, error) {
	var id, hash string
	err := r.Pool.QueryRow(ctx, `SELECT id, password_hash FROM users WHERE email=$1`, email).Scan(&id, &hash)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", "", ErrNotFound
	}
	return id, hash, err
}

func (r *Repo) GetUserByID(ctx context.Context, userID string) (models.User, error) {
	var u models.User
	err := r.Pool.QueryRow(ctx, `SELECT id, email, display_name, created_at, updated_at FROM users WHERE id=$1`, userID).
		Scan(&u.ID, &u.Email, &u.DisplayName, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.User{}, ErrNotFound
	}
	return u, err
}

func (r *Repo) CreateSession(ctx context.Context, userID, token string, expiresAt time.Time) error {
	_, err := r.Pool.Exec(ctx, `INSERT INTO sessions (user_id, token, expires_at) VALUES ($1, $2, $3)`, userID, token, expiresAt)
	return err
}

func (r *Repo) GetGoalConfig(ctx context.Context, userID string) (models.GoalConfigRow, error) {
	row := models.GoalConfigRow{UserID: userID}
	err := r.Pool.QueryRow(ctx, `SELECT goals, enabled_categories, updated_at FROM goal_configs WHERE user_id=$1`, userID).
		Scan(&row.Goals, &row.EnabledCategories, &row.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.GoalConfigRow{}, ErrNotFound
	}
	return row, err
}

func (r *Repo) UpsertGoalConfig(ctx context.Context, userID string, goals json.RawMessage, enabledCategories []string) error {
	_, err := r.Pool.Exec(ctx, `INSERT INTO goal_configs (user_id, goals, enabled_categories, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (user_id) DO UPDATE SET goals=EXCLUDED.goals, enabled_categories=EXCLUDED.enabled_categories, updated_at=now()`,
		userID, goals, enabledCategories)
	return err
}

func (r *Repo) UpsertDailyLog(ctx context.Context, userID, date string, data json.RawMessage) (string, error) {
	var id string
	err := r.Pool.QueryRow(ctx, `INSERT INTO daily_logs (user_id, date, data) VALUES ($1, $2::date, $3)
		ON CONFLICT (user_id, date) DO UPDATE SET data=EXCLUDED.data, updated_at=now()
		RETURNING id`, userID, date, data).Scan(&id)
	return id, err
}

const dailyLogColumns = `id, user_id, to_char(date, 'YYYY-MM-DD'), data,
	total_score, workout_score, sleep_score, diet_score, reading_score, community_score,
	diet_score_base100, diet_score_final100, diet_penalty_total, diet_penalty_tier2, diet_penalty_tier3,
	created_at, updated_at`

func scanDailyLog(row pgx.Row) (models.DailyLog, error) {
	var l models.DailyLog
	var total, workout, sleep, diet, reading, community, base, final, penalty, tier2, tier3 *float64
	err := row.Scan(&l.ID, &l.UserID, &l.Date, &l.Data,
		&total, &workout, &sleep, &diet, &reading, &community,
		&base, &final, &penalty, &tier2, &tier3,
		&l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		return models.DailyLog{}, err
	}
	if total != nil {
		l.Score = &models.DayScoreRow{
			TotalScore:        *total,
			WorkoutScore:      deref(workout),
			SleepScore:        deref(sleep),
			DietScore:         deref(diet),
			ReadingScore:      deref(reading),
			CommunityScore:    deref(community),
			DietScoreBase100:  deref(base),
			DietScoreFinal100: deref(final),
			DietPenaltyTotal:  deref(penalty),
			DietPenaltyTier2:  deref(tier2),
			DietPenaltyTier3:  deref(tier3),
		}
	}
	return l, nil
}

func deref(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}

func (r *Repo) GetDailyLog(ctx context.Context, userID, date string) (models.DailyLog, error) {
	l, err := scanDailyLog(r.Pool.QueryRow(ctx, `SELECT `+dailyLogColumns+` FROM daily_logs WHERE user_id=$1 AND date=$2::date`, userID, date))
	if errors.Is(err, pgx.ErrNoRows) {
		return models.DailyLog{}, ErrNotFound
	}
	return l, err
}

// ListDailyLogs returns the user's logs with start <= date <= end, oldest first.
func (r *Repo) ListDailyLogs(ctx context.Context, userID, start, end string) ([]models.DailyLog, error) {
	rows, err := r.Pool.Query(ctx, `SELECT `+dailyLogColumns+` FROM daily_logs
		WHERE user_id=$1 AND date BETWEEN $2::date AND $3::date ORDER BY date`, userID, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []models.DailyLog
	for rows.Next() {
		l, err := scanDailyLog(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, l)
	}
	return res, rows.Err()
}

// SaveDayScore writes the score columns, creating an empty log row when the
// day has only drinking events so far.
func (r *Repo) SaveDayScore(ctx context.Context, userID, date string, s models.DayScoreRow) error {
	_, err := r.Pool.Exec(ctx, `INSERT INTO daily_logs (user_id, date,
			total_score, workout_score, sleep_score, diet_score, reading_score, community_score,
			diet_score_base100, diet_score_final100, diet_penalty_total, diet_penalty_tier2, diet_penalty_tier3)
		VALUES ($1, $2::date, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (user_id, date) DO UPDATE SET
			total_score=EXCLUDED.total_score, workout_score=EXCLUDED.workout_score,
			sleep_score=EXCLUDED.sleep_score, diet_score=EXCLUDED.diet_score,
			reading_score=EXCLUDED.reading_score, community_score=EXCLUDED.community_score,
			diet_score_base100=EXCLUDED.diet_score_base100, diet_score_final100=EXCLUDED.diet_score_final100,
			diet_penalty_total=EXCLUDED.diet_penalty_total, diet_penalty_tier2=EXCLUDED.diet_penalty_tier2,
			diet_penalty_tier3=EXCLUDED.diet_penalty_tier3, updated_at=now()`,
		userID, date, s.TotalScore, s.WorkoutScore, s.SleepScore, s.DietScore, s.ReadingScore, s.CommunityScore,
		s.DietScoreBase100, s.DietScoreFinal100, s.DietPenaltyTotal, s.DietPenaltyTier2, s.DietPenaltyTier3)
	return err
}

func (r *Repo) CreateDrinkingEvent(ctx context.Context, ev models.DrinkingEvent) (string, error) {
	if ev.ID == "" {
		ev.ID = uuid.NewString()
	}
	_, err := r.Pool.Exec(ctx, `INSERT INTO drinking_events (id, user_id, date, tier, drinks, note) VALUES ($1, $2, $3::date, $4, $5, $6)`,
		ev.ID, ev.UserID, ev.Date, ev.Tier, ev.Drinks, ev.Note)
	return ev.ID, err
}

// DeleteDrinkingEvent removes the event and returns the date it belonged to.
func (r *Repo) DeleteDrinkingEvent(ctx context.Context, id, userID string) (string, error) {
	var date string
	err := r.Pool.QueryRow(ctx, `DELETE FROM drinking_events WHERE id=$1 AND user_id=$2 RETURNING to_char(date, 'YYYY-MM-DD')`, id, userID).Scan(&date)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrNotFound
	}
	return date, err
}

func (r *Repo) ListDrinkingEvents(ctx context.Context, userID, date string) ([]models.DrinkingEvent, error) {
	rows, err := r.Pool.Query(ctx, `SELECT id, user_id, to_char(date, 'YYYY-MM-DD'), tier, drinks, note, created_at
		FROM drinking_events WHERE user_id=$1 AND date=$2::date ORDER BY created_at`, userID, date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []models.DrinkingEvent
	for rows.Next() {
		var ev models.DrinkingEvent
		if err := rows.Scan(&ev.ID, &ev.UserID, &ev.Date, &ev.Tier, &ev.Drinks, &ev.Note, &ev.CreatedAt); err != nil {
			return nil, err
		}
		res = append(res, ev)
	}
	return res, rows.Err()
}

func (r *Repo) Follow(ctx context.Context, followerID, followeeID string) error {
	cmd, err := r.Pool.Exec(ctx, `INSERT INTO follows (follower_id, followee_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`, followerID, followeeID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrDuplicate
	}
	return nil
}

func (r *Repo) Unfollow(ctx context.Context, followerID, followeeID string) error {
	cmd, err := r.Pool.Exec(ctx, `DELETE FROM follows WHERE follower_id=$1 AND followee_id=$2`, followerID, followeeID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ListFeed returns scored days of the user and everyone they follow, newest
// first, capped at limit (FeedLimit when limit is out of range).
func (r *Repo) ListFeed(ctx context.Context, userID string, limit int) ([]models.FeedItem, error) {
	if limit <= 0 || limit > FeedLimit {
		limit = FeedLimit
	}
	rows, err := r.Pool.Query(ctx, `SELECT l.id, l.user_id, u.display_name, to_char(l.date, 'YYYY-MM-DD'), l.total_score,
			(SELECT count(*) FROM likes k WHERE k.log_id = l.id),
			(SELECT count(*) FROM comments c WHERE c.log_id = l.id),
			EXISTS(SELECT 1 FROM likes k WHERE k.log_id = l.id AND k.user_id = $1),
			l.updated_at
		FROM daily_logs l
		JOIN users u ON u.id = l.user_id
		WHERE l.total_score IS NOT NULL
		  AND (l.user_id = $1 OR l.user_id IN (SELECT followee_id FROM follows WHERE follower_id = $1))
		ORDER BY l.date DESC, l.updated_at DESC
		LIMIT $2`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []models.FeedItem
	for rows.Next() {
		var it models.FeedItem
		if err := rows.Scan(&it.LogID, &it.UserID, &it.DisplayName, &it.Date, &it.TotalScore, &it.LikeCount, &it.CommentCount, &it.LikedByMe, &it.UpdatedAt); err != nil {
			return nil, err
		}
		res = append(res, it)
	}
	return res, rows.Err()
}

func (r *Repo) Like(ctx context.Context, logID, userID string) error {
	_, err := r.Pool.Exec(ctx, `INSERT INTO likes (log_id, user_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`, logID, userID)
	return err
}

func (r *Repo) Unlike(ctx context.Context, logID, userID string) error {
	_, err := r.Pool.Exec(ctx, `DELETE FROM likes WHERE log_id=$1 AND user_id=$2`, logID, userID)
	return err
}

func (r *Repo) AddComment(ctx context.Context, logID, userID, body string) (string, error) {
	var id string
	err := r.Pool.QueryRow(ctx, `INSERT INTO comments (log_id, user_id, body) VALUES ($1, $2, $3) RETURNING id`, logID, userID, body).Scan(&id)
	return id, err
}

func (r *Repo) ListComments(ctx context.Context, logID string) ([]models.Comment, error) {
	rows, err := r.Pool.Query(ctx, `SELECT id, log_id, user_id, body, created_at FROM comments WHERE log_id=$1 ORDER BY created_at`, logID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []models.Comment
	for rows.Next() {
		var c models.Comment
		if err := rows.Scan(&c.ID, &c.LogID, &c.UserID, &c.Body, &c.CreatedAt); err != nil {
			return nil, err
		}
		res = append(res, c)
	}
	return res, rows.Err()
}

// CanViewLog reports whether userID owns the log or follows its owner.
func (r *Repo) CanViewLog(ctx context.Context, logID, userID string) (bool, error) {
	var allowed bool
	err := r.Pool.QueryRow(ctx, `SELECT EXISTS(
		SELECT 1 FROM daily_logs l
		WHERE l.id=$1 AND (l.user_id=$2 OR EXISTS(SELECT 1 FROM follows f WHERE f.follower_id=$2 AND f.followee_id=l.user_id)))`,
		logID, userID).Scan(&allowed)
	return allowed, err
}

// AwardBadge records a badge once; it reports whether the badge is new.
func (r *Repo) AwardBadge(ctx context.Context, userID, code, date string) (bool, error) {
	cmd, err := r.Pool.Exec(ctx, `INSERT INTO badges (user_id, code, date) VALUES ($1, $2, $3::date) ON CONFLICT DO NOTHING`, userID, code, date)
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() == 1, nil
}

func (r *Repo) ListBadges(ctx context.Context, userID string) ([]models.Badge, error) {
	rows, err := r.Pool.Query(ctx, `SELECT user_id, code, to_char(date, 'YYYY-MM-DD'), awarded_at FROM badges WHERE user_id=$1 ORDER BY awarded_at`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []models.Badge
	for rows.Next() {
		var b models.Badge
		if err := rows.Scan(&b.UserID, &b.Code, &b.Date, &b.AwardedAt); err != nil {
			return nil, err
		}
		res = append(res, b)
	}
	return res, rows.Err()
}
