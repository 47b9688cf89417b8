package service

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/jack3sommer3-blip/enkrateia-sub000/internal/models"
	"github.com/jack3sommer3-blip/enkrateia-sub000/internal/repo"
)

const maxCommentLength = 1000

func (s *Service) Follow(ctx context.Context, userID, followeeID string) error {
	if userID == followeeID {
		return fmt.Errorf("%w: cannot follow yourself", ErrValidation)
	}
	if _, err := s.Store.GetUserByID(ctx, followeeID); err != nil {
		return err
	}
	return s.Store.Follow(ctx, userID, followeeID)
}

func (s *Service) Unfollow(ctx context.Context, userID, followeeID string) error {
	return s.Store.Unfollow(ctx, userID, followeeID)
}

// Feed lists scored days of the user and the people they follow, newest
// first.
func (s *Service) Feed(ctx context.Context, userID string, limit int) ([]models.FeedItem, error) {
	if limit <= 0 || limit > repo.FeedLimit {
		limit = repo.FeedLimit
	}
	return s.Store.ListFeed(ctx, userID, limit)
}

func (s *Service) canView(ctx context.Context, logID, userID string) error {
	allowed, err := s.Store.CanViewLog(ctx, logID, userID)
	if err != nil {
		return err
	}
	if !allowed {
		return ErrForbidden
	}
	return nil
}

func (s *Service) Like(ctx context.Context, userID, logID string) error {
	if err := s.canView(ctx, logID, userID); err != nil {
		return err
	}
	return s.Store.Like(ctx, logID, userID)
}

func (s *Service) Unlike(ctx context.Context, userID, logID string) error {
	return s.Store.Unlike(ctx, logID, userID)
}

func (s *Service) Comment(ctx context.Context, userID, logID, body string) (string, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return "", fmt.Errorf("%w: comment body required", ErrValidation)
	}
	if utf8.RuneCountInString(body) > maxCommentLength {
		return "", fmt.Errorf("%w: comment too long", ErrValidation)
	}
	if err := s.canView(ctx, logID, userID); err != nil {
		return "", err
	}
	return s.Store.AddComment(ctx, logID, userID, body)
}

func (s *Service) Comments(ctx context.Context, userID, logID string) ([]models.Comment, error) {
	if err := s.canView(ctx, logID, userID); err != nil {
		return nil, err
	}
	return s.Store.ListComments(ctx, logID)
}

func (s *Service) Badges(ctx context.Context, userID string) ([]models.Badge, error) {
	return s.Store.ListBadges(ctx, userID)
}
