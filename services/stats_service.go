package services

import (
	"context"
	"fmt"
	"strings"

	"duel-bot/models"
)

type StatsService struct {
	Store Store
}

func NewStatsService(store Store) *StatsService {
	return &StatsService{Store: store}
}

func (s *StatsService) Kda(ctx context.Context, actor Actor) (string, error) {
	c, err := s.Store.GetChatter(ctx, actor.ID)
	if err != nil {
		return "", fmt.Errorf("failed to load chatter: %w", err)
	}
	if c == nil {
		return "", notFound(MsgChatterNotFound)
	}
	return fmt.Sprintf("@%s Wins: %d Losses: %d", actor.Name, c.Wins, c.Losses), nil
}

// Rank is one plus the number of chatters holding strictly more points.
func (s *StatsService) Rank(ctx context.Context, c *models.Chatter) (int64, error) {
	above, err := s.Store.CountChattersAbove(ctx, c.Points)
	if err != nil {
		return 0, fmt.Errorf("failed to rank chatter: %w", err)
	}
	return above + 1, nil
}

func (s *StatsService) Ranking(ctx context.Context, actor Actor) (string, error) {
	c, err := s.Store.GetChatter(ctx, actor.ID)
	if err != nil {
		return "", fmt.Errorf("failed to load chatter: %w", err)
	}
	if c == nil {
		return "", notFound(MsgChatterNotFound)
	}
	rank, err := s.Rank(ctx, c)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("@%s you are ranked #%d with %d points!", actor.Name, rank, c.Points), nil
}

func (s *StatsService) TopDuelists(ctx context.Context, n int) (string, error) {
	top, err := s.Store.TopChatters(ctx, "wins", n)
	if err != nil {
		return "", fmt.Errorf("failed to load duelists: %w", err)
	}
	if len(top) == 0 {
		return "No duelists yet!", nil
	}
	parts := make([]string, len(top))
	for i, c := range top {
		parts[i] = fmt.Sprintf("%d. %s (%d wins)", i+1, c.Username, c.Wins)
	}
	return "Top Duelists: " + strings.Join(parts, " | "), nil
}

// Leaderboard lists the richest chatters.
func (s *StatsService) Leaderboard(ctx context.Context, limit int) ([]models.Chatter, error) {
	if limit <= 0 || limit > 100 {
		limit = 10
	}
	return s.Store.TopChatters(ctx, "points", limit)
}

// LeaderboardLine renders the top of the leaderboard as one chat message.
func (s *StatsService) LeaderboardLine(ctx context.Context, limit int) (string, error) {
	top, err := s.Leaderboard(ctx, limit)
	if err != nil {
		return "", err
	}
	if len(top) == 0 {
		return "", nil
	}
	parts := make([]string, len(top))
	for i, c := range top {
		parts[i] = fmt.Sprintf("%d. %s (%d)", i+1, c.Username, c.Points)
	}
	return "Leaderboard: " + strings.Join(parts, " | "), nil
}
