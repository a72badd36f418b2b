package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"duel-bot/logger"
	"duel-bot/models"

	"github.com/jonboulle/clockwork"
)

// PresenceService keeps chatter accounts current and tracks lurkers.
type PresenceService struct {
	Store          Store
	Clock          clockwork.Clock
	PresencePoints int64
	LurkPoints     int64
}

func NewPresenceService(store Store, clock clockwork.Clock, presencePoints, lurkPoints int64) *PresenceService {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &PresenceService{
		Store:          store,
		Clock:          clock,
		PresencePoints: presencePoints,
		LurkPoints:     lurkPoints,
	}
}

// Observe records a message from actor: creates the account on first sight,
// refreshes the display name and last seen time, and pays the presence reward.
func (s *PresenceService) Observe(ctx context.Context, actor Actor) (*models.Chatter, error) {
	now := s.Clock.Now()
	c, err := s.Store.UpdateChatter(ctx, actor.ID, func(c *models.Chatter) error {
		c.Username = actor.Name
		c.LastSeen = now
		c.Points = AddPoints(c.Points, s.PresencePoints)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update chatter: %w", err)
	}
	if c != nil {
		return c, nil
	}

	c = &models.Chatter{
		TwitchID: actor.ID,
		Username: actor.Name,
		Points:   AddPoints(0, s.PresencePoints),
		LastSeen: now,
	}
	if err := s.Store.SaveChatter(ctx, c); err != nil {
		return nil, fmt.Errorf("failed to create chatter: %w", err)
	}
	logger.Info("👋 new chatter", "twitch_id", c.TwitchID, "username", c.Username)
	return c, nil
}

func (s *PresenceService) Lurk(ctx context.Context, actor Actor) (string, error) {
	if err := s.Store.CreateLurker(ctx, &models.Lurker{TwitchID: actor.ID, Username: actor.Name}); err != nil {
		return "", fmt.Errorf("failed to mark lurker: %w", err)
	}
	return fmt.Sprintf("We got a lurker over here!!! Enjoy the stream @%s", actor.Name), nil
}

func (s *PresenceService) Unlurk(ctx context.Context, actor Actor) (string, error) {
	removed, err := s.Store.DeleteLurker(ctx, actor.ID)
	if err != nil {
		return "", fmt.Errorf("failed to remove lurker: %w", err)
	}
	if !removed {
		return fmt.Sprintf("@%s you weren't lurking!", actor.Name), nil
	}
	return fmt.Sprintf("Welcome back @%s!", actor.Name), nil
}

func (s *PresenceService) Lurkers(ctx context.Context) (string, error) {
	lurkers, err := s.Store.ListLurkers(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to list lurkers: %w", err)
	}
	if len(lurkers) == 0 {
		return "Nobody is lurking right now!", nil
	}
	names := make([]string, len(lurkers))
	for i, l := range lurkers {
		names[i] = l.Username
	}
	return "Lurkers: " + strings.Join(names, ", "), nil
}

func (s *PresenceService) LurkTime(ctx context.Context, actor Actor) (string, error) {
	c, err := s.Store.GetChatter(ctx, actor.ID)
	if err != nil {
		return "", fmt.Errorf("failed to load chatter: %w", err)
	}
	if c == nil || c.LurkTime == 0 {
		return "You need to lurk first!", nil
	}
	return fmt.Sprintf("@%s you have lurked for %d seconds!", actor.Name, c.LurkTime), nil
}

// AccrueLurkTime credits every current lurker with elapsed lurk time and the lurk reward.
func (s *PresenceService) AccrueLurkTime(ctx context.Context, elapsed time.Duration) (int, error) {
	lurkers, err := s.Store.ListLurkers(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list lurkers: %w", err)
	}
	seconds := int64(elapsed / time.Second)
	credited := 0
	for _, l := range lurkers {
		c, err := s.Store.UpdateChatter(ctx, l.TwitchID, func(c *models.Chatter) error {
			c.LurkTime += seconds
			c.Points = AddPoints(c.Points, s.LurkPoints)
			return nil
		})
		if err != nil {
			return credited, fmt.Errorf("failed to credit lurker %s: %w", l.Username, err)
		}
		if c == nil {
			logger.Warn("lurker has no account", "twitch_id", l.TwitchID)
			continue
		}
		credited++
	}
	return credited, nil
}
