package services

import (
	"context"
	"math"

	"duel-bot/logger"
	"duel-bot/models"
)

// AddPoints adds delta to balance. An overflowing sum leaves balance unchanged.
// The result never drops below the shadow realm.
func AddPoints(balance, delta int64) int64 {
	sum := balance
	if !(delta > 0 && balance > math.MaxInt64-delta) && !(delta < 0 && balance < math.MinInt64-delta) {
		sum = balance + delta
	}
	return floor(sum)
}

// SubtractPoints removes delta from balance, saturating at the shadow realm.
func SubtractPoints(balance, delta int64) int64 {
	if delta > 0 && balance < math.MinInt64+delta {
		return models.ShadowRealm
	}
	if delta < 0 && balance > math.MaxInt64+delta {
		return floor(balance)
	}
	return floor(balance - delta)
}

func floor(balance int64) int64 {
	if balance < models.ShadowRealm {
		return models.ShadowRealm
	}
	return balance
}

// Ledger moves points on chatter balances. Every write is a locked read-modify-write.
type Ledger struct {
	Store Store
}

func NewLedger(store Store) *Ledger {
	return &Ledger{Store: store}
}

// Get returns the chatter's balance, or 0 when the chatter is unknown.
func (l *Ledger) Get(ctx context.Context, twitchID string) (int64, error) {
	c, err := l.Store.GetChatter(ctx, twitchID)
	if err != nil {
		return 0, err
	}
	if c == nil {
		logger.Warn("ledger lookup for unknown chatter", "twitch_id", twitchID)
		return 0, nil
	}
	return c.Points, nil
}

func (l *Ledger) Add(ctx context.Context, twitchID string, delta int64) (int64, error) {
	return l.update(ctx, twitchID, func(c *models.Chatter) {
		c.Points = AddPoints(c.Points, delta)
	})
}

func (l *Ledger) Subtract(ctx context.Context, twitchID string, delta int64) (int64, error) {
	return l.update(ctx, twitchID, func(c *models.Chatter) {
		c.Points = SubtractPoints(c.Points, delta)
	})
}

func (l *Ledger) update(ctx context.Context, twitchID string, apply func(c *models.Chatter)) (int64, error) {
	c, err := l.Store.UpdateChatter(ctx, twitchID, func(c *models.Chatter) error {
		apply(c)
		return nil
	})
	if err != nil {
		return 0, err
	}
	if c == nil {
		logger.Warn("ledger update for unknown chatter", "twitch_id", twitchID)
		return 0, nil
	}
	return c.Points, nil
}
