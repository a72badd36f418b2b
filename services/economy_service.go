package services

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strings"

	"duel-bot/commands"
	"duel-bot/logger"
	"duel-bot/models"
)

// EconomyService covers point movements outside of duels.
type EconomyService struct {
	Store Store
	// Coin decides a gamble; true is a win.
	Coin func() bool
}

func NewEconomyService(store Store) *EconomyService {
	return &EconomyService{
		Store: store,
		Coin:  func() bool { return rand.IntN(2) == 0 },
	}
}

func (s *EconomyService) Points(ctx context.Context, actor Actor) (string, error) {
	balance, err := NewLedger(s.Store).Get(ctx, actor.ID)
	if err != nil {
		return "", fmt.Errorf("failed to read balance: %w", err)
	}
	return fmt.Sprintf("@%s, you have %d point(s)!", actor.Name, balance), nil
}

// Gift moves amount from the giver to the chatter named target in one transaction.
func (s *EconomyService) Gift(ctx context.Context, from Actor, target string, amount int64) (string, error) {
	if amount <= 0 {
		return "", validation(commands.MsgNegativePoints)
	}
	if strings.EqualFold(from.Name, target) {
		return "", validation(MsgSelfGift)
	}

	var to *models.Chatter
	err := s.Store.WithTx(ctx, func(tx Store) error {
		giver, err := tx.GetChatter(ctx, from.ID)
		if err != nil {
			return err
		}
		if giver == nil {
			return notFound(MsgChatterNotFound)
		}
		to, err = tx.GetChatterByName(ctx, target)
		if err != nil {
			return err
		}
		if to == nil {
			return notFound(MsgChatterNotFound)
		}
		if to.TwitchID == giver.TwitchID {
			return validation(MsgSelfGift)
		}
		if giver.Points < amount {
			return validation(MsgNotEnoughToGift)
		}

		ledger := NewLedger(tx)
		if _, err := ledger.Subtract(ctx, giver.TwitchID, amount); err != nil {
			return err
		}
		_, err = ledger.Add(ctx, to.TwitchID, amount)
		return err
	})
	if err != nil {
		return "", err
	}

	logger.Info("🎁 points gifted", "from", from.Name, "to", to.Username, "amount", amount)
	return fmt.Sprintf("@%s gifted %d points to @%s!", from.Name, amount, to.Username), nil
}

// Gamble flips a coin for amount points.
func (s *EconomyService) Gamble(ctx context.Context, actor Actor, amount int64) (string, error) {
	if amount <= 0 {
		return "", validation(commands.MsgNegativePoints)
	}
	ledger := NewLedger(s.Store)
	balance, err := ledger.Get(ctx, actor.ID)
	if err != nil {
		return "", fmt.Errorf("failed to read balance: %w", err)
	}
	if amount > balance {
		return "", validation(MsgNotEnoughGamble)
	}

	if s.Coin() {
		balance, err = ledger.Add(ctx, actor.ID, amount)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("@%s won %d points and now has %d points!", actor.Name, amount, balance), nil
	}
	balance, err = ledger.Subtract(ctx, actor.ID, amount)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("@%s lost %d points and now has %d points!", actor.Name, amount, balance), nil
}

// Grant adds amount to the chatter named target. Negative amounts take points away.
func (s *EconomyService) Grant(ctx context.Context, target string, amount int64) (*models.Chatter, error) {
	c, err := s.Store.GetChatterByName(ctx, target)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, notFound(MsgChatterNotFound)
	}
	balance, err := NewLedger(s.Store).Add(ctx, c.TwitchID, amount)
	if err != nil {
		return nil, err
	}
	c.Points = balance
	logger.Info("💰 points granted", "username", c.Username, "amount", amount, "balance", balance)
	return c, nil
}
