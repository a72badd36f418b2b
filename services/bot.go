package services

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"

	"duel-bot/chat"
	"duel-bot/commands"
	"duel-bot/logger"
)

const genericFailure = "Something went wrong, try again later."

var greetings = []string{
	"yo", "hey", "hello", "hi", "what's up", "greetings", "salutations", "HAI",
	"Ello Gov'na", "Top of the morning to ya", "E kaaro", "Hola", "Bonjour", "Ciao",
	"Hallo", "Hej", "Aloha", "Namaste", "Konnichiwa", "Annyeonghaseyo", "Ni hao",
	"Salaam", "Shalom", "Sawubona", "Jambo", "Moin", "Yerrrr", "Wagwan", "Wassup", "Moi",
}

// Bot turns chat messages into service calls and chat replies.
type Bot struct {
	Transport chat.Transport
	Duels     *DuelService
	Economy   *EconomyService
	Presence  *PresenceService
	Stats     *StatsService
	Bank      *QuestionBank

	BroadcasterID string
	// Pick returns an index in [0, n) for greetings.
	Pick func(n int) int
}

// Handle processes one message to completion. Only transport failures are returned;
// everything else is answered in chat and logged.
func (b *Bot) Handle(ctx context.Context, msg chat.Message) error {
	actor := Actor{ID: msg.UserID, Name: msg.Username}
	if _, err := b.Presence.Observe(ctx, actor); err != nil {
		logger.Error("failed to record presence", "twitch_id", actor.ID, "error", err)
	}

	cmd, ok, err := commands.Parse(msg.Text)
	if !ok {
		return nil
	}
	if err != nil {
		var perr *commands.ParseError
		if errors.As(err, &perr) {
			return b.replyError(msg, perr.Reply())
		}
		return b.replyError(msg, genericFailure)
	}

	lines, err := b.dispatch(ctx, actor, msg, cmd)
	if err != nil {
		if ue, ok := AsUserError(err); ok {
			return b.replyError(msg, ue.Message)
		}
		logger.Error("command failed", "command", fmt.Sprintf("%T", cmd), "twitch_id", actor.ID, "error", err)
		return b.replyError(msg, genericFailure)
	}

	for _, text := range lines {
		if err := b.Transport.Send(msg.Channel, text); err != nil {
			return fmt.Errorf("failed to send reply: %w", err)
		}
	}
	return nil
}

func (b *Bot) dispatch(ctx context.Context, actor Actor, msg chat.Message, cmd commands.Command) ([]string, error) {
	switch c := cmd.(type) {
	case commands.Duel:
		return duelLines(b.Duels.Challenge(ctx, actor, c.Target, c.Wager))
	case commands.Accept:
		return duelLines(b.Duels.Accept(ctx, actor, c.Challenger))
	case commands.Answer:
		return duelLines(b.Duels.Answer(ctx, actor, c.Text))
	case commands.Repeat:
		return duelLines(b.Duels.Repeat(ctx, actor))
	case commands.Points:
		return line(b.Economy.Points(ctx, actor))
	case commands.Gift:
		return line(b.Economy.Gift(ctx, actor, c.Target, c.Amount))
	case commands.Gamble:
		return line(b.Economy.Gamble(ctx, actor, c.Amount))
	case commands.Kda:
		return line(b.Stats.Kda(ctx, actor))
	case commands.Ranking:
		return line(b.Stats.Ranking(ctx, actor))
	case commands.TopDuelists:
		return line(b.Stats.TopDuelists(ctx, 3))
	case commands.Lurk:
		return line(b.Presence.Lurk(ctx, actor))
	case commands.Unlurk:
		return line(b.Presence.Unlurk(ctx, actor))
	case commands.Lurkers:
		return line(b.Presence.Lurkers(ctx))
	case commands.LurkTime:
		return line(b.Presence.LurkTime(ctx, actor))
	case commands.Categories:
		return b.categories(ctx)
	case commands.Help:
		return []string{"Available commands: " + strings.Join(commands.Names, ", ")}, nil
	case commands.Yo:
		return []string{fmt.Sprintf("%s @%s", greetings[b.pick(len(greetings))], actor.Name)}, nil
	case commands.AddPoints:
		if !b.isBroadcaster(msg) {
			return nil, validation(MsgBroadcasterOnly)
		}
		granted, err := b.Economy.Grant(ctx, c.Target, c.Amount)
		if err != nil {
			return nil, err
		}
		return []string{fmt.Sprintf("@%s now has %d points!", granted.Username, granted.Points)}, nil
	case commands.AddQuestion:
		if !b.isBroadcaster(msg) {
			return nil, validation(MsgBroadcasterOnly)
		}
		q, err := b.Bank.AddQuestion(ctx, c.Category, c.Question, c.Answer, actor.ID)
		if err != nil {
			return nil, err
		}
		return []string{fmt.Sprintf("Question added to %s!", q.Category.Name)}, nil
	}
	return nil, fmt.Errorf("unhandled command %T", cmd)
}

func (b *Bot) categories(ctx context.Context) ([]string, error) {
	categories, err := b.Bank.Categories(ctx)
	if err != nil {
		return nil, err
	}
	if len(categories) == 0 {
		return []string{"No categories yet!"}, nil
	}
	names := make([]string, len(categories))
	for i, c := range categories {
		names[i] = c.Name
	}
	return []string{"Categories: " + strings.Join(names, ", ")}, nil
}

// isBroadcaster trusts BroadcasterID when configured and the chat badge otherwise.
func (b *Bot) isBroadcaster(msg chat.Message) bool {
	if b.BroadcasterID != "" {
		return msg.UserID == b.BroadcasterID
	}
	return msg.Broadcaster
}

func (b *Bot) replyError(msg chat.Message, text string) error {
	if err := b.Transport.Reply(msg, fmt.Sprintf("@%s Error; %s", msg.Username, text)); err != nil {
		return fmt.Errorf("failed to send error reply: %w", err)
	}
	return nil
}

func (b *Bot) pick(n int) int {
	if b.Pick != nil {
		return b.Pick(n)
	}
	return rand.IntN(n)
}

func duelLines(res *DuelResult, err error) ([]string, error) {
	if err != nil {
		return nil, err
	}
	return res.Lines, nil
}

func line(s string, err error) ([]string, error) {
	if err != nil {
		return nil, err
	}
	return []string{s}, nil
}
