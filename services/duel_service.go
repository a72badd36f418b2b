package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"duel-bot/commands"
	"duel-bot/config"
	"duel-bot/events"
	"duel-bot/logger"
	"duel-bot/models"

	"github.com/jonboulle/clockwork"
	"golang.org/x/text/unicode/norm"
)

// Actor is the chatter a command came from.
type Actor struct {
	ID   string
	Name string
}

// DuelResult carries the affected duel and the chat lines announcing the outcome.
type DuelResult struct {
	Duel  *models.Duel
	Lines []string
}

// DuelService drives duels from challenge to completion and settles the wager.
type DuelService struct {
	Store   Store
	Pending PendingIndex
	Events  events.Publisher
	Clock   clockwork.Clock

	GuessBudget  int
	StaleAfter   time.Duration
	DefaultWager int64
}

func NewDuelService(store Store, pending PendingIndex, publisher events.Publisher, clock clockwork.Clock, game config.Game) *DuelService {
	if publisher == nil {
		publisher = events.Nop{}
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &DuelService{
		Store:        store,
		Pending:      pending,
		Events:       publisher,
		Clock:        clock,
		GuessBudget:  game.GuessBudget,
		StaleAfter:   game.StaleAfter,
		DefaultWager: game.DefaultWager,
	}
}

// NormalizeAnswer is the form both the stored answer and a guess are compared in.
func NormalizeAnswer(s string) string {
	return norm.NFC.String(strings.ToLower(strings.TrimSpace(s)))
}

// Challenge creates a duel from challenger against the chatter named target.
// wager nil means the default wager.
func (s *DuelService) Challenge(ctx context.Context, challenger Actor, target string, wager *int64) (*DuelResult, error) {
	if strings.EqualFold(challenger.Name, target) {
		return nil, validation(MsgSelfDuel)
	}

	from, err := s.Store.GetChatter(ctx, challenger.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load challenger: %w", err)
	}
	if from == nil {
		return nil, notFound(MsgChatterNotFound)
	}
	to, err := s.Store.GetChatterByName(ctx, target)
	if err != nil {
		return nil, fmt.Errorf("failed to load challenged chatter: %w", err)
	}
	if to == nil {
		return nil, notFound(MsgChatterNotFound)
	}
	if to.TwitchID == from.TwitchID {
		return nil, validation(MsgSelfDuel)
	}

	points := s.DefaultWager
	if wager != nil {
		points = *wager
	}
	if points < 0 {
		return nil, validation(commands.MsgNegativePoints)
	}
	if points > from.Points {
		return nil, validation(MsgNotEnoughPoints)
	}

	var lines []string
	if err := s.clearAccepted(ctx, from.TwitchID, MsgAlreadyAccepted, &lines); err != nil {
		return nil, err
	}

	duel := &models.Duel{
		Challenger:        from.Username,
		Challenged:        to.Username,
		ChallengerID:      from.TwitchID,
		ChallengedID:      to.TwitchID,
		Points:            points,
		Status:            models.DuelStatusChallenged,
		ChallengerGuesses: s.GuessBudget,
		ChallengedGuesses: s.GuessBudget,
		CreatedAt:         s.Clock.Now(),
	}
	if err := s.Store.CreateDuel(ctx, duel); err != nil {
		return nil, fmt.Errorf("failed to create duel: %w", err)
	}
	if err := s.Pending.Push(ctx, PairKey(duel.Challenger, duel.Challenged), duel.ID); err != nil {
		logger.Warn("failed to index pending duel", "duel_id", duel.ID, "error", err)
	}
	logger.Info("⚔️ duel challenged", "duel_id", duel.ID, "challenger", duel.Challenger, "challenged", duel.Challenged, "points", duel.Points)
	s.publish(ctx, events.DuelChallenged, duel)

	lines = append(lines, fmt.Sprintf(
		"@%s Challenge Announced for %d points, @%s type the command '!accept @%s' to begin duel!",
		duel.Challenger, duel.Points, duel.Challenged, duel.Challenger,
	))
	return &DuelResult{Duel: duel, Lines: lines}, nil
}

// Accept starts the duel acceptor was challenged to. An empty challenger name is
// allowed only when exactly one challenge is outstanding.
func (s *DuelService) Accept(ctx context.Context, acceptor Actor, challengerName string) (*DuelResult, error) {
	me, err := s.Store.GetChatter(ctx, acceptor.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load acceptor: %w", err)
	}
	if me == nil {
		return nil, notFound(MsgChatterNotFound)
	}

	var duel *models.Duel
	if challengerName == "" {
		duel, err = s.soleChallenge(ctx, me)
	} else {
		duel, err = s.namedChallenge(ctx, me, challengerName)
	}
	if err != nil {
		return nil, err
	}

	var lines []string
	if err := s.clearAccepted(ctx, me.TwitchID, MsgAlreadyAccepted, &lines); err != nil {
		return nil, err
	}
	if err := s.clearAccepted(ctx, duel.ChallengerID, MsgOpponentBusy, &lines); err != nil {
		return nil, err
	}

	bank := NewQuestionBank(s.Store)
	question, err := bank.RandomQuestion(ctx)
	if err != nil {
		return nil, err
	}
	if question == nil {
		return nil, validation(MsgNoQuestions)
	}
	category, err := bank.DisplayCategory(ctx, question)
	if err != nil {
		return nil, err
	}

	err = s.Store.WithTx(ctx, func(tx Store) error {
		if err := tx.SetAccepted(ctx, duel.ID); err != nil {
			return err
		}
		if err := tx.CreateAccepted(ctx, &models.AcceptedDuel{
			DuelID:       duel.ID,
			ChallengerID: duel.ChallengerID,
			ChallengedID: duel.ChallengedID,
			CreatedAt:    s.Clock.Now(),
		}); err != nil {
			return err
		}
		if err := tx.SetQuestion(ctx, duel.ID, question, category); err != nil {
			return err
		}
		return NewQuestionBank(tx).RecordAsked(ctx, question.ID)
	})
	if errors.Is(err, ErrInvalidTransition) {
		return nil, notFound(MsgNoDuel)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to accept duel: %w", err)
	}
	if err := s.Pending.Remove(ctx, PairKey(duel.Challenger, duel.Challenged), duel.ID); err != nil {
		logger.Warn("failed to drop accepted duel from index", "duel_id", duel.ID, "error", err)
	}

	duel, err = s.Store.GetDuel(ctx, duel.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload duel: %w", err)
	}
	logger.Info("🤝 duel accepted", "duel_id", duel.ID, "question_id", question.ID)
	s.publish(ctx, events.DuelAccepted, duel)

	lines = append(lines,
		fmt.Sprintf("@%s @%s Accepted! Once you read the question; type '!answer <your_answer>' to answer!", duel.Challenger, duel.Challenged),
		questionLine(duel),
	)
	return &DuelResult{Duel: duel, Lines: lines}, nil
}

// Answer evaluates a guess from one participant of an accepted duel.
func (s *DuelService) Answer(ctx context.Context, responder Actor, guess string) (*DuelResult, error) {
	duel, err := s.acceptedDuel(ctx, responder.ID)
	if err != nil {
		return nil, err
	}

	name := duel.Name(responder.ID)
	if duel.GuessesLeft(responder.ID) <= 0 {
		return &DuelResult{Duel: duel, Lines: []string{fmt.Sprintf("@%s you are out of guesses!", name)}}, nil
	}

	if duel.Answer != nil && NormalizeAnswer(guess) == NormalizeAnswer(*duel.Answer) {
		return s.win(ctx, duel, responder.ID)
	}
	return s.miss(ctx, duel, responder.ID)
}

// Repeat shows the question of the responder's accepted duel again.
func (s *DuelService) Repeat(ctx context.Context, responder Actor) (*DuelResult, error) {
	duel, err := s.acceptedDuel(ctx, responder.ID)
	if err != nil {
		return nil, err
	}
	return &DuelResult{Duel: duel, Lines: []string{
		fmt.Sprintf("@%s @%s %s", duel.Challenger, duel.Challenged, questionLine(duel)),
	}}, nil
}

func (s *DuelService) win(ctx context.Context, duel *models.Duel, winnerID string) (*DuelResult, error) {
	loserName, loserID := duel.Opponent(winnerID)
	penalty := duel.Points / 2

	var winner *models.Chatter
	err := s.Store.WithTx(ctx, func(tx Store) error {
		var err error
		winner, err = tx.UpdateChatter(ctx, winnerID, func(c *models.Chatter) error {
			c.Points = AddPoints(c.Points, duel.Points)
			c.Wins++
			return nil
		})
		if err != nil {
			return err
		}
		if winner == nil {
			return fmt.Errorf("winner %s has no account", winnerID)
		}
		loser, err := tx.UpdateChatter(ctx, loserID, func(c *models.Chatter) error {
			c.Points = SubtractPoints(c.Points, penalty)
			c.Losses++
			return nil
		})
		if err != nil {
			return err
		}
		if loser == nil {
			logger.Warn("duel loser has no account", "duel_id", duel.ID, "twitch_id", loserID)
		}
		if err := tx.DestroyAccepted(ctx, duel.ID); err != nil {
			return err
		}
		return tx.Complete(ctx, duel.ID, winner)
	})
	if errors.Is(err, ErrInvalidTransition) {
		return nil, notFound(MsgNoDuel)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to settle duel: %w", err)
	}

	duel, err = s.Store.GetDuel(ctx, duel.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload duel: %w", err)
	}
	logger.Info("🏆 duel won", "duel_id", duel.ID, "winner", winner.Username, "points", duel.Points)
	s.publish(ctx, events.DuelCompleted, duel)

	return &DuelResult{Duel: duel, Lines: []string{fmt.Sprintf(
		"Correct! @%s won %d Points & @%s lost %d Points!",
		duel.Name(winnerID), duel.Points, loserName, penalty,
	)}}, nil
}

func (s *DuelService) miss(ctx context.Context, duel *models.Duel, responderID string) (*DuelResult, error) {
	penalty := duel.Points / 2

	var updated *models.Duel
	err := s.Store.WithTx(ctx, func(tx Store) error {
		var err error
		updated, err = tx.DecrementGuess(ctx, duel.ID, duel.IsChallenger(responderID))
		if err != nil {
			return err
		}
		if !updated.Exhausted() {
			return nil
		}
		for _, id := range []string{updated.ChallengerID, updated.ChallengedID} {
			if _, err := tx.UpdateChatter(ctx, id, func(c *models.Chatter) error {
				c.Points = SubtractPoints(c.Points, penalty)
				return nil
			}); err != nil {
				return err
			}
		}
		if err := tx.DestroyAccepted(ctx, updated.ID); err != nil {
			return err
		}
		if err := tx.Complete(ctx, updated.ID, nil); err != nil {
			return err
		}
		if updated.QuestionID != nil {
			return NewQuestionBank(tx).RecordUnanswered(ctx, *updated.QuestionID)
		}
		return nil
	})
	if errors.Is(err, ErrInvalidTransition) {
		return &DuelResult{Duel: duel, Lines: []string{fmt.Sprintf("@%s you are out of guesses!", duel.Name(responderID))}}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to record guess: %w", err)
	}

	name := updated.Name(responderID)
	left := updated.GuessesLeft(responderID)
	var lines []string
	if left > 0 {
		lines = append(lines, fmt.Sprintf("Incorrect! @%s you have %d guesses remaining! type '!repeat' to repeat the question", name, left))
	} else {
		lines = append(lines, fmt.Sprintf("@%s you are out of guesses!", name))
	}

	if !updated.Exhausted() {
		return &DuelResult{Duel: updated, Lines: lines}, nil
	}

	completed, err := s.Store.GetDuel(ctx, updated.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload duel: %w", err)
	}
	logger.Info("🤷 duel exhausted", "duel_id", completed.ID, "points", completed.Points)
	s.publish(ctx, events.DuelCompleted, completed)

	answer := ""
	if completed.Answer != nil {
		answer = *completed.Answer
	}
	lines = append(lines, fmt.Sprintf(
		"Both players have exhausted their guesses! The duel is over! Both @%s and @%s lose %d points! The correct answer was %s",
		completed.Challenger, completed.Challenged, penalty, answer,
	))
	return &DuelResult{Duel: completed, Lines: lines}, nil
}

// clearAccepted rejects with msg while twitchID is in a live accepted duel.
// A stale one is completed as a tie without any point transfer.
func (s *DuelService) clearAccepted(ctx context.Context, twitchID, msg string, lines *[]string) error {
	acc, err := s.Store.GetAccepted(ctx, twitchID)
	if err != nil {
		return fmt.Errorf("failed to look up accepted duel: %w", err)
	}
	if acc == nil {
		return nil
	}
	if s.Clock.Since(acc.CreatedAt) <= s.StaleAfter {
		return validation(msg)
	}

	duel, err := s.CancelStale(ctx, acc)
	if err != nil {
		return err
	}
	if duel != nil {
		*lines = append(*lines, fmt.Sprintf("The duel between @%s and @%s went stale and ended in a draw.", duel.Challenger, duel.Challenged))
	}
	return nil
}

// CancelStale force-completes an accepted duel with no winner and no point transfer.
func (s *DuelService) CancelStale(ctx context.Context, acc *models.AcceptedDuel) (*models.Duel, error) {
	err := s.Store.WithTx(ctx, func(tx Store) error {
		if err := tx.DestroyAccepted(ctx, acc.DuelID); err != nil {
			return err
		}
		if err := tx.Complete(ctx, acc.DuelID, nil); err != nil && !errors.Is(err, ErrInvalidTransition) {
			return err
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to cancel stale duel: %w", err)
	}

	duel, err := s.Store.GetDuel(ctx, acc.DuelID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload duel: %w", err)
	}
	if duel == nil {
		return nil, nil
	}
	logger.Info("⌛ stale duel cancelled", "duel_id", duel.ID, "accepted_at", acc.CreatedAt)
	s.publish(ctx, events.DuelCompleted, duel)
	return duel, nil
}

func (s *DuelService) soleChallenge(ctx context.Context, me *models.Chatter) (*models.Duel, error) {
	challenges, err := s.Store.ListChallengesFor(ctx, me.TwitchID)
	if err != nil {
		return nil, fmt.Errorf("failed to list challenges: %w", err)
	}
	switch len(challenges) {
	case 0:
		return nil, notFound(MsgNoDuel)
	case 1:
	default:
		return nil, validation(MsgAmbiguousAccept)
	}
	return &challenges[0], nil
}

// namedChallenge finds the oldest live challenge from challengerName without
// dequeuing it. Dead entries at the front of the index are discarded. The store
// is consulted when the index has nothing, so a lost index only costs a query.
func (s *DuelService) namedChallenge(ctx context.Context, me *models.Chatter, challengerName string) (*models.Duel, error) {
	key := PairKey(challengerName, me.Username)
	for {
		id, ok, err := s.Pending.Front(ctx, key)
		if err != nil {
			logger.Warn("pending index unavailable, falling back to store", "key", key, "error", err)
			break
		}
		if !ok {
			break
		}
		duel, err := s.Store.GetDuel(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("failed to load pending duel: %w", err)
		}
		if duel != nil && duel.Status == models.DuelStatusChallenged && duel.ChallengedID == me.TwitchID {
			return duel, nil
		}
		if err := s.Pending.Remove(ctx, key, id); err != nil {
			logger.Warn("pending index unavailable, falling back to store", "key", key, "error", err)
			break
		}
	}

	challenges, err := s.Store.ListChallengesFor(ctx, me.TwitchID)
	if err != nil {
		return nil, fmt.Errorf("failed to list challenges: %w", err)
	}
	if len(challenges) == 0 {
		return nil, notFound(MsgNoDuel)
	}
	for i := range challenges {
		if strings.EqualFold(challenges[i].Challenger, challengerName) {
			return &challenges[i], nil
		}
	}
	return nil, validation(MsgWrongOpponent)
}

func (s *DuelService) acceptedDuel(ctx context.Context, twitchID string) (*models.Duel, error) {
	acc, err := s.Store.GetAccepted(ctx, twitchID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up accepted duel: %w", err)
	}
	if acc == nil {
		return nil, notFound(MsgNoDuel)
	}
	duel, err := s.Store.GetDuel(ctx, acc.DuelID)
	if err != nil {
		return nil, fmt.Errorf("failed to load duel: %w", err)
	}
	if duel == nil || duel.Status != models.DuelStatusAccepted {
		logger.Warn("accepted index points at a duel that is not accepted", "duel_id", acc.DuelID)
		return nil, notFound(MsgNoDuel)
	}
	return duel, nil
}

func (s *DuelService) publish(ctx context.Context, kind events.Kind, duel *models.Duel) {
	e := events.Event{
		Kind:       kind,
		DuelID:     duel.ID,
		Challenger: duel.Challenger,
		Challenged: duel.Challenged,
		Points:     duel.Points,
		Status:     string(duel.Status),
		OccurredAt: s.Clock.Now(),
	}
	if duel.Winner != nil {
		e.Winner = *duel.Winner
	}
	if duel.Category != nil {
		e.Category = *duel.Category
	}
	if err := s.Events.Publish(ctx, e); err != nil {
		logger.Warn("failed to publish duel event", "kind", kind, "duel_id", duel.ID, "error", err)
	}
}

func questionLine(duel *models.Duel) string {
	category, question := "", ""
	if duel.Category != nil {
		category = *duel.Category
	}
	if duel.Question != nil {
		question = *duel.Question
	}
	return fmt.Sprintf("[%s] %s", category, question)
}
