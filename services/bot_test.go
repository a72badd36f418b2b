package services

import (
	"context"
	"errors"
	"testing"

	"duel-bot/chat"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type botFixture struct {
	*duelFixture
	chat *chat.Recorder
	bot  *Bot
}

func newBotFixture(t *testing.T) *botFixture {
	t.Helper()
	f := newDuelFixture(t, true)
	rec := &chat.Recorder{}
	economy := NewEconomyService(f.store)
	economy.Coin = func() bool { return true }
	bot := &Bot{
		Transport:     rec,
		Duels:         f.duels,
		Economy:       economy,
		Presence:      NewPresenceService(f.store, f.clock, 5, 1),
		Stats:         NewStatsService(f.store),
		Bank:          NewQuestionBank(f.store),
		BroadcasterID: "99",
		Pick:          func(int) int { return 0 },
	}
	return &botFixture{duelFixture: f, chat: rec, bot: bot}
}

func (f *botFixture) say(t *testing.T, from Actor, text string) []string {
	t.Helper()
	f.chat.Reset()
	msg := chat.Message{ID: "msg-" + from.ID, Channel: "tolu", UserID: from.ID, Username: from.Name, Text: text}
	require.NoError(t, f.bot.Handle(context.Background(), msg))
	return f.chat.Texts()
}

func TestBot_PlainMessageOnlyRecordsPresence(t *testing.T) {
	f := newBotFixture(t)
	dave := Actor{ID: "4", Name: "Dave"}

	assert.Empty(t, f.say(t, dave, "hello chat"))
	assert.Equal(t, int64(5), mustChatter(t, f.store, dave.ID).Points)

	assert.Empty(t, f.say(t, dave, "!notacommand"))
	assert.Equal(t, int64(10), mustChatter(t, f.store, dave.ID).Points)
}

func TestBot_DuelOverChat(t *testing.T) {
	f := newBotFixture(t)

	assert.Equal(t, []string{
		"@Bob Challenge Announced for 200 points, @Alice type the command '!accept @Bob' to begin duel!",
	}, f.say(t, bob, "!challenge @alice 200"))

	assert.Equal(t, []string{
		"@Bob @Alice Accepted! Once you read the question; type '!answer <your_answer>' to answer!",
		"[Word Scramble] lopo",
	}, f.say(t, alice, "!accept @bob"))

	assert.Equal(t, []string{"@Bob @Alice [Word Scramble] lopo"}, f.say(t, bob, "!repeat"))

	assert.Equal(t, []string{
		"Incorrect! @Bob you have 4 guesses remaining! type '!repeat' to repeat the question",
	}, f.say(t, bob, "!answer loop"))

	assert.Equal(t, []string{"Correct! @Alice won 200 Points & @Bob lost 100 Points!"}, f.say(t, alice, "!a Pool"))

	// 1000 seeded, +5 per message, then the wager settles.
	assert.Equal(t, int64(1000+2*5+200), mustChatter(t, f.store, alice.ID).Points)
	assert.Equal(t, int64(1000+3*5-100), mustChatter(t, f.store, bob.ID).Points)

	assert.Equal(t, []string{"@Alice Wins: 1 Losses: 0"}, f.say(t, alice, "!kda"))
	assert.Equal(t, []string{"Top Duelists: 1. Alice (1 wins) | 2. Carol (0 wins) | 3. Bob (0 wins)"}, f.say(t, carol, "!topDuelists"))
}

func TestBot_ErrorsAreRepliedToSender(t *testing.T) {
	f := newBotFixture(t)

	f.say(t, bob, "!duel bob")
	sent := f.chat.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, "@Bob Error; You can't duel yourself silly!", sent[0].Text)
	assert.Equal(t, "msg-1", sent[0].ReplyTo)

	assert.Equal(t, []string{"@Bob Error; Provide a valid point value."}, f.say(t, bob, "!duel alice lots"))
	assert.Equal(t, []string{"@Bob Error; Too many arguments!"}, f.say(t, bob, "!duel alice 1 2"))
	assert.Equal(t, []string{"@Carol Error; No duel found!"}, f.say(t, carol, "!answer pool"))
}

func TestBot_BroadcasterOnlyCommands(t *testing.T) {
	f := newBotFixture(t)
	broadcaster := Actor{ID: "99", Name: "Tolu"}

	assert.Equal(t, []string{"@Alice Error; Only the broadcaster can do that!"}, f.say(t, alice, "!addpoints @bob 500"))
	assert.Equal(t, []string{"@Bob now has 1500 points!"}, f.say(t, broadcaster, "!addpoints @bob 500"))

	assert.Equal(t, []string{"Question added to Word Scramble!"},
		f.say(t, broadcaster, "!addquestion word-scramble ubritro | burrito"))
	assert.Equal(t, []string{"@Tolu Error; Category not found!"},
		f.say(t, broadcaster, "!addquestion nope q | a"))
}

func TestBot_EconomyCommands(t *testing.T) {
	f := newBotFixture(t)

	assert.Equal(t, []string{"@Bob, you have 1005 point(s)!"}, f.say(t, bob, "!points"))
	assert.Equal(t, []string{"@Bob gifted 100 points to @Alice!"}, f.say(t, bob, "!gift @alice 100"))
	assert.Equal(t, int64(1010-100), mustChatter(t, f.store, bob.ID).Points)
	assert.Equal(t, int64(1100), mustChatter(t, f.store, alice.ID).Points)

	assert.Equal(t, []string{"@Bob won 10 points and now has 925 points!"}, f.say(t, bob, "!gamble 10"))
	assert.Equal(t, []string{"@Bob Error; You don't have enough points to gamble that much!"}, f.say(t, bob, "!gamble 100000"))
	assert.Equal(t, []string{"@Bob you are ranked #3 with 935 points!"}, f.say(t, bob, "!ranking"))
}

func TestBot_MiscCommands(t *testing.T) {
	f := newBotFixture(t)

	assert.Equal(t, []string{"yo @Bob"}, f.say(t, bob, "!yo"))
	help := f.say(t, bob, "!commands")
	require.Len(t, help, 1)
	assert.Contains(t, help[0], "!duel")
	assert.Equal(t, []string{"Categories: Word Scramble"}, f.say(t, bob, "!categories"))

	assert.Equal(t, []string{"We got a lurker over here!!! Enjoy the stream @Bob"}, f.say(t, bob, "!lurk"))
	assert.Equal(t, []string{"Lurkers: Bob"}, f.say(t, alice, "!lurkers"))
	assert.Equal(t, []string{"Welcome back @Bob!"}, f.say(t, bob, "!unlurk"))
	assert.Equal(t, []string{"@Bob you weren't lurking!"}, f.say(t, bob, "!unlurk"))
}

func TestBot_TransportFailureKeepsCommittedState(t *testing.T) {
	f := newBotFixture(t)
	f.chat.Fail = errors.New("irc down")

	msg := chat.Message{ID: "m", Channel: "tolu", UserID: bob.ID, Username: bob.Name, Text: "!duel alice 100"}
	err := f.bot.Handle(context.Background(), msg)
	require.Error(t, err)
	assert.Equal(t, int64(1), countDuels(t, f.store))
}

func TestBot_StorageFailureGetsGenericReply(t *testing.T) {
	f := newBotFixture(t)
	sqlDB, err := f.store.DB.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	assert.Equal(t, []string{"@Bob Error; " + genericFailure}, f.say(t, bob, "!points"))
}
