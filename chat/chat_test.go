package chat

import (
	"errors"
	"testing"

	"github.com/gempir/go-twitch-irc/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorder(t *testing.T) {
	r := &Recorder{}
	msg := Message{ID: "m1", Channel: "tolu", Text: "!yo"}

	require.NoError(t, r.Send("tolu", "hello"))
	require.NoError(t, r.Reply(msg, "yo"))

	assert.Equal(t, []string{"hello", "yo"}, r.Texts())
	assert.Equal(t, Sent{Channel: "tolu", ReplyTo: "m1", Text: "yo"}, r.Sent()[1])

	r.Fail = errors.New("boom")
	assert.Error(t, r.Send("tolu", "lost"))
	assert.Len(t, r.Texts(), 2)

	r.Reset()
	assert.Empty(t, r.Texts())
}

func TestTwitch_NotConnected(t *testing.T) {
	tw := NewTwitch("duelbot", "oauth:token", []string{"tolu"})

	assert.ErrorIs(t, tw.Send("tolu", "hi"), ErrNotConnected)
	assert.ErrorIs(t, tw.Reply(Message{ID: "1", Channel: "tolu"}, "hi"), ErrNotConnected)
}

func TestFromPrivateMessage_UsesLogin(t *testing.T) {
	msg := fromPrivateMessage(twitch.PrivateMessage{
		User: twitch.User{
			ID:          "42",
			Name:        "tolu_streams",
			DisplayName: "トル",
			Badges:      map[string]int{"broadcaster": 1},
		},
		Channel: "tolu_streams",
		Message: "!duel @bob 100",
		ID:      "m1",
	})

	assert.Equal(t, Message{
		ID:          "m1",
		Channel:     "tolu_streams",
		UserID:      "42",
		Username:    "tolu_streams",
		Text:        "!duel @bob 100",
		Broadcaster: true,
	}, msg)

	msg = fromPrivateMessage(twitch.PrivateMessage{User: twitch.User{ID: "7", Name: "bob"}})
	assert.False(t, msg.Broadcaster)
	assert.Equal(t, "bob", msg.Username)
}
