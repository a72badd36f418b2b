package chat

import (
	"context"
	"errors"
	"sync/atomic"

	"duel-bot/logger"

	"github.com/gempir/go-twitch-irc/v4"
)

// Twitch is a Transport over Twitch IRC.
type Twitch struct {
	client    *twitch.Client
	channels  []string
	connected atomic.Bool
}

func NewTwitch(user, oauthToken string, channels []string) *Twitch {
	t := &Twitch{
		client:   twitch.NewClient(user, oauthToken),
		channels: channels,
	}
	t.client.OnConnect(func() {
		t.connected.Store(true)
		logger.Info("🟣 connected to twitch chat", "channels", channels)
	})
	return t
}

// OnMessage registers the handler for every chat line in the joined channels.
func (t *Twitch) OnMessage(fn func(Message)) {
	t.client.OnPrivateMessage(func(m twitch.PrivateMessage) {
		fn(fromPrivateMessage(m))
	})
}

// fromPrivateMessage keys chatters by their ASCII login; display names may be localized.
func fromPrivateMessage(m twitch.PrivateMessage) Message {
	_, broadcaster := m.User.Badges["broadcaster"]
	return Message{
		ID:          m.ID,
		Channel:     m.Channel,
		UserID:      m.User.ID,
		Username:    m.User.Name,
		Text:        m.Message,
		Broadcaster: broadcaster,
	}
}

// Run joins the configured channels and blocks until ctx is done or the connection fails.
func (t *Twitch) Run(ctx context.Context) error {
	t.client.Join(t.channels...)

	go func() {
		<-ctx.Done()
		if err := t.client.Disconnect(); err != nil {
			logger.Warn("twitch disconnect failed", "error", err)
		}
	}()

	err := t.client.Connect()
	t.connected.Store(false)
	if errors.Is(err, twitch.ErrClientDisconnected) {
		return nil
	}
	return err
}

func (t *Twitch) Send(channel, text string) error {
	if !t.connected.Load() {
		return ErrNotConnected
	}
	t.client.Say(channel, text)
	return nil
}

func (t *Twitch) Reply(msg Message, text string) error {
	if !t.connected.Load() {
		return ErrNotConnected
	}
	if msg.ID == "" {
		t.client.Say(msg.Channel, text)
		return nil
	}
	t.client.Reply(msg.Channel, msg.ID, text)
	return nil
}
