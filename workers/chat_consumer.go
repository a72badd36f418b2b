// workers/chat_consumer.go
package workers

import (
	"context"
	"time"

	"duel-bot/chat"
	"duel-bot/logger"
)

// MessageHandler processes one chat message to completion.
type MessageHandler interface {
	Handle(ctx context.Context, msg chat.Message) error
}

// ChatConsumer feeds chat messages to a handler strictly one at a time.
type ChatConsumer struct {
	handler MessageHandler
	inbox   chan chat.Message
	timeout time.Duration
	done    chan struct{}
}

func NewChatConsumer(handler MessageHandler, buffer int, timeout time.Duration) *ChatConsumer {
	if buffer <= 0 {
		buffer = 256
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &ChatConsumer{
		handler: handler,
		inbox:   make(chan chat.Message, buffer),
		timeout: timeout,
		done:    make(chan struct{}),
	}
}

// Enqueue hands a message to the consumer. It blocks while the inbox is full
// and reports false once ctx is done.
func (c *ChatConsumer) Enqueue(ctx context.Context, msg chat.Message) bool {
	select {
	case c.inbox <- msg:
		return true
	case <-ctx.Done():
		return false
	}
}

func (c *ChatConsumer) Start(ctx context.Context) {
	logger.Info("🔁 Starting chat consumer")
	go c.run(ctx)
}

// Done is closed once the consumer has stopped.
func (c *ChatConsumer) Done() <-chan struct{} {
	return c.done
}

func (c *ChatConsumer) run(ctx context.Context) {
	defer close(c.done)
	for {
		select {
		case msg := <-c.inbox:
			c.handle(ctx, msg)
		case <-ctx.Done():
			logger.Info("⏹️ Chat consumer stopped")
			return
		}
	}
}

func (c *ChatConsumer) handle(ctx context.Context, msg chat.Message) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if err := c.handler.Handle(ctx, msg); err != nil {
		logger.Error("❌ chat message failed", "channel", msg.Channel, "user", msg.Username, "error", err)
	}
}
