// Package chat connects the bot to a live chat channel.
package chat

import (
	"errors"
	"sync"
)

var ErrNotConnected = errors.New("chat transport is not connected")

// Message is one inbound chat line.
type Message struct {
	ID          string
	Channel     string
	UserID      string
	Username    string
	Text        string
	Broadcaster bool
}

// Transport emits text to chat. Failures are returned, never dropped.
type Transport interface {
	Send(channel, text string) error
	Reply(msg Message, text string) error
}

// Sent is one line emitted through a Recorder.
type Sent struct {
	Channel string
	ReplyTo string
	Text    string
}

// Recorder is an in-memory Transport. Fail, when set, is returned by every call.
type Recorder struct {
	mu   sync.Mutex
	sent []Sent
	Fail error
}

func (r *Recorder) Send(channel, text string) error {
	return r.record(Sent{Channel: channel, Text: text})
}

func (r *Recorder) Reply(msg Message, text string) error {
	return r.record(Sent{Channel: msg.Channel, ReplyTo: msg.ID, Text: text})
}

func (r *Recorder) record(s Sent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Fail != nil {
		return r.Fail
	}
	r.sent = append(r.sent, s)
	return nil
}

// Texts returns the text of every recorded line in order.
func (r *Recorder) Texts() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	texts := make([]string, len(r.sent))
	for i, s := range r.sent {
		texts[i] = s.Text
	}
	return texts
}

func (r *Recorder) Sent() []Sent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Sent(nil), r.sent...)
}

func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = nil
}
