package services

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"duel-bot/logger"
)

// PendingIndex queues not-yet-accepted duel ids per challenger/challenged pair, oldest first.
// It is an acceleration structure over the store and can always be rebuilt from it.
type PendingIndex interface {
	Push(ctx context.Context, key, duelID string) error
	// PopFront removes the oldest duel id queued under key. ok is false when none is queued.
	PopFront(ctx context.Context, key string) (duelID string, ok bool, err error)
	// Front returns the oldest duel id queued under key without removing it.
	Front(ctx context.Context, key string) (duelID string, ok bool, err error)
	// Remove drops duelID from the queue under key wherever it sits.
	Remove(ctx context.Context, key, duelID string) error
	Len(ctx context.Context, key string) (int, error)
	Reset(ctx context.Context) error
}

// PairKey is the lower-cased challenger name followed by the lower-cased challenged name.
func PairKey(challenger, challenged string) string {
	return strings.ToLower(challenger) + strings.ToLower(challenged)
}

// MemoryPendingIndex keeps the queues in process memory.
type MemoryPendingIndex struct {
	mu     sync.Mutex
	queues map[string][]string
}

func NewMemoryPendingIndex() *MemoryPendingIndex {
	return &MemoryPendingIndex{queues: make(map[string][]string)}
}

func (m *MemoryPendingIndex) Push(_ context.Context, key, duelID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queues[key] = append(m.queues[key], duelID)
	return nil
}

func (m *MemoryPendingIndex) PopFront(_ context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	queue := m.queues[key]
	if len(queue) == 0 {
		return "", false, nil
	}
	front := queue[0]
	if len(queue) == 1 {
		delete(m.queues, key)
	} else {
		m.queues[key] = queue[1:]
	}
	return front, true, nil
}

func (m *MemoryPendingIndex) Front(_ context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	queue := m.queues[key]
	if len(queue) == 0 {
		return "", false, nil
	}
	return queue[0], true, nil
}

func (m *MemoryPendingIndex) Remove(_ context.Context, key, duelID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	queue := m.queues[key]
	for i, id := range queue {
		if id != duelID {
			continue
		}
		queue = append(queue[:i:i], queue[i+1:]...)
		if len(queue) == 0 {
			delete(m.queues, key)
		} else {
			m.queues[key] = queue
		}
		return nil
	}
	return nil
}

func (m *MemoryPendingIndex) Len(_ context.Context, key string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.queues[key]), nil
}

func (m *MemoryPendingIndex) Reset(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queues = make(map[string][]string)
	return nil
}

// RebuildPendingIndex refills index from every duel still in challenged status.
func RebuildPendingIndex(ctx context.Context, store Store, index PendingIndex) (int, error) {
	duels, err := store.ListChallenged(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list challenged duels: %w", err)
	}
	if err := index.Reset(ctx); err != nil {
		return 0, fmt.Errorf("failed to reset pending index: %w", err)
	}
	for _, d := range duels {
		if err := index.Push(ctx, PairKey(d.Challenger, d.Challenged), d.ID); err != nil {
			return 0, fmt.Errorf("failed to index duel %s: %w", d.ID, err)
		}
	}
	logger.Info("pending duel index rebuilt", "duels", len(duels))
	return len(duels), nil
}
