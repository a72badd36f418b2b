package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisPendingIndex keeps one Redis list per pair so queues survive restarts.
type RedisPendingIndex struct {
	client *redis.Client
	prefix string
}

func NewRedisPendingIndex(client *redis.Client, prefix string) *RedisPendingIndex {
	if prefix == "" {
		prefix = "duelbot:pending:"
	}
	return &RedisPendingIndex{client: client, prefix: prefix}
}

func (r *RedisPendingIndex) key(pair string) string {
	return r.prefix + pair
}

func (r *RedisPendingIndex) Push(ctx context.Context, key, duelID string) error {
	if err := r.client.RPush(ctx, r.key(key), duelID).Err(); err != nil {
		return fmt.Errorf("failed to push pending duel: %w", err)
	}
	return nil
}

func (r *RedisPendingIndex) PopFront(ctx context.Context, key string) (string, bool, error) {
	id, err := r.client.LPop(ctx, r.key(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to pop pending duel: %w", err)
	}
	return id, true, nil
}

func (r *RedisPendingIndex) Front(ctx context.Context, key string) (string, bool, error) {
	id, err := r.client.LIndex(ctx, r.key(key), 0).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read pending duel: %w", err)
	}
	return id, true, nil
}

func (r *RedisPendingIndex) Remove(ctx context.Context, key, duelID string) error {
	if err := r.client.LRem(ctx, r.key(key), 1, duelID).Err(); err != nil {
		return fmt.Errorf("failed to remove pending duel: %w", err)
	}
	return nil
}

func (r *RedisPendingIndex) Len(ctx context.Context, key string) (int, error) {
	n, err := r.client.LLen(ctx, r.key(key)).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to read pending queue length: %w", err)
	}
	return int(n), nil
}

func (r *RedisPendingIndex) Reset(ctx context.Context) error {
	iter := r.client.Scan(ctx, 0, r.prefix+"*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("failed to scan pending queues: %w", err)
	}
	if len(keys) == 0 {
		return nil
	}
	if err := r.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("failed to clear pending queues: %w", err)
	}
	return nil
}
